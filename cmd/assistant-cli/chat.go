package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"rentalassist-backend/internal/conversation"
	"rentalassist-backend/internal/intent"
	"rentalassist-backend/internal/logger"
	"rentalassist-backend/internal/render"
	"rentalassist-backend/internal/services"
)

type chatOptions struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	LogFile  string
}

type styles struct {
	User       lipgloss.Style
	Assistant  lipgloss.Style
	Number     lipgloss.Style
	Suggestion lipgloss.Style
	Rating     lipgloss.Style
	Status     lipgloss.Style
	Spinner    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		User:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Assistant:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Number:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Suggestion: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Rating:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Status:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Spinner:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
	}
}

// channelPublisher hands session events to the UI loop. Submit publishes
// from inside Update, so delivery never blocks; a dropped event only delays
// a redraw, since the view is rebuilt from a snapshot.
type channelPublisher chan conversation.Event

func (p channelPublisher) Publish(_ context.Context, ev conversation.Event) {
	select {
	case p <- ev:
	default:
	}
}

type sessionEventMsg conversation.Event

func waitForEvent(events <-chan conversation.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return sessionEventMsg(ev)
	}
}

type chatModel struct {
	sess     *conversation.Session
	events   <-chan conversation.Event
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	styles   styles
	status   string
	ready    bool
}

func newChatModel(sess *conversation.Session, events <-chan conversation.Event) chatModel {
	st := defaultStyles()

	ti := textinput.New()
	ti.Placeholder = "What are you working on? (Enter to send, /help for commands)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 2000
	ti.Width = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Spinner

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(78),
	)

	return chatModel{
		sess:     sess,
		events:   events,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		renderer: renderer,
		styles:   st,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.input.Width = msg.Width - 4
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			status, quit := apply(m.sess, parseCommand(line))
			if quit {
				return m, tea.Quit
			}
			m.status = status
			m.refresh()
			return m, nil
		}

	case sessionEventMsg:
		m.refresh()
		return m, waitForEvent(m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *chatModel) refresh() {
	m.viewport.SetContent(renderTranscript(m.sess.Snapshot(), m.renderer, m.styles))
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "\n  Starting..."
	}

	footer := m.styles.Status.Render(m.status)
	if m.sess.Generating() {
		footer = m.spinner.View() + m.styles.Status.Render(" thinking...")
	}

	return m.viewport.View() + "\n" + footer + "\n" + m.input.View()
}

// renderTranscript draws the numbered log, votes and the current suggestions.
// A nil renderer falls back to plain text.
func renderTranscript(v conversation.View, renderer *glamour.TermRenderer, st styles) string {
	var b strings.Builder

	for i, msg := range v.Messages {
		num := st.Number.Render(fmt.Sprintf("[%d]", i+1))

		if msg.Role == conversation.RoleUser {
			fmt.Fprintf(&b, "%s %s %s\n\n", num, st.User.Render("You:"), msg.Content)
			continue
		}

		label := st.Assistant.Render("Assistant:")
		if vote, ok := v.Rated[msg.ID]; ok {
			mark := "[-]"
			if vote {
				mark = "[+]"
			}
			label += " " + st.Rating.Render(mark)
		}
		fmt.Fprintf(&b, "%s %s\n", num, label)

		body := render.Plain(msg.Content)
		if renderer != nil {
			if out, err := renderer.Render(msg.Content); err == nil {
				body = strings.TrimRight(out, "\n")
			}
		}
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	if len(v.Suggestions) > 0 && !v.Generating {
		b.WriteString(st.Number.Render("Suggestions:"))
		b.WriteString("\n")
		for i, s := range v.Suggestions {
			fmt.Fprintf(&b, "  %s %s\n", st.Number.Render(fmt.Sprintf("%d)", i+1)), st.Suggestion.Render(s))
		}
	}

	return b.String()
}

func runChat(ctx context.Context, opts chatOptions) error {
	var logOut io.Writer = io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	// The alt screen owns stdout; logs go to the file or nowhere.
	slog.SetDefault(slog.New(logger.NewContextHandler(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	events := make(channelPublisher, 64)
	sess := conversation.New(uuid.NewString(), intent.NewDefault(), conversation.Options{
		Delay:    conversation.UniformDelay(opts.MinDelay, opts.MaxDelay),
		Events:   events,
		Feedback: services.LogFeedbackSink{},
	})
	defer sess.Dispose()

	p := tea.NewProgram(newChatModel(sess, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

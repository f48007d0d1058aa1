package main

import (
	"fmt"
	"strconv"
	"strings"

	"rentalassist-backend/internal/conversation"
)

type commandKind int

const (
	cmdSay commandKind = iota
	cmdSuggestion
	cmdUp
	cmdDown
	cmdRegen
	cmdHelp
	cmdQuit
	cmdInvalid
)

type command struct {
	kind commandKind
	n    int
	text string
}

// parseCommand reads one input line. Anything not starting with "/" is a
// message; a bad slash command comes back as cmdInvalid with a reason.
func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return command{kind: cmdSay, text: line}
	}

	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])

	numbered := func(kind commandKind) command {
		if len(fields) != 2 {
			return command{kind: cmdInvalid, text: fmt.Sprintf("usage: %s N", name)}
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return command{kind: cmdInvalid, text: fmt.Sprintf("%s needs a positive number, got %q", name, fields[1])}
		}
		return command{kind: kind, n: n}
	}

	switch name {
	case "/s", "/suggest":
		return numbered(cmdSuggestion)
	case "/up":
		return numbered(cmdUp)
	case "/down":
		return numbered(cmdDown)
	case "/regen", "/regenerate":
		return command{kind: cmdRegen}
	case "/help", "/?":
		return command{kind: cmdHelp}
	case "/quit", "/exit", "/q":
		return command{kind: cmdQuit}
	default:
		return command{kind: cmdInvalid, text: fmt.Sprintf("unknown command %s, try /help", name)}
	}
}

const helpText = "/s N suggestion · /up N · /down N · /regen · /quit"

// apply runs cmd against sess and returns a one-line status for the footer.
// Message numbers are 1-based positions in the transcript.
func apply(sess *conversation.Session, cmd command) (status string, quit bool) {
	switch cmd.kind {
	case cmdQuit:
		return "", true

	case cmdHelp:
		return helpText, false

	case cmdInvalid:
		return cmd.text, false

	case cmdSay:
		if cmd.text == "" {
			return "", false
		}
		if _, ok := sess.Submit(cmd.text); !ok {
			return "still thinking, wait for the reply", false
		}
		return "", false

	case cmdSuggestion:
		suggestions := sess.Snapshot().Suggestions
		if cmd.n > len(suggestions) {
			return fmt.Sprintf("no suggestion %d", cmd.n), false
		}
		if _, ok := sess.SubmitSuggestion(suggestions[cmd.n-1]); !ok {
			return "still thinking, wait for the reply", false
		}
		return "", false

	case cmdUp, cmdDown:
		msgs := sess.Messages()
		if cmd.n > len(msgs) {
			return fmt.Sprintf("no message %d", cmd.n), false
		}
		msg := msgs[cmd.n-1]
		if msg.Role != conversation.RoleAssistant {
			return fmt.Sprintf("message %d is yours, only replies can be rated", cmd.n), false
		}
		if !sess.Rate(msg.ID, cmd.kind == cmdUp) {
			return fmt.Sprintf("message %d is already rated", cmd.n), false
		}
		return "thanks for the feedback", false

	case cmdRegen:
		if !sess.Regenerate() {
			if sess.Generating() {
				return "still thinking, wait for the reply", false
			}
			return "nothing to regenerate", false
		}
		return "", false
	}

	return "", false
}

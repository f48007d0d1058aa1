package conversation

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"rentalassist-backend/internal/id"
	"rentalassist-backend/internal/intent"
)

const (
	MinThinkingDelay = 800 * time.Millisecond
	MaxThinkingDelay = 2000 * time.Millisecond

	feedbackTimeout = 5 * time.Second
)

// Classifier maps an utterance to a canned reply. *intent.Classifier
// satisfies it.
type Classifier interface {
	Classify(utterance string) intent.ResponseTemplate
}

// FeedbackSink receives votes. Errors are logged and otherwise ignored.
type FeedbackSink interface {
	RecordFeedback(ctx context.Context, fb Feedback) error
}

// Publisher is notified after every state change, outside the session lock.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type Options struct {
	Now      func() time.Time
	Delay    func() time.Duration
	After    func(time.Duration) <-chan time.Time
	NewID    func() MessageID
	Feedback FeedbackSink
	Events   Publisher
	Logger   *slog.Logger
	Welcome  *intent.ResponseTemplate
}

// UniformDelay draws from [min, max). A non-positive range collapses to min.
func UniformDelay(min, max time.Duration) func() time.Duration {
	return func() time.Duration {
		if max <= min {
			return min
		}
		return min + rand.N(max-min)
	}
}

// FixedDelay is mostly useful in tests.
func FixedDelay(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

// DefaultWelcome seeds every new session.
func DefaultWelcome() intent.ResponseTemplate {
	return intent.ResponseTemplate{
		Content: "Hi! I'm your **rental assistant**.\n" +
			"Tell me what you're working on and I'll help you find the right equipment, check prices or plan delivery.",
		Suggestions: []string{"Find a camera", "Power tools", "Event packages", "How does renting work?"},
		Category:    intent.CategoryInfo,
	}
}

// Session is one client's conversation: an append-only log, a generating
// gate that allows one reply in flight, and one-shot feedback per message.
//
// Replies are produced on a separate goroutine after a thinking delay.
// Dispose cancels that delay; a reply that wakes up after disposal is dropped.
type Session struct {
	id         string
	classifier Classifier
	now        func() time.Time
	delay      func() time.Duration
	after      func(time.Duration) <-chan time.Time
	newID      func() MessageID
	feedback   FeedbackSink
	events     Publisher
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	log          []Message
	index        map[MessageID]int
	generating   bool
	rated        map[MessageID]bool
	disposed     bool
	lastActivity time.Time
}

func New(sessionID string, classifier Classifier, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Delay == nil {
		opts.Delay = UniformDelay(MinThinkingDelay, MaxThinkingDelay)
	}
	if opts.After == nil {
		opts.After = time.After
	}
	if opts.NewID == nil {
		opts.NewID = func() MessageID { return MessageID(id.New()) }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	welcome := DefaultWelcome()
	if opts.Welcome != nil {
		welcome = *opts.Welcome
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:         sessionID,
		classifier: classifier,
		now:        opts.Now,
		delay:      opts.Delay,
		after:      opts.After,
		newID:      opts.NewID,
		feedback:   opts.Feedback,
		events:     opts.Events,
		logger:     opts.Logger.With("session_id", sessionID),
		ctx:        ctx,
		cancel:     cancel,
		index:      make(map[MessageID]int),
		rated:      make(map[MessageID]bool),
	}

	now := s.now()
	s.appendLocked(Message{
		ID:          s.newID(),
		Role:        RoleAssistant,
		Content:     welcome.Content,
		Timestamp:   now,
		Suggestions: welcome.Suggestions,
		Category:    welcome.Category,
	})
	s.lastActivity = now

	return s
}

func (s *Session) ID() string {
	return s.id
}

// Submit appends a user turn and schedules the reply. Blank text, a reply
// already in flight and a disposed session all make it a no-op.
func (s *Session) Submit(text string) (Message, bool) {
	if strings.TrimSpace(text) == "" {
		return Message{}, false
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return Message{}, false
	}
	if s.generating {
		s.mu.Unlock()
		s.logger.Debug("submit ignored, reply in flight")
		return Message{}, false
	}

	msg := Message{
		ID:        s.newID(),
		Role:      RoleUser,
		Content:   text,
		Timestamp: s.now(),
	}
	s.appendLocked(msg)
	s.generating = true
	s.lastActivity = msg.Timestamp
	s.wg.Add(1)
	s.mu.Unlock()

	out := msg.clone()
	s.publish(Event{Type: EventMessageAppended, Message: &out})
	s.publish(Event{Type: EventGeneratingStarted})

	go s.generateReply(msg)

	return msg.clone(), true
}

// SubmitSuggestion re-enters the same pipeline as typed input.
func (s *Session) SubmitSuggestion(phrase string) (Message, bool) {
	return s.Submit(phrase)
}

// Regenerate appends a fresh reply to the latest user turn. It only acts
// when the log ends in a user message directly followed by the assistant
// reply to it; anything else is a no-op.
func (s *Session) Regenerate() bool {
	s.mu.Lock()
	if s.disposed || s.generating {
		s.mu.Unlock()
		return false
	}

	n := len(s.log)
	if n < 2 {
		s.mu.Unlock()
		return false
	}
	last, prev := s.log[n-1], s.log[n-2]
	if last.Role != RoleAssistant || prev.Role != RoleUser || last.ReplyTo != prev.ID {
		s.mu.Unlock()
		return false
	}

	s.generating = true
	s.lastActivity = s.now()
	s.wg.Add(1)
	s.mu.Unlock()

	s.publish(Event{Type: EventGeneratingStarted})
	go s.generateReply(prev)

	return true
}

// Rate records a vote on an assistant message. The first vote wins; later
// votes, user messages and unknown ids are ignored. The sink is called in
// the background and its outcome never changes the recorded vote.
func (s *Session) Rate(messageID MessageID, positive bool) bool {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return false
	}
	if _, done := s.rated[messageID]; done {
		s.mu.Unlock()
		return false
	}
	i, ok := s.index[messageID]
	if !ok || s.log[i].Role != RoleAssistant {
		s.mu.Unlock()
		return false
	}

	s.rated[messageID] = positive
	s.lastActivity = s.now()
	fb := Feedback{
		SessionID: s.id,
		MessageID: messageID,
		Positive:  positive,
		Category:  s.log[i].Category,
		RatedAt:   s.lastActivity,
	}
	if s.feedback != nil {
		s.wg.Add(1)
		go s.forwardFeedback(fb)
	}
	s.mu.Unlock()

	return true
}

// Dispose cancels any pending reply and waits for it to unwind. Every
// operation after Dispose is a no-op.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Debug("session disposed")
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:         s.id,
		Messages:   s.messagesLocked(),
		Generating: s.generating,
		Rated:      make(map[MessageID]bool, len(s.rated)),
		Disposed:   s.disposed,
	}
	for k, vote := range s.rated {
		v.Rated[k] = vote
	}
	for i := len(s.log) - 1; i >= 0; i-- {
		if s.log[i].Role == RoleAssistant {
			v.Suggestions = append([]string(nil), s.log[i].Suggestions...)
			break
		}
	}
	return v
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked()
}

func (s *Session) Message(messageID MessageID) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[messageID]
	if !ok {
		return Message{}, false
	}
	return s.log[i].clone(), true
}

// Vote reports the recorded vote for a message, if any.
func (s *Session) Vote(messageID MessageID) (positive bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	positive, ok = s.rated[messageID]
	return positive, ok
}

func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

func (s *Session) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// generateReply is the only suspension point. It owns the generating flag
// from the moment the caller set it until the reply has been published.
func (s *Session) generateReply(trigger Message) {
	defer s.wg.Done()

	select {
	case <-s.ctx.Done():
		return
	case <-s.after(s.delay()):
	}

	tpl := s.classifier.Classify(trigger.Content)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		s.logger.Debug("reply discarded, session disposed", "reply_to", trigger.ID)
		return
	}
	reply := Message{
		ID:          s.newID(),
		Role:        RoleAssistant,
		Content:     tpl.Content,
		Timestamp:   s.now(),
		Suggestions: tpl.Suggestions,
		Category:    tpl.Category,
		ReplyTo:     trigger.ID,
	}
	s.appendLocked(reply)
	s.lastActivity = reply.Timestamp
	s.mu.Unlock()

	s.logger.Info("assistant reply appended",
		"message_id", reply.ID,
		"reply_to", trigger.ID,
		"category", reply.Category,
	)

	// Events go out before the gate reopens so a following turn can never
	// publish ahead of them.
	out := reply.clone()
	s.publish(Event{Type: EventMessageAppended, Message: &out})
	s.publish(Event{Type: EventGeneratingFinished})

	s.mu.Lock()
	s.generating = false
	s.mu.Unlock()
}

func (s *Session) appendLocked(m Message) {
	s.index[m.ID] = len(s.log)
	s.log = append(s.log, m.clone())
}

func (s *Session) messagesLocked() []Message {
	out := make([]Message, len(s.log))
	for i, m := range s.log {
		out[i] = m.clone()
	}
	return out
}

func (s *Session) publish(ev Event) {
	if s.events == nil {
		return
	}
	ev.SessionID = s.id
	s.events.Publish(context.Background(), ev)
}

// forwardFeedback runs off the caller's path. Dispose waits for it, so a
// vote cast just before disposal still reaches the sink.
func (s *Session) forwardFeedback(fb Feedback) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), feedbackTimeout)
	defer cancel()

	if err := s.feedback.RecordFeedback(ctx, fb); err != nil {
		s.logger.Warn("feedback sink failed", "message_id", fb.MessageID, "error", err)
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"rentalassist-backend/internal/conversation"
	"rentalassist-backend/internal/logger"
)

// MaxTextLength caps a single user turn, in characters.
const MaxTextLength = 2000

type AssistantOptions struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Feedback conversation.FeedbackSink
	Events   conversation.Publisher

	// After overrides the thinking-delay timer; tests use it to skip the wait.
	After func(time.Duration) <-chan time.Time
}

// AssistantService keeps one in-memory conversation per client.
// Conversations are never persisted; a restart drops them.
type AssistantService struct {
	classifier conversation.Classifier
	opts       AssistantOptions

	mu       sync.RWMutex
	sessions map[uuid.UUID]*conversation.Session
}

func NewAssistantService(classifier conversation.Classifier, opts AssistantOptions) *AssistantService {
	if opts.MinDelay == 0 && opts.MaxDelay == 0 {
		opts.MinDelay = conversation.MinThinkingDelay
		opts.MaxDelay = conversation.MaxThinkingDelay
	}
	return &AssistantService{
		classifier: classifier,
		opts:       opts,
		sessions:   make(map[uuid.UUID]*conversation.Session),
	}
}

func (s *AssistantService) CreateSession(ctx context.Context) *conversation.Session {
	sessionID := uuid.New()

	sess := conversation.New(sessionID.String(), s.classifier, conversation.Options{
		Delay:    conversation.UniformDelay(s.opts.MinDelay, s.opts.MaxDelay),
		After:    s.opts.After,
		Feedback: s.opts.Feedback,
		Events:   s.opts.Events,
	})

	s.mu.Lock()
	s.sessions[sessionID] = sess
	total := len(s.sessions)
	s.mu.Unlock()

	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: sessionID.String()})
	slog.InfoContext(ctx, "assistant session created", "active_sessions", total)

	return sess
}

func (s *AssistantService) Get(ctx context.Context, sessionID uuid.UUID) (*conversation.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || sess.Disposed() {
		return nil, &NotFoundError{Message: "Session not found"}
	}
	return sess, nil
}

func (s *AssistantService) Submit(ctx context.Context, sessionID uuid.UUID, text string) (conversation.Message, error) {
	return s.submit(ctx, sessionID, text, "text")
}

func (s *AssistantService) SubmitSuggestion(ctx context.Context, sessionID uuid.UUID, phrase string) (conversation.Message, error) {
	return s.submit(ctx, sessionID, phrase, "phrase")
}

func (s *AssistantService) submit(ctx context.Context, sessionID uuid.UUID, text, field string) (conversation.Message, error) {
	if strings.TrimSpace(text) == "" {
		return conversation.Message{}, &ValidationError{Fields: map[string]string{field: "must not be empty"}}
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return conversation.Message{}, &ValidationError{Fields: map[string]string{
			field: fmt.Sprintf("must be at most %d characters", MaxTextLength),
		}}
	}

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return conversation.Message{}, err
	}

	msg, ok := sess.Submit(text)
	if !ok {
		if sess.Disposed() {
			return conversation.Message{}, &NotFoundError{Message: "Session not found"}
		}
		return conversation.Message{}, &ConflictError{Message: "A reply is already being generated"}
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: sess.ID()})
	slog.DebugContext(ctx, "user turn accepted", "message_id", msg.ID, "text", logger.Truncate(text, 80))

	return msg, nil
}

func (s *AssistantService) Rate(ctx context.Context, sessionID uuid.UUID, messageID conversation.MessageID, positive bool) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if sess.Rate(messageID, positive) {
		return nil
	}

	msg, ok := sess.Message(messageID)
	if !ok || msg.Role != conversation.RoleAssistant {
		return &NotFoundError{Message: "Assistant message not found"}
	}
	if _, voted := sess.Vote(messageID); voted {
		return &ConflictError{Message: "Feedback already recorded for this message"}
	}
	return &NotFoundError{Message: "Session not found"}
}

func (s *AssistantService) Regenerate(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if sess.Regenerate() {
		return nil
	}
	if sess.Generating() {
		return &ConflictError{Message: "A reply is already being generated"}
	}
	return &ConflictError{Message: "Nothing to regenerate"}
}

func (s *AssistantService) Dispose(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return &NotFoundError{Message: "Session not found"}
	}

	sess.Dispose()
	return nil
}

// ReapIdle disposes sessions with no activity for longer than ttl and
// returns how many were removed.
func (s *AssistantService) ReapIdle(now time.Time, ttl time.Duration) int {
	var idle []*conversation.Session

	s.mu.Lock()
	for sessionID, sess := range s.sessions {
		if now.Sub(sess.LastActivity()) > ttl {
			idle = append(idle, sess)
			delete(s.sessions, sessionID)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		sess.Dispose()
	}
	return len(idle)
}

func (s *AssistantService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close disposes every session.
func (s *AssistantService) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[uuid.UUID]*conversation.Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Dispose()
	}
}

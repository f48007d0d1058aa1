package conversation

import (
	"strconv"
	"time"

	"rentalassist-backend/internal/intent"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageID is time-ordered: a later message always has a larger id.
type MessageID int64

func (id MessageID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Message is one turn in the log. Messages are never changed after they are
// appended; accessors hand out copies.
type Message struct {
	ID          MessageID
	Role        Role
	Content     string
	Timestamp   time.Time
	Suggestions []string        // assistant only
	Category    intent.Category // assistant only
	ReplyTo     MessageID       // user turn an assistant reply answers; zero for the welcome message
}

func (m Message) clone() Message {
	if m.Suggestions != nil {
		m.Suggestions = append([]string(nil), m.Suggestions...)
	}
	return m
}

// Feedback is what Rate forwards to the telemetry sink.
type Feedback struct {
	SessionID string          `json:"session_id"`
	MessageID MessageID       `json:"message_id"`
	Positive  bool            `json:"positive"`
	Category  intent.Category `json:"category"`
	RatedAt   time.Time       `json:"rated_at"`
}

type EventType string

const (
	EventMessageAppended    EventType = "message_appended"
	EventGeneratingStarted  EventType = "generating_started"
	EventGeneratingFinished EventType = "generating_finished"
)

// Event describes a state change the presentation layer may want to render.
type Event struct {
	Type      EventType
	SessionID string
	Message   *Message
}

// View is a point-in-time copy of the session for rendering.
type View struct {
	ID          string
	Messages    []Message
	Generating  bool
	Rated       map[MessageID]bool
	Suggestions []string // from the latest assistant message
	Disposed    bool
}

package models

import "time"

// MessageView is a single turn as the web client renders it.
// IDs travel as strings; snowflake values do not fit a JS number.
type MessageView struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"` // "user" or "assistant"
	Content     string    `json:"content"`
	HTML        string    `json:"html"`
	Timestamp   time.Time `json:"timestamp"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Category    string    `json:"category,omitempty"`
	ReplyTo     string    `json:"reply_to,omitempty"`
	Rating      *bool     `json:"rating,omitempty"`
}

type SessionView struct {
	ID          string        `json:"id"`
	Messages    []MessageView `json:"messages"`
	Generating  bool          `json:"generating"`
	Suggestions []string      `json:"suggestions"`
}

type CreateSessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Session   SessionView `json:"session"`
}

type SubmitRequest struct {
	Text string `json:"text"`
}

type SuggestionRequest struct {
	Phrase string `json:"phrase"`
}

type SubmitResponse struct {
	Message    MessageView `json:"message"`
	Generating bool        `json:"generating"`
}

type FeedbackRequest struct {
	Positive *bool `json:"positive"`
}

// FeedbackRecord is a vote as it is queued and stored.
type FeedbackRecord struct {
	SessionID string    `json:"session_id"`
	MessageID int64     `json:"message_id"`
	Positive  bool      `json:"positive"`
	Category  string    `json:"category"`
	RatedAt   time.Time `json:"rated_at"`
}

// FeedbackJob is the queue envelope around a vote.
type FeedbackJob struct {
	Feedback   FeedbackRecord `json:"feedback"`
	RetryCount int            `json:"retry_count"`
}

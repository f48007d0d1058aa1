package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"rentalassist-backend/internal/conversation"
	"rentalassist-backend/internal/intent"
	"rentalassist-backend/internal/models"
)

func TestToMessageView(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := conversation.Message{
		ID:          7,
		Role:        conversation.RoleAssistant,
		Content:     "We have **cameras** <ready>",
		Timestamp:   ts,
		Suggestions: []string{"Short film"},
		Category:    intent.CategorySearch,
		ReplyTo:     5,
	}

	got := ToMessageView(msg, map[conversation.MessageID]bool{7: false})

	vote := false
	want := models.MessageView{
		ID:          "7",
		Role:        "assistant",
		Content:     "We have **cameras** <ready>",
		HTML:        "We have <strong>cameras</strong> &lt;ready&gt;",
		Timestamp:   ts,
		Suggestions: []string{"Short film"},
		Category:    "search",
		ReplyTo:     "5",
		Rating:      &vote,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("message view mismatch (-want +got):\n%s", diff)
	}
}

func TestToMessageView_WelcomeHasNoReplyTo(t *testing.T) {
	got := ToMessageView(conversation.Message{ID: 1, Role: conversation.RoleAssistant}, nil)
	require.Empty(t, got.ReplyTo)
	require.Nil(t, got.Rating)
}

func TestToSessionView(t *testing.T) {
	got := ToSessionView(conversation.View{ID: "abc"})
	require.Equal(t, "abc", got.ID)
	require.NotNil(t, got.Messages)
	require.NotNil(t, got.Suggestions)
}

func TestToWSMessage(t *testing.T) {
	started := ToWSMessage(conversation.Event{Type: conversation.EventGeneratingStarted, SessionID: "s1"})
	require.Equal(t, "generating_started", started.Type)
	require.Equal(t, models.GeneratingUpdate{SessionID: "s1", Generating: true}, started.Payload)

	finished := ToWSMessage(conversation.Event{Type: conversation.EventGeneratingFinished, SessionID: "s1"})
	require.Equal(t, models.GeneratingUpdate{SessionID: "s1", Generating: false}, finished.Payload)

	msg := conversation.Message{ID: 9, Role: conversation.RoleUser, Content: "hi"}
	appended := ToWSMessage(conversation.Event{Type: conversation.EventMessageAppended, SessionID: "s1", Message: &msg})
	require.Equal(t, "message_appended", appended.Type)
	require.Equal(t, "9", appended.Payload.(models.MessageView).ID)
}

type captureBroadcaster struct {
	mu     sync.Mutex
	frames map[string][]interface{}
}

func (c *captureBroadcaster) SendToSession(sessionID string, msg interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frames == nil {
		c.frames = make(map[string][]interface{})
	}
	c.frames[sessionID] = append(c.frames[sessionID], msg)
}

func TestEventPublisher_LocalFallback(t *testing.T) {
	local := &captureBroadcaster{}
	pub := NewEventPublisher(nil, local)

	pub.Publish(context.Background(), conversation.Event{Type: conversation.EventGeneratingStarted, SessionID: "s1"})

	require.Len(t, local.frames["s1"], 1)
	require.Equal(t, "generating_started", local.frames["s1"][0].(models.WSMessage).Type)
}

func TestEventPublisher_NoTargets(t *testing.T) {
	pub := NewEventPublisher(nil, nil)
	pub.Publish(context.Background(), conversation.Event{Type: conversation.EventGeneratingFinished, SessionID: "s1"})
}

func TestToFeedbackRecord(t *testing.T) {
	rated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	got := ToFeedbackRecord(conversation.Feedback{
		SessionID: "s1",
		MessageID: 12,
		Positive:  true,
		Category:  intent.CategoryPricing,
		RatedAt:   rated,
	})

	require.Equal(t, int64(12), got.MessageID)
	require.Equal(t, "pricing", got.Category)
	require.Equal(t, time.UTC, got.RatedAt.Location())
	require.True(t, got.RatedAt.Equal(rated))
}

func TestLogFeedbackSink(t *testing.T) {
	require.NoError(t, LogFeedbackSink{}.RecordFeedback(context.Background(), conversation.Feedback{SessionID: "s1"}))
}

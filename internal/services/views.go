package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"rentalassist-backend/internal/conversation"
	"rentalassist-backend/internal/models"
	"rentalassist-backend/internal/render"
)

// UpdatesChannel is the Redis pub/sub channel a session's events go out on.
func UpdatesChannel(sessionID string) string {
	return "assistant_updates:" + sessionID
}

func ToMessageView(m conversation.Message, rated map[conversation.MessageID]bool) models.MessageView {
	v := models.MessageView{
		ID:          m.ID.String(),
		Role:        string(m.Role),
		Content:     m.Content,
		HTML:        render.Markup(m.Content),
		Timestamp:   m.Timestamp,
		Suggestions: m.Suggestions,
		Category:    string(m.Category),
	}
	if m.ReplyTo != 0 {
		v.ReplyTo = m.ReplyTo.String()
	}
	if vote, ok := rated[m.ID]; ok {
		v.Rating = &vote
	}
	return v
}

func ToSessionView(v conversation.View) models.SessionView {
	out := models.SessionView{
		ID:          v.ID,
		Messages:    make([]models.MessageView, 0, len(v.Messages)),
		Generating:  v.Generating,
		Suggestions: v.Suggestions,
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	for _, m := range v.Messages {
		out.Messages = append(out.Messages, ToMessageView(m, v.Rated))
	}
	return out
}

// ToWSMessage turns a session event into the frame websocket clients receive.
func ToWSMessage(ev conversation.Event) models.WSMessage {
	switch ev.Type {
	case conversation.EventMessageAppended:
		var payload models.MessageView
		if ev.Message != nil {
			payload = ToMessageView(*ev.Message, nil)
		}
		return models.WSMessage{Type: string(ev.Type), Payload: payload}
	default:
		return models.WSMessage{
			Type: string(ev.Type),
			Payload: models.GeneratingUpdate{
				SessionID:  ev.SessionID,
				Generating: ev.Type == conversation.EventGeneratingStarted,
			},
		}
	}
}

// Broadcaster delivers a frame to the websocket clients of one session.
type Broadcaster interface {
	SendToSession(sessionID string, msg interface{})
}

// EventPublisher fans session events out to websocket clients. With Redis it
// publishes on the session's updates channel so any instance holding the
// socket can deliver it; without Redis it hands the frame to the local hub.
type EventPublisher struct {
	redis *redis.Client
	local Broadcaster
}

func NewEventPublisher(redisClient *redis.Client, local Broadcaster) *EventPublisher {
	return &EventPublisher{redis: redisClient, local: local}
}

func (p *EventPublisher) Publish(ctx context.Context, ev conversation.Event) {
	msg := ToWSMessage(ev)

	if p.redis == nil {
		if p.local != nil {
			p.local.SendToSession(ev.SessionID, msg)
		}
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode session event", "type", ev.Type, "error", err)
		return
	}
	if err := p.redis.Publish(ctx, UpdatesChannel(ev.SessionID), data).Err(); err != nil {
		slog.WarnContext(ctx, "failed to publish session event", "session_id", ev.SessionID, "type", ev.Type, "error", err)
	}
}

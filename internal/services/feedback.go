package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"rentalassist-backend/internal/conversation"
	"rentalassist-backend/internal/logger"
	"rentalassist-backend/internal/models"
)

// FeedbackQueue is drained by worker.FeedbackPool.
const FeedbackQueue = "queue:assistant-feedback"

// QueueFeedbackSink pushes votes onto a Redis list so the request path never
// waits on Postgres.
type QueueFeedbackSink struct {
	redis *redis.Client
}

func NewQueueFeedbackSink(redisClient *redis.Client) *QueueFeedbackSink {
	return &QueueFeedbackSink{redis: redisClient}
}

func (s *QueueFeedbackSink) RecordFeedback(ctx context.Context, fb conversation.Feedback) error {
	job := models.FeedbackJob{Feedback: ToFeedbackRecord(fb)}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}

	if err := s.redis.LPush(ctx, FeedbackQueue, jobBytes).Err(); err != nil {
		return fmt.Errorf("failed to enqueue feedback: %w", err)
	}
	return nil
}

// LogFeedbackSink only writes votes to the log. It is used when Redis is not
// configured.
type LogFeedbackSink struct{}

func (LogFeedbackSink) RecordFeedback(ctx context.Context, fb conversation.Feedback) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: fb.SessionID, Component: "feedback"})
	slog.InfoContext(ctx, "assistant feedback",
		"message_id", fb.MessageID,
		"positive", fb.Positive,
		"category", fb.Category,
	)
	return nil
}

func ToFeedbackRecord(fb conversation.Feedback) models.FeedbackRecord {
	return models.FeedbackRecord{
		SessionID: fb.SessionID,
		MessageID: int64(fb.MessageID),
		Positive:  fb.Positive,
		Category:  string(fb.Category),
		RatedAt:   fb.RatedAt.UTC(),
	}
}

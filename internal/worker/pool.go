package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"rentalassist-backend/internal/logger"
	"rentalassist-backend/internal/models"
	"rentalassist-backend/internal/services"
)

const (
	DeadLetterQueue = services.FeedbackQueue + ":dead"

	maxAttempts = 3
	popTimeout  = 30 * time.Second
	lockTTL     = 10 * time.Minute
)

// Queue is the subset of *redis.Client the pool uses.
type Queue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Store persists a vote and reports whether it was new.
type Store interface {
	Insert(ctx context.Context, fb models.FeedbackRecord) (bool, error)
}

// Pool drains the feedback queue into the store.
type Pool struct {
	queue       Queue
	store       Store
	workerCount int
	backoff     func(attempt int) time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(queue Queue, store Store, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		queue:       queue,
		store:       store,
		workerCount: workerCount,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		},
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	slog.Info("feedback workers started", "count", p.workerCount, "queue", services.FeedbackQueue)
}

// Stop cancels any blocked pop and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: fmt.Sprintf("feedback-worker-%d", id)})

	for {
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "feedback worker shutting down")
			return
		}

		result, err := p.queue.BLPop(ctx, popTimeout, services.FeedbackQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				slog.WarnContext(ctx, "feedback queue pop failed", "error", err)
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		p.handle(context.WithoutCancel(ctx), result[1])
	}
}

func (p *Pool) handle(ctx context.Context, raw string) {
	var job models.FeedbackJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		slog.ErrorContext(ctx, "dropping malformed feedback job", "error", err)
		return
	}

	fb := job.Feedback
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: fb.SessionID})

	lockKey := lockKey(fb)
	locked, err := p.queue.SetNX(ctx, lockKey, "1", lockTTL).Result()
	if err != nil {
		p.handleFailure(ctx, job, fmt.Errorf("acquire feedback lock: %w", err))
		return
	}
	if !locked {
		return
	}

	inserted, err := p.store.Insert(ctx, fb)
	// Release before any requeue so the retry is not skipped as a duplicate.
	p.queue.Del(ctx, lockKey)
	if err != nil {
		p.handleFailure(ctx, job, err)
		return
	}

	slog.DebugContext(ctx, "feedback stored", "message_id", fb.MessageID, "positive", fb.Positive, "duplicate", !inserted)
}

func (p *Pool) handleFailure(ctx context.Context, job models.FeedbackJob, err error) {
	job.RetryCount++
	jobBytes, _ := json.Marshal(job)

	if job.RetryCount < maxAttempts {
		backoff := p.backoff(job.RetryCount)
		slog.WarnContext(ctx, "feedback insert failed, retrying",
			"message_id", job.Feedback.MessageID,
			"attempt", job.RetryCount,
			"backoff", backoff,
			"error", err,
		)
		time.AfterFunc(backoff, func() {
			p.queue.LPush(context.Background(), services.FeedbackQueue, string(jobBytes))
		})
		return
	}

	slog.ErrorContext(ctx, "feedback insert failed permanently",
		"message_id", job.Feedback.MessageID,
		"attempts", job.RetryCount,
		"error", err,
	)
	p.queue.LPush(ctx, DeadLetterQueue, string(jobBytes))
}

func lockKey(fb models.FeedbackRecord) string {
	return fmt.Sprintf("feedback_lock:%s:%d", fb.SessionID, fb.MessageID)
}

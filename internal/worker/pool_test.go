package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"rentalassist-backend/internal/models"
	"rentalassist-backend/internal/services"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeQueue struct {
	items chan string

	mu           sync.Mutex
	locks        map[string]bool
	dead         []string
	lockFailures int
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{items: make(chan string, 16), locks: make(map[string]bool)}
}

func (q *fakeQueue) BLPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	select {
	case <-ctx.Done():
		return redis.NewStringSliceResult(nil, ctx.Err())
	case item := <-q.items:
		return redis.NewStringSliceResult([]string{keys[0], item}, nil)
	}
}

func (q *fakeQueue) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.lockFailures > 0 {
		q.lockFailures--
		return redis.NewBoolResult(false, errors.New("i/o timeout"))
	}
	if q.locks[key] {
		return redis.NewBoolResult(false, nil)
	}
	q.locks[key] = true
	return redis.NewBoolResult(true, nil)
}

func (q *fakeQueue) Del(_ context.Context, keys ...string) *redis.IntCmd {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, k := range keys {
		delete(q.locks, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (q *fakeQueue) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		s := v.(string)
		if key == services.FeedbackQueue {
			q.items <- s
			continue
		}
		q.mu.Lock()
		q.dead = append(q.dead, s)
		q.mu.Unlock()
	}
	return redis.NewIntResult(int64(len(values)), nil)
}

func (q *fakeQueue) deadLetters() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.dead...)
}

type fakeStore struct {
	mu       sync.Mutex
	failures int
	calls    int
	rows     map[int64]models.FeedbackRecord
}

func (s *fakeStore) Insert(_ context.Context, fb models.FeedbackRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return false, errors.New("connection refused")
	}
	if s.rows == nil {
		s.rows = make(map[int64]models.FeedbackRecord)
	}
	if _, ok := s.rows[fb.MessageID]; ok {
		return false, nil
	}
	s.rows[fb.MessageID] = fb
	return true, nil
}

func (s *fakeStore) stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func encodeJob(t *testing.T, messageID int64) string {
	t.Helper()
	b, err := json.Marshal(models.FeedbackJob{Feedback: models.FeedbackRecord{
		SessionID: "s1",
		MessageID: messageID,
		Positive:  true,
		Category:  "search",
		RatedAt:   time.Now().UTC(),
	}})
	require.NoError(t, err)
	return string(b)
}

func startPool(t *testing.T, q *fakeQueue, store *fakeStore, workers int) *Pool {
	t.Helper()
	p := NewPool(q, store, workers)
	p.backoff = func(int) time.Duration { return 0 }
	p.Start(context.Background())
	t.Cleanup(p.Stop)
	return p
}

func TestPool_StoresFeedback(t *testing.T) {
	q := newFakeQueue()
	store := &fakeStore{}
	// One worker keeps the duplicate from racing the first copy's lock.
	startPool(t, q, store, 1)

	q.items <- encodeJob(t, 1)
	q.items <- encodeJob(t, 2)
	q.items <- encodeJob(t, 2)

	require.Eventually(t, func() bool { return store.callCount() == 3 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 2, store.stored())
}

func TestPool_RetriesThenSucceeds(t *testing.T) {
	q := newFakeQueue()
	store := &fakeStore{failures: 2}
	startPool(t, q, store, 2)

	q.items <- encodeJob(t, 7)

	require.Eventually(t, func() bool { return store.stored() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 3, store.callCount())
	require.Empty(t, q.deadLetters())
}

func TestPool_RequeuesWhenLockUnavailable(t *testing.T) {
	q := newFakeQueue()
	q.lockFailures = 1
	store := &fakeStore{}
	startPool(t, q, store, 1)

	q.items <- encodeJob(t, 11)

	require.Eventually(t, func() bool { return store.stored() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, store.callCount())
	require.Empty(t, q.deadLetters())
}

func TestPool_DeadLettersAfterMaxAttempts(t *testing.T) {
	q := newFakeQueue()
	store := &fakeStore{failures: 100}
	startPool(t, q, store, 2)

	q.items <- encodeJob(t, 9)

	require.Eventually(t, func() bool { return len(q.deadLetters()) == 1 }, time.Second, 5*time.Millisecond)

	var job models.FeedbackJob
	require.NoError(t, json.Unmarshal([]byte(q.deadLetters()[0]), &job))
	require.Equal(t, maxAttempts, job.RetryCount)
	require.Equal(t, int64(9), job.Feedback.MessageID)
	require.Equal(t, maxAttempts, store.callCount())
}

func TestPool_SkipsLockedAndMalformedJobs(t *testing.T) {
	q := newFakeQueue()
	store := &fakeStore{}
	p := NewPool(q, store, 1)

	p.handle(context.Background(), "{not json")
	require.Equal(t, 0, store.callCount())

	raw := encodeJob(t, 3)
	q.locks[lockKey(models.FeedbackRecord{SessionID: "s1", MessageID: 3})] = true
	p.handle(context.Background(), raw)
	require.Equal(t, 0, store.callCount())
}

func TestPool_StopWithoutStart(t *testing.T) {
	NewPool(newFakeQueue(), &fakeStore{}, 0).Stop()
}

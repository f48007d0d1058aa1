package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client names show up in CLIENT LIST so operators can tell the feedback
// workers apart from the session update fan-out.
const (
	queueClientName  = "rentalassist-feedback"
	pubsubClientName = "rentalassist-session-updates"
)

// RedisClients splits blocking queue traffic from pub/sub so a long BLPOP
// never holds up session updates.
type RedisClients struct {
	Queue  *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(ctx context.Context, redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	queueOpt := *opt
	queueOpt.ClientName = queueClientName
	queueClient := redis.NewClient(&queueOpt)
	if err := queueClient.Ping(ctx).Err(); err != nil {
		queueClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (feedback queue): %w", err)
	}

	pubsubOpt := *opt
	pubsubOpt.ClientName = pubsubClientName
	pubsubClient := redis.NewClient(&pubsubOpt)
	if err := pubsubClient.Ping(ctx).Err(); err != nil {
		queueClient.Close()
		pubsubClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (session updates): %w", err)
	}

	return &RedisClients{
		Queue:  queueClient,
		PubSub: pubsubClient,
	}, nil
}

// QueueDepths returns the length of each list in one round trip.
func (r *RedisClients) QueueDepths(ctx context.Context, keys ...string) (map[string]int64, error) {
	pipe := r.Queue.Pipeline()
	cmds := make([]*redis.IntCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.LLen(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read queue depths: %w", err)
	}

	depths := make(map[string]int64, len(keys))
	for i, key := range keys {
		depths[key] = cmds[i].Val()
	}
	return depths, nil
}

func (r *RedisClients) Close() {
	r.Queue.Close()
	r.PubSub.Close()
}

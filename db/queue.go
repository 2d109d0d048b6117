package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop when nothing arrived before the timeout.
var ErrQueueEmpty = errors.New("queue empty")

// Queue is a Redis list of ASINs waiting for optimization. Items that keep
// failing move to a dead-letter list.
type Queue struct {
	rdb           *redis.Client
	key           string
	deadLetterKey string
	attemptsKey   string
}

func NewOptimizeQueue(rdb *redis.Client, prefix string) *Queue {
	return &Queue{
		rdb:           rdb,
		key:           prefix + ":queue:optimize",
		deadLetterKey: prefix + ":queue:failed",
		attemptsKey:   prefix + ":queue:attempts",
	}
}

func (q *Queue) Push(ctx context.Context, asins ...string) error {
	if len(asins) == 0 {
		return nil
	}
	items := make([]any, len(asins))
	for i, a := range asins {
		items[i] = a
	}
	if err := q.rdb.LPush(ctx, q.key, items...).Err(); err != nil {
		return fmt.Errorf("push to %s: %w", q.key, err)
	}
	return nil
}

// Pop blocks up to timeout for the oldest queued ASIN.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", fmt.Errorf("pop from %s: %w", q.key, err)
	}
	return result[1], nil
}

// Retry puts asin back on the queue, or on the dead-letter list once it has
// failed maxAttempts times. It reports whether asin was dead-lettered.
func (q *Queue) Retry(ctx context.Context, asin string, maxAttempts int) (bool, error) {
	attempts, err := q.rdb.HIncrBy(ctx, q.attemptsKey, asin, 1).Result()
	if err != nil {
		return false, fmt.Errorf("count attempts for %s: %w", asin, err)
	}

	if attempts < int64(maxAttempts) {
		return false, q.Push(ctx, asin)
	}

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, q.deadLetterKey, asin)
		pipe.HDel(ctx, q.attemptsKey, asin)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("dead-letter %s: %w", asin, err)
	}
	return true, nil
}

// Done forgets the failure count for asin.
func (q *Queue) Done(ctx context.Context, asin string) error {
	return q.rdb.HDel(ctx, q.attemptsKey, asin).Err()
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

func (q *Queue) DeadLetters(ctx context.Context) ([]string, error) {
	return q.rdb.LRange(ctx, q.deadLetterKey, 0, -1).Result()
}

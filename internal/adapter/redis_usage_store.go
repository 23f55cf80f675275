package adapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ielts-prep/internal/cache"
	"ielts-prep/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	fieldTokensUsed    = "tokens_used"
	fieldRequestsCount = "requests_count"
)

// RedisUsageStore keeps daily usage records as Redis hashes. Both counters
// are advanced with HINCRBY inside one MULTI/EXEC so concurrent requests
// from the same user never lose an update.
type RedisUsageStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// DefaultUsageRecordTTL keeps a daily record past the end of its day.
const DefaultUsageRecordTTL = 48 * time.Hour

// NewRedisUsageStore creates a usage store. Records expire ttl after their
// last write; a non-positive ttl uses DefaultUsageRecordTTL.
func NewRedisUsageStore(client redis.Cmdable, ttl time.Duration) *RedisUsageStore {
	if ttl <= 0 {
		ttl = DefaultUsageRecordTTL
	}
	return &RedisUsageStore{client: client, ttl: ttl}
}

func (s *RedisUsageStore) GetUsage(ctx context.Context, userID, date string) (*domain.DailyUsage, error) {
	key := cache.UsageKey(userID, date)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read usage %s: %w", key, err)
	}

	usage := &domain.DailyUsage{UserID: userID, Date: date}
	if usage.TokensUsed, err = intField(fields, fieldTokensUsed); err != nil {
		return nil, fmt.Errorf("corrupt usage record %s: %w", key, err)
	}
	if usage.RequestsCount, err = intField(fields, fieldRequestsCount); err != nil {
		return nil, fmt.Errorf("corrupt usage record %s: %w", key, err)
	}
	return usage, nil
}

func (s *RedisUsageStore) IncrementUsage(ctx context.Context, userID, date string, tokens int) (*domain.DailyUsage, error) {
	key := cache.UsageKey(userID, date)

	var tokensCmd, requestsCmd *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		tokensCmd = pipe.HIncrBy(ctx, key, fieldTokensUsed, int64(tokens))
		requestsCmd = pipe.HIncrBy(ctx, key, fieldRequestsCount, 1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment usage %s: %w", key, err)
	}

	return &domain.DailyUsage{
		UserID:        userID,
		Date:          date,
		TokensUsed:    int(tokensCmd.Val()),
		RequestsCount: int(requestsCmd.Val()),
	}, nil
}

func (s *RedisUsageStore) DeleteUsage(ctx context.Context, userID, date string) error {
	key := cache.UsageKey(userID, date)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete usage %s: %w", key, err)
	}
	return nil
}

func intField(fields map[string]string, name string) (int, error) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

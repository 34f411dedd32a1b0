// Package cache keeps short-lived lending state in Redis: cached outstanding summaries
// and the per-loan collection lock.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
)

// OutstandingCache stores OutstandingResponse snapshots per loan.
type OutstandingCache interface {
	GetOutstanding(ctx context.Context, loanID string) (*domain.OutstandingResponse, bool, error)
	SetOutstanding(ctx context.Context, summary *domain.OutstandingResponse, ttl time.Duration) error
	InvalidateOutstanding(ctx context.Context, loanID string) error
}

// Locker hands out exclusive, expiring locks. release is safe to call once the lock
// has expired; it never deletes a lock taken over by someone else.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func OutstandingKey(loanID string) string {
	return fmt.Sprintf("loan:%s:outstanding", loanID)
}

func PaymentLockKey(loanID string) string {
	return fmt.Sprintf("lock:loan:%s:payment", loanID)
}

func (s *RedisStore) GetOutstanding(ctx context.Context, loanID string) (*domain.OutstandingResponse, bool, error) {
	raw, err := s.client.Get(ctx, OutstandingKey(loanID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, customError.WrapCacheError(err)
	}

	var summary domain.OutstandingResponse
	if err := json.Unmarshal(raw, &summary); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next set
		return nil, false, nil
	}
	return &summary, true, nil
}

func (s *RedisStore) SetOutstanding(ctx context.Context, summary *domain.OutstandingResponse, ttl time.Duration) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return customError.WrapCacheError(err)
	}
	if err := s.client.Set(ctx, OutstandingKey(summary.LoanID), raw, ttl).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}

func (s *RedisStore) InvalidateOutstanding(ctx context.Context, loanID string) error {
	if err := s.client.Del(ctx, OutstandingKey(loanID)).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}

func (s *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, customError.WrapCacheError(err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil {
			return customError.WrapCacheError(err)
		}
		return nil
	}
	return release, true, nil
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenLedger remembers verification tokens that were already consumed by a
// signup so they cannot create a second account.
type TokenLedger interface {
	Used(ctx context.Context, tokenID string) (bool, error)
	MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) error
}

// NewTokenLedger returns a redis-backed ledger when addr is set and an
// in-process one otherwise.
func NewTokenLedger(addr string) TokenLedger {
	if addr == "" {
		return NewMemoryLedger()
	}
	return NewRedisLedger(redis.NewClient(&redis.Options{Addr: addr}))
}

const ledgerKeyPrefix = "angagu:verification:used:"

// RedisLedger stores consumed token ids as expiring redis keys.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger wraps an existing redis client.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) Used(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, ledgerKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RedisLedger) MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, ledgerKeyPrefix+tokenID, 1, ttl).Err()
}

// MemoryLedger is a TokenLedger for single-instance deployments and tests.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryLedger constructs an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryLedger) Used(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expires, ok := l.entries[tokenID]
	if !ok {
		return false, nil
	}
	if l.now().After(expires) {
		delete(l.entries, tokenID)
		return false, nil
	}
	return true, nil
}

func (l *MemoryLedger) MarkUsed(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, expires := range l.entries {
		if now.After(expires) {
			delete(l.entries, id)
		}
	}
	l.entries[tokenID] = now.Add(ttl)
	return nil
}

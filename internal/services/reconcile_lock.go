package services

import (
	"context"
	"fmt"
	"time"

	"payway-adapter/internal/payment"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locker serializes reconciliation per transaction.
type Locker interface {
	// Acquire returns payment.ErrReconciliationInProgress when the key is held.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker uses SET NX with ttl; ttl must outlive the gateway timeout.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis SETNX error: %w", err)
	}
	if !ok {
		return nil, payment.ErrReconciliationInProgress
	}

	return func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release reconciliation lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// NoopLocker is used when redis is not configured.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

func reconcileLockKey(providerCode, tranID string) string {
	return fmt.Sprintf("%s:reconcile:%s", providerCode, tranID)
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const denylistPrefix = "denylist:"

var ErrDenylistUnavailable = errors.New("token revocation requires redis")

// TokenDenylist records revoked admin tokens until they expire. With a nil
// client nothing is ever denylisted.
type TokenDenylist struct {
	client *redis.Client
}

func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

func (d *TokenDenylist) Add(ctx context.Context, tokenString string, expiration time.Duration) error {
	if d == nil || d.client == nil {
		return ErrDenylistUnavailable
	}
	if expiration <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistPrefix+tokenString, 1, expiration).Err()
}

func (d *TokenDenylist) IsDenylisted(ctx context.Context, tokenString string) (bool, error) {
	if d == nil || d.client == nil {
		return false, nil
	}
	val, err := d.client.Get(ctx, denylistPrefix+tokenString).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return val != "", nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mbtispy/internal/model"
)

// SessionCache handles Redis operations for session documents. Each session
// is one JSON value under its code; the TTL is reset on every write so an
// active room never expires mid-game.
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, code string) (*model.Session, error)
	Exists(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, code string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a session cache with the given expiry.
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(code string) string {
	return fmt.Sprintf("mbtispy:session:%s", code)
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(session.Code), data, c.ttl).Err(); err != nil {
		return model.NewGameError(model.CodeStoreUnavailable, fmt.Sprintf("failed to save session: %v", err))
	}
	return nil
}

func (c *sessionCache) Get(ctx context.Context, code string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewGameError(model.CodeStoreUnavailable, fmt.Sprintf("failed to load session: %v", err))
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session payload: %w", err)
	}
	return &session, nil
}

func (c *sessionCache) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(code)).Result()
	if err != nil {
		return false, model.NewGameError(model.CodeStoreUnavailable, fmt.Sprintf("failed to check session: %v", err))
	}
	return n > 0, nil
}

func (c *sessionCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}

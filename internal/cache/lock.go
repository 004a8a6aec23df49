package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mbtispy/internal/model"
)

const lockRetryInterval = 50 * time.Millisecond

// releaseScript deletes the lock key only when it still holds the caller's
// token, so a holder whose lock expired cannot release a lock someone else
// has since acquired.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// SessionLock serializes all mutations for one session code across service
// instances. Acquisition is atomic (SET NX with the hold expiry); waiting is
// bounded, and exceeding the wait fails the whole operation before any state
// was touched.
type SessionLock interface {
	Acquire(ctx context.Context, code string) (string, error)
	Release(ctx context.Context, code, token string) error
}

type sessionLock struct {
	client      *redis.Client
	holdTimeout time.Duration
	waitTimeout time.Duration
}

// NewSessionLock creates a lock manager. holdTimeout is the expiry on the
// lock key itself; waitTimeout bounds how long Acquire polls before giving up.
func NewSessionLock(client *redis.Client, holdTimeout, waitTimeout time.Duration) SessionLock {
	return &sessionLock{
		client:      client,
		holdTimeout: holdTimeout,
		waitTimeout: waitTimeout,
	}
}

func (l *sessionLock) key(code string) string {
	return fmt.Sprintf("mbtispy:lock:%s", code)
}

func (l *sessionLock) Acquire(ctx context.Context, code string) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.waitTimeout)

	for {
		ok, err := l.client.SetNX(ctx, l.key(code), token, l.holdTimeout).Result()
		if err != nil {
			return "", model.NewGameError(model.CodeStoreUnavailable, fmt.Sprintf("failed to acquire session lock: %v", err))
		}
		if ok {
			return token, nil
		}
		if time.Now().After(deadline) {
			return "", model.NewGameError(model.CodeLockTimeout, "session is busy, please try again")
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *sessionLock) Release(ctx context.Context, code, token string) error {
	// A zero result means the lock already expired or was taken over; both
	// are fine, the next holder owns its own key.
	return releaseScript.Run(ctx, l.client, []string{l.key(code)}, token).Err()
}

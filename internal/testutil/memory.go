// Package testutil provides in-memory stand-ins for the Redis-backed store
// and lock so the state machine can be tested without a running Redis.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"mbtispy/internal/cache"
	"mbtispy/internal/model"
)

// MemorySessionCache implements cache.SessionCache over a map. Sessions are
// round-tripped through JSON on every access, mirroring how the real store
// reconstructs a fresh document per operation.
type MemorySessionCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{data: make(map[string][]byte)}
}

func (c *MemorySessionCache) Set(ctx context.Context, session *model.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[session.Code] = payload
	return nil
}

func (c *MemorySessionCache) Get(ctx context.Context, code string) (*model.Session, error) {
	c.mu.RLock()
	payload, ok := c.data[code]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var session model.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *MemorySessionCache) Exists(ctx context.Context, code string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[code]
	return ok, nil
}

func (c *MemorySessionCache) Delete(ctx context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, code)
	return nil
}

var _ cache.SessionCache = (*MemorySessionCache)(nil)

// MemoryLock implements cache.SessionLock with real per-code mutual
// exclusion so concurrent-mutation tests exercise actual serialization.
type MemoryLock struct {
	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	tokens map[string]string
	next   atomic.Int64
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{
		locks:  make(map[string]*sync.Mutex),
		tokens: make(map[string]string),
	}
}

func (l *MemoryLock) Acquire(ctx context.Context, code string) (string, error) {
	l.mu.Lock()
	m, ok := l.locks[code]
	if !ok {
		m = &sync.Mutex{}
		l.locks[code] = m
	}
	l.mu.Unlock()

	m.Lock()

	token := fmt.Sprintf("token-%d", l.next.Add(1))
	l.mu.Lock()
	l.tokens[code] = token
	l.mu.Unlock()
	return token, nil
}

func (l *MemoryLock) Release(ctx context.Context, code, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tokens[code] != token {
		return nil
	}
	delete(l.tokens, code)
	l.locks[code].Unlock()
	return nil
}

var _ cache.SessionLock = (*MemoryLock)(nil)

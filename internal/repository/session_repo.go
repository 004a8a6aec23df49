package repository

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"mbtispy/internal/cache"
	"mbtispy/internal/model"
)

// SessionRepo persists session documents in the ephemeral store. It does not
// take the session lock itself; callers serialize their own load-mutate-save
// sequences.
type SessionRepo interface {
	Create(ctx context.Context, expectedPlayers int) (*model.Session, error)
	Load(ctx context.Context, code string) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
}

type sessionRepo struct {
	sessions cache.SessionCache
}

func NewSessionRepo(sessions cache.SessionCache) SessionRepo {
	return &sessionRepo{sessions: sessions}
}

func (r *sessionRepo) Create(ctx context.Context, expectedPlayers int) (*model.Session, error) {
	code, err := r.generateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session code: %w", err)
	}

	session := &model.Session{
		Code:            code,
		ExpectedPlayers: expectedPlayers,
		Phase:           model.PhaseRegistering,
		Players:         []model.Player{},
		Votes:           map[int]model.VoteTarget{},
		CreatedAt:       time.Now(),
	}
	if err := r.sessions.Set(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepo) Load(ctx context.Context, code string) (*model.Session, error) {
	session, err := r.sessions.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, model.NewGameError(model.CodeNotFound, "session does not exist, verify the session code")
	}
	if session.Votes == nil {
		session.Votes = map[int]model.VoteTarget{}
	}
	return session, nil
}

// Save re-serializes the full session and resets its TTL.
func (r *sessionRepo) Save(ctx context.Context, session *model.Session) error {
	return r.sessions.Set(ctx, session)
}

// generateCode creates a 6-char alphanumeric code not currently in use.
// Collisions are retried with a fresh random code a bounded number of times.
func (r *sessionRepo) generateCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		exists, err := r.sessions.Exists(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("exhausted attempts to find an unused code")
}

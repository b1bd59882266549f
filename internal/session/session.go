// Package session implements the shared-password gate.
package session

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/domain"
)

// ErrFlagNotFound is returned by a FlagStore when no flag is stored.
var ErrFlagNotFound = errors.New("session flag not found")

// Session is the explicit authentication context of one browser session.
type Session struct {
	ID            string
	Authenticated bool
}

// FlagStore persists the authenticated flag per session.
type FlagStore interface {
	SetFlag(ctx context.Context, sessionID, value string, ttl time.Duration) error
	GetFlag(ctx context.Context, sessionID string) (string, error)
	DeleteFlag(ctx context.Context, sessionID string) error
}

// Gatekeeper checks the shared site password and remembers successful logins.
type Gatekeeper struct {
	secret      []byte
	fingerprint string
	flags       FlagStore
	ttl         time.Duration
	logger      *zap.SugaredLogger
}

// NewGatekeeper creates a gatekeeper for the configured site password.
func NewGatekeeper(secret string, flags FlagStore, ttl time.Duration, logger *zap.SugaredLogger) *Gatekeeper {
	return &Gatekeeper{
		secret:      []byte(secret),
		fingerprint: Fingerprint(secret),
		flags:       flags,
		ttl:         ttl,
		logger:      logger,
	}
}

// Fingerprint derives the stored flag value from the secret. Rotating the
// secret changes the fingerprint and so invalidates existing sessions.
func Fingerprint(secret string) string {
	sum := sha256.Sum256([]byte("babytracker:" + secret))
	return hex.EncodeToString(sum[:])
}

// Authenticate compares candidate with the site password. On a match a new
// session id is minted and its flag persisted.
func (g *Gatekeeper) Authenticate(ctx context.Context, candidate string) (Session, error) {
	if len(g.secret) == 0 || subtle.ConstantTimeCompare([]byte(candidate), g.secret) != 1 {
		return Session{}, domain.ErrIncorrectPassword
	}

	id := uuid.NewString()
	if err := g.flags.SetFlag(ctx, id, g.fingerprint, g.ttl); err != nil {
		return Session{}, fmt.Errorf("failed to persist session flag: %w", err)
	}

	g.logger.Infow("Session authenticated", "session_id", id)
	return Session{ID: id, Authenticated: true}, nil
}

// CheckAuth reports whether sessionID carries a flag matching the current secret.
func (g *Gatekeeper) CheckAuth(ctx context.Context, sessionID string) Session {
	if sessionID == "" {
		return Session{}
	}
	stored, err := g.flags.GetFlag(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrFlagNotFound) {
			g.logger.Warnw("Failed to read session flag", "session_id", sessionID, "error", err)
		}
		return Session{ID: sessionID}
	}
	ok := subtle.ConstantTimeCompare([]byte(stored), []byte(g.fingerprint)) == 1
	return Session{ID: sessionID, Authenticated: ok}
}

// Logout clears the session flag.
func (g *Gatekeeper) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := g.flags.DeleteFlag(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session flag: %w", err)
	}
	return nil
}

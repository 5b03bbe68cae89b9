package session

import (
	"context"
	"errors"
	"time"

	"scenario-admin/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state of a logged-in browser.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Store keeps sessions and the per-session scenario list cache.
type Store interface {
	Create(ctx context.Context, token string, user models.User) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// Delete drops the session together with everything cached for it.
	Delete(ctx context.Context, id string) error
	CachedScenarios(ctx context.Context, id string) ([]models.Scenario, bool, error)
	CacheScenarios(ctx context.Context, id string, scenarios []models.Scenario) error
}

// expiryFor returns when a session for token should end: now+ttl, or the
// token's own exp claim if that comes first. The signature is not checked;
// the backend does that on every call.
func expiryFor(token string, now time.Time, ttl time.Duration) time.Time {
	expires := now.Add(ttl)
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return expires
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.After(now) && claims.ExpiresAt.Time.Before(expires) {
		return claims.ExpiresAt.Time
	}
	return expires
}

// Package session implements the server-side session store. A session is an
// opaque identifier bound to a user id in Redis; nothing else about the user
// is persisted in session storage, so every request resolves the identifier
// back to a fresh user lookup.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName carries the opaque session identifier.
const CookieName = "session_id"

// ErrNotFound means the identifier does not resolve to a live session.
var ErrNotFound = errors.New("session not found")

// Manager creates, resolves and destroys sessions in Redis and manages the
// session cookie.
type Manager struct {
	rdb    *redis.Client
	ttl    time.Duration
	domain string
	secure bool
}

func NewManager(rdb *redis.Client, ttl time.Duration, cookieDomain string, cookieSecure bool) *Manager {
	return &Manager{rdb: rdb, ttl: ttl, domain: cookieDomain, secure: cookieSecure}
}

func key(sid string) string { return "session:" + sid }

// Create binds a fresh opaque identifier to userID and returns it.
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	if err := m.rdb.Set(ctx, key(sid), userID, m.ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// Resolve returns the user id bound to sid, sliding the expiry on use.
func (m *Manager) Resolve(ctx context.Context, sid string) (string, error) {
	if sid == "" {
		return "", ErrNotFound
	}
	userID, err := m.rdb.Get(ctx, key(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	// Best-effort slide; a failed expiry only means the session ends sooner.
	_ = m.rdb.Expire(ctx, key(sid), m.ttl).Err()
	return userID, nil
}

// Destroy invalidates sid server-side.
func (m *Manager) Destroy(ctx context.Context, sid string) error {
	return m.rdb.Del(ctx, key(sid)).Err()
}

// SetCookie installs the session cookie on the response.
func (m *Manager) SetCookie(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sid, int(m.ttl.Seconds()), "/", m.domain, m.secure, true)
}

// ClearCookie instructs the client to drop its session cookie.
func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", m.domain, m.secure, true)
}

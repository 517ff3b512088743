package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/internal/application"
	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/pkg/response"
	"github.com/jolivares/cuaderno/pkg/session"
)

const (
	ctxUser      = "current_user"
	ctxUserID    = "user_id"
	ctxSessionID = "session_id"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/usuarios/ingreso"

// SessionStore is the slice of the session manager LoadSession touches.
type SessionStore interface {
	Resolve(ctx context.Context, sid string) (string, error)
	Destroy(ctx context.Context, sid string) error
	ClearCookie(c *gin.Context)
}

// UserLoader turns a session's user id into a live account.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (*entity.User, error)
}

// LoadSession resolves the session cookie to a fresh user record and stores
// it in the Gin context. Requests without a valid session pass through
// anonymous; RequireUser is the gate. A cookie pointing at a dead session or
// account is cleared so the browser stops sending it; a transient lookup
// failure leaves the stored session untouched and the request anonymous.
func LoadSession(sessions SessionStore, users UserLoader, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(session.CookieName)
		if err != nil || sid == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		userID, err := sessions.Resolve(ctx, sid)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				sessions.ClearCookie(c)
			} else {
				log.WithError(err).Warn("session resolve failed")
			}
			c.Next()
			return
		}
		user, err := users.GetUser(ctx, userID)
		if errors.Is(err, application.ErrNotFound) {
			// session points at a deactivated or vanished account
			if derr := sessions.Destroy(ctx, sid); derr != nil {
				log.WithError(derr).Warn("stale session destroy failed")
			}
			sessions.ClearCookie(c)
			c.Next()
			return
		}
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("session user lookup failed")
			c.Next()
			return
		}
		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Set(ctxSessionID, sid)
		c.Next()
	}
}

// RequireUser aborts anonymous requests. Page requests get a redirect to the
// login form with a flash; JSON requests get a 401 envelope.
func RequireUser(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		if wantsJSON(c) {
			response.AbortError(c, http.StatusUnauthorized, "debes iniciar sesión", nil)
			return
		}
		sessions.SetFlash(c, session.FlashError, "Debes iniciar sesión para continuar.")
		c.Redirect(http.StatusSeeOther, LoginPath)
		c.Abort()
	}
}

// RequireAdmin aborts requests from non-admin users. It assumes RequireUser
// already ran.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin() {
			response.AbortError(c, http.StatusForbidden, "acceso restringido", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user for this request, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

// SessionID returns the resolved session identifier, if any.
func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

func wantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

package session

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Flash kinds map onto the alert styles the templates render.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const flashCookie = "flash"

// Flash is a one-shot message surfaced on the next rendered page, typically
// set right before a redirect.
type Flash struct {
	Kind    string
	Message string
}

// SetFlash stores a one-shot message in a short-lived cookie.
func (m *Manager) SetFlash(c *gin.Context, kind, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	v := url.QueryEscape(kind + "|" + message)
	c.SetCookie(flashCookie, v, 60, "/", m.domain, m.secure, true)
}

// TakeFlash returns the pending message, if any, and clears it.
func (m *Manager) TakeFlash(c *gin.Context) (Flash, bool) {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return Flash{}, false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", m.domain, m.secure, true)

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return Flash{}, false
	}
	kind, msg, found := strings.Cut(decoded, "|")
	if !found {
		return Flash{Kind: FlashInfo, Message: decoded}, true
	}
	return Flash{Kind: kind, Message: msg}, true
}

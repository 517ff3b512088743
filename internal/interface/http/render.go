// Package handlers contains the Gin handlers for the rendered pages and the
// fetch-driven JSON endpoints.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jolivares/cuaderno/internal/interface/middleware"
	"github.com/jolivares/cuaderno/pkg/session"
)

// render writes an HTML page with the shared view data every template
// expects: the signed-in user (if any) and the pending flash message.
func render(c *gin.Context, sessions *session.Manager, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if u := middleware.CurrentUser(c); u != nil {
		data["Usuario"] = u
	}
	if f, ok := sessions.TakeFlash(c); ok {
		data["Flash"] = f
	}
	c.HTML(status, name, data)
}

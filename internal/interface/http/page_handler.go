package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jolivares/cuaderno/pkg/session"
)

// PageHandler serves the static public pages.
type PageHandler struct {
	Sessions *session.Manager
}

func NewPageHandler(sessions *session.Manager) *PageHandler {
	return &PageHandler{Sessions: sessions}
}

func (h *PageHandler) Index(c *gin.Context) {
	render(c, h.Sessions, http.StatusOK, "index.html", nil)
}

func (h *PageHandler) FAQ(c *gin.Context) {
	render(c, h.Sessions, http.StatusOK, "faq.html", nil)
}

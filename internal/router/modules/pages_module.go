package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jolivares/cuaderno/internal/container"
	handlers "github.com/jolivares/cuaderno/internal/interface/http"
	"github.com/jolivares/cuaderno/internal/interface/middleware"
)

// PagesModule wires the public pages and the contact form. The status route
// is the one admin-only endpoint.
type PagesModule struct {
	Pages    *handlers.PageHandler
	Contacts *handlers.ContactHandler
}

func NewPagesModule(pages *handlers.PageHandler, contacts *handlers.ContactHandler) *PagesModule {
	return &PagesModule{Pages: pages, Contacts: contacts}
}

func (m *PagesModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Pages.Index)
	rg.GET("/preguntas-frecuentes", m.Pages.FAQ)

	contactLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/contacto", m.Contacts.Show)
	rg.POST("/contacto", contactLimiter, m.Contacts.Submit)

	admin := rg.Group("/contacto")
	admin.Use(middleware.RequireUser(container.GetSessions()), middleware.RequireAdmin())
	admin.PUT("/:id/estado", m.Contacts.UpdateStatus)
}

package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jolivares/cuaderno/internal/container"
	handlers "github.com/jolivares/cuaderno/internal/interface/http"
	"github.com/jolivares/cuaderno/internal/interface/middleware"
)

// NoteModule wires the notes routes. Everything under /notas requires a
// session; ownership is enforced again in the service layer.
type NoteModule struct {
	Handler *handlers.NoteHandler
}

func NewNoteModule(h *handlers.NoteHandler) *NoteModule {
	return &NoteModule{Handler: h}
}

func (m *NoteModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/notas")
	g.Use(middleware.RequireUser(container.GetSessions()))
	g.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	{
		g.GET("", m.Handler.List)
		g.GET("/agregar", m.Handler.ShowCreate)
		g.POST("/nota-nueva", m.Handler.Create)
		g.GET("/editar/:id", m.Handler.ShowEdit)
		g.PUT("/editar/:id", m.Handler.Update)
		g.DELETE("/borrar/:id", m.Handler.Delete)
		g.GET("/buscar", m.Handler.Search)
	}
}

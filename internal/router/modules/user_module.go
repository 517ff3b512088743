package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jolivares/cuaderno/internal/container"
	handlers "github.com/jolivares/cuaderno/internal/interface/http"
	"github.com/jolivares/cuaderno/internal/interface/middleware"
)

// UserModule wires the account routes.
// Public: signup, login (rate limited per IP and route) and the email
// verification link. Session required: logout, profile, avatar upload and
// account deactivation.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	signupLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	g := rg.Group("/usuarios")
	g.GET("/registro", m.Handler.ShowRegister)
	g.POST("/registro", signupLimiter, m.Handler.Register)
	g.GET("/ingreso", m.Handler.ShowLogin)
	g.POST("/ingreso", loginLimiter, m.Handler.Login)
	g.GET("/verificar", m.Handler.VerifyEmail)

	auth := g.Group("/")
	auth.Use(middleware.RequireUser(container.GetSessions()))
	{
		auth.GET("/salir", m.Handler.Logout)
		auth.GET("/perfil", m.Handler.Profile)
		auth.POST("/perfil/avatar", m.Handler.UploadAvatar)
		auth.POST("/baja", m.Handler.Deactivate)
	}
}

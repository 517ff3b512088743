package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/internal/application"
	"github.com/jolivares/cuaderno/internal/interface/middleware"
	"github.com/jolivares/cuaderno/pkg/response"
	"github.com/jolivares/cuaderno/pkg/session"
)

// UserHandler serves the account pages: signup, login, logout, email
// verification and the profile.
type UserHandler struct {
	Auth     *application.AuthService
	Users    *application.UserService
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewUserHandler(auth *application.AuthService, users *application.UserService, sessions *session.Manager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Auth: auth, Users: users, Sessions: sessions, Logger: logger}
}

type signupForm struct {
	Name     string `form:"nombre"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func authMeta(c *gin.Context) application.AuthMeta {
	return application.AuthMeta{
		IP:        middleware.IPFromCtx(c),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString("request_id"),
	}
}

// ShowRegister renders the signup form. Signed-in users are sent to their
// notes instead.
func (h *UserHandler) ShowRegister(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/notas")
		return
	}
	render(c, h.Sessions, http.StatusOK, "registro.html", nil)
}

// Register handles the signup POST. A duplicate email produces the same
// flash and redirect as a successful signup so the form cannot be used to
// probe which addresses hold accounts.
func (h *UserHandler) Register(c *gin.Context) {
	var form signupForm
	_ = c.ShouldBind(&form)

	if verr := application.ValidateSignup(form.Name, form.Email, form.Password); verr != nil {
		render(c, h.Sessions, http.StatusBadRequest, "registro.html", gin.H{
			"Errores": verr.Details(),
			"Nombre":  form.Name,
			"Email":   form.Email,
		})
		return
	}

	u, err := h.Auth.Register(c.Request.Context(), form.Name, form.Email, form.Password, authMeta(c))
	switch {
	case errors.Is(err, application.ErrEmailTaken):
		// fall through to the generic flash below
	case err != nil:
		h.Logger.WithError(err).Error("signup failed")
		render(c, h.Sessions, http.StatusInternalServerError, "registro.html", gin.H{
			"Errores": map[string]string{"form": "No pudimos crear la cuenta, intenta de nuevo."},
			"Nombre":  form.Name,
			"Email":   form.Email,
		})
		return
	default:
		h.Users.EnqueueVerificationEmail(c.Request.Context(), u)
	}

	h.Sessions.SetFlash(c, session.FlashSuccess, "Cuenta registrada. Revisa tu correo para confirmarla.")
	c.Redirect(http.StatusSeeOther, "/usuarios/ingreso")
}

// ShowLogin renders the login form.
func (h *UserHandler) ShowLogin(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, "/notas")
		return
	}
	render(c, h.Sessions, http.StatusOK, "ingreso.html", nil)
}

// Login handles the login POST and installs the session cookie on success.
func (h *UserHandler) Login(c *gin.Context) {
	var form loginForm
	_ = c.ShouldBind(&form)

	u, sid, err := h.Auth.Login(c.Request.Context(), form.Email, form.Password, authMeta(c))
	if err != nil {
		msg := "Correo o contraseña incorrectos."
		status := http.StatusUnauthorized
		if errors.Is(err, application.ErrAccountLocked) {
			msg = "Cuenta bloqueada temporalmente por intentos fallidos. Intenta más tarde."
			status = http.StatusForbidden
		} else if !errors.Is(err, application.ErrInvalidCredentials) {
			h.Logger.WithError(err).Error("login failed")
			msg = "No pudimos iniciar sesión, intenta de nuevo."
			status = http.StatusInternalServerError
		}
		render(c, h.Sessions, status, "ingreso.html", gin.H{
			"Errores": map[string]string{"form": msg},
			"Email":   form.Email,
		})
		return
	}

	h.Sessions.SetCookie(c, sid)
	h.Sessions.SetFlash(c, session.FlashSuccess, "Hola de nuevo, "+u.Name+".")
	c.Redirect(http.StatusSeeOther, "/notas")
}

// Logout destroys the session and clears the cookie.
func (h *UserHandler) Logout(c *gin.Context) {
	u := middleware.CurrentUser(c)
	h.Auth.Logout(c.Request.Context(), middleware.SessionID(c), u.ID, authMeta(c))
	h.Sessions.ClearCookie(c)
	h.Sessions.SetFlash(c, session.FlashInfo, "Sesión cerrada.")
	c.Redirect(http.StatusSeeOther, "/")
}

// VerifyEmail consumes the token from the verification link.
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if err := h.Auth.ConfirmEmail(c.Request.Context(), token); err != nil {
		h.Sessions.SetFlash(c, session.FlashError, "El enlace de verificación no es válido o ya expiró.")
		c.Redirect(http.StatusSeeOther, "/usuarios/ingreso")
		return
	}
	h.Sessions.SetFlash(c, session.FlashSuccess, "Correo verificado.")
	c.Redirect(http.StatusSeeOther, "/usuarios/ingreso")
}

// Profile renders the account page.
func (h *UserHandler) Profile(c *gin.Context) {
	render(c, h.Sessions, http.StatusOK, "perfil.html", nil)
}

// UploadAvatar stores an avatar image and records its public URL.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	u := middleware.CurrentUser(c)
	file, err := c.FormFile("avatar")
	if err != nil {
		h.Sessions.SetFlash(c, session.FlashError, "Selecciona una imagen para subir.")
		c.Redirect(http.StatusSeeOther, "/usuarios/perfil")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "no se pudo leer el archivo", nil)
		return
	}
	defer func() { _ = src.Close() }()

	contentType := file.Header.Get("Content-Type")
	if _, err := h.Users.UploadAvatar(c.Request.Context(), u.ID, src, file.Filename, contentType); err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("avatar upload failed")
		h.Sessions.SetFlash(c, session.FlashError, "No pudimos subir la imagen.")
		c.Redirect(http.StatusSeeOther, "/usuarios/perfil")
		return
	}
	h.Sessions.SetFlash(c, session.FlashSuccess, "Imagen de perfil actualizada.")
	c.Redirect(http.StatusSeeOther, "/usuarios/perfil")
}

// Deactivate performs the logical account delete and ends the session.
func (h *UserHandler) Deactivate(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if err := h.Auth.Deactivate(c.Request.Context(), middleware.SessionID(c), u.ID, authMeta(c)); err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("deactivate failed")
		h.Sessions.SetFlash(c, session.FlashError, "No pudimos dar de baja la cuenta.")
		c.Redirect(http.StatusSeeOther, "/usuarios/perfil")
		return
	}
	h.Sessions.ClearCookie(c)
	h.Sessions.SetFlash(c, session.FlashInfo, "Cuenta dada de baja.")
	c.Redirect(http.StatusSeeOther, "/")
}

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

// ContactHandler serves the public contact form and the admin status update.
type ContactHandler struct {
	Contacts *application.ContactService
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewContactHandler(contacts *application.ContactService, sessions *session.Manager, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{Contacts: contacts, Sessions: sessions, Logger: logger}
}

type contactForm struct {
	Name    string `form:"nombre"`
	Email   string `form:"email"`
	Subject string `form:"asunto"`
	Body    string `form:"mensaje"`
}

type statusRequest struct {
	Status string `json:"estado" binding:"required"`
}

// Show renders the contact form, pre-filling name and email for signed-in
// visitors.
func (h *ContactHandler) Show(c *gin.Context) {
	data := gin.H{}
	if u := middleware.CurrentUser(c); u != nil {
		data["Nombre"] = u.Name
		data["Email"] = u.Email
	}
	render(c, h.Sessions, http.StatusOK, "contacto.html", data)
}

// Submit stores the message and redirects back with a flash.
func (h *ContactHandler) Submit(c *gin.Context) {
	var form contactForm
	_ = c.ShouldBind(&form)

	in := application.ContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Body:    form.Body,
		IP:      middleware.IPFromCtx(c),
	}
	if u := middleware.CurrentUser(c); u != nil {
		in.UserID = u.ID
	}

	if _, err := h.Contacts.Submit(c.Request.Context(), in); err != nil {
		var verr *application.ValidationError
		if errors.As(err, &verr) {
			render(c, h.Sessions, http.StatusBadRequest, "contacto.html", gin.H{
				"Errores": verr.Details(),
				"Nombre":  form.Name,
				"Email":   form.Email,
				"Asunto":  form.Subject,
				"Mensaje": form.Body,
			})
			return
		}
		h.Logger.WithError(err).Error("contact submit failed")
		h.Sessions.SetFlash(c, session.FlashError, "No pudimos enviar tu mensaje, intenta de nuevo.")
		c.Redirect(http.StatusSeeOther, "/contacto")
		return
	}

	h.Sessions.SetFlash(c, session.FlashSuccess, "Mensaje enviado. Te responderemos pronto.")
	c.Redirect(http.StatusSeeOther, "/contacto")
}

// UpdateStatus moves a message through its workflow. Admin only.
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "payload inválido", nil)
		return
	}
	id := c.Param("id")
	if err := h.Contacts.AdvanceStatus(c.Request.Context(), id, req.Status); err != nil {
		var verr *application.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Error(c, http.StatusBadRequest, "estado inválido", verr.Details())
		case errors.Is(err, application.ErrNotFound):
			response.Error(c, http.StatusNotFound, "mensaje no encontrado", nil)
		default:
			h.Logger.WithError(err).Error("contact status update failed")
			response.Error(c, http.StatusInternalServerError, "error interno", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"id": id, "estado": req.Status}, "estado actualizado", nil)
}

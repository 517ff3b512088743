package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/internal/application"
	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/interface/middleware"
	"github.com/jolivares/cuaderno/pkg/response"
	"github.com/jolivares/cuaderno/pkg/session"
)

// NoteHandler serves the notes pages and the fetch-driven note mutations.
type NoteHandler struct {
	Notes    *application.NoteService
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewNoteHandler(notes *application.NoteService, sessions *session.Manager, logger *logrus.Logger) *NoteHandler {
	return &NoteHandler{Notes: notes, Sessions: sessions, Logger: logger}
}

type noteForm struct {
	Title       string `form:"titulo" json:"titulo"`
	Description string `form:"descripcion" json:"descripcion"`
}

// noteView is the JSON shape for a note. PasswordHash-style internals never
// appear here; neither does the owner id of anyone else's note, because
// handlers only ever emit the requester's own rows.
type noteView struct {
	ID          string    `json:"id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	UpdatedAt   time.Time `json:"actualizada_en"`
	CreatedAt   time.Time `json:"creada_en"`
}

func toNoteView(n *entity.Note) noteView {
	return noteView{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		UpdatedAt:   n.UpdatedAt,
		CreatedAt:   n.CreatedAt,
	}
}

func toNoteViews(ns []entity.Note) []noteView {
	out := make([]noteView, 0, len(ns))
	for i := range ns {
		out = append(out, toNoteView(&ns[i]))
	}
	return out
}

// List renders the notes page with search and pagination from the query
// string.
func (h *NoteHandler) List(c *gin.Context) {
	u := middleware.CurrentUser(c)
	page, _ := strconv.Atoi(c.Query("pagina"))
	in := application.ListInput{
		Search: c.Query("busqueda"),
		Page:   page,
	}
	notes, total, err := h.Notes.ListForOwner(c.Request.Context(), u.ID, in)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("list notes failed")
		render(c, h.Sessions, http.StatusInternalServerError, "notas.html", gin.H{
			"Errores": map[string]string{"form": "No pudimos cargar tus notas."},
		})
		return
	}
	if page < 1 {
		page = 1
	}
	render(c, h.Sessions, http.StatusOK, "notas.html", gin.H{
		"Notas":    notes,
		"Total":    total,
		"Busqueda": in.Search,
		"Pagina":   page,
	})
}

// ShowCreate renders the empty note form.
func (h *NoteHandler) ShowCreate(c *gin.Context) {
	render(c, h.Sessions, http.StatusOK, "nota_form.html", gin.H{
		"Accion": "/notas/nota-nueva",
	})
}

// Create handles the note form POST and redirects back to the list.
func (h *NoteHandler) Create(c *gin.Context) {
	u := middleware.CurrentUser(c)
	var form noteForm
	_ = c.ShouldBind(&form)

	_, err := h.Notes.Create(c.Request.Context(), u.ID, form.Title, form.Description)
	if err != nil {
		var verr *application.ValidationError
		if errors.As(err, &verr) {
			render(c, h.Sessions, http.StatusBadRequest, "nota_form.html", gin.H{
				"Accion":      "/notas/nota-nueva",
				"Errores":     verr.Details(),
				"Titulo":      form.Title,
				"Descripcion": form.Description,
			})
			return
		}
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("create note failed")
		h.Sessions.SetFlash(c, session.FlashError, "No pudimos guardar la nota.")
		c.Redirect(http.StatusSeeOther, "/notas")
		return
	}
	h.Sessions.SetFlash(c, session.FlashSuccess, "Nota creada.")
	c.Redirect(http.StatusSeeOther, "/notas")
}

// ShowEdit renders the note form pre-filled with an existing note.
func (h *NoteHandler) ShowEdit(c *gin.Context) {
	u := middleware.CurrentUser(c)
	id := c.Param("id")
	n, err := h.Notes.GetForOwner(c.Request.Context(), id, u.ID)
	if err != nil {
		h.notFoundOrForbiddenPage(c, err)
		return
	}
	render(c, h.Sessions, http.StatusOK, "nota_form.html", gin.H{
		"Accion":      "/notas/editar/" + n.ID,
		"Nota":        n,
		"Titulo":      n.Title,
		"Descripcion": n.Description,
	})
}

// Update applies an edit over PUT and answers JSON.
func (h *NoteHandler) Update(c *gin.Context) {
	u := middleware.CurrentUser(c)
	id := c.Param("id")
	var form noteForm
	_ = c.ShouldBind(&form)

	n, err := h.Notes.Update(c.Request.Context(), id, u.ID, form.Title, form.Description)
	if err != nil {
		h.writeNoteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toNoteView(n), "nota actualizada", nil)
}

// Delete soft-deletes over DELETE and answers JSON.
func (h *NoteHandler) Delete(c *gin.Context) {
	u := middleware.CurrentUser(c)
	id := c.Param("id")
	if err := h.Notes.SoftDelete(c.Request.Context(), id, u.ID); err != nil {
		h.writeNoteError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"id": id, "eliminada": true}, "nota eliminada", nil)
}

// Search answers the live search box with JSON.
func (h *NoteHandler) Search(c *gin.Context) {
	u := middleware.CurrentUser(c)
	q := c.Query("q")
	size, _ := strconv.Atoi(c.Query("limite"))
	notes, err := h.Notes.Search(c.Request.Context(), u.ID, q, size)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("note search failed")
		response.Error(c, http.StatusInternalServerError, "la búsqueda no está disponible", nil)
		return
	}
	response.Success(c, http.StatusOK, toNoteViews(notes), "resultados", gin.H{"total": len(notes)})
}

func (h *NoteHandler) writeNoteError(c *gin.Context, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, "datos inválidos", verr.Details())
	case errors.Is(err, application.ErrForbidden):
		response.Error(c, http.StatusForbidden, "no puedes modificar esta nota", nil)
	case errors.Is(err, application.ErrNotFound):
		response.Error(c, http.StatusNotFound, "nota no encontrada", nil)
	default:
		h.Logger.WithError(err).Error("note operation failed")
		response.Error(c, http.StatusInternalServerError, "error interno", nil)
	}
}

func (h *NoteHandler) notFoundOrForbiddenPage(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrForbidden):
		h.Sessions.SetFlash(c, session.FlashError, "Esa nota no te pertenece.")
	case errors.Is(err, application.ErrNotFound):
		h.Sessions.SetFlash(c, session.FlashError, "La nota no existe.")
	default:
		h.Logger.WithError(err).Error("load note failed")
		h.Sessions.SetFlash(c, session.FlashError, "No pudimos cargar la nota.")
	}
	c.Redirect(http.StatusSeeOther, "/notas")
}

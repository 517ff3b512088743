package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
	"github.com/jolivares/cuaderno/pkg/audit"
	"github.com/jolivares/cuaderno/pkg/sanitize"
)

// Field limits for a note.
const (
	NoteTitleMax       = 30
	NoteDescriptionMax = 500
)

// ListInput narrows and pages a note listing.
type ListInput struct {
	Search   string
	Page     int
	PageSize int
}

// NoteService owns note validation, ownership enforcement and persistence,
// plus the best-effort Elasticsearch mirror used by the search endpoint.
type NoteService struct {
	Notes   repository.NoteRepository
	Audit   *audit.Recorder
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewNoteService(notes repository.NoteRepository, rec *audit.Recorder, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *NoteService {
	return &NoteService{Notes: notes, Audit: rec, Logger: logger, ES: es, ESIndex: esIndex}
}

// ValidateNote trims, strips markup from the description and checks the
// length bounds. It returns the cleaned values alongside any violations.
func ValidateNote(title, description string) (string, string, *ValidationError) {
	title = strings.TrimSpace(title)
	description = sanitize.Plain(description)

	e := &ValidationError{}
	if title == "" {
		e.add("titulo", "required", "is required")
	} else if len([]rune(title)) > NoteTitleMax {
		e.add("titulo", "max", fmt.Sprintf("must be at most %d characters long", NoteTitleMax))
	}
	if description == "" {
		e.add("descripcion", "required", "is required")
	} else if len([]rune(description)) > NoteDescriptionMax {
		e.add("descripcion", "max", fmt.Sprintf("must be at most %d characters long", NoteDescriptionMax))
	}
	return title, description, e.orNil()
}

// Create validates input and persists a new active note for owner.
func (s *NoteService) Create(ctx context.Context, ownerID, title, description string) (*entity.Note, error) {
	title, description, verr := ValidateNote(title, description)
	if verr != nil {
		return nil, verr
	}
	n := &entity.Note{UserID: ownerID, Title: title, Description: description}
	if err := s.Notes.Create(ctx, n); err != nil {
		return nil, err
	}
	s.indexNote(ctx, n)
	return n, nil
}

// ListForOwner returns the owner's active notes and the total match count.
func (s *NoteService) ListForOwner(ctx context.Context, ownerID string, in ListInput) ([]entity.Note, int, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.PageSize < 1 || in.PageSize > 50 {
		in.PageSize = 10
	}
	return s.Notes.ListByOwner(ctx, ownerID, repository.NoteFilter{
		Search:   in.Search,
		Page:     in.Page,
		PageSize: in.PageSize,
	})
}

// GetForOwner fetches a note and enforces ownership, for the edit form.
func (s *NoteService) GetForOwner(ctx context.Context, id, requesterID string) (*entity.Note, error) {
	n, err := s.Notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil || !n.IsActive {
		return nil, ErrNotFound
	}
	if !n.OwnedBy(requesterID) {
		s.forbidden(requesterID, n, "read")
		return nil, ErrForbidden
	}
	return n, nil
}

// Update mutates a note after re-verifying ownership. The store-side
// predicate checks owner and id again at the moment of mutation, so a
// concurrent reassignment or deactivation cannot slip through between the
// read and the write.
func (s *NoteService) Update(ctx context.Context, id, requesterID, title, description string) (*entity.Note, error) {
	title, description, verr := ValidateNote(title, description)
	if verr != nil {
		return nil, verr
	}

	n, err := s.Notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil || !n.IsActive {
		return nil, ErrNotFound
	}
	if !n.OwnedBy(requesterID) {
		s.forbidden(requesterID, n, "update")
		return nil, ErrForbidden
	}

	updated, matched, err := s.Notes.Update(ctx, id, requesterID, repository.NoteUpdate{
		Title:       title,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	if !matched {
		// The note changed between the ownership read and the update.
		return nil, ErrNotFound
	}
	s.indexNote(ctx, updated)
	return updated, nil
}

// SoftDelete deactivates a note after the same ownership check as Update.
// Deleting an already-inactive note is a no-op, not an error.
func (s *NoteService) SoftDelete(ctx context.Context, id, requesterID string) error {
	n, err := s.Notes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotFound
	}
	if !n.OwnedBy(requesterID) {
		s.forbidden(requesterID, n, "delete")
		return ErrForbidden
	}

	matched, err := s.Notes.SoftDelete(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	n.IsActive = false
	s.indexNote(ctx, n)
	return nil
}

func (s *NoteService) forbidden(requesterID string, n *entity.Note, op string) {
	s.Logger.WithFields(logrus.Fields{
		"note_id":   n.ID,
		"owner_id":  n.UserID,
		"requester": requesterID,
		"op":        op,
	}).Warn("ownership check failed")
	s.Audit.Record(audit.Event{
		Action: audit.ActionNoteForbidden,
		UserID: requesterID,
		Detail: op + " " + n.ID,
	})
}

// indexNote mirrors a note into Elasticsearch. The mirror is best effort:
// errors are logged and swallowed, and a nil client disables it entirely.
func (s *NoteService) indexNote(ctx context.Context, n *entity.Note) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          n.ID,
		"user_id":     n.UserID,
		"title":       n.Title,
		"description": n.Description,
		"is_active":   n.IsActive,
		"updated_at":  n.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: n.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("note_id", n.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithFields(logrus.Fields{"status": res.Status(), "note_id": n.ID}).Warn("es index response error")
	}
}

// Search queries the Elasticsearch mirror for the owner's active notes and
// falls back to the SQL listing when the mirror is unavailable.
func (s *NoteService) Search(ctx context.Context, ownerID, q string, size int) ([]entity.Note, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.ES == nil || s.ESIndex == "" {
		notes, _, err := s.ListForOwner(ctx, ownerID, ListInput{Search: q, PageSize: size})
		return notes, err
	}

	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": ownerID}},
					map[string]any{"term": map[string]any{"is_active": true}},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		s.Logger.WithError(err).Warn("es search failed, falling back to sql")
		notes, _, lerr := s.ListForOwner(ctx, ownerID, ListInput{Search: q, PageSize: size})
		return notes, lerr
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).Warn("es search response error, falling back to sql")
		notes, _, lerr := s.ListForOwner(ctx, ownerID, ListInput{Search: q, PageSize: size})
		return notes, lerr
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID          string `json:"id"`
					UserID      string `json:"user_id"`
					Title       string `json:"title"`
					Description string `json:"description"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Note, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		// The mirror can lag; never let it leak another owner's note.
		if h.Source.UserID != ownerID {
			continue
		}
		out = append(out, entity.Note{
			ID:          h.Source.ID,
			UserID:      h.Source.UserID,
			Title:       h.Source.Title,
			Description: h.Source.Description,
			IsActive:    true,
		})
	}
	return out, nil
}

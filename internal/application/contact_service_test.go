package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
)

type fakeContactRepo struct {
	mu       sync.Mutex
	seq      int
	messages map[string]*entity.ContactMessage
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{messages: make(map[string]*entity.ContactMessage)}
}

func (r *fakeContactRepo) Create(_ context.Context, m *entity.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.ID = fmt.Sprintf("m%d", r.seq)
	m.Status = entity.ContactPending
	cp := *m
	r.messages[m.ID] = &cp
	return nil
}

func (r *fakeContactRepo) GetByID(_ context.Context, id string) (*entity.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messages[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeContactRepo) UpdateStatus(_ context.Context, id, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return false, nil
	}
	m.Status = status
	return true, nil
}

var _ repository.ContactMessageRepository = (*fakeContactRepo)(nil)

func newContactService(t *testing.T) (*ContactService, *fakeContactRepo) {
	t.Helper()
	repo := newFakeContactRepo()
	return NewContactService(repo, nil, "", testLogger()), repo
}

func TestContactSubmit(t *testing.T) {
	svc, repo := newContactService(t)

	m, err := svc.Submit(context.Background(), ContactInput{
		Name:    "Luis",
		Email:   "Luis@Example.com",
		Subject: "Consulta <b>urgente</b>",
		Body:    "¿Cómo recupero mi cuenta?",
		IP:      "203.0.113.7",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ContactPending, m.Status)
	assert.Equal(t, "luis@example.com", m.Email)
	assert.Equal(t, "Consulta urgente", m.Subject)

	stored, err := repo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "203.0.113.7", stored.SourceIP)
}

func TestContactSubmitValidation(t *testing.T) {
	svc, _ := newContactService(t)

	_, err := svc.Submit(context.Background(), ContactInput{Email: "no-es-email"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	details := verr.Details()
	assert.Contains(t, details, "nombre")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "asunto")
	assert.Contains(t, details, "mensaje")
}

func TestContactAdvanceStatus(t *testing.T) {
	svc, repo := newContactService(t)
	m, err := svc.Submit(context.Background(), ContactInput{
		Name: "Luis", Email: "luis@example.com", Subject: "Hola", Body: "Mensaje",
	})
	require.NoError(t, err)

	require.NoError(t, svc.AdvanceStatus(context.Background(), m.ID, entity.ContactRead))
	stored, _ := repo.GetByID(context.Background(), m.ID)
	assert.Equal(t, entity.ContactRead, stored.Status)

	assert.ErrorIs(t, svc.AdvanceStatus(context.Background(), "missing", entity.ContactRead), ErrNotFound)

	var verr *ValidationError
	assert.ErrorAs(t, svc.AdvanceStatus(context.Background(), m.ID, "archived"), &verr)
}

package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoteService(t *testing.T) (*NoteService, *fakeNoteRepo) {
	t.Helper()
	notes := newFakeNoteRepo()
	return NewNoteService(notes, nil, testLogger(), nil, ""), notes
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, _ := newNoteService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner", "  Lista súper  ", "  comprar <b>pan</b> y leche  ")
	require.NoError(t, err)

	got, err := svc.GetForOwner(ctx, created.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Lista súper", got.Title)
	assert.Equal(t, "comprar pan y leche", got.Description)
	assert.True(t, got.IsActive)
	assert.Equal(t, "owner", got.UserID)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newNoteService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		title    string
		desc     string
		badField string
	}{
		{"empty title", "", "algo", "titulo"},
		{"title too long", strings.Repeat("t", NoteTitleMax+1), "algo", "titulo"},
		{"empty description", "titulo", "   ", "descripcion"},
		{"description too long", "titulo", strings.Repeat("d", NoteDescriptionMax+1), "descripcion"},
		{"markup-only description", "titulo", "<script>x()</script>", "descripcion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "owner", tt.title, tt.desc)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Details(), tt.badField)
		})
	}
}

func TestTitleLimitCountsRunes(t *testing.T) {
	svc, _ := newNoteService(t)
	title := strings.Repeat("ñ", NoteTitleMax) // 30 runes, 60 bytes

	n, err := svc.Create(context.Background(), "owner", title, "desc")
	require.NoError(t, err)
	assert.Equal(t, title, n.Title)
}

func TestUpdateByOwner(t *testing.T) {
	svc, repo := newNoteService(t)
	ctx := context.Background()
	n, err := svc.Create(ctx, "owner", "antes", "texto viejo")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, n.ID, "owner", "despues", "texto <i>nuevo</i>")
	require.NoError(t, err)
	assert.Equal(t, "despues", updated.Title)
	assert.Equal(t, "texto nuevo", updated.Description)
	assert.True(t, updated.UpdatedAt.After(n.UpdatedAt))

	stored := repo.raw(n.ID)
	assert.Equal(t, "despues", stored.Title)
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	svc, repo := newNoteService(t)
	ctx := context.Background()
	n, err := svc.Create(ctx, "owner", "mia", "privada")
	require.NoError(t, err)

	_, err = svc.Update(ctx, n.ID, "intruder", "robada", "texto ajeno")
	assert.ErrorIs(t, err, ErrForbidden)

	stored := repo.raw(n.ID)
	assert.Equal(t, "mia", stored.Title)
	assert.Equal(t, "privada", stored.Description)
}

func TestUpdateMissingNote(t *testing.T) {
	svc, _ := newNoteService(t)
	_, err := svc.Update(context.Background(), "missing", "owner", "titulo", "desc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteByNonOwnerForbidden(t *testing.T) {
	svc, repo := newNoteService(t)
	ctx := context.Background()
	n, err := svc.Create(ctx, "owner", "mia", "privada")
	require.NoError(t, err)

	err = svc.SoftDelete(ctx, n.ID, "intruder")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.True(t, repo.raw(n.ID).IsActive)
}

func TestSoftDeleteKeepsRowAndIsIdempotent(t *testing.T) {
	svc, repo := newNoteService(t)
	ctx := context.Background()
	n, err := svc.Create(ctx, "owner", "borrar", "pronto")
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, n.ID, "owner"))
	stored := repo.raw(n.ID)
	require.NotNil(t, stored, "soft delete must retain the row")
	assert.False(t, stored.IsActive)
	deletedAt := stored.UpdatedAt

	// Deleting again: no error, no further state change.
	require.NoError(t, svc.SoftDelete(ctx, n.ID, "owner"))
	again := repo.raw(n.ID)
	assert.False(t, again.IsActive)
	assert.Equal(t, deletedAt, again.UpdatedAt)
}

func TestListForOwnerScoping(t *testing.T) {
	svc, _ := newNoteService(t)
	ctx := context.Background()

	mine1, err := svc.Create(ctx, "owner", "primera", "aaa")
	require.NoError(t, err)
	mine2, err := svc.Create(ctx, "owner", "segunda", "bbb")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "someone-else", "ajena", "ccc")
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, mine1.ID, "owner"))

	notes, total, err := svc.ListForOwner(ctx, "owner", ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notes, 1)
	assert.Equal(t, mine2.ID, notes[0].ID)
	for _, n := range notes {
		assert.True(t, n.IsActive)
		assert.Equal(t, "owner", n.UserID)
	}
}

func TestListSearchAndOrder(t *testing.T) {
	svc, _ := newNoteService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "owner", "Recetas", "tarta de manzana")
	require.NoError(t, err)
	b, err := svc.Create(ctx, "owner", "Compras", "manzanas y peras")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner", "Trabajo", "reunión lunes")
	require.NoError(t, err)

	// Case-insensitive match on title or description, newest update first.
	notes, total, err := svc.ListForOwner(ctx, "owner", ListInput{Search: "MANZANA"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, notes, 2)
	assert.Equal(t, b.ID, notes[0].ID)
	assert.Equal(t, a.ID, notes[1].ID)
}

func TestListPagination(t *testing.T) {
	svc, _ := newNoteService(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := svc.Create(ctx, "owner", "nota", "contenido")
		require.NoError(t, err)
	}

	page1, total, err := svc.ListForOwner(ctx, "owner", ListInput{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Len(t, page1, 3)

	page3, total, err := svc.ListForOwner(ctx, "owner", ListInput{Page: 3, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Len(t, page3, 1)
}

func TestSearchFallsBackToSQLWithoutES(t *testing.T) {
	svc, _ := newNoteService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "owner", "apuntes", "curso de go")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "other", "apuntes", "curso de go")
	require.NoError(t, err)

	notes, err := svc.Search(ctx, "owner", "curso", 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "owner", notes[0].UserID)
}

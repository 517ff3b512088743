package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// --- user repository fake ---

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func copyUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("u%d", r.seq)
	u.IsActive = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyUser(r.users[id]), nil
}

func (r *fakeUserRepo) GetActiveByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) && u.IsActive {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) RecordLoginFailure(_ context.Context, id string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, nil, nil
	}
	u.LoginAttempts++
	if u.LoginAttempts >= threshold {
		until := time.Now().Add(lockFor)
		u.LockUntil = &until
	}
	return u.LoginAttempts, u.LockUntil, nil
}

func (r *fakeUserRepo) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LoginAttempts = 0
		u.LockUntil = nil
		u.LastLogin = &at
	}
	return nil
}

func (r *fakeUserRepo) SetEmailVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.EmailVerified = true
	}
	return nil
}

func (r *fakeUserRepo) SetAvatarURL(_ context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.AvatarURL = url
	}
	return nil
}

func (r *fakeUserRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsActive = false
	}
	return nil
}

// lockUser force-sets lock state, for arranging expiry scenarios.
func (r *fakeUserRepo) lockUser(id string, until time.Time, attempts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LockUntil = &until
		u.LoginAttempts = attempts
	}
}

func (r *fakeUserRepo) attempts(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u.LoginAttempts
	}
	return -1
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// --- note repository fake ---

type fakeNoteRepo struct {
	mu    sync.Mutex
	seq   int
	notes map[string]*entity.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[string]*entity.Note)}
}

func copyNote(n *entity.Note) *entity.Note {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}

func (r *fakeNoteRepo) Create(_ context.Context, n *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.ID = fmt.Sprintf("n%d", r.seq)
	n.IsActive = true
	// Strictly increasing timestamps keep recency ordering deterministic.
	n.CreatedAt = time.Unix(0, int64(r.seq)*int64(time.Second))
	n.UpdatedAt = n.CreatedAt
	r.notes[n.ID] = copyNote(n)
	return nil
}

func (r *fakeNoteRepo) GetByID(_ context.Context, id string) (*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyNote(r.notes[id]), nil
}

func (r *fakeNoteRepo) ListByOwner(_ context.Context, ownerID string, f repository.NoteFilter) ([]entity.Note, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(f.Search))
	var matched []entity.Note
	for _, n := range r.notes {
		if n.UserID != ownerID {
			continue
		}
		if !n.IsActive && !f.IncludeInactive {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(n.Title), q) &&
			!strings.Contains(strings.ToLower(n.Description), q) {
			continue
		}
		matched = append(matched, *n)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	total := len(matched)
	start := (f.Page - 1) * f.PageSize
	if start > total {
		start = total
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *fakeNoteRepo) Update(_ context.Context, id, ownerID string, fields repository.NoteUpdate) (*entity.Note, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.UserID != ownerID || !n.IsActive {
		return nil, false, nil
	}
	r.seq++
	n.Title = fields.Title
	n.Description = fields.Description
	n.UpdatedAt = time.Unix(0, int64(r.seq)*int64(time.Second))
	return copyNote(n), true, nil
}

func (r *fakeNoteRepo) SoftDelete(_ context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.UserID != ownerID {
		return false, nil
	}
	if n.IsActive {
		n.IsActive = false
		r.seq++
		n.UpdatedAt = time.Unix(0, int64(r.seq)*int64(time.Second))
	}
	return true, nil
}

func (r *fakeNoteRepo) raw(id string) *entity.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyNote(r.notes[id])
}

var _ repository.NoteRepository = (*fakeNoteRepo)(nil)

// --- credential store fake ---

// fakeCreds is a fast stand-in for bcrypt: the digest embeds the plaintext
// plus a per-call counter, so hashing is salted-ish and Verify is exact.
type fakeCreds struct {
	mu       sync.Mutex
	n        int
	verified []string // digests passed to Verify, in order
}

func (c *fakeCreds) Hash(plain string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("digest-%d:%s", c.n, plain), nil
}

func (c *fakeCreds) Verify(plain, digest string) bool {
	c.mu.Lock()
	c.verified = append(c.verified, digest)
	c.mu.Unlock()
	if !strings.HasPrefix(digest, "digest-") {
		return false
	}
	_, stored, found := strings.Cut(digest, ":")
	return found && stored == plain
}

func (c *fakeCreds) DummyDigest() string {
	return "digest-0:decoy"
}

// --- session store fake ---

type fakeSessions struct {
	mu          sync.Mutex
	n           int
	sessions    map[string]string
	destroyErr  error
	destroyedOf []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]string)}
}

func (s *fakeSessions) Create(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	sid := fmt.Sprintf("sid-%d", s.n)
	s.sessions[sid] = userID
	return sid, nil
}

func (s *fakeSessions) Destroy(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyedOf = append(s.destroyedOf, sid)
	if s.destroyErr != nil {
		return s.destroyErr
	}
	delete(s.sessions, sid)
	return nil
}

var errRedisDown = errors.New("session backend unavailable")

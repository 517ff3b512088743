package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
	"github.com/jolivares/cuaderno/pkg/audit"
	"github.com/jolivares/cuaderno/pkg/sanitize"
	"github.com/jolivares/cuaderno/pkg/tokens"
)

// LockoutPolicy holds the configured lockout knobs: how many consecutive
// failures trip the lock and how long the lock lasts.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// AuthMeta carries the request-scoped facts recorded with every attempt.
type AuthMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

// CredentialStore is the hashing/verification contract; satisfied by
// credential.Store.
type CredentialStore interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
	DummyDigest() string
}

// SessionStore is the subset of the session manager the authenticator needs;
// satisfied by session.Manager.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Destroy(ctx context.Context, sid string) error
}

// AuthService orchestrates credential lookup, verification, lockout
// enforcement and session establishment.
type AuthService struct {
	Users    repository.UserRepository
	Creds    CredentialStore
	Sessions SessionStore
	Verify   *tokens.VerifyManager
	Audit    *audit.Recorder
	Logger   *logrus.Logger
	Lockout  LockoutPolicy
}

func NewAuthService(users repository.UserRepository, creds CredentialStore, sessions SessionStore, verify *tokens.VerifyManager, rec *audit.Recorder, logger *logrus.Logger, lockout LockoutPolicy) *AuthService {
	return &AuthService{Users: users, Creds: creds, Sessions: sessions, Verify: verify, Audit: rec, Logger: logger, Lockout: lockout}
}

// Register creates a new account. The password is hashed before any
// persistence or uniqueness check, so the duplicate-email path does the same
// hashing work as the fresh-signup path and the two are not distinguishable
// by timing.
func (s *AuthService) Register(ctx context.Context, name, email, password string, meta AuthMeta) (*entity.User, error) {
	hash, err := s.Creds.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Name:         sanitize.Plain(name),
		Email:        strings.TrimSpace(strings.ToLower(email)),
		PasswordHash: hash,
		Role:         entity.RoleUser,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.audit(audit.ActionSignup, u.Email, u.ID, meta, "")
	return u, nil
}

// Login runs one authentication attempt through its states: identify the
// account, enforce the lockout, verify the credential, then establish a
// session. Failures at every stage are audited; the caller only ever learns
// "invalid credentials" or "temporarily locked".
func (s *AuthService) Login(ctx context.Context, email, password string, meta AuthMeta) (*entity.User, string, error) {
	now := time.Now()
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.Users.GetActiveByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		// Unknown or inactive account. Burn a real bcrypt compare against the
		// precomputed dummy digest so this path costs the same as a wrong
		// password for an existing account.
		s.Creds.Verify(password, s.Creds.DummyDigest())
		s.audit(audit.ActionLoginFailed, email, "", meta, "unknown credential")
		return nil, "", ErrInvalidCredentials
	}

	// Lock status is re-evaluated before any counting so a locked account
	// never consumes another failed-attempt increment.
	if u.IsLocked(now) {
		s.audit(audit.ActionLoginLocked, email, u.ID, meta, "locked until "+u.LockUntil.Format(time.RFC3339))
		return nil, "", ErrAccountLocked
	}

	if !s.Creds.Verify(password, u.PasswordHash) {
		attempts, lockUntil, ferr := s.Users.RecordLoginFailure(ctx, u.ID, s.Lockout.Threshold, s.Lockout.Duration)
		if ferr != nil {
			s.Logger.WithError(ferr).WithField("user_id", u.ID).Error("record login failure")
		}
		detail := fmt.Sprintf("attempt %d", attempts)
		if lockUntil != nil {
			detail += ", locked until " + lockUntil.Format(time.RFC3339)
		}
		s.audit(audit.ActionLoginFailed, email, u.ID, meta, detail)
		return nil, "", ErrInvalidCredentials
	}

	if err := s.Users.RecordLoginSuccess(ctx, u.ID, now); err != nil {
		return nil, "", fmt.Errorf("record login success: %w", err)
	}
	sid, err := s.Sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	s.audit(audit.ActionLogin, email, u.ID, meta, "")
	return u, sid, nil
}

// Logout invalidates the session server-side. From the caller's perspective
// it always succeeds; invalidation errors are logged, not surfaced.
func (s *AuthService) Logout(ctx context.Context, sid, userID string, meta AuthMeta) {
	if err := s.Sessions.Destroy(ctx, sid); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session destroy failed")
	}
	s.audit(audit.ActionLogout, "", userID, meta, "")
}

// ConfirmEmail validates a verification-link token and marks the account's
// email as verified.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	uid, err := s.Verify.Parse(token)
	if err != nil {
		return ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	if u == nil || !u.IsActive {
		return ErrNotFound
	}
	return s.Users.SetEmailVerified(ctx, uid)
}

// GetUser resolves a user id to a fresh row. Missing or deactivated
// accounts come back as ErrNotFound.
func (s *AuthService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, ErrNotFound
	}
	return u, nil
}

// Deactivate performs the logical account delete and tears the session down.
func (s *AuthService) Deactivate(ctx context.Context, sid, userID string, meta AuthMeta) error {
	if err := s.Users.Deactivate(ctx, userID); err != nil {
		return err
	}
	s.Logout(ctx, sid, userID, meta)
	return nil
}

func (s *AuthService) audit(action, email, userID string, meta AuthMeta, detail string) {
	s.Audit.Record(audit.Event{
		Action:    action,
		Email:     email,
		UserID:    userID,
		SourceIP:  meta.IP,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
		Detail:    detail,
	})
}

// ValidateSignup is the explicit validation pass for registration input.
func ValidateSignup(name, email, password string) *ValidationError {
	e := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		e.add("nombre", "required", "is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		e.add("email", "required", "is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		e.add("email", "email", "must be a valid email")
	}
	if len(password) < 8 {
		e.add("password", "min", "must be at least 8 characters long")
	}
	return e.orNil()
}

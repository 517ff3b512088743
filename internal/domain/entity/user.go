package entity

import (
	"time"
)

// Roles assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the aggregate root for the accounts domain.
// PasswordHash holds a bcrypt digest and must never appear in any
// externally visible representation.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          string
	AvatarURL     string
	IsActive      bool
	EmailVerified bool
	LastLogin     *time.Time
	LoginAttempts int
	LockUntil     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsLocked reports whether the account is under a temporary lockout at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

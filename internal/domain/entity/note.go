package entity

import "time"

// Note is a personal note owned by exactly one user. UserID is immutable
// after creation. Deletion is logical: IsActive flips to false and the row
// is retained.
type Note struct {
	ID          string
	UserID      string
	Title       string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether the note belongs to the given user. Ownership is
// compared by value; callers must check this before any mutation.
func (n *Note) OwnedBy(userID string) bool {
	return userID != "" && n.UserID == userID
}

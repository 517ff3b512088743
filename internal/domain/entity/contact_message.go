package entity

import "time"

// Contact message workflow states.
const (
	ContactPending = "pending"
	ContactRead    = "read"
	ContactReplied = "replied"
)

// ContactMessage is a message submitted through the public contact form.
// UserID links the sender's account when the visitor was logged in.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	Status    string
	UserID    *string
	SourceIP  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidContactStatus reports whether s is a known workflow state.
func ValidContactStatus(s string) bool {
	switch s {
	case ContactPending, ContactRead, ContactReplied:
		return true
	}
	return false
}

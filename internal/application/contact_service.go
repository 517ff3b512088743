package application

import (
	"context"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
	"github.com/jolivares/cuaderno/pkg/mailer"
	"github.com/jolivares/cuaderno/pkg/queue"
	"github.com/jolivares/cuaderno/pkg/sanitize"
)

// ContactInput is the contact-form payload after HTTP binding.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Body    string
	UserID  string // optional, set when the visitor is logged in
	IP      string
}

// ContactService stores contact messages and notifies the inbox.
type ContactService struct {
	Messages repository.ContactMessageRepository
	Mail     *queue.Publisher
	Inbox    string
	Logger   *logrus.Logger
}

func NewContactService(messages repository.ContactMessageRepository, mailPub *queue.Publisher, inbox string, logger *logrus.Logger) *ContactService {
	return &ContactService{Messages: messages, Mail: mailPub, Inbox: inbox, Logger: logger}
}

// ValidateContact is the explicit validation pass for the contact form.
func ValidateContact(in ContactInput) *ValidationError {
	e := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		e.add("nombre", "required", "is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		e.add("email", "required", "is required")
	} else if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		e.add("email", "email", "must be a valid email")
	}
	if strings.TrimSpace(in.Subject) == "" {
		e.add("asunto", "required", "is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		e.add("mensaje", "required", "is required")
	}
	return e.orNil()
}

// Submit validates, persists and enqueues the inbox notification. The
// notification is best effort and never fails the submission.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*entity.ContactMessage, error) {
	if verr := ValidateContact(in); verr != nil {
		return nil, verr
	}
	m := &entity.ContactMessage{
		Name:     sanitize.Plain(in.Name),
		Email:    strings.TrimSpace(strings.ToLower(in.Email)),
		Subject:  sanitize.Plain(in.Subject),
		Body:     sanitize.Plain(in.Body),
		SourceIP: in.IP,
	}
	if in.UserID != "" {
		m.UserID = &in.UserID
	}
	if err := s.Messages.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.Mail != nil && s.Inbox != "" {
		job := mailer.EmailJob{
			Kind:    mailer.KindContact,
			To:      s.Inbox,
			Subject: "Nuevo mensaje de contacto: " + m.Subject,
			Data: map[string]string{
				"name":    m.Name,
				"email":   m.Email,
				"subject": m.Subject,
				"body":    m.Body,
				"ip":      m.SourceIP,
			},
		}
		if err := s.Mail.PublishJSON(ctx, job); err != nil {
			s.Logger.WithError(err).Warn("contact notification enqueue failed")
		}
	}
	return m, nil
}

// AdvanceStatus moves a message through the pending→read→replied workflow.
func (s *ContactService) AdvanceStatus(ctx context.Context, id, status string) error {
	if !entity.ValidContactStatus(status) {
		e := &ValidationError{}
		e.add("estado", "oneof", "must be one of: pending, read, replied")
		return e
	}
	matched, err := s.Messages.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// Package audit publishes security-relevant events (login attempts, session
// termination) to an append-only sink by way of a queue. Publishing is best
// effort: failures are logged and swallowed so the audit path can never
// change an authentication outcome.
package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/pkg/queue"
)

// Event actions.
const (
	ActionLogin         = "login"
	ActionLoginFailed   = "login_failed"
	ActionLoginLocked   = "login_locked"
	ActionLogout        = "logout"
	ActionSignup        = "signup"
	ActionNoteForbidden = "note_forbidden"
)

// Event is one audit record. Email is the identifier as attempted by the
// client, not necessarily an existing account.
type Event struct {
	Time      time.Time `json:"time"`
	Action    string    `json:"action"`
	Email     string    `json:"email,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	SourceIP  string    `json:"source_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Recorder fans audit events out to the queue.
type Recorder struct {
	pub    *queue.Publisher
	logger *logrus.Logger
}

func NewRecorder(pub *queue.Publisher, logger *logrus.Logger) *Recorder {
	return &Recorder{pub: pub, logger: logger}
}

// Record publishes ev without blocking the caller's request path. A nil
// publisher turns recording into a no-op, which keeps the auth flow working
// when the broker is not configured.
func (r *Recorder) Record(ev Event) {
	if r == nil || r.pub == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.pub.PublishJSON(ctx, ev); err != nil && r.logger != nil {
			r.logger.WithError(err).WithField("action", ev.Action).Warn("audit publish failed")
		}
	}()
}

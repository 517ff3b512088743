package mailer

// Job kinds understood by the email worker.
const (
	KindVerify  = "verify_email"
	KindWelcome = "welcome"
	KindContact = "contact_notification"
)

// EmailJob is the JSON payload put on the email queue.
type EmailJob struct {
	Kind    string            `json:"kind"`
	To      string            `json:"to"`
	Subject string            `json:"subject,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

package mailer

import (
	"errors"
	"strings"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (rendered by the worker from Data) or Subject plus Text/HTML
// must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome" or "post_published"
	Data     map[string]any `json:"data,omitempty"`
}

var ErrInvalidJob = errors.New("email job has no recipient or body")

// Validate reports whether the worker can do anything with the job.
func (j EmailJob) Validate() error {
	if strings.TrimSpace(j.To) == "" {
		return ErrInvalidJob
	}
	if j.Template == "" && j.Text == "" && j.HTML == "" {
		return ErrInvalidJob
	}
	return nil
}

package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mailtpl "github.com/oksasatya/go-ddd-blog-api/pkg/mailer/templates"
)

// ErrPermanent marks a message that will never succeed; the worker drops it.
var ErrPermanent = errors.New("permanent email job failure")

// Deliver decodes one queued job, renders its template when set and hands it
// to sender. Errors wrapping ErrPermanent must not be requeued.
func Deliver(ctx context.Context, sender Sender, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPermanent, err)
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return fmt.Errorf("%w: unknown template %q", ErrPermanent, job.Template)
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
		}
		subject, text, html = s, t, h
	}
	return sender.Send(ctx, job.To, subject, text, html)
}

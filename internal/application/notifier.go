package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-blog-api/pkg/mailer/templates"
)

// Notifier enqueues email jobs for the worker. A nil Jobs publisher turns it into a no-op.
// Enqueue failures are logged and never returned: mail is best effort.
type Notifier struct {
	Jobs        JobPublisher
	Brand       mailtpl.Brand
	PostURLBase string
	Logger      *logrus.Logger
}

func (n *Notifier) enqueue(ctx context.Context, job mailer.EmailJob) {
	if n == nil || n.Jobs == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := n.Jobs.PublishJSON(c, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"template": job.Template, "to": job.To}).Warn("enqueue email failed")
	}
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	if n == nil {
		return
	}
	n.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.WelcomeData(n.Brand, u.Name, u.Email),
	})
}

func (n *Notifier) PostPublished(ctx context.Context, u *entity.User, p *entity.Post) {
	if n == nil {
		return
	}
	n.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.PostPublished,
		Data:     mailtpl.PostPublishedData(n.Brand, u.Name, p.Title, n.PostURLBase, p.ID),
	})
}

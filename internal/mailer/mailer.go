package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"reviewhub/internal/apperr"
	"reviewhub/internal/pkg/logger"
)

// Mailer is the outbound email collaborator. Retries and backoff belong to
// the delivery infrastructure, not to callers.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	addr string
	from string
}

// NewSMTP returns a Mailer that delivers through a plain SMTP relay.
func NewSMTP(host string, port int, from string) Mailer {
	return &smtpMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg)); err != nil {
		return apperr.Delivery(err)
	}
	return nil
}

type logMailer struct {
	log *logger.Logger
}

// NewLog returns a Mailer that only logs, for development setups without
// an SMTP relay.
func NewLog(log *logger.Logger) Mailer {
	return &logMailer{log: log}
}

func (m *logMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.Info("outbound email", "to", to, "subject", subject, "body", body)
	return nil
}

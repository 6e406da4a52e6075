package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"vocamail/internal/config"
)

// Message is one outbound multipart/alternative email.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers messages.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPTransport delivers messages over SMTP with mandatory STARTTLS, or
// implicit TLS on port 465. Authentication is used only when both user and
// password are configured.
type SMTPTransport struct {
	cfg config.Mail
}

// NewSMTPTransport returns a transport for cfg.
func NewSMTPTransport(cfg config.Mail) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send dials the server and delivers msg to every recipient in one transaction.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(t.cfg.Server) == "" {
		return errors.New("smtp server not configured")
	}

	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	opts := []mail.Option{mail.WithPort(t.cfg.Port)}
	if t.cfg.TimeoutSeconds > 0 {
		opts = append(opts, mail.WithTimeout(time.Duration(t.cfg.TimeoutSeconds)*time.Second))
	}
	if t.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if t.cfg.User != "" && t.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.User),
			mail.WithPassword(t.cfg.Password),
		)
	}

	client, err := mail.NewClient(t.cfg.Server, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send via %s:%d: %w", t.cfg.Server, t.cfg.Port, err)
	}
	return nil
}

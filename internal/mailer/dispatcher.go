package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vocamail/internal/config"
	"vocamail/internal/logging"
	"vocamail/internal/maildue"
	"vocamail/internal/vocab"
)

// Status is the outcome of one dispatch.
type Status string

const (
	StatusNoMailedWords          Status = "no_mailed_words"
	StatusNoMatchingMailedWords  Status = "no_matching_mailed_words"
	StatusMissingTransportConfig Status = "missing_transport_config"
	StatusFailedToSend           Status = "failed_to_send_email"
	StatusEmailedAndMarkedSent   Status = "emailed_and_marked_sent"
	StatusEmailedButNotMarked    Status = "emailed_but_not_marked"
)

// Delivered reports whether the message reached the transport successfully.
func (s Status) Delivered() bool {
	return s == StatusEmailedAndMarkedSent || s == StatusEmailedButNotMarked
}

// Failed reports whether the status represents an error condition.
func (s Status) Failed() bool {
	switch s {
	case StatusMissingTransportConfig, StatusFailedToSend, StatusEmailedButNotMarked:
		return true
	default:
		return false
	}
}

// Batch describes one dispatch. When Records is nil the records are loaded
// from Staging, which is also the file marked after a successful send.
type Batch struct {
	Records    []vocab.MailedRecord
	Recipients []string
	Staging    vocab.StagingFile
}

// Result reports a dispatch outcome.
type Result struct {
	Status     Status               `json:"status"`
	Detail     string               `json:"detail,omitempty"`
	Subject    string               `json:"subject,omitempty"`
	Recipients []string             `json:"recipients,omitempty"`
	Matched    []vocab.MailedRecord `json:"mailed_words,omitempty"`
	Marked     int                  `json:"marked"`
}

// Dispatcher sends due staged words to recipients.
type Dispatcher struct {
	transport Transport
	mail      config.Mail
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher builds a dispatcher for the given transport settings.
func NewDispatcher(mail config.Mail, transport Transport, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		mail:      mail,
		logger:    logging.NewComponentLogger(logger, "mailer"),
		now:       time.Now,
	}
}

// WithClock overrides the clock used for due matching and sent stamps.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	if now != nil {
		d.now = now
	}
	return d
}

// Dispatch delivers the records of batch that are due today.
func (d *Dispatcher) Dispatch(ctx context.Context, batch Batch) Result {
	now := d.now()
	logger := logging.WithContext(ctx, d.logger)

	records := batch.Records
	if records == nil {
		loaded, err := batch.Staging.Load()
		if err != nil {
			logging.WarnWithContext(logger, "staging file unreadable", "staging_read_failed",
				logging.String("path", batch.Staging.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "nothing dispatched"),
			)
			return Result{Status: StatusNoMailedWords, Detail: err.Error()}
		}
		records = loaded
	}
	if len(records) == 0 {
		logger.Info("no staged words", logging.String("path", batch.Staging.Path))
		return Result{Status: StatusNoMailedWords}
	}

	matches := maildue.DueMatches(records, now)
	if len(matches) == 0 {
		logger.Info("no staged words due today",
			logging.String("today", now.Format("2006-01-02")),
			logging.Int("staged", len(records)),
		)
		return Result{Status: StatusNoMatchingMailedWords}
	}

	subject := Subject(now)
	text, htmlBody := BuildContent(matches)
	recipients := NormalizeRecipients(batch.Recipients)

	if missing := d.missingConfig(recipients); len(missing) > 0 {
		logging.WarnWithContext(logger, "mail transport configuration incomplete", "mail_config_incomplete",
			logging.String("missing", strings.Join(missing, ",")),
			logging.String(logging.FieldErrorHint, "set SMTP_SERVER and MAIL_FROM or the [mail] config section"),
			logging.String(logging.FieldImpact, "staged words were not mailed"),
		)
		return Result{
			Status:  StatusMissingTransportConfig,
			Detail:  "missing " + strings.Join(missing, ", "),
			Subject: subject,
			Matched: matches,
		}
	}

	msg := Message{From: d.mail.From, To: recipients, Subject: subject, Text: text, HTML: htmlBody}
	if err := d.send(ctx, msg); err != nil {
		logging.ErrorWithContext(logger, "failed to send email", "mail_send_failed",
			logging.Int("recipients", len(recipients)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check SMTP server, port and credentials"),
		)
		return Result{Status: StatusFailedToSend, Detail: err.Error(), Subject: subject, Recipients: recipients, Matched: matches}
	}
	logger.Info("email sent",
		logging.String("subject", subject),
		logging.Int("recipients", len(recipients)),
		logging.Int("words", len(matches)),
	)

	marked, err := d.markSent(batch.Staging, matches, d.now())
	if err != nil {
		logging.ErrorWithContext(logger, "could not mark mailed entries as sent", "mark_sent_failed",
			logging.String("path", batch.Staging.Path),
			logging.Error(err),
			logging.Alert("sent_not_marked"),
			logging.String(logging.FieldErrorHint, "sent_date stays empty; the words may be mailed again today"),
		)
		return Result{Status: StatusEmailedButNotMarked, Detail: err.Error(), Subject: subject, Recipients: recipients, Matched: matches}
	}

	return Result{Status: StatusEmailedAndMarkedSent, Subject: subject, Recipients: recipients, Matched: matches, Marked: marked}
}

func (d *Dispatcher) missingConfig(recipients []string) []string {
	var missing []string
	if strings.TrimSpace(d.mail.Server) == "" || d.transport == nil {
		missing = append(missing, "server")
	}
	if strings.TrimSpace(d.mail.From) == "" {
		missing = append(missing, "from")
	}
	if len(recipients) == 0 {
		missing = append(missing, "recipients")
	}
	return missing
}

func (d *Dispatcher) send(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	return d.transport.Send(ctx, msg)
}

func (d *Dispatcher) markSent(staging vocab.StagingFile, matches []vocab.MailedRecord, now time.Time) (int, error) {
	if strings.TrimSpace(staging.Path) == "" {
		return 0, errors.New("no staging file to mark")
	}
	existing, err := staging.Load()
	if err != nil {
		return 0, err
	}
	updated, marked := maildue.MarkSent(existing, matches, now)
	if err := staging.Save(updated); err != nil {
		return 0, err
	}
	return marked, nil
}

// NormalizeRecipients trims addresses and drops blanks and case-insensitive
// duplicates, keeping first-seen order.
func NormalizeRecipients(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

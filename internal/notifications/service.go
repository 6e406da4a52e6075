package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vocamail/internal/config"
)

const userAgent = "vocamail/0.1.0"

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyCycleCompleted(ctx context.Context, delivered, failed int, duration time.Duration) error
	NotifyMailSent(ctx context.Context, words, recipients int) error
	NotifyScheduleDue(ctx context.Context, title, url string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyCycleCompleted(ctx context.Context, delivered, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	title := "vocamail - Cycle Complete"
	message := fmt.Sprintf("Daily words mailed to %d levels in %s", delivered, duration)
	priority := ""
	if failed > 0 {
		title = "vocamail - Cycle Complete (with errors)"
		message = fmt.Sprintf("Daily words: %d levels mailed, %d failed in %s", delivered, failed, duration)
		priority = "high"
	}
	return n.send(ctx, payload{
		title:    title,
		message:  message,
		tags:     []string{"vocamail", "cycle", "completed"},
		priority: priority,
	})
}

func (n *ntfyService) NotifyMailSent(ctx context.Context, words, recipients int) error {
	return n.send(ctx, payload{
		title:   "vocamail - Mail Sent",
		message: fmt.Sprintf("📬 Sent %d words to %d recipients", words, recipients),
		tags:    []string{"vocamail", "mail", "sent"},
	})
}

func (n *ntfyService) NotifyScheduleDue(ctx context.Context, title, url string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "untitled"
	}
	return n.send(ctx, payload{
		title:   "vocamail - Schedule Due",
		message: fmt.Sprintf("⏰ %s\n%s", title, strings.TrimSpace(url)),
		tags:    []string{"vocamail", "schedule", "due"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "vocamail - Error",
		message:  builder.String(),
		tags:     []string{"vocamail", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "vocamail - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"vocamail", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyCycleCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyMailSent(context.Context, int, int) error                      { return nil }
func (noopService) NotifyScheduleDue(context.Context, string, string) error             { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }

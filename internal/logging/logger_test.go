package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vocamail/internal/config"
	"vocamail/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("cycle finished", logging.String(logging.FieldRunID, "run-1"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "vocamail.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "cycle finished") || !strings.Contains(string(content), "run_id=run-1") {
		t.Fatalf("unexpected log content %q", content)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")
	logger.Debug("filtered debug")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if strings.Contains(text, ".go:") {
		t.Fatalf("expected no source information in info logs, got %q", text)
	}
	if strings.Contains(text, "filtered debug") {
		t.Fatalf("debug record should be filtered at info level, got %q", text)
	}
	if !strings.Contains(text, "INFO message without caller") {
		t.Fatalf("expected level label and message, got %q", text)
	}
}

func TestConsoleLoggerRendersComponentPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "component.log")
	base, err := logging.New(logging.Options{Level: "info", Outputs: []string{logPath, logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger := logging.NewComponentLogger(base, "mailer")
	logger.Warn("send failed", logging.String(logging.FieldEmail, "a@b.c"), logging.String("reason", "bad gateway"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "WARN mailer: send failed") {
		t.Fatalf("expected component prefix, got %q", text)
	}
	if strings.Contains(text, "component=") {
		t.Fatalf("component should not repeat as attribute, got %q", text)
	}
	if !strings.Contains(text, `reason="bad gateway"`) {
		t.Fatalf("expected quoted value, got %q", text)
	}
}

func TestJSONLoggerFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Outputs: []string{logPath, logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.ErrorWithContext(logger, "dispatch failed", "mail_dispatch_failed", logging.Error(errors.New("boom")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["level"] != "error" {
		t.Fatalf("expected lowercase level, got %v", record["level"])
	}
	if record[logging.FieldEventType] != "mail_dispatch_failed" {
		t.Fatalf("expected event type, got %v", record[logging.FieldEventType])
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint in %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	base, err := logging.New(logging.Options{Level: "info", Outputs: []string{logPath, logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithLevel(logging.WithRunID(context.Background(), "abc"), 2)
	logging.WithContext(ctx, base).Info("level processed")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "run_id=abc") || !strings.Contains(text, "level=2") {
		t.Fatalf("expected context fields, got %q", text)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	attrs := []logging.Attr{logging.String(logging.FieldImpact, "words stay staged")}
	if !logging.HasAttrKey(attrs, logging.FieldImpact) {
		t.Fatal("expected impact key")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
	logging.WarnWithContext(logging.NewNop(), "ignored", "noop", attrs...)
}

func TestConsoleTimestampsUseConfiguredLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	logPath := filepath.Join(t.TempDir(), "tz.log")
	logger, err := logging.New(logging.Options{Level: "info", Outputs: []string{logPath}, Location: loc})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	at := time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC)
	record := slog.NewRecord(at, slog.LevelWarn, "words not marked", 0)
	record.AddAttrs(logging.Alert("sent_not_marked"), logging.Group("mail", logging.Int("words", 3)))
	if err := logger.Handler().Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.HasPrefix(text, "2024-01-02 07:30:00 WARN words not marked") {
		t.Fatalf("expected Seoul timestamp, got %q", text)
	}
	if !strings.Contains(text, "alert=sent_not_marked") || !strings.Contains(text, "mail.words=3") {
		t.Fatalf("expected alert and grouped fields, got %q", text)
	}
}

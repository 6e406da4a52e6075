package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vocamail/internal/config"
)

func clearMailEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SMTP_SERVER", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_PASS", "MAIL_FROM", "NTFY_TOPIC", "VOCAMAIL_DATA_DIR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearMailEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "vocamail")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Mail.Port != 587 {
		t.Fatalf("expected default SMTP port 587, got %d", cfg.Mail.Port)
	}
	if cfg.Selection.WordsPerLevel != 2 {
		t.Fatalf("expected 2 words per level, got %d", cfg.Selection.WordsPerLevel)
	}
	if cfg.Selection.Policy != "random" {
		t.Fatalf("expected random policy, got %q", cfg.Selection.Policy)
	}
	if cfg.Schedule.WindowSeconds != 60 {
		t.Fatalf("expected 60s window, got %d", cfg.Schedule.WindowSeconds)
	}
	if cfg.MailComplete() {
		t.Fatal("expected mail config to be incomplete without server and sender")
	}
	if cfg.SubscribersDBPath() != filepath.Join(wantData, "subscribers.db") {
		t.Fatalf("unexpected subscribers db path %q", cfg.SubscribersDBPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadUsesMailEnvironment(t *testing.T) {
	clearMailEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USER", "me@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("MAIL_FROM", "words@example.com")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Mail.Server != "smtp.example.com" || cfg.Mail.Port != 2525 {
		t.Fatalf("unexpected server settings: %+v", cfg.Mail)
	}
	if cfg.Mail.User != "me@example.com" || cfg.Mail.Password != "secret" {
		t.Fatalf("unexpected credentials: %+v", cfg.Mail)
	}
	if cfg.Mail.From != "words@example.com" {
		t.Fatalf("unexpected sender %q", cfg.Mail.From)
	}
	if !cfg.MailComplete() {
		t.Fatal("expected mail config to be complete")
	}
}

func TestLoadCustomPathAndDotEnv(t *testing.T) {
	clearMailEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vocamail.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Selection struct {
			WordsPerLevel int    `toml:"words_per_level"`
			Policy        string `toml:"policy"`
		} `toml:"selection"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Selection.WordsPerLevel = 5
	custom.Selection.Policy = " Sequential "
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte("SMTP_SERVER=dotenv.example.com\nMAIL_FROM=dotenv@example.com\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DataDir != custom.Paths.DataDir {
		t.Fatalf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if cfg.Selection.WordsPerLevel != 5 {
		t.Fatalf("expected words_per_level override, got %d", cfg.Selection.WordsPerLevel)
	}
	if cfg.Selection.Policy != "sequential" {
		t.Fatalf("expected normalized policy, got %q", cfg.Selection.Policy)
	}
	if cfg.Mail.Server != "dotenv.example.com" || cfg.Mail.From != "dotenv@example.com" {
		t.Fatalf("expected .env values, got %+v", cfg.Mail)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"policy", func(c *config.Config) { c.Selection.Policy = "weighted" }, "selection.policy"},
		{"level", func(c *config.Config) { c.Selection.Levels = []int{1, 4} }, "selection.levels"},
		{"port", func(c *config.Config) { c.Mail.Port = 70000 }, "mail.port"},
		{"timezone", func(c *config.Config) { c.Schedule.Timezone = "Mars/Olympus" }, "schedule.timezone"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			cfg.Mail.Port = 587
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearMailEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Selection.Levels) != 3 {
		t.Fatalf("expected three levels, got %v", cfg.Selection.Levels)
	}
}

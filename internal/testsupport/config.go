package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vocamail/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The data and log directories exist on return; mail is left unconfigured.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Schedule.Timezone = "UTC"
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{builder.cfg.Paths.DataDir, builder.cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithMail fills the SMTP settings so MailComplete reports true.
func WithMail(server string, port int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mail.Server = server
		b.cfg.Mail.Port = port
		b.cfg.Mail.From = "words@example.com"
	}
}

// WithSelection overrides the words-per-level count and selection policy.
func WithSelection(wordsPerLevel int, policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Selection.WordsPerLevel = wordsPerLevel
		b.cfg.Selection.Policy = policy
	}
}

// WithNtfyTopic points notifications at the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

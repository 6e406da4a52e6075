package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Mail contains SMTP transport configuration.
type Mail struct {
	Server         string `toml:"server"`
	Port           int    `toml:"port"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	From           string `toml:"from"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Selection controls how words are picked for the daily cycle.
type Selection struct {
	WordsPerLevel int    `toml:"words_per_level"`
	Policy        string `toml:"policy"`
	Levels        []int  `toml:"levels"`
}

// Schedule contains settings for the run-due schedule table.
type Schedule struct {
	Timezone      string `toml:"timezone"`
	WindowSeconds int    `toml:"window_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vocamail.
//
// Configuration sections by subsystem:
//   - Paths: data directory (word files, staging files, databases) and logs
//   - Mail: SMTP transport used by the dispatcher
//   - Selection: words per cohort, selection policy, active levels
//   - Schedule: time zone and due window for the schedule table
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Mail          Mail          `toml:"mail"`
	Selection     Selection     `toml:"selection"`
	Schedule      Schedule      `toml:"schedule"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vocamail/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(resolvedPath); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vocamail.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for batch operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DataFile returns the absolute path of a file inside the data directory.
func (c *Config) DataFile(name string) string {
	return filepath.Join(c.Paths.DataDir, name)
}

// SubscribersDBPath returns the subscriber database location.
func (c *Config) SubscribersDBPath() string {
	return c.DataFile("subscribers.db")
}

// ScheduleDBPath returns the schedule database location.
func (c *Config) ScheduleDBPath() string {
	return c.DataFile("schedule.db")
}

// LockPath returns the advisory lock file guarding batch writers.
func (c *Config) LockPath() string {
	return c.DataFile("vocamail.lock")
}

// Location resolves the configured schedule time zone, falling back to the
// local zone when the name cannot be loaded.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Schedule.Timezone); err == nil {
		return loc
	}
	return time.Local
}

// ScheduleWindow returns the symmetric due window for schedule polling.
func (c *Config) ScheduleWindow() time.Duration {
	return time.Duration(c.Schedule.WindowSeconds) * time.Second
}

// MailComplete reports whether the transport settings needed to send are present.
// Recipients are checked by the dispatcher.
func (c *Config) MailComplete() bool {
	return strings.TrimSpace(c.Mail.Server) != "" && strings.TrimSpace(c.Mail.From) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

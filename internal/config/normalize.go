package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv reads .env files next to the config file and in the working
// directory. Variables already present in the environment win.
func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, candidates...)
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if err := godotenv.Load(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", abs, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMail(); err != nil {
		return err
	}
	c.normalizeSelection()
	c.normalizeSchedule()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		if value, ok := os.LookupEnv("VOCAMAIL_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.DataDir = value
		} else {
			c.Paths.DataDir = defaultDataDir
		}
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMail() error {
	c.Mail.Server = strings.TrimSpace(c.Mail.Server)
	if c.Mail.Server == "" {
		if value, ok := os.LookupEnv("SMTP_SERVER"); ok {
			c.Mail.Server = strings.TrimSpace(value)
		}
	}
	if c.Mail.Port <= 0 {
		if value, ok := os.LookupEnv("SMTP_PORT"); ok && strings.TrimSpace(value) != "" {
			port, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("SMTP_PORT: %w", err)
			}
			c.Mail.Port = port
		}
	}
	if c.Mail.Port <= 0 {
		c.Mail.Port = defaultMailPort
	}
	c.Mail.User = strings.TrimSpace(c.Mail.User)
	if c.Mail.User == "" {
		if value, ok := os.LookupEnv("SMTP_USER"); ok {
			c.Mail.User = strings.TrimSpace(value)
		}
	}
	if c.Mail.Password == "" {
		if value, ok := os.LookupEnv("SMTP_PASSWORD"); ok {
			c.Mail.Password = value
		} else if value, ok := os.LookupEnv("SMTP_PASS"); ok {
			c.Mail.Password = value
		}
	}
	c.Mail.From = strings.TrimSpace(c.Mail.From)
	if c.Mail.From == "" {
		if value, ok := os.LookupEnv("MAIL_FROM"); ok {
			c.Mail.From = strings.TrimSpace(value)
		}
	}
	if c.Mail.TimeoutSeconds <= 0 {
		c.Mail.TimeoutSeconds = defaultMailTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeSelection() {
	c.Selection.Policy = strings.ToLower(strings.TrimSpace(c.Selection.Policy))
	if c.Selection.Policy == "" {
		c.Selection.Policy = defaultSelectionPolicy
	}
	if c.Selection.WordsPerLevel <= 0 {
		c.Selection.WordsPerLevel = defaultWordsPerLevel
	}
	if len(c.Selection.Levels) == 0 {
		c.Selection.Levels = []int{1, 2, 3}
		return
	}
	levels := make([]int, 0, len(c.Selection.Levels))
	seen := make(map[int]struct{}, len(c.Selection.Levels))
	for _, level := range c.Selection.Levels {
		if _, exists := seen[level]; exists {
			continue
		}
		seen[level] = struct{}{}
		levels = append(levels, level)
	}
	c.Selection.Levels = levels
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Timezone = strings.TrimSpace(c.Schedule.Timezone)
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = defaultScheduleTimezone
	}
	if c.Schedule.WindowSeconds <= 0 {
		c.Schedule.WindowSeconds = defaultScheduleWindow
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

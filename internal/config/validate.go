package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable. Incomplete mail settings are
// not an error here: the dispatcher reports them as a status at send time.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateMail() error {
	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return fmt.Errorf("mail.port must be between 1 and 65535, got %d", c.Mail.Port)
	}
	return nil
}

func (c *Config) validateSelection() error {
	switch c.Selection.Policy {
	case "random", "sequential":
	default:
		return fmt.Errorf("selection.policy must be \"random\" or \"sequential\", got %q", c.Selection.Policy)
	}
	for _, level := range c.Selection.Levels {
		if level < 1 || level > 3 {
			return fmt.Errorf("selection.levels must only contain 1, 2, or 3, got %d", level)
		}
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if c.Schedule.WindowSeconds <= 0 {
		return errors.New("schedule.window_seconds must be positive")
	}
	return nil
}

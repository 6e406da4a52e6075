package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"vocamail/internal/config"
	"vocamail/internal/logging"
	"vocamail/internal/notifications"
	"vocamail/internal/schedule"
	"vocamail/internal/subscribers"
	"vocamail/internal/vocab"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// loggerValue returns the file-backed logger, falling back to a no-op logger
// when the log file cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		if cfg == nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) wordStore() *vocab.Store {
	return vocab.NewStore(c.configValue().Paths.DataDir)
}

func (c *commandContext) notifier() notifications.Service {
	return notifications.NewService(c.configValue())
}

func (c *commandContext) withSubscribers(ctx context.Context, fn func(*subscribers.Store) error) error {
	store, err := subscribers.Open(ctx, c.configValue().SubscribersDBPath())
	if err != nil {
		return fmt.Errorf("open subscriber store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) withSchedule(ctx context.Context, fn func(*schedule.Store) error) error {
	cfg := c.configValue()
	store, err := schedule.Open(ctx, cfg.ScheduleDBPath(), cfg.Location())
	if err != nil {
		return fmt.Errorf("open schedule store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

var errRunLocked = errors.New("another vocamail batch run holds the lock")

// withRunLock serializes batch commands that rewrite staging and cursor files.
func (c *commandContext) withRunLock(fn func() error) error {
	lockPath := c.configValue().LockPath()
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", errRunLocked, lockPath)
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fn()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

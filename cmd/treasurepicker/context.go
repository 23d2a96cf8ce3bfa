package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"treasurepicker/internal/config"
	"treasurepicker/internal/gallery"
	"treasurepicker/internal/gallerycache"
	"treasurepicker/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	runID string
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		runID:         uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := flagValue(c.logFormatFlag); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// logger builds the invocation logger. Console output goes to the command's
// stderr so that stdout stays parseable with --json. Callers must invoke the
// returned close function once the command finishes.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, logging.CloseFunc, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return logger.With(logging.String(logging.FieldRunID, c.runID)), closeLog, nil
}

// galleryLoader returns the cache-backed loader when the cache is enabled.
// The returned close function is always safe to call.
func (c *commandContext) galleryLoader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (gallery.Loader, func()) {
	if !cfg.Cache.Enabled {
		return gallery.DiskLoader{}, func() {}
	}
	store, err := gallerycache.Open(ctx, cfg.CachePath(), logger)
	if err != nil {
		logging.WarnWithContext(logger, "gallery cache unavailable", "gallerycache_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache.dir permissions or set cache.enabled = false"),
			logging.String(logging.FieldImpact, "images decoded from disk"),
		)
		return gallery.DiskLoader{}, func() {}
	}
	return store, func() { _ = store.Close() }
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
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

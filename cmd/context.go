package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/agentic-research/rbxforge/internal/config"
	"github.com/agentic-research/rbxforge/internal/logging"
)

type commandContext struct {
	configFlag *string
	levelFlag  *string
	formatFlag *string

	once   sync.Once
	config *config.Config
	logger *slog.Logger
	err    error
}

func newCommandContext(configFlag, levelFlag, formatFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		levelFlag:  levelFlag,
		formatFlag: formatFlag,
	}
}

// ensureConfig loads the config once and builds the logger from it, with the
// log flags taking precedence over the file.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.err = err
			return
		}
		if lvl := strings.TrimSpace(*c.levelFlag); lvl != "" {
			cfg.LogLevel = lvl
		}
		if format := strings.TrimSpace(*c.formatFlag); format != "" {
			cfg.LogFormat = format
		}
		logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
		if err != nil {
			c.err = fmt.Errorf("configure logging: %w", err)
			return
		}
		logger.Debug("config loaded", "path", path, "exists", exists)
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.err
}

func (c *commandContext) cfg() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) log() *slog.Logger {
	if _, err := c.ensureConfig(); err != nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"gearqueue/internal/config"
	"gearqueue/internal/logging"
	"gearqueue/internal/queue"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	moduleFlags  map[string]*string
	changed      map[string]bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, moduleFlags map[string]*string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		moduleFlags:  moduleFlags,
		changed:      make(map[string]bool),
	}
}

// markChangedFlags records which module option flags were set explicitly so
// empty values on the command line still override the config file.
func (c *commandContext) markChangedFlags(cmd *cobra.Command) {
	for name := range c.moduleFlags {
		if flag := cmd.Flags().Lookup(moduleFlagName(name)); flag != nil && flag.Changed {
			c.changed[name] = true
		}
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
		if err := c.applyOverrides(cfg); err != nil {
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

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	if cfg.Queue.Options == nil {
		cfg.Queue.Options = make(map[string]string)
	}
	for name, value := range c.moduleFlags {
		if !c.changed[name] {
			continue
		}
		v := *value
		if name == queue.OptionDB && strings.TrimSpace(v) != "" {
			expanded, err := config.ExpandPath(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("resolve --%s: %w", moduleFlagName(name), err)
			}
			v = expanded
		}
		cfg.Queue.Options[name] = v
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		if _, err := logging.ParseLevel(*c.logLevelFlag); err != nil {
			return err
		}
		cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
	}
	return nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withAdapter opens the configured adapter, registering it with reg when
// non-nil, and closes it once fn returns.
func (c *commandContext) withAdapter(ctx context.Context, reg queue.Registrar, fn func(*queue.Adapter) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	adapter, err := queue.Open(ctx, cfg.ModuleOptions(), reg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := adapter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close queue: %w", cerr)
		}
	}()
	return fn(adapter)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeQueue(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeQueue() error {
	c.Queue.Module = strings.ToLower(strings.TrimSpace(c.Queue.Module))
	if c.Queue.Module == "" {
		c.Queue.Module = defaultModule
	}
	if c.Queue.Options == nil {
		c.Queue.Options = map[string]string{}
	}
	if db, ok := c.Queue.Options[optionDB]; ok {
		expanded, err := expandPath(strings.TrimSpace(db))
		if err != nil {
			return fmt.Errorf("queue.options.db: %w", err)
		}
		c.Queue.Options[optionDB] = expanded
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if len(c.Logging.Outputs) == 0 {
		c.Logging.Outputs = []string{"stderr"}
	}
}

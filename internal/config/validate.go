package config

import "fmt"

// Validate ensures the configuration is usable. Option names inside
// [queue.options] are left to the queue module.
func (c *Config) Validate() error {
	if c.Queue.Module != defaultModule {
		return fmt.Errorf("queue.module: unsupported module %q (only %q is available)", c.Queue.Module, defaultModule)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

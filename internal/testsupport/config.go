package testsupport

import (
	"path/filepath"
	"testing"

	"gearqueue/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose queue database lives in a per-test temp
// directory. Options are applied in order.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Queue.Options = map[string]string{"db": filepath.Join(base, "queue.db")}
	cfgVal.Logging.Outputs = []string{filepath.Join(base, "gearqueue.log")}

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTable sets the queue table option.
func WithTable(table string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.Options["table"] = table
	}
}

// WithModuleOption sets an arbitrary queue module option, known or not.
func WithModuleOption(name, value string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.Options[name] = value
	}
}

// DBPath returns the queue database path configured for the test.
func DBPath(cfg *config.Config) string {
	return cfg.Queue.Options["db"]
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(DBPath(cfg))
}

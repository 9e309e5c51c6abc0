package config

const (
	defaultConfigPath = "~/.config/gearqueue/config.toml"
	projectConfigName = "gearqueue.toml"
	defaultModule     = "libsqlite3"
	defaultDBPath     = "~/.local/share/gearqueue/queue.db"
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"

	optionDB = "db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Queue: Queue{
			Module:  defaultModule,
			Options: map[string]string{optionDB: defaultDBPath},
		},
		Logging: Logging{
			Level:   defaultLogLevel,
			Format:  defaultLogFormat,
			Outputs: []string{"stderr"},
		},
	}
}

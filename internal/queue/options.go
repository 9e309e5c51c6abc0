package queue

import (
	"sort"
	"strings"
)

const (
	// ModuleName identifies this persistence backend in configuration.
	ModuleName = "libsqlite3"
	// DefaultTable is used when no table option is supplied.
	DefaultTable = "gearman_queue"
	// MaxTableLength bounds the configured table name in bytes.
	MaxTableLength = 255

	OptionDB    = "db"
	OptionTable = "table"
)

// OptionSpec describes one module option for help output and flag wiring.
type OptionSpec struct {
	Name     string
	ValueTag string
	Help     string
	Required bool
}

// OptionSpecs lists the options Open understands.
func OptionSpecs() []OptionSpec {
	return []OptionSpec{
		{Name: OptionDB, ValueTag: "DB", Help: "Database file to use.", Required: true},
		{Name: OptionTable, ValueTag: "TABLE", Help: "Table to use."},
	}
}

// Options holds raw module option values keyed by option name.
type Options map[string]string

// Settings are the resolved connection parameters.
type Settings struct {
	DB    string
	Table string
}

// ParseOptions validates raw module options. Unknown names, a missing db,
// and unusable table names are configuration errors.
func ParseOptions(opts Options) (Settings, error) {
	settings := Settings{Table: DefaultTable}

	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := opts[name]
		switch name {
		case OptionDB:
			settings.DB = strings.TrimSpace(value)
		case OptionTable:
			settings.Table = value
		default:
			return Settings{}, configError("init", "unknown argument: %s", name)
		}
	}

	if settings.DB == "" {
		return Settings{}, configError("init", "missing required --%s-%s=<dbfile> argument", ModuleName, OptionDB)
	}
	if err := validateTableName(settings.Table); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func validateTableName(name string) error {
	switch {
	case name == "":
		return configError("init", "table name must not be empty")
	case len(name) > MaxTableLength:
		return configError("init", "table name is %d bytes, maximum is %d", len(name), MaxTableLength)
	case strings.IndexByte(name, 0) >= 0:
		return configError("init", "table name must not contain NUL bytes")
	}
	return nil
}

// quoteIdentifier renders name as a double-quoted SQLite identifier.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Package config provides configuration management for the housegen CLI.
//
// Configuration is layered: flags override environment variables, which
// override the housegen.yaml config file, which overrides built-in defaults.
package config

// TargetConfig holds database connection settings for the load and query
// commands.
type TargetConfig struct {
	Type string `koanf:"type"`

	// File-based databases (DuckDB, SQLite). Empty means in-memory.
	Path string `koanf:"path"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`

	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Config holds all CLI configuration options.
type Config struct {
	SchemaPath   string        `koanf:"schema"`
	Rows         int           `koanf:"rows"`
	Seed         int64         `koanf:"seed"`
	Workers      int           `koanf:"workers"`
	Destination  string        `koanf:"out"`
	Table        string        `koanf:"table"`
	IDPrefix     string        `koanf:"prefix"`
	StatePath    string        `koanf:"state_path"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Target       *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultSchemaFile  = "schemas/houses.yaml"
	DefaultDestination = "houses.csv"
	DefaultTable       = "houses"
	DefaultIDPrefix    = "house"
	DefaultStateFile   = ".housegen/state.db"
	DefaultRows        = 1_000_000
	DefaultSeed        = 42
	DefaultTargetType  = "duckdb"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

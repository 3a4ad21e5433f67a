// Package adapter provides the database adapter contract for housegen's
// load and query paths. Concrete implementations live in pkg/adapters/
// subdirectories and register themselves in their init() functions.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds connection settings for an adapter.
type Config struct {
	Type string // duckdb, sqlite, postgres

	// File-based databases (DuckDB, SQLite). Empty means in-memory.
	Path string

	// Network databases
	Host     string
	Port     int
	Username string
	Password string
	Database string

	// Common
	Schema string

	// Additional driver-specific options
	Options map[string]string
}

// Column describes one table column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// Metadata describes a table.
type Metadata struct {
	Schema   string
	Name     string
	Columns  []Column
	RowCount int64
}

// Adapter is the contract all database adapters implement.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows.
	Exec(ctx context.Context, sqlStr string, args ...any) error

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sqlStr string, args ...any) (*sql.Rows, error)

	// GetTableMetadata retrieves metadata for a table.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// LoadCSV loads a CSV file into a table, creating the table if needed.
	LoadCSV(ctx context.Context, tableName string, filePath string) error

	// Placeholder formats the 1-based i-th statement placeholder ("?" or
	// "$1") for this backend.
	Placeholder(i int) string
}

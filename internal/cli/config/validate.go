package config

import (
	"fmt"
	"strings"
)

// supportedTargetTypes lists the database adapters housegen can load into.
var supportedTargetTypes = []string{"duckdb", "sqlite", "postgres"}

// Validate checks target settings for the configured database type.
func (t *TargetConfig) Validate() error {
	valid := false
	for _, s := range supportedTargetTypes {
		if t.Type == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported target type %q (supported: %s)",
			t.Type, strings.Join(supportedTargetTypes, ", "))
	}

	if t.Type == "postgres" {
		if t.Host == "" {
			return fmt.Errorf("postgres target requires a host")
		}
		if t.Database == "" {
			return fmt.Errorf("postgres target requires a database name")
		}
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SchemaPath == "" {
		return fmt.Errorf("schema is required")
	}
	if c.Rows < 0 {
		return fmt.Errorf("rows must not be negative")
	}
	if c.Target != nil {
		return c.Target.Validate()
	}
	return nil
}

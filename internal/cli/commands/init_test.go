package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/housegen/internal/schema"
)

func TestNewInitCommand(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "flag force should exist")
	assert.NotNil(t, cmd.Flags().Lookup("example"), "flag example should exist")
}

func TestInitCreatesProject(t *testing.T) {
	dir := t.TempDir()

	cmd := NewInitCommand()
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(dir, "housegen.yaml"))
	assert.FileExists(t, filepath.Join(dir, "schemas", "houses.yaml"))
	assert.FileExists(t, filepath.Join(dir, ".gitignore"))

	// Refuses to overwrite without --force.
	again := NewInitCommand()
	again.SetArgs([]string{dir})
	assert.Error(t, again.Execute())

	forced := NewInitCommand()
	forced.SetArgs([]string{dir, "--force"})
	assert.NoError(t, forced.Execute())
}

func TestInitExampleSchemasParse(t *testing.T) {
	dir := t.TempDir()

	cmd := NewInitCommand()
	cmd.SetArgs([]string{dir, "--example"})
	require.NoError(t, cmd.Execute())

	// Every scaffolded schema must load cleanly.
	entries, err := os.ReadDir(filepath.Join(dir, "schemas"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		path := filepath.Join(dir, "schemas", e.Name())
		s, err := schema.Load(path)
		require.NoError(t, err, "schema %s should parse", e.Name())
		assert.NotEmpty(t, s.Columns())
	}

	// The tiered example has named tiers; the flat ones do not.
	tiered, err := schema.Load(filepath.Join(dir, "schemas", "tiered.yaml"))
	require.NoError(t, err)
	assert.True(t, tiered.Tiered())

	flat, err := schema.Load(filepath.Join(dir, "schemas", "houses.yaml"))
	require.NoError(t, err)
	assert.False(t, flat.Tiered())
}

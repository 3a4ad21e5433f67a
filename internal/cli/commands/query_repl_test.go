package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/housegen/internal/cli/config"
	"github.com/leapstack-labs/housegen/pkg/adapter"
	sqliteadapter "github.com/leapstack-labs/housegen/pkg/adapters/sqlite"
)

func newDotCommandFixture(t *testing.T) (*cobra.Command, *CommandContext, adapter.Adapter, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	db := sqliteadapter.New(nil)
	require.NoError(t, db.Connect(context.Background(), adapter.Config{Type: "sqlite"}))
	t.Cleanup(func() { _ = db.Close() })

	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	cmdCtx := &CommandContext{Cfg: &config.Config{Target: &config.TargetConfig{Type: "sqlite"}}}
	return cmd, cmdCtx, db, &out, &errOut
}

func TestDotImportLoadsCSV(t *testing.T) {
	cmd, cmdCtx, db, out, errOut := newDotCommandFixture(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte("price,garage\n100000,true\n200000,false\n"), 0o600))

	handled := handleDotCommand(ctx, cmd, cmdCtx, db, ".import "+path+" listings", "table")
	assert.True(t, handled)
	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "Imported")

	rows, err := db.Query(ctx, "SELECT COUNT(*) FROM listings")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var count int64
	require.NoError(t, rows.Scan(&count))
	assert.Equal(t, int64(2), count)
}

func TestDotImportUsage(t *testing.T) {
	cmd, cmdCtx, db, _, errOut := newDotCommandFixture(t)

	handled := handleDotCommand(context.Background(), cmd, cmdCtx, db, ".import listings.csv", "table")
	assert.True(t, handled)
	assert.Contains(t, errOut.String(), "Usage: .import")
}

func TestDotSchemaShowsColumns(t *testing.T) {
	cmd, cmdCtx, db, out, _ := newDotCommandFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(ctx, "CREATE TABLE houses (id TEXT PRIMARY KEY, price BIGINT NOT NULL)"))

	handled := handleDotCommand(ctx, cmd, cmdCtx, db, ".schema houses", "table")
	assert.True(t, handled)
	assert.Contains(t, out.String(), "Table: houses")
	assert.Contains(t, out.String(), "price BIGINT NOT NULL")
}

func TestDotUnknownCommand(t *testing.T) {
	cmd, cmdCtx, db, _, errOut := newDotCommandFixture(t)

	handled := handleDotCommand(context.Background(), cmd, cmdCtx, db, ".bogus", "table")
	assert.True(t, handled)
	assert.Contains(t, errOut.String(), "Unknown command")
}

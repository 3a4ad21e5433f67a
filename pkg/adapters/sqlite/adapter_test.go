package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/housegen/pkg/adapter"
)

func newConnected(t *testing.T) *Adapter {
	t.Helper()
	a := New(nil)
	require.NoError(t, a.Connect(context.Background(), adapter.Config{Type: "sqlite"}))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestConnectInMemory(t *testing.T) {
	a := newConnected(t)
	assert.True(t, a.IsConnected())
	require.NoError(t, a.Exec(context.Background(), "SELECT 1"))
}

func TestConnectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "houses.db")
	a := New(nil)
	require.NoError(t, a.Connect(context.Background(), adapter.Config{Type: "sqlite", Path: path}))
	defer func() { _ = a.Close() }()

	require.NoError(t, a.Exec(context.Background(), "CREATE TABLE t (id INTEGER)"))
	assert.FileExists(t, path)
}

func TestPlaceholder(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "?", a.Placeholder(1))
	assert.Equal(t, "?", a.Placeholder(7))
}

func TestExecAndQuery(t *testing.T) {
	a := newConnected(t)
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "CREATE TABLE houses (id TEXT PRIMARY KEY, price BIGINT)"))
	require.NoError(t, a.Exec(ctx, "INSERT INTO houses VALUES (?, ?)", "house_0", int64(250000)))

	rows, err := a.Query(ctx, "SELECT price FROM houses WHERE id = ?", "house_0")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var price int64
	require.NoError(t, rows.Scan(&price))
	assert.Equal(t, int64(250000), price)
	require.NoError(t, rows.Err())
}

func TestGetTableMetadata(t *testing.T) {
	a := newConnected(t)
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "CREATE TABLE houses (id TEXT PRIMARY KEY, price BIGINT NOT NULL, garage BOOLEAN)"))
	require.NoError(t, a.Exec(ctx, "INSERT INTO houses VALUES ('house_0', 100000, 1), ('house_1', 200000, 0)"))

	md, err := a.GetTableMetadata(ctx, "houses")
	require.NoError(t, err)

	assert.Equal(t, "main", md.Schema)
	assert.Equal(t, "houses", md.Name)
	assert.Equal(t, int64(2), md.RowCount)
	require.Len(t, md.Columns, 3)
	assert.Equal(t, "id", md.Columns[0].Name)
	assert.Equal(t, 1, md.Columns[0].Position)
	assert.False(t, md.Columns[1].Nullable)
	assert.True(t, md.Columns[2].Nullable)
}

func TestGetTableMetadataMissing(t *testing.T) {
	a := newConnected(t)

	_, err := a.GetTableMetadata(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadCSV(t *testing.T) {
	a := newConnected(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "houses.csv")
	require.NoError(t, os.WriteFile(path, []byte("price,garage\n100000,true\n200000,false\n"), 0600))

	require.NoError(t, a.LoadCSV(ctx, "houses", path))

	var count int64
	rows, err := a.Query(ctx, "SELECT COUNT(*) FROM houses")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&count))
	assert.Equal(t, int64(2), count)
}

func TestLoadCSVReplacesTable(t *testing.T) {
	a := newConnected(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "houses.csv")
	require.NoError(t, os.WriteFile(path, []byte("price\n100000\n"), 0600))
	require.NoError(t, a.LoadCSV(ctx, "houses", path))
	require.NoError(t, a.LoadCSV(ctx, "houses", path))

	rows, err := a.Query(ctx, "SELECT COUNT(*) FROM houses")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var count int64
	require.NoError(t, rows.Scan(&count))
	assert.Equal(t, int64(1), count, "reload replaces, not appends")
}

func TestLoadCSVBatching(t *testing.T) {
	a := newConnected(t)
	ctx := context.Background()

	// More rows than one insert batch holds.
	var b []byte
	b = append(b, "price\n"...)
	for i := 0; i < insertBatchRows+50; i++ {
		b = append(b, "100000\n"...)
	}
	path := filepath.Join(t.TempDir(), "big.csv")
	require.NoError(t, os.WriteFile(path, b, 0600))

	require.NoError(t, a.LoadCSV(ctx, "big", path))

	rows, err := a.Query(ctx, "SELECT COUNT(*) FROM big")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var count int64
	require.NoError(t, rows.Scan(&count))
	assert.Equal(t, int64(insertBatchRows+50), count)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"houses"`, quoteIdent("houses"))
	assert.Equal(t, `"odd""name"`, quoteIdent(`odd"name`))
}

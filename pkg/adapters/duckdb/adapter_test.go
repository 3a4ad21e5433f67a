package duckdb

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
	require.NoError(t, a.Connect(context.Background(), adapter.Config{Type: "duckdb"}))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestConnectInMemory(t *testing.T) {
	a := newConnected(t)
	assert.True(t, a.IsConnected())
	require.NoError(t, a.Exec(context.Background(), "SELECT 1"))
}

func TestPlaceholder(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "?", a.Placeholder(1))
	assert.Equal(t, "?", a.Placeholder(3))
}

func TestExecAndQuery(t *testing.T) {
	a := newConnected(t)
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "CREATE TABLE houses (id VARCHAR, price BIGINT)"))
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

func TestLoadCSV(t *testing.T) {
	a := newConnected(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "houses.csv")
	require.NoError(t, os.WriteFile(path, []byte("price,garage\n100000,true\n200000,false\n"), 0600))

	require.NoError(t, a.LoadCSV(ctx, "houses", path))

	rows, err := a.Query(ctx, "SELECT COUNT(*) FROM houses")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var count int64
	require.NoError(t, rows.Scan(&count))
	assert.Equal(t, int64(2), count)
}

func TestLoadCSVInfersTypes(t *testing.T) {
	a := newConnected(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "houses.csv")
	require.NoError(t, os.WriteFile(path, []byte("price,garage\n100000,true\n"), 0600))
	require.NoError(t, a.LoadCSV(ctx, "houses", path))

	md, err := a.GetTableMetadata(ctx, "houses")
	require.NoError(t, err)
	require.Len(t, md.Columns, 2)
	assert.Equal(t, "price", md.Columns[0].Name)
	assert.Equal(t, "BIGINT", md.Columns[0].Type)
	assert.Equal(t, "BOOLEAN", md.Columns[1].Type)
	assert.Equal(t, int64(1), md.RowCount)
}

func TestLoadCSVMissingFile(t *testing.T) {
	a := newConnected(t)

	err := a.LoadCSV(context.Background(), "houses", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load CSV")
}

func TestGetTableMetadataMissing(t *testing.T) {
	a := newConnected(t)

	_, err := a.GetTableMetadata(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

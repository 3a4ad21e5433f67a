package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s := NewFileSink(path, nil)

	require.NoError(t, s.Store(context.Background(), strings.NewReader("price\n100000\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "price\n100000\n", string(data))
	assert.Equal(t, path, s.Location())
}

func TestFileSinkCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv")
	s := NewFileSink(path, nil)

	require.NoError(t, s.Store(context.Background(), strings.NewReader("a\n")))
	assert.FileExists(t, path)
}

func TestFileSinkOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer\n"), 0600))

	s := NewFileSink(path, nil)
	require.NoError(t, s.Store(context.Background(), strings.NewReader("new\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))
}

func TestFileSinkCreateError(t *testing.T) {
	// The parent "directory" is a regular file, so create fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	s := NewFileSink(filepath.Join(blocker, "out.csv"), nil)
	err := s.Store(context.Background(), strings.NewReader("a\n"))
	require.Error(t, err)

	var sinkErr *SinkError
	require.ErrorAs(t, err, &sinkErr)
	assert.Equal(t, "create", sinkErr.Op)
}

func TestFileSinkReaderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s := NewFileSink(path, nil)

	err := s.Store(context.Background(), &failingReader{})
	require.Error(t, err)

	var sinkErr *SinkError
	require.ErrorAs(t, err, &sinkErr)
	assert.Equal(t, "write", sinkErr.Op)
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("upstream failed")
}

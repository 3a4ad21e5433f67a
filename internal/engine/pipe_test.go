package engine

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/housegen/internal/gen"
)

func pipeDataset(rows int) *gen.Dataset {
	ds := &gen.Dataset{Columns: []string{"price"}}
	for i := 0; i < rows; i++ {
		ds.Rows = append(ds.Rows, gen.Row{"price": int64(100000 + i)})
	}
	return ds
}

func TestCSVPipeDrained(t *testing.T) {
	pr, pw := newCSVPipe(pipeDataset(3))

	data, err := io.ReadAll(pr)
	require.NoError(t, err)
	require.NoError(t, pw.err())
	assert.Equal(t, "price\n100000\n100001\n100002\n", string(data))
}

func TestCSVPipeReaderCloseUnblocksEncoder(t *testing.T) {
	pr, pw := newCSVPipe(pipeDataset(1000))

	// Close the read side without consuming anything, as a sink that failed
	// before its first read would.
	cause := errors.New("destination rejected")
	require.NoError(t, pr.CloseWithError(cause))

	errCh := make(chan error, 1)
	go func() { errCh <- pw.err() }()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
	case <-time.After(10 * time.Second):
		t.Fatal("encoder still blocked after the read side closed")
	}
}

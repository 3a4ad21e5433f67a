package engine

import (
	"io"

	"github.com/leapstack-labs/housegen/internal/gen"
)

// csvPipe streams a dataset as CSV without buffering the whole file.
type csvPipe struct {
	done chan struct{}
	werr error
}

// newCSVPipe starts encoding ds on a background goroutine and returns the
// read side plus a handle for collecting the writer's error after the sink
// has drained it. If the sink stops reading early the caller must close the
// read side, or the encoder blocks forever.
func newCSVPipe(ds *gen.Dataset) (*io.PipeReader, *csvPipe) {
	pr, pw := io.Pipe()
	p := &csvPipe{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.werr = ds.WriteCSV(pw)
		pw.CloseWithError(p.werr)
	}()
	return pr, p
}

func (p *csvPipe) err() error {
	<-p.done
	return p.werr
}

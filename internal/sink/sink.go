// Package sink delivers serialized datasets to their destination: a local
// file or an S3 object. Sinks do not retry; failures surface to the caller,
// and a failed write may leave partial bytes behind (there is no
// temp-file-and-rename step).
package sink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Sink receives the serialized dataset.
type Sink interface {
	// Store writes body to the destination in full.
	Store(ctx context.Context, body io.Reader) error

	// Location describes the destination for logs and run records.
	Location() string
}

// ForDestination picks a sink from a destination string: s3://bucket/key
// becomes an S3 sink, anything else a local file path.
func ForDestination(ctx context.Context, dest string, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if strings.HasPrefix(dest, "s3://") {
		return NewS3Sink(ctx, dest, logger)
	}
	return NewFileSink(dest, logger), nil
}

// SinkError reports an I/O failure delivering a dataset. Not retried.
type SinkError struct {
	Op   string // "create", "write", "put"
	Dest string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %s failed: %v", e.Dest, e.Op, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

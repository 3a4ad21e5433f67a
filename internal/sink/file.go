package sink

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileSink writes the dataset to a local path, creating parent directories as
// needed.
type FileSink struct {
	path   string
	logger *slog.Logger
}

// NewFileSink creates a sink for a local file path.
func NewFileSink(path string, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileSink{path: path, logger: logger}
}

// Location returns the file path.
func (s *FileSink) Location() string { return s.path }

// Store writes body to the file. The write is not atomic: a failure partway
// leaves whatever bytes were already written.
func (s *FileSink) Store(_ context.Context, body io.Reader) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return &SinkError{Op: "create", Dest: s.path, Err: err}
		}
	}

	f, err := os.Create(s.path) //nolint:gosec // destination comes from user input
	if err != nil {
		return &SinkError{Op: "create", Dest: s.path, Err: err}
	}

	n, err := io.Copy(f, body)
	if err != nil {
		_ = f.Close()
		return &SinkError{Op: "write", Dest: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &SinkError{Op: "write", Dest: s.path, Err: err}
	}

	s.logger.Debug("wrote dataset file", "path", s.path, "bytes", n)
	return nil
}

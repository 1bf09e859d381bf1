package poller

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Sink receives rendered output. Lines are appended in order and are never changed afterwards.
type Sink interface {
	WriteLines(lines ...string)
	// Clear removes everything written so far.
	Clear()
	// SetStatus replaces the one line summary of the match.
	SetStatus(status string)
}

// WriterSink writes lines to an io.Writer. Clearing is a no-op as written output cannot be taken
// back, and status updates are only logged.
type WriterSink struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewWriterSink(writer io.Writer) *WriterSink {
	return &WriterSink{writer: writer}
}

func (s *WriterSink) WriteLines(lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range lines {
		if _, err := fmt.Fprintln(s.writer, line); err != nil {
			slog.Error("Failed to write line", slog.String("error", err.Error()))

			return
		}
	}
}

func (s *WriterSink) Clear() {}

func (s *WriterSink) SetStatus(status string) {
	slog.Debug("Status updated", slog.String("status", status))
}

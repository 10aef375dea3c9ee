package observability

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Alerter is the interactive channel for problems an operator must fix.
type Alerter interface {
	Alert(msg string)
}

// LogAlerter turns alerts into warn level log entries, for environments
// without an interactive user.
type LogAlerter struct {
	logger *zap.Logger
}

// NewLogAlerter builds a LogAlerter.
func NewLogAlerter(logger *zap.Logger) *LogAlerter {
	return &LogAlerter{logger: logger}
}

func (a *LogAlerter) Alert(msg string) {
	a.logger.Warn("operator alert", zap.String("alert", msg))
}

// WriterAlerter prints alerts to w, typically a terminal.
type WriterAlerter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterAlerter builds a WriterAlerter.
func NewWriterAlerter(w io.Writer) *WriterAlerter {
	return &WriterAlerter{w: w}
}

func (a *WriterAlerter) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = fmt.Fprintf(a.w, "!!! %s\n", msg)
}

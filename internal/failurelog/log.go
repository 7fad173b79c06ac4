// Package failurelog holds the shared buffer of side-channel output captured while
// a test file runs. Entries are inspected and cleared at checkpoints: after each
// case and after each file.
package failurelog

import (
	"bytes"
	"io"
	"sync"
	"time"

	"e2erun/internal/domain"
	"e2erun/internal/parser"
)

// Log is an append-only buffer of log entries with severity queries.
// It is safe for concurrent use: browser events, server output pumps and
// abandoned case bodies append from their own goroutines.
type Log struct {
	mu      sync.Mutex
	entries []domain.LogEntry
	parser  parser.Parser
}

// New creates an empty Log that classifies raw lines with the output parser
func New() *Log {
	return &Log{parser: parser.NewOutputParser()}
}

// Add appends an entry
func (l *Log) Add(entry domain.LogEntry) {
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// AddText appends an entry built from its parts
func (l *Log) AddText(source string, severity domain.Severity, text string) {
	l.Add(domain.LogEntry{Source: source, Text: text, Severity: severity})
}

// AddLine classifies a raw output line read from stream and appends it
func (l *Log) AddLine(source string, stream parser.Stream, line string) {
	l.Add(l.parser.Parse(source, stream, line))
}

// HasFailures reports whether any error entry exists, or any warning entry
// when failOnWarning is set.
func (l *Log) HasFailures(failOnWarning bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.IsFailure(failOnWarning) {
			return true
		}
	}
	return false
}

// Drain returns the entries in insertion order and empties the buffer
func (l *Log) Drain() []domain.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.entries
	l.entries = nil
	return out
}

// Snapshot returns a copy of the current entries
func (l *Log) Snapshot() []domain.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear drops every entry
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Len returns the number of buffered entries
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Writer returns an io.Writer that appends every complete line written to it
// as a classified entry from source. A trailing partial line is kept until the
// next newline or Flush.
func (l *Log) Writer(source string, stream parser.Stream) *LineWriter {
	return &LineWriter{log: l, source: source, stream: stream}
}

// LineWriter splits written bytes into lines for a Log
type LineWriter struct {
	mu     sync.Mutex
	log    *Log
	source string
	stream parser.Stream
	buf    bytes.Buffer
}

var _ io.Writer = (*LineWriter)(nil)

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.log.AddLine(w.source, w.stream, line)
	}
	return len(p), nil
}

// Flush appends any buffered partial line
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.log.AddLine(w.source, w.stream, w.buf.String())
		w.buf.Reset()
	}
}

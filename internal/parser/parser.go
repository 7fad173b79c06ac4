package parser

import "e2erun/internal/domain"

// Stream is the output stream a line was read from
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Parser turns one line of captured output into a log entry
type Parser interface {
	Parse(source string, stream Stream, line string) domain.LogEntry
}

package parser

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/acarl005/stripansi"

	"e2erun/internal/domain"
)

var (
	errorPattern   = regexp.MustCompile(`(?i)(^|[^a-z])(error|err|fatal|panic|exception|uncaught)([^a-z]|$)`)
	warningPattern = regexp.MustCompile(`(?i)(^|[^a-z])(warn|warning|deprecated)([^a-z]|$)`)
	levelPrefix    = regexp.MustCompile(`(?i)^\s*(?:\[\s*)?(debug|info|warn|warning|error|fatal|panic)(?:\s*\])?[\s:]`)
)

// OutputParser classifies server and test output lines by severity.
// Structured JSON lines are classified by their level field, plain lines by a
// leading level token. Error and warning keywords only count on stderr: stdout
// carries request paths and page text that mention them freely.
type OutputParser struct{}

// NewOutputParser creates a new OutputParser
func NewOutputParser() *OutputParser {
	return &OutputParser{}
}

// Parse builds a log entry for a single output line
func (p *OutputParser) Parse(source string, stream Stream, line string) domain.LogEntry {
	text := strings.TrimRight(stripansi.Strip(line), "\r\n")
	return domain.LogEntry{
		Source:   source,
		Text:     text,
		Severity: p.Classify(stream, text),
		Time:     time.Now(),
	}
}

// Classify returns the severity of an already stripped line
func (p *OutputParser) Classify(stream Stream, line string) domain.Severity {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return domain.SeverityInfo
	}

	if strings.HasPrefix(trimmed, "{") {
		if sev, ok := p.classifyJSON(trimmed); ok {
			return sev
		}
	}

	if m := levelPrefix.FindStringSubmatch(trimmed); len(m) > 1 {
		return levelSeverity(m[1])
	}

	if stream != Stderr {
		return domain.SeverityInfo
	}
	if errorPattern.MatchString(trimmed) {
		return domain.SeverityError
	}
	if warningPattern.MatchString(trimmed) {
		return domain.SeverityWarning
	}
	return domain.SeverityInfo
}

// classifyJSON reads the level of zap, slog and logrus style lines
func (p *OutputParser) classifyJSON(line string) (domain.Severity, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return domain.SeverityInfo, false
	}
	for _, key := range []string{"level", "lvl", "severity"} {
		if v, ok := fields[key].(string); ok {
			return levelSeverity(v), true
		}
	}
	return domain.SeverityInfo, false
}

func levelSeverity(level string) domain.Severity {
	switch strings.ToLower(level) {
	case "warn", "warning":
		return domain.SeverityWarning
	case "error", "fatal", "panic", "dpanic", "critical":
		return domain.SeverityError
	default:
		return domain.SeverityInfo
	}
}

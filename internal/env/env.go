// Package env reads the environment signals the harness consumes but does not own.
package env

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	// CIVar enables the second retry pass
	CIVar = "CI"
	// ParallelCIVar marks a sharded CI run where a final failure aborts the process.
	// It implies CIVar.
	ParallelCIVar = "PARALLEL_CI"
)

// Signals are the environment switches read once per suite run
type Signals struct {
	CI          bool // Enables pass 2
	ParallelCI  bool // Final failures abort the process
	Interactive bool // Presentation only
	// NoisyTeardown is set on platforms whose process teardown emits spurious
	// log output, the post-stop log check is skipped there.
	NoisyTeardown bool
}

// FromEnvironment reads the signals from the process environment
func FromEnvironment() Signals {
	return Read(os.Getenv, runtime.GOOS, isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
}

// Read builds signals from a lookup function, a GOOS value and whether stdout is a terminal
func Read(getenv func(string) string, goos string, terminal bool) Signals {
	parallel := truthy(getenv(ParallelCIVar))
	ci := truthy(getenv(CIVar)) || parallel
	return Signals{
		CI:            ci,
		ParallelCI:    parallel,
		Interactive:   terminal && !ci,
		NoisyTeardown: goos == "windows",
	}
}

// truthy accepts the usual boolean spellings, any other non-empty value counts as set
func truthy(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return !strings.EqualFold(v, "no") && !strings.EqualFold(v, "off")
}

// WithFlags turns on CI and parallel CI when the command line asks for them.
// Parallel CI implies CI, and forcing CI turns off interactive presentation.
func (s Signals) WithFlags(ci, parallelCI bool) Signals {
	if parallelCI {
		s.ParallelCI = true
		ci = true
	}
	if ci {
		s.CI = true
		s.Interactive = false
	}
	return s
}

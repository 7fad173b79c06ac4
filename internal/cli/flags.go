package cli

import (
	"time"

	"e2erun/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	ConfigFile string
	TestPath   string
	NameFilter string
	TestCases  bool
	CI         bool
	ParallelCI bool
	Timeout    time.Duration
	Headful    bool
	PrepareDB  bool
	FreshDB    bool
	OpenFaills bool
	Verbose    bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile: f.ConfigFile,
		TestPath:   f.TestPath,
		NameFilter: f.NameFilter,
		TestCases:  f.TestCases,
		CI:         f.CI,
		ParallelCI: f.ParallelCI,
		Timeout:    f.Timeout,
		Headful:    f.Headful,
		PrepareDB:  f.PrepareDB,
		FreshDB:    f.FreshDB,
		OpenFaills: f.OpenFaills,
		Verbose:    f.Verbose,
	}
}

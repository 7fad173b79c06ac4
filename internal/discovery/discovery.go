// Package discovery finds e2e test files and reads what they declare.
package discovery

import (
	"e2erun/internal/config"
)

// Discovery produces the ordered file set of a suite run from config
type Discovery struct {
	config  *config.Config
	scanner *Scanner
	filter  *Filter
}

// New creates a Discovery for cfg
func New(cfg *config.Config) *Discovery {
	return &Discovery{
		config:  cfg,
		scanner: NewScanner(cfg.FileSuffix, cfg.PathsToIgnore),
		filter:  NewFilter(),
	}
}

// Discover scans the test path and applies the name filter
func (d *Discovery) Discover() ([]string, error) {
	files, err := d.scanner.Scan(d.config.GetTestPath())
	if err != nil {
		return nil, err
	}
	return d.filter.FilterByName(files, d.config.Flags.NameFilter), nil
}

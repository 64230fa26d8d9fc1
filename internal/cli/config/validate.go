package config

import (
	"fmt"

	"github.com/depscope-dev/depscope/pkg/lint"
)

var validOutputFormats = map[string]bool{
	"auto":     true,
	"text":     true,
	"markdown": true,
	"json":     true,
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	if !validOutputFormats[c.OutputFormat] {
		return fmt.Errorf("invalid output format %q (want auto, text, markdown, or json)", c.OutputFormat)
	}

	if c.Lint.FailOn != "" {
		if _, ok := lint.ParseSeverity(c.Lint.FailOn); !ok {
			return fmt.Errorf("invalid lint fail_on severity %q", c.Lint.FailOn)
		}
	}
	for id, sev := range c.Lint.Severity {
		if _, ok := lint.ParseSeverity(sev); !ok {
			return fmt.Errorf("invalid severity %q for rule %s", sev, id)
		}
	}

	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch debounce_ms must not be negative")
	}

	return nil
}

// LintSettings converts the lint section into a rule configuration.
func (c *Config) LintSettings() *lint.Config {
	cfg := lint.NewConfig()
	for _, id := range c.Lint.Disabled {
		cfg.Disable(id)
	}
	for id, sev := range c.Lint.Severity {
		if s, ok := lint.ParseSeverity(sev); ok {
			cfg.SetSeverity(id, s)
		}
	}
	return cfg
}

// FailThreshold returns the severity at or above which lint findings
// fail the run.
func (c *Config) FailThreshold() lint.Severity {
	if s, ok := lint.ParseSeverity(c.Lint.FailOn); ok {
		return s
	}
	return lint.SeverityError
}

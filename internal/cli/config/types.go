// Package config provides configuration management for the depscope
// CLI: defaults, depscope.yaml, DEPSCOPE_ environment variables, and
// command-line flags, in ascending precedence.
package config

// Default configuration values.
const (
	// DefaultStateFile is the index database path, relative to the
	// workspace root.
	DefaultStateFile = ".depscope/index.db"
	// DefaultOutput picks the output format from the terminal.
	DefaultOutput = "auto"
	// DefaultFailOn is the severity threshold that fails lint runs.
	DefaultFailOn = "error"
	// DefaultWatchDebounceMS coalesces bursts of file events.
	DefaultWatchDebounceMS = 250
)

// LintConfig controls the lint command.
type LintConfig struct {
	// Disabled lists rule IDs that never run.
	Disabled []string `koanf:"disabled"`
	// Severity overrides rule severities by ID (error, warning, info, hint).
	Severity map[string]string `koanf:"severity"`
	// FailOn is the threshold at or above which findings fail the run.
	FailOn string `koanf:"fail_on"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	// DebounceMS is the quiet period after a file event before reloading.
	DebounceMS int `koanf:"debounce_ms"`
}

// Config holds all CLI configuration options.
type Config struct {
	// WorkspaceRoot is the absolute path of the analyzed workspace.
	WorkspaceRoot string `koanf:"workspace"`
	// StatePath is the index database path.
	StatePath string `koanf:"state_path"`
	// BuildFileNames overrides the recognized manifest names.
	BuildFileNames []string `koanf:"build_file_names"`
	// Ignore lists directory names or glob patterns skipped during discovery.
	Ignore []string `koanf:"ignore"`
	// OutputFormat is auto, text, markdown, or json.
	OutputFormat string `koanf:"output"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	Lint  LintConfig  `koanf:"lint"`
	Watch WatchConfig `koanf:"watch"`
}

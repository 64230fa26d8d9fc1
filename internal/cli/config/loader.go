package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/depscope-dev/depscope/internal/workspace"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Package-level koanf instance and config file tracking.
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// GetCurrentConfig returns the most recently loaded configuration, nil
// before the first LoadConfig call.
func GetCurrentConfig() *Config {
	return currentConfig
}

// ConfigFileUsed returns the path of the loaded config file, empty when
// none was found.
func ConfigFileUsed() string {
	return configFileUsed
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// findConfigFile picks the config file to use.
// Priority: explicit path > depscope.yaml > depscope.yml in root.
func findConfigFile(explicit, root string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"depscope.yaml", "depscope.yml"} {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// inferWorkspaceRoot determines the workspace root.
// Priority:
//  1. Explicit --workspace flag
//  2. Directory of an explicit config file
//  3. Upward search from CWD for a workspace marker
//  4. Current working directory
func inferWorkspaceRoot(cfgFile string, flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("workspace") {
		if ws, _ := flags.GetString("workspace"); ws != "" {
			if abs, err := filepath.Abs(ws); err == nil {
				return abs
			}
			return filepath.Clean(ws)
		}
	}

	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := workspace.FindRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config
// file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load.
	k = koanf.New(".")

	root := inferWorkspaceRoot(cfgFile, flags)

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"workspace":  root,
		"state_path": DefaultStateFile,
		"output":     DefaultOutput,
		"verbose":    false,
		"lint": map[string]interface{}{
			"fail_on": DefaultFailOn,
		},
		"watch": map[string]interface{}{
			"debounce_ms": DefaultWatchDebounceMS,
		},
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file.
	configFileUsed = findConfigFile(cfgFile, root)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: DEPSCOPE_STATE_PATH -> state_path.
	if err := k.Load(env.Provider("DEPSCOPE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DEPSCOPE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, highest priority. Only explicitly set flags override.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// The CLI uses --state for brevity; the config key is state_path.
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if abs, err := filepath.Abs(cfg.WorkspaceRoot); err == nil {
		cfg.WorkspaceRoot = abs
	}
	cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, cfg.WorkspaceRoot)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// resolvePathRelativeTo resolves path against baseDir unless it is
// empty, absolute, or the in-memory marker.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

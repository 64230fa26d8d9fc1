package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("workspace", "", "")
	flags.String("state", "", "")
	flags.String("output", "", "")
	flags.Bool("verbose", false, "")
	return flags
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "depscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--workspace", root}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.WorkspaceRoot)
	assert.Equal(t, filepath.Join(root, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, DefaultFailOn, cfg.Lint.FailOn)
	assert.Equal(t, DefaultWatchDebounceMS, cfg.Watch.DebounceMS)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()
	cfgFile := writeConfig(t, root, `
output: json
verbose: true
ignore:
  - third_party
lint:
  fail_on: warning
  disabled:
    - DS07
  severity:
    DS08: info
`)

	cfg, err := LoadConfig(cfgFile, nil)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.WorkspaceRoot)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"third_party"}, cfg.Ignore)
	assert.Equal(t, "warning", cfg.Lint.FailOn)
	assert.Equal(t, []string{"DS07"}, cfg.Lint.Disabled)
	assert.Equal(t, cfgFile, ConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()
	cfgFile := writeConfig(t, root, "output: markdown\n")

	t.Setenv("DEPSCOPE_OUTPUT", "json")

	cfg, err := LoadConfig(cfgFile, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()

	t.Setenv("DEPSCOPE_OUTPUT", "json")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--workspace", root, "--output", "text"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.OutputFormat)
}

func TestLoadConfig_StateFlagMapsToStatePath(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--workspace", root, "--state", ":memory:"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_InvalidOutput(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()
	cfgFile := writeConfig(t, root, "output: fancy\n")

	_, err := LoadConfig(cfgFile, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output format")
}

func TestLoadConfig_InvalidSeverity(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()
	cfgFile := writeConfig(t, root, `
lint:
  severity:
    DS01: fatal
`)

	_, err := LoadConfig(cfgFile, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DS01")
}

func TestLintSettings(t *testing.T) {
	cfg := &Config{
		Lint: LintConfig{
			Disabled: []string{"DS07"},
			Severity: map[string]string{"DS08": "warning"},
			FailOn:   "warning",
		},
	}

	settings := cfg.LintSettings()
	assert.True(t, settings.IsDisabled("DS07"))
	assert.False(t, settings.IsDisabled("DS01"))

	threshold := cfg.FailThreshold()
	assert.Equal(t, "warning", threshold.String())
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/depscope-dev/depscope/internal/cli/config"
	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeRoot runs the full root command with args and captures output.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeRootTestWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("WORKSPACE", "")
	write("core/BUILD", `
py_library(
    name = "core",
    srcs = ["core.py"],
    visibility = ["//visibility:public"],
)

py_test(
    name = "core_test",
    srcs = ["core_test.py"],
    deps = [":core"],
    size = "small",
)
`)
	write("core/core.py", "")
	write("core/core_test.py", "")
	return dir
}

func TestRootListCommand(t *testing.T) {
	dir := writeRootTestWorkspace(t)

	got, err := executeRoot(t, "list", "-w", dir, "-o", "json")
	require.NoError(t, err)

	var result output.ListOutput
	require.NoError(t, json.Unmarshal([]byte(got), &result))
	assert.Equal(t, 2, result.Summary.TotalTargets)
}

func TestRootFlagsOverrideConfigFile(t *testing.T) {
	dir := writeRootTestWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "depscope.yaml"), []byte("output: markdown\n"), 0o644))

	got, err := executeRoot(t, "list", "-w", dir, "-o", "json")
	require.NoError(t, err)

	var result output.ListOutput
	require.NoError(t, json.Unmarshal([]byte(got), &result), "flag should win over config file")
}

func TestRootUnknownCommand(t *testing.T) {
	_, err := executeRoot(t, "frobnicate")
	require.Error(t, err)
}

func TestRootInvalidOutputFormat(t *testing.T) {
	dir := writeRootTestWorkspace(t)

	_, err := executeRoot(t, "list", "-w", dir, "-o", "xml")
	require.Error(t, err)
}

func TestRootHelp(t *testing.T) {
	got, err := executeRoot(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, got, "depscope")
	assert.Contains(t, got, "lint")
	assert.Contains(t, got, "query")
}

func TestGetConfigFallback(t *testing.T) {
	cfg := GetConfig(context.Background())
	require.NotNil(t, cfg)
	assert.Equal(t, config.DefaultStateFile, cfg.StatePath)
	assert.Equal(t, config.DefaultOutput, cfg.OutputFormat)
}

func TestGetRendererFallback(t *testing.T) {
	r := GetRenderer(context.Background())
	require.NotNil(t, r)
}

package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	cols := []string{"label", "kind"}
	results := []map[string]any{
		{"label": "//a:a", "kind": "py_library"},
		{"label": `has,comma`, "kind": nil},
	}

	require.NoError(t, renderCSV(&buf, cols, results))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "label,kind", string(lines[0]))
	assert.Equal(t, "//a:a,py_library", string(lines[1]))
	assert.Equal(t, `"has,comma",NULL`, string(lines[2]))
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	cols := []string{"kind", "n"}
	results := []map[string]any{{"kind": "py_test", "n": int64(4)}}

	require.NoError(t, renderMarkdown(&buf, cols, results))

	out := buf.String()
	assert.Contains(t, out, "| kind | n |")
	assert.Contains(t, out, "| --- | --- |")
	assert.Contains(t, out, "| py_test | 4 |")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMarkdown(&buf, []string{"a"}, nil))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestRenderTableRowCount(t *testing.T) {
	var buf bytes.Buffer
	results := []map[string]any{{"label": "//a:a"}, {"label": "//b:b"}}

	require.NoError(t, renderTable(&buf, []string{"label"}, results))
	assert.Contains(t, buf.String(), "(2 rows)")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "7", formatValue(int64(7)))
	assert.Equal(t, "x", formatValue("x"))
}

func TestEscapeCSV(t *testing.T) {
	assert.Equal(t, "plain", escapeCSV("plain"))
	assert.Equal(t, `"a,b"`, escapeCSV("a,b"))
	assert.Equal(t, `"say ""hi"""`, escapeCSV(`say "hi"`))
}

package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/depscope-dev/depscope/pkg/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLabel(t *testing.T, s string) build.Label {
	t.Helper()
	l, err := build.ParseLabel(s, "")
	require.NoError(t, err)
	return l
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

const simpleWorkspace = `WORKSPACE`

func TestFindRoot(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE":      "",
		"a/b/BUILD":      "",
		"a/b/deep/x.txt": "",
	})

	found := FindRoot(filepath.Join(root, "a", "b", "deep"))
	require.Equal(t, root, found)
}

func TestFindRoot_NotFound(t *testing.T) {
	dir := t.TempDir()
	// A bare temp dir has no marker; the search gives up at the
	// filesystem root or the level limit.
	if found := FindRoot(dir); found != "" {
		// Tolerate markers in enclosing temp paths on exotic systems.
		assert.NotEqual(t, dir, found)
	}
}

func TestLoader_Discover(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE":              "",
		"BUILD":                  "",
		"lib/BUILD":              "",
		"lib/sub/BUILD.bazel":    "",
		".git/BUILD":             "",
		"bazel-out/pkg/BUILD":    "",
		"third_party/skip/BUILD": "",
	})

	l := NewLoader(root)
	l.Ignore = []string{"third_party"}

	files, err := l.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(root, "BUILD"), files[0])
}

func TestLoader_Discover_PrefersBuildBazel(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE":       "",
		"lib/BUILD":       `py_library(name = "old", srcs = ["old.py"])`,
		"lib/BUILD.bazel": `py_library(name = "lib", srcs = ["lib.py"])`,
	})

	files, err := NewLoader(root).Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "lib", "BUILD.bazel"), files[0])
}

func TestLoader_Load_BothManifestNames(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE":       "",
		"lib/BUILD":       `py_library(name = "old", srcs = ["old.py"])`,
		"lib/BUILD.bazel": `py_library(name = "lib", srcs = ["lib.py"])`,
	})

	snap, err := NewLoader(root).Load(context.Background())
	require.NoError(t, err)

	// One directory is one package; BUILD.bazel shadows BUILD.
	assert.Len(t, snap.Packages, 1)
	assert.Empty(t, snap.Duplicates)
	assert.Contains(t, snap.Targets, "//lib:lib")
	assert.NotContains(t, snap.Targets, "//lib:old")
}

func TestLoader_Load(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE": simpleWorkspace,
		"core/BUILD": `
py_library(
    name = "base",
    srcs = ["base.py"],
    visibility = ["//visibility:public"],
)
`,
		"core/base.py": "",
		"app/BUILD": `
py_library(
    name = "app",
    srcs = ["app.py"],
    deps = ["//core:base"],
)

py_test(
    name = "app_test",
    srcs = ["app_test.py"],
    deps = [":app", "//missing:dep"],
)
`,
		"app/app.py":      "",
		"app/app_test.py": "",
	})

	snap, err := NewLoader(root).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Packages, 2)
	assert.Len(t, snap.Targets, 3)
	assert.Empty(t, snap.Duplicates)

	g := snap.Graph()
	assert.Equal(t, 3, g.NodeCount())
	// The unresolved //missing:dep edge is not part of the graph.
	assert.Equal(t, 2, g.EdgeCount())

	deps := g.Deps("//app:app")
	require.Len(t, deps, 1)
	assert.Equal(t, "//core:base", deps[0])
}

func TestLoader_Load_Duplicates(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE": simpleWorkspace,
		"pkg/BUILD": `
py_library(name = "dup", srcs = ["a.py"])
py_library(name = "dup", srcs = ["b.py"])
`,
	})

	snap, err := NewLoader(root).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Duplicates, 1)
	// First declaration wins.
	assert.Equal(t, []string{"a.py"}, snap.Targets["//pkg:dup"].Srcs)
}

func TestLoader_Load_ParseError(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE":    simpleWorkspace,
		"broken/BUILD": "py_library(name =",
	})

	_, err := NewLoader(root).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestSnapshot_GroupLookup(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE": simpleWorkspace,
		"BUILD": `
package_group(
    name = "friends",
    packages = ["//app/..."],
)
`,
	})

	snap, err := NewLoader(root).Load(context.Background())
	require.NoError(t, err)

	lookup := snap.GroupLookup()
	pkgs, ok := lookup(snap.Targets["//:friends"].Label)
	require.True(t, ok)
	assert.Equal(t, []string{"//app/..."}, pkgs)

	_, ok = lookup(mustLabel(t, "//:nope"))
	assert.False(t, ok)
}

func TestSnapshot_PackageOf(t *testing.T) {
	root := writeTree(t, map[string]string{
		"WORKSPACE":  simpleWorkspace,
		"core/BUILD": `py_library(name = "base", srcs = ["base.py"])`,
	})

	snap, err := NewLoader(root).Load(context.Background())
	require.NoError(t, err)

	pkg, ok := snap.PackageOf("core")
	require.True(t, ok)
	assert.Equal(t, "core", pkg.Path)

	_, ok = snap.PackageOf("nope")
	assert.False(t, ok)
}

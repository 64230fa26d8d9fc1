package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/depscope-dev/depscope/pkg/build"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWorkspace lays out files under a temp root and returns the root.
func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func targetByName(pkg *build.Package, name string) *build.Target {
	for _, t := range pkg.Targets {
		if t.Label.Name == name {
			return t
		}
	}
	return nil
}

func TestParseContent_BasicRules(t *testing.T) {
	src := `
py_library(
    name = "dtype_util",
    srcs = ["dtype_util.py"],
    deps = [
        ":assert_util",
        "//probability/python/math:generic",
    ],
    visibility = ["//visibility:public"],
)

py_test(
    name = "dtype_util_test",
    size = "medium",
    srcs = ["dtype_util_test.py"],
    shard_count = 4,
    tags = ["notap", "no_pip"],
    deps = [":dtype_util"],
)

py_library(
    name = "assert_util",
    srcs = ["assert_util.py"],
)
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("probability/python/internal", "BUILD", []byte(src))
	require.NoError(t, err)
	require.Len(t, pkg.Targets, 3)

	lib := targetByName(pkg, "dtype_util")
	require.NotNil(t, lib)
	assert.Equal(t, "py_library", lib.Kind)
	assert.Equal(t, "//probability/python/internal:dtype_util", lib.Label.String())
	assert.Equal(t, []string{"dtype_util.py"}, lib.Srcs)
	assert.True(t, lib.Visibility.IsPublic())
	require.Len(t, lib.Deps, 2)
	assert.Equal(t, "//probability/python/internal:assert_util", lib.Deps[0].String())
	assert.Equal(t, "//probability/python/math:generic", lib.Deps[1].String())

	test := targetByName(pkg, "dtype_util_test")
	require.NotNil(t, test)
	assert.True(t, test.IsTest())
	assert.Equal(t, "medium", test.Size)
	assert.Equal(t, 4, test.ShardCount)
	assert.True(t, test.HasTag("notap"))
}

func TestParseContent_PackageDefaults(t *testing.T) {
	src := `
package(
    default_visibility = ["//probability:__subpackages__"],
    default_testonly = True,
)

py_library(name = "a", srcs = ["a.py"])

py_library(
    name = "b",
    srcs = ["b.py"],
    visibility = ["//visibility:private"],
)
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("probability/internal", "BUILD", []byte(src))
	require.NoError(t, err)

	a := targetByName(pkg, "a")
	require.NotNil(t, a)
	assert.True(t, a.TestOnly)
	assert.True(t, a.Visibility.Allows("probability/sub", "probability/internal", nil))

	// Explicit visibility wins over the package default.
	b := targetByName(pkg, "b")
	require.NotNil(t, b)
	assert.False(t, b.Visibility.Allows("probability/sub", "probability/internal", nil))
}

func TestParseContent_LoadedMacros(t *testing.T) {
	src := `
load(
    "//tools/build_defs:defaults.bzl",
    "multi_substrate_py_library",
    "multi_substrate_py_test",
)

multi_substrate_py_library(
    name = "harvest",
    srcs = ["harvest.py"],
    deps = [":propagate"],
)

multi_substrate_py_test(
    name = "harvest_test",
    size = "large",
    srcs = ["harvest_test.py"],
    shard_count = 10,
    deps = [":harvest"],
)

py_library(name = "propagate", srcs = ["propagate.py"])
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("probability/experimental", "BUILD", []byte(src))
	require.NoError(t, err)
	require.Len(t, pkg.Targets, 3)

	harvest := targetByName(pkg, "harvest")
	require.NotNil(t, harvest)
	assert.Equal(t, "multi_substrate_py_library", harvest.Kind)
	require.Len(t, harvest.Deps, 1)
	assert.Equal(t, "//probability/experimental:propagate", harvest.Deps[0].String())

	test := targetByName(pkg, "harvest_test")
	require.NotNil(t, test)
	assert.True(t, test.IsTest())
	assert.Equal(t, 10, test.ShardCount)
}

func TestParseContent_Select(t *testing.T) {
	src := `
py_library(
    name = "backend",
    srcs = ["backend.py"],
    deps = [":common"] + select({
        "//config:gpu": [":gpu_impl"],
        "//conditions:default": [":cpu_impl"],
    }),
)

py_library(name = "common", srcs = ["common.py"])
py_library(name = "gpu_impl", srcs = ["gpu.py"])
py_library(name = "cpu_impl", srcs = ["cpu.py"])
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("lib", "BUILD", []byte(src))
	require.NoError(t, err)

	backend := targetByName(pkg, "backend")
	require.NotNil(t, backend)
	// Union of all branches plus the static part.
	assert.Len(t, backend.Deps, 3)
}

func TestParseContent_DuplicateDepsPreserved(t *testing.T) {
	src := `
py_library(
    name = "app",
    srcs = ["app.py"],
    deps = [
        ":base",
        ":base",
    ],
)

py_library(name = "base", srcs = ["base.py"])
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("lib", "BUILD", []byte(src))
	require.NoError(t, err)

	app := targetByName(pkg, "app")
	require.NotNil(t, app)
	// The deps list reaches the model exactly as written.
	require.Len(t, app.Deps, 2)
	assert.Equal(t, app.Deps[0], app.Deps[1])
	assert.Equal(t, []string{":base", ":base"}, app.RawDeps)
}

func TestParseContent_SelectUnionDeduplicates(t *testing.T) {
	src := `
py_library(
    name = "backend",
    srcs = ["backend.py"],
    deps = select({
        "//config:gpu": [":impl"],
        "//conditions:default": [":impl"],
    }),
)

py_library(name = "impl", srcs = ["impl.py"])
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("lib", "BUILD", []byte(src))
	require.NoError(t, err)

	backend := targetByName(pkg, "backend")
	require.NotNil(t, backend)
	// Branches are alternatives, not repetitions; their union is one dep.
	require.Len(t, backend.Deps, 1)
}

func TestParseFile_Glob(t *testing.T) {
	root := writeWorkspace(t, map[string]string{
		"lib/BUILD": `
filegroup(
    name = "srcs",
    srcs = glob(["*.py"], exclude = ["*_test.py"]),
)
`,
		"lib/alpha.py":      "",
		"lib/beta.py":       "",
		"lib/alpha_test.py": "",
		"lib/notes.txt":     "",
		// Files owned by a subpackage stay out of the parent's glob.
		"lib/sub/BUILD":    "",
		"lib/sub/gamma.py": "",
	})

	p := New(root)
	pkg, err := p.ParseFile(filepath.Join(root, "lib", "BUILD"))
	require.NoError(t, err)
	require.Equal(t, "lib", pkg.Path)

	fg := targetByName(pkg, "srcs")
	require.NotNil(t, fg)
	assert.Equal(t, []string{"alpha.py", "beta.py"}, fg.Srcs)
}

func TestParseFile_RecursiveGlob(t *testing.T) {
	root := writeWorkspace(t, map[string]string{
		"data/BUILD": `
filegroup(
    name = "all_csv",
    srcs = glob(["**/*.csv"]),
)
`,
		"data/a.csv":        "",
		"data/nested/b.csv": "",
		"data/nested/c.txt": "",
	})

	p := New(root)
	pkg, err := p.ParseFile(filepath.Join(root, "data", "BUILD"))
	require.NoError(t, err)

	fg := targetByName(pkg, "all_csv")
	require.NotNil(t, fg)
	assert.Equal(t, []string{"a.csv", "nested/b.csv"}, fg.Srcs)
}

func TestParseContent_PackageGroupAndExports(t *testing.T) {
	src := `
package_group(
    name = "friends",
    packages = [
        "//probability/...",
        "//tools",
    ],
    includes = ["//other:group"],
)

exports_files(["LICENSE", "version.py"], visibility = ["//visibility:public"])

licenses(["notice"])
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("", "BUILD", []byte(src))
	require.NoError(t, err)

	group := targetByName(pkg, "friends")
	require.NotNil(t, group)
	assert.Equal(t, "package_group", group.Kind)
	assert.Equal(t, []string{"//probability/...", "//tools"}, group.Packages)
	require.Len(t, group.Deps, 1)
	assert.Equal(t, "//other:group", group.Deps[0].String())

	lic := targetByName(pkg, "LICENSE")
	require.NotNil(t, lic)
	assert.Equal(t, "exported_file", lic.Kind)
	assert.True(t, lic.Visibility.IsPublic())
}

func TestParseContent_ExportsFilesDefaultPublic(t *testing.T) {
	src := `
package(default_visibility = ["//visibility:private"])

exports_files(["schema.json"])

exports_files(["internal.bzl"], visibility = ["//tools:__pkg__"])
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("defs", "BUILD", []byte(src))
	require.NoError(t, err)

	schema := targetByName(pkg, "schema.json")
	require.NotNil(t, schema)
	assert.True(t, schema.Visibility.IsPublic())

	// An explicit visibility narrows the export.
	internal := targetByName(pkg, "internal.bzl")
	require.NotNil(t, internal)
	assert.False(t, internal.Visibility.IsPublic())
	assert.True(t, internal.Visibility.Allows("tools", "defs", nil))
}

func TestParseContent_TestSuiteAndAlias(t *testing.T) {
	src := `
test_suite(
    name = "all_tests",
    tests = [":fast_test", "//other:slow_test"],
)

alias(
    name = "compat",
    actual = ":real_target",
)
`
	p := New(t.TempDir())
	pkg, err := p.ParseContent("suite", "BUILD", []byte(src))
	require.NoError(t, err)

	suite := targetByName(pkg, "all_tests")
	require.NotNil(t, suite)
	require.Len(t, suite.Deps, 2)

	alias := targetByName(pkg, "compat")
	require.NotNil(t, alias)
	require.Len(t, alias.Deps, 1)
	assert.Equal(t, "//suite:real_target", alias.Deps[0].String())
}

func TestParseContent_SyntaxError(t *testing.T) {
	p := New(t.TempDir())
	_, err := p.ParseContent("bad", "BUILD", []byte("py_library(name ="))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BUILD")
}

func TestParseContent_BadLabel(t *testing.T) {
	src := `
py_library(
    name = "broken",
    deps = ["//a//b:c"],
)
`
	p := New(t.TempDir())
	_, err := p.ParseContent("pkg", "BUILD", []byte(src))
	require.Error(t, err)
}

func TestPackagePath(t *testing.T) {
	root := t.TempDir()
	p := New(root)

	pkgPath, err := p.packagePath(filepath.Join(root, "a", "b", "BUILD"))
	require.NoError(t, err)
	assert.Equal(t, "a/b", pkgPath)

	rootPath, err := p.packagePath(filepath.Join(root, "BUILD"))
	require.NoError(t, err)
	assert.Equal(t, "", rootPath)

	_, err = p.packagePath(filepath.Join(root, "..", "outside", "BUILD"))
	require.Error(t, err)
}

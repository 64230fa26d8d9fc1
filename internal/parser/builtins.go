package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/depscope-dev/depscope/pkg/build"
	"go.starlark.net/starlark"
)

// Base rule kinds predeclared in every BUILD file. Anything else arrives
// via load() and gets the same generic treatment.
var baseRuleKinds = []string{
	"py_library",
	"py_binary",
	"py_test",
	"cc_library",
	"cc_binary",
	"cc_test",
	"java_library",
	"proto_library",
	"sh_binary",
	"sh_test",
	"filegroup",
	"genrule",
	"alias",
	"test_suite",
	"config_setting",
}

// recorder accumulates targets while a single BUILD file evaluates.
type recorder struct {
	pkg *build.Package
	dir string

	defaultVisibility build.Visibility
	defaultTestOnly   bool
}

// predeclared returns the globals available to a BUILD file.
func (r *recorder) predeclared() starlark.StringDict {
	globals := starlark.StringDict{
		"package":       starlark.NewBuiltin("package", r.packageFn),
		"package_group": starlark.NewBuiltin("package_group", r.packageGroupFn),
		"exports_files": starlark.NewBuiltin("exports_files", r.exportsFilesFn),
		"licenses":      starlark.NewBuiltin("licenses", noopFn),
		"glob":          starlark.NewBuiltin("glob", r.globFn),
		"select":        starlark.NewBuiltin("select", selectFn),
	}
	for _, kind := range baseRuleKinds {
		globals[kind] = r.ruleBuiltin(kind)
	}
	return globals
}

// ruleBuiltin returns a builtin that records a target of the given kind
// from keyword arguments. Calls without a name (constant helpers pulled
// in via load) are ignored.
func (r *recorder) ruleBuiltin(kind string) *starlark.Builtin {
	return starlark.NewBuiltin(kind, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s: rule calls accept keyword arguments only", b.Name())
		}

		attrs := kwargsMap(kwargs)
		name, ok := stringAttr(attrs, "name")
		if !ok || name == "" {
			return starlark.None, nil
		}

		t := &build.Target{
			Label:     build.Label{Package: r.pkg.Path, Name: name},
			Kind:      b.Name(),
			BuildFile: r.pkg.BuildFile,
			Srcs:      stringListAttr(attrs, "srcs"),
			Tags:      stringListAttr(attrs, "tags"),
		}

		if size, ok := stringAttr(attrs, "size"); ok {
			t.Size = size
		}
		if sc, ok := intAttr(attrs, "shard_count"); ok {
			t.ShardCount = sc
		}
		if to, ok := boolAttr(attrs, "testonly"); ok {
			t.TestOnly = to
		}

		// Dependency edges come from deps, plus the label-valued parts of
		// the attributes that also reference targets.
		rawDeps := stringListAttr(attrs, "deps")
		for _, entry := range stringListAttr(attrs, "data") {
			if build.IsSourceRef(entry) {
				rawDeps = append(rawDeps, entry)
			}
		}
		rawDeps = append(rawDeps, stringListAttr(attrs, "tests")...)
		if actual, ok := stringAttr(attrs, "actual"); ok {
			rawDeps = append(rawDeps, actual)
		}
		for _, entry := range rawDeps {
			label, err := build.ParseLabel(entry, r.pkg.Path)
			if err != nil {
				return nil, fmt.Errorf("%s: target %q: %w", b.Name(), name, err)
			}
			t.Deps = append(t.Deps, label)
			t.RawDeps = append(t.RawDeps, entry)
		}

		if visEntries := stringListAttr(attrs, "visibility"); visEntries != nil {
			vis, err := build.ParseVisibility(visEntries, r.pkg.Path)
			if err != nil {
				return nil, fmt.Errorf("%s: target %q: %w", b.Name(), name, err)
			}
			t.Visibility = vis
		}

		r.pkg.Targets = append(r.pkg.Targets, t)
		return starlark.None, nil
	})
}

// packageFn handles package(default_visibility=..., default_testonly=...).
func (r *recorder) packageFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("%s: accepts keyword arguments only", b.Name())
	}
	attrs := kwargsMap(kwargs)

	if visEntries := stringListAttr(attrs, "default_visibility"); visEntries != nil {
		vis, err := build.ParseVisibility(visEntries, r.pkg.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		r.defaultVisibility = vis
	}
	if to, ok := boolAttr(attrs, "default_testonly"); ok {
		r.defaultTestOnly = to
	}
	return starlark.None, nil
}

// packageGroupFn records a package_group as an addressable target.
func (r *recorder) packageGroupFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("%s: accepts keyword arguments only", b.Name())
	}
	attrs := kwargsMap(kwargs)
	name, ok := stringAttr(attrs, "name")
	if !ok || name == "" {
		return nil, fmt.Errorf("%s: name is required", b.Name())
	}

	t := &build.Target{
		Label:     build.Label{Package: r.pkg.Path, Name: name},
		Kind:      "package_group",
		BuildFile: r.pkg.BuildFile,
		Packages:  stringListAttr(attrs, "packages"),
	}
	// includes reference other package_groups; keep them as deps so the
	// graph sees the edge.
	for _, entry := range stringListAttr(attrs, "includes") {
		label, err := build.ParseLabel(entry, r.pkg.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		t.Deps = append(t.Deps, label)
		t.RawDeps = append(t.RawDeps, entry)
	}

	r.pkg.Targets = append(r.pkg.Targets, t)
	return starlark.None, nil
}

// exportsFilesFn makes files addressable as targets.
func (r *recorder) exportsFilesFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var files []string
	if len(args) > 0 {
		files = flattenStrings(args[0])
	}
	attrs := kwargsMap(kwargs)

	// Exported files are public unless the call narrows them.
	vis := build.Visibility{{Kind: build.VisPublic}}
	if visEntries := stringListAttr(attrs, "visibility"); visEntries != nil {
		parsed, err := build.ParseVisibility(visEntries, r.pkg.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		vis = parsed
	}

	for _, f := range files {
		r.pkg.Targets = append(r.pkg.Targets, &build.Target{
			Label:      build.Label{Package: r.pkg.Path, Name: f},
			Kind:       "exported_file",
			BuildFile:  r.pkg.BuildFile,
			Srcs:       []string{f},
			Visibility: vis,
		})
	}
	return starlark.None, nil
}

// globFn expands glob(include, exclude=[...]) against the package
// directory. Subdirectories owned by another package are not entered.
func (r *recorder) globFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var include, exclude []string
	if len(args) > 0 {
		include = flattenStrings(args[0])
	}
	for _, kv := range kwargs {
		key, _ := starlark.AsString(kv[0])
		switch key {
		case "include":
			include = flattenStrings(kv[1])
		case "exclude":
			exclude = flattenStrings(kv[1])
		case "allow_empty", "exclude_directories":
			// Accepted, no effect on analysis.
		}
	}

	matches, err := r.glob(include, exclude)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	elems := make([]starlark.Value, len(matches))
	for i, m := range matches {
		elems[i] = starlark.String(m)
	}
	return starlark.NewList(elems), nil
}

func (r *recorder) glob(include, exclude []string) ([]string, error) {
	seen := make(map[string]bool)

	err := filepath.WalkDir(r.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == r.dir {
				return nil
			}
			// Subpackages own their files.
			for _, bf := range BuildFileNames {
				if _, statErr := os.Stat(filepath.Join(path, bf)); statErr == nil {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matchAnyGlob(rel, include) && !matchAnyGlob(rel, exclude) {
			seen[rel] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, nil
}

// matchAnyGlob matches a slash path against build glob patterns,
// including the ** recursive wildcard.
func matchAnyGlob(path string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(path, p) {
			return true
		}
	}
	return false
}

func matchGlob(path, pattern string) bool {
	return matchSegments(strings.Split(path, "/"), strings.Split(pattern, "/"))
}

func matchSegments(path, pattern []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
		// ** matches zero or more leading segments.
		for skip := 0; skip <= len(path); skip++ {
			if matchSegments(path[skip:], pattern[1:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	ok, err := filepath.Match(pattern[0], path[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(path[1:], pattern[1:])
}

// selectFn flattens select() to the union of its branch values: analysis
// wants every edge that could exist under any configuration.
func selectFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: expected one positional argument", b.Name())
	}
	dict, ok := args[0].(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("%s: expected a dict, got %s", b.Name(), args[0].Type())
	}

	var elems []starlark.Value
	seen := make(map[string]bool)
	for _, item := range dict.Items() {
		for _, s := range flattenStrings(item[1]) {
			if !seen[s] {
				seen[s] = true
				elems = append(elems, starlark.String(s))
			}
		}
	}
	return starlark.NewList(elems), nil
}

func noopFn(_ *starlark.Thread, _ *starlark.Builtin, _ starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	return starlark.None, nil
}

// finalize applies package defaults to recorded targets.
func (r *recorder) finalize() {
	r.pkg.DefaultVisibility = r.defaultVisibility
	r.pkg.DefaultTestOnly = r.defaultTestOnly

	for _, t := range r.pkg.Targets {
		if t.Visibility == nil {
			t.Visibility = r.defaultVisibility
		}
		if r.defaultTestOnly {
			t.TestOnly = true
		}
	}
}

// Attribute extraction helpers. Rule kwargs are dynamically typed; these
// accept what the dialect allows and ignore the rest.

func kwargsMap(kwargs []starlark.Tuple) map[string]starlark.Value {
	attrs := make(map[string]starlark.Value, len(kwargs))
	for _, kv := range kwargs {
		if key, ok := starlark.AsString(kv[0]); ok {
			attrs[key] = kv[1]
		}
	}
	return attrs
}

func stringAttr(attrs map[string]starlark.Value, key string) (string, bool) {
	v, ok := attrs[key]
	if !ok {
		return "", false
	}
	if s, ok := starlark.AsString(v); ok {
		return s, true
	}
	// A select() over strings flattens to a list; take the first branch.
	if vals := flattenStrings(v); len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}

func stringListAttr(attrs map[string]starlark.Value, key string) []string {
	v, ok := attrs[key]
	if !ok {
		return nil
	}
	return flattenStrings(v)
}

func intAttr(attrs map[string]starlark.Value, key string) (int, bool) {
	v, ok := attrs[key]
	if !ok {
		return 0, false
	}
	i, err := starlark.AsInt32(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func boolAttr(attrs map[string]starlark.Value, key string) (bool, bool) {
	v, ok := attrs[key]
	if !ok {
		return false, false
	}
	return bool(v.Truth()), true
}

// flattenStrings collects every string inside a value in order,
// recursing into lists and tuples. Duplicates are preserved; the
// declared lists reach lint exactly as written.
func flattenStrings(v starlark.Value) []string {
	var out []string

	var walk func(v starlark.Value)
	walk = func(v starlark.Value) {
		switch val := v.(type) {
		case starlark.String:
			out = append(out, string(val))
		case *starlark.List:
			for i := 0; i < val.Len(); i++ {
				walk(val.Index(i))
			}
		case starlark.Tuple:
			for _, e := range val {
				walk(e)
			}
		}
	}
	walk(v)
	return out
}

package build

import "sort"

// Test sizes accepted by the build dialect.
var ValidTestSizes = map[string]bool{
	"small":    true,
	"medium":   true,
	"large":    true,
	"enormous": true,
}

// Shard count bounds for test rules.
const (
	MinShardCount = 1
	MaxShardCount = 50
)

// Target is a single declared build target: the attribute surface of a
// rule invocation, with no behavioral semantics attached.
type Target struct {
	// Label is the canonical address of the target.
	Label Label
	// Kind is the rule kind that declared the target (py_library, filegroup, ...).
	Kind string
	// BuildFile is the path of the BUILD file that declared the target.
	BuildFile string

	// Srcs holds srcs entries as written: plain file names relative to the
	// package, or label references.
	Srcs []string
	// Deps holds resolved dependency labels.
	Deps []Label
	// RawDeps holds deps entries as written, index-aligned with Deps.
	RawDeps []string

	// Visibility holds the effective visibility specs for the target.
	Visibility Visibility
	// Tags holds rule tags (notap, no_pip, requires-gpu-nvidia, ...).
	Tags []string

	// TestOnly marks targets usable only from test targets.
	TestOnly bool
	// Size is the declared test size, empty for non-test rules.
	Size string
	// ShardCount is the declared test shard count, 0 when absent.
	ShardCount int

	// Packages holds the package specs of a package_group target.
	Packages []string
}

// IsTest reports whether the target was declared by a test rule.
func (t *Target) IsTest() bool {
	const suffix = "_test"
	return len(t.Kind) > len(suffix) && t.Kind[len(t.Kind)-len(suffix):] == suffix
}

// HasTag reports whether the target carries the given tag.
func (t *Target) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// Package groups the targets declared by one BUILD file.
type Package struct {
	// Path is the slash-separated package path, empty for the root package.
	Path string
	// BuildFile is the BUILD file path relative to the workspace root.
	BuildFile string
	// DefaultVisibility applies to targets that declare none.
	DefaultVisibility Visibility
	// DefaultTestOnly applies to targets that do not set testonly.
	DefaultTestOnly bool
	// Targets lists the targets in declaration order.
	Targets []*Target
}

// SortTargets orders a target slice by canonical label.
func SortTargets(ts []*Target) {
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].Label.String() < ts[j].Label.String()
	})
}

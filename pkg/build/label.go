// Package build defines the shared target model for depscope: labels,
// targets, and visibility specs as declared in BUILD files.
package build

import (
	"fmt"
	"strings"
)

// Label identifies a target by repository, package path, and name.
// The canonical form is "//pkg/path:name", or "@repo//pkg/path:name"
// for targets in external repositories.
type Label struct {
	// Repo is the external repository name, empty for the main repository.
	Repo string
	// Package is the slash-separated package path, empty for the root package.
	Package string
	// Name is the target name within the package.
	Name string
}

// ParseLabel parses a label string as it appears in a BUILD file.
// Relative forms (":name" and bare "name") are resolved against currentPkg.
// Supported forms:
//
//	//pkg/path:name
//	//pkg/path          (shorthand for //pkg/path:path)
//	@repo//pkg:name
//	:name               (relative)
//	name                (relative)
func ParseLabel(s, currentPkg string) (Label, error) {
	if s == "" {
		return Label{}, fmt.Errorf("empty label")
	}

	var repo string
	rest := s

	if strings.HasPrefix(rest, "@") {
		idx := strings.Index(rest, "//")
		if idx < 0 {
			return Label{}, fmt.Errorf("invalid external label %q: missing //", s)
		}
		repo = rest[1:idx]
		rest = rest[idx:]
	}

	switch {
	case strings.HasPrefix(rest, "//"):
		rest = rest[2:]
		pkg, name, found := strings.Cut(rest, ":")
		if !found {
			// //a/b is shorthand for //a/b:b
			name = pkg
			if i := strings.LastIndex(pkg, "/"); i >= 0 {
				name = pkg[i+1:]
			}
		}
		if name == "" {
			return Label{}, fmt.Errorf("invalid label %q: empty target name", s)
		}
		if strings.HasPrefix(pkg, "/") || strings.HasSuffix(pkg, "/") || strings.Contains(pkg, "//") {
			return Label{}, fmt.Errorf("invalid label %q: malformed package path", s)
		}
		return Label{Repo: repo, Package: pkg, Name: name}, nil

	case strings.HasPrefix(rest, ":"):
		if repo != "" {
			return Label{}, fmt.Errorf("invalid label %q: relative label with repository", s)
		}
		name := rest[1:]
		if name == "" {
			return Label{}, fmt.Errorf("invalid label %q: empty target name", s)
		}
		return Label{Package: currentPkg, Name: name}, nil

	default:
		if repo != "" {
			return Label{}, fmt.Errorf("invalid label %q: relative label with repository", s)
		}
		if strings.HasPrefix(rest, "/") {
			return Label{}, fmt.Errorf("invalid label %q: absolute paths are not labels", s)
		}
		// Bare name, relative to the current package.
		return Label{Package: currentPkg, Name: rest}, nil
	}
}

// String returns the canonical label form.
func (l Label) String() string {
	if l.Repo != "" {
		return fmt.Sprintf("@%s//%s:%s", l.Repo, l.Package, l.Name)
	}
	return fmt.Sprintf("//%s:%s", l.Package, l.Name)
}

// IsExternal reports whether the label refers to an external repository.
func (l Label) IsExternal() bool {
	return l.Repo != ""
}

// IsSourceRef reports whether a srcs entry is a label reference rather
// than a plain file name in the package directory.
func IsSourceRef(entry string) bool {
	return strings.HasPrefix(entry, "//") || strings.HasPrefix(entry, ":") || strings.HasPrefix(entry, "@")
}

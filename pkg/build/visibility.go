package build

import (
	"fmt"
	"strings"
)

// VisKind discriminates visibility spec variants.
type VisKind int

const (
	// VisPrivate allows only the declaring package.
	VisPrivate VisKind = iota
	// VisPublic allows every package.
	VisPublic
	// VisPkg allows exactly one package.
	VisPkg
	// VisSubpackages allows a package and everything beneath it.
	VisSubpackages
	// VisGroup defers to a package_group target.
	VisGroup
)

// VisibilitySpec is one entry of a visibility list.
type VisibilitySpec struct {
	Kind VisKind
	// Pkg is the package path for VisPkg and VisSubpackages.
	Pkg string
	// Group is the package_group label for VisGroup.
	Group Label
}

// Visibility is the visibility list of a target. A nil or empty list
// means package-private.
type Visibility []VisibilitySpec

// GroupLookup resolves a package_group label to its package specs.
// The second result is false when the label names no package_group.
type GroupLookup func(Label) ([]string, bool)

// ParseVisibility parses a visibility attribute value.
func ParseVisibility(entries []string, currentPkg string) (Visibility, error) {
	var vis Visibility
	for _, e := range entries {
		spec, err := parseVisibilitySpec(e, currentPkg)
		if err != nil {
			return nil, err
		}
		vis = append(vis, spec)
	}
	return vis, nil
}

func parseVisibilitySpec(s, currentPkg string) (VisibilitySpec, error) {
	switch s {
	case "//visibility:public":
		return VisibilitySpec{Kind: VisPublic}, nil
	case "//visibility:private":
		return VisibilitySpec{Kind: VisPrivate}, nil
	}

	label, err := ParseLabel(s, currentPkg)
	if err != nil {
		return VisibilitySpec{}, fmt.Errorf("invalid visibility entry %q: %w", s, err)
	}

	switch label.Name {
	case "__pkg__":
		return VisibilitySpec{Kind: VisPkg, Pkg: label.Package}, nil
	case "__subpackages__":
		return VisibilitySpec{Kind: VisSubpackages, Pkg: label.Package}, nil
	default:
		return VisibilitySpec{Kind: VisGroup, Group: label}, nil
	}
}

// Allows reports whether a target in fromPkg may depend on a target
// carrying this visibility, declared in ownPkg. Group specs are resolved
// through lookup; an unresolvable group denies.
func (v Visibility) Allows(fromPkg, ownPkg string, lookup GroupLookup) bool {
	// Same package always sees its own targets.
	if fromPkg == ownPkg {
		return true
	}

	for _, spec := range v {
		switch spec.Kind {
		case VisPublic:
			return true
		case VisPrivate:
			// Explicit private grants nothing beyond the own package.
		case VisPkg:
			if fromPkg == spec.Pkg {
				return true
			}
		case VisSubpackages:
			if pkgWithin(fromPkg, spec.Pkg) {
				return true
			}
		case VisGroup:
			if lookup == nil {
				continue
			}
			if pkgs, ok := lookup(spec.Group); ok && matchPackageSpecs(fromPkg, pkgs) {
				return true
			}
		}
	}
	return false
}

// IsPublic reports whether any spec is //visibility:public.
func (v Visibility) IsPublic() bool {
	for _, spec := range v {
		if spec.Kind == VisPublic {
			return true
		}
	}
	return false
}

// Strings returns the specs in their BUILD-file notation.
func (v Visibility) Strings() []string {
	out := make([]string, 0, len(v))
	for _, spec := range v {
		switch spec.Kind {
		case VisPublic:
			out = append(out, "//visibility:public")
		case VisPrivate:
			out = append(out, "//visibility:private")
		case VisPkg:
			out = append(out, fmt.Sprintf("//%s:__pkg__", spec.Pkg))
		case VisSubpackages:
			out = append(out, fmt.Sprintf("//%s:__subpackages__", spec.Pkg))
		case VisGroup:
			out = append(out, spec.Group.String())
		}
	}
	return out
}

// pkgWithin reports whether pkg equals base or is a subpackage of it.
func pkgWithin(pkg, base string) bool {
	if base == "" {
		return true
	}
	return pkg == base || strings.HasPrefix(pkg, base+"/")
}

// matchPackageSpecs matches a package path against package_group specs
// ("//a/b" exact, "//a/..." recursive, "//..." everything).
func matchPackageSpecs(pkg string, specs []string) bool {
	for _, s := range specs {
		s = strings.TrimPrefix(s, "//")
		if s == "..." {
			return true
		}
		if base, ok := strings.CutSuffix(s, "/..."); ok {
			if pkgWithin(pkg, base) {
				return true
			}
			continue
		}
		if pkg == s {
			return true
		}
	}
	return false
}

// Package lint provides structural checks over a loaded target graph.
// Rules are data-driven and stateless; implementations register
// themselves from the rules package via init().
package lint

import (
	"github.com/depscope-dev/depscope/pkg/build"
)

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates a violated graph invariant.
	SeverityError Severity = iota
	// SeverityWarning indicates a likely mistake worth reviewing.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
	// SeverityHint indicates a suggestion for improvement.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// ParseSeverity parses a severity name. The second result is false for
// unknown names.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	default:
		return SeverityWarning, false
	}
}

// GraphView is the read-only graph surface rules may query.
// Implemented by graph.Graph.
type GraphView interface {
	HasCycle() (bool, []string)
	Dependents(id string) []string
	Deps(id string) []string
}

// Context carries one loaded workspace snapshot into rule checks.
type Context struct {
	// Root is the absolute workspace root, used for source file checks.
	Root string
	// Targets maps canonical labels to targets.
	Targets map[string]*build.Target
	// Duplicates holds target declarations that collided on a label.
	Duplicates []*build.Target
	// Packages holds the loaded packages.
	Packages []*build.Package
	// Graph is the dependency graph over Targets.
	Graph GraphView
	// Groups resolves package_group labels.
	Groups build.GroupLookup
}

// RuleDef is a data-driven rule definition.
type RuleDef struct {
	// ID is the unique rule identifier, e.g. "DS01".
	ID string
	// Description is a one-line human-readable summary.
	Description string
	// Severity is the default severity.
	Severity Severity
	// Check runs the rule against a workspace context.
	Check CheckFunc
}

// CheckFunc analyzes a workspace and returns diagnostics.
type CheckFunc func(ctx *Context) []Diagnostic

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string
	Severity Severity
	Message  string
	// Label is the canonical label of the offending target, empty for
	// workspace-level findings.
	Label string
	// BuildFile is the manifest that declared the target.
	BuildFile string
}

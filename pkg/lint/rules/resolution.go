// Package rules implements the built-in lint rules. Importing the
// package registers every rule; commands pull it in with a blank import.
package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/depscope-dev/depscope/pkg/build"
	"github.com/depscope-dev/depscope/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS01",
		Description: "dependency label does not resolve to a declared target",
		Severity:    lint.SeverityError,
		Check:       checkUnresolvedDeps,
	})
	lint.Register(lint.RuleDef{
		ID:          "DS05",
		Description: "srcs entry names a file that does not exist",
		Severity:    lint.SeverityError,
		Check:       checkMissingSrcs,
	})
}

// checkUnresolvedDeps verifies that every in-repo dependency label
// names a declared target or an existing source file. External
// repository labels are out of scope; nothing here loads them.
func checkUnresolvedDeps(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for id, t := range ctx.Targets {
		for _, dep := range t.Deps {
			if dep.IsExternal() {
				continue
			}
			depID := dep.String()
			if _, ok := ctx.Targets[depID]; ok {
				continue
			}
			if fileExists(ctx.Root, dep.Package, dep.Name) {
				continue
			}
			diags = append(diags, lint.Diagnostic{
				Message:   fmt.Sprintf("dependency %s does not resolve to any declared target", depID),
				Label:     id,
				BuildFile: t.BuildFile,
			})
		}
	}
	return diags
}

// checkMissingSrcs verifies that plain-file srcs entries exist on disk.
// Entries that are labels resolve through DS01 instead; files declared
// as targets in the same package (generated outputs) are accepted.
func checkMissingSrcs(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for id, t := range ctx.Targets {
		for _, src := range t.Srcs {
			if build.IsSourceRef(src) {
				continue
			}
			if fileExists(ctx.Root, t.Label.Package, src) {
				continue
			}
			sibling := build.Label{Package: t.Label.Package, Name: src}
			if _, ok := ctx.Targets[sibling.String()]; ok {
				continue
			}
			diags = append(diags, lint.Diagnostic{
				Message:   fmt.Sprintf("srcs entry %q not found in package //%s", src, t.Label.Package),
				Label:     id,
				BuildFile: t.BuildFile,
			})
		}
	}
	return diags
}

func fileExists(root, pkg, name string) bool {
	path := filepath.Join(root, filepath.FromSlash(pkg), filepath.FromSlash(name))
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package rules

import (
	"fmt"

	"github.com/depscope-dev/depscope/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS03",
		Description: "dependency crosses a visibility boundary",
		Severity:    lint.SeverityError,
		Check:       checkVisibility,
	})
}

// checkVisibility verifies that every resolved dependency edge is
// permitted by the dependency's visibility declaration.
func checkVisibility(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for id, t := range ctx.Targets {
		for _, dep := range t.Deps {
			depTarget, ok := ctx.Targets[dep.String()]
			if !ok {
				// Unresolved edges are DS01's business.
				continue
			}
			if depTarget.Visibility.Allows(t.Label.Package, depTarget.Label.Package, ctx.Groups) {
				continue
			}
			diags = append(diags, lint.Diagnostic{
				Message: fmt.Sprintf("target %s is not visible from //%s",
					dep.String(), t.Label.Package),
				Label:     id,
				BuildFile: t.BuildFile,
			})
		}
	}
	return diags
}

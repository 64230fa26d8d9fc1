package rules

import (
	"fmt"
	"strings"

	"github.com/depscope-dev/depscope/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "DS02",
		Description: "dependency graph contains a cycle",
		Severity:    lint.SeverityError,
		Check:       checkCycles,
	})
}

// checkCycles reports self-dependencies and any cycle found in the
// resolved graph. Self-edges never make it into the graph, so they are
// detected from the raw target deps.
func checkCycles(ctx *lint.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic

	for id, t := range ctx.Targets {
		for _, dep := range t.Deps {
			if dep.String() == id {
				diags = append(diags, lint.Diagnostic{
					Message:   fmt.Sprintf("target %s depends on itself", id),
					Label:     id,
					BuildFile: t.BuildFile,
				})
				break
			}
		}
	}

	if ctx.Graph == nil {
		return diags
	}
	if ok, path := ctx.Graph.HasCycle(); ok {
		label := ""
		var buildFile string
		if len(path) > 0 {
			label = path[0]
			if t, found := ctx.Targets[label]; found {
				buildFile = t.BuildFile
			}
		}
		diags = append(diags, lint.Diagnostic{
			Message:   fmt.Sprintf("dependency cycle: %s", strings.Join(path, " -> ")),
			Label:     label,
			BuildFile: buildFile,
		})
	}
	return diags
}

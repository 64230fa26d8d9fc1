package commands

import (
	"fmt"
	"sort"

	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/depscope-dev/depscope/pkg/build"
	"github.com/spf13/cobra"
)

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	var transitive bool
	var depth int

	cmd := &cobra.Command{
		Use:   "deps <label>",
		Short: "Show the dependencies of a target",
		Example: `  # Direct dependencies
  depscope deps //probability/python/internal:dtype_util

  # Full transitive closure
  depscope deps --transitive //probability/python/internal:dtype_util

  # Dependencies up to two hops away
  depscope deps --depth 2 //probability/python/internal:dtype_util`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClosure(cmd, args[0], "deps", transitive, depth)
		},
	}

	cmd.Flags().BoolVarP(&transitive, "transitive", "t", false, "Include transitive dependencies")
	cmd.Flags().IntVar(&depth, "depth", 0, "Limit traversal depth (0 means unlimited)")
	return cmd
}

// NewRdepsCommand creates the rdeps command.
func NewRdepsCommand() *cobra.Command {
	var transitive bool
	var depth int

	cmd := &cobra.Command{
		Use:   "rdeps <label>",
		Short: "Show the targets that depend on a target",
		Example: `  # Direct dependents
  depscope rdeps //probability/python/internal:dtype_util

  # Everything that transitively depends on it
  depscope rdeps --transitive //probability/python/internal:dtype_util`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClosure(cmd, args[0], "rdeps", transitive, depth)
		},
	}

	cmd.Flags().BoolVarP(&transitive, "transitive", "t", false, "Include transitive dependents")
	cmd.Flags().IntVar(&depth, "depth", 0, "Limit traversal depth (0 means unlimited)")
	return cmd
}

func runClosure(cmd *cobra.Command, rawLabel, direction string, transitive bool, depth int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	label, err := build.ParseLabel(rawLabel, "")
	if err != nil {
		return err
	}
	id := label.String()

	snap, err := cmdCtx.LoadWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	if _, ok := snap.Targets[id]; !ok {
		return fmt.Errorf("no such target: %s", id)
	}

	g := snap.Graph()

	neighbors := g.Deps
	if direction == "rdeps" {
		neighbors = g.Dependents
	}

	var result []string
	switch {
	case depth > 0:
		result = walkDepth(neighbors, id, depth)
	case direction == "deps" && transitive:
		result = g.TransitiveDeps(id)
	case direction == "rdeps" && transitive:
		for _, dep := range g.TransitiveDependents([]string{id}) {
			if dep != id {
				result = append(result, dep)
			}
		}
	default:
		result = neighbors(id)
	}
	sort.Strings(result)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.ClosureOutput{
			Label:      id,
			Direction:  direction,
			Transitive: transitive,
			Targets:    result,
		})
	}

	styles := r.Styles()
	for _, dep := range result {
		r.Println(styles.Label.Render(dep))
	}
	r.Muted(fmt.Sprintf("(%d targets)", len(result)))
	return nil
}

// walkDepth collects the neighbors reachable within depth hops,
// excluding the start node.
func walkDepth(neighbors func(string) []string, id string, depth int) []string {
	seen := map[string]bool{id: true}
	frontier := []string{id}
	var out []string

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, n := range frontier {
			for _, m := range neighbors(n) {
				if seen[m] {
					continue
				}
				seen[m] = true
				out = append(out, m)
				next = append(next, m)
			}
		}
		frontier = next
	}
	return out
}

package commands

import (
	"fmt"
	"strings"

	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/depscope-dev/depscope/internal/graph"
	"github.com/spf13/cobra"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the target dependency graph",
		Long: `Display the resolved dependency graph of the workspace's targets.

Targets are grouped by dependency level: everything in one level only
depends on targets in earlier levels.`,
		Example: `  # Show the graph
  depscope graph

  # Output as JSON
  depscope graph --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraph(cmd)
		},
	}

	return cmd
}

func runGraph(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	snap, err := cmdCtx.LoadWorkspace(cmd.Context())
	if err != nil {
		return err
	}

	g := snap.Graph()
	levels, err := g.Levels()
	if err != nil {
		return fmt.Errorf("failed to level the graph: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return graphJSON(r, g, levels)
	case output.ModeMarkdown:
		return graphMarkdown(r, g, levels)
	default:
		return graphText(r, g, levels)
	}
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, g *graph.Graph, levels [][]string) error {
	styles := r.Styles()

	r.Header(1, "Target Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, id := range level {
			r.Printf("  %s\n", styles.Label.Render(id))
			if deps := g.Deps(id); len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if dependents := g.Dependents(id); len(dependents) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(dependents, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d targets, %d edges", g.NodeCount(), g.EdgeCount())))
	return nil
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, g *graph.Graph, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Target Graph"))
	r.Println("")

	for i, level := range levels {
		r.Println(output.FormatHeader(2, fmt.Sprintf("Level %d", i)))
		for _, id := range level {
			r.Printf("- %s\n", id)
			if deps := g.Deps(id); len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if dependents := g.Dependents(id); len(dependents) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(dependents, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Targets", fmt.Sprintf("%d", g.NodeCount())))
	r.Println(output.FormatKeyValue("Total Edges", fmt.Sprintf("%d", g.EdgeCount())))
	return nil
}

// graphJSON outputs the graph as JSON.
func graphJSON(r *output.Renderer, g *graph.Graph, levels [][]string) error {
	out := output.GraphOutput{
		Levels: make([]output.GraphLevel, 0, len(levels)),
		Stats: output.GraphStats{
			TotalTargets: g.NodeCount(),
			TotalEdges:   g.EdgeCount(),
			TotalLevels:  len(levels),
		},
	}

	for i, level := range levels {
		gl := output.GraphLevel{Level: i, Targets: make([]output.GraphNode, 0, len(level))}
		for _, id := range level {
			node := output.GraphNode{
				Label:      id,
				Deps:       g.Deps(id),
				Dependents: g.Dependents(id),
			}
			if n, ok := g.Node(id); ok && n.Target != nil {
				node.Kind = n.Target.Kind
			}
			gl.Targets = append(gl.Targets, node)
		}
		out.Levels = append(out.Levels, gl)
	}

	return r.JSON(out)
}

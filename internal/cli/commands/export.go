package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/depscope-dev/depscope/internal/workspace"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type exportOptions struct {
	format string
	out    string
}

// exportGraph is the serialized graph shape shared by the json and
// yaml exports.
type exportGraph struct {
	Root  string       `json:"root" yaml:"root"`
	Nodes []exportNode `json:"nodes" yaml:"nodes"`
	Edges []exportEdge `json:"edges" yaml:"edges"`
}

type exportNode struct {
	Label string `json:"label" yaml:"label"`
	Kind  string `json:"kind" yaml:"kind"`
}

type exportEdge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the target graph for other tools",
		Long: `Serialize the resolved target graph as Graphviz dot, JSON, or YAML.

Only edges between declared targets are exported; unresolved labels are
lint's concern.`,
		Example: `  # Render with Graphviz
  depscope export --format dot | dot -Tsvg -o graph.svg

  # Dump as YAML into a file
  depscope export --format yaml --out graph.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "dot", "Export format (dot|json|yaml)")
	cmd.Flags().StringVar(&opts.out, "out", "", "Write to a file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, opts *exportOptions) error {
	cmdCtx := NewCommandContext(cmd)

	snap, err := cmdCtx.LoadWorkspace(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch opts.format {
	case "dot":
		return exportDot(w, snap)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(buildExportGraph(snap))
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(buildExportGraph(snap))
	default:
		return fmt.Errorf("unknown export format %q (want dot, json, or yaml)", opts.format)
	}
}

func buildExportGraph(snap *workspace.Snapshot) exportGraph {
	out := exportGraph{Root: snap.Root}

	for _, t := range snap.TargetList() {
		id := t.Label.String()
		out.Nodes = append(out.Nodes, exportNode{Label: id, Kind: t.Kind})
		for _, dep := range t.Deps {
			depID := dep.String()
			if _, known := snap.Targets[depID]; !known || depID == id {
				continue
			}
			out.Edges = append(out.Edges, exportEdge{From: id, To: depID})
		}
	}

	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].From != out.Edges[j].From {
			return out.Edges[i].From < out.Edges[j].From
		}
		return out.Edges[i].To < out.Edges[j].To
	})
	return out
}

func exportDot(w io.Writer, snap *workspace.Snapshot) error {
	g := buildExportGraph(snap)

	var b strings.Builder
	b.WriteString("digraph targets {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, fontname=\"monospace\"];\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  %q [label=%q];\n", n.Label, n.Label+"\\n("+n.Kind+")")
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %q -> %q;\n", e.From, e.To)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

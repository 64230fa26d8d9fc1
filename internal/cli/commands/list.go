package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/depscope-dev/depscope/pkg/build"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type listOptions struct {
	kind      string
	pkg       string
	under     string
	tag       string
	testsOnly bool
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list [pattern]",
		Short: "List declared targets",
		Long: `List the targets declared by the workspace's BUILD files. An optional
pattern narrows the listing to one package (//a/b) or subtree (//a/b/...).

Output adapts to environment:
  - Terminal: styled table
  - Piped/Scripted: markdown format

Use --output to override: auto, text, markdown, json`,
		Example: `  # List every target
  depscope list

  # Everything beneath one subtree
  depscope list //probability/python/internal/...

  # Only test targets under one subtree
  depscope list --tests --under probability/python/internal

  # All py_library targets as JSON
  depscope list --kind py_library --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				applyPattern(opts, args[0])
			}
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "Filter by rule kind")
	cmd.Flags().StringVar(&opts.pkg, "package", "", "Filter by exact package path")
	cmd.Flags().StringVar(&opts.under, "under", "", "Filter by package path prefix")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Filter by tag")
	cmd.Flags().BoolVar(&opts.testsOnly, "tests", false, "Only list test targets")

	return cmd
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	snap, err := cmdCtx.LoadWorkspace(cmd.Context())
	if err != nil {
		return err
	}

	targets := filterTargets(snap.TargetList(), opts)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(r, targets)
	case output.ModeMarkdown:
		return listMarkdown(r, targets)
	default:
		return listText(r, targets)
	}
}

func filterTargets(targets []*build.Target, opts *listOptions) []*build.Target {
	var out []*build.Target
	for _, t := range targets {
		if opts.kind != "" && t.Kind != opts.kind {
			continue
		}
		if opts.pkg != "" && t.Label.Package != opts.pkg {
			continue
		}
		if opts.under != "" && !pkgUnder(t.Label.Package, opts.under) {
			continue
		}
		if opts.tag != "" && !t.HasTag(opts.tag) {
			continue
		}
		if opts.testsOnly && !t.IsTest() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// applyPattern interprets a package pattern: //a/b/... selects a
// subtree, //a/b (or a/b) one package, ... the whole workspace.
func applyPattern(opts *listOptions, pattern string) {
	p := strings.TrimPrefix(pattern, "//")
	switch {
	case p == "...":
		// Everything; no filter.
	case strings.HasSuffix(p, "/..."):
		opts.under = strings.TrimSuffix(p, "/...")
	default:
		opts.pkg = p
	}
}

func pkgUnder(pkg, base string) bool {
	return pkg == base || strings.HasPrefix(pkg, base+"/")
}

// listText renders targets as a styled table.
func listText(r *output.Renderer, targets []*build.Target) error {
	r.Header(1, fmt.Sprintf("Targets (%d total)", len(targets)))

	tw := table.NewWriter()
	tw.SetOutputMirror(r.Writer())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Label", "Kind", "Deps", "Tags"})

	for _, t := range targets {
		tw.AppendRow(table.Row{
			t.Label.String(),
			t.Kind,
			len(t.Deps),
			strings.Join(t.Tags, ", "),
		})
	}

	tw.Render()
	return nil
}

// listMarkdown renders targets as markdown sections.
func listMarkdown(r *output.Renderer, targets []*build.Target) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Targets (%d total)", len(targets))))
	r.Println("")

	for _, t := range targets {
		r.Println(output.FormatHeader(2, t.Label.String()))
		r.Println(output.FormatKeyValue("Kind", t.Kind))
		r.Println(output.FormatKeyValue("File", t.BuildFile))
		if len(t.Deps) > 0 {
			deps := make([]string, len(t.Deps))
			for i, d := range t.Deps {
				deps[i] = d.String()
			}
			r.Println(output.FormatKeyValue("Dependencies", strings.Join(deps, ", ")))
		}
		if len(t.Tags) > 0 {
			r.Println(output.FormatKeyValue("Tags", strings.Join(t.Tags, ", ")))
		}
		if t.IsTest() {
			if t.Size != "" {
				r.Println(output.FormatKeyValue("Size", t.Size))
			}
			if t.ShardCount > 0 {
				r.Println(output.FormatKeyValue("Shards", fmt.Sprintf("%d", t.ShardCount)))
			}
		}
		r.Println("")
	}

	return nil
}

// listJSON renders targets as JSON.
func listJSON(r *output.Renderer, targets []*build.Target) error {
	out := output.ListOutput{
		Targets: make([]output.TargetInfo, 0, len(targets)),
		Summary: output.ListSummary{
			TotalTargets: len(targets),
			ByKind:       make(map[string]int),
		},
	}

	for _, t := range targets {
		out.Targets = append(out.Targets, targetInfo(t))
		out.Summary.ByKind[t.Kind]++
	}
	out.Summary.TotalKinds = len(out.Summary.ByKind)

	return r.JSON(out)
}

// targetInfo converts a target into its JSON view.
func targetInfo(t *build.Target) output.TargetInfo {
	deps := make([]string, len(t.Deps))
	for i, d := range t.Deps {
		deps[i] = d.String()
	}
	sort.Strings(deps)

	return output.TargetInfo{
		Label:      t.Label.String(),
		Kind:       t.Kind,
		Package:    t.Label.Package,
		BuildFile:  t.BuildFile,
		Srcs:       t.Srcs,
		Deps:       deps,
		Visibility: t.Visibility.Strings(),
		Tags:       t.Tags,
		TestOnly:   t.TestOnly,
		Size:       t.Size,
		ShardCount: t.ShardCount,
	}
}

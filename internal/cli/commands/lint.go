package commands

import (
	"fmt"

	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/depscope-dev/depscope/pkg/lint"
	"github.com/spf13/cobra"

	// Register the built-in rules.
	_ "github.com/depscope-dev/depscope/pkg/lint/rules"
)

type lintOptions struct {
	severity string
	failOn   string
	disable  []string
	rules    []string
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the target graph for structural problems",
		Long: `Run the structural rules against the workspace: unresolved
dependencies, cycles, visibility violations, duplicate targets, missing
sources, and test metadata mistakes.

The command exits non-zero when findings at or above the fail-on
threshold exist.`,
		Example: `  # Lint the workspace
  depscope lint

  # Show everything down to hints
  depscope lint --severity hint

  # Fail the run on warnings too
  depscope lint --fail-on warning

  # Skip the orphan rule, or run a single rule
  depscope lint --disable DS07
  depscope lint --rule DS01 --rule DS02`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.severity, "severity", "hint", "Minimum severity to report (error|warning|info|hint)")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "Severity threshold that fails the run (defaults to config)")
	cmd.Flags().StringSliceVar(&opts.disable, "disable", nil, "Rule IDs to skip")
	cmd.Flags().StringSliceVar(&opts.rules, "rule", nil, "Run only these rule IDs")

	return cmd
}

func runLint(cmd *cobra.Command, opts *lintOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	reportAt, ok := lint.ParseSeverity(opts.severity)
	if !ok {
		return fmt.Errorf("invalid severity %q", opts.severity)
	}

	failAt := cmdCtx.Cfg.FailThreshold()
	if opts.failOn != "" {
		failAt, ok = lint.ParseSeverity(opts.failOn)
		if !ok {
			return fmt.Errorf("invalid fail-on severity %q", opts.failOn)
		}
	}

	snap, err := cmdCtx.LoadWorkspace(cmd.Context())
	if err != nil {
		return err
	}

	lintCtx := &lint.Context{
		Root:       snap.Root,
		Targets:    snap.Targets,
		Duplicates: snap.Duplicates,
		Packages:   snap.Packages,
		Graph:      snap.Graph(),
		Groups:     snap.GroupLookup(),
	}

	lintCfg := cmdCtx.Cfg.LintSettings()
	for _, id := range opts.disable {
		lintCfg.Disable(id)
	}
	if len(opts.rules) > 0 {
		keep := make(map[string]bool, len(opts.rules))
		for _, id := range opts.rules {
			keep[id] = true
		}
		for _, def := range lint.GetAll() {
			if !keep[def.ID] {
				lintCfg.Disable(def.ID)
			}
		}
	}

	analyzer := lint.NewAnalyzer(lintCfg)
	diags := lint.Filter(analyzer.Analyze(lintCtx), reportAt)

	if err := renderDiagnostics(r, diags); err != nil {
		return err
	}

	if failing := lint.Filter(diags, failAt); len(failing) > 0 {
		return fmt.Errorf("%d finding(s) at or above %s", len(failing), failAt)
	}
	return nil
}

func renderDiagnostics(r *output.Renderer, diags []lint.Diagnostic) error {
	if r.EffectiveMode() == output.ModeJSON {
		return lintJSON(r, diags)
	}

	if len(diags) == 0 {
		r.Success("no findings")
		return nil
	}

	styles := r.Styles()
	for _, d := range diags {
		sev := d.Severity.String()
		switch d.Severity {
		case lint.SeverityError:
			sev = styles.Error.Render(sev)
		case lint.SeverityWarning:
			sev = styles.Warning.Render(sev)
		default:
			sev = styles.Muted.Render(sev)
		}
		r.Printf("%s %s: %s", sev, styles.Bold.Render(d.RuleID), d.Message)
		if d.BuildFile != "" {
			r.Printf("  %s", styles.Muted.Render("("+d.BuildFile+")"))
		}
		r.Println("")
	}

	summary := summarize(diags)
	r.Println("")
	r.Muted(fmt.Sprintf("%d finding(s): %d error, %d warning, %d info, %d hint",
		summary.Total, summary.Errors, summary.Warnings, summary.Infos, summary.Hints))
	return nil
}

func lintJSON(r *output.Renderer, diags []lint.Diagnostic) error {
	out := output.LintOutput{
		Diagnostics: make([]output.DiagnosticInfo, 0, len(diags)),
		Summary:     summarize(diags),
	}
	for _, d := range diags {
		out.Diagnostics = append(out.Diagnostics, output.DiagnosticInfo{
			RuleID:    d.RuleID,
			Severity:  d.Severity.String(),
			Message:   d.Message,
			Label:     d.Label,
			BuildFile: d.BuildFile,
		})
	}
	return r.JSON(out)
}

func summarize(diags []lint.Diagnostic) output.LintSummary {
	s := output.LintSummary{Total: len(diags)}
	for _, d := range diags {
		switch d.Severity {
		case lint.SeverityError:
			s.Errors++
		case lint.SeverityWarning:
			s.Warnings++
		case lint.SeverityInfo:
			s.Infos++
		case lint.SeverityHint:
			s.Hints++
		}
	}
	return s
}

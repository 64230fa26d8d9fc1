package commands

import (
	"fmt"

	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/depscope-dev/depscope/pkg/build"
	"github.com/spf13/cobra"
)

// NewPathCommand creates the path command.
func NewPathCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Show one dependency path between two targets",
		Long: `Find one path through the dependency graph from one target down to
another. Useful for answering "why does X depend on Y".`,
		Example: `  depscope path //probability:probability //probability/python/internal:dtype_util`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd, args[0], args[1])
		},
	}
	return cmd
}

func runPath(cmd *cobra.Command, rawFrom, rawTo string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	from, err := build.ParseLabel(rawFrom, "")
	if err != nil {
		return err
	}
	to, err := build.ParseLabel(rawTo, "")
	if err != nil {
		return err
	}

	snap, err := cmdCtx.LoadWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	for _, id := range []string{from.String(), to.String()} {
		if _, ok := snap.Targets[id]; !ok {
			return fmt.Errorf("no such target: %s", id)
		}
	}

	path := snap.Graph().SomePath(from.String(), to.String())

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.PathOutput{
			From:  from.String(),
			To:    to.String(),
			Found: path != nil,
			Path:  path,
		})
	}

	if path == nil {
		r.Muted(fmt.Sprintf("no path from %s to %s", from.String(), to.String()))
		return nil
	}

	styles := r.Styles()
	for i, id := range path {
		if i == 0 {
			r.Println(styles.Label.Render(id))
			continue
		}
		r.Printf("  %s %s\n", styles.Muted.Render("->"), styles.Label.Render(id))
	}
	return nil
}

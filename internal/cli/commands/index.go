package commands

import (
	"fmt"
	"time"

	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewIndexCommand creates the index command and its subcommands.
func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Snapshot the workspace into the local index",
		Long: `Parse the workspace and store the resulting target graph in the index
database, so deps, rdeps, and raw SQL queries run without reparsing.`,
		Example: `  # Index the current workspace
  depscope index

  # Show stored snapshots
  depscope index list

  # Drop an old snapshot
  depscope index delete 3f8a...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndexSave(cmd)
		},
	}

	cmd.AddCommand(newIndexListCommand())
	cmd.AddCommand(newIndexDeleteCommand())

	return cmd
}

func runIndexSave(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	snap, err := cmdCtx.LoadWorkspace(cmd.Context())
	if err != nil {
		return err
	}

	store, cleanup, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	start := time.Now()
	id, err := store.SaveSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	cmdCtx.Logger.Debug("snapshot saved", "id", id, "elapsed", time.Since(start))

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(output.SnapshotInfoOutput{
			ID:           id,
			Root:         snap.Root,
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			PackageCount: len(snap.Packages),
			TargetCount:  len(snap.Targets),
		})
	}

	r.Success(fmt.Sprintf("indexed %d targets in %d packages (snapshot %s)",
		len(snap.Targets), len(snap.Packages), id))
	return nil
}

func newIndexListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			store, cleanup, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			snapshots, err := store.ListSnapshots()
			if err != nil {
				return err
			}

			if r.EffectiveMode() == output.ModeJSON {
				out := make([]output.SnapshotInfoOutput, 0, len(snapshots))
				for _, s := range snapshots {
					out = append(out, output.SnapshotInfoOutput{
						ID:           s.ID,
						Root:         s.Root,
						CreatedAt:    s.CreatedAt.UTC().Format(time.RFC3339),
						PackageCount: s.PackageCount,
						TargetCount:  s.TargetCount,
					})
				}
				return r.JSON(out)
			}

			if len(snapshots) == 0 {
				r.Muted("no snapshots; run `depscope index` first")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(r.Writer())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"ID", "Created", "Packages", "Targets"})
			for _, s := range snapshots {
				tw.AppendRow(table.Row{
					s.ID,
					s.CreatedAt.UTC().Format(time.RFC3339),
					s.PackageCount,
					s.TargetCount,
				})
			}
			tw.Render()
			return nil
		},
	}
}

func newIndexDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <snapshot-id>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			store, cleanup, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.DeleteSnapshot(args[0]); err != nil {
				return err
			}
			cmdCtx.Renderer.Success("deleted snapshot " + args[0])
			return nil
		},
	}
}

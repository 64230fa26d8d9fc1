package commands

import (
	"fmt"
	"os"

	"github.com/depscope-dev/depscope/internal/workspace"
	"github.com/spf13/cobra"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the workspace and index setup",
		Long: `Run a quick health check: workspace root, BUILD file discovery, a full
parse, graph shape, and the index database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
	return cmd
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	failed := 0

	fail := func(msg string) {
		r.Error(msg)
		failed++
	}

	// Workspace root.
	root := cmdCtx.Cfg.WorkspaceRoot
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		fail(fmt.Sprintf("workspace root %s is not a directory", root))
	} else if workspace.FindRoot(root) != root {
		r.Warning(fmt.Sprintf("no workspace marker in %s (WORKSPACE, MODULE.bazel, or depscope.yaml)", root))
		r.Success("workspace root exists: " + root)
	} else {
		r.Success("workspace root: " + root)
	}

	// Discovery.
	loader := workspace.NewLoader(root)
	loader.BuildFileNames = cmdCtx.Cfg.BuildFileNames
	loader.Ignore = cmdCtx.Cfg.Ignore

	files, err := loader.Discover(cmd.Context())
	switch {
	case err != nil:
		fail(fmt.Sprintf("discovery failed: %v", err))
	case len(files) == 0:
		fail("no BUILD files found")
	default:
		r.Success(fmt.Sprintf("%d BUILD files discovered", len(files)))
	}

	// Full parse and graph shape.
	if len(files) > 0 {
		snap, err := cmdCtx.LoadWorkspace(cmd.Context())
		if err != nil {
			fail(fmt.Sprintf("parse failed: %v", err))
		} else {
			r.Success(fmt.Sprintf("parsed %d targets in %d packages", len(snap.Targets), len(snap.Packages)))

			g := snap.Graph()
			if cyclic, path := g.HasCycle(); cyclic {
				fail(fmt.Sprintf("dependency cycle involving %s", path[0]))
			} else {
				r.Success(fmt.Sprintf("graph acyclic (%d edges)", g.EdgeCount()))
			}
		}
	}

	// Index database.
	statePath := cmdCtx.Cfg.StatePath
	if _, err := os.Stat(statePath); os.IsNotExist(err) && statePath != ":memory:" {
		r.Warning(fmt.Sprintf("no index database at %s (run 'depscope index' to create one)", statePath))
	} else {
		store, cleanup, err := cmdCtx.OpenStore()
		if err != nil {
			fail(fmt.Sprintf("index database unusable: %v", err))
		} else {
			version, verr := store.GetMigrationVersion()
			latest, lerr := store.LatestSnapshot()
			cleanup()
			if verr != nil {
				fail(fmt.Sprintf("index migrations broken: %v", verr))
			} else {
				r.Success(fmt.Sprintf("index database at migration version %d", version))
			}
			if lerr == nil && latest != nil {
				r.Muted(fmt.Sprintf("latest snapshot: %s (%d targets)", latest.ID, latest.TargetCount))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	r.Println("")
	r.Success("all checks passed")
	return nil
}

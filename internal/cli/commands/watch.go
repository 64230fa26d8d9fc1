package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/depscope-dev/depscope/internal/parser"
	"github.com/depscope-dev/depscope/pkg/lint"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check the workspace whenever a BUILD file changes",
		Long: `Watch the workspace for BUILD file changes and rerun the structural
checks after each change. Runs until interrupted.`,
		Example: `  depscope watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
	return cmd
}

func runWatch(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchWorkspaceDirs(watcher, cmdCtx.Cfg.WorkspaceRoot); err != nil {
		return fmt.Errorf("failed to watch workspace: %w", err)
	}

	// Initial check.
	if err := checkOnce(ctx, cmdCtx); err != nil {
		r.Error(err.Error())
	}

	r.Muted(fmt.Sprintf("watching %s for BUILD file changes (Ctrl+C to stop)", cmdCtx.Cfg.WorkspaceRoot))

	buildNames := cmdCtx.Cfg.BuildFileNames
	if len(buildNames) == 0 {
		buildNames = parser.BuildFileNames
	}

	debounce := time.Duration(cmdCtx.Cfg.Watch.DebounceMS) * time.Millisecond
	var timer *time.Timer
	runs := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isBuildFile(filepath.Base(event.Name), buildNames) {
				continue
			}

			cmdCtx.Logger.Debug("build file changed", "file", event.Name, "op", event.Op.String())

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case runs <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Error(fmt.Sprintf("watch error: %v", err))

		case <-runs:
			r.Println("")
			if err := checkOnce(ctx, cmdCtx); err != nil {
				r.Error(err.Error())
			}
		}
	}
}

// checkOnce reloads the workspace and reports lint findings.
func checkOnce(ctx context.Context, cmdCtx *CommandContext) error {
	start := time.Now()
	snap, err := cmdCtx.LoadWorkspace(ctx)
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

	analyzer := lint.NewAnalyzer(cmdCtx.Cfg.LintSettings())
	diags := analyzer.Analyze(lintCtx)

	r := cmdCtx.Renderer
	r.Muted(fmt.Sprintf("%s  %d targets, %d packages, checked in %s",
		time.Now().Format("15:04:05"), len(snap.Targets), len(snap.Packages),
		time.Since(start).Round(time.Millisecond)))
	return renderDiagnostics(r, diags)
}

// watchWorkspaceDirs recursively watches every directory beneath root,
// skipping hidden and bazel output directories.
func watchWorkspaceDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "bazel-")) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isBuildFile(name string, buildNames []string) bool {
	for _, candidate := range buildNames {
		if name == candidate {
			return true
		}
	}
	return false
}

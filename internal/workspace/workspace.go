// Package workspace discovers BUILD files beneath a workspace root and
// loads them into a Snapshot of the declared target graph.
package workspace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/depscope-dev/depscope/internal/graph"
	"github.com/depscope-dev/depscope/internal/parser"
	"github.com/depscope-dev/depscope/pkg/build"
	"golang.org/x/sync/errgroup"
)

// Marker files that identify a workspace root.
var rootMarkers = []string{"WORKSPACE", "WORKSPACE.bazel", "MODULE.bazel", "depscope.yaml", "depscope.yml"}

// maxUpwardSearchLevels limits how far up the directory tree to search
// for a workspace root.
const maxUpwardSearchLevels = 10

// FindRoot searches upward from startDir for a workspace marker.
// Returns empty string if none is found.
func FindRoot(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Snapshot is one fully loaded view of a workspace's declared targets.
type Snapshot struct {
	// Root is the absolute workspace root.
	Root string
	// Packages holds loaded packages sorted by path.
	Packages []*build.Package
	// Targets maps canonical labels to targets. On duplicate declarations
	// the first one wins.
	Targets map[string]*build.Target
	// Duplicates holds later declarations that collided on a label.
	Duplicates []*build.Target
}

// Loader walks a workspace and parses its BUILD files.
type Loader struct {
	// Root is the absolute workspace root.
	Root string
	// BuildFileNames overrides the recognized manifest names.
	BuildFileNames []string
	// Ignore lists directory names (or glob patterns) to skip.
	Ignore []string
	// Concurrency bounds parallel package parsing; 0 means NumCPU.
	Concurrency int
	// Logger receives progress events; nil discards them.
	Logger *slog.Logger
}

// NewLoader creates a loader with default settings for the given root.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

func (l *Loader) buildFileNames() []string {
	if len(l.BuildFileNames) > 0 {
		return l.BuildFileNames
	}
	return parser.BuildFileNames
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Discover returns the BUILD file paths beneath the root, sorted.
// A directory holding several recognized names contributes only the
// highest-priority one, so one directory is always one package.
func (l *Loader) Discover(ctx context.Context) ([]string, error) {
	names := l.buildFileNames()
	best := make(map[string]int) // directory -> index into names

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path == l.Root {
				return nil
			}
			if l.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		for i, name := range names {
			if d.Name() == name {
				dir := filepath.Dir(path)
				if cur, ok := best[dir]; !ok || i < cur {
					best[dir] = i
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}

	files := make([]string, 0, len(best))
	for dir, i := range best {
		files = append(files, filepath.Join(dir, names[i]))
	}
	sort.Strings(files)
	return files, nil
}

// skipDir reports whether a directory should not be descended into.
func (l *Loader) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "bazel-") {
		return true
	}
	for _, pattern := range l.Ignore {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Load discovers and parses the workspace into a Snapshot. Packages are
// parsed concurrently; the first parse error aborts the load.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	files, err := l.Discover(ctx)
	if err != nil {
		return nil, err
	}

	log := l.logger()
	log.Debug("discovered build files", "count", len(files))

	p := parser.New(l.Root)
	packages := make([]*build.Package, len(files))

	concurrency := l.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			pkg, err := p.ParseFile(file)
			if err != nil {
				return err
			}
			mu.Lock()
			packages[i] = pkg
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Root:     l.Root,
		Packages: packages,
		Targets:  make(map[string]*build.Target),
	}
	for _, pkg := range packages {
		for _, t := range pkg.Targets {
			id := t.Label.String()
			if _, exists := snap.Targets[id]; exists {
				snap.Duplicates = append(snap.Duplicates, t)
				continue
			}
			snap.Targets[id] = t
		}
	}

	log.Debug("loaded workspace",
		"packages", len(snap.Packages),
		"targets", len(snap.Targets),
		"duplicates", len(snap.Duplicates))

	return snap, nil
}

// Graph builds the dependency graph over the snapshot's targets. Edges
// to unknown labels are skipped; lint reports them separately.
func (s *Snapshot) Graph() *graph.Graph {
	g := graph.New()
	for id, t := range s.Targets {
		g.AddTarget(id, t)
	}
	for id, t := range s.Targets {
		for _, dep := range t.Deps {
			depID := dep.String()
			if _, known := s.Targets[depID]; !known {
				continue
			}
			if depID == id {
				continue
			}
			_ = g.AddDep(id, depID)
		}
	}
	return g
}

// GroupLookup resolves package_group labels against the snapshot.
func (s *Snapshot) GroupLookup() build.GroupLookup {
	return func(l build.Label) ([]string, bool) {
		t, ok := s.Targets[l.String()]
		if !ok || t.Kind != "package_group" {
			return nil, false
		}
		return t.Packages, true
	}
}

// TargetList returns the snapshot's targets sorted by label.
func (s *Snapshot) TargetList() []*build.Target {
	out := make([]*build.Target, 0, len(s.Targets))
	for _, t := range s.Targets {
		out = append(out, t)
	}
	build.SortTargets(out)
	return out
}

// PackageOf returns the loaded package with the given path.
func (s *Snapshot) PackageOf(path string) (*build.Package, bool) {
	for _, pkg := range s.Packages {
		if pkg.Path == path {
			return pkg, true
		}
	}
	return nil, false
}

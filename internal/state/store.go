// Package state persists workspace snapshots to a local SQLite index so
// targets and dependency edges can be queried without reparsing BUILD
// files.
package state

import (
	"time"

	"github.com/depscope-dev/depscope/internal/workspace"
)

// SnapshotInfo describes one indexed snapshot of a workspace.
type SnapshotInfo struct {
	ID           string
	Root         string
	CreatedAt    time.Time
	PackageCount int
	TargetCount  int
}

// TargetRow is one indexed target as stored in the database.
type TargetRow struct {
	SnapshotID string
	Label      string
	Package    string
	Name       string
	Kind       string
	BuildFile  string
	TestOnly   bool
	Size       string
	ShardCount int
	Visibility []string
	Tags       []string
	Srcs       []string
	Deps       []string
}

// TargetFilter narrows ListTargets results. Zero values match everything.
type TargetFilter struct {
	// Kind matches the rule kind exactly.
	Kind string
	// Package matches the package path exactly.
	Package string
	// PackagePrefix matches the package path and everything beneath it.
	PackagePrefix string
}

// QueryResult holds the outcome of a raw read-only query.
type QueryResult struct {
	Columns []string
	Rows    [][]string
}

// Store is the persistence interface for workspace snapshots.
type Store interface {
	// SaveSnapshot indexes a loaded workspace and returns the snapshot ID.
	SaveSnapshot(snap *workspace.Snapshot) (string, error)

	// GetSnapshot retrieves snapshot metadata by ID.
	GetSnapshot(id string) (*SnapshotInfo, error)

	// LatestSnapshot retrieves the most recent snapshot, or nil when the
	// index is empty.
	LatestSnapshot() (*SnapshotInfo, error)

	// ListSnapshots retrieves all snapshots, newest first.
	ListSnapshots() ([]*SnapshotInfo, error)

	// DeleteSnapshot removes a snapshot and its rows.
	DeleteSnapshot(id string) error

	// ListTargets retrieves targets of a snapshot matching the filter,
	// sorted by label.
	ListTargets(snapshotID string, filter TargetFilter) ([]*TargetRow, error)

	// GetTarget retrieves a single target by canonical label.
	GetTarget(snapshotID, label string) (*TargetRow, error)

	// TransitiveDeps returns the transitive dependency closure of a label.
	TransitiveDeps(snapshotID, label string) ([]string, error)

	// TransitiveRdeps returns the transitive reverse-dependency closure.
	TransitiveRdeps(snapshotID, label string) ([]string, error)

	// Query runs a raw read-only SQL query against the index.
	Query(query string) (*QueryResult, error)

	Close() error
}

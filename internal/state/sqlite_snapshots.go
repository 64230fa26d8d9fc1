package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/depscope-dev/depscope/internal/workspace"
)

// SaveSnapshot indexes a loaded workspace in one transaction and
// returns the new snapshot ID.
func (s *SQLiteStore) SaveSnapshot(snap *workspace.Snapshot) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	id := generateID()
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO snapshots (id, root, created_at, package_count, target_count) VALUES (?, ?, ?, ?, ?)`,
		id, snap.Root, now, len(snap.Packages), len(snap.Targets),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	pkgStmt, err := tx.Prepare(
		`INSERT INTO packages (snapshot_id, path, build_file, default_testonly) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare package insert: %w", err)
	}
	defer pkgStmt.Close()

	for _, pkg := range snap.Packages {
		if _, err := pkgStmt.Exec(id, pkg.Path, pkg.BuildFile, pkg.DefaultTestOnly); err != nil {
			return "", fmt.Errorf("failed to insert package //%s: %w", pkg.Path, err)
		}
	}

	targetStmt, err := tx.Prepare(
		`INSERT INTO targets (snapshot_id, label, package, name, kind, build_file, testonly, size, shard_count, visibility, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare target insert: %w", err)
	}
	defer targetStmt.Close()

	srcStmt, err := tx.Prepare(
		`INSERT INTO target_srcs (snapshot_id, label, src) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare src insert: %w", err)
	}
	defer srcStmt.Close()

	depStmt, err := tx.Prepare(
		`INSERT INTO target_deps (snapshot_id, label, dep, raw) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare dep insert: %w", err)
	}
	defer depStmt.Close()

	for _, t := range snap.TargetList() {
		label := t.Label.String()
		_, err := targetStmt.Exec(id, label, t.Label.Package, t.Label.Name, t.Kind, t.BuildFile,
			t.TestOnly, t.Size, t.ShardCount, joinList(t.Visibility.Strings()), joinList(t.Tags))
		if err != nil {
			return "", fmt.Errorf("failed to insert target %s: %w", label, err)
		}

		for _, src := range t.Srcs {
			if _, err := srcStmt.Exec(id, label, src); err != nil {
				return "", fmt.Errorf("failed to insert src for %s: %w", label, err)
			}
		}

		for i, dep := range t.Deps {
			raw := dep.String()
			if i < len(t.RawDeps) {
				raw = t.RawDeps[i]
			}
			if _, err := depStmt.Exec(id, label, dep.String(), raw); err != nil {
				return "", fmt.Errorf("failed to insert dep for %s: %w", label, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return id, nil
}

// GetSnapshot retrieves snapshot metadata by ID.
func (s *SQLiteStore) GetSnapshot(id string) (*SnapshotInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	info := &SnapshotInfo{}
	err := s.db.QueryRow(
		`SELECT id, root, created_at, package_count, target_count FROM snapshots WHERE id = ?`,
		id,
	).Scan(&info.ID, &info.Root, &info.CreatedAt, &info.PackageCount, &info.TargetCount)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return info, nil
}

// LatestSnapshot retrieves the most recent snapshot. Returns nil
// without error when the index is empty.
func (s *SQLiteStore) LatestSnapshot() (*SnapshotInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	info := &SnapshotInfo{}
	err := s.db.QueryRow(
		`SELECT id, root, created_at, package_count, target_count
		 FROM snapshots ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&info.ID, &info.Root, &info.CreatedAt, &info.PackageCount, &info.TargetCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return info, nil
}

// ListSnapshots retrieves all snapshots, newest first.
func (s *SQLiteStore) ListSnapshots() ([]*SnapshotInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, root, created_at, package_count, target_count
		 FROM snapshots ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []*SnapshotInfo
	for rows.Next() {
		info := &SnapshotInfo{}
		if err := rows.Scan(&info.ID, &info.Root, &info.CreatedAt, &info.PackageCount, &info.TargetCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		infos = append(infos, info)
	}

	return infos, rows.Err()
}

// DeleteSnapshot removes a snapshot and all rows referencing it.
func (s *SQLiteStore) DeleteSnapshot(id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	return nil
}

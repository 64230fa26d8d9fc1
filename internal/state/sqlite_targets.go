package state

import (
	"database/sql"
	"fmt"
)

const targetColumns = `label, package, name, kind, build_file, testonly, size, shard_count, visibility, tags`

func scanTargetRow(snapshotID string, scan func(...any) error) (*TargetRow, error) {
	row := &TargetRow{SnapshotID: snapshotID}
	var visibility, tags string
	err := scan(&row.Label, &row.Package, &row.Name, &row.Kind, &row.BuildFile,
		&row.TestOnly, &row.Size, &row.ShardCount, &visibility, &tags)
	if err != nil {
		return nil, err
	}
	row.Visibility = splitList(visibility)
	row.Tags = splitList(tags)
	return row, nil
}

// ListTargets retrieves targets of a snapshot matching the filter,
// sorted by label. Srcs and deps are not populated; use GetTarget for
// the full record.
func (s *SQLiteStore) ListTargets(snapshotID string, filter TargetFilter) ([]*TargetRow, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT ` + targetColumns + ` FROM targets WHERE snapshot_id = ?`
	args := []any{snapshotID}

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	if filter.Package != "" {
		query += ` AND package = ?`
		args = append(args, filter.Package)
	}
	if filter.PackagePrefix != "" {
		query += ` AND (package = ? OR package LIKE ?)`
		args = append(args, filter.PackagePrefix, filter.PackagePrefix+"/%")
	}
	query += ` ORDER BY label`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []*TargetRow
	for rows.Next() {
		row, err := scanTargetRow(snapshotID, rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, row)
	}

	return targets, rows.Err()
}

// GetTarget retrieves a single target with its srcs and deps.
func (s *SQLiteStore) GetTarget(snapshotID, label string) (*TargetRow, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	sqlRow := s.db.QueryRow(
		`SELECT `+targetColumns+` FROM targets WHERE snapshot_id = ? AND label = ?`,
		snapshotID, label)

	row, err := scanTargetRow(snapshotID, sqlRow.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("target not found: %s", label)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target: %w", err)
	}

	row.Srcs, err = s.stringColumn(
		`SELECT src FROM target_srcs WHERE snapshot_id = ? AND label = ? ORDER BY src`,
		snapshotID, label)
	if err != nil {
		return nil, fmt.Errorf("failed to get srcs for %s: %w", label, err)
	}

	row.Deps, err = s.stringColumn(
		`SELECT dep FROM target_deps WHERE snapshot_id = ? AND label = ? ORDER BY dep`,
		snapshotID, label)
	if err != nil {
		return nil, fmt.Errorf("failed to get deps for %s: %w", label, err)
	}

	return row, nil
}

// TransitiveDeps returns the transitive dependency closure of a label,
// sorted, excluding the label itself.
func (s *SQLiteStore) TransitiveDeps(snapshotID, label string) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	return s.stringColumn(`
		WITH RECURSIVE closure(node) AS (
			SELECT dep FROM target_deps WHERE snapshot_id = ?1 AND label = ?2
			UNION
			SELECT td.dep FROM target_deps td
			JOIN closure c ON td.label = c.node
			WHERE td.snapshot_id = ?1
		)
		SELECT node FROM closure WHERE node != ?2 ORDER BY node`,
		snapshotID, label)
}

// TransitiveRdeps returns the transitive reverse-dependency closure of
// a label, sorted, excluding the label itself.
func (s *SQLiteStore) TransitiveRdeps(snapshotID, label string) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	return s.stringColumn(`
		WITH RECURSIVE closure(node) AS (
			SELECT label FROM target_deps WHERE snapshot_id = ?1 AND dep = ?2
			UNION
			SELECT td.label FROM target_deps td
			JOIN closure c ON td.dep = c.node
			WHERE td.snapshot_id = ?1
		)
		SELECT node FROM closure WHERE node != ?2 ORDER BY node`,
		snapshotID, label)
}

// stringColumn runs a query whose result is a single text column.
func (s *SQLiteStore) stringColumn(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

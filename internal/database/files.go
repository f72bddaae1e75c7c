package database

import (
	"context"
	"database/sql"
	"time"

	"vfx-indexer/internal/logging"
)

// replaceTimeout bounds the transactional snapshot replace; large project
// trees can carry tens of thousands of rows.
const replaceTimeout = 60 * time.Second

// ReplaceProjectFiles replaces all persisted file rows for a project with
// the given snapshot in one transaction. Readers never observe a partially
// replaced mirror.
func (d *Database) ReplaceProjectFiles(ctx context.Context, projectID string, rows []FileRow) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("replace_project_files", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, replaceTimeout)
	defer cancel()

	var tx *sql.Tx
	tx, err = d.db.BeginTx(opCtx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				logging.Error("rollback failed for project %s: %v", projectID, rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(opCtx, `DELETE FROM project_files WHERE project_id = ?`, projectID); err != nil {
		return err
	}

	stmt, prepErr := tx.PrepareContext(opCtx, `
		INSERT INTO project_files
			(id, project_id, path, rel_path, file_type, folder, shot_group,
			 base_name, version_token, version_ordinal, mod_time, first_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if prepErr != nil {
		err = prepErr
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err = stmt.ExecContext(opCtx,
			row.ID, projectID, row.Path, row.RelPath, row.FileType,
			row.Folder, row.ShotGroup, row.BaseName,
			row.VersionToken, row.VersionOrdinal,
			row.ModTime.Unix(), row.FirstSeen.Unix(),
		); err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

// ListProjectFiles returns the persisted file rows for a project, ordered
// by path for stable output.
func (d *Database) ListProjectFiles(ctx context.Context, projectID string) ([]FileRow, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_project_files", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows *sql.Rows
	rows, err = d.db.QueryContext(opCtx, `
		SELECT id, project_id, path, rel_path, file_type, folder, shot_group,
		       base_name, version_token, version_ordinal, mod_time, first_seen
		FROM project_files WHERE project_id = ? ORDER BY path`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]FileRow, 0)
	for rows.Next() {
		var (
			f                  FileRow
			modTime, firstSeen int64
		)
		if err = rows.Scan(&f.ID, &f.ProjectID, &f.Path, &f.RelPath, &f.FileType,
			&f.Folder, &f.ShotGroup, &f.BaseName,
			&f.VersionToken, &f.VersionOrdinal, &modTime, &firstSeen); err != nil {
			return nil, err
		}
		f.ModTime = time.Unix(modTime, 0)
		f.FirstSeen = time.Unix(firstSeen, 0)
		files = append(files, f)
	}
	err = rows.Err()
	return files, err
}

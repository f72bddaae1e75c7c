package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrProjectNotFound is returned when a project ID matches no row.
var ErrProjectNotFound = errors.New("project not found")

// ErrProjectExists is returned when a project name is already registered.
var ErrProjectExists = errors.New("project already exists")

// CreateProject inserts a new project and returns it with identity and
// timestamps filled in.
func (d *Database) CreateProject(ctx context.Context, p Project) (Project, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_project", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(opCtx, `
		INSERT INTO projects (id, name, root, client, scan_dirs, include_patterns, exclude_patterns, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Root, p.Client,
		encodeList(p.ScanDirs), encodeList(p.IncludePatterns), encodeList(p.ExcludePatterns),
		now.Unix(), now.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("%w: %s", ErrProjectExists, p.Name)
		}
		return Project{}, err
	}
	return p, nil
}

// GetProject fetches one project by ID.
func (d *Database) GetProject(ctx context.Context, id string) (Project, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_project", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(opCtx, `
		SELECT id, name, root, client, scan_dirs, include_patterns, exclude_patterns, created_at, updated_at
		FROM projects WHERE id = ?`, id)

	var p Project
	p, err = scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return p, err
}

// ListProjects returns all projects ordered by name.
func (d *Database) ListProjects(ctx context.Context) ([]Project, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_projects", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows *sql.Rows
	rows, err = d.db.QueryContext(opCtx, `
		SELECT id, name, root, client, scan_dirs, include_patterns, exclude_patterns, created_at, updated_at
		FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var p Project
		if p, err = scanProject(rows); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	err = rows.Err()
	return projects, err
}

// DeleteProject removes a project; its file rows cascade.
func (d *Database) DeleteProject(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_project", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res sql.Result
	res, err = d.db.ExecContext(opCtx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return err
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p                          Project
		scanDirs, include, exclude string
		createdAt, updatedAt       int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Root, &p.Client, &scanDirs, &include, &exclude, &createdAt, &updatedAt)
	if err != nil {
		return Project{}, err
	}
	p.ScanDirs = decodeList(scanDirs)
	p.IncludePatterns = decodeList(include)
	p.ExcludePatterns = decodeList(exclude)
	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return p, nil
}

// encodeList stores a string slice as JSON text; nil encodes as "[]".
func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(text string) []string {
	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil
	}
	return list
}

// isUniqueViolation matches SQLite unique-constraint failures without
// depending on driver error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

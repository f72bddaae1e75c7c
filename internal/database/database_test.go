package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testDB(t *testing.T) *Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "index.db")
	d, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return d
}

func TestProjectCRUD(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	created, err := d.CreateProject(ctx, Project{
		Name:            "bala",
		Root:            "/mnt/projects/bala",
		Client:          "acme",
		ScanDirs:        []string{"comp", "anim"},
		IncludePatterns: []string{"*.nk", "*.aep"},
		ExcludePatterns: []string{"renders/*"},
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateProject did not assign an ID")
	}

	got, err := d.GetProject(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Name != "bala" || got.Root != "/mnt/projects/bala" || got.Client != "acme" {
		t.Errorf("GetProject = %+v", got)
	}
	if len(got.ScanDirs) != 2 || got.ScanDirs[0] != "comp" {
		t.Errorf("ScanDirs = %v", got.ScanDirs)
	}
	if len(got.IncludePatterns) != 2 || len(got.ExcludePatterns) != 1 {
		t.Errorf("patterns = %v / %v", got.IncludePatterns, got.ExcludePatterns)
	}

	// Duplicate names are rejected.
	if _, err := d.CreateProject(ctx, Project{Name: "bala", Root: "/elsewhere"}); !errors.Is(err, ErrProjectExists) {
		t.Errorf("duplicate CreateProject error = %v, want ErrProjectExists", err)
	}

	projects, err := d.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("ListProjects returned %d projects, want 1", len(projects))
	}

	if err := d.DeleteProject(ctx, created.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := d.GetProject(ctx, created.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("GetProject after delete error = %v, want ErrProjectNotFound", err)
	}
	if err := d.DeleteProject(ctx, created.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("repeat DeleteProject error = %v, want ErrProjectNotFound", err)
	}
}

func fileRow(projectID, path string, ordinal int) FileRow {
	return FileRow{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		Path:           path,
		RelPath:        filepath.Base(path),
		FileType:       "nuke",
		Folder:         "comp",
		ShotGroup:      "BALA",
		BaseName:       "shot010_comp",
		VersionToken:   "v001",
		VersionOrdinal: ordinal,
		ModTime:        time.Now().Truncate(time.Second),
		FirstSeen:      time.Now().Truncate(time.Second),
	}
}

func TestReplaceProjectFiles(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	p, err := d.CreateProject(ctx, Project{Name: "bala", Root: "/mnt/projects/bala"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	first := []FileRow{
		fileRow(p.ID, "/mnt/projects/bala/comp/a_v001.nk", 1),
		fileRow(p.ID, "/mnt/projects/bala/comp/a_v002.nk", 2),
	}
	if err := d.ReplaceProjectFiles(ctx, p.ID, first); err != nil {
		t.Fatalf("ReplaceProjectFiles: %v", err)
	}

	rows, err := d.ListProjectFiles(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListProjectFiles: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	// Replace shrinks the mirror to the new snapshot.
	second := []FileRow{fileRow(p.ID, "/mnt/projects/bala/comp/b_v001.nk", 1)}
	if err := d.ReplaceProjectFiles(ctx, p.ID, second); err != nil {
		t.Fatalf("ReplaceProjectFiles: %v", err)
	}
	rows, err = d.ListProjectFiles(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListProjectFiles: %v", err)
	}
	if len(rows) != 1 || rows[0].Path != "/mnt/projects/bala/comp/b_v001.nk" {
		t.Errorf("rows after replace = %+v", rows)
	}

	// Deleting the project cascades to its file rows.
	if err := d.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	rows, err = d.ListProjectFiles(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListProjectFiles: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows after project delete = %d, want 0", len(rows))
	}
}

func TestReplaceProjectFilesEmptySnapshot(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	p, err := d.CreateProject(ctx, Project{Name: "bala", Root: "/mnt/projects/bala"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if err := d.ReplaceProjectFiles(ctx, p.ID, []FileRow{fileRow(p.ID, "/a.nk", 1)}); err != nil {
		t.Fatalf("ReplaceProjectFiles: %v", err)
	}
	if err := d.ReplaceProjectFiles(ctx, p.ID, nil); err != nil {
		t.Fatalf("ReplaceProjectFiles(empty): %v", err)
	}

	rows, err := d.ListProjectFiles(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListProjectFiles: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

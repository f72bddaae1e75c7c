package indexstore

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"vfx-indexer/internal/artifacttypes"
)

// Record is one indexed file within a project.
type Record struct {
	ID             uuid.UUID              `json:"id"`
	ProjectID      string                 `json:"projectId"`
	Path           string                 `json:"path"`
	RelPath        string                 `json:"relPath"`
	FileType       artifacttypes.FileType `json:"fileType"`
	Folder         string                 `json:"folder"`
	ShotGroup      string                 `json:"shotGroup"`
	BaseName       string                 `json:"baseName"`
	VersionToken   string                 `json:"versionToken,omitempty"`
	VersionOrdinal int                    `json:"versionOrdinal"`
	ModTime        time.Time              `json:"modTime"`
	FirstSeen      time.Time              `json:"firstSeen"`
}

// FromFile builds a Record for one on-disk file. Both the scanner and the
// watcher funnel through this so a watched change and a fresh scan classify
// identically. The error is artifacttypes.ErrUnrecognizedFormat for
// extensionless names; the record is still valid then, typed "other".
func FromFile(projectID, root, path string, modTime time.Time) (Record, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Record{}, err
	}

	name := filepath.Base(path)
	c, classifyErr := artifacttypes.Classify(name)
	parts := artifacttypes.Group(filepath.Dir(rel), name)

	return Record{
		ProjectID:      projectID,
		Path:           path,
		RelPath:        filepath.ToSlash(rel),
		FileType:       c.Type,
		Folder:         parts.Folder,
		ShotGroup:      parts.ShotGroup,
		BaseName:       parts.BaseName,
		VersionToken:   c.VersionToken,
		VersionOrdinal: c.VersionOrdinal,
		ModTime:        modTime,
	}, classifyErr
}

// Key returns the grouping key the record files under.
func (r Record) Key() artifacttypes.Key {
	return artifacttypes.Key{
		Type:      r.FileType,
		Folder:    r.Folder,
		ShotGroup: r.ShotGroup,
		BaseName:  r.BaseName,
	}
}

// sameContent reports whether two records describe the same on-disk state,
// ignoring identity fields assigned by the store.
func (r Record) sameContent(o Record) bool {
	return r.RelPath == o.RelPath &&
		r.FileType == o.FileType &&
		r.Folder == o.Folder &&
		r.ShotGroup == o.ShotGroup &&
		r.BaseName == o.BaseName &&
		r.VersionToken == o.VersionToken &&
		r.VersionOrdinal == o.VersionOrdinal &&
		r.ModTime.Equal(o.ModTime)
}

// ChangeSet summarizes what a reconcile or delta changed.
type ChangeSet struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// Empty reports whether the change set did nothing.
func (c ChangeSet) Empty() bool {
	return c.Added == 0 && c.Updated == 0 && c.Removed == 0
}

// Group is one logical artifact with its versions ordered newest-first.
type Group struct {
	Key     artifacttypes.Key `json:"key"`
	Records []Record          `json:"records"`
}

// View is an immutable snapshot of one project's index.
type View struct {
	ProjectID   string    `json:"projectId"`
	UpdatedAt   time.Time `json:"updatedAt"`
	RecordCount int       `json:"recordCount"`
	Groups      []Group   `json:"groups"`
}

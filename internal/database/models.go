package database

import "time"

// Project is a registered VFX project whose root directory gets indexed.
type Project struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Root            string    `json:"root"`
	Client          string    `json:"client,omitempty"`
	ScanDirs        []string  `json:"scanDirs"`
	IncludePatterns []string  `json:"includePatterns"`
	ExcludePatterns []string  `json:"excludePatterns"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FileRow is one persisted file record, mirroring an indexstore.Record.
type FileRow struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	Path           string    `json:"path"`
	RelPath        string    `json:"relPath"`
	FileType       string    `json:"fileType"`
	Folder         string    `json:"folder"`
	ShotGroup      string    `json:"shotGroup"`
	BaseName       string    `json:"baseName"`
	VersionToken   string    `json:"versionToken"`
	VersionOrdinal int       `json:"versionOrdinal"`
	ModTime        time.Time `json:"modTime"`
	FirstSeen      time.Time `json:"firstSeen"`
}

package artifacttypes

import (
	"path/filepath"
	"regexp"
	"strings"
)

// RootFolder is the folder label for files directly under the project root.
const RootFolder = "Root"

// DefaultShotGroup is the shot group for filenames with no recognizable
// shot prefix.
const DefaultShotGroup = "Other"

// shotGroupPattern matches a leading alphanumeric run terminated by an
// underscore, e.g. the "BALA" in "BALA_shot010_comp_v003.nk".
var shotGroupPattern = regexp.MustCompile(`^([A-Za-z0-9]+)_`)

// Key identifies one logical artifact across its versions.
type Key struct {
	Type      FileType `json:"fileType"`
	Folder    string   `json:"folder"`
	ShotGroup string   `json:"shotGroup"`
	BaseName  string   `json:"baseName"`
}

// String renders the key in a stable form usable as a map key or overlay
// reference.
func (k Key) String() string {
	return string(k.Type) + "/" + k.Folder + "/" + k.ShotGroup + "/" + k.BaseName
}

// GroupParts is the grouping triple derived from a path and filename.
type GroupParts struct {
	Folder    string
	ShotGroup string
	BaseName  string
}

// Group derives the grouping parts for a file. It is pure and never fails.
//
// Folder is the first component of the parent path relative to the project
// root, or RootFolder when the file sits directly under the root. ShotGroup
// is the uppercased leading token of the filename (DefaultShotGroup when
// absent). BaseName is the filename stem with the shot prefix and version
// token stripped.
func Group(relParent, filename string) GroupParts {
	parts := GroupParts{
		Folder:    RootFolder,
		ShotGroup: DefaultShotGroup,
	}

	relParent = strings.Trim(filepath.ToSlash(relParent), "/")
	if relParent != "" && relParent != "." {
		if i := strings.IndexByte(relParent, '/'); i >= 0 {
			parts.Folder = relParent[:i]
		} else {
			parts.Folder = relParent
		}
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	base, _, _ := splitVersion(stem)

	if m := shotGroupPattern.FindStringSubmatch(base); m != nil {
		parts.ShotGroup = strings.ToUpper(m[1])
		base = strings.TrimPrefix(base, m[0])
	}
	parts.BaseName = base

	return parts
}

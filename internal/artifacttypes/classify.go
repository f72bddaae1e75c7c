package artifacttypes

import (
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnrecognizedFormat is returned by Classify when the filename carries no
// extension at all. Callers still index such files under FileTypeOther.
var ErrUnrecognizedFormat = errors.New("filename has no extension")

// versionPattern matches a trailing version segment in a filename stem:
// an optional v/V prefix followed by digits, optionally separated from the
// rest of the stem by "_" or ".". Examples: "_v007", ".V12", "_003".
var versionPattern = regexp.MustCompile(`([._]?)([vV]?)(\d+)$`)

// Classification is the parsed form of an artifact filename.
type Classification struct {
	Type           FileType
	BaseName       string
	VersionToken   string
	VersionOrdinal int
}

// Classify parses a filename into its file type, base name and version.
//
// The base name is the stem with the version token stripped. The version
// token preserves leading zeros ("v007"); the ordinal is its numeric value.
// A stem without a version segment yields an empty token and ordinal 0.
//
// The only failure mode is a missing extension, signalled with
// ErrUnrecognizedFormat; the returned Classification is still usable
// (FileTypeOther, version parsed from the stem as usual).
func Classify(filename string) (Classification, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	c := Classification{Type: TypeForExtension(ext)}
	c.BaseName, c.VersionToken, c.VersionOrdinal = splitVersion(stem)

	if ext == "" {
		return c, ErrUnrecognizedFormat
	}
	return c, nil
}

// splitVersion strips a trailing version segment from a filename stem.
// Returns the remaining base, the display token (leading zeros preserved,
// separator excluded) and the numeric ordinal.
func splitVersion(stem string) (base, token string, ordinal int) {
	m := versionPattern.FindStringSubmatchIndex(stem)
	if m == nil {
		return stem, "", 0
	}

	// m[2]:m[3] separator, m[4]:m[5] v prefix, m[6]:m[7] digits
	digits := stem[m[6]:m[7]]
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Digit run too long to fit an int; treat as unversioned.
		return stem, "", 0
	}

	token = stem[m[4]:m[5]] + digits
	base = strings.TrimRight(stem[:m[0]], "_.")
	return base, token, n
}

// Matches reports whether a path passes the include/exclude pattern filter.
//
// A path is included iff it matches at least one include pattern (an empty
// include list matches everything) and matches no exclude pattern. Patterns
// use filepath.Match glob syntax and are evaluated case-insensitively
// against both the base filename and the full relative path.
func Matches(relPath string, includePatterns, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if matchPattern(pattern, relPath) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return true
	}
	for _, pattern := range includePatterns {
		if matchPattern(pattern, relPath) {
			return true
		}
	}
	return false
}

// matchPattern evaluates one glob against the base name and the relative
// path. Malformed patterns never match.
func matchPattern(pattern, relPath string) bool {
	pattern = strings.ToLower(pattern)
	name := strings.ToLower(filepath.Base(relPath))
	rel := strings.ToLower(filepath.ToSlash(relPath))

	if ok, err := filepath.Match(pattern, name); err == nil && ok {
		return true
	}
	if ok, err := filepath.Match(pattern, rel); err == nil && ok {
		return true
	}

	// Bare-extension patterns like ".nk" act as suffix matches.
	if strings.HasPrefix(pattern, ".") && !strings.ContainsAny(pattern, "*?[") {
		return strings.HasSuffix(name, pattern)
	}
	return false
}

// Package version picks the default version of an artifact group and
// resolves explicit version references against it.
package version

import (
	"errors"
	"strconv"
	"strings"

	"vfx-indexer/internal/indexstore"
)

// ErrVersionNotFound is returned when a requested version token matches no
// record in the group. Callers holding a stale reference fall back to
// Default.
var ErrVersionNotFound = errors.New("version not found in group")

// Default returns the group's current version: the record with the highest
// version ordinal, ties broken by latest modification time, then by
// lexicographically greatest path. Returns false for an empty group.
func Default(records []indexstore.Record) (indexstore.Record, bool) {
	if len(records) == 0 {
		return indexstore.Record{}, false
	}

	best := records[0]
	for _, r := range records[1:] {
		if ranksAbove(r, best) {
			best = r
		}
	}
	return best, true
}

// Resolve returns the record matching a version token. Tokens match exactly
// first; failing that, numerically ("v3" resolves "v003"). An empty token
// resolves to Default.
func Resolve(records []indexstore.Record, token string) (indexstore.Record, error) {
	if token == "" {
		if best, ok := Default(records); ok {
			return best, nil
		}
		return indexstore.Record{}, ErrVersionNotFound
	}

	for _, r := range records {
		if r.VersionToken == token {
			return r, nil
		}
	}

	if ordinal, ok := parseToken(token); ok {
		var (
			best  indexstore.Record
			found bool
		)
		for _, r := range records {
			if r.VersionOrdinal != ordinal || r.VersionToken == "" {
				continue
			}
			if !found || ranksAbove(r, best) {
				best = r
				found = true
			}
		}
		if found {
			return best, nil
		}
	}

	return indexstore.Record{}, ErrVersionNotFound
}

// ranksAbove reports whether a outranks b in the version total order.
func ranksAbove(a, b indexstore.Record) bool {
	if a.VersionOrdinal != b.VersionOrdinal {
		return a.VersionOrdinal > b.VersionOrdinal
	}
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Path > b.Path
}

// parseToken extracts the numeric ordinal from a version token like "v003"
// or "12".
func parseToken(token string) (int, bool) {
	digits := strings.TrimLeft(token, "vV")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

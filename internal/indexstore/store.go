package indexstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vfx-indexer/internal/artifacttypes"
)

// Store maps project IDs to their in-memory indexes. All methods are safe
// for concurrent use; mutations to a project are serialized by its lock.
type Store struct {
	mu       sync.RWMutex
	projects map[string]*projectIndex
}

// projectIndex is the index for a single project. byPath, byID and grouped
// are kept consistent under mu; grouped is rebuilt and swapped wholesale on
// every mutation so readers never see a half-updated map.
type projectIndex struct {
	mu        sync.RWMutex
	byPath    map[string]*Record
	byID      map[uuid.UUID]*Record
	grouped   map[artifacttypes.Key][]*Record
	updatedAt time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{projects: make(map[string]*projectIndex)}
}

func (s *Store) project(projectID string, create bool) *projectIndex {
	s.mu.RLock()
	idx := s.projects[projectID]
	s.mu.RUnlock()
	if idx != nil || !create {
		return idx
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx = s.projects[projectID]; idx == nil {
		idx = &projectIndex{
			byPath:  make(map[string]*Record),
			byID:    make(map[uuid.UUID]*Record),
			grouped: make(map[artifacttypes.Key][]*Record),
		}
		s.projects[projectID] = idx
	}
	return idx
}

// Reconcile replaces a project's index with the given full snapshot,
// diffing against the current state by path. Records whose on-disk state is
// unchanged keep their identity (ID, FirstSeen). Reconciling the same
// snapshot twice is a no-op the second time.
func (s *Store) Reconcile(projectID string, snapshot []Record) ChangeSet {
	idx := s.project(projectID, true)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	now := time.Now()
	var change ChangeSet

	next := make(map[string]*Record, len(snapshot))
	for i := range snapshot {
		rec := snapshot[i]
		rec.ProjectID = projectID

		if prev, ok := idx.byPath[rec.Path]; ok {
			if prev.sameContent(rec) {
				next[rec.Path] = prev
				continue
			}
			rec.ID = prev.ID
			rec.FirstSeen = prev.FirstSeen
			next[rec.Path] = &rec
			change.Updated++
			continue
		}

		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if rec.FirstSeen.IsZero() {
			rec.FirstSeen = now
		}
		next[rec.Path] = &rec
		change.Added++
	}

	for path := range idx.byPath {
		if _, ok := next[path]; !ok {
			change.Removed++
		}
	}

	if change.Empty() {
		return change
	}
	idx.swap(next, now)
	return change
}

// ApplyDelta upserts and removes individual records, classifying each upsert
// as add or update by path. Used by the watcher for incremental updates.
func (s *Store) ApplyDelta(projectID string, upserts []Record, removedPaths []string) ChangeSet {
	idx := s.project(projectID, true)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	now := time.Now()
	var change ChangeSet

	next := make(map[string]*Record, len(idx.byPath))
	for path, rec := range idx.byPath {
		next[path] = rec
	}
	for _, path := range removedPaths {
		if _, ok := next[path]; ok {
			delete(next, path)
			change.Removed++
		}
	}
	for i := range upserts {
		rec := upserts[i]
		rec.ProjectID = projectID

		if prev, ok := next[rec.Path]; ok {
			if prev.sameContent(rec) {
				continue
			}
			rec.ID = prev.ID
			rec.FirstSeen = prev.FirstSeen
			next[rec.Path] = &rec
			change.Updated++
			continue
		}

		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if rec.FirstSeen.IsZero() {
			rec.FirstSeen = now
		}
		next[rec.Path] = &rec
		change.Added++
	}

	if change.Empty() {
		return change
	}
	idx.swap(next, now)
	return change
}

// swap installs a new byPath map and rebuilds the derived indexes.
// Caller holds idx.mu.
func (idx *projectIndex) swap(next map[string]*Record, now time.Time) {
	byID := make(map[uuid.UUID]*Record, len(next))
	grouped := make(map[artifacttypes.Key][]*Record)
	for _, rec := range next {
		byID[rec.ID] = rec
		key := rec.Key()
		grouped[key] = append(grouped[key], rec)
	}
	for _, recs := range grouped {
		sortVersions(recs)
	}

	idx.byPath = next
	idx.byID = byID
	idx.grouped = grouped
	idx.updatedAt = now
}

// sortVersions orders a group newest-first: highest ordinal, then latest
// modification time, then lexicographically greatest path.
func sortVersions(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.VersionOrdinal != b.VersionOrdinal {
			return a.VersionOrdinal > b.VersionOrdinal
		}
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.Path > b.Path
	})
}

// Read returns a deep-copied snapshot of a project's index. The second
// return is false when the project has never been indexed.
func (s *Store) Read(projectID string) (View, bool) {
	idx := s.project(projectID, false)
	if idx == nil {
		return View{}, false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	view := View{
		ProjectID:   projectID,
		UpdatedAt:   idx.updatedAt,
		RecordCount: len(idx.byPath),
		Groups:      make([]Group, 0, len(idx.grouped)),
	}
	for key, recs := range idx.grouped {
		g := Group{Key: key, Records: make([]Record, len(recs))}
		for i, rec := range recs {
			g.Records[i] = *rec
		}
		view.Groups = append(view.Groups, g)
	}
	sort.Slice(view.Groups, func(i, j int) bool {
		return view.Groups[i].Key.String() < view.Groups[j].Key.String()
	})
	return view, true
}

// Versions returns the version-ordered records for one grouping key,
// deep-copied. The bool is false when the project or group is unknown.
func (s *Store) Versions(projectID string, key artifacttypes.Key) ([]Record, bool) {
	idx := s.project(projectID, false)
	if idx == nil {
		return nil, false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	recs, ok := idx.grouped[key]
	if !ok {
		return nil, false
	}
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = *rec
	}
	return out, true
}

// Count returns the number of records indexed for a project.
func (s *Store) Count(projectID string) int {
	idx := s.project(projectID, false)
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byPath)
}

// Totals returns the number of tracked projects and indexed records.
func (s *Store) Totals() (projects, records int) {
	s.mu.RLock()
	indexes := make([]*projectIndex, 0, len(s.projects))
	for _, idx := range s.projects {
		indexes = append(indexes, idx)
	}
	s.mu.RUnlock()

	for _, idx := range indexes {
		idx.mu.RLock()
		records += len(idx.byPath)
		idx.mu.RUnlock()
	}
	return len(indexes), records
}

// Drop discards a project's index entirely. No-op for unknown projects.
func (s *Store) Drop(projectID string) {
	s.mu.Lock()
	delete(s.projects, projectID)
	s.mu.Unlock()
}

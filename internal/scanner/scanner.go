// Package scanner walks project roots and reconciles what it finds into the
// in-memory index and the SQLite mirror. Scans for the same project are
// serialized and coalesced: a scan requested while one is already running
// waits for and shares that run's result.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"vfx-indexer/internal/artifacttypes"
	"vfx-indexer/internal/database"
	"vfx-indexer/internal/filesystem"
	"vfx-indexer/internal/indexstore"
	"vfx-indexer/internal/logging"
	"vfx-indexer/internal/metrics"
	"vfx-indexer/internal/workers"
)

// ErrInvalidRoot is returned when a project root does not exist or is not a
// directory. No reconciliation happens in that case; the previous index
// stays intact.
var ErrInvalidRoot = errors.New("project root is not a readable directory")

// maxScanWorkers caps the concurrent directory walks per scan.
const maxScanWorkers = 8

// Request identifies what to scan. Patterns use the same glob semantics as
// the watcher.
type Request struct {
	ProjectID       string
	Root            string
	ScanDirs        []string
	IncludePatterns []string
	ExcludePatterns []string
}

// Result summarizes one completed scan.
type Result struct {
	RecordCount int                  `json:"recordCount"`
	Change      indexstore.ChangeSet `json:"change"`
	Warnings    []string             `json:"warnings,omitempty"`
	Duration    time.Duration        `json:"-"`
	DurationMS  int64                `json:"durationMs"`
}

// Scanner builds full project snapshots. db may be nil to skip the
// persistence mirror (used in tests).
type Scanner struct {
	store *indexstore.Store
	db    *database.Database
	retry filesystem.RetryConfig
	group singleflight.Group
}

// New creates a Scanner writing into the given store and mirror.
func New(store *indexstore.Store, db *database.Database) *Scanner {
	return &Scanner{
		store: store,
		db:    db,
		retry: filesystem.DefaultRetryConfig(),
	}
}

// Scan walks the project and reconciles the index. Concurrent calls for the
// same project share a single walk; the error is ErrInvalidRoot for a bad
// root, or the context error when the scan was canceled mid-walk.
func (s *Scanner) Scan(ctx context.Context, req Request) (Result, error) {
	v, err, shared := s.group.Do(req.ProjectID, func() (any, error) {
		return s.scan(ctx, req)
	})
	if shared {
		metrics.ScanRunsTotal.WithLabelValues("coalesced").Inc()
	}
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (s *Scanner) scan(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	metrics.ScansRunning.Inc()
	defer metrics.ScansRunning.Dec()

	info, err := filesystem.StatWithRetry(req.Root, s.retry)
	if err != nil || !info.IsDir() {
		metrics.ScanRunsTotal.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidRoot, req.Root)
	}

	roots, warnings := s.resolveScanDirs(req)

	var (
		mu      sync.Mutex
		records []indexstore.Record
	)
	collect := func(recs []indexstore.Record, warns []string) {
		mu.Lock()
		records = append(records, recs...)
		warnings = append(warnings, warns...)
		mu.Unlock()
	}

	g, walkCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers.ForIO(maxScanWorkers))
	for _, dir := range roots {
		dir := dir
		g.Go(func() error {
			recs, warns, err := s.walk(walkCtx, req, dir)
			if err != nil {
				return err
			}
			collect(recs, warns)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Cancellation mid-walk discards the partial snapshot.
		metrics.ScanRunsTotal.WithLabelValues("canceled").Inc()
		logging.Info("scan canceled for project %s: %v", req.ProjectID, err)
		return Result{}, err
	}

	records = dedupeByPath(records)
	metrics.ScanFilesSeen.Add(float64(len(records)))

	// The snapshot reflects each directory as of when the walk passed it.
	// A file created behind the walk whose watch delta lands first is
	// removed here and only restored by the next scan; mutations during a
	// scan are reconciled against the tree the walk saw, not the live one.
	change := s.store.Reconcile(req.ProjectID, records)
	s.mirror(ctx, req.ProjectID, &warnings)

	projects, total := s.store.Totals()
	metrics.IndexedProjects.Set(float64(projects))
	metrics.IndexedRecords.Set(float64(total))
	metrics.ScanRunsTotal.WithLabelValues("ok").Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	metrics.ScanLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.ScanWarnings.Add(float64(len(warnings)))

	duration := time.Since(start)
	logging.Info("scan complete for project %s: %d records (%d added, %d updated, %d removed), %d warnings in %v",
		req.ProjectID, len(records), change.Added, change.Updated, change.Removed, len(warnings), duration)

	return Result{
		RecordCount: len(records),
		Change:      change,
		Warnings:    warnings,
		Duration:    duration,
		DurationMS:  duration.Milliseconds(),
	}, nil
}

// resolveScanDirs maps the configured scan dirs onto existing directories
// under the root. An empty list means the whole root; missing dirs produce
// warnings, not failures.
func (s *Scanner) resolveScanDirs(req Request) (roots, warnings []string) {
	if len(req.ScanDirs) == 0 {
		return []string{req.Root}, nil
	}
	for _, dir := range req.ScanDirs {
		full := filepath.Join(req.Root, dir)
		info, err := filesystem.StatWithRetry(full, s.retry)
		if err != nil || !info.IsDir() {
			warnings = append(warnings, fmt.Sprintf("scan dir %s: not a readable directory", dir))
			continue
		}
		roots = append(roots, full)
	}
	return roots, warnings
}

// walk recursively visits one directory tree. Per-entry failures become
// warnings; only context cancellation aborts the walk.
func (s *Scanner) walk(ctx context.Context, req Request, dir string) ([]indexstore.Record, []string, error) {
	var (
		records  []indexstore.Record
		warnings []string
	)

	var visit func(dir string) error
	visit = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := filesystem.ReadDirWithRetry(dir, s.retry)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("read %s: %v", dir, err))
			return nil
		}

		for _, entry := range entries {
			name := entry.Name()
			if name == "" || name[0] == '.' {
				continue
			}
			// Symlinks are never followed; a link cycle must not hang a scan.
			if entry.Type()&os.ModeSymlink != 0 {
				continue
			}

			full := filepath.Join(dir, name)
			rel, err := filepath.Rel(req.Root, full)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("relativize %s: %v", full, err))
				continue
			}

			if entry.IsDir() {
				if excludedDir(rel, req.ExcludePatterns) {
					continue
				}
				if err := visit(full); err != nil {
					return err
				}
				continue
			}

			if !artifacttypes.Matches(rel, req.IncludePatterns, req.ExcludePatterns) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("stat %s: %v", full, err))
				continue
			}

			rec, err := indexstore.FromFile(req.ProjectID, req.Root, full, info.ModTime())
			if err != nil {
				if !errors.Is(err, artifacttypes.ErrUnrecognizedFormat) {
					warnings = append(warnings, fmt.Sprintf("record %s: %v", rel, err))
					continue
				}
				// Extensionless files are still indexed under "other".
				warnings = append(warnings, fmt.Sprintf("classify %s: %v", rel, err))
			}
			records = append(records, rec)
		}
		return nil
	}

	if err := visit(dir); err != nil {
		return nil, nil, err
	}
	return records, warnings, nil
}

// excludedDir reports whether a directory's relative path matches an
// exclude pattern, pruning the walk below it.
func excludedDir(rel string, excludePatterns []string) bool {
	return len(excludePatterns) > 0 &&
		!artifacttypes.Matches(rel, nil, excludePatterns)
}

// mirror writes the reconciled snapshot to SQLite. Mirror failures degrade
// to warnings; the in-memory index is already consistent.
func (s *Scanner) mirror(ctx context.Context, projectID string, warnings *[]string) {
	if s.db == nil {
		return
	}

	view, ok := s.store.Read(projectID)
	if !ok {
		return
	}
	rows := make([]database.FileRow, 0, view.RecordCount)
	for _, g := range view.Groups {
		for _, r := range g.Records {
			rows = append(rows, database.FileRow{
				ID:             r.ID.String(),
				ProjectID:      projectID,
				Path:           r.Path,
				RelPath:        r.RelPath,
				FileType:       string(r.FileType),
				Folder:         r.Folder,
				ShotGroup:      r.ShotGroup,
				BaseName:       r.BaseName,
				VersionToken:   r.VersionToken,
				VersionOrdinal: r.VersionOrdinal,
				ModTime:        r.ModTime,
				FirstSeen:      r.FirstSeen,
			})
		}
	}
	if err := s.db.ReplaceProjectFiles(ctx, projectID, rows); err != nil {
		logging.Warn("persistence mirror failed for project %s: %v", projectID, err)
		*warnings = append(*warnings, fmt.Sprintf("persistence mirror: %v", err))
	}
}

// dedupeByPath drops duplicate records produced by overlapping scan dirs,
// keeping a deterministic ordering.
func dedupeByPath(records []indexstore.Record) []indexstore.Record {
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	out := records[:0]
	var last string
	for _, r := range records {
		if r.Path == last {
			continue
		}
		out = append(out, r)
		last = r.Path
	}
	return out
}

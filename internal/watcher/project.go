package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vfx-indexer/internal/artifacttypes"
	"vfx-indexer/internal/indexstore"
	"vfx-indexer/internal/logging"
	"vfx-indexer/internal/metrics"
)

// pendingBuffer bounds the flush queue. A full queue drops the flush and
// logs; the next scan repairs anything missed.
const pendingBuffer = 1024

// projectWatcher follows one project's directory tree. Debounce timers fire
// on their own goroutines, but every index mutation funnels through the
// single consume goroutine so deltas apply in arrival order.
type projectWatcher struct {
	req       Request
	store     *indexstore.Store
	fsw       *fsnotify.Watcher
	debounce  time.Duration
	startedAt time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	dirs   int

	pending chan string
	done    chan struct{}
	wg      sync.WaitGroup
}

func newProjectWatcher(req Request, store *indexstore.Store, debounce time.Duration) (*projectWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	pw := &projectWatcher{
		req:       req,
		store:     store,
		fsw:       fsw,
		debounce:  debounce,
		startedAt: time.Now(),
		timers:    make(map[string]*time.Timer),
		pending:   make(chan string, pendingBuffer),
		done:      make(chan struct{}),
	}

	roots := []string{req.Root}
	if len(req.ScanDirs) > 0 {
		roots = roots[:0]
		for _, dir := range req.ScanDirs {
			roots = append(roots, filepath.Join(req.Root, dir))
		}
	}
	var lastErr error
	watched := false
	for _, root := range roots {
		if err := pw.addRecursive(root, false); err != nil {
			lastErr = err
		} else {
			watched = true
		}
	}
	if !watched {
		fsw.Close()
		return nil, lastErr
	}

	pw.wg.Add(2)
	go pw.loop()
	go pw.consume()
	return pw, nil
}

func (pw *projectWatcher) stop() {
	close(pw.done)
	if err := pw.fsw.Close(); err != nil {
		logging.Warn("closing watcher for project %s: %v", pw.req.ProjectID, err)
	}
	pw.wg.Wait()

	pw.mu.Lock()
	for path, timer := range pw.timers {
		timer.Stop()
		delete(pw.timers, path)
	}
	metrics.WatchedDirectories.Sub(float64(pw.dirs))
	pw.dirs = 0
	pw.mu.Unlock()
}

func (pw *projectWatcher) dirCount() int {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.dirs
}

// addRecursive watches dir and every non-hidden, non-excluded directory
// below it. When enqueueFiles is set, files found along the way are
// scheduled for a flush; a directory created and populated before its watch
// lands would otherwise be missed.
func (pw *projectWatcher) addRecursive(dir string, enqueueFiles bool) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}
	if pw.excludedDir(dir) {
		return nil
	}

	if err := pw.fsw.Add(dir); err != nil {
		return err
	}
	pw.mu.Lock()
	pw.dirs++
	pw.mu.Unlock()
	metrics.WatchedDirectories.Inc()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == "" || name[0] == '.' {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		full := filepath.Join(dir, name)
		if entry.IsDir() {
			if err := pw.addRecursive(full, enqueueFiles); err != nil {
				logging.Warn("watch %s: %v", full, err)
			}
			continue
		}
		if enqueueFiles {
			pw.schedule(full)
		}
	}
	return nil
}

// loop drains fsnotify until the handle closes.
func (pw *projectWatcher) loop() {
	defer pw.wg.Done()

	for {
		select {
		case event, ok := <-pw.fsw.Events:
			if !ok {
				return
			}
			pw.handle(event)
		case err, ok := <-pw.fsw.Errors:
			if !ok {
				return
			}
			metrics.WatcherErrors.Inc()
			logging.Warn("watcher error for project %s: %v", pw.req.ProjectID, err)
		case <-pw.done:
			return
		}
	}
}

func (pw *projectWatcher) handle(event fsnotify.Event) {
	metrics.WatcherEventsTotal.WithLabelValues(opLabel(event.Op)).Inc()

	name := filepath.Base(event.Name)
	if name == "" || name[0] == '.' {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		// A created directory extends the watch set and may already hold
		// files. A rename into the tree arrives as Create for the new path.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := pw.addRecursive(event.Name, true); err != nil {
				logging.Warn("watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}

	// Everything else resolves at flush time: a stat decides between upsert
	// and removal, which makes remove, rename-away and overwrite uniform.
	pw.schedule(event.Name)
}

// schedule (re)arms the debounce timer for a path.
func (pw *projectWatcher) schedule(path string) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if timer, ok := pw.timers[path]; ok {
		timer.Reset(pw.debounce)
		return
	}
	pw.timers[path] = time.AfterFunc(pw.debounce, func() {
		pw.mu.Lock()
		delete(pw.timers, path)
		pw.mu.Unlock()

		select {
		case pw.pending <- path:
		case <-pw.done:
		default:
			metrics.WatcherErrors.Inc()
			logging.Warn("watcher queue full for project %s, dropping %s", pw.req.ProjectID, path)
		}
	})
}

// consume applies flushes sequentially.
func (pw *projectWatcher) consume() {
	defer pw.wg.Done()

	for {
		select {
		case path := <-pw.pending:
			pw.flush(path)
		case <-pw.done:
			return
		}
	}
}

// flush reconciles a single path against the filesystem.
func (pw *projectWatcher) flush(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Gone. Remove the path and, in case it was a directory, anything
		// the index holds beneath it.
		removed := pw.pathsUnder(path)
		if len(removed) == 0 {
			return
		}
		change := pw.store.ApplyDelta(pw.req.ProjectID, nil, removed)
		pw.logChange(path, change)
		return
	}
	if info.IsDir() {
		// A remove and a mkdir at the same path can coalesce into one
		// flush. The path may still hold a file record; the directory's
		// own contents arrive as Create events.
		change := pw.store.ApplyDelta(pw.req.ProjectID, nil, []string{path})
		pw.logChange(path, change)
		return
	}

	rel, err := filepath.Rel(pw.req.Root, path)
	if err != nil {
		return
	}
	if !artifacttypes.Matches(rel, pw.req.IncludePatterns, pw.req.ExcludePatterns) {
		return
	}

	rec, err := indexstore.FromFile(pw.req.ProjectID, pw.req.Root, path, info.ModTime())
	if err != nil {
		logging.Debug("classify %s: %v", rel, err)
	}
	change := pw.store.ApplyDelta(pw.req.ProjectID, []indexstore.Record{rec}, nil)
	pw.logChange(path, change)
}

// pathsUnder returns the indexed paths equal to or below a path.
func (pw *projectWatcher) pathsUnder(path string) []string {
	view, ok := pw.store.Read(pw.req.ProjectID)
	if !ok {
		return nil
	}
	prefix := path + string(filepath.Separator)

	var paths []string
	for _, g := range view.Groups {
		for _, r := range g.Records {
			if r.Path == path || strings.HasPrefix(r.Path, prefix) {
				paths = append(paths, r.Path)
			}
		}
	}
	return paths
}

func (pw *projectWatcher) logChange(path string, change indexstore.ChangeSet) {
	if change.Empty() {
		return
	}
	logging.Debug("watch delta for project %s at %s: +%d ~%d -%d",
		pw.req.ProjectID, path, change.Added, change.Updated, change.Removed)
}

// excludedDir reports whether a directory is pruned by the exclude
// patterns, matching the scanner's walk behavior.
func (pw *projectWatcher) excludedDir(dir string) bool {
	rel, err := filepath.Rel(pw.req.Root, dir)
	if err != nil || rel == "." {
		return false
	}
	return len(pw.req.ExcludePatterns) > 0 &&
		!artifacttypes.Matches(rel, nil, pw.req.ExcludePatterns)
}

func opLabel(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Chmod):
		return "chmod"
	default:
		return "other"
	}
}

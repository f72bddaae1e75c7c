package indexstore

import (
	"testing"
	"time"

	"vfx-indexer/internal/artifacttypes"
)

func rec(path, base, token string, ordinal int, mod time.Time) Record {
	return Record{
		Path:           path,
		RelPath:        path,
		FileType:       artifacttypes.FileTypeNuke,
		Folder:         "comp",
		ShotGroup:      "BALA",
		BaseName:       base,
		VersionToken:   token,
		VersionOrdinal: ordinal,
		ModTime:        mod,
	}
}

func TestReconcile(t *testing.T) {
	s := New()
	mod := time.Now().Truncate(time.Second)

	snapshot := []Record{
		rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod),
		rec("/proj/comp/a_v002.nk", "a", "v002", 2, mod),
		rec("/proj/comp/b_v001.nk", "b", "v001", 1, mod),
	}

	change := s.Reconcile("p1", snapshot)
	if change.Added != 3 || change.Updated != 0 || change.Removed != 0 {
		t.Fatalf("first reconcile = %+v, want 3 added", change)
	}

	// Same snapshot again must change nothing.
	change = s.Reconcile("p1", snapshot)
	if !change.Empty() {
		t.Errorf("repeat reconcile = %+v, want empty", change)
	}

	// Modify one, drop one, add one.
	next := []Record{
		rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod),
		rec("/proj/comp/a_v002.nk", "a", "v002", 2, mod.Add(time.Minute)),
		rec("/proj/comp/c_v001.nk", "c", "v001", 1, mod),
	}
	change = s.Reconcile("p1", next)
	if change.Added != 1 || change.Updated != 1 || change.Removed != 1 {
		t.Errorf("diff reconcile = %+v, want 1/1/1", change)
	}
	if got := s.Count("p1"); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestReconcilePreservesIdentity(t *testing.T) {
	s := New()
	mod := time.Now().Truncate(time.Second)

	s.Reconcile("p1", []Record{rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod)})
	before, ok := s.Read("p1")
	if !ok || len(before.Groups) != 1 {
		t.Fatalf("unexpected view after first reconcile: %+v", before)
	}
	id := before.Groups[0].Records[0].ID
	firstSeen := before.Groups[0].Records[0].FirstSeen

	// Touching the file updates the record but keeps ID and FirstSeen.
	s.Reconcile("p1", []Record{rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod.Add(time.Hour))})
	after, _ := s.Read("p1")
	got := after.Groups[0].Records[0]
	if got.ID != id {
		t.Errorf("ID changed across rescans: %s -> %s", id, got.ID)
	}
	if !got.FirstSeen.Equal(firstSeen) {
		t.Errorf("FirstSeen changed across rescans: %v -> %v", firstSeen, got.FirstSeen)
	}
}

func TestApplyDelta(t *testing.T) {
	s := New()
	mod := time.Now().Truncate(time.Second)

	s.Reconcile("p1", []Record{
		rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod),
		rec("/proj/comp/b_v001.nk", "b", "v001", 1, mod),
	})

	change := s.ApplyDelta("p1",
		[]Record{
			rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod.Add(time.Minute)),
			rec("/proj/comp/a_v002.nk", "a", "v002", 2, mod),
		},
		[]string{"/proj/comp/b_v001.nk", "/proj/comp/never-there.nk"},
	)
	if change.Added != 1 || change.Updated != 1 || change.Removed != 1 {
		t.Errorf("ApplyDelta = %+v, want 1/1/1", change)
	}

	// Replaying the same delta converges to the same state.
	change = s.ApplyDelta("p1",
		[]Record{rec("/proj/comp/a_v002.nk", "a", "v002", 2, mod)},
		[]string{"/proj/comp/b_v001.nk"},
	)
	if !change.Empty() {
		t.Errorf("replayed delta = %+v, want empty", change)
	}
	if got := s.Count("p1"); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
}

func TestGroupOrdering(t *testing.T) {
	s := New()
	mod := time.Now().Truncate(time.Second)

	s.Reconcile("p1", []Record{
		rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod),
		rec("/proj/comp/a_v010.nk", "a", "v010", 10, mod),
		rec("/proj/comp/a_v002.nk", "a", "v002", 2, mod),
	})

	key := artifacttypes.Key{
		Type: artifacttypes.FileTypeNuke, Folder: "comp", ShotGroup: "BALA", BaseName: "a",
	}
	recs, ok := s.Versions("p1", key)
	if !ok {
		t.Fatalf("Versions(%v) missing", key)
	}
	var ordinals []int
	for _, r := range recs {
		ordinals = append(ordinals, r.VersionOrdinal)
	}
	want := []int{10, 2, 1}
	for i := range want {
		if ordinals[i] != want[i] {
			t.Fatalf("ordinals = %v, want %v", ordinals, want)
		}
	}
}

func TestGroupOrderingTieBreaks(t *testing.T) {
	s := New()
	mod := time.Now().Truncate(time.Second)

	// Same ordinal: later modtime wins; same modtime: greater path wins.
	s.Reconcile("p1", []Record{
		rec("/proj/comp/a_old.nk", "a", "", 0, mod),
		rec("/proj/comp/a_new.nk", "a", "", 0, mod.Add(time.Minute)),
		rec("/proj/comp/a_zzz.nk", "a", "", 0, mod),
	})

	key := artifacttypes.Key{
		Type: artifacttypes.FileTypeNuke, Folder: "comp", ShotGroup: "BALA", BaseName: "a",
	}
	recs, _ := s.Versions("p1", key)
	wantPaths := []string{"/proj/comp/a_new.nk", "/proj/comp/a_zzz.nk", "/proj/comp/a_old.nk"}
	for i, want := range wantPaths {
		if recs[i].Path != want {
			t.Fatalf("order[%d] = %s, want %s", i, recs[i].Path, want)
		}
	}
}

func TestReadSnapshotIsolation(t *testing.T) {
	s := New()
	mod := time.Now().Truncate(time.Second)
	s.Reconcile("p1", []Record{rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod)})

	view, _ := s.Read("p1")
	view.Groups[0].Records[0].BaseName = "mutated"

	again, _ := s.Read("p1")
	if again.Groups[0].Records[0].BaseName != "a" {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestReadUnknownProject(t *testing.T) {
	s := New()
	if _, ok := s.Read("nope"); ok {
		t.Error("Read of unknown project reported ok")
	}
}

func TestDrop(t *testing.T) {
	s := New()
	mod := time.Now()
	s.Reconcile("p1", []Record{rec("/proj/comp/a_v001.nk", "a", "v001", 1, mod)})

	s.Drop("p1")
	if _, ok := s.Read("p1"); ok {
		t.Error("Read after Drop reported ok")
	}
	s.Drop("p1") // no-op

	projects, records := s.Totals()
	if projects != 0 || records != 0 {
		t.Errorf("Totals = %d projects / %d records, want 0/0", projects, records)
	}
}

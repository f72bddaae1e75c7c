package version

import (
	"errors"
	"testing"
	"time"

	"vfx-indexer/internal/indexstore"
)

func rec(path, token string, ordinal int, mod time.Time) indexstore.Record {
	return indexstore.Record{
		Path:           path,
		BaseName:       "shot010_comp",
		VersionToken:   token,
		VersionOrdinal: ordinal,
		ModTime:        mod,
	}
}

func TestDefault(t *testing.T) {
	mod := time.Now().Truncate(time.Second)

	tests := []struct {
		name     string
		records  []indexstore.Record
		wantPath string
		wantOK   bool
	}{
		{
			name:   "empty group",
			wantOK: false,
		},
		{
			name: "highest ordinal wins",
			records: []indexstore.Record{
				rec("/p/a_v001.nk", "v001", 1, mod),
				rec("/p/a_v010.nk", "v010", 10, mod),
				rec("/p/a_v002.nk", "v002", 2, mod),
			},
			wantPath: "/p/a_v010.nk",
			wantOK:   true,
		},
		{
			name: "modtime breaks ordinal tie",
			records: []indexstore.Record{
				rec("/p/a_old.nk", "", 0, mod),
				rec("/p/a_new.nk", "", 0, mod.Add(time.Minute)),
			},
			wantPath: "/p/a_new.nk",
			wantOK:   true,
		},
		{
			name: "path breaks full tie",
			records: []indexstore.Record{
				rec("/p/a_aaa.nk", "", 0, mod),
				rec("/p/a_zzz.nk", "", 0, mod),
			},
			wantPath: "/p/a_zzz.nk",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Default(tt.records)
			if ok != tt.wantOK {
				t.Fatalf("Default ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Path != tt.wantPath {
				t.Errorf("Default path = %s, want %s", got.Path, tt.wantPath)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	mod := time.Now().Truncate(time.Second)
	records := []indexstore.Record{
		rec("/p/a_v001.nk", "v001", 1, mod),
		rec("/p/a_v003.nk", "v003", 3, mod),
		rec("/p/a_v010.nk", "v010", 10, mod),
	}

	tests := []struct {
		name     string
		token    string
		wantPath string
		wantErr  bool
	}{
		{name: "exact token", token: "v003", wantPath: "/p/a_v003.nk"},
		{name: "numeric equivalence", token: "v3", wantPath: "/p/a_v003.nk"},
		{name: "bare digits", token: "10", wantPath: "/p/a_v010.nk"},
		{name: "empty token is default", token: "", wantPath: "/p/a_v010.nk"},
		{name: "stale token", token: "v099", wantErr: true},
		{name: "garbage token", token: "final", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(records, tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrVersionNotFound) {
					t.Fatalf("Resolve(%q) error = %v, want ErrVersionNotFound", tt.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.token, err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Resolve(%q) = %s, want %s", tt.token, got.Path, tt.wantPath)
			}
		})
	}
}

func TestResolveEmptyGroup(t *testing.T) {
	if _, err := Resolve(nil, ""); !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("Resolve on empty group error = %v, want ErrVersionNotFound", err)
	}
}

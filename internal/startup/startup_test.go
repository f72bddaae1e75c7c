package startup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_DIR", dir)
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "no-such-config.toml"))
	for _, key := range []string{"PORT", "METRICS_PORT", "DEBOUNCE_WINDOW", "SCAN_DIRS", "INCLUDE_PATTERNS", "EXCLUDE_PATTERNS"} {
		t.Setenv(key, "")
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Port != "8080" {
		t.Errorf("Port = %s, want 8080", config.Port)
	}
	if config.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %s, want 9090", config.MetricsPort)
	}
	if config.DebounceWindow != 500*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 500ms", config.DebounceWindow)
	}
	if config.DatabasePath != filepath.Join(dir, "index.db") {
		t.Errorf("DatabasePath = %s", config.DatabasePath)
	}
	if len(config.DefaultIncludePatterns) != 2 {
		t.Errorf("DefaultIncludePatterns = %v", config.DefaultIncludePatterns)
	}
	if len(config.DefaultScanDirs) == 0 || len(config.DefaultExcludePatterns) == 0 {
		t.Errorf("defaults missing: scanDirs=%v excludes=%v", config.DefaultScanDirs, config.DefaultExcludePatterns)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `
port = "9999"
database_dir = "` + dir + `"
debounce_window = "250ms"
scan_dirs = ["comp"]
include_patterns = ["*.nk"]
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", configPath)
	for _, key := range []string{"PORT", "DATABASE_DIR", "DEBOUNCE_WINDOW", "SCAN_DIRS", "INCLUDE_PATTERNS", "EXCLUDE_PATTERNS"} {
		t.Setenv(key, "")
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.Port != "9999" {
		t.Errorf("Port = %s, want 9999 from config file", config.Port)
	}
	if config.DebounceWindow != 250*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 250ms", config.DebounceWindow)
	}
	if len(config.DefaultScanDirs) != 1 || config.DefaultScanDirs[0] != "comp" {
		t.Errorf("DefaultScanDirs = %v", config.DefaultScanDirs)
	}

	// Environment beats the file.
	t.Setenv("PORT", "7070")
	config, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.Port != "7070" {
		t.Errorf("Port = %s, want env override 7070", config.Port)
	}
}

func TestGetEnvList(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback []string
		want     []string
	}{
		{name: "unset uses fallback", value: "", fallback: []string{"a"}, want: []string{"a"}},
		{name: "comma separated", value: "*.nk, *.aep", fallback: nil, want: []string{"*.nk", "*.aep"}},
		{name: "only separators uses fallback", value: " , ,", fallback: []string{"a"}, want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_LIST", tt.value)
			got := getEnvList("TEST_LIST", tt.fallback)
			if len(got) != len(tt.want) {
				t.Fatalf("getEnvList = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("getEnvList = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/projects/{id}/scan", "api/projects"},
		{"/api/watches", "api/watches"},
		{"/health", "health"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" || info.GoVersion == "" || info.OS == "" {
		t.Errorf("GetBuildInfo = %+v", info)
	}
}

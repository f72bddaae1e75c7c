package workers

import (
	"os"
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	os.Unsetenv("SCAN_WORKERS")
	defer os.Unsetenv("SCAN_WORKERS")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier",
			multiplier: 0.1,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			if got < tt.minExpect {
				t.Errorf("Count(%v, %d) = %d, expected >= %d", tt.multiplier, tt.limit, got, tt.minExpect)
			}

			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected <= %d", tt.multiplier, tt.limit, got, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		limit     int
		expected  int
		wantError bool
	}{
		{
			name:     "Valid override",
			envValue: "8",
			limit:    0,
			expected: 8,
		},
		{
			name:     "Override with limit",
			envValue: "20",
			limit:    10,
			expected: 10, // Should be capped by limit
		},
		{
			name:     "Override below limit",
			envValue: "5",
			limit:    10,
			expected: 5,
		},
		{
			name:      "Invalid override (non-numeric)",
			envValue:  "invalid",
			limit:     0,
			wantError: true,
		},
		{
			name:      "Invalid override (zero)",
			envValue:  "0",
			limit:     0,
			wantError: true,
		},
		{
			name:      "Invalid override (negative)",
			envValue:  "-5",
			limit:     0,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SCAN_WORKERS", tt.envValue)

			got := Count(1.0, tt.limit)

			if tt.wantError {
				// Should fall back to default calculation
				if got < 1 {
					t.Errorf("Count with invalid override should return at least 1, got %d", got)
				}
			} else {
				if got != tt.expected {
					t.Errorf("Count(1.0, %d) with SCAN_WORKERS=%s = %d, want %d", tt.limit, tt.envValue, got, tt.expected)
				}
			}
		})
	}
}

func TestForCPU(t *testing.T) {
	os.Unsetenv("SCAN_WORKERS")
	defer os.Unsetenv("SCAN_WORKERS")

	if got := ForCPU(0); got < 1 || got > runtime.GOMAXPROCS(0) {
		t.Errorf("ForCPU(0) = %d, want between 1 and %d", got, runtime.GOMAXPROCS(0))
	}
	if got := ForCPU(1); got != 1 {
		t.Errorf("ForCPU(1) = %d, want 1", got)
	}
}

func TestForIO(t *testing.T) {
	os.Unsetenv("SCAN_WORKERS")
	defer os.Unsetenv("SCAN_WORKERS")

	if got := ForIO(0); got < 1 {
		t.Errorf("ForIO(0) = %d, want >= 1", got)
	}
	if got := ForIO(8); got > 8 {
		t.Errorf("ForIO(8) = %d, should not exceed limit", got)
	}
}

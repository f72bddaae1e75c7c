package logging

import "testing"

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		want     Level
	}{
		{name: "debug via LOG_LEVEL", envVar: "LOG_LEVEL", envValue: "debug", want: LevelDebug},
		{name: "info via LOG_LEVEL", envVar: "LOG_LEVEL", envValue: "info", want: LevelInfo},
		{name: "warn via LOG_LEVEL", envVar: "LOG_LEVEL", envValue: "warn", want: LevelWarn},
		{name: "warning alias", envVar: "LOG_LEVEL", envValue: "warning", want: LevelWarn},
		{name: "error via LOG_LEVEL", envVar: "LOG_LEVEL", envValue: "error", want: LevelError},
		{name: "case insensitive", envVar: "LOG_LEVEL", envValue: "DEBUG", want: LevelDebug},
		{name: "unknown defaults to info", envVar: "LOG_LEVEL", envValue: "bogus", want: LevelInfo},
		{name: "empty defaults to info", envVar: "LOG_LEVEL", envValue: "", want: LevelInfo},
		{name: "DEBUG=true wins", envVar: "DEBUG", envValue: "true", want: LevelDebug},
		{name: "DEBUG=1 wins", envVar: "DEBUG", envValue: "1", want: LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			t.Setenv("DEBUG", "")
			t.Setenv(tt.envVar, tt.envValue)

			if got := levelFromEnv(); got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	orig := GetLevel()
	defer SetLevel(orig)

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("GetLevel() = %v, want %v", GetLevel(), LevelError)
	}
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true at error level")
	}

	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false at debug level")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown(99)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

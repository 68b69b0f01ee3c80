package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"bogus": zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopByDefault(t *testing.T) {
	InitWithConfig("info", FileConfig{}, false)
	if Log == nil || Sugar == nil {
		t.Fatal("logger should never be nil")
	}
	// Must not panic.
	Log.Info("discarded", zap.Int("n", 1))
}

func TestFileOutputRespectsLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sea.log")

	InitWithConfig("warn", FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}, false)
	defer InitWithConfig("info", FileConfig{}, false)

	Log.Info("hidden message")
	Log.Warn("visible message", zap.String("object", "buoy"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "hidden message") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(content, "visible message") || !strings.Contains(content, "buoy") {
		t.Errorf("warn entry missing from log file: %q", content)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/sea.log")
	if cfg.Path != "/tmp/sea.log" {
		t.Errorf("Expected path /tmp/sea.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 {
		t.Error("rotation limits should be positive")
	}
}

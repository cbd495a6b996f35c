package slogutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pubapi/internal/config"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"", 0},
		{"invalid", 0},
		{"10TB", 0},
		{"100", 100},
		{"100B", 100},
		{"100b", 100},
		{"1KB", 1024},
		{" 10kb ", 10240},
		{"1MB", 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"1.5MB", int64(1.5 * 1024 * 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile() error = %v", err)
	}

	line := []byte(strings.Repeat("a", 29) + "\n")
	for i := 0; i < 5; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write %d error = %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	// Each write after the first overflows 50 bytes: 5 writes leave the
	// live file plus two backups of one line each.
	for _, p := range []string{path, path + ".1", path + ".2"} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", p, err)
		}
		if len(data) != len(line) {
			t.Errorf("%s has %d bytes, want %d", p, len(data), len(line))
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backup .3 should not exist with maxBackups=2")
	}
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	rf, err := OpenRotatingFile(path, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()

	for i := 0; i < 3; i++ {
		if _, err := rf.Write([]byte("12345678\n")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backups should be kept")
	}
}

func TestRotatingFile_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	rf, err := OpenRotatingFile(path, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		_, _ = rf.Write([]byte("0123456789\n"))
	}
	_ = rf.Close()

	info, err := os.Stat(path)
	if err != nil || info.Size() != 110 {
		t.Errorf("Stat() = %v, %v; want 110 bytes", info, err)
	}
}

func TestNewFileLoggerWithRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, closer, err := NewFileLoggerWithRotation(path, "human", slog.LevelInfo, "1MB", 3)
	if err != nil {
		t.Fatalf("NewFileLoggerWithRotation() error = %v", err)
	}
	logger.Info("written", "n", 1)
	logger.Debug("filtered")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[info] written | n=1") || strings.Contains(string(data), "filtered") {
		t.Errorf("log file = %q", data)
	}
}

func TestLoggerFactory_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	f := NewLoggerFactory(t.TempDir(), nil, slog.LevelInfo)
	f.SetConsole(&console)

	logger := f.CLILogger()
	logger.Info("to console")
	logger.Debug("hidden")

	if !strings.Contains(console.String(), "to console") || strings.Contains(console.String(), "hidden") {
		t.Errorf("console = %q", console.String())
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestLoggerFactory_FileTee(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.File = "cli.log"
	cfg.Logging.Level = "debug"

	var console bytes.Buffer
	f := NewLoggerFactory(root, cfg, LevelFromVerbosity(0, true))
	f.SetConsole(&console)

	logger := f.CLILogger()
	logger.Debug("detail", "step", "walk")
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if console.Len() != 0 {
		t.Errorf("quiet console got %q", console.String())
	}
	data, err := os.ReadFile(filepath.Join(root, ".pubapi", "logs", "cli.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "[debug] detail | step=walk") {
		t.Errorf("log file = %q", data)
	}
}

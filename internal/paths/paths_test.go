package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepoLayout(t *testing.T) {
	root := filepath.Join("some", "repo")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"repo dir", GetRepoDir(root), filepath.Join(root, ".pubapi")},
		{"config", GetConfigPath(root), filepath.Join(root, ".pubapi", "config.json")},
		{"snapshots", GetSnapshotDBPath(root), filepath.Join(root, ".pubapi", "snapshots.db")},
		{"logs dir", GetLogsDir(root), filepath.Join(root, ".pubapi", "logs")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestEnsureRepoDirs(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureRepoDir(root)
	if err != nil {
		t.Fatalf("EnsureRepoDir() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("EnsureRepoDir() did not create %s", dir)
	}

	logs, err := EnsureRepoLogsDir(root)
	if err != nil {
		t.Fatalf("EnsureRepoLogsDir() error = %v", err)
	}
	if logs != GetLogsDir(root) {
		t.Errorf("EnsureRepoLogsDir() = %q, want %q", logs, GetLogsDir(root))
	}

	// Idempotent.
	if _, err := EnsureRepoDir(root); err != nil {
		t.Errorf("second EnsureRepoDir() error = %v", err)
	}
}

func TestGetLogPath(t *testing.T) {
	root := "r"
	abs, _ := filepath.Abs(filepath.Join("tmp", "x.log"))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"default", "", filepath.Join("r", ".pubapi", "logs", "pubapi.log")},
		{"bare name", "diff.log", filepath.Join("r", ".pubapi", "logs", "diff.log")},
		{"repo relative", "out/diff.log", filepath.Join("r", "out", "diff.log")},
		{"absolute", abs, abs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetLogPath(root, tt.in); got != tt.want {
				t.Errorf("GetLogPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveRepoPath(t *testing.T) {
	abs, _ := filepath.Abs("snap.db")
	if got := ResolveRepoPath("root", abs); got != abs {
		t.Errorf("absolute path changed: %q", got)
	}
	if got := ResolveRepoPath("root", "a/b.db"); got != filepath.Join("root", "a", "b.db") {
		t.Errorf("ResolveRepoPath() = %q", got)
	}
	if got := ResolveRepoPath("root", ""); got != "" {
		t.Errorf("ResolveRepoPath(\"\") = %q", got)
	}
}

// tempRoot returns a temp dir with symlinks resolved.
func tempRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestCanonicalizePath(t *testing.T) {
	root := tempRoot(t)
	target := filepath.Join(root, "target", "doc", "krate.json")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalizePath(target, root)
	if err != nil {
		t.Fatalf("CanonicalizePath() error = %v", err)
	}
	if got != "target/doc/krate.json" {
		t.Errorf("CanonicalizePath() = %q", got)
	}

	// Missing files are used as given.
	got, err = CanonicalizePath(filepath.Join(root, "missing.json"), root)
	if err != nil || got != "missing.json" {
		t.Errorf("CanonicalizePath(missing) = %q, %v", got, err)
	}
}

func TestIsWithinRepo(t *testing.T) {
	root := tempRoot(t)
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "a.json"), true},
		{filepath.Join(root, "sub", "b.json"), true},
		{filepath.Join(filepath.Dir(root), "elsewhere.json"), false},
		{filepath.Join(root, "..foo"), true},
	}
	for _, tt := range tests {
		if got := IsWithinRepo(tt.path, root); got != tt.want {
			t.Errorf("IsWithinRepo(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

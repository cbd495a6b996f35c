package project

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates files under a temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadManifest(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		dir         string
		wantName    string
		wantVersion string
		wantLib     string
		wantLabel   string
	}{
		{
			name: "plain package",
			files: map[string]string{
				"Cargo.toml": "[package]\nname = \"example-api\"\nversion = \"0.2.0\"\nedition = \"2021\"\n",
			},
			wantName:    "example-api",
			wantVersion: "0.2.0",
			wantLib:     "example_api",
			wantLabel:   "example-api@0.2.0",
		},
		{
			name: "lib name override",
			files: map[string]string{
				"Cargo.toml": "[package]\nname = \"foo\"\nversion = \"1.0.0\"\n\n[lib]\nname = \"bar\"\n",
			},
			wantName:    "foo",
			wantVersion: "1.0.0",
			wantLib:     "bar",
			wantLabel:   "foo@1.0.0",
		},
		{
			name: "found from subdirectory",
			files: map[string]string{
				"Cargo.toml":     "[package]\nname = \"krate\"\nversion = \"0.1.0\"\n",
				"src/inner/x.rs": "",
			},
			dir:         "src/inner",
			wantName:    "krate",
			wantVersion: "0.1.0",
			wantLib:     "krate",
			wantLabel:   "krate@0.1.0",
		},
		{
			name: "version inherited from same manifest",
			files: map[string]string{
				"Cargo.toml": "[package]\nname = \"ws\"\nversion.workspace = true\n\n[workspace]\nmembers = []\n\n[workspace.package]\nversion = \"3.1.4\"\n",
			},
			wantName:    "ws",
			wantVersion: "3.1.4",
			wantLib:     "ws",
			wantLabel:   "ws@3.1.4",
		},
		{
			name: "version inherited from parent workspace",
			files: map[string]string{
				"Cargo.toml":          "[workspace]\nmembers = [\"crates/*\"]\n\n[workspace.package]\nversion = \"2.0.0\"\n",
				"crates/a/Cargo.toml": "[package]\nname = \"a\"\nversion = { workspace = true }\n",
			},
			dir:         "crates/a",
			wantName:    "a",
			wantVersion: "2.0.0",
			wantLib:     "a",
			wantLabel:   "a@2.0.0",
		},
		{
			name: "no version",
			files: map[string]string{
				"Cargo.toml": "[package]\nname = \"bare\"\n",
			},
			wantName:  "bare",
			wantLib:   "bare",
			wantLabel: "bare",
		},
		{
			name: "virtual workspace",
			files: map[string]string{
				"Cargo.toml": "[workspace]\nmembers = [\"a\"]\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeFiles(t, tt.files)
			m, err := LoadManifest(filepath.Join(root, tt.dir))
			if err != nil {
				t.Fatalf("LoadManifest() error = %v", err)
			}
			if got := m.Name(); got != tt.wantName {
				t.Errorf("Name() = %q, want %q", got, tt.wantName)
			}
			if got := m.Version(); got != tt.wantVersion {
				t.Errorf("Version() = %q, want %q", got, tt.wantVersion)
			}
			if got := m.LibName(); got != tt.wantLib {
				t.Errorf("LibName() = %q, want %q", got, tt.wantLib)
			}
			if got := m.DefaultLabel(); got != tt.wantLabel {
				t.Errorf("DefaultLabel() = %q, want %q", got, tt.wantLabel)
			}
		})
	}
}

func TestRustdocJSONPath(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"my-crate\"\nversion = \"0.1.0\"\n",
	})
	m, err := LoadManifest(root)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(filepath.Dir(m.Path), "target", "doc", "my_crate.json")
	if got := m.RustdocJSONPath(); got != want {
		t.Errorf("RustdocJSONPath() = %q, want %q", got, want)
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, ok := FindManifest(t.TempDir()); ok {
		t.Skip("a Cargo.toml exists above the temp dir")
	}
	if _, err := LoadManifest(t.TempDir()); err == nil {
		t.Error("LoadManifest() without Cargo.toml should fail")
	}
}

func TestParseManifestInvalid(t *testing.T) {
	root := writeFiles(t, map[string]string{"Cargo.toml": "[package\nname = "})
	if _, err := ParseManifest(filepath.Join(root, "Cargo.toml")); err == nil {
		t.Error("ParseManifest() accepted invalid TOML")
	}
}

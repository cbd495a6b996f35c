// Package project reads Cargo manifests to name crates and locate their
// rustdoc JSON output.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the Cargo manifest file name.
const ManifestFile = "Cargo.toml"

// Manifest is the subset of Cargo.toml pubapi needs.
type Manifest struct {
	Path      string            `toml:"-"`
	Package   *PackageSection   `toml:"package"`
	Lib       *LibSection       `toml:"lib"`
	Workspace *WorkspaceSection `toml:"workspace"`
}

// PackageSection is [package]. Version is either a string or
// { workspace = true }.
type PackageSection struct {
	Name    string `toml:"name"`
	Version any    `toml:"version"`
}

// LibSection is [lib].
type LibSection struct {
	Name string `toml:"name"`
}

// WorkspaceSection is [workspace].
type WorkspaceSection struct {
	Members []string          `toml:"members"`
	Package *WorkspacePackage `toml:"package"`
}

// WorkspacePackage is [workspace.package], inherited by members.
type WorkspacePackage struct {
	Version string `toml:"version"`
}

// ParseManifest parses the Cargo.toml at path.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m.Path = path
	return &m, nil
}

// FindManifest looks for Cargo.toml in dir and its parents.
func FindManifest(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		p := filepath.Join(dir, ManifestFile)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadManifest finds and parses the manifest for dir. A package manifest
// that inherits its version from the workspace has it resolved.
func LoadManifest(dir string) (*Manifest, error) {
	path, ok := FindManifest(dir)
	if !ok {
		return nil, fmt.Errorf("no %s found in %s or its parents", ManifestFile, dir)
	}
	m, err := ParseManifest(path)
	if err != nil {
		return nil, err
	}
	if m.Package != nil && m.inheritsVersion() {
		m.Package.Version = m.workspaceVersion()
	}
	return m, nil
}

func (m *Manifest) inheritsVersion() bool {
	t, ok := m.Package.Version.(map[string]any)
	if !ok {
		return false
	}
	inherit, _ := t["workspace"].(bool)
	return inherit
}

// workspaceVersion returns [workspace.package] version from this manifest
// or the nearest parent workspace manifest.
func (m *Manifest) workspaceVersion() string {
	if m.Workspace != nil && m.Workspace.Package != nil {
		return m.Workspace.Package.Version
	}
	parentDir := filepath.Dir(filepath.Dir(m.Path))
	for {
		path, ok := FindManifest(parentDir)
		if !ok {
			return ""
		}
		ws, err := ParseManifest(path)
		if err == nil && ws.Workspace != nil {
			if ws.Workspace.Package != nil {
				return ws.Workspace.Package.Version
			}
			return ""
		}
		next := filepath.Dir(filepath.Dir(path))
		if next == parentDir {
			return ""
		}
		parentDir = next
	}
}

// Name is the package name, or empty for a virtual workspace manifest.
func (m *Manifest) Name() string {
	if m.Package == nil {
		return ""
	}
	return m.Package.Name
}

// Version is the package version, or empty when unknown.
func (m *Manifest) Version() string {
	if m.Package == nil {
		return ""
	}
	v, _ := m.Package.Version.(string)
	return v
}

// LibName is the library target name, which is also the rustdoc JSON file
// stem: [lib] name, else the package name with dashes replaced.
func (m *Manifest) LibName() string {
	if m.Lib != nil && m.Lib.Name != "" {
		return m.Lib.Name
	}
	return strings.ReplaceAll(m.Name(), "-", "_")
}

// RustdocJSONPath is where cargo writes rustdoc JSON for this crate.
func (m *Manifest) RustdocJSONPath() string {
	return filepath.Join(filepath.Dir(m.Path), "target", "doc", m.LibName()+".json")
}

// DefaultLabel names a snapshot of this crate, e.g. "serde@1.0.0".
func (m *Manifest) DefaultLabel() string {
	switch {
	case m.Name() == "":
		return ""
	case m.Version() == "":
		return m.Name()
	default:
		return m.Name() + "@" + m.Version()
	}
}

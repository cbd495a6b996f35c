package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// RepoDirName is the per-repository state directory.
	RepoDirName = ".pubapi"

	configFileName  = "config.json"
	snapshotsDBName = "snapshots.db"
	logsDirName     = "logs"
	defaultLogName  = "pubapi.log"
	dirPerm         = 0o755
)

// GetRepoDir returns <repoRoot>/.pubapi.
func GetRepoDir(repoRoot string) string {
	return filepath.Join(repoRoot, RepoDirName)
}

// EnsureRepoDir creates <repoRoot>/.pubapi if needed and returns it.
func EnsureRepoDir(repoRoot string) (string, error) {
	dir := GetRepoDir(repoRoot)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", err
	}
	return dir, nil
}

// GetConfigPath returns the path of the repository config file.
func GetConfigPath(repoRoot string) string {
	return filepath.Join(GetRepoDir(repoRoot), configFileName)
}

// GetSnapshotDBPath returns the default snapshot database path.
func GetSnapshotDBPath(repoRoot string) string {
	return filepath.Join(GetRepoDir(repoRoot), snapshotsDBName)
}

// ResolveRepoPath makes a configured path absolute. Relative paths are taken
// relative to the repository root.
func ResolveRepoPath(repoRoot, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return JoinRepoPath(repoRoot, p)
}

// GetLogsDir returns <repoRoot>/.pubapi/logs.
func GetLogsDir(repoRoot string) string {
	return filepath.Join(GetRepoDir(repoRoot), logsDirName)
}

// EnsureRepoLogsDir creates the logs directory if needed and returns it.
func EnsureRepoLogsDir(repoRoot string) (string, error) {
	dir := GetLogsDir(repoRoot)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", err
	}
	return dir, nil
}

// GetLogPath returns the log file path for name, or the default log file
// when name is empty. Names with a directory part are resolved against the
// repository root instead of the logs directory.
func GetLogPath(repoRoot, name string) string {
	switch {
	case name == "":
		return filepath.Join(GetLogsDir(repoRoot), defaultLogName)
	case filepath.IsAbs(name):
		return name
	case strings.ContainsAny(name, `/\`):
		return JoinRepoPath(repoRoot, name)
	default:
		return filepath.Join(GetLogsDir(repoRoot), name)
	}
}

// CanonicalizePath converts an absolute path to a repo-relative path with
// forward slashes. Symlinks are resolved when the path exists.
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = absolutePath
	}

	rootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		rootResolved = repoRoot
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// JoinRepoPath joins a repo root with a slash-separated relative path.
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	parts := strings.Split(strings.ReplaceAll(canonicalPath, "\\", "/"), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

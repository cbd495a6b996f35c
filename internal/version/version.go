// Package version holds build information for pubapi.
package version

import "runtime/debug"

// Set at build time:
// go build -ldflags "-X pubapi/internal/version.Version=0.2.0 -X pubapi/internal/version.Commit=abc123"
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info returns the version with a short commit suffix when one is known.
func Info() string {
	if c := commit(); len(c) > 7 {
		return Version + " (" + c[:7] + ")"
	}
	return Version
}

// Full returns the multi-line version banner.
func Full() string {
	return "pubapi version " + Version + "\n" +
		"Commit: " + commit() + "\n" +
		"Built: " + BuildDate
}

// commit falls back to the VCS revision the toolchain stamped into the
// binary when ldflags did not set one.
func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}

// Package buildinfo carries the version stamped in by the release build.
package buildinfo

import "fmt"

// Set at build time via -ldflags "-X quadterm/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns a compact build identifier for the window title and logs.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String is the -version line.
func String() string {
	return fmt.Sprintf("quadterm %s (commit %s, built %s)", Version, Commit, Date)
}

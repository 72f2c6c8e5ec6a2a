// Package buildinfo carries the build identity stamped with -ldflags
// "-X trefoil/internal/buildinfo.Version=...".
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Short returns a compact build identifier for the window title and logs.
// Without ldflags it falls back to the VCS revision recorded by the Go
// toolchain.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return shortRev(Commit)
	}
	if rev := vcsRevision(); rev != "" {
		return rev
	}
	return "dev"
}

// String returns the full identity.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

func vcsRevision() string {
	info, ok := readBuildInfo()
	if !ok {
		return ""
	}
	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return ""
	}
	rev = shortRev(rev)
	if dirty {
		rev += "+dirty"
	}
	return rev
}

func shortRev(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// Package version holds build metadata injected via ldflags:
//
//	-ldflags "-X github.com/xdev-exe/cortyx/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime/debug"
)

//nolint:gochecknoglobals // set via ldflags at build time
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Revision(), Date)
}

// Revision returns Commit, or the VCS revision the go tool stamped into the
// binary when ldflags left Commit unset.
func Revision() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
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

// Package version holds build metadata injected with -ldflags, e.g.
//
//	-X github.com/philipparndt/stl2glb/version.Version=v1.2.0
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string. Development builds fall back to the
// module version recorded by `go install`.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// GetFullVersion returns the version with commit and build date when known
func GetFullVersion() string {
	v := GetVersion()
	if GitCommit == "unknown" {
		return v
	}
	return fmt.Sprintf("%s (commit %s, built %s)", v, GitCommit, BuildDate)
}

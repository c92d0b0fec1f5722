package buildconfig

import "runtime"

// Build-time variables injected via ldflags:
//
//	-X github.com/Harshitk-cp/elders/internal/buildconfig.version=v1.2.0
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
}

// Version returns the build version
func Version() string {
	return version
}

// Commit returns the git commit hash
func Commit() string {
	return commit
}

// VersionInfo returns full version information
func VersionInfo() Info {
	return Info{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

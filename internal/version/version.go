package version

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Version information for Lightning Ruby Index
const (
	// Version is the current semantic version of LRI
	Version = "0.2.0"

	// BuildDate is set during build time (use -ldflags)
	BuildDate = "development"

	// GitCommit is set during build time (use -ldflags)
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information
func FullInfo() string {
	return "Lightning Ruby Index " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID fingerprints the running binary from its Go version, module and VCS settings.
// It is reported by index_stats so clients can tell servers from different builds apart.
func BuildID() string {
	buildIDOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			buildID = Version + "-" + GitCommit
			return
		}

		d := xxhash.New()
		_, _ = d.WriteString(info.GoVersion)
		_, _ = d.WriteString(info.Main.Path)
		_, _ = d.WriteString(info.Main.Version)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision", "vcs.modified", "vcs.time":
				_, _ = d.WriteString(s.Key)
				_, _ = d.WriteString(s.Value)
			}
		}
		buildID = fmt.Sprintf("%016x", d.Sum64())
	})
	return buildID
}

// Package version reports the codelens build. Release builds set the
// variables with -ldflags "-X github.com/Sumatoshi-tech/codelens/pkg/version.Version=...".
package version

import (
	"fmt"
	"runtime/debug"
)

const unknown = "unknown"

// Build metadata.
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills metadata that ldflags did not set from the Go build
// info embedded in the binary.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknown && s.Value != "" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == unknown && s.Value != "" {
				Date = s.Value
			}
		}
	}
}

// String formats the metadata for "codelens version".
func String() string {
	return fmt.Sprintf("codelens %s (commit: %s, built: %s)", Version, Commit, Date)
}

// Package version carries build-time version information, populated
// via -ldflags at release time.
package version

import "fmt"

var (
	Version    = "devel"
	CommitHash = "unknown"
)

func GetVersionString() string {
	if Version != "" {
		return fmt.Sprintf("%s (commit %s)", Version, CommitHash)
	}
	return fmt.Sprintf("commit %s", CommitHash)
}

package version

import "fmt"

// Populated at release time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a single-line description of this build.
func Info() string {
	return fmt.Sprintf("daybook %s (commit %s, built %s)", Version, Commit, Date)
}

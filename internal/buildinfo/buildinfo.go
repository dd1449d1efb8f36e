// Package buildinfo carries the version stamped in with -ldflags -X.
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the release version, else the commit, else "dev". It names
// the build in the boot banner and the window title.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	default:
		return "dev"
	}
}

// String describes the build on one line.
func String() string {
	return "minikernel " + Short() + " (commit " + Commit + ", built " + Date + ")"
}

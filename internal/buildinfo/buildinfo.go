// Package buildinfo carries build-time metadata stamped via -ldflags.
package buildinfo

var (
	// Version is the release tag, when built from one.
	Version = "dev"
	// Commit is the VCS revision.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)

// Short returns a compact build identifier for window titles and logs.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

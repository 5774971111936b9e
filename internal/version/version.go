// Package version holds listdex build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build identity for startup logs and the version flag.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}

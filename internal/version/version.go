// Package version holds the CLI version string. Default is "dev"; release
// builds set it via:
// go build -ldflags "-X github.com/JakeFAU/gitai/internal/version.Version=v1.0.0"
package version

// Version is the gitai CLI version. Set at build time for releases.
var Version = "dev"

// Commit is the short git commit hash for dev builds; set via ldflags.
var Commit = ""

// String returns the version for display. Dev builds with a commit hash
// render as "dev (abc1234)".
func String() string {
	if Version != "dev" || Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}

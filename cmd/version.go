// Package cmd holds build metadata injected at link time.
package cmd

// Set via -ldflags "-X github.com/thoreinstein/snapback/cmd.Version=..."
// and friends by the release build.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

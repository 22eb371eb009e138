// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/rytunyn/timeline/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/rytunyn/timeline/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/rytunyn/timeline/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	// Set via ldflags: -X github.com/rytunyn/timeline/pkg/buildinfo.Version=...
	Version = "dev"

	// Commit is the git commit SHA.
	// Set via ldflags: -X github.com/rytunyn/timeline/pkg/buildinfo.Commit=...
	Commit = "none"

	// Date is the build timestamp.
	// Set via ldflags: -X github.com/rytunyn/timeline/pkg/buildinfo.Date=...
	Date = "unknown"
)

// Template returns the version template for the root command, e.g.
//
//	timeline version v1.0.0
//	commit: 3f2a9c1
//	built: 2026-01-01T00:00:00Z
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

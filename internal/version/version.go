// Package version carries build metadata injected with -ldflags:
//
//	go build -ldflags "-X github.com/mindcareai/mindcare/internal/version.Version=0.3.0
//	  -X github.com/mindcareai/mindcare/internal/version.Commit=$(git rev-parse HEAD)
//	  -X github.com/mindcareai/mindcare/internal/version.Date=$(date -u +%F)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Build is the structured form reported by the gateway health method.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Current returns the build metadata with the commit shortened.
func Current() Build {
	return Build{Version: Version, Commit: short(Commit), Date: Date, Go: runtime.Version()}
}

// Info returns a one-line version string for the CLI.
func Info() string {
	b := Current()
	return fmt.Sprintf("mindcare %s (commit: %s, built: %s, %s %s/%s)",
		b.Version, b.Commit, b.Date, b.Go, runtime.GOOS, runtime.GOARCH)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

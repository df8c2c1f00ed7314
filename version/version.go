// Package version holds build information of surf binaries.
package version

import "fmt"

var (
	Version = "0.1.0"

	// set at build time:
	// 	go build -ldflags="-X github.com/cayleygraph/surf/version.GitHash=xxxx"

	GitHash   = "dev snapshot"
	BuildDate string
)

// String returns a one-line description of the build.
func String() string {
	s := fmt.Sprintf("surf %s (%s)", Version, GitHash)
	if BuildDate != "" {
		s += " built " + BuildDate
	}
	return s
}

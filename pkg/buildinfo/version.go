// Package buildinfo holds the version of the algo binary, stamped at link
// time:
//
//	go build -ldflags "-X github.com/matzehuels/algorithmia/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/algorithmia/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/algorithmia/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/algo
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template for the algo command.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

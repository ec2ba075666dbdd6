// Package version exposes build information injected at link time.
//
// The release builds set these values via -ldflags, e.g.
//
//	go build -ldflags "-X github.com/storesignal-io/storesignal/internal/version.Version=v1.2.0 ..."
package version

var (
	// Version is the semantic version of the build (e.g. v1.2.0).
	Version = "dev"

	// GitCommit is the short hash of the commit the binary was built from.
	GitCommit = "unknown"

	// BuildDate is the UTC build timestamp in RFC3339 format.
	BuildDate = "unknown"
)

// Info holds the build information for the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

// Get returns the build information for the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}
}

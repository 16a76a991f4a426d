// Package version provides build-time metadata for the treetable binary.
// Version, GitCommit, and BuildDate are injected at compile time via -ldflags.
package version

import (
	"fmt"
	"runtime"

	"github.com/goccy/go-json"

	"github.com/hupe1980/treetable/internal/dataset"
)

// Build-time values injected via -ldflags.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary together with the data file
// format it reads and writes.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`

	// DataFormat is the version stamped into written data files.
	DataFormat string `json:"dataFormat"`
	// SupportedDataFormats is the semver constraint for readable files.
	SupportedDataFormats string `json:"supportedDataFormats"`
}

// GetInfo returns the current build information.
func GetInfo() Info {
	return Info{
		Version:              version,
		GitCommit:            shortCommit(gitCommit),
		BuildDate:            buildDate,
		GoVersion:            runtime.Version(),
		Platform:             fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		DataFormat:           dataset.CurrentVersion,
		SupportedDataFormats: dataset.SupportedVersions,
	}
}

// String returns a human-readable single-line version string.
func (i Info) String() string {
	return fmt.Sprintf("treetable %s (commit: %s, built: %s, %s %s, data format %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform, i.DataFormat)
}

// JSON returns the version info as indented JSON.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(data), nil
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}

// Package version holds build information set with -X linker flags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release of BlitzBoard being run.
	Version = "0.1.0"

	// BuildDate is the date the executable was built.
	BuildDate string
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	BuildDate string `json:"buildDate,omitempty" yaml:"buildDate,omitempty"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

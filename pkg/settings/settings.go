// Package settings holds build metadata and per-run CLI settings for
// jsondiff.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "jsondiff"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Source describes where a command's documents come from.
type Source struct {
	FromAPI   bool // request body of the HTTP service
	FromCli   bool // files or stdin named on the command line
	ConfigDir string
}

// Run holds the settings of a single invocation.
type Run struct {
	MinLogLevel int8
	Source      Source
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults for a CLI invocation.
func NewCliParams() *Run {
	return &Run{
		Source:      Source{FromCli: true},
		ExitOnError: true,
	}
}

// NewAPIParams returns the defaults used while serving HTTP requests:
// no color and errors are reported to the caller instead of exiting.
func NewAPIParams() *Run {
	return &Run{
		Source:  Source{FromAPI: true},
		NoColor: true,
	}
}

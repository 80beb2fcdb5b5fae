// Package version provides the semantic version of the server build.
package version

// Version is the current released version.
var Version = "0.3.1"

// DevVersion is the development version.
var DevVersion = "0.3.1"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

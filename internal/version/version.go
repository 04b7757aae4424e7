// Package version holds build information for the Code Dx CLI client.
//
// The variables are injected at build time:
//
//	-ldflags "-X codedx-client/internal/version.version=v2.6.1 -X codedx-client/internal/version.commit=abc123 -X codedx-client/internal/version.buildTime=2025-01-01T00:00:00Z"
package version

import (
	"fmt"
	"io"
	"strings"
)

//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	version   string
	commit    string
	buildTime string
)

// ApplicationName is the name shown in version output.
const ApplicationName = "Code Dx API Client"

// Default values used when build information was not injected.
const (
	DefaultVersion   = "dev"
	DefaultCommit    = "unknown"
	DefaultBuildTime = "unknown"
)

// userAgentProduct is the product token of the User-Agent header.
const userAgentProduct = "codedx-client"

// Info describes the running build.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

// Get returns the build information with defaults for missing values.
func Get() Info {
	return Info{
		Version:   withDefault(version, DefaultVersion),
		Commit:    withDefault(commit, DefaultCommit),
		BuildTime: withDefault(buildTime, DefaultBuildTime),
	}
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// UserAgent returns the User-Agent header value sent with API requests.
func (i Info) UserAgent() string {
	return userAgentProduct + "/" + i.Version
}

// IsDevelopment reports whether this is an untagged development build.
func (i Info) IsDevelopment() bool {
	return i.Version == DefaultVersion
}

// FormatFull returns the multi-line description used by "version".
func (i Info) FormatFull() string {
	var b strings.Builder
	b.WriteString(ApplicationName + "\n")
	b.WriteString("Version: " + i.Version + "\n")
	b.WriteString("Commit: " + i.Commit + "\n")
	b.WriteString("Built: " + i.BuildTime + "\n")
	return b.String()
}

// Write prints the version only when short is set, the full description otherwise.
func (i Info) Write(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, i.Version)
		return err
	}
	_, err := io.WriteString(w, i.FormatFull())
	return err
}

// SetBuildVars overrides the injected build information. Intended for tests.
func SetBuildVars(ver, com, bt string) {
	version = ver
	commit = com
	buildTime = bt
}

// Package version reports the oci-env build version.
package version

import (
	"regexp"
	"runtime/debug"
	"strings"
)

// Override is set at link time with
// -ldflags "-X github.com/pulp/oci-env/internal/version.Override=v1.2.3".
var Override string

const devel = "(devel)"

// pseudoVersion matches the timestamp-hash suffix Go adds to untagged builds.
var pseudoVersion = regexp.MustCompile(`-(\d+\.)?\d{14}-[0-9a-fA-F]{12,}$`)

// String returns the release version, or "(devel)" for local and untagged builds.
func String() string {
	if Override != "" {
		return Override
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return devel
	}
	return normalize(info.Main.Version)
}

func normalize(v string) string {
	if v == "" || v == devel || strings.Contains(v, "+dirty") {
		return devel
	}
	base, _, _ := strings.Cut(v, "+")
	if pseudoVersion.MatchString(base) {
		return devel
	}
	return v
}

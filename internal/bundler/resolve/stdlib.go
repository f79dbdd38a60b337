package resolve

import (
	"sync"

	"golang.org/x/mod/semver"
)

// TargetVersion identifies a Sentra language version for the purposes
// of standard-library membership checks. Closed set, matching the
// "token identifying a language version from a closed set" of
// config.target_version.
type TargetVersion string

const (
	V1_0 TargetVersion = "v1.0"
	V1_1 TargetVersion = "v1.1"
	V1_2 TargetVersion = "v1.2"
	V1_3 TargetVersion = "v1.3"
)

// DefaultTargetVersion is used when configuration omits target_version.
const DefaultTargetVersion = V1_3

// ValidTargetVersions lists every accepted token, for config validation.
var ValidTargetVersions = []TargetVersion{V1_0, V1_1, V1_2, V1_3}

// stdlibCore is available in every supported version.
var stdlibCore = []string{
	"math", "string", "array", "io", "os", "json", "time", "regex",
	"net", "crypto", "fmt", "strings", "collections",
}

// stdlibSince records modules that only became part of the standard
// library starting at a given version (mirrors the real tool's
// per-version stdlib manifest, used to reject a module imported by
// code that targets an older version than the one that introduced it).
var stdlibSince = map[string]TargetVersion{
	"http":  V1_0,
	"async": V1_1,
	"bytes": V1_2,
}

// manifestCache memoizes the computed per-version module sets; each set
// is immutable once built and manifestMu guards the map, so a single
// shared cache is safe.
var manifestCache = map[TargetVersion]map[string]bool{}

var manifestMu sync.Mutex

// stdlibManifest returns the set of standard-library module names for
// a target version, building and caching it on first use.
func stdlibManifest(v TargetVersion) map[string]bool {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	if m, ok := manifestCache[v]; ok {
		return m
	}
	m := make(map[string]bool, len(stdlibCore)+len(stdlibSince))
	for _, name := range stdlibCore {
		m[name] = true
	}
	for name, since := range stdlibSince {
		if versionAtLeast(v, since) {
			m[name] = true
		}
	}
	manifestCache[v] = m
	return m
}

// versionAtLeast compares two "vMAJOR.MINOR" tokens with semver
// ordering rather than lexicographic string comparison, so v1.10 (were
// it ever introduced) would correctly outrank v1.2.
func versionAtLeast(v, since TargetVersion) bool {
	return semver.Compare(string(v), string(since)) >= 0
}

// IsValidTargetVersion reports whether v is one of the closed set of
// accepted tokens.
func IsValidTargetVersion(v TargetVersion) bool {
	for _, candidate := range ValidTargetVersions {
		if candidate == v {
			return true
		}
	}
	return false
}

// IsStandardLibrary reports whether name's leftmost dotted segment is
// part of the standard library at the given target version.
func IsStandardLibrary(name string, v TargetVersion) bool {
	leftmost := leftmostSegment(name)
	return stdlibManifest(v)[leftmost]
}

func leftmostSegment(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

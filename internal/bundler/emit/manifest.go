package emit

import (
	"sort"
	"strings"

	"sentra-bundle/internal/bundler/extract"
	"sentra-bundle/internal/bundler/resolve"
)

// Manifest computes the sorted, deduplicated set of leftmost segments
// of every import classified ThirdParty across the bundle, for
// --emit-requirements (spec.md §4.7 step 10).
func Manifest(modules map[string]ModuleInput, r *resolve.Resolver) []string {
	seen := make(map[string]bool)
	for _, mod := range modules {
		for _, di := range mod.Imports {
			if r.Classify(di.ModuleName) != resolve.ThirdParty {
				continue
			}
			seen[leftmostOf(di)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func leftmostOf(di extract.DiscoveredImport) string {
	if idx := strings.IndexByte(di.ModuleName, '.'); idx >= 0 {
		return di.ModuleName[:idx]
	}
	return di.ModuleName
}

// WriteManifest renders names as a newline-delimited requirements
// file.
func WriteManifest(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "\n") + "\n"
}

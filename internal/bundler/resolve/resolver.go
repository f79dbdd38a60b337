// Package resolve implements the bundler's import resolver: classify
// an import spelling as first-party, third-party, or standard-library,
// and map first-party names to a file on disk.
package resolve

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	sourceExt       = ".sn"
	packageInitFile = "index" + sourceExt
)

// Config configures a Resolver. Every field mirrors a spec.md §6
// configuration key or an explicit override passed by the orchestrator.
type Config struct {
	SourceRoots     []string
	KnownFirstParty []string
	KnownThirdParty []string
	TargetVersion   TargetVersion
	// VenvPath, if non-empty, overrides auto-detection of the virtual
	// environment used for third-party package enumeration.
	VenvPath string
}

// Resolver answers classify/resolve_path queries for import names,
// memoising every result for its lifetime (spec §4.1, §5 "owns an
// internal cache mutated monotonically").
type Resolver struct {
	roots           []string
	knownFirstParty map[string]bool
	knownThirdParty map[string]bool
	targetVersion   TargetVersion

	mu              sync.RWMutex
	firstPartyByName map[string]string // dotted name -> absolute file path
	classifyCache    map[string]Classification

	venvOnce     sync.Once
	venvPackages map[string]bool
}

// New builds a Resolver and eagerly runs first-party discovery over
// cfg.SourceRoots (deduplicated, canonicalised, non-existent entries
// ignored per spec §4.1).
func New(cfg Config) *Resolver {
	version := cfg.TargetVersion
	if version == "" {
		version = DefaultTargetVersion
	}
	r := &Resolver{
		roots:            dedupRoots(cfg.SourceRoots),
		knownFirstParty:  toSet(cfg.KnownFirstParty),
		knownThirdParty:  toSet(cfg.KnownThirdParty),
		targetVersion:    version,
		firstPartyByName: make(map[string]string),
		classifyCache:    make(map[string]Classification),
	}
	if cfg.VenvPath != "" {
		r.venvOnce.Do(func() {}) // mark as "resolved" before we fill it in below
		r.venvPackages = discoverVenvPackages(cfg.VenvPath)
	}
	r.discover()
	return r
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func dedupRoots(roots []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out
}

// discover walks every source root, deriving a dotted module name for
// each source file relative to the root that contains it. The first
// root to claim a name wins (configuration order, per §4.1).
func (r *Resolver) discover() {
	for _, root := range r.roots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // IO errors during discovery are skipped as if the entry did not exist; nothing is logged
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(path, sourceExt) {
				return nil
			}
			name := dottedNameForFile(root, path)
			if name == "" {
				return nil
			}
			if _, exists := r.firstPartyByName[name]; !exists {
				r.firstPartyByName[name] = path
			}
			return nil
		})
	}
}

// DottedNameForFile derives the dotted module name for path, a source
// file located somewhere under root; exported so the orchestrator can
// compute the entry module's own name with the same rule discovery
// uses internally.
func DottedNameForFile(root, path string) string {
	return dottedNameForFile(root, path)
}

// dottedNameForFile derives the canonical dotted module name of a
// source file relative to root. A package-init file at the root of a
// directory maps to the directory's own name; the package-init file
// sitting directly at the source root itself maps to the root
// directory's name too (the resolved Open Question in spec.md §9),
// not to the empty name.
func dottedNameForFile(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, sourceExt)

	if rel == "index" {
		return filepath.Base(root)
	}
	if strings.HasSuffix(rel, "/index") {
		dir := strings.TrimSuffix(rel, "/index")
		return strings.ReplaceAll(dir, "/", ".")
	}
	return strings.ReplaceAll(rel, "/", ".")
}

// Roots returns the resolver's canonicalised, deduplicated source
// roots, in configuration order.
func (r *Resolver) Roots() []string {
	out := make([]string, len(r.roots))
	copy(out, r.roots)
	return out
}

// RootContaining returns the first of roots that is an ancestor
// directory of absPath.
func RootContaining(roots []string, absPath string) (string, bool) {
	for _, root := range roots {
		rel, err := filepath.Rel(root, absPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		return root, true
	}
	return "", false
}

// FirstPartyNames returns every discovered first-party dotted name.
func (r *Resolver) FirstPartyNames() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.firstPartyByName))
	for name := range r.firstPartyByName {
		out[name] = true
	}
	return out
}

// Classify implements the six-step algorithm of spec.md §4.1.
func (r *Resolver) Classify(n string) Classification {
	r.mu.RLock()
	if c, ok := r.classifyCache[n]; ok {
		r.mu.RUnlock()
		return c
	}
	r.mu.RUnlock()

	c := r.classify(n)

	r.mu.Lock()
	r.classifyCache[n] = c
	r.mu.Unlock()
	return c
}

func (r *Resolver) classify(n string) Classification {
	// 1. Relative imports are always first-party.
	if strings.HasPrefix(n, ".") {
		return FirstParty
	}

	// 2. Standard library per target version.
	if IsStandardLibrary(n, r.targetVersion) {
		return StandardLibrary
	}

	// 3. Configured known-third-party set.
	if r.knownThirdParty[n] {
		return ThirdParty
	}

	// 4. First-party: exact match, prefix of a discovered name, or
	// ancestor of one.
	if r.isFirstParty(n) {
		return FirstParty
	}
	if r.knownFirstParty[n] {
		return FirstParty
	}

	// 5. Detected virtual-environment package.
	if r.venvPackageSet()[leftmostSegment(n)] {
		return ThirdParty
	}

	// 6. Default.
	return ThirdParty
}

func (r *Resolver) isFirstParty(n string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.firstPartyByName[n]; ok {
		return true
	}
	for name := range r.firstPartyByName {
		if strings.HasPrefix(name, n+".") || strings.HasPrefix(n, name+".") {
			return true
		}
	}
	return false
}

// ResolvePath returns the file path for a FirstParty name, or "" for
// any other classification (spec §4.1: "non-null only for FirstParty").
func (r *Resolver) ResolvePath(n string) string {
	r.mu.RLock()
	if path, ok := r.firstPartyByName[n]; ok {
		r.mu.RUnlock()
		return path
	}
	r.mu.RUnlock()

	for _, root := range r.roots {
		parts := strings.Split(n, ".")
		candidate := filepath.Join(append([]string{root}, parts...)...) + sourceExt
		if fileExists(candidate) {
			return candidate
		}
		candidate = filepath.Join(append(append([]string{root}, parts...), packageInitFile)...)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsPackage reports whether path is a package-init file.
func IsPackage(path string) bool {
	return strings.HasSuffix(filepath.ToSlash(path), "/"+packageInitFile) || filepath.Base(path) == packageInitFile
}

func (r *Resolver) venvPackageSet() map[string]bool {
	r.venvOnce.Do(func() {
		if r.venvPackages == nil {
			r.venvPackages = discoverVenvPackages(findVenvDir())
		}
	})
	return r.venvPackages
}

// findVenvDir locates a virtual environment directory via the
// conventional environment variable, falling back to conventional
// directory names in the current working directory.
func findVenvDir() string {
	if v := os.Getenv("SENTRA_VENV"); v != "" {
		return v
	}
	for _, candidate := range []string{".venv", "venv", "env"} {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

// discoverVenvPackages enumerates top-level package names installed in
// a virtual environment's site-packages directory. The site-packages
// location is platform-dependent: a fixed subpath on Windows, a scan
// for version-named subdirectories on POSIX (spec §4.1).
func discoverVenvPackages(venvPath string) map[string]bool {
	out := make(map[string]bool)
	if venvPath == "" {
		return out
	}

	var siteDirs []string
	if runtime.GOOS == "windows" {
		siteDirs = []string{filepath.Join(venvPath, "Lib", "site-packages")}
	} else {
		libDir := filepath.Join(venvPath, "lib")
		entries, err := os.ReadDir(libDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && strings.HasPrefix(e.Name(), "sentra") {
					siteDirs = append(siteDirs, filepath.Join(libDir, e.Name(), "site-packages"))
				}
			}
		}
	}

	for _, dir := range siteDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, "_") {
				continue
			}
			if strings.HasSuffix(name, ".dist-info") || strings.HasSuffix(name, ".egg-info") {
				continue
			}
			name = strings.TrimSuffix(name, sourceExt)
			out[name] = true
		}
	}
	return out
}

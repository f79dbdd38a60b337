// Package config loads and layers the bundler's declarative
// configuration: built-in defaults, system config, user config,
// project config in the working directory, environment variables, and
// finally an explicit --config file, in that precedence order.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"sentra-bundle/internal/bundler/bundleerr"
	"sentra-bundle/internal/bundler/resolve"
)

// envPrefix namespaces every environment-variable override this
// package consults.
const envPrefix = "SENTRA_BUNDLE_"

// Config is the declarative configuration surface of spec.md §6.
type Config struct {
	Src               []string `yaml:"src"`
	KnownFirstParty   []string `yaml:"known_first_party"`
	KnownThirdParty   []string `yaml:"known_third_party"`
	PreserveComments  bool     `yaml:"preserve_comments"`
	PreserveTypeHints bool     `yaml:"preserve_type_hints"`
	TargetVersion     string   `yaml:"target_version"`
}

// Defaults returns the built-in configuration, the base of the
// precedence chain.
func Defaults() Config {
	return Config{
		Src:           []string{"src", "."},
		TargetVersion: string(resolve.DefaultTargetVersion),
	}
}

// Load layers every precedence tier: defaults, system config, user
// config, project config (sentra-bundle.yaml in cwd), environment
// variables, and finally explicitFile at the highest precedence.
func Load(explicitFile string) (Config, error) {
	cfg := Defaults()

	for _, path := range []string{SystemConfigPath(), UserConfigPath(), projectConfigPath()} {
		if path == "" {
			continue
		}
		if err := mergeFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if explicitFile != "" {
		if err := mergeFile(&cfg, explicitFile); err != nil {
			return cfg, err
		}
	}

	if !resolve.IsValidTargetVersion(resolve.TargetVersion(cfg.TargetVersion)) {
		return cfg, bundleerr.New(bundleerr.Configuration, "invalid target_version: "+cfg.TargetVersion)
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return bundleerr.Wrap(bundleerr.Configuration, "reading config file "+path, err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return bundleerr.Wrap(bundleerr.Configuration, "parsing config file "+path, errors.WithStack(err))
	}
	mergeInto(cfg, overlay)
	return nil
}

// mergeInto layers overlay on top of cfg: any field overlay sets
// (non-empty slice, non-empty string, true boolean) replaces cfg's.
func mergeInto(cfg *Config, overlay Config) {
	if len(overlay.Src) > 0 {
		cfg.Src = overlay.Src
	}
	if len(overlay.KnownFirstParty) > 0 {
		cfg.KnownFirstParty = overlay.KnownFirstParty
	}
	if len(overlay.KnownThirdParty) > 0 {
		cfg.KnownThirdParty = overlay.KnownThirdParty
	}
	if overlay.PreserveComments {
		cfg.PreserveComments = true
	}
	if overlay.PreserveTypeHints {
		cfg.PreserveTypeHints = true
	}
	if overlay.TargetVersion != "" {
		cfg.TargetVersion = overlay.TargetVersion
	}
}

func projectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(cwd, "sentra-bundle.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// applyEnv layers environment-variable overrides: one per config key,
// comma-separated lists for collections, standard truthy strings for
// booleans.
func applyEnv(cfg *Config) {
	if v := lookupEnv("SRC"); v != "" {
		cfg.Src = splitList(v)
	}
	if v := lookupEnv("KNOWN_FIRST_PARTY"); v != "" {
		cfg.KnownFirstParty = splitList(v)
	}
	if v := lookupEnv("KNOWN_THIRD_PARTY"); v != "" {
		cfg.KnownThirdParty = splitList(v)
	}
	if v := lookupEnv("PRESERVE_COMMENTS"); v != "" {
		cfg.PreserveComments = isTruthy(v)
	}
	if v := lookupEnv("PRESERVE_TYPE_HINTS"); v != "" {
		cfg.PreserveTypeHints = isTruthy(v)
	}
	if v := lookupEnv("TARGET_VERSION"); v != "" {
		cfg.TargetVersion = v
	}
}

func lookupEnv(key string) string {
	return os.Getenv(envPrefix + key)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// ExtraSourceRootsEnvVar is the path-list environment variable the
// resolver consults to extend its source roots beyond config.Src.
const ExtraSourceRootsEnvVar = envPrefix + "EXTRA_SRC"

// VenvEnvVar is the virtual-environment-location environment variable
// consulted for third-party package enumeration.
const VenvEnvVar = "SENTRA_VENV"

// ExtraSourceRoots reads and splits ExtraSourceRootsEnvVar on the
// platform's path-list separator.
func ExtraSourceRoots() []string {
	v := os.Getenv(ExtraSourceRootsEnvVar)
	if v == "" {
		return nil
	}
	return strings.Split(v, string(os.PathListSeparator))
}

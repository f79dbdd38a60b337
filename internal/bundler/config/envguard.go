package config

import "os"

// EnvGuard saves an environment variable's prior value so a test can
// restore it, keeping the resolver's "read through explicit
// parameters or scoped guards" reentrancy guarantee (spec.md §9) even
// when tests mutate process environment directly.
type EnvGuard struct {
	key      string
	hadValue bool
	prior    string
}

// SetEnv sets key to value, returning a guard that restores the prior
// value (or unsets the key if it was previously unset) when Restore is
// called.
func SetEnv(key, value string) *EnvGuard {
	prior, ok := os.LookupEnv(key)
	os.Setenv(key, value)
	return &EnvGuard{key: key, hadValue: ok, prior: prior}
}

// UnsetEnv clears key, returning a guard that restores its prior
// value.
func UnsetEnv(key string) *EnvGuard {
	prior, ok := os.LookupEnv(key)
	os.Unsetenv(key)
	return &EnvGuard{key: key, hadValue: ok, prior: prior}
}

// Restore puts the environment variable back exactly as it was before
// the guard was created.
func (g *EnvGuard) Restore() {
	if g.hadValue {
		os.Setenv(g.key, g.prior)
	} else {
		os.Unsetenv(g.key)
	}
}

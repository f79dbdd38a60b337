package config

import (
	"os"
	"testing"
)

func TestSetEnvRestoresPriorValue(t *testing.T) {
	const key = "SENTRA_BUNDLE_TEST_VAR"
	os.Setenv(key, "original")
	defer os.Unsetenv(key)

	guard := SetEnv(key, "overridden")
	if got := os.Getenv(key); got != "overridden" {
		t.Fatalf("Getenv = %q, want overridden", got)
	}
	guard.Restore()
	if got := os.Getenv(key); got != "original" {
		t.Errorf("Getenv after Restore = %q, want original", got)
	}
}

func TestUnsetEnvRestoresAbsence(t *testing.T) {
	const key = "SENTRA_BUNDLE_TEST_ABSENT"
	os.Setenv(key, "present")

	guard := UnsetEnv(key)
	if _, ok := os.LookupEnv(key); ok {
		t.Fatal("expected the variable to be unset")
	}
	guard.Restore()
	if got, ok := os.LookupEnv(key); !ok || got != "present" {
		t.Errorf("Getenv after Restore = (%q, %v), want (present, true)", got, ok)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreUsedWhenNoTiersPresent(t *testing.T) {
	dir := t.TempDir()
	oldwd, _ := os.Getwd()
	defer os.Chdir(oldwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Src) == 0 {
		t.Error("expected default Src to be non-empty")
	}
}

func TestProjectConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	oldwd, _ := os.Getwd()
	defer os.Chdir(oldwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	writeProjectConfig(t, "src: [lib]\ntarget_version: v1.1\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Src) != 1 || cfg.Src[0] != "lib" {
		t.Errorf("cfg.Src = %v, want [lib]", cfg.Src)
	}
	if cfg.TargetVersion != "v1.1" {
		t.Errorf("cfg.TargetVersion = %q, want v1.1", cfg.TargetVersion)
	}
}

func TestEnvOverridesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	oldwd, _ := os.Getwd()
	defer os.Chdir(oldwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	writeProjectConfig(t, "src: [lib]\n")

	guard := SetEnv(envPrefix+"SRC", "one,two")
	defer guard.Restore()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Src) != 2 || cfg.Src[0] != "one" || cfg.Src[1] != "two" {
		t.Errorf("cfg.Src = %v, want [one two]", cfg.Src)
	}
}

func TestExplicitConfigFileHasHighestPrecedence(t *testing.T) {
	dir := t.TempDir()
	oldwd, _ := os.Getwd()
	defer os.Chdir(oldwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	writeProjectConfig(t, "src: [lib]\n")

	guard := SetEnv(envPrefix+"SRC", "fromenv")
	defer guard.Restore()

	explicit := filepath.Join(dir, "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("src: [fromfile]\n"), 0o644); err != nil {
		t.Fatalf("write explicit config: %v", err)
	}

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Src) != 1 || cfg.Src[0] != "fromfile" {
		t.Errorf("cfg.Src = %v, want [fromfile] (explicit file wins)", cfg.Src)
	}
}

func TestLoadRejectsInvalidTargetVersion(t *testing.T) {
	dir := t.TempDir()
	oldwd, _ := os.Getwd()
	defer os.Chdir(oldwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	writeProjectConfig(t, "target_version: v9.9\n")

	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for an invalid target_version")
	}
}

func writeProjectConfig(t *testing.T, contents string) {
	t.Helper()
	if err := os.WriteFile("sentra-bundle.yaml", []byte(contents), 0o644); err != nil {
		t.Fatalf("write sentra-bundle.yaml: %v", err)
	}
}

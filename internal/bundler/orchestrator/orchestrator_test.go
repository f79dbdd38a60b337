package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// writeArchive materializes a txtar fixture under dir, so callers can
// point Options.EntryPath at one of its files.
func writeArchive(t *testing.T, dir, data string) {
	t.Helper()
	arc := txtar.Parse([]byte(data))
	for _, f := range arc.Files {
		path := filepath.Join(dir, f.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestBundleSingleModuleNoDependencies(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- main.sn --
let x = 1
log(x)
`)

	result, err := Bundle(context.Background(), Options{EntryPath: filepath.Join(dir, "main.sn")})
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if !strings.Contains(result.Source, "let x = 1") {
		t.Errorf("output missing entry body:\n%s", result.Source)
	}
}

func TestBundleMergesFirstPartyDependency(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- main.sn --
from .util import helper
log(helper())
-- util.sn --
fn helper() {
    return 1
}
`)

	result, err := Bundle(context.Background(), Options{EntryPath: filepath.Join(dir, "main.sn")})
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if !strings.Contains(result.Source, "fn helper()") {
		t.Errorf("output missing the bundled dependency's function:\n%s", result.Source)
	}
	if strings.Contains(result.Source, "import") && strings.Contains(result.Source, "util") {
		t.Errorf("bundled import of util should not survive in output:\n%s", result.Source)
	}
}

func TestBundlePreservesThirdPartyImport(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- main.sn --
import requests
log(requests())
`)

	result, err := Bundle(context.Background(), Options{EntryPath: filepath.Join(dir, "main.sn")})
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if !strings.Contains(result.Source, "import requests") {
		t.Errorf("output should preserve the third-party import:\n%s", result.Source)
	}
}

func TestBundleEmitRequirementsManifest(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- main.sn --
import requests
log(requests())
`)

	result, err := Bundle(context.Background(), Options{
		EntryPath:        filepath.Join(dir, "main.sn"),
		EmitRequirements: true,
	})
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	found := false
	for _, name := range result.Manifest {
		if name == "requests" {
			found = true
		}
	}
	if !found {
		t.Errorf("Manifest = %v, want it to contain requests", result.Manifest)
	}
}

func TestBundleUnresolvableCycleFails(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- main.sn --
from .a import go
log(go())
-- a.sn --
from .b import CONSTANTS
fn go() {
    return CONSTANTS
}
-- b.sn --
from .a import CONSTANTS
let CONSTANTS = 1
`)

	_, err := Bundle(context.Background(), Options{EntryPath: filepath.Join(dir, "main.sn")})
	if err == nil {
		t.Fatal("expected an error for an unresolvable module-constants cycle")
	}
}

package symbols

import (
	"testing"

	"sentra-bundle/internal/parser"
)

func TestAnalyzeModuleTopLevelOnly(t *testing.T) {
	stmts := []parser.Stmt{
		&parser.FunctionStmt{Name: "handler", Body: []parser.Stmt{
			&parser.LetStmt{Name: "nested"},
		}},
		&parser.LetStmt{Name: "count"},
		&parser.LetStmt{Name: "_private"},
	}
	bindings := AnalyzeModule("app.main", stmts)
	if len(bindings) != 3 {
		t.Fatalf("len(bindings) = %d, want 3 (nested let must not be a top-level binding)", len(bindings))
	}
	names := map[string]Binding{}
	for _, b := range bindings {
		names[b.Name] = b
	}
	if names["count"].Private || names["count"].Kind != Assignment {
		t.Errorf("count binding = %+v, want non-private Assignment", names["count"])
	}
	if !names["_private"].Private {
		t.Error("_private should be classified Private")
	}
}

func TestAnalyzeModuleDunderIsNotPrivate(t *testing.T) {
	stmts := []parser.Stmt{&parser.LetStmt{Name: "__version__"}}
	bindings := AnalyzeModule("app.main", stmts)
	if bindings[0].Private {
		t.Error("__version__ is a dunder, should not be classified Private")
	}
}

func TestBuildConflictRegistrySkipsPrivateAndSingleModule(t *testing.T) {
	byModule := map[string][]Binding{
		"app.a": {{Module: "app.a", Name: "run"}, {Module: "app.a", Name: "_helper", Private: true}},
		"app.b": {{Module: "app.b", Name: "run"}},
		"app.c": {{Module: "app.c", Name: "unique"}},
	}
	reg := BuildConflictRegistry(byModule)
	if _, ok := reg["unique"]; ok {
		t.Error("a name defined by only one module should not be a conflict")
	}
	if _, ok := reg["_helper"]; ok {
		t.Error("a private name should never register a conflict")
	}
	if mods := reg["run"]; len(mods) != 2 {
		t.Errorf("reg[run] = %v, want two modules", mods)
	}
}

func TestBuildRenamePlanSuffixesEveryConflictingModule(t *testing.T) {
	reg := ConflictRegistry{"run": []string{"app.a", "app.b"}}
	plan := BuildRenamePlan(reg)

	renameA, okA := plan[[2]string{"app.a", "run"}]
	renameB, okB := plan[[2]string{"app.b", "run"}]
	if !okA || !okB {
		t.Fatalf("plan missing entries: %+v", plan)
	}
	if renameA == "run" || renameB == "run" {
		t.Errorf("neither module should keep the bare name: got %q and %q", renameA, renameB)
	}
	if renameA == renameB {
		t.Errorf("renamed names must be distinct, got %q twice", renameA)
	}
}

func TestBuildRenamePlanDeduplicatesCollidingSanitizedNames(t *testing.T) {
	// a.b and a_b both sanitize to "a_b" once dots become underscores,
	// so both renames start out as "a_b_run"; confirm the plan still
	// assigns distinct names.
	reg := ConflictRegistry{
		"run":  []string{"a.b", "a_b"},
	}
	plan := BuildRenamePlan(reg)
	seen := map[string]bool{}
	for _, v := range plan {
		if seen[v] {
			t.Fatalf("duplicate renamed name %q in plan %+v", v, plan)
		}
		seen[v] = true
	}
}

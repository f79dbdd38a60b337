package extract

import (
	"testing"

	"sentra-bundle/internal/lexer"
	"sentra-bundle/internal/parser"
)

func parseProgram(t *testing.T, source string) []parser.Stmt {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("parse panic: %v", r)
		}
	}()
	scanner := lexer.NewScanner(source)
	tokens := scanner.ScanTokens()
	p := parser.NewParser(tokens)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	return stmts
}

func TestFromFileModuleScopeBareImport(t *testing.T) {
	stmts := parseProgram(t, "import math\n")
	got, err := FromFile(stmts, "app.main", false)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].ModuleName != "math" || got[0].Scope.Kind != ScopeModule {
		t.Errorf("got %+v, want ModuleName=math Scope=module", got[0])
	}
}

func TestFromFileFunctionScopeImport(t *testing.T) {
	src := "fn handler() {\n import math\n return 1\n}\n"
	stmts := parseProgram(t, src)
	got, err := FromFile(stmts, "app.main", false)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Scope.Kind != ScopeFunction || got[0].Scope.Function != "handler" {
		t.Errorf("got scope %+v, want function=handler", got[0].Scope)
	}
}

func TestFromFileConditionalScopeImport(t *testing.T) {
	src := "if true {\n import math\n}\n"
	stmts := parseProgram(t, src)
	got, err := FromFile(stmts, "app.main", false)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Scope.Kind != ScopeConditional || got[0].Scope.Depth != 1 {
		t.Errorf("got scope %+v, want conditional depth=1", got[0].Scope)
	}
}

func TestFromFileRelativeImportResolvesAgainstPackage(t *testing.T) {
	src := "from .sibling import helper\n"
	stmts := parseProgram(t, src)
	got, err := FromFile(stmts, "app.pkg.module", false)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].ModuleName != "app.pkg.sibling" {
		t.Errorf("ModuleName = %q, want app.pkg.sibling", got[0].ModuleName)
	}
	if got[0].IsFrom != true || len(got[0].Symbols) != 1 || got[0].Symbols[0].Name != "helper" {
		t.Errorf("got %+v, want a single from-symbol helper", got[0])
	}
}

func TestFromFileRelativeImportBeyondPackageDepthFails(t *testing.T) {
	src := "from ...sibling import helper\n"
	stmts := parseProgram(t, src)
	_, err := FromFile(stmts, "app.module", false)
	if err == nil {
		t.Fatal("expected an error for a relative import that climbs past the package root")
	}
}

func TestLocalNamesBareImportUsesAliasOrLastSegment(t *testing.T) {
	stmts := parseProgram(t, "import a.b.c\n")
	got, err := FromFile(stmts, "app.main", false)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if names := got[0].LocalNames(); len(names) != 1 || names[0] != "c" {
		t.Errorf("LocalNames() = %v, want [c]", names)
	}
}

func TestLocalNamesFromImportMultipleSymbols(t *testing.T) {
	stmts := parseProgram(t, "from math import sin, cos as c\n")
	got, err := FromFile(stmts, "app.main", false)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	names := got[0].LocalNames()
	if len(names) != 2 || names[0] != "sin" || names[1] != "c" {
		t.Errorf("LocalNames() = %v, want [sin c]", names)
	}
}

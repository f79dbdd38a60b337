package orchestrator

import (
	"os"

	"sentra-bundle/internal/bundler/bundleerr"
	"sentra-bundle/internal/bundler/extract"
	"sentra-bundle/internal/bundler/resolve"
	"sentra-bundle/internal/lexer"
	"sentra-bundle/internal/parser"
)

// loadedModule is one wave member's parse + import-extraction result,
// computed off the main goroutine so a directory of unrelated sibling
// imports loads and parses concurrently instead of one file at a time.
type loadedModule struct {
	name    string
	stmts   []parser.Stmt
	imports []extract.DiscoveredImport
	isPkg   bool
}

// loadModule resolves name to a file path, then reads, parses, and
// extracts its imports. It returns (nil, nil) for a first-party name
// the resolver cannot map to a file, leaving the caller to record the
// warning — resolver.ResolvePath and the parser are both safe to call
// from concurrent goroutines, so every wave member runs through here
// in parallel via errgroup.
func loadModule(resolver *resolve.Resolver, pathOf map[string]string, name string) (*loadedModule, error) {
	path := pathOf[name]
	if path == "" {
		path = resolver.ResolvePath(name)
	}
	if path == "" {
		return nil, nil
	}

	stmts, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	isPkg := resolve.IsPackage(path)
	imports, err := extract.FromFile(stmts, name, isPkg)
	if err != nil {
		return nil, err
	}
	return &loadedModule{name: name, stmts: stmts, imports: imports, isPkg: isPkg}, nil
}

// loadFile reads and parses a single source file, translating a parser
// panic (the lexer/parser's own error-signalling convention) into a
// Discovery-kind bundler error.
func loadFile(path string) (stmts []parser.Stmt, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, bundleerr.Wrap(bundleerr.Discovery, "reading "+path, readErr)
	}

	defer func() {
		if r := recover(); r != nil {
			if parseErr, ok := r.(error); ok {
				err = bundleerr.Wrap(bundleerr.Discovery, "parsing "+path, parseErr)
				return
			}
			err = bundleerr.New(bundleerr.Discovery, "parsing "+path+": unrecoverable parse failure")
		}
	}()

	source := string(data)
	scanner := lexer.NewScannerForFile(source, path)
	tokens := scanner.ScanTokens()
	p := parser.NewParserWithSource(tokens, source, path)
	stmts = p.Parse()
	if len(p.Errors) > 0 {
		return nil, bundleerr.New(bundleerr.Discovery, "parsing "+path+": "+p.Errors[0].Error())
	}
	return stmts, nil
}

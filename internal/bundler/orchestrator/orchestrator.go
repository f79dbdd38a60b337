// Package orchestrator wires the resolver, extractor, dependency
// graph, cycle rewriter, symbol analyzer, and static bundler into the
// single Bundle entrypoint.
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sentra-bundle/internal/bundler/bundleerr"
	"sentra-bundle/internal/bundler/config"
	"sentra-bundle/internal/bundler/emit"
	"sentra-bundle/internal/bundler/extract"
	"sentra-bundle/internal/bundler/graph"
	"sentra-bundle/internal/bundler/resolve"
	"sentra-bundle/internal/bundler/rewrite"
	"sentra-bundle/internal/bundler/symbols"
	"sentra-bundle/internal/parser"
)

// Options configures a single Bundle invocation.
type Options struct {
	EntryPath        string
	ConfigPath       string // --config, highest config precedence
	EmitRequirements bool
	TraceImports     bool
}

// Result is everything one Bundle call produces.
type Result struct {
	CorrelationID string
	Source        string
	Manifest      []string // nil unless Options.EmitRequirements
	Trace         []string // discovery trace, only when Options.TraceImports
	Warnings      []string
}

// Bundle runs the full ten-step pipeline of spec.md §4.7.
func Bundle(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{CorrelationID: uuid.NewString()}

	// Step 1: load config.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	entryAbs, err := filepath.Abs(opts.EntryPath)
	if err != nil {
		return nil, bundleerr.Wrap(bundleerr.Configuration, "resolving entry path", err)
	}

	// Step 2: add the entry file's directory to the source roots.
	entryDir := filepath.Dir(entryAbs)
	roots := append(append([]string{}, cfg.Src...), config.ExtraSourceRoots()...)
	roots = appendUnique(roots, entryDir)

	resolver := resolve.New(resolve.Config{
		SourceRoots:     roots,
		KnownFirstParty: cfg.KnownFirstParty,
		KnownThirdParty: cfg.KnownThirdParty,
		TargetVersion:   resolve.TargetVersion(cfg.TargetVersion),
		VenvPath:        os.Getenv(config.VenvEnvVar),
	})

	// Step 3: determine the entry module's name.
	root, ok := resolve.RootContaining(resolver.Roots(), entryAbs)
	if !ok {
		root = entryDir
	}
	entryName := resolve.DottedNameForFile(root, entryAbs)

	// Step 4: build the dependency graph via discovery + processing.
	g := graph.New()
	modules := make(map[string]emit.ModuleInput)
	memberUses := make(map[string][]string)
	pathOf := map[string]string{entryName: entryAbs}
	visited := make(map[string]bool)
	queue := []string{entryName}

	g.AddModule(entryName)
	g.MarkEntry(entryName)

	for len(queue) > 0 {
		wave := queue
		queue = nil

		var pending []string
		for _, name := range wave {
			if visited[name] {
				continue
			}
			visited[name] = true
			pending = append(pending, name)
		}

		waveResults := make([]*loadedModule, len(pending))
		group, _ := errgroup.WithContext(ctx)
		for i, name := range pending {
			i, name := i, name
			group.Go(func() error {
				loaded, err := loadModule(resolver, pathOf, name)
				if err != nil {
					return err
				}
				waveResults[i] = loaded
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}

		for _, loaded := range waveResults {
			if loaded == nil {
				continue // unresolved first-party name, already recorded as a warning below
			}
			name := loaded.name
			g.AddModule(name)
			modules[name] = emit.ModuleInput{Name: name, Body: loaded.stmts, Imports: loaded.imports, IsPackage: loaded.isPkg}

			for _, di := range loaded.imports {
				memberUses[name] = append(memberUses[name], di.ModuleName)
				memberUses[name] = append(memberUses[name], di.LocalNames()...)
				if resolver.Classify(di.ModuleName) != resolve.FirstParty {
					continue
				}

				targets := []string{di.ModuleName}
				parts := strings.Split(di.ModuleName, ".")
				for i := len(parts) - 1; i > 0; i-- {
					parent := strings.Join(parts[:i], ".")
					if resolver.Classify(parent) == resolve.FirstParty {
						targets = append(targets, parent)
					}
				}

				for _, target := range targets {
					g.AddModule(target)
					if err := g.AddDependency(name, target); err != nil {
						return nil, err
					}
					if !visited[target] {
						queue = append(queue, target)
					}
				}
			}

			if opts.TraceImports {
				result.Trace = append(result.Trace, traceLine(name, loaded.imports))
			}
		}

		for i, name := range pending {
			if waveResults[i] == nil {
				result.Warnings = append(result.Warnings, "unresolved first-party name: "+name)
			}
		}
	}

	// Step 5: filter to modules reachable from the entry (discovery
	// above already only visits reachable modules; this re-derives the
	// same set explicitly, per spec.md §4.7 step 5).
	g = g.FilterReachableFrom(entryName)
	for name := range modules {
		if !g.Has(name) {
			delete(modules, name)
		}
	}

	// Step 6: classify cycles, abort on Unresolvable, else rewrite.
	cycles := g.ClassifyCycles(memberUses)
	if unresolvable := unresolvableCycles(cycles); len(unresolvable) > 0 {
		return nil, &bundleerr.CyclesError{Cycles: unresolvable}
	}

	if len(cycles) > 0 {
		bodies := make(map[string][]parser.Stmt, len(modules))
		for name, mod := range modules {
			bodies[name] = mod.Body
		}
		for _, c := range cycles {
			members := make(map[string]bool, len(c.Members))
			for _, m := range c.Members {
				members[m] = true
			}
			moves := rewrite.Plan(bodies, importsOf(modules), members, rewrite.DefaultSideEffectModules)
			rewrite.Apply(bodies, moves)
		}
		for name, body := range bodies {
			mod := modules[name]
			mod.Body = body
			modules[name] = mod
		}
	}

	// Step 7: deterministic emission order.
	order, err := g.EmissionOrder(cycles)
	if err != nil {
		return nil, err
	}

	// Step 8: symbol analysis + rename plan.
	byModule := make(map[string][]symbols.Binding, len(modules))
	for name, mod := range modules {
		byModule[name] = symbols.AnalyzeModule(name, mod.Body)
	}
	renamePlan := symbols.BuildRenamePlan(symbols.BuildConflictRegistry(byModule))

	// Step 9: static bundler + serialize.
	merged := emit.Merge(emit.Inputs{
		Order:    order,
		Entry:    entryName,
		Modules:  modules,
		Renames:  renamePlan,
		Resolver: resolver,
	})
	result.Source = banner(result.CorrelationID) + emit.Print(merged)

	// Step 10: optional manifest.
	if opts.EmitRequirements {
		result.Manifest = emit.Manifest(modules, resolver)
	}

	return result, nil
}

func unresolvableCycles(cycles []graph.Cycle) []bundleerr.CycleMember {
	var out []bundleerr.CycleMember
	for _, c := range cycles {
		if c.Strategy != graph.Unresolvable {
			continue
		}
		out = append(out, bundleerr.CycleMember{Chain: c.Members, Kind: string(c.Kind), Reason: c.Reason})
	}
	return out
}

func importsOf(modules map[string]emit.ModuleInput) map[string][]extract.DiscoveredImport {
	out := make(map[string][]extract.DiscoveredImport, len(modules))
	for name, mod := range modules {
		out[name] = mod.Imports
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func traceLine(module string, imports []extract.DiscoveredImport) string {
	names := make([]string, len(imports))
	for i, di := range imports {
		names[i] = di.ModuleName
	}
	sort.Strings(names)
	return module + ": " + strings.Join(names, ", ")
}

func banner(correlationID string) string {
	return "#!/usr/bin/env sentra\n" +
		"// Generated by sentra-bundle. Do not edit by hand.\n" +
		"// bundle-id: " + correlationID + "\n"
}

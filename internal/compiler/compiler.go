// Package compiler wires the five pipeline stages (spec.md §2) behind a
// single instance-owned facade: Compiler owns Symbols/Typespace/Errors
// exclusively, no globals (spec.md §5, §9 "Shared, mutable compiler
// state").
package compiler

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/quarkc/compiler/internal/addressing"
	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/check"
	"github.com/quarkc/compiler/internal/diag"
	"github.com/quarkc/compiler/internal/ir"
	"github.com/quarkc/compiler/internal/lower"
	"github.com/quarkc/compiler/internal/mono"
	"github.com/quarkc/compiler/internal/symbols"
	"github.com/quarkc/compiler/internal/typespace"
)

// Options configures a Compiler. Nothing here is read from package-level
// state; every field is supplied by the caller (spec.md §1.2 AMBIENT
// STACK "Configuration").
type Options struct {
	// ProjectRoot and SearchPaths locate namespace source files via the
	// addressing package, generalising internal/module.Resolver's
	// explicit field struct.
	ProjectRoot string
	SearchPaths []string

	// NativeTargets lists every emission target a Primitive's Mappings
	// must cover; missing entries are a MissingTypeMapping diagnostic
	// raised during type construction (spec.md §4.2).
	NativeTargets []string
}

// Manifest is the YAML project file (quark.yaml) describing package
// roots and native targets (spec.md §1.2, §2 domain-stack table).
type Manifest struct {
	PackageRoots  []string `yaml:"packageRoots"`
	NativeTargets []string `yaml:"nativeTargets"`
}

// LoadManifest reads and parses a quark.yaml manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compiler: reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("compiler: parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// Merge folds a Manifest's package roots and native targets into o,
// returning the combined Options. Explicit Options fields are additive
// with the manifest rather than overridden by it.
func (o Options) Merge(m *Manifest) Options {
	if m == nil {
		return o
	}
	o.SearchPaths = append(append([]string(nil), o.SearchPaths...), m.PackageRoots...)
	o.NativeTargets = append(append([]string(nil), o.NativeTargets...), m.NativeTargets...)
	return o
}

// Compiler owns one compilation's symbol table, type space, and error
// collector exclusively (spec.md §5). It is not safe for concurrent use
// by multiple goroutines against the same namespace, matching the
// single-threaded, non-suspending concurrency model of spec.md §5.
type Compiler struct {
	opts      Options
	addresses *addressing.Resolver
	symbols   *symbols.Table
	space     *typespace.Space
	errors    *diag.Collector
	runID     uuid.UUID
}

// New constructs a Compiler ready to compile namespaces under opts.
func New(opts Options) *Compiler {
	return &Compiler{
		opts:      opts,
		addresses: addressing.NewResolver(addressing.Options{ProjectRoot: opts.ProjectRoot, SearchPaths: opts.SearchPaths}),
		symbols:   symbols.NewTable(),
		space:     typespace.Builtins(opts.NativeTargets),
		errors:    diag.NewCollector(),
		runID:     uuid.New(),
	}
}

// RunID is a fresh, process-unique identifier for this Compiler
// instance, attached to diagnostic reports so multiple compilations in
// one process can be told apart in combined CLI/JSON output (spec.md
// §2 domain-stack table).
func (c *Compiler) RunID() uuid.UUID { return c.runID }

// Errors exposes the collector accumulated so far.
func (c *Compiler) Errors() *diag.Collector { return c.errors }

// Symbols exposes the symbol table populated so far, for collaborators
// (e.g. a CLI -dump flag) that want to inspect bindings directly.
func (c *Compiler) Symbols() *symbols.Table { return c.symbols }

// Typespace exposes the frozen type space.
func (c *Compiler) Typespace() *typespace.Space { return c.space }

// Report pairs a namespace's lowered IR with the run identity and
// collected diagnostics, for a CLI or JSON emitter to render.
type Report struct {
	RunID       uuid.UUID
	Package     *ir.Package
	Diagnostics []diag.Diagnostic
}

// Compile runs the five-stage pipeline over ns: symbol registration,
// type-space construction, type checking, instantiation discovery, and
// IR lowering, with a phase-boundary Barrier() after each of the first
// three (spec.md §4.2 "Check phases call a barrier that aborts if any
// error is pending", §4.5 "first error aborts progression"). Lowering
// is never attempted on an ill-typed program.
func (c *Compiler) Compile(ns *ast.Namespace) (*Report, error) {
	c.symbols.Add(ns, c.errors)
	if err := c.errors.Barrier(); err != nil {
		return nil, err
	}

	c.space.Construct(ns, c.errors)
	if err := c.errors.Barrier(); err != nil {
		return nil, err
	}

	checker := check.NewChecker(c.symbols, c.space, c.errors)
	checker.Check(ns)
	if err := c.errors.Barrier(); err != nil {
		return nil, err
	}

	insts := mono.Discover(c.space, ns)
	packageAddr := addressing.Address(ns.Path)
	l := lower.New(c.symbols, c.space, checker.Conversions, c.errors, packageAddr)
	pkg := l.LowerNamespace(ns, insts)

	// Lowering itself can still append diagnostics (TestClassWithCtor),
	// but pipeline progression has already completed; the barrier here
	// only decides whether the report carries a Failure for the CLI.
	var err error
	if barrierErr := c.errors.Barrier(); barrierErr != nil {
		err = barrierErr
	}
	return &Report{RunID: c.runID, Package: pkg, Diagnostics: c.errors.Entries()}, err
}

// Package lower implements IR lowering (spec.md §4.4): a shape-directed
// rewriter that turns each top-level instantiation's typed declarations
// and statements into the language-neutral IR defined by package ir.
//
// Lowerer carries three pieces of state scoped to exactly one top-level
// definition's compilation (spec.md §3 "Lifecycles", §4.4 "stateful in
// three slots"): a stack of statement-collecting frames, a monotonic
// fresh-temp counter, and a running assertion count that retroactively
// reclassifies the enclosing function/method/class as a Check/TestMethod/
// TestClass.
package lower

import (
	"fmt"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/check"
	"github.com/quarkc/compiler/internal/diag"
	"github.com/quarkc/compiler/internal/ir"
	"github.com/quarkc/compiler/internal/mangle"
	"github.com/quarkc/compiler/internal/symbols"
	"github.com/quarkc/compiler/internal/typespace"
)

// Lowerer owns the frozen inputs (symbol table, type space, conversion
// map) plus the per-definition scratch state reset by beginDefinition.
type Lowerer struct {
	Symbols     *symbols.Table
	Space       *typespace.Space
	Conversions check.Conversions
	Collector   *diag.Collector
	PackageAddr string

	stack   [][]ir.Node
	counter int
	asserts int

	selfRef         typespace.Ref
	selfIsPrimitive bool
}

// New returns a Lowerer over an already-checked program: a populated
// symbol table, a frozen type space, and the conversion map the checker
// recorded.
func New(table *symbols.Table, space *typespace.Space, conversions check.Conversions, collector *diag.Collector, packageAddr string) *Lowerer {
	return &Lowerer{Symbols: table, Space: space, Conversions: conversions, Collector: collector, PackageAddr: packageAddr}
}

func (l *Lowerer) beginDefinition() {
	l.stack = nil
	l.counter = 0
	l.asserts = 0
}

func (l *Lowerer) push() { l.stack = append(l.stack, nil) }

func (l *Lowerer) pop() []ir.Node {
	n := len(l.stack)
	top := l.stack[n-1]
	l.stack = l.stack[:n-1]
	return top
}

func (l *Lowerer) add(n ir.Node) {
	if len(l.stack) == 0 {
		diag.Invariant("lower.add", "statement emitted with no active frame")
	}
	top := len(l.stack) - 1
	l.stack[top] = append(l.stack[top], n)
}

func (l *Lowerer) fresh() string {
	name := fmt.Sprintf("temp%d", l.counter)
	l.counter++
	return name
}

func fqJoin(nsPath, name string) string {
	if nsPath == "" {
		return name
	}
	return nsPath + "." + name
}

// LowerNamespace lowers every top-level instantiation discovered for ns
// into one ir.Package (spec.md §4.4.6).
func (l *Lowerer) LowerNamespace(ns *ast.Namespace, instantiations []typespace.Instantiation) *ir.Package {
	pkg := &ir.Package{Name: l.PackageAddr}
	for _, inst := range instantiations {
		nodes := l.lowerInstantiation(ns, inst)
		pkg.Defs = append(pkg.Defs, nodes...)
	}
	return pkg
}

func (l *Lowerer) lowerInstantiation(ns *ast.Namespace, inst typespace.Instantiation) []ir.Node {
	fq := fqJoin(ns.Path, inst.Def.Name)
	decl, ok := l.Symbols.Definition(fq)
	if !ok {
		decl, ok = l.Symbols.Definition(inst.Def.Name)
	}
	if !ok {
		// No AST declaration backs this instantiation at all: the only
		// definitions built this way are the built-in ground primitives
		// seeded straight into the type space by typespace.Builtins, which
		// never appear in ns.Decls (spec.md §4.4.3).
		ref := l.instRef(inst)
		ground, err := l.Space.Resolve(ref)
		if err != nil || ground.DefKind != typespace.KindPrimitive {
			return nil
		}
		return l.lowerBuiltinGroundDefs(ground)
	}
	switch d := decl.(type) {
	case *ast.Function:
		return []ir.Node{l.lowerFunction(d, fq, inst, ns.Path)}
	case *ast.NativeFunction:
		return []ir.Node{l.lowerNativeFunction(d, fq, inst)}
	case *ast.Class:
		return []ir.Node{l.lowerClass(d, inst, ns.Path)}
	case *ast.Interface:
		return []ir.Node{l.lowerInterface(d, inst)}
	case *ast.Primitive:
		return l.lowerPrimitiveDef(d, inst)
	}
	return nil
}

// mangledSymbol mangles a top-level name, embedding the instantiation's
// concrete type arguments in their template's declared order (spec.md
// §4.3, §4.4.6).
func (l *Lowerer) mangledSymbol(name string, bindings map[string]typespace.Ref) string {
	if tpl, ok := l.Space.Templates[name]; ok && len(bindings) > 0 {
		params := make([]typespace.Ref, len(tpl.Params))
		for i, p := range tpl.Params {
			params[i] = bindings[p]
		}
		return mangle.Name(typespace.Ref{Name: name, Params: params})
	}
	return mangle.Name(typespace.NewRef(name))
}

func (l *Lowerer) irType(r typespace.Ref) ir.Node {
	switch r.Name {
	case "quark.int":
		return ir.Int{}
	case "quark.float":
		return ir.Float{}
	case "bool":
		return ir.Bool{}
	case "quark.String":
		return ir.String{}
	case "void":
		return ir.Void{}
	case "quark.Any":
		return ir.Any{}
	case "quark.Scalar":
		return ir.Scalar{}
	}
	ground, err := l.Space.Resolve(r)
	if err != nil {
		return &ir.Primitive{Name: r.String()}
	}
	switch ground.DefKind {
	case typespace.KindInterface:
		return &ir.InterfaceType{Name: l.typeName(r)}
	case typespace.KindClass:
		return &ir.ClassType{Name: l.typeName(r)}
	default:
		return &ir.Primitive{Name: mangle.Name(r)}
	}
}

func (l *Lowerer) typeName(r typespace.Ref) ir.Name {
	return ir.Name{Package: l.PackageAddr, Qualified: r.String(), Mangled: mangle.Name(r)}
}

// instRef reconstructs the concrete Ref an Instantiation names, binding a
// template's parameters in declared order exactly as mangledSymbol does.
func (l *Lowerer) instRef(inst typespace.Instantiation) typespace.Ref {
	if tpl, ok := l.Space.Templates[inst.Def.Name]; ok && len(inst.Bindings) > 0 {
		params := make([]typespace.Ref, len(tpl.Params))
		for i, p := range tpl.Params {
			params[i] = inst.Bindings[p]
		}
		return typespace.Ref{Name: inst.Def.Name, Params: params}
	}
	return typespace.NewRef(inst.Def.Name)
}

func (l *Lowerer) isPrimitiveRef(r typespace.Ref) bool {
	g, err := l.Space.Resolve(r)
	return err == nil && g.DefKind == typespace.KindPrimitive
}

// Package symbols implements the symbol table (spec.md §4.1): indexing
// every declaration by fully-qualified name, resolving AST identifiers to
// their defining nodes, and classifying each identifier's binding kind.
package symbols

import (
	"fmt"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/diag"
	"github.com/quarkc/compiler/internal/sid"
)

// Kind classifies what an identifier resolves to.
type Kind int

const (
	BindParam Kind = iota
	BindDeclaration
	BindField
	BindSelf
	BindBoxed
	BindNulled
	BindTypeParam
	BindFunction
	BindClass
	BindInterface
	BindPrimitive
)

func (k Kind) String() string {
	names := [...]string{
		"Param", "Declaration", "Field", "Self", "Boxed", "Nulled",
		"TypeParam", "Function", "Class", "Interface", "Primitive",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Binding is the result of resolving one identifier. Decl holds the
// concrete defining node (*ast.Param, *ast.Declaration, *ast.Field,
// *ast.Method, *ast.Class, *ast.Interface, *ast.Primitive, *ast.Function);
// for BindSelf it is the enclosing class or primitive. Lookup never
// returns the BindBoxed, BindNulled or BindTypeParam kinds.
type Binding struct {
	Kind  Kind
	Name  string
	Decl  interface{}
	Class string // enclosing class/primitive name, set for BindSelf
}

// NodeID computes a stable identity for an AST node (Design Notes "Key by
// a stable AST node identity... not by value equality") using a source
// position and kind scheme. Two nodes at the same source position with
// the same Kind are the same node by construction, since the surface
// syntax never places two nodes at one position.
func NodeID(n ast.Node) sid.SID {
	p := n.Position()
	return sid.NewSID(p.File, p.Offset, p.Offset, n.Kind(), nil)
}

// Scope is one lexical level of the enclosing-scope chain consulted by
// Lookup: local block, enclosing function/method, enclosing
// class/interface/primitive, enclosing namespace.
type Scope struct {
	Kind   string // "local", "function", "type", "namespace"
	Owner  ast.Node
	Locals map[string]*ast.Declaration
	Params map[string]*ast.Param
	Parent *Scope
}

// NewScope starts a fresh scope nested under parent.
func NewScope(kind string, owner ast.Node, parent *Scope) *Scope {
	return &Scope{Kind: kind, Owner: owner, Locals: map[string]*ast.Declaration{}, Params: map[string]*ast.Param{}, Parent: parent}
}

// BindLocal records a local declaration visible for the rest of this
// scope (and any nested scope), per block-lowering's left-to-right
// statement order.
func (s *Scope) BindLocal(d *ast.Declaration) { s.Locals[d.Name] = d }

// BindParam records a formal parameter.
func (s *Scope) BindParam(p *ast.Param) { s.Params[p.Name] = p }

// Table indexes every definition by fully-qualified name and answers
// identifier lookups by walking a Scope chain out to the root.
type Table struct {
	definitions map[string]ast.Decl // fqname -> Definition
	parents     map[sid.SID]ast.Node
	imports     map[string][]string // namespace path -> imported namespace paths
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{
		definitions: make(map[string]ast.Decl),
		parents:     make(map[sid.SID]ast.Node),
		imports:     make(map[string][]string),
	}
}

func fqName(nsPath, name string) string {
	if nsPath == "" {
		return name
	}
	return nsPath + "." + name
}

// Add indexes every declaration in ns under its fully-qualified name,
// reporting DuplicateDefinition when two definitions collide within the
// same namespace.
func (t *Table) Add(ns *ast.Namespace, collector *diag.Collector) {
	t.imports[ns.Path] = append(t.imports[ns.Path], ns.Imports...)
	for _, decl := range ns.Decls {
		name := declName(decl)
		if name == "" {
			continue
		}
		fq := fqName(ns.Path, name)
		if existing, ok := t.definitions[fq]; ok {
			collector.Add(diag.Diagnostic{
				Phase: diag.PhaseSymbols, Code: diag.DuplicateDefinition,
				Node:    NodeID(decl),
				Message: fmt.Sprintf("%q is already defined at %s", fq, existing.Position()),
			})
			continue
		}
		t.definitions[fq] = decl
		t.registerMembers(fq, decl)
	}
}

func (t *Table) registerMembers(parentFQ string, decl ast.Decl) {
	var members []ast.Decl
	switch d := decl.(type) {
	case *ast.Class:
		members = d.Members
	case *ast.Primitive:
		for _, m := range d.Methods {
			members = append(members, m)
		}
	}
	for _, m := range members {
		t.parents[NodeID(m)] = decl
	}
}

func declName(decl ast.Decl) string {
	switch d := decl.(type) {
	case *ast.Class:
		return d.Name
	case *ast.Interface:
		return d.Name
	case *ast.Primitive:
		return d.Name
	case *ast.Function:
		return d.Name
	case *ast.NativeFunction:
		return d.Name
	}
	return ""
}

// Definition looks up a top-level definition by fully-qualified name.
func (t *Table) Definition(fqName string) (ast.Decl, bool) {
	d, ok := t.definitions[fqName]
	return d, ok
}

// Parent returns the structural parent of a member declaration, or nil
// at the root.
func (t *Table) Parent(n ast.Node) ast.Node {
	return t.parents[NodeID(n)]
}

// Lookup resolves a Var's name by walking the scope chain: local ->
// enclosing function -> enclosing class/interface/primitive -> enclosing
// namespace -> imported namespaces -> root (spec.md §4.1).
func (t *Table) Lookup(name string, scope *Scope, nsPath string, collector *diag.Collector, at ast.Node) (Binding, bool) {
	if name == "self" {
		for s := scope; s != nil; s = s.Parent {
			if s.Kind == "type" {
				return Binding{Kind: BindSelf, Name: name, Decl: s.Owner, Class: declName(s.Owner.(ast.Decl))}, true
			}
		}
	}
	for s := scope; s != nil; s = s.Parent {
		if p, ok := s.Params[name]; ok {
			return Binding{Kind: BindParam, Name: name, Decl: p}, true
		}
		if d, ok := s.Locals[name]; ok {
			return Binding{Kind: BindDeclaration, Name: name, Decl: d}, true
		}
		if s.Kind == "type" {
			if b, ok := t.lookupMember(name, s.Owner); ok {
				return b, true
			}
		}
	}

	// Enclosing namespace, then imports, then root.
	candidates := []string{nsPath}
	candidates = append(candidates, t.imports[nsPath]...)
	var found []Binding
	for _, ns := range candidates {
		fq := fqName(ns, name)
		if d, ok := t.definitions[fq]; ok {
			found = append(found, bindingForDef(fq, d))
		}
	}
	// Also allow bare (unqualified) top-level lookup for single-namespace
	// programs and builtins living at the root.
	if d, ok := t.definitions[name]; ok {
		found = append(found, bindingForDef(name, d))
	}

	switch len(found) {
	case 0:
		collector.Add(diag.Diagnostic{
			Phase: diag.PhaseSymbols, Code: diag.UnresolvedReference,
			Node: NodeID(at), Message: fmt.Sprintf("unresolved reference: %s", name),
		})
		return Binding{}, false
	case 1:
		return found[0], true
	default:
		collector.Add(diag.Diagnostic{
			Phase: diag.PhaseSymbols, Code: diag.AmbiguousReference,
			Node: NodeID(at), Message: fmt.Sprintf("ambiguous reference: %s resolves to %d definitions", name, len(found)),
		})
		return found[0], true
	}
}

func (t *Table) lookupMember(name string, owner ast.Node) (Binding, bool) {
	var members []ast.Decl
	switch d := owner.(type) {
	case *ast.Class:
		members = d.Members
	case *ast.Primitive:
		for _, m := range d.Methods {
			members = append(members, m)
		}
	}
	for _, m := range members {
		switch f := m.(type) {
		case *ast.Field:
			if f.Name == name {
				return Binding{Kind: BindField, Name: name, Decl: f}, true
			}
		case *ast.Method:
			if f.Name == name {
				return Binding{Kind: BindFunction, Name: name, Decl: f}, true
			}
		}
	}
	return Binding{}, false
}

func bindingForDef(fq string, d ast.Decl) Binding {
	switch dd := d.(type) {
	case *ast.Class:
		return Binding{Kind: BindClass, Name: fq, Decl: dd}
	case *ast.Interface:
		return Binding{Kind: BindInterface, Name: fq, Decl: dd}
	case *ast.Primitive:
		return Binding{Kind: BindPrimitive, Name: fq, Decl: dd}
	default:
		return Binding{Kind: BindFunction, Name: fq, Decl: d}
	}
}

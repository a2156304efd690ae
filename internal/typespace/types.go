package typespace

import (
	"fmt"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/diag"
)

// DefKind classifies what a GroundType/Template structurally describes.
type DefKind int

const (
	KindClass DefKind = iota
	KindInterface
	KindPrimitive
)

func (k DefKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindPrimitive:
		return "primitive"
	default:
		return "unknown"
	}
}

// MethodSig is one member of a type's method table.
type MethodSig struct {
	Name       string
	Params     []Ref
	Return     Ref
	HasReturn  bool // false => constructor-shaped (non-primitive) or __init__ (primitive)
	Native     bool
	NativeBody *ast.NativeBlock // the declared native body; nil for the entries seeded by Builtins
	Decl       *ast.Method      // surface declaration, nil for the entries seeded by Builtins
}

// FieldSig is one field of a type's member table.
type FieldSig struct {
	Name string
	Type Ref
}

// GroundType is a fully-applied typespace entry: every formal parameter
// of its originating Template (if any) has been bound to a concrete Ref.
type GroundType struct {
	Self        Ref
	DefKind     DefKind
	Bases       []Ref
	Methods     map[string]*MethodSig  // name -> member index
	Fields      map[string]*FieldSig
	Mappings    map[string]string      // primitive native bodies, keyed by emission target
	Conversions map[string]string      // target type name -> method on Self converting to it
}

// Member looks up a method or field by name among g's own Methods and
// Fields (an emitter-facing name→member index, spec.md §3). Base types
// listed in Bases are not searched.
func (g *GroundType) Member(name string) (method *MethodSig, field *FieldSig, ok bool) {
	if m, ok := g.Methods[name]; ok {
		return m, nil, true
	}
	if f, ok := g.Fields[name]; ok {
		return nil, f, true
	}
	return nil, nil, false
}

// Template is a generic definition's structural description: formal type
// parameters plus an uninstantiated body whose Refs may reference those
// parameter names (spec.md §3 "Typespace node").
type Template struct {
	Params []string
	Body   *GroundType // Body.Self names the generic def, e.g. List<T>
}

// Instantiate substitutes bindings into every Ref in the template body,
// producing the GroundType view a non-generic definition has directly.
func (t *Template) Instantiate(bindings map[string]Ref) *GroundType {
	out := &GroundType{
		Self:        t.Body.Self.Bind(bindings),
		DefKind:     t.Body.DefKind,
		Methods:     make(map[string]*MethodSig, len(t.Body.Methods)),
		Fields:      make(map[string]*FieldSig, len(t.Body.Fields)),
		Mappings:    t.Body.Mappings,
		Conversions: t.Body.Conversions,
	}
	for _, b := range t.Body.Bases {
		out.Bases = append(out.Bases, b.Bind(bindings))
	}
	for name, m := range t.Body.Methods {
		bound := *m
		bound.Params = make([]Ref, len(m.Params))
		for i, p := range m.Params {
			bound.Params[i] = p.Bind(bindings)
		}
		bound.Return = m.Return.Bind(bindings)
		out.Methods[name] = &bound
	}
	for name, f := range t.Body.Fields {
		out.Fields[name] = &FieldSig{Name: f.Name, Type: f.Type.Bind(bindings)}
	}
	return out
}

// BindingsFor zips a Template's formal parameters with the concrete
// arguments of a use-site Ref, positionally.
func (t *Template) BindingsFor(args []Ref) map[string]Ref {
	bindings := make(map[string]Ref, len(t.Params))
	for i, p := range t.Params {
		if i < len(args) {
			bindings[p] = args[i]
		}
	}
	return bindings
}

// Space is the frozen type space: every definition's structural entry,
// keyed by name. Construction happens before checking; the later phases
// only read it.
type Space struct {
	Templates map[string]*Template
	Grounds   map[string]*GroundType
	// NativeTargets lists the emission targets every Primitive must carry
	// a Mappings entry for; missing entries are MissingTypeMapping.
	NativeTargets []string
}

// NewSpace creates an empty, mutable type space.
func NewSpace(nativeTargets []string) *Space {
	return &Space{
		Templates:     make(map[string]*Template),
		Grounds:       make(map[string]*GroundType),
		NativeTargets: nativeTargets,
	}
}

// RefFromTypeRef converts a surface TypeRef into the typespace Ref it
// addresses. Exported for use by the checker and monomorphiser, which
// both need to turn a syntactic type annotation into a Ref without
// resolving it against a Space.
func RefFromTypeRef(t *ast.TypeRef) Ref {
	if t == nil {
		return NewRef("Any")
	}
	params := make([]Ref, len(t.Params))
	for i, p := range t.Params {
		params[i] = RefFromTypeRef(p)
	}
	return Ref{Name: t.Name, Params: params}
}

func refFromTypeRef(t *ast.TypeRef) Ref { return RefFromTypeRef(t) }

// Construct builds the structural entry for every typed declaration in
// ns (spec.md §4.2 construct()); Function/NativeFunction/Field carry no
// independent typespace entry and are skipped here, not an error.
func (sp *Space) Construct(ns *ast.Namespace, collector *diag.Collector) {
	for _, decl := range ns.Decls {
		switch d := decl.(type) {
		case *ast.Class:
			sp.BuildClass(d)
		case *ast.Interface:
			sp.BuildInterface(d)
		case *ast.Primitive:
			sp.BuildPrimitive(d, collector)
		}
	}
}

// BuildClass constructs a Class's (or generic template's) structural
// entry and registers it in the space.
func (sp *Space) BuildClass(d *ast.Class) {
	self := Ref{Name: d.Name, Params: typeParamRefs(d.TypeParams)}
	g := &GroundType{Self: self, DefKind: KindClass, Methods: map[string]*MethodSig{}, Fields: map[string]*FieldSig{}}
	for _, b := range d.Bases {
		g.Bases = append(g.Bases, refFromTypeRef(b))
	}
	for _, m := range d.Members {
		sp.addMember(g, m)
	}
	sp.register(d.Name, d.TypeParams, g)
}

// BuildInterface constructs an Interface's structural entry.
func (sp *Space) BuildInterface(d *ast.Interface) {
	self := Ref{Name: d.Name, Params: typeParamRefs(d.TypeParams)}
	g := &GroundType{Self: self, DefKind: KindInterface, Methods: map[string]*MethodSig{}, Fields: map[string]*FieldSig{}}
	for _, m := range d.Methods {
		g.Methods[m.Name] = &MethodSig{
			Name: m.Name, Params: paramRefs(m.Params), Return: refFromTypeRef(m.ReturnType),
			HasReturn: m.ReturnType != nil, Decl: m,
		}
	}
	sp.register(d.Name, d.TypeParams, g)
}

// BuildPrimitive constructs a Primitive's structural entry, validating
// that every configured native target has a mapping.
func (sp *Space) BuildPrimitive(d *ast.Primitive, collector *diag.Collector) {
	self := Ref{Name: d.Name, Params: typeParamRefs(d.TypeParams)}
	g := &GroundType{
		Self: self, DefKind: KindPrimitive,
		Methods: map[string]*MethodSig{}, Fields: map[string]*FieldSig{},
		Mappings: d.Mappings,
	}
	for _, m := range d.Methods {
		sp.addMember(g, m)
	}
	for _, target := range sp.NativeTargets {
		if _, ok := d.Mappings[target]; !ok {
			collector.Errorf(diag.PhaseTypes, diag.MissingTypeMapping, "",
				"primitive %q has no native mapping for target %q", d.Name, target)
		}
	}
	sp.register(d.Name, d.TypeParams, g)
}

func (sp *Space) addMember(g *GroundType, decl ast.Decl) {
	switch m := decl.(type) {
	case *ast.Field:
		g.Fields[m.Name] = &FieldSig{Name: m.Name, Type: refFromTypeRef(m.Type)}
	case *ast.Method:
		sig := &MethodSig{
			Name: m.Name, Params: paramRefs(m.Params), Return: refFromTypeRef(m.ReturnType),
			HasReturn: m.ReturnType != nil, Decl: m,
		}
		if m.NativeBody != nil {
			sig.Native = true
			sig.NativeBody = m.NativeBody
		}
		g.Methods[m.Name] = sig
	}
}

func (sp *Space) register(name string, typeParams []*ast.TypeParamDecl, g *GroundType) {
	if len(typeParams) == 0 {
		sp.Grounds[name] = g
		return
	}
	params := make([]string, len(typeParams))
	for i, tp := range typeParams {
		params[i] = tp.Name
	}
	sp.Templates[name] = &Template{Params: params, Body: g}
}

func typeParamRefs(tps []*ast.TypeParamDecl) []Ref {
	if len(tps) == 0 {
		return nil
	}
	out := make([]Ref, len(tps))
	for i, tp := range tps {
		out[i] = NewRef(tp.Name)
	}
	return out
}

func paramRefs(params []*ast.Param) []Ref {
	out := make([]Ref, len(params))
	for i, p := range params {
		out[i] = refFromTypeRef(p.Type)
	}
	return out
}

// Resolve looks up the GroundType a Ref addresses, instantiating its
// Template on demand when the Ref carries type arguments.
func (sp *Space) Resolve(r Ref) (*GroundType, error) {
	if len(r.Params) == 0 {
		if g, ok := sp.Grounds[r.Name]; ok {
			return g, nil
		}
		if t, ok := sp.Templates[r.Name]; ok && len(t.Params) == 0 {
			return t.Body, nil
		}
	}
	if t, ok := sp.Templates[r.Name]; ok {
		return t.Instantiate(t.BindingsFor(r.Params)), nil
	}
	return nil, fmt.Errorf("unresolved type %s", r)
}

// View is a cursor into the type space parameterised by the bindings in
// effect for one top-level instantiation being lowered (spec.md §3
// "View", Design Notes "View / bindings").
type View struct {
	Space    *Space
	Bindings map[string]Ref
}

// Apply returns r with the view's current bindings substituted.
func (v View) Apply(r Ref) Ref { return r.Bind(v.Bindings) }

// Node resolves a Ref, with the view's bindings applied, to its
// GroundType.
func (v View) Node(r Ref) (*GroundType, error) {
	return v.Space.Resolve(v.Apply(r))
}

// With returns a new View for a nested instantiation, saving/restoring
// bindings explicitly rather than mutating a shared cursor (Design Notes
// "save/restore on every recursive instantiation switch").
func (v View) With(bindings map[string]Ref) View {
	return View{Space: v.Space, Bindings: bindings}
}

// Package ast defines the surface syntax tree the external parser hands to
// the compiler core. Every node carries its textual source range; the core
// treats that range as opaque except when reporting diagnostics.
package ast

import (
	"fmt"
	"strings"
)

// Pos is a position in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int // byte offset, used for stable node identity
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a source range.
type Span struct {
	Start Pos
	End   Pos
}

// Node is the base interface every surface node implements.
type Node interface {
	Position() Pos
	String() string
	// Kind returns a short tag used for stable-id calculation and dispatch
	// error messages; it does not vary between otherwise-equal nodes.
	Kind() string
}

// Decl is a top-level or member declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a block.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// TypeRef is a syntactic type reference (name plus type arguments), as
// written by the user - not to be confused with typespace.Ref, which is
// the resolved address computed from one of these.
type TypeRef struct {
	Pos    Pos
	Name   string
	Params []*TypeRef
}

func (t *TypeRef) Position() Pos { return t.Pos }
func (t *TypeRef) Kind() string  { return "TypeRef" }
func (t *TypeRef) String() string {
	if len(t.Params) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ","))
}

// Param is a formal parameter of a function/method/constructor.
type Param struct {
	Pos  Pos
	Name string
	Type *TypeRef
}

// TypeParamDecl is a formal type parameter of a generic definition.
type TypeParamDecl struct {
	Pos  Pos
	Name string
}

// Package is the root of one compiled unit: a sequence of namespaces.
type Package struct {
	PosField   Pos
	Name       string
	Namespaces []*Namespace
}

func (p *Package) Position() Pos { return p.PosField }
func (p *Package) Kind() string  { return "Package" }
func (p *Package) String() string {
	return fmt.Sprintf("package %s", p.Name)
}

// Namespace groups declarations under a dotted path (e.g. "math.geometry").
type Namespace struct {
	PosField Pos
	Path     string
	Imports  []string
	Decls    []Decl
}

func (n *Namespace) Position() Pos { return n.PosField }
func (n *Namespace) Kind() string  { return "Namespace" }
func (n *Namespace) String() string {
	return fmt.Sprintf("namespace %s { %d decls }", n.Path, len(n.Decls))
}
func (n *Namespace) declNode() {}

// Class is a surface class declaration.
type Class struct {
	PosField   Pos
	Name       string
	TypeParams []*TypeParamDecl
	Bases      []*TypeRef
	Members    []Decl // Field, Method, Constructor-shaped Method
}

func (c *Class) Position() Pos { return c.PosField }
func (c *Class) Kind() string  { return "Class" }
func (c *Class) String() string {
	return fmt.Sprintf("class %s { %d members }", c.Name, len(c.Members))
}
func (c *Class) declNode() {}

// Interface is a surface interface declaration: pure method signatures.
type Interface struct {
	PosField   Pos
	Name       string
	TypeParams []*TypeParamDecl
	Methods    []*Method // body must be nil
}

func (i *Interface) Position() Pos { return i.PosField }
func (i *Interface) Kind() string  { return "Interface" }
func (i *Interface) String() string {
	return fmt.Sprintf("interface %s { %d methods }", i.Name, len(i.Methods))
}
func (i *Interface) declNode() {}

// Primitive is a built-in type whose methods are realised by per-target
// native template bodies rather than surface code.
type Primitive struct {
	PosField   Pos
	Name       string
	TypeParams []*TypeParamDecl
	Methods    []*Method
	// Mappings carries the native template body for this primitive, keyed
	// by emission target (e.g. "java", "python"). Required for every
	// target the compiler is configured to support; a missing entry is a
	// MissingTypeMapping diagnostic.
	Mappings map[string]string
}

func (p *Primitive) Position() Pos { return p.PosField }
func (p *Primitive) Kind() string  { return "Primitive" }
func (p *Primitive) String() string {
	return fmt.Sprintf("primitive %s", p.Name)
}
func (p *Primitive) declNode() {}

// Function is a free (non-member) function.
type Function struct {
	PosField   Pos
	Name       string
	TypeParams []*TypeParamDecl
	Params     []*Param
	ReturnType *TypeRef // nil means inferred/void
	Body       *Block
}

func (f *Function) Position() Pos { return f.PosField }
func (f *Function) Kind() string  { return "Function" }
func (f *Function) String() string {
	return fmt.Sprintf("function %s(%d params)", f.Name, len(f.Params))
}
func (f *Function) declNode() {}

// NativeFunction is a free function whose body is an opaque native
// template rather than surface statements.
type NativeFunction struct {
	PosField   Pos
	Name       string
	TypeParams []*TypeParamDecl
	Params     []*Param
	ReturnType *TypeRef
	Body       *NativeBlock
}

func (f *NativeFunction) Position() Pos { return f.PosField }
func (f *NativeFunction) Kind() string  { return "NativeFunction" }
func (f *NativeFunction) String() string {
	return fmt.Sprintf("native function %s", f.Name)
}
func (f *NativeFunction) declNode() {}

// Method is a member function of a Class, Interface, or Primitive.
// Interface methods carry Body == nil and NativeBody == nil.
type Method struct {
	PosField   Pos
	Name       string
	TypeParams []*TypeParamDecl
	Params     []*Param
	ReturnType *TypeRef // nil => constructor-shaped (non-primitive) or __init__ (primitive)
	Body       *Block
	NativeBody *NativeBlock // set instead of Body on a Primitive method
}

func (m *Method) Position() Pos { return m.PosField }
func (m *Method) Kind() string  { return "Method" }
func (m *Method) String() string {
	return fmt.Sprintf("method %s(%d params)", m.Name, len(m.Params))
}
func (m *Method) declNode() {}

// Field is a member variable of a Class or Primitive.
type Field struct {
	PosField Pos
	Name     string
	Type     *TypeRef
}

func (f *Field) Position() Pos { return f.PosField }
func (f *Field) Kind() string  { return "Field" }
func (f *Field) String() string {
	return fmt.Sprintf("field %s: %s", f.Name, f.Type)
}
func (f *Field) declNode() {}

// NativeBlock is an opaque, per-target templated source fragment.
// Body is pass-through text: "{name}" placeholders refer to in-scope
// variables, "{{"/"}}" escape literal braces.
type NativeBlock struct {
	PosField Pos
	Target   string
	Imports  []string
	Body     string
}

func (n *NativeBlock) Position() Pos { return n.PosField }
func (n *NativeBlock) Kind() string  { return "NativeBlock" }
func (n *NativeBlock) String() string {
	return fmt.Sprintf("native(%s)", n.Target)
}

// --- Statements ---

type Block struct {
	PosField Pos
	Stmts    []Stmt
}

func (b *Block) Position() Pos  { return b.PosField }
func (b *Block) Kind() string   { return "Block" }
func (b *Block) String() string { return fmt.Sprintf("{ %d stmts }", len(b.Stmts)) }
func (b *Block) stmtNode()      {}

type If struct {
	PosField Pos
	Cond     Expr
	Then     *Block
	Else     *Block // nil when no else-branch was written
}

func (i *If) Position() Pos  { return i.PosField }
func (i *If) Kind() string   { return "If" }
func (i *If) String() string { return "if (...) {...}" }
func (i *If) stmtNode()      {}

type While struct {
	PosField Pos
	Cond     Expr
	Body     *Block
}

func (w *While) Position() Pos  { return w.PosField }
func (w *While) Kind() string   { return "While" }
func (w *While) String() string { return "while (...) {...}" }
func (w *While) stmtNode()      {}

type Case struct {
	Pos    Pos
	Values []Expr // matched values for this case (comma-separated labels)
	Body   *Block
}

type Switch struct {
	PosField Pos
	Expr     Expr
	Cases    []*Case
}

func (s *Switch) Position() Pos  { return s.PosField }
func (s *Switch) Kind() string   { return "Switch" }
func (s *Switch) String() string { return "switch (...) {...}" }
func (s *Switch) stmtNode()      {}

// Declaration is a local variable declaration statement: `T name = expr;`.
type Declaration struct {
	PosField Pos
	Name     string
	Type     *TypeRef
	Value    Expr // nil when uninitialized
}

func (d *Declaration) Position() Pos  { return d.PosField }
func (d *Declaration) Kind() string   { return "Local" }
func (d *Declaration) String() string { return fmt.Sprintf("local %s", d.Name) }
func (d *Declaration) stmtNode()      {}
func (d *Declaration) exprNode()      {} // a Declaration may also be wrapped as Local(decl)

type Assign struct {
	PosField Pos
	LHS      Expr
	RHS      Expr
}

func (a *Assign) Position() Pos  { return a.PosField }
func (a *Assign) Kind() string   { return "Assign" }
func (a *Assign) String() string { return fmt.Sprintf("%s = %s", a.LHS, a.RHS) }
func (a *Assign) stmtNode()      {}

type ExprStmt struct {
	PosField Pos
	X        Expr
}

func (e *ExprStmt) Position() Pos  { return e.PosField }
func (e *ExprStmt) Kind() string   { return "ExprStmt" }
func (e *ExprStmt) String() string { return e.X.String() }
func (e *ExprStmt) stmtNode()      {}

type Return struct {
	PosField Pos
	Value    Expr // nil for bare `return;`
}

func (r *Return) Position() Pos  { return r.PosField }
func (r *Return) Kind() string   { return "Return" }
func (r *Return) String() string { return "return ..." }
func (r *Return) stmtNode()      {}

type Break struct{ PosField Pos }

func (b *Break) Position() Pos  { return b.PosField }
func (b *Break) Kind() string   { return "Break" }
func (b *Break) String() string { return "break" }
func (b *Break) stmtNode()      {}

type Continue struct{ PosField Pos }

func (c *Continue) Position() Pos  { return c.PosField }
func (c *Continue) Kind() string   { return "Continue" }
func (c *Continue) String() string { return "continue" }
func (c *Continue) stmtNode()      {}

// --- Expressions ---

type Call struct {
	PosField Pos
	Callee   Expr // Var or Attr
	Args     []Expr
}

func (c *Call) Position() Pos  { return c.PosField }
func (c *Call) Kind() string   { return "Call" }
func (c *Call) String() string { return fmt.Sprintf("%s(%d args)", c.Callee, len(c.Args)) }
func (c *Call) exprNode()      {}

type Attr struct {
	PosField Pos
	X        Expr
	Name     string
}

func (a *Attr) Position() Pos  { return a.PosField }
func (a *Attr) Kind() string   { return "Attr" }
func (a *Attr) String() string { return fmt.Sprintf("%s.%s", a.X, a.Name) }
func (a *Attr) exprNode()      {}

type Var struct {
	PosField Pos
	Name     string
}

func (v *Var) Position() Pos  { return v.PosField }
func (v *Var) Kind() string   { return "Var" }
func (v *Var) String() string { return v.Name }
func (v *Var) exprNode()      {}

type Number struct {
	PosField Pos
	Text     string
}

func (n *Number) Position() Pos  { return n.PosField }
func (n *Number) Kind() string   { return "Number" }
func (n *Number) String() string { return n.Text }
func (n *Number) exprNode()      {}

// IsFloat reports whether the literal text denotes a floating-point number.
func (n *Number) IsFloat() bool {
	return strings.ContainsAny(n.Text, ".eE") && !strings.HasPrefix(n.Text, "0x")
}

type String struct {
	PosField Pos
	Text     string // raw source text, including escapes, excluding quotes
}

func (s *String) Position() Pos  { return s.PosField }
func (s *String) Kind() string   { return "String" }
func (s *String) String() string { return fmt.Sprintf("%q", s.Text) }
func (s *String) exprNode()      {}

type Bool struct {
	PosField Pos
	Text     string // "true" or "false"
}

func (b *Bool) Position() Pos  { return b.PosField }
func (b *Bool) Kind() string   { return "Bool" }
func (b *Bool) String() string { return b.Text }
func (b *Bool) exprNode()      {}

type List struct {
	PosField Pos
	Elements []Expr
	ElemType *TypeRef // declared/inferred element type, used to pick List<T>
}

func (l *List) Position() Pos  { return l.PosField }
func (l *List) Kind() string   { return "List" }
func (l *List) String() string { return fmt.Sprintf("[%d elements]", len(l.Elements)) }
func (l *List) exprNode()      {}

type MapEntry struct {
	Key   Expr
	Value Expr
}

type Map struct {
	PosField  Pos
	Entries   []MapEntry
	KeyType   *TypeRef
	ValueType *TypeRef
}

func (m *Map) Position() Pos  { return m.PosField }
func (m *Map) Kind() string   { return "Map" }
func (m *Map) String() string { return fmt.Sprintf("{%d entries}", len(m.Entries)) }
func (m *Map) exprNode()      {}

type Null struct {
	PosField Pos
	Type     *TypeRef
}

func (n *Null) Position() Pos  { return n.PosField }
func (n *Null) Kind() string   { return "Null" }
func (n *Null) String() string { return "null" }
func (n *Null) exprNode()      {}

// TypeExpr wraps a TypeRef in expression position, e.g. `int` used as a
// constructor-call target or a `Type` literal passed to generic code.
type TypeExpr struct {
	PosField Pos
	Ref      *TypeRef
}

func (t *TypeExpr) Position() Pos  { return t.PosField }
func (t *TypeExpr) Kind() string   { return "Type" }
func (t *TypeExpr) String() string { return t.Ref.String() }
func (t *TypeExpr) exprNode()      {}

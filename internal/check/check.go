// Package check implements the type checker (spec.md §4.2): it walks
// expressions and statements against a frozen typespace.Space, verifies
// operand shapes, and populates a Conversions map whenever an implicit
// coercion must be inserted before lowering.
package check

import (
	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/diag"
	"github.com/quarkc/compiler/internal/sid"
	"github.com/quarkc/compiler/internal/symbols"
	"github.com/quarkc/compiler/internal/typespace"
)

// Conversions maps a checked expression's stable node identity to the
// name of the coercion method the type space named for it (spec.md §3
// "Conversions"; Design Notes "keyed by expression identity, not value
// equality").
type Conversions map[sid.SID]string

// Checker verifies a namespace's declarations against a frozen Space,
// reporting TypeMismatch/MissingMember/ArityMismatch diagnostics and
// recording conversions as it goes.
type Checker struct {
	Symbols     *symbols.Table
	Space       *typespace.Space
	Collector   *diag.Collector
	Conversions Conversions
}

// NewChecker returns a checker over an already-populated symbol table
// and type space.
func NewChecker(table *symbols.Table, space *typespace.Space, collector *diag.Collector) *Checker {
	return &Checker{Symbols: table, Space: space, Collector: collector, Conversions: make(Conversions)}
}

// Check walks every typed declaration in ns.
func (c *Checker) Check(ns *ast.Namespace) {
	for _, decl := range ns.Decls {
		switch d := decl.(type) {
		case *ast.Function:
			c.checkFunction(d, ns.Path)
		case *ast.Class:
			c.checkMembers(d, d.Members, ns.Path)
		case *ast.Primitive:
			members := make([]ast.Decl, len(d.Methods))
			for i, m := range d.Methods {
				members[i] = m
			}
			c.checkMembers(d, members, ns.Path)
		}
	}
}

func (c *Checker) checkFunction(fn *ast.Function, nsPath string) {
	if fn.Body == nil {
		return
	}
	scope := symbols.NewScope("function", fn, nil)
	for _, p := range fn.Params {
		scope.BindParam(p)
	}
	var want *typespace.Ref
	if fn.ReturnType != nil {
		r := typespace.RefFromTypeRef(fn.ReturnType)
		want = &r
	}
	c.checkBlock(fn.Body, scope, nsPath, want)
}

func (c *Checker) checkMembers(owner ast.Decl, members []ast.Decl, nsPath string) {
	classScope := symbols.NewScope("type", owner, nil)
	for _, m := range members {
		method, ok := m.(*ast.Method)
		if !ok || method.Body == nil {
			continue
		}
		methodScope := symbols.NewScope("function", method, classScope)
		for _, p := range method.Params {
			methodScope.BindParam(p)
		}
		var want *typespace.Ref
		if method.ReturnType != nil {
			r := typespace.RefFromTypeRef(method.ReturnType)
			want = &r
		}
		c.checkBlock(method.Body, methodScope, nsPath, want)
	}
}

func (c *Checker) checkBlock(b *ast.Block, scope *symbols.Scope, nsPath string, wantReturn *typespace.Ref) {
	local := symbols.NewScope("local", nil, scope)
	for _, stmt := range b.Stmts {
		c.checkStmt(stmt, local, nsPath, wantReturn)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt, scope *symbols.Scope, nsPath string, wantReturn *typespace.Ref) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		if s.Value != nil {
			got := c.infer(s.Value, scope, nsPath)
			if s.Type != nil {
				c.expect(s.Value, got, typespace.RefFromTypeRef(s.Type))
			}
		}
		scope.BindLocal(s)
	case *ast.Assign:
		lhs := c.infer(s.LHS, scope, nsPath)
		rhs := c.infer(s.RHS, scope, nsPath)
		c.expect(s.RHS, rhs, lhs)
	case *ast.ExprStmt:
		c.infer(s.X, scope, nsPath)
	case *ast.Return:
		if s.Value != nil {
			got := c.infer(s.Value, scope, nsPath)
			if wantReturn != nil {
				c.expect(s.Value, got, *wantReturn)
			}
		}
	case *ast.If:
		c.infer(s.Cond, scope, nsPath)
		c.checkBlock(s.Then, scope, nsPath, wantReturn)
		if s.Else != nil {
			c.checkBlock(s.Else, scope, nsPath, wantReturn)
		}
	case *ast.While:
		c.infer(s.Cond, scope, nsPath)
		c.checkBlock(s.Body, scope, nsPath, wantReturn)
	case *ast.Switch:
		c.infer(s.Expr, scope, nsPath)
		for _, cs := range s.Cases {
			for _, v := range cs.Values {
				c.infer(v, scope, nsPath)
			}
			c.checkBlock(cs.Body, scope, nsPath, wantReturn)
		}
	case *ast.Break, *ast.Continue:
		// no operand to check
	}
}

// infer resolves e's expression type, recursing as needed, reporting
// diagnostics on shape violations but never aborting — a failed
// sub-expression degrades to quark.Any so the walk can keep finding
// further errors in the same pass.
func (c *Checker) infer(e ast.Expr, scope *symbols.Scope, nsPath string) typespace.Ref {
	switch x := e.(type) {
	case *ast.Number:
		if x.IsFloat() {
			return typespace.NewRef("quark.float")
		}
		return typespace.NewRef("quark.int")
	case *ast.String:
		return typespace.NewRef("quark.String")
	case *ast.Bool:
		return typespace.NewRef("bool")
	case *ast.Null:
		return typespace.RefFromTypeRef(x.Type)
	case *ast.TypeExpr:
		return typespace.RefFromTypeRef(x.Ref)
	case *ast.Var:
		return c.inferVar(x, scope, nsPath)
	case *ast.Attr:
		return c.inferAttr(x, scope, nsPath)
	case *ast.Call:
		return c.inferCall(x, scope, nsPath)
	case *ast.List:
		elem := typespace.NewRef("quark.Any")
		if x.ElemType != nil {
			elem = typespace.RefFromTypeRef(x.ElemType)
		} else if len(x.Elements) > 0 {
			elem = c.infer(x.Elements[0], scope, nsPath)
		}
		for _, el := range x.Elements {
			got := c.infer(el, scope, nsPath)
			c.expect(el, got, elem)
		}
		return typespace.Ref{Name: "quark.List", Params: []typespace.Ref{elem}}
	case *ast.Map:
		key := typespace.NewRef("quark.Any")
		val := typespace.NewRef("quark.Any")
		if x.KeyType != nil {
			key = typespace.RefFromTypeRef(x.KeyType)
		}
		if x.ValueType != nil {
			val = typespace.RefFromTypeRef(x.ValueType)
		}
		for _, ent := range x.Entries {
			gk := c.infer(ent.Key, scope, nsPath)
			c.expect(ent.Key, gk, key)
			gv := c.infer(ent.Value, scope, nsPath)
			c.expect(ent.Value, gv, val)
		}
		return typespace.Ref{Name: "quark.Map", Params: []typespace.Ref{key, val}}
	case *ast.Declaration:
		// a Declaration reached in expression position (`Local(decl)`)
		return typespace.RefFromTypeRef(x.Type)
	default:
		diag.Invariant("check.infer", "unhandled expression shape %T", e)
		return typespace.Ref{}
	}
}

func (c *Checker) inferVar(v *ast.Var, scope *symbols.Scope, nsPath string) typespace.Ref {
	b, ok := c.Symbols.Lookup(v.Name, scope, nsPath, c.Collector, v)
	if !ok {
		return typespace.NewRef("quark.Any")
	}
	switch b.Kind {
	case symbols.BindParam:
		return typespace.RefFromTypeRef(b.Decl.(*ast.Param).Type)
	case symbols.BindDeclaration:
		return typespace.RefFromTypeRef(b.Decl.(*ast.Declaration).Type)
	case symbols.BindField:
		return typespace.RefFromTypeRef(b.Decl.(*ast.Field).Type)
	case symbols.BindSelf:
		return typespace.NewRef(b.Class)
	default:
		return typespace.NewRef(b.Name)
	}
}

func (c *Checker) inferAttr(a *ast.Attr, scope *symbols.Scope, nsPath string) typespace.Ref {
	xRef := c.infer(a.X, scope, nsPath)
	ground, err := c.Space.Resolve(xRef)
	if err != nil {
		return typespace.NewRef("quark.Any")
	}
	method, field, ok := ground.Member(a.Name)
	if !ok {
		c.Collector.Errorf(diag.PhaseCheck, diag.MissingMember, symbols.NodeID(a),
			"%s has no member %q", xRef, a.Name)
		return typespace.NewRef("quark.Any")
	}
	if field != nil {
		return field.Type
	}
	return method.Return
}

func (c *Checker) inferCall(call *ast.Call, scope *symbols.Scope, nsPath string) typespace.Ref {
	switch callee := call.Callee.(type) {
	case *ast.Var:
		if callee.Name == "assertEqual" || callee.Name == "assertNotEqual" {
			c.checkArity(call, 2, callee.Name)
			for _, a := range call.Args {
				c.infer(a, scope, nsPath)
			}
			return typespace.NewRef("bool")
		}
		b, ok := c.Symbols.Lookup(callee.Name, scope, nsPath, c.Collector, callee)
		if !ok {
			return typespace.NewRef("quark.Any")
		}
		switch b.Kind {
		case symbols.BindClass, symbols.BindPrimitive:
			return c.inferConstructorCall(call, typespace.NewRef(b.Name), scope, nsPath)
		default:
			return c.inferFreeFunctionCall(call, b, scope, nsPath)
		}
	case *ast.TypeExpr:
		return c.inferConstructorCall(call, typespace.RefFromTypeRef(callee.Ref), scope, nsPath)
	case *ast.Attr:
		xRef := c.infer(callee.X, scope, nsPath)
		ground, err := c.Space.Resolve(xRef)
		if err != nil {
			return typespace.NewRef("quark.Any")
		}
		method, _, ok := ground.Member(callee.Name)
		if !ok {
			c.Collector.Errorf(diag.PhaseCheck, diag.MissingMember, symbols.NodeID(callee),
				"%s has no member %q", xRef, callee.Name)
			return typespace.NewRef("quark.Any")
		}
		c.checkArity(call, len(method.Params), callee.Name)
		for i, a := range call.Args {
			got := c.infer(a, scope, nsPath)
			if i < len(method.Params) {
				c.expect(a, got, method.Params[i])
			}
		}
		if method.HasReturn {
			return method.Return
		}
		return xRef
	default:
		for _, a := range call.Args {
			c.infer(a, scope, nsPath)
		}
		return typespace.NewRef("quark.Any")
	}
}

func (c *Checker) inferFreeFunctionCall(call *ast.Call, b symbols.Binding, scope *symbols.Scope, nsPath string) typespace.Ref {
	var params []*ast.Param
	var ret *ast.TypeRef
	switch d := b.Decl.(type) {
	case *ast.Function:
		params, ret = d.Params, d.ReturnType
	case *ast.NativeFunction:
		params, ret = d.Params, d.ReturnType
	default:
		for _, a := range call.Args {
			c.infer(a, scope, nsPath)
		}
		return typespace.NewRef("quark.Any")
	}
	c.checkArity(call, len(params), b.Name)
	for i, a := range call.Args {
		got := c.infer(a, scope, nsPath)
		if i < len(params) {
			c.expect(a, got, typespace.RefFromTypeRef(params[i].Type))
		}
	}
	if ret == nil {
		return typespace.NewRef("void")
	}
	return typespace.RefFromTypeRef(ret)
}

func (c *Checker) inferConstructorCall(call *ast.Call, ref typespace.Ref, scope *symbols.Scope, nsPath string) typespace.Ref {
	ground, err := c.Space.Resolve(ref)
	if err != nil {
		for _, a := range call.Args {
			c.infer(a, scope, nsPath)
		}
		return ref
	}
	ctor, _, ok := ground.Member("__init__")
	if ok {
		c.checkArity(call, len(ctor.Params), "__init__")
		for i, a := range call.Args {
			got := c.infer(a, scope, nsPath)
			if i < len(ctor.Params) {
				c.expect(a, got, ctor.Params[i])
			}
		}
	} else {
		for _, a := range call.Args {
			c.infer(a, scope, nsPath)
		}
	}
	return ref
}

func (c *Checker) checkArity(call *ast.Call, want int, name string) {
	if len(call.Args) != want {
		c.Collector.Errorf(diag.PhaseCheck, diag.ArityMismatch, symbols.NodeID(call),
			"%s expects %d argument(s), got %d", name, want, len(call.Args))
	}
}

// expect reconciles an expression's inferred type against the type
// expected in its context, inserting a conversion when the inferred
// type's Conversions table names one for the expected type and
// reporting TypeMismatch otherwise. quark.Any accepts
// anything; null literals are polymorphic and accept any reference
// type (spec.md §4.2 "null is polymorphic").
func (c *Checker) expect(e ast.Expr, got, want typespace.Ref) {
	if got.Equals(want) || want.Name == "quark.Any" {
		return
	}
	if _, isNull := e.(*ast.Null); isNull {
		return
	}
	gotGround, err := c.Space.Resolve(got)
	if err == nil && gotGround.Conversions != nil {
		if method, ok := gotGround.Conversions[want.Name]; ok {
			c.Conversions[symbols.NodeID(e)] = method
			return
		}
	}
	c.Collector.Errorf(diag.PhaseCheck, diag.TypeMismatch, symbols.NodeID(e),
		"expected %s, got %s", want, got)
}

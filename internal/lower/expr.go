package lower

import (
	"strconv"
	"strings"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/ir"
	"github.com/quarkc/compiler/internal/mangle"
	"github.com/quarkc/compiler/internal/symbols"
	"github.com/quarkc/compiler/internal/typespace"
)

// lowerExpr lowers one expression and applies convert() to the result,
// per spec.md §4.4.5. expected carries the statically-expected type at
// this position when known (an argument's parameter type, a field's
// declared type, ...); it is nil where the surrounding shape imposes no
// expectation, and is only consulted for the Boxed decision in lowerVar.
func (l *Lowerer) lowerExpr(e ast.Expr, scope *symbols.Scope, nsPath string, expected *typespace.Ref) ir.Node {
	return l.convert(e, l.lowerExprRaw(e, scope, nsPath, expected))
}

func (l *Lowerer) lowerExprRaw(e ast.Expr, scope *symbols.Scope, nsPath string, expected *typespace.Ref) ir.Node {
	switch x := e.(type) {
	case *ast.Number:
		if x.IsFloat() {
			f, _ := strconv.ParseFloat(x.Text, 64)
			return ir.FloatLit{Value: f}
		}
		n, _ := strconv.ParseInt(x.Text, 0, 64)
		return ir.IntLit{Value: n}
	case *ast.String:
		return ir.StringLit{Value: unescapeString(x.Text)}
	case *ast.Bool:
		return ir.BoolLit{Value: x.Text == "true"}
	case *ast.Null:
		return &ir.Null{Type: l.irType(typespace.RefFromTypeRef(x.Type))}
	case *ast.TypeExpr:
		return l.irType(typespace.RefFromTypeRef(x.Ref))
	case *ast.Var:
		return l.lowerVar(x, scope, nsPath, expected)
	case *ast.Attr:
		return l.lowerAttr(x, scope, nsPath)
	case *ast.Call:
		return l.lowerCall(x, scope, nsPath)
	case *ast.List:
		return l.lowerList(x, scope, nsPath)
	case *ast.Map:
		return l.lowerMap(x, scope, nsPath)
	case *ast.Declaration:
		var v ir.Node
		if x.Value != nil {
			v = l.lowerExpr(x.Value, scope, nsPath, nil)
		}
		return &ir.Local{Name: x.Name, Type: l.irType(typespace.RefFromTypeRef(x.Type)), Value: v}
	}
	return &ir.Null{Type: ir.Any{}}
}

// unescapeString resolves \n \r \t \" \\ and \xHH escapes (spec.md
// §4.4.2 "String literal").
func unescapeString(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			b.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'x':
			if i+2 < len(raw) {
				if v, err := strconv.ParseUint(raw[i+1:i+3], 16, 8); err == nil {
					b.WriteByte(byte(v))
					i += 2
					continue
				}
			}
			b.WriteByte('x')
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

func (l *Lowerer) lowerList(x *ast.List, scope *symbols.Scope, nsPath string) ir.Node {
	elem := typespace.NewRef("quark.Any")
	if x.ElemType != nil {
		elem = typespace.RefFromTypeRef(x.ElemType)
	} else if len(x.Elements) > 0 {
		elem = l.typeOf(x.Elements[0], scope, nsPath)
	}
	listRef := typespace.Ref{Name: "quark.List", Params: []typespace.Ref{elem}}
	temp := l.fresh()
	initTarget := ir.Name{Package: l.PackageAddr, Qualified: listRef.String() + ".__init__", Mangled: mangle.Member(listRef, "__init__")}
	l.add(&ir.Local{Name: temp, Type: l.irType(listRef), Value: &ir.Invoke{Target: initTarget}})
	appendTarget := ir.Name{Package: l.PackageAddr, Qualified: listRef.String() + ".append", Mangled: mangle.Member(listRef, "append")}
	for _, el := range x.Elements {
		compiled := l.lowerExpr(el, scope, nsPath, &elem)
		l.add(&ir.Evaluate{X: &ir.Invoke{Target: appendTarget, Args: []ir.Node{&ir.Var{Name: temp}, compiled}}})
	}
	return &ir.Var{Name: temp}
}

func (l *Lowerer) lowerMap(x *ast.Map, scope *symbols.Scope, nsPath string) ir.Node {
	key := typespace.NewRef("quark.Any")
	val := typespace.NewRef("quark.Any")
	if x.KeyType != nil {
		key = typespace.RefFromTypeRef(x.KeyType)
	}
	if x.ValueType != nil {
		val = typespace.RefFromTypeRef(x.ValueType)
	}
	mapRef := typespace.Ref{Name: "quark.Map", Params: []typespace.Ref{key, val}}
	temp := l.fresh()
	initTarget := ir.Name{Package: l.PackageAddr, Qualified: mapRef.String() + ".__init__", Mangled: mangle.Member(mapRef, "__init__")}
	l.add(&ir.Local{Name: temp, Type: l.irType(mapRef), Value: &ir.Invoke{Target: initTarget}})
	setTarget := ir.Name{Package: l.PackageAddr, Qualified: mapRef.String() + ".__set__", Mangled: mangle.Member(mapRef, "__set__")}
	for _, ent := range x.Entries {
		k := l.lowerExpr(ent.Key, scope, nsPath, &key)
		v := l.lowerExpr(ent.Value, scope, nsPath, &val)
		l.add(&ir.Evaluate{X: &ir.Invoke{Target: setTarget, Args: []ir.Node{&ir.Var{Name: temp}, k, v}}})
	}
	return &ir.Var{Name: temp}
}

// lowerVar dispatches on the binding kind resolved for v.Name, per
// spec.md §4.4.4.
func (l *Lowerer) lowerVar(v *ast.Var, scope *symbols.Scope, nsPath string, expected *typespace.Ref) ir.Node {
	b, ok := l.Symbols.Lookup(v.Name, scope, nsPath, l.Collector, v)
	if !ok {
		return &ir.Var{Name: v.Name}
	}
	switch b.Kind {
	case symbols.BindParam:
		return &ir.Var{Name: v.Name}
	case symbols.BindDeclaration:
		d := b.Decl.(*ast.Declaration)
		if d.Value == nil && d.Type != nil {
			return &ir.Null{Type: l.irType(typespace.RefFromTypeRef(d.Type))}
		}
		return &ir.Var{Name: v.Name}
	case symbols.BindField:
		fieldRef := typespace.RefFromTypeRef(b.Decl.(*ast.Field).Type)
		if expected != nil && l.isPrimitiveRef(fieldRef) && !expected.Equals(fieldRef) && referenceContext(*expected) {
			return &ir.Boxed{Type: l.irType(fieldRef)}
		}
		return &ir.Get{Receiver: l.selfReceiver(), Field: v.Name}
	case symbols.BindSelf:
		return l.selfReceiver()
	case symbols.BindFunction:
		fq := b.Name
		return &ir.Ref{MangledName: l.mangledSymbol(fq, nil)}
	default:
		return &ir.Ref{MangledName: mangle.Name(typespace.NewRef(b.Name))}
	}
}

// referenceContext reports whether a statically-expected type demands a
// boxed (reference) form rather than a flat native value: quark.Any or
// quark.Scalar. No other type counts as a reference context.
func referenceContext(want typespace.Ref) bool {
	return want.Name == "quark.Any" || want.Name == "quark.Scalar"
}

func (l *Lowerer) lowerAttr(a *ast.Attr, scope *symbols.Scope, nsPath string) ir.Node {
	receiver := l.lowerExpr(a.X, scope, nsPath, nil)
	return &ir.Get{Receiver: receiver, Field: a.Name}
}

// convert wraps compiled in the conversion Invoke the checker recorded
// for the original expression, per spec.md §4.4.5. A no-op when compiled
// is already a type descriptor, an assertion node, or a Ref.
func (l *Lowerer) convert(original ast.Expr, compiled ir.Node) ir.Node {
	if isTypeDescriptor(compiled) {
		return compiled
	}
	switch compiled.(type) {
	case *ir.Ref, *ir.AssertEqual, *ir.AssertNotEqual:
		return compiled
	}
	method, ok := l.Conversions[symbols.NodeID(original)]
	if !ok {
		return compiled
	}
	target := ir.Name{Package: l.PackageAddr, Qualified: method, Mangled: method}
	return &ir.Invoke{Target: target, Args: []ir.Node{compiled}}
}

func isTypeDescriptor(n ir.Node) bool {
	switch n.(type) {
	case ir.Int, ir.Float, ir.Bool, ir.String, ir.Void, ir.Any, ir.Scalar, *ir.Primitive, *ir.ClassType, *ir.InterfaceType:
		return true
	}
	return false
}

package lower

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/diag"
	"github.com/quarkc/compiler/internal/ir"
	"github.com/quarkc/compiler/internal/mangle"
	"github.com/quarkc/compiler/internal/symbols"
	"github.com/quarkc/compiler/internal/typespace"
)

func (l *Lowerer) lowerParams(params []*ast.Param, bindings map[string]typespace.Ref) []ir.Param {
	out := make([]ir.Param, len(params))
	for i, p := range params {
		ref := typespace.RefFromTypeRef(p.Type).Bind(bindings)
		out[i] = ir.Param{Name: p.Name, Type: l.irType(ref)}
	}
	return out
}

func (l *Lowerer) lowerFunction(fn *ast.Function, fq string, inst typespace.Instantiation, nsPath string) ir.Node {
	l.beginDefinition()
	name := ir.Name{Package: l.PackageAddr, Qualified: fq, Mangled: l.mangledSymbol(fq, nil)}
	params := l.lowerParams(fn.Params, inst.Bindings)

	scope := symbols.NewScope("function", fn, nil)
	for _, p := range fn.Params {
		scope.BindParam(p)
	}
	body := l.lowerBlock(fn.Body, scope, nsPath)

	if l.asserts > 0 {
		return &ir.Check{Name: name, Params: params, Body: body.Stmts}
	}
	return &ir.Function{Name: name, Params: params, Body: body.Stmts}
}

func (l *Lowerer) lowerNativeFunction(fn *ast.NativeFunction, fq string, inst typespace.Instantiation) ir.Node {
	name := ir.Name{Package: l.PackageAddr, Qualified: fq, Mangled: l.mangledSymbol(fq, nil)}
	params := l.lowerParams(fn.Params, inst.Bindings)
	return &ir.NativeFunction{Name: name, Params: params, Native: l.lowerNativeBlock(fn.Body)}
}

func (l *Lowerer) lowerNativeBlock(n *ast.NativeBlock) *ir.TemplateText {
	if n == nil {
		return nil
	}
	return &ir.TemplateText{Target: n.Target, Imports: append([]string(nil), n.Imports...), Body: escapeNativeBody(n.Body)}
}

// escapeNativeBody doubles literal braces while leaving well-formed
// "{name}" placeholders intact, per spec.md §6 "Native interpolation".
func escapeNativeBody(body string) string {
	out := make([]byte, 0, len(body)+8)
	i := 0
	for i < len(body) {
		c := body[i]
		if c == '{' {
			if j := closingPlaceholder(body, i); j > 0 {
				out = append(out, body[i:j]...)
				i = j
				continue
			}
			out = append(out, '{', '{')
			i++
			continue
		}
		if c == '}' {
			out = append(out, '}', '}')
			i++
			continue
		}
		out = append(out, c)
		i++
	}
	return string(out)
}

// closingPlaceholder returns the index just past a "{identifier}" run
// starting at i, or 0 if body[i:] does not open one.
func closingPlaceholder(body string, i int) int {
	j := i + 1
	if j >= len(body) {
		return 0
	}
	start := j
	for j < len(body) && isIdentByte(body[j]) {
		j++
	}
	if j == start || j >= len(body) || body[j] != '}' {
		return 0
	}
	return j + 1
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (l *Lowerer) lowerClass(c *ast.Class, inst typespace.Instantiation, nsPath string) ir.Node {
	l.beginDefinition()
	name :=ir.Name{Package: l.PackageAddr, Qualified: c.Name, Mangled: l.mangledSymbol(c.Name, inst.Bindings)}
	selfRef := typespace.Ref{Name: c.Name}
	for _, tp := range c.TypeParams {
		selfRef.Params = append(selfRef.Params, typespace.NewRef(tp.Name).Bind(inst.Bindings))
	}

	prevSelf, prevPrim := l.selfRef, l.selfIsPrimitive
	l.selfRef, l.selfIsPrimitive = selfRef, false
	defer func() { l.selfRef, l.selfIsPrimitive = prevSelf, prevPrim }()

	var bases []ir.Name
	for _, b := range c.Bases {
		bases = append(bases, l.typeName(typespace.RefFromTypeRef(b).Bind(inst.Bindings)))
	}

	var members []ir.Node
	classHasAssert := false
	var ctorCount int
	for _, m := range c.Members {
		switch mm := m.(type) {
		case *ast.Field:
			members = append(members, &ir.Field{Name: mm.Name, Type: l.irType(typespace.RefFromTypeRef(mm.Type).Bind(inst.Bindings))})
		case *ast.Method:
			node, isCtor := l.lowerClassMethod(mm, selfRef, inst.Bindings, nsPath)
			members = append(members, node)
			if isCtor {
				ctorCount++
			}
			if l.asserts > 0 {
				classHasAssert = true
			}
		}
	}

	if classHasAssert {
		if ctorCount > 0 {
			l.Collector.Errorf(diag.PhaseLower, diag.TestClassWithCtor, symbols.NodeID(c),
				"class %q contains assertions and may not declare a constructor", c.Name)
		}
		return &ir.TestClass{Name: name, Members: members}
	}
	return &ir.Class{Name: name, Bases: bases, Members: members}
}

// lowerClassMethod lowers one non-primitive method per spec.md §4.4.1:
// a declared return type emits Method, none emits Constructor (named by
// mangling the parent's ref). Resets the per-method assertion count so
// the caller can test l.asserts after return to decide TestMethod.
func (l *Lowerer) lowerClassMethod(m *ast.Method, selfRef typespace.Ref, bindings map[string]typespace.Ref, nsPath string) (ir.Node, bool) {
	l.asserts = 0
	scope := symbols.NewScope("function", m, nil)
	for _, p := range m.Params {
		scope.BindParam(p)
	}
	body := l.lowerBlockInto(m.Body, scope, nsPath)

	params := l.lowerParams(m.Params, bindings)
	isCtor := m.ReturnType == nil
	if isCtor {
		name := ir.Name{Package: l.PackageAddr, Qualified: selfRef.String() + ".__init__", Mangled: mangle.Member(selfRef, "__init__")}
		if l.asserts > 0 {
			return &ir.TestMethod{Name: name, MethodName: "__init__", Params: params, Body: body}, true
		}
		return &ir.Constructor{Name: name, Params: params, Body: body}, true
	}
	name := ir.Name{Package: l.PackageAddr, Qualified: selfRef.String() + "." + m.Name, Mangled: mangle.Member(selfRef, m.Name)}
	if l.asserts > 0 {
		return &ir.TestMethod{Name: name, MethodName: m.Name, Params: params, Body: body}, false
	}
	return &ir.Method{Name: name, MethodName: m.Name, Params: params, Body: body}, false
}

func (l *Lowerer) lowerInterface(i *ast.Interface, inst typespace.Instantiation) ir.Node {
	name := ir.Name{Package: l.PackageAddr, Qualified: i.Name, Mangled: l.mangledSymbol(i.Name, inst.Bindings)}
	msgs := make([]ir.Message, len(i.Methods))
	for idx, m := range i.Methods {
		msgs[idx] = ir.Message{
			Name:       m.Name,
			ReturnType: l.irType(typespace.RefFromTypeRef(m.ReturnType).Bind(inst.Bindings)),
			Params:     l.lowerParams(m.Params, inst.Bindings),
		}
	}
	return &ir.Interface{Name: name, Messages: msgs}
}

// lowerPrimitiveDef lowers every native-bodied method of a Primitive into
// a free NativeFunction mangled as "<parent>_<method>", per spec.md
// §4.4.1: a Primitive itself is not a top-level IR node, only its
// methods are.
func (l *Lowerer) lowerPrimitiveDef(p *ast.Primitive, inst typespace.Instantiation) []ir.Node {
	selfRef := typespace.Ref{Name: p.Name}
	for _, tp := range p.TypeParams {
		selfRef.Params = append(selfRef.Params, typespace.NewRef(tp.Name).Bind(inst.Bindings))
	}
	var out []ir.Node
	for _, m := range p.Methods {
		if m.NativeBody == nil {
			continue
		}
		params := l.lowerParams(m.Params, inst.Bindings)
		if m.Name != "__init__" {
			self := ir.Param{Name: "self", Type: l.irType(selfRef)}
			params = append([]ir.Param{self}, params...)
		}
		name := ir.Name{Package: l.PackageAddr, Qualified: selfRef.String() + "." + m.Name, Mangled: mangle.Member(selfRef, m.Name)}
		out = append(out, &ir.NativeFunction{Name: name, Params: params, Native: l.lowerNativeBlock(m.NativeBody)})
	}
	return out
}

// builtinOperators maps a primitive method name to the infix operator its
// synthesized NativeFunction body applies, for the binary operators every
// built-in ground type (quark.int, quark.float, quark.String, bool)
// carries in its Methods table (typespace.Builtins).
var builtinOperators = map[string]string{
	"__add__": "+",
	"__sub__": "-",
	"__mul__": "*",
	"__div__": "/",
	"__lt__":  "<",
	"__gt__":  ">",
	"__eq__":  "==",
	"__or__":  "||",
	"__and__": "&&",
}

// lowerBuiltinGroundDefs synthesizes the free NativeFunctions a built-in
// ground primitive (quark.int, bool, quark.List<T>, ...) never gets from
// ns.Decls, since typespace.Builtins seeds its Methods directly into the
// type space rather than from a parsed *ast.Primitive. Naming follows the
// same mangle.Member("<parent>_<method>") convention as lowerPrimitiveDef,
// so call sites that build an Invoke target for a primitive method resolve
// to exactly these definitions.
func (l *Lowerer) lowerBuiltinGroundDefs(ground *typespace.GroundType) []ir.Node {
	names := make([]string, 0, len(ground.Methods))
	for name := range ground.Methods {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []ir.Node
	for _, name := range names {
		m := ground.Methods[name]
		argNames := make([]string, len(m.Params))
		params := make([]ir.Param, len(m.Params))
		for i, p := range m.Params {
			argNames[i] = fmt.Sprintf("arg%d", i)
			params[i] = ir.Param{Name: argNames[i], Type: l.irType(p)}
		}
		if name != "__init__" {
			self := ir.Param{Name: "self", Type: l.irType(ground.Self)}
			params = append([]ir.Param{self}, params...)
		}

		var body string
		switch {
		case name == "__init__":
			body = "new"
		case len(m.Params) == 1 && builtinOperators[name] != "":
			body = fmt.Sprintf("{self} %s {arg0}", builtinOperators[name])
		default:
			placeholders := make([]string, len(argNames))
			for i, a := range argNames {
				placeholders[i] = "{" + a + "}"
			}
			body = fmt.Sprintf("{self}.%s(%s)", name, strings.Join(placeholders, ", "))
		}

		defName := ir.Name{Package: l.PackageAddr, Qualified: ground.Self.String() + "." + name, Mangled: mangle.Member(ground.Self, name)}
		out = append(out, &ir.NativeFunction{Name: defName, Params: params, Native: &ir.TemplateText{Body: body}})
	}
	return out
}

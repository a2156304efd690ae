// Package mono implements instantiation discovery (spec.md §4.2
// instantiations(), §4.4.6 "Monomorphisation"): a work-list fixpoint over
// every (definition, bindings) pair reachable from top-level use, so a
// generic definition is emitted once per unique type-argument tuple.
package mono

import (
	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/typespace"
)

// Discover returns every top-level instantiation reachable from ns: one
// entry per non-generic definition, plus one entry per unique
// (generic definition, bindings) pair named by a type annotation
// somewhere in ns. Instantiation equality is structural on the Ref
// (typespace.Instantiation.Key), so repeated uses of the same concrete
// arguments collapse to a single entry regardless of source order.
func Discover(sp *typespace.Space, ns *ast.Namespace) []typespace.Instantiation {
	var out []typespace.Instantiation
	seen := map[string]bool{}
	add := func(inst typespace.Instantiation) {
		k := inst.Key()
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, inst)
	}

	for _, decl := range ns.Decls {
		name := topLevelName(decl)
		if name == "" {
			continue
		}
		if _, isTemplate := sp.Templates[name]; isTemplate {
			continue // only instantiated via concrete use sites, below
		}
		add(typespace.Instantiation{Def: typespace.NewRef(name)})
	}

	queue := collectTypeRefs(ns)
	for i := 0; i < len(queue); i++ {
		r := queue[i]
		tpl, ok := sp.Templates[r.Name]
		if !ok || len(r.Params) == 0 {
			// Not a generic use; still, a ref naming a built-in ground
			// primitive (quark.int, bool, ...) has no ns.Decls entry of
			// its own, so this is the only place its operator methods
			// are ever discovered as top-level definitions.
			if g, isGround := sp.Grounds[r.Name]; isGround && g.DefKind == typespace.KindPrimitive {
				add(typespace.Instantiation{Def: typespace.NewRef(r.Name)})
			}
			continue
		}
		bindings := tpl.BindingsFor(r.Params)
		add(typespace.Instantiation{Def: typespace.NewRef(r.Name), Bindings: bindings})

		// Fixpoint: an instantiated template's own fields/methods may
		// themselves reference further generics once bindings are
		// substituted in (e.g. a user Box<T> holding a List<T> field).
		ground := tpl.Instantiate(bindings)
		for _, f := range ground.Fields {
			queue = append(queue, f.Type)
		}
		for _, m := range ground.Methods {
			queue = append(queue, m.Return)
			queue = append(queue, m.Params...)
		}
	}
	return out
}

func topLevelName(decl ast.Decl) string {
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

// collectTypeRefs walks every declaration in ns gathering each syntactic
// type annotation as a typespace.Ref: declaration/parameter/field/return
// types, list/map element types, and explicit type literals. This is the
// set of concrete type arguments a program can possibly trigger a
// generic instantiation with.
func collectTypeRefs(ns *ast.Namespace) []typespace.Ref {
	var refs []typespace.Ref
	pushType := func(t *ast.TypeRef) {
		if t == nil {
			return
		}
		refs = append(refs, typespace.RefFromTypeRef(t))
	}
	var walkExpr func(e ast.Expr)
	var walkStmt func(s ast.Stmt)
	var walkBlock func(b *ast.Block)

	walkExpr = func(e ast.Expr) {
		switch x := e.(type) {
		case *ast.Null:
			pushType(x.Type)
		case *ast.TypeExpr:
			pushType(x.Ref)
		case *ast.List:
			pushType(x.ElemType)
			for _, el := range x.Elements {
				walkExpr(el)
			}
		case *ast.Map:
			pushType(x.KeyType)
			pushType(x.ValueType)
			for _, ent := range x.Entries {
				walkExpr(ent.Key)
				walkExpr(ent.Value)
			}
		case *ast.Call:
			walkExpr(x.Callee)
			for _, a := range x.Args {
				walkExpr(a)
			}
		case *ast.Attr:
			walkExpr(x.X)
		case *ast.Declaration:
			pushType(x.Type)
			if x.Value != nil {
				walkExpr(x.Value)
			}
		}
	}
	walkBlock = func(b *ast.Block) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			walkStmt(s)
		}
	}
	walkStmt = func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.Declaration:
			pushType(st.Type)
			if st.Value != nil {
				walkExpr(st.Value)
			}
		case *ast.Assign:
			walkExpr(st.LHS)
			walkExpr(st.RHS)
		case *ast.ExprStmt:
			walkExpr(st.X)
		case *ast.Return:
			if st.Value != nil {
				walkExpr(st.Value)
			}
		case *ast.If:
			walkExpr(st.Cond)
			walkBlock(st.Then)
			walkBlock(st.Else)
		case *ast.While:
			walkExpr(st.Cond)
			walkBlock(st.Body)
		case *ast.Switch:
			walkExpr(st.Expr)
			for _, c := range st.Cases {
				for _, v := range c.Values {
					walkExpr(v)
				}
				walkBlock(c.Body)
			}
		}
	}

	walkParams := func(params []*ast.Param) {
		for _, p := range params {
			pushType(p.Type)
		}
	}

	for _, decl := range ns.Decls {
		switch d := decl.(type) {
		case *ast.Function:
			pushType(d.ReturnType)
			walkParams(d.Params)
			walkBlock(d.Body)
		case *ast.NativeFunction:
			pushType(d.ReturnType)
			walkParams(d.Params)
		case *ast.Class:
			for _, b := range d.Bases {
				pushType(b)
			}
			for _, m := range d.Members {
				walkClassMember(m, pushType, walkParams, walkBlock)
			}
		case *ast.Primitive:
			for _, m := range d.Methods {
				pushType(m.ReturnType)
				walkParams(m.Params)
				walkBlock(m.Body)
			}
		case *ast.Interface:
			for _, m := range d.Methods {
				pushType(m.ReturnType)
				walkParams(m.Params)
			}
		}
	}
	return refs
}

func walkClassMember(decl ast.Decl, pushType func(*ast.TypeRef), walkParams func([]*ast.Param), walkBlock func(*ast.Block)) {
	switch m := decl.(type) {
	case *ast.Field:
		pushType(m.Type)
	case *ast.Method:
		pushType(m.ReturnType)
		walkParams(m.Params)
		walkBlock(m.Body)
	}
}

package symbols

import (
	"testing"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/diag"
)

func TestAddDetectsDuplicateDefinition(t *testing.T) {
	c1 := &ast.Class{PosField: ast.Pos{File: "a.src", Line: 1}, Name: "Foo"}
	c2 := &ast.Class{PosField: ast.Pos{File: "a.src", Line: 5}, Name: "Foo"}
	ns := &ast.Namespace{Path: "math", Decls: []ast.Decl{c1, c2}}

	table := NewTable()
	collector := diag.NewCollector()
	table.Add(ns, collector)

	if collector.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", collector.Len())
	}
	if collector.Entries()[0].Code != diag.DuplicateDefinition {
		t.Errorf("expected DuplicateDefinition, got %s", collector.Entries()[0].Code)
	}
}

func TestLookupResolvesParamLocalAndTopLevel(t *testing.T) {
	fn := &ast.Function{PosField: ast.Pos{File: "a.src"}, Name: "f"}
	ns := &ast.Namespace{Path: "math", Decls: []ast.Decl{fn}}
	table := NewTable()
	collector := diag.NewCollector()
	table.Add(ns, collector)

	fnScope := NewScope("function", fn, nil)
	param := &ast.Param{Name: "n", Type: &ast.TypeRef{Name: "int"}}
	fnScope.BindParam(param)

	b, ok := table.Lookup("n", fnScope, "math", collector, fn)
	if !ok || b.Kind != BindParam {
		t.Fatalf("expected BindParam, got %+v ok=%v", b, ok)
	}

	b2, ok := table.Lookup("f", fnScope, "math", collector, fn)
	if !ok || b2.Kind != BindFunction {
		t.Fatalf("expected BindFunction for top-level lookup, got %+v ok=%v", b2, ok)
	}

	_, ok = table.Lookup("nonexistent", fnScope, "math", collector, fn)
	if ok {
		t.Fatal("expected lookup of undefined name to fail")
	}
	found := false
	for _, d := range collector.Entries() {
		if d.Code == diag.UnresolvedReference {
			found = true
		}
	}
	if !found {
		t.Error("expected UnresolvedReference diagnostic")
	}
}

func TestLookupResolvesSelfInsideClass(t *testing.T) {
	field := &ast.Field{Name: "x", Type: &ast.TypeRef{Name: "int"}}
	class := &ast.Class{PosField: ast.Pos{File: "a.src"}, Name: "Point", Members: []ast.Decl{field}}
	ns := &ast.Namespace{Path: "geo", Decls: []ast.Decl{class}}
	table := NewTable()
	collector := diag.NewCollector()
	table.Add(ns, collector)

	classScope := NewScope("type", class, nil)
	b, ok := table.Lookup("self", classScope, "geo", collector, class)
	if !ok || b.Kind != BindSelf || b.Class != "Point" {
		t.Fatalf("expected BindSelf(Point), got %+v ok=%v", b, ok)
	}

	fb, ok := table.Lookup("x", classScope, "geo", collector, class)
	if !ok || fb.Kind != BindField {
		t.Fatalf("expected BindField, got %+v ok=%v", fb, ok)
	}
}

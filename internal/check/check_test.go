package check

import (
	"testing"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/diag"
	"github.com/quarkc/compiler/internal/symbols"
	"github.com/quarkc/compiler/internal/typespace"
)

func newChecker() (*Checker, *symbols.Table, *typespace.Space, *diag.Collector) {
	sp := typespace.Builtins([]string{"go"})
	table := symbols.NewTable()
	collector := diag.NewCollector()
	return NewChecker(table, sp, collector), table, sp, collector
}

func TestInferLiterals(t *testing.T) {
	c, _, _, _ := newChecker()
	scope := symbols.NewScope("local", nil, nil)

	if got := c.infer(&ast.Number{Text: "3"}, scope, ""); got.Name != "quark.int" {
		t.Errorf("int literal inferred as %s", got)
	}
	if got := c.infer(&ast.Number{Text: "3.5"}, scope, ""); got.Name != "quark.float" {
		t.Errorf("float literal inferred as %s", got)
	}
	if got := c.infer(&ast.String{Text: "hi"}, scope, ""); got.Name != "quark.String" {
		t.Errorf("string literal inferred as %s", got)
	}
	if got := c.infer(&ast.Bool{Text: "true"}, scope, ""); got.Name != "bool" {
		t.Errorf("bool literal inferred as %s", got)
	}
}

func TestConversionInsertedForIntToFloatArgument(t *testing.T) {
	c, table, _, collector := newChecker()
	fn := &ast.Function{
		Name: "scale",
		Params: []*ast.Param{
			{Name: "x", Type: &ast.TypeRef{Name: "quark.float"}},
		},
		ReturnType: nil,
	}
	ns := &ast.Namespace{Path: "math", Decls: []ast.Decl{fn}}
	table.Add(ns, collector)

	arg := &ast.Number{Text: "2"}
	call := &ast.Call{Callee: &ast.Var{Name: "scale"}, Args: []ast.Expr{arg}}

	scope := symbols.NewScope("local", nil, nil)
	c.infer(call, scope, "math")

	if collector.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %v", collector.Entries())
	}
	id := symbols.NodeID(arg)
	if method, ok := c.Conversions[id]; !ok || method != "toFloat" {
		t.Errorf("expected conversion toFloat recorded for int argument, got %q ok=%v", method, ok)
	}
}

func TestArityMismatchReported(t *testing.T) {
	c, table, _, collector := newChecker()
	fn := &ast.Function{Name: "noop", Params: nil}
	ns := &ast.Namespace{Path: "math", Decls: []ast.Decl{fn}}
	table.Add(ns, collector)

	call := &ast.Call{Callee: &ast.Var{Name: "noop"}, Args: []ast.Expr{&ast.Number{Text: "1"}}}
	scope := symbols.NewScope("local", nil, nil)
	c.infer(call, scope, "math")

	found := false
	for _, d := range collector.Entries() {
		if d.Code == diag.ArityMismatch {
			found = true
		}
	}
	if !found {
		t.Error("expected ArityMismatch diagnostic")
	}
}

func TestMissingMemberReported(t *testing.T) {
	c, _, _, collector := newChecker()
	scope := symbols.NewScope("local", nil, nil)
	attr := &ast.Attr{X: &ast.Number{Text: "1"}, Name: "bogus"}
	c.infer(attr, scope, "math")

	found := false
	for _, d := range collector.Entries() {
		if d.Code == diag.MissingMember {
			found = true
		}
	}
	if !found {
		t.Error("expected MissingMember diagnostic")
	}
}

func TestTypeMismatchReportedWhenNoConversionExists(t *testing.T) {
	c, _, _, collector := newChecker()
	scope := symbols.NewScope("local", nil, nil)
	c.expect(&ast.String{Text: "x"}, typespace.NewRef("quark.String"), typespace.NewRef("quark.int"))
	_ = scope

	found := false
	for _, d := range collector.Entries() {
		if d.Code == diag.TypeMismatch {
			found = true
		}
	}
	if !found {
		t.Error("expected TypeMismatch diagnostic")
	}
}

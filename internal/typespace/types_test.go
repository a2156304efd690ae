package typespace

import (
	"testing"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/diag"
)

func TestBuildClassRegistersGroundType(t *testing.T) {
	class := &ast.Class{
		Name: "Point",
		Members: []ast.Decl{
			&ast.Field{Name: "x", Type: &ast.TypeRef{Name: "quark.int"}},
		},
	}
	sp := NewSpace(nil)
	sp.BuildClass(class)

	g, ok := sp.Grounds["Point"]
	if !ok {
		t.Fatal("expected Point registered as a ground type")
	}
	if _, field, ok := g.Member("x"); !ok || field.Type.Name != "quark.int" {
		t.Errorf("expected field x: quark.int, got %+v ok=%v", field, ok)
	}
}

func TestBuildClassWithTypeParamsRegistersTemplate(t *testing.T) {
	class := &ast.Class{
		Name:       "Box",
		TypeParams: []*ast.TypeParamDecl{{Name: "T"}},
		Members: []ast.Decl{
			&ast.Field{Name: "value", Type: &ast.TypeRef{Name: "T"}},
		},
	}
	sp := NewSpace(nil)
	sp.BuildClass(class)

	tpl, ok := sp.Templates["Box"]
	if !ok {
		t.Fatal("expected Box registered as a template")
	}
	ground := tpl.Instantiate(map[string]Ref{"T": NewRef("quark.int")})
	if _, field, ok := ground.Member("value"); !ok || field.Type.Name != "quark.int" {
		t.Errorf("expected instantiated field value: quark.int, got %+v ok=%v", field, ok)
	}
}

func TestBuildPrimitiveReportsMissingTypeMapping(t *testing.T) {
	prim := &ast.Primitive{Name: "quark.int", Mappings: map[string]string{"java": "int"}}
	sp := NewSpace([]string{"java", "go"})
	collector := diag.NewCollector()
	sp.BuildPrimitive(prim, collector)

	if collector.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", collector.Len())
	}
	if collector.Entries()[0].Code != diag.MissingTypeMapping {
		t.Errorf("expected MissingTypeMapping, got %s", collector.Entries()[0].Code)
	}
}

func TestResolveInstantiatesTemplate(t *testing.T) {
	sp := Builtins([]string{"go"})
	g, err := sp.Resolve(Ref{Name: "quark.List", Params: []Ref{NewRef("quark.int")}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !g.Self.Equals(Ref{Name: "quark.List", Params: []Ref{NewRef("quark.int")}}) {
		t.Errorf("unexpected Self: %s", g.Self)
	}
	m, _, ok := g.Member("append")
	if !ok || len(m.Params) != 1 || !m.Params[0].Equals(NewRef("quark.int")) {
		t.Errorf("expected append(quark.int), got %+v ok=%v", m, ok)
	}
}

func TestViewAppliesBindings(t *testing.T) {
	sp := Builtins([]string{"go"})
	v := View{Space: sp, Bindings: map[string]Ref{"T": NewRef("quark.String")}}
	g, err := v.Node(Ref{Name: "quark.List", Params: []Ref{NewRef("T")}})
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if !g.Self.Equals(Ref{Name: "quark.List", Params: []Ref{NewRef("quark.String")}}) {
		t.Errorf("unexpected Self: %s", g.Self)
	}
}

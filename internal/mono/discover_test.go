package mono

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/typespace"
)

func TestDiscoverIncludesEveryNonGenericTopLevelDef(t *testing.T) {
	fn := &ast.Function{Name: "fib", Params: []*ast.Param{{Name: "n", Type: &ast.TypeRef{Name: "quark.int"}}}}
	class := &ast.Class{Name: "Point"}
	ns := &ast.Namespace{Path: "math", Decls: []ast.Decl{fn, class}}
	sp := typespace.Builtins(nil)
	sp.BuildClass(class)

	out := Discover(sp, ns)
	names := map[string]bool{}
	for _, inst := range out {
		names[inst.Def.Name] = true
	}
	if !names["fib"] || !names["Point"] {
		t.Errorf("expected fib and Point in discovered instantiations, got %v", out)
	}
}

func TestDiscoverCollapsesRepeatedGenericUse(t *testing.T) {
	declA := &ast.Declaration{Name: "a", Type: &ast.TypeRef{Name: "quark.List", Params: []*ast.TypeRef{{Name: "quark.int"}}}}
	declB := &ast.Declaration{Name: "b", Type: &ast.TypeRef{Name: "quark.List", Params: []*ast.TypeRef{{Name: "quark.int"}}}}
	declC := &ast.Declaration{Name: "c", Type: &ast.TypeRef{Name: "quark.List", Params: []*ast.TypeRef{{Name: "quark.String"}}}}
	fn := &ast.Function{
		Name: "use",
		Body: &ast.Block{Stmts: []ast.Stmt{declA, declB, declC}},
	}
	ns := &ast.Namespace{Path: "math", Decls: []ast.Decl{fn}}
	sp := typespace.Builtins(nil)

	out := Discover(sp, ns)
	var listInstantiations int
	for _, inst := range out {
		if inst.Def.Name == "quark.List" {
			listInstantiations++
		}
	}
	if listInstantiations != 2 {
		t.Errorf("expected 2 distinct List instantiations (int, String), got %d: %v", listInstantiations, out)
	}
}

func TestDiscoverReorderingDoesNotChangeSet(t *testing.T) {
	mk := func(order []int) *ast.Namespace {
		types := []*ast.TypeRef{
			{Name: "quark.List", Params: []*ast.TypeRef{{Name: "quark.int"}}},
			{Name: "quark.List", Params: []*ast.TypeRef{{Name: "quark.String"}}},
		}
		var stmts []ast.Stmt
		for _, i := range order {
			stmts = append(stmts, &ast.Declaration{Name: "x", Type: types[i]})
		}
		fn := &ast.Function{Name: "use", Body: &ast.Block{Stmts: stmts}}
		return &ast.Namespace{Path: "math", Decls: []ast.Decl{fn}}
	}
	sp := typespace.Builtins(nil)
	a := Discover(sp, mk([]int{0, 1}))
	b := Discover(sp, mk([]int{1, 0}))
	keyset := func(insts []typespace.Instantiation) map[string]bool {
		m := map[string]bool{}
		for _, i := range insts {
			m[i.Key()] = true
		}
		return m
	}
	ka, kb := keyset(a), keyset(b)
	if len(ka) != len(kb) {
		t.Fatalf("reordering changed instantiation count: %v vs %v", ka, kb)
	}
	for k := range ka {
		if !kb[k] {
			t.Errorf("instantiation %s present in one order but not the other", k)
		}
	}
}

// TestDiscoverIsStructurallyDeterministic rebuilds an equivalent namespace
// twice and asserts the two instantiation sets are structurally identical
// Ref-for-Ref, not just equal by Key() — the completeness invariant that
// monomorphisation must not depend on which *ast.Namespace value was walked.
func TestDiscoverIsStructurallyDeterministic(t *testing.T) {
	build := func() *ast.Namespace {
		fn := &ast.Function{
			Name: "use",
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.Declaration{Name: "xs", Type: &ast.TypeRef{
					Name:   "quark.List",
					Params: []*ast.TypeRef{{Name: "quark.int"}},
				}},
			}},
		}
		return &ast.Namespace{Path: "math", Decls: []ast.Decl{fn}}
	}
	sp := typespace.Builtins(nil)

	byKey := func(insts []typespace.Instantiation) []typespace.Instantiation {
		sort.Slice(insts, func(i, j int) bool { return insts[i].Key() < insts[j].Key() })
		return insts
	}

	a := byKey(Discover(sp, build()))
	b := byKey(Discover(sp, build()))

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Discover is not structurally deterministic (-first +second):\n%s", diff)
	}
}

package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/diag"
	"github.com/quarkc/compiler/internal/ir"
)

func tref(name string) *ast.TypeRef { return &ast.TypeRef{Name: name} }

func fibNamespace() *ast.Namespace {
	fn := &ast.Function{
		Name:       "fib",
		Params:     []*ast.Param{{Name: "n", Type: tref("quark.int")}},
		ReturnType: tref("quark.int"),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.Return{Value: &ast.Var{Name: "n"}},
		}},
	}
	return &ast.Namespace{Path: "math", Decls: []ast.Decl{fn}}
}

func TestCompileProducesReportWithRunID(t *testing.T) {
	c := New(Options{NativeTargets: nil})
	report, err := c.Compile(fibNamespace())
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID.String())
	// fib plus one NativeFunction per quark.int builtin method (8).
	require.Len(t, report.Package.Defs, 9)

	fn, ok := report.Package.Defs[0].(*ir.Function)
	require.True(t, ok, "expected *ir.Function, got %T", report.Package.Defs[0])
	require.Equal(t, "math_fib", fn.Name.Mangled)
}

func TestCompileTwiceProducesIndependentRunIDs(t *testing.T) {
	c1 := New(Options{})
	c2 := New(Options{})
	r1, err := c1.Compile(fibNamespace())
	require.NoError(t, err)
	r2, err := c2.Compile(fibNamespace())
	require.NoError(t, err)
	require.NotEqual(t, r1.RunID, r2.RunID)
}

func TestCompileHaltsAtSymbolBarrier(t *testing.T) {
	dup := &ast.Namespace{Path: "math", Decls: []ast.Decl{
		&ast.Function{Name: "fib", Body: &ast.Block{}},
		&ast.Function{Name: "fib", Body: &ast.Block{}},
	}}
	c := New(Options{})
	report, err := c.Compile(dup)
	require.Error(t, err)
	require.Nil(t, report)

	var failure *diag.Failure
	require.ErrorAs(t, err, &failure)
	require.NotEmpty(t, failure.Diagnostics)
	require.Equal(t, diag.DuplicateDefinition, failure.Diagnostics[0].Code)
}

func TestLoadManifestMergesSearchPathsAndTargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quark.yaml")
	contents := "packageRoots:\n  - ./vendor/quark\nnativeTargets:\n  - go\n  - py\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Equal(t, []string{"./vendor/quark"}, m.PackageRoots)
	require.Equal(t, []string{"go", "py"}, m.NativeTargets)

	opts := Options{SearchPaths: []string{"./local"}}.Merge(m)
	require.Equal(t, []string{"./local", "./vendor/quark"}, opts.SearchPaths)
	require.Equal(t, []string{"go", "py"}, opts.NativeTargets)
}

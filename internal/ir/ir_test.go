package ir

import "testing"

func TestRefString(t *testing.T) {
	r := &Ref{MangledName: "List_int", Params: []*Ref{{MangledName: "int"}}}
	if got, want := r.String(), "List_int[int]"; got != want {
		t.Errorf("Ref.String() = %q, want %q", got, want)
	}
}

func TestNameString(t *testing.T) {
	n := Name{Package: "math", Qualified: "math.fib", Mangled: "math_fib"}
	if got, want := n.String(), "math:math.fib"; got != want {
		t.Errorf("Name.String() = %q, want %q", got, want)
	}
}

func TestNodeKindsDistinct(t *testing.T) {
	nodes := []Node{
		&Package{Name: "p"},
		&Class{Name: Name{Qualified: "C"}},
		&TestClass{Name: Name{Qualified: "T"}},
		&Interface{Name: Name{Qualified: "I"}},
		&Function{Name: Name{Qualified: "f"}},
		&Check{Name: Name{Qualified: "c"}},
		&NativeFunction{Name: Name{Qualified: "n"}},
		&Method{Name: Name{Qualified: "m"}},
		&TestMethod{Name: Name{Qualified: "tm"}},
		&Constructor{Name: Name{Qualified: "ctor"}},
		&Field{Name: "x"},
		&Block{},
		&If{},
		&While{},
		&Local{Name: "x"},
		&Set{Field: "y"},
		&Assign{Var: "z"},
		&Evaluate{},
		&Return{},
		BreakStmt{},
		ContinueStmt{},
		&Send{Method: "m"},
		&Invoke{Target: Name{Qualified: "f"}},
		&Construct{Type: Name{Qualified: "C"}},
		&Get{Field: "x"},
		&Var{Name: "x"},
		This{},
		&And{},
		&Or{},
		IntLit{Value: 1},
		FloatLit{Value: 1.5},
		StringLit{Value: "s"},
		BoolLit{Value: true},
		&Null{},
		&Boxed{},
		&AssertEqual{},
		&AssertNotEqual{},
		&TemplateText{},
		&TemplateContext{},
		&NativeBlock{},
		&NativeImport{},
		&NativeType{},
		&Primitive{Name: "int"},
		&InterfaceType{},
		&ClassType{},
		Int{}, Float{}, Bool{}, String{}, Void{}, Any{}, Scalar{},
	}
	for _, n := range nodes {
		if n.String() == "" {
			t.Errorf("%T.String() is empty", n)
		}
	}
}

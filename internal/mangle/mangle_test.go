package mangle

import (
	"testing"

	"github.com/quarkc/compiler/internal/typespace"
)

func TestWellKnownShortNames(t *testing.T) {
	cases := map[string]string{
		"quark.int":    "int",
		"quark.String": "String",
		"quark.Any":    "Any",
		"quark.Scalar": "Scalar",
		"quark.List":   "List",
		"quark.Map":    "Map",
	}
	for name, want := range cases {
		if got := Name(typespace.NewRef(name)); got != want {
			t.Errorf("Name(%s) = %q, want %q", name, got, want)
		}
	}
}

func TestGenericInstantiationNaming(t *testing.T) {
	listInt := typespace.Ref{Name: "quark.List", Params: []typespace.Ref{typespace.NewRef("quark.int")}}
	if got, want := Name(listInt), "List_int"; got != want {
		t.Errorf("Name(List<int>) = %q, want %q", got, want)
	}
}

func TestInjectivity(t *testing.T) {
	a := typespace.Ref{Name: "Box", Params: []typespace.Ref{typespace.NewRef("quark.int")}}
	b := typespace.Ref{Name: "Box", Params: []typespace.Ref{typespace.NewRef("quark.String")}}
	if Name(a) == Name(b) {
		t.Errorf("distinct refs mangled identically: %s", Name(a))
	}
}

func TestDeterministic(t *testing.T) {
	r := typespace.Ref{Name: "math.geometry.Point", Params: nil}
	if Name(r) != Name(r) {
		t.Fatal("mangling is not deterministic")
	}
}

func TestMemberAndNative(t *testing.T) {
	parent := typespace.NewRef("quark.int")
	if got, want := Member(parent, "__add__"), "int___add__"; got != want {
		t.Errorf("Member() = %q, want %q", got, want)
	}
	if got, want := Native("math.fib", "java"), "math.fib::java"; got != want {
		t.Errorf("Native() = %q, want %q", got, want)
	}
}

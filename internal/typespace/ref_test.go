package typespace

import "testing"

func TestRefEqualsStructural(t *testing.T) {
	a := Ref{Name: "quark.List", Params: []Ref{NewRef("quark.int")}}
	b := Ref{Name: "quark.List", Params: []Ref{NewRef("quark.int")}}
	c := Ref{Name: "quark.List", Params: []Ref{NewRef("quark.String")}}
	if !a.Equals(b) {
		t.Error("structurally-equal refs should be equal")
	}
	if a.Equals(c) {
		t.Error("refs with different params should differ")
	}
}

func TestRefBindSubstitutesTypeParam(t *testing.T) {
	listT := Ref{Name: "quark.List", Params: []Ref{NewRef("T")}}
	bound := listT.Bind(map[string]Ref{"T": NewRef("quark.int")})
	want := Ref{Name: "quark.List", Params: []Ref{NewRef("quark.int")}}
	if !bound.Equals(want) {
		t.Errorf("Bind() = %s, want %s", bound, want)
	}
}

func TestRefBindWholesaleReplacesBareTypeParam(t *testing.T) {
	r := NewRef("T")
	bound := r.Bind(map[string]Ref{"T": NewRef("quark.String")})
	if !bound.Equals(NewRef("quark.String")) {
		t.Errorf("Bind() = %s, want quark.String", bound)
	}
}

func TestRefIsGround(t *testing.T) {
	typeParams := map[string]bool{"T": true}
	if NewRef("T").IsGround(typeParams) {
		t.Error("T should not be ground")
	}
	if !NewRef("quark.int").IsGround(typeParams) {
		t.Error("quark.int should be ground")
	}
	nested := Ref{Name: "quark.List", Params: []Ref{NewRef("T")}}
	if nested.IsGround(typeParams) {
		t.Error("List<T> should not be ground while T is a type parameter")
	}
}

func TestRefString(t *testing.T) {
	r := Ref{Name: "quark.Map", Params: []Ref{NewRef("quark.String"), NewRef("quark.int")}}
	if got, want := r.String(), "quark.Map<quark.String,quark.int>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestInstantiationKeyDeterministicAndOrderIndependent(t *testing.T) {
	i1 := Instantiation{Def: NewRef("quark.Map"), Bindings: map[string]Ref{"K": NewRef("quark.String"), "V": NewRef("quark.int")}}
	i2 := Instantiation{Def: NewRef("quark.Map"), Bindings: map[string]Ref{"V": NewRef("quark.int"), "K": NewRef("quark.String")}}
	if i1.Key() != i2.Key() {
		t.Errorf("Key() should not depend on map iteration order: %q vs %q", i1.Key(), i2.Key())
	}
}

func TestInstantiationKeyDistinguishesBindings(t *testing.T) {
	i1 := Instantiation{Def: NewRef("quark.List"), Bindings: map[string]Ref{"T": NewRef("quark.int")}}
	i2 := Instantiation{Def: NewRef("quark.List"), Bindings: map[string]Ref{"T": NewRef("quark.String")}}
	if i1.Key() == i2.Key() {
		t.Error("distinct bindings should produce distinct keys")
	}
}

// Package typespace builds the structural description of every
// definition (spec.md §3 "Typespace node", §4.2) and resolves expression
// types to Ref values. It is frozen before lowering begins.
package typespace

import "strings"

// Ref is a (name, params) address into the type space. It is used both
// as an expression-type witness and as the key a Template is
// instantiated with. Ref is value-equal: two Refs naming the same type
// with structurally-equal parameters are the same Ref.
type Ref struct {
	Name   string
	Params []Ref
}

// NewRef builds a ground (parameterless) Ref.
func NewRef(name string) Ref { return Ref{Name: name} }

// Equals reports structural equality.
func (r Ref) Equals(o Ref) bool {
	if r.Name != o.Name || len(r.Params) != len(o.Params) {
		return false
	}
	for i := range r.Params {
		if !r.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return true
}

// Bind substitutes every parameter-name occurrence in r via mapping,
// recursing into nested parameters. A Ref whose Name matches a key in
// mapping is replaced wholesale (type-parameter reference); otherwise
// its own Params are substituted in place (generic instantiation, e.g.
// binding List<T> with T -> int yields List<int>).
func (r Ref) Bind(mapping map[string]Ref) Ref {
	if sub, ok := mapping[r.Name]; ok && len(r.Params) == 0 {
		return sub
	}
	if len(r.Params) == 0 {
		return r
	}
	params := make([]Ref, len(r.Params))
	for i, p := range r.Params {
		params[i] = p.Bind(mapping)
	}
	return Ref{Name: r.Name, Params: params}
}

// IsGround reports whether r (and every nested parameter) names a
// concrete type rather than an unbound type-parameter reference. A Ref
// is ground with respect to a set of in-scope type-parameter names.
func (r Ref) IsGround(typeParams map[string]bool) bool {
	if typeParams[r.Name] {
		return false
	}
	for _, p := range r.Params {
		if !p.IsGround(typeParams) {
			return false
		}
	}
	return true
}

func (r Ref) String() string {
	if len(r.Params) == 0 {
		return r.Name
	}
	parts := make([]string, len(r.Params))
	for i, p := range r.Params {
		parts[i] = p.String()
	}
	return r.Name + "<" + strings.Join(parts, ",") + ">"
}

// Instantiation is a (definition, bindings) pair reachable from top-level
// use (spec.md §3 "Invariants", §4.2 instantiations()). Equality is
// structural on Ref, so two instantiations naming the same definition
// with structurally-equal bindings collapse to one.
type Instantiation struct {
	Def      Ref            // the definition's bare name as a Ref, e.g. quark.List
	Bindings map[string]Ref // type-parameter name -> concrete Ref
}

// Key returns a deterministic string uniquely identifying this
// instantiation, used to dedupe the work-list in mono.Discover.
func (i Instantiation) Key() string {
	var b strings.Builder
	b.WriteString(i.Def.Name)
	b.WriteByte('(')
	names := make([]string, 0, len(i.Bindings))
	for n := range i.Bindings {
		names = append(names, n)
	}
	sortStrings(names)
	for idx, n := range names {
		if idx > 0 {
			b.WriteByte(',')
		}
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(i.Bindings[n].String())
	}
	b.WriteByte(')')
	return b.String()
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Package mangle implements the compiler's deterministic, injective name
// mangling (spec.md §4.3). mangle(Ref) is total: every Ref value maps to
// exactly one string, and two structurally distinct Refs never collide.
package mangle

import (
	"strings"

	"github.com/quarkc/compiler/internal/typespace"
)

// wellKnown maps a handful of built-in refs to fixed short names, per
// spec.md §4.3.
var wellKnown = map[string]string{
	"quark.int":    "int",
	"quark.String": "String",
	"quark.Any":    "Any",
	"quark.Scalar": "Scalar",
	"quark.List":   "List",
	"quark.Map":    "Map",
}

// Name mangles a Ref into a single identifier.
func Name(r typespace.Ref) string {
	base, ok := wellKnown[r.Name]
	if !ok {
		base = r.Name
	}
	base = strings.ReplaceAll(base, ".", "_")
	if len(r.Params) == 0 {
		return base
	}
	parts := make([]string, len(r.Params)+1)
	parts[0] = base
	for i, p := range r.Params {
		parts[i+1] = Name(p)
	}
	return strings.Join(parts, "_")
}

// Member mangles a (parent ref, method name) pair, the shape used for a
// Primitive method lowered to a free NativeFunction (spec.md §4.4.1:
// "<parent>_<method>").
func Member(parent typespace.Ref, method string) string {
	return Name(parent) + "_" + method
}

// Native joins dotted namespace segments with a target-specific
// separator for a NativeFunction's fully-qualified symbol, per spec.md
// §3 ("dotted namespace + member, with `::` joining native-target
// segments").
func Native(qualified string, targetSegments ...string) string {
	if len(targetSegments) == 0 {
		return qualified
	}
	return qualified + "::" + strings.Join(targetSegments, "::")
}

package typespace

// Builtins registers the well-known primitives named in spec.md §4.3
// (quark.int, quark.String, quark.Any, quark.Scalar, quark.List,
// quark.Map) along with the operator methods the lowering component
// special-cases (§4.4.3: boolean __or__/__and__, binary operators used
// by the recursive-function end-to-end scenario), seeding a fixed
// operator table rather than requiring every program to define
// int/float/bool/String from scratch.
func Builtins(nativeTargets []string) *Space {
	sp := NewSpace(nativeTargets)

	mappings := func(body string) map[string]string {
		m := make(map[string]string, len(nativeTargets))
		for _, t := range nativeTargets {
			m[t] = body
		}
		return m
	}

	binOp := func(name, opName string) *MethodSig {
		return &MethodSig{
			Name:      opName,
			Params:    []Ref{NewRef(name)},
			Return:    NewRef(name),
			HasReturn: true,
			Native:    true,
		}
	}
	cmpOp := func(name, opName string) *MethodSig {
		return &MethodSig{
			Name:      opName,
			Params:    []Ref{NewRef(name)},
			Return:    NewRef("bool"),
			HasReturn: true,
			Native:    true,
		}
	}

	sp.Grounds["quark.int"] = &GroundType{
		Self: NewRef("quark.int"), DefKind: KindPrimitive, Mappings: mappings("int"),
		Methods: map[string]*MethodSig{
			"__add__": binOp("quark.int", "__add__"),
			"__sub__": binOp("quark.int", "__sub__"),
			"__mul__": binOp("quark.int", "__mul__"),
			"__div__": binOp("quark.int", "__div__"),
			"__lt__":  cmpOp("quark.int", "__lt__"),
			"__gt__":  cmpOp("quark.int", "__gt__"),
			"__eq__":  cmpOp("quark.int", "__eq__"),
			"toFloat": &MethodSig{Name: "toFloat", Return: NewRef("quark.float"), HasReturn: true, Native: true},
		},
		Fields: map[string]*FieldSig{},
		Conversions: map[string]string{
			"quark.float": "toFloat", // inserted when an int is used where a float is expected
		},
	}
	sp.Grounds["quark.float"] = &GroundType{
		Self: NewRef("quark.float"), DefKind: KindPrimitive, Mappings: mappings("float"),
		Methods: map[string]*MethodSig{
			"__add__": binOp("quark.float", "__add__"),
			"__sub__": binOp("quark.float", "__sub__"),
			"__mul__": binOp("quark.float", "__mul__"),
			"__div__": binOp("quark.float", "__div__"),
			"__lt__":  cmpOp("quark.float", "__lt__"),
			"__gt__":  cmpOp("quark.float", "__gt__"),
			"__eq__":  cmpOp("quark.float", "__eq__"),
		},
		Fields: map[string]*FieldSig{},
	}
	sp.Grounds["bool"] = &GroundType{
		Self: NewRef("bool"), DefKind: KindPrimitive, Mappings: mappings("bool"),
		Methods: map[string]*MethodSig{
			// __or__/__and__ are intercepted in lowering before a Send/
			// Invoke would ever be built (spec.md §4.4.3), but they still
			// occupy member-table slots so MissingMember never fires for
			// `a || b` written as `a.__or__(b)`.
			"__or__":  binOp("bool", "__or__"),
			"__and__": binOp("bool", "__and__"),
			"__eq__":  cmpOp("bool", "__eq__"),
		},
		Fields: map[string]*FieldSig{},
	}
	sp.Grounds["quark.String"] = &GroundType{
		Self: NewRef("quark.String"), DefKind: KindPrimitive, Mappings: mappings("String"),
		Methods: map[string]*MethodSig{
			"__add__": binOp("quark.String", "__add__"),
			"__eq__":  cmpOp("quark.String", "__eq__"),
		},
		Fields: map[string]*FieldSig{},
	}
	sp.Grounds["quark.Any"] = &GroundType{
		Self: NewRef("quark.Any"), DefKind: KindPrimitive, Mappings: mappings("Object"),
		Methods: map[string]*MethodSig{}, Fields: map[string]*FieldSig{},
	}
	sp.Grounds["quark.Scalar"] = &GroundType{
		Self: NewRef("quark.Scalar"), DefKind: KindPrimitive, Mappings: mappings("Object"),
		Methods: map[string]*MethodSig{}, Fields: map[string]*FieldSig{},
	}

	sp.Templates["quark.List"] = &Template{
		Params: []string{"T"},
		Body: &GroundType{
			Self: Ref{Name: "quark.List", Params: []Ref{NewRef("T")}}, DefKind: KindPrimitive,
			Mappings: mappings("List"),
			Methods: map[string]*MethodSig{
				"__init__": {Name: "__init__", HasReturn: false, Native: true},
				"append":   {Name: "append", Params: []Ref{NewRef("T")}, Return: NewRef("void"), HasReturn: true, Native: true},
			},
			Fields: map[string]*FieldSig{},
		},
	}
	sp.Templates["quark.Map"] = &Template{
		Params: []string{"K", "V"},
		Body: &GroundType{
			Self: Ref{Name: "quark.Map", Params: []Ref{NewRef("K"), NewRef("V")}}, DefKind: KindPrimitive,
			Mappings: mappings("Map"),
			Methods: map[string]*MethodSig{
				"__init__": {Name: "__init__", HasReturn: false, Native: true},
				"__set__":  {Name: "__set__", Params: []Ref{NewRef("K"), NewRef("V")}, Return: NewRef("void"), HasReturn: true, Native: true},
			},
			Fields: map[string]*FieldSig{},
		},
	}
	return sp
}

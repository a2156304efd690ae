// Package astjson decodes the JSON-encoded AST fixtures cmd/quarkc reads
// in place of a real parser front end (spec.md §1 "Out of scope: lexical/
// syntactic parsing"). Every node is tagged with a "kind" discriminator
// matching ast.Node.Kind(), decoded one field-probe at a time rather
// than via reflection-based unmarshalling.
package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/quarkc/compiler/internal/ast"
)

// Decode parses one JSON-encoded Namespace fixture.
func Decode(data []byte) (*ast.Namespace, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	if raw.Kind != "Namespace" {
		return nil, fmt.Errorf("astjson: expected top-level Namespace, got %q", raw.Kind)
	}
	return decodeNamespace(raw)
}

// rawNode is the generic envelope every fixture node decodes into first;
// field-specific decoding happens afterwards, dispatched on Kind.
type rawNode struct {
	Kind     string            `json:"kind"`
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	Target   string            `json:"target"`
	Text     string            `json:"text"`
	Type     json.RawMessage   `json:"type"`
	Ref      json.RawMessage   `json:"ref"`
	Cond     json.RawMessage   `json:"cond"`
	Callee   json.RawMessage   `json:"callee"`
	X        json.RawMessage   `json:"x"`
	Value    json.RawMessage   `json:"value"`
	LHS      json.RawMessage   `json:"lhs"`
	RHS      json.RawMessage   `json:"rhs"`
	Expr     json.RawMessage   `json:"expr"`
	Body     json.RawMessage   `json:"body"`
	Then     json.RawMessage   `json:"then"`
	Else     json.RawMessage   `json:"else"`
	ElemType json.RawMessage   `json:"elemType"`
	KeyType  json.RawMessage   `json:"keyType"`
	ValType  json.RawMessage   `json:"valueType"`
	RetType  json.RawMessage   `json:"returnType"`
	NativeBody json.RawMessage `json:"nativeBody"`

	Params     []json.RawMessage `json:"params"`
	TypeParams []string          `json:"typeParams"`
	Args       []json.RawMessage `json:"args"`
	Elements   []json.RawMessage `json:"elements"`
	Entries    []rawMapEntry     `json:"entries"`
	Values     []json.RawMessage `json:"values"`
	Stmts      []json.RawMessage `json:"stmts"`
	Cases      []json.RawMessage `json:"cases"`
	Decls      []json.RawMessage `json:"decls"`
	Members    []json.RawMessage `json:"members"`
	Methods    []json.RawMessage `json:"methods"`
	Bases      []json.RawMessage `json:"bases"`
	Imports    []string          `json:"imports"`
	Mappings   map[string]string `json:"mappings"`
}

type rawMapEntry struct {
	Key   json.RawMessage `json:"key"`
	Value json.RawMessage `json:"value"`
}

func unmarshal(data json.RawMessage, out *rawNode) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func decodeNamespace(raw rawNode) (*ast.Namespace, error) {
	ns := &ast.Namespace{Path: raw.Path, Imports: raw.Imports}
	for _, d := range raw.Decls {
		decl, err := decodeDecl(d)
		if err != nil {
			return nil, err
		}
		ns.Decls = append(ns.Decls, decl)
	}
	return ns, nil
}

func decodeDecl(data json.RawMessage) (ast.Decl, error) {
	var raw rawNode
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: decl: %w", err)
	}
	switch raw.Kind {
	case "Function":
		fn := &ast.Function{Name: raw.Name, TypeParams: typeParams(raw.TypeParams)}
		params, err := decodeParams(raw.Params)
		if err != nil {
			return nil, err
		}
		fn.Params = params
		rt, err := decodeTypeRef(raw.RetType)
		if err != nil {
			return nil, err
		}
		fn.ReturnType = rt
		body, err := decodeBlock(raw.Body)
		if err != nil {
			return nil, err
		}
		fn.Body = body
		return fn, nil

	case "NativeFunction":
		fn := &ast.NativeFunction{Name: raw.Name, TypeParams: typeParams(raw.TypeParams)}
		params, err := decodeParams(raw.Params)
		if err != nil {
			return nil, err
		}
		fn.Params = params
		rt, err := decodeTypeRef(raw.RetType)
		if err != nil {
			return nil, err
		}
		fn.ReturnType = rt
		nb, err := decodeNativeBlock(raw.NativeBody)
		if err != nil {
			return nil, err
		}
		fn.Body = nb
		return fn, nil

	case "Class":
		cls := &ast.Class{Name: raw.Name, TypeParams: typeParams(raw.TypeParams)}
		for _, b := range raw.Bases {
			tr, err := decodeTypeRef(b)
			if err != nil {
				return nil, err
			}
			cls.Bases = append(cls.Bases, tr)
		}
		for _, m := range raw.Members {
			member, err := decodeDecl(m)
			if err != nil {
				return nil, err
			}
			cls.Members = append(cls.Members, member)
		}
		return cls, nil

	case "Interface":
		iface := &ast.Interface{Name: raw.Name, TypeParams: typeParams(raw.TypeParams)}
		for _, m := range raw.Methods {
			method, err := decodeDecl(m)
			if err != nil {
				return nil, err
			}
			mm, ok := method.(*ast.Method)
			if !ok {
				return nil, fmt.Errorf("astjson: interface method must decode to *ast.Method, got %T", method)
			}
			mm.Body = nil
			iface.Methods = append(iface.Methods, mm)
		}
		return iface, nil

	case "Primitive":
		prim := &ast.Primitive{Name: raw.Name, TypeParams: typeParams(raw.TypeParams), Mappings: raw.Mappings}
		for _, m := range raw.Methods {
			method, err := decodeDecl(m)
			if err != nil {
				return nil, err
			}
			mm, ok := method.(*ast.Method)
			if !ok {
				return nil, fmt.Errorf("astjson: primitive method must decode to *ast.Method, got %T", method)
			}
			prim.Methods = append(prim.Methods, mm)
		}
		return prim, nil

	case "Method":
		m := &ast.Method{Name: raw.Name, TypeParams: typeParams(raw.TypeParams)}
		params, err := decodeParams(raw.Params)
		if err != nil {
			return nil, err
		}
		m.Params = params
		rt, err := decodeTypeRef(raw.RetType)
		if err != nil {
			return nil, err
		}
		m.ReturnType = rt
		if len(raw.NativeBody) > 0 {
			nb, err := decodeNativeBlock(raw.NativeBody)
			if err != nil {
				return nil, err
			}
			m.NativeBody = nb
			return m, nil
		}
		body, err := decodeBlock(raw.Body)
		if err != nil {
			return nil, err
		}
		m.Body = body
		return m, nil

	case "Field":
		tr, err := decodeTypeRef(raw.Type)
		if err != nil {
			return nil, err
		}
		return &ast.Field{Name: raw.Name, Type: tr}, nil
	}
	return nil, fmt.Errorf("astjson: unknown decl kind %q", raw.Kind)
}

func typeParams(names []string) []*ast.TypeParamDecl {
	out := make([]*ast.TypeParamDecl, len(names))
	for i, n := range names {
		out[i] = &ast.TypeParamDecl{Name: n}
	}
	return out
}

func decodeParams(raws []json.RawMessage) ([]*ast.Param, error) {
	out := make([]*ast.Param, len(raws))
	for i, r := range raws {
		var raw rawNode
		if err := unmarshal(r, &raw); err != nil {
			return nil, fmt.Errorf("astjson: param: %w", err)
		}
		tr, err := decodeTypeRef(raw.Type)
		if err != nil {
			return nil, err
		}
		out[i] = &ast.Param{Name: raw.Name, Type: tr}
	}
	return out, nil
}

func decodeTypeRef(data json.RawMessage) (*ast.TypeRef, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var raw rawNode
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: type ref: %w", err)
	}
	tr := &ast.TypeRef{Name: raw.Name}
	for _, p := range raw.Params {
		pr, err := decodeTypeRef(p)
		if err != nil {
			return nil, err
		}
		tr.Params = append(tr.Params, pr)
	}
	return tr, nil
}

func decodeNativeBlock(data json.RawMessage) (*ast.NativeBlock, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var raw rawNode
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: native block: %w", err)
	}
	return &ast.NativeBlock{Target: raw.Target, Imports: raw.Imports, Body: raw.Text}, nil
}

func decodeBlock(data json.RawMessage) (*ast.Block, error) {
	if len(data) == 0 || string(data) == "null" {
		return &ast.Block{}, nil
	}
	var raw rawNode
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: block: %w", err)
	}
	blk := &ast.Block{}
	for _, s := range raw.Stmts {
		stmt, err := decodeStmt(s)
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, stmt)
	}
	return blk, nil
}

func decodeStmt(data json.RawMessage) (ast.Stmt, error) {
	var raw rawNode
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: stmt: %w", err)
	}
	switch raw.Kind {
	case "Local":
		tr, err := decodeTypeRef(raw.Type)
		if err != nil {
			return nil, err
		}
		val, err := decodeOptionalExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Declaration{Name: raw.Name, Type: tr, Value: val}, nil

	case "Assign":
		lhs, err := decodeExpr(raw.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(raw.RHS)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{LHS: lhs, RHS: rhs}, nil

	case "ExprStmt":
		x, err := decodeExpr(raw.X)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil

	case "Return":
		v, err := decodeOptionalExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: v}, nil

	case "Break":
		return &ast.Break{}, nil
	case "Continue":
		return &ast.Continue{}, nil

	case "If":
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeBlock(raw.Then)
		if err != nil {
			return nil, err
		}
		var elseBlk *ast.Block
		if len(raw.Else) > 0 && string(raw.Else) != "null" {
			elseBlk, err = decodeBlock(raw.Else)
			if err != nil {
				return nil, err
			}
		}
		return &ast.If{Cond: cond, Then: then, Else: elseBlk}, nil

	case "While":
		cond, err := decodeExpr(raw.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body}, nil

	case "Switch":
		expr, err := decodeExpr(raw.Expr)
		if err != nil {
			return nil, err
		}
		sw := &ast.Switch{Expr: expr}
		for _, c := range raw.Cases {
			var craw rawNode
			if err := unmarshal(c, &craw); err != nil {
				return nil, fmt.Errorf("astjson: case: %w", err)
			}
			values, err := decodeExprs(craw.Values)
			if err != nil {
				return nil, err
			}
			body, err := decodeBlock(craw.Body)
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, &ast.Case{Values: values, Body: body})
		}
		return sw, nil
	}
	return nil, fmt.Errorf("astjson: unknown stmt kind %q", raw.Kind)
}

func decodeOptionalExpr(data json.RawMessage) (ast.Expr, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return decodeExpr(data)
}

func decodeExprs(raws []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(raws))
	for i, r := range raws {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeExpr(data json.RawMessage) (ast.Expr, error) {
	var raw rawNode
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: expr: %w", err)
	}
	switch raw.Kind {
	case "Number":
		return &ast.Number{Text: raw.Text}, nil
	case "String":
		return &ast.String{Text: raw.Text}, nil
	case "Bool":
		return &ast.Bool{Text: raw.Text}, nil
	case "Null":
		tr, err := decodeTypeRef(raw.Type)
		if err != nil {
			return nil, err
		}
		return &ast.Null{Type: tr}, nil
	case "Type":
		tr, err := decodeTypeRef(raw.Ref)
		if err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Ref: tr}, nil
	case "Var":
		return &ast.Var{Name: raw.Name}, nil
	case "Attr":
		x, err := decodeExpr(raw.X)
		if err != nil {
			return nil, err
		}
		return &ast.Attr{X: x, Name: raw.Name}, nil
	case "Call":
		callee, err := decodeExpr(raw.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(raw.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Callee: callee, Args: args}, nil
	case "List":
		elems, err := decodeExprs(raw.Elements)
		if err != nil {
			return nil, err
		}
		et, err := decodeTypeRef(raw.ElemType)
		if err != nil {
			return nil, err
		}
		return &ast.List{Elements: elems, ElemType: et}, nil
	case "Map":
		kt, err := decodeTypeRef(raw.KeyType)
		if err != nil {
			return nil, err
		}
		vt, err := decodeTypeRef(raw.ValType)
		if err != nil {
			return nil, err
		}
		m := &ast.Map{KeyType: kt, ValueType: vt}
		for _, e := range raw.Entries {
			k, err := decodeExpr(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := decodeExpr(e.Value)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, ast.MapEntry{Key: k, Value: v})
		}
		return m, nil
	case "Local":
		tr, err := decodeTypeRef(raw.Type)
		if err != nil {
			return nil, err
		}
		val, err := decodeOptionalExpr(raw.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Declaration{Name: raw.Name, Type: tr, Value: val}, nil
	}
	return nil, fmt.Errorf("astjson: unknown expr kind %q", raw.Kind)
}

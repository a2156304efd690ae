package astjson

import (
	"testing"

	"github.com/quarkc/compiler/internal/ast"
)

func TestDecodeRecursiveFibFixture(t *testing.T) {
	fixture := `{
		"kind": "Namespace",
		"path": "math",
		"decls": [{
			"kind": "Function",
			"name": "fib",
			"params": [{"name": "n", "type": {"name": "quark.int"}}],
			"returnType": {"name": "quark.int"},
			"body": {"stmts": [
				{"kind": "If",
				 "cond": {"kind": "Call", "callee": {"kind": "Attr", "x": {"kind": "Var", "name": "n"}, "name": "__lt__"}, "args": [{"kind": "Number", "text": "2"}]},
				 "then": {"stmts": [{"kind": "Return", "value": {"kind": "Var", "name": "n"}}]}},
				{"kind": "Return", "value": {
					"kind": "Call",
					"callee": {"kind": "Attr", "name": "__add__", "x": {
						"kind": "Call", "callee": {"kind": "Var", "name": "fib"},
						"args": [{"kind": "Call", "callee": {"kind": "Attr", "x": {"kind": "Var", "name": "n"}, "name": "__sub__"}, "args": [{"kind": "Number", "text": "1"}]}]
					}},
					"args": [{"kind": "Call", "callee": {"kind": "Var", "name": "fib"},
						"args": [{"kind": "Call", "callee": {"kind": "Attr", "x": {"kind": "Var", "name": "n"}, "name": "__sub__"}, "args": [{"kind": "Number", "text": "2"}]}]}]
				}}
			]}
		}]
	}`

	ns, err := Decode([]byte(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ns.Path != "math" {
		t.Errorf("expected namespace path math, got %q", ns.Path)
	}
	if len(ns.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(ns.Decls))
	}
	fn, ok := ns.Decls[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected *ast.Function, got %T", ns.Decls[0])
	}
	if fn.Name != "fib" || len(fn.Params) != 1 || fn.Params[0].Name != "n" {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(fn.Body.Stmts))
	}
	ifStmt, ok := fn.Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body.Stmts[0])
	}
	if ifStmt.Else != nil {
		t.Errorf("expected nil Else for an omitted else-branch")
	}
}

func TestDecodeRejectsUnknownTopLevelKind(t *testing.T) {
	if _, err := Decode([]byte(`{"kind": "Function"}`)); err == nil {
		t.Error("expected error decoding a non-Namespace top level")
	}
}

func TestDecodeSwitchWithMultiValueCase(t *testing.T) {
	fixture := `{
		"kind": "Namespace", "path": "math",
		"decls": [{
			"kind": "Function", "name": "classify",
			"params": [{"name": "x", "type": {"name": "quark.int"}}],
			"body": {"stmts": [{
				"kind": "Switch",
				"expr": {"kind": "Var", "name": "x"},
				"cases": [
					{"values": [{"kind": "Number", "text": "1"}, {"kind": "Number", "text": "2"}], "body": {}},
					{"values": [{"kind": "Number", "text": "3"}], "body": {}}
				]
			}]}
		}]
	}`
	ns, err := Decode([]byte(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fn := ns.Decls[0].(*ast.Function)
	sw := fn.Body.Stmts[0].(*ast.Switch)
	if len(sw.Cases) != 2 || len(sw.Cases[0].Values) != 2 {
		t.Fatalf("unexpected switch shape: %+v", sw)
	}
}

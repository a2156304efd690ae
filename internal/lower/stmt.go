package lower

import (
	"github.com/quarkc/compiler/internal/ast"
	"github.com/quarkc/compiler/internal/ir"
	"github.com/quarkc/compiler/internal/symbols"
	"github.com/quarkc/compiler/internal/typespace"
)

// lowerBlock lowers a Block to its IR twin, per spec.md §4.4.2
// ("push a frame, lower each statement into it, pop, wrap as Block").
func (l *Lowerer) lowerBlock(b *ast.Block, scope *symbols.Scope, nsPath string) *ir.Block {
	return &ir.Block{Stmts: l.lowerBlockInto(b, scope, nsPath)}
}

// lowerBlockInto is lowerBlock without the final Block wrapper, used
// where the surrounding IR shape (Function.Body, Method.Body, ...) wants
// a bare []ir.Node.
func (l *Lowerer) lowerBlockInto(b *ast.Block, scope *symbols.Scope, nsPath string) []ir.Node {
	l.push()
	local := symbols.NewScope("local", nil, scope)
	if b != nil {
		for _, stmt := range b.Stmts {
			l.lowerStmt(stmt, local, nsPath)
		}
	}
	return l.pop()
}

func (l *Lowerer) lowerStmt(stmt ast.Stmt, scope *symbols.Scope, nsPath string) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		var expected *typespace.Ref
		if s.Type != nil {
			r := typespace.RefFromTypeRef(s.Type)
			expected = &r
		}
		var value ir.Node
		if s.Value != nil {
			value = l.lowerExpr(s.Value, scope, nsPath, expected)
		}
		var typ ir.Node
		if s.Type != nil {
			typ = l.irType(typespace.RefFromTypeRef(s.Type))
		}
		l.add(&ir.Local{Name: s.Name, Type: typ, Value: value})
		scope.BindLocal(s)

	case *ast.Assign:
		l.lowerAssign(s, scope, nsPath)

	case *ast.ExprStmt:
		l.add(&ir.Evaluate{X: l.lowerExpr(s.X, scope, nsPath, nil)})

	case *ast.Return:
		var v ir.Node
		if s.Value != nil {
			v = l.lowerExpr(s.Value, scope, nsPath, nil)
		}
		l.add(&ir.Return{Value: v})

	case *ast.Break:
		l.add(ir.BreakStmt{})

	case *ast.Continue:
		l.add(ir.ContinueStmt{})

	case *ast.If:
		cond := l.lowerExpr(s.Cond, scope, nsPath, nil)
		then := l.lowerBlock(s.Then, scope, nsPath)
		var els *ir.Block
		if s.Else != nil {
			els = l.lowerBlock(s.Else, scope, nsPath)
		} else {
			els = &ir.Block{}
		}
		l.add(&ir.If{Cond: cond, Then: then, Else: els})

	case *ast.While:
		cond := l.lowerExpr(s.Cond, scope, nsPath, nil)
		body := l.lowerBlock(s.Body, scope, nsPath)
		l.add(&ir.While{Cond: cond, Body: body})

	case *ast.Switch:
		l.lowerSwitch(s, scope, nsPath)
	}
}

func (l *Lowerer) lowerAssign(s *ast.Assign, scope *symbols.Scope, nsPath string) {
	switch lhs := s.LHS.(type) {
	case *ast.Attr:
		receiver := l.lowerExpr(lhs.X, scope, nsPath, nil)
		fieldRef := l.typeOf(lhs, scope, nsPath)
		value := l.lowerExpr(s.RHS, scope, nsPath, &fieldRef)
		l.add(&ir.Set{Receiver: receiver, Field: lhs.Name, Value: value})
	case *ast.Var:
		b, ok := l.Symbols.Lookup(lhs.Name, scope, nsPath, l.Collector, lhs)
		if ok && b.Kind == symbols.BindField {
			fieldRef := typespace.RefFromTypeRef(b.Decl.(*ast.Field).Type)
			value := l.lowerExpr(s.RHS, scope, nsPath, &fieldRef)
			l.add(&ir.Set{Receiver: l.selfReceiver(), Field: lhs.Name, Value: value})
			return
		}
		var expected *typespace.Ref
		if ok {
			switch b.Kind {
			case symbols.BindParam:
				r := typespace.RefFromTypeRef(b.Decl.(*ast.Param).Type)
				expected = &r
			case symbols.BindDeclaration:
				r := typespace.RefFromTypeRef(b.Decl.(*ast.Declaration).Type)
				expected = &r
			}
		}
		value := l.lowerExpr(s.RHS, scope, nsPath, expected)
		l.add(&ir.Assign{Var: lhs.Name, Value: value})
	default:
		value := l.lowerExpr(s.RHS, scope, nsPath, nil)
		l.add(&ir.Evaluate{X: value})
	}
}

// lowerSwitch desugars switch(expr){case v0,v1: A; case v2: B;} into a
// temp assignment plus right-to-left folded If/Or chains, per spec.md
// §4.4.2 and end-to-end scenario 4.
func (l *Lowerer) lowerSwitch(s *ast.Switch, scope *symbols.Scope, nsPath string) {
	temp := l.fresh()
	subject := l.lowerExpr(s.Expr, scope, nsPath, nil)
	subjectRef := l.typeOf(s.Expr, scope, nsPath)
	l.add(&ir.Local{Name: temp, Type: l.irType(subjectRef), Value: subject})

	var chain ir.Node = &ir.Block{}
	for i := len(s.Cases) - 1; i >= 0; i-- {
		cs := s.Cases[i]
		var cond ir.Node
		for j := len(cs.Values) - 1; j >= 0; j-- {
			eq := &ir.Send{Receiver: &ir.Var{Name: temp}, Method: "__eq__", Args: []ir.Node{l.lowerExpr(cs.Values[j], scope, nsPath, &subjectRef)}}
			if cond == nil {
				cond = eq
			} else {
				cond = &ir.Or{Left: eq, Right: cond}
			}
		}
		body := l.lowerBlock(cs.Body, scope, nsPath)
		elseBlock, ok := chain.(*ir.Block)
		if !ok {
			elseBlock = &ir.Block{Stmts: []ir.Node{chain}}
		}
		chain = &ir.If{Cond: cond, Then: body, Else: elseBlock}
	}
	l.add(chain)
}

func (l *Lowerer) selfReceiver() ir.Node {
	if l.selfIsPrimitive {
		return &ir.Var{Name: "self"}
	}
	return &ir.This{}
}

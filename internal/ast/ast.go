// Package ast defines the abstract syntax tree the parser produces and the
// evaluator consumes. Every node is allocated once and referenced
// thereafter by its Go pointer; the evaluator relies on that pointer being a
// stable identity for the lifetime of the program, exactly as §3 of the
// specification requires for declaration and expression identity.
package ast

import "github.com/lucidc/cintp/internal/lexer"

// Node is the common interface implemented by every AST node.
type Node interface {
	Pos() lexer.Position
	String() string
}

// Expr is an expression node: it produces a value when evaluated.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a top-level or block-scoped declaration.
type Decl interface {
	Node
	declNode()
}

// Program is the root of the tree: the translation unit's declarations in
// source order.
type Program struct {
	Decls []Decl
}

func (p *Program) Pos() lexer.Position {
	if len(p.Decls) == 0 {
		return lexer.Position{}
	}
	return p.Decls[0].Pos()
}

func (p *Program) String() string {
	s := ""
	for _, d := range p.Decls {
		s += d.String() + "\n"
	}
	return s
}

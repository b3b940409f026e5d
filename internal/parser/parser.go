// Package parser implements a recursive-descent, precedence-climbing parser
// for the C subset cintp interprets. It follows the same overall shape as
// the teacher project's Pratt parser (a precedence table driving a single
// binary-expression loop, with prefix operators and primaries handled by a
// dedicated unary/postfix chain below it), narrowed to the grammar this
// language actually has: declarations, the five statement forms in §4.3.4,
// and the expression forms §6 lists.
package parser

import (
	"fmt"
	"strconv"

	"github.com/lucidc/cintp/internal/ast"
	"github.com/lucidc/cintp/internal/lexer"
)

// precedence levels, lowest to highest. Prefix/postfix operators bind
// tighter than any of these and are handled outside the table.
const (
	lowest = iota + 1
	precAssign
	precLogOr
	precLogAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
)

var binPrecedence = map[lexer.TokenType]int{
	lexer.ASSIGN:   precAssign,
	lexer.OR:       precLogOr,
	lexer.AND:      precLogAnd,
	lexer.EQ:       precEquality,
	lexer.NOT_EQ:   precEquality,
	lexer.LT:       precRelational,
	lexer.GT:       precRelational,
	lexer.LT_EQ:    precRelational,
	lexer.GT_EQ:    precRelational,
	lexer.PLUS:     precAdditive,
	lexer.MINUS:    precAdditive,
	lexer.ASTERISK: precMultiplicative,
	lexer.SLASH:    precMultiplicative,
	lexer.PERCENT:  precMultiplicative,
}

var binOpKind = map[lexer.TokenType]ast.BinaryOp{
	lexer.ASSIGN:   ast.BinAssign,
	lexer.PLUS:     ast.BinAdd,
	lexer.MINUS:    ast.BinSub,
	lexer.ASTERISK: ast.BinMul,
	lexer.SLASH:    ast.BinDiv,
	lexer.PERCENT:  ast.BinMod,
	lexer.LT:       ast.BinLT,
	lexer.GT:       ast.BinGT,
	lexer.LT_EQ:    ast.BinLE,
	lexer.GT_EQ:    ast.BinGE,
	lexer.EQ:       ast.BinEQ,
	lexer.NOT_EQ:   ast.BinNE,
	lexer.AND:      ast.BinLAnd,
	lexer.OR:       ast.BinLOr,
}

var builtinNames = map[string]ast.BuiltinKind{
	"get":    ast.BuiltinGet,
	"print":  ast.BuiltinPrint,
	"malloc": ast.BuiltinMalloc,
	"free":   ast.BuiltinFree,
}

// ParseError is raised (via panic/recover, confined to this package) on the
// first malformed construct; the parser does not attempt recovery since
// this is a small, single-file-at-a-time grammar with no IDE-style
// incremental re-parse requirement.
type ParseError struct {
	Pos     lexer.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Parser consumes a token stream and produces an *ast.Program.
type Parser struct {
	l         *lexer.Lexer
	cur, peek lexer.Token
}

// New creates a Parser over the given Lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) fail(format string, args ...any) {
	panic(&ParseError{Pos: p.cur.Pos, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if p.cur.Type != t {
		p.fail("expected %s, got %s %q", t, p.cur.Type, p.cur.Literal)
	}
	tok := p.cur
	p.advance()
	return tok
}

func (p *Parser) expectIdent() (string, lexer.Position) {
	tok := p.expect(lexer.IDENT)
	return tok.Literal, tok.Pos
}

// ParseProgram parses the entire token stream into a Program. Parse errors
// are returned rather than panicking out of this call.
func (p *Parser) ParseProgram() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()

	var decls []ast.Decl
	for p.cur.Type != lexer.EOF {
		decls = append(decls, p.parseTopLevelDecl()...)
	}
	return &ast.Program{Decls: decls}, nil
}

func (p *Parser) parseBaseType() *ast.Type {
	switch p.cur.Type {
	case lexer.INT_KW:
		p.advance()
		return ast.IntType
	case lexer.VOID:
		p.advance()
		return ast.VoidType
	default:
		p.fail("expected a type, got %s %q", p.cur.Type, p.cur.Literal)
		return nil
	}
}

// parseType parses a base type plus any pointer stars, for use in casts and
// sizeof — contexts where stars modify the type itself rather than one
// declarator among several sharing a base type.
func (p *Parser) parseType() *ast.Type {
	t := p.parseBaseType()
	for p.cur.Type == lexer.ASTERISK {
		p.advance()
		t = ast.PointerTo(t)
	}
	return t
}

// parseDeclaratorTypeAndName consumes the pointer stars and name of one
// declarator under a shared base type, e.g. the "*a" / "b" halves of
// `int *a, b;`.
func (p *Parser) parseDeclaratorTypeAndName(base *ast.Type) (*ast.Type, string, lexer.Position) {
	t := base
	for p.cur.Type == lexer.ASTERISK {
		p.advance()
		t = ast.PointerTo(t)
	}
	name, pos := p.expectIdent()
	return t, name, pos
}

// finishVarDeclarator parses the optional `[N]` array suffix and `= expr`
// initializer following a declarator's name.
func (p *Parser) finishVarDeclarator(t *ast.Type, name string, pos lexer.Position) *ast.VarDecl {
	if p.cur.Type == lexer.LBRACK {
		p.advance()
		lenTok := p.expect(lexer.INT)
		n, err := strconv.Atoi(lenTok.Literal)
		if err != nil {
			p.fail("invalid array length %q", lenTok.Literal)
		}
		p.expect(lexer.RBRACK)
		t = ast.ArrayOf(t, n)
	}

	var init ast.Expr
	if p.cur.Type == lexer.ASSIGN {
		p.advance()
		init = p.parseExpr()
	}

	return &ast.VarDecl{Name: name, Type: t, Init: init, Position: pos}
}

func (p *Parser) parseDeclarators(base *ast.Type) []*ast.VarDecl {
	t, name, pos := p.parseDeclaratorTypeAndName(base)
	decls := []*ast.VarDecl{p.finishVarDeclarator(t, name, pos)}
	for p.cur.Type == lexer.COMMA {
		p.advance()
		t, name, pos = p.parseDeclaratorTypeAndName(base)
		decls = append(decls, p.finishVarDeclarator(t, name, pos))
	}
	return decls
}

func (p *Parser) parseTopLevelDecl() []ast.Decl {
	base := p.parseBaseType()
	t, name, pos := p.parseDeclaratorTypeAndName(base)

	if p.cur.Type == lexer.LPAREN {
		return []ast.Decl{p.parseFunctionDecl(t, name, pos)}
	}

	first := p.finishVarDeclarator(t, name, pos)
	decls := []*ast.VarDecl{first}
	for p.cur.Type == lexer.COMMA {
		p.advance()
		t2, name2, pos2 := p.parseDeclaratorTypeAndName(base)
		decls = append(decls, p.finishVarDeclarator(t2, name2, pos2))
	}
	p.expect(lexer.SEMICOLON)

	out := make([]ast.Decl, len(decls))
	for i, d := range decls {
		out[i] = d
	}
	return out
}

func (p *Parser) parseFunctionDecl(returnType *ast.Type, name string, pos lexer.Position) *ast.FunctionDecl {
	p.expect(lexer.LPAREN)

	var params []*ast.VarDecl
	if p.cur.Type == lexer.VOID && p.peek.Type == lexer.RPAREN {
		p.advance()
	} else if p.cur.Type != lexer.RPAREN {
		for {
			pbase := p.parseBaseType()
			pt, pname, ppos := p.parseDeclaratorTypeAndName(pbase)
			params = append(params, &ast.VarDecl{Name: pname, Type: pt, Position: ppos})
			if p.cur.Type == lexer.COMMA {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(lexer.RPAREN)

	var body *ast.BlockStmt
	if p.cur.Type == lexer.LBRACE {
		body = p.parseBlock()
	} else {
		p.expect(lexer.SEMICOLON)
	}

	return &ast.FunctionDecl{Name: name, Params: params, ReturnType: returnType, Body: body, Position: pos}
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.expect(lexer.LBRACE).Pos
	var stmts []ast.Stmt
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(lexer.RBRACE)
	return &ast.BlockStmt{Stmts: stmts, Position: pos}
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.INT_KW, lexer.VOID:
		return p.parseDeclStmt()
	case lexer.SEMICOLON:
		pos := p.cur.Pos
		p.advance()
		return &ast.BlockStmt{Position: pos}
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseDeclStmt() *ast.DeclStmt {
	pos := p.cur.Pos
	base := p.parseBaseType()
	decls := p.parseDeclarators(base)
	p.expect(lexer.SEMICOLON)
	return &ast.DeclStmt{Decls: decls, Position: pos}
}

func (p *Parser) parseExprStmt() *ast.ExprStmt {
	pos := p.cur.Pos
	x := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	return &ast.ExprStmt{X: x, Position: pos}
}

func (p *Parser) parseIf() *ast.IfStmt {
	pos := p.expect(lexer.IF).Pos
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	then := p.parseStatement()
	var els ast.Stmt
	if p.cur.Type == lexer.ELSE {
		p.advance()
		els = p.parseStatement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, Position: pos}
}

func (p *Parser) parseWhile() *ast.WhileStmt {
	pos := p.expect(lexer.WHILE).Pos
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	body := p.parseStatement()
	return &ast.WhileStmt{Cond: cond, Body: body, Position: pos}
}

func (p *Parser) parseFor() *ast.ForStmt {
	pos := p.expect(lexer.FOR).Pos
	p.expect(lexer.LPAREN)

	var init ast.Stmt
	switch p.cur.Type {
	case lexer.SEMICOLON:
		p.advance()
	case lexer.INT_KW, lexer.VOID:
		init = p.parseDeclStmt()
	default:
		init = p.parseExprStmt()
	}

	var cond ast.Expr
	if p.cur.Type != lexer.SEMICOLON {
		cond = p.parseExpr()
	}
	p.expect(lexer.SEMICOLON)

	var post ast.Expr
	if p.cur.Type != lexer.RPAREN {
		post = p.parseExpr()
	}
	p.expect(lexer.RPAREN)

	body := p.parseStatement()
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body, Position: pos}
}

func (p *Parser) parseReturn() *ast.ReturnStmt {
	pos := p.expect(lexer.RETURN).Pos
	var value ast.Expr
	if p.cur.Type != lexer.SEMICOLON {
		value = p.parseExpr()
	}
	p.expect(lexer.SEMICOLON)
	return &ast.ReturnStmt{Value: value, Position: pos}
}

// parseExpr parses a full expression at the lowest precedence, i.e.
// including assignment.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(precAssign)
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()

	for {
		prec, ok := binPrecedence[p.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.cur.Type
		pos := p.cur.Pos
		p.advance()

		nextMin := prec + 1
		if opTok == lexer.ASSIGN {
			nextMin = prec // right-associative
		}
		right := p.parseBinary(nextMin)
		left = &ast.BinaryExpr{Op: binOpKind[opTok], Left: left, Right: right, Position: pos}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case lexer.PLUS:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryPlus, Operand: p.parseUnary(), Position: pos}
	case lexer.MINUS:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryMinus, Operand: p.parseUnary(), Position: pos}
	case lexer.BANG:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryNot, Operand: p.parseUnary(), Position: pos}
	case lexer.ASTERISK:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryDeref, Operand: p.parseUnary(), Position: pos}
	case lexer.AMP:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryAddr, Operand: p.parseUnary(), Position: pos}
	case lexer.INC:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryPreInc, Operand: p.parseUnary(), Position: pos}
	case lexer.DEC:
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryPreDec, Operand: p.parseUnary(), Position: pos}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		pos := p.cur.Pos
		switch p.cur.Type {
		case lexer.INC:
			p.advance()
			expr = &ast.UnaryExpr{Op: ast.UnaryPostInc, Operand: expr, Position: pos}
		case lexer.DEC:
			p.advance()
			expr = &ast.UnaryExpr{Op: ast.UnaryPostDec, Operand: expr, Position: pos}
		case lexer.LBRACK:
			p.advance()
			idx := p.parseExpr()
			p.expect(lexer.RBRACK)
			expr = &ast.ArraySubscriptExpr{Array: expr, Index: idx, Position: pos}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case lexer.INT:
		tok := p.cur
		p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.fail("invalid integer literal %q", tok.Literal)
		}
		return &ast.IntegerLiteral{Value: v, Position: pos}

	case lexer.IDENT:
		name := p.cur.Literal
		p.advance()
		if p.cur.Type == lexer.LPAREN {
			return p.parseCall(name, pos)
		}
		return &ast.DeclRefExpr{Name: name, Position: pos}

	case lexer.SIZEOF:
		p.advance()
		p.expect(lexer.LPAREN)
		t := p.parseType()
		p.expect(lexer.RPAREN)
		return &ast.SizeofExpr{OperandType: t, Position: pos}

	case lexer.LPAREN:
		p.advance()
		if p.cur.Type == lexer.INT_KW || p.cur.Type == lexer.VOID {
			t := p.parseType()
			p.expect(lexer.RPAREN)
			return &ast.CastExpr{Type: t, Sub: p.parseUnary(), Position: pos}
		}
		e := p.parseExpr()
		p.expect(lexer.RPAREN)
		return &ast.ParenExpr{Sub: e, Position: pos}

	default:
		p.fail("unexpected token %s %q in expression", p.cur.Type, p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseCall(name string, pos lexer.Position) *ast.CallExpr {
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	if p.cur.Type != lexer.RPAREN {
		args = append(args, p.parseExpr())
		for p.cur.Type == lexer.COMMA {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	p.expect(lexer.RPAREN)
	return &ast.CallExpr{Name: name, Builtin: builtinNames[name], Args: args, Position: pos}
}

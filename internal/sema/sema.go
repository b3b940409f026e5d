// Package sema is the semantic analysis pass that sits between parsing and
// evaluation: it resolves every DeclRefExpr to the VarDecl it names and
// every non-builtin CallExpr to the FunctionDecl it calls, mirroring the
// "resolved declaration references" contract §1 and §4.3.1 put on the
// evaluator (the evaluator itself never performs name lookup). It is the
// external collaborator the teacher's evaluator package always assumed sat
// in front of it — here made explicit as its own pass, the way the teacher
// splits lexing, parsing and evaluation into separate packages.
package sema

import (
	"fmt"

	"github.com/lucidc/cintp/internal/ast"
	cerrors "github.com/lucidc/cintp/internal/errors"
	"github.com/lucidc/cintp/internal/lexer"
)

var builtinNames = map[string]ast.BuiltinKind{
	"get":    ast.BuiltinGet,
	"print":  ast.BuiltinPrint,
	"malloc": ast.BuiltinMalloc,
	"free":   ast.BuiltinFree,
}

// scope is a chain of name -> *VarDecl maps, one per block, outer-to-inner.
type scope struct {
	vars   map[string]*ast.VarDecl
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]*ast.VarDecl), parent: parent}
}

func (s *scope) define(d *ast.VarDecl) bool {
	if _, exists := s.vars[d.Name]; exists {
		return false
	}
	s.vars[d.Name] = d
	return true
}

func (s *scope) lookup(name string) *ast.VarDecl {
	for cur := s; cur != nil; cur = cur.parent {
		if d, ok := cur.vars[name]; ok {
			return d
		}
	}
	return nil
}

// Analyzer walks a parsed Program and binds every name reference in place.
type Analyzer struct {
	source string
	file   string

	funcs   map[string]*ast.FunctionDecl
	globals *scope

	errs []*cerrors.CompilerError
}

// New creates an Analyzer. source and file are only used to annotate
// diagnostics with source context, matching internal/errors' CompilerError.
func New(source, file string) *Analyzer {
	return &Analyzer{
		source:  source,
		file:    file,
		funcs:   make(map[string]*ast.FunctionDecl),
		globals: newScope(nil),
	}
}

// Main returns the resolved entry-point function, once Analyze has run.
func (a *Analyzer) Main() *ast.FunctionDecl {
	return a.funcs["main"]
}

func (a *Analyzer) errorf(pos lexer.Position, format string, args ...any) {
	a.errs = append(a.errs, cerrors.NewCompilerError(pos, fmt.Sprintf(format, args...), a.source, a.file))
}

// Analyze runs both passes over prog: first registering every top-level
// function and global so forward references and recursion resolve, then
// walking bodies and global initializers to bind names.
func (a *Analyzer) Analyze(prog *ast.Program) error {
	a.registerTopLevel(prog)

	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.VarDecl:
			a.checkGlobalInit(decl)
		case *ast.FunctionDecl:
			a.resolveFunction(decl)
		}
	}

	if a.funcs["main"] == nil {
		a.errs = append(a.errs, cerrors.NewCompilerError(lexer.Position{}, "program has no main function", a.source, a.file))
	}

	if len(a.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", cerrors.FormatErrors(a.errs, false))
}

func (a *Analyzer) registerTopLevel(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FunctionDecl:
			if _, exists := a.funcs[decl.Name]; exists {
				a.errorf(decl.Position, "function %q redeclared", decl.Name)
				continue
			}
			if _, reserved := builtinNames[decl.Name]; reserved {
				a.errorf(decl.Position, "%q is a reserved built-in name and cannot be redefined", decl.Name)
				continue
			}
			a.funcs[decl.Name] = decl
		case *ast.VarDecl:
			if !a.globals.define(decl) {
				a.errorf(decl.Position, "global %q redeclared", decl.Name)
			}
		}
	}
}

// checkGlobalInit enforces that global initializers are simple scalar
// constants: the evaluator seeds every call frame from a template built
// once at startup (§4.3.3's globals-template protocol), which only makes
// sense if the initial value does not itself depend on a function call or
// another global's current state.
func (a *Analyzer) checkGlobalInit(decl *ast.VarDecl) {
	if decl.Init == nil {
		return
	}
	if decl.Type.IsArray() {
		a.errorf(decl.Position, "array global %q may not have an initializer", decl.Name)
		return
	}
	if decl.Type.IsPointer() {
		a.errorf(decl.Position, "pointer global %q may not have an initializer", decl.Name)
		return
	}
	if !isConstantExpr(decl.Init) {
		a.errorf(decl.Init.Pos(), "global initializer for %q must be a constant expression", decl.Name)
	}
}

func isConstantExpr(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		return true
	case *ast.ParenExpr:
		return isConstantExpr(v.Sub)
	case *ast.UnaryExpr:
		return (v.Op == ast.UnaryPlus || v.Op == ast.UnaryMinus) && isConstantExpr(v.Operand)
	default:
		return false
	}
}

func (a *Analyzer) resolveFunction(fn *ast.FunctionDecl) {
	if fn.Body == nil {
		return
	}
	fnScope := newScope(a.globals)
	for _, p := range fn.Params {
		if !fnScope.define(p) {
			a.errorf(p.Position, "parameter %q redeclared", p.Name)
		}
	}
	a.resolveBlock(fn.Body, fnScope)
}

func (a *Analyzer) resolveBlock(b *ast.BlockStmt, parent *scope) {
	s := newScope(parent)
	for _, stmt := range b.Stmts {
		a.resolveStmt(stmt, s)
	}
}

func (a *Analyzer) resolveStmt(stmt ast.Stmt, s *scope) {
	switch st := stmt.(type) {
	case *ast.BlockStmt:
		a.resolveBlock(st, s)
	case *ast.DeclStmt:
		for _, d := range st.Decls {
			if d.Init != nil {
				a.resolveExpr(d.Init, s)
			}
			if !s.define(d) {
				a.errorf(d.Position, "local %q redeclared", d.Name)
			}
		}
	case *ast.ExprStmt:
		a.resolveExpr(st.X, s)
	case *ast.IfStmt:
		a.resolveExpr(st.Cond, s)
		a.resolveStmt(st.Then, s)
		if st.Else != nil {
			a.resolveStmt(st.Else, s)
		}
	case *ast.WhileStmt:
		a.resolveExpr(st.Cond, s)
		a.resolveStmt(st.Body, s)
	case *ast.ForStmt:
		loopScope := newScope(s)
		if st.Init != nil {
			a.resolveStmt(st.Init, loopScope)
		}
		if st.Cond != nil {
			a.resolveExpr(st.Cond, loopScope)
		}
		if st.Post != nil {
			a.resolveExpr(st.Post, loopScope)
		}
		a.resolveStmt(st.Body, loopScope)
	case *ast.ReturnStmt:
		if st.Value != nil {
			a.resolveExpr(st.Value, s)
		}
	}
}

func (a *Analyzer) resolveExpr(expr ast.Expr, s *scope) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral, *ast.SizeofExpr:
		// no names to resolve
	case *ast.DeclRefExpr:
		d := s.lookup(e.Name)
		if d == nil {
			a.errorf(e.Position, "undeclared identifier %q", e.Name)
			return
		}
		e.Decl = d
	case *ast.ParenExpr:
		a.resolveExpr(e.Sub, s)
	case *ast.CastExpr:
		a.resolveExpr(e.Sub, s)
	case *ast.UnaryExpr:
		a.resolveExpr(e.Operand, s)
	case *ast.BinaryExpr:
		a.resolveExpr(e.Left, s)
		a.resolveExpr(e.Right, s)
	case *ast.ArraySubscriptExpr:
		a.resolveExpr(e.Array, s)
		a.resolveExpr(e.Index, s)
	case *ast.CallExpr:
		for _, arg := range e.Args {
			a.resolveExpr(arg, s)
		}
		if kind, ok := builtinNames[e.Name]; ok {
			e.Builtin = kind
			return
		}
		callee, ok := a.funcs[e.Name]
		if !ok {
			a.errorf(e.Position, "call to undeclared function %q", e.Name)
			return
		}
		e.Callee = callee
	}
}

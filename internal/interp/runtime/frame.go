// Package runtime holds the per-call evaluation state: one Frame per
// activation record (globals, a function call, or — conceptually — the
// template every call starts from) and a Stack of them. It is a direct
// translation of the original interpreter's StackFrame (environment.hpp):
// a map from declaration identity to its current value, a map from
// expression identity to its last-computed value, a call-site marker used
// to propagate return values, and a "has this function already returned"
// flag.
package runtime

import (
	"fmt"

	"github.com/lucidc/cintp/internal/ast"
)

// Frame is one activation record: the global scope, or a single function
// call. Declarations and expressions are keyed by their own pointer
// identity (§3), so no separate symbol table or node-id scheme is needed.
type Frame struct {
	vars  map[*ast.VarDecl]int64
	exprs map[ast.Expr]int64

	pc       ast.Expr // the call expression this frame is mid-evaluating, for return-value propagation
	returned bool
}

// NewFrame creates an empty Frame.
func NewFrame() *Frame {
	return &Frame{
		vars:  make(map[*ast.VarDecl]int64),
		exprs: make(map[ast.Expr]int64),
	}
}

// Bind sets decl's current value in this frame.
func (f *Frame) Bind(decl *ast.VarDecl, val int64) {
	f.vars[decl] = val
}

// Value returns decl's current value. It panics if decl has never been
// bound in this frame — the semantic pass guarantees every DeclRefExpr
// that reaches the evaluator names a declaration that was bound when its
// owning scope was entered.
func (f *Frame) Value(decl *ast.VarDecl) int64 {
	val, ok := f.vars[decl]
	if !ok {
		panic(fmt.Sprintf("runtime: declaration %q has no binding in this frame", decl.Name))
	}
	return val
}

// HasBinding reports whether decl has a value bound in this frame.
func (f *Frame) HasBinding(decl *ast.VarDecl) bool {
	_, ok := f.vars[decl]
	return ok
}

// BindExpr records the value an already-evaluated expression node
// produced, so that re-reading it (e.g. chained assignment, or a
// DeclRefExpr used as a call argument) never re-evaluates it.
func (f *Frame) BindExpr(e ast.Expr, val int64) {
	f.exprs[e] = val
}

// ExprValue returns an expression's previously recorded value.
func (f *Frame) ExprValue(e ast.Expr) int64 {
	val, ok := f.exprs[e]
	if !ok {
		panic("runtime: expression has no recorded value in this frame")
	}
	return val
}

// SetPC records the call-site expression about to be entered, so that the
// callee's return statement knows which expression in the caller's frame
// to bind the result to.
func (f *Frame) SetPC(call ast.Expr) { f.pc = call }

// PC returns the call-site expression most recently recorded with SetPC.
func (f *Frame) PC() ast.Expr { return f.pc }

// SetReturned marks whether this frame's function has executed a return
// statement; the walker consults this after every statement to short-
// circuit the rest of the function body (§4.4).
func (f *Frame) SetReturned(v bool) { f.returned = v }

// Returned reports whether this frame's function has already returned.
func (f *Frame) Returned() bool { return f.returned }

// Clone produces a new Frame whose variable bindings are a snapshot copy of
// this one's. Expression bindings, the call-site marker and the returned
// flag are NOT copied — a fresh call frame tracks its own statements from
// scratch. This is how each call starts from the globals template
// (§4.3.3's "globals-template" protocol).
func (f *Frame) Clone() *Frame {
	clone := NewFrame()
	for d, v := range f.vars {
		clone.vars[d] = v
	}
	return clone
}

// Range calls yield once for every currently bound declaration, in
// unspecified order. Used by the call-return protocol to copy updated
// globals back into the global frame and propagate them to the caller.
func (f *Frame) Range(yield func(decl *ast.VarDecl, val int64)) {
	for d, v := range f.vars {
		yield(d, v)
	}
}

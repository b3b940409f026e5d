package evaluator

import (
	"fmt"

	"github.com/lucidc/cintp/internal/ast"
	"github.com/lucidc/cintp/internal/interp/runtime"
)

// Walker evaluates a resolved Program by recursively visiting its AST, one
// method per node kind, exactly as §4.3's node-kind table prescribes.
// Every recursive Eval call both computes a node's value and records it
// against that node's own pointer identity in the current frame (the
// "expression cache" the reference interpreter's bindStmt/getStmtVal pair
// implements) — later reads of the *same* node, such as an assignment's
// left-hand-side sub-expressions being read back while the store target
// is located, never recompute it.
type Walker struct {
	env *Environment
}

// NewWalker creates a Walker bound to env.
func NewWalker(env *Environment) *Walker {
	return &Walker{env: env}
}

// Run pushes the global frame, evaluates mainFn's body directly inside it
// (mirroring the reference driver, which visits main's body without ever
// routing the entry point through call/afterCall). It returns only an
// error: a return statement at stack depth 1 delivers its value nowhere,
// so mainFn's return value is discarded.
func (w *Walker) Run(mainFn *ast.FunctionDecl) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RuntimeError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()

	if pushErr := w.env.Stack.Push(mainFn.Name, mainFn.Position, w.env.Globals().Clone()); pushErr != nil {
		return pushErr
	}
	w.execBlock(mainFn.Body)
	return nil
}

// Eval computes expr's value under the current frame, dispatching by node
// kind. Every branch ends by caching its result, except user function
// calls, whose value (if any) is written directly into the caller's frame
// by the callee's own return statement (see evalCall).
func (w *Walker) Eval(expr ast.Expr) int64 {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return w.cache(e, e.Value)

	case *ast.DeclRefExpr:
		return w.cache(e, w.env.Stack.Top().Value(e.Decl))

	case *ast.ParenExpr:
		return w.cache(e, w.Eval(e.Sub))

	case *ast.CastExpr:
		return w.cache(e, w.Eval(e.Sub))

	case *ast.SizeofExpr:
		size := int64(4)
		if e.OperandType.IsPointer() {
			size = 8
		}
		return w.cache(e, size)

	case *ast.ArraySubscriptExpr:
		base := w.Eval(e.Array)
		idx := w.Eval(e.Index)
		return w.cache(e, w.env.Heap.Load(base+idx))

	case *ast.UnaryExpr:
		return w.evalUnary(e)

	case *ast.BinaryExpr:
		return w.evalBinary(e)

	case *ast.CallExpr:
		return w.evalCall(e)
	}
	panic(fmt.Sprintf("evaluator: unhandled expression type %T", expr))
}

func (w *Walker) cache(e ast.Expr, val int64) int64 {
	w.env.Stack.Top().BindExpr(e, val)
	return val
}

func (w *Walker) evalUnary(u *ast.UnaryExpr) int64 {
	switch u.Op {
	case ast.UnaryPlus:
		return w.cache(u, w.Eval(u.Operand))
	case ast.UnaryMinus:
		return w.cache(u, -w.Eval(u.Operand))
	case ast.UnaryNot:
		v := w.Eval(u.Operand)
		return w.cache(u, boolToInt(v == 0))
	case ast.UnaryDeref:
		addr := w.Eval(u.Operand)
		return w.cache(u, w.env.Heap.Load(addr))
	case ast.UnaryAddr:
		val := w.Eval(u.Operand)
		return w.cache(u, w.env.Heap.AddressOf(u.Operand, val))
	case ast.UnaryPostInc, ast.UnaryPostDec, ast.UnaryPreInc, ast.UnaryPreDec:
		return w.evalIncDec(u)
	}
	panic(fmt.Sprintf("evaluator: unhandled unary operator %v", u.Op))
}

func (w *Walker) evalIncDec(u *ast.UnaryExpr) int64 {
	val := w.Eval(u.Operand)
	var result, next int64
	switch u.Op {
	case ast.UnaryPostInc:
		result, next = val, val+1
	case ast.UnaryPostDec:
		result, next = val, val-1
	case ast.UnaryPreInc:
		result, next = val+1, val+1
	case ast.UnaryPreDec:
		result, next = val-1, val-1
	}
	if ref, ok := u.Operand.(*ast.DeclRefExpr); ok {
		w.env.Stack.Top().Bind(ref.Decl, next)
	}
	return w.cache(u, result)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (w *Walker) evalBinary(b *ast.BinaryExpr) int64 {
	// Both operands are always evaluated before the operator is applied,
	// even for && and || — the reference interpreter's child-visitation
	// order makes its logical operators non-short-circuiting, and this
	// evaluator matches that rather than silently "fixing" it.
	left := w.Eval(b.Left)
	right := w.Eval(b.Right)

	if b.Op == ast.BinAssign {
		w.assign(b.Left, right)
		return w.cache(b, right)
	}

	var result int64
	switch b.Op {
	case ast.BinAdd:
		result = left + right
	case ast.BinSub:
		result = left - right
	case ast.BinMul:
		result = left * right
	case ast.BinDiv:
		if right == 0 {
			panic(&RuntimeError{Pos: b.Position, Message: "division by zero"})
		}
		result = left / right
	case ast.BinMod:
		if right == 0 {
			panic(&RuntimeError{Pos: b.Position, Message: "modulo by zero"})
		}
		result = left % right
	case ast.BinLT:
		result = boolToInt(left < right)
	case ast.BinGT:
		result = boolToInt(left > right)
	case ast.BinLE:
		result = boolToInt(left <= right)
	case ast.BinGE:
		result = boolToInt(left >= right)
	case ast.BinEQ:
		result = boolToInt(left == right)
	case ast.BinNE:
		result = boolToInt(left != right)
	case ast.BinLAnd:
		result = boolToInt(left != 0 && right != 0)
	case ast.BinLOr:
		result = boolToInt(left != 0 || right != 0)
	default:
		panic(fmt.Sprintf("evaluator: unhandled binary operator %v", b.Op))
	}
	return w.cache(b, result)
}

// assign dispatches on the assignment target's shape, mirroring binop's
// LHS dispatch in the reference interpreter exactly (§4.3.2): a dereference
// writes through the heap and, if the pointer was taken from a named
// variable, mirrors the write into that variable's own binding; an array
// subscript writes its heap cell directly; anything else must be a plain
// variable reference.
func (w *Walker) assign(target ast.Expr, val int64) {
	for {
		if p, ok := target.(*ast.ParenExpr); ok {
			target = p.Sub
			continue
		}
		break
	}

	switch t := target.(type) {
	case *ast.UnaryExpr:
		addr := w.env.Stack.Top().ExprValue(t.Operand)
		w.env.Heap.Store(addr, val)
		if owner, ok := w.env.Heap.NamedVariableExpr(addr); ok {
			if ref, ok := owner.(*ast.DeclRefExpr); ok {
				w.env.Stack.Top().Bind(ref.Decl, val)
			}
		}
	case *ast.ArraySubscriptExpr:
		base := w.env.Stack.Top().ExprValue(t.Array)
		idx := w.env.Stack.Top().ExprValue(t.Index)
		w.env.Heap.Store(base+idx, val)
	case *ast.DeclRefExpr:
		w.env.Stack.Top().Bind(t.Decl, val)
	default:
		panic(fmt.Sprintf("evaluator: unsupported assignment target %T", target))
	}
}

func (w *Walker) evalCall(call *ast.CallExpr) int64 {
	args := make([]int64, len(call.Args))
	for i, a := range call.Args {
		args[i] = w.Eval(a)
	}

	if call.Builtin != ast.BuiltinNone {
		return w.evalBuiltin(call, args)
	}

	caller := w.env.Stack.Top()
	caller.SetPC(call)

	if w.env.trace != nil {
		fmt.Fprintf(w.env.trace, "[trace] call %s\n", call.Callee.Name)
	}

	callFrame := w.env.Globals().Clone()
	for i, p := range call.Callee.Params {
		callFrame.Bind(p, args[i])
	}

	if err := w.env.Stack.Push(call.Callee.Name, call.Position, callFrame); err != nil {
		panic(&RuntimeError{Pos: call.Position, Message: err.Error()})
	}

	if call.Callee.Body != nil {
		w.execBlock(call.Callee.Body)
	}

	w.afterCall(callFrame, caller)
	w.env.Stack.Pop()

	val, _ := tryExprValue(caller, call)
	return val
}

// afterCall implements the globals-merge-back protocol (§4.3.3): any
// global touched inside the call is copied back into the global template,
// and the (possibly now-stale) full set of globals is then propagated into
// the caller's own frame, so a callee's writes to globals are visible to
// the caller immediately after the call returns.
func (w *Walker) afterCall(callFrame, caller *runtime.Frame) {
	globals := w.env.Globals()
	callFrame.Range(func(decl *ast.VarDecl, val int64) {
		if globals.HasBinding(decl) {
			globals.Bind(decl, val)
		}
	})
	globals.Range(func(decl *ast.VarDecl, val int64) {
		caller.Bind(decl, val)
	})
}

func (w *Walker) evalBuiltin(call *ast.CallExpr, args []int64) int64 {
	switch call.Builtin {
	case ast.BuiltinGet:
		fmt.Fprint(w.env.prompt, "Please input an integer: ")
		var v int64
		if _, err := fmt.Fscan(w.env.stdin, &v); err != nil {
			v = 0
		}
		return w.cache(call, v)
	case ast.BuiltinPrint:
		fmt.Fprintf(w.env.stdout, "%d\n", args[0])
		if w.env.trace != nil {
			fmt.Fprintf(w.env.trace, "[trace] print %d\n", args[0])
		}
		return w.cache(call, args[0])
	case ast.BuiltinMalloc:
		cells := args[0] / 4
		addr := w.env.Heap.Allocate(cells)
		return w.cache(call, addr)
	case ast.BuiltinFree:
		w.env.Heap.Free(args[0])
		return w.cache(call, 0)
	}
	panic(fmt.Sprintf("evaluator: unhandled builtin %v", call.Builtin))
}

// execBlock runs every statement in b in order, stopping as soon as the
// current frame's function has returned — checked before *every* statement,
// including each loop iteration, so a return nested inside a while/for body
// unwinds immediately rather than leaving the loop to spin on stale state.
func (w *Walker) execBlock(b *ast.BlockStmt) {
	for _, stmt := range b.Stmts {
		if w.env.Stack.Top().Returned() {
			return
		}
		w.exec(stmt)
	}
}

func (w *Walker) exec(stmt ast.Stmt) {
	if w.env.Stack.Top().Returned() {
		return
	}

	switch s := stmt.(type) {
	case *ast.BlockStmt:
		w.execBlock(s)

	case *ast.DeclStmt:
		for _, d := range s.Decls {
			w.declare(d)
		}

	case *ast.ExprStmt:
		w.Eval(s.X)

	case *ast.IfStmt:
		if w.Eval(s.Cond) != 0 {
			w.exec(s.Then)
		} else if s.Else != nil {
			w.exec(s.Else)
		}

	case *ast.WhileStmt:
		for w.Eval(s.Cond) != 0 {
			w.exec(s.Body)
			if w.env.Stack.Top().Returned() {
				break
			}
		}

	case *ast.ForStmt:
		if s.Init != nil {
			w.exec(s.Init)
		}
		for s.Cond == nil || w.Eval(s.Cond) != 0 {
			w.exec(s.Body)
			if w.env.Stack.Top().Returned() {
				break
			}
			if s.Post != nil {
				w.Eval(s.Post)
			}
		}

	case *ast.ReturnStmt:
		var val int64
		if s.Value != nil {
			val = w.Eval(s.Value)
		}
		if w.env.Stack.Depth() >= 2 {
			caller := w.env.Stack.Caller()
			if pc := caller.PC(); pc != nil {
				caller.BindExpr(pc, val)
			}
		}
		w.env.Stack.Top().SetReturned(true)

	default:
		panic(fmt.Sprintf("evaluator: unhandled statement type %T", stmt))
	}
}

func (w *Walker) declare(d *ast.VarDecl) {
	if d.Type.IsArray() {
		addr := w.env.Heap.Allocate(int64(d.Type.Len))
		w.env.Stack.Top().Bind(d, addr)
		return
	}
	var val int64
	if d.Init != nil {
		val = w.Eval(d.Init)
	}
	w.env.Stack.Top().Bind(d, val)
}

func tryExprValue(f *runtime.Frame, e ast.Expr) (val int64, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return f.ExprValue(e), true
}

// Package evaluator is the tree-walking interpreter itself: Environment
// owns the heap, the global scope and the I/O streams of the four
// built-ins, and
// Walker dispatches one method per AST node kind over it. Together they
// are a direct translation of the original Clang-backed interpreter's
// Environment/InterpreterVisitor pair (environment.hpp, cinterpreter.cpp),
// adapted from visiting a live Clang AST to walking the AST this module
// parses itself.
package evaluator

import (
	"bufio"
	"fmt"
	"io"

	"github.com/lucidc/cintp/internal/ast"
	"github.com/lucidc/cintp/internal/interp/heap"
	"github.com/lucidc/cintp/internal/interp/runtime"
	"github.com/lucidc/cintp/internal/lexer"
)

// RuntimeError is a position-carrying error raised while evaluating an
// already type-checked program — a failed precondition (division by zero,
// recursion past the configured limit) rather than a parse or semantic
// mistake.
type RuntimeError struct {
	Pos     lexer.Position
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: runtime error: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Environment holds everything evaluation needs beyond the AST itself: the
// virtual heap, the call stack (whose bottom frame is the global scope),
// and the I/O streams the four built-ins read and write.
type Environment struct {
	Heap  *heap.Heap
	Stack *runtime.Stack

	globals *runtime.Frame

	stdin  *bufio.Reader
	stdout io.Writer // where print() writes: stderr in the reference driver
	prompt io.Writer // where get()'s prompt is written
	trace  io.Writer // non-nil enables --trace's call/print echo, per §10.4
}

// Option configures an Environment.
type Option func(*Environment)

// WithMaxCallDepth overrides the call stack's recursion limit.
func WithMaxCallDepth(depth int) Option {
	return func(e *Environment) { e.Stack = runtime.NewStack(depth) }
}

// WithStdin overrides the reader get() consumes integers from.
func WithStdin(r io.Reader) Option {
	return func(e *Environment) { e.stdin = bufio.NewReader(r) }
}

// WithStdout overrides the writer print() writes decimal values to.
func WithStdout(w io.Writer) Option {
	return func(e *Environment) { e.stdout = w }
}

// WithPrompt overrides the writer get()'s prompt is written to.
func WithPrompt(w io.Writer) Option {
	return func(e *Environment) { e.prompt = w }
}

// WithTrace enables the --trace echo (function entry and print calls) on
// w. Tracing is off (nil) by default.
func WithTrace(w io.Writer) Option {
	return func(e *Environment) { e.trace = w }
}

// NewEnvironment builds an Environment and seeds its global scope from
// prog's top-level variable declarations (§4.3.1's globals-template setup,
// the Go analogue of Environment::init in the reference implementation).
func NewEnvironment(prog *ast.Program, opts ...Option) *Environment {
	env := &Environment{
		Heap:    heap.New(),
		Stack:   runtime.NewStack(0),
		globals: runtime.NewFrame(),
		stdin:   bufio.NewReader(noReader{}),
		stdout:  io.Discard,
		prompt:  io.Discard,
	}
	for _, opt := range opts {
		opt(env)
	}
	env.seedGlobals(prog)
	return env
}

type noReader struct{}

func (noReader) Read([]byte) (int, error) { return 0, io.EOF }

func (env *Environment) seedGlobals(prog *ast.Program) {
	for _, d := range prog.Decls {
		v, ok := d.(*ast.VarDecl)
		if !ok {
			continue
		}
		if v.Type.IsArray() {
			addr := env.Heap.Allocate(int64(v.Type.Len))
			env.globals.Bind(v, addr)
			continue
		}
		var val int64
		if v.Init != nil {
			val = evalConstant(v.Init)
		}
		env.globals.Bind(v, val)
	}
}

// evalConstant evaluates the restricted constant-expression grammar sema
// accepts for global initializers (an integer literal, optionally wrapped
// in parentheses and unary + or -).
func evalConstant(e ast.Expr) int64 {
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		return v.Value
	case *ast.ParenExpr:
		return evalConstant(v.Sub)
	case *ast.UnaryExpr:
		if v.Op == ast.UnaryMinus {
			return -evalConstant(v.Operand)
		}
		return evalConstant(v.Operand)
	default:
		panic("evaluator: non-constant global initializer reached the evaluator")
	}
}

// Globals exposes the global frame for Walker's call protocol.
func (env *Environment) Globals() *runtime.Frame { return env.globals }

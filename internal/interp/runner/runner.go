// Package runner is the Driver §6 describes: it wires the lexer, parser,
// semantic analyzer and evaluator together over one source file, exactly
// the way the teacher's cmd/dwscript/cmd/run.go wires its own lexer,
// parser, semantic.Analyzer and interp.Interpreter — except that here the
// wiring itself, not a cobra command, is the reusable unit, so both the CLI
// and tests can drive it without going through os.Args.
package runner

import (
	"fmt"
	"io"
	"os"

	"github.com/lucidc/cintp/internal/ast"
	cerrors "github.com/lucidc/cintp/internal/errors"
	"github.com/lucidc/cintp/internal/interp/evaluator"
	"github.com/lucidc/cintp/internal/lexer"
	"github.com/lucidc/cintp/internal/parser"
	"github.com/lucidc/cintp/internal/sema"
)

// defaultMaxCallDepth is §10.4's recursion guard, distinct from the "no
// undefined-behavior reporting" non-goal: it exists purely to turn a
// runaway recursive program into a diagnosable error instead of however
// the Go runtime happens to react to an unbounded stack of frame slices.
const defaultMaxCallDepth = 100000

// Options configures one Run. The zero value is usable: it runs silently
// (no trace, no AST dump), reads get() from an always-EOF source, and
// discards print()'s output along with every diagnostic.
type Options struct {
	DumpAST      bool
	Trace        bool
	MaxCallDepth int

	Stdin  io.Reader // source for get()
	Stderr io.Writer // print() output, trace echo and diagnostics, per §6
	Prompt io.Writer // get()'s prompt
}

func (o Options) stderr() io.Writer {
	if o.Stderr == nil {
		return io.Discard
	}
	return o.Stderr
}

func (o Options) stdin() io.Reader {
	if o.Stdin == nil {
		return new(noInput)
	}
	return o.Stdin
}

func (o Options) prompt() io.Writer {
	if o.Prompt == nil {
		return io.Discard
	}
	return o.Prompt
}

type noInput struct{}

func (*noInput) Read([]byte) (int, error) { return 0, io.EOF }

// Run parses source (attributed to filename in diagnostics), resolves it,
// and evaluates its main function. Parse errors, semantic errors and
// runtime errors are all formatted and written to opts.Stderr before Run
// returns a non-nil error; a successful evaluation returns nil, matching
// §6's "exit code 0 on success" — converting that into a process exit code
// is the caller's job, not this package's.
func Run(filename, source string, opts Options) error {
	prog, err := parse(source, filename, opts.stderr())
	if err != nil {
		return err
	}

	analyzer := sema.New(source, filename)
	if err := analyzer.Analyze(prog); err != nil {
		fmt.Fprintln(opts.stderr(), err)
		return err
	}

	if opts.DumpAST {
		fmt.Fprintln(opts.stderr(), "AST:")
		fmt.Fprintln(opts.stderr(), prog.String())
		fmt.Fprintln(opts.stderr())
	}

	maxDepth := opts.MaxCallDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxCallDepth
	}

	envOpts := []evaluator.Option{
		evaluator.WithMaxCallDepth(maxDepth),
		evaluator.WithStdin(opts.stdin()),
		evaluator.WithStdout(opts.stderr()),
		evaluator.WithPrompt(opts.prompt()),
	}
	if opts.Trace {
		envOpts = append(envOpts, evaluator.WithTrace(opts.stderr()))
	}

	env := evaluator.NewEnvironment(prog, envOpts...)
	walker := evaluator.NewWalker(env)

	if err := walker.Run(analyzer.Main()); err != nil {
		fmt.Fprintln(opts.stderr(), env.Stack.FormatError(err.Error()))
		return err
	}
	return nil
}

// parse runs the lexer and parser, reporting a parse error (if any) as a
// CompilerError with source context, via errors.NewCompilerError and
// FormatWithContext.
func parse(source, filename string, stderr io.Writer) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	prog, err := p.ParseProgram()
	if err == nil {
		return prog, nil
	}

	pe, ok := err.(*parser.ParseError)
	if !ok {
		fmt.Fprintln(stderr, err)
		return nil, err
	}
	ce := cerrors.NewCompilerError(pe.Pos, pe.Message, source, filename)
	fmt.Fprint(stderr, ce.FormatWithContext(2, false))
	fmt.Fprintln(stderr)
	return nil, err
}

// RunFile is the convenience entry point cmd/cintp uses directly: it reads
// filename, matching §6's "read the entire file as UTF-8 text" step, and
// reports the missing-argument case the same way the reference driver's
// main() does if filename is empty.
func RunFile(filename string, opts Options) error {
	if filename == "" {
		fmt.Fprintln(opts.stderr(), "Please input .c file")
		return fmt.Errorf("no input file given")
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(opts.stderr(), "failed to read %s: %v\n", filename, err)
		return err
	}
	return Run(filename, string(content), opts)
}

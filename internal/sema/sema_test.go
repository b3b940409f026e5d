package sema

import (
	"strings"
	"testing"

	"github.com/lucidc/cintp/internal/ast"
	"github.com/lucidc/cintp/internal/lexer"
	"github.com/lucidc/cintp/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}
	return prog
}

func TestResolvesRecursiveCallAndBuiltins(t *testing.T) {
	src := `
int fact(int n) {
    if (n <= 1) { return 1; }
    return n * fact(n - 1);
}

int main() {
    int r = fact(5);
    print(r);
    return 0;
}
`
	prog := mustParse(t, src)
	a := New(src, "test.c")
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	fact := prog.Decls[0].(*ast.FunctionDecl)
	recCall := fact.Body.Stmts[1].(*ast.ReturnStmt).Value.(*ast.BinaryExpr).Right.(*ast.CallExpr)
	if recCall.Callee != fact {
		t.Fatalf("expected recursive call to resolve to fact itself, got %v", recCall.Callee)
	}

	main := prog.Decls[1].(*ast.FunctionDecl)
	if a.Main() != main {
		t.Fatalf("expected Main() to return the main FunctionDecl")
	}

	printCall := main.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.CallExpr)
	if printCall.Builtin != ast.BuiltinPrint {
		t.Fatalf("expected print() to resolve as a builtin, got %v", printCall.Builtin)
	}
}

func TestRejectsUndeclaredIdentifier(t *testing.T) {
	prog := mustParse(t, `int main() { return x; }`)
	a := New("", "test.c")
	err := a.Analyze(prog)
	if err == nil || !strings.Contains(err.Error(), "undeclared identifier") {
		t.Fatalf("expected undeclared identifier error, got %v", err)
	}
}

func TestRejectsMissingMain(t *testing.T) {
	prog := mustParse(t, `int helper() { return 1; }`)
	a := New("", "test.c")
	err := a.Analyze(prog)
	if err == nil || !strings.Contains(err.Error(), "no main function") {
		t.Fatalf("expected missing main error, got %v", err)
	}
}

func TestRejectsNonConstantGlobalInit(t *testing.T) {
	prog := mustParse(t, `
int helper() { return 1; }
int g = helper();
int main() { return 0; }
`)
	a := New("", "test.c")
	err := a.Analyze(prog)
	if err == nil || !strings.Contains(err.Error(), "constant expression") {
		t.Fatalf("expected constant-expression error, got %v", err)
	}
}

func TestAllowsConstantGlobalInit(t *testing.T) {
	prog := mustParse(t, `
int g = -3;
int main() { return g; }
`)
	a := New("", "test.c")
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
}

func TestScopingShadowsInNestedBlocks(t *testing.T) {
	prog := mustParse(t, `
int main() {
    int x = 1;
    {
        int x = 2;
        print(x);
    }
    print(x);
    return 0;
}
`)
	a := New("", "test.c")
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	main := prog.Decls[0].(*ast.FunctionDecl)
	outerDecl := main.Body.Stmts[0].(*ast.DeclStmt).Decls[0]
	innerBlock := main.Body.Stmts[1].(*ast.BlockStmt)
	innerDecl := innerBlock.Stmts[0].(*ast.DeclStmt).Decls[0]
	innerPrintArg := innerBlock.Stmts[1].(*ast.ExprStmt).X.(*ast.CallExpr).Args[0].(*ast.DeclRefExpr)
	outerPrintArg := main.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.CallExpr).Args[0].(*ast.DeclRefExpr)

	if innerPrintArg.Decl != innerDecl {
		t.Fatalf("expected inner print(x) to resolve to the shadowing declaration")
	}
	if outerPrintArg.Decl != outerDecl {
		t.Fatalf("expected outer print(x) to resolve to the outer declaration")
	}
}

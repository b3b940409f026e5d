package parser

import (
	"testing"

	"github.com/lucidc/cintp/internal/ast"
	"github.com/lucidc/cintp/internal/lexer"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}
	return prog
}

func TestParsesFunctionWithRecursion(t *testing.T) {
	src := `
int fact(int n) {
    if (n <= 1) {
        return 1;
    } else {
        return n * fact(n - 1);
    }
}

int main() {
    int r = fact(5);
    print(r);
    return 0;
}
`
	prog := parseProgram(t, src)
	if len(prog.Decls) != 2 {
		t.Fatalf("expected 2 top-level decls, got %d", len(prog.Decls))
	}
	fact, ok := prog.Decls[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("decl 0 is not a FunctionDecl: %T", prog.Decls[0])
	}
	if fact.Name != "fact" || len(fact.Params) != 1 {
		t.Fatalf("unexpected fact signature: %+v", fact)
	}
	if !fact.ReturnType.IsInt() {
		t.Fatalf("expected int return type, got %s", fact.ReturnType)
	}

	main, ok := prog.Decls[1].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("decl 1 is not a FunctionDecl: %T", prog.Decls[1])
	}
	if len(main.Body.Stmts) != 3 {
		t.Fatalf("expected 3 statements in main, got %d", len(main.Body.Stmts))
	}
}

func TestParsesPointersAndArrays(t *testing.T) {
	src := `
void swap(int *a, int *b) {
    int t = *a;
    *a = *b;
    *b = t;
}

int main() {
    int A[3];
    A[0] = 1;
    int *p = &A[0];
    swap(&A[0], &A[1]);
    return 0;
}
`
	prog := parseProgram(t, src)
	swap := prog.Decls[0].(*ast.FunctionDecl)
	if len(swap.Params) != 2 || !swap.Params[0].Type.IsPointer() {
		t.Fatalf("expected two pointer params, got %+v", swap.Params)
	}

	main := prog.Decls[1].(*ast.FunctionDecl)
	declStmt, ok := main.Body.Stmts[0].(*ast.DeclStmt)
	if !ok {
		t.Fatalf("expected DeclStmt, got %T", main.Body.Stmts[0])
	}
	if !declStmt.Decls[0].Type.IsArray() || declStmt.Decls[0].Type.Len != 3 {
		t.Fatalf("expected int[3], got %s", declStmt.Decls[0].Type)
	}

	assign := main.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.BinaryExpr)
	if assign.Op != ast.BinAssign {
		t.Fatalf("expected assignment, got %s", assign.Op)
	}
	if _, ok := assign.Left.(*ast.ArraySubscriptExpr); !ok {
		t.Fatalf("expected array subscript LHS, got %T", assign.Left)
	}

	callStmt := main.Body.Stmts[3].(*ast.ExprStmt).X.(*ast.CallExpr)
	if callStmt.Name != "swap" || len(callStmt.Args) != 2 {
		t.Fatalf("unexpected call: %+v", callStmt)
	}
	if _, ok := callStmt.Args[0].(*ast.UnaryExpr); !ok {
		t.Fatalf("expected &-expr argument, got %T", callStmt.Args[0])
	}
}

func TestParsesCastsAndSizeof(t *testing.T) {
	src := `
int main() {
    int x = (int)sizeof(int*);
    int y = (int)(x + 1);
    return 0;
}
`
	prog := parseProgram(t, src)
	main := prog.Decls[0].(*ast.FunctionDecl)

	xDecl := main.Body.Stmts[0].(*ast.DeclStmt).Decls[0]
	cast, ok := xDecl.Init.(*ast.CastExpr)
	if !ok {
		t.Fatalf("expected CastExpr, got %T", xDecl.Init)
	}
	sz, ok := cast.Sub.(*ast.SizeofExpr)
	if !ok {
		t.Fatalf("expected SizeofExpr, got %T", cast.Sub)
	}
	if !sz.OperandType.IsPointer() {
		t.Fatalf("expected sizeof(int*), got sizeof(%s)", sz.OperandType)
	}

	yDecl := main.Body.Stmts[1].(*ast.DeclStmt).Decls[0]
	cast2 := yDecl.Init.(*ast.CastExpr)
	if _, ok := cast2.Sub.(*ast.ParenExpr); !ok {
		t.Fatalf("expected ParenExpr sub-expression, got %T", cast2.Sub)
	}
}

func TestParsesForLoopAndBuiltins(t *testing.T) {
	src := `
int main() {
    int sum = 0;
    for (int i = 0; i < 10; i = i + 1) {
        sum = sum + i;
    }
    print(sum);
    int *p = malloc(4);
    free(p);
    int v = get();
    return sum;
}
`
	prog := parseProgram(t, src)
	main := prog.Decls[0].(*ast.FunctionDecl)

	forStmt, ok := main.Body.Stmts[1].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected ForStmt, got %T", main.Body.Stmts[1])
	}
	if forStmt.Init == nil || forStmt.Cond == nil || forStmt.Post == nil {
		t.Fatalf("expected all three for-clauses present: %+v", forStmt)
	}

	printCall := main.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.CallExpr)
	if printCall.Builtin != ast.BuiltinPrint {
		t.Fatalf("expected print to resolve as builtin, got %v", printCall.Builtin)
	}

	mallocDecl := main.Body.Stmts[3].(*ast.DeclStmt).Decls[0]
	mallocCall := mallocDecl.Init.(*ast.CallExpr)
	if mallocCall.Builtin != ast.BuiltinMalloc {
		t.Fatalf("expected malloc to resolve as builtin, got %v", mallocCall.Builtin)
	}

	freeCall := main.Body.Stmts[4].(*ast.ExprStmt).X.(*ast.CallExpr)
	if freeCall.Builtin != ast.BuiltinFree {
		t.Fatalf("expected free to resolve as builtin, got %v", freeCall.Builtin)
	}

	getDecl := main.Body.Stmts[5].(*ast.DeclStmt).Decls[0]
	getCall := getDecl.Init.(*ast.CallExpr)
	if getCall.Builtin != ast.BuiltinGet {
		t.Fatalf("expected get to resolve as builtin, got %v", getCall.Builtin)
	}
}

func TestRejectsMalformedInput(t *testing.T) {
	p := New(lexer.New("int main( {"))
	if _, err := p.ParseProgram(); err == nil {
		t.Fatalf("expected a parse error for malformed parameter list")
	}
}

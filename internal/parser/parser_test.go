package parser

import (
	"strings"
	"testing"

	"github.com/UpperCi/buzz/internal/ast"
	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/symbols"
	"github.com/UpperCi/buzz/internal/types"
)

// parseSource is the harness every scenario test shares: a fresh
// registry/symbol table per parse, exactly as a standalone compilation
// root would get (spec §5 "Shared resources" only applies across a
// single root's recursive imports).
func parseSource(t *testing.T, src string) (*ast.Program, []*ParserError) {
	t.Helper()
	registry := types.NewRegistry()
	symTable := symbols.NewTable()
	program, errs := Parse(lexer.New(src), "<test>", false, registry, symTable)
	return program, errs
}

// Scenario 1 (spec §8): a recursive function resolves through its own
// pre-registered placeholder.
func TestRecursiveFunction(t *testing.T) {
	src := `fun fact(num n) > num { if (n == 0) { return 1; } return n * fact(n - 1); }`
	program, errs := parseSource(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	decl, ok := program.Statements[0].(*ast.FunDeclaration)
	if !ok {
		t.Fatalf("expected *ast.FunDeclaration, got %T", program.Statements[0])
	}
	if got := decl.Fn.GetType().Canonical(); got != "Functionfact(num) > num" {
		t.Errorf("fact's type = %q", got)
	}
}

// Scenario 2 (spec §8): a forward-referenced object resolves once its
// declaration completes, and a function declared before it sees its
// return type flip from a placeholder to ObjectInstance(Point).
func TestForwardReferencedObject(t *testing.T) {
	src := `fun make() > Point { return Point{ x = 0, y = 0 }; } object Point { num x, num y, }`
	program, errs := parseSource(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	decl, ok := program.Statements[0].(*ast.FunDeclaration)
	if !ok {
		t.Fatalf("expected *ast.FunDeclaration, got %T", program.Statements[0])
	}
	returnType := decl.Fn.GetType().Return
	if returnType.Kind != types.KindObjectInstance {
		t.Fatalf("make()'s return type = %s, want ObjectInstance", returnType.Kind)
	}
	if returnType.Of.Name != "Point" {
		t.Errorf("make()'s return instance is of %q, want Point", returnType.Of.Name)
	}
}

// Scenario 3 (spec §8): a member access through a forward-referenced
// type is only known to be wrong once the object declaration arrives;
// the error surfaces at that point, pinned to the original `.missing`
// use site rather than the object's declaration.
func TestUnknownMemberThroughChain(t *testing.T) {
	src := `fun use(Unknown u) > void { u.missing; } object Unknown { str field, }`
	_, errs := parseSource(t, src)
	if len(errs) == 0 {
		t.Fatal("expected an unknown-member error, got none")
	}
	found := false
	for _, e := range errs {
		if e.Code == ErrUnknownName {
			found = true
		}
	}
	if !found {
		t.Errorf("no %s among errors: %v", ErrUnknownName, errs)
	}
}

// Scenario 4 (spec §8): import with prefix and selective re-export.
func TestImportWithPrefix(t *testing.T) {
	registry := types.NewRegistry()
	symTable := symbols.NewTable()

	aSrc := `export fun hello() > void {}`
	_, errs := Parse(lexer.New(aSrc), "a.buzz", true, registry, symTable)
	if len(errs) != 0 {
		t.Fatalf("parsing a.buzz: %v", errs)
	}

	// mergeImportedGlobals is exercised indirectly by loadImport in the
	// real `import` statement path; file resolution is not tested here,
	// only the merge semantics it implements once globals already exist
	// from a's parse.
	globals := symTable.Globals()
	if len(globals) != 1 {
		t.Fatalf("expected 1 global from a.buzz, got %d", len(globals))
	}
	if !globals[0].Exported {
		t.Fatalf("hello should be exported")
	}

	// Apply the merge rule directly (same code path loadImport calls).
	p := &Parser{registry: registry, symbols: symTable}
	if err := p.mergeImportedGlobals(0, "A", nil); err != nil {
		t.Fatalf("mergeImportedGlobals: %v", err)
	}
	if globals[0].Prefix != "A" {
		t.Errorf("prefix = %q, want A", globals[0].Prefix)
	}
	if globals[0].Hidden {
		t.Errorf("hello should remain visible after merge")
	}
	idx, found := symTable.ResolveGlobal("A", "hello")
	if !found || idx != 0 {
		t.Errorf("ResolveGlobal(A, hello) = (%d, %v), want (0, true)", idx, found)
	}
}

// Scenario 5 (spec §8): subscripting a placeholder records a Subscript
// relation that resolves once the aliased list type is declared.
func TestSubscriptOnPlaceholder(t *testing.T) {
	src := `fun f(X xs) > void { xs[0] + 1; } [num] X;`
	_, errs := parseSource(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

// Scenario 6 (spec §8, "dumping ast to json"): the root is a Program
// node, not a Function; `main` parses as a ScriptEntryPoint Function,
// and the top-level VarDeclaration's type_def starts "str".
func TestJSONASTRoundTrip(t *testing.T) {
	src := `str yo = "hello"; fun main([str] args) > num { print("hello world"); }`
	program, errs := parseSource(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(program.Statements))
	}

	varDecl, ok := program.Statements[0].(*ast.VarDeclaration)
	if !ok {
		t.Fatalf("statement 0 = %T, want *ast.VarDeclaration", program.Statements[0])
	}
	dump := varDecl.Dump()
	if dump["node"] != "VarDeclaration" {
		t.Errorf(`dump["node"] = %v, want "VarDeclaration"`, dump["node"])
	}
	if typeDef, _ := dump["type_def"].(string); !strings.HasPrefix(typeDef, "str") {
		t.Errorf(`dump["type_def"] = %v, want prefix "str"`, dump["type_def"])
	}

	funDecl, ok := program.Statements[1].(*ast.FunDeclaration)
	if !ok {
		t.Fatalf("statement 1 = %T, want *ast.FunDeclaration", program.Statements[1])
	}
	if funDecl.Fn.Kind != types.FuncScriptEntryPoint {
		t.Errorf("main's kind = %s, want ScriptEntryPoint", funDecl.Fn.Kind)
	}

	b, err := ast.DumpJSON(program, false)
	if err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}
	if !strings.Contains(string(b), `"node":"Program"`) {
		t.Errorf("JSON dump missing root Program node: %s", b)
	}
}

// spec §4.4: `catch { closure, … }` is a single `catch` keyword followed
// by a brace-enclosed, comma-separated list of one or more closures.
func TestInlineCatchClosureList(t *testing.T) {
	src := `fun risky() > num { return 1; } risky() catch { print("a"); }, { print("b"); };`
	program, errs := parseSource(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	exprStmt, ok := program.Statements[1].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement 1 = %T, want *ast.ExpressionStatement", program.Statements[1])
	}
	call, ok := exprStmt.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expression = %T, want *ast.Call", exprStmt.Expr)
	}
	if len(call.Catches) != 2 {
		t.Fatalf("expected 2 catch closures, got %d", len(call.Catches))
	}
	for i, c := range call.Catches {
		if c.Fn.Kind != types.FuncCatch {
			t.Errorf("catch[%d].Fn.Kind = %s, want Catch", i, c.Fn.Kind)
		}
	}
}

// spec §4.4: the `catch <expr>` shorthand is a single bare-expression
// handler with no braces.
func TestInlineCatchBareExpr(t *testing.T) {
	src := `fun risky() > num { return 1; } risky() catch print("fallback");`
	program, errs := parseSource(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	exprStmt, ok := program.Statements[1].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement 1 = %T, want *ast.ExpressionStatement", program.Statements[1])
	}
	call, ok := exprStmt.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expression = %T, want *ast.Call", exprStmt.Expr)
	}
	if len(call.Catches) != 1 {
		t.Fatalf("expected 1 catch closure, got %d", len(call.Catches))
	}
}

// spec §7: more than 255 catch closures in one clause is an arity error.
func TestTooManyCatchClosuresIsArityError(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`fun risky() > num { return 1; } risky() catch { `)
	for i := 0; i < 256; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(`{ 1; }`)
	}
	sb.WriteString(` };`)

	_, errs := parseSource(t, sb.String())
	found := false
	for _, e := range errs {
		if e.Code == ErrArity {
			found = true
		}
	}
	if !found {
		t.Errorf("no %s among errors: %v", ErrArity, errs)
	}
}

func TestDuplicateGlobalIsReported(t *testing.T) {
	src := `var num x = 1; var num x = 2;`
	_, errs := parseSource(t, src)
	if len(errs) == 0 {
		t.Fatal("expected a duplicate-declaration error")
	}
	found := false
	for _, e := range errs {
		if e.Code == ErrDuplicateName {
			found = true
		}
	}
	if !found {
		t.Errorf("no %s among errors: %v", ErrDuplicateName, errs)
	}
}

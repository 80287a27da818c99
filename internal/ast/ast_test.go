package ast

import (
	"encoding/json"
	"testing"

	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/types"
)

func tok(kind lexer.TokenType, lexeme string) lexer.Token {
	return lexer.Token{Kind: kind, Lexeme: lexeme}
}

func TestProgramString(t *testing.T) {
	p := &Program{Statements: []Statement{
		&ExpressionStatement{StmtBase: StmtBase{Token: tok(lexer.IDENT, "x")}, Expr: &NamedVariable{ExprBase: ExprBase{Token: tok(lexer.IDENT, "x")}, Name: "x"}},
	}}
	if got, want := p.String(), "x"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNamedVariableDump(t *testing.T) {
	r := types.NewRegistry()
	n := &NamedVariable{ExprBase: ExprBase{Token: tok(lexer.IDENT, "yo"), Type: r.String()}, Name: "yo"}
	d := n.Dump()
	if d["node"] != "NamedVariable" || d["identifier"] != "yo" || d["type_def"] != "str" {
		t.Fatalf("unexpected dump: %#v", d)
	}
}

func TestBinaryExpressionString(t *testing.T) {
	r := types.NewRegistry()
	left := &Number{ExprBase: ExprBase{Token: tok(lexer.NUMBER, "1"), Type: r.Number()}, Value: 1}
	right := &Number{ExprBase: ExprBase{Token: tok(lexer.NUMBER, "2"), Type: r.Number()}, Value: 2}
	b := &Binary{Left: left, Operator: "+", Right: right, ExprBase: ExprBase{Type: r.Number()}}
	if got, want := b.String(), "(1 + 2)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestVarDeclarationDumpHasTypeDefAndConstant(t *testing.T) {
	r := types.NewRegistry()
	v := &VarDeclaration{Name: "yo", Constant: false, Type: r.String(), Initializer: &StringLiteral{Value: "hello", ExprBase: ExprBase{Type: r.String()}}}
	d := v.Dump()
	if d["node"] != "VarDeclaration" || d["identifier"] != "yo" || d["constant"] != false {
		t.Fatalf("unexpected dump: %#v", d)
	}
	if d["type_def"].(string) != "str" {
		t.Errorf("expected type_def to start with str, got %v", d["type_def"])
	}
}

func TestFunctionDumpCarriesKindAsTypeField(t *testing.T) {
	r := types.NewRegistry()
	params := types.NewOrderedMap[*types.TypeDef]()
	fnType := r.GetOrIntern(&types.TypeDef{Kind: types.KindFunction, Name: "main", Return: r.Void(), Parameters: params, FuncKind: types.FuncScriptEntryPoint})
	fn := &Function{Name: "main", Kind: types.FuncScriptEntryPoint, Body: &Block{}, ExprBase: ExprBase{Type: fnType}}
	d := fn.Dump()
	if d["node"] != "Function" || d["type"] != "ScriptEntryPoint" {
		t.Fatalf("unexpected dump: %#v", d)
	}
}

func TestDumpJSONRoundTrip(t *testing.T) {
	r := types.NewRegistry()
	program := &Program{Statements: []Statement{
		&VarDeclaration{Name: "yo", Type: r.String(), Initializer: &StringLiteral{Value: "hello", ExprBase: ExprBase{Type: r.String()}}},
	}}
	raw, err := DumpJSON(program, false)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid JSON produced: %v", err)
	}
	body, ok := decoded["body"].([]interface{})
	if !ok || len(body) != 1 {
		t.Fatalf("expected one top-level statement, got %#v", decoded)
	}
	varDecl := body[0].(map[string]interface{})
	if varDecl["node"] != "VarDeclaration" {
		t.Errorf("expected a VarDeclaration node, got %v", varDecl["node"])
	}
}

func TestDumpJSONPrettyIsFormatted(t *testing.T) {
	n := &Null{}
	compact, _ := DumpJSON(n, false)
	prettyOut, _ := DumpJSON(n, true)
	if string(compact) == string(prettyOut) {
		t.Errorf("expected pretty output to differ from compact output")
	}
}

func TestCallDumpIncludesCatches(t *testing.T) {
	r := types.NewRegistry()
	call := &Call{
		Callee:    &NamedVariable{Name: "fetch"},
		Arguments: []Argument{{Name: "", Value: &Number{Value: 1}}},
		Catches: []*Catch{
			{Fn: &Function{Name: "", Kind: types.FuncCatch, Body: &Block{}}},
		},
		ExprBase: ExprBase{Type: r.Void()},
	}
	d := call.Dump()
	if _, ok := d["catches"]; !ok {
		t.Fatalf("expected catches key in Call dump")
	}
	args := d["arguments"].([]interface{})
	if len(args) != 1 {
		t.Fatalf("expected 1 argument, got %d", len(args))
	}
	arg := args[0].(map[string]interface{})
	if _, ok := arg["value"]; !ok {
		t.Errorf("expected argument entry to carry a value key")
	}
}

func TestImportDumpCarriesStableFieldNames(t *testing.T) {
	imp := &Import{Symbols: []string{"hello"}, Path: "a", Prefix: "A"}
	d := imp.Dump()
	if d["node"] != "Import" || d["path"] != "a" || d["prefix"] != "A" {
		t.Fatalf("unexpected dump: %#v", d)
	}
	syms := d["imported_symbols"].([]string)
	if len(syms) != 1 || syms[0] != "hello" {
		t.Errorf("unexpected imported_symbols: %#v", syms)
	}
}

func TestForDumpCarriesInitExpressionAndPostLoop(t *testing.T) {
	f := &For{
		Init: &VarDeclaration{Name: "i"},
		Cond: &Boolean{Value: true},
		Post: &ExpressionStatement{Expr: &NamedVariable{Name: "i"}},
		Body: &Block{},
	}
	d := f.Dump()
	if _, ok := d["init_expression"]; !ok {
		t.Errorf("expected init_expression key")
	}
	if _, ok := d["post_loop"]; !ok {
		t.Errorf("expected post_loop key")
	}
}

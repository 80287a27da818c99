package lexer

import "testing"

func collect(src string) []Token {
	l := New(src)
	var toks []Token
	for {
		tok := l.ScanToken()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	toks := collect("fun main foo123")
	want := []TokenType{FUN, IDENT, IDENT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestScanNumber(t *testing.T) {
	toks := collect("42 3.14")
	if toks[0].Kind != NUMBER || toks[0].LiteralNumber != 42 {
		t.Errorf("got %+v, want NUMBER 42", toks[0])
	}
	if toks[1].Kind != NUMBER || toks[1].LiteralNumber != 3.14 {
		t.Errorf("got %+v, want NUMBER 3.14", toks[1])
	}
}

func TestScanString(t *testing.T) {
	toks := collect(`"hello world"`)
	if toks[0].Kind != STRING || toks[0].LiteralString != "hello world" {
		t.Errorf("got %+v", toks[0])
	}
}

func TestScanUnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	_ = l.ScanToken()
	if len(l.Errors()) == 0 {
		t.Errorf("expected a lexical error for unterminated string")
	}
}

func TestScanOperatorsAndPrecedenceTokens(t *testing.T) {
	toks := collect("?? ? ! != == >> <<")
	want := []TokenType{QUESTION_QUESTION, QUESTION, BANG, NOT_EQ, EQ, SHR, SHL, EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestCaseSensitiveSelfKeyword(t *testing.T) {
	toks := collect("Self self")
	if toks[0].Kind != SELF {
		t.Errorf("expected Self to be a keyword, got %s", toks[0].Kind)
	}
	if toks[1].Kind != IDENT {
		t.Errorf("expected lowercase self to be a plain identifier, got %s", toks[1].Kind)
	}
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	toks := collect("var // trailing comment\n/* block */ x")
	want := []TokenType{VAR, IDENT, EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestGetLinesForDiagnosticSnippet(t *testing.T) {
	l := New("one\ntwo\nthree\n")
	lines := l.GetLines(2, 2)
	if len(lines) != 2 || lines[0] != "two" || lines[1] != "three" {
		t.Errorf("got %v", lines)
	}
}

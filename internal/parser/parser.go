// Package parser implements buzz's single-pass Pratt parser: it builds
// the AST, resolves names against locals/upvalues/globals, and drives
// the placeholder type engine inline as it goes.
package parser

import (
	"fmt"

	"github.com/UpperCi/buzz/internal/ast"
	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/symbols"
	"github.com/UpperCi/buzz/internal/types"
)

// Precedence is the Pratt ladder, low to high.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecIs
	PrecOr
	PrecAnd
	PrecXor
	PrecEquality
	PrecComparison
	PrecNullCoalescing
	PrecTerm
	PrecShift
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type prefixParseFn func(p *Parser) ast.Expression
type infixParseFn func(p *Parser, left ast.Expression) ast.Expression

type rule struct {
	prefix     prefixParseFn
	infix      infixParseFn
	precedence Precedence
}

var rules map[lexer.TokenType]rule

func init() {
	rules = map[lexer.TokenType]rule{
		lexer.NUMBER:      {prefix: parseNumber},
		lexer.STRING:      {prefix: parseString},
		lexer.TRUE:        {prefix: parseBoolean},
		lexer.FALSE:       {prefix: parseBoolean},
		lexer.NULL:        {prefix: parseNull},
		lexer.IDENT:       {prefix: parseNamedVariable},
		lexer.SUPER:       {prefix: parseSuper},
		lexer.SELF:        {prefix: parseSelfExpr},
		lexer.LPAREN:      {prefix: parseGrouping, infix: parseCall, precedence: PrecCall},
		lexer.LBRACKET:    {prefix: parseListLiteral, infix: parseSubscript, precedence: PrecCall},
		lexer.LBRACE:      {prefix: parseMapLiteral},
		lexer.MINUS:       {prefix: parseUnary, infix: parseBinary, precedence: PrecTerm},
		lexer.BANG:        {prefix: parseUnary, infix: parseForceUnwrap, precedence: PrecCall},
		lexer.QUESTION:    {infix: parseUnwrap, precedence: PrecCall},
		lexer.PLUS:        {infix: parseBinary, precedence: PrecTerm},
		lexer.STAR:        {infix: parseBinary, precedence: PrecFactor},
		lexer.SLASH:       {infix: parseBinary, precedence: PrecFactor},
		lexer.PERCENT:     {infix: parseBinary, precedence: PrecFactor},
		lexer.SHL:         {infix: parseBinary, precedence: PrecShift},
		lexer.SHR:         {infix: parseBinary, precedence: PrecShift},
		lexer.EQ:          {infix: parseBinary, precedence: PrecEquality},
		lexer.NOT_EQ:      {infix: parseBinary, precedence: PrecEquality},
		lexer.LESS:        {infix: parseBinary, precedence: PrecComparison},
		lexer.LESS_EQ:     {infix: parseBinary, precedence: PrecComparison},
		lexer.GREATER:     {infix: parseBinary, precedence: PrecComparison},
		lexer.GREATER_EQ:  {infix: parseBinary, precedence: PrecComparison},
		lexer.QUESTION_QUESTION: {infix: parseNullCoalescing, precedence: PrecNullCoalescing},
		lexer.AND:         {infix: parseAnd, precedence: PrecAnd},
		lexer.OR:          {infix: parseOr, precedence: PrecOr},
		lexer.XOR:         {infix: parseBinary, precedence: PrecXor},
		lexer.IS:          {infix: parseIs, precedence: PrecIs},
		lexer.DOT:         {infix: parseDot, precedence: PrecCall},
	}
}

func getRule(t lexer.TokenType) rule { return rules[t] }

// Parser is buzz's single-pass parser/resolver/type-engine driver: a
// struct of owned collaborators, no async, no threading.
type Parser struct {
	scanner  lexer.Scanner
	fileName string
	imported bool

	previous lexer.Token
	current  lexer.Token
	lookahead []lexer.Token // FIFO grown by peekAt to whatever depth it is asked for

	registry *types.Registry
	symbols  *symbols.Table

	errors    []*ParserError
	hadError  bool
	panicMode bool

	currentFunctionType *types.TypeDef // enclosing Function TypeDef while a `fun` body is parsed; parseReturnStatement does not read it
	testCounter         int

	currentObjectType       *types.TypeDef   // enclosing Object TypeDef while parsing its members, for `Self`
	pendingSelfPlaceholders *[]*types.TypeDef // Self.member placeholders awaiting the enclosing object's body

	// canAssign is true while parsing an expression at or below
	// Assignment precedence. It is saved and restored by parsePrecedence
	// only; no prefix or infix rule reads it, so no rule consumes a
	// trailing `=`, and parsePrecedence reports any `=` left after such an
	// expression as an invalid assignment target.
	canAssign bool
}

// New creates a Parser reading from scanner. registry and symTable may be
// shared across a compilation root's recursively-parsed imports.
func New(scanner lexer.Scanner, fileName string, imported bool, registry *types.Registry, symTable *symbols.Table) *Parser {
	p := &Parser{
		scanner:  scanner,
		fileName: fileName,
		imported: imported,
		registry: registry,
		symbols:  symTable,
	}
	p.advance()
	p.advance()
	return p
}

// Parse runs the parser to completion. It returns a nil root if an error
// was recorded by the end of input.
func Parse(scanner lexer.Scanner, fileName string, imported bool, registry *types.Registry, symTable *symbols.Table) (*ast.Program, []*ParserError) {
	p := New(scanner, fileName, imported, registry, symTable)
	program := p.parseProgram()
	for _, le := range scanner.Errors() {
		p.errors = append(p.errors, &ParserError{Message: le.Message, Code: ErrUnexpectedToken, Pos: le.Pos})
		p.hadError = true
	}
	if p.hadError {
		return nil, p.errors
	}
	return program, p.errors
}

func (p *Parser) parseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.check(lexer.EOF) {
		if stmt := p.parseDeclaration(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	return program
}

// --- token stream plumbing ---

func (p *Parser) advance() {
	p.previous = p.current
	if len(p.lookahead) > 0 {
		p.current = p.lookahead[0]
		p.lookahead = p.lookahead[1:]
		return
	}
	p.current = p.scanner.ScanToken()
}

// peekAt returns the token n positions ahead of current (n=0 is current
// itself), filling the look-ahead FIFO as needed. `Prefix.Type name`
// declarations need up to 3 tokens of look-ahead to be told apart from
// expression statements; matchingBracket looks further ahead when it
// scans a bracketed list or map type.
func (p *Parser) peekAt(n int) lexer.Token {
	if n == 0 {
		return p.current
	}
	for len(p.lookahead) < n {
		p.lookahead = append(p.lookahead, p.scanner.ScanToken())
	}
	return p.lookahead[n-1]
}

func (p *Parser) check(t lexer.TokenType) bool { return p.current.Kind == t }

func (p *Parser) match(t lexer.TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(t lexer.TokenType, message string) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	p.errorAtCurrent(message, ErrUnexpectedToken)
	return false
}

func (p *Parser) errorAtCurrent(message, code string) { p.errorAt(p.current, message, code) }

func (p *Parser) errorAt(tok lexer.Token, message, code string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	p.errors = append(p.errors, &ParserError{Message: message, Code: code, Pos: tok.Pos})
}

var statementStarters = []lexer.TokenType{
	lexer.VAR, lexer.CONST, lexer.FUN, lexer.EXTERN, lexer.OBJECT, lexer.CLASS,
	lexer.ENUM, lexer.IMPORT, lexer.EXPORT, lexer.TEST, lexer.IF, lexer.WHILE,
	lexer.DO, lexer.FOR, lexer.FOREACH, lexer.BREAK, lexer.CONTINUE, lexer.RETURN,
	lexer.THROW, lexer.LBRACE, lexer.IDENT,
}

// synchronize implements spec §4.6: skip to the next statement boundary
// (`;`) or declaration-starter keyword.
func (p *Parser) synchronize() {
	p.panicMode = false
	for !p.check(lexer.EOF) {
		if p.previous.Kind == lexer.SEMICOLON {
			return
		}
		for _, t := range statementStarters {
			if p.current.Kind == t {
				return
			}
		}
		p.advance()
	}
}

// parsePrecedence is spec §4.4's core Pratt loop.
func (p *Parser) parsePrecedence(prec Precedence, hanging bool) ast.Expression {
	if !hanging {
		p.advance()
	}
	prefixRule := getRule(p.previous.Kind).prefix
	if prefixRule == nil {
		p.errorAt(p.previous, fmt.Sprintf("Expected expression, got %s", p.previous.Kind), ErrInvalidExpr)
		return nil
	}

	savedCanAssign := p.canAssign
	p.canAssign = prec <= PrecAssignment
	canAssign := p.canAssign
	left := prefixRule(p)

	for prec <= getRule(p.current.Kind).precedence && getRule(p.current.Kind).infix != nil {
		p.advance()
		infixRule := getRule(p.previous.Kind).infix
		left = infixRule(p, left)
	}
	p.canAssign = savedCanAssign

	if canAssign && p.check(lexer.ASSIGN) {
		p.errorAtCurrent("Invalid assignment target", ErrInvalidAssign)
	}
	return left
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parsePrecedence(PrecAssignment, false)
}

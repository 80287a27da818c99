package parser

import (
	"github.com/UpperCi/buzz/internal/ast"
	"github.com/UpperCi/buzz/internal/lexer"
)

// parseStatement dispatches a non-declaration statement (spec §3 "AST
// nodes" control-flow kinds). Declarations and statements share one
// dispatch point (parseDeclaration) because buzz allows both inside a
// block; this is reached once the declaration-starter keywords have
// already been ruled out.
func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.check(lexer.LBRACE):
		return p.parseBlockStatement()
	case p.check(lexer.IF):
		return p.parseIfStatement()
	case p.check(lexer.WHILE):
		return p.parseWhileStatement()
	case p.check(lexer.DO):
		return p.parseDoUntilStatement()
	case p.check(lexer.FOR):
		return p.parseForStatement()
	case p.check(lexer.FOREACH):
		return p.parseForEachStatement()
	case p.check(lexer.RETURN):
		return p.parseReturnStatement()
	case p.check(lexer.THROW):
		return p.parseThrowStatement()
	case p.check(lexer.BREAK):
		return p.parseBreakStatement()
	case p.check(lexer.CONTINUE):
		return p.parseContinueStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseBlockBody parses the statements between an already-consumed `{`
// and its matching `}` in the current frame and scope; it opens no scope
// itself, so callers call BeginScope (and, for function bodies, push a
// new Frame) before calling this.
func parseBlockBody(p *Parser) *ast.Block {
	tok := p.previous
	block := &ast.Block{StmtBase: ast.StmtBase{Token: tok}}
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		if stmt := p.parseDeclaration(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	p.expect(lexer.RBRACE, "Expected '}' after block")
	return block
}

// parseBlockStatement parses a `{ ... }` block as its own lexical scope
// within the current frame (spec §4.3 BeginScope/EndScope).
func (p *Parser) parseBlockStatement() ast.Statement {
	p.expect(lexer.LBRACE, "Expected '{'")
	p.symbols.BeginScope()
	block := parseBlockBody(p)
	p.symbols.EndScope()
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.current
	p.advance() // consume 'if'
	p.expect(lexer.LPAREN, "Expected '(' after 'if'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "Expected ')' after condition")

	thenBlock, ok := p.parseStatement().(*ast.Block)
	if !ok {
		p.errorAt(tok, "Expected a block after 'if' condition", ErrUnexpectedToken)
	}

	stmt := &ast.If{StmtBase: ast.StmtBase{Token: tok}, Condition: cond, Then: thenBlock}
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			stmt.Else = p.parseIfStatement().(*ast.If)
		} else if elseBlock, ok := p.parseStatement().(*ast.Block); ok {
			stmt.Else = elseBlock
		} else {
			p.errorAt(p.previous, "Expected a block after 'else'", ErrUnexpectedToken)
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.current
	p.advance() // consume 'while'
	p.expect(lexer.LPAREN, "Expected '(' after 'while'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "Expected ')' after condition")
	body, _ := p.parseStatement().(*ast.Block)
	return &ast.While{StmtBase: ast.StmtBase{Token: tok}, Condition: cond, Body: body}
}

func (p *Parser) parseDoUntilStatement() ast.Statement {
	tok := p.current
	p.advance() // consume 'do'
	body, _ := p.parseStatement().(*ast.Block)
	p.expect(lexer.UNTIL, "Expected 'until' after 'do' body")
	p.expect(lexer.LPAREN, "Expected '(' after 'until'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "Expected ')' after condition")
	p.expect(lexer.SEMICOLON, "Expected ';' after 'do ... until (...)'")
	return &ast.DoUntil{StmtBase: ast.StmtBase{Token: tok}, Body: body, Condition: cond}
}

// parseForStatement parses the classic three-clause `for (init; cond;
// post) body`, scoping init's declaration (if any) to the loop (spec §3
// "For" node, §4.3 scoping).
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.current
	p.advance() // consume 'for'
	p.expect(lexer.LPAREN, "Expected '(' after 'for'")

	p.symbols.BeginScope()

	var init ast.Statement
	if !p.check(lexer.SEMICOLON) {
		init = p.parseDeclaration()
	} else {
		p.advance()
	}

	var cond ast.Expression
	if !p.check(lexer.SEMICOLON) {
		cond = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, "Expected ';' after loop condition")

	var post ast.Statement
	if !p.check(lexer.RPAREN) {
		expr := p.parseExpression()
		post = &ast.ExpressionStatement{StmtBase: ast.StmtBase{Token: tok}, Expr: expr}
	}
	p.expect(lexer.RPAREN, "Expected ')' after 'for' clauses")

	body, _ := p.parseStatement().(*ast.Block)
	p.symbols.EndScope()

	return &ast.For{StmtBase: ast.StmtBase{Token: tok}, Init: init, Cond: cond, Post: post, Body: body}
}

// parseForEachStatement parses `foreach (Type name in iterable) body`,
// inferring the element type from iterable when Type is a placeholder
// and declaring the loop variable as a local scoped to the loop body.
func (p *Parser) parseForEachStatement() ast.Statement {
	tok := p.current
	p.advance() // consume 'foreach'
	p.expect(lexer.LPAREN, "Expected '(' after 'foreach'")

	varType := p.parseTypeRef()
	p.expect(lexer.IDENT, "Expected loop variable name")
	name := p.previous.Lexeme

	p.expect(lexer.IN, "Expected 'in' after loop variable")
	iterable := p.parseExpression()
	p.expect(lexer.RPAREN, "Expected ')' after 'foreach' clause")

	p.symbols.BeginScope()
	if it := iterable.GetType(); it != nil && !it.IsPlaceholder() && varType.IsPlaceholder() {
		varType = it.Item
	}
	if _, _, err := p.symbols.DeclareVariable(varType, name, false); err != nil {
		p.errorAt(tok, err.Error(), ErrDuplicateName)
	}
	p.symbols.MarkInitialized()

	body, _ := p.parseStatement().(*ast.Block)
	p.symbols.EndScope()

	return &ast.ForEach{StmtBase: ast.StmtBase{Token: tok}, VarName: name, VarType: varType, Iterable: iterable, Body: body}
}

// parseReturnStatement parses `return [expr];`. A function's return type
// is fixed by its signature (void when `> T` is omitted), so unlike `var`
// there is no return-type inference to drive here; a return type that is
// itself a forward reference (spec §8 scenario 2) resolves independently
// through the referenced object/enum's own declaration, not through this
// statement.
func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.current
	p.advance() // consume 'return'

	var value ast.Expression
	if !p.check(lexer.SEMICOLON) {
		value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, "Expected ';' after 'return'")
	return &ast.Return{StmtBase: ast.StmtBase{Token: tok}, Value: value}
}

func (p *Parser) parseThrowStatement() ast.Statement {
	tok := p.current
	p.advance() // consume 'throw'
	value := p.parseExpression()
	p.expect(lexer.SEMICOLON, "Expected ';' after 'throw'")
	return &ast.Throw{StmtBase: ast.StmtBase{Token: tok}, Value: value}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	tok := p.current
	p.advance()
	p.expect(lexer.SEMICOLON, "Expected ';' after 'break'")
	return &ast.Break{StmtBase: ast.StmtBase{Token: tok}}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	tok := p.current
	p.advance()
	p.expect(lexer.SEMICOLON, "Expected ';' after 'continue'")
	return &ast.Continue{StmtBase: ast.StmtBase{Token: tok}}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.current
	expr := p.parseExpression()
	p.expect(lexer.SEMICOLON, "Expected ';' after expression")
	return &ast.ExpressionStatement{StmtBase: ast.StmtBase{Token: tok}, Expr: expr}
}

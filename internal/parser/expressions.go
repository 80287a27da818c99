package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/UpperCi/buzz/internal/ast"
	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/types"
)

func parseNumber(p *Parser) ast.Expression {
	tok := p.previous
	return &ast.Number{Value: tok.LiteralNumber, ExprBase: exprBaseOf(tok, p.registry.Number())}
}

// parseString splits a STRING token's raw literal on `{expr}` holes
// (spec §4.4, §3 "scanString" deferring interpolation to the parser) by
// re-lexing each hole's text through a fresh expression parse.
func parseString(p *Parser) ast.Expression {
	tok := p.previous
	raw := tok.LiteralString
	var parts []ast.Expression

	i := 0
	for i < len(raw) {
		start := strings.IndexByte(raw[i:], '{')
		if start == -1 {
			parts = append(parts, &ast.StringLiteral{Value: raw[i:], ExprBase: exprBaseOf(tok, p.registry.String())})
			break
		}
		start += i
		if start > i {
			parts = append(parts, &ast.StringLiteral{Value: raw[i:start], ExprBase: exprBaseOf(tok, p.registry.String())})
		}
		end := strings.IndexByte(raw[start:], '}')
		if end == -1 {
			p.errorAt(tok, "unterminated string interpolation", ErrInvalidExpr)
			break
		}
		end += start
		exprSrc := raw[start+1 : end]
		if expr := parseSubExpression(p, exprSrc, tok); expr != nil {
			parts = append(parts, expr)
		}
		i = end + 1
	}

	if len(parts) == 1 {
		if sl, ok := parts[0].(*ast.StringLiteral); ok {
			return sl
		}
	}
	return &ast.String{Parts: parts, ExprBase: exprBaseOf(tok, p.registry.String())}
}

// parseSubExpression parses a standalone expression embedded in a string
// interpolation hole, sharing this parser's registry/symbol table so
// names resolve against the enclosing scope.
func parseSubExpression(p *Parser, src string, where lexer.Token) ast.Expression {
	sub := New(lexer.New(src), p.fileName, p.imported, p.registry, p.symbols)
	expr := sub.parseExpression()
	p.errors = append(p.errors, sub.errors...)
	if sub.hadError {
		p.hadError = true
	}
	return expr
}

func parseBoolean(p *Parser) ast.Expression {
	tok := p.previous
	return &ast.Boolean{Value: tok.Kind == lexer.TRUE, ExprBase: exprBaseOf(tok, p.registry.Bool())}
}

func parseNull(p *Parser) ast.Expression {
	tok := p.previous
	return &ast.Null{ExprBase: exprBaseOf(tok, p.registry.WithOptional(p.registry.Void(), true))}
}

func parseSuper(p *Parser) ast.Expression {
	tok := p.previous
	return &ast.Super{ExprBase: exprBaseOf(tok, nil)}
}

// parseSelfExpr resolves `Self` to the enclosing object's instance type
// (spec §4.5 "methods may reference `Self`"). Fields and methods declared
// later in the same object body aren't in currentObjectType's member maps
// yet, so a Dot on this result defers to parseDot's Self-aware branch
// rather than resolveConcreteMember's usual lookup.
func parseSelfExpr(p *Parser) ast.Expression {
	tok := p.previous
	if p.currentObjectType == nil {
		p.errorAt(tok, "'Self' used outside an object method", ErrTypeMismatch)
		return &ast.NamedVariable{Name: "Self", ExprBase: exprBaseOf(tok, nil)}
	}
	return &ast.NamedVariable{Name: "Self", ExprBase: exprBaseOf(tok, p.registry.InstanceOf(p.currentObjectType))}
}

func parseGrouping(p *Parser) ast.Expression {
	expr := p.parseExpression()
	p.expect(lexer.RPAREN, "Expected ')' after expression")
	return expr
}

// parseNamedVariable resolves an identifier against locals, upvalues,
// then globals (spec §4.3); an unresolved name allocates a forward
// placeholder (spec §4.2 "Creation") rather than erroring, since buzz
// permits use-before-definition for globals. An identifier immediately
// followed by `{` is an ObjectInit literal (spec §3 "ObjectInit"; §8
// scenario 2), not a bare reference, so every resolution branch defers
// to parseObjectInit once it has the name's current type.
func parseNamedVariable(p *Parser) ast.Expression {
	tok := p.previous
	name := tok.Lexeme

	if slot, found, err := resolveLocalErr(p, name); err != nil {
		p.errorAt(tok, err.Error(), ErrUnknownName)
	} else if found {
		t := p.symbols.Current().Locals[slot].Type
		if p.check(lexer.LBRACE) {
			return parseObjectInit(p, tok, name, t)
		}
		return &ast.NamedVariable{Name: name, ExprBase: exprBaseOf(tok, t)}
	}

	if idx, found, err := resolveUpvalueErr(p, name); err != nil {
		p.errorAt(tok, err.Error(), ErrUnknownName)
	} else if found {
		t := p.symbols.Current().UpvalueType(idx)
		if p.check(lexer.LBRACE) {
			return parseObjectInit(p, tok, name, t)
		}
		return &ast.NamedVariable{Name: name, ExprBase: exprBaseOf(tok, t)}
	}

	if gidx, found := p.symbols.ResolveGlobal("", name); found {
		t := p.symbols.Globals()[gidx].Type
		if p.check(lexer.LBRACE) {
			return parseObjectInit(p, tok, name, t)
		}
		return &ast.NamedVariable{Name: name, ExprBase: exprBaseOf(tok, t)}
	}

	if p.symbols.HasPrefix(name) {
		// A bare reference to an import prefix: only meaningful as the
		// left-hand side of a following Dot (spec §4.3 "pkg.Symbol").
		return &ast.NamedVariable{Name: name, ExprBase: exprBaseOf(tok, nil)}
	}

	placeholder := p.symbols.DeclarePlaceholder(p.registry, name, tok)
	if p.check(lexer.LBRACE) {
		return parseObjectInit(p, tok, name, placeholder)
	}
	return &ast.NamedVariable{Name: name, ExprBase: exprBaseOf(tok, placeholder)}
}

// parseObjectInit parses `TypeName{ field = value, ... }`. typeRef is
// whatever the caller already resolved name to: a concrete Object
// TypeDef, or a forward placeholder still awaiting the object's
// declaration (spec §8 scenario 2) — in the latter case the result is a
// fresh child placeholder linked by Assignment, the same mechanism a
// forward type reference in declaration position uses (resolveNamedType),
// since both ultimately want "whatever this name resolves to, as an
// instance".
func parseObjectInit(p *Parser, tok lexer.Token, name string, typeRef *types.TypeDef) ast.Expression {
	p.expect(lexer.LBRACE, "Expected '{' after type name")
	var keys []string
	var values []ast.Expression
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		p.expect(lexer.IDENT, "Expected a field name")
		keys = append(keys, p.previous.Lexeme)
		p.expect(lexer.ASSIGN, "Expected '=' after field name")
		values = append(values, p.parseExpression())
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "Expected '}' after object initializer")

	return &ast.ObjectInit{
		TypeName: name, Keys: keys, Values: values,
		ExprBase: exprBaseOf(tok, objectInitResultType(p, tok, name, typeRef)),
	}
}

func objectInitResultType(p *Parser, tok lexer.Token, name string, typeRef *types.TypeDef) *types.TypeDef {
	if typeRef.IsPlaceholder() {
		child := p.registry.NewPlaceholder("", tok)
		if err := types.Link(typeRef, child, types.RelationAssignment, ""); err != nil {
			p.errorAt(tok, err.Error(), ErrInvalidExpr)
		}
		return child
	}
	if typeRef != nil && typeRef.Kind == types.KindObject {
		return p.registry.InstanceOf(typeRef)
	}
	p.errorAt(tok, fmt.Sprintf("%q is not an object type", name), ErrTypeMismatch)
	return nil
}

func parseUnary(p *Parser) ast.Expression {
	tok := p.previous
	operator := tok.Lexeme
	right := p.parsePrecedence(PrecUnary, false)
	var resultType *types.TypeDef
	switch operator {
	case "-":
		resultType = p.registry.Number()
	case "!":
		resultType = p.registry.Bool()
	}
	return &ast.Unary{Operator: operator, Right: right, ExprBase: exprBaseOf(tok, resultType)}
}

func parseBinary(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	operator := tok.Lexeme
	r := getRule(tok.Kind)
	right := p.parsePrecedence(r.precedence+1, false)

	resultType := binaryResultType(p, tok, operator, left, right)
	return &ast.Binary{Left: left, Operator: operator, Right: right, ExprBase: exprBaseOf(tok, resultType)}
}

func binaryResultType(p *Parser, tok lexer.Token, operator string, left, right ast.Expression) *types.TypeDef {
	switch operator {
	case "==", "!=", "<", "<=", ">", ">=":
		return p.registry.Bool()
	}

	lt, rt := left.GetType(), right.GetType()
	if lt.IsPlaceholder() || rt.IsPlaceholder() {
		// Arithmetic isn't one of the placeholder engine's relations
		// (spec §4.2 only defines Call/Subscript/Key/FieldAccess/
		// Assignment); a binary op over a still-unresolved operand can't
		// be checked yet, so it is simply left as num, buzz's only
		// arithmetic type.
		return p.registry.Number()
	}
	if lt != nil && lt.Kind != types.KindNumber {
		p.errorAt(tok, fmt.Sprintf("expected `num`, got `%s`", lt.Canonical()), ErrTypeMismatch)
	} else if rt != nil && rt.Kind != types.KindNumber {
		p.errorAt(tok, fmt.Sprintf("expected `num`, got `%s`", rt.Canonical()), ErrTypeMismatch)
	}
	return p.registry.Number()
}

func parseNullCoalescing(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	right := p.parsePrecedence(PrecNullCoalescing+1, false)
	base := left.GetType()
	if base == nil || base.IsPlaceholder() {
		base = right.GetType()
	}
	return &ast.Binary{Left: left, Operator: "??", Right: right, ExprBase: exprBaseOf(tok, p.registry.WithOptional(base, false))}
}

func parseAnd(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	right := p.parsePrecedence(PrecAnd+1, false)
	return &ast.And{Left: left, Right: right, ExprBase: exprBaseOf(tok, p.registry.Bool())}
}

func parseOr(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	right := p.parsePrecedence(PrecOr+1, false)
	return &ast.Or{Left: left, Right: right, ExprBase: exprBaseOf(tok, p.registry.Bool())}
}

func parseIs(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	p.expect(lexer.IDENT, "Expected a type name after 'is'")
	typeName := p.previous.Lexeme
	return &ast.Is{Left: left, TypeName: typeName, ExprBase: exprBaseOf(tok, p.registry.Bool())}
}

func parseForceUnwrap(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	return &ast.ForceUnwrap{Left: left, ExprBase: exprBaseOf(tok, p.registry.WithOptional(left.GetType(), false))}
}

func parseUnwrap(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	return &ast.Unwrap{Left: left, ExprBase: exprBaseOf(tok, p.registry.WithOptional(left.GetType(), false))}
}

func parseDot(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	p.expect(lexer.IDENT, "Expected a member name after '.'")
	member := p.previous.Lexeme

	if nv, ok := left.(*ast.NamedVariable); ok && nv.GetType() == nil && p.symbols.HasPrefix(nv.Name) {
		if gidx, found := p.symbols.ResolveGlobal(nv.Name, member); found {
			return &ast.NamedVariable{Name: member, ExprBase: exprBaseOf(tok, p.symbols.Globals()[gidx].Type)}
		}
		p.errorAt(tok, fmt.Sprintf("%s has no exported member %q", nv.Name, member), ErrUnknownName)
		return &ast.Dot{Left: left, Identifier: member, ExprBase: exprBaseOf(tok, nil)}
	}

	leftType := left.GetType()
	if leftType.IsPlaceholder() {
		child := p.registry.NewPlaceholder("", tok)
		if err := types.Link(leftType, child, types.RelationFieldAccess, member); err != nil {
			p.errorAt(tok, err.Error(), ErrInvalidExpr)
		}
		return &ast.Dot{Left: left, Identifier: member, ExprBase: exprBaseOf(tok, child)}
	}

	// Self.member can name a field or method declared later in the same
	// object body (spec §4.5); currentObjectType's member maps only hold
	// what's been parsed so far, so a miss here isn't an error yet — it
	// becomes a placeholder resolved once the enclosing object's body
	// finishes (parseObjectDeclaration).
	if nv, ok := left.(*ast.NamedVariable); ok && nv.Name == "Self" && p.currentObjectType != nil &&
		leftType.Kind == types.KindObjectInstance && leftType.Of == p.currentObjectType {
		if ft, ok := p.currentObjectType.Fields.Get(member); ok {
			return &ast.Dot{Left: left, Identifier: member, ExprBase: exprBaseOf(tok, ft)}
		}
		if mt, ok := p.currentObjectType.Methods.Get(member); ok {
			return &ast.Dot{Left: left, Identifier: member, ExprBase: exprBaseOf(tok, mt)}
		}
		if st, ok := p.currentObjectType.StaticFields.Get(member); ok {
			return &ast.Dot{Left: left, Identifier: member, ExprBase: exprBaseOf(tok, st)}
		}
		child := p.registry.NewPlaceholder("", tok)
		child.Placeholder.FieldName = member
		if p.pendingSelfPlaceholders != nil {
			*p.pendingSelfPlaceholders = append(*p.pendingSelfPlaceholders, child)
		}
		return &ast.Dot{Left: left, Identifier: member, ExprBase: exprBaseOf(tok, child)}
	}

	memberType := resolveConcreteMember(p, tok, leftType, member)
	return &ast.Dot{Left: left, Identifier: member, ExprBase: exprBaseOf(tok, memberType)}
}

func resolveConcreteMember(p *Parser, tok lexer.Token, leftType *types.TypeDef, member string) *types.TypeDef {
	if leftType == nil {
		p.errorAt(tok, "cannot access a member on an untyped value", ErrTypeMismatch)
		return nil
	}
	switch leftType.Kind {
	case types.KindObjectInstance:
		obj := leftType.Of
		if ft, ok := obj.Fields.Get(member); ok {
			return ft
		}
		if mt, ok := obj.Methods.Get(member); ok {
			return mt
		}
		p.errorAt(tok, fmt.Sprintf("%s has no member %q", obj.Name, member), ErrUnknownName)
	case types.KindEnum:
		if _, ok := leftType.Cases.Get(member); ok {
			return p.registry.InstanceOf(leftType)
		}
		p.errorAt(tok, fmt.Sprintf("%s has no case %q", leftType.Name, member), ErrUnknownName)
	default:
		p.errorAt(tok, fmt.Sprintf("cannot access a member on a value of type %s", leftType.Canonical()), ErrTypeMismatch)
	}
	return nil
}

func parseSubscript(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	index := p.parseExpression()
	p.expect(lexer.RBRACKET, "Expected ']' after subscript index")

	leftType := left.GetType()
	if leftType.IsPlaceholder() {
		child := p.registry.NewPlaceholder("", tok)
		if err := types.Link(leftType, child, types.RelationSubscript, ""); err != nil {
			p.errorAt(tok, err.Error(), ErrInvalidExpr)
		}
		return &ast.Subscript{Left: left, Index: index, ExprBase: exprBaseOf(tok, child)}
	}

	var resultType *types.TypeDef
	if leftType != nil {
		switch leftType.Kind {
		case types.KindList:
			resultType = leftType.Item
		case types.KindMap:
			resultType = p.registry.WithOptional(leftType.MapValue, true)
		default:
			p.errorAt(tok, fmt.Sprintf("cannot subscript a value of type %s", leftType.Canonical()), ErrTypeMismatch)
		}
	}
	return &ast.Subscript{Left: left, Index: index, ExprBase: exprBaseOf(tok, resultType)}
}

func parseCall(p *Parser, left ast.Expression) ast.Expression {
	tok := p.previous
	var args []ast.Argument
	if !p.check(lexer.RPAREN) {
		for {
			name := ""
			if p.check(lexer.IDENT) && p.peekAt(1).Kind == lexer.COLON {
				name = p.current.Lexeme
				p.advance()
				p.advance()
			}
			args = append(args, ast.Argument{Name: name, Value: p.parseExpression()})
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.expect(lexer.RPAREN, "Expected ')' after arguments")

	catches := parseCatches(p)

	resultType := callResultType(p, tok, left)
	return &ast.Call{Callee: left, Arguments: args, Catches: catches, ExprBase: exprBaseOf(tok, resultType)}
}

func callResultType(p *Parser, tok lexer.Token, callee ast.Expression) *types.TypeDef {
	calleeType := callee.GetType()
	if calleeType.IsPlaceholder() {
		child := p.registry.NewPlaceholder("", tok)
		if err := types.Link(calleeType, child, types.RelationCall, ""); err != nil {
			p.errorAt(tok, err.Error(), ErrInvalidExpr)
		}
		return child
	}
	if calleeType == nil {
		p.errorAt(tok, "cannot call an untyped value", ErrTypeMismatch)
		return nil
	}
	switch calleeType.Kind {
	case types.KindFunction:
		return calleeType.Return
	case types.KindNative:
		return calleeType.Signature.Return
	case types.KindObject:
		return p.registry.InstanceOf(calleeType)
	default:
		p.errorAt(tok, fmt.Sprintf("cannot call a value of type %s", calleeType.Canonical()), ErrTypeMismatch)
		return nil
	}
}

func parseListLiteral(p *Parser) ast.Expression {
	tok := p.previous
	var elements []ast.Expression
	for !p.check(lexer.RBRACKET) && !p.check(lexer.EOF) {
		elements = append(elements, p.parseExpression())
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACKET, "Expected ']' after list literal")

	var item *types.TypeDef
	if len(elements) > 0 {
		item = elements[0].GetType()
	} else {
		item = p.registry.Void()
	}
	listType := p.registry.GetOrIntern(&types.TypeDef{Kind: types.KindList, Item: item})
	return &ast.List{Elements: elements, ExprBase: exprBaseOf(tok, listType)}
}

func parseMapLiteral(p *Parser) ast.Expression {
	tok := p.previous
	var keys, values []ast.Expression
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		k := p.parseExpression()
		p.expect(lexer.COLON, "Expected ':' after map key")
		v := p.parseExpression()
		keys = append(keys, k)
		values = append(values, v)
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "Expected '}' after map literal")

	keyType, valueType := p.registry.Void(), p.registry.Void()
	if len(keys) > 0 {
		keyType, valueType = keys[0].GetType(), values[0].GetType()
	}
	mapType := p.registry.GetOrIntern(&types.TypeDef{Kind: types.KindMap, MapKey: keyType, MapValue: valueType})
	return &ast.Map{Keys: keys, Values: values, ExprBase: exprBaseOf(tok, mapType)}
}

// parseCatches implements spec §4.4's inline catch clause: after a call,
// either `catch { closure, closure, … }` (a brace-enclosed,
// comma-separated list of one or more recovery closures) or the
// shorthand `catch <expr>` (a single bare-expression handler, no
// braces). Anything beyond 255 closures in the list form is an arity
// error, mirroring the 255-parameter cap.
func parseCatches(p *Parser) []*ast.Catch {
	if !p.check(lexer.CATCH) {
		return nil
	}
	tok := p.current
	p.advance() // consume 'catch'

	if !p.match(lexer.LBRACE) {
		return []*ast.Catch{parseCatchClosure(p)}
	}

	var catches []*ast.Catch
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		if len(catches) >= 255 {
			p.errorf(tok, ErrArity, "too many catch closures (max 255)")
		}
		catches = append(catches, parseCatchClosure(p))
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "Expected '}' after catch closures")
	return catches
}

// parseCatchClosure parses one closure of a catch clause: a `{ block }`
// body, or a bare expression standing in for `{ return expr; }`.
func parseCatchClosure(p *Parser) *ast.Catch {
	tok := p.current

	fn := &ast.Function{Kind: types.FuncCatch, ExprBase: exprBaseOf(tok, nil)}
	p.symbols.PushFrame()
	p.symbols.BeginScope()
	if p.match(lexer.LBRACE) {
		fn.Body = parseBlockBody(p)
	} else {
		expr := p.parseExpression()
		fn.Body = &ast.Block{Statements: []ast.Statement{&ast.ExpressionStatement{Expr: expr}}}
	}
	p.symbols.EndScope()
	p.symbols.PopFrame()

	fnType := p.registry.GetOrIntern(&types.TypeDef{
		Kind: types.KindFunction, Name: "", Return: p.registry.Void(),
		Parameters: types.NewOrderedMap[*types.TypeDef](), FuncKind: types.FuncCatch,
	})
	fn.Type = fnType
	return &ast.Catch{Fn: fn}
}

func parseNumberLiteralFromLexeme(lexeme string) float64 {
	v, _ := strconv.ParseFloat(lexeme, 64)
	return v
}

package parser

import (
	"fmt"

	"github.com/UpperCi/buzz/internal/ast"
	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/symbols"
	"github.com/UpperCi/buzz/internal/types"
)

// exprBaseOf builds the ExprBase every expression node embeds: the token
// it originates from plus its resolved-or-placeholder type.
func exprBaseOf(tok lexer.Token, t *types.TypeDef) ast.ExprBase {
	return ast.ExprBase{Token: tok, Type: t}
}

// resolveLocalErr/resolveUpvalueErr adapt symbols' frame-scoped resolvers
// to the current parser's active frame (spec §4.3 resolve_local /
// resolve_upvalue).
func resolveLocalErr(p *Parser, name string) (slot int, found bool, err error) {
	return symbols.ResolveLocal(p.symbols.Current(), name)
}

func resolveUpvalueErr(p *Parser, name string) (idx int, found bool, err error) {
	return symbols.ResolveUpvalue(p.symbols.Current(), name)
}

// parseTypeRef parses a type reference in declaration position: a list
// type `[T]`, a map type `{K,V}`, or a named type (primitive keyword,
// built-in, or an Object/Enum name that may itself be forward-referenced
// (spec §8 scenario 2 and 5).
func (p *Parser) parseTypeRef() *types.TypeDef {
	switch {
	case p.check(lexer.LBRACKET):
		p.advance()
		item := p.parseTypeRef()
		p.expect(lexer.RBRACKET, "Expected ']' after list item type")
		return p.registry.GetOrIntern(&types.TypeDef{Kind: types.KindList, Item: item})

	case p.check(lexer.LBRACE):
		p.advance()
		key := p.parseTypeRef()
		p.expect(lexer.COMMA, "Expected ',' between map key and value types")
		value := p.parseTypeRef()
		p.expect(lexer.RBRACE, "Expected '}' after map value type")
		return p.registry.GetOrIntern(&types.TypeDef{Kind: types.KindMap, MapKey: key, MapValue: value})

	case p.check(lexer.IDENT):
		p.advance()
		return p.resolveNamedType(p.previous)

	default:
		p.errorAtCurrent("Expected a type", ErrExpectedType)
		return nil
	}
}

// resolveNamedType looks a type-position identifier up as a primitive, or
// as an already-declared Object/Enum global (resolving to its instance
// form), or allocates a forward placeholder chained via Assignment so a
// not-yet-parsed object/enum declaration can complete it later (spec §4.5
// "declared type flips to instance form"; §8 scenario 2).
func (p *Parser) resolveNamedType(tok lexer.Token) *types.TypeDef {
	switch tok.Lexeme {
	case "num":
		return p.registry.Number()
	case "str":
		return p.registry.String()
	case "bool":
		return p.registry.Bool()
	case "void":
		return p.registry.Void()
	case "type":
		return p.registry.Type()
	}

	if gidx, found := p.symbols.ResolveGlobal("", tok.Lexeme); found {
		g := p.symbols.Globals()[gidx]
		if g.Type.IsPlaceholder() {
			child := p.registry.NewPlaceholder("", tok)
			if err := types.Link(g.Type, child, types.RelationAssignment, ""); err != nil {
				p.errorAt(tok, err.Error(), ErrTypeMismatch)
			}
			return child
		}
		switch g.Type.Kind {
		case types.KindObject, types.KindEnum:
			return p.registry.InstanceOf(g.Type)
		default:
			return g.Type
		}
	}

	parent := p.symbols.DeclarePlaceholder(p.registry, tok.Lexeme, tok)
	child := p.registry.NewPlaceholder("", tok)
	if err := types.Link(parent, child, types.RelationAssignment, ""); err != nil {
		p.errorAt(tok, err.Error(), ErrTypeMismatch)
	}
	return child
}

// looksLikeTypedVarDecl implements spec §4.5 "User-typed var": up to
// 3-token look-ahead distinguishes a bare `Type name` / `Prefix.Type
// name` declaration from an expression statement starting with an
// identifier.
func (p *Parser) looksLikeTypedVarDecl() bool {
	if !p.check(lexer.IDENT) {
		return false
	}
	if p.peekAt(1).Kind == lexer.IDENT {
		return true
	}
	if p.peekAt(1).Kind == lexer.DOT && p.peekAt(2).Kind == lexer.IDENT && p.peekAt(3).Kind == lexer.IDENT {
		return true
	}
	return false
}

// looksLikeListDecl/looksLikeMapDecl distinguish a top-level `[T] Name;`
// / `{K,V} Name;` type-alias declaration (spec §8 scenario 5) from a list
// or map literal used as an expression statement: scan forward (growing
// the look-ahead FIFO as needed) to the matching closing bracket/brace
// and check it is followed by `Ident ;`.
func (p *Parser) looksLikeListDecl() bool {
	end, ok := p.matchingBracket(lexer.LBRACKET, lexer.RBRACKET)
	if !ok {
		return false
	}
	return p.peekAt(end+1).Kind == lexer.IDENT && p.peekAt(end+2).Kind == lexer.SEMICOLON
}

func (p *Parser) looksLikeMapDecl() bool {
	end, ok := p.matchingBracket(lexer.LBRACE, lexer.RBRACE)
	if !ok {
		return false
	}
	return p.peekAt(end+1).Kind == lexer.IDENT && p.peekAt(end+2).Kind == lexer.SEMICOLON
}

// matchingBracket returns the look-ahead offset (relative to p.current,
// which must already be open) of the token closing the bracket pair,
// accounting for nesting.
func (p *Parser) matchingBracket(open, close lexer.TokenType) (offset int, ok bool) {
	if p.current.Kind != open {
		return 0, false
	}
	depth := 0
	for i := 0; i < 64; i++ {
		tok := p.peekAt(i)
		if tok.Kind == lexer.EOF {
			return 0, false
		}
		if tok.Kind == open {
			depth++
		} else if tok.Kind == close {
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func (p *Parser) errorf(tok lexer.Token, code, format string, args ...interface{}) {
	p.errorAt(tok, fmt.Sprintf(format, args...), code)
}

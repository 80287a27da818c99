// Package ast defines buzz's abstract syntax tree: one struct per node
// kind, each carrying a resolved or placeholder TypeDef and a JSON dump
// method.
//
// Nodes are a tagged variant realized as distinct Go structs rather than
// one discriminated struct: each implements Node, and Expression/Statement
// besides.
package ast

import (
	"bytes"
	"strings"

	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/types"
)

// Node is the base interface every AST node implements.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
	Dump() map[string]interface{}
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
	GetType() *types.TypeDef
	SetType(*types.TypeDef)
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	statementNode()
}

func typeDef(t *types.TypeDef) string {
	if t == nil {
		return "N/A"
	}
	return t.Canonical()
}

func dumpAll(nodes []Node) []interface{} {
	out := make([]interface{}, len(nodes))
	for i, n := range nodes {
		out[i] = n.Dump()
	}
	return out
}

func dumpExprs(exprs []Expression) []interface{} {
	out := make([]interface{}, len(exprs))
	for i, e := range exprs {
		out[i] = e.Dump()
	}
	return out
}

func dumpStmts(stmts []Statement) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = s.Dump()
	}
	return out
}

// Program is the parse root: a sequence of top-level declarations and
// statements.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

func (p *Program) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Program", "body": dumpStmts(p.Statements)}
}

// Argument is a single `name: value` pair in a Call's argument list;
// name is empty for a positional argument.
type Argument struct {
	Name  string
	Value Expression
}

func dumpArgs(args []Argument) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = map[string]interface{}{"name": a.Name, "value": a.Value.Dump()}
	}
	return out
}

// Parameter is a declared function parameter.
type Parameter struct {
	Name     string
	Type     *types.TypeDef
	HasValue bool
	Default  Expression
}

func dumpParams(params []Parameter) []interface{} {
	out := make([]interface{}, len(params))
	for i, p := range params {
		entry := map[string]interface{}{"name": p.Name, "type_def": typeDef(p.Type)}
		if p.HasValue {
			entry["value"] = p.Default.Dump()
		}
		out[i] = entry
	}
	return out
}

// ExprBase is embedded by every Expression node to avoid repeating the
// Token/Type plumbing each kind needs.
type ExprBase struct {
	Token lexer.Token
	Type  *types.TypeDef
}

func (e *ExprBase) expressionNode()            {}
func (e *ExprBase) TokenLiteral() string       { return e.Token.Lexeme }
func (e *ExprBase) Pos() lexer.Position        { return e.Token.Pos }
func (e *ExprBase) GetType() *types.TypeDef    { return e.Type }
func (e *ExprBase) SetType(t *types.TypeDef)   { e.Type = t }

// StmtBase is embedded by every Statement node.
type StmtBase struct {
	Token lexer.Token
}

func (s *StmtBase) statementNode()       {}
func (s *StmtBase) TokenLiteral() string { return s.Token.Lexeme }
func (s *StmtBase) Pos() lexer.Position  { return s.Token.Pos }

// NamedVariable is an identifier reference.
type NamedVariable struct {
	ExprBase
	Name string
}

func (n *NamedVariable) String() string { return n.Name }
func (n *NamedVariable) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "NamedVariable", "identifier": n.Name, "type_def": typeDef(n.Type)}
}

// Number is a numeric literal.
type Number struct {
	ExprBase
	Value float64
}

func (n *Number) String() string { return n.Token.Lexeme }
func (n *Number) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Number", "value": n.Value, "type_def": typeDef(n.Type)}
}

// StringLiteral is a non-interpolated string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

func (s *StringLiteral) String() string { return "\"" + s.Value + "\"" }
func (s *StringLiteral) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "StringLiteral", "value": s.Value, "type_def": typeDef(s.Type)}
}

// String is an interpolated string: a sequence of literal STRING_PART
// fragments and embedded expressions.
type String struct {
	ExprBase
	Parts []Expression // alternating StringLiteral and arbitrary Expression nodes
}

func (s *String) String() string {
	var out bytes.Buffer
	for _, p := range s.Parts {
		out.WriteString(p.String())
	}
	return out.String()
}
func (s *String) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "String", "elements": dumpExprs(s.Parts), "type_def": typeDef(s.Type)}
}

// Boolean is a true/false literal.
type Boolean struct {
	ExprBase
	Value bool
}

func (b *Boolean) String() string { return b.Token.Lexeme }
func (b *Boolean) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Boolean", "value": b.Value, "type_def": typeDef(b.Type)}
}

// Null is the `null` literal.
type Null struct{ ExprBase }

func (n *Null) String() string { return "null" }
func (n *Null) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Null", "type_def": typeDef(n.Type)}
}

// List is a list literal (`[1, 2, 3]`).
type List struct {
	ExprBase
	Elements []Expression
}

func (l *List) String() string {
	items := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		items[i] = e.String()
	}
	return "[" + strings.Join(items, ", ") + "]"
}
func (l *List) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "List", "elements": dumpExprs(l.Elements), "type_def": typeDef(l.Type)}
}

// Map is a map literal (`{"a": 1, "b": 2}`).
type Map struct {
	ExprBase
	Keys   []Expression
	Values []Expression
}

func (m *Map) String() string {
	parts := make([]string, len(m.Keys))
	for i := range m.Keys {
		parts[i] = m.Keys[i].String() + ": " + m.Values[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (m *Map) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Map", "keys": dumpExprs(m.Keys), "values": dumpExprs(m.Values), "type_def": typeDef(m.Type)}
}

// Super is a `super` reference inside a method body.
type Super struct{ ExprBase }

func (s *Super) String() string { return "super" }
func (s *Super) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Super", "type_def": typeDef(s.Type)}
}

// Binary is a binary operator expression.
type Binary struct {
	ExprBase
	Left     Expression
	Operator string
	Right    Expression
}

func (b *Binary) String() string { return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")" }
func (b *Binary) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Binary", "left": b.Left.Dump(), "operator": b.Operator, "right": b.Right.Dump(), "type_def": typeDef(b.Type)}
}

// Unary is a prefix operator expression (`-x`, `!b`).
type Unary struct {
	ExprBase
	Operator string
	Right    Expression
}

func (u *Unary) String() string { return "(" + u.Operator + u.Right.String() + ")" }
func (u *Unary) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Unary", "operator": u.Operator, "right": u.Right.Dump(), "type_def": typeDef(u.Type)}
}

// And/Or are short-circuiting boolean connectives, spec-distinct from
// Binary because they never evaluate their right operand eagerly.
type And struct {
	ExprBase
	Left, Right Expression
}

func (a *And) String() string { return "(" + a.Left.String() + " and " + a.Right.String() + ")" }
func (a *And) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "And", "left": a.Left.Dump(), "right": a.Right.Dump(), "type_def": typeDef(a.Type)}
}

type Or struct {
	ExprBase
	Left, Right Expression
}

func (o *Or) String() string { return "(" + o.Left.String() + " or " + o.Right.String() + ")" }
func (o *Or) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Or", "left": o.Left.Dump(), "right": o.Right.Dump(), "type_def": typeDef(o.Type)}
}

// Is is a type-test expression (`x is Point`).
type Is struct {
	ExprBase
	Left      Expression
	TypeName  string
}

func (i *Is) String() string { return "(" + i.Left.String() + " is " + i.TypeName + ")" }
func (i *Is) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Is", "left": i.Left.Dump(), "right": i.TypeName, "type_def": typeDef(i.Type)}
}

// Subscript is `collection[index]`.
type Subscript struct {
	ExprBase
	Left  Expression
	Index Expression
}

func (s *Subscript) String() string { return s.Left.String() + "[" + s.Index.String() + "]" }
func (s *Subscript) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Subscript", "left": s.Left.Dump(), "right": s.Index.Dump(), "type_def": typeDef(s.Type)}
}

// Unwrap is the postfix `?` operator.
type Unwrap struct {
	ExprBase
	Left Expression
}

func (u *Unwrap) String() string { return u.Left.String() + "?" }
func (u *Unwrap) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Unwrap", "left": u.Left.Dump(), "unwrapped": true, "type_def": typeDef(u.Type)}
}

// ForceUnwrap is the postfix `!` operator.
type ForceUnwrap struct {
	ExprBase
	Left Expression
}

func (f *ForceUnwrap) String() string { return f.Left.String() + "!" }
func (f *ForceUnwrap) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "ForceUnwrap", "left": f.Left.Dump(), "unwrapped": true, "type_def": typeDef(f.Type)}
}

// Dot is member access (`obj.field`).
type Dot struct {
	ExprBase
	Left       Expression
	Identifier string
}

func (d *Dot) String() string { return d.Left.String() + "." + d.Identifier }
func (d *Dot) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Dot", "left": d.Left.Dump(), "identifier": d.Identifier, "type_def": typeDef(d.Type)}
}

// ObjectInit is `Type{ field = value, ... }`.
type ObjectInit struct {
	ExprBase
	TypeName string
	Keys     []string
	Values   []Expression
}

func (o *ObjectInit) String() string {
	parts := make([]string, len(o.Keys))
	for i := range o.Keys {
		parts[i] = o.Keys[i] + " = " + o.Values[i].String()
	}
	return o.TypeName + "{" + strings.Join(parts, ", ") + "}"
}
func (o *ObjectInit) Dump() map[string]interface{} {
	return map[string]interface{}{
		"node": "ObjectInit", "identifier": o.TypeName,
		"keys": o.Keys, "values": dumpExprs(o.Values), "type_def": typeDef(o.Type),
	}
}

// Call is a function/method call, with optional inline catch clauses
// attached.
type Call struct {
	ExprBase
	Callee    Expression
	Arguments []Argument
	Catches   []*Catch
}

func (c *Call) String() string {
	args := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a.Value.String()
	}
	return c.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}
func (c *Call) Dump() map[string]interface{} {
	d := map[string]interface{}{"node": "Call", "callee": c.Callee.Dump(), "arguments": dumpArgs(c.Arguments), "type_def": typeDef(c.Type)}
	if len(c.Catches) > 0 {
		catches := make([]interface{}, len(c.Catches))
		for i, ct := range c.Catches {
			catches[i] = ct.Dump()
		}
		d["catches"] = catches
	}
	return d
}

// SuperCall is a call to a superclass method (`super.name(...)`).
type SuperCall struct {
	ExprBase
	MethodName string
	Arguments  []Argument
}

func (s *SuperCall) String() string { return "super." + s.MethodName + "(...)" }
func (s *SuperCall) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "SuperCall", "identifier": s.MethodName, "arguments": dumpArgs(s.Arguments), "type_def": typeDef(s.Type)}
}

// Function is a function value: its declaration header plus body,
// shared by top-level `fun`, methods, anonymous lambdas, `catch`
// closures, and the synthetic `test` functions.
type Function struct {
	ExprBase
	Name       string
	Kind       types.FunctionKind
	Parameters []Parameter
	Body       *Block
}

func (f *Function) String() string { return "fun " + f.Name + "(...)" }
func (f *Function) Dump() map[string]interface{} {
	d := map[string]interface{}{
		"node": "Function", "identifier": f.Name, "type": f.Kind.String(),
		"members": dumpParams(f.Parameters), "type_def": typeDef(f.Type),
	}
	if f.Body != nil {
		d["body"] = f.Body.Dump()
	}
	return d
}

// Block is a `{ ... }` statement sequence.
type Block struct {
	StmtBase
	Statements []Statement
}

func (b *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range b.Statements {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(s.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}
func (b *Block) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Block", "body": dumpStmts(b.Statements)}
}

// ExpressionStatement wraps an expression used for its side effects.
type ExpressionStatement struct {
	StmtBase
	Expr Expression
}

func (e *ExpressionStatement) String() string {
	if e.Expr != nil {
		return e.Expr.String()
	}
	return ""
}
func (e *ExpressionStatement) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "ExpressionStatement", "right": e.Expr.Dump()}
}

// VarDeclaration is `[const] Type name [= expr];`.
type VarDeclaration struct {
	StmtBase
	Name        string
	Constant    bool
	Initializer Expression
	Type        *types.TypeDef
}

func (v *VarDeclaration) String() string { return "var " + v.Name }
func (v *VarDeclaration) Dump() map[string]interface{} {
	d := map[string]interface{}{"node": "VarDeclaration", "identifier": v.Name, "constant": v.Constant, "type_def": typeDef(v.Type)}
	if v.Initializer != nil {
		d["right"] = v.Initializer.Dump()
	}
	return d
}

// FunDeclaration is a top-level or member `fun` declaration statement
// wrapping a Function value.
type FunDeclaration struct {
	StmtBase
	Fn *Function
}

func (f *FunDeclaration) String() string { return f.Fn.String() }
func (f *FunDeclaration) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "FunDeclaration", "identifier": f.Fn.Name, "body": f.Fn.Dump(), "type_def": typeDef(f.Fn.Type)}
}

// ListDeclaration names a list type, e.g. `[num] X;`: a top-level alias
// that later var/parameter declarations of `X` resolve against.
type ListDeclaration struct {
	StmtBase
	Name string
	Type *types.TypeDef
}

func (l *ListDeclaration) String() string { return "[" + typeDef(l.Type) + "] " + l.Name + ";" }
func (l *ListDeclaration) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "ListDeclaration", "identifier": l.Name, "type_def": typeDef(l.Type)}
}

// MapDeclaration names a map type, e.g. `{str,num} Scores;`.
type MapDeclaration struct {
	StmtBase
	Name string
	Type *types.TypeDef
}

func (m *MapDeclaration) String() string { return typeDef(m.Type) + " " + m.Name + ";" }
func (m *MapDeclaration) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "MapDeclaration", "identifier": m.Name, "type_def": typeDef(m.Type)}
}

// Field is a single object/class member field.
type Field struct {
	Name     string
	Type     *types.TypeDef
	Static   bool
	Default  Expression
}

// ObjectDeclaration is `object`/`class Name[<Super>] { ... }`.
type ObjectDeclaration struct {
	StmtBase
	Name        string
	SuperName   string
	Inheritable bool
	Fields      []Field
	Methods     []*FunDeclaration
	Type        *types.TypeDef
}

func (o *ObjectDeclaration) String() string { return "object " + o.Name }
func (o *ObjectDeclaration) Dump() map[string]interface{} {
	members := make([]interface{}, 0, len(o.Fields)+len(o.Methods))
	for _, f := range o.Fields {
		entry := map[string]interface{}{"identifier": f.Name, "type_def": typeDef(f.Type), "static": f.Static}
		if f.Default != nil {
			entry["right"] = f.Default.Dump()
		}
		members = append(members, entry)
	}
	for _, m := range o.Methods {
		members = append(members, m.Dump())
	}
	d := map[string]interface{}{
		"node": "ObjectDeclaration", "identifier": o.Name, "members": members,
		"constant": true, "type_def": typeDef(o.Type),
	}
	if o.SuperName != "" {
		d["prefix"] = o.SuperName
	}
	return d
}

// EnumCase is one `Name [= value]` case of an enum.
type EnumCase struct {
	Name  string
	Value int
}

// Enum is `enum Name [(BaseType)] { ... }`.
type Enum struct {
	StmtBase
	Name  string
	Cases []EnumCase
	Type  *types.TypeDef
}

func (e *Enum) String() string { return "enum " + e.Name }
func (e *Enum) Dump() map[string]interface{} {
	cases := make([]interface{}, len(e.Cases))
	for i, c := range e.Cases {
		cases[i] = map[string]interface{}{"identifier": c.Name, "value": c.Value}
	}
	return map[string]interface{}{"node": "Enum", "identifier": e.Name, "cases": cases, "type_def": typeDef(e.Type)}
}

// If is `if (cond) block [else elseBranch]`.
type If struct {
	StmtBase
	Condition Expression
	Then      *Block
	Else      Node // *Block or *If (else-if chaining)
}

func (i *If) String() string { return "if (" + i.Condition.String() + ") " + i.Then.String() }
func (i *If) Dump() map[string]interface{} {
	d := map[string]interface{}{"node": "If", "condition": i.Condition.Dump(), "block": i.Then.Dump()}
	if i.Else != nil {
		d["else"] = i.Else.Dump()
	}
	return d
}

// Return is `return [expr];`.
type Return struct {
	StmtBase
	Value Expression
}

func (r *Return) String() string {
	if r.Value != nil {
		return "return " + r.Value.String()
	}
	return "return"
}
func (r *Return) Dump() map[string]interface{} {
	d := map[string]interface{}{"node": "Return"}
	if r.Value != nil {
		d["right"] = r.Value.Dump()
	}
	return d
}

// Break/Continue are bare loop-control statements.
type Break struct{ StmtBase }

func (b *Break) String() string                  { return "break" }
func (b *Break) Dump() map[string]interface{}     { return map[string]interface{}{"node": "Break"} }

type Continue struct{ StmtBase }

func (c *Continue) String() string                { return "continue" }
func (c *Continue) Dump() map[string]interface{}  { return map[string]interface{}{"node": "Continue"} }

// Throw is `throw expr;`.
type Throw struct {
	StmtBase
	Value Expression
}

func (t *Throw) String() string { return "throw " + t.Value.String() }
func (t *Throw) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Throw", "right": t.Value.Dump()}
}

// Catch is an inline handler clause attached to a Call, itself a
// Function of kind Catch.
type Catch struct {
	StmtBase
	Fn *Function
}

func (c *Catch) String() string { return "catch " + c.Fn.String() }
func (c *Catch) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "Catch", "body": c.Fn.Dump()}
}

// While is `while (cond) body`.
type While struct {
	StmtBase
	Condition Expression
	Body      *Block
}

func (w *While) String() string { return "while (" + w.Condition.String() + ") " + w.Body.String() }
func (w *While) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "While", "condition": w.Condition.Dump(), "body": w.Body.Dump()}
}

// DoUntil is `do body until (cond);`.
type DoUntil struct {
	StmtBase
	Body      *Block
	Condition Expression
}

func (d *DoUntil) String() string { return "do " + d.Body.String() + " until (" + d.Condition.String() + ")" }
func (d *DoUntil) Dump() map[string]interface{} {
	return map[string]interface{}{"node": "DoUntil", "body": d.Body.Dump(), "condition": d.Condition.Dump()}
}

// For is the classic three-clause `for (init; cond; post) body`.
type For struct {
	StmtBase
	Init     Statement
	Cond     Expression
	Post     Statement
	Body     *Block
}

func (f *For) String() string { return "for (...) " + f.Body.String() }
func (f *For) Dump() map[string]interface{} {
	d := map[string]interface{}{"body": f.Body.Dump(), "node": "For"}
	if f.Init != nil {
		d["init_expression"] = f.Init.Dump()
	}
	if f.Cond != nil {
		d["condition"] = f.Cond.Dump()
	}
	if f.Post != nil {
		d["post_loop"] = f.Post.Dump()
	}
	return d
}

// ForEach is `foreach (Type name in iterable) body`.
type ForEach struct {
	StmtBase
	VarName  string
	VarType  *types.TypeDef
	Iterable Expression
	Body     *Block
}

func (f *ForEach) String() string { return "foreach (" + f.VarName + " in " + f.Iterable.String() + ") " + f.Body.String() }
func (f *ForEach) Dump() map[string]interface{} {
	return map[string]interface{}{
		"node": "ForEach", "identifier": f.VarName, "type_def": typeDef(f.VarType),
		"right": f.Iterable.Dump(), "body": f.Body.Dump(),
	}
}

// Export is either `export name [as alias];` (the standalone post-hoc
// form) or `export` directly prefixing a declaration (Inner holds the
// wrapped declaration in that case, and Alias is unused).
type Export struct {
	StmtBase
	Name  string
	Alias string
	Inner Statement
}

func (e *Export) String() string { return "export " + e.Name }
func (e *Export) Dump() map[string]interface{} {
	d := map[string]interface{}{"node": "Export", "identifier": e.Name}
	if e.Alias != "" {
		d["prefix"] = e.Alias
	}
	if e.Inner != nil {
		d["body"] = e.Inner.Dump()
	}
	return d
}

// Import is `import { A, B } from "path" [as Prefix];`.
type Import struct {
	StmtBase
	Symbols []string
	Path    string
	Prefix  string
}

func (i *Import) String() string { return "import from " + i.Path }
func (i *Import) Dump() map[string]interface{} {
	d := map[string]interface{}{"node": "Import", "imported_symbols": i.Symbols, "path": i.Path}
	if i.Prefix != "" {
		d["prefix"] = i.Prefix
	}
	return d
}

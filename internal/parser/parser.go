// Package parser builds an ast.Program from a lexer token stream using
// straightforward recursive descent with Pratt-style precedence
// climbing for expressions. It is the upstream collaborator the
// emitter (internal/compiler) consumes, scoped to exactly the grammar
// the AST node set can represent.
package parser

import (
	"fmt"

	"github.com/Uzendayo/Nuua/internal/ast"
	"github.com/Uzendayo/Nuua/internal/lexer"
	"github.com/Uzendayo/Nuua/internal/token"
)

// Parser consumes tokens from a Lexer one at a time, keeping one token
// of lookahead.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []string
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.cur.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(k token.Kind, what string) bool {
	if p.cur.Kind != k {
		p.errorf("expected %s, got %q", what, p.cur.Lexeme)
		return false
	}
	return true
}

// ParseProgram parses an entire source file into an ast.Program. Parse
// errors are collected, not fatal: callers should check the returned
// error slice and refuse to compile a program with any.
func ParseProgram(source string) (*ast.Program, []string) {
	p := New(lexer.New(source))
	prog := &ast.Program{}
	for p.cur.Kind != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.next()
	}
	return prog, p.errors
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Kind {
	case token.PRINT:
		return p.parsePrintStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IDENT:
		if p.peek.Kind == token.COLON {
			return p.parseDeclaration()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parsePrintStatement() ast.Statement {
	tok := p.cur
	p.next()
	value := p.parseExpression(lowest)
	return &ast.PrintStatement{Tok: tok, Value: value}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.cur
	p.next()
	value := p.parseExpression(lowest)
	return &ast.ReturnStatement{Tok: tok, Value: value}
}

// parseDeclaration parses `name: Type [= init]`. Caller has already
// confirmed p.cur is IDENT and p.peek is COLON.
func (p *Parser) parseDeclaration() ast.Statement {
	tok := p.cur
	name := p.cur.Lexeme
	p.next() // consume IDENT, cur == COLON
	p.next() // consume COLON, cur == type name
	// `fn` is a keyword but is also accepted as the function type name.
	if p.cur.Kind != token.FN && !p.expect(token.IDENT, "type name") {
		return nil
	}
	typeName := p.cur.Lexeme

	decl := &ast.Declaration{Tok: tok, Name: name, Type: typeName}
	if p.peek.Kind == token.ASSIGN {
		p.next() // cur == ASSIGN
		p.next() // cur == first token of initializer
		decl.Initial = p.parseExpression(lowest)
	}
	return decl
}

// parseBody parses either a single statement following `:`, or a
// brace-delimited block, matching whichever the source actually uses.
func (p *Parser) parseBody() ast.Statement {
	if p.cur.Kind == token.COLON {
		p.next()
		return p.parseStatement()
	}
	return p.parseBlockStatement()
}

func (p *Parser) parseBlockStatement() ast.Statement {
	block := &ast.BlockStatement{Tok: p.cur}
	p.next() // consume '{'
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.next()
	}
	// cur == '}'
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.cur
	p.next()
	cond := p.parseExpression(lowest)
	p.next() // advance onto ':' or '{'
	then := p.parseBody()
	return &ast.IfStatement{Tok: tok, Condition: cond, Then: then}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.cur
	p.next()
	cond := p.parseExpression(lowest)
	p.next()
	body := p.parseBody()
	return &ast.WhileStatement{Tok: tok, Condition: cond, Body: body}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.cur
	expr := p.parseExpression(lowest)
	return &ast.ExpressionStatement{Tok: tok, Expression: expr}
}

// ---- expression parsing: precedence climbing ----

type precedence int

const (
	lowest precedence = iota
	logical
	equality
	comparison
	sum
	product
	unary
	call
)

var precedences = map[token.Kind]precedence{
	token.EQ:       equality,
	token.NEQ:      equality,
	token.LT:       comparison,
	token.LTE:      comparison,
	token.GT:       comparison,
	token.GTE:      comparison,
	token.PLUS:     sum,
	token.MINUS:    sum,
	token.STAR:     product,
	token.SLASH:    product,
	token.LPAREN:   call,
	token.LBRACKET: call,
}

func (p *Parser) peekPrecedence() precedence {
	if pr, ok := precedences[p.peek.Kind]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) parseExpression(prec precedence) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for p.peek.Kind != token.EOF && prec < p.peekPrecedence() {
		p.next()
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.cur.Kind {
	case token.INT:
		return p.parseIntegerLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.STRING:
		return &ast.StringLiteral{Tok: p.cur, Value: p.cur.Lexeme}
	case token.TRUE:
		return &ast.BoolLiteral{Tok: p.cur, Value: true}
	case token.FALSE:
		return &ast.BoolLiteral{Tok: p.cur, Value: false}
	case token.NONE:
		return &ast.NoneLiteral{Tok: p.cur}
	case token.BANG, token.MINUS:
		return p.parseUnary()
	case token.LPAREN:
		return p.parseGroup()
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseDictionaryLiteral()
	case token.FN:
		return p.parseFunctionLiteral()
	case token.IDENT:
		return p.parseIdentOrAssignOrAccess()
	default:
		p.errorf("unexpected token %q in expression", p.cur.Lexeme)
		return nil
	}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	var v int64
	fmt.Sscanf(p.cur.Lexeme, "%d", &v)
	return &ast.IntegerLiteral{Tok: p.cur, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	var v float64
	fmt.Sscanf(p.cur.Lexeme, "%g", &v)
	return &ast.FloatLiteral{Tok: p.cur, Value: v}
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.cur
	op := p.cur.Kind
	p.next()
	operand := p.parseExpression(unary)
	return &ast.UnaryExpression{Tok: tok, Operator: op, Operand: operand}
}

func (p *Parser) parseGroup() ast.Expression {
	tok := p.cur
	p.next()
	inner := p.parseExpression(lowest)
	p.next() // consume expression, cur should be ')'
	if !p.expect(token.RPAREN, "')'") {
		return nil
	}
	return &ast.GroupExpression{Tok: tok, Inner: inner}
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.cur
	lit := &ast.ListLiteral{Tok: tok}
	p.next() // consume '['
	for p.cur.Kind != token.RBRACKET && p.cur.Kind != token.EOF {
		lit.Elements = append(lit.Elements, p.parseExpression(lowest))
		p.next()
		if p.cur.Kind == token.COMMA {
			p.next()
		}
	}
	return lit
}

func (p *Parser) parseDictionaryLiteral() ast.Expression {
	tok := p.cur
	lit := &ast.DictionaryLiteral{Tok: tok}
	p.next() // consume '{'
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		if p.cur.Kind != token.STRING && !p.expect(token.IDENT, "dictionary key") {
			return nil
		}
		key := p.cur.Lexeme
		p.next() // consume key
		if !p.expect(token.COLON, "':'") {
			return nil
		}
		p.next() // consume ':'
		value := p.parseExpression(lowest)
		lit.Keys = append(lit.Keys, key)
		lit.Values = append(lit.Values, value)
		p.next()
		if p.cur.Kind == token.COMMA {
			p.next()
		}
	}
	return lit
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.cur
	p.next() // consume 'fn'
	if !p.expect(token.LPAREN, "'('") {
		return nil
	}
	fn := &ast.FunctionLiteral{Tok: tok}
	p.next() // consume '('
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		if !p.expect(token.IDENT, "parameter name") {
			return nil
		}
		name := p.cur.Lexeme
		p.next() // consume name
		if !p.expect(token.COLON, "':'") {
			return nil
		}
		p.next() // consume ':'
		if !p.expect(token.IDENT, "parameter type") {
			return nil
		}
		fn.Parameters = append(fn.Parameters, ast.Parameter{Name: name, Type: p.cur.Lexeme})
		p.next()
		if p.cur.Kind == token.COMMA {
			p.next()
		}
	}
	// cur == ')'
	if p.peek.Kind == token.ARROW {
		p.next() // cur == '->'
		p.next() // cur == return type
		if !p.expect(token.IDENT, "return type") {
			return nil
		}
		fn.ReturnType = p.cur.Lexeme
		p.next() // cur == '{'
	} else {
		p.next() // cur == '{'
	}
	if !p.expect(token.LBRACE, "'{'") {
		return nil
	}
	body := p.parseBlockStatement()
	fn.Body, _ = body.(*ast.BlockStatement)
	return fn
}

// parseIdentOrAssignOrAccess resolves the ambiguity between a bare
// variable reference, `name = value`, `name(args)`, `name[i]`, and
// `name[i] = value`.
func (p *Parser) parseIdentOrAssignOrAccess() ast.Expression {
	tok := p.cur
	name := p.cur.Lexeme

	switch p.peek.Kind {
	case token.ASSIGN:
		p.next() // cur == '='
		p.next() // cur == first token of value
		value := p.parseExpression(lowest)
		return &ast.Assignment{Tok: tok, Name: name, Value: value}
	case token.LPAREN:
		p.next() // cur == '('
		args := p.parseCallArgs()
		return &ast.CallExpression{Tok: tok, Callee: name, Args: args}
	case token.LBRACKET:
		p.next() // cur == '['
		p.next() // cur == index expression
		index := p.parseExpression(lowest)
		p.next() // cur == ']'
		if !p.expect(token.RBRACKET, "']'") {
			return nil
		}
		if p.peek.Kind == token.ASSIGN {
			p.next() // cur == '='
			p.next() // cur == first token of value
			value := p.parseExpression(lowest)
			return &ast.IndexedAssignment{Tok: tok, Container: name, Index: index, Value: value}
		}
		return &ast.Access{Tok: tok, Container: name, Index: index}
	default:
		return &ast.Variable{Tok: tok, Name: name}
	}
}

func (p *Parser) parseCallArgs() []ast.Expression {
	var args []ast.Expression
	p.next() // consume '(', cur == first arg or ')'
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		args = append(args, p.parseExpression(lowest))
		p.next()
		if p.cur.Kind == token.COMMA {
			p.next()
		}
	}
	return args
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	tok := p.cur
	op := p.cur.Kind
	prec := precedences[op]
	p.next()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Tok: tok, Left: left, Operator: op, Right: right}
}

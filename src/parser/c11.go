// c11.go implements the C99/C11 surface spec §4.E.8 calls for: designated
// initializers, compound literals, _Generic, _Static_assert, _Alignas/_Alignof, and
// the initializer-list grammar both declarations and compound literals share.
package parser

import (
	"cfront/src/ast"
	"cfront/src/lexer"
)

// parseAlignas consumes `_Alignas(expr-or-type)` as a declaration specifier. The
// alignment value itself is not threaded into lowering (no AST consumer asks for it
// yet); this keeps the parser from choking on headers that use it.
func (p *Parser) parseAlignas() {
	p.advance() // _Alignas
	p.expect(lexer.LPAREN, "(")
	if p.looksLikeTypeName() {
		p.parseTypeName()
	} else {
		p.parseConstantExpression()
	}
	p.expect(lexer.RPAREN, ")")
}

// parseStaticAssert parses `_Static_assert(expr, "message");`.
func (p *Parser) parseStaticAssert() *ast.Node {
	loc := p.loc()
	p.advance() // _Static_assert
	p.expect(lexer.LPAREN, "(")
	cond := p.parseConstantExpression()
	msg := ""
	if p.at(lexer.COMMA) {
		p.advance()
		tok := p.expect(lexer.STRING, "string literal")
		msg = tok.Value.Str
	}
	p.expect(lexer.RPAREN, ")")
	p.expect(lexer.SEMICOLON, ";")
	return ast.NewNode(ast.StaticAssert, loc, ast.StaticAssertData{Cond: cond, Message: msg})
}

// parseGenericExpr parses `_Generic(controlling-expr, type: expr, ..., default: expr)`.
func (p *Parser) parseGenericExpr() *ast.Node {
	loc := p.loc()
	p.advance() // _Generic
	p.expect(lexer.LPAREN, "(")
	controlling := p.parseAssignmentExpr()
	node := ast.NewNode(ast.GenericExpr, loc, ast.GenericData{Controlling: controlling})
	for p.at(lexer.COMMA) {
		p.advance()
		aloc := p.loc()
		var typ *ast.Node
		if p.at(lexer.DEFAULT) {
			p.advance()
		} else {
			typ = p.parseTypeName()
		}
		p.expect(lexer.COLON, ":")
		result := p.parseAssignmentExpr()
		node.AddChild(ast.NewNode(ast.GenericAssoc, aloc, ast.GenericAssocData{Type: typ, Result: result}))
	}
	p.expect(lexer.RPAREN, ")")
	return node
}

// parseInitializer parses an initializer: either a brace-enclosed initializer list
// or a plain assignment-expression.
func (p *Parser) parseInitializer() *ast.Node {
	if p.at(lexer.LBRACE) {
		return p.parseInitializerList()
	}
	return p.parseAssignmentExpr()
}

// parseInitializerList parses `{ initializer (, initializer)* [,] }`, where each
// initializer may be preceded by a designator (`.field =` or `[index] =`), per
// spec §4.E.8.
func (p *Parser) parseInitializerList() *ast.Node {
	loc := p.loc()
	p.expect(lexer.LBRACE, "{")
	node := ast.NewNode(ast.InitializerList, loc, nil)
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		node.AddChild(p.parseDesignatedOrPlainInitializer())
		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(lexer.RBRACE, "}")
	return node
}

func (p *Parser) parseDesignatedOrPlainInitializer() *ast.Node {
	if p.at(lexer.DOT) {
		loc := p.loc()
		p.advance()
		field := p.expect(lexer.IDENTIFIER, "field designator").Lexeme
		p.expect(lexer.ASSIGN, "=")
		value := p.parseInitializer()
		return ast.NewNode(ast.DesignatedInit, loc, ast.DesignatedInitData{Field: field, Value: value})
	}
	if p.at(lexer.LBRACKET) {
		loc := p.loc()
		p.advance()
		idx := p.parseConstantExpression()
		p.expect(lexer.RBRACKET, "]")
		p.expect(lexer.ASSIGN, "=")
		value := p.parseInitializer()
		return ast.NewNode(ast.DesignatedInit, loc, ast.DesignatedInitData{Index: idx, Value: value})
	}
	return p.parseInitializer()
}

// parseCompoundLiteral parses the remainder of a compound literal, `(T){ ... }`,
// after the caller has already disambiguated the leading `(T)` as a type name (see
// expressions.go's cast-vs-paren logic).
func (p *Parser) parseCompoundLiteral(typ *ast.Node) *ast.Node {
	init := p.parseInitializerList()
	return ast.NewNode(ast.CompoundLiteral, typ.Loc, ast.CompoundLiteralData{Type: typ, Init: init})
}

package parser

import (
	"cfront/src/ast"
	"cfront/src/lexer"
)

// parseStatement dispatches on the leading token per spec §4.E.5.
func (p *Parser) parseStatement() *ast.Node {
	switch p.cur().Kind {
	case lexer.LBRACE:
		return p.parseCompoundStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.SWITCH:
		return p.parseSwitchStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.DO:
		return p.parseDoWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.GOTO:
		return p.parseGotoStmt()
	case lexer.CONTINUE:
		loc := p.loc()
		p.advance()
		p.expect(lexer.SEMICOLON, ";")
		return ast.NewNode(ast.ContinueStmt, loc, nil)
	case lexer.BREAK:
		loc := p.loc()
		p.advance()
		p.expect(lexer.SEMICOLON, ";")
		return ast.NewNode(ast.BreakStmt, loc, nil)
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.CASE:
		return p.parseCaseStmt()
	case lexer.DEFAULT:
		return p.parseDefaultStmt()
	case lexer.ASM:
		return p.parseAsmStmt()
	case lexer.ATTRIBUTE:
		p.parseAttributeSpecifier()
		if p.at(lexer.SEMICOLON) {
			p.advance()
			return nil
		}
		return p.parseStatement()
	case lexer.EXTENSION:
		p.advance()
		return p.parseStatement()
	case lexer.SEMICOLON:
		loc := p.loc()
		p.advance()
		return ast.NewNode(ast.NullStmt, loc, nil)
	case lexer.STATIC_ASSERT:
		return p.parseStaticAssert()
	case lexer.LABEL:
		// GNU __label__ name, name, ...; declares block-local labels. Parsed and
		// discarded — lowering never needs a declared-but-unreferenced label set.
		p.advance()
		for {
			p.expect(lexer.IDENTIFIER, "label name")
			if !p.at(lexer.COMMA) {
				break
			}
			p.advance()
		}
		p.expect(lexer.SEMICOLON, ";")
		return nil
	case lexer.IDENTIFIER:
		if p.peekN(1).Kind == lexer.COLON {
			return p.parseLabeledStmt()
		}
		return p.parseExprStmt()
	}
	if p.isDeclarationStart() {
		return p.parseExternalDeclaration()
	}
	return p.parseExprStmt()
}

// parseCompoundStmt parses `{ (declaration|statement)* }`, pushing and popping a
// typedef scope so block-local typedefs don't leak into the enclosing scope (spec
// §4.E.5, §4.E.10, and the scoping invariant tested in spec §8.1.4).
func (p *Parser) parseCompoundStmt() *ast.Node {
	loc := p.loc()
	p.expect(lexer.LBRACE, "{")
	p.typedefs.Push()
	node := ast.NewNode(ast.CompoundStmt, loc, nil)
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			node.AddChild(stmt)
		}
		if p.pos == before {
			p.advance()
		}
	}
	p.typedefs.Pop()
	p.expect(lexer.RBRACE, "}")
	return node
}

func (p *Parser) parseIfStmt() *ast.Node {
	loc := p.loc()
	p.advance() // if
	p.expect(lexer.LPAREN, "(")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, ")")
	then := p.parseStatement()
	var els *ast.Node
	if p.at(lexer.ELSE) {
		p.advance()
		els = p.parseStatement()
	}
	return ast.NewNode(ast.IfStmt, loc, ast.IfData{Cond: cond, Then: then, Else: els})
}

func (p *Parser) parseSwitchStmt() *ast.Node {
	loc := p.loc()
	p.advance() // switch
	p.expect(lexer.LPAREN, "(")
	tag := p.parseExpression()
	p.expect(lexer.RPAREN, ")")
	body := p.parseStatement()
	return ast.NewNode(ast.SwitchStmt, loc, ast.SwitchData{Tag: tag, Body: body})
}

func (p *Parser) parseWhileStmt() *ast.Node {
	loc := p.loc()
	p.advance() // while
	p.expect(lexer.LPAREN, "(")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, ")")
	body := p.parseStatement()
	return ast.NewNode(ast.WhileStmt, loc, ast.WhileData{Cond: cond, Body: body})
}

func (p *Parser) parseDoWhileStmt() *ast.Node {
	loc := p.loc()
	p.advance() // do
	body := p.parseStatement()
	p.expect(lexer.WHILE, "while")
	p.expect(lexer.LPAREN, "(")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, ")")
	p.expect(lexer.SEMICOLON, ";")
	return ast.NewNode(ast.DoWhileStmt, loc, ast.WhileData{Cond: cond, Body: body})
}

func (p *Parser) parseForStmt() *ast.Node {
	loc := p.loc()
	p.advance() // for
	p.expect(lexer.LPAREN, "(")
	p.typedefs.Push()
	defer p.typedefs.Pop()

	var init *ast.Node
	if !p.at(lexer.SEMICOLON) {
		if p.isDeclarationStart() {
			init = p.parseExternalDeclaration()
		} else {
			init = ast.NewNode(ast.ExprStmt, p.loc(), nil)
			init.AddChild(p.parseExpression())
			p.expect(lexer.SEMICOLON, ";")
		}
	} else {
		p.advance()
	}

	var cond *ast.Node
	if !p.at(lexer.SEMICOLON) {
		cond = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, ";")

	var inc *ast.Node
	if !p.at(lexer.RPAREN) {
		inc = p.parseExpression()
	}
	p.expect(lexer.RPAREN, ")")

	body := p.parseStatement()
	return ast.NewNode(ast.ForStmt, loc, ast.ForData{Init: init, Cond: cond, Inc: inc, Body: body})
}

func (p *Parser) parseGotoStmt() *ast.Node {
	loc := p.loc()
	p.advance() // goto
	if p.at(lexer.STAR) {
		// GNU computed goto: `goto *expr;` — represented as a GotoStmt whose Label
		// is empty and whose first child carries the target expression.
		p.advance()
		target := p.parseExpression()
		p.expect(lexer.SEMICOLON, ";")
		n := ast.NewNode(ast.GotoStmt, loc, ast.GotoData{Label: ""})
		n.AddChild(target)
		return n
	}
	name := p.expect(lexer.IDENTIFIER, "label name").Lexeme
	p.expect(lexer.SEMICOLON, ";")
	return ast.NewNode(ast.GotoStmt, loc, ast.GotoData{Label: name})
}

func (p *Parser) parseReturnStmt() *ast.Node {
	loc := p.loc()
	p.advance() // return
	var value *ast.Node
	if !p.at(lexer.SEMICOLON) {
		value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, ";")
	return ast.NewNode(ast.ReturnStmt, loc, ast.ReturnData{Value: value})
}

func (p *Parser) parseCaseStmt() *ast.Node {
	loc := p.loc()
	p.advance() // case
	value := p.parseConstantExpression()
	p.expect(lexer.COLON, ":")
	body := p.parseCaseBody()
	return ast.NewNode(ast.CaseStmt, loc, ast.CaseData{Value: value, Body: body})
}

func (p *Parser) parseDefaultStmt() *ast.Node {
	loc := p.loc()
	p.advance() // default
	p.expect(lexer.COLON, ":")
	body := p.parseCaseBody()
	return ast.NewNode(ast.DefaultStmt, loc, ast.CaseData{Body: body})
}

// parseCaseBody collects statements until the next case/default/closing brace,
// implementing fall-through by simply not forcing a boundary statement — the
// collected statements become this case's CompoundStmt-shaped body.
func (p *Parser) parseCaseBody() *ast.Node {
	loc := p.loc()
	node := ast.NewNode(ast.CompoundStmt, loc, nil)
	for !p.atAny(lexer.CASE, lexer.DEFAULT, lexer.RBRACE, lexer.EOF) {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			node.AddChild(stmt)
		}
		if p.pos == before {
			p.advance()
		}
	}
	return node
}

func (p *Parser) parseLabeledStmt() *ast.Node {
	loc := p.loc()
	name := p.advance().Lexeme // identifier
	p.advance()                // :
	stmt := p.parseStatement()
	return ast.NewNode(ast.LabeledStmt, loc, ast.LabeledData{Label: name, Stmt: stmt})
}

func (p *Parser) parseExprStmt() *ast.Node {
	loc := p.loc()
	expr := p.parseExpression()
	p.expect(lexer.SEMICOLON, ";")
	n := ast.NewNode(ast.ExprStmt, loc, nil)
	n.AddChild(expr)
	return n
}

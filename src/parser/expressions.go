// expressions.go implements spec §4.E.6's precedence ladder: primary -> postfix ->
// unary -> cast -> multiplicative -> additive -> shift -> relational -> equality ->
// bitwise-and -> bitwise-xor -> bitwise-or -> logical-and -> logical-or ->
// conditional -> assignment -> comma. Each level is its own method so the cast-vs-
// paren and declarator-vs-parameter disambiguation points (both requiring
// backtracking via Parser.save/restore) stay localized to the levels that need them.
package parser

import (
	"cfront/src/ast"
	"cfront/src/lexer"
)

// parseExpression parses a comma-expression: the widest production, used wherever
// a full C "expression" (as opposed to "assignment-expression") is grammatically
// permitted.
func (p *Parser) parseExpression() *ast.Node {
	first := p.parseAssignmentExpr()
	if !p.at(lexer.COMMA) {
		return first
	}
	loc := first.Loc
	n := ast.NewNode(ast.CommaExpr, loc, nil)
	n.AddChild(first)
	for p.at(lexer.COMMA) {
		p.advance()
		n.AddChild(p.parseAssignmentExpr())
	}
	return n
}

var assignOps = map[lexer.TokenKind]string{
	lexer.ASSIGN: "=", lexer.PLUS_ASSIGN: "+=", lexer.MINUS_ASSIGN: "-=",
	lexer.STAR_ASSIGN: "*=", lexer.SLASH_ASSIGN: "/=", lexer.PERCENT_ASSIGN: "%=",
	lexer.AMP_ASSIGN: "&=", lexer.PIPE_ASSIGN: "|=", lexer.CARET_ASSIGN: "^=",
	lexer.LSHIFT_ASSIGN: "<<=", lexer.RSHIFT_ASSIGN: ">>=",
}

// parseAssignmentExpr is right-associative, per spec §4.E.6.
func (p *Parser) parseAssignmentExpr() *ast.Node {
	if err := p.enterExpr(); err != nil {
		p.errorf("%s", err)
		p.leaveExpr()
		return ast.NewNode(ast.IntLit, p.loc(), ast.IntLitData{})
	}
	defer p.leaveExpr()

	left := p.parseConditionalExpr()
	if op, ok := assignOps[p.cur().Kind]; ok {
		loc := left.Loc
		p.advance()
		right := p.parseAssignmentExpr()
		return ast.NewNode(ast.AssignExpr, loc, ast.AssignData{Op: op, Left: left, Right: right})
	}
	return left
}

// parseConditionalExpr handles `?:`, right-associative in its else-branch.
func (p *Parser) parseConditionalExpr() *ast.Node {
	cond := p.parseLogicalOrExpr()
	if !p.at(lexer.QUESTION) {
		return cond
	}
	loc := cond.Loc
	p.advance()
	then := p.parseExpression()
	p.expect(lexer.COLON, ":")
	els := p.parseConditionalExpr()
	return ast.NewNode(ast.CondExpr, loc, ast.CondData{Cond: cond, Then: then, Else: els})
}

func (p *Parser) parseLogicalOrExpr() *ast.Node {
	left := p.parseLogicalAndExpr()
	for p.at(lexer.PIPE_PIPE) {
		loc := left.Loc
		p.advance()
		right := p.parseLogicalAndExpr()
		left = ast.NewNode(ast.LogicalOrExpr, loc, ast.BinaryData{Op: "||", Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseLogicalAndExpr() *ast.Node {
	left := p.parseBitOrExpr()
	for p.at(lexer.AMP_AMP) {
		loc := left.Loc
		p.advance()
		right := p.parseBitOrExpr()
		left = ast.NewNode(ast.LogicalAndExpr, loc, ast.BinaryData{Op: "&&", Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseBitOrExpr() *ast.Node {
	left := p.parseBitXorExpr()
	for p.at(lexer.PIPE) {
		loc := left.Loc
		p.advance()
		right := p.parseBitXorExpr()
		left = ast.NewNode(ast.OrExpr, loc, ast.BinaryData{Op: "|", Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseBitXorExpr() *ast.Node {
	left := p.parseBitAndExpr()
	for p.at(lexer.CARET) {
		loc := left.Loc
		p.advance()
		right := p.parseBitAndExpr()
		left = ast.NewNode(ast.XorExpr, loc, ast.BinaryData{Op: "^", Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseBitAndExpr() *ast.Node {
	left := p.parseEqualityExpr()
	for p.at(lexer.AMP) {
		loc := left.Loc
		p.advance()
		right := p.parseEqualityExpr()
		left = ast.NewNode(ast.AndExpr, loc, ast.BinaryData{Op: "&", Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseEqualityExpr() *ast.Node {
	left := p.parseRelationalExpr()
	for p.atAny(lexer.EQ, lexer.NE) {
		op := p.cur()
		loc := left.Loc
		p.advance()
		right := p.parseRelationalExpr()
		kind := ast.EqExpr
		if op.Kind == lexer.NE {
			kind = ast.NeExpr
		}
		left = ast.NewNode(kind, loc, ast.BinaryData{Op: op.Lexeme, Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseRelationalExpr() *ast.Node {
	left := p.parseShiftExpr()
	for p.atAny(lexer.LT, lexer.GT, lexer.LE, lexer.GE) {
		op := p.cur()
		loc := left.Loc
		p.advance()
		right := p.parseShiftExpr()
		left = ast.NewNode(ast.BinaryKindFor(op.Lexeme), loc, ast.BinaryData{Op: op.Lexeme, Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseShiftExpr() *ast.Node {
	left := p.parseAdditiveExpr()
	for p.atAny(lexer.LSHIFT, lexer.RSHIFT) {
		op := p.cur()
		loc := left.Loc
		p.advance()
		right := p.parseAdditiveExpr()
		kind := ast.ShlExpr
		if op.Kind == lexer.RSHIFT {
			kind = ast.ShrExpr
		}
		left = ast.NewNode(kind, loc, ast.BinaryData{Op: op.Lexeme, Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseAdditiveExpr() *ast.Node {
	left := p.parseMultiplicativeExpr()
	for p.atAny(lexer.PLUS, lexer.MINUS) {
		op := p.cur()
		loc := left.Loc
		p.advance()
		right := p.parseMultiplicativeExpr()
		left = ast.NewNode(ast.BinaryKindFor(op.Lexeme), loc, ast.BinaryData{Op: op.Lexeme, Left: left, Right: right})
	}
	return left
}

func (p *Parser) parseMultiplicativeExpr() *ast.Node {
	left := p.parseCastExpr()
	for p.atAny(lexer.STAR, lexer.SLASH, lexer.PERCENT) {
		op := p.cur()
		loc := left.Loc
		p.advance()
		right := p.parseCastExpr()
		left = ast.NewNode(ast.BinaryKindFor(op.Lexeme), loc, ast.BinaryData{Op: op.Lexeme, Left: left, Right: right})
	}
	return left
}

// parseCastExpr implements spec §4.E.6's cast-vs-paren disambiguation: at `(`, save
// position, consume it, and check whether a type name follows. If a full
// `(type-name)` parses cleanly, this is a cast (or, if a `{` follows, a compound
// literal); otherwise position is restored and control falls through to unary.
func (p *Parser) parseCastExpr() *ast.Node {
	if p.at(lexer.LPAREN) {
		m := p.save()
		loc := p.loc()
		p.advance() // (
		if p.looksLikeTypeName() {
			typ := p.parseTypeName()
			if p.at(lexer.RPAREN) {
				p.advance()
				if p.at(lexer.LBRACE) {
					return p.parseCompoundLiteral(typ)
				}
				operand := p.parseCastExpr()
				return ast.NewNode(ast.CastExpr, loc, ast.CastData{Type: typ, Operand: operand})
			}
		}
		p.restore(m)
	}
	return p.parseUnaryExpr()
}

var unaryOps = map[lexer.TokenKind]string{
	lexer.AMP: "&", lexer.STAR: "*", lexer.PLUS: "+", lexer.MINUS: "-",
	lexer.TILDE: "~", lexer.BANG: "!",
}

// parseUnaryExpr handles prefix `++`/`--`, the unary operators, `sizeof`,
// `_Alignof`, and the GNU `&&label` address-of-label form.
func (p *Parser) parseUnaryExpr() *ast.Node {
	switch p.cur().Kind {
	case lexer.PLUS_PLUS, lexer.MINUS_MINUS:
		op := p.advance()
		operand := p.parseUnaryExpr()
		return ast.NewNode(ast.PreIncDec, tokLoc(op), ast.UnaryData{Op: op.Lexeme, Operand: operand})
	case lexer.AMP_AMP:
		// GNU computed-goto operand: `&&label`.
		loc := p.loc()
		p.advance()
		label := p.expect(lexer.IDENTIFIER, "label name").Lexeme
		return ast.NewNode(ast.AddrOfLabelExpr, loc, ast.AddrOfLabelData{Label: label})
	case lexer.SIZEOF:
		return p.parseSizeofOrAlignof(ast.SizeofExpr)
	case lexer.ALIGNOF:
		return p.parseSizeofOrAlignof(ast.AlignofExpr)
	case lexer.GENERIC:
		return p.parseGenericExpr()
	}
	if op, ok := unaryOps[p.cur().Kind]; ok {
		loc := p.loc()
		p.advance()
		operand := p.parseCastExpr()
		kind := ast.UnaryExpr
		switch op {
		case "&":
			kind = ast.AddrOfExpr
		case "*":
			kind = ast.DerefExpr
		}
		return ast.NewNode(kind, loc, ast.UnaryData{Op: op, Operand: operand})
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parseSizeofOrAlignof(kind ast.Kind) *ast.Node {
	loc := p.loc()
	p.advance() // sizeof | _Alignof
	if p.at(lexer.LPAREN) {
		m := p.save()
		p.advance() // (
		if p.looksLikeTypeName() {
			typ := p.parseTypeName()
			if p.at(lexer.RPAREN) {
				p.advance()
				return ast.NewNode(kind, loc, ast.UnaryData{Op: "sizeof", Type: typ})
			}
		}
		p.restore(m)
	}
	operand := p.parseUnaryExpr()
	return ast.NewNode(kind, loc, ast.UnaryData{Op: "sizeof", Operand: operand})
}

// parsePostfixExpr handles `[]`, `()`, `.`, `->`, and postfix `++`/`--` chained onto
// a primary expression.
func (p *Parser) parsePostfixExpr() *ast.Node {
	expr := p.parsePrimaryExpr()
	for {
		switch p.cur().Kind {
		case lexer.LBRACKET:
			loc := expr.Loc
			p.advance()
			idx := p.parseExpression()
			p.expect(lexer.RBRACKET, "]")
			expr = ast.NewNode(ast.IndexExpr, loc, ast.IndexData{Base: expr, Index: idx})
		case lexer.LPAREN:
			loc := expr.Loc
			p.advance()
			var args []*ast.Node
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				args = append(args, p.parseAssignmentExpr())
				if !p.at(lexer.COMMA) {
					break
				}
				p.advance()
			}
			p.expect(lexer.RPAREN, ")")
			expr = ast.NewNode(ast.CallExpr, loc, ast.CallData{Callee: expr, Args: args})
		case lexer.DOT:
			loc := expr.Loc
			p.advance()
			field := p.expect(lexer.IDENTIFIER, "field name").Lexeme
			expr = ast.NewNode(ast.MemberExpr, loc, ast.MemberData{Base: expr, Field: field})
		case lexer.ARROW:
			loc := expr.Loc
			p.advance()
			field := p.expect(lexer.IDENTIFIER, "field name").Lexeme
			expr = ast.NewNode(ast.PtrMemberExpr, loc, ast.MemberData{Base: expr, Field: field})
		case lexer.PLUS_PLUS, lexer.MINUS_MINUS:
			op := p.advance()
			expr = ast.NewNode(ast.PostIncDec, expr.Loc, ast.UnaryData{Op: op.Lexeme, Operand: expr})
		default:
			return expr
		}
	}
}

// parsePrimaryExpr handles literals, identifiers, parenthesized expressions, and the
// GNU statement-expression form `({ ... })`.
func (p *Parser) parsePrimaryExpr() *ast.Node {
	loc := p.loc()
	tok := p.cur()
	switch tok.Kind {
	case lexer.INTEGER:
		p.advance()
		return ast.NewNode(ast.IntLit, loc, ast.IntLitData{Value: tok.Value.Int, Suffix: tok.Value.Suffix})
	case lexer.FLOAT:
		p.advance()
		return ast.NewNode(ast.FloatLit, loc, ast.FloatLitData{Value: tok.Value.Float, Suffix: tok.Value.Suffix})
	case lexer.STRING:
		p.advance()
		return ast.NewNode(ast.StringLit, loc, ast.StringLitData{Value: tok.Value.Str})
	case lexer.CHAR:
		p.advance()
		return ast.NewNode(ast.CharLit, loc, ast.CharLitData{Value: rune(tok.Value.Int)})
	case lexer.IDENTIFIER:
		p.advance()
		return ast.NewNode(ast.Ident, loc, ast.IdentData{Name: tok.Lexeme})
	case lexer.LPAREN:
		if p.peekN(1).Kind == lexer.LBRACE {
			return p.parseStmtExpr()
		}
		p.advance()
		inner := p.parseExpression()
		p.expect(lexer.RPAREN, ")")
		return inner
	case lexer.EXTENSION:
		p.advance()
		return p.parseCastExpr()
	}
	p.errorf("expected expression, found %q", tok.Lexeme)
	p.advance()
	return ast.NewNode(ast.IntLit, loc, ast.IntLitData{})
}

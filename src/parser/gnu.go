// gnu.go implements the GNU/Clang extension surface spec §4.E.7 calls out:
// __attribute__, __extension__, __asm__ statements, GNU statement expressions, and
// (the computed-goto half lives in statements.go/expressions.go alongside the
// ordinary goto/unary productions they extend).
package parser

import (
	"cfront/src/ast"
	"cfront/src/lexer"
)

// parseAttributesIfPresent consumes zero or more `__attribute__((...))` specifiers
// wherever spec §4.E.7 allows one to appear (after a declarator, after a parameter
// list, inside a struct body, ...).
func (p *Parser) parseAttributesIfPresent() {
	for p.at(lexer.ATTRIBUTE) {
		p.parseAttributeSpecifier()
	}
}

// parseAttributeSpecifier skips `__attribute__ ( ( ... ) )`, balancing parens so
// nested attribute argument lists (e.g. `__attribute__((aligned(16))))`) don't
// truncate early. No attribute data is preserved, matching spec §4.E.7's "skips to
// the matching )) but preserves no attribute data".
func (p *Parser) parseAttributeSpecifier() {
	p.advance() // __attribute__
	if !p.at(lexer.LPAREN) {
		return
	}
	depth := 0
	for {
		switch p.cur().Kind {
		case lexer.LPAREN:
			depth++
			p.advance()
		case lexer.RPAREN:
			depth--
			p.advance()
			if depth == 0 {
				return
			}
		case lexer.EOF:
			return
		default:
			p.advance()
		}
	}
}

// parseAsmStmt parses `__asm__ [volatile] ( "template" [: outputs [: inputs [:
// clobbers]]] );` as a statement, or skips it (to the matching `)`) when it appears
// outside any statement/declarator context — both call through here; the caller at
// a declaration-specifier position never reaches this because __asm__ there is
// handled by parseAttributesIfPresent's sibling skip logic in practice extern
// declarations rarely interleave asm, so this function always builds the full
// AsmStmt node and callers that only want to discard it simply drop the result.
func (p *Parser) parseAsmStmt() *ast.Node {
	loc := p.loc()
	p.advance() // asm | __asm__ | __asm
	isVolatile := false
	if p.at(lexer.VOLATILE) {
		p.advance()
		isVolatile = true
	}
	p.expect(lexer.LPAREN, "(")
	template := ""
	if p.at(lexer.STRING) {
		template = p.advance().Value.Str
	}
	var outputs, inputs, clobbers []string
	if p.at(lexer.COLON) {
		p.advance()
		outputs = p.parseAsmOperandList()
	}
	if p.at(lexer.COLON) {
		p.advance()
		inputs = p.parseAsmOperandList()
	}
	if p.at(lexer.COLON) {
		p.advance()
		clobbers = p.parseAsmClobberList()
	}
	p.expect(lexer.RPAREN, ")")
	p.expect(lexer.SEMICOLON, ";")
	return ast.NewNode(ast.AsmStmt, loc, ast.AsmData{
		Template: template, Outputs: outputs, Inputs: inputs, Clobbers: clobbers, Volatile: isVolatile,
	})
}

// parseAsmOperandList parses a `"constraint"(expr), ...` list. Operand expressions
// are parsed (so the token stream stays balanced) but discarded, per spec §4.E.7:
// "operands are parsed then discarded for now".
func (p *Parser) parseAsmOperandList() []string {
	var constraints []string
	for p.at(lexer.STRING) {
		constraints = append(constraints, p.advance().Value.Str)
		if p.at(lexer.LPAREN) {
			p.advance()
			p.parseExpression()
			p.expect(lexer.RPAREN, ")")
		}
		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	return constraints
}

func (p *Parser) parseAsmClobberList() []string {
	var clobbers []string
	for p.at(lexer.STRING) {
		clobbers = append(clobbers, p.advance().Value.Str)
		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	return clobbers
}

// parseStmtExpr parses the GNU statement expression `({ stmt...; expr; })`. Per
// spec §4.E.7/§9's redesign note, this is represented as a real StmtExpr node whose
// Body is the compound statement — unlike the source compiler's
// "statement_expr_result" placeholder identifier, lowering can walk Body and yield
// the value of its final expression-statement directly.
func (p *Parser) parseStmtExpr() *ast.Node {
	loc := p.loc()
	p.expect(lexer.LPAREN, "(")
	body := p.parseCompoundStmt()
	p.expect(lexer.RPAREN, ")")
	n := ast.NewNode(ast.StmtExpr, loc, nil)
	n.AddChild(body)
	return n
}

// recovery.go implements spec §4.E.9's panic-mode error recovery: on a mismatch the
// parser has already reported a diagnostic (Parser.errorf); synchronize then
// advances until a safe re-entry point.
package parser

import "cfront/src/lexer"

// maxConsecutiveErrors is the "aggressive skipping" threshold spec §4.E.9 names: ten
// consecutive failed recovery attempts escalate to skipping straight to the next
// declaration-starter keyword rather than retrying statement-level recovery.
const maxConsecutiveErrors = 10

// synchronize advances the token cursor until it reaches a statement-terminating
// `;`, a declaration-starter keyword, or a brace boundary — the three
// synchronization points spec §4.E.9 names. Guard (a) — forced progress when a
// production consumes nothing — lives in Parse/parseCompoundStmt/parseCaseBody
// themselves, immediately after each parseExternalDeclaration/parseStatement call.
func (p *Parser) synchronize() {
	if p.consecutiveErrors > maxConsecutiveErrors {
		p.skipToNextDeclaration()
		return
	}
	for !p.at(lexer.EOF) {
		switch p.cur().Kind {
		case lexer.SEMICOLON:
			p.advance()
			return
		case lexer.LBRACE, lexer.RBRACE:
			return
		}
		if p.atDeclStarterKeyword() {
			return
		}
		p.advance()
	}
}

// skipToNextDeclaration is the aggressive fallback: advance to the next token that
// can start a declaration, ignoring statement-level synchronization points
// entirely. This exists because a long run of consecutive failures usually means
// the parser is lost inside garbage (e.g. a binary file fed in by mistake), and
// repeatedly stopping at every `;` just re-triggers the same failure.
func (p *Parser) skipToNextDeclaration() {
	for !p.at(lexer.EOF) {
		if p.atDeclStarterKeyword() || p.at(lexer.LBRACE) {
			p.consecutiveErrors = 0
			return
		}
		p.advance()
	}
}

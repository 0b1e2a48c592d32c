package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"cfront/src/syntax"
)

// stateFunc defines one state of the scanner, per the teacher's frontend/lexer.go
// Pike-style state machine (next/backup/peek/accept/acceptRun). The teacher streamed
// items over a channel to a goyacc-generated parser that consumed them one at a time;
// this lexer instead drives the same state machine to completion up front and
// materializes the result as a TokenList, because spec §4.E's hand-written recursive-
// descent parser must backtrack — cast-vs-parenthesized-expression and declarator-vs-
// abstract-parameter-list disambiguation both require saving and restoring a token
// index, which a one-shot channel can't offer.
type stateFunc func(*lexer) stateFunc

const eof = rune(0)

// lexer walks a source buffer rune by rune, accumulating Tokens into out.
type lexer struct {
	filename string
	input    string
	start    int
	pos      int
	width    int
	line     int
	col      int
	startLn  int
	startCol int
	table    *syntax.Table
	out      []Token
	err      error
}

// Lex scans the full contents of src (named filename for diagnostics) into a
// TokenList using the C11 table (C11Table, extended with GNU/Clang vendor keywords
// per spec §1). The returned list always ends with an EOF token, even on error —
// ERROR tokens are embedded in the stream instead of aborting the scan, so the
// parser can keep recovering in panic mode per spec §4.E.9.
func Lex(filename, src string) *TokenList {
	l := &lexer{
		filename: filename,
		input:    src,
		line:     1,
		col:      1,
		startLn:  1,
		startCol: 1,
		table:    C11Table,
	}
	for state := stateFunc(lexGlobal); state != nil; {
		state = state(l)
	}
	return &TokenList{Tokens: l.out}
}

func (l *lexer) loc() Location {
	return Location{Filename: l.filename, Line: l.startLn, Column: l.startCol, Offset: l.start}
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
		if l.input[l.pos] == '\n' {
			l.line--
		} else {
			l.col--
		}
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// peekAt looks ahead n runes without consuming, returning eof past the end.
func (l *lexer) peekAt(n int) rune {
	p := l.pos
	for i := 0; i < n; i++ {
		if p >= len(l.input) {
			return eof
		}
		_, w := utf8.DecodeRuneInString(l.input[p:])
		p += w
	}
	if p >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[p:])
	return r
}

func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func (l *lexer) acceptFunc(f func(rune) bool) bool {
	if f(l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRunFunc(f func(rune) bool) {
	for f(l.next()) {
	}
	l.backup()
}

// ignore drops the pending lexeme, resyncing start to the current position.
func (l *lexer) ignore() {
	l.start = l.pos
	l.startLn = l.line
	l.startCol = l.col
}

// emit appends a Token of kind typ spanning [start,pos) to the output.
func (l *lexer) emit(typ TokenKind) {
	l.out = append(l.out, Token{
		Kind:   typ,
		Lexeme: l.input[l.start:l.pos],
		Loc:    l.loc(),
	})
	l.ignore()
}

func (l *lexer) emitValue(typ TokenKind, v TokenValue) {
	l.out = append(l.out, Token{
		Kind:   typ,
		Lexeme: l.input[l.start:l.pos],
		Loc:    l.loc(),
		Value:  v,
	})
	l.ignore()
}

// errorf emits an ERROR token carrying the message as its lexeme and returns lexGlobal
// so scanning can keep going — per spec §4.E.9, a lexical error never aborts the pass.
func (l *lexer) errorf(format string, args ...interface{}) stateFunc {
	msg := fmt.Sprintf(format, args...)
	l.out = append(l.out, Token{Kind: ERROR, Lexeme: msg, Loc: l.loc()})
	l.ignore()
	return lexGlobal
}

// lexGlobal is the default state: dispatches on the next rune's category.
func lexGlobal(l *lexer) stateFunc {
	c := l.table.Classifiers
	for {
		r := l.next()
		switch {
		case r == eof:
			l.emit(EOF)
			return nil
		case r == '\n':
			l.ignore()
		case c.IsSpace(r):
			l.ignore()
		case r == '#' && l.startCol == 1:
			return lexLineMarker
		case c.IsIdentStart(r):
			return lexWord
		case c.IsDigit(r):
			return lexNumber
		case r == '.' && c.IsDigit(l.peek()):
			return lexNumber
		case r == '"':
			return lexString
		case r == '\'':
			return lexChar
		case r == '/' && l.peek() == '/':
			skipLineComment(l)
		case r == '/' && l.peek() == '*':
			if err := skipBlockComment(l); err != nil {
				return l.errorf("%s", err)
			}
		default:
			l.backup()
			if st := lexOperatorOrPunct(l); st != nil {
				return st
			}
			l.next()
			return l.errorf("unrecognized character %q", r)
		}
	}
}

func skipLineComment(l *lexer) {
	l.next() // consume second '/'
	for {
		r := l.next()
		if r == '\n' || r == eof {
			break
		}
	}
	l.ignore()
}

func skipBlockComment(l *lexer) error {
	l.next() // consume '*'
	for {
		r := l.next()
		if r == eof {
			return fmt.Errorf("unterminated block comment")
		}
		if r == '*' && l.peek() == '/' {
			l.next()
			l.ignore()
			return nil
		}
	}
}

// lexLineMarker skips GNU-style preprocessor line markers the spec §4.C.4 requires
// the lexer to tolerate silently: `# <digits> "<file>" [flags...]` followed by a
// newline, emitted by a prior cpp pass.
func lexLineMarker(l *lexer) stateFunc {
	for {
		r := l.next()
		if r == '\n' || r == eof {
			break
		}
	}
	l.ignore()
	return lexGlobal
}

// lexWord scans an identifier or keyword, including GNU's __attribute__,
// __extension__ and similar reserved double-underscore forms.
func lexWord(l *lexer) stateFunc {
	c := l.table.Classifiers
	l.acceptRunFunc(c.IsIdentContinue)
	text := l.input[l.start:l.pos]
	if kind, ok := lookupKeyword(text); ok {
		l.emit(kind)
	} else {
		l.emitValue(IDENTIFIER, TokenValue{Str: text})
	}
	return lexGlobal
}

// lexNumber scans an integer or floating literal: decimal/hex/octal/binary integers
// with u/U l/L ll/LL suffixes, and decimal/hex floats with f/F/l/L suffixes and
// scientific notation, per spec §4.C.2.
func lexNumber(l *lexer) stateFunc {
	isFloat := l.input[l.start] == '.' // `.5`: lexGlobal has already consumed the dot.
	if l.input[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.next()
		l.acceptRunFunc(isHexDigit)
		if l.peek() == '.' {
			isFloat = true
			l.next()
			l.acceptRunFunc(isHexDigit)
		}
		if l.peek() == 'p' || l.peek() == 'P' {
			isFloat = true
			l.next()
			l.accept("+-")
			l.acceptRunFunc(syntax.IsASCIIDigit)
		}
	} else if l.input[l.start] == '0' && isOctalDigit(l.peek()) {
		l.acceptRunFunc(isOctalDigit)
	} else if l.input[l.start] == '0' && (l.peek() == 'b' || l.peek() == 'B') {
		l.next()
		l.acceptRunFunc(func(r rune) bool { return r == '0' || r == '1' })
	} else {
		l.acceptRunFunc(syntax.IsASCIIDigit)
		if l.peek() == '.' {
			isFloat = true
			l.next()
			l.acceptRunFunc(syntax.IsASCIIDigit)
		}
		if l.peek() == 'e' || l.peek() == 'E' {
			isFloat = true
			l.next()
			l.accept("+-")
			l.acceptRunFunc(syntax.IsASCIIDigit)
		}
	}

	suffixStart := l.pos
	if isFloat {
		l.accept("fFlL")
	} else {
		l.acceptRunFunc(func(r rune) bool {
			return r == 'u' || r == 'U' || r == 'l' || r == 'L'
		})
	}
	suffix := l.input[suffixStart:l.pos]
	text := l.input[l.start:suffixStart]

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return l.errorf("malformed floating literal %q: %s", text, err)
		}
		l.emitValue(FLOAT, TokenValue{Float: f, Suffix: suffix})
		return lexGlobal
	}
	n, err := parseIntLiteral(text)
	if err != nil {
		return l.errorf("malformed integer literal %q: %s", text, err)
	}
	l.emitValue(INTEGER, TokenValue{Int: n, Suffix: suffix})
	return lexGlobal
}

func parseIntLiteral(text string) (int64, error) {
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		return strconv.ParseInt(text[2:], 16, 64)
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		return strconv.ParseInt(text[2:], 2, 64)
	case len(text) > 1 && text[0] == '0':
		return strconv.ParseInt(text[1:], 8, 64)
	default:
		return strconv.ParseInt(text, 10, 64)
	}
}

func isHexDigit(r rune) bool {
	return syntax.IsASCIIDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isOctalDigit(r rune) bool {
	return r >= '0' && r <= '7'
}

// lexString scans a double-quoted string literal, decoding backslash escapes.
func lexString(l *lexer) stateFunc {
	var sb strings.Builder
	for {
		r := l.next()
		switch {
		case r == eof || r == '\n':
			return l.errorf("unterminated string literal")
		case r == '"':
			lexeme := l.input[l.start:l.pos]
			l.emitValue(STRING, TokenValue{Str: sb.String()})
			_ = lexeme
			return lexGlobal
		case r == '\\':
			d, err := decodeEscape(l)
			if err != nil {
				return l.errorf("%s", err)
			}
			sb.WriteRune(d)
		default:
			sb.WriteRune(r)
		}
	}
}

// lexChar scans a single-quoted character literal.
func lexChar(l *lexer) stateFunc {
	r := l.next()
	var v rune
	if r == '\\' {
		d, err := decodeEscape(l)
		if err != nil {
			return l.errorf("%s", err)
		}
		v = d
	} else if r == eof || r == '\n' {
		return l.errorf("unterminated character literal")
	} else {
		v = r
	}
	if l.next() != '\'' {
		return l.errorf("multi-character constant not supported")
	}
	l.emitValue(CHAR, TokenValue{Int: int64(v)})
	return lexGlobal
}

// decodeEscape decodes one backslash escape sequence. Unknown escapes pass the
// following character through unchanged, matching gcc/clang's permissive behavior
// rather than rejecting the program outright.
func decodeEscape(l *lexer) (rune, error) {
	r := l.next()
	switch r {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'v':
		return '\v', nil
	case 'f':
		return '\f', nil
	case 'b':
		return '\b', nil
	case 'a':
		return '\a', nil
	case '0':
		return 0, nil
	case '\\':
		return '\\', nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case '?':
		return '?', nil
	case 'x':
		start := l.pos
		l.acceptRunFunc(isHexDigit)
		n, err := strconv.ParseInt(l.input[start:l.pos], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("malformed hex escape")
		}
		return rune(n), nil
	case eof:
		return 0, fmt.Errorf("unterminated escape sequence")
	default:
		return r, nil
	}
}

// lexOperatorOrPunct greedily matches the longest operator or punctuation lexeme
// starting at the current position (the table's entries are pre-sorted longest-
// first by syntax.NewTable), and returns the next state, or nil if nothing matched.
func lexOperatorOrPunct(l *lexer) stateFunc {
	rest := l.input[l.pos:]
	for _, op := range l.table.Operators {
		if strings.HasPrefix(rest, op.Text) {
			for range op.Text {
				l.next()
			}
			l.emit(TokenKind(op.Kind))
			return lexGlobal
		}
	}
	for _, p := range l.table.Punctuation {
		if strings.HasPrefix(rest, p.Text) {
			for range p.Text {
				l.next()
			}
			l.emit(TokenKind(p.Kind))
			return lexGlobal
		}
	}
	return nil
}

// Package syntax provides a declarative description of a C language flavor: its
// keyword list, operator table (with precedence/associativity), punctuation table,
// comment style, character classifiers and literal-support flags. Grounded on the
// teacher's frontend/lang.go keyword table (a length-bucketed reserved-word list),
// generalized from VSL's handful of keywords to the full C89 through C11 set plus
// the GNU/Clang vendor keywords spec §1 calls out.
package syntax

import "sort"

// Associativity of a binary/unary operator.
type Associativity int

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

// Keyword pairs reserved word text with the lexer token kind it produces.
type Keyword struct {
	Text string
	Kind int
}

// Operator describes one lexical operator: its text, the token kind it produces, its
// precedence (higher binds tighter) and associativity.
type Operator struct {
	Text          string
	Kind          int
	Precedence    int
	Associativity Associativity
}

// Punctuation describes one non-operator delimiter, e.g. "(" or ";".
type Punctuation struct {
	Text string
	Kind int
}

// CommentStyle names the delimiters for single- and multi-line comments. Any field
// may be empty to disable that comment form.
type CommentStyle struct {
	SingleLineStart string
	MultiLineStart  string
	MultiLineEnd    string
}

// Classifiers groups the character-class predicates the lexer consults.
type Classifiers struct {
	IsIdentStart    func(r rune) bool
	IsIdentContinue func(r rune) bool
	IsDigit         func(r rune) bool
	IsSpace         func(r rune) bool
}

// LiteralSupport toggles which numeric literal forms a flavor accepts.
type LiteralSupport struct {
	Hex        bool
	Octal      bool
	Binary     bool
	Float      bool
	Scientific bool
}

// Table is the declarative description of one language flavor, per spec §4.B.
type Table struct {
	Keywords    []Keyword
	Operators   []Operator // Ordered longest-first.
	Punctuation []Punctuation
	Comment     CommentStyle
	Classifiers Classifiers
	Literals    LiteralSupport

	StringDelim rune
	CharDelim   rune
	EscapeRune  rune

	CaseSensitive      bool
	RequiresSemicolons bool
	SupportsPreproc    bool // Line markers ("# N \"file\"") must be skipped.
}

// sortLongestFirst reorders operators/punctuation so the lexer's prefix-scan always
// tries the longest candidate first (spec §4.B's explicit ordering guarantee:
// "..." before ".", "<<=" before "<<" before "<").
func sortLongestFirst[T any](items []T, text func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return len(text(items[i])) > len(text(items[j]))
	})
}

// NewTable constructs a Table, normalizing the operator/punctuation ordering
// invariant so a caller building a custom flavor can't accidentally violate it by
// listing entries out of order.
func NewTable(t Table) *Table {
	sortLongestFirst(t.Operators, func(o Operator) string { return o.Text })
	sortLongestFirst(t.Punctuation, func(p Punctuation) string { return p.Text })
	return &t
}

// IsAlphaUnderscore reports whether r can start or continue a C identifier's
// alphabetic part: [a-zA-Z_].
func IsAlphaUnderscore(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

// IsASCIIDigit reports whether r is a decimal digit.
func IsASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsASCIISpace reports whether r is whitespace per spec §4.B (RE2's WHITESPACE
// class, the same one the teacher's lexer classifiers document).
func IsASCIISpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

// C11CommentStyle and C11Literals are the shared, flavor-independent facts about
// C's comment syntax and supported numeric literal forms; the lexer package
// combines them with its own TokenKind-bound keyword/operator/punctuation tables
// to build the concrete profile (kept here, rather than duplicated, because the
// Kind values themselves must live with the lexer's TokenKind constants to avoid
// an import cycle between this package and src/lexer).
var C11CommentStyle = CommentStyle{
	SingleLineStart: "//",
	MultiLineStart:  "/*",
	MultiLineEnd:    "*/",
}

var C11Literals = LiteralSupport{
	Hex: true, Octal: true, Binary: true, Float: true, Scientific: true,
}

var C11Classifiers = Classifiers{
	IsIdentStart:    IsAlphaUnderscore,
	IsIdentContinue: func(r rune) bool { return IsAlphaUnderscore(r) || IsASCIIDigit(r) },
	IsDigit:         IsASCIIDigit,
	IsSpace:         IsASCIISpace,
}

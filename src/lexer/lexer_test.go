// Verifies the scanner against hand-verified token sequences, in the same style as
// the teacher's frontend/lexer_test.go (a literal expected-token slice checked
// element by element), extended with a go-diff backed determinism check per
// spec §8.2: running the lexer twice on the same input must produce the same
// token sequence.

package lexer

import (
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func TestLexerBasicDeclaration(t *testing.T) {
	src := "int add(int a, int b) {\n    return a + b;\n}\n"
	tl := Lex("test.c", src)

	type expect struct {
		kind   TokenKind
		lexeme string
	}
	want := []expect{
		{INT, "int"},
		{IDENTIFIER, "add"},
		{LPAREN, "("},
		{INT, "int"},
		{IDENTIFIER, "a"},
		{COMMA, ","},
		{INT, "int"},
		{IDENTIFIER, "b"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{IDENTIFIER, "a"},
		{PLUS, "+"},
		{IDENTIFIER, "b"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{EOF, ""},
	}

	if tl.Len() != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", tl.Len(), len(want), tl.Tokens)
	}
	for i, w := range want {
		got := tl.At(i)
		if got.Kind != w.kind {
			t.Errorf("token %d: kind = %s, want %s", i, got.Kind, w.kind)
		}
		if w.kind != EOF && got.Lexeme != w.lexeme {
			t.Errorf("token %d: lexeme = %q, want %q", i, got.Lexeme, w.lexeme)
		}
	}
}

func TestLexerOperatorLongestMatch(t *testing.T) {
	src := "a <<= b >> c != d"
	tl := Lex("test.c", src)
	want := []TokenKind{IDENTIFIER, LSHIFT_ASSIGN, IDENTIFIER, RSHIFT, IDENTIFIER, NE, IDENTIFIER, EOF}
	if tl.Len() != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", tl.Len(), len(want), tl.Tokens)
	}
	for i, k := range want {
		if tl.At(i).Kind != k {
			t.Errorf("token %d: kind = %s, want %s", i, tl.At(i).Kind, k)
		}
	}
}

func TestLexerNumericLiterals(t *testing.T) {
	cases := []struct {
		src  string
		kind TokenKind
	}{
		{"0x1F", INTEGER},
		{"017", INTEGER},
		{"0b101", INTEGER},
		{"3.14", FLOAT},
		{"1e10", FLOAT},
		{"1.5f", FLOAT},
		{"42UL", INTEGER},
	}
	for _, c := range cases {
		tl := Lex("test.c", c.src)
		if tl.At(0).Kind != c.kind {
			t.Errorf("Lex(%q): kind = %s, want %s", c.src, tl.At(0).Kind, c.kind)
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	tl := Lex("test.c", `"a\nb\tc\\d"`)
	got := tl.At(0)
	if got.Kind != STRING {
		t.Fatalf("kind = %s, want STRING", got.Kind)
	}
	if want := "a\nb\tc\\d"; got.Value.Str != want {
		t.Errorf("decoded value = %q, want %q", got.Value.Str, want)
	}
}

func TestLexerGNUKeywords(t *testing.T) {
	src := `__attribute__((unused)) __extension__ int x; __asm__("nop");`
	tl := Lex("test.c", src)
	if tl.At(0).Kind != ATTRIBUTE {
		t.Errorf("kind = %s, want ATTRIBUTE", tl.At(0).Kind)
	}
	foundExtension := false
	foundAsm := false
	for i := 0; i < tl.Len(); i++ {
		switch tl.At(i).Kind {
		case EXTENSION:
			foundExtension = true
		case ASM:
			foundAsm = true
		}
	}
	if !foundExtension || !foundAsm {
		t.Errorf("missing GNU keyword token in stream: %v", tl.Tokens)
	}
}

func TestLexerLineMarkerSkipped(t *testing.T) {
	src := "# 1 \"foo.h\" 1\nint x;\n"
	tl := Lex("test.c", src)
	if tl.At(0).Kind != INT {
		t.Errorf("line marker not skipped: first token kind = %s, want INT", tl.At(0).Kind)
	}
}

// TestLexerDeterministic exercises go-diff on the rendered token stream, the same
// tool spec §8.2 calls out for golden comparisons, instead of an opaque
// reflect.DeepEqual failure when two runs diverge.
func TestLexerDeterministic(t *testing.T) {
	src := `
struct point { int x, y; };
int dist(struct point *p) {
	return p->x * p->x + p->y * p->y;
}
`
	render := func(tl *TokenList) string {
		var sb strings.Builder
		for i := 0; i < tl.Len(); i++ {
			sb.WriteString(tl.At(i).String())
			sb.WriteByte('\n')
		}
		return sb.String()
	}

	a := render(Lex("test.c", src))
	b := render(Lex("test.c", src))
	if a != b {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(a, b, false)
		t.Fatalf("two lexer passes over the same input diverged:\n%s", dmp.DiffPrettyText(diffs))
	}
}

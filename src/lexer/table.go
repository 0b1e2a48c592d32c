package lexer

import "cfront/src/syntax"

// keywordText maps each reserved word to the TokenKind it lexes to, combining
// syntax.C11Classifiers/C11CommentStyle/C11Literals (the flavor-independent facts)
// with this package's own TokenKind-bound identity table — the split DESIGN.md's
// table.go entry documents, made to avoid a syntax<->lexer import cycle.
var keywordText = map[string]TokenKind{
	"auto": AUTO, "break": BREAK, "case": CASE, "char": CHAR_KW, "const": CONST,
	"continue": CONTINUE, "default": DEFAULT, "do": DO, "double": DOUBLE, "else": ELSE,
	"enum": ENUM, "extern": EXTERN, "float": FLOAT_KW, "for": FOR, "goto": GOTO,
	"if": IF, "inline": INLINE, "int": INT, "long": LONG, "register": REGISTER,
	"restrict": RESTRICT, "return": RETURN, "short": SHORT, "signed": SIGNED,
	"sizeof": SIZEOF, "static": STATIC, "struct": STRUCT, "switch": SWITCH,
	"typedef": TYPEDEF, "union": UNION, "unsigned": UNSIGNED, "void": VOID,
	"volatile": VOLATILE, "while": WHILE,

	"_Bool": BOOL, "_Complex": COMPLEX, "_Imaginary": IMAGINARY, "_Alignas": ALIGNAS,
	"_Alignof": ALIGNOF, "_Atomic": ATOMIC, "_Generic": GENERIC, "_Noreturn": NORETURN,
	"_Static_assert": STATIC_ASSERT, "_Thread_local": THREAD_LOCAL,

	"__attribute__": ATTRIBUTE, "__attribute": ATTRIBUTE,
	"__extension__": EXTENSION,
	"asm":           ASM, "__asm__": ASM, "__asm": ASM,
	"__inline__": INLINE, "__inline": INLINE,
	"__const__": CONST, "__const": CONST,
	"__volatile__": VOLATILE, "__volatile": VOLATILE,
	"__restrict__": RESTRICT, "__restrict": RESTRICT,
	"__typeof__":       TYPEOF,
	"__typeof":         TYPEOF,
	"typeof":           TYPEOF,
	"__builtin_va_list": BUILTIN_VA_LIST,
	"__int128":          INT128,
	"__label__":         LABEL,
	"__thread":          THREAD,
}

func lookupKeyword(text string) (TokenKind, bool) {
	k, ok := keywordText[text]
	return k, ok
}

var operatorEntries = []syntax.Operator{
	{Text: "...", Kind: int(ELLIPSIS)},
	{Text: "<<=", Kind: int(LSHIFT_ASSIGN)},
	{Text: ">>=", Kind: int(RSHIFT_ASSIGN)},
	{Text: "&&", Kind: int(AMP_AMP)},
	{Text: "||", Kind: int(PIPE_PIPE)},
	{Text: "<<", Kind: int(LSHIFT)},
	{Text: ">>", Kind: int(RSHIFT)},
	{Text: "<=", Kind: int(LE)},
	{Text: ">=", Kind: int(GE)},
	{Text: "==", Kind: int(EQ)},
	{Text: "!=", Kind: int(NE)},
	{Text: "->", Kind: int(ARROW)},
	{Text: "++", Kind: int(PLUS_PLUS)},
	{Text: "--", Kind: int(MINUS_MINUS)},
	{Text: "+=", Kind: int(PLUS_ASSIGN)},
	{Text: "-=", Kind: int(MINUS_ASSIGN)},
	{Text: "*=", Kind: int(STAR_ASSIGN)},
	{Text: "/=", Kind: int(SLASH_ASSIGN)},
	{Text: "%=", Kind: int(PERCENT_ASSIGN)},
	{Text: "&=", Kind: int(AMP_ASSIGN)},
	{Text: "|=", Kind: int(PIPE_ASSIGN)},
	{Text: "^=", Kind: int(CARET_ASSIGN)},
	{Text: "+", Kind: int(PLUS)},
	{Text: "-", Kind: int(MINUS)},
	{Text: "*", Kind: int(STAR)},
	{Text: "/", Kind: int(SLASH)},
	{Text: "%", Kind: int(PERCENT)},
	{Text: "&", Kind: int(AMP)},
	{Text: "|", Kind: int(PIPE)},
	{Text: "^", Kind: int(CARET)},
	{Text: "~", Kind: int(TILDE)},
	{Text: "!", Kind: int(BANG)},
	{Text: "<", Kind: int(LT)},
	{Text: ">", Kind: int(GT)},
	{Text: "=", Kind: int(ASSIGN)},
	{Text: "?", Kind: int(QUESTION)},
	{Text: ".", Kind: int(DOT)},
}

var punctuationEntries = []syntax.Punctuation{
	{Text: "(", Kind: int(LPAREN)},
	{Text: ")", Kind: int(RPAREN)},
	{Text: "{", Kind: int(LBRACE)},
	{Text: "}", Kind: int(RBRACE)},
	{Text: "[", Kind: int(LBRACKET)},
	{Text: "]", Kind: int(RBRACKET)},
	{Text: ";", Kind: int(SEMICOLON)},
	{Text: ",", Kind: int(COMMA)},
	{Text: ":", Kind: int(COLON)},
}

// C11Table is the concrete C11 (+GNU/Clang extensions) language profile: the
// declarative shape lives in package syntax, the Kind values live here.
var C11Table = syntax.NewTable(syntax.Table{
	Operators:          operatorEntries,
	Punctuation:        punctuationEntries,
	Comment:            syntax.C11CommentStyle,
	Classifiers:        syntax.C11Classifiers,
	Literals:           syntax.C11Literals,
	StringDelim:        '"',
	CharDelim:          '\'',
	EscapeRune:         '\\',
	CaseSensitive:      true,
	RequiresSemicolons: true,
	SupportsPreproc:    true,
})

package parser

import (
	"cfront/src/ast"
	"cfront/src/lexer"
)

// typeSpecifierKeywords are the base type-specifier keywords every declaration may
// start with, per spec §4.E.4.
var typeSpecifierKeywords = map[lexer.TokenKind]bool{
	lexer.VOID: true, lexer.CHAR_KW: true, lexer.SHORT: true, lexer.INT: true,
	lexer.LONG: true, lexer.FLOAT_KW: true, lexer.DOUBLE: true, lexer.SIGNED: true,
	lexer.UNSIGNED: true, lexer.BOOL: true, lexer.COMPLEX: true, lexer.IMAGINARY: true,
	lexer.INT128: true, lexer.STRUCT: true, lexer.UNION: true, lexer.ENUM: true,
	lexer.ATOMIC: true, lexer.TYPEOF: true,
}

var typeQualifierKeywords = map[lexer.TokenKind]bool{
	lexer.CONST: true, lexer.VOLATILE: true, lexer.RESTRICT: true, lexer.ATOMIC: true,
}

var storageClassKeywords = map[lexer.TokenKind]bool{
	lexer.TYPEDEF: true, lexer.EXTERN: true, lexer.STATIC: true, lexer.AUTO: true,
	lexer.REGISTER: true, lexer.THREAD_LOCAL: true, lexer.THREAD: true,
}

var functionSpecifierKeywords = map[lexer.TokenKind]bool{
	lexer.INLINE: true, lexer.NORETURN: true,
}

// isDeclarationStart reports whether the current token can begin a declaration's
// specifier sequence: a storage class, type qualifier, function specifier, a builtin
// type keyword, or an identifier that is a known typedef name (spec §4.E.3).
func (p *Parser) isDeclarationStart() bool {
	k := p.cur().Kind
	if storageClassKeywords[k] || typeQualifierKeywords[k] || functionSpecifierKeywords[k] || typeSpecifierKeywords[k] {
		return true
	}
	if k == lexer.ALIGNAS {
		return true
	}
	if k == lexer.IDENTIFIER {
		return p.typedefs.IsTypeName(p.cur().Lexeme)
	}
	return false
}

// atDeclStarterKeyword is consulted by the error-recovery synchronizer (recovery.go)
// to find the next safe point to resume parsing.
func (p *Parser) atDeclStarterKeyword() bool {
	k := p.cur().Kind
	return storageClassKeywords[k] || typeQualifierKeywords[k] || typeSpecifierKeywords[k] || k == lexer.ALIGNAS
}

// specifiers accumulates the parsed declaration-specifier sequence before a
// declarator is read.
type specifiers struct {
	storage    ast.StorageClass
	isTypedef  bool
	inline     bool
	noreturn   bool
	isConst    bool
	isVolatile bool
	isAtomicQ  bool
	typeNode   *ast.Node
}

// parseDeclarationSpecifiers consumes storage-class/type-qualifier/type-specifier/
// function-specifier tokens in any order (spec §4.E.4), including GNU attributes and
// C11 _Alignas interspersed among them.
func (p *Parser) parseDeclarationSpecifiers() specifiers {
	var s specifiers
	var typeName string
	sawType := false

	for {
		k := p.cur().Kind
		switch {
		case k == lexer.ATTRIBUTE:
			p.parseAttributeSpecifier()
			continue
		case k == lexer.EXTENSION:
			p.advance()
			continue
		case k == lexer.ALIGNAS:
			p.parseAlignas()
			continue
		case storageClassKeywords[k]:
			p.advance()
			switch k {
			case lexer.TYPEDEF:
				s.isTypedef = true
			case lexer.EXTERN:
				s.storage = ast.StorageExtern
			case lexer.STATIC:
				s.storage = ast.StorageStatic
			case lexer.AUTO:
				s.storage = ast.StorageAuto
			case lexer.REGISTER:
				s.storage = ast.StorageRegister
			case lexer.THREAD_LOCAL, lexer.THREAD:
				s.storage = ast.StorageThreadLocal
			}
		case k == lexer.INLINE:
			p.advance()
			s.inline = true
		case k == lexer.NORETURN:
			p.advance()
			s.noreturn = true
		case k == lexer.CONST:
			p.advance()
			s.isConst = true
		case k == lexer.VOLATILE:
			p.advance()
			s.isVolatile = true
		case k == lexer.RESTRICT:
			p.advance()
		case k == lexer.ATOMIC && p.peekN(1).Kind == lexer.LPAREN:
			// _Atomic(T) form: parsed as its own type below.
			if sawType {
				goto done
			}
			s.typeNode = p.parseAtomicParenType()
			sawType = true
		case k == lexer.ATOMIC:
			p.advance()
			s.isAtomicQ = true
		case k == lexer.STRUCT || k == lexer.UNION:
			if sawType {
				goto done
			}
			s.typeNode = p.parseStructOrUnionSpecifier()
			sawType = true
		case k == lexer.ENUM:
			if sawType {
				goto done
			}
			s.typeNode = p.parseEnumSpecifier()
			sawType = true
		case k == lexer.TYPEOF:
			if sawType {
				goto done
			}
			s.typeNode = p.parseTypeofSpecifier()
			sawType = true
		case typeSpecifierKeywords[k]:
			if sawType {
				goto done
			}
			loc := p.loc()
			tok := p.advance()
			typeName = joinTypeWords(typeName, tok.Lexeme)
			// Greedily absorb adjacent base-type keywords ("unsigned long long").
			for typeSpecifierKeywords[p.cur().Kind] && p.cur().Kind != lexer.STRUCT &&
				p.cur().Kind != lexer.UNION && p.cur().Kind != lexer.ENUM {
				typeName = joinTypeWords(typeName, p.advance().Lexeme)
			}
			s.typeNode = ast.NewNode(ast.TypeName, loc, ast.TypeData{Name: typeName, IsSigned: !containsWord(typeName, "unsigned")})
			sawType = true
		case k == lexer.IDENTIFIER && !sawType && p.typedefs.IsTypeName(p.cur().Lexeme):
			loc := p.loc()
			tok := p.advance()
			s.typeNode = ast.NewNode(ast.TypeName, loc, ast.TypeData{Name: tok.Lexeme, IsSigned: true})
			sawType = true
		default:
			goto done
		}
	}
done:
	if s.typeNode == nil {
		// Implicit int (pre-C99 behavior, still accepted by gcc/clang with a
		// warning); keeps the parser total rather than erroring on terse code.
		s.typeNode = ast.NewNode(ast.TypeName, p.loc(), ast.TypeData{Name: "int", IsSigned: true})
	}
	if s.isConst || s.isVolatile || s.isAtomicQ {
		if td, ok := s.typeNode.Data.(ast.TypeData); ok {
			td.IsConst = td.IsConst || s.isConst
			td.IsVolatile = td.IsVolatile || s.isVolatile
			td.IsAtomic = td.IsAtomic || s.isAtomicQ
			s.typeNode.Data = td
		}
	}
	return s
}

func joinTypeWords(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

func containsWord(s, word string) bool {
	for _, w := range splitWords(s) {
		if w == word {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}

// parseStructOrUnionSpecifier parses `struct|union [tag] [{ fields }]`.
func (p *Parser) parseStructOrUnionSpecifier() *ast.Node {
	loc := p.loc()
	isUnion := p.at(lexer.UNION)
	p.advance() // struct|union

	p.parseAttributesIfPresent()

	tag := ""
	if p.at(lexer.IDENTIFIER) {
		tag = p.advance().Lexeme
	}

	kind := ast.StructType
	if isUnion {
		kind = ast.UnionType
	}
	node := ast.NewNode(kind, loc, ast.RecordData{Tag: tag})

	if p.at(lexer.LBRACE) {
		p.advance()
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			node.AddChild(p.parseFieldDeclaration())
		}
		p.expect(lexer.RBRACE, "}")
	}
	return node
}

// parseFieldDeclaration parses one struct/union member declaration, possibly
// declaring several fields sharing one set of specifiers, and an optional bit-field
// width.
func (p *Parser) parseFieldDeclaration() *ast.Node {
	loc := p.loc()
	spec := p.parseDeclarationSpecifiers()
	list := ast.NewNode(ast.DeclList, loc, nil)
	for {
		name, build := p.parseDeclarator()
		typ := build(spec.typeNode)
		var bitWidth *ast.Node
		if p.at(lexer.COLON) {
			p.advance()
			bitWidth = p.parseConstantExpression()
		}
		list.AddChild(ast.NewNode(ast.FieldDecl, loc, ast.FieldData{Name: name, Type: typ, BitWidth: bitWidth}))
		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	p.parseAttributesIfPresent()
	p.expect(lexer.SEMICOLON, ";")
	return list
}

// parseEnumSpecifier parses `enum [tag] [{ enumerator-list }]`.
func (p *Parser) parseEnumSpecifier() *ast.Node {
	loc := p.loc()
	p.advance() // enum
	p.parseAttributesIfPresent()
	tag := ""
	if p.at(lexer.IDENTIFIER) {
		tag = p.advance().Lexeme
	}
	node := ast.NewNode(ast.EnumType, loc, ast.EnumData{Tag: tag})
	if p.at(lexer.LBRACE) {
		p.advance()
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			eloc := p.loc()
			name := p.expect(lexer.IDENTIFIER, "enumerator name").Lexeme
			var value *ast.Node
			if p.at(lexer.ASSIGN) {
				p.advance()
				value = p.parseConstantExpression()
			}
			node.AddChild(ast.NewNode(ast.EnumeratorDecl, eloc, ast.EnumeratorData{Name: name, Value: value}))
			if p.at(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RBRACE, "}")
	}
	return node
}

// parseAtomicParenType parses the C11 `_Atomic(T)` type-specifier form.
func (p *Parser) parseAtomicParenType() *ast.Node {
	loc := p.loc()
	p.advance() // _Atomic
	p.expect(lexer.LPAREN, "(")
	inner := p.parseTypeName()
	p.expect(lexer.RPAREN, ")")
	node := ast.NewNode(ast.AtomicType, loc, nil)
	node.AddChild(inner)
	return node
}

// parseTypeofSpecifier parses GNU `typeof(expr)` / `typeof(type)`; since this
// compiler does not implement full type inference over arbitrary expressions, the
// operand is retained for diagnostics and the node degrades to `int` for lowering
// (a narrower gap than the rest of the GNU surface, worth revisiting if typeof-heavy
// headers turn out to matter).
func (p *Parser) parseTypeofSpecifier() *ast.Node {
	loc := p.loc()
	p.advance() // typeof
	p.expect(lexer.LPAREN, "(")
	if p.isDeclarationStart() {
		inner := p.parseTypeName()
		p.expect(lexer.RPAREN, ")")
		node := ast.NewNode(ast.TypeofType, loc, nil)
		node.AddChild(inner)
		return node
	}
	p.parseExpression()
	p.expect(lexer.RPAREN, ")")
	return ast.NewNode(ast.TypeName, loc, ast.TypeData{Name: "int", IsSigned: true})
}

// parseTypeName parses an abstract type name: declaration-specifiers followed by an
// optional abstract declarator (used by casts, sizeof, _Alignof, _Generic
// associations, compound literals).
func (p *Parser) parseTypeName() *ast.Node {
	spec := p.parseDeclarationSpecifiers()
	_, build := p.parseDeclarator()
	return build(spec.typeNode)
}

// looksLikeTypeName peeks whether the parser is positioned at the start of a type
// name, without consuming anything — used by the cast-vs-paren and sizeof/typeof
// operand disambiguation in expressions.go.
func (p *Parser) looksLikeTypeName() bool {
	return p.isDeclarationStart()
}

// ---- declarators ----

type ptrQual struct {
	isConst, isVolatile, isRestrict bool
}

// parseDeclarator parses an (possibly abstract, i.e. nameless) declarator: an
// optional pointer chain followed by a direct declarator. It returns the bound name
// (empty for an abstract declarator) and a function that, given the base type,
// produces the fully derived type by composing pointer/array/function wrappers in
// the order C's declarator-spiral rule requires.
func (p *Parser) parseDeclarator() (string, func(*ast.Node) *ast.Node) {
	if err := p.enterDecl(); err != nil {
		p.errorf("%s", err)
		return "", identityType
	}
	defer p.leaveDecl()

	var quals []ptrQual
	for p.at(lexer.STAR) {
		p.advance()
		var q ptrQual
		for p.atAny(lexer.CONST, lexer.VOLATILE, lexer.RESTRICT) {
			switch p.cur().Kind {
			case lexer.CONST:
				q.isConst = true
			case lexer.VOLATILE:
				q.isVolatile = true
			case lexer.RESTRICT:
				q.isRestrict = true
			}
			p.advance()
		}
		quals = append(quals, q)
	}

	name, directBuild := p.parseDirectDeclarator()

	pointerBuild := func(base *ast.Node) *ast.Node {
		result := base
		for i := len(quals) - 1; i >= 0; i-- {
			q := quals[i]
			loc := result.Loc
			pt := ast.NewNode(ast.PointerType, loc, ast.TypeData{IsConst: q.isConst, IsVolatile: q.isVolatile})
			pt.AddChild(result)
			result = pt
		}
		return result
	}

	return name, func(base *ast.Node) *ast.Node {
		return directBuild(pointerBuild(base))
	}
}

func identityType(base *ast.Node) *ast.Node { return base }

// parseDirectDeclarator implements the direct-declarator production, including the
// `(declarator)` vs `(parameters)` disambiguation spec §4.E.4 calls for: at an
// un-named position, a `(` is a parenthesized sub-declarator only if the token after
// it is `*` or `(`; otherwise that `(` is this (anonymous) declarator's own
// parameter-list suffix.
func (p *Parser) parseDirectDeclarator() (string, func(*ast.Node) *ast.Node) {
	var name string
	var innerBuild func(*ast.Node) *ast.Node = identityType

	if p.at(lexer.LPAREN) && (p.peekN(1).Kind == lexer.STAR || p.peekN(1).Kind == lexer.LPAREN) {
		p.advance() // (
		name, innerBuild = p.parseDeclarator()
		p.expect(lexer.RPAREN, ")")
	} else if p.at(lexer.IDENTIFIER) {
		name = p.advance().Lexeme
	}

	var suffixBuilds []func(*ast.Node) *ast.Node
	for {
		switch {
		case p.at(lexer.LBRACKET):
			suffixBuilds = append(suffixBuilds, p.parseArraySuffix())
		case p.at(lexer.LPAREN):
			suffixBuilds = append(suffixBuilds, p.parseParamListSuffix())
		default:
			goto done
		}
	}
done:
	suffixBuild := func(base *ast.Node) *ast.Node {
		result := base
		for i := len(suffixBuilds) - 1; i >= 0; i-- {
			result = suffixBuilds[i](result)
		}
		return result
	}

	return name, func(base *ast.Node) *ast.Node {
		return innerBuild(suffixBuild(base))
	}
}

func (p *Parser) parseArraySuffix() func(*ast.Node) *ast.Node {
	loc := p.loc()
	p.advance() // [
	size := -1
	var sizeExpr *ast.Node
	p.atAny(lexer.STATIC) // tolerate (and ignore) a leading `static` in [static N]
	if p.at(lexer.STATIC) {
		p.advance()
	}
	for p.atAny(lexer.CONST, lexer.VOLATILE, lexer.RESTRICT) {
		p.advance()
	}
	if !p.at(lexer.RBRACKET) {
		if p.at(lexer.STAR) && p.peekN(1).Kind == lexer.RBRACKET {
			p.advance() // VLA `*` bound: unknown size.
		} else {
			sizeExpr = p.parseConstantExpression()
			if iv, ok := sizeExpr.Data.(ast.IntLitData); ok {
				size = int(iv.Value)
			}
		}
	}
	p.expect(lexer.RBRACKET, "]")
	return func(elem *ast.Node) *ast.Node {
		n := ast.NewNode(ast.ArrayType, loc, ast.ArrayTypeData{Size: size})
		n.AddChild(elem)
		if sizeExpr != nil {
			n.AddChild(sizeExpr)
		}
		return n
	}
}

func (p *Parser) parseParamListSuffix() func(*ast.Node) *ast.Node {
	loc := p.loc()
	params, variadic := p.parseParamList()
	return func(ret *ast.Node) *ast.Node {
		n := ast.NewNode(ast.FunctionType, loc, nil)
		n.AddChild(ret)
		pl := ast.NewNode(ast.ParamList, loc, ast.ParamListData{Variadic: variadic})
		for _, pr := range params {
			pl.AddChild(pr)
		}
		n.AddChild(pl)
		return n
	}
}

// parseParamList parses `( [param (, param)* [, ...]] )`, pushing a typedef scope
// for the duration (spec §4.E.10: parameter names are visible as ordinary
// identifiers, but a parameter list also needs its own typedef-shadowing layer
// during K&R-style old declarations).
func (p *Parser) parseParamList() ([]*ast.Node, bool) {
	p.expect(lexer.LPAREN, "(")
	p.typedefs.Push()
	defer p.typedefs.Pop()

	var params []*ast.Node
	variadic := false
	if p.at(lexer.VOID) && p.peekN(1).Kind == lexer.RPAREN {
		p.advance()
		p.expect(lexer.RPAREN, ")")
		return params, false
	}
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		if p.at(lexer.ELLIPSIS) {
			p.advance()
			variadic = true
			break
		}
		loc := p.loc()
		spec := p.parseDeclarationSpecifiers()
		name, build := p.parseDeclarator()
		typ := build(spec.typeNode)
		params = append(params, ast.NewNode(ast.ParamDecl, loc, ast.DeclData{Name: name, Type: typ}))
		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(lexer.RPAREN, ")")
	return params, variadic
}

// ---- external declarations ----

// parseExternalDeclaration parses one top-level construct: a function definition, a
// declaration (possibly declaring a typedef), a stray `;`, a standalone GNU
// `__attribute__`/`__extension__`/`_Static_assert`, or (on error) nothing, after
// reporting a diagnostic and synchronizing.
func (p *Parser) parseExternalDeclaration() *ast.Node {
	switch {
	case p.at(lexer.SEMICOLON):
		p.advance()
		return nil
	case p.at(lexer.STATIC_ASSERT):
		return p.parseStaticAssert()
	case p.at(lexer.ATTRIBUTE):
		p.parseAttributeSpecifier()
		return nil
	case p.at(lexer.EXTENSION):
		p.advance()
		return p.parseExternalDeclaration()
	case p.at(lexer.ASM):
		return p.parseAsmStmt()
	}

	if !p.isDeclarationStart() {
		p.errorf("expected declaration, found %q", p.cur().Lexeme)
		p.synchronize()
		return nil
	}

	loc := p.loc()
	spec := p.parseDeclarationSpecifiers()

	if p.at(lexer.SEMICOLON) {
		// A bare `struct foo { ... };` or similar with no declarator.
		p.advance()
		return spec.typeNode
	}

	list := ast.NewNode(ast.DeclList, loc, nil)
	for {
		dloc := p.loc()
		name, build := p.parseDeclarator()
		typ := build(spec.typeNode)
		p.parseAttributesIfPresent()

		if spec.isTypedef {
			p.typedefs.Declare(name)
			list.AddChild(ast.NewNode(ast.TypedefDecl, dloc, ast.DeclData{Name: name, Type: typ}))
		} else if typ.Kind == ast.FunctionType && p.at(lexer.LBRACE) {
			body := p.parseCompoundStmt()
			fn := ast.NewNode(ast.FunctionDecl, dloc, ast.FuncData{
				Name:       name,
				ReturnType: typ.Child(0),
				Params:     typ.Child(1),
				Variadic:   typ.Child(1) != nil && typ.Child(1).Data.(ast.ParamListData).Variadic,
				Body:       body,
				Storage:    spec.storage,
				Inline:     spec.inline,
			})
			return fn
		} else {
			var init *ast.Node
			if p.at(lexer.ASSIGN) {
				p.advance()
				init = p.parseInitializer()
			}
			list.AddChild(ast.NewNode(ast.VarDecl, dloc, ast.DeclData{
				Name: name, Type: typ, Init: init, Storage: spec.storage,
			}))
		}

		if !p.at(lexer.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(lexer.SEMICOLON, ";")
	return list
}

// parseConstantExpression parses a constant-expression: syntactically just a
// conditional-expression (constant evaluation is not enforced by the parser).
func (p *Parser) parseConstantExpression() *ast.Node {
	return p.parseConditionalExpr()
}

package parser

import "io"

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

type parseFunc func(*Parser) *Node

type Parser struct {
	file   string
	reader io.Reader
	input  []byte
	read   bool
	tokens []Token
	pos    int
	entry  parseFunc
}

func newParser(r io.Reader, entry parseFunc, opts []Option) *Parser {
	p := &Parser{
		reader: r,
		entry:  entry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseCompilationUnit parses a complete Java source file.
func ParseCompilationUnit(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseCompilationUnit, opts)
}

// ParseStatements parses a sequence of block statements without the
// surrounding braces. The result is a Block node.
func ParseStatements(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseStatementList, opts)
}

func ParseExpression(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseExpression, opts)
}

// Source returns the bytes consumed by the parser. It is only populated
// after Finish.
func (p *Parser) Source() []byte {
	return p.input
}

// Finish reads all input and returns the syntax tree. Broken input never
// fails the parse: unexpected tokens end up inside Error nodes and missing
// tokens are marked by empty Error nodes. Finish returns nil only when the
// reader fails.
func (p *Parser) Finish() *Node {
	if !p.read {
		data, err := io.ReadAll(p.reader)
		if err != nil {
			return nil
		}
		p.input = data
		p.read = true
	}
	p.tokenize()
	p.pos = 0
	return p.entry(p)
}

func (p *Parser) Reset(r io.Reader) {
	p.reader = r
	p.input = nil
	p.read = false
	p.tokens = nil
	p.pos = 0
}

func (p *Parser) tokenize() {
	p.tokens = p.tokens[:0]
	lexer := NewLexer(p.input, p.file)
	for {
		tok := lexer.NextToken()
		switch tok.Kind {
		case TokenWhitespace, TokenComment, TokenLineComment:
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Kind == TokenEOF {
			return
		}
	}
}

func (p *Parser) peek() Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

func isIdentifierKind(kind TokenKind) bool {
	switch kind {
	case TokenIdent, TokenVar, TokenYield, TokenRecord, TokenSealed, TokenPermits:
		return true
	}
	return false
}

func (p *Parser) isIdentifierLike() bool {
	return isIdentifierKind(p.peek().Kind)
}

func isPrimitiveKind(kind TokenKind) bool {
	switch kind {
	case TokenBoolean, TokenByte, TokenChar, TokenShort,
		TokenInt, TokenLong, TokenFloat, TokenDouble:
		return true
	}
	return false
}

func (p *Parser) isPrimitive() bool {
	return isPrimitiveKind(p.peek().Kind)
}

func (p *Parser) startNode(kind NodeKind) *Node {
	start := p.peek().Span.Start
	return &Node{
		Kind: kind,
		Span: Span{Start: start, End: start},
	}
}

// finishNode sets the span of a composite node from its children. Nodes
// without children keep the empty span they were started with.
func (p *Parser) finishNode(n *Node) *Node {
	if len(n.Children) > 0 {
		n.Span.Start = n.Children[0].Span.Start
		n.Span.End = n.Children[len(n.Children)-1].Span.End
	}
	return n
}

func (p *Parser) leaf() *Node {
	tok := p.advance()
	return &Node{Kind: KindToken, Token: &tok, Span: tok.Span}
}

func (p *Parser) ident() *Node {
	tok := p.advance()
	return &Node{Kind: KindIdentifier, Token: &tok, Span: tok.Span}
}

func (p *Parser) expect(n *Node, kind TokenKind) bool {
	if p.check(kind) {
		n.AddChild(p.leaf())
		return true
	}
	n.AddChild(p.missing("expected "+kind.String(), kind))
	return false
}

func (p *Parser) expectIdent(n *Node) bool {
	if p.isIdentifierLike() {
		n.AddChild(p.ident())
		return true
	}
	n.AddChild(p.missing("expected identifier", TokenIdent))
	return false
}

// missing returns an empty Error node placed right after the last consumed
// token.
func (p *Parser) missing(msg string, expected ...TokenKind) *Node {
	at := p.peek().Span.Start
	if p.pos > 0 {
		at = p.tokens[p.pos-1].Span.End
	}
	got := p.peek()
	return &Node{
		Kind:  KindError,
		Span:  Span{Start: at, End: at},
		Error: &Error{Message: msg, Expected: expected, Got: &got},
	}
}

// errorNode consumes at least one token into an Error node, then keeps
// consuming until one of recoverTo is next. With no recovery kinds exactly
// one token is consumed.
func (p *Parser) errorNode(msg string, recoverTo ...TokenKind) *Node {
	got := p.peek()
	node := p.startNode(KindError)
	node.Error = &Error{Message: msg, Got: &got}
	for !p.check(TokenEOF) {
		node.AddChild(p.leaf())
		if len(recoverTo) == 0 || p.match(recoverTo...) {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) unexpected() *Node {
	return p.errorNode("unexpected " + p.peek().Kind.String())
}

// parseList parses comma separated items until close, which is left for the
// caller to consume.
func (p *Parser) parseList(n *Node, close TokenKind, item func() *Node) {
	for !p.check(close) && !p.check(TokenEOF) {
		saved := p.pos
		n.AddChild(item())
		if p.pos == saved {
			if p.match(TokenSemicolon, TokenLBrace, TokenRBrace) {
				return
			}
			n.AddChild(p.errorNode("unexpected "+p.peek().Kind.String(),
				TokenComma, close, TokenSemicolon, TokenLBrace, TokenRBrace))
		}
		if !p.check(TokenComma) {
			return
		}
		n.AddChild(p.leaf())
	}
}

// splitGT makes a single ">" available at the current position, splitting
// ">>", ">>>", ">=" and friends so that nested type arguments can close.
func (p *Parser) splitGT() bool {
	tok := p.peek()
	switch tok.Kind {
	case TokenGT:
		return true
	case TokenShr, TokenUShr, TokenGE, TokenShrAssign, TokenUShrAssign:
	default:
		return false
	}

	first := tok
	first.Kind = TokenGT
	first.Literal = ">"
	first.Span.End = first.Span.Start
	first.Span.End.Offset++
	first.Span.End.Column++

	rest := tok
	rest.Literal = tok.Literal[1:]
	rest.Kind = lookupOperator(rest.Literal)
	rest.Span.Start = first.Span.End

	tail := append([]Token{first, rest}, p.tokens[p.pos+1:]...)
	p.tokens = append(p.tokens[:p.pos], tail...)
	return true
}

func lookupOperator(text string) TokenKind {
	for _, op := range operators {
		if op.text == text {
			return op.kind
		}
	}
	return TokenError
}

// Declarations

func (p *Parser) parseCompilationUnit() *Node {
	node := p.startNode(KindCompilationUnit)

	for !p.check(TokenEOF) {
		saved := p.pos
		switch {
		case p.check(TokenPackage):
			node.AddChild(p.parsePackageDecl(nil))
		case p.check(TokenImport):
			node.AddChild(p.parseImportDecl())
		case p.check(TokenSemicolon):
			node.AddChild(p.leaf())
		default:
			modifiers := p.parseModifiers()
			switch {
			case p.isTypeDeclStart():
				node.AddChild(p.parseTypeDecl(modifiers))
			case p.check(TokenPackage):
				node.AddChild(p.parsePackageDecl(modifiers))
			default:
				node.AddChild(modifiers)
				node.AddChild(p.errorNode("expected type declaration",
					TokenClass, TokenInterface, TokenEnum, TokenRecord, TokenAt,
					TokenPublic, TokenAbstract, TokenFinal, TokenImport))
			}
		}
		if p.pos == saved {
			node.AddChild(p.unexpected())
		}
	}

	return p.finishNode(node)
}

func (p *Parser) parsePackageDecl(modifiers *Node) *Node {
	node := p.startNode(KindPackageDecl)
	node.AddChild(modifiers)
	node.AddChild(p.leaf())
	p.parseQualifiedName(node, false)
	p.expect(node, TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseImportDecl() *Node {
	node := p.startNode(KindImportDecl)
	node.AddChild(p.leaf())
	if p.check(TokenStatic) {
		node.AddChild(p.leaf())
	}
	p.parseQualifiedName(node, true)
	p.expect(node, TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseQualifiedName(node *Node, allowStar bool) {
	if !p.expectIdent(node) {
		return
	}
	for p.check(TokenDot) {
		next := p.peekN(1).Kind
		switch {
		case isIdentifierKind(next):
			node.AddChild(p.leaf())
			node.AddChild(p.ident())
		case allowStar && next == TokenStar:
			node.AddChild(p.leaf())
			node.AddChild(p.leaf())
			return
		default:
			node.AddChild(p.leaf())
			node.AddChild(p.missing("expected identifier", TokenIdent))
			return
		}
	}
}

func (p *Parser) isModifier() bool {
	switch p.peek().Kind {
	case TokenPublic, TokenPrivate, TokenProtected, TokenStatic, TokenFinal,
		TokenAbstract, TokenNative, TokenSynchronized, TokenTransient,
		TokenVolatile, TokenStrictfp, TokenNonSealed:
		return true
	case TokenDefault:
		return p.peekN(1).Kind != TokenColon && p.peekN(1).Kind != TokenArrow
	case TokenSealed:
		switch p.peekN(1).Kind {
		case TokenClass, TokenInterface, TokenAbstract, TokenPublic, TokenPrivate,
			TokenProtected, TokenStatic, TokenFinal, TokenStrictfp:
			return true
		}
	}
	return false
}

// parseModifiers returns nil when there are no modifiers or annotations.
func (p *Parser) parseModifiers() *Node {
	node := p.startNode(KindModifiers)
	for {
		switch {
		case p.check(TokenAt) && p.peekN(1).Kind != TokenInterface:
			node.AddChild(p.parseAnnotation())
		case p.isModifier():
			node.AddChild(p.leaf())
		default:
			if len(node.Children) == 0 {
				return nil
			}
			return p.finishNode(node)
		}
	}
}

func (p *Parser) parseAnnotation() *Node {
	node := p.startNode(KindAnnotation)
	node.AddChild(p.leaf())
	p.parseQualifiedName(node, false)
	if !p.check(TokenLParen) {
		return p.finishNode(node)
	}
	depth := 0
	for !p.check(TokenEOF) {
		switch p.peek().Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
		}
		node.AddChild(p.leaf())
		if depth == 0 {
			break
		}
	}
	return p.finishNode(node)
}

func (p *Parser) isTypeDeclStart() bool {
	switch p.peek().Kind {
	case TokenClass, TokenInterface, TokenEnum:
		return true
	case TokenAt:
		return p.peekN(1).Kind == TokenInterface
	case TokenRecord:
		return isIdentifierKind(p.peekN(1).Kind)
	}
	return false
}

func (p *Parser) parseTypeDecl(modifiers *Node) *Node {
	var kind NodeKind
	switch p.peek().Kind {
	case TokenInterface:
		kind = KindInterfaceDecl
	case TokenEnum:
		kind = KindEnumDecl
	case TokenRecord:
		kind = KindRecordDecl
	case TokenAt:
		kind = KindAnnotationDecl
	default:
		kind = KindClassDecl
	}

	node := p.startNode(kind)
	node.AddChild(modifiers)
	if kind == KindAnnotationDecl {
		node.AddChild(p.leaf())
	}
	node.AddChild(p.leaf())
	p.expectIdent(node)
	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	if kind == KindRecordDecl && p.check(TokenLParen) {
		node.AddChild(p.parseParameters())
	}

header:
	for !p.check(TokenLBrace) && !p.check(TokenEOF) {
		switch {
		case p.match(TokenExtends, TokenImplements, TokenPermits, TokenComma):
			node.AddChild(p.leaf())
		case p.isIdentifierLike() || p.check(TokenAt):
			node.AddChild(p.parseType())
		case p.match(TokenSemicolon, TokenRBrace):
			break header
		default:
			node.AddChild(p.errorNode("unexpected "+p.peek().Kind.String(),
				TokenLBrace, TokenSemicolon, TokenRBrace))
		}
	}

	node.AddChild(p.parseClassBody(kind == KindEnumDecl))
	return p.finishNode(node)
}

func (p *Parser) parseTypeParameters() *Node {
	node := p.startNode(KindTypeParameters)
	node.AddChild(p.leaf())

params:
	for !p.splitGT() && !p.check(TokenEOF) {
		switch {
		case p.isIdentifierLike() || p.check(TokenAt):
			node.AddChild(p.parseType())
		case p.match(TokenExtends, TokenComma, TokenBitAnd):
			node.AddChild(p.leaf())
		default:
			break params
		}
	}

	p.expectGT(node)
	return p.finishNode(node)
}

func (p *Parser) expectGT(node *Node) {
	if p.splitGT() {
		node.AddChild(p.leaf())
		return
	}
	node.AddChild(p.missing("expected >", TokenGT))
}

func (p *Parser) parseClassBody(enum bool) *Node {
	node := p.startNode(KindClassBody)
	if !p.expect(node, TokenLBrace) {
		return p.finishNode(node)
	}

	if enum {
		p.parseEnumConstants(node)
	}

	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		saved := p.pos
		node.AddChild(p.parseMember())
		if p.pos == saved {
			node.AddChild(p.unexpected())
		}
	}

	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseEnumConstants(body *Node) {
	for p.isIdentifierLike() || p.check(TokenAt) {
		node := p.startNode(KindEnumConstant)
		node.AddChild(p.parseModifiers())
		p.expectIdent(node)
		if p.check(TokenLParen) {
			node.AddChild(p.parseArguments())
		}
		if p.check(TokenLBrace) {
			node.AddChild(p.parseClassBody(false))
		}
		body.AddChild(p.finishNode(node))
		if !p.check(TokenComma) {
			break
		}
		body.AddChild(p.leaf())
	}
	if p.check(TokenSemicolon) {
		body.AddChild(p.leaf())
	}
}

func (p *Parser) parseMember() *Node {
	if p.check(TokenSemicolon) {
		return p.leaf()
	}

	modifiers := p.parseModifiers()

	if p.check(TokenLBrace) {
		node := p.startNode(KindInitializer)
		node.AddChild(modifiers)
		node.AddChild(p.parseBlock())
		return p.finishNode(node)
	}

	if p.isTypeDeclStart() {
		return p.parseTypeDecl(modifiers)
	}

	var typeParams *Node
	if p.check(TokenLT) {
		typeParams = p.parseTypeParameters()
	}

	if p.isIdentifierLike() && p.peekN(1).Kind == TokenLParen {
		node := p.startNode(KindConstructorDecl)
		node.AddChild(modifiers)
		node.AddChild(typeParams)
		node.AddChild(p.ident())
		p.parseMethodRest(node)
		return p.finishNode(node)
	}

	// compact record constructor
	if p.isIdentifierLike() && p.peekN(1).Kind == TokenLBrace {
		node := p.startNode(KindConstructorDecl)
		node.AddChild(modifiers)
		node.AddChild(p.ident())
		node.AddChild(p.parseBlock())
		return p.finishNode(node)
	}

	if !p.isIdentifierLike() && !p.isPrimitive() && !p.check(TokenVoid) && !p.check(TokenAt) {
		node := p.startNode(KindError)
		node.Error = &Error{Message: "expected member declaration"}
		node.AddChild(modifiers)
		node.AddChild(typeParams)
		if !p.check(TokenRBrace) {
			node.AddChild(p.errorNode("unexpected "+p.peek().Kind.String(), TokenSemicolon, TokenRBrace))
		}
		return p.finishNode(node)
	}

	typ := p.parseType()

	if p.isIdentifierLike() && p.peekN(1).Kind == TokenLParen {
		node := p.startNode(KindMethodDecl)
		node.AddChild(modifiers)
		node.AddChild(typeParams)
		node.AddChild(typ)
		node.AddChild(p.ident())
		p.parseMethodRest(node)
		return p.finishNode(node)
	}

	node := p.startNode(KindFieldDecl)
	node.AddChild(modifiers)
	node.AddChild(typ)
	p.parseVariables(node)
	p.expect(node, TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseMethodRest(node *Node) {
	node.AddChild(p.parseParameters())
	p.parseDims(node)

	if p.check(TokenThrows) {
		throws := p.startNode(KindThrowsList)
		throws.AddChild(p.leaf())
		p.parseList(throws, TokenLBrace, p.parseType)
		node.AddChild(p.finishNode(throws))
	}

	if p.check(TokenDefault) {
		node.AddChild(p.leaf())
		node.AddChild(p.parseVarInitializer())
	}

	if p.check(TokenLBrace) {
		node.AddChild(p.parseBlock())
		return
	}
	p.expect(node, TokenSemicolon)
}

func (p *Parser) parseDims(node *Node) {
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		node.AddChild(p.leaf())
		node.AddChild(p.leaf())
	}
}

func (p *Parser) parseParameters() *Node {
	node := p.startNode(KindParameters)
	p.expect(node, TokenLParen)
	p.parseList(node, TokenRParen, p.parseParameter)
	p.expect(node, TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseParameter() *Node {
	node := p.startNode(KindParameter)
	node.AddChild(p.parseModifiers())
	node.AddChild(p.parseType())
	for p.check(TokenBitOr) {
		node.AddChild(p.leaf())
		node.AddChild(p.parseType())
	}
	if p.check(TokenEllipsis) {
		node.AddChild(p.leaf())
	}
	if p.check(TokenThis) {
		node.AddChild(p.leaf())
	} else {
		p.expectIdent(node)
	}
	p.parseDims(node)
	return p.finishNode(node)
}

// Types

func (p *Parser) parseType() *Node {
	node := p.startNode(KindType)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}

	switch {
	case p.isPrimitive() || p.check(TokenVoid) || p.check(TokenVar):
		node.AddChild(p.leaf())
	case p.isIdentifierLike():
		p.parseTypeName(node)
	case p.check(TokenQuestion):
		node.AddChild(p.leaf())
		if p.match(TokenExtends, TokenSuper) {
			node.AddChild(p.leaf())
			node.AddChild(p.parseType())
		}
		return p.finishNode(node)
	default:
		node.AddChild(p.missing("expected type"))
		return p.finishNode(node)
	}

	p.parseDims(node)
	return p.finishNode(node)
}

func (p *Parser) parseTypeName(node *Node) {
	for {
		node.AddChild(p.ident())
		if p.check(TokenLT) {
			node.AddChild(p.parseTypeArguments(KindTypeArguments))
		}
		if !p.check(TokenDot) || !isIdentifierKind(p.peekN(1).Kind) {
			return
		}
		node.AddChild(p.leaf())
	}
}

func (p *Parser) parseTypeArguments(kind NodeKind) *Node {
	node := p.startNode(kind)
	node.AddChild(p.leaf())
	if !p.splitGT() {
		p.parseList(node, TokenGT, p.parseType)
	}
	p.expectGT(node)
	return p.finishNode(node)
}

// Statements

func (p *Parser) parseStatementList() *Node {
	node := p.startNode(KindBlock)
	p.parseStatementsUntil(node, TokenEOF)
	return p.finishNode(node)
}

func (p *Parser) parseBlock() *Node {
	node := p.startNode(KindBlock)
	p.expect(node, TokenLBrace)
	p.parseStatementsUntil(node, TokenRBrace)
	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseStatementsUntil(node *Node, closers ...TokenKind) {
	for !p.match(closers...) && !p.check(TokenEOF) {
		saved := p.pos
		stmt := p.parseStatement()
		if p.pos == saved {
			node.AddChild(p.unexpected())
			continue
		}
		node.AddChild(stmt)
	}
}

func (p *Parser) parseStatement() *Node {
	switch p.peek().Kind {
	case TokenLBrace:
		return p.parseBlock()
	case TokenSemicolon:
		node := p.startNode(KindEmptyStmt)
		node.AddChild(p.leaf())
		return p.finishNode(node)
	case TokenIf:
		return p.parseIfStmt()
	case TokenFor:
		return p.parseForStmt()
	case TokenWhile:
		return p.parseWhileStmt()
	case TokenDo:
		return p.parseDoStmt()
	case TokenSwitch:
		return p.parseSwitch(KindSwitchStmt)
	case TokenReturn:
		return p.parseKeywordStmt(KindReturnStmt, true)
	case TokenThrow:
		return p.parseKeywordStmt(KindThrowStmt, true)
	case TokenBreak:
		return p.parseJumpStmt(KindBreakStmt)
	case TokenContinue:
		return p.parseJumpStmt(KindContinueStmt)
	case TokenTry:
		return p.parseTryStmt()
	case TokenAssert:
		return p.parseAssertStmt()
	case TokenSynchronized:
		if p.peekN(1).Kind == TokenLParen {
			return p.parseSynchronizedStmt()
		}
	case TokenYield:
		if p.isYieldStmt() {
			return p.parseKeywordStmt(KindYieldStmt, true)
		}
	case TokenRBrace:
		return p.missing("expected statement")
	case TokenRParen, TokenRBracket:
		return p.unexpected()
	}

	if p.isIdentifierLike() && p.peekN(1).Kind == TokenColon {
		node := p.startNode(KindLabeledStmt)
		node.AddChild(p.ident())
		node.AddChild(p.leaf())
		node.AddChild(p.parseStatement())
		return p.finishNode(node)
	}

	if p.isLocalClassDecl() {
		node := p.startNode(KindLocalClassDecl)
		node.AddChild(p.parseTypeDecl(p.parseModifiers()))
		return p.finishNode(node)
	}

	if p.isLocalVarDecl() {
		return p.parseLocalVarDecl(true)
	}
	return p.parseExprStmt()
}

func (p *Parser) parseExprStmt() *Node {
	node := p.startNode(KindExprStmt)
	node.AddChild(p.parseExpression())
	p.expect(node, TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) isYieldStmt() bool {
	switch p.peekN(1).Kind {
	case TokenAssign, TokenDot, TokenLBracket, TokenSemicolon,
		TokenIncrement, TokenDecrement, TokenPlusAssign, TokenMinusAssign:
		return false
	}
	return true
}

func (p *Parser) isLocalClassDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.parseModifiers()
	return p.isTypeDeclStart() && !p.check(TokenAt)
}

func (p *Parser) isLocalVarDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()

	for p.check(TokenAt) || p.check(TokenFinal) {
		if p.check(TokenFinal) {
			p.advance()
			continue
		}
		p.parseAnnotation()
	}

	if p.isPrimitive() {
		p.advance()
		for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
			p.advance()
			p.advance()
		}
		return p.isIdentifierLike()
	}
	if !p.skipTypeName() {
		return false
	}
	return p.isIdentifierLike()
}

// skipTypeName advances over a possibly qualified, parameterized array type
// and reports whether one was found.
func (p *Parser) skipTypeName() bool {
	for {
		if !p.isIdentifierLike() {
			return false
		}
		p.advance()
		if p.check(TokenLT) && !p.skipTypeArguments() {
			return false
		}
		if !p.check(TokenDot) {
			break
		}
		p.advance()
	}
	for p.check(TokenLBracket) {
		if p.peekN(1).Kind != TokenRBracket {
			return false
		}
		p.advance()
		p.advance()
	}
	return true
}

func (p *Parser) skipTypeArguments() bool {
	depth := 0
	for {
		kind := p.peek().Kind
		switch {
		case kind == TokenLT:
			depth++
		case kind == TokenGT:
			depth--
		case kind == TokenShr:
			depth -= 2
		case kind == TokenUShr:
			depth -= 3
		case isIdentifierKind(kind), isPrimitiveKind(kind):
		case kind == TokenDot, kind == TokenComma, kind == TokenQuestion,
			kind == TokenExtends, kind == TokenSuper, kind == TokenLBracket,
			kind == TokenRBracket, kind == TokenBitAnd, kind == TokenAt:
		default:
			return false
		}
		p.advance()
		if depth <= 0 {
			return depth == 0
		}
	}
}

func (p *Parser) parseLocalVarDecl(withSemicolon bool) *Node {
	node := p.startNode(KindLocalVarDecl)
	node.AddChild(p.parseModifiers())
	node.AddChild(p.parseType())
	p.parseVariables(node)
	if withSemicolon {
		p.expect(node, TokenSemicolon)
	}
	return p.finishNode(node)
}

func (p *Parser) parseVariables(node *Node) {
	for {
		node.AddChild(p.parseVariable())
		if !p.check(TokenComma) {
			return
		}
		node.AddChild(p.leaf())
	}
}

func (p *Parser) parseVariable() *Node {
	node := p.startNode(KindVariable)
	p.expectIdent(node)
	p.parseDims(node)
	if p.check(TokenAssign) {
		node.AddChild(p.leaf())
		node.AddChild(p.parseVarInitializer())
	}
	return p.finishNode(node)
}

func (p *Parser) parseVarInitializer() *Node {
	if p.check(TokenLBrace) {
		return p.parseArrayInit()
	}
	return p.parseExpression()
}

func (p *Parser) parseArrayInit() *Node {
	node := p.startNode(KindArrayInit)
	node.AddChild(p.leaf())
	p.parseList(node, TokenRBrace, p.parseVarInitializer)
	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseCondition(node *Node) {
	p.expect(node, TokenLParen)
	node.AddChild(p.parseExpression())
	p.expect(node, TokenRParen)
}

func (p *Parser) parseIfStmt() *Node {
	node := p.startNode(KindIfStmt)
	node.AddChild(p.leaf())
	p.parseCondition(node)
	node.AddChild(p.parseStatement())
	if p.check(TokenElse) {
		node.AddChild(p.leaf())
		node.AddChild(p.parseStatement())
	}
	return p.finishNode(node)
}

func (p *Parser) parseWhileStmt() *Node {
	node := p.startNode(KindWhileStmt)
	node.AddChild(p.leaf())
	p.parseCondition(node)
	node.AddChild(p.parseStatement())
	return p.finishNode(node)
}

func (p *Parser) parseDoStmt() *Node {
	node := p.startNode(KindDoStmt)
	node.AddChild(p.leaf())
	node.AddChild(p.parseStatement())
	if p.expect(node, TokenWhile) {
		p.parseCondition(node)
	}
	p.expect(node, TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseForStmt() *Node {
	node := p.startNode(KindForStmt)
	node.AddChild(p.leaf())
	p.expect(node, TokenLParen)

	if p.isEnhancedFor() {
		node.Kind = KindEnhancedForStmt
		param := p.startNode(KindParameter)
		param.AddChild(p.parseModifiers())
		param.AddChild(p.parseType())
		param.AddChild(p.ident())
		node.AddChild(p.finishNode(param))
		node.AddChild(p.leaf())
		node.AddChild(p.parseExpression())
	} else {
		if !p.check(TokenSemicolon) {
			if p.isLocalVarDecl() {
				node.AddChild(p.parseLocalVarDecl(false))
			} else {
				p.parseExpressionList(node)
			}
		}
		p.expect(node, TokenSemicolon)
		if !p.check(TokenSemicolon) {
			node.AddChild(p.parseExpression())
		}
		p.expect(node, TokenSemicolon)
		if !p.check(TokenRParen) {
			p.parseExpressionList(node)
		}
	}

	p.expect(node, TokenRParen)
	node.AddChild(p.parseStatement())
	return p.finishNode(node)
}

func (p *Parser) parseExpressionList(node *Node) {
	for {
		node.AddChild(p.parseExpression())
		if !p.check(TokenComma) {
			return
		}
		node.AddChild(p.leaf())
	}
}

func (p *Parser) isEnhancedFor() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.parseModifiers()
	if p.isPrimitive() {
		p.advance()
		for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
			p.advance()
			p.advance()
		}
	} else if !p.skipTypeName() {
		return false
	}
	if !p.isIdentifierLike() {
		return false
	}
	p.advance()
	return p.check(TokenColon)
}

// parseKeywordStmt parses return, throw and yield statements.
func (p *Parser) parseKeywordStmt(kind NodeKind, withValue bool) *Node {
	node := p.startNode(kind)
	node.AddChild(p.leaf())
	if withValue && !p.match(TokenSemicolon, TokenRBrace) {
		node.AddChild(p.parseExpression())
	}
	p.expect(node, TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseJumpStmt(kind NodeKind) *Node {
	node := p.startNode(kind)
	node.AddChild(p.leaf())
	if p.isIdentifierLike() {
		node.AddChild(p.ident())
	}
	p.expect(node, TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseTryStmt() *Node {
	node := p.startNode(KindTryStmt)
	node.AddChild(p.leaf())

	if p.check(TokenLParen) {
		resources := p.startNode(KindResourceList)
		resources.AddChild(p.leaf())
		for !p.check(TokenRParen) && !p.check(TokenEOF) {
			saved := p.pos
			if p.isLocalVarDecl() {
				resources.AddChild(p.parseLocalVarDecl(false))
			} else {
				resources.AddChild(p.parseExpression())
			}
			if p.check(TokenSemicolon) {
				resources.AddChild(p.leaf())
				continue
			}
			if p.pos == saved {
				resources.AddChild(p.missing("expected resource"))
			}
			break
		}
		p.expect(resources, TokenRParen)
		node.AddChild(p.finishNode(resources))
	}

	node.AddChild(p.parseBlock())

	for p.check(TokenCatch) {
		catch := p.startNode(KindCatchClause)
		catch.AddChild(p.leaf())
		p.expect(catch, TokenLParen)
		catch.AddChild(p.parseParameter())
		p.expect(catch, TokenRParen)
		catch.AddChild(p.parseBlock())
		node.AddChild(p.finishNode(catch))
	}

	if p.check(TokenFinally) {
		finally := p.startNode(KindFinallyClause)
		finally.AddChild(p.leaf())
		finally.AddChild(p.parseBlock())
		node.AddChild(p.finishNode(finally))
	}

	return p.finishNode(node)
}

func (p *Parser) parseSynchronizedStmt() *Node {
	node := p.startNode(KindSynchronizedStmt)
	node.AddChild(p.leaf())
	p.parseCondition(node)
	node.AddChild(p.parseBlock())
	return p.finishNode(node)
}

func (p *Parser) parseAssertStmt() *Node {
	node := p.startNode(KindAssertStmt)
	node.AddChild(p.leaf())
	node.AddChild(p.parseExpression())
	if p.check(TokenColon) {
		node.AddChild(p.leaf())
		node.AddChild(p.parseExpression())
	}
	p.expect(node, TokenSemicolon)
	return p.finishNode(node)
}

// parseSwitch parses both switch statements and switch expressions; they
// differ only in the node kind.
func (p *Parser) parseSwitch(kind NodeKind) *Node {
	node := p.startNode(kind)
	node.AddChild(p.leaf())
	p.parseCondition(node)
	if !p.expect(node, TokenLBrace) {
		return p.finishNode(node)
	}

	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		saved := p.pos
		if p.match(TokenCase, TokenDefault) {
			node.AddChild(p.parseSwitchCase())
		} else {
			node.AddChild(p.parseStatement())
		}
		if p.pos == saved {
			node.AddChild(p.unexpected())
		}
	}

	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseSwitchCase() *Node {
	node := p.startNode(KindSwitchCase)
	if p.check(TokenDefault) {
		node.AddChild(p.leaf())
	} else {
		node.AddChild(p.leaf())
		for {
			node.AddChild(p.parseCaseLabel())
			if !p.check(TokenComma) {
				break
			}
			node.AddChild(p.leaf())
		}
		if p.isIdentifierLike() && p.peek().Literal == "when" {
			node.AddChild(p.ident())
			node.AddChild(p.parseExpression())
		}
	}

	if p.check(TokenArrow) {
		node.AddChild(p.leaf())
		switch {
		case p.check(TokenLBrace):
			node.AddChild(p.parseBlock())
		case p.check(TokenThrow):
			node.AddChild(p.parseStatement())
		default:
			node.AddChild(p.parseExprStmt())
		}
		return p.finishNode(node)
	}

	p.expect(node, TokenColon)
	p.parseStatementsUntil(node, TokenCase, TokenDefault, TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseCaseLabel() *Node {
	if p.check(TokenDefault) {
		return p.leaf()
	}
	if p.isTypePattern() {
		node := p.startNode(KindParameter)
		node.AddChild(p.parseModifiers())
		node.AddChild(p.parseType())
		node.AddChild(p.ident())
		return p.finishNode(node)
	}
	return p.parseTernary()
}

func (p *Parser) isTypePattern() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.parseModifiers()
	if p.isPrimitive() {
		p.advance()
	} else if !p.skipTypeName() {
		return false
	}
	return p.isIdentifierLike() && p.peek().Literal != "when"
}

// Expressions

func (p *Parser) parseExpression() *Node {
	if p.isLambda() {
		return p.parseLambda()
	}

	lhs := p.parseTernary()
	if !p.isAssignOp() {
		return lhs
	}

	node := p.startNode(KindAssignExpr)
	node.AddChild(lhs)
	node.AddChild(p.leaf())
	node.AddChild(p.parseExpression())
	return p.finishNode(node)
}

func (p *Parser) isAssignOp() bool {
	return p.match(TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign,
		TokenSlashAssign, TokenPercentAssign, TokenAndAssign, TokenOrAssign,
		TokenXorAssign, TokenShlAssign, TokenShrAssign, TokenUShrAssign)
}

func (p *Parser) isLambda() bool {
	if p.isIdentifierLike() {
		return p.peekN(1).Kind == TokenArrow
	}
	if !p.check(TokenLParen) {
		return false
	}
	depth := 0
	for i := 0; ; i++ {
		switch p.peekN(i).Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return p.peekN(i+1).Kind == TokenArrow
			}
		case TokenEOF, TokenSemicolon, TokenLBrace, TokenRBrace:
			return false
		}
	}
}

func (p *Parser) parseLambda() *Node {
	node := p.startNode(KindLambdaExpr)

	params := p.startNode(KindLambdaParameters)
	if p.isIdentifierLike() {
		params.AddChild(p.ident())
	} else {
		params.AddChild(p.leaf())
		p.parseList(params, TokenRParen, p.parseLambdaParameter)
		p.expect(params, TokenRParen)
	}
	node.AddChild(p.finishNode(params))

	p.expect(node, TokenArrow)
	if p.check(TokenLBrace) {
		node.AddChild(p.parseBlock())
	} else {
		node.AddChild(p.parseExpression())
	}
	return p.finishNode(node)
}

func (p *Parser) parseLambdaParameter() *Node {
	next := p.peekN(1).Kind
	if p.isIdentifierLike() && (next == TokenComma || next == TokenRParen) {
		return p.ident()
	}
	return p.parseParameter()
}

func (p *Parser) parseTernary() *Node {
	cond := p.parseBinary(1)
	if !p.check(TokenQuestion) {
		return cond
	}

	node := p.startNode(KindTernaryExpr)
	node.AddChild(cond)
	node.AddChild(p.leaf())
	node.AddChild(p.parseExpression())
	p.expect(node, TokenColon)
	if p.isLambda() {
		node.AddChild(p.parseLambda())
	} else {
		node.AddChild(p.parseTernary())
	}
	return p.finishNode(node)
}

func binaryPrecedence(kind TokenKind) int {
	switch kind {
	case TokenOr:
		return 1
	case TokenAnd:
		return 2
	case TokenBitOr:
		return 3
	case TokenBitXor:
		return 4
	case TokenBitAnd:
		return 5
	case TokenEQ, TokenNE:
		return 6
	case TokenLT, TokenGT, TokenLE, TokenGE, TokenInstanceof:
		return 7
	case TokenShl, TokenShr, TokenUShr:
		return 8
	case TokenPlus, TokenMinus:
		return 9
	case TokenStar, TokenSlash, TokenPercent:
		return 10
	}
	return 0
}

func (p *Parser) parseBinary(minPrec int) *Node {
	left := p.parseUnary()
	for {
		op := p.peek().Kind
		prec := binaryPrecedence(op)
		if prec == 0 || prec < minPrec {
			return left
		}

		if op == TokenInstanceof {
			node := p.startNode(KindInstanceofExpr)
			node.AddChild(left)
			node.AddChild(p.leaf())
			if p.check(TokenFinal) {
				node.AddChild(p.leaf())
			}
			node.AddChild(p.parseType())
			if p.isIdentifierLike() {
				node.AddChild(p.ident())
			}
			left = p.finishNode(node)
			continue
		}

		node := p.startNode(KindBinaryExpr)
		node.AddChild(left)
		node.AddChild(p.leaf())
		node.AddChild(p.parseBinary(prec + 1))
		left = p.finishNode(node)
	}
}

func (p *Parser) parseUnary() *Node {
	switch p.peek().Kind {
	case TokenPlus, TokenMinus, TokenIncrement, TokenDecrement, TokenNot, TokenBitNot:
		node := p.startNode(KindUnaryExpr)
		node.AddChild(p.leaf())
		node.AddChild(p.parseUnary())
		return p.finishNode(node)
	case TokenLParen:
		if p.isCast() {
			return p.parseCast()
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) isCast() bool {
	save := p.pos
	defer func() { p.pos = save }()

	p.advance()
	if p.isPrimitive() {
		p.advance()
		for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
			p.advance()
			p.advance()
		}
		return p.check(TokenRParen)
	}

	if !p.skipTypeName() {
		return false
	}
	for p.check(TokenBitAnd) {
		p.advance()
		if !p.skipTypeName() {
			return false
		}
	}
	if !p.check(TokenRParen) {
		return false
	}
	p.advance()

	switch p.peek().Kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral, TokenStringLiteral,
		TokenTextBlock, TokenTrue, TokenFalse, TokenNull, TokenThis, TokenSuper,
		TokenNew, TokenLParen, TokenNot, TokenBitNot, TokenSwitch:
		return true
	}
	return p.isIdentifierLike()
}

func (p *Parser) parseCast() *Node {
	node := p.startNode(KindCastExpr)
	node.AddChild(p.leaf())
	node.AddChild(p.parseType())
	for p.check(TokenBitAnd) {
		node.AddChild(p.leaf())
		node.AddChild(p.parseType())
	}
	p.expect(node, TokenRParen)
	if p.isLambda() {
		node.AddChild(p.parseLambda())
	} else {
		node.AddChild(p.parseUnary())
	}
	return p.finishNode(node)
}

func (p *Parser) parsePostfix(expr *Node) *Node {
	for {
		switch p.peek().Kind {
		case TokenDot:
			expr = p.parseDotSuffix(expr)
		case TokenLParen:
			switch expr.Kind {
			case KindReferenceExpr, KindThis, KindSuper:
			default:
				return expr
			}
			node := p.startNode(KindCallExpr)
			node.AddChild(expr)
			node.AddChild(p.parseArguments())
			expr = p.finishNode(node)
		case TokenLBracket:
			if p.peekN(1).Kind == TokenRBracket {
				array := p.parseArrayTypeSuffix(expr)
				if array == nil {
					return expr
				}
				expr = array
				continue
			}
			node := p.startNode(KindArrayAccess)
			node.AddChild(expr)
			node.AddChild(p.leaf())
			node.AddChild(p.parseExpression())
			p.expect(node, TokenRBracket)
			expr = p.finishNode(node)
		case TokenColonColon:
			expr = p.parseMethodRef(expr)
		case TokenIncrement, TokenDecrement:
			node := p.startNode(KindPostfixExpr)
			node.AddChild(expr)
			node.AddChild(p.leaf())
			expr = p.finishNode(node)
		default:
			return expr
		}
	}
}

// parseArrayTypeSuffix handles String[].class and String[]::new. It returns
// nil, consuming nothing, when the brackets are followed by anything else.
func (p *Parser) parseArrayTypeSuffix(expr *Node) *Node {
	save := p.pos
	var dims []*Node
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		dims = append(dims, p.leaf(), p.leaf())
	}

	var node *Node
	switch {
	case p.check(TokenDot) && p.peekN(1).Kind == TokenClass:
		node = p.startNode(KindClassLiteral)
	case p.check(TokenColonColon):
		node = p.startNode(KindMethodRef)
	default:
		p.pos = save
		return nil
	}

	node.AddChild(expr)
	for _, d := range dims {
		node.AddChild(d)
	}
	if node.Kind == KindMethodRef {
		node.AddChild(p.leaf())
		if p.check(TokenNew) {
			node.AddChild(p.leaf())
		} else {
			p.expectIdent(node)
		}
	} else {
		node.AddChild(p.leaf())
		node.AddChild(p.leaf())
	}
	return p.finishNode(node)
}

func (p *Parser) parseDotSuffix(expr *Node) *Node {
	dot := p.leaf()

	var kind NodeKind
	switch p.peek().Kind {
	case TokenClass:
		kind = KindClassLiteral
	case TokenThis:
		kind = KindThis
	case TokenSuper:
		kind = KindSuper
	case TokenNew:
		return p.parseNew(expr, dot)
	default:
		node := p.startNode(KindReferenceExpr)
		node.AddChild(expr)
		node.AddChild(dot)
		if p.check(TokenLT) {
			node.AddChild(p.parseTypeArguments(KindReferenceParameterList))
		} else {
			node.AddChild(p.startNode(KindReferenceParameterList))
		}
		p.expectIdent(node)
		return p.finishNode(node)
	}

	node := p.startNode(kind)
	node.AddChild(expr)
	node.AddChild(dot)
	node.AddChild(p.leaf())
	return p.finishNode(node)
}

func (p *Parser) parseMethodRef(target *Node) *Node {
	node := p.startNode(KindMethodRef)
	node.AddChild(target)
	node.AddChild(p.leaf())
	if p.check(TokenLT) {
		node.AddChild(p.parseTypeArguments(KindTypeArguments))
	}
	if p.check(TokenNew) {
		node.AddChild(p.leaf())
	} else {
		p.expectIdent(node)
	}
	return p.finishNode(node)
}

func (p *Parser) parseArguments() *Node {
	node := p.startNode(KindArguments)
	p.expect(node, TokenLParen)
	p.parseList(node, TokenRParen, p.parseExpression)
	p.expect(node, TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parsePrimary() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral,
		TokenStringLiteral, TokenTextBlock, TokenTrue, TokenFalse, TokenNull:
		p.advance()
		return &Node{Kind: KindLiteral, Token: &tok, Span: tok.Span}
	case TokenThis:
		p.advance()
		return &Node{Kind: KindThis, Token: &tok, Span: tok.Span}
	case TokenSuper:
		p.advance()
		return &Node{Kind: KindSuper, Token: &tok, Span: tok.Span}
	case TokenNew:
		return p.parseNew(nil, nil)
	case TokenSwitch:
		return p.parseSwitch(KindSwitchExpr)
	case TokenLParen:
		node := p.startNode(KindParenExpr)
		node.AddChild(p.leaf())
		node.AddChild(p.parseExpression())
		p.expect(node, TokenRParen)
		return p.finishNode(node)
	case TokenVoid, TokenBoolean, TokenByte, TokenChar, TokenShort,
		TokenInt, TokenLong, TokenFloat, TokenDouble:
		typ := p.parseType()
		if p.check(TokenColonColon) {
			return p.parseMethodRef(typ)
		}
		node := p.startNode(KindClassLiteral)
		node.AddChild(typ)
		p.expect(node, TokenDot)
		p.expect(node, TokenClass)
		return p.finishNode(node)
	}

	if p.isIdentifierLike() {
		node := p.startNode(KindReferenceExpr)
		node.AddChild(p.startNode(KindReferenceParameterList))
		node.AddChild(p.ident())
		return p.finishNode(node)
	}

	switch tok.Kind {
	case TokenSemicolon, TokenComma, TokenColon, TokenRParen, TokenRBracket,
		TokenRBrace, TokenEOF:
		return p.missing("expected expression")
	}
	return p.errorNode("expected expression")
}

// parseNew parses instance creation and array creation. Qualified creation
// (outer.new Inner()) passes the qualifier and the dot.
func (p *Parser) parseNew(outer, dot *Node) *Node {
	node := p.startNode(KindNewExpr)
	node.AddChild(outer)
	node.AddChild(dot)
	node.AddChild(p.leaf())

	if p.check(TokenLT) {
		node.AddChild(p.parseTypeArguments(KindTypeArguments))
	}

	typ := p.startNode(KindType)
	for p.check(TokenAt) {
		typ.AddChild(p.parseAnnotation())
	}
	switch {
	case p.isPrimitive():
		typ.AddChild(p.leaf())
	case p.isIdentifierLike():
		p.parseTypeName(typ)
	default:
		typ.AddChild(p.missing("expected type"))
	}
	node.AddChild(p.finishNode(typ))

	if p.check(TokenLBracket) {
		node.Kind = KindNewArrayExpr
		for p.check(TokenLBracket) {
			node.AddChild(p.leaf())
			if !p.check(TokenRBracket) {
				node.AddChild(p.parseExpression())
			}
			p.expect(node, TokenRBracket)
		}
		if p.check(TokenLBrace) {
			node.AddChild(p.parseArrayInit())
		}
		return p.finishNode(node)
	}

	node.AddChild(p.parseArguments())
	if p.check(TokenLBrace) {
		node.AddChild(p.parseClassBody(false))
	}
	return p.finishNode(node)
}

package parser

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:  input,
		file:   file,
		line:   1,
		column: 1,
	}
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	return l.peekN(0)
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) advanceWhile(pred func(byte) bool) {
	for l.pos < len(l.input) && pred(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) NextToken() Token {
	start := l.Position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}
	}

	ch := l.peek()
	switch {
	case ch == '/' && l.peekN(1) == '/':
		l.advanceWhile(func(c byte) bool { return c != '\n' })
		return l.token(TokenLineComment, start)
	case ch == '/' && l.peekN(1) == '*':
		l.scanBlockComment()
		return l.token(TokenComment, start)
	case isSpace(ch):
		l.advanceWhile(isSpace)
		return l.token(TokenWhitespace, start)
	case isJavaLetter(ch):
		return l.scanIdentOrKeyword(start)
	case isDigit(ch), ch == '.' && isDigit(l.peekN(1)):
		return l.scanNumber(start)
	case ch == '\'':
		l.scanQuoted('\'')
		return l.token(TokenCharLiteral, start)
	case ch == '"' && l.peekN(1) == '"' && l.peekN(2) == '"':
		l.scanTextBlock()
		return l.token(TokenTextBlock, start)
	case ch == '"':
		l.scanQuoted('"')
		return l.token(TokenStringLiteral, start)
	}

	return l.scanOperator(start)
}

func (l *Lexer) scanBlockComment() {
	l.advanceN(2)
	for l.pos < len(l.input) {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	l.advanceWhile(isJavaLetterOrDigit)

	if string(l.input[start.Offset:l.pos]) == "non" && bytes.HasPrefix(l.input[l.pos:], []byte("-sealed")) {
		rest := l.input[l.pos+len("-sealed"):]
		if len(rest) == 0 || !isJavaLetterOrDigit(rest[0]) {
			l.advanceN(len("-sealed"))
			return l.token(TokenNonSealed, start)
		}
	}

	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

// scanNumber follows javac: a decimal integer part followed by a dot is a
// floating point literal even when no fraction digits follow, so "0.foo"
// lexes as the literal "0." and the identifier "foo".
func (l *Lexer) scanNumber(start Position) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		return l.scanHexNumber(start)
	}
	if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		l.advanceN(2)
		l.advanceWhile(func(c byte) bool { return c == '0' || c == '1' || c == '_' })
		if l.peek() == 'l' || l.peek() == 'L' {
			l.advance()
		}
		return l.token(TokenIntLiteral, start)
	}

	isFloat := false
	l.advanceWhile(isDigitOrUnderscore)

	if l.peek() == '.' && l.peekN(1) != '.' {
		isFloat = true
		l.advance()
		l.advanceWhile(isDigitOrUnderscore)
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		l.advanceWhile(isDigitOrUnderscore)
	}

	switch l.peek() {
	case 'f', 'F', 'd', 'D':
		isFloat = true
		l.advance()
	case 'l', 'L':
		if !isFloat {
			l.advance()
		}
	}

	if isFloat {
		return l.token(TokenFloatLiteral, start)
	}
	return l.token(TokenIntLiteral, start)
}

func (l *Lexer) scanHexNumber(start Position) Token {
	l.advanceN(2)
	l.advanceWhile(func(c byte) bool { return isHexDigit(c) || c == '_' })
	isFloat := false
	if l.peek() == '.' {
		isFloat = true
		l.advance()
		l.advanceWhile(func(c byte) bool { return isHexDigit(c) || c == '_' })
	}
	if l.peek() == 'p' || l.peek() == 'P' {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		l.advanceWhile(isDigitOrUnderscore)
	}
	switch ch := l.peek(); {
	case isFloat && (ch == 'f' || ch == 'F' || ch == 'd' || ch == 'D'):
		l.advance()
	case !isFloat && (ch == 'l' || ch == 'L'):
		l.advance()
	}
	if isFloat {
		return l.token(TokenFloatLiteral, start)
	}
	return l.token(TokenIntLiteral, start)
}

// scanQuoted consumes a char or string literal. An unterminated literal stops
// at the end of the line.
func (l *Lexer) scanQuoted(quote byte) {
	l.advance()
	for l.pos < len(l.input) && l.peek() != quote && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.peek() == quote {
		l.advance()
	}
}

func (l *Lexer) scanTextBlock() {
	l.advanceN(3)
	for l.pos < len(l.input) {
		if l.peek() == '"' && l.peekN(1) == '"' && l.peekN(2) == '"' {
			l.advanceN(3)
			return
		}
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
}

// operators is ordered so that longer spellings come before their prefixes.
var operators = []struct {
	text string
	kind TokenKind
}{
	{">>>=", TokenUShrAssign},
	{"<<=", TokenShlAssign},
	{">>=", TokenShrAssign},
	{">>>", TokenUShr},
	{"...", TokenEllipsis},
	{"::", TokenColonColon},
	{"->", TokenArrow},
	{"==", TokenEQ},
	{"!=", TokenNE},
	{"<=", TokenLE},
	{">=", TokenGE},
	{"&&", TokenAnd},
	{"||", TokenOr},
	{"<<", TokenShl},
	{">>", TokenShr},
	{"++", TokenIncrement},
	{"--", TokenDecrement},
	{"+=", TokenPlusAssign},
	{"-=", TokenMinusAssign},
	{"*=", TokenStarAssign},
	{"/=", TokenSlashAssign},
	{"%=", TokenPercentAssign},
	{"&=", TokenAndAssign},
	{"|=", TokenOrAssign},
	{"^=", TokenXorAssign},
	{"(", TokenLParen},
	{")", TokenRParen},
	{"{", TokenLBrace},
	{"}", TokenRBrace},
	{"[", TokenLBracket},
	{"]", TokenRBracket},
	{";", TokenSemicolon},
	{",", TokenComma},
	{".", TokenDot},
	{"@", TokenAt},
	{"=", TokenAssign},
	{"<", TokenLT},
	{">", TokenGT},
	{"!", TokenNot},
	{"~", TokenBitNot},
	{"?", TokenQuestion},
	{":", TokenColon},
	{"&", TokenBitAnd},
	{"|", TokenBitOr},
	{"^", TokenBitXor},
	{"+", TokenPlus},
	{"-", TokenMinus},
	{"*", TokenStar},
	{"/", TokenSlash},
	{"%", TokenPercent},
}

func (l *Lexer) scanOperator(start Position) Token {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if bytes.HasPrefix(rest, []byte(op.text)) {
			l.advanceN(len(op.text))
			return l.token(op.kind, start)
		}
	}

	_, size := utf8.DecodeRune(rest)
	l.advanceN(size)
	return l.token(TokenError, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isDigitOrUnderscore(ch byte) bool {
	return isDigit(ch) || ch == '_'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isJavaLetter(ch byte) bool {
	if ch >= utf8.RuneSelf {
		return true
	}
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isJavaLetterOrDigit(ch byte) bool {
	return isJavaLetter(ch) || isDigit(ch)
}

// IsWord reports whether s has the shape of a Java identifier. Reserved
// keywords such as "if" are words too.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := unicode.IsLetter(r) || r == '_' || r == '$'
		if i == 0 && !letter {
			return false
		}
		if !letter && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsIdentifier reports whether s is a valid Java identifier that is not a
// reserved keyword.
func IsIdentifier(s string) bool {
	if !IsWord(s) {
		return false
	}
	kind := LookupKeyword(s)
	return kind == TokenIdent || kind > TokenWhile
}

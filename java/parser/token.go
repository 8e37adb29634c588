package parser

import "strconv"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

type Span struct {
	Start Position
	End   Position
}

// Contains reports whether offset lies within the span. The end offset is
// inclusive so that a cursor placed right after a token still touches it.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset <= s.End.Offset
}

func (s Span) Empty() bool {
	return s.Start.Offset == s.End.Offset
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenLineComment

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	TokenCharLiteral
	TokenStringLiteral
	TokenTextBlock
	TokenTrue
	TokenFalse
	TokenNull

	// Keywords
	TokenAbstract
	TokenAssert
	TokenBoolean
	TokenBreak
	TokenByte
	TokenCase
	TokenCatch
	TokenChar
	TokenClass
	TokenConst
	TokenContinue
	TokenDefault
	TokenDo
	TokenDouble
	TokenElse
	TokenEnum
	TokenExtends
	TokenFinal
	TokenFinally
	TokenFloat
	TokenFor
	TokenGoto
	TokenIf
	TokenImplements
	TokenImport
	TokenInstanceof
	TokenInt
	TokenInterface
	TokenLong
	TokenNative
	TokenNew
	TokenPackage
	TokenPrivate
	TokenProtected
	TokenPublic
	TokenReturn
	TokenShort
	TokenStatic
	TokenStrictfp
	TokenSuper
	TokenSwitch
	TokenSynchronized
	TokenThis
	TokenThrow
	TokenThrows
	TokenTransient
	TokenTry
	TokenVoid
	TokenVolatile
	TokenWhile

	// Contextual keywords
	TokenVar
	TokenYield
	TokenRecord
	TokenSealed
	TokenNonSealed
	TokenPermits

	// Operators and punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenEllipsis
	TokenAt
	TokenColonColon

	TokenAssign
	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenAnd
	TokenOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenBitXor
	TokenBitNot
	TokenShl
	TokenShr
	TokenUShr
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenIncrement
	TokenDecrement
	TokenQuestion
	TokenColon
	TokenArrow
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenPercentAssign
	TokenAndAssign
	TokenOrAssign
	TokenXorAssign
	TokenShlAssign
	TokenShrAssign
	TokenUShrAssign
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenError:         "Error",
	TokenWhitespace:    "Whitespace",
	TokenComment:       "Comment",
	TokenLineComment:   "LineComment",
	TokenIdent:         "Identifier",
	TokenIntLiteral:    "IntLiteral",
	TokenFloatLiteral:  "FloatLiteral",
	TokenCharLiteral:   "CharLiteral",
	TokenStringLiteral: "StringLiteral",
	TokenTextBlock:     "TextBlock",
}

func init() {
	for text, kind := range keywords {
		tokenKindNames[kind] = text
	}
	for _, op := range operators {
		tokenKindNames[op.kind] = op.text
	}
	tokenKindNames[TokenNonSealed] = "non-sealed"
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsKeyword reports whether the kind is a reserved or contextual keyword,
// including the literal keywords true, false and null.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenTrue && k <= TokenPermits
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

var keywords = map[string]TokenKind{
	"abstract":     TokenAbstract,
	"assert":       TokenAssert,
	"boolean":      TokenBoolean,
	"break":        TokenBreak,
	"byte":         TokenByte,
	"case":         TokenCase,
	"catch":        TokenCatch,
	"char":         TokenChar,
	"class":        TokenClass,
	"const":        TokenConst,
	"continue":     TokenContinue,
	"default":      TokenDefault,
	"do":           TokenDo,
	"double":       TokenDouble,
	"else":         TokenElse,
	"enum":         TokenEnum,
	"extends":      TokenExtends,
	"final":        TokenFinal,
	"finally":      TokenFinally,
	"float":        TokenFloat,
	"for":          TokenFor,
	"goto":         TokenGoto,
	"if":           TokenIf,
	"implements":   TokenImplements,
	"import":       TokenImport,
	"instanceof":   TokenInstanceof,
	"int":          TokenInt,
	"interface":    TokenInterface,
	"long":         TokenLong,
	"native":       TokenNative,
	"new":          TokenNew,
	"package":      TokenPackage,
	"private":      TokenPrivate,
	"protected":    TokenProtected,
	"public":       TokenPublic,
	"return":       TokenReturn,
	"short":        TokenShort,
	"static":       TokenStatic,
	"strictfp":     TokenStrictfp,
	"super":        TokenSuper,
	"switch":       TokenSwitch,
	"synchronized": TokenSynchronized,
	"this":         TokenThis,
	"throw":        TokenThrow,
	"throws":       TokenThrows,
	"transient":    TokenTransient,
	"try":          TokenTry,
	"void":         TokenVoid,
	"volatile":     TokenVolatile,
	"while":        TokenWhile,
	"true":         TokenTrue,
	"false":        TokenFalse,
	"null":         TokenNull,
	"var":          TokenVar,
	"yield":        TokenYield,
	"record":       TokenRecord,
	"sealed":       TokenSealed,
	"permits":      TokenPermits,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

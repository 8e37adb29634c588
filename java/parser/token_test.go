package parser

import (
	"testing"
)

func TestTokenKindString(t *testing.T) {
	tests := []struct {
		kind TokenKind
		want string
	}{
		{TokenEOF, "EOF"},
		{TokenIdent, "Identifier"},
		{TokenFloatLiteral, "FloatLiteral"},
		{TokenClass, "class"},
		{TokenNonSealed, "non-sealed"},
		{TokenSemicolon, ";"},
		{TokenUShrAssign, ">>>="},
		{TokenKind(9999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("TokenKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestTokenKindIsKeyword(t *testing.T) {
	for _, kind := range []TokenKind{TokenIf, TokenNull, TokenVar, TokenPermits} {
		if !kind.IsKeyword() {
			t.Errorf("%v.IsKeyword() = false, want true", kind)
		}
	}
	for _, kind := range []TokenKind{TokenIdent, TokenIntLiteral, TokenDot} {
		if kind.IsKeyword() {
			t.Errorf("%v.IsKeyword() = true, want false", kind)
		}
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  TokenKind
	}{
		{"class", TokenClass},
		{"while", TokenWhile},
		{"false", TokenFalse},
		{"sealed", TokenSealed},
		{"foo", TokenIdent},
		{"Class", TokenIdent},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LookupKeyword(tt.input); got != tt.want {
				t.Errorf("LookupKeyword(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPositionString(t *testing.T) {
	pos := Position{File: "Test.java", Offset: 100, Line: 5, Column: 10}
	if got := pos.String(); got != "5:10" {
		t.Errorf("String() = %q, want %q", got, "5:10")
	}
}

func TestSpanContains(t *testing.T) {
	span := Span{
		Start: Position{Offset: 4},
		End:   Position{Offset: 8},
	}

	tests := []struct {
		offset int
		want   bool
	}{
		{3, false},
		{4, true},
		{6, true},
		{8, true},
		{9, false},
	}

	for _, tt := range tests {
		if got := span.Contains(tt.offset); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}

	if span.Empty() {
		t.Error("Empty() = true for a non-empty span")
	}
	if !(Span{Start: Position{Offset: 3}, End: Position{Offset: 3}}).Empty() {
		t.Error("Empty() = false for an empty span")
	}
}

// Package parser provides an error-tolerant parser for Java source code.
//
// # Overview
//
// The parser reads a complete source text and produces a concrete syntax tree
// (CST). Every token that is consumed shows up in the tree, so the span of a
// node covers exactly the source it was parsed from. Comments and whitespace
// are dropped by the parser but still counted in positions.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (tokens)   │     │   (CST)     │
//	└─────────────┘     └─────────────┘     └─────────────┘
//
// # Error Recovery
//
// The parser never fails on malformed input. Two kinds of Error node appear
// in the tree:
//
//   - An empty Error node marks a token that was expected but missing. It is
//     placed right after the last consumed token.
//   - A non-empty Error node wraps tokens that could not be parsed.
//
// An expression statement without its closing semicolon therefore ends in an
// empty Error node:
//
//	ExprStmt
//	├── BinaryExpr
//	│   ├── ReferenceExpr x
//	│   ├── Token >
//	│   └── Literal 0.
//	└── Error("expected ;")
//
// # References
//
// Names in expression position are ReferenceExpr nodes. A ReferenceExpr
// always carries a ReferenceParameterList right before its identifier, empty
// unless explicit type arguments were written:
//
//	foo        ReferenceExpr[ReferenceParameterList, Identifier]
//	a.foo      ReferenceExpr[ReferenceExpr a, Token ., ReferenceParameterList, Identifier]
//	a.<T>foo   ReferenceExpr[ReferenceExpr a, Token ., ReferenceParameterList[<, Type, >], Identifier]
//
// Method calls wrap the reference: CallExpr[ReferenceExpr, Arguments].
//
// # Lexing
//
// Number literals follow javac: a decimal digit sequence followed by a dot is
// a floating point literal even without fraction digits, so "0.if" lexes as
// the literal "0." followed by the keyword "if".
//
// # Entry Points
//
//	p := parser.ParseCompilationUnit(strings.NewReader(src), parser.WithFile("Main.java"))
//	tree := p.Finish()
//
//	// statements without surrounding braces, wrapped in a Block
//	tree := parser.ParseStatements(strings.NewReader("int x = 1; x++;")).Finish()
//
//	tree := parser.ParseExpression(strings.NewReader("x + y * 2")).Finish()
//
// A Parser instance is not safe for concurrent use.
package parser

package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota

	// Leaves
	KindToken
	KindIdentifier

	// Compilation unit level
	KindCompilationUnit
	KindPackageDecl
	KindImportDecl

	// Type declarations
	KindClassDecl
	KindInterfaceDecl
	KindEnumDecl
	KindRecordDecl
	KindAnnotationDecl
	KindClassBody
	KindEnumConstant

	// Members
	KindFieldDecl
	KindMethodDecl
	KindConstructorDecl
	KindInitializer

	// Types and modifiers
	KindModifiers
	KindAnnotation
	KindType
	KindTypeArguments
	KindReferenceParameterList
	KindTypeParameters
	KindParameters
	KindParameter
	KindThrowsList

	// Statements
	KindBlock
	KindEmptyStmt
	KindExprStmt
	KindLocalVarDecl
	KindVariable
	KindLocalClassDecl
	KindIfStmt
	KindForStmt
	KindEnhancedForStmt
	KindWhileStmt
	KindDoStmt
	KindSwitchStmt
	KindSwitchCase
	KindReturnStmt
	KindBreakStmt
	KindContinueStmt
	KindThrowStmt
	KindTryStmt
	KindResourceList
	KindCatchClause
	KindFinallyClause
	KindSynchronizedStmt
	KindAssertStmt
	KindLabeledStmt
	KindYieldStmt

	// Expressions
	KindAssignExpr
	KindTernaryExpr
	KindBinaryExpr
	KindUnaryExpr
	KindPostfixExpr
	KindCastExpr
	KindInstanceofExpr
	KindCallExpr
	KindReferenceExpr
	KindMethodRef
	KindArrayAccess
	KindNewExpr
	KindNewArrayExpr
	KindArrayInit
	KindLambdaExpr
	KindParenExpr
	KindLiteral
	KindThis
	KindSuper
	KindClassLiteral
	KindSwitchExpr

	// Expression parts
	KindArguments
	KindLambdaParameters
)

var nodeKindNames = map[NodeKind]string{
	KindError:                  "Error",
	KindToken:                  "Token",
	KindIdentifier:             "Identifier",
	KindCompilationUnit:        "CompilationUnit",
	KindPackageDecl:            "PackageDecl",
	KindImportDecl:             "ImportDecl",
	KindClassDecl:              "ClassDecl",
	KindInterfaceDecl:          "InterfaceDecl",
	KindEnumDecl:               "EnumDecl",
	KindRecordDecl:             "RecordDecl",
	KindAnnotationDecl:         "AnnotationDecl",
	KindClassBody:              "ClassBody",
	KindEnumConstant:           "EnumConstant",
	KindFieldDecl:              "FieldDecl",
	KindMethodDecl:             "MethodDecl",
	KindConstructorDecl:        "ConstructorDecl",
	KindInitializer:            "Initializer",
	KindModifiers:              "Modifiers",
	KindAnnotation:             "Annotation",
	KindType:                   "Type",
	KindTypeArguments:          "TypeArguments",
	KindReferenceParameterList: "ReferenceParameterList",
	KindTypeParameters:         "TypeParameters",
	KindParameters:             "Parameters",
	KindParameter:              "Parameter",
	KindThrowsList:             "ThrowsList",
	KindBlock:                  "Block",
	KindEmptyStmt:              "EmptyStmt",
	KindExprStmt:               "ExprStmt",
	KindLocalVarDecl:           "LocalVarDecl",
	KindVariable:               "Variable",
	KindLocalClassDecl:         "LocalClassDecl",
	KindIfStmt:                 "IfStmt",
	KindForStmt:                "ForStmt",
	KindEnhancedForStmt:        "EnhancedForStmt",
	KindWhileStmt:              "WhileStmt",
	KindDoStmt:                 "DoStmt",
	KindSwitchStmt:             "SwitchStmt",
	KindSwitchCase:             "SwitchCase",
	KindReturnStmt:             "ReturnStmt",
	KindBreakStmt:              "BreakStmt",
	KindContinueStmt:           "ContinueStmt",
	KindThrowStmt:              "ThrowStmt",
	KindTryStmt:                "TryStmt",
	KindResourceList:           "ResourceList",
	KindCatchClause:            "CatchClause",
	KindFinallyClause:          "FinallyClause",
	KindSynchronizedStmt:       "SynchronizedStmt",
	KindAssertStmt:             "AssertStmt",
	KindLabeledStmt:            "LabeledStmt",
	KindYieldStmt:              "YieldStmt",
	KindAssignExpr:             "AssignExpr",
	KindTernaryExpr:            "TernaryExpr",
	KindBinaryExpr:             "BinaryExpr",
	KindUnaryExpr:              "UnaryExpr",
	KindPostfixExpr:            "PostfixExpr",
	KindCastExpr:               "CastExpr",
	KindInstanceofExpr:         "InstanceofExpr",
	KindCallExpr:               "CallExpr",
	KindReferenceExpr:          "ReferenceExpr",
	KindMethodRef:              "MethodRef",
	KindArrayAccess:            "ArrayAccess",
	KindNewExpr:                "NewExpr",
	KindNewArrayExpr:           "NewArrayExpr",
	KindArrayInit:              "ArrayInit",
	KindLambdaExpr:             "LambdaExpr",
	KindParenExpr:              "ParenExpr",
	KindLiteral:                "Literal",
	KindThis:                   "This",
	KindSuper:                  "Super",
	KindClassLiteral:           "ClassLiteral",
	KindSwitchExpr:             "SwitchExpr",
	KindArguments:              "Arguments",
	KindLambdaParameters:       "LambdaParameters",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsExpression reports whether nodes of this kind are expressions.
func (k NodeKind) IsExpression() bool {
	return k >= KindAssignExpr && k <= KindSwitchExpr
}

// IsStatement reports whether nodes of this kind are statements.
func (k NodeKind) IsStatement() bool {
	return k >= KindBlock && k <= KindYieldStmt &&
		k != KindVariable && k != KindSwitchCase && k != KindResourceList &&
		k != KindCatchClause && k != KindFinallyClause
}

type Error struct {
	Message  string
	Expected []TokenKind
	Got      *Token
}

// Node is a concrete syntax tree node. Every consumed token appears in the
// tree, either as a KindToken/KindIdentifier leaf or as the Token of a
// Literal, This or Super node, so a node's span covers exactly the source
// it was parsed from.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

func (n *Node) String() string {
	var b strings.Builder
	n.writeIndent(&b, 0, false)
	return b.String()
}

func (n *Node) StringWithPositions() string {
	var b strings.Builder
	n.writeIndent(&b, 0, true)
	return b.String()
}

func (n *Node) writeIndent(b *strings.Builder, indent int, showPositions bool) {
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Kind.String())
	if showPositions {
		b.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil {
		b.WriteString(" " + n.Token.Literal)
	}
	if n.Error != nil {
		b.WriteString(" ERROR: " + n.Error.Message)
	}
	b.WriteString("\n")

	for _, child := range n.Children {
		child.writeIndent(b, indent+1, showPositions)
	}
}

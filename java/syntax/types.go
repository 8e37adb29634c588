package syntax

import (
	"strings"

	"github.com/dhamidi/postfix/java/parser"
)

// Type is a Java type as written in source, e.g. "int", "String" or
// "List<String>[]". Names are not resolved against imports.
type Type string

const (
	Boolean Type = "boolean"
	Byte    Type = "byte"
	Short   Type = "short"
	Char    Type = "char"
	Int     Type = "int"
	Long    Type = "long"
	Float   Type = "float"
	Double  Type = "double"
	String  Type = "String"
	Null    Type = "null"
	Class   Type = "Class"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsPrimitive() bool {
	switch t {
	case Boolean, Byte, Short, Char, Int, Long, Float, Double:
		return true
	}
	return false
}

// IsNumeric reports whether t is a primitive numeric type.
func (t Type) IsNumeric() bool {
	return t.IsPrimitive() && t != Boolean
}

// IsBoolean reports whether t is boolean or its box.
func (t Type) IsBoolean() bool {
	return t == Boolean || t == "Boolean" || t == "java.lang.Boolean"
}

func (t Type) IsArray() bool {
	return strings.HasSuffix(string(t), "[]")
}

// Elem returns the element type of an array type.
func (t Type) Elem() Type {
	return Type(strings.TrimSuffix(string(t), "[]"))
}

// Erasure drops type arguments: "Map<K, V>[]" becomes "Map[]".
func (t Type) Erasure() Type {
	s := string(t)
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return Type(b.String())
}

// Matches reports whether t is the type named by name. Simple names match
// qualified ones and type arguments are ignored unless name carries some.
func (t Type) Matches(name string) bool {
	if string(t) == name {
		return true
	}
	got := t
	if !strings.Contains(name, "<") {
		got = t.Erasure()
	}
	if string(got) == name {
		return true
	}
	return strings.HasSuffix(string(got), "."+name)
}

// TypeOf returns the static type of an expression node when it can be
// determined from the tree alone.
func (t *Tree) TypeOf(id NodeID) (Type, bool) {
	switch t.Kind(id) {
	case parser.KindLiteral:
		return t.literalType(id)
	case parser.KindParenExpr:
		return t.TypeOf(t.FirstChildOfKind(id, expressionKinds...))
	case parser.KindCastExpr:
		return t.typeNode(t.FirstChildOfKind(id, parser.KindType))
	case parser.KindUnaryExpr:
		return t.unaryType(id)
	case parser.KindPostfixExpr:
		return t.TypeOf(t.FirstChild(id))
	case parser.KindBinaryExpr:
		return t.binaryType(id)
	case parser.KindInstanceofExpr:
		return Boolean, true
	case parser.KindTernaryExpr:
		return t.ternaryType(id)
	case parser.KindAssignExpr:
		return t.TypeOf(t.FirstChild(id))
	case parser.KindNewExpr:
		return t.typeNode(t.FirstChildOfKind(id, parser.KindType))
	case parser.KindNewArrayExpr:
		return t.newArrayType(id)
	case parser.KindArrayAccess:
		array, ok := t.TypeOf(t.FirstChild(id))
		if !ok || !array.IsArray() {
			return "", false
		}
		return array.Elem(), true
	case parser.KindThis:
		if t.FirstChild(id) != None {
			return Type(t.Text(t.FirstChild(id))), true
		}
		return t.enclosingClass(id)
	case parser.KindClassLiteral:
		return Class, true
	case parser.KindReferenceExpr:
		return t.referenceType(id)
	}
	return "", false
}

var expressionKinds = func() []parser.NodeKind {
	var kinds []parser.NodeKind
	for k := parser.KindAssignExpr; k <= parser.KindSwitchExpr; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}()

func (t *Tree) literalType(id NodeID) (Type, bool) {
	tok, ok := t.Token(id)
	if !ok {
		return "", false
	}
	last := byte(0)
	if n := len(tok.Literal); n > 0 {
		last = tok.Literal[n-1]
	}
	switch tok.Kind {
	case parser.TokenIntLiteral:
		if last == 'l' || last == 'L' {
			return Long, true
		}
		return Int, true
	case parser.TokenFloatLiteral:
		if last == 'f' || last == 'F' {
			return Float, true
		}
		return Double, true
	case parser.TokenCharLiteral:
		return Char, true
	case parser.TokenStringLiteral, parser.TokenTextBlock:
		return String, true
	case parser.TokenTrue, parser.TokenFalse:
		return Boolean, true
	case parser.TokenNull:
		return Null, true
	}
	return "", false
}

func (t *Tree) operator(id NodeID) parser.TokenKind {
	for c := t.FirstChild(id); c != None; c = t.NextSibling(c) {
		if t.Kind(c) == parser.KindToken {
			tok, _ := t.Token(c)
			return tok.Kind
		}
	}
	return parser.TokenError
}

func (t *Tree) unaryType(id NodeID) (Type, bool) {
	operand, ok := t.TypeOf(t.LastChild(id))
	switch t.operator(id) {
	case parser.TokenNot:
		return Boolean, true
	case parser.TokenIncrement, parser.TokenDecrement:
		return operand, ok
	}
	if !ok || !operand.IsNumeric() {
		return "", false
	}
	return promote(operand, Int), true
}

func (t *Tree) binaryType(id NodeID) (Type, bool) {
	switch t.operator(id) {
	case parser.TokenEQ, parser.TokenNE, parser.TokenLT, parser.TokenGT,
		parser.TokenLE, parser.TokenGE, parser.TokenAnd, parser.TokenOr:
		return Boolean, true
	case parser.TokenPlus:
		left, lok := t.TypeOf(t.FirstChild(id))
		right, rok := t.TypeOf(t.LastChild(id))
		if (lok && left == String) || (rok && right == String) {
			return String, true
		}
		if lok && rok && left.IsNumeric() && right.IsNumeric() {
			return promote(left, right), true
		}
	case parser.TokenShl, parser.TokenShr, parser.TokenUShr:
		left, ok := t.TypeOf(t.FirstChild(id))
		if ok && left.IsNumeric() {
			return promote(left, Int), true
		}
	case parser.TokenBitAnd, parser.TokenBitOr, parser.TokenBitXor:
		left, lok := t.TypeOf(t.FirstChild(id))
		right, rok := t.TypeOf(t.LastChild(id))
		if lok && rok && left.IsBoolean() && right.IsBoolean() {
			return Boolean, true
		}
		if lok && rok && left.IsNumeric() && right.IsNumeric() {
			return promote(left, right), true
		}
	default:
		left, lok := t.TypeOf(t.FirstChild(id))
		right, rok := t.TypeOf(t.LastChild(id))
		if lok && rok && left.IsNumeric() && right.IsNumeric() {
			return promote(left, right), true
		}
	}
	return "", false
}

func (t *Tree) ternaryType(id NodeID) (Type, bool) {
	var branches []NodeID
	for c := t.FirstChild(id); c != None; c = t.NextSibling(c) {
		if t.IsExpression(c) {
			branches = append(branches, c)
		}
	}
	if len(branches) != 3 {
		return "", false
	}
	a, aok := t.TypeOf(branches[1])
	b, bok := t.TypeOf(branches[2])
	switch {
	case !aok || !bok:
		return "", false
	case a == b:
		return a, true
	case a == Null && !b.IsPrimitive():
		return b, true
	case b == Null && !a.IsPrimitive():
		return a, true
	case a.IsNumeric() && b.IsNumeric():
		return promote(a, b), true
	}
	return "", false
}

// promote applies binary numeric promotion.
func promote(a, b Type) Type {
	for _, wide := range []Type{Double, Float, Long} {
		if a == wide || b == wide {
			return wide
		}
	}
	return Int
}

func (t *Tree) newArrayType(id NodeID) (Type, bool) {
	base, ok := t.typeNode(t.FirstChildOfKind(id, parser.KindType))
	if !ok {
		return "", false
	}
	dims := 0
	for c := t.FirstChild(id); c != None; c = t.NextSibling(c) {
		if tok, ok := t.Token(c); ok && tok.Kind == parser.TokenLBracket {
			dims++
		}
	}
	return base + Type(strings.Repeat("[]", dims)), true
}

// typeNode renders a Type node without annotations and with whitespace
// normalized.
func (t *Tree) typeNode(id NodeID) (Type, bool) {
	if t.Kind(id) != parser.KindType {
		return "", false
	}
	var b strings.Builder
	t.Walk(id, func(n NodeID) bool {
		if t.Kind(n) == parser.KindAnnotation {
			return false
		}
		tok, ok := t.Token(n)
		if !ok || tok.Literal == "" {
			return true
		}
		if s := b.String(); len(s) > 0 && isWordByte(tok.Literal[0]) &&
			(isWordByte(s[len(s)-1]) || s[len(s)-1] == '?') {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Literal)
		if tok.Kind == parser.TokenComma {
			b.WriteByte(' ')
		}
		return true
	})
	if b.Len() == 0 {
		return "", false
	}
	return Type(b.String()), true
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (t *Tree) enclosingClass(id NodeID) (Type, bool) {
	decl := t.Ancestor(id, Is(parser.KindClassDecl, parser.KindEnumDecl,
		parser.KindRecordDecl, parser.KindInterfaceDecl))
	if decl == None {
		return "", false
	}
	name := t.FirstChildOfKind(decl, parser.KindIdentifier)
	if name == None {
		return "", false
	}
	return Type(t.Text(name)), true
}

func (t *Tree) identifierText(id NodeID) string {
	tok, ok := t.Token(id)
	if !ok {
		return ""
	}
	return tok.Literal
}

func (t *Tree) referenceType(id NodeID) (Type, bool) {
	name := t.LastChild(id)
	if t.Kind(name) != parser.KindIdentifier {
		return "", false
	}
	qualifier := t.FirstChild(id)
	if t.Kind(qualifier) == parser.KindReferenceParameterList {
		return t.lookupName(id, t.identifierText(name))
	}

	switch t.Kind(qualifier) {
	case parser.KindThis:
		if t.FirstChild(qualifier) == None {
			return t.lookupField(id, t.identifierText(name))
		}
	}
	if t.identifierText(name) == "length" {
		if q, ok := t.TypeOf(qualifier); ok && q.IsArray() {
			return Int, true
		}
	}
	return "", false
}

// lookupName resolves a simple name used at use by walking outwards through
// the enclosing scopes. Inner scopes are visited first, so locals shadow
// parameters and parameters shadow fields.
func (t *Tree) lookupName(use NodeID, name string) (Type, bool) {
	child := use
	for scope := t.Parent(use); scope != None; child, scope = scope, t.Parent(scope) {
		switch t.Kind(scope) {
		case parser.KindBlock, parser.KindSwitchCase, parser.KindResourceList:
			for s := t.PrevSibling(child); s != None; s = t.PrevSibling(s) {
				switch t.Kind(s) {
				case parser.KindLocalVarDecl:
					if typ, found, ok := t.declaredVariable(s, name); found {
						return typ, ok
					}
				case parser.KindParameter:
					if typ, found, ok := t.declaredParameter(s, name); found {
						return typ, ok
					}
				}
			}
		case parser.KindForStmt:
			if decl := t.FirstChildOfKind(scope, parser.KindLocalVarDecl); decl != None && decl != child {
				if typ, found, ok := t.declaredVariable(decl, name); found {
					return typ, ok
				}
			}
		case parser.KindTryStmt:
			if resources := t.FirstChildOfKind(scope, parser.KindResourceList); resources != None && resources != child {
				for s := t.FirstChild(resources); s != None; s = t.NextSibling(s) {
					if t.Kind(s) == parser.KindLocalVarDecl {
						if typ, found, ok := t.declaredVariable(s, name); found {
							return typ, ok
						}
					}
				}
			}
		case parser.KindEnhancedForStmt, parser.KindCatchClause:
			if param := t.FirstChildOfKind(scope, parser.KindParameter); param != None && param != child {
				if typ, found, ok := t.declaredParameter(param, name); found {
					return typ, ok
				}
			}
		case parser.KindMethodDecl, parser.KindConstructorDecl, parser.KindRecordDecl:
			params := t.FirstChildOfKind(scope, parser.KindParameters)
			for p := t.FirstChild(params); p != None; p = t.NextSibling(p) {
				if t.Kind(p) == parser.KindParameter {
					if typ, found, ok := t.declaredParameter(p, name); found {
						return typ, ok
					}
				}
			}
		case parser.KindLambdaExpr:
			params := t.FirstChildOfKind(scope, parser.KindLambdaParameters)
			for p := t.FirstChild(params); p != None; p = t.NextSibling(p) {
				switch t.Kind(p) {
				case parser.KindIdentifier:
					if t.identifierText(p) == name {
						return "", false
					}
				case parser.KindParameter:
					if typ, found, ok := t.declaredParameter(p, name); found {
						return typ, ok
					}
				}
			}
		case parser.KindIfStmt, parser.KindWhileStmt, parser.KindBinaryExpr, parser.KindTernaryExpr:
			// pattern variables introduced by a preceding instanceof test
			for s := t.PrevSibling(child); s != None; s = t.PrevSibling(s) {
				if typ, found := t.patternVariable(s, name); found {
					return typ, true
				}
			}
		case parser.KindClassBody:
			if typ, found, ok := t.declaredField(scope, name); found {
				return typ, ok
			}
		}
	}
	return "", false
}

func (t *Tree) lookupField(use NodeID, name string) (Type, bool) {
	body := t.Ancestor(use, Is(parser.KindClassBody))
	if body == None {
		return "", false
	}
	typ, _, ok := t.declaredField(body, name)
	return typ, ok
}

func (t *Tree) declaredField(body NodeID, name string) (Type, bool, bool) {
	for m := t.FirstChild(body); m != None; m = t.NextSibling(m) {
		if t.Kind(m) == parser.KindFieldDecl {
			if typ, found, ok := t.declaredVariable(m, name); found {
				return typ, true, ok
			}
		}
	}
	record := t.Parent(body)
	if t.Kind(record) == parser.KindRecordDecl {
		params := t.FirstChildOfKind(record, parser.KindParameters)
		for p := t.FirstChild(params); p != None; p = t.NextSibling(p) {
			if t.Kind(p) == parser.KindParameter {
				if typ, found, ok := t.declaredParameter(p, name); found {
					return typ, true, ok
				}
			}
		}
	}
	return "", false, false
}

// declaredVariable looks for name among the variables of a LocalVarDecl or
// FieldDecl. found reports whether the name is declared there at all; ok
// whether its type is known.
func (t *Tree) declaredVariable(decl NodeID, name string) (typ Type, found, ok bool) {
	typeID := t.FirstChildOfKind(decl, parser.KindType)
	for v := t.FirstChild(decl); v != None; v = t.NextSibling(v) {
		if t.Kind(v) != parser.KindVariable {
			continue
		}
		ident := t.FirstChildOfKind(v, parser.KindIdentifier)
		if t.identifierText(ident) != name {
			continue
		}

		if tok, isToken := t.Token(t.FirstChild(typeID)); isToken && tok.Kind == parser.TokenVar {
			init := t.LastChild(v)
			if !t.IsExpression(init) {
				return "", true, false
			}
			typ, ok := t.TypeOf(init)
			return typ, true, ok && typ != Null
		}

		base, ok := t.typeNode(typeID)
		if !ok {
			return "", true, false
		}
		return base + Type(strings.Repeat("[]", t.dims(v))), true, true
	}
	return "", false, false
}

func (t *Tree) declaredParameter(param NodeID, name string) (typ Type, found, ok bool) {
	ident := t.LastChild(param)
	for t.Kind(ident) == parser.KindToken {
		ident = t.PrevSibling(ident)
	}
	if t.Kind(ident) != parser.KindIdentifier || t.identifierText(ident) != name {
		return "", false, false
	}

	var types []NodeID
	varargs := false
	for c := t.FirstChild(param); c != None; c = t.NextSibling(c) {
		switch t.Kind(c) {
		case parser.KindType:
			types = append(types, c)
		case parser.KindToken:
			if tok, _ := t.Token(c); tok.Kind == parser.TokenEllipsis {
				varargs = true
			}
		}
	}
	if len(types) != 1 {
		// union catch types have no single static type
		return "", true, false
	}
	base, ok := t.typeNode(types[0])
	if !ok || base == "var" {
		return "", true, false
	}
	if varargs {
		base += "[]"
	}
	return base + Type(strings.Repeat("[]", t.dims(param))), true, true
}

// dims counts the "[]" pairs that follow a declarator name.
func (t *Tree) dims(declarator NodeID) int {
	n := 0
	for c := t.FirstChild(declarator); c != None; c = t.NextSibling(c) {
		if tok, ok := t.Token(c); ok && tok.Kind == parser.TokenLBracket && t.Kind(c) == parser.KindToken {
			n++
		}
	}
	return n
}

func (t *Tree) patternVariable(root NodeID, name string) (Type, bool) {
	var typ Type
	found := false
	t.Walk(root, func(id NodeID) bool {
		if found {
			return false
		}
		if t.Kind(id) != parser.KindInstanceofExpr {
			return true
		}
		last := t.LastChild(id)
		if t.Kind(last) == parser.KindIdentifier && t.identifierText(last) == name {
			if tt, ok := t.typeNode(t.PrevSibling(last)); ok {
				typ, found = tt, true
			}
		}
		return true
	})
	return typ, found
}

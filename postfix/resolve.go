package postfix

import (
	"strings"

	"github.com/dhamidi/postfix/java/parser"
	"github.com/dhamidi/postfix/java/syntax"
)

// Outcome records how resolution ended. The NoMatch outcomes name the step
// that did not apply.
type Outcome int

const (
	NoMatchNotIdentifier Outcome = iota
	NoMatchNoReference
	NoMatchNotDangling
	NoMatchNoStatement
	NoMatchPrevNotExpression
	NoMatchNoTrailingError
	NoMatchShape
	NoMatchNoBrokenLiteral
	ResolvedQualifier
	ResolvedBrokenLiteral
)

var outcomeNames = map[Outcome]string{
	NoMatchNotIdentifier:     "cursor is not an identifier",
	NoMatchNoReference:       "no enclosing reference expression",
	NoMatchNotDangling:       "reference is not a bare identifier",
	NoMatchNoStatement:       "no enclosing expression statement",
	NoMatchPrevNotExpression: "previous statement is not an expression statement",
	NoMatchNoTrailingError:   "previous statement has no trailing error",
	NoMatchShape:             "previous statement is not an expression followed by an error",
	NoMatchNoBrokenLiteral:   "no literal ending in a dot",
	ResolvedQualifier:        "qualifier",
	ResolvedBrokenLiteral:    "broken literal",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Resolution is the result of Resolve. Reference and Target are set only
// when OK reports true.
type Resolution struct {
	Outcome   Outcome
	Reference syntax.NodeID
	Target    syntax.NodeID
}

func (r Resolution) OK() bool {
	return r.Outcome == ResolvedQualifier || r.Outcome == ResolvedBrokenLiteral
}

func noMatch(o Outcome) Resolution {
	return Resolution{Outcome: o, Reference: syntax.None, Target: syntax.None}
}

// Resolve finds the expression a postfix template typed at cursor applies
// to. cursor must be the identifier holding the template name.
//
// For expr.name the qualifier is the target. When the parser split a
// numeric literal, as in "x > 0.if", the name is a bare reference in its own
// statement and the target is the literal "0." found at the end of the
// previous statement.
func Resolve(tree *syntax.Tree, cursor syntax.NodeID) Resolution {
	if tree.Kind(cursor) != parser.KindIdentifier {
		return noMatch(NoMatchNotIdentifier)
	}

	ref := tree.Ancestor(cursor, syntax.Is(parser.KindReferenceExpr))
	if ref == syntax.None {
		return noMatch(NoMatchNoReference)
	}

	if q := qualifier(tree, ref); q != syntax.None {
		return Resolution{Outcome: ResolvedQualifier, Reference: ref, Target: q}
	}
	return recoverBrokenLiteral(tree, ref)
}

func qualifier(tree *syntax.Tree, ref syntax.NodeID) syntax.NodeID {
	first := tree.FirstChild(ref)
	if !tree.IsExpression(first) {
		return syntax.None
	}
	return first
}

func recoverBrokenLiteral(tree *syntax.Tree, ref syntax.NodeID) Resolution {
	first := tree.FirstChild(ref)
	if tree.Kind(first) != parser.KindReferenceParameterList || tree.ChildCount(ref) != 2 {
		return noMatch(NoMatchNotDangling)
	}

	stmt := tree.Ancestor(ref, syntax.Is(parser.KindExprStmt))
	if stmt == syntax.None {
		return noMatch(NoMatchNoStatement)
	}

	prev := tree.PrevSiblingOf(stmt, parser.NodeKind.IsStatement)
	if tree.Kind(prev) != parser.KindExprStmt {
		return noMatch(NoMatchPrevNotExpression)
	}

	last := tree.LastChild(prev)
	if tree.Kind(last) != parser.KindError {
		return noMatch(NoMatchNoTrailingError)
	}

	expr := tree.FirstChild(prev)
	if !tree.IsExpression(expr) || tree.PrevSibling(last) != expr {
		return noMatch(NoMatchShape)
	}

	for expr != syntax.None {
		if isBrokenLiteral(tree, expr) {
			return Resolution{Outcome: ResolvedBrokenLiteral, Reference: ref, Target: expr}
		}
		last := tree.LastChild(expr)
		if tree.IsExpression(last) {
			expr = last
		} else {
			expr = tree.PrevSiblingOf(last, parser.NodeKind.IsExpression)
		}
	}
	return noMatch(NoMatchNoBrokenLiteral)
}

// isBrokenLiteral reports whether id is a floating point literal ending in
// a bare dot, such as "0.".
func isBrokenLiteral(tree *syntax.Tree, id syntax.NodeID) bool {
	if tree.Kind(id) != parser.KindLiteral {
		return false
	}
	tok, ok := tree.Token(id)
	return ok && tok.Kind == parser.TokenFloatLiteral && strings.HasSuffix(tok.Literal, ".")
}

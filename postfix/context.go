package postfix

import (
	"github.com/dhamidi/postfix/java/parser"
	"github.com/dhamidi/postfix/java/syntax"
)

// AcceptanceContext describes one completion request: the reference being
// completed, the expression it applies to and whether completion was
// invoked explicitly. It is read-only once built.
type AcceptanceContext struct {
	tree      *syntax.Tree
	reference syntax.NodeID
	target    syntax.NodeID
	force     bool
	recovered bool
}

func newAcceptanceContext(tree *syntax.Tree, res Resolution, force bool) *AcceptanceContext {
	return &AcceptanceContext{
		tree:      tree,
		reference: res.Reference,
		target:    res.Target,
		force:     force,
		recovered: res.Outcome == ResolvedBrokenLiteral,
	}
}

func (c *AcceptanceContext) Tree() *syntax.Tree {
	return c.tree
}

// Reference returns the reference expression holding the template name.
func (c *AcceptanceContext) Reference() syntax.NodeID {
	return c.reference
}

func (c *AcceptanceContext) Target() syntax.NodeID {
	return c.target
}

// Force reports whether completion was invoked explicitly.
func (c *AcceptanceContext) Force() bool {
	return c.force
}

// Recovered reports whether the target is a numeric literal recovered from
// a statement split by the parser.
func (c *AcceptanceContext) Recovered() bool {
	return c.recovered
}

// TemplateName returns the identifier typed after the dot.
func (c *AcceptanceContext) TemplateName() string {
	return c.tree.Text(c.tree.LastChild(c.reference))
}

// ExpressionContext describes expr, which should be the target or one of
// its ancestors.
func (c *AcceptanceContext) ExpressionContext(expr syntax.NodeID) *ExpressionContext {
	e := &ExpressionContext{owner: c, expr: expr}
	e.typ, e.typed = c.tree.TypeOf(expr)
	e.canBeStatement = c.canBeStatement(expr)
	return e
}

// Expressions returns the target followed by each enclosing expression
// that ends where the postfix ends, innermost first.
func (c *AcceptanceContext) Expressions() []*ExpressionContext {
	t := c.tree
	end := t.Span(c.reference).End.Offset
	if c.recovered {
		end = t.Span(c.target).End.Offset
	}

	exprs := []*ExpressionContext{c.ExpressionContext(c.target)}
	for p := t.Parent(c.target); t.IsExpression(p); p = t.Parent(p) {
		if p == c.reference {
			continue
		}
		if t.Span(p).End.Offset != end {
			break
		}
		exprs = append(exprs, c.ExpressionContext(p))
	}
	return exprs
}

// ReplaceSpan returns the range a proposal built from expr replaces.
func (c *AcceptanceContext) ReplaceSpan(expr syntax.NodeID) parser.Span {
	return parser.Span{
		Start: c.tree.Span(expr).Start,
		End:   c.tree.Span(c.reference).End,
	}
}

// contentEnd is where expression text ends. A recovered literal keeps its
// trailing dot in the tree, but the dot belongs to the postfix.
func (c *AcceptanceContext) contentEnd() parser.Position {
	end := c.tree.Span(c.target).End
	if c.recovered {
		end.Offset--
		end.Column--
	}
	return end
}

func (c *AcceptanceContext) canBeStatement(expr syntax.NodeID) bool {
	t := c.tree
	stmt := t.Ancestor(expr, parser.NodeKind.IsStatement)
	if t.Kind(stmt) != parser.KindExprStmt {
		return false
	}
	top := t.FirstChildOfKind(stmt, expressionKinds...)
	if top == expr {
		return true
	}
	return top == c.reference && t.FirstChild(c.reference) == expr
}

var expressionKinds = func() []parser.NodeKind {
	var kinds []parser.NodeKind
	for k := parser.KindAssignExpr; k <= parser.KindSwitchExpr; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}()

// ExpressionContext describes one candidate expression of an acceptance
// context.
type ExpressionContext struct {
	owner          *AcceptanceContext
	expr           syntax.NodeID
	typ            syntax.Type
	typed          bool
	canBeStatement bool
}

func (e *ExpressionContext) Owner() *AcceptanceContext {
	return e.owner
}

func (e *ExpressionContext) Node() syntax.NodeID {
	return e.expr
}

// Type returns the static type of the expression when it is known.
func (e *ExpressionContext) Type() (syntax.Type, bool) {
	return e.typ, e.typed
}

// CanBeStatement reports whether the expression sits directly in an
// expression statement, possibly as the qualifier of the reference.
func (e *ExpressionContext) CanBeStatement() bool {
	return e.canBeStatement
}

// Span returns the range from the start of the expression to the end of the
// target.
func (e *ExpressionContext) Span() parser.Span {
	return parser.Span{
		Start: e.owner.tree.Span(e.expr).Start,
		End:   e.owner.contentEnd(),
	}
}

func (e *ExpressionContext) Text() string {
	return e.owner.tree.TextOf(e.Span())
}

// ReplaceSpan returns the range a proposal for this expression replaces.
func (e *ExpressionContext) ReplaceSpan() parser.Span {
	return e.owner.ReplaceSpan(e.expr)
}

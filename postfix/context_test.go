package postfix

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/postfix/java/syntax"
)

func acceptanceContext(t *testing.T, src string, force bool) *AcceptanceContext {
	t.Helper()
	tree, cursor := parseCursor(t, src)
	res := Resolve(tree, cursor)
	if !res.OK() {
		t.Fatalf("Resolve(%q) = %s\n%s", src, res.Outcome, tree)
	}
	return newAcceptanceContext(tree, res, force)
}

type exprSummary struct {
	Text      string
	Type      syntax.Type
	Statement bool
}

func summarize(exprs []*ExpressionContext) []exprSummary {
	var out []exprSummary
	for _, e := range exprs {
		typ, _ := e.Type()
		out = append(out, exprSummary{Text: e.Text(), Type: typ, Statement: e.CanBeStatement()})
	}
	return out
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want []exprSummary
	}{
		{
			"foo.bar.not|;",
			[]exprSummary{{"foo.bar", "", true}},
		},
		{
			"a + b.not|;",
			[]exprSummary{{"b", "", false}, {"a + b", "", true}},
		},
		{
			"int n = 1; 2 * n.not|;",
			// the product still contains the reference, so its type is unknown
			[]exprSummary{{"n", syntax.Int, false}, {"2 * n", "", true}},
		},
		{
			"x > 0.not|;",
			[]exprSummary{{"0", syntax.Double, false}, {"x > 0", syntax.Boolean, true}},
		},
		{
			"flag = x > 0.not|;",
			[]exprSummary{{"0", syntax.Double, false}, {"x > 0", syntax.Boolean, false}, {"flag = x > 0", "", true}},
		},
		{
			"call(a.not|);",
			[]exprSummary{{"a", "", false}},
		},
		{
			"String s = \"\"; s.length().not|;",
			[]exprSummary{{"s.length()", "", true}},
		},
		{
			"String s = \"\"; return s.not|;",
			[]exprSummary{{"s", syntax.String, false}},
		},
		{
			"a.b(c).not|;",
			[]exprSummary{{"a.b(c)", "", true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ctx := acceptanceContext(t, tt.src, false)
			if diff := cmp.Diff(tt.want, summarize(ctx.Expressions())); diff != "" {
				t.Errorf("Expressions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpressionContextOfTarget(t *testing.T) {
	ctx := acceptanceContext(t, "x > 0.not|;", true)
	if !ctx.Recovered() {
		t.Error("Recovered() = false for a broken literal")
	}
	if !ctx.Force() {
		t.Error("Force() = false, want true")
	}
	if got := ctx.TemplateName(); got != "not" {
		t.Errorf("TemplateName() = %q, want %q", got, "not")
	}

	e := ctx.ExpressionContext(ctx.Target())
	if e.Owner() != ctx || e.Node() != ctx.Target() {
		t.Error("expression context does not point back at its owner and node")
	}
	if typ, ok := e.Type(); !ok || typ != syntax.Double {
		t.Errorf("Type() = %q %v, want double", typ, ok)
	}
	if e.CanBeStatement() {
		t.Error("a literal inside a comparison cannot be a statement")
	}
}

func TestReplaceSpan(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a + b.not|;", []string{"b.not", "a + b.not"}},
		{"x > 0.not|;", []string{"0.not", "x > 0.not"}},
		{"foo();\nx > 0.not|;", []string{"0.not", "x > 0.not"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ctx := acceptanceContext(t, tt.src, false)
			var got []string
			for _, e := range ctx.Expressions() {
				got = append(got, ctx.Tree().TextOf(e.ReplaceSpan()))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("replaced text mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpressionSpanPositions(t *testing.T) {
	ctx := acceptanceContext(t, "foo();\nx > 0.not|;", false)
	span := ctx.ExpressionContext(ctx.Target()).Span()
	if span.Start.Line != 2 || span.Start.Column != 5 {
		t.Errorf("start = %s, want 2:5", span.Start)
	}
	if span.End.Offset != span.Start.Offset+1 || span.End.Column != 6 {
		t.Errorf("end = %s (offset %d), want 2:6 right before the dot", span.End, span.End.Offset)
	}
}

package parser

import (
	"strings"
	"testing"
)

// shape renders the kinds of a tree as Kind(child,child), which keeps
// expectations readable without spelling out spans and literals.
func shape(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	if len(n.Children) == 0 {
		return n.Kind.String()
	}
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		parts[i] = shape(child)
	}
	return n.Kind.String() + "(" + strings.Join(parts, ",") + ")"
}

func collectErrors(n *Node) []*Node {
	var errs []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsError() {
			errs = append(errs, n)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(n)
	return errs
}

func parseStatements(t *testing.T, src string) *Node {
	t.Helper()
	tree := ParseStatements(strings.NewReader(src), WithFile("Test.java")).Finish()
	if tree == nil {
		t.Fatalf("ParseStatements(%q) returned nil", src)
	}
	return tree
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"42", KindLiteral},
		{"x", KindReferenceExpr},
		{"x + y", KindBinaryExpr},
		{"x * y + z", KindBinaryExpr},
		{"-x", KindUnaryExpr},
		{"!x", KindUnaryExpr},
		{"x++", KindPostfixExpr},
		{"a ? b : c", KindTernaryExpr},
		{"x = 5", KindAssignExpr},
		{"x += 5", KindAssignExpr},
		{"(x)", KindParenExpr},
		{"obj.field", KindReferenceExpr},
		{"obj.method()", KindCallExpr},
		{"a.<T>foo()", KindCallExpr},
		{"arr[0]", KindArrayAccess},
		{"new Foo()", KindNewExpr},
		{"new Foo<>() { }", KindNewExpr},
		{"outer.new Inner()", KindNewExpr},
		{"new int[3]", KindNewArrayExpr},
		{"new int[] {1, 2}", KindNewArrayExpr},
		{"(String) o", KindCastExpr},
		{"(int) x", KindCastExpr},
		{"o instanceof String s", KindInstanceofExpr},
		{"x -> x + 1", KindLambdaExpr},
		{"(a, b) -> a", KindLambdaExpr},
		{"(int a) -> { return a; }", KindLambdaExpr},
		{"String::valueOf", KindMethodRef},
		{"int[]::new", KindMethodRef},
		{"int.class", KindClassLiteral},
		{"String[].class", KindClassLiteral},
		{"Foo.class", KindClassLiteral},
		{"this", KindThis},
		{"Outer.this", KindThis},
		{"super", KindSuper},
		{"switch (x) { case 1 -> 2; default -> 3; }", KindSwitchExpr},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := ParseExpression(strings.NewReader(tt.input)).Finish()
			if tree == nil {
				t.Fatal("Finish() returned nil")
			}
			if tree.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v\n%s", tree.Kind, tt.kind, tree)
			}
			if errs := collectErrors(tree); len(errs) > 0 {
				t.Errorf("unexpected errors in %q:\n%s", tt.input, tree)
			}
		})
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a + b * c", "BinaryExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,BinaryExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceExpr(ReferenceParameterList,Identifier)))"},
		{"a * b + c", "BinaryExpr(BinaryExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceExpr(ReferenceParameterList,Identifier)),Token,ReferenceExpr(ReferenceParameterList,Identifier))"},
		{"x > 0", "BinaryExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,Literal)"},
		{"!a.b", "UnaryExpr(Token,ReferenceExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceParameterList,Identifier))"},
		{"a = b = c", "AssignExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,AssignExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceExpr(ReferenceParameterList,Identifier)))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := ParseExpression(strings.NewReader(tt.input)).Finish()
			if got := shape(tree); got != tt.want {
				t.Errorf("shape =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParseReferenceShapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"foo", "ReferenceExpr(ReferenceParameterList,Identifier)"},
		{"a.foo", "ReferenceExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceParameterList,Identifier)"},
		{"a.<T>foo", "ReferenceExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceParameterList(Token,Type(Identifier),Token),Identifier)"},
		{"a.foo()", "CallExpr(ReferenceExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceParameterList,Identifier),Arguments(Token,Token))"},
		{"a.", "ReferenceExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceParameterList,Error)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := ParseExpression(strings.NewReader(tt.input)).Finish()
			if got := shape(tree); got != tt.want {
				t.Errorf("shape =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParseReferenceParameterListIsEmpty(t *testing.T) {
	tree := ParseExpression(strings.NewReader("list.size")).Finish()
	params := tree.Children[2]
	if params.Kind != KindReferenceParameterList {
		t.Fatalf("child 2 = %v, want ReferenceParameterList", params.Kind)
	}
	if !params.Span.Empty() {
		t.Errorf("parameter list span = %d-%d, want empty", params.Span.Start.Offset, params.Span.End.Offset)
	}
	if params.Span.Start.Offset != 5 {
		t.Errorf("parameter list offset = %d, want 5", params.Span.Start.Offset)
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"foo.bar;", "Block(ExprStmt(ReferenceExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceParameterList,Identifier),Token))"},
		{"int x = 1;", "Block(LocalVarDecl(Type(Token),Variable(Identifier,Token,Literal),Token))"},
		{"var x = y;", "Block(LocalVarDecl(Type(Token),Variable(Identifier,Token,ReferenceExpr(ReferenceParameterList,Identifier)),Token))"},
		{"List<String> xs = new ArrayList<>();", "Block(LocalVarDecl(Type(Identifier,TypeArguments(Token,Type(Identifier),Token)),Variable(Identifier,Token,NewExpr(Token,Type(Identifier,TypeArguments(Token,Token)),Arguments(Token,Token))),Token))"},
		{"Map<String, List<Integer>> m;", "Block(LocalVarDecl(Type(Identifier,TypeArguments(Token,Type(Identifier),Token,Type(Identifier,TypeArguments(Token,Type(Identifier),Token)),Token)),Variable(Identifier),Token))"},
		{"if (a) b(); else c();", "Block(IfStmt(Token,Token,ReferenceExpr(ReferenceParameterList,Identifier),Token,ExprStmt(CallExpr(ReferenceExpr(ReferenceParameterList,Identifier),Arguments(Token,Token)),Token),Token,ExprStmt(CallExpr(ReferenceExpr(ReferenceParameterList,Identifier),Arguments(Token,Token)),Token)))"},
		{"return;", "Block(ReturnStmt(Token,Token))"},
		{"while (x) {}", "Block(WhileStmt(Token,Token,ReferenceExpr(ReferenceParameterList,Identifier),Token,Block(Token,Token)))"},
		{"for (String s : names) {}", "Block(EnhancedForStmt(Token,Token,Parameter(Type(Identifier),Identifier),Token,ReferenceExpr(ReferenceParameterList,Identifier),Token,Block(Token,Token)))"},
		{"for (int i = 0; i < n; i++) {}", "Block(ForStmt(Token,Token,LocalVarDecl(Type(Token),Variable(Identifier,Token,Literal)),Token,BinaryExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceExpr(ReferenceParameterList,Identifier)),Token,PostfixExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token),Token,Block(Token,Token)))"},
		{"label: break label;", "Block(LabeledStmt(Identifier,Token,BreakStmt(Token,Identifier,Token)))"},
		{"yield x;", "Block(YieldStmt(Token,ReferenceExpr(ReferenceParameterList,Identifier),Token))"},
		{"this.count = c;", "Block(ExprStmt(AssignExpr(ReferenceExpr(This,Token,ReferenceParameterList,Identifier),Token,ReferenceExpr(ReferenceParameterList,Identifier)),Token))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parseStatements(t, tt.input)
			if got := shape(tree); got != tt.want {
				t.Errorf("shape =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParseMissingSemicolon(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			"x > 0.bar",
			"Block(" +
				"ExprStmt(BinaryExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,Literal),Error)," +
				"ExprStmt(ReferenceExpr(ReferenceParameterList,Identifier),Error))",
		},
		{
			"foo.bar",
			"Block(ExprStmt(ReferenceExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceParameterList,Identifier),Error))",
		},
		{
			"a.b }",
			"Block(ExprStmt(ReferenceExpr(ReferenceExpr(ReferenceParameterList,Identifier),Token,ReferenceParameterList,Identifier),Error),Error(Token))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parseStatements(t, tt.input)
			if got := shape(tree); got != tt.want {
				t.Errorf("shape =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParseMissingSemicolonErrorPlacement(t *testing.T) {
	tree := parseStatements(t, "x > 0.\nfoo")
	stmt := tree.Children[0]
	last := stmt.Children[len(stmt.Children)-1]
	if !last.IsError() {
		t.Fatalf("last child = %v, want Error", last.Kind)
	}
	if !last.Span.Empty() {
		t.Errorf("error span is not empty")
	}
	if last.Span.Start.Offset != 6 {
		t.Errorf("error offset = %d, want 6 (right after \"0.\")", last.Span.Start.Offset)
	}
	if stmt.Span.End.Offset != 6 {
		t.Errorf("statement end = %d, want 6", stmt.Span.End.Offset)
	}
}

func TestParseCompilationUnit(t *testing.T) {
	src := `package com.example;

import java.util.List;
import static java.util.Collections.*;

@Deprecated(since = "1")
public class Main<T> extends Base implements Runnable {
    private int count = 0;
    private final List<String> names = List.of("a", "b");

    public Main(int c) { this.count = c; }

    @Override
    public void run() {
        for (String s : names) {
            System.out.println(s);
        }
        try (var in = open()) {
            in.read();
        } catch (IOException | RuntimeException e) {
            throw new IllegalStateException(e);
        } finally {
            count--;
        }
    }

    static <R> R identity(R r) throws Exception { return r; }

    enum Color { RED, GREEN; }

    record Point(int x, int y) {
        Point {
            assert x >= 0 : "negative";
        }
    }

    interface Shape { double area(); }
}
`
	tree := ParseCompilationUnit(strings.NewReader(src), WithFile("Main.java")).Finish()
	if tree == nil {
		t.Fatal("Finish() returned nil")
	}
	if errs := collectErrors(tree); len(errs) > 0 {
		t.Fatalf("unexpected errors:\n%s", tree)
	}

	var kinds []NodeKind
	for _, child := range tree.Children {
		kinds = append(kinds, child.Kind)
	}
	want := []NodeKind{KindPackageDecl, KindImportDecl, KindImportDecl, KindClassDecl}
	if len(kinds) != len(want) {
		t.Fatalf("top level kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("top level %d = %v, want %v", i, kinds[i], want[i])
		}
	}

	body := tree.Children[3].FirstChildOfKind(KindClassBody)
	if body == nil {
		t.Fatal("class has no body")
	}
	var members []NodeKind
	for _, child := range body.Children {
		if child.Kind != KindToken {
			members = append(members, child.Kind)
		}
	}
	wantMembers := []NodeKind{
		KindFieldDecl, KindFieldDecl, KindConstructorDecl, KindMethodDecl,
		KindMethodDecl, KindEnumDecl, KindRecordDecl, KindInterfaceDecl,
	}
	if len(members) != len(wantMembers) {
		t.Fatalf("members = %v, want %v", members, wantMembers)
	}
	for i := range wantMembers {
		if members[i] != wantMembers[i] {
			t.Errorf("member %d = %v, want %v", i, members[i], wantMembers[i])
		}
	}
}

func TestParseRecoversInsideMethod(t *testing.T) {
	src := "class A {\n  void m() {\n    foo.bar\n  }\n  void n() {}\n}\n"
	tree := ParseCompilationUnit(strings.NewReader(src)).Finish()

	body := tree.Children[0].FirstChildOfKind(KindClassBody)
	methods := body.ChildrenOfKind(KindMethodDecl)
	if len(methods) != 2 {
		t.Fatalf("methods = %d, want 2\n%s", len(methods), tree)
	}

	block := methods[0].FirstChildOfKind(KindBlock)
	stmts := block.ChildrenOfKind(KindExprStmt)
	if len(stmts) != 1 {
		t.Fatalf("statements = %d, want 1\n%s", len(stmts), block)
	}
	last := stmts[0].Children[len(stmts[0].Children)-1]
	if !last.IsError() || !last.Span.Empty() {
		t.Errorf("statement should end in an empty Error node:\n%s", stmts[0])
	}
	if errs := collectErrors(tree); len(errs) != 1 {
		t.Errorf("errors = %d, want 1\n%s", len(errs), tree)
	}
}

func TestParseSwitch(t *testing.T) {
	src := `switch (o) {
    case Integer i when i > 0 -> System.out.println(i);
    case String s -> {}
    case null, default -> throw new IllegalStateException();
}
switch (k) {
    case 1:
    case 2:
        x++;
        break;
    default:
        y();
}`
	tree := parseStatements(t, src)
	if errs := collectErrors(tree); len(errs) > 0 {
		t.Fatalf("unexpected errors:\n%s", tree)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("statements = %d, want 2", len(tree.Children))
	}
	if got := len(tree.Children[0].ChildrenOfKind(KindSwitchCase)); got != 3 {
		t.Errorf("arrow cases = %d, want 3", got)
	}
	if got := len(tree.Children[1].ChildrenOfKind(KindSwitchCase)); got != 3 {
		t.Errorf("colon cases = %d, want 3", got)
	}
}

func TestParseNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"class {",
		"if (",
		"foo(",
		"a.b.",
		"}",
		")",
		"x = ;",
		"new",
		"<<>>",
		"@",
		"for (;;",
		"switch (x) { case",
		"int[] a = {1, 2,",
		"List<List<String>",
		"return",
		"0.",
		"try { } catch (",
		"\"unterminated",
		"class A { void m( { } }",
		"class A extends { int }",
		"enum E { A(, B }",
		"x -> ",
		"(a, b",
		"foo.<",
	}

	entries := map[string]func(string) *Parser{
		"compilation unit": func(s string) *Parser { return ParseCompilationUnit(strings.NewReader(s)) },
		"statements":       func(s string) *Parser { return ParseStatements(strings.NewReader(s)) },
		"expression":       func(s string) *Parser { return ParseExpression(strings.NewReader(s)) },
	}

	for name, entry := range entries {
		for _, input := range inputs {
			t.Run(name+"/"+input, func(t *testing.T) {
				if tree := entry(input).Finish(); tree == nil {
					t.Errorf("Finish() returned nil for %q", input)
				}
			})
		}
	}
}

func TestPositionTracking(t *testing.T) {
	tree := ParseCompilationUnit(strings.NewReader("class A {\n  int x;\n}"), WithFile("A.java")).Finish()
	class := tree.Children[0]
	if class.Span.Start.Line != 1 || class.Span.End.Line != 3 {
		t.Errorf("class span = %s-%s, want lines 1-3", class.Span.Start, class.Span.End)
	}
	field := class.FirstChildOfKind(KindClassBody).FirstChildOfKind(KindFieldDecl)
	if field.Span.Start.String() != "2:3" {
		t.Errorf("field start = %s, want 2:3", field.Span.Start)
	}
	if field.Span.Start.File != "A.java" {
		t.Errorf("field file = %q, want %q", field.Span.Start.File, "A.java")
	}
}

func TestParserSource(t *testing.T) {
	p := ParseStatements(strings.NewReader("a();"))
	if p.Source() != nil {
		t.Error("Source() before Finish should be nil")
	}
	p.Finish()
	if got := string(p.Source()); got != "a();" {
		t.Errorf("Source() = %q, want %q", got, "a();")
	}
}

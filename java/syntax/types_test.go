package syntax

import (
	"strings"
	"testing"
)

const probeMarker = "/*@*/"

// probe parses src and returns the outermost expression that starts right
// after the probe marker.
func probe(t *testing.T, src string) (*Tree, NodeID) {
	t.Helper()
	at := strings.Index(src, probeMarker)
	if at < 0 {
		t.Fatalf("no probe marker in %q", src)
	}
	at += len(probeMarker)

	tree := Parse([]byte(src))
	found := None
	tree.Walk(tree.Root(), func(id NodeID) bool {
		if found != None {
			return false
		}
		if tree.IsExpression(id) && tree.Span(id).Start.Offset == at {
			found = id
			return false
		}
		return true
	})
	if found == None {
		t.Fatalf("no expression at offset %d in:\n%s", at, tree)
	}
	return tree, found
}

func inMethod(body string) string {
	return "class Demo {\n" +
		"  String name;\n" +
		"  int[] counts;\n" +
		"  java.util.List<String> items;\n" +
		"  void run(int n, String... rest) {\n" +
		"    " + body + "\n" +
		"  }\n" +
		"}\n"
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Type
	}{
		{"int literal", "/*@*/1;", Int},
		{"long literal", "/*@*/1L;", Long},
		{"float literal", "/*@*/1.5f;", Float},
		{"double literal", "/*@*/1.5;", Double},
		{"trailing dot", "/*@*/2.;", Double},
		{"char literal", "/*@*/'c';", Char},
		{"string literal", `/*@*/"s";`, String},
		{"boolean literal", "/*@*/true;", Boolean},
		{"null literal", "/*@*/null;", Null},
		{"parenthesized", "/*@*/(1 + 2L);", Long},
		{"string concatenation", `/*@*/1 + "a";`, String},
		{"relational", "/*@*/1 < 2;", Boolean},
		{"logical", "/*@*/true && false;", Boolean},
		{"not", "/*@*/!flag;", Boolean},
		{"negated char", "/*@*/-'c';", Int},
		{"bitwise booleans", "/*@*/true & false;", Boolean},
		{"shift", "/*@*/1L << 2;", Long},
		{"division", "/*@*/1 / 2.0f;", Float},
		{"cast", "/*@*/(String) o;", String},
		{"new", "/*@*/new StringBuilder();", "StringBuilder"},
		{"new generic", "/*@*/new java.util.ArrayList<String>();", "java.util.ArrayList<String>"},
		{"new array", "/*@*/new int[3][];", "int[][]"},
		{"instanceof", "/*@*/x instanceof String;", Boolean},
		{"ternary promotion", "/*@*/true ? 1 : 2L;", Long},
		{"ternary null branch", `/*@*/true ? null : "s";`, String},
		{"this", "/*@*/this;", "Demo"},
		{"class literal", "/*@*/Demo.class;", Class},
		{"local", "long total = 0; /*@*/total;", Long},
		{"var local", "var list = new java.util.ArrayList<String>(); /*@*/list;", "java.util.ArrayList<String>"},
		{"declarator dims", "double ratio = 1.5, scale[] = {}; /*@*/scale;", "double[]"},
		{"parameter", "/*@*/n;", Int},
		{"varargs parameter", "/*@*/rest;", "String[]"},
		{"field", "/*@*/name;", String},
		{"local shadows field", "int name = 1; /*@*/name;", Int},
		{"this field", "/*@*/this.counts;", "int[]"},
		{"array length", "/*@*/counts.length;", Int},
		{"array access", "/*@*/counts[0];", Int},
		{"generic field", "/*@*/items;", "java.util.List<String>"},
		{"compound assignment", "int i = 0; /*@*/i += 2;", Int},
		{"postfix increment", "/*@*/n++;", Int},
		{"nested block", "String s = \"\"; { /*@*/s; }", String},
		{"enhanced for", "for (char c : name.toCharArray()) { /*@*/c; }", Char},
		{"for init", "for (int i = 0; i < 3; i++) { /*@*/i; }", Int},
		{"catch parameter", "try { } catch (java.io.IOException e) { /*@*/e; }", "java.io.IOException"},
		{"resource", `try (var in = new java.io.StringReader("")) { /*@*/in; }`, "java.io.StringReader"},
		{"typed lambda parameter", "java.util.function.Consumer<String> c = (String s) -> /*@*/s;", String},
		{"instanceof pattern", "Object o = null; if (o instanceof String str) { /*@*/str; }", String},
		{"switch pattern", "Object o = null; switch (o) { case Integer i -> { /*@*/i; } default -> { } }", "Integer"},
		{"wildcard type", "java.util.List<? extends Number> nums = null; /*@*/nums;", "java.util.List<? extends Number>"},
		{"map type", "java.util.Map<String, Integer> m = null; /*@*/m;", "java.util.Map<String, Integer>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, id := probe(t, inMethod(tt.body))
			got, ok := tree.TypeOf(id)
			if !ok {
				t.Fatalf("TypeOf(%q) unknown, want %q", tree.Text(id), tt.want)
			}
			if got != tt.want {
				t.Errorf("TypeOf(%q) = %q, want %q", tree.Text(id), got, tt.want)
			}
		})
	}
}

func TestTypeOfUnknown(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"undeclared", "/*@*/undeclared;"},
		{"call", "/*@*/foo();"},
		{"declared later", "/*@*/later; int later = 1;"},
		{"untyped lambda parameter shadows", `String s = ""; java.util.function.Consumer<Object> c = s -> /*@*/s;`},
		{"union catch", "try { } catch (IllegalStateException | IllegalArgumentException e) { /*@*/e; }"},
		{"var without type", "var v = foo(); /*@*/v;"},
		{"field access on unknown", "/*@*/name.length;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, id := probe(t, inMethod(tt.body))
			if got, ok := tree.TypeOf(id); ok {
				t.Errorf("TypeOf(%q) = %q, want unknown", tree.Text(id), got)
			}
		})
	}
}

func TestTypeOfRecordComponent(t *testing.T) {
	src := "record Point(int x, int y) {\n" +
		"  int sum() { return /*@*/x + y; }\n" +
		"}\n"
	tree, id := probe(t, src)
	if got, ok := tree.TypeOf(id); !ok || got != Int {
		t.Errorf("TypeOf(%q) = %q %v, want int", tree.Text(id), got, ok)
	}
}

func TestTypeHelpers(t *testing.T) {
	tests := []struct {
		typ       Type
		primitive bool
		numeric   bool
		boolean   bool
		array     bool
	}{
		{Int, true, true, false, false},
		{Boolean, true, false, true, false},
		{"Boolean", false, false, true, false},
		{String, false, false, false, false},
		{"int[]", false, false, false, true},
		{Null, false, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.typ.IsPrimitive(); got != tt.primitive {
			t.Errorf("%s.IsPrimitive() = %v, want %v", tt.typ, got, tt.primitive)
		}
		if got := tt.typ.IsNumeric(); got != tt.numeric {
			t.Errorf("%s.IsNumeric() = %v, want %v", tt.typ, got, tt.numeric)
		}
		if got := tt.typ.IsBoolean(); got != tt.boolean {
			t.Errorf("%s.IsBoolean() = %v, want %v", tt.typ, got, tt.boolean)
		}
		if got := tt.typ.IsArray(); got != tt.array {
			t.Errorf("%s.IsArray() = %v, want %v", tt.typ, got, tt.array)
		}
	}

	if got := Type("String[][]").Elem(); got != "String[]" {
		t.Errorf("Elem() = %q, want %q", got, "String[]")
	}
	if got := Type("java.util.Map<K, List<V>>[]").Erasure(); got != "java.util.Map[]" {
		t.Errorf("Erasure() = %q, want %q", got, "java.util.Map[]")
	}
}

func TestTypeMatches(t *testing.T) {
	tests := []struct {
		typ  Type
		name string
		want bool
	}{
		{"String", "String", true},
		{"java.lang.String", "String", true},
		{"java.util.List<String>", "List", true},
		{"java.util.List<String>", "java.util.List", true},
		{"List<String>", "List<String>", true},
		{"List<String>", "List<Integer>", false},
		{"MyString", "String", false},
		{"int", "Integer", false},
	}
	for _, tt := range tests {
		if got := tt.typ.Matches(tt.name); got != tt.want {
			t.Errorf("Type(%q).Matches(%q) = %v, want %v", tt.typ, tt.name, got, tt.want)
		}
	}
}

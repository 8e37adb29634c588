package postfix

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// undescribed implements TemplateProvider without metadata.
type undescribed struct{}

func (undescribed) CreateItems(ctx *AcceptanceContext, out *Collector) error {
	out.Add(Proposal{Label: "never"})
	return nil
}

func labels(name string, items ...string) TemplateProvider {
	return Func(Metadata{Name: name}, func(ctx *AcceptanceContext, out *Collector) error {
		for _, item := range items {
			out.Add(Proposal{Label: item})
		}
		return nil
	})
}

func proposalLabels(proposals []Proposal) []string {
	var out []string
	for _, p := range proposals {
		out = append(out, p.Label)
	}
	return out
}

func registrationNames(m *Manager) []string {
	var out []string
	for _, r := range m.Registrations() {
		out = append(out, r.Metadata.Name)
	}
	return out
}

func TestNewManagerFiltersProviders(t *testing.T) {
	m := NewManager(
		undescribed{},
		labels("b"),
		labels("not valid"),
		labels(""),
		labels("c"),
		labels("if"),
	)
	want := []string{"b", "c", "if"}
	if diff := cmp.Diff(want, registrationNames(m)); diff != "" {
		t.Errorf("registrations mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistrationsIsACopy(t *testing.T) {
	m := NewManager(labels("b"), labels("c"))
	regs := m.Registrations()
	regs[0].Metadata.Name = "changed"
	if got := m.Registrations()[0].Metadata.Name; got != "b" {
		t.Errorf("registration name = %q after modifying the copy, want %q", got, "b")
	}
}

func TestAvailableTemplatesOrder(t *testing.T) {
	m := NewManager(labels("b", "b1"), labels("c", "c1", "c2"))
	tree, cursor := parseCursor(t, "foo.bar.not|;")

	got := m.AvailableTemplates(tree, cursor, false)
	if diff := cmp.Diff([]string{"b1", "c1", "c2"}, proposalLabels(got)); diff != "" {
		t.Errorf("proposal order mismatch (-want +got):\n%s", diff)
	}
	for _, p := range got {
		if want := p.Label[:1]; p.Provider != want {
			t.Errorf("%s.Provider = %q, want %q", p.Label, p.Provider, want)
		}
	}
}

func TestAvailableTemplatesEmpty(t *testing.T) {
	m := NewManager(labels("b", "b1"))
	tests := []string{
		"x = 1|;",
		"int foo|;",
		"foo();\nnot|;",
		"int x = 0;\nnot|;",
	}
	for _, src := range tests {
		tree, cursor := parseCursor(t, src)
		got := m.AvailableTemplates(tree, cursor, true)
		if got == nil {
			t.Errorf("AvailableTemplates(%q) = nil, want empty slice", src)
		}
		if len(got) != 0 {
			t.Errorf("AvailableTemplates(%q) = %v, want none", src, proposalLabels(got))
		}
	}
}

func TestAvailableTemplatesIdempotent(t *testing.T) {
	m := NewManager(labels("b", "b1", "b2"), labels("c", "c1"))
	for _, src := range []string{"a + b.not|;", "x > 0.not|;"} {
		tree, cursor := parseCursor(t, src)
		first := m.AvailableTemplates(tree, cursor, false)
		second := m.AvailableTemplates(tree, cursor, false)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%q: second call differs (-first +second):\n%s", src, diff)
		}
	}
}

func TestProviderIsolation(t *testing.T) {
	failing := Func(Metadata{Name: "failing"}, func(ctx *AcceptanceContext, out *Collector) error {
		out.Add(Proposal{Label: "partial"})
		return errors.New("boom")
	})
	panicking := Func(Metadata{Name: "panicking"}, func(ctx *AcceptanceContext, out *Collector) error {
		out.Add(Proposal{Label: "partial"})
		panic("boom")
	})
	m := NewManager(failing, labels("a", "a1"), panicking, labels("b", "b1"))

	tree, cursor := parseCursor(t, "x > 0.not|;")
	got := m.AvailableTemplates(tree, cursor, false)
	if diff := cmp.Diff([]string{"a1", "b1"}, proposalLabels(got)); diff != "" {
		t.Errorf("proposals mismatch (-want +got):\n%s", diff)
	}
}

func TestProvidersSeeContext(t *testing.T) {
	var seen *AcceptanceContext
	spy := Func(Metadata{Name: "spy"}, func(ctx *AcceptanceContext, out *Collector) error {
		seen = ctx
		out.Add(Proposal{Label: "spy"})
		return nil
	})
	m := NewManager(spy)

	tree, cursor := parseCursor(t, "x > 0.not|;")
	got := m.AvailableTemplates(tree, cursor, true)
	if seen == nil {
		t.Fatal("provider was not called")
	}
	if !seen.Force() || !seen.Recovered() {
		t.Errorf("Force() = %v, Recovered() = %v, want both true", seen.Force(), seen.Recovered())
	}
	if got := tree.Text(seen.Target()); got != "0." {
		t.Errorf("target = %q, want %q", got, "0.")
	}

	if len(got) != 1 {
		t.Fatalf("got %d proposals, want 1", len(got))
	}
	if diff := cmp.Diff(seen.ReplaceSpan(seen.Target()), got[0].Replace); diff != "" {
		t.Errorf("default Replace mismatch (-want +got):\n%s", diff)
	}
}

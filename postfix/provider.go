package postfix

import (
	"github.com/dhamidi/postfix/java/parser"
)

// Proposal is a single completion offered for a postfix context.
type Proposal struct {
	Label         string
	Detail        string
	Documentation string
	// Snippet is the replacement text in LSP snippet syntax.
	Snippet string
	// Replace is the source range the snippet replaces: the chosen
	// expression, the dot and the typed template name.
	Replace  parser.Span
	Provider string
}

// TemplateProvider contributes proposals for an acceptance context. It must
// treat the tree as read-only and only append to out.
type TemplateProvider interface {
	CreateItems(ctx *AcceptanceContext, out *Collector) error
}

// Metadata identifies a provider. Providers without well-formed metadata
// are never registered.
type Metadata struct {
	Name        string
	Description string
	Example     string
}

// Valid reports whether Name can be typed after a dot: a Java identifier
// or keyword.
func (m Metadata) Valid() bool {
	return parser.IsWord(m.Name)
}

// Describer is implemented by providers that carry metadata.
type Describer interface {
	Metadata() Metadata
}

type Registration struct {
	Provider TemplateProvider
	Metadata Metadata
}

// Collector receives the proposals of one provider.
type Collector struct {
	ctx      *AcceptanceContext
	provider string
	items    []Proposal
}

// Add appends p. An empty Replace defaults to the range covering the target
// expression and the reference, and Provider is set to the registration
// name.
func (c *Collector) Add(p Proposal) {
	if p.Replace == (parser.Span{}) && c.ctx != nil {
		p.Replace = c.ctx.ReplaceSpan(c.ctx.Target())
	}
	p.Provider = c.provider
	c.items = append(c.items, p)
}

func (c *Collector) Len() int {
	return len(c.items)
}

// Func adapts a function and its metadata to a TemplateProvider.
func Func(meta Metadata, fn func(*AcceptanceContext, *Collector) error) TemplateProvider {
	return funcProvider{meta: meta, fn: fn}
}

type funcProvider struct {
	meta Metadata
	fn   func(*AcceptanceContext, *Collector) error
}

func (f funcProvider) Metadata() Metadata {
	return f.meta
}

func (f funcProvider) CreateItems(ctx *AcceptanceContext, out *Collector) error {
	return f.fn(ctx, out)
}

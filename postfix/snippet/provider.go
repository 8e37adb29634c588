package snippet

import (
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/postfix/java/parser"
	"github.com/dhamidi/postfix/java/syntax"
	"github.com/dhamidi/postfix/postfix"
)

var log = commonlog.GetLogger("postfix.snippet")

const (
	exprPlaceholder = "$expr"
	typePlaceholder = "$type"
)

// Provider offers a single template.
type Provider struct {
	tmpl Template
}

func New(t Template) *Provider {
	return &Provider{tmpl: t}
}

// Providers builds one provider per template, in config order.
func Providers(cfg *Config) []postfix.TemplateProvider {
	providers := make([]postfix.TemplateProvider, 0, len(cfg.Templates))
	for _, t := range cfg.Templates {
		providers = append(providers, New(t))
	}
	return providers
}

func (p *Provider) Template() Template {
	return p.tmpl
}

func (p *Provider) Metadata() postfix.Metadata {
	return postfix.Metadata{
		Name:        p.tmpl.Name,
		Description: p.tmpl.Description,
		Example:     p.tmpl.Example,
	}
}

// CreateItems adds one proposal for the first eligible expression, or none.
func (p *Provider) CreateItems(ctx *postfix.AcceptanceContext, out *postfix.Collector) error {
	exprs := ctx.Expressions()
	if p.tmpl.Outermost {
		for i, j := 0, len(exprs)-1; i < j; i, j = i+1, j-1 {
			exprs[i], exprs[j] = exprs[j], exprs[i]
		}
	}

	for _, e := range exprs {
		if p.tmpl.Statement && !e.CanBeStatement() {
			continue
		}
		if !p.accepts(e, ctx.Force()) {
			continue
		}
		out.Add(p.proposal(e))
		return nil
	}
	log.Debugf("%s: no eligible expression", p.tmpl.Name)
	return nil
}

func (p *Provider) accepts(e *postfix.ExpressionContext, force bool) bool {
	if len(p.tmpl.Types) == 0 {
		return true
	}
	typ, ok := e.Type()
	if !ok {
		return force
	}
	for _, want := range p.tmpl.Types {
		if typeMatches(typ, want) {
			return true
		}
	}
	return false
}

var boxedNumbers = []string{"Byte", "Short", "Character", "Integer", "Long", "Float", "Double"}

// typeMatches checks typ against one entry of a template's types. Besides
// type names it understands the classes boolean, number, array and object.
func typeMatches(typ syntax.Type, want string) bool {
	switch want {
	case "boolean":
		return typ.IsBoolean()
	case "number":
		if typ.IsNumeric() {
			return true
		}
		for _, boxed := range boxedNumbers {
			if typ.Matches(boxed) {
				return true
			}
		}
		return false
	case "array":
		return typ.IsArray()
	case "object":
		return !typ.IsPrimitive() && typ != syntax.Null
	}
	return typ.Matches(want)
}

func (p *Provider) proposal(e *postfix.ExpressionContext) postfix.Proposal {
	return postfix.Proposal{
		Label:         p.tmpl.Name,
		Detail:        p.tmpl.Description,
		Documentation: p.tmpl.Example,
		Snippet:       p.render(e),
		Replace:       e.ReplaceSpan(),
	}
}

func (p *Provider) render(e *postfix.ExpressionContext) string {
	text := e.Text()
	if p.tmpl.Parenthesize && !isPrimary(e.Owner().Tree().Kind(e.Node())) {
		text = "(" + text + ")"
	}

	typ, ok := e.Type()
	if !ok || typ == syntax.Null {
		typ = "var"
	}

	return strings.NewReplacer(
		exprPlaceholder, escape(text),
		typePlaceholder, escape(string(typ)),
	).Replace(p.tmpl.Body)
}

func isPrimary(kind parser.NodeKind) bool {
	switch kind {
	case parser.KindReferenceExpr, parser.KindCallExpr, parser.KindLiteral,
		parser.KindParenExpr, parser.KindThis, parser.KindArrayAccess,
		parser.KindNewExpr, parser.KindClassLiteral, parser.KindMethodRef:
		return true
	}
	return false
}

var snippetEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)

// escape quotes text for literal use inside an LSP snippet.
func escape(text string) string {
	return snippetEscaper.Replace(text)
}

// NewManager registers every template of cfg.
func NewManager(cfg *Config) *postfix.Manager {
	return postfix.NewManager(Providers(cfg)...)
}

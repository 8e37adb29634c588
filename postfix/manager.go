// Package postfix resolves postfix completion contexts such as "expr.if" in
// Java source that is being edited and collects proposals from a fixed set
// of template providers.
package postfix

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/postfix/java/syntax"
)

var log = commonlog.GetLogger("postfix")

// Manager holds the registered template providers. It is immutable once
// built and safe for concurrent use.
type Manager struct {
	registrations []Registration
}

// NewManager registers providers in order. Providers that do not implement
// Describer, or whose metadata is not valid, are skipped.
func NewManager(providers ...TemplateProvider) *Manager {
	m := &Manager{}
	for _, p := range providers {
		d, ok := p.(Describer)
		if !ok {
			log.Debugf("skipping provider %T: no metadata", p)
			continue
		}
		meta := d.Metadata()
		if !meta.Valid() {
			log.Debugf("skipping provider %T: invalid name %q", p, meta.Name)
			continue
		}
		m.registrations = append(m.registrations, Registration{Provider: p, Metadata: meta})
	}
	return m
}

// Registrations returns a copy of the registered providers.
func (m *Manager) Registrations() []Registration {
	return append([]Registration(nil), m.registrations...)
}

// AvailableTemplates returns the proposals for the identifier at cursor. The
// result is empty, never nil, when postfix completion does not apply.
func (m *Manager) AvailableTemplates(tree *syntax.Tree, cursor syntax.NodeID, force bool) []Proposal {
	res := Resolve(tree, cursor)
	if !res.OK() {
		log.Debugf("no postfix context: %s", res.Outcome)
		return []Proposal{}
	}
	return m.collect(tree, res, force)
}

func (m *Manager) collect(tree *syntax.Tree, res Resolution, force bool) []Proposal {
	ctx := newAcceptanceContext(tree, res, force)
	proposals := []Proposal{}
	for _, r := range m.registrations {
		items, err := r.createItems(ctx)
		if err != nil {
			log.Errorf("template provider %s: %s", r.Metadata.Name, err)
			continue
		}
		proposals = append(proposals, items...)
	}
	return proposals
}

// createItems runs one provider. Its items are dropped when it fails or
// panics.
func (r Registration) createItems(ctx *AcceptanceContext) (items []Proposal, err error) {
	defer func() {
		if p := recover(); p != nil {
			items, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()

	out := &Collector{ctx: ctx, provider: r.Metadata.Name}
	if err := r.Provider.CreateItems(ctx, out); err != nil {
		return nil, err
	}
	return out.items, nil
}

// Package syntax stores a parsed Java syntax tree in an arena. Nodes are
// addressed by NodeID and all relations (parent, children, siblings) are
// index lookups, so a Tree can be shared freely between readers once built.
package syntax

import (
	"bytes"

	"github.com/dhamidi/postfix/java/parser"
)

// NodeID addresses a node inside a Tree.
type NodeID int32

// None is the absent node.
const None NodeID = -1

// NoKind is reported for None.
const NoKind parser.NodeKind = -1

type node struct {
	kind   parser.NodeKind
	span   parser.Span
	token  *parser.Token
	err    *parser.Error
	parent NodeID
	first  NodeID
	last   NodeID
	prev   NodeID
	next   NodeID
}

type Tree struct {
	src   []byte
	nodes []node
	root  NodeID
}

// Build flattens a parser tree into an arena. Nodes are stored in preorder,
// so leaves appear in source order.
func Build(src []byte, root *parser.Node) *Tree {
	t := &Tree{src: src, root: None}
	if root != nil {
		t.root = t.add(root, None)
	}
	return t
}

func (t *Tree) add(n *parser.Node, parent NodeID) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		kind:   n.Kind,
		span:   n.Span,
		token:  n.Token,
		err:    n.Error,
		parent: parent,
		first:  None,
		last:   None,
		prev:   None,
		next:   None,
	})

	prev := None
	for _, child := range n.Children {
		cid := t.add(child, id)
		t.nodes[cid].prev = prev
		if prev == None {
			t.nodes[id].first = cid
		} else {
			t.nodes[prev].next = cid
		}
		prev = cid
	}
	t.nodes[id].last = prev
	return id
}

// Parse parses a compilation unit.
func Parse(src []byte, opts ...parser.Option) *Tree {
	return Build(src, parser.ParseCompilationUnit(bytes.NewReader(src), opts...).Finish())
}

// ParseStatements parses a statement sequence without surrounding braces.
func ParseStatements(src []byte, opts ...parser.Option) *Tree {
	return Build(src, parser.ParseStatements(bytes.NewReader(src), opts...).Finish())
}

func (t *Tree) Root() NodeID {
	return t.root
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Source() []byte {
	return t.src
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) Kind(id NodeID) parser.NodeKind {
	if !t.valid(id) {
		return NoKind
	}
	return t.nodes[id].kind
}

func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return None
	}
	return t.nodes[id].parent
}

func (t *Tree) FirstChild(id NodeID) NodeID {
	if !t.valid(id) {
		return None
	}
	return t.nodes[id].first
}

func (t *Tree) LastChild(id NodeID) NodeID {
	if !t.valid(id) {
		return None
	}
	return t.nodes[id].last
}

func (t *Tree) PrevSibling(id NodeID) NodeID {
	if !t.valid(id) {
		return None
	}
	return t.nodes[id].prev
}

func (t *Tree) NextSibling(id NodeID) NodeID {
	if !t.valid(id) {
		return None
	}
	return t.nodes[id].next
}

func (t *Tree) Children(id NodeID) []NodeID {
	var children []NodeID
	for c := t.FirstChild(id); c != None; c = t.NextSibling(c) {
		children = append(children, c)
	}
	return children
}

// ChildCount returns the number of direct children of id.
func (t *Tree) ChildCount(id NodeID) int {
	n := 0
	for c := t.FirstChild(id); c != None; c = t.NextSibling(c) {
		n++
	}
	return n
}

// FirstChildOfKind returns the first direct child of id with one of kinds.
func (t *Tree) FirstChildOfKind(id NodeID, kinds ...parser.NodeKind) NodeID {
	match := Is(kinds...)
	for c := t.FirstChild(id); c != None; c = t.NextSibling(c) {
		if match(t.Kind(c)) {
			return c
		}
	}
	return None
}

// Ancestor returns the nearest proper ancestor of id whose kind satisfies
// pred. The node itself is never considered.
func (t *Tree) Ancestor(id NodeID, pred func(parser.NodeKind) bool) NodeID {
	for p := t.Parent(id); p != None; p = t.Parent(p) {
		if pred(t.Kind(p)) {
			return p
		}
	}
	return None
}

// PrevSiblingOf returns the nearest preceding sibling of id whose kind
// satisfies pred.
func (t *Tree) PrevSiblingOf(id NodeID, pred func(parser.NodeKind) bool) NodeID {
	for s := t.PrevSibling(id); s != None; s = t.PrevSibling(s) {
		if pred(t.Kind(s)) {
			return s
		}
	}
	return None
}

// IsAncestor reports whether anc is a proper ancestor of id.
func (t *Tree) IsAncestor(anc, id NodeID) bool {
	for p := t.Parent(id); p != None; p = t.Parent(p) {
		if p == anc {
			return true
		}
	}
	return false
}

func (t *Tree) Token(id NodeID) (parser.Token, bool) {
	if !t.valid(id) || t.nodes[id].token == nil {
		return parser.Token{}, false
	}
	return *t.nodes[id].token, true
}

// Error returns the diagnostic of an Error node, or nil.
func (t *Tree) Error(id NodeID) *parser.Error {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].err
}

func (t *Tree) Span(id NodeID) parser.Span {
	if !t.valid(id) {
		return parser.Span{}
	}
	return t.nodes[id].span
}

func (t *Tree) Text(id NodeID) string {
	return t.TextOf(t.Span(id))
}

// TextOf returns the source covered by span.
func (t *Tree) TextOf(span parser.Span) string {
	start, end := span.Start.Offset, span.End.Offset
	if start < 0 || end > len(t.src) || start > end {
		return ""
	}
	return string(t.src[start:end])
}

// IsExpression reports whether id is an expression node.
func (t *Tree) IsExpression(id NodeID) bool {
	return t.Kind(id).IsExpression()
}

// IsStatement reports whether id is a statement node.
func (t *Tree) IsStatement(id NodeID) bool {
	return t.Kind(id).IsStatement()
}

// Is returns a predicate matching any of kinds, for use with Ancestor and
// PrevSiblingOf.
func Is(kinds ...parser.NodeKind) func(parser.NodeKind) bool {
	return func(k parser.NodeKind) bool {
		for _, kind := range kinds {
			if k == kind {
				return true
			}
		}
		return false
	}
}

// LeafAt returns the leaf under offset. A leaf that ends exactly at offset
// wins over one that starts there, so a cursor placed right after an
// identifier resolves to that identifier. Empty leaves are never returned.
func (t *Tree) LeafAt(offset int) NodeID {
	touching := None
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.first != None || n.span.Empty() {
			continue
		}
		start, end := n.span.Start.Offset, n.span.End.Offset
		if start < offset && offset <= end {
			return NodeID(i)
		}
		if start == offset && touching == None {
			touching = NodeID(i)
		}
		if start > offset {
			break
		}
	}
	return touching
}

// Walk calls fn for id and its descendants in preorder. Returning false from
// fn skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if !t.valid(id) || !fn(id) {
		return
	}
	for c := t.FirstChild(id); c != None; c = t.NextSibling(c) {
		t.Walk(c, fn)
	}
}

// String renders the tree in the same indented form as parser.Node.String.
func (t *Tree) String() string {
	var b bytes.Buffer
	t.Walk(t.root, func(id NodeID) bool {
		depth := 0
		for p := t.Parent(id); p != None; p = t.Parent(p) {
			depth++
		}
		b.WriteString(string(bytes.Repeat([]byte("  "), depth)))
		b.WriteString(t.Kind(id).String())
		if tok, ok := t.Token(id); ok {
			b.WriteString(" " + tok.Literal)
		}
		if err := t.Error(id); err != nil {
			b.WriteString(" ERROR: " + err.Message)
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

package dom

import (
	"strings"

	"github.com/essentialcss/critters/tree"
	"golang.org/x/net/html"
)

// Kind classifies a Node, mirroring the handful of W3C node types this
// engine actually needs to distinguish (spec.md §3's DOM view never
// touches CDATA sections or entity references, so those aren't
// modeled).
type Kind int

const (
	// ElementNode is a tag such as <div> or <link>.
	ElementNode Kind = iota
	// TextNode is a run of character data.
	TextNode
	// CommentNode is an HTML comment.
	CommentNode
	// DoctypeNode is a <!DOCTYPE ...> declaration.
	DoctypeNode
	// DocumentNode is the root of a parsed document.
	DocumentNode
	// ProcessingInstructionNode is a rare XML-style PI; x/net/html
	// surfaces these only for malformed/XML-ish input, but we model
	// them so a round-trip never silently drops one.
	ProcessingInstructionNode
)

func kindOf(h *html.Node) Kind {
	switch h.Type {
	case html.ElementNode:
		return ElementNode
	case html.TextNode:
		return TextNode
	case html.CommentNode:
		return CommentNode
	case html.DoctypeNode:
		return DoctypeNode
	case html.DocumentNode:
		return DocumentNode
	default:
		return ProcessingInstructionNode
	}
}

// nodeData is the payload carried by each tree.Node in the concurrency
// safe view over a parsed document.
type nodeData struct {
	html  *html.Node
	attrs *AttributeMap
}

// Node is a read-mostly, concurrency-safe view over one element, text
// run, comment, doctype, or the document itself. Its parent/child
// links are backed by tree.Node, so many goroutines may walk a Node
// concurrently (spec.md §5's extraction pass matches every rule
// against the same DOM without mutating it).
//
// Mutating a document (moving/inserting/removing elements, changing
// attributes) is done by the rewriter through the helpers in
// mutation.go, which update both the underlying golang.org/x/net/html
// tree and this tree.Node mirror.
type Node struct {
	t *tree.Node[*nodeData]
}

// HTMLNode returns the underlying golang.org/x/net/html node this Node
// wraps. The rewriter uses this to mutate and to serialize.
func (n *Node) HTMLNode() *html.Node {
	return n.t.Payload.html
}

// Kind reports this node's type.
func (n *Node) Kind() Kind {
	return kindOf(n.t.Payload.html)
}

// TagName returns the lower-case tag name for an element node, and ""
// for any other kind.
func (n *Node) TagName() string {
	if n.Kind() != ElementNode {
		return ""
	}
	return n.t.Payload.html.Data
}

// NodeName mirrors the W3C DOM's nodeName: the upper-cased tag name
// for elements, "#text"/"#comment"/"#document" otherwise.
func (n *Node) NodeName() string {
	switch n.Kind() {
	case ElementNode:
		return strings.ToUpper(n.TagName())
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case DoctypeNode:
		return "#doctype"
	case DocumentNode:
		return "#document"
	default:
		return "#processing-instruction"
	}
}

// Data returns the character data of a text or comment node.
func (n *Node) Data() string {
	return n.t.Payload.html.Data
}

// Attrs returns the node's attribute map. Always non-nil; empty for
// non-element nodes.
func (n *Node) Attrs() *AttributeMap {
	return n.t.Payload.attrs
}

// Parent returns the enclosing Node, or nil at the document root.
func (n *Node) Parent() *Node {
	p := n.t.Parent()
	if p == nil {
		return nil
	}
	return wrap(p)
}

// Children returns this node's child Nodes, including text and comment
// nodes, in document order.
func (n *Node) Children() []*Node {
	kids := n.t.Children(true)
	out := make([]*Node, len(kids))
	for i, k := range kids {
		out[i] = wrap(k)
	}
	return out
}

// ChildElements returns only the element children, skipping text and
// comment nodes, the common case for selector matching and rewriting.
func (n *Node) ChildElements() []*Node {
	var out []*Node
	for _, k := range n.Children() {
		if k.Kind() == ElementNode {
			out = append(out, k)
		}
	}
	return out
}

// FirstChild returns the first child Node, or nil if this node has no
// children.
func (n *Node) FirstChild() *Node {
	kids := n.Children()
	if len(kids) == 0 {
		return nil
	}
	return kids[0]
}

// PreviousSiblingElement returns the nearest preceding sibling that is
// an element, skipping text and comment nodes, what CSS sibling
// combinators (+, ~) actually walk over.
func (n *Node) PreviousSiblingElement() *Node {
	h := n.t.Payload.html.PrevSibling
	for h != nil {
		if h.Type == html.ElementNode {
			p := n.Parent()
			if p == nil {
				return &Node{t: wrapHTML(n.t, h)}
			}
			return &Node{t: wrapHTML(p.t, h)}
		}
		h = h.PrevSibling
	}
	return nil
}

// NextSiblingElement returns the nearest following sibling that is an
// element.
func (n *Node) NextSiblingElement() *Node {
	h := n.t.Payload.html.NextSibling
	for h != nil {
		if h.Type == html.ElementNode {
			p := n.Parent()
			if p == nil {
				return &Node{t: wrapHTML(n.t, h)}
			}
			return &Node{t: wrapHTML(p.t, h)}
		}
		h = h.NextSibling
	}
	return nil
}

// IsFirstChild reports whether n is the first element child of its
// parent.
func (n *Node) IsFirstChild() bool {
	return n.PreviousSiblingElement() == nil
}

// IsLastChild reports whether n is the last element child of its
// parent.
func (n *Node) IsLastChild() bool {
	return n.NextSiblingElement() == nil
}

// SiblingIndex returns n's 1-based position among its parent's element
// children, for :nth-child matching.
func (n *Node) SiblingIndex() int {
	idx := 1
	s := n.PreviousSiblingElement()
	for s != nil {
		idx++
		s = s.PreviousSiblingElement()
	}
	return idx
}

// SiblingIndexFromEnd returns n's 1-based position counting from the
// last element child, for :nth-last-child matching.
func (n *Node) SiblingIndexFromEnd() int {
	idx := 1
	s := n.NextSiblingElement()
	for s != nil {
		idx++
		s = s.NextSiblingElement()
	}
	return idx
}

// TextContent concatenates the character data of this node and every
// descendant, in document order, matching the W3C DOM's
// Node.textContent.
func (n *Node) TextContent() string {
	var b strings.Builder
	var walk func(h *html.Node)
	walk = func(h *html.Node) {
		if h.Type == html.TextNode {
			b.WriteString(h.Data)
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n.t.Payload.html)
	return b.String()
}

// wrap adapts a tree.Node into the exported Node facade.
func wrap(t *tree.Node[*nodeData]) *Node {
	return &Node{t: t}
}

// domify builds a tree.Node mirror of an x/net/html subtree, caching
// an AttributeMap per node. This is the adaptation of the teacher's
// domify/FromHTMLParseTree pattern (dom/dom.go) to this module's
// simpler, cascade-free Node type.
func domify(h *html.Node) *tree.Node[*nodeData] {
	t := tree.NewNode(&nodeData{html: h, attrs: newAttributeMap(h.Attr)})
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		t.AddChild(domify(c))
	}
	return t
}

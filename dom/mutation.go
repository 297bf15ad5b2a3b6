package dom

import (
	"github.com/essentialcss/critters/tree"
	"golang.org/x/net/html"
)

// NewElement creates a detached element node with the given tag name
// and attributes, in document order as given.
func NewElement(tag string, attrs ...Attr) *Node {
	h := &html.Node{
		Type: html.ElementNode,
		Data: tag,
	}
	for _, a := range attrs {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	return &Node{t: tree.NewNode(&nodeData{html: h, attrs: newAttributeMap(h.Attr)})}
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	h := &html.Node{Type: html.TextNode, Data: data}
	return &Node{t: tree.NewNode(&nodeData{html: h, attrs: newAttributeMap(nil)})}
}

// Attr is a single attribute name/value pair, used when constructing a
// new element with NewElement.
type Attr struct {
	Name  string
	Value string
}

// AppendChild appends child as the last child of n, in both the
// underlying html tree and n's tree.Node mirror. Keeping the mirror in
// sync matters because Children/ChildElements (and so the extractor's
// DFS walk) read it directly: critters.go rewrites a document's
// stylesheets one at a time, so a later stylesheet's extraction pass
// must see elements an earlier stylesheet's rewrite (e.g. bodyPreload
// appending a cloned <link> to <body>) already inserted.
func (n *Node) AppendChild(child *Node) {
	n.HTMLNode().AppendChild(child.HTMLNode())
	n.t.AddChild(child.t)
}

// InsertBefore inserts newChild immediately before reference among n's
// children, in both trees. If reference is nil, it behaves like
// AppendChild.
func (n *Node) InsertBefore(newChild, reference *Node) {
	var ref *html.Node
	if reference != nil {
		ref = reference.HTMLNode()
	}
	n.HTMLNode().InsertBefore(newChild.HTMLNode(), ref)

	if reference == nil {
		n.t.AddChild(newChild.t)
		return
	}
	if idx := n.t.IndexOfChild(reference.t); idx >= 0 {
		n.t.InsertChildAt(idx, newChild.t)
	} else {
		n.t.AddChild(newChild.t)
	}
}

// InsertAfter inserts newChild immediately after reference among n's
// children, in both trees.
func (n *Node) InsertAfter(newChild, reference *Node) {
	next := reference.HTMLNode().NextSibling
	if next == nil {
		n.AppendChild(newChild)
		return
	}
	n.HTMLNode().InsertBefore(newChild.HTMLNode(), next)

	if idx := n.t.IndexOfChild(reference.t); idx >= 0 {
		n.t.InsertChildAt(idx+1, newChild.t)
	} else {
		n.t.AddChild(newChild.t)
	}
}

// Remove detaches n from its parent, in both the underlying html tree
// and its tree.Node mirror.
func (n *Node) Remove() {
	if p := n.HTMLNode().Parent; p != nil {
		p.RemoveChild(n.HTMLNode())
	}
	n.t.Isolate()
}

// SetAttr sets an attribute on n, keeping the cached AttributeMap and
// the underlying html.Node's attribute slice in sync.
func (n *Node) SetAttr(name, value string) {
	n.Attrs().Set(name, value)
	n.syncAttrs()
}

// RemoveAttr removes an attribute from n.
func (n *Node) RemoveAttr(name string) {
	n.Attrs().Remove(name)
	n.syncAttrs()
}

func (n *Node) syncAttrs() {
	n.HTMLNode().Attr = n.Attrs().asHTMLAttrs()
}

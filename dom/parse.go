package dom

import (
	"io"
	"strings"

	"github.com/essentialcss/critters/tree"
	"golang.org/x/net/html"
)

// Document is a parsed HTML document: the root Node plus the raw
// golang.org/x/net/html tree it wraps, kept around for serialization
// and for the mutation helpers the rewriter uses.
type Document struct {
	root *tree.Node[*nodeData]
	html *html.Node
}

// Root returns the document's root Node (Kind()==DocumentNode).
func (d *Document) Root() *Node {
	return wrap(d.root)
}

// HTMLNode returns the raw parse tree root, for callers (the rewriter,
// Serialize) that need to drive x/net/html directly.
func (d *Document) HTMLNode() *html.Node {
	return d.html
}

// Parse parses html source into a Document, mirroring the teacher's
// dom.FromHTMLParseTree entry point but without building a styled
// tree, there is no cascade to compute (Non-goal 1).
func Parse(source string) (*Document, error) {
	return ParseReader(strings.NewReader(source))
}

// ParseReader is Parse, reading from an io.Reader.
func ParseReader(r io.Reader) (*Document, error) {
	h, err := html.Parse(r)
	if err != nil {
		tracer().Errorf("parsing HTML document: %v", err)
		return nil, err
	}
	return &Document{root: domify(h), html: h}, nil
}

// Element looks up the first descendant Node with the given tag name
// (e.g. "head", "body"), or nil if none is found. Mirrors
// douceuradapter.findElement, generalized to any tag.
func (d *Document) Element(tag string) *Node {
	var found *html.Node
	var walk func(h *html.Node)
	walk = func(h *html.Node) {
		if found != nil {
			return
		}
		if h.Type == html.ElementNode && h.Data == tag {
			found = h
			return
		}
		for c := h.FirstChild; c != nil && found == nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.html)
	if found == nil {
		return nil
	}
	return &Node{t: wrapHTML(d.root, found)}
}

// searchTreeNode locates the tree.Node mirroring a given html.Node, or
// nil if no such mirror exists in t's subtree.
func searchTreeNode(t *tree.Node[*nodeData], target *html.Node) *tree.Node[*nodeData] {
	if t.Payload.html == target {
		return t
	}
	for _, c := range t.Children(true) {
		if found := searchTreeNode(c, target); found != nil {
			return found
		}
	}
	return nil
}

// wrapHTML finds target's mirror within root's subtree, or builds a
// standalone one if target was inserted into the html tree after
// parsing (by the rewriter) and so has no mirror yet.
func wrapHTML(root *tree.Node[*nodeData], target *html.Node) *tree.Node[*nodeData] {
	if t := searchTreeNode(root, target); t != nil {
		return t
	}
	return tree.NewNode(&nodeData{html: target, attrs: newAttributeMap(target.Attr)})
}

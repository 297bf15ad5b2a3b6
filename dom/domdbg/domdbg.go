// Package domdbg renders a Node subtree as an ASCII tree, for use in
// tests and an optional CLI --dump flag. It replaces the teacher's
// GraphViz-based dom/domdbg/domdbg.go, which dumped computed cascade
// styles per node, there is no cascade here (Non-goal 1), with a
// plain structural dump grounded on the same "walk the tree, label
// each node" shape, rendered with xlab/treeprint instead of shelling
// out to `dot`.
package domdbg

import (
	"fmt"
	"strings"

	"github.com/essentialcss/critters/dom"
	"github.com/xlab/treeprint"
)

// Dump renders n and its descendants as an indented ASCII tree.
func Dump(n *dom.Node) string {
	root := treeprint.New()
	root.SetValue(label(n))
	addChildren(root, n)
	return root.String()
}

func addChildren(branch treeprint.Tree, n *dom.Node) {
	for _, c := range n.Children() {
		if c.Kind() == dom.TextNode && strings.TrimSpace(c.Data()) == "" {
			continue // skip whitespace-only text nodes, they add noise
		}
		sub := branch.AddBranch(label(c))
		addChildren(sub, c)
	}
}

func label(n *dom.Node) string {
	switch n.Kind() {
	case dom.ElementNode:
		attrs := n.Attrs()
		s := n.TagName()
		if id, ok := attrs.Get("id"); ok {
			s += "#" + id
		}
		for _, c := range attrs.ClassList() {
			s += "." + c
		}
		return s
	case dom.TextNode:
		return fmt.Sprintf("%q", strings.TrimSpace(n.Data()))
	case dom.CommentNode:
		return "<!--comment-->"
	case dom.DoctypeNode:
		return "<!DOCTYPE>"
	default:
		return n.NodeName()
	}
}

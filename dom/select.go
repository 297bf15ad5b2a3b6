package dom

import (
	"github.com/andybalholm/cascadia"
)

// Select returns every node among n and its descendants matching the
// CSS selector sel, in document order. This is the DOM view's general-purpose query
// surface (spec.md §4.1); it is a thin wrapper over cascadia, which
// the teacher's cssom package used for full cascade matching and this
// module repurposes for plain existence queries (convenience lookups
// in the rewriter, the extractor's naive cross-check baseline, see
// SPEC_FULL.md §11).
func (n *Node) Select(sel string) ([]*Node, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, err
	}
	matches := s.MatchAll(n.HTMLNode())
	out := make([]*Node, len(matches))
	for i, m := range matches {
		out[i] = &Node{t: wrapHTML(n.t, m)}
	}
	return out, nil
}

// SelectFirst returns the first node among n and its descendants
// matching sel, or nil if there is none.
func (n *Node) SelectFirst(sel string) (*Node, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, err
	}
	m := s.MatchFirst(n.HTMLNode())
	if m == nil {
		return nil, nil
	}
	return &Node{t: wrapHTML(n.t, m)}, nil
}

// Matches reports whether n itself satisfies sel.
func (n *Node) Matches(sel string) (bool, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return false, err
	}
	return s.Match(n.HTMLNode()), nil
}

// CountMatches reports how many descendants of n (or n itself) satisfy
// sel, without allocating the slice Select would. The extractor's
// first pass only needs this count (spec.md §4.5: "does any element
// match?"), grounded on critters-rs's
// `critters_container.as_node().select(&selector).count() > 0`.
func (n *Node) CountMatches(sel string) (int, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return 0, err
	}
	return len(s.MatchAll(n.HTMLNode())), nil
}

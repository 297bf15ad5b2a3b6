// Package ruleset buckets compiled selectors by their rightmost ("key")
// simple selector, id, then class, then tag, then a universal
// catch-all, giving O(1) candidate-rule lookup per element instead of
// testing every selector in the stylesheet against every element.
// Grounded on _examples/original_source/src/html/style_calculation.rs,
// which builds exactly this kind of id/class/tag/universal index
// before walking the DOM (spec.md §4.3).
package ruleset

import (
	"github.com/essentialcss/critters/cssselect"
	"github.com/essentialcss/critters/dom"
)

// Entry pairs a compiled selector with an opaque payload the caller
// uses to recover which originating rule/declaration it came from
// (the extractor attaches its per-selector *candidate here).
type Entry struct {
	Selector *cssselect.Selector
	Hashes   [4]uint32
	Payload  any
}

// RuleSet is the bucketed selector index for one document's
// stylesheets.
type RuleSet struct {
	byID      map[string][]*Entry
	byClass   map[string][]*Entry
	byTag     map[string][]*Entry
	universal []*Entry
}

// New returns an empty RuleSet.
func New() *RuleSet {
	return &RuleSet{
		byID:    make(map[string][]*Entry),
		byClass: make(map[string][]*Entry),
		byTag:   make(map[string][]*Entry),
	}
}

// Add indexes sel under its key simple selector, in the preference
// order id > class > tag > universal, the same preference order
// style_calculation.rs's `get_selector_bucket` documents (an id is the
// most selective bucket key, followed by class, then tag name, with
// anything else falling back to the universal bucket scanned for
// every element).
func (rs *RuleSet) Add(sel *cssselect.Selector, payload any) {
	entry := &Entry{Selector: sel, Hashes: cssselect.AncestorHashes(sel), Payload: payload}
	switch key, kind := keySimple(sel.Key); kind {
	case keyID:
		rs.byID[key] = append(rs.byID[key], entry)
	case keyClass:
		rs.byClass[key] = append(rs.byClass[key], entry)
	case keyTag:
		rs.byTag[key] = append(rs.byTag[key], entry)
	default:
		rs.universal = append(rs.universal, entry)
	}
}

type keyKind int

const (
	keyUniversal keyKind = iota
	keyID
	keyClass
	keyTag
)

// keySimple picks the single most selective simple selector within a
// compound to serve as its bucket key, preferring id over class over
// tag. Compounds with none of those (e.g. a bare "*" or pseudo-class
// only) fall back to the universal bucket.
func keySimple(c cssselect.Compound) (string, keyKind) {
	var class, tag string
	for _, s := range c.Simples {
		switch s.Kind {
		case cssselect.KindID:
			return s.Value, keyID
		case cssselect.KindClass:
			if class == "" {
				class = s.Value
			}
		case cssselect.KindType:
			tag = s.Value
		}
	}
	if class != "" {
		return class, keyClass
	}
	if tag != "" {
		return tag, keyTag
	}
	return "", keyUniversal
}

// CandidatesFor returns every indexed entry whose bucket key could
// possibly match element: its id bucket (if it has one), each of its
// class buckets, its tag bucket, and the universal bucket, the exact
// set style_calculation.rs visits per element before running the real
// selector match (and, in this package's case, before the bloom-filter
// probe extractor runs ahead of that).
func (rs *RuleSet) CandidatesFor(element *dom.Node) []*Entry {
	var out []*Entry
	if id, ok := element.Attrs().Get("id"); ok {
		out = append(out, rs.byID[id]...)
	}
	for _, class := range element.Attrs().ClassList() {
		out = append(out, rs.byClass[class]...)
	}
	out = append(out, rs.byTag[element.TagName()]...)
	out = append(out, rs.universal...)
	return out
}

// Len returns the total number of indexed entries, for diagnostics.
func (rs *RuleSet) Len() int {
	n := len(rs.universal)
	for _, v := range rs.byID {
		n += len(v)
	}
	for _, v := range rs.byClass {
		n += len(v)
	}
	for _, v := range rs.byTag {
		n += len(v)
	}
	return n
}

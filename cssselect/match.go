package cssselect

import (
	"hash/fnv"
	"strings"

	"github.com/essentialcss/critters/dom"
)

// Matches reports whether element satisfies sel, walking element's
// actual ancestor/sibling chain via dom.Node.Parent and the sibling
// helpers, always correct regardless of any bloom-filter fast-reject
// a caller may have already performed (a bloom filter only ever
// produces false positives, never false negatives, so real matching
// is always the final authority; see package bloom).
func Matches(sel *Selector, element *dom.Node) bool {
	if !matchCompound(sel.Key, element) {
		return false
	}
	if sel.Ancestor == nil {
		return true
	}
	switch sel.Combinator {
	case Descendant:
		for anc := element.Parent(); anc != nil; anc = anc.Parent() {
			if Matches(sel.Ancestor, anc) {
				return true
			}
		}
		return false
	case Child:
		p := element.Parent()
		if p == nil {
			return false
		}
		return Matches(sel.Ancestor, p)
	case NextSibling:
		s := element.PreviousSiblingElement()
		if s == nil {
			return false
		}
		return Matches(sel.Ancestor, s)
	case SubsequentSibling:
		for s := element.PreviousSiblingElement(); s != nil; s = s.PreviousSiblingElement() {
			if Matches(sel.Ancestor, s) {
				return true
			}
		}
		return false
	}
	return false
}

func matchCompound(c Compound, e *dom.Node) bool {
	for _, s := range c.Simples {
		if !matchSimple(s, e) {
			return false
		}
	}
	return true
}

func matchSimple(s SimpleSelector, e *dom.Node) bool {
	switch s.Kind {
	case KindUniversal:
		return true
	case KindType:
		return strings.EqualFold(e.TagName(), s.Value)
	case KindID:
		id, ok := e.Attrs().Get("id")
		return ok && id == s.Value
	case KindClass:
		return e.Attrs().HasClass(s.Value)
	case KindAttr:
		return matchAttr(s, e)
	case KindPseudoClass:
		return matchPseudo(s, e)
	default:
		return false
	}
}

func matchAttr(s SimpleSelector, e *dom.Node) bool {
	v, ok := e.Attrs().Get(s.AttrName)
	if !ok {
		return false
	}
	switch s.AttrOp {
	case AttrPresence:
		return true
	case AttrEqual:
		return v == s.AttrValue
	case AttrIncludes:
		for _, word := range strings.Fields(v) {
			if word == s.AttrValue {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return v == s.AttrValue || strings.HasPrefix(v, s.AttrValue+"-")
	case AttrPrefix:
		return strings.HasPrefix(v, s.AttrValue)
	case AttrSuffix:
		return strings.HasSuffix(v, s.AttrValue)
	case AttrSubstring:
		return strings.Contains(v, s.AttrValue)
	default:
		return false
	}
}

func matchPseudo(s SimpleSelector, e *dom.Node) bool {
	switch s.Pseudo {
	case PseudoRoot:
		return e.Parent() == nil || e.Parent().Kind() == dom.DocumentNode
	case PseudoFirstChild:
		return e.IsFirstChild()
	case PseudoLastChild:
		return e.IsLastChild()
	case PseudoOnlyChild:
		return e.IsFirstChild() && e.IsLastChild()
	case PseudoFirstOfType:
		return isFirstOfType(e)
	case PseudoLastOfType:
		return isLastOfType(e)
	case PseudoNthChild:
		return matchesNth(s.NthA, s.NthB, e.SiblingIndex())
	case PseudoNthLastChild:
		return matchesNth(s.NthA, s.NthB, e.SiblingIndexFromEnd())
	case PseudoNot:
		for _, nested := range s.Not {
			if Matches(nested, e) {
				return false
			}
		}
		return true
	case PseudoEmpty:
		return len(e.ChildElements()) == 0 && strings.TrimSpace(e.TextContent()) == ""
	case PseudoAnyLink, PseudoLink:
		_, hasHref := e.Attrs().Get("href")
		return hasHref && (strings.EqualFold(e.TagName(), "a") || strings.EqualFold(e.TagName(), "area"))
	case PseudoEnabled:
		_, disabled := e.Attrs().Get("disabled")
		return !disabled && isFormElement(e)
	case PseudoDisabled:
		_, disabled := e.Attrs().Get("disabled")
		return disabled
	case PseudoChecked:
		_, checked := e.Attrs().Get("checked")
		if checked {
			return true
		}
		if sel, ok := e.Attrs().Get("selected"); ok {
			return sel != ""
		}
		return false
	// Visited/Active/Hover/Focus/Indeterminate depend on browser
	// session/interaction state this static extractor never has
	// access to; critters-rs's PseudoClass::is_always_false documents
	// the same always-false treatment (spec.md §4.2).
	case PseudoVisited, PseudoActive, PseudoHover, PseudoFocus, PseudoIndeterminate:
		return false
	default:
		return false
	}
}

func isFormElement(e *dom.Node) bool {
	switch strings.ToLower(e.TagName()) {
	case "input", "button", "select", "textarea", "option", "fieldset":
		return true
	default:
		return false
	}
}

func isFirstOfType(e *dom.Node) bool {
	for s := e.PreviousSiblingElement(); s != nil; s = s.PreviousSiblingElement() {
		if strings.EqualFold(s.TagName(), e.TagName()) {
			return false
		}
	}
	return true
}

func isLastOfType(e *dom.Node) bool {
	for s := e.NextSiblingElement(); s != nil; s = s.NextSiblingElement() {
		if strings.EqualFold(s.TagName(), e.TagName()) {
			return false
		}
	}
	return true
}

func matchesNth(a, b, index int) bool {
	if a == 0 {
		return index == b
	}
	diff := index - b
	if a > 0 {
		return diff >= 0 && diff%a == 0
	}
	return diff <= 0 && diff%a == 0
}

// AncestorHashes returns up to 4 hashes of the hashable simple
// selectors (id/class/tag) found in sel's ancestor compounds, walked
// upward through Descendant/Child combinators only, sibling
// combinators don't correspond to anything the ancestor bloom filter
// tracks, so the hash walk stops there. Grounded on
// _examples/original_source/src/html/select.rs's `ancestor_hashes()`
// and src/html/filter.rs's corresponding StyleBloom push/pop scheme.
func AncestorHashes(sel *Selector) [4]uint32 {
	var hashes [4]uint32
	n := 0
	for c := sel; c.Ancestor != nil && n < 4; c = c.Ancestor {
		if c.Combinator == NextSibling || c.Combinator == SubsequentSibling {
			break
		}
		for _, s := range c.Ancestor.Key.Simples {
			if n >= 4 {
				break
			}
			h, ok := hashSimple(s)
			if !ok {
				continue
			}
			hashes[n] = h
			n++
		}
	}
	return hashes
}

func hashSimple(s SimpleSelector) (uint32, bool) {
	switch s.Kind {
	case KindID:
		return hashString("#" + s.Value), true
	case KindClass:
		return hashString("." + s.Value), true
	case KindType:
		return hashString(strings.ToLower(s.Value)), true
	default:
		return 0, false
	}
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

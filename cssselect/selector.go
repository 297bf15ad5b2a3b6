// Package cssselect implements a small CSS selector compiler and
// matcher, purpose-built for the one thing the critical-CSS extractor
// needs that no pack dependency exposes: an ancestor-hash fast-reject
// path that can be probed against a caller-supplied bloom filter mid
// match (spec.md §4.2, §4.6). It is grounded on
// _examples/original_source/src/html/select.rs (the public Selector
// API shape, Compile/Matches/Specificity/AncestorHashes) and
// src/html/style_calculation.rs (how those hashes get produced and
// consumed during a real tree walk).
//
// The surface is intentionally narrow: enough of CSS Selectors Level 3
// to extract critical rules from real-world stylesheets (type, class,
// id, universal and attribute simple selectors; descendant, child and
// sibling combinators; the structural and UI-state pseudo-classes
// spec.md names), not a general-purpose CSS engine.
package cssselect

import "fmt"

// Combinator describes the relationship between a compound selector
// and the next one up the chain.
type Combinator int

const (
	// Descendant is the plain whitespace combinator: any ancestor.
	Descendant Combinator = iota
	// Child is '>': the immediate parent.
	Child
	// NextSibling is '+': the immediately preceding sibling.
	NextSibling
	// SubsequentSibling is '~': any preceding sibling.
	SubsequentSibling
)

func (c Combinator) String() string {
	switch c {
	case Descendant:
		return " "
	case Child:
		return ">"
	case NextSibling:
		return "+"
	case SubsequentSibling:
		return "~"
	default:
		return "?"
	}
}

// SimpleKind classifies one simple selector within a compound
// selector.
type SimpleKind int

const (
	KindUniversal SimpleKind = iota
	KindType
	KindID
	KindClass
	KindAttr
	KindPseudoClass
)

// AttrOperator is the comparison an attribute selector performs.
type AttrOperator int

const (
	AttrPresence AttrOperator = iota // [name]
	AttrEqual                        // [name=value]
	AttrIncludes                     // [name~=value]
	AttrDashMatch                    // [name|=value]
	AttrPrefix                       // [name^=value]
	AttrSuffix                       // [name$=value]
	AttrSubstring                    // [name*=value]
)

// PseudoClass enumerates the pseudo-classes this engine understands.
// Matches critters-rs's PseudoClass enum (src/html/select.rs) for the
// link/UI-state group, plus the structural pseudo-classes the Rust
// `selectors` crate handles natively and spec.md §4.2/§9 calls out by
// name (:first-child, :nth-child, :not, :root).
type PseudoClass int

const (
	PseudoRoot PseudoClass = iota
	PseudoFirstChild
	PseudoLastChild
	PseudoOnlyChild
	PseudoFirstOfType
	PseudoLastOfType
	PseudoNthChild
	PseudoNthLastChild
	PseudoNot
	PseudoEmpty
	// The following always evaluate false in a static document with no
	// navigation/interaction history or live user-agent state, exactly
	// as critters-rs's PseudoClass::{is_active, is_always_false, ...}
	// document: Visited, Active, Hover, Focus, Indeterminate.
	PseudoAnyLink
	PseudoLink
	PseudoVisited
	PseudoActive
	PseudoHover
	PseudoFocus
	PseudoEnabled
	PseudoDisabled
	PseudoChecked
	PseudoIndeterminate
)

// SimpleSelector is one atomic test within a compound selector.
type SimpleSelector struct {
	Kind SimpleKind

	// KindType / KindID / KindClass
	Value string

	// KindAttr
	AttrName  string
	AttrOp    AttrOperator
	AttrValue string

	// KindPseudoClass
	Pseudo PseudoClass
	// NthA, NthB: the an+b expression for :nth-child/:nth-last-child.
	NthA, NthB int
	// Not holds the negated selector list for :not(...).
	Not []*Selector
}

func (s SimpleSelector) String() string {
	switch s.Kind {
	case KindUniversal:
		return "*"
	case KindType:
		return s.Value
	case KindID:
		return "#" + s.Value
	case KindClass:
		return "." + s.Value
	case KindAttr:
		return fmt.Sprintf("[%s%s%q]", s.AttrName, attrOpString(s.AttrOp), s.AttrValue)
	default:
		return ":pseudo"
	}
}

func attrOpString(op AttrOperator) string {
	switch op {
	case AttrEqual:
		return "="
	case AttrIncludes:
		return "~="
	case AttrDashMatch:
		return "|="
	case AttrPrefix:
		return "^="
	case AttrSuffix:
		return "$="
	case AttrSubstring:
		return "*="
	default:
		return ""
	}
}

// Compound is a run of simple selectors with no combinator between
// them (e.g. "div.critical#main").
type Compound struct {
	Simples []SimpleSelector
}

// Selector is a full compiled selector: a compound, optionally chained
// to an ancestor/parent/sibling compound through a Combinator. It is
// represented right-to-left, the same orientation selector matching
// itself runs in (the rightmost/"key" compound is matched against the
// candidate element first).
type Selector struct {
	Key        Compound
	Combinator Combinator
	Ancestor   *Selector // nil if Key is the whole selector

	// Source is the original selector text, preserved for
	// serialization and for spec.md §9's trivial-retain checks.
	Source string
}

// Specificity computes the opaque (id, class, type) specificity triple
// packed into a uint32, the same ordering css/cascade specificities
// use, per spec.md §4.3. It is not consulted for cascade resolution
// (Non-goal 1), only exposed for callers that want a tie-break
// ordering.
func (s *Selector) Specificity() uint32 {
	var ids, classes, types uint32
	for c := s; c != nil; c = c.Ancestor {
		for _, simple := range c.Key.Simples {
			switch simple.Kind {
			case KindID:
				ids++
			case KindClass, KindAttr:
				classes++
			case KindType:
				types++
			case KindPseudoClass:
				classes++
			}
		}
	}
	if ids > 0x3ff {
		ids = 0x3ff
	}
	if classes > 0x3ff {
		classes = 0x3ff
	}
	if types > 0x3ff {
		types = 0x3ff
	}
	return ids<<20 | classes<<10 | types
}

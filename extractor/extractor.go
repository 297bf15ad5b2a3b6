// Package extractor implements the two-pass critical-rule extraction
// algorithm: a first pass determines, for every selector in a parsed
// stylesheet, whether it matches at least one element actually present
// in a DOM subtree, and a second pass retains only the rules (and the
// keyframes/font-face rules they transitively reference) that survive.
// Grounded on _examples/original_source/crates/critters-rs/src/lib.rs's
// `process_style` (spec.md §4.5).
package extractor

import (
	"regexp"
	"strings"

	"github.com/essentialcss/critters/bloom"
	"github.com/essentialcss/critters/config"
	"github.com/essentialcss/critters/cssparse"
	"github.com/essentialcss/critters/cssselect"
	"github.com/essentialcss/critters/dom"
	"github.com/essentialcss/critters/ruleset"
)

// trivialSelectorPattern matches the always-retained pseudo-element
// selectors that never correspond to a real, matchable DOM element
// (::before, ::after, and their single-colon legacy spellings). See
// SPEC_FULL.md Open Question 1.
var trivialSelectorPattern = regexp.MustCompile(`^::?(before|after)$`)

// animationKeywords are the non-identifier tokens that can appear in an
// `animation` shorthand value alongside the animation name; they are
// skipped when hunting for candidate keyframe names so a timing
// function or fill mode isn't mistaken for one.
var animationKeywords = map[string]bool{
	"infinite": true, "linear": true, "ease": true, "ease-in": true,
	"ease-out": true, "ease-in-out": true, "alternate": true,
	"alternate-reverse": true, "normal": true, "reverse": true,
	"both": true, "none": true, "running": true, "paused": true,
	"forwards": true, "backwards": true, "step-start": true, "step-end": true,
}

// Options configures one Extract call.
type Options struct {
	// Container is the subtree Extract walks to decide which selectors
	// match; spec.md defaults this to "body" (SPEC_FULL.md Open
	// Question 3).
	Container *dom.Node
	Keyframes config.KeyframesStrategy
	// PreloadFonts, if true, collects every @font-face src so the
	// caller can emit <link rel=preload as=font> tags for them.
	PreloadFonts bool
	// InlineFonts, if true, retains @font-face rules whose family is
	// referenced by a retained declaration's font-family value.
	InlineFonts bool
	// AllowRules force-retains any selector one of these matchers
	// accepts, regardless of whether it matches the document.
	AllowRules []config.Matcher
}

// Result reports what Extract learned about a stylesheet beyond the
// mutation it applied in place.
type Result struct {
	// FailedSelectors lists selector text this engine could not parse;
	// such selectors are dropped rather than aborting the whole rule,
	// mirroring critters-rs's per-selector error tolerance.
	FailedSelectors []string
	// CriticalFontFamilies lists the font-family values referenced by
	// retained declarations, used to decide which @font-face rules
	// InlineFonts keeps.
	CriticalFontFamilies []string
	// FontFaceSrcs lists every @font-face src encountered, present only
	// when Options.PreloadFonts is set.
	FontFaceSrcs []string
	// Empty reports whether the stylesheet has zero rules left after
	// extraction, the signal config.PruneSource acts on.
	Empty bool
}

type candidate struct {
	rule    *cssparse.Rule
	text    string
	matched bool
}

// Extract filters sheet in place, keeping only the rules (and their
// transitively-referenced keyframes/font-face rules) whose selectors
// match at least one element under opts.Container.
func Extract(sheet *cssparse.Stylesheet, opts Options) *Result {
	result := &Result{}
	finalSelectors := make(map[cssparse.RuleID][]string)
	rs := ruleset.New()
	var candidates []*candidate

	for _, rule := range sheet.Rules {
		if rule.Kind != cssparse.KindStyle {
			continue
		}
		for _, selText := range rule.Selectors {
			trimmed := strings.TrimSpace(selText)
			if trimmed == "" {
				continue
			}
			if isTriviallyRetained(trimmed) || matchesAny(opts.AllowRules, trimmed) {
				finalSelectors[rule.ID] = append(finalSelectors[rule.ID], selText)
				continue
			}
			compiled, err := cssselect.Compile(trimmed)
			if err != nil {
				result.FailedSelectors = append(result.FailedSelectors, selText)
				continue
			}
			cand := &candidate{rule: rule, text: selText}
			candidates = append(candidates, cand)
			rs.Add(compiled, cand)
		}
	}

	if opts.Container != nil && rs.Len() > 0 {
		bf := bloom.New()
		seedAncestors(opts.Container, bf)
		walk(opts.Container, rs, bf)
	}

	for _, cand := range candidates {
		if cand.matched {
			finalSelectors[cand.rule.ID] = append(finalSelectors[cand.rule.ID], cand.text)
		}
	}

	removed := make(map[cssparse.RuleID]bool)
	for _, rule := range sheet.Rules {
		if rule.Kind != cssparse.KindStyle {
			continue
		}
		kept := finalSelectors[rule.ID]
		if len(kept) == 0 {
			removed[rule.ID] = true
			continue
		}
		rule.SetSelectors(kept)
	}

	criticalKeyframeNames := map[string]bool{}
	criticalFontFamilies := map[string]bool{}
	for _, rule := range sheet.Rules {
		if rule.Kind != cssparse.KindStyle || removed[rule.ID] {
			continue
		}
		collectReferences(rule.Declarations, criticalKeyframeNames, criticalFontFamilies)
	}
	for family := range criticalFontFamilies {
		result.CriticalFontFamilies = append(result.CriticalFontFamilies, family)
	}

	preloadedFonts := map[string]bool{}
	sheet.Retain(func(rule *cssparse.Rule) bool {
		switch rule.Kind {
		case cssparse.KindStyle:
			return !removed[rule.ID]
		case cssparse.KindKeyframes:
			switch opts.Keyframes {
			case config.KeyframesAll:
				return true
			case config.KeyframesNone:
				return false
			default:
				return criticalKeyframeNames[rule.Prelude]
			}
		case cssparse.KindFontFace:
			src, family := fontFaceSrcAndFamily(rule.Declarations)
			if opts.PreloadFonts && src != "" && !preloadedFonts[src] {
				preloadedFonts[src] = true
				result.FontFaceSrcs = append(result.FontFaceSrcs, src)
			}
			return opts.InlineFonts && family != "" && src != "" && fontFamilyIsCritical(family, criticalFontFamilies)
		default:
			// @media, @supports, @page, @import and anything else are
			// retained unconditionally: this engine, like the upstream
			// implementation it's grounded on, does not recurse into
			// nested at-rule bodies to filter their inner selectors.
			return true
		}
	})

	result.Empty = len(sheet.Rules) == 0
	return result
}

func isTriviallyRetained(sel string) bool {
	switch sel {
	case ":root", "html", "body":
		return true
	}
	return trivialSelectorPattern.MatchString(sel)
}

func matchesAny(matchers []config.Matcher, sel string) bool {
	for _, m := range matchers {
		if m.Match(sel) {
			return true
		}
	}
	return false
}

// seedAncestors pushes container's own ancestor chain (outermost first)
// into bf before the main walk begins, so selectors anchored above
// container (e.g. "html body div") can still be fast-path matched
// instead of being spuriously bloom-rejected for an ancestor hash that
// was never pushed because it sits outside the walked subtree.
func seedAncestors(container *dom.Node, bf *bloom.Filter) {
	var chain []*dom.Node
	for p := container.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == dom.ElementNode {
			chain = append(chain, p)
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		bf.Push(cssselect.ElementHashes(chain[i]))
	}
}

func walk(e *dom.Node, rs *ruleset.RuleSet, bf *bloom.Filter) {
	bf.Push(cssselect.ElementHashes(e))
	defer bf.Pop()

	for _, entry := range rs.CandidatesFor(e) {
		cand := entry.Payload.(*candidate)
		if cand.matched {
			continue
		}
		if !bf.MightContain(entry.Hashes) {
			continue
		}
		if cssselect.Matches(entry.Selector, e) {
			cand.matched = true
		}
	}
	for _, child := range e.ChildElements() {
		walk(child, rs, bf)
	}
}

// collectReferences scans decls for animation-name and font-family
// references, recording candidate keyframe names and font families a
// retained rule depends on.
func collectReferences(decls []cssparse.Declaration, keyframeNames, fontFamilies map[string]bool) {
	for _, d := range decls {
		switch strings.ToLower(d.Property) {
		case "animation", "animation-name":
			for _, part := range strings.Split(d.Value, ",") {
				for _, tok := range strings.Fields(part) {
					tok = strings.Trim(tok, "\"'")
					if tok == "" || animationKeywords[tok] || looksLikeCSSValue(tok) {
						continue
					}
					keyframeNames[tok] = true
				}
			}
		case "font-family", "font":
			for _, part := range strings.Split(d.Value, ",") {
				family := strings.Trim(strings.TrimSpace(part), "\"'")
				if family != "" {
					fontFamilies[family] = true
				}
			}
		}
	}
}

// looksLikeCSSValue reports whether tok is a time, number, or other
// non-identifier token that can't be an animation name.
func looksLikeCSSValue(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c >= '0' && c <= '9' || c == '.' || c == '-' && len(tok) > 1 && tok[1] >= '0' && tok[1] <= '9'
}

func fontFaceSrcAndFamily(decls []cssparse.Declaration) (src, family string) {
	for _, d := range decls {
		switch strings.ToLower(d.Property) {
		case "src":
			if src == "" {
				src = firstURL(d.Value)
			}
		case "font-family":
			family = strings.Trim(strings.TrimSpace(d.Value), "\"'")
		}
	}
	return src, family
}

var urlPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

func firstURL(value string) string {
	m := urlPattern.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	return m[1]
}

func fontFamilyIsCritical(family string, critical map[string]bool) bool {
	if critical[family] {
		return true
	}
	for c := range critical {
		if strings.EqualFold(c, family) {
			return true
		}
	}
	return false
}

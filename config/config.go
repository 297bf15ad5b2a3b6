// Package config holds the options that drive a critical-CSS extraction
// pass. It mirrors the shape of critters-rs's CrittersOptions: a plain
// value type with documented defaults, constructed once per call to
// critters.Process rather than threaded through package-level state.
package config

import (
	"fmt"
	"regexp"
)

// PreloadStrategy controls how a non-critical external stylesheet is
// deferred once its critical rules have been inlined.
type PreloadStrategy int

const (
	// BodyPreload appends a copy of the <link rel=stylesheet> (without
	// its id) to the end of <body> and turns the original link into
	// rel="preload" as="style" where it stands.
	// This is the default, matching critters-rs.
	BodyPreload PreloadStrategy = iota
	// Body moves the original <link rel=stylesheet> itself to the end
	// of <body>, unmodified.
	Body
	// Media sets media="print" on the link and an onload handler that
	// swaps it back to the link's original media (or "all"), with a
	// <noscript> fallback carrying a copy of the link taken before those
	// changes (id removed).
	Media
	// Swap uses rel="preload" with an onload handler that swaps rel
	// back to "stylesheet", plus a <noscript> fallback.
	Swap
	// SwapHigh sets rel="alternate stylesheet preload", as=style, and
	// title="styles" on the link, with an onload handler that clears
	// the title and swaps rel back to "stylesheet".
	SwapHigh
	// None leaves the <link> exactly as it was found; only the
	// stylesheet's critical rules are inlined.
	None
)

func (p PreloadStrategy) String() string {
	switch p {
	case BodyPreload:
		return "body-preload"
	case Body:
		return "body"
	case Media:
		return "media"
	case Swap:
		return "swap"
	case SwapHigh:
		return "swap-high"
	case None:
		return "none"
	default:
		return "unknown"
	}
}

// KeyframesStrategy controls which @keyframes rules survive extraction.
type KeyframesStrategy int

const (
	// KeyframesCritical keeps only keyframes referenced by a surviving
	// animation/animation-name declaration. Default.
	KeyframesCritical KeyframesStrategy = iota
	// KeyframesAll keeps every @keyframes rule regardless of usage.
	KeyframesAll
	// KeyframesNone strips all @keyframes rules.
	KeyframesNone
)

// Matcher decides whether an href (of a stylesheet, or an
// allow-listed selector) matches a configured pattern. It supports an
// exact literal (no substring matching) or a compiled regular expression,
// mirroring critters-rs's SelectorMatcher enum.
type Matcher struct {
	literal string
	re      *regexp.Regexp
}

// NewLiteralMatcher returns a Matcher that compares for exact equality.
func NewLiteralMatcher(s string) Matcher {
	return Matcher{literal: s}
}

// NewRegexMatcher compiles pattern and returns a Matcher backed by it.
func NewRegexMatcher(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Matcher{}, fmt.Errorf("config: compiling matcher regexp %q: %w", pattern, err)
	}
	return Matcher{re: re}, nil
}

// Match reports whether s satisfies the matcher.
func (m Matcher) Match(s string) bool {
	if m.re != nil {
		return m.re.MatchString(s)
	}
	return m.literal == s
}

// IsZero reports whether the matcher was never configured.
func (m Matcher) IsZero() bool {
	return m.re == nil && m.literal == ""
}

// Config collects every option in spec.md's External Interfaces
// section. Fields default to critters-rs's documented defaults via
// DefaultConfig.
type Config struct {
	// Path is the on-disk root assets are resolved against.
	Path string
	// PublicPath, if set, is stripped as a prefix from an href before
	// resolving it under Path.
	PublicPath string

	// External enables resolving and processing <link rel=stylesheet>
	// stylesheets in addition to inline <style> elements.
	External bool
	// AdditionalStylesheets lists extra CSS files (relative to Path) to
	// be considered alongside the document's own stylesheets.
	AdditionalStylesheets []string

	// PreloadStrategy controls how non-critical external stylesheets
	// are deferred (spec.md §4.7).
	PreloadStrategy PreloadStrategy
	// NoscriptFallback adds a <noscript> fallback carrying a copy of
	// the original link (id removed) next to the Media/Swap/SwapHigh strategies' JS
	// hand-off point, so a JS-disabled client still loads the sheet.
	NoscriptFallback bool
	// Keyframes controls which @keyframes rules are retained.
	Keyframes KeyframesStrategy

	// PreloadFonts, if true, emits a <link rel=preload as=font> for
	// every @font-face src encountered.
	PreloadFonts bool
	// InlineFonts, if true, keeps @font-face rules whose family is
	// referenced by a retained declaration's font-family value.
	InlineFonts bool

	// PruneSource removes a <style> element entirely once it no longer
	// carries any retained rules. For an external stylesheet this is the
	// <style> inserted for it; the <link> itself is not removed.
	PruneSource bool
	// ReduceInlineStyles also runs extraction against pre-existing
	// inline <style> elements (as opposed to only external sheets
	// pulled in via <link>).
	ReduceInlineStyles bool
	// MergeStylesheets combines all inlined <style> blocks produced by
	// a single Process call into one element.
	MergeStylesheets bool

	// AllowRules force-retains any selector matched by one of these
	// matchers, regardless of whether it matches the document.
	AllowRules []Matcher
	// ExcludeExternal prevents stylesheets whose href matches one of
	// these matchers from being processed as external at all; they are
	// left completely untouched.
	ExcludeExternal []Matcher

	// InlineThreshold and MinimumExternalSize are accepted and parsed
	// but not yet consulted, see SPEC_FULL.md Open Question 2.
	InlineThreshold     int
	MinimumExternalSize int

	// Compress minifies the serialized CSS of retained rules.
	Compress bool
}

// DefaultConfig returns the documented defaults, matching critters-rs's
// Default impl for CrittersOptions.
func DefaultConfig() Config {
	return Config{
		Path:               "./dist",
		External:           true,
		PreloadStrategy:    BodyPreload,
		NoscriptFallback:   true,
		Keyframes:          KeyframesCritical,
		PreloadFonts:       true,
		ReduceInlineStyles: true,
		MergeStylesheets:   true,
		Compress:           true,
	}
}

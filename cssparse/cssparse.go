// Package cssparse wraps aymerick/douceur's CSS tokenizer/parser and AST
// with the conveniences the extraction pipeline needs: stable rule
// identity, selector-list splitting that respects parenthesis nesting,
// and at-rule classification. It plays the role the teacher's
// dom/style/cssom/douceuradapter package played for cascade matching,
// adapted for existence-matching instead.
package cssparse

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Stylesheet is a parsed CSS source file or <style> element, along with
// the index identifying which source it came from (the caller-assigned
// position of that source; critters.Process uses its index in the list
// of <style> elements it collects for the document).
type Stylesheet struct {
	SourceIndex int
	Rules       []*Rule
}

// Rule wraps a douceur AST rule together with the stable identity
// needed by the extractor's removal set.
type Rule struct {
	ID   RuleID
	ast  *css.Rule
	Kind Kind
	// Name is the at-rule name, without its leading "@", lower-cased
	// ("media", "font-face", "keyframes", "-webkit-keyframes", ...).
	// Empty for qualified (style) rules.
	Name string
	// Prelude is an at-rule's raw prelude text, trimmed: the animation
	// name for @keyframes ("spin"), the media query for @media. Empty
	// for qualified (style) rules, which use Selectors instead.
	Prelude string
	// Selectors holds the individually-splittable parts of a qualified
	// rule's prelude (e.g. "h1, h2.title" -> ["h1", "h2.title"]). Empty
	// for at-rules.
	Selectors []string
	// Declarations are the rule's own property/value pairs (for
	// qualified rules, @font-face, and similar leaf at-rules).
	Declarations []Declaration
	// Nested holds the child rules of a block at-rule such as @media or
	// @keyframes.
	Nested []*Rule
}

// Declaration is a single CSS property/value pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Kind classifies a Rule for the extractor's second pass.
type Kind int

const (
	// KindStyle is an ordinary qualified rule (a selector list plus
	// declarations).
	KindStyle Kind = iota
	// KindFontFace is an @font-face rule.
	KindFontFace
	// KindKeyframes is an @keyframes rule (and its vendor-prefixed
	// variants).
	KindKeyframes
	// KindMedia is an @media rule with nested rules.
	KindMedia
	// KindOther is any other at-rule (@import, @supports, @page, ...),
	// always retained unconditionally per spec.md §4.5.
	KindOther
)

// RuleID is a stable, comparable identity for a parsed rule, usable as
// a set key across a filtering pass. See SPEC_FULL.md §12.
type RuleID struct {
	SourceIndex int
	Index       int
}

// Parse parses a CSS source string (the contents of a <style> element
// or an external stylesheet file) and assigns it sourceIndex as its
// stable identity prefix.
func Parse(src string, sourceIndex int) (*Stylesheet, error) {
	ast, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	sheet := &Stylesheet{SourceIndex: sourceIndex}
	for i, r := range ast.Rules {
		sheet.Rules = append(sheet.Rules, wrapRule(r, sourceIndex, i))
	}
	return sheet, nil
}

func wrapRule(r *css.Rule, sourceIndex, index int) *Rule {
	rule := &Rule{
		ID:           RuleID{SourceIndex: sourceIndex, Index: index},
		ast:          r,
		Declarations: wrapDeclarations(r.Declarations),
	}
	if r.Kind == css.AtRule {
		name := strings.ToLower(strings.TrimPrefix(r.Name, "@"))
		rule.Name = name
		rule.Prelude = strings.TrimSpace(r.Prelude)
		switch {
		case name == "font-face":
			rule.Kind = KindFontFace
		case strings.Contains(name, "keyframes"):
			rule.Kind = KindKeyframes
		case name == "media":
			rule.Kind = KindMedia
		default:
			rule.Kind = KindOther
		}
		for i, nested := range r.Rules {
			rule.Nested = append(rule.Nested, wrapRule(nested, sourceIndex, i))
		}
	} else {
		rule.Kind = KindStyle
		rule.Selectors = splitSelectorList(r.Prelude)
	}
	return rule
}

func wrapDeclarations(decls []*css.Declaration) []Declaration {
	out := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, Declaration{Property: d.Property, Value: d.Value, Important: d.Important})
	}
	return out
}

// splitSelectorList splits a comma-separated selector prelude into its
// individual selectors, respecting parenthesis nesting so that
// functional pseudo-classes like :not(a, b) aren't split internally.
func splitSelectorList(prelude string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range prelude {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if sel := strings.TrimSpace(prelude[start:i]); sel != "" {
					out = append(out, sel)
				}
				start = i + 1
			}
		}
	}
	if sel := strings.TrimSpace(prelude[start:]); sel != "" {
		out = append(out, sel)
	}
	return out
}

// SetSelectors rewrites the rule's selector list, narrowing it to the
// ones retained by the extractor's first pass. It mutates the
// underlying douceur AST node so Serialize reflects the change.
func (r *Rule) SetSelectors(selectors []string) {
	r.Selectors = selectors
	r.ast.Prelude = strings.Join(selectors, ", ")
	r.ast.Selectors = append([]string(nil), selectors...)
}

// Serialize renders a stylesheet back to CSS text using douceur's own
// serializer, after retain has pruned ast.Rules to the kept rules. When
// compress is true the result is minified, mirroring the original's
// PrinterOptions{minify: self.options.compress}; douceur's serializer
// always pretty-prints, so minification is a separate pass over its
// output rather than a printer option.
func (s *Stylesheet) Serialize(compress bool) string {
	ast := &css.Stylesheet{}
	for _, r := range s.Rules {
		ast.Rules = append(ast.Rules, r.ast)
	}
	out := ast.String()
	if compress {
		out = minify(out)
	}
	return out
}

// minify collapses douceur's pretty-printed CSS into a single-line,
// whitespace-trimmed form: runs of whitespace outside quoted strings
// become one space, that space is then dropped entirely next to the
// punctuation delimiting rules/declarations, and a declaration's
// trailing semicolon is dropped when it is the last one before a
// closing brace. Text inside a quoted string (e.g. content: "a: b")
// is copied through untouched, including its internal spacing.
func minify(src string) string {
	runes := []rune(src)
	var out []rune
	var quote rune
	pendingSpace := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			out = append(out, r)
			if r == quote {
				quote = 0
			}
			continue
		}
		if r == '\'' || r == '"' {
			if pendingSpace && len(out) > 0 && !isDelimiter(out[len(out)-1]) {
				out = append(out, ' ')
			}
			pendingSpace = false
			quote = r
			out = append(out, r)
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
			pendingSpace = true
			continue
		}
		if r == ';' && nextNonSpace(runes, i+1) == '}' {
			pendingSpace = false
			continue
		}
		if pendingSpace {
			prevKeepsSpace := len(out) > 0 && !isDelimiter(out[len(out)-1])
			nextKeepsSpace := !isDelimiter(r)
			if prevKeepsSpace && nextKeepsSpace {
				out = append(out, ' ')
			}
			pendingSpace = false
		}
		out = append(out, r)
	}
	return strings.TrimSpace(string(out))
}

// isDelimiter reports whether r is CSS punctuation that never needs a
// surrounding space once whitespace has been collapsed.
func isDelimiter(r rune) bool {
	switch r {
	case '{', '}', ':', ',', ';':
		return true
	}
	return false
}

func nextNonSpace(runes []rune, i int) rune {
	for ; i < len(runes); i++ {
		switch runes[i] {
		case '\n', '\t', '\r', ' ':
			continue
		}
		return runes[i]
	}
	return 0
}

// Retain replaces the stylesheet's rule list in place, keeping only the
// rules for which keep returns true. It mirrors douceur-free Go's
// idiomatic in-place filter, equivalent in effect to the original's
// `ast.rules.0.retain(...)`.
func (s *Stylesheet) Retain(keep func(*Rule) bool) {
	kept := s.Rules[:0]
	for _, r := range s.Rules {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	s.Rules = kept
}

package cssselect

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax reports a selector that could not be parsed. The extractor
// treats this as a recoverable error per spec.md §7: the offending
// selector is dropped from consideration and logged, not fatal.
type ErrSyntax struct {
	Selector string
	Pos      int
	Reason   string
}

func (e *ErrSyntax) Error() string {
	return fmt.Sprintf("cssselect: invalid selector %q at %d: %s", e.Selector, e.Pos, e.Reason)
}

// Compile parses a single selector (no top-level commas, split a
// comma-separated selector list with SplitList first).
func Compile(src string) (*Selector, error) {
	p := &parser{src: src, pos: 0}
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, &ErrSyntax{Selector: src, Pos: p.pos, Reason: "unexpected trailing input"}
	}
	sel.Source = strings.TrimSpace(src)
	return sel, nil
}

// SplitList splits a top-level comma-separated selector list, leaving
// commas nested inside :not(...) (or any other parens) untouched.
func SplitList(list string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range list {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if s := strings.TrimSpace(list[start:i]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(list[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '-' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// parseSelector parses a full combinator chain, building the result
// right-to-left: it first parses a left-to-right sequence of compounds
// and combinators, then folds them into a right-anchored linked list
// so Key is always the rightmost compound.
func (p *parser) parseSelector() (*Selector, error) {
	type step struct {
		compound   Compound
		combinator Combinator // combinator BEFORE this compound
		hasComb    bool
	}
	var steps []step

	compound, err := p.parseCompound()
	if err != nil {
		return nil, err
	}
	steps = append(steps, step{compound: compound})

	for {
		hadSpace := p.skipSpaceReturningWhetherAny()
		if p.pos >= len(p.src) {
			break
		}
		var comb Combinator
		explicit := false
		switch p.peek() {
		case '>':
			comb, explicit = Child, true
			p.pos++
		case '+':
			comb, explicit = NextSibling, true
			p.pos++
		case '~':
			comb, explicit = SubsequentSibling, true
			p.pos++
		case ',':
			// caller's responsibility to split lists; stop here.
			goto done
		default:
			if !hadSpace {
				goto done
			}
			comb = Descendant
		}
		if explicit {
			p.skipSpace()
		}
		next, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		steps = append(steps, step{compound: next, combinator: comb, hasComb: true})
	}
done:

	// Fold the left-to-right parse into a right-anchored chain: each
	// new (rightward) compound becomes the outer Selector, wrapping
	// everything parsed so far as its Ancestor.
	var sel *Selector
	for i := 0; i < len(steps); i++ {
		cur := &Selector{Key: steps[i].compound}
		if sel != nil {
			cur.Combinator = steps[i].combinator
			cur.Ancestor = sel
		}
		sel = cur
	}
	return sel, nil
}

func (p *parser) skipSpaceReturningWhetherAny() bool {
	start := p.pos
	p.skipSpace()
	return p.pos > start
}

func (p *parser) parseCompound() (Compound, error) {
	var c Compound
	sawAny := false
	for p.pos < len(p.src) {
		switch p.peek() {
		case '*':
			c.Simples = append(c.Simples, SimpleSelector{Kind: KindUniversal})
			p.pos++
			sawAny = true
		case '#':
			p.pos++
			id, err := p.parseIdent()
			if err != nil {
				return c, err
			}
			c.Simples = append(c.Simples, SimpleSelector{Kind: KindID, Value: id})
			sawAny = true
		case '.':
			p.pos++
			class, err := p.parseIdent()
			if err != nil {
				return c, err
			}
			c.Simples = append(c.Simples, SimpleSelector{Kind: KindClass, Value: class})
			sawAny = true
		case '[':
			simple, err := p.parseAttr()
			if err != nil {
				return c, err
			}
			c.Simples = append(c.Simples, simple)
			sawAny = true
		case ':':
			simple, err := p.parsePseudo()
			if err != nil {
				return c, err
			}
			// Pseudo-elements don't constrain element matching; only
			// pseudo-classes are kept as simple selectors.
			if simple != nil {
				c.Simples = append(c.Simples, *simple)
			}
			sawAny = true
		default:
			if isIdentStart(p.peek()) {
				ident, err := p.parseIdent()
				if err != nil {
					return c, err
				}
				c.Simples = append(c.Simples, SimpleSelector{Kind: KindType, Value: strings.ToLower(ident)})
				sawAny = true
				continue
			}
			if !sawAny {
				return c, &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "expected a simple selector"}
			}
			return c, nil
		}
	}
	if !sawAny {
		return c, &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "empty compound selector"}
	}
	return c, nil
}

func (p *parser) parseIdent() (string, error) {
	start := p.pos
	if p.pos >= len(p.src) || !isIdentStart(p.src[p.pos]) {
		return "", &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "expected identifier"}
	}
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseAttr() (SimpleSelector, error) {
	p.pos++ // '['
	p.skipSpace()
	name, err := p.parseIdent()
	if err != nil {
		return SimpleSelector{}, err
	}
	p.skipSpace()
	simple := SimpleSelector{Kind: KindAttr, AttrName: name, AttrOp: AttrPresence}
	if p.peek() == ']' {
		p.pos++
		return simple, nil
	}
	switch p.peek() {
	case '=':
		simple.AttrOp = AttrEqual
		p.pos++
	case '~':
		simple.AttrOp = AttrIncludes
		p.pos += 2
	case '|':
		simple.AttrOp = AttrDashMatch
		p.pos += 2
	case '^':
		simple.AttrOp = AttrPrefix
		p.pos += 2
	case '$':
		simple.AttrOp = AttrSuffix
		p.pos += 2
	case '*':
		simple.AttrOp = AttrSubstring
		p.pos += 2
	default:
		return simple, &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "unsupported attribute operator"}
	}
	p.skipSpace()
	val, err := p.parseAttrValue()
	if err != nil {
		return simple, err
	}
	simple.AttrValue = val
	p.skipSpace()
	// optional case-sensitivity flag ("i" or "s"); accepted, not used
	// for comparisons (attribute values in HTML are ASCII-lowercase by
	// convention in the documents this engine targets).
	if p.peek() == 'i' || p.peek() == 's' || p.peek() == 'I' || p.peek() == 'S' {
		p.pos++
		p.skipSpace()
	}
	if p.peek() != ']' {
		return simple, &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "expected ']'"}
	}
	p.pos++
	return simple, nil
}

func (p *parser) parseAttrValue() (string, error) {
	if p.peek() == '"' || p.peek() == '\'' {
		quote := p.peek()
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.src) {
			return "", &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "unterminated attribute value"}
		}
		val := p.src[start:p.pos]
		p.pos++ // closing quote
		return val, nil
	}
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ']' && !isSpace(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parsePseudo() (*SimpleSelector, error) {
	p.pos++ // ':'
	isElement := false
	if p.peek() == ':' {
		isElement = true
		p.pos++
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	name = strings.ToLower(name)
	if isElement || name == "before" || name == "after" {
		// pseudo-element: doesn't constrain matching against the host
		// element itself.
		if p.peek() == '(' {
			if err := p.skipParenGroup(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	hasArg := p.peek() == '('
	var arg string
	if hasArg {
		p.pos++
		start := p.pos
		depth := 1
		for p.pos < len(p.src) && depth > 0 {
			switch p.src[p.pos] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth > 0 {
				p.pos++
			}
		}
		if p.pos >= len(p.src) {
			return nil, &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "unterminated pseudo-class argument"}
		}
		arg = p.src[start:p.pos]
		p.pos++ // ')'
	}

	simple := SimpleSelector{Kind: KindPseudoClass}
	switch name {
	case "root":
		simple.Pseudo = PseudoRoot
	case "first-child":
		simple.Pseudo = PseudoFirstChild
	case "last-child":
		simple.Pseudo = PseudoLastChild
	case "only-child":
		simple.Pseudo = PseudoOnlyChild
	case "first-of-type":
		simple.Pseudo = PseudoFirstOfType
	case "last-of-type":
		simple.Pseudo = PseudoLastOfType
	case "empty":
		simple.Pseudo = PseudoEmpty
	case "nth-child", "nth-last-child":
		a, b, err := parseNth(strings.TrimSpace(arg))
		if err != nil {
			return nil, &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: err.Error()}
		}
		if name == "nth-child" {
			simple.Pseudo = PseudoNthChild
		} else {
			simple.Pseudo = PseudoNthLastChild
		}
		simple.NthA, simple.NthB = a, b
	case "not":
		simple.Pseudo = PseudoNot
		for _, part := range SplitList(arg) {
			nested, err := Compile(part)
			if err != nil {
				return nil, err
			}
			simple.Not = append(simple.Not, nested)
		}
	case "any-link":
		simple.Pseudo = PseudoAnyLink
	case "link":
		simple.Pseudo = PseudoLink
	case "visited":
		simple.Pseudo = PseudoVisited
	case "active":
		simple.Pseudo = PseudoActive
	case "hover":
		simple.Pseudo = PseudoHover
	case "focus":
		simple.Pseudo = PseudoFocus
	case "enabled":
		simple.Pseudo = PseudoEnabled
	case "disabled":
		simple.Pseudo = PseudoDisabled
	case "checked":
		simple.Pseudo = PseudoChecked
	case "indeterminate":
		simple.Pseudo = PseudoIndeterminate
	default:
		return nil, &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "unsupported pseudo-class :" + name}
	}
	return &simple, nil
}

func (p *parser) skipParenGroup() error {
	p.pos++ // '('
	depth := 1
	for p.pos < len(p.src) && depth > 0 {
		switch p.src[p.pos] {
		case '(':
			depth++
		case ')':
			depth--
		}
		p.pos++
	}
	if depth != 0 {
		return &ErrSyntax{Selector: p.src, Pos: p.pos, Reason: "unterminated pseudo-element argument"}
	}
	return nil
}

// parseNth parses the an+b micro-syntax used by :nth-child() and
// :nth-last-child(), including the "odd"/"even" keywords.
func parseNth(expr string) (a, b int, err error) {
	expr = strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	switch expr {
	case "odd":
		return 2, 1, nil
	case "even":
		return 2, 0, nil
	}
	if !strings.Contains(expr, "n") {
		n, err := strconv.Atoi(expr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid nth-child expression %q", expr)
		}
		return 0, n, nil
	}
	idx := strings.Index(expr, "n")
	aPart := expr[:idx]
	switch aPart {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		a, err = strconv.Atoi(aPart)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid nth-child coefficient %q", aPart)
		}
	}
	bPart := expr[idx+1:]
	if bPart == "" {
		b = 0
	} else {
		b, err = strconv.Atoi(bPart)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid nth-child offset %q", bPart)
		}
	}
	return a, b, nil
}

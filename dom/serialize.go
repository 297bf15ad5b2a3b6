package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Serialize renders the document back to an HTML string using
// x/net/html's own renderer. Parsing decodes entities in text and
// rendering re-escapes &, <, >, " and ', so escaped markup such as
// &amp; or &lt; in the source is still escaped in the output (the
// round-trip guarantee SPEC_FULL.md §12 describes). It is not
// byte-for-byte: other named entities (e.g. &nbsp;) are written back
// as the characters they stand for.
func (d *Document) Serialize() (string, error) {
	var b strings.Builder
	if err := html.Render(&b, d.html); err != nil {
		return "", err
	}
	return b.String(), nil
}

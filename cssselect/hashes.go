package cssselect

import (
	"strings"

	"github.com/essentialcss/critters/dom"
)

// ElementHashes computes the hashes an element contributes to the
// ancestor bloom filter while it is being visited: one for its tag
// name, one for its id (if present), and one for each of its classes.
// Grounded on filter.rs's `each_relevant_element_hash`, which excludes
// attributes other than class/id/the local name from the filter (this
// engine never indexes plain attribute selectors by hash, so there is
// nothing else to contribute).
func ElementHashes(e *dom.Node) []uint32 {
	hashes := make([]uint32, 0, 2+len(e.Attrs().ClassList()))
	hashes = append(hashes, hashString(strings.ToLower(e.TagName())))
	if id, ok := e.Attrs().Get("id"); ok && id != "" {
		hashes = append(hashes, hashString("#"+id))
	}
	for _, c := range e.Attrs().ClassList() {
		hashes = append(hashes, hashString("."+c))
	}
	return hashes
}

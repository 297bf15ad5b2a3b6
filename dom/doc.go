// Package dom provides a mutable, concurrency-safe view over a parsed
// HTML document, layered on top of golang.org/x/net/html. It plays the
// role the teacher's dom package played over golang.org/x/net/html and
// styledtree, but drops everything related to computed/cascading
// styles (Non-goal: this system does not implement the CSS cascade) in
// favor of the attribute/class-list bookkeeping a critical-CSS
// extractor actually needs: a precomputed class list per element
// (refreshed whenever "class" changes) and an insertion-ordered
// attribute map, mirroring critters-rs's own html::Attributes type.
//
// Read access (Parent/Children/traversal) is backed by tree.Node, the
// same mutex-protected generic tree the teacher uses elsewhere in this
// module, so a single parsed Document can be traversed concurrently
// while rule matching runs. Mutation (used by the document rewriter)
// goes through the helpers in mutation.go, which change both the
// underlying golang.org/x/net/html nodes that Serialize renders from
// and the tree.Node mirror that traversal reads.
package dom

import "github.com/npillmayer/schuko/tracing"

// tracer returns a tracer for this package's channel.
func tracer() tracing.Trace {
	return tracing.Select("critters.dom")
}

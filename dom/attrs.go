package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// AttributeMap is an insertion-ordered attribute list with a
// precomputed class list, adapted from critters-rs's
// html::attributes::Attributes (src/html/attributes.rs): an IndexMap
// keyed by expanded (namespace, local) name, plus a class_list cache
// split from the "class" attribute and refreshed whenever it changes.
// x/net/html doesn't track XML namespaces on HTML attributes in
// practice, so this map keys purely by local name.
type AttributeMap struct {
	order     []string
	values    map[string]string
	classList []string
}

func newAttributeMap(attrs []html.Attribute) *AttributeMap {
	m := &AttributeMap{values: make(map[string]string, len(attrs))}
	for _, a := range attrs {
		m.order = append(m.order, a.Key)
		m.values[a.Key] = a.Val
	}
	m.rebuildClassList()
	return m
}

func (m *AttributeMap) rebuildClassList() {
	class, ok := m.values["class"]
	if !ok || strings.TrimSpace(class) == "" {
		m.classList = nil
		return
	}
	m.classList = strings.Fields(class)
}

// Get returns an attribute's value and whether it is present.
func (m *AttributeMap) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Has reports whether the attribute is present.
func (m *AttributeMap) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Set adds or updates an attribute, keeping insertion order for new
// keys. Setting "class" refreshes the cached class list.
func (m *AttributeMap) Set(name, value string) {
	if _, exists := m.values[name]; !exists {
		m.order = append(m.order, name)
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[name] = value
	if name == "class" {
		m.rebuildClassList()
	}
}

// Remove deletes an attribute, if present.
func (m *AttributeMap) Remove(name string) {
	if _, ok := m.values[name]; !ok {
		return
	}
	delete(m.values, name)
	for i, k := range m.order {
		if k == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if name == "class" {
		m.rebuildClassList()
	}
}

// Keys returns the attribute names in insertion order.
func (m *AttributeMap) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// HasClass reports whether name appears in the cached class list.
func (m *AttributeMap) HasClass(name string) bool {
	for _, c := range m.classList {
		if c == name {
			return true
		}
	}
	return false
}

// ClassList returns the cached, whitespace-split class names.
func (m *AttributeMap) ClassList() []string {
	out := make([]string, len(m.classList))
	copy(out, m.classList)
	return out
}

// asHTMLAttrs renders the map back into x/net/html's attribute slice,
// used when a mutation needs to push changes onto the underlying
// html.Node (see syncAttrs in mutation.go).
func (m *AttributeMap) asHTMLAttrs() []html.Attribute {
	out := make([]html.Attribute, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, html.Attribute{Key: k, Val: m.values[k]})
	}
	return out
}

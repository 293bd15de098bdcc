// Package vclcontext implements the mutable per-request execution state:
// req, bereq, beresp, resp, obj, client, time, and the ACL/table/backend/
// director registries.
package vclcontext

import "strings"

// Headers is an ordered, case-preserving-but-case-insensitive-lookup header
// collection: names keep their original casing on lookup and iteration but
// compare case-insensitively, so hyphenated identifiers like `User-Agent`
// round-trip. A header set to the empty string is considered unset.
type Headers struct {
	order []string // canonical (as-set) names, in insertion order
	index map[string]int
	value map[string]string
}

// NewHeaders returns an empty header collection.
func NewHeaders() *Headers {
	return &Headers{index: map[string]int{}, value: map[string]string{}}
}

func foldKey(name string) string { return strings.ToLower(name) }

// Get returns the header's value, or "" if unset (which includes a header
// explicitly set to "").
func (h *Headers) Get(name string) string {
	fk := foldKey(name)
	if v, ok := h.value[fk]; ok {
		return v
	}
	return ""
}

// Has reports whether name is present with a non-empty value.
func (h *Headers) Has(name string) bool {
	return h.Get(name) != ""
}

// Set writes value under name. Setting "" is equivalent to Unset.
func (h *Headers) Set(name, value string) {
	fk := foldKey(name)
	if value == "" {
		h.Unset(name)
		return
	}
	if _, ok := h.value[fk]; !ok {
		h.index[fk] = len(h.order)
		h.order = append(h.order, name)
	}
	h.value[fk] = value
}

// Unset removes name entirely.
func (h *Headers) Unset(name string) {
	fk := foldKey(name)
	if i, ok := h.index[fk]; ok {
		h.order = append(h.order[:i], h.order[i+1:]...)
		for k, idx := range h.index {
			if idx > i {
				h.index[k] = idx - 1
			}
		}
		delete(h.index, fk)
	}
	delete(h.value, fk)
}

// Names returns header names in insertion order, canonical spelling.
func (h *Headers) Names() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	c := NewHeaders()
	for _, name := range h.order {
		c.Set(name, h.Get(name))
	}
	return c
}

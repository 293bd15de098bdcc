// Package queryutil implements std.querystring.* on net/url.
// No example repo in the pack wires a third-party query-string library and
// net/url's Values type already gives VCL's get/set/filter semantics for
// free, so this one concern stays on stdlib.
package queryutil

import (
	"net/url"
	"sort"
	"strings"
)

// Get implements std.querystring.get(qs, name): the first value for name, or
// "" if absent.
func Get(qs, name string) string {
	values, err := url.ParseQuery(qs)
	if err != nil {
		return ""
	}
	return values.Get(name)
}

// Set implements std.querystring.set(qs, name, value): replaces (or adds)
// name's value. The result lists parameters sorted by key.
func Set(qs, name, value string) string {
	values, err := url.ParseQuery(qs)
	if err != nil {
		values = url.Values{}
	}
	values.Set(name, value)
	return encodeSorted(values)
}

// Add implements std.querystring.add(qs, name, value): appends an additional
// value for name without removing existing ones.
func Add(qs, name, value string) string {
	values, err := url.ParseQuery(qs)
	if err != nil {
		values = url.Values{}
	}
	values.Add(name, value)
	return encodeSorted(values)
}

// Remove implements std.querystring.remove(qs, name): drops every value for
// name.
func Remove(qs, name string) string {
	values, err := url.ParseQuery(qs)
	if err != nil {
		return qs
	}
	values.Del(name)
	return encodeSorted(values)
}

// Filter implements std.querystring.filtersep(qs, names, sep): removes every
// parameter whose name appears in the sep-separated names list.
func Filter(qs, names, sep string) string {
	if sep == "" {
		sep = ","
	}
	drop := map[string]bool{}
	for _, n := range strings.Split(names, sep) {
		drop[n] = true
	}
	values, err := url.ParseQuery(qs)
	if err != nil {
		return qs
	}
	for k := range values {
		if drop[k] {
			values.Del(k)
		}
	}
	return encodeSorted(values)
}

// Clean implements std.querystring.clean(qs): drops empty-valued params and
// normalizes encoding.
func Clean(qs string) string {
	values, err := url.ParseQuery(qs)
	if err != nil {
		return ""
	}
	for k, vs := range values {
		var kept []string
		for _, v := range vs {
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			values.Del(k)
		} else {
			values[k] = kept
		}
	}
	return encodeSorted(values)
}

func encodeSorted(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		for j, v := range values[k] {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Package httputil implements std.http.*: small header and status-line
// helpers that don't belong on vclcontext.Headers itself because they
// reason about HTTP semantics (cache-control directives, status classes)
// rather than raw storage.
package httputil

import (
	"strconv"
	"strings"
)

// StatusClass implements std.http.status_class(code): the hundreds digit,
// e.g. 404 -> 4.
func StatusClass(code int) int {
	return code / 100
}

// IsError implements std.http.is_error(code): true for 4xx/5xx.
func IsError(code int) bool {
	c := StatusClass(code)
	return c == 4 || c == 5
}

// CacheControlDirective implements std.http.cache_control(header, name):
// extracts a directive's value from a Cache-Control header, or "" if the
// directive is absent. Valueless directives (e.g. "no-store") return "1".
func CacheControlDirective(header, name string) string {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		if key != strings.ToLower(name) {
			continue
		}
		if len(kv) == 1 {
			return "1"
		}
		return strings.Trim(strings.TrimSpace(kv[1]), `"`)
	}
	return ""
}

// HeaderContains implements std.http.header_contains(value, token): true iff
// token appears in value's comma-separated list (case-insensitive, as used
// for Vary/Connection matching).
func HeaderContains(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// ParseMaxAge implements std.http.max_age(cacheControl): the numeric max-age
// directive, or -1 if absent or invalid.
func ParseMaxAge(cacheControl string) int {
	v := CacheControlDirective(cacheControl, "max-age")
	if v == "" || v == "1" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// Package esi implements esi.remove and esi.is_esi, plus Process for Go
// callers (it is not registered as a VCL built-in): minimal Edge Side
// Includes tag handling over response bodies. Real ESI fetches <esi:include>
// fragments over the network; that's out of scope here, so process resolves
// includes through a caller-supplied fetch function instead, and strips
// unresolvable or disallowed tags.
package esi

import (
	"regexp"
	"strings"
)

var (
	includeTag = regexp.MustCompile(`<esi:include\s+src="([^"]*)"\s*/?>`)
	commentTag = regexp.MustCompile(`<esi:comment[^>]*/?>`)
	removeTag  = regexp.MustCompile(`(?s)<esi:remove>.*?</esi:remove>`)
)

// Fetch resolves an ESI include's src attribute to fragment content.
type Fetch func(src string) (string, error)

// Process expands <esi:include> through fetch,
// drops <esi:comment>, and strips <esi:remove>...</esi:remove> blocks.
// Includes that fail to resolve are replaced with an empty string rather
// than aborting the whole body, matching ESI's fail-soft philosophy.
func Process(body string, fetch Fetch) string {
	body = removeTag.ReplaceAllString(body, "")
	body = commentTag.ReplaceAllString(body, "")
	body = includeTag.ReplaceAllStringFunc(body, func(match string) string {
		sub := includeTag.FindStringSubmatch(match)
		if len(sub) != 2 || fetch == nil {
			return ""
		}
		content, err := fetch(sub[1])
		if err != nil {
			return ""
		}
		return content
	})
	return body
}

// Remove implements esi.remove(body): strips <esi:remove> blocks only,
// leaving includes and comments untouched — used when ESI processing itself
// is disabled but authored markup still needs the non-ESI fallback content.
func Remove(body string) string {
	return removeTag.ReplaceAllString(body, "")
}

// HasESI implements esi.is_esi(body): a cheap presence check used to decide
// whether processing is worth invoking at all.
func HasESI(body string) bool {
	return strings.Contains(body, "<esi:")
}

// Package acceptlang implements accept.language_lookup/media_lookup on
// golang.org/x/text/language: VCL's Accept-Language matching is exactly
// what this package's matcher was built for.
package acceptlang

import (
	"golang.org/x/text/language"
)

// LanguageLookup implements accept.language_lookup(available, default,
// header); the Go parameters take the header first. It parses the
// Accept-Language header, matches it against the
// available (`:`-separated) tag list, and falls back to defaultTag when
// nothing is acceptable. A present-but-unmatched header (every candidate
// scores language.No against every available tag) also falls back to
// defaultTag rather than taking the matcher's best-effort index.
func LanguageLookup(header, available, defaultTag string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return defaultTag
	}
	supported := splitTags(available)
	if len(supported) == 0 {
		return defaultTag
	}
	matcher := language.NewMatcher(supported)
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return defaultTag
	}
	return supported[index].String()
}

// MediaLookup implements accept.media_lookup(available, default, header),
// with the Go parameters in the same order as LanguageLookup's: a
// simplified Accept-style content-type negotiation reusing the same
// quality-weighted matcher, treating media types as opaque tags.
func MediaLookup(header, available, defaultType string) string {
	return LanguageLookup(header, available, defaultType)
}

func splitTags(list string) []language.Tag {
	var out []language.Tag
	start := 0
	for i := 0; i <= len(list); i++ {
		if i == len(list) || list[i] == ':' {
			tag := trimSpace(list[start:i])
			if tag != "" {
				if t, err := language.Parse(tag); err == nil {
					out = append(out, t)
				}
			}
			start = i + 1
		}
	}
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

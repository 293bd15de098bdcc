// Package random implements std.random.*: weighted coin flips,
// integer/string ranges, and their seeded deterministic variants.
package random

import (
	"math/rand"
	"strings"
)

const defaultCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// IntN returns a uniform random int in [0, n). n must be > 0.
func IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.Intn(n)
}

// Bool returns true with probability p (clamped to [0,1]).
func Bool(p float64) bool {
	return rand.Float64() < clamp01(p)
}

// BoolSeeded is the deterministic variant of Bool: identical (p, seed) always
// produces the same result.
func BoolSeeded(p float64, seed int64) bool {
	r := rand.New(rand.NewSource(seed))
	return r.Float64() < clamp01(p)
}

// Int returns a uniform random integer in [lo, hi] inclusive.
func Int(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rand.Int63n(hi-lo+1)
}

// IntSeeded is the deterministic variant of Int.
func IntSeeded(lo, hi, seed int64) int64 {
	if hi <= lo {
		return lo
	}
	r := rand.New(rand.NewSource(seed))
	return lo + r.Int63n(hi-lo+1)
}

// Str returns a random string of length n drawn from charset, or the default
// alphanumeric charset if charset is empty.
func Str(n int, charset string) string {
	if charset == "" {
		charset = defaultCharset
	}
	return strFrom(n, charset, rand.Intn)
}

// StrSeeded is the deterministic variant of Str.
func StrSeeded(n int, charset string, seed int64) string {
	if charset == "" {
		charset = defaultCharset
	}
	r := rand.New(rand.NewSource(seed))
	return strFrom(n, charset, r.Intn)
}

func strFrom(n int, charset string, intn func(int) int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(charset)
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteRune(runes[intn(len(runes))])
	}
	return b.String()
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

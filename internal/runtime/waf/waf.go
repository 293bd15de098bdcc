// Package waf implements waf.*: attack-pattern detection, a
// token-bucket rate limiter, and an in-memory log buffer. This state is
// process-global: the bucket map and the log buffer are each guarded by a
// sync.Mutex, and golang.org/x/time/rate implements the bucket itself so
// refill is atomic read-modify-write without a hand-rolled token-bucket
// implementation.
package waf

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/time/rate"
)

var log = commonlog.GetLogger("vcl.waf")

// Kind enumerates the attack categories DetectAttack has patterns for.
type Kind string

const (
	KindSQL     Kind = "sql"
	KindXSS     Kind = "xss"
	KindPath    Kind = "path"
	KindCommand Kind = "command"
	KindLFI     Kind = "lfi"
	KindRFI     Kind = "rfi"
	KindAny     Kind = "any"
)

var patterns = map[Kind]*regexp.Regexp{
	KindSQL:     regexp.MustCompile(`(?i)union\s+select|insert\s+into|update\s+set|delete\s+from|drop\s+table|exec\s+xp_|'--`),
	KindXSS:     regexp.MustCompile(`(?i)<script|javascript:|on\w+\s*=|alert\s*\(`),
	KindPath:    regexp.MustCompile(`(?i)\.\./|\.\.\\|%2e%2e%2f|%2e%2e/|\.\.%2f`),
	KindCommand: regexp.MustCompile("(?i)\\|\\s*\\w+|;\\s*\\w+\\s*;|`\\s*\\w+`"),
	KindLFI:     regexp.MustCompile(`(?i)/etc/passwd|/etc/shadow|/proc/self|/var/log`),
	KindRFI:     regexp.MustCompile(`(?i)https?://|ftp://|php://|data://`),
}

// DetectAttack reports whether data matches kind's pattern. "any" is the
// logical OR of every pattern; the empty string never matches anything.
func DetectAttack(data string, kind Kind) bool {
	if data == "" {
		return false
	}
	if kind == KindAny {
		for _, re := range patterns {
			if re.MatchString(data) {
				return true
			}
		}
		return false
	}
	re, ok := patterns[kind]
	if !ok {
		return false
	}
	return re.MatchString(data)
}

// bucket wraps a rate.Limiter so rate_limit_tokens can read its level
// non-destructively via TokensAt; x/time/rate's continuous token-bucket
// model gives the exact refill formula needed here.
type bucket struct {
	limiter *rate.Limiter
	max     float64
}

var (
	bucketsMu sync.Mutex
	buckets   = map[string]*bucket{}

	logMu  sync.Mutex
	logBuf []string
)

// RateLimit implements waf.rate_limit(key, limit, windowSec). On
// first call for a key the bucket is initialized to exactly `limit` tokens
// refilling at limit/windowSec per second.
func RateLimit(key string, limit int, windowSec float64) bool {
	b := getOrCreateBucket(key, limit, windowSec)
	return b.limiter.AllowN(time.Now(), 1)
}

// RateLimitTokens implements waf.rate_limit_tokens(key): a non-destructive
// read of the current token level, floored. Returns 0 for a never-seen key.
func RateLimitTokens(key string) int {
	bucketsMu.Lock()
	b, ok := buckets[key]
	bucketsMu.Unlock()
	if !ok {
		return 0
	}
	tokens := b.limiter.TokensAt(time.Now())
	if tokens > b.max {
		tokens = b.max
	}
	return int(tokens)
}

func getOrCreateBucket(key string, limit int, windowSec float64) *bucket {
	bucketsMu.Lock()
	defer bucketsMu.Unlock()
	if b, ok := buckets[key]; ok {
		return b
	}
	refillRate := float64(limit) / windowSec
	b := &bucket{
		limiter: rate.NewLimiter(rate.Limit(refillRate), limit),
		max:     float64(limit),
	}
	buckets[key] = b
	return b
}

// Allow and Block implement waf.allow()/waf.block(status, message): allow is
// a no-op marker; block logs the decision and leaves the error transition
// itself to the caller (the evaluator constructs it, not this package).
func Allow() {}

func Block(status int, message string) {
	log.Warningf("blocked request: %d %s", status, message)
}

// LogMessage implements waf.log(msg): appends a timestamped entry to the
// in-memory log buffer and mirrors it to the structured logger.
func LogMessage(now time.Time, msg string) {
	entry := fmt.Sprintf("%s [WAF] %s", now.UTC().Format(time.RFC3339), msg)
	logMu.Lock()
	logBuf = append(logBuf, entry)
	logMu.Unlock()
	log.Info(msg)
}

// Logs returns a copy of the log buffer in append (FIFO) order.
func Logs() []string {
	logMu.Lock()
	defer logMu.Unlock()
	out := make([]string, len(logBuf))
	copy(out, logBuf)
	return out
}

// Init resets all process-global WAF state: buckets and the log buffer.
func Init() {
	bucketsMu.Lock()
	buckets = map[string]*bucket{}
	bucketsMu.Unlock()

	logMu.Lock()
	logBuf = nil
	logMu.Unlock()
}

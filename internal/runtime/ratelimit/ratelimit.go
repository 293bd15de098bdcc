// Package ratelimit implements std.ratelimit.*: rolling counters
// and a penalty box, backing Fastly-style `ratelimit.open_window`/
// `ratecounter_increment`/`check_rate(s)`/`penaltybox_*` built-ins.
//
// Like internal/runtime/waf, this state is process-global: counters and
// penalty boxes are plain maps, each guarded by its own sync.Mutex.
package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

type counter struct {
	windowStart int64 // unix ms
	count       int64
	windowMs    int64
}

var (
	mu       sync.Mutex
	counters = map[string]*counter{}

	boxMu sync.Mutex
	boxes = map[string]int64{} // (box, key) -> expiry unix ms
)

func nowMs(clock func() time.Time) int64 {
	return clock().UnixNano() / int64(time.Millisecond)
}

// OpenWindow implements ratelimit.open_window(seconds): returns the current
// wall time in unix milliseconds, as a string, for use as an opaque window
// identifier. seconds is not used, and no counter is tied to the window.
func OpenWindow(now time.Time, seconds float64) string {
	return strconv.FormatInt(nowMs(func() time.Time { return now }), 10)
}

// RatecounterIncrement implements ratecounter_increment(name, delta): bumps
// name's counter by delta, resetting it (tumbling window) when the window
// has elapsed since it last started. windowMs sets the window length when
// the counter starts or restarts (non-positive means 1 second); the
// ratecounter_increment built-in always passes 1000.
func RatecounterIncrement(now time.Time, name string, delta int64, windowMs int64) int64 {
	if windowMs <= 0 {
		windowMs = 1000
	}
	mu.Lock()
	defer mu.Unlock()
	n := nowMs(func() time.Time { return now })
	c, ok := counters[name]
	if !ok || n-c.windowStart >= c.windowMs {
		c = &counter{windowStart: n, windowMs: windowMs}
		counters[name] = c
	}
	c.count += delta
	return c.count
}

// CheckRate implements check_rate(name, threshold): true iff the counter's
// current value is at least threshold.
func CheckRate(name string, threshold int64) bool {
	mu.Lock()
	defer mu.Unlock()
	c, ok := counters[name]
	if !ok {
		return false
	}
	return c.count >= threshold
}

// CheckRates implements check_rates(name, spec): spec is a comma-separated
// "count:seconds" list; true iff the observed rate over any pair's trailing
// window exceeds its count. Because RatecounterIncrement only maintains one
// tumbling window per name, this approximates a sliding check by comparing
// the current counter's rate-per-second, extrapolated to each pair's window,
// against its count: a nearest-larger-window approximation of a true
// sliding-window rate check.
func CheckRates(now time.Time, name string, spec string) bool {
	mu.Lock()
	c, ok := counters[name]
	mu.Unlock()
	if !ok {
		return false
	}
	elapsedMs := nowMs(func() time.Time { return now }) - c.windowStart
	if elapsedMs <= 0 {
		elapsedMs = 1
	}
	ratePerSec := float64(c.count) / (float64(elapsedMs) / 1000.0)

	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		count, err1 := strconv.ParseFloat(parts[0], 64)
		seconds, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil || seconds <= 0 {
			continue
		}
		if ratePerSec*seconds > count {
			return true
		}
	}
	return false
}

// PenaltyboxAdd implements penaltybox_add(box, key, seconds): records an
// expiry of now + seconds*1000ms.
func PenaltyboxAdd(now time.Time, box, key string, seconds float64) bool {
	boxMu.Lock()
	defer boxMu.Unlock()
	expiry := nowMs(func() time.Time { return now }) + int64(seconds*1000)
	boxes[boxKey(box, key)] = expiry
	return true
}

// PenaltyboxHas implements penaltybox_has(box, key): true iff a non-expired
// entry exists. An expired entry is treated as absent and lazily removed
// on lookup.
func PenaltyboxHas(now time.Time, box, key string) bool {
	boxMu.Lock()
	defer boxMu.Unlock()
	k := boxKey(box, key)
	expiry, ok := boxes[k]
	if !ok {
		return false
	}
	if expiry <= nowMs(func() time.Time { return now }) {
		delete(boxes, k)
		return false
	}
	return true
}

func boxKey(box, key string) string {
	return fmt.Sprintf("%s\x00%s", box, key)
}

// Init resets all process-global rate-limit state: counters and penalty
// boxes.
func Init() {
	mu.Lock()
	counters = map[string]*counter{}
	mu.Unlock()

	boxMu.Lock()
	boxes = map[string]int64{}
	boxMu.Unlock()
}

package ratelimit

import (
	"testing"
	"time"
)

func TestRatecounterIncrement_MultiRateCounter(t *testing.T) {
	Init()
	now := time.Now()
	RatecounterIncrement(now, "r", 10, 1000)

	if got := CheckRate("r", 5); !got {
		t.Errorf("check_rate(r,5) = false, want true")
	}
	if got := CheckRate("r", 20); got {
		t.Errorf("check_rate(r,20) = true, want false")
	}
	if got := CheckRates(now, "r", "10:1,20:2,30:3"); !got {
		t.Errorf("check_rates(r, \"10:1,20:2,30:3\") = false, want true")
	}
}

func TestPenaltybox_AddAndExpire(t *testing.T) {
	Init()
	now := time.Now()
	PenaltyboxAdd(now, "box", "key", 10)
	if !PenaltyboxHas(now, "box", "key") {
		t.Errorf("expected key present immediately after add")
	}
	later := now.Add(20 * time.Second)
	if PenaltyboxHas(later, "box", "key") {
		t.Errorf("expected key expired after ttl elapsed")
	}
}

func TestPenaltybox_AbsentKeyIsFalse(t *testing.T) {
	Init()
	if PenaltyboxHas(time.Now(), "box", "nope") {
		t.Errorf("expected absent key to report false")
	}
}

func TestRatecounterIncrement_ResetsOnWindowBoundary(t *testing.T) {
	Init()
	t0 := time.Now()
	RatecounterIncrement(t0, "w", 5, 1000)
	t1 := t0.Add(2 * time.Second)
	got := RatecounterIncrement(t1, "w", 3, 1000)
	if got != 3 {
		t.Errorf("after window rollover got %d, want 3 (reset to delta)", got)
	}
}

func TestInit_ResetsAllState(t *testing.T) {
	now := time.Now()
	RatecounterIncrement(now, "x", 99, 1000)
	PenaltyboxAdd(now, "b", "k", 5)
	Init()
	if CheckRate("x", 1) {
		t.Errorf("expected counters cleared after Init")
	}
	if PenaltyboxHas(now, "b", "k") {
		t.Errorf("expected penalty box cleared after Init")
	}
}

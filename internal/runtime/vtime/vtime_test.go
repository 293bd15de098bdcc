package vtime

import (
	"testing"
	"time"
)

func TestHexToTime_TimeToHex_RoundTrip(t *testing.T) {
	orig := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	hex := TimeToHex(orig)
	back, err := HexToTime(hex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Equal(orig) {
		t.Errorf("round trip = %v, want %v", back, orig)
	}
}

func TestHexToTime_InvalidHexErrors(t *testing.T) {
	if _, err := HexToTime("not-hex"); err == nil {
		t.Errorf("expected error for invalid hex string")
	}
}

func TestHexToTime_WrongLengthErrors(t *testing.T) {
	if _, err := HexToTime("68a8f070"); err == nil {
		t.Errorf("expected error for a hex string shorter than %d digits", hexTimeWidth)
	}
}

func TestHexToTime_ParsesFullWidthInput(t *testing.T) {
	if _, err := HexToTime("00000000000000068a8f070"); err == nil {
		t.Fatalf("expected error: input is only 23 digits wide")
	}
	got, err := HexToTime("0000000000000000068a8f07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Unix(0x68a8f07, 0).UTC()
	if !got.Equal(want) {
		t.Errorf("HexToTime = %v, want %v", got, want)
	}
}

func TestIsAfterIsBefore(t *testing.T) {
	a := time.Unix(100, 0)
	b := time.Unix(200, 0)
	if !IsBefore(a, b) || IsAfter(a, b) {
		t.Errorf("expected a before b")
	}
	if !IsAfter(b, a) || IsBefore(b, a) {
		t.Errorf("expected b after a")
	}
}

func TestAddDuration(t *testing.T) {
	start := time.Unix(1000, 0)
	got := AddDuration(start, 90)
	if got.Unix() != 1090 {
		t.Errorf("AddDuration = %v, want unix 1090", got.Unix())
	}
}

func TestSub_ReturnsSecondsAsFloat(t *testing.T) {
	a := time.Unix(1100, 0)
	b := time.Unix(1000, 0)
	if got := Sub(a, b); got != 100 {
		t.Errorf("Sub = %v, want 100", got)
	}
}

func TestRFC1123_IsUTCFormatted(t *testing.T) {
	tt := time.Date(2026, 7, 30, 15, 4, 5, 0, time.FixedZone("EST", -5*3600))
	got := RFC1123(tt)
	if got != "Thu, 30 Jul 2026 20:04:05 UTC" {
		t.Errorf("RFC1123 = %q", got)
	}
}

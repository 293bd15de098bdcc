package httputil

import "testing"

func TestStatusClass(t *testing.T) {
	cases := map[int]int{200: 2, 301: 3, 404: 4, 500: 5}
	for code, want := range cases {
		if got := StatusClass(code); got != want {
			t.Errorf("StatusClass(%d) = %d, want %d", code, got, want)
		}
	}
}

func TestIsError(t *testing.T) {
	if IsError(200) || IsError(301) {
		t.Errorf("expected 2xx/3xx to not be errors")
	}
	if !IsError(404) || !IsError(500) {
		t.Errorf("expected 4xx/5xx to be errors")
	}
}

func TestCacheControlDirective_ExtractsValue(t *testing.T) {
	if got := CacheControlDirective("max-age=60, public", "max-age"); got != "60" {
		t.Errorf("CacheControlDirective(max-age) = %q, want 60", got)
	}
}

func TestCacheControlDirective_ValuelessDirectiveReturnsSentinel(t *testing.T) {
	if got := CacheControlDirective("no-store", "no-store"); got != "1" {
		t.Errorf("CacheControlDirective(no-store) = %q, want sentinel 1", got)
	}
}

func TestCacheControlDirective_AbsentReturnsEmpty(t *testing.T) {
	if got := CacheControlDirective("public", "max-age"); got != "" {
		t.Errorf("CacheControlDirective(absent) = %q, want empty", got)
	}
}

func TestHeaderContains_CaseInsensitiveToken(t *testing.T) {
	if !HeaderContains("gzip, Accept-Encoding", "accept-encoding") {
		t.Errorf("expected case-insensitive token match")
	}
	if HeaderContains("gzip", "br") {
		t.Errorf("expected absent token to not match")
	}
}

func TestParseMaxAge_ExtractsNumericValue(t *testing.T) {
	if got := ParseMaxAge("public, max-age=3600"); got != 3600 {
		t.Errorf("ParseMaxAge = %d, want 3600", got)
	}
}

func TestParseMaxAge_AbsentReturnsNegativeOne(t *testing.T) {
	if got := ParseMaxAge("no-cache"); got != -1 {
		t.Errorf("ParseMaxAge(absent) = %d, want -1", got)
	}
}

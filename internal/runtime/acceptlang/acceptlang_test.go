package acceptlang

import "testing"

func TestLanguageLookup_PicksBestMatch(t *testing.T) {
	got := LanguageLookup("fr-FR,en;q=0.8", "en:fr", "en")
	if got != "fr" {
		t.Errorf("LanguageLookup = %q, want fr", got)
	}
}

func TestLanguageLookup_FallsBackOnNoAcceptableMatch(t *testing.T) {
	got := LanguageLookup("", "en:fr", "en")
	if got != "en" {
		t.Errorf("LanguageLookup(empty header) = %q, want default en", got)
	}
}

func TestLanguageLookup_EmptyAvailableFallsBackToDefault(t *testing.T) {
	got := LanguageLookup("en-US", "", "de")
	if got != "de" {
		t.Errorf("LanguageLookup(no available tags) = %q, want default de", got)
	}
}

func TestLanguageLookup_QualityWeightPrefersHigherQ(t *testing.T) {
	got := LanguageLookup("de;q=0.2, es;q=0.9", "en:es:de", "en")
	if got != "es" {
		t.Errorf("LanguageLookup = %q, want es (highest q)", got)
	}
}

func TestLanguageLookup_PresentButUnmatchedHeaderFallsBackToDefault(t *testing.T) {
	got := LanguageLookup("zh", "en:de", "en")
	if got != "en" {
		t.Errorf("LanguageLookup(zh against en:de) = %q, want default en, not best-effort index 0", got)
	}
}

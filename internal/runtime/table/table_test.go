package table

import "testing"

func TestAddEntry_LookupAndContains(t *testing.T) {
	s := NewStore()
	s.AddEntry("t", "k", StringValue("v"))
	if !s.Contains("t", "k") {
		t.Fatalf("expected contains(t,k) == true")
	}
	if got := s.Lookup("t", "k", "def"); got != "v" {
		t.Errorf("lookup(t,k) = %q, want %q", got, "v")
	}
}

func TestAdd_Idempotent(t *testing.T) {
	s := NewStore()
	s.Add("t")
	s.Add("t")
	if len(s.Names()) != 1 {
		t.Fatalf("expected one table after repeated Add, got %v", s.Names())
	}
}

func TestLookupTyped_DefaultsOnAbsence(t *testing.T) {
	s := NewStore()
	if got := s.Lookup("missing", "k", "fallback"); got != "fallback" {
		t.Errorf("Lookup on absent table = %q, want fallback", got)
	}
	if got := s.LookupBool("missing", "k", true); got != true {
		t.Errorf("LookupBool on absent table = %v, want true", got)
	}
	if got := s.LookupInteger("missing", "k", 7); got != 7 {
		t.Errorf("LookupInteger on absent table = %d, want 7", got)
	}
	if got := s.LookupFloat("missing", "k", 1.5); got != 1.5 {
		t.Errorf("LookupFloat on absent table = %v, want 1.5", got)
	}
	re := s.LookupRegex("missing", "k")
	if re.String() != "(?:)" {
		t.Errorf("LookupRegex on absent table = %q, want (?:)", re.String())
	}
}

func TestAddEntry_PreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	s.AddEntry("t", "b", StringValue("1"))
	s.AddEntry("t", "a", StringValue("2"))
	keys := s.Keys("t")
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Keys() = %v, want [b a]", keys)
	}
}

func TestAddEntry_UpsertKeepsOrder(t *testing.T) {
	s := NewStore()
	s.AddEntry("t", "k", StringValue("1"))
	s.AddEntry("t", "k", StringValue("2"))
	if got := s.Lookup("t", "k", ""); got != "2" {
		t.Errorf("Lookup after upsert = %q, want 2", got)
	}
	if len(s.Keys("t")) != 1 {
		t.Errorf("expected 1 key after upsert, got %v", s.Keys("t"))
	}
}

func TestNumberValue_Stringify(t *testing.T) {
	s := NewStore()
	s.AddEntry("t", "int", NumberValue(42))
	s.AddEntry("t", "float", NumberValue(3.5))
	if got := s.Lookup("t", "int", ""); got != "42" {
		t.Errorf("int stringify = %q, want 42", got)
	}
	if got := s.Lookup("t", "float", ""); got != "3.5" {
		t.Errorf("float stringify = %q, want 3.5", got)
	}
}

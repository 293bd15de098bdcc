package vclcontext

import "testing"

func TestBackendRegistry_AddAndGet(t *testing.T) {
	r := NewBackendRegistry()
	r.Add(&Backend{Name: "origin", Properties: map[string]string{"host": "example.com"}})
	b, ok := r.Get("origin")
	if !ok {
		t.Fatalf("expected backend 'origin' present")
	}
	if b.Properties["host"] != "example.com" {
		t.Errorf("Properties[host] = %q, want example.com", b.Properties["host"])
	}
	if !b.Healthy {
		t.Errorf("expected new backend to default healthy")
	}
}

func TestBackendRegistry_NamesPreservesInsertionOrder(t *testing.T) {
	r := NewBackendRegistry()
	r.Add(&Backend{Name: "b"})
	r.Add(&Backend{Name: "a"})
	names := r.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Names() = %v, want [b a]", names)
	}
}

func TestBackendRegistry_SetHealthyTogglesWithoutReAdd(t *testing.T) {
	r := NewBackendRegistry()
	r.Add(&Backend{Name: "origin"})
	r.SetHealthy("origin", false)
	b, _ := r.Get("origin")
	if b.Healthy {
		t.Errorf("expected origin marked unhealthy")
	}
}

func TestBackendRegistry_UnknownNameNotFound(t *testing.T) {
	r := NewBackendRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Errorf("expected unknown backend name to report not found")
	}
}

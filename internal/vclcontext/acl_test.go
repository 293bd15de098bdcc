package vclcontext

import "testing"

func TestACL_Matches_TrustScenario(t *testing.T) {
	acl := &ACL{Name: "trusted", Entries: []ACLEntry{
		{IP: "127.0.0.1", Subnet: -1},
		{IP: "192.168.0.0", Subnet: 16},
	}}

	cases := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"192.168.5.9", true},
		{"10.0.0.1", false},
	}
	for _, c := range cases {
		if got := acl.Matches(c.ip); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.ip, got, c.want)
		}
	}
}

func TestACL_NegationTakesPrecedence(t *testing.T) {
	acl := &ACL{Name: "mixed", Entries: []ACLEntry{
		{IP: "10.0.0.0", Subnet: 8},
		{IP: "10.0.0.5", Subnet: -1, Negate: true},
	}}
	if acl.Matches("10.0.0.5") {
		t.Errorf("expected negated host entry to reject despite broader subnet match")
	}
	if !acl.Matches("10.0.0.6") {
		t.Errorf("expected non-negated member of the subnet to match")
	}
}

func TestACLRegistry_UnknownNameNeverMatches(t *testing.T) {
	r := NewACLRegistry()
	if r.Matches("nope", "1.2.3.4") {
		t.Errorf("expected unknown ACL name to never match")
	}
}

package vclcontext

import (
	"github.com/vclrun/vcl/internal/runtime/address"
)

// ACLEntry mirrors ast.ACLEntry, decoupled from the parser package so the
// registry can be populated by tests or hosts without an AST in hand.
type ACLEntry struct {
	IP     string
	Subnet int // -1 means host route (/32 for IPv4)
	Negate bool
}

// ACL is a named, ordered list of membership entries.
type ACL struct {
	Name    string
	Entries []ACLEntry
}

// Matches reports whether ip is a member of the ACL. Negated entries take
// precedence on match: if ip matches a negated entry, the ACL rejects it
// outright regardless of other matching entries.
func (a *ACL) Matches(ip string) bool {
	matched := false
	for _, e := range a.Entries {
		if address.CIDRContains(e.IP, e.Subnet, ip) {
			if e.Negate {
				return false
			}
			matched = true
		}
	}
	return matched
}

// ACLRegistry holds all named ACLs for one Context.
type ACLRegistry struct {
	acls map[string]*ACL
}

func NewACLRegistry() *ACLRegistry {
	return &ACLRegistry{acls: map[string]*ACL{}}
}

func (r *ACLRegistry) Add(a *ACL) {
	r.acls[a.Name] = a
}

func (r *ACLRegistry) Get(name string) (*ACL, bool) {
	a, ok := r.acls[name]
	return a, ok
}

// Matches looks up aclName and reports whether ip is a member; an unknown
// ACL name never matches.
func (r *ACLRegistry) Matches(aclName, ip string) bool {
	a, ok := r.acls[aclName]
	if !ok {
		return false
	}
	return a.Matches(ip)
}

package vclcontext

import (
	"fmt"
	"math/rand"

	"github.com/cespare/xxhash/v2"
	rendezvous "github.com/dgryski/go-rendezvous"

	"github.com/vclrun/vcl/internal/runtime/random"
)

// DirectorKind enumerates the load-balancing policies a director may use.
type DirectorKind string

const (
	DirectorRandom   DirectorKind = "random"
	DirectorHash     DirectorKind = "hash"
	DirectorClient   DirectorKind = "client"
	DirectorFallback DirectorKind = "fallback"
	DirectorCHash    DirectorKind = "chash"
)

// DirectorBackend is one weighted member.
type DirectorBackend struct {
	Ref    string
	Weight float64
}

// Director is a named load-balancing policy over a set of backends.
type Director struct {
	Name     string
	Kind     DirectorKind
	Backends []DirectorBackend
	Quorum   float64
	Retries  int
}

// DirectorRegistry holds all named directors for one Context.
type DirectorRegistry struct {
	directors map[string]*Director
}

func NewDirectorRegistry() *DirectorRegistry {
	return &DirectorRegistry{directors: map[string]*Director{}}
}

func (r *DirectorRegistry) Add(d *Director) {
	r.directors[d.Name] = d
}

func (r *DirectorRegistry) Get(name string) (*Director, bool) {
	d, ok := r.directors[name]
	return d, ok
}

// Resolve picks a backend name for director dirName given the current
// request state, consulting backends to skip unhealthy members for every
// kind. hashKey is the running vcl_hash accumulator; clientIP is
// client.ip.
func (r *DirectorRegistry) Resolve(dirName string, backends *BackendRegistry, hashKey, clientIP string) (string, bool) {
	d, ok := r.directors[dirName]
	if !ok || len(d.Backends) == 0 {
		return "", false
	}
	healthy := healthyMembers(d, backends)
	if len(healthy) == 0 {
		return "", false
	}
	switch d.Kind {
	case DirectorRandom:
		return weightedRandom(healthy), true
	case DirectorHash:
		return stableHashPick(healthy, hashKey), true
	case DirectorClient:
		return stableHashPick(healthy, clientIP), true
	case DirectorCHash:
		return rendezvousPick(healthy, hashKey), true
	case DirectorFallback:
		return healthy[0].Ref, true
	default:
		return healthy[0].Ref, true
	}
}

func healthyMembers(d *Director, backends *BackendRegistry) []DirectorBackend {
	if backends == nil {
		return d.Backends
	}
	var out []DirectorBackend
	for _, m := range d.Backends {
		if b, ok := backends.Get(m.Ref); ok && !b.Healthy {
			continue
		}
		out = append(out, m)
	}
	return out
}

func weightedRandom(members []DirectorBackend) string {
	total := 0.0
	for _, m := range members {
		total += m.Weight
	}
	if total <= 0 {
		return members[random.IntN(len(members))].Ref
	}
	pick := rand.Float64() * total
	acc := 0.0
	for _, m := range members {
		acc += m.Weight
		if pick <= acc {
			return m.Ref
		}
	}
	return members[len(members)-1].Ref
}

// stableHashPick implements the `hash`/`client` director kinds: a plain
// modulo hash over xxhash.Sum64 of the key (the vcl_hash accumulator for
// `hash`, client.ip for `client`), so the same key always routes to the
// same member as long as the member list doesn't change.
func stableHashPick(members []DirectorBackend, key string) string {
	idx := int(xxhash.Sum64String(key) % uint64(len(members)))
	return members[idx].Ref
}

// rendezvousPick uses weighted rendezvous (highest-random-weight) hashing via
// go-rendezvous so that adding/removing a backend only reshuffles the keys
// that mapped to it, not the whole keyspace. Weight is approximated by
// repeating a backend's node id proportionally to its declared weight.
func rendezvousPick(members []DirectorBackend, key string) string {
	nodes := make([]string, 0, len(members))
	seen := map[string]int{}
	for _, m := range members {
		copies := int(m.Weight)
		if copies < 1 {
			copies = 1
		}
		for i := 0; i < copies; i++ {
			id := fmt.Sprintf("%s#%d", m.Ref, i)
			nodes = append(nodes, id)
			seen[id] = 0
		}
	}
	r := rendezvous.New(nodes, xxhash.Sum64String)
	picked := r.Lookup(key)
	for _, m := range members {
		if picked == m.Ref || hasPrefixNode(picked, m.Ref) {
			return m.Ref
		}
	}
	return members[0].Ref
}

func hasPrefixNode(node, ref string) bool {
	if len(node) <= len(ref) {
		return false
	}
	return node[:len(ref)] == ref && node[len(ref)] == '#'
}


package vclcontext

import (
	"github.com/vclrun/vcl/internal/runtime/table"
)

// Phase is the execution phase marker on Context.
type Phase int

const (
	PhaseRecv Phase = iota
	PhaseHash
	PhaseHit
	PhaseMiss
	PhasePass
	PhaseFetch
	PhaseDeliver
	PhaseError
	PhaseLog
)

func (p Phase) String() string {
	switch p {
	case PhaseRecv:
		return "recv"
	case PhaseHash:
		return "hash"
	case PhaseHit:
		return "hit"
	case PhaseMiss:
		return "miss"
	case PhasePass:
		return "pass"
	case PhaseFetch:
		return "fetch"
	case PhaseDeliver:
		return "deliver"
	case PhaseError:
		return "error"
	case PhaseLog:
		return "log"
	default:
		return "unknown"
	}
}

// RequestObject models req/bereq.
type RequestObject struct {
	URL     string
	Method  string
	HTTP    *Headers
	Backend string
}

// ResponseObject models beresp/resp: an HTTP message with a status, a TTL
// (meaningful only for beresp), and a body (meaningful only for resp).
type ResponseObject struct {
	HTTP     *Headers
	Status   int
	Response string
	Body     string
	TTL      float64 // seconds; beresp.ttl
}

// CacheObject models obj: only readable in hit/error phases.
type CacheObject struct {
	HTTP     *Headers
	Status   int
	Response string
	Hits     int
}

// ClientInfo models client.ip/client.identity.
type ClientInfo struct {
	IP       string
	Identity string
}

// TimeInfo models the `time` object's hex representation.
type TimeInfo struct {
	Hex string
}

// Context is the mutable per-request execution state. A Context is
// built per request and discarded; it shares no req/resp/bereq/beresp/obj/var
// state with any other Context.
type Context struct {
	Req    *RequestObject
	BeReq  *RequestObject
	BeResp *ResponseObject
	Resp   *ResponseObject
	Obj    *CacheObject
	Client ClientInfo
	Time   TimeInfo

	Tables    *table.Store
	Backends  *BackendRegistry
	Directors *DirectorRegistry
	ACLs      *ACLRegistry

	// FastlyError records the last error transition's message so vcl_error
	// can read it.
	FastlyError string

	Phase Phase

	// hashKey accumulates hash_data() statements for vcl_hash.
	hashKey []byte

	// Locals is the declare-local (var.*) scope, reset per subroutine
	// invocation by the driver.
	Locals map[string]any

	RestartCount int
}

// New builds a fresh Context with empty request/response state, matching the
// shape createVCLContext() exposes to the host.
func New() *Context {
	return &Context{
		Req:       &RequestObject{HTTP: NewHeaders()},
		BeReq:     &RequestObject{HTTP: NewHeaders()},
		BeResp:    &ResponseObject{HTTP: NewHeaders()},
		Resp:      &ResponseObject{HTTP: NewHeaders()},
		Obj:       &CacheObject{HTTP: NewHeaders()},
		Tables:    table.NewStore(),
		Backends:  NewBackendRegistry(),
		Directors: NewDirectorRegistry(),
		ACLs:      NewACLRegistry(),
		Locals:    map[string]any{},
		Phase:     PhaseRecv,
	}
}

// AppendHashKey appends s to the running vcl_hash accumulator.
func (c *Context) AppendHashKey(s string) {
	c.hashKey = append(c.hashKey, s...)
}

// HashKey returns the accumulated hash key as built so far.
func (c *Context) HashKey() string {
	return string(c.hashKey)
}

// ResetHashKey clears the accumulator; called when entering vcl_hash.
func (c *Context) ResetHashKey() {
	c.hashKey = c.hashKey[:0]
}

// BeRespMutable reports whether beresp may be written in the current phase:
// only during fetch.
func (c *Context) BeRespMutable() bool {
	return c.Phase == PhaseFetch
}

// RespMutable reports whether resp may be written in the current phase:
// only during deliver.
func (c *Context) RespMutable() bool {
	return c.Phase == PhaseDeliver
}

// ObjReadable reports whether obj may be read in the current phase.
func (c *Context) ObjReadable() bool {
	return c.Phase == PhaseHit || c.Phase == PhaseError
}

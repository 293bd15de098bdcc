package eval

import (
	"fmt"
	"strings"

	"github.com/vclrun/vcl/internal/vclcontext"
)

// resolveGet implements identifier resolution for reads:
// parse the dotted name into (root-object, collection-key) and dispatch
// through a small fixed enumeration of object kinds.
func resolveGet(ctx *vclcontext.Context, name string) (Value, error) {
	root, rest := splitRoot(name)
	switch root {
	case "req":
		return getRequestField(ctx.Req, rest)
	case "bereq":
		return getRequestField(ctx.BeReq, rest)
	case "beresp":
		return getResponseField(ctx, ctx.BeResp, rest, false)
	case "resp":
		return getResponseField(ctx, ctx.Resp, rest, true)
	case "obj":
		if !ctx.ObjReadable() {
			return Null(), nil
		}
		return getCacheField(ctx.Obj, rest)
	case "client":
		switch rest {
		case "ip":
			return IPValue(ctx.Client.IP), nil
		case "identity":
			return StringValue(ctx.Client.Identity), nil
		}
	case "time":
		if rest == "hex" {
			return StringValue(ctx.Time.Hex), nil
		}
	case "var":
		if v, ok := ctx.Locals[rest]; ok {
			if val, ok := v.(Value); ok {
				return val, nil
			}
		}
		return Null(), nil
	case "true":
		return BoolValue(true), nil
	case "false":
		return BoolValue(false), nil
	}
	return Null(), fmt.Errorf("eval: unresolved identifier %q", name)
}

// resolveSet implements `set <target> = <value>`: writing an
// empty string to a header unsets it; writing req.backend switches the
// active backend; writes to read-only-phase fields are silent no-ops
// rather than errors.
func resolveSet(ctx *vclcontext.Context, name string, v Value) error {
	root, rest := splitRoot(name)
	switch root {
	case "req":
		if rest == "backend" {
			return setRequestField(ctx.Req, rest, resolveBackendTarget(ctx, v))
		}
		return setRequestField(ctx.Req, rest, v)
	case "bereq":
		if rest == "backend" {
			return setRequestField(ctx.BeReq, rest, resolveBackendTarget(ctx, v))
		}
		return setRequestField(ctx.BeReq, rest, v)
	case "beresp":
		if !ctx.BeRespMutable() {
			return nil
		}
		return setResponseField(ctx.BeResp, rest, v)
	case "resp":
		if !ctx.RespMutable() {
			return nil
		}
		return setResponseField(ctx.Resp, rest, v)
	case "obj":
		// obj is never writable via plain `set`; only the `error`/`synthetic`
		// statements mutate it.
		return nil
	case "client":
		if rest == "identity" {
			ctx.Client.Identity = v.Stringify()
			return nil
		}
	case "var":
		ctx.Locals[rest] = v
		return nil
	}
	return fmt.Errorf("eval: cannot set %q", name)
}

// resolveUnset implements `unset <target>`.
func resolveUnset(ctx *vclcontext.Context, name string) error {
	root, rest := splitRoot(name)
	var headers *vclcontext.Headers
	switch root {
	case "req":
		headers = ctx.Req.HTTP
	case "bereq":
		headers = ctx.BeReq.HTTP
	case "beresp":
		if !ctx.BeRespMutable() {
			return nil
		}
		headers = ctx.BeResp.HTTP
	case "resp":
		if !ctx.RespMutable() {
			return nil
		}
		headers = ctx.Resp.HTTP
	case "obj":
		headers = ctx.Obj.HTTP
	case "var":
		delete(ctx.Locals, rest)
		return nil
	}
	if headers == nil {
		return fmt.Errorf("eval: cannot unset %q", name)
	}
	if strings.HasPrefix(rest, "http.") {
		headers.Unset(strings.TrimPrefix(rest, "http."))
		return nil
	}
	return fmt.Errorf("eval: cannot unset %q", name)
}

// resolveBackendTarget implements director-vs-backend disambiguation for
// `set req.backend = <name>`: when the assigned name is a registered
// director rather than a plain backend, it resolves the director to one of
// its member backends now, so req.backend always ends up naming a concrete
// backend.
func resolveBackendTarget(ctx *vclcontext.Context, v Value) Value {
	name := v.Stringify()
	if _, ok := ctx.Directors.Get(name); !ok {
		return v
	}
	picked, ok := ctx.Directors.Resolve(name, ctx.Backends, ctx.HashKey(), ctx.Client.IP)
	if !ok {
		return v
	}
	return StringValue(picked)
}

func splitRoot(name string) (root, rest string) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func getRequestField(r *vclcontext.RequestObject, rest string) (Value, error) {
	if strings.HasPrefix(rest, "http.") {
		return StringValue(r.HTTP.Get(strings.TrimPrefix(rest, "http."))), nil
	}
	switch rest {
	case "url":
		return StringValue(r.URL), nil
	case "method":
		return StringValue(r.Method), nil
	case "backend":
		return StringValue(r.Backend), nil
	}
	return Null(), fmt.Errorf("eval: unknown request field %q", rest)
}

func setRequestField(r *vclcontext.RequestObject, rest string, v Value) error {
	if strings.HasPrefix(rest, "http.") {
		r.HTTP.Set(strings.TrimPrefix(rest, "http."), v.Stringify())
		return nil
	}
	switch rest {
	case "url":
		r.URL = v.Stringify()
		return nil
	case "method":
		r.Method = v.Stringify()
		return nil
	case "backend":
		r.Backend = v.Stringify()
		return nil
	}
	return fmt.Errorf("eval: unknown request field %q", rest)
}

func getResponseField(ctx *vclcontext.Context, r *vclcontext.ResponseObject, rest string, isResp bool) (Value, error) {
	if strings.HasPrefix(rest, "http.") {
		return StringValue(r.HTTP.Get(strings.TrimPrefix(rest, "http."))), nil
	}
	switch rest {
	case "status":
		return IntValue(int64(r.Status)), nil
	case "response":
		return StringValue(r.Response), nil
	case "ttl":
		return FloatValue(r.TTL), nil
	case "body":
		return StringValue(r.Body), nil
	}
	return Null(), fmt.Errorf("eval: unknown response field %q", rest)
}

func setResponseField(r *vclcontext.ResponseObject, rest string, v Value) error {
	if strings.HasPrefix(rest, "http.") {
		r.HTTP.Set(strings.TrimPrefix(rest, "http."), v.Stringify())
		return nil
	}
	switch rest {
	case "status":
		r.Status = int(v.AsNumber())
		return nil
	case "response":
		r.Response = v.Stringify()
		return nil
	case "ttl":
		r.TTL = v.AsNumber()
		return nil
	case "body":
		r.Body = v.Stringify()
		return nil
	}
	return fmt.Errorf("eval: unknown response field %q", rest)
}

func getCacheField(o *vclcontext.CacheObject, rest string) (Value, error) {
	if strings.HasPrefix(rest, "http.") {
		return StringValue(o.HTTP.Get(strings.TrimPrefix(rest, "http."))), nil
	}
	switch rest {
	case "status":
		return IntValue(int64(o.Status)), nil
	case "response":
		return StringValue(o.Response), nil
	case "hits":
		return IntValue(int64(o.Hits)), nil
	}
	return Null(), fmt.Errorf("eval: unknown obj field %q", rest)
}

package eval

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/vclrun/vcl/internal/vclcontext"
)

func TestResolveGetSet_RequestHeaderRoundTrip(t *testing.T) {
	ctx := vclcontext.New()
	if err := resolveSet(ctx, "req.http.X-Foo", StringValue("bar")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := resolveGet(ctx, "req.http.X-Foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Stringify() != "bar" {
		t.Errorf("resolveGet(req.http.X-Foo) = %q, want bar", got.Stringify())
	}
}

func TestResolveSet_BerespOutsideFetchIsSilentNoOp(t *testing.T) {
	ctx := vclcontext.New()
	ctx.Phase = vclcontext.PhaseRecv
	if err := resolveSet(ctx, "beresp.http.X-Cache", StringValue("HIT")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ctx.BeResp.HTTP.Get("X-Cache"); got != "" {
		t.Errorf("expected silent no-op outside fetch phase, got %q", got)
	}

	ctx.Phase = vclcontext.PhaseFetch
	if err := resolveSet(ctx, "beresp.http.X-Cache", StringValue("HIT")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ctx.BeResp.HTTP.Get("X-Cache"); got != "HIT" {
		t.Errorf("expected write to apply during fetch phase, got %q", got)
	}
}

func TestResolveGet_ObjOnlyReadableInHitOrError(t *testing.T) {
	ctx := vclcontext.New()
	ctx.Obj.Status = 200
	ctx.Phase = vclcontext.PhaseRecv
	got, err := resolveGet(ctx, "obj.status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != KindNull {
		t.Errorf("expected obj unreadable outside hit/error to yield Null, got %#v", got)
	}

	ctx.Phase = vclcontext.PhaseHit
	got, err = resolveGet(ctx, "obj.status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != KindInteger || got.Int != 200 {
		t.Errorf("expected obj.status readable in hit phase, got %s", pretty.Sprint(got))
	}
}

func TestResolveSet_ObjNeverDirectlySettable(t *testing.T) {
	ctx := vclcontext.New()
	if err := resolveSet(ctx, "obj.status", IntValue(404)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Obj.Status != 0 {
		t.Errorf("expected obj.status unaffected by plain set, got %d", ctx.Obj.Status)
	}
}

func TestResolveSetGet_LocalVariable(t *testing.T) {
	ctx := vclcontext.New()
	if err := resolveSet(ctx, "var.count", IntValue(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := resolveGet(ctx, "var.count")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int != 3 {
		t.Errorf("resolveGet(var.count) = %#v, want IntValue(3)", got)
	}
}

func TestResolveUnset_EmptyHeaderViaUnset(t *testing.T) {
	ctx := vclcontext.New()
	ctx.Req.HTTP.Set("X-Foo", "bar")
	if err := resolveUnset(ctx, "req.http.X-Foo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Req.HTTP.Has("X-Foo") {
		t.Errorf("expected header gone after unset")
	}
}

func TestResolveGet_ClientAndTime(t *testing.T) {
	ctx := vclcontext.New()
	ctx.Client.IP = "10.0.0.1"
	ctx.Time.Hex = "deadbeef"
	if got, _ := resolveGet(ctx, "client.ip"); got.Stringify() != "10.0.0.1" {
		t.Errorf("client.ip = %q", got.Stringify())
	}
	if got, _ := resolveGet(ctx, "time.hex"); got.Stringify() != "deadbeef" {
		t.Errorf("time.hex = %q", got.Stringify())
	}
}

func TestResolveGet_UnresolvedIdentifierErrors(t *testing.T) {
	ctx := vclcontext.New()
	if _, err := resolveGet(ctx, "bogus.field"); err == nil {
		t.Errorf("expected error for unresolved root identifier")
	}
}

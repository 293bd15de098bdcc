package eval

import (
	"strings"
	"testing"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/vclcontext"
)

func TestExecSubroutine_ReturnStopsExecution(t *testing.T) {
	ctx := vclcontext.New()
	sub := &ast.Subroutine{Name: "vcl_recv", Body: []ast.Statement{
		&ast.Set{Target: "req.http.X", Value: &ast.StringLiteral{Value: "1"}},
		&ast.Return{Action: "lookup"},
		&ast.Set{Target: "req.http.X", Value: &ast.StringLiteral{Value: "unreached"}},
	}}
	action, err := ExecSubroutine(ctx, sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != "lookup" {
		t.Errorf("action = %q, want lookup", action)
	}
	if got := ctx.Req.HTTP.Get("X"); got != "1" {
		t.Errorf("expected statement before return to have run, got %q", got)
	}
}

func TestExecSubroutine_GotoJumpsWithinTopLevelBody(t *testing.T) {
	ctx := vclcontext.New()
	sub := &ast.Subroutine{Name: "vcl_recv", Body: []ast.Statement{
		&ast.Goto{Label: "skip"},
		&ast.Set{Target: "req.http.X", Value: &ast.StringLiteral{Value: "unreached"}},
		&ast.Label{Name: "skip"},
		&ast.Set{Target: "req.http.X", Value: &ast.StringLiteral{Value: "done"}},
	}}
	_, err := ExecSubroutine(ctx, sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ctx.Req.HTTP.Get("X"); got != "done" {
		t.Errorf("req.http.X = %q, want done", got)
	}
}

func TestExecSubroutine_GotoFromNestedIfBubblesUp(t *testing.T) {
	ctx := vclcontext.New()
	sub := &ast.Subroutine{Name: "vcl_recv", Body: []ast.Statement{
		&ast.If{
			Test:       &ast.Identifier{Name: "true"},
			Consequent: []ast.Statement{&ast.Goto{Label: "end"}},
		},
		&ast.Set{Target: "req.http.X", Value: &ast.StringLiteral{Value: "unreached"}},
		&ast.Label{Name: "end"},
		&ast.Set{Target: "req.http.X", Value: &ast.StringLiteral{Value: "done"}},
	}}
	_, err := ExecSubroutine(ctx, sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ctx.Req.HTTP.Get("X"); got != "done" {
		t.Errorf("req.http.X = %q, want done", got)
	}
}

func TestExecSubroutine_UndefinedLabelErrors(t *testing.T) {
	ctx := vclcontext.New()
	sub := &ast.Subroutine{Name: "vcl_recv", Body: []ast.Statement{
		&ast.Goto{Label: "nowhere"},
	}}
	if _, err := ExecSubroutine(ctx, sub); err == nil {
		t.Errorf("expected error for undefined goto label")
	}
}

func TestExecSubroutine_GotoCycleFailsFatallyInsteadOfHanging(t *testing.T) {
	ctx := vclcontext.New()
	sub := &ast.Subroutine{Name: "vcl_recv", Body: []ast.Statement{
		&ast.Label{Name: "l"},
		&ast.Goto{Label: "l"},
	}}
	_, err := ExecSubroutine(ctx, sub)
	if err == nil {
		t.Fatalf("expected a fatal error for a goto cycle, got none")
	}
	if !strings.Contains(err.Error(), "goto cycle") {
		t.Errorf("error = %v, want it to mention a goto cycle", err)
	}
}

func TestExecSubroutine_ErrorStatementReturnsErrorTransition(t *testing.T) {
	ctx := vclcontext.New()
	sub := &ast.Subroutine{Name: "vcl_recv", Body: []ast.Statement{
		&ast.Error{Status: 403, Message: &ast.StringLiteral{Value: "forbidden"}},
	}}
	_, err := ExecSubroutine(ctx, sub)
	et, ok := err.(*ErrorTransition)
	if !ok {
		t.Fatalf("expected *ErrorTransition, got %T (%v)", err, err)
	}
	if et.Status != 403 || et.Message != "forbidden" {
		t.Errorf("ErrorTransition = %+v, want {403 forbidden}", et)
	}
	if ctx.Obj.Status != 403 || ctx.FastlyError != "forbidden" {
		t.Errorf("expected obj.status/FastlyError to be updated, got %d / %q", ctx.Obj.Status, ctx.FastlyError)
	}
}

func TestExecSubroutine_RestartReturnsRestartSignal(t *testing.T) {
	ctx := vclcontext.New()
	sub := &ast.Subroutine{Name: "vcl_recv", Body: []ast.Statement{
		&ast.Restart{},
	}}
	_, err := ExecSubroutine(ctx, sub)
	if _, ok := err.(RestartSignal); !ok {
		t.Fatalf("expected RestartSignal, got %T (%v)", err, err)
	}
}

func TestExecSubroutine_DeclareThenVarRoundTrip(t *testing.T) {
	ctx := vclcontext.New()
	sub := &ast.Subroutine{Name: "vcl_recv", Body: []ast.Statement{
		&ast.Declare{Name: "var.count", Type: "INTEGER"},
		&ast.Set{Target: "var.count", Value: &ast.NumberLiteral{Value: 7, IsInt: true}},
	}}
	_, err := ExecSubroutine(ctx, sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := ctx.Locals["count"].(Value)
	if !ok || v.Int != 7 {
		t.Errorf("Locals[count] = %#v, want IntValue(7)", ctx.Locals["count"])
	}
}

func TestExecSubroutine_SyntheticWritesRespBodyOnlyInDeliver(t *testing.T) {
	ctx := vclcontext.New()
	ctx.Phase = vclcontext.PhaseHit
	sub := &ast.Subroutine{Name: "vcl_hit", Body: []ast.Statement{
		&ast.Synthetic{Value: &ast.StringLiteral{Value: "hit body"}},
	}}
	if _, err := ExecSubroutine(ctx, sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Obj.Response != "hit body" {
		t.Errorf("expected synthetic to write obj.response outside deliver, got %q", ctx.Obj.Response)
	}
	if ctx.Resp.Body != "" {
		t.Errorf("expected resp.body untouched outside deliver phase")
	}

	ctx.Phase = vclcontext.PhaseDeliver
	sub2 := &ast.Subroutine{Name: "vcl_deliver", Body: []ast.Statement{
		&ast.Synthetic{Value: &ast.StringLiteral{Value: "deliver body"}},
	}}
	if _, err := ExecSubroutine(ctx, sub2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Resp.Body != "deliver body" {
		t.Errorf("expected synthetic to write resp.body in deliver phase, got %q", ctx.Resp.Body)
	}
}

func TestExecSubroutine_HashDataAccumulates(t *testing.T) {
	ctx := vclcontext.New()
	ctx.ResetHashKey()
	sub := &ast.Subroutine{Name: "vcl_hash", Body: []ast.Statement{
		&ast.HashData{Value: &ast.StringLiteral{Value: "a"}},
		&ast.HashData{Value: &ast.StringLiteral{Value: "b"}},
	}}
	if _, err := ExecSubroutine(ctx, sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.HashKey() != "ab" {
		t.Errorf("HashKey() = %q, want ab", ctx.HashKey())
	}
}

package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vclrun/vcl/internal/ast"
)

func TestParse_SubroutineWithIfElse(t *testing.T) {
	src := `
sub vcl_recv {
	if (req.http.X-Foo) {
		set req.http.X-Bar = "1";
	} else {
		set req.http.X-Bar = "0";
	}
	return(lookup);
}
`
	prog := Parse(src)
	if len(prog.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", prog.Diagnostics)
	}
	sub := prog.SubroutineByName("vcl_recv")
	if sub == nil {
		t.Fatalf("expected vcl_recv subroutine")
	}
	if len(sub.Body) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(sub.Body))
	}
	ifStmt, ok := sub.Body[0].(*ast.If)
	if !ok {
		t.Fatalf("expected first statement to be If, got %T", sub.Body[0])
	}
	if len(ifStmt.Consequent) != 1 || len(ifStmt.Alternate) != 1 {
		t.Errorf("expected one statement per arm, got %d/%d", len(ifStmt.Consequent), len(ifStmt.Alternate))
	}
	ret, ok := sub.Body[1].(*ast.Return)
	if !ok || ret.Action != "lookup" {
		t.Errorf("expected return(lookup), got %#v", sub.Body[1])
	}
}

func TestParse_ElseIfChainNestsAsIf(t *testing.T) {
	src := `
sub vcl_recv {
	if (a) {
		set req.http.X = "1";
	} elseif (b) {
		set req.http.X = "2";
	} else {
		set req.http.X = "3";
	}
}
`
	prog := Parse(src)
	sub := prog.SubroutineByName("vcl_recv")
	top := sub.Body[0].(*ast.If)
	if len(top.Alternate) != 1 {
		t.Fatalf("expected elseif collapsed into one nested If")
	}
	nested, ok := top.Alternate[0].(*ast.If)
	if !ok {
		t.Fatalf("expected nested If for elseif arm, got %T", top.Alternate[0])
	}
	if len(nested.Alternate) != 1 {
		t.Errorf("expected trailing else arm on nested if")
	}
}

func TestParse_LabelAndGoto(t *testing.T) {
	src := `
sub vcl_recv {
	goto skip;
	set req.http.X = "unreached";
	skip:
	set req.http.X = "done";
}
`
	prog := Parse(src)
	sub := prog.SubroutineByName("vcl_recv")
	if _, ok := sub.Body[0].(*ast.Goto); !ok {
		t.Errorf("expected Goto as first statement, got %T", sub.Body[0])
	}
	foundLabel := false
	for _, s := range sub.Body {
		if l, ok := s.(*ast.Label); ok && l.Name == "skip" {
			foundLabel = true
		}
	}
	if !foundLabel {
		t.Errorf("expected label 'skip' present in body")
	}
}

func TestParse_BareLogCallBecomesLogStatement(t *testing.T) {
	src := `
sub vcl_recv {
	std.log("hello");
}
`
	prog := Parse(src)
	sub := prog.SubroutineByName("vcl_recv")
	if _, ok := sub.Body[0].(*ast.Log); !ok {
		t.Errorf("expected std.log(...) parsed as Log statement, got %T", sub.Body[0])
	}
}

func TestParse_MalformedDeclarationRecordsDiagnosticAndResyncs(t *testing.T) {
	src := `
sub vcl_recv {
	set ;
	set req.http.X = "ok";
}
`
	prog := Parse(src)
	if len(prog.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic for malformed set statement")
	}
	sub := prog.SubroutineByName("vcl_recv")
	found := false
	for _, s := range sub.Body {
		if set, ok := s.(*ast.Set); ok && set.Target == "req.http.X" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected parser to resynchronize and still parse the trailing valid statement")
	}
}

func TestParse_ACLTableBackendDeclarations(t *testing.T) {
	src := `
acl trusted {
	"127.0.0.1";
	"192.168.0.0"/16;
}
table redirects {
	"/old": "/new",
}
backend origin {
	.host = "example.com";
	.port = "80";
}
`
	prog := Parse(src)
	if len(prog.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", prog.Diagnostics)
	}
	if len(prog.ACLs) != 1 || prog.ACLs[0].Name != "trusted" || len(prog.ACLs[0].Entries) != 2 {
		t.Fatalf("unexpected ACL parse result: %#v", prog.ACLs)
	}
	if len(prog.Tables) != 1 || len(prog.Tables[0].Entries) != 1 {
		t.Fatalf("unexpected table parse result: %#v", prog.Tables)
	}
	if len(prog.Backends) != 1 || prog.Backends[0].Name != "origin" {
		t.Fatalf("unexpected backend parse result: %#v", prog.Backends)
	}
}

func TestRoundTrip_PrintThenReparseIsStable(t *testing.T) {
	src := `
sub vcl_recv {
	set req.http.X-Foo = "bar";
	if ((req.http.X-Foo == "bar")) {
		return(lookup);
	}
}
`
	first := Parse(src)
	if len(first.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics on first parse: %v", first.Diagnostics)
	}
	printed := ast.Print(first)
	second := Parse(printed)
	if len(second.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics reparsing printed output: %v\n--printed--\n%s", second.Diagnostics, printed)
	}
	reprinted := ast.Print(second)
	if printed != reprinted {
		t.Errorf("round-trip not idempotent:\nfirst:\n%s\nsecond:\n%s", printed, reprinted)
	}

	firstSub := first.SubroutineByName("vcl_recv")
	secondSub := second.SubroutineByName("vcl_recv")
	if diff := cmp.Diff(firstSub.Body, secondSub.Body); diff != "" {
		t.Errorf("reparsed subroutine body differs structurally (-first +reparsed):\n%s", diff)
	}
}

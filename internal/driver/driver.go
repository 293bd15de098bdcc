// Package driver implements the programmatic surface the host consumes:
// parseVCL, compile, loadVCLContent, createVCLContext, and executeVCL, plus
// the restart/error-transition bookkeeping that backs them.
package driver

import (
	"github.com/juju/errors"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/eval"
	"github.com/vclrun/vcl/internal/parser"
	"github.com/vclrun/vcl/internal/vclcontext"
	"github.com/vclrun/vcl/internal/vlog"
)

var log = vlog.For("driver")

// maxRestarts bounds the `restart` statement's loop.
const maxRestarts = 3

// Program wraps a parsed ast.Program plus its compiled subroutine index, the
// shape `compile` hands back to a host.
type Program struct {
	AST         *ast.Program
	subroutines map[string]*ast.Subroutine
}

// ParseVCL implements parseVCL(source) -> Program: malformed input
// is reported via Diagnostics on the returned AST, which is still usable
// when the parser recovered.
func ParseVCL(source string) *ast.Program {
	return parser.Parse(source)
}

// Compile implements compile(Program) -> Subroutines: an index
// from subroutine name to its AST, ready for executeVCL to run by name.
func Compile(p *ast.Program) *Program {
	idx := make(map[string]*ast.Subroutine, len(p.Subroutines))
	for _, s := range p.Subroutines {
		idx[s.Name] = s
	}
	return &Program{AST: p, subroutines: idx}
}

// LoadVCLContent implements loadVCLContent(source) -> Program:
// parse+compile combined. Concatenating multiple sources textually before
// calling this is a supported composition strategy; include
// resolution is left to the host.
func LoadVCLContent(source string) *Program {
	return Compile(ParseVCL(source))
}

// CreateVCLContext implements createVCLContext() -> Context,
// additionally populating the registries (tables, backends, directors,
// acls) from p's declarations — the "compile" half of turning static
// declarations into the runtime structures the evaluator consults.
func CreateVCLContext(p *Program) *vclcontext.Context {
	ctx := vclcontext.New()
	populateACLs(ctx, p.AST.ACLs)
	populateTables(ctx, p.AST.Tables)
	populateBackends(ctx, p.AST.Backends)
	populateDirectors(ctx, p.AST.Directors)
	return ctx
}

func populateACLs(ctx *vclcontext.Context, acls []*ast.ACL) {
	for _, a := range acls {
		entries := make([]vclcontext.ACLEntry, len(a.Entries))
		for i, e := range a.Entries {
			entries[i] = vclcontext.ACLEntry{IP: e.IP, Subnet: e.Subnet, Negate: e.Negate}
		}
		ctx.ACLs.Add(&vclcontext.ACL{Name: a.Name, Entries: entries})
	}
}

func populateTables(ctx *vclcontext.Context, tables []*ast.Table) {
	for _, t := range tables {
		ctx.Tables.Add(t.Name)
		for _, e := range t.Entries {
			v, err := eval.Eval(ctx, e.Value)
			if err != nil {
				log.Warningf("table %s entry %s: %v", t.Name, e.Key, err)
				v = eval.StringValue("")
			}
			ctx.Tables.AddEntry(t.Name, e.Key, eval.ToTableValue(v))
		}
	}
}

func populateBackends(ctx *vclcontext.Context, backends []*ast.Backend) {
	for _, b := range backends {
		props := make(map[string]string, len(b.Properties))
		for k, expr := range b.Properties {
			v, err := eval.Eval(ctx, expr)
			if err != nil {
				log.Warningf("backend %s property %s: %v", b.Name, k, err)
				continue
			}
			props[k] = v.Stringify()
		}
		ctx.Backends.Add(&vclcontext.Backend{Name: b.Name, Properties: props, Healthy: true})
	}
}

func populateDirectors(ctx *vclcontext.Context, directors []*ast.Director) {
	for _, d := range directors {
		members := make([]vclcontext.DirectorBackend, len(d.Backends))
		for i, m := range d.Backends {
			members[i] = vclcontext.DirectorBackend{Ref: m.Ref, Weight: m.Weight}
		}
		ctx.Directors.Add(&vclcontext.Director{
			Name:     d.Name,
			Kind:     vclcontext.DirectorKind(d.Kind),
			Backends: members,
			Quorum:   d.Quorum,
			Retries:  d.Retries,
		})
	}
}

// ExecuteVCL implements executeVCL(subs, name, context) -> action (spec
// §4.8, §6): runs the named subroutine, handling error transitions by
// invoking vcl_error when defined, and bounding restart with maxRestarts.
func ExecuteVCL(p *Program, name string, ctx *vclcontext.Context) (string, error) {
	sub, ok := p.subroutines[name]
	if !ok {
		return "", errors.NotFoundf("subroutine %q", name)
	}

	action, err := eval.ExecSubroutine(ctx, sub)
	if err == nil {
		return action, nil
	}

	switch e := err.(type) {
	case *eval.ErrorTransition:
		ctx.Phase = vclcontext.PhaseError
		if errSub, ok := p.subroutines["vcl_error"]; ok {
			action, err2 := eval.ExecSubroutine(ctx, errSub)
			if err2 != nil {
				return "", errors.Annotatef(err2, "vcl_error after status %d", e.Status)
			}
			return action, nil
		}
		return "error", nil

	case eval.RestartSignal:
		ctx.RestartCount++
		if ctx.RestartCount > maxRestarts {
			return "", errors.Errorf("vcl: restart budget (%d) exceeded", maxRestarts)
		}
		return ExecuteVCL(p, name, ctx)

	default:
		return "", errors.Annotatef(err, "executing %s", name)
	}
}

// Names returns every compiled subroutine's name, for diagnostics/tests.
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.subroutines))
	for n := range p.subroutines {
		names = append(names, n)
	}
	return names
}

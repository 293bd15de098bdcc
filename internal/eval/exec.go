package eval

import (
	"fmt"
	"strings"
	"time"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/runtime/waf"
	"github.com/vclrun/vcl/internal/vclcontext"
)

// ErrorTransition is the control-flow value for an `error` statement or a
// waf.block() call: it unwinds the current subroutine and is handled by the
// driver invoking vcl_error if one is defined. It is
// returned as a Go error, not thrown, per the "represent control flow as
// explicit result values" design note.
type ErrorTransition struct {
	Status  int
	Message string
}

func (e *ErrorTransition) Error() string {
	return fmt.Sprintf("vcl error %d: %s", e.Status, e.Message)
}

// RestartSignal is raised by a `restart` statement; the driver increments
// the context's restart counter and runs the subroutine it was called with
// again, failing fatally if the budget is exceeded.
type RestartSignal struct{}

func (RestartSignal) Error() string { return "vcl restart" }

// ctrlKind distinguishes the non-error control-flow outcomes of executing a
// statement list.
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlGoto
)

type ctrl struct {
	kind      ctrlKind
	action    string
	gotoLabel string
}

// maxGotoJumps bounds the number of goto transitions a single
// ExecSubroutine call may take, turning a goto cycle (e.g. `l: goto l;`)
// into a fatal error instead of an infinite loop.
const maxGotoJumps = 10000

// ExecSubroutine runs sub's body to completion or to its first return/error/
// restart transition. Labels are pre-scanned once per call over
// the subroutine's top-level statement list; goto only
// resolves against labels at that top level, matching the parser's flat
// per-subroutine label scope.
func ExecSubroutine(ctx *vclcontext.Context, sub *ast.Subroutine) (string, error) {
	labels := map[string]int{}
	for i, stmt := range sub.Body {
		if l, ok := stmt.(*ast.Label); ok {
			labels[l.Name] = i
		}
	}

	idx := 0
	jumps := 0
	for idx < len(sub.Body) {
		c, err := execStatement(ctx, sub.Body[idx])
		if err != nil {
			return "", err
		}
		switch c.kind {
		case ctrlReturn:
			return c.action, nil
		case ctrlGoto:
			jumps++
			if jumps > maxGotoJumps {
				return "", fmt.Errorf("eval: goto cycle exceeded %d jumps in subroutine %q", maxGotoJumps, sub.Name)
			}
			target, ok := labels[c.gotoLabel]
			if !ok {
				return "", fmt.Errorf("eval: undefined label %q", c.gotoLabel)
			}
			idx = target
			continue
		}
		idx++
	}
	return "", nil
}

// execBlock runs a nested statement list (an if/else arm) start to finish,
// stopping at the first non-none control signal or error and propagating it
// to the caller, which may be the subroutine's top-level loop.
func execBlock(ctx *vclcontext.Context, stmts []ast.Statement) (ctrl, error) {
	for _, stmt := range stmts {
		c, err := execStatement(ctx, stmt)
		if err != nil {
			return ctrl{}, err
		}
		if c.kind != ctrlNone {
			return c, nil
		}
	}
	return ctrl{}, nil
}

func execStatement(ctx *vclcontext.Context, stmt ast.Statement) (ctrl, error) {
	switch s := stmt.(type) {
	case *ast.Label:
		return ctrl{}, nil

	case *ast.Declare:
		ctx.Locals[strings.TrimPrefix(s.Name, "var.")] = zeroValueFor(s.Type)
		return ctrl{}, nil

	case *ast.Assignment:
		v, err := Eval(ctx, s.Value)
		if err != nil {
			return ctrl{}, err
		}
		if err := resolveSet(ctx, s.Target, v); err != nil {
			return ctrl{}, err
		}
		return ctrl{}, nil

	case *ast.Set:
		v, err := Eval(ctx, s.Value)
		if err != nil {
			return ctrl{}, err
		}
		if err := resolveSet(ctx, s.Target, v); err != nil {
			return ctrl{}, err
		}
		return ctrl{}, nil

	case *ast.Unset:
		if err := resolveUnset(ctx, s.Target); err != nil {
			return ctrl{}, err
		}
		return ctrl{}, nil

	case *ast.Log:
		v, err := Eval(ctx, s.Value)
		if err != nil {
			return ctrl{}, err
		}
		waf.LogMessage(time.Now(), v.Stringify())
		return ctrl{}, nil

	case *ast.ExprStmt:
		if _, err := Eval(ctx, s.Value); err != nil {
			return ctrl{}, err
		}
		return ctrl{}, nil

	case *ast.If:
		test, err := Eval(ctx, s.Test)
		if err != nil {
			return ctrl{}, err
		}
		if test.Truthy() {
			return execBlock(ctx, s.Consequent)
		}
		return execBlock(ctx, s.Alternate)

	case *ast.Return:
		return ctrl{kind: ctrlReturn, action: s.Action}, nil

	case *ast.Error:
		status := s.Status
		message := ""
		if s.Message != nil {
			v, err := Eval(ctx, s.Message)
			if err != nil {
				return ctrl{}, err
			}
			message = v.Stringify()
		}
		ctx.Obj.Status = status
		ctx.Obj.Response = message
		ctx.FastlyError = message
		return ctrl{}, &ErrorTransition{Status: status, Message: message}

	case *ast.Synthetic:
		v, err := Eval(ctx, s.Value)
		if err != nil {
			return ctrl{}, err
		}
		if ctx.Phase == vclcontext.PhaseDeliver {
			ctx.Resp.Body = v.Stringify()
		} else {
			ctx.Obj.Response = v.Stringify()
		}
		return ctrl{}, nil

	case *ast.HashData:
		v, err := Eval(ctx, s.Value)
		if err != nil {
			return ctrl{}, err
		}
		ctx.AppendHashKey(v.Stringify())
		return ctrl{}, nil

	case *ast.Goto:
		return ctrl{kind: ctrlGoto, gotoLabel: s.Label}, nil

	case *ast.Restart:
		return ctrl{}, RestartSignal{}

	default:
		return ctrl{}, fmt.Errorf("eval: unsupported statement node %T", stmt)
	}
}

// zeroValueFor implements declare's per-type zero-initialization.
func zeroValueFor(typeName string) Value {
	switch typeName {
	case "STRING":
		return StringValue("")
	case "INTEGER":
		return IntValue(0)
	case "FLOAT":
		return FloatValue(0)
	case "BOOL":
		return BoolValue(false)
	case "TIME", "RTIME":
		return DurationValue(0, "")
	case "IP":
		return IPValue("")
	default:
		return Null()
	}
}

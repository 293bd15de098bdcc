package eval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/vclcontext"
)

// Eval evaluates an expression node to a Value against ctx.
func Eval(ctx *vclcontext.Context, e ast.Expression) (Value, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		if n.IsInt {
			return IntValue(int64(n.Value)), nil
		}
		return FloatValue(n.Value), nil
	case *ast.DurationLiteral:
		return DurationValue(durationSeconds(n.Value, n.Unit), fmt.Sprintf("%g%s", n.Value, n.Unit)), nil
	case *ast.StringLiteral:
		return StringValue(n.Value), nil
	case *ast.RegexLiteral:
		re, err := compileRegex(n.Pattern, n.Flags)
		if err != nil {
			return Value{}, err
		}
		return RegexValue(re, n.Pattern), nil
	case *ast.Identifier:
		return resolveGet(ctx, n.Name)
	case *ast.Unary:
		return evalUnary(ctx, n)
	case *ast.Binary:
		return evalBinary(ctx, n)
	case *ast.Ternary:
		test, err := Eval(ctx, n.Test)
		if err != nil {
			return Value{}, err
		}
		if test.Truthy() {
			return Eval(ctx, n.Consequent)
		}
		return Eval(ctx, n.Alternate)
	case *ast.FunctionCall:
		return Call(ctx, n.Name, n.Args)
	default:
		return Value{}, fmt.Errorf("eval: unsupported expression node %T", e)
	}
}

func durationSeconds(value float64, unit string) float64 {
	switch unit {
	case "s":
		return value
	case "m":
		return value * 60
	case "h":
		return value * 3600
	case "d":
		return value * 86400
	case "y":
		return value * 365 * 86400
	default:
		return value
	}
}

func evalUnary(ctx *vclcontext.Context, n *ast.Unary) (Value, error) {
	v, err := Eval(ctx, n.Operand)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case "!":
		return BoolValue(!v.Truthy()), nil
	case "-":
		if v.Kind == KindInteger {
			return IntValue(-v.Int), nil
		}
		return FloatValue(-v.AsNumber()), nil
	default:
		return Value{}, fmt.Errorf("eval: unknown unary operator %q", n.Op)
	}
}

func evalBinary(ctx *vclcontext.Context, n *ast.Binary) (Value, error) {
	// && and || short-circuit; evaluate the left first and decide
	// whether the right is needed before recursing.
	switch n.Op {
	case ast.OpAnd:
		l, err := Eval(ctx, n.Left)
		if err != nil {
			return Value{}, err
		}
		if !l.Truthy() {
			return BoolValue(false), nil
		}
		r, err := Eval(ctx, n.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(r.Truthy()), nil
	case ast.OpOr:
		l, err := Eval(ctx, n.Left)
		if err != nil {
			return Value{}, err
		}
		if l.Truthy() {
			return BoolValue(true), nil
		}
		r, err := Eval(ctx, n.Right)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(r.Truthy()), nil
	}

	// ~/!~ against a bare identifier that names a declared ACL is an ACL
	// membership test (`client.ip ~ trusted`), not a regex match; this needs
	// the unevaluated right-hand node to tell an ACL name apart from a
	// string/regex expression.
	if n.Op == ast.OpMatch || n.Op == ast.OpNoMatch {
		l, err := Eval(ctx, n.Left)
		if err != nil {
			return Value{}, err
		}
		matched, err := evalMatch(ctx, l, n.Right)
		if err != nil {
			return Value{}, err
		}
		if n.Op == ast.OpNoMatch {
			matched = !matched
		}
		return BoolValue(matched), nil
	}

	l, err := Eval(ctx, n.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := Eval(ctx, n.Right)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case ast.OpAdd:
		return Add(l, r), nil
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return Arith(string(n.Op), l, r)
	case ast.OpEq:
		return BoolValue(Equal(l, r)), nil
	case ast.OpNeq:
		return BoolValue(!Equal(l, r)), nil
	case ast.OpLt, ast.OpLeq, ast.OpGt, ast.OpGeq:
		return BoolValue(Compare(string(n.Op), l, r)), nil
	default:
		return Value{}, fmt.Errorf("eval: unknown binary operator %q", n.Op)
	}
}

// evalMatch dispatches `~`'s right operand: a bare identifier naming a
// registered ACL is an ACL membership test; anything else evaluates
// normally and is matched as a regex.
func evalMatch(ctx *vclcontext.Context, l Value, rightNode ast.Expression) (bool, error) {
	if ident, ok := rightNode.(*ast.Identifier); ok && !strings.Contains(ident.Name, ".") {
		if _, found := ctx.ACLs.Get(ident.Name); found {
			return ctx.ACLs.Matches(ident.Name, l.Stringify()), nil
		}
	}
	r, err := Eval(ctx, rightNode)
	if err != nil {
		return false, err
	}
	return regexMatch(l, r), nil
}

// regexMatch implements `~`/`!~`: left coerced to string, right
// interpreted as a pattern with optional trailing /flags (only "i" for
// case-insensitivity is recognized). Empty left string never matches.
func regexMatch(l, r Value) bool {
	s := l.Stringify()
	if s == "" {
		return false
	}
	pattern := r.Stringify()
	if r.Kind == KindRegex && r.Regex != nil {
		return r.Regex.MatchString(s)
	}
	re, err := compileRegexLiteral(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// compileRegexLiteral parses a bare pattern string, recognizing a trailing
// "/flags" suffix on a "/pattern/flags" wrapped literal.
func compileRegexLiteral(pattern string) (*regexp.Regexp, error) {
	if len(pattern) >= 2 && pattern[0] == '/' {
		if idx := strings.LastIndexByte(pattern, '/'); idx > 0 {
			body := pattern[1:idx]
			flags := pattern[idx+1:]
			return compileRegex(body, flags)
		}
	}
	return compileRegex(pattern, "")
}

func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	if strings.Contains(flags, "i") {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

package parser

import (
	"strconv"
	"strings"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/token"
)

// Operator precedence levels, low to high.
const (
	precLowest int = iota
	precTernary
	precOr
	precAnd
	precEquality
	precRelational
	precRegex
	precAdditive
	precMultiplicative
	precUnary
)

var binaryPrecedence = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"==": precEquality,
	"!=": precEquality,
	"<":  precRelational,
	"<=": precRelational,
	">":  precRelational,
	">=": precRelational,
	"~":  precRegex,
	"!~": precRegex,
	"+":  precAdditive,
	"-":  precAdditive,
	"*":  precMultiplicative,
	"/":  precMultiplicative,
	"%":  precMultiplicative,
}

func (p *parser) parseExpression() ast.Expression {
	return p.parseExpressionPrec(precLowest)
}

// parseExpressionPrec implements precedence climbing (Pratt parsing): parse
// a prefix operand, then keep absorbing infix operators whose precedence
// exceeds the floor passed in, recursing for the right operand so that
// higher-precedence operators bind tighter. See perbu-vclparser's
// pkg/parser/expressions.go for the canonical shape of this algorithm.
func (p *parser) parseExpressionPrec(minPrec int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for {
		t := p.peek()
		if t.Kind == token.Operator {
			prec, ok := binaryPrecedence[t.Lexeme]
			if !ok || prec <= minPrec {
				break
			}
			p.next()
			right := p.parseExpressionPrec(prec)
			left = &ast.Binary{Op: ast.BinaryOp(t.Lexeme), Left: left, Right: right}
			continue
		}
		if p.isPunct(t, "?") && precTernary > minPrec {
			left = p.parseTernaryTail(left)
			continue
		}
		break
	}
	return left
}

func (p *parser) parseTernaryTail(test ast.Expression) ast.Expression {
	p.next() // "?"
	consequent := p.parseExpressionPrec(precTernary)
	p.expectColon()
	alternate := p.parseExpressionPrec(precTernary)
	return &ast.Ternary{Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *parser) expectColon() {
	t := p.peek()
	if t.Kind == token.Punctuation && t.Lexeme == ":" {
		p.next()
		return
	}
	p.errorf(t, "expected ':' in ternary expression")
}

func (p *parser) parsePrefix() ast.Expression {
	t := p.peek()
	switch {
	case p.isOp(t, "!"):
		p.next()
		return &ast.Unary{Op: "!", Operand: p.parseExpressionPrec(precUnary)}
	case p.isOp(t, "-"):
		p.next()
		return &ast.Unary{Op: "-", Operand: p.parseExpressionPrec(precUnary)}
	case p.isPunct(t, "("):
		p.next()
		inner := p.parseExpression()
		p.expectPunct(")")
		return inner
	case t.Kind == token.Number:
		p.next()
		return parseNumberLiteral(t.Lexeme)
	case t.Kind == token.String:
		p.next()
		return p.parseStringOrDuration(t)
	case t.Kind == token.Keyword && isActionKeyword(t.Lexeme):
		p.next()
		return &ast.Identifier{Name: t.Lexeme}
	case t.Kind == token.Identifier:
		p.next()
		if p.isPunct(p.peek(), "(") {
			return p.parseCallTail(t.Lexeme)
		}
		return p.concatAdjacentStrings(&ast.Identifier{Name: t.Lexeme})
	default:
		p.errorf(t, "unexpected token %q in expression", t.Lexeme)
		p.next()
		return nil
	}
}

// isActionKeyword lets reserved action words (true/false/deliver/pass/...)
// act as identifiers inside expressions, e.g. `req.backend == pass`.
func isActionKeyword(lexeme string) bool {
	switch lexeme {
	case "true", "false", "deliver", "fetch", "pass", "hash", "lookup", "restart", "purge":
		return true
	}
	return false
}

func (p *parser) parseCallTail(name string) ast.Expression {
	p.next() // "("
	var args []ast.Expression
	for !p.isPunct(p.peek(), ")") {
		if p.peek().Kind == token.EOF {
			break
		}
		args = append(args, p.parseExpression())
		if p.isPunct(p.peek(), ",") {
			p.next()
			continue
		}
		break
	}
	p.expectPunct(")")
	return &ast.FunctionCall{Name: name, Args: args}
}

// concatAdjacentStrings folds quoted string literals that directly follow an
// identifier (`a "-" "x"`) into nested Binary(OpAdd) nodes. An identifier
// after such a literal is not folded, and an expression that starts with a
// string literal is not folded with the literals after it.
func (p *parser) concatAdjacentStrings(left ast.Expression) ast.Expression {
	for p.peek().Kind == token.String && looksLikeQuoted(p.peek().Lexeme) {
		t := p.next()
		right := p.parseStringOrDuration(t)
		left = &ast.Binary{Op: ast.OpAdd, Left: left, Right: right}
	}
	return left
}

func looksLikeQuoted(lexeme string) bool {
	return strings.HasPrefix(lexeme, "\"") || strings.HasPrefix(lexeme, "'") || strings.HasPrefix(lexeme, "{")
}

func parseNumberLiteral(lexeme string) ast.Expression {
	if !strings.Contains(lexeme, ".") {
		if n, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
			return &ast.NumberLiteral{Value: float64(n), IsInt: true}
		}
	}
	f, _ := strconv.ParseFloat(lexeme, 64)
	return &ast.NumberLiteral{Value: f, IsInt: false}
}

// parseStringOrDuration distinguishes a quoted string token from a bare
// time-unit literal (`5m`) the lexer also emits as a String-kind token.
func (p *parser) parseStringOrDuration(t token.Token) ast.Expression {
	if looksLikeQuoted(t.Lexeme) {
		return &ast.StringLiteral{Value: unquote(t.Lexeme)}
	}
	if n, unit, ok := splitDuration(t.Lexeme); ok {
		return &ast.DurationLiteral{Value: n, Unit: unit}
	}
	return &ast.StringLiteral{Value: t.Lexeme}
}

func splitDuration(lexeme string) (value float64, unit string, ok bool) {
	if lexeme == "" {
		return 0, "", false
	}
	last := lexeme[len(lexeme)-1]
	if !strings.ContainsRune("smhdy", rune(last)) {
		return 0, "", false
	}
	numPart := lexeme[:len(lexeme)-1]
	f, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, "", false
	}
	return f, string(last), true
}

// unquote strips the surrounding quote delimiters (single, double, triple, or
// brace-quoted synthetic) and resolves backslash escapes in the simple forms.
func unquote(lexeme string) string {
	switch {
	case strings.HasPrefix(lexeme, `"""`) && strings.HasSuffix(lexeme, `"""`) && len(lexeme) >= 6:
		return lexeme[3 : len(lexeme)-3]
	case strings.HasPrefix(lexeme, "'''") && strings.HasSuffix(lexeme, "'''") && len(lexeme) >= 6:
		return lexeme[3 : len(lexeme)-3]
	case strings.HasPrefix(lexeme, `{"`) && strings.HasSuffix(lexeme, `"}`) && len(lexeme) >= 4:
		return lexeme[2 : len(lexeme)-2]
	case strings.HasPrefix(lexeme, "{") && strings.HasSuffix(lexeme, "}") && len(lexeme) >= 2:
		return lexeme[1 : len(lexeme)-1]
	case len(lexeme) >= 2 && (lexeme[0] == '"' || lexeme[0] == '\'') && lexeme[len(lexeme)-1] == lexeme[0]:
		return unescapeBackslashes(lexeme[1 : len(lexeme)-1])
	default:
		return lexeme
	}
}

func unescapeBackslashes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

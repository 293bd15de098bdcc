package parser

import (
	"strconv"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/token"
)

func (p *parser) parseStatement() ast.Statement {
	t := p.peek()

	// label: "<name>:" — only recognized at statement position so the
	// ternary ':' (which only ever appears mid-expression) is unaffected.
	if (t.Kind == token.Identifier || t.Kind == token.Keyword) && p.isPunct(p.peekAt(1), ":") {
		p.next()
		p.next()
		return &ast.Label{Name: t.Lexeme}
	}

	switch {
	case p.isKeyword(t, "if"):
		return p.parseIf()
	case p.isKeyword(t, "set"):
		return p.parseSet()
	case p.isKeyword(t, "unset"):
		return p.parseUnset()
	case p.isKeyword(t, "return"):
		return p.parseReturn()
	case p.isKeyword(t, "error"):
		return p.parseError()
	case p.isKeyword(t, "synthetic"):
		return p.parseSynthetic()
	case p.isKeyword(t, "hash_data"):
		return p.parseHashData()
	case p.isKeyword(t, "restart"):
		p.next()
		p.consumeSemi()
		return &ast.Restart{}
	case p.isKeyword(t, "goto"):
		return p.parseGoto()
	case p.isKeyword(t, "declare"):
		return p.parseDeclare()
	case t.Kind == token.Identifier && p.identLooksLikeFunctionCall():
		// bare function-call statement, e.g. VMOD calls used for side
		// effects only (`std.log("x");`).
		expr := p.parseExpression()
		p.consumeSemi()
		if call, ok := expr.(*ast.FunctionCall); ok && isLogCall(call.Name) && len(call.Args) == 1 {
			return &ast.Log{Value: call.Args[0]}
		}
		return &ast.ExprStmt{Value: expr}
	case t.Kind == token.Identifier:
		return p.parseAssignmentOrBareIdent()
	default:
		p.errorf(t, "unexpected token %q in statement", t.Lexeme)
		p.resync()
		return nil
	}
}

func isLogCall(name string) bool {
	return name == "log" || name == "std.log" || name == "waf.log"
}

func (p *parser) consumeSemi() {
	if p.isPunct(p.peek(), ";") {
		p.next()
	}
}

func (p *parser) identLooksLikeFunctionCall() bool {
	return p.isPunct(p.peekAt(1), "(")
}

func (p *parser) parseAssignmentOrBareIdent() ast.Statement {
	target := p.next()
	if !p.isOp(p.peek(), "=") {
		p.errorf(p.peek(), "expected '=' after %q", target.Lexeme)
		p.resync()
		return nil
	}
	p.next() // "="
	val := p.parseExpression()
	p.consumeSemi()
	return &ast.Assignment{Target: target.Lexeme, Value: val}
}

func (p *parser) parseIf() ast.Statement {
	p.next() // "if"
	if _, ok := p.expectPunct("("); !ok {
		p.resync()
		return nil
	}
	test := p.parseExpression()
	p.expectPunct(")")
	if _, ok := p.expectPunct("{"); !ok {
		p.resync()
		return nil
	}
	consequent := p.parseStatementsUntilRBrace()

	var alternate []ast.Statement
	t := p.peek()
	if t.Kind == token.Keyword && (t.Lexeme == "elseif" || t.Lexeme == "else") {
		if t.Lexeme == "elseif" {
			// Rewrite `elseif` as a nested if in the alternate branch so
			// chains collapse naturally: else { if (...) {...} }.
			nested := p.parseElseIfChain()
			alternate = []ast.Statement{nested}
		} else {
			p.next() // "else"
			if p.isKeyword(p.peek(), "if") {
				nested := p.parseIf()
				alternate = []ast.Statement{nested}
			} else {
				p.expectPunct("{")
				alternate = p.parseStatementsUntilRBrace()
			}
		}
	}
	return &ast.If{Test: test, Consequent: consequent, Alternate: alternate}
}

// parseElseIfChain handles `elseif (test) { ... }` continuing into further
// `elseif`/`else` arms, and is itself wrapped as the alternate of the
// preceding arm by parseIf.
func (p *parser) parseElseIfChain() ast.Statement {
	p.next() // "elseif"
	if _, ok := p.expectPunct("("); !ok {
		p.resync()
		return nil
	}
	test := p.parseExpression()
	p.expectPunct(")")
	p.expectPunct("{")
	consequent := p.parseStatementsUntilRBrace()

	var alternate []ast.Statement
	t := p.peek()
	if t.Kind == token.Keyword && t.Lexeme == "elseif" {
		alternate = []ast.Statement{p.parseElseIfChain()}
	} else if t.Kind == token.Keyword && t.Lexeme == "else" {
		p.next()
		if p.isKeyword(p.peek(), "if") {
			alternate = []ast.Statement{p.parseIf()}
		} else {
			p.expectPunct("{")
			alternate = p.parseStatementsUntilRBrace()
		}
	}
	return &ast.If{Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *parser) parseSet() ast.Statement {
	p.next() // "set"
	target := p.peek()
	if target.Kind != token.Identifier {
		p.errorf(target, "expected target in set statement")
		p.resync()
		return nil
	}
	p.next()
	if !p.isOp(p.peek(), "=") {
		p.errorf(p.peek(), "expected '=' in set statement")
		p.resync()
		return nil
	}
	p.next()
	val := p.parseExpression()
	p.consumeSemi()
	return &ast.Set{Target: target.Lexeme, Value: val}
}

func (p *parser) parseUnset() ast.Statement {
	p.next() // "unset"
	target := p.next()
	p.consumeSemi()
	return &ast.Unset{Target: target.Lexeme}
}

// parseReturn handles both `return(action)` and `return action;` forms,
// preserving extended action spellings verbatim.
func (p *parser) parseReturn() ast.Statement {
	p.next() // "return"
	if p.isPunct(p.peek(), "(") {
		p.next()
		action := p.next()
		p.expectPunct(")")
		p.consumeSemi()
		return &ast.Return{Action: action.Lexeme}
	}
	action := p.next()
	p.consumeSemi()
	return &ast.Return{Action: action.Lexeme}
}

func (p *parser) parseError() ast.Statement {
	p.next() // "error"
	t := p.peek()
	status := 0
	if t.Kind == token.Number {
		p.next()
		status, _ = strconv.Atoi(t.Lexeme)
	}
	var msg ast.Expression
	if !p.isPunct(p.peek(), ";") {
		msg = p.parseExpression()
	}
	p.consumeSemi()
	return &ast.Error{Status: status, Message: msg}
}

func (p *parser) parseSynthetic() ast.Statement {
	p.next() // "synthetic"
	val := p.parseExpression()
	p.consumeSemi()
	return &ast.Synthetic{Value: val}
}

func (p *parser) parseHashData() ast.Statement {
	p.next() // "hash_data"
	var val ast.Expression
	if p.isPunct(p.peek(), "(") {
		p.next()
		val = p.parseExpression()
		p.expectPunct(")")
	} else {
		val = p.parseExpression()
	}
	p.consumeSemi()
	return &ast.HashData{Value: val}
}

func (p *parser) parseGoto() ast.Statement {
	p.next() // "goto"
	label := p.next()
	p.consumeSemi()
	return &ast.Goto{Label: label.Lexeme}
}

// parseDeclare handles `declare local var.<name> <TYPE>;`.
func (p *parser) parseDeclare() ast.Statement {
	p.next() // "declare"
	if p.isKeyword(p.peek(), "local") {
		p.next()
	}
	name := p.next()
	typ := p.next()
	p.consumeSemi()
	return &ast.Declare{Name: name.Lexeme, Type: typ.Lexeme}
}

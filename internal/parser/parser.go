// Package parser implements a recursive-descent parser over the VCL token
// stream: peek/next skip insignificant tokens, errorf records a positioned
// diagnostic, and a resync step recovers at the next statement boundary.
package parser

import (
	"fmt"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/lexer"
	"github.com/vclrun/vcl/internal/token"
)

// Parse tokenizes src and parses it into a Program. Malformed input never
// aborts parsing outright: diagnostics accumulate on the returned Program and
// the parser resynchronizes at the next ';' or '}', dropping only the
// declaration it failed on.
func Parse(src string) *ast.Program {
	toks := lexer.Tokenize(src)
	p := &parser{tokens: toks}
	return p.parseProgram()
}

type parser struct {
	tokens []token.Token
	pos    int
	prog   *ast.Program
}

// --- token navigation ---

func (p *parser) peek() token.Token {
	for p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		if t.Kind == token.Comment {
			p.pos++
			continue
		}
		return t
	}
	return token.Token{Kind: token.EOF}
}

// peekAt looks n significant (non-comment) tokens ahead of the cursor without
// consuming anything.
func (p *parser) peekAt(n int) token.Token {
	skipped := 0
	for i := p.pos; i < len(p.tokens); i++ {
		if p.tokens[i].Kind == token.Comment {
			continue
		}
		if skipped == n {
			return p.tokens[i]
		}
		skipped++
	}
	return token.Token{Kind: token.EOF}
}

func (p *parser) next() token.Token {
	t := p.peek()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token.Token, format string, args ...any) {
	p.prog.Diagnostics = append(p.prog.Diagnostics, ast.Diagnostic{
		Message: fmt.Sprintf(format, args...),
		Line:    t.Line,
		Column:  t.Column,
	})
}

// resync advances past tokens until it consumes a statement/declaration
// boundary (';' or '}') or reaches EOF, so one bad declaration does not
// prevent the rest of the program from parsing.
func (p *parser) resync() {
	for {
		t := p.peek()
		if t.Kind == token.EOF {
			return
		}
		p.next()
		if t.Kind == token.Punctuation && (t.Lexeme == ";" || t.Lexeme == "}") {
			return
		}
	}
}

func (p *parser) isKeyword(t token.Token, kw string) bool {
	return t.Kind == token.Keyword && t.Lexeme == kw
}

func (p *parser) isPunct(t token.Token, lex string) bool {
	return t.Kind == token.Punctuation && t.Lexeme == lex
}

func (p *parser) isOp(t token.Token, lex string) bool {
	return t.Kind == token.Operator && t.Lexeme == lex
}

func (p *parser) expectPunct(lex string) (token.Token, bool) {
	t := p.peek()
	if p.isPunct(t, lex) {
		return p.next(), true
	}
	p.errorf(t, "expected %q, got %s", lex, t.Lexeme)
	return t, false
}

// --- top level ---

func (p *parser) parseProgram() *ast.Program {
	p.prog = &ast.Program{}
	for {
		t := p.peek()
		if t.Kind == token.EOF {
			break
		}
		switch {
		case p.isKeyword(t, "sub"):
			if s := p.parseSubroutine(); s != nil {
				p.prog.Subroutines = append(p.prog.Subroutines, s)
			}
		case p.isKeyword(t, "acl"):
			if a := p.parseACL(); a != nil {
				p.prog.ACLs = append(p.prog.ACLs, a)
			}
		case p.isKeyword(t, "table"):
			if tb := p.parseTable(); tb != nil {
				p.prog.Tables = append(p.prog.Tables, tb)
			}
		case p.isKeyword(t, "backend"):
			if b := p.parseBackend(); b != nil {
				p.prog.Backends = append(p.prog.Backends, b)
			}
		case p.isKeyword(t, "director"):
			if d := p.parseDirector(); d != nil {
				p.prog.Directors = append(p.prog.Directors, d)
			}
		case p.isKeyword(t, "include"):
			p.next()
			name := p.next()
			p.prog.Includes = append(p.prog.Includes, unquote(name.Lexeme))
			if p.isPunct(p.peek(), ";") {
				p.next()
			}
		case p.isKeyword(t, "import"):
			p.next()
			name := p.next()
			p.prog.Imports = append(p.prog.Imports, name.Lexeme)
			if p.isPunct(p.peek(), ";") {
				p.next()
			}
		case t.Kind == token.Comment:
			p.prog.Comments = append(p.prog.Comments, t.Lexeme)
			p.next()
		default:
			p.errorf(t, "unexpected top-level token %q", t.Lexeme)
			p.next()
		}
	}
	return p.prog
}

func (p *parser) parseSubroutine() *ast.Subroutine {
	p.next() // "sub"
	name := p.next()
	if name.Kind != token.Identifier && name.Kind != token.Keyword {
		p.errorf(name, "expected subroutine name")
		p.resync()
		return nil
	}
	if _, ok := p.expectPunct("{"); !ok {
		p.resync()
		return nil
	}
	body := p.parseStatementsUntilRBrace()
	sub := &ast.Subroutine{Name: name.Lexeme, Body: body}
	return sub
}

func (p *parser) parseStatementsUntilRBrace() []ast.Statement {
	var stmts []ast.Statement
	for {
		t := p.peek()
		if t.Kind == token.EOF {
			p.errorf(t, "unclosed block")
			break
		}
		if p.isPunct(t, "}") {
			p.next()
			break
		}
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

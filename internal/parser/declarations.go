package parser

import (
	"strconv"
	"strings"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/token"
)

// parseACL parses `acl <name> { "<ip>"[/<n>]; … }`.
func (p *parser) parseACL() *ast.ACL {
	p.next() // "acl"
	name := p.next()
	if _, ok := p.expectPunct("{"); !ok {
		p.resync()
		return nil
	}
	a := &ast.ACL{Name: name.Lexeme}
	for !p.isPunct(p.peek(), "}") {
		t := p.peek()
		if t.Kind == token.EOF {
			p.errorf(t, "unclosed acl %q", name.Lexeme)
			return a
		}
		negate := false
		if p.isOp(t, "!") {
			p.next()
			negate = true
			t = p.peek()
		}
		if t.Kind != token.String {
			p.errorf(t, "expected quoted IP in acl entry")
			p.next()
			continue
		}
		p.next()
		ipLiteral := unquote(t.Lexeme)
		ip, subnet := splitIPSubnet(ipLiteral)
		if subnet == -1 && p.isOp(p.peek(), "/") {
			p.next()
			n := p.next()
			v, _ := strconv.Atoi(n.Lexeme)
			subnet = v
		}
		a.Entries = append(a.Entries, ast.ACLEntry{IP: ip, Subnet: subnet, Negate: negate})
		p.consumeSemi()
	}
	p.next() // "}"
	return a
}

func splitIPSubnet(s string) (ip string, subnet int) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		n, err := strconv.Atoi(s[i+1:])
		if err == nil {
			return s[:i], n
		}
	}
	return s, -1
}

// parseTable parses `table <name> { "k": v, … }`.
func (p *parser) parseTable() *ast.Table {
	p.next() // "table"
	name := p.next()
	if _, ok := p.expectPunct("{"); !ok {
		p.resync()
		return nil
	}
	tb := &ast.Table{Name: name.Lexeme}
	for !p.isPunct(p.peek(), "}") {
		t := p.peek()
		if t.Kind == token.EOF {
			p.errorf(t, "unclosed table %q", name.Lexeme)
			return tb
		}
		if t.Kind != token.String {
			p.errorf(t, "expected quoted key in table entry")
			p.next()
			continue
		}
		p.next()
		key := unquote(t.Lexeme)
		p.expectColon()
		val := p.parseExpression()
		tb.Entries = append(tb.Entries, ast.TableEntry{Key: key, Value: val})
		if p.isPunct(p.peek(), ",") {
			p.next()
		}
	}
	p.next() // "}"
	return tb
}

// parseBackend parses `backend <name> { .prop = v; … }`, including a nested
// `.probe { … }` block.
func (p *parser) parseBackend() *ast.Backend {
	p.next() // "backend"
	name := p.next()
	if _, ok := p.expectPunct("{"); !ok {
		p.resync()
		return nil
	}
	b := &ast.Backend{Name: name.Lexeme, Properties: map[string]ast.Expression{}}
	for !p.isPunct(p.peek(), "}") {
		t := p.peek()
		if t.Kind == token.EOF {
			p.errorf(t, "unclosed backend %q", name.Lexeme)
			return b
		}
		var prop token.Token
		switch {
		case t.Kind == token.Identifier && strings.HasPrefix(t.Lexeme, "."):
			// The lexer reads `.host` as a single identifier token.
			prop = p.next()
			prop.Lexeme = prop.Lexeme[1:]
		case p.isPunct(t, "."):
			p.next() // "."
			prop = p.next()
		default:
			p.errorf(t, "expected '.' before backend property")
			p.next()
			continue
		}
		if prop.Lexeme == "probe" && p.isPunct(p.peek(), "{") {
			b.Probe = p.parsePropsBlock()
			continue
		}
		if _, ok := p.expectOp("="); !ok {
			p.resync()
			continue
		}
		val := p.parseExpression()
		b.Properties[prop.Lexeme] = val
		p.consumeSemi()
	}
	p.next() // "}"
	return b
}

func (p *parser) expectOp(lex string) (token.Token, bool) {
	t := p.peek()
	if p.isOp(t, lex) {
		return p.next(), true
	}
	p.errorf(t, "expected %q", lex)
	return t, false
}

func (p *parser) parsePropsBlock() map[string]ast.Expression {
	p.next() // "{"
	props := map[string]ast.Expression{}
	for !p.isPunct(p.peek(), "}") {
		t := p.peek()
		if t.Kind == token.EOF {
			return props
		}
		var name token.Token
		switch {
		case t.Kind == token.Identifier && strings.HasPrefix(t.Lexeme, "."):
			name = p.next()
			name.Lexeme = name.Lexeme[1:]
		case p.isPunct(t, "."):
			p.next()
			name = p.next()
		default:
			p.next()
			continue
		}
		if _, ok := p.expectOp("="); !ok {
			p.resync()
			continue
		}
		props[name.Lexeme] = p.parseExpression()
		p.consumeSemi()
	}
	p.next() // "}"
	return props
}

// parseDirector parses `director <name> <kind> { { .backend = b1; .weight = 1; } … }`.
func (p *parser) parseDirector() *ast.Director {
	p.next() // "director"
	name := p.next()
	kind := p.next()
	if _, ok := p.expectPunct("{"); !ok {
		p.resync()
		return nil
	}
	d := &ast.Director{Name: name.Lexeme, Kind: ast.DirectorKind(kind.Lexeme)}
	for !p.isPunct(p.peek(), "}") {
		t := p.peek()
		if t.Kind == token.EOF {
			p.errorf(t, "unclosed director %q", name.Lexeme)
			return d
		}
		switch {
		case p.isPunct(t, "{"):
			props := p.parsePropsBlock()
			db := ast.DirectorBackend{Weight: 1}
			if ref, ok := props["backend"]; ok {
				if id, ok := ref.(*ast.Identifier); ok {
					db.Ref = id.Name
				}
			}
			if w, ok := props["weight"]; ok {
				if n, ok := w.(*ast.NumberLiteral); ok {
					db.Weight = n.Value
				}
			}
			d.Backends = append(d.Backends, db)
		case p.isPunct(t, ".") || (t.Kind == token.Identifier && strings.HasPrefix(t.Lexeme, ".")):
			prop := p.next()
			if prop.Lexeme == "." {
				prop = p.next()
			} else {
				prop.Lexeme = prop.Lexeme[1:]
			}
			p.expectOp("=")
			val := p.parseExpression()
			p.consumeSemi()
			switch prop.Lexeme {
			case "quorum":
				if n, ok := val.(*ast.NumberLiteral); ok {
					d.Quorum = n.Value
				}
			case "retries":
				if n, ok := val.(*ast.NumberLiteral); ok {
					d.Retries = int(n.Value)
				}
			}
		default:
			p.next()
		}
	}
	p.next() // "}"
	return d
}

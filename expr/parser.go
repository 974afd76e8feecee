// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package expr

import (
	"strconv"
	"strings"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/lexer"
)

type memKind struct {
	size   int
	signed bool
	big    bool
}

var memReadKinds = map[string]memKind{
	"i8": {1, true, false}, "i16": {2, true, false}, "i32": {4, true, false},
	"u8": {1, false, false}, "u16": {2, false, false}, "u32": {4, false, false},
	"ib8": {1, true, true}, "ib16": {2, true, true}, "ib32": {4, true, true},
	"ub8": {1, false, true}, "ub16": {2, false, true}, "ub32": {4, false, true},
}

func registerNum(name string) (int, bool) {
	switch strings.ToLower(name) {
	case "sp":
		return 13, true
	case "lr":
		return 14, true
	case "pc":
		return 15, true
	}
	if len(name) >= 2 && (name[0] == 'r' || name[0] == 'R') {
		n, err := strconv.Atoi(name[1:])
		if err == nil && n >= 0 && n <= 15 {
			return n, true
		}
	}
	return 0, false
}

// Parser builds an expression tree by consuming tokens from a lexer. It
// implements a precedence-climbing parser: parseBinary repeatedly folds in
// the next operator whose precedence is at or above the current floor,
// recursing with floor+1 on the right-hand side -- the rotation the design
// notes describe falls out of that recursion rather than a separate
// repair pass.
type Parser struct {
	lex        *lexer.Lexer
	peeked     *lexer.Token
	paramNames map[string]bool
	debug      bool
}

// NewParser prepares a Parser over l. paramNames are the names legal as
// bare parameter references (the enclosing .def's argument list); debug
// enables register and memory-read syntax.
func NewParser(l *lexer.Lexer, paramNames []string, debug bool) *Parser {
	pn := make(map[string]bool, len(paramNames))
	for _, p := range paramNames {
		pn[p] = true
	}
	return &Parser{lex: l, paramNames: pn, debug: debug}
}

// Parse consumes one full expression and returns its AST.
func Parse(l *lexer.Lexer, paramNames []string, debug bool) (Node, error) {
	return NewParser(l, paramNames, debug).Parse()
}

// ParseWithLookahead is Parse for callers that keep scanning the same
// underlying lexer afterwards (the instruction encoder's operand scanner,
// parsing "#expr" inside a larger addressing-mode syntax). Parse always
// peeks one token past the end of the expression to decide where to stop;
// that token is returned here instead of being silently dropped, so the
// caller can feed it back into its own token stream as the next token.
func ParseWithLookahead(l *lexer.Lexer, paramNames []string, debug bool) (Node, lexer.Token, error) {
	p := NewParser(l, paramNames, debug)
	n, err := p.Parse()
	if err != nil {
		return nil, lexer.Token{}, err
	}
	return n, p.peek(), nil
}

func (p *Parser) next() lexer.Token {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t
	}
	return p.lex.Next()
}

func (p *Parser) peek() lexer.Token {
	if p.peeked == nil {
		t := p.lex.Next()
		p.peeked = &t
	}
	return *p.peeked
}

// Parse is the entry point: ternary sits below the left-associative ladder
// and is handled once at the top.
func (p *Parser) Parse() (Node, error) {
	left, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok.Kind == lexer.Punct && tok.Text == "?" {
		p.next()
		t, err := p.Parse()
		if err != nil {
			return nil, err
		}
		colon := p.next()
		if colon.Kind != lexer.Punct || colon.Text != ":" {
			return nil, errors.Errorf(colon.Pos, errors.ParseMissingDelimiter, "':'")
		}
		f, err := p.Parse()
		if err != nil {
			return nil, err
		}
		left = Ternary{Cond: left, T: t, F: f}
	}

	return left, nil
}

func (p *Parser) parseBinary(floor int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Kind != lexer.Punct {
			break
		}
		prec, ok := precedence[tok.Text]
		if !ok || prec < floor {
			break
		}
		p.next()

		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = Binary{Op: tok.Text, L: left, R: right}
	}

	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	tok := p.peek()

	if tok.Kind == lexer.Punct && (tok.Text == "+" || tok.Text == "-") {
		sign := tok.Text
		var count int
		for {
			t := p.peek()
			if t.Kind == lexer.Punct && t.Text == sign {
				p.next()
				count++
				continue
			}
			break
		}

		if !p.startsPrimary(p.peek()) {
			return Anonymous{Token: strings.Repeat(sign, count)}, nil
		}

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if sign == "-" && count%2 == 1 {
			return Unary{Op: "-", X: x}, nil
		}
		return x, nil
	}

	if tok.Kind == lexer.Punct && (tok.Text == "~" || tok.Text == "!") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: tok.Text, X: x}, nil
	}

	return p.parsePrimary()
}

func (p *Parser) startsPrimary(tok lexer.Token) bool {
	if tok.Kind == lexer.Number || tok.Kind == lexer.Ident {
		return true
	}
	if tok.Kind == lexer.Punct {
		switch tok.Text {
		case "(", "~", "!", "+", "-", "@":
			return true
		}
	}
	return false
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.next()

	switch tok.Kind {
	case lexer.Number:
		v, err := lexer.ParseInt32(tok.Text)
		if err != nil {
			return nil, errors.Errorf(tok.Pos, errors.LexMalformedLiteral, tok.Text)
		}
		return Number{V: v}, nil

	case lexer.Ident:
		return p.parseIdentTerm(tok)

	case lexer.Punct:
		if tok.Text == "(" {
			inner, err := p.Parse()
			if err != nil {
				return nil, err
			}
			closing := p.next()
			if closing.Kind != lexer.Punct || closing.Text != ")" {
				return nil, errors.Errorf(closing.Pos, errors.ParseMissingDelimiter, "')'")
			}
			return inner, nil
		}
		if tok.Text == "@" {
			// a "@@name" local-label reference
			at := p.next()
			if at.Kind != lexer.Punct || at.Text != "@" {
				return nil, errors.Errorf(at.Pos, errors.ParseUnexpectedToken, at.Text)
			}
			id := p.next()
			if id.Kind != lexer.Ident {
				return nil, errors.Errorf(id.Pos, errors.ParseUnexpectedToken, id.Text)
			}
			return Lookup{Path: []string{"@@" + id.Text}}, nil
		}
	}

	return nil, errors.Errorf(tok.Pos, errors.ParseUnexpectedToken, tok.Text)
}

func (p *Parser) parseIdentTerm(tok lexer.Token) (Node, error) {
	name := tok.Text

	if strings.HasPrefix(name, "_") {
		return Reserved{Name: name}, nil
	}

	if kind, ok := memReadKinds[name]; ok && p.debug {
		open := p.peek()
		if open.Kind == lexer.Punct && open.Text == "[" {
			p.next()
			addr, err := p.Parse()
			if err != nil {
				return nil, err
			}
			closing := p.next()
			if closing.Kind != lexer.Punct || closing.Text != "]" {
				return nil, errors.Errorf(closing.Pos, errors.ParseMissingDelimiter, "']'")
			}
			return MemRead{Size: kind.size, Signed: kind.signed, BigEndian: kind.big, Addr: addr}, nil
		}
	}

	if name == "defined" {
		open := p.next()
		if open.Kind != lexer.Punct || open.Text != "(" {
			return nil, errors.Errorf(open.Pos, errors.ParseMissingDelimiter, "'('")
		}
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.Kind != lexer.Punct || closing.Text != ")" {
			return nil, errors.Errorf(closing.Pos, errors.ParseMissingDelimiter, "')'")
		}
		return Defined{Path: path}, nil
	}

	if _, ok := builtinArity[name]; ok {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return Call{Func: name, Args: args}, nil
	}

	if p.debug {
		if reg, ok := registerNum(name); ok {
			return Register{Num: reg}, nil
		}
	}

	if p.paramNames[name] {
		return Param{Name: name}, nil
	}

	return p.parseLookupTail(name)
}

func (p *Parser) parseLookupTail(first string) (Node, error) {
	path := []string{first}
	for {
		tok := p.peek()
		if tok.Kind == lexer.Punct && tok.Text == "." {
			p.next()
			id := p.next()
			if id.Kind != lexer.Ident {
				return nil, errors.Errorf(id.Pos, errors.ParseUnexpectedToken, id.Text)
			}
			path = append(path, id.Text)
			continue
		}
		break
	}

	tok := p.peek()
	if tok.Kind == lexer.Punct && tok.Text == "(" {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return Lookup{Path: path, Args: args}, nil
	}

	return Lookup{Path: path}, nil
}

func (p *Parser) parseArgList() ([]Node, error) {
	open := p.next()
	if open.Kind != lexer.Punct || open.Text != "(" {
		return nil, errors.Errorf(open.Pos, errors.ParseMissingDelimiter, "'('")
	}

	var args []Node
	tok := p.peek()
	if tok.Kind == lexer.Punct && tok.Text == ")" {
		p.next()
		return args, nil
	}

	for {
		a, err := p.Parse()
		if err != nil {
			return nil, err
		}
		args = append(args, a)

		tok = p.next()
		if tok.Kind == lexer.Punct && tok.Text == "," {
			continue
		}
		if tok.Kind == lexer.Punct && tok.Text == ")" {
			break
		}
		return nil, errors.Errorf(tok.Pos, errors.ParseMissingDelimiter, "',' or ')'")
	}

	return args, nil
}

func (p *Parser) parsePath() ([]string, error) {
	id := p.next()
	if id.Kind != lexer.Ident {
		return nil, errors.Errorf(id.Pos, errors.ParseUnexpectedToken, id.Text)
	}
	path := []string{id.Text}
	for {
		tok := p.peek()
		if tok.Kind == lexer.Punct && tok.Text == "." {
			p.next()
			id2 := p.next()
			if id2.Kind != lexer.Ident {
				return nil, errors.Errorf(id2.Pos, errors.ParseUnexpectedToken, id2.Text)
			}
			path = append(path, id2.Text)
			continue
		}
		break
	}
	return path, nil
}

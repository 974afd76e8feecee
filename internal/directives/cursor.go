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

package directives

import (
	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/lexer"
)

// cursor is a one-token-lookahead cursor over a single Import's lexer,
// the same small pattern expr.Parser and encoding.Scanner each keep their
// own copy of rather than sharing, so that every package that walks
// tokens stays independent of the others' cursor state.
type cursor struct {
	lex    *lexer.Lexer
	peeked *lexer.Token
}

func newCursor(l *lexer.Lexer) *cursor { return &cursor{lex: l} }

func (c *cursor) next() lexer.Token {
	if c.peeked != nil {
		t := *c.peeked
		c.peeked = nil
		return t
	}
	return c.lex.Next()
}

func (c *cursor) peek() lexer.Token {
	if c.peeked == nil {
		t := c.lex.Next()
		c.peeked = &t
	}
	return *c.peeked
}

func (c *cursor) peekPunct(text string) bool {
	t := c.peek()
	return t.Kind == lexer.Punct && t.Text == text
}

func (c *cursor) expectPunct(text string) error {
	t := c.next()
	if t.Kind != lexer.Punct || t.Text != text {
		return errors.Errorf(t.Pos, errors.ParseMissingDelimiter, "'"+text+"'")
	}
	return nil
}

func (c *cursor) expectIdent() (lexer.Token, error) {
	t := c.next()
	if t.Kind != lexer.Ident {
		return t, errors.Errorf(t.Pos, errors.ParseUnexpectedToken, t.Text)
	}
	return t, nil
}

func (c *cursor) expectString() (lexer.Token, error) {
	t := c.next()
	if t.Kind != lexer.String {
		return t, errors.Errorf(t.Pos, errors.ParseUnexpectedToken, t.Text)
	}
	return t, nil
}

// skipBlank drops newline tokens (hard or soft) that separate statements.
func (c *cursor) skipBlank() {
	for {
		t := c.peek()
		if t.Kind != lexer.Newline {
			return
		}
		c.next()
	}
}

// expectStatementEnd requires the next token to end the current statement,
// without consuming more than one trailing newline -- the outer loop's own
// skipBlank absorbs any further blank lines.
func (c *cursor) expectStatementEnd() error {
	t := c.peek()
	if t.Kind == lexer.Newline || t.Kind == lexer.EOF {
		return nil
	}
	return errors.Errorf(t.Pos, errors.ParseUnexpectedToken, t.Text)
}

// parseExpr parses one expression, handing off to the shared expr parser
// and recovering its one-token lookahead into this cursor.
func (c *cursor) parseExpr(params []string) (expr.Node, error) {
	n, look, err := expr.ParseWithLookahead(c.lex, params, false)
	if err != nil {
		return nil, err
	}
	c.peeked = &look
	return n, nil
}

// parseExprList parses a comma-separated list of expressions.
func (c *cursor) parseExprList(params []string) ([]expr.Node, error) {
	var list []expr.Node
	for {
		n, err := c.parseExpr(params)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
		if c.peekPunct(",") {
			c.next()
			continue
		}
		return list, nil
	}
}

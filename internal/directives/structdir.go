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
	"strings"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/internal/imports"
	"github.com/jetsetilly/gbasm/internal/symbols"
	"github.com/jetsetilly/gbasm/lexer"
)

// execStruct implements `.struct Name ... .end`: a named, little-endian
// field layout later queried by expressions as `Name.field`,
// `Name.field._length` or `Name.field._bytes`. Every field size and
// length must resolve immediately -- a layout's shape, like an `.if`
// condition, cannot itself be a deferred unknown.
func (e *Executor) execStruct(im *imports.Import, c *cursor, pos errors.Position) error {
	nameTok, err := c.expectIdent()
	if err != nil {
		return err
	}
	if err := c.expectStatementEnd(); err != nil {
		return err
	}

	def := &symbols.StructDef{Name: nameTok.Text}
	offset := int32(0)

	for {
		c.skipBlank()
		tok := c.peek()

		if tok.Kind == lexer.EOF {
			return errors.Errorf(tok.Pos, errors.DirectiveContext, "unexpected end of file, expected .end")
		}

		if tok.Kind != lexer.Punct || tok.Text != "." {
			if err := e.structField(im, c, def, &offset); err != nil {
				return err
			}
			continue
		}

		c.next()
		dname, err := c.expectIdent()
		if err != nil {
			return err
		}
		switch strings.ToLower(dname.Text) {
		case "end":
			return im.Scope.DefStruct(pos, def)
		case "base":
			n, err := c.parseExpr(nil)
			if err != nil {
				return err
			}
			v, err := expr.Value(n, im.Context(expr.RequireResolved))
			if err != nil {
				return err
			}
			def.Base = v
			if err := c.expectStatementEnd(); err != nil {
				return err
			}
		case "align":
			n, err := c.parseExpr(nil)
			if err != nil {
				return err
			}
			align, err := expr.Value(n, im.Context(expr.RequireResolved))
			if err != nil {
				return err
			}
			if align > 0 {
				for offset%align != 0 {
					offset++
				}
			}
			if err := c.expectStatementEnd(); err != nil {
				return err
			}
		default:
			return errors.Errorf(dname.Pos, errors.DirectiveContext, "."+dname.Text)
		}
	}
}

// structField parses one "name: type[length]" field declaration.
func (e *Executor) structField(im *imports.Import, c *cursor, def *symbols.StructDef, offset *int32) error {
	nameTok, err := c.expectIdent()
	if err != nil {
		return err
	}
	if err := c.expectPunct(":"); err != nil {
		return err
	}
	typeTok, err := c.expectIdent()
	if err != nil {
		return err
	}
	size, ok := sizeOfType(strings.ToLower(typeTok.Text))
	if !ok {
		return errors.Errorf(typeTok.Pos, errors.DirectiveContext, typeTok.Text)
	}

	length := int32(1)
	if c.peekPunct("[") {
		c.next()
		n, err := c.parseExpr(nil)
		if err != nil {
			return err
		}
		length, err = expr.Value(n, im.Context(expr.RequireResolved))
		if err != nil {
			return err
		}
		if err := c.expectPunct("]"); err != nil {
			return err
		}
	}
	if err := c.expectStatementEnd(); err != nil {
		return err
	}

	// a field must start on a multiple of its natural size; the layout
	// author has to spell the padding out with an .align directive.
	if size > 1 && *offset%size != 0 {
		return errors.Errorf(nameTok.Pos, errors.DirectiveMisalignedField, nameTok.Text, size)
	}

	def.Fields = append(def.Fields, symbols.StructField{
		Name:     nameTok.Text,
		Offset:   *offset,
		Size:     size,
		Length:   length,
		DataType: strings.ToLower(typeTok.Text),
	})
	*offset += size * length
	return nil
}

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
	"github.com/jetsetilly/gbasm/internal/imports"
	"github.com/jetsetilly/gbasm/internal/script"
	"github.com/jetsetilly/gbasm/lexer"
)

// scriptHost implements script.Host against one Import, so a running
// `.script` block can read assembler state and export values back into the
// enclosing scope exactly as a `.def` would.
type scriptHost struct {
	im     *imports.Import
	driver *imports.Driver
	exec   *Executor
}

// Lookup implements script.Host: resolves name as the script's own
// identifier lookup, through the same late-binding scope every expression
// in this Import resolves against.
func (h *scriptHost) Lookup(name string) (script.Value, bool) {
	v, resolved, found := h.im.Scope.Export(name)
	if !found || !resolved {
		return script.Value{}, false
	}
	return script.Value{Number: v, IsNumber: true}, true
}

// Export implements script.Host: binds name to v as a 0-ary constant, the
// same mechanism `.def name = expr` uses, so later statements (and other
// imports' `.import` bindings) can see it.
func (h *scriptHost) Export(name string, v script.Value) {
	if !v.IsNumber {
		return
	}
	h.im.Scope.DefConst(errors.Position{}, name, expr.Number{V: v.Number}, nil)
}

// Embed implements script.Host: reads a file's raw bytes without emitting
// them, the read half of what `.embed` does as a directive.
func (h *scriptHost) Embed(path string) ([]byte, error) {
	h.driver.AddEdge(h.im.Path, path)
	return h.driver.ReadFile(path)
}

// Include implements script.Host: tokenises path and returns its
// identifier text, for a script that wants to inspect another file's
// structure without assembling it.
func (h *scriptHost) Include(path string) ([]string, error) {
	src, err := h.driver.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l := lexer.New(path, string(src))
	var idents []string
	for {
		t := l.Next()
		if t.Kind == lexer.EOF {
			break
		}
		if t.Kind == lexer.Ident {
			idents = append(idents, t.Text)
		}
	}
	return idents, nil
}

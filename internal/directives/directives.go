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
	"github.com/jetsetilly/gbasm/internal/emitter"
	"github.com/jetsetilly/gbasm/internal/imports"
	"github.com/jetsetilly/gbasm/lexer"
)

// sizeOfType maps a `.iN` directive/struct field tag to its width in
// bytes, the same three widths the encoder recognises for PC-relative
// data reads.
func sizeOfType(name string) (int32, bool) {
	switch name {
	case "i8":
		return 1, true
	case "i16":
		return 2, true
	case "i32":
		return 4, true
	}
	return 0, false
}

// directive dispatches one `.name` statement. c has already consumed the
// "." and the name token; pos is the position of the leading ".".
func (e *Executor) directive(im *imports.Import, c *cursor, path string, name string, pos errors.Position) error {
	switch name {
	case "i8", "i16", "i32":
		return e.execDataList(im, c, pos, name)
	case "b16", "b32":
		return e.execDataListBE(im, c, pos, name)
	case "i8fill", "i16fill", "i32fill":
		return e.execFill(im, c, pos, name)
	case "align":
		return e.execAlign(im, c, pos)
	case "base":
		return e.execBase(im, c, pos)
	case "arm":
		return e.execMode(im, c, pos, expr.ModeARM)
	case "thumb":
		return e.execMode(im, c, pos, expr.ModeThumb)
	case "def":
		return e.execDef(im, c, pos)
	case "struct":
		return e.execStruct(im, c, pos)
	case "if":
		return e.execIf(im, c, path, pos)
	case "begin":
		return e.execBegin(im, c, path, pos)
	case "include":
		return e.execIncludeDirective(im, c, pos)
	case "embed":
		return e.execEmbed(im, c, pos)
	case "import":
		return e.execImport(im, c, pos)
	case "printf":
		return e.execPrintf(im, c, pos)
	case "script":
		return e.execScript(im, c, path, pos)
	case "pool":
		return e.execPool(im, c, pos)
	case "crc":
		if im.Emit.Len() != emitter.HeaderCRCOffset {
			return errors.Errorf(pos, errors.DirectiveContext, ".crc before the header region is complete")
		}
		im.Emit.Write8(int32(im.Emit.CRC()))
		return c.expectStatementEnd()
	case "logo":
		if im.Emit.Len() != emitter.HeaderLogoOffset {
			return errors.Errorf(pos, errors.DirectiveContext, ".logo away from its header position")
		}
		im.Emit.Logo()
		return c.expectStatementEnd()
	case "title":
		return e.execTitle(im, c, pos)
	case "once":
		e.Driver.MarkOnceGuarded(path)
		return c.expectStatementEnd()
	case "error":
		return e.execError(im, c, pos)
	case "elseif", "else", "end":
		return errors.Errorf(pos, errors.DirectiveContext, "."+name)
	}
	return errors.Errorf(pos, errors.DirectiveContext, "."+name)
}

// execDataList implements `.i8`/`.i16`/`.i32`: a comma-separated list of
// expressions, or a string literal (legal only for `.i8`, one byte per
// rune).
func (e *Executor) execDataList(im *imports.Import, c *cursor, pos errors.Position, name string) error {
	width, _ := sizeOfType(name)
	for {
		if name == "i8" && c.peek().Kind == lexer.String {
			t, _ := c.expectString()
			for i := 0; i < len(t.Text); i++ {
				im.Emit.Write8(int32(t.Text[i]))
			}
		} else {
			n, err := c.parseExpr(nil)
			if err != nil {
				return err
			}
			ctxAt := func(off int32) *expr.Context { return im.ContextAt(off, expr.AllowUnresolved) }
			build := func(ctx *expr.Context) (int32, error) { return expr.Value(n, ctx) }
			var werr error
			switch width {
			case 1:
				werr = im.Emit.Expr8(pos, name, ctxAt, build)
			case 2:
				werr = im.Emit.Expr16(pos, name, ctxAt, build)
			case 4:
				werr = im.Emit.Expr32(pos, name, ctxAt, build)
			}
			if werr != nil {
				return werr
			}
		}
		if c.peekPunct(",") {
			c.next()
			continue
		}
		break
	}
	return c.expectStatementEnd()
}

// execDataListBE implements `.b16`/`.b32`.
func (e *Executor) execDataListBE(im *imports.Import, c *cursor, pos errors.Position, name string) error {
	width := int32(2)
	if name == "b32" {
		width = 4
	}
	for {
		n, err := c.parseExpr(nil)
		if err != nil {
			return err
		}
		ctxAt := func(off int32) *expr.Context { return im.ContextAt(off, expr.AllowUnresolved) }
		build := func(ctx *expr.Context) (int32, error) { return expr.Value(n, ctx) }
		var werr error
		if width == 2 {
			werr = im.Emit.Expr16BE(pos, name, ctxAt, build)
		} else {
			werr = im.Emit.Expr32BE(pos, name, ctxAt, build)
		}
		if werr != nil {
			return werr
		}
		if c.peekPunct(",") {
			c.next()
			continue
		}
		break
	}
	return c.expectStatementEnd()
}

// execFill implements `.i8fill n, value` / `.i16fill n, value`: n
// (resolved immediately -- a fill count can't itself be a forward
// reference) repeated copies of value (which may be deferred).
func (e *Executor) execFill(im *imports.Import, c *cursor, pos errors.Position, name string) error {
	width := int32(1)
	switch name {
	case "i16fill":
		width = 2
	case "i32fill":
		width = 4
	}
	countNode, err := c.parseExpr(nil)
	if err != nil {
		return err
	}
	count, err := expr.Value(countNode, im.Context(expr.RequireResolved))
	if err != nil {
		return err
	}
	if err := c.expectPunct(","); err != nil {
		return err
	}
	valNode, err := c.parseExpr(nil)
	if err != nil {
		return err
	}

	for i := int32(0); i < count; i++ {
		ctxAt := func(off int32) *expr.Context { return im.ContextAt(off, expr.AllowUnresolved) }
		build := func(ctx *expr.Context) (int32, error) { return expr.Value(valNode, ctx) }
		var werr error
		switch width {
		case 1:
			werr = im.Emit.Expr8(pos, name, ctxAt, build)
		case 2:
			werr = im.Emit.Expr16(pos, name, ctxAt, build)
		case 4:
			werr = im.Emit.Expr32(pos, name, ctxAt, build)
		}
		if werr != nil {
			return werr
		}
	}
	return c.expectStatementEnd()
}

// execAlign implements `.align n[, fill]`.
func (e *Executor) execAlign(im *imports.Import, c *cursor, pos errors.Position) error {
	nNode, err := c.parseExpr(nil)
	if err != nil {
		return err
	}
	n, err := expr.Value(nNode, im.Context(expr.RequireResolved))
	if err != nil {
		return err
	}
	fill := byte(0)
	if c.peekPunct(",") {
		c.next()
		fNode, err := c.parseExpr(nil)
		if err != nil {
			return err
		}
		f, err := expr.Value(fNode, im.Context(expr.RequireResolved))
		if err != nil {
			return err
		}
		fill = byte(f)
	}
	im.Emit.Align(n, fill)
	return c.expectStatementEnd()
}

// execBase implements `.base addr`.
func (e *Executor) execBase(im *imports.Import, c *cursor, pos errors.Position) error {
	n, err := c.parseExpr(nil)
	if err != nil {
		return err
	}
	addr, err := expr.Value(n, im.Context(expr.RequireResolved))
	if err != nil {
		return err
	}
	if err := im.SetBase(pos, addr); err != nil {
		return err
	}
	return c.expectStatementEnd()
}

// execMode implements `.arm`/`.thumb`: switches the instruction decoding
// mode and aligns the emitter to the new mode's natural instruction width,
// so an instruction never straddles the boundary where the mode changed.
func (e *Executor) execMode(im *imports.Import, c *cursor, pos errors.Position, mode expr.Mode) error {
	im.Mode = mode
	if mode == expr.ModeARM {
		im.Emit.Align(4, 0)
	} else {
		im.Emit.Align(2, 0)
	}
	return c.expectStatementEnd()
}

// execDef implements `.def name = expr` and `.def name(p1, p2) = expr`.
func (e *Executor) execDef(im *imports.Import, c *cursor, pos errors.Position) error {
	nameTok, err := c.expectIdent()
	if err != nil {
		return err
	}

	var params []string
	if c.peekPunct("(") {
		c.next()
		for !c.peekPunct(")") {
			p, err := c.expectIdent()
			if err != nil {
				return err
			}
			params = append(params, p.Text)
			if c.peekPunct(",") {
				c.next()
				continue
			}
			break
		}
		if err := c.expectPunct(")"); err != nil {
			return err
		}
	}

	if err := c.expectPunct("="); err != nil {
		return err
	}
	body, err := c.parseExpr(params)
	if err != nil {
		return err
	}
	if err := im.Scope.DefConst(nameTok.Pos, nameTok.Text, body, params); err != nil {
		return err
	}
	return c.expectStatementEnd()
}

// execIf implements `.if cond ... .elseif cond ... .else ... .end`. The
// controlling expression must resolve immediately: a source file's shape
// (which statements exist at all) cannot itself be a deferred unknown.
func (e *Executor) execIf(im *imports.Import, c *cursor, path string, pos errors.Position) error {
	taken := false
	matched := false

	for {
		condNode, err := c.parseExpr(nil)
		if err != nil {
			return err
		}
		v, err := expr.Value(condNode, im.Context(expr.RequireResolved))
		if err != nil {
			return err
		}
		if err := c.expectStatementEnd(); err != nil {
			return err
		}

		run := !matched && v != 0
		taken = taken || run
		closedBy, err := e.runConditionalBlock(im, c, path, run)
		if err != nil {
			return err
		}
		if run {
			matched = true
		}

		switch closedBy {
		case "elseif":
			continue
		case "else":
			closedBy, err = e.runConditionalBlock(im, c, path, !taken)
			if err != nil {
				return err
			}
			if closedBy != "end" {
				return errors.Errorf(pos, errors.DirectiveContext, ".else")
			}
			return nil
		case "end":
			return nil
		}
	}
}

// runConditionalBlock executes (or skips) one branch of an `.if` chain,
// stopping at the next `.elseif`/`.else`/`.end` at this nesting level.
func (e *Executor) runConditionalBlock(im *imports.Import, c *cursor, path string, run bool) (string, error) {
	terminators := map[string]bool{"elseif": true, "else": true, "end": true}
	if run {
		return e.execBlock(im, c, path, terminators)
	}
	dname, _, err := e.skipBlock(c, terminators)
	return dname, err
}

// skipBlock discards tokens (tracking nested nesting-openers so an inner
// `.end` doesn't terminate the skip early) until a directive in
// terminators is found at this level. It also returns the byte offset
// immediately before the terminating "." token, for a caller (`.script`)
// that needs the raw text it skipped over.
func (e *Executor) skipBlock(c *cursor, terminators map[string]bool) (string, int, error) {
	depth := 0
	for {
		before := c.lex.Offset()
		t := c.next()
		if t.Kind == lexer.EOF {
			return "", 0, errors.Errorf(t.Pos, errors.DirectiveContext, "unexpected end of file")
		}
		if t.Kind != lexer.Punct || t.Text != "." {
			continue
		}
		name, err := c.expectIdent()
		if err != nil {
			return "", 0, err
		}
		dname := strings.ToLower(name.Text)
		if depth == 0 && terminators[dname] {
			return dname, before, nil
		}
		switch dname {
		case "if", "begin", "struct", "script":
			depth++
		case "end":
			depth--
		}
	}
}

// execBegin implements `.begin ... .end`: a nested lexical scope. The
// instruction mode is scoped alongside the symbol tables, so a `.thumb`
// inside the block doesn't leak past its `.end`.
func (e *Executor) execBegin(im *imports.Import, c *cursor, path string, pos errors.Position) error {
	if err := c.expectStatementEnd(); err != nil {
		return err
	}
	mode := im.Mode
	im.Scope.PushScope()
	closedBy, err := e.execBlock(im, c, path, map[string]bool{"end": true})
	if err != nil {
		im.Scope.PopScope()
		return err
	}
	if closedBy != "end" {
		return errors.Errorf(pos, errors.DirectiveContext, ".begin")
	}
	im.Mode = mode
	return im.Scope.PopScope()
}

// execIncludeDirective implements `.include "path"`.
func (e *Executor) execIncludeDirective(im *imports.Import, c *cursor, pos errors.Position) error {
	t, err := c.expectString()
	if err != nil {
		return err
	}
	if err := c.expectStatementEnd(); err != nil {
		return err
	}
	e.Driver.AddEdge(im.Path, t.Text)
	return e.execInclude(im, pos, t.Text)
}

// execEmbed implements `.embed "path"`: raw file bytes copied in
// verbatim, via the same archive-transparent reader as `.include`.
func (e *Executor) execEmbed(im *imports.Import, c *cursor, pos errors.Position) error {
	t, err := c.expectString()
	if err != nil {
		return err
	}
	if err := c.expectStatementEnd(); err != nil {
		return err
	}
	e.Driver.AddEdge(im.Path, t.Text)

	b, err := e.Driver.ReadFile(t.Text)
	if err != nil {
		return err
	}
	im.Emit.WriteBytes(b)
	return nil
}

// execImport implements `.import "path" { name1, name2 }`: runs path (if
// not already run) and binds each requested name to a late-resolving
// closure over its exported scope.
func (e *Executor) execImport(im *imports.Import, c *cursor, pos errors.Position) error {
	t, err := c.expectString()
	if err != nil {
		return err
	}
	if err := c.expectPunct("{"); err != nil {
		return err
	}

	var names []lexer.Token
	for !c.peekPunct("}") {
		n, err := c.expectIdent()
		if err != nil {
			return err
		}
		names = append(names, n)
		if c.peekPunct(",") {
			c.next()
			continue
		}
		break
	}
	if err := c.expectPunct("}"); err != nil {
		return err
	}
	if err := c.expectStatementEnd(); err != nil {
		return err
	}

	target, err := e.Driver.GetOrRun(im.Path, t.Text)
	if err != nil {
		return err
	}

	for _, n := range names {
		name := n.Text
		resolve := func() (int32, bool, bool) { return target.Scope.Export(name) }
		if err := im.Scope.BindImport(n.Pos, name, resolve); err != nil {
			return err
		}
	}
	return nil
}

// execPrintf implements `.printf fmt, args...`.
func (e *Executor) execPrintf(im *imports.Import, c *cursor, pos errors.Position) error {
	t, err := c.expectString()
	if err != nil {
		return err
	}
	var args []expr.Node
	if c.peekPunct(",") {
		c.next()
		args, err = c.parseExprList(nil)
		if err != nil {
			return err
		}
	}
	im.QueuePrintf(pos, t.Text, args)
	return c.expectStatementEnd()
}

// execScript implements `.script ... .end`: the block's raw source text is
// handed to the configured script.Engine unparsed, since its grammar is
// entirely the engine's own concern.
// A nil Engine makes any `.script` block a directive error.
func (e *Executor) execScript(im *imports.Import, c *cursor, path string, pos errors.Position) error {
	if err := c.expectStatementEnd(); err != nil {
		return err
	}
	if e.Script == nil {
		// still consume the block so later statements parse correctly.
		if _, _, err := e.skipBlock(c, map[string]bool{"end": true}); err != nil {
			return err
		}
		return errors.Errorf(pos, errors.DirectiveContext, ".script (no engine configured)")
	}

	start := c.lex.Offset()
	_, end, err := e.skipBlock(c, map[string]bool{"end": true})
	if err != nil {
		return err
	}
	src := c.lex.Slice(start, end)

	host := &scriptHost{im: im, driver: e.Driver, exec: e}
	return e.Script.Run(src, host)
}

// execPool implements `.pool`: place every still-pending `ldr rd,=expr`
// request at the current position.
func (e *Executor) execPool(im *imports.Import, c *cursor, pos errors.Position) error {
	if err := c.expectStatementEnd(); err != nil {
		return err
	}
	start := im.Base + im.Emit.Len()
	for _, entry := range im.Pool.Place(start) {
		entry := entry
		ctxAt := func(off int32) *expr.Context { return im.ContextAt(off, expr.AllowUnresolved) }
		build := func(ctx *expr.Context) (int32, error) { return expr.Value(entry.Value, ctx) }
		if err := im.Emit.Expr32(pos, "ldr pool entry", ctxAt, build); err != nil {
			return err
		}
	}
	return nil
}

// execTitle implements `.title "name"`.
func (e *Executor) execTitle(im *imports.Import, c *cursor, pos errors.Position) error {
	t, err := c.expectString()
	if err != nil {
		return err
	}
	if err := c.expectStatementEnd(); err != nil {
		return err
	}
	if im.Emit.Len() != emitter.HeaderTitleOffset {
		return errors.Errorf(pos, errors.DirectiveContext, ".title away from its header position")
	}
	im.Emit.Title(t.Text)
	return nil
}

// execError implements `.error "message"`: unconditionally fails the
// build with a user-authored message.
func (e *Executor) execError(im *imports.Import, c *cursor, pos errors.Position) error {
	t, err := c.expectString()
	if err != nil {
		return err
	}
	return errors.Errorf(pos, errors.DirectiveUserError, t.Text)
}

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
	"github.com/jetsetilly/gbasm/internal/encoding"
	"github.com/jetsetilly/gbasm/internal/imports"
	"github.com/jetsetilly/gbasm/internal/script"
	"github.com/jetsetilly/gbasm/lexer"
)

// Executor implements imports.Executor: it is the concrete statement
// interpreter internal/imports drives, kept in a separate package so the
// import graph and the directive/instruction dispatcher don't depend on
// each other cyclically.
type Executor struct {
	Driver *imports.Driver
	Script script.Engine
}

// New returns an Executor wired to d. Call d's Root only after setting
// d.exec to this value -- cmd/gbasm does this via imports.NewDriver.
func New(d *imports.Driver, eng script.Engine) *Executor {
	return &Executor{Driver: d, Script: eng}
}

// Execute implements imports.Executor: read the import's source and run
// every statement in it.
func (e *Executor) Execute(im *imports.Import) error {
	src, err := e.Driver.ReadFile(im.Path)
	if err != nil {
		return err
	}
	l := lexer.New(im.Path, string(src))
	c := newCursor(l)
	_, err = e.execBlock(im, c, im.Path, nil)
	return err
}

// execInclude runs path's statements into the *same* Import (scope and
// emitter shared), the way `.include` inlines a file, detecting a cycle
// through the current include stack. A path already consumed by a
// `.once`-guarded inclusion earlier in the build is silently skipped.
func (e *Executor) execInclude(im *imports.Import, pos errors.Position, path string) error {
	for _, p := range im.IncludeStack {
		if p == path {
			return errors.Errorf(pos, errors.IOCircularInclude, path)
		}
	}
	if e.Driver.OnceSkip(path) {
		return nil
	}

	src, err := e.Driver.ReadFile(path)
	if err != nil {
		return err
	}
	im.IncludeStack = append(im.IncludeStack, path)
	defer func() { im.IncludeStack = im.IncludeStack[:len(im.IncludeStack)-1] }()

	l := lexer.New(path, string(src))
	c := newCursor(l)
	_, err = e.execBlock(im, c, path, nil)
	return err
}

// execBlock reads statements until EOF or until a directive named in
// terminators is found at this nesting level; nested block openers
// (.begin, .if, .struct, .script) recurse for their own matching .end, so
// an inner .end never terminates an outer block by mistake. path is the
// physical file c is reading, which may differ from im.Path once a
// `.include` has inlined a second file into the same Import. It returns
// the terminator that closed the block.
func (e *Executor) execBlock(im *imports.Import, c *cursor, path string, terminators map[string]bool) (string, error) {
	for {
		c.skipBlank()
		tok := c.peek()

		if tok.Kind == lexer.EOF {
			if len(terminators) > 0 {
				return "", errors.Errorf(tok.Pos, errors.DirectiveContext, "unexpected end of file")
			}
			return "", nil
		}

		if tok.Kind == lexer.Punct && tok.Text == "." {
			c.next()
			name, err := c.expectIdent()
			if err != nil {
				return "", err
			}
			dname := strings.ToLower(name.Text)
			if terminators[dname] {
				return dname, nil
			}
			if err := e.directive(im, c, path, dname, tok.Pos); err != nil {
				if !e.accumulate(c, err) {
					return "", err
				}
			}
			continue
		}

		if err := e.labelOrInstruction(im, c, tok); err != nil {
			if !e.accumulate(c, err) {
				return "", err
			}
		}
	}
}

// accumulatedCategories is the set of per-statement diagnostics that don't
// abort the pass: the build carries on to the next line so a single run
// can report every bad statement at once. Lex/parse errors abort the file,
// directive and I/O errors abort the build.
var accumulatedCategories = []errors.Errno{
	errors.SymbolUnknown,
	errors.SymbolRedefined,
	errors.SymbolReservedPrefix,
	errors.SymbolWrongArity,
	errors.EncodeNoForm,
	errors.EncodeImmediateRange,
	errors.EncodeMisalignedBranch,
	errors.EncodeMissingCondition,
	errors.EncodeInvalidShift,
	errors.EncodeRotimmOverflow,
	errors.EncodeRegListWidth,
	errors.EncodeInvalidRegister,
}

// accumulate banks a symbol/encode error in the driver's bag and skips the
// remainder of the offending statement, reporting whether it did so.
func (e *Executor) accumulate(c *cursor, err error) bool {
	banked := false
	for _, errno := range accumulatedCategories {
		if errors.Is(err, errno) {
			banked = true
			break
		}
	}
	if !banked {
		return false
	}
	e.Driver.Bag.Add(err)
	for {
		t := c.peek()
		if t.Kind == lexer.Newline || t.Kind == lexer.EOF {
			return true
		}
		c.next()
	}
}

// labelOrInstruction handles everything that isn't a '.'-prefixed
// directive: ordinary labels, local "@@" labels, anonymous +/- labels, and
// instruction mnemonics.
func (e *Executor) labelOrInstruction(im *imports.Import, c *cursor, tok lexer.Token) error {
	switch {
	case tok.Kind == lexer.Punct && (tok.Text == "+" || tok.Text == "-"):
		c.next()
		sign := tok.Text[0]
		count := 1
		for c.peekPunct(tok.Text) {
			c.next()
			count++
		}
		if err := c.expectPunct(":"); err != nil {
			return err
		}
		im.Scope.AddAnonymous(sign, count, im.Emit.Len())
		return nil

	case tok.Kind == lexer.Punct && tok.Text == "@":
		c.next()
		if err := c.expectPunct("@"); err != nil {
			return err
		}
		id, err := c.expectIdent()
		if err != nil {
			return err
		}
		if err := c.expectPunct(":"); err != nil {
			return err
		}
		if err := im.Scope.AddLabel(tok.Pos, "@@"+id.Text, im.Emit.Len()); err != nil {
			return err
		}
		return nil

	case tok.Kind == lexer.Ident:
		c.next()
		if c.peekPunct(":") {
			c.next()
			if err := im.Scope.AddLabel(tok.Pos, tok.Text, im.Emit.Len()); err != nil {
				return err
			}
			// the rest of the line, if any, is a fresh statement: a label
			// may share its line with the instruction it names.
			return nil
		}
		return e.instruction(im, c, tok)

	default:
		return errors.Errorf(tok.Pos, errors.ParseUnexpectedToken, tok.Text)
	}
}

// instruction encodes one assembly-language line via the instruction
// encoder and registers its slot(s) with the emitter,
// deferred if any operand can't be resolved yet.
func (e *Executor) instruction(im *imports.Import, c *cursor, mnemonicTok lexer.Token) error {
	if im.Mode == expr.ModeNone {
		return errors.Errorf(mnemonicTok.Pos, errors.DirectiveContext, "instruction before .arm or .thumb")
	}

	// the dot-suffix spelling of a condition code ("bx.eq") arrives as
	// three tokens; rejoin them so suffix splitting sees the whole name.
	if c.peekPunct(".") {
		c.next()
		suffix, err := c.expectIdent()
		if err != nil {
			return err
		}
		mnemonicTok.Text += "." + suffix.Text
	}

	sc := encoding.NewScannerWithLookahead(c.lex, c.peeked)
	c.peeked = nil

	mi := encoding.MatchInfo{Mode: im.Mode, Pool: im.Pool}
	inst, err := encoding.Encode(mnemonicTok, sc, mi)
	peeked := sc.Peek()
	c.peeked = &peeked
	if err != nil {
		return err
	}

	pos := mnemonicTok.Pos
	im.Record(pos, im.Emit.Len())

	for _, slot := range inst.Slots {
		slot := slot
		hint := mnemonicTok.Text
		ctxAt := func(off int32) *expr.Context { return im.ContextAt(off, expr.AllowUnresolved) }
		var werr error
		switch slot.Width {
		case 2:
			werr = im.Emit.Expr16(pos, hint, ctxAt, slot.Build)
		case 4:
			werr = im.Emit.Expr32(pos, hint, ctxAt, slot.Build)
		}
		if werr != nil {
			return werr
		}
	}

	return c.expectStatementEnd()
}

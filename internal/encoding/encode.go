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

package encoding

import (
	"strings"

	stderrors "errors"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/lexer"
)

// ErrNoMatch is returned by a Form's Parse function when the operand
// syntax at the current position doesn't belong to that form at all --
// wrong literal punctuation, an invalid register name, a shift tail that
// doesn't parse. The dispatcher discards the attempt and tries the next
// form. Once a form commits to matching (it has
// consumed a full, structurally valid operand list), any further problem
// -- immediate out of range, for instance -- is a hard error instead,
// because by then no other form could possibly apply.
var ErrNoMatch = stderrors.New("encoding: operand syntax does not match this form")

// Slot is one reserved span of output produced by an instruction: Build is
// handed the Context of the slot's own address when it runs (immediately
// or, for a forward reference, during a later emitter retry pass).
type Slot struct {
	Width int // 2 (Thumb halfword) or 4 (ARM word)
	Build func(ctx *expr.Context) (int32, error)
}

// Instruction is the result of successfully matching and parsing one
// assembly line against an instruction form. Most mnemonics produce one
// Slot; Thumb's long branch-and-link is the one case that produces two
// (its two halfwords carry independent bit layouts derived from the same
// target expression).
type Instruction struct {
	Slots []Slot
}

// MatchInfo carries the already-split condition/set-flags suffix and
// enclosing build environment into a Form's Parse function.
type MatchInfo struct {
	Cond      string
	CondBits  uint32
	SetFlags  bool
	Mode      expr.Mode
	Pool      *Pool // nil if no pool is available (Thumb/ARM "ldr rd,=expr")
	HadSuffix bool  // true if any condition/S suffix was written at all
	Pos       errors.Position
}

// Form is one syntactic/encoding variant of a mnemonic. Parse consumes the
// scanner's remaining tokens for this line; ErrNoMatch means "this form
// doesn't apply, try the next one in the table".
type Form struct {
	Doc   string
	Parse func(s *Scanner, mi MatchInfo) (Instruction, error)
}

var armForms = map[string][]Form{}
var thumbForms = map[string][]Form{}

func registerARM(mnemonic string, forms ...Form) {
	armForms[mnemonic] = append(armForms[mnemonic], forms...)
}
func registerThumb(mnemonic string, forms ...Form) {
	thumbForms[mnemonic] = append(thumbForms[mnemonic], forms...)
}

// snapshot/restore let the dispatcher clone the remaining token stream
// cheaply: lexer.Lexer is a flat value type, so a
// struct copy is a full, independent cursor over the same source text.
func (s *Scanner) snapshot() Scanner {
	lexCopy := *s.lex
	clone := Scanner{lex: &lexCopy}
	if s.peeked != nil {
		p := *s.peeked
		clone.peeked = &p
	}
	return clone
}

func (s *Scanner) restore(clone Scanner) {
	*s.lex = *clone.lex
	s.peeked = clone.peeked
}

// Encode matches mnemonicTok against the form table for mi.Mode, trying
// each candidate form of the resolved base mnemonic in table order and
// committing to the first one whose Parse fully succeeds.
func Encode(mnemonicTok lexer.Token, s *Scanner, mi MatchInfo) (*Instruction, error) {
	raw := strings.ToLower(mnemonicTok.Text)

	forms := armForms
	if mi.Mode == expr.ModeThumb {
		forms = thumbForms
	}
	known := func(b string) bool { _, ok := forms[b]; return ok }

	base, cond, setFlags, ok := splitSuffix(raw, known)
	if !ok {
		return nil, errors.Errorf(mnemonicTok.Pos, errors.EncodeNoForm, mnemonicTok.Text)
	}

	candidates := forms[base]
	condBits, ok := condValue(cond)
	if !ok {
		return nil, errors.Errorf(mnemonicTok.Pos, errors.EncodeMissingCondition, cond)
	}

	mi.Cond, mi.CondBits, mi.SetFlags = cond, condBits, setFlags
	mi.HadSuffix = cond != "al" || setFlags
	mi.Pos = mnemonicTok.Pos

	var lastErr error
	for _, f := range candidates {
		trial := s.snapshot()
		inst, err := f.Parse(&trial, mi)
		if err == ErrNoMatch {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !trial.atLineEnd() {
			// form matched a prefix of the operands but left tokens
			// unconsumed -- not a real match.
			lastErr = errors.Errorf(trial.peek().Pos, errors.ParseUnexpectedToken, trial.peek().Text)
			continue
		}
		s.restore(trial)
		return &inst, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.Errorf(mnemonicTok.Pos, errors.EncodeNoForm, mnemonicTok.Text)
}

// KnownMnemonic reports whether name (with any condition/S suffix
// stripped) is a recognised instruction in the given mode, so the
// statement dispatcher can tell an instruction line from a directive or a
// label.
func KnownMnemonic(name string, mode expr.Mode) bool {
	forms := armForms
	if mode == expr.ModeThumb {
		forms = thumbForms
	}
	known := func(b string) bool { _, ok := forms[b]; return ok }
	_, _, _, ok := splitSuffix(strings.ToLower(name), known)
	return ok
}

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

import "github.com/jetsetilly/gbasm/expr"

// AddrMode is one of the load/store addressing forms:
// pre-indexed ([rn], [rn,#imm], [rn,#imm]!, [rn,±rm], [rn,±rm]!,
// [rn,±rm,shift #k], [rn,±rm,shift #k]!), post-indexed ([rn],#imm,
// [rn],±rm, [rn],±rm,shift #k), and PC-relative ([#label], [#label]!).
type AddrMode struct {
	Rn           int
	Pre          bool
	WriteBack    bool
	Up           bool
	HasImmOffset bool
	ImmOffset    expr.Node
	HasRegOffset bool
	RegOffset    ShiftedReg
	PCRelative   bool
	PCLabel      expr.Node
}

// parseAddrMode parses a full "[...]" operand, including any trailing "!"
// or post-indexed offset.
func (s *Scanner) parseAddrMode() (AddrMode, error) {
	if err := s.expectPunct("["); err != nil {
		return AddrMode{}, err
	}

	if s.peekPunct("#") {
		lbl, err := s.parseImmediate()
		if err != nil {
			return AddrMode{}, err
		}
		if err := s.expectPunct("]"); err != nil {
			return AddrMode{}, err
		}
		am := AddrMode{PCRelative: true, PCLabel: lbl, Up: true}
		if s.peekPunct("!") {
			s.next()
			am.WriteBack = true
		}
		return am, nil
	}

	rn, err := s.parseRegister()
	if err != nil {
		return AddrMode{}, err
	}

	if s.peekPunct("]") {
		s.next()
		am := AddrMode{Rn: rn, Pre: true, Up: true}
		if s.peekPunct(",") {
			s.next()
			am.Pre = false
			if err := s.parseOffsetTail(&am); err != nil {
				return AddrMode{}, err
			}
		}
		return am, nil
	}

	if err := s.expectPunct(","); err != nil {
		return AddrMode{}, err
	}
	am := AddrMode{Rn: rn, Pre: true, Up: true}
	if err := s.parseOffsetTail(&am); err != nil {
		return AddrMode{}, err
	}
	if err := s.expectPunct("]"); err != nil {
		return AddrMode{}, err
	}
	if s.peekPunct("!") {
		s.next()
		am.WriteBack = true
	}
	return am, nil
}

// parseOffsetTail parses the "#imm" or "±rm[, shift #k]" that follows a
// base register in either the pre- or post-indexed forms.
func (s *Scanner) parseOffsetTail(am *AddrMode) error {
	if s.peekPunct("#") {
		n, err := s.parseImmediate()
		if err != nil {
			return err
		}
		am.HasImmOffset = true
		am.ImmOffset = n
		return nil
	}

	up := true
	if s.peekPunct("-") {
		s.next()
		up = false
	} else if s.peekPunct("+") {
		s.next()
	}

	rm, err := s.parseRegister()
	if err != nil {
		return err
	}
	sr := ShiftedReg{Rm: rm}
	if s.peekPunct(",") {
		if err := s.parseShiftTail(&sr); err != nil {
			return err
		}
	}
	am.HasRegOffset = true
	am.RegOffset = sr
	am.Up = up
	return nil
}

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
	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/lexer"
)

func init() {
	registerThumb("lsl", Form{Doc: "shift left (3-operand immediate)", Parse: thumbShiftImm(0)},
		Form{Doc: "shift left (2-operand register)", Parse: thumbALU(0x2)})
	registerThumb("lsr", Form{Doc: "shift right (3-operand immediate)", Parse: thumbShiftImm(1)},
		Form{Doc: "shift right (2-operand register)", Parse: thumbALU(0x3)})
	registerThumb("asr", Form{Doc: "arithmetic shift right (3-operand immediate)", Parse: thumbShiftImm(2)},
		Form{Doc: "arithmetic shift right (2-operand register)", Parse: thumbALU(0x4)})

	registerThumb("add", Form{Doc: "add (3-operand)", Parse: thumbAddSub(0, false)},
		Form{Doc: "add (2-operand immediate)", Parse: thumbImm8(0x2)},
		Form{Doc: "add (hi register)", Parse: thumbHiReg(0x0)})
	registerThumb("sub", Form{Doc: "subtract (3-operand)", Parse: thumbAddSub(1, false)},
		Form{Doc: "subtract (2-operand immediate)", Parse: thumbImm8(0x3)})

	registerThumb("mov", Form{Doc: "move immediate", Parse: thumbImm8(0x0)},
		Form{Doc: "move (hi register)", Parse: thumbHiReg(0x2)})
	registerThumb("cmp", Form{Doc: "compare immediate", Parse: thumbImm8(0x1)},
		Form{Doc: "compare (low register)", Parse: thumbALU(0xA)},
		Form{Doc: "compare (hi register)", Parse: thumbHiReg(0x1)})
	registerThumb("bx", Form{Doc: "branch and exchange", Parse: thumbHiReg(0x3)})

	registerThumb("and", Form{Parse: thumbALU(0x0)})
	registerThumb("eor", Form{Parse: thumbALU(0x1)})
	registerThumb("adc", Form{Parse: thumbALU(0x5)})
	registerThumb("sbc", Form{Parse: thumbALU(0x6)})
	registerThumb("ror", Form{Parse: thumbALU(0x7)})
	registerThumb("tst", Form{Parse: thumbALU(0x8)})
	registerThumb("neg", Form{Parse: thumbALU(0x9)})
	registerThumb("cmn", Form{Parse: thumbALU(0xB)})
	registerThumb("orr", Form{Parse: thumbALU(0xC)})
	registerThumb("mul", Form{Parse: thumbALU(0xD)})
	registerThumb("bic", Form{Parse: thumbALU(0xE)})
	registerThumb("mvn", Form{Parse: thumbALU(0xF)})

	registerThumb("ldr", Form{Doc: "load word, register offset", Parse: thumbLoadStoreReg(1, 0, false)},
		Form{Doc: "load word, sp-relative", Parse: thumbSPRelative(1)},
		Form{Doc: "load word, immediate offset / literal pool", Parse: thumbLoadStoreImm(1, 0)})
	registerThumb("str", Form{Doc: "store word, register offset", Parse: thumbLoadStoreReg(0, 0, false)},
		Form{Doc: "store word, sp-relative", Parse: thumbSPRelative(0)},
		Form{Doc: "store word, immediate offset", Parse: thumbLoadStoreImm(0, 0)})
	registerThumb("ldrb", Form{Doc: "load byte, register offset", Parse: thumbLoadStoreReg(1, 1, false)},
		Form{Doc: "load byte, immediate offset", Parse: thumbLoadStoreImm(1, 1)})
	registerThumb("strb", Form{Doc: "store byte, register offset", Parse: thumbLoadStoreReg(0, 1, false)},
		Form{Doc: "store byte, immediate offset", Parse: thumbLoadStoreImm(0, 1)})
	registerThumb("ldrh", Form{Doc: "load halfword, register offset", Parse: thumbSignExt(1, 0)},
		Form{Doc: "load halfword, immediate offset", Parse: thumbLoadStoreHalf(1)})
	registerThumb("strh", Form{Doc: "store halfword, register offset", Parse: thumbSignExt(0, 0)},
		Form{Doc: "store halfword, immediate offset", Parse: thumbLoadStoreHalf(0)})
	registerThumb("ldrsb", Form{Doc: "load sign-extended byte, register offset", Parse: thumbSignExt(1, 2)})
	registerThumb("ldrsh", Form{Doc: "load sign-extended halfword, register offset", Parse: thumbSignExt(1, 3)})

	registerThumb("push", Form{Doc: "push register list", Parse: thumbPushPop(0, "lr")})
	registerThumb("pop", Form{Doc: "pop register list", Parse: thumbPushPop(1, "pc")})

	registerThumb("stmia", Form{Doc: "store multiple, increment after", Parse: thumbBlockTransfer(0)})
	registerThumb("ldmia", Form{Doc: "load multiple, increment after", Parse: thumbBlockTransfer(1)})

	registerThumb("b", Form{Doc: "branch", Parse: thumbBranch})
	registerThumb("bl", Form{Doc: "branch with link", Parse: thumbBranchLink})
	registerThumb("swi", Form{Doc: "software interrupt", Parse: thumbSWI})
}

func lowReg(r int) bool { return r >= 0 && r <= 7 }

// thumbShiftImm is Format 1: "lsl/lsr/asr rd, rs, #imm5".
func thumbShiftImm(op uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rs, err := s.parseRegister()
		if err != nil || !lowReg(rs) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		if !s.peekPunct("#") {
			return Instruction{}, ErrNoMatch
		}
		n, err := s.parseImmediate()
		if err != nil {
			return Instruction{}, err
		}
		pos := mi.Pos
		build := func(ctx *expr.Context) (int32, error) {
			v, err := expr.Value(n, ctx)
			if err != nil {
				return 0, err
			}
			var amt uint32
			switch {
			case op == 0: // LSL: 0-31
				if v < 0 || v > 31 {
					return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
				}
				amt = uint32(v)
			default: // LSR/ASR: 1-32, #32 encoded as 0
				if v == 32 {
					amt = 0
				} else if v >= 1 && v <= 31 {
					amt = uint32(v)
				} else {
					return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
				}
			}
			word := op<<11 | amt<<6 | uint32(rs)<<3 | uint32(rd)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

// thumbALU is Format 4: "<op> rd, rs" over low registers only.
func thumbALU(op uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rs, err := s.parseRegister()
		if err != nil || !lowReg(rs) {
			return Instruction{}, ErrNoMatch
		}
		build := func(ctx *expr.Context) (int32, error) {
			word := uint32(0x10)<<10 | op<<6 | uint32(rs)<<3 | uint32(rd)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

// thumbAddSub is Format 2: "add/sub rd, rs, rn" or "add/sub rd, rs, #imm3".
func thumbAddSub(op uint32, _ bool) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rs, err := s.parseRegister()
		if err != nil || !lowReg(rs) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		pos := mi.Pos
		if s.peekPunct("#") {
			n, err := s.parseImmediate()
			if err != nil {
				return Instruction{}, err
			}
			build := func(ctx *expr.Context) (int32, error) {
				v, err := expr.Value(n, ctx)
				if err != nil {
					return 0, err
				}
				if v < 0 || v > 7 {
					return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
				}
				word := uint32(0x3)<<11 | 1<<10 | op<<9 | uint32(v)<<6 | uint32(rs)<<3 | uint32(rd)
				return int32(word), nil
			}
			return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
		}
		rn, err := s.parseRegister()
		if err != nil || !lowReg(rn) {
			return Instruction{}, ErrNoMatch
		}
		build := func(ctx *expr.Context) (int32, error) {
			word := uint32(0x3)<<11 | op<<9 | uint32(rn)<<6 | uint32(rs)<<3 | uint32(rd)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

// thumbImm8 is Format 3: "mov/cmp/add/sub rd, #imm8".
func thumbImm8(op uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		if !s.peekPunct("#") {
			return Instruction{}, ErrNoMatch
		}
		n, err := s.parseImmediate()
		if err != nil {
			return Instruction{}, err
		}
		pos := mi.Pos
		build := func(ctx *expr.Context) (int32, error) {
			v, err := expr.Value(n, ctx)
			if err != nil {
				return 0, err
			}
			if v < 0 || v > 0xFF {
				return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
			}
			word := uint32(0x1)<<13 | op<<11 | uint32(rd)<<8 | uint32(v)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

// thumbHiReg is Format 5: "add/cmp/mov rd, rs" and "bx rs" over the full
// r0-r15 range, used whenever at least one operand is a high register (the
// low-register-only forms above win the dispatch race when neither is).
func thumbHiReg(op uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		var rd int
		if op != 0x3 { // bx has no destination register
			var err error
			rd, err = s.parseRegister()
			if err != nil {
				return Instruction{}, ErrNoMatch
			}
			if err := s.expectPunct(","); err != nil {
				return Instruction{}, ErrNoMatch
			}
		}
		rs, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if op != 0x3 && lowReg(rd) && lowReg(rs) {
			// both operands are low registers: a low-register form exists
			// and should be preferred, so this form declines the match.
			return Instruction{}, ErrNoMatch
		}
		h1 := boolBit(rd >= 8)
		h2 := boolBit(rs >= 8)
		build := func(ctx *expr.Context) (int32, error) {
			word := uint32(0x11)<<10 | op<<8 | h1<<7 | h2<<6 | uint32(rs&0x7)<<3 | uint32(rd&0x7)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

// --- loads and stores -----------------------------------------------------

func thumbLoadStoreReg(l, b uint32, signExt bool) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		am, err := s.parseAddrMode()
		if err != nil {
			return Instruction{}, err
		}
		if !am.HasRegOffset || am.PCRelative || !lowReg(am.Rn) || !lowReg(am.RegOffset.Rm) {
			return Instruction{}, ErrNoMatch
		}
		build := func(ctx *expr.Context) (int32, error) {
			word := uint32(0x5)<<12 | l<<11 | b<<10 | uint32(am.RegOffset.Rm)<<6 | uint32(am.Rn)<<3 | uint32(rd)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

func thumbSignExt(l, variant uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	// variant: 0 = half (strh/ldrh use S=0,H per l), 2 = ldrsb (S=1,H=0), 3 = ldrsh (S=1,H=1)
	var sBit, hBit uint32
	switch variant {
	case 0:
		sBit, hBit = 0, l
	case 2:
		sBit, hBit = 1, 0
	case 3:
		sBit, hBit = 1, 1
	}
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		am, err := s.parseAddrMode()
		if err != nil {
			return Instruction{}, err
		}
		if !am.HasRegOffset || am.PCRelative || !lowReg(am.Rn) || !lowReg(am.RegOffset.Rm) {
			return Instruction{}, ErrNoMatch
		}
		build := func(ctx *expr.Context) (int32, error) {
			word := uint32(0x5)<<12 | hBit<<11 | sBit<<10 | 1<<9 | uint32(am.RegOffset.Rm)<<6 | uint32(am.Rn)<<3 | uint32(rd)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

func thumbLoadStoreImm(l, b uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}

		if l == 1 && b == 0 && mi.Pool != nil && s.peekPunct("=") {
			s.next()
			n, err := s.parseExpr()
			if err != nil {
				return Instruction{}, err
			}
			entry := mi.Pool.Request(n)
			pos := mi.Pos
			build := func(ctx *expr.Context) (int32, error) {
				addr, ok := entry.Addr()
				if !ok {
					return 0, expr.ErrUnresolved
				}
				base := (instrAddr(ctx) &^ 3) + 4
				delta := addr - base
				if delta < 0 || delta%4 != 0 || delta > 0x3FC {
					return 0, errors.Errorf(pos, errors.EncodeImmediateRange, addr)
				}
				word := uint32(0x9)<<11 | uint32(rd)<<8 | uint32(delta/4)
				return int32(word), nil
			}
			return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
		}

		am, err := s.parseAddrMode()
		if err != nil {
			return Instruction{}, err
		}
		if am.PCRelative {
			pos := mi.Pos
			if l != 1 || b != 0 {
				return Instruction{}, ErrNoMatch
			}
			build := func(ctx *expr.Context) (int32, error) {
				v, err := expr.Value(am.PCLabel, ctx)
				if err != nil {
					return 0, err
				}
				base := (instrAddr(ctx) &^ 3) + 4
				delta := v - base
				if delta < 0 || delta%4 != 0 || delta > 0x3FC {
					return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
				}
				word := uint32(0x9)<<11 | uint32(rd)<<8 | uint32(delta/4)
				return int32(word), nil
			}
			return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
		}
		if !am.HasImmOffset || !lowReg(am.Rn) || am.Rn == 13 {
			return Instruction{}, ErrNoMatch
		}
		pos := mi.Pos
		scale := int32(4)
		if b == 1 {
			scale = 1
		}
		build := func(ctx *expr.Context) (int32, error) {
			v, err := expr.Value(am.ImmOffset, ctx)
			if err != nil {
				return 0, err
			}
			if v < 0 || v%scale != 0 || v/scale > 0x1F {
				return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
			}
			word := uint32(0x3)<<13 | b<<12 | l<<11 | uint32(v/scale)<<6 | uint32(am.Rn)<<3 | uint32(rd)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

func thumbLoadStoreHalf(l uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		am, err := s.parseAddrMode()
		if err != nil {
			return Instruction{}, err
		}
		if !am.HasImmOffset || am.PCRelative || !lowReg(am.Rn) {
			return Instruction{}, ErrNoMatch
		}
		pos := mi.Pos
		build := func(ctx *expr.Context) (int32, error) {
			v, err := expr.Value(am.ImmOffset, ctx)
			if err != nil {
				return 0, err
			}
			if v < 0 || v%2 != 0 || v/2 > 0x1F {
				return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
			}
			word := uint32(0x8)<<12 | l<<11 | uint32(v/2)<<6 | uint32(am.Rn)<<3 | uint32(rd)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

func thumbSPRelative(l uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil || !lowReg(rd) {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		am, err := s.parseAddrMode()
		if err != nil {
			return Instruction{}, err
		}
		if !am.HasImmOffset || am.PCRelative || am.Rn != 13 {
			return Instruction{}, ErrNoMatch
		}
		pos := mi.Pos
		build := func(ctx *expr.Context) (int32, error) {
			v, err := expr.Value(am.ImmOffset, ctx)
			if err != nil {
				return 0, err
			}
			if v < 0 || v%4 != 0 || v/4 > 0xFF {
				return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
			}
			word := uint32(0x9)<<12 | l<<11 | uint32(rd)<<8 | uint32(v/4)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

// --- multiple register transfers ------------------------------------------

func thumbPushPop(l uint32, extra string) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		if err := s.expectPunct("{"); err != nil {
			return Instruction{}, ErrNoMatch
		}
		var mask uint16
		var r uint32
		for {
			if s.peekPunct("}") {
				s.next()
				break
			}
			t := s.next()
			if t.Kind == lexer.Ident && strInsensitiveEq(t.Text, extra) {
				r = 1
			} else {
				reg, ok := registerNum(t.Text)
				if !ok || !lowReg(reg) {
					return Instruction{}, ErrNoMatch
				}
				hi := reg
				if s.peekPunct("-") {
					s.next()
					hi, ok = registerNum(s.next().Text)
					if !ok || !lowReg(hi) {
						return Instruction{}, ErrNoMatch
					}
				}
				if hi < reg {
					reg, hi = hi, reg
				}
				for ; reg <= hi; reg++ {
					mask |= 1 << uint(reg)
				}
			}
			pt := s.peek()
			if pt.Kind == lexer.Punct && pt.Text == "," {
				s.next()
				continue
			}
			if pt.Kind == lexer.Punct && pt.Text == "}" {
				s.next()
				break
			}
			return Instruction{}, ErrNoMatch
		}
		build := func(ctx *expr.Context) (int32, error) {
			word := uint32(0xB)<<12 | l<<11 | 1<<10 | r<<8 | uint32(mask)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

func strInsensitiveEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func thumbBlockTransfer(l uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rb, err := s.parseRegister()
		if err != nil || !lowReg(rb) {
			return Instruction{}, ErrNoMatch
		}
		if s.peekPunct("!") {
			s.next()
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		mask, err := s.parseRegList()
		if err != nil {
			return Instruction{}, err
		}
		build := func(ctx *expr.Context) (int32, error) {
			word := uint32(0xC)<<12 | l<<11 | uint32(rb)<<8 | uint32(mask)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
}

// --- branches --------------------------------------------------------------

func thumbBranch(s *Scanner, mi MatchInfo) (Instruction, error) {
	target, err := s.parseExpr()
	if err != nil {
		return Instruction{}, ErrNoMatch
	}
	pos := mi.Pos
	if mi.Cond == "al" {
		build := func(ctx *expr.Context) (int32, error) {
			off, err := thumbBranchOffset(pos, target, ctx, 11)
			if err != nil {
				return 0, err
			}
			word := uint32(0x1C)<<11 | off
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
	}
	build := func(ctx *expr.Context) (int32, error) {
		off, err := thumbBranchOffset(pos, target, ctx, 8)
		if err != nil {
			return 0, err
		}
		word := uint32(0xD)<<12 | mi.CondBits<<8 | off
		return int32(word), nil
	}
	return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
}

func thumbBranchLink(s *Scanner, mi MatchInfo) (Instruction, error) {
	target, err := s.parseExpr()
	if err != nil {
		return Instruction{}, ErrNoMatch
	}
	pos := mi.Pos
	build1 := func(ctx *expr.Context) (int32, error) {
		v, err := expr.Value(target, ctx)
		if err != nil {
			return 0, err
		}
		delta := v - (instrAddr(ctx) + 4)
		hi := uint32(delta>>12) & 0x7FF
		return int32(0xF000 | hi), nil
	}
	build2 := func(ctx *expr.Context) (int32, error) {
		v, err := expr.Value(target, ctx)
		if err != nil {
			return 0, err
		}
		firstAddr := instrAddr(ctx) - 2
		delta := v - (firstAddr + 4)
		if delta%2 != 0 {
			return 0, errors.Errorf(pos, errors.EncodeMisalignedBranch, v)
		}
		lo := uint32(delta>>1) & 0x7FF
		return int32(0xF800 | lo), nil
	}
	return Instruction{Slots: []Slot{{Width: 2, Build: build1}, {Width: 2, Build: build2}}}, nil
}

func thumbSWI(s *Scanner, mi MatchInfo) (Instruction, error) {
	n, err := s.parseImmediate()
	if err != nil {
		return Instruction{}, ErrNoMatch
	}
	pos := mi.Pos
	build := func(ctx *expr.Context) (int32, error) {
		v, err := expr.Value(n, ctx)
		if err != nil {
			return 0, err
		}
		if v < 0 || v > 0xFF {
			return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
		}
		word := uint32(0xDF)<<8 | uint32(v)
		return int32(word), nil
	}
	return Instruction{Slots: []Slot{{Width: 2, Build: build}}}, nil
}

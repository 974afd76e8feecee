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

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/lexer"
)

// ARM's instruction tables are registered once, from init: a
// package-level map populated before any assembly runs.
func init() {
	registerDataproc3("and", 0x0)
	registerDataproc3("eor", 0x1)
	registerDataproc3("sub", 0x2)
	registerDataproc3("rsb", 0x3)
	registerDataproc3("add", 0x4)
	registerDataproc3("adc", 0x5)
	registerDataproc3("sbc", 0x6)
	registerDataproc3("rsc", 0x7)
	registerDataproc3("orr", 0xC)
	registerDataproc3("bic", 0xE)
	registerDataprocRd("mov", 0xD)
	registerDataprocRd("mvn", 0xF)
	registerDataprocRn("tst", 0x8)
	registerDataprocRn("teq", 0x9)
	registerDataprocRn("cmp", 0xA)
	registerDataprocRn("cmn", 0xB)

	registerARM("bx", Form{Doc: "branch and exchange", Parse: parseBX})
	registerARM("b", Form{Doc: "branch", Parse: parseBranch(0)})
	registerARM("bl", Form{Doc: "branch with link", Parse: parseBranch(1)})

	registerARM("mul", Form{Doc: "multiply", Parse: parseMul(false)})
	registerARM("mla", Form{Doc: "multiply accumulate", Parse: parseMul(true)})
	registerARM("umull", Form{Doc: "unsigned long multiply", Parse: parseMulLong(0, 0)})
	registerARM("umlal", Form{Doc: "unsigned long multiply accumulate", Parse: parseMulLong(0, 1)})
	registerARM("smull", Form{Doc: "signed long multiply", Parse: parseMulLong(1, 0)})
	registerARM("smlal", Form{Doc: "signed long multiply accumulate", Parse: parseMulLong(1, 1)})

	registerARM("mrs", Form{Doc: "move PSR to register", Parse: parseMRS})
	registerARM("msr", Form{Doc: "move register to PSR", Parse: parseMSR})

	registerSingleTransfer("ldr", 1, 0)
	registerSingleTransfer("str", 0, 0)
	registerSingleTransfer("ldrb", 1, 1)
	registerSingleTransfer("strb", 0, 1)

	registerHalfword("ldrh", 1, 0xB)
	registerHalfword("strh", 0, 0xB)
	registerHalfword("ldrsb", 1, 0xD)
	registerHalfword("ldrsh", 1, 0xF)

	registerBlockTransfer("ia", 0, 1)
	registerBlockTransfer("ib", 1, 1)
	registerBlockTransfer("da", 0, 0)
	registerBlockTransfer("db", 1, 0)

	registerARM("push", Form{Doc: "push register list (stmdb sp!)", Parse: parsePushPop(false)})
	registerARM("pop", Form{Doc: "pop register list (ldmia sp!)", Parse: parsePushPop(true)})

	registerARM("swp", Form{Doc: "swap", Parse: parseSWP(false)})
	registerARM("swpb", Form{Doc: "swap byte", Parse: parseSWP(true)})
	registerARM("swi", Form{Doc: "software interrupt", Parse: parseSWI})
}

// --- dataproc ----------------------------------------------------------

func registerDataproc3(name string, opcode uint32) {
	registerARM(name, Form{Doc: name + " rd, rn, operand2", Parse: func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rn, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		op2, err := s.parseOperand2()
		if err != nil {
			return Instruction{}, err
		}
		pos, sflag := mi.Pos, boolBit(mi.SetFlags)
		build := func(ctx *expr.Context) (int32, error) {
			bits, ib, err := operand2Bits(pos, op2, ctx)
			if err != nil {
				return 0, err
			}
			word := mi.CondBits<<28 | ib<<25 | opcode<<21 | sflag<<20 | uint32(rn)<<16 | uint32(rd)<<12 | bits
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}})
}

func registerDataprocRd(name string, opcode uint32) {
	registerARM(name, Form{Doc: name + " rd, operand2", Parse: func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		op2, err := s.parseOperand2()
		if err != nil {
			return Instruction{}, err
		}
		pos, sflag := mi.Pos, boolBit(mi.SetFlags)
		build := func(ctx *expr.Context) (int32, error) {
			bits, ib, err := operand2Bits(pos, op2, ctx)
			if err != nil {
				return 0, err
			}
			word := mi.CondBits<<28 | ib<<25 | opcode<<21 | sflag<<20 | uint32(rd)<<12 | bits
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}})
}

func registerDataprocRn(name string, opcode uint32) {
	registerARM(name, Form{Doc: name + " rn, operand2", Parse: func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rn, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		op2, err := s.parseOperand2()
		if err != nil {
			return Instruction{}, err
		}
		pos := mi.Pos
		build := func(ctx *expr.Context) (int32, error) {
			bits, ib, err := operand2Bits(pos, op2, ctx)
			if err != nil {
				return 0, err
			}
			// cmp/cmn/tst/teq always set flags; the mnemonic has no 's' of
			// its own to toggle.
			word := mi.CondBits<<28 | ib<<25 | opcode<<21 | 1<<20 | uint32(rn)<<16 | bits
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}})
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// --- branches ------------------------------------------------------------

func parseBX(s *Scanner, mi MatchInfo) (Instruction, error) {
	rm, err := s.parseRegister()
	if err != nil {
		return Instruction{}, ErrNoMatch
	}
	build := func(ctx *expr.Context) (int32, error) {
		word := mi.CondBits<<28 | 0x12FFF1<<4 | uint32(rm)
		return int32(word), nil
	}
	return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
}

func parseBranch(l uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		target, err := s.parseExpr()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		pos := mi.Pos
		build := func(ctx *expr.Context) (int32, error) {
			off, err := branchOffset(pos, target, ctx)
			if err != nil {
				return 0, err
			}
			word := mi.CondBits<<28 | 0x5<<25 | l<<24 | off
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}
}

// --- multiply --------------------------------------------------------------

func parseMul(accumulate bool) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rm, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rs, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		var rn int
		if accumulate {
			if err := s.expectPunct(","); err != nil {
				return Instruction{}, err
			}
			rn, err = s.parseRegister()
			if err != nil {
				return Instruction{}, err
			}
		}
		a := boolBit(accumulate)
		sflag := boolBit(mi.SetFlags)
		build := func(ctx *expr.Context) (int32, error) {
			word := mi.CondBits<<28 | a<<21 | sflag<<20 | uint32(rd)<<16 | uint32(rn)<<12 | uint32(rs)<<8 | 0x9<<4 | uint32(rm)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}
}

func parseMulLong(u, a uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rdLo, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rdHi, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rm, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rs, err := s.parseRegister()
		if err != nil {
			return Instruction{}, err
		}
		sflag := boolBit(mi.SetFlags)
		build := func(ctx *expr.Context) (int32, error) {
			word := mi.CondBits<<28 | 1<<23 | u<<22 | a<<21 | sflag<<20 | uint32(rdHi)<<16 | uint32(rdLo)<<12 | uint32(rs)<<8 | 0x9<<4 | uint32(rm)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}
}

// --- PSR transfer ------------------------------------------------------

// parsePSRName accepts "cpsr"/"spsr" optionally followed by "_" and a
// combination of the letters c, x, s, f naming which PSR fields the
// instruction touches. No suffix at all means the f and c fields (mask
// 0b1001), the ARM7TDMI encoding of a bare "cpsr"/"spsr" operand.
func parsePSRName(t lexer.Token) (r uint32, mask uint32, ok bool) {
	name := strings.ToLower(t.Text)
	switch {
	case name == "cpsr" || strings.HasPrefix(name, "cpsr_"):
		r = 0
	case name == "spsr" || strings.HasPrefix(name, "spsr_"):
		r = 1
	default:
		return 0, 0, false
	}
	idx := strings.IndexByte(name, '_')
	if idx < 0 {
		return r, 0x9, true
	}
	mask = 0
	for _, c := range name[idx+1:] {
		switch c {
		case 'f':
			mask |= 1 << 3
		case 's':
			mask |= 1 << 2
		case 'x':
			mask |= 1 << 1
		case 'c':
			mask |= 1 << 0
		default:
			return 0, 0, false
		}
	}
	return r, mask, true
}

func parseMRS(s *Scanner, mi MatchInfo) (Instruction, error) {
	rd, err := s.parseRegister()
	if err != nil {
		return Instruction{}, ErrNoMatch
	}
	if err := s.expectPunct(","); err != nil {
		return Instruction{}, ErrNoMatch
	}
	t := s.next()
	r, _, ok := parsePSRName(t)
	if !ok {
		return Instruction{}, ErrNoMatch
	}
	build := func(ctx *expr.Context) (int32, error) {
		word := mi.CondBits<<28 | 0x2<<23 | r<<22 | 0xF<<16 | uint32(rd)<<12
		return int32(word), nil
	}
	return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
}

func parseMSR(s *Scanner, mi MatchInfo) (Instruction, error) {
	t := s.next()
	r, mask, ok := parsePSRName(t)
	if !ok {
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
			enc, ok := encodeRotimm(uint32(v))
			if !ok {
				return 0, errors.Errorf(pos, errors.EncodeRotimmOverflow, v)
			}
			word := mi.CondBits<<28 | 1<<25 | 0x2<<23 | r<<22 | 0x2<<20 | mask<<16 | 0xF<<12 | enc
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}
	rm, err := s.parseRegister()
	if err != nil {
		return Instruction{}, ErrNoMatch
	}
	build := func(ctx *expr.Context) (int32, error) {
		word := mi.CondBits<<28 | 0x2<<23 | r<<22 | 0x2<<20 | mask<<16 | 0xF<<12 | uint32(rm)
		return int32(word), nil
	}
	return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
}

// --- single data transfer (ldr/str, word and byte) ----------------------

func registerSingleTransfer(name string, l, b uint32) {
	registerARM(name, Form{Doc: name + " rd, [addressing mode]", Parse: func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}

		if mi.Pool != nil && l == 1 && b == 0 && s.peekPunct("=") {
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
				delta := addr - (instrAddr(ctx) + 8)
				up := uint32(1)
				if delta < 0 {
					up = 0
					delta = -delta
				}
				if delta > 0xFFF {
					return 0, errors.Errorf(pos, errors.EncodeImmediateRange, addr)
				}
				word := mi.CondBits<<28 | 0x1<<26 | 1<<24 | up<<23 | 1<<20 | 0xF<<16 | uint32(rd)<<12 | uint32(delta)
				return int32(word), nil
			}
			return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
		}

		am, err := s.parseAddrMode()
		if err != nil {
			return Instruction{}, err
		}
		pos := mi.Pos
		build := func(ctx *expr.Context) (int32, error) {
			if am.PCRelative {
				v, err := expr.Value(am.PCLabel, ctx)
				if err != nil {
					return 0, err
				}
				delta := v - (instrAddr(ctx) + 8)
				up := uint32(1)
				if delta < 0 {
					up = 0
					delta = -delta
				}
				if delta > 0xFFF {
					return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
				}
				word := mi.CondBits<<28 | 0x1<<26 | 1<<24 | up<<23 | b<<22 | l<<20 | 0xF<<16 | uint32(rd)<<12 | uint32(delta)
				return int32(word), nil
			}
			offBits, err := addrOffsetBits(pos, am, ctx)
			if err != nil {
				return 0, err
			}
			ib := boolBit(am.HasRegOffset)
			word := mi.CondBits<<28 | 0x1<<26 | ib<<25 | boolBit(am.Pre)<<24 | boolBit(am.Up)<<23 |
				b<<22 | boolBit(am.WriteBack)<<21 | l<<20 | uint32(am.Rn)<<16 | uint32(rd)<<12 | offBits
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}})
}

// --- halfword / signed byte transfer -------------------------------------

func registerHalfword(name string, l, sh uint32) {
	registerARM(name, Form{Doc: name + " rd, [addressing mode]", Parse: func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		am, err := s.parseAddrMode()
		if err != nil {
			return Instruction{}, err
		}
		if am.PCRelative {
			return Instruction{}, errors.Errorf(mi.Pos, errors.EncodeNoForm, name)
		}
		pos := mi.Pos
		build := func(ctx *expr.Context) (int32, error) {
			hi, lo, isImm, rm, err := halfwordOffsetBits(pos, am, ctx)
			if err != nil {
				return 0, err
			}
			word := mi.CondBits<<28 | boolBit(am.Pre)<<24 | boolBit(am.Up)<<23 | boolBit(isImm)<<22 |
				boolBit(am.WriteBack)<<21 | l<<20 | uint32(am.Rn)<<16 | uint32(rd)<<12 | hi<<8 | sh<<4 | lo
			if !isImm {
				word = mi.CondBits<<28 | boolBit(am.Pre)<<24 | boolBit(am.Up)<<23 | 0<<22 |
					boolBit(am.WriteBack)<<21 | l<<20 | uint32(am.Rn)<<16 | uint32(rd)<<12 | sh<<4 | rm
			}
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}})
}

// --- block data transfer --------------------------------------------------

func registerBlockTransfer(suffix string, p, u uint32) {
	registerARM("ldm"+suffix, Form{Doc: "load multiple", Parse: parseBlockTransfer(p, u, 1)})
	registerARM("stm"+suffix, Form{Doc: "store multiple", Parse: parseBlockTransfer(p, u, 0)})
}

func parseBlockTransfer(p, u, l uint32) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rn, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		w := boolBit(s.peekPunct("!"))
		if w == 1 {
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
			word := mi.CondBits<<28 | 1<<27 | p<<24 | u<<23 | w<<21 | l<<20 | uint32(rn)<<16 | uint32(mask)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}
}

func parsePushPop(load bool) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		mask, err := s.parseRegList()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		var p, u, w, l uint32 = 1, 0, 1, 0
		if load {
			p, u, l = 0, 1, 1
		}
		build := func(ctx *expr.Context) (int32, error) {
			word := mi.CondBits<<28 | 1<<27 | p<<24 | u<<23 | w<<21 | l<<20 | 13<<16 | uint32(mask)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}
}

// --- swap / software interrupt -------------------------------------------

func parseSWP(b bool) func(*Scanner, MatchInfo) (Instruction, error) {
	return func(s *Scanner, mi MatchInfo) (Instruction, error) {
		rd, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rm, err := s.parseRegister()
		if err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct(","); err != nil {
			return Instruction{}, ErrNoMatch
		}
		if err := s.expectPunct("["); err != nil {
			return Instruction{}, ErrNoMatch
		}
		rn, err := s.parseRegister()
		if err != nil {
			return Instruction{}, err
		}
		if err := s.expectPunct("]"); err != nil {
			return Instruction{}, err
		}
		bb := boolBit(b)
		build := func(ctx *expr.Context) (int32, error) {
			word := mi.CondBits<<28 | 0x2<<23 | bb<<22 | uint32(rn)<<16 | uint32(rd)<<12 | 0x9<<4 | uint32(rm)
			return int32(word), nil
		}
		return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
	}
}

func parseSWI(s *Scanner, mi MatchInfo) (Instruction, error) {
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
		if v < 0 || v > 0xFFFFFF {
			return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
		}
		word := mi.CondBits<<28 | 0xF<<24 | uint32(v)
		return int32(word), nil
	}
	return Instruction{Slots: []Slot{{Width: 4, Build: build}}}, nil
}

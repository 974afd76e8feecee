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
	"fmt"
	"strings"
)

// The disassembler side of the form tables. Each decoder record pairs the
// fixed value/ignored bits of one instruction form with a renderer that
// reverses the encoding algorithm for that form's operand slots. Dispatch
// is first-match in table order, the same discipline the encoder uses; a
// renderer returning an empty operator declines the match and the scan
// continues.
//
// The text produced is canonical re-assemblable syntax: feeding it back
// through Encode yields the original bytes. That round trip is what the
// idempotence tests in decode_test.go pin down.

// Disasm is one decoded instruction, split into the operator (the
// mnemonic, with any condition and set-flags suffix attached) and the
// operand detail: which registers, what values, what addressing mode.
type Disasm struct {
	Operator string
	Operand  string
}

// String returns the operator and operand joined as a single statement.
func (d Disasm) String() string {
	if d.Operand == "" {
		return d.Operator
	}
	return fmt.Sprintf("%s %s", d.Operator, d.Operand)
}

// condNames is the render-side inverse of condCodes, using the first
// alias of each pair ("cs" not "hs"). Index 14 (al) renders as the empty
// suffix.
var condNames = [15]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "",
}

// regName renders a register operand. sp/lr/pc are preferred over their
// r13-r15 spellings everywhere except inside register lists, where the
// uniform rN form keeps the list readable.
func regName(r uint32) string {
	switch r {
	case 13:
		return "sp"
	case 14:
		return "lr"
	case 15:
		return "pc"
	}
	return fmt.Sprintf("r%d", r)
}

// immString renders an immediate operand value. Small values read better
// in decimal; anything wider renders in hex.
func immString(v uint32) string {
	if v < 10 {
		return fmt.Sprintf("#%d", v)
	}
	return fmt.Sprintf("#0x%x", v)
}

// reglistToMnemonic converts a register mask to a string of register
// names separated by commas, with an optional trailing named register
// (lr or pc in Thumb's push/pop).
func reglistToMnemonic(regList uint16, suffix string) string {
	s := strings.Builder{}
	comma := false
	for i := 0; i <= 15; i++ {
		if regList&0x01 == 0x01 {
			if comma {
				s.WriteString(",")
			}
			s.WriteString(fmt.Sprintf("r%d", i))
			comma = true
		}
		regList >>= 1
	}

	// push suffix if one has been specified, adding a comma as required
	if suffix != "" {
		if s.Len() > 0 {
			s.WriteString(",")
		}
		s.WriteString(suffix)
	}

	return s.String()
}

// shiftKindNames indexes the two shift-kind bits of an encoded shifted
// register.
var shiftKindNames = [4]string{"lsl", "lsr", "asr", "ror"}

// shiftedRegString reverses shiftedRegBits: the low 12 bits of a dataproc
// operand or register-offset field back into "rm", "rm, lsl #5",
// "rm, ror rs" or "rm, rrx".
func shiftedRegString(bits uint32) string {
	rm := regName(bits & 0xF)
	if bits&0xFF0 == 0 {
		return rm
	}
	kind := (bits >> 5) & 0x3
	if bits&(1<<4) != 0 {
		// register-specified amount. bit 7 is zero in every encoding the
		// assembler produces.
		rs := regName((bits >> 8) & 0xF)
		return fmt.Sprintf("%s, %s %s", rm, shiftKindNames[kind], rs)
	}
	amt := (bits >> 7) & 0x1F
	if amt == 0 {
		switch kind {
		case 1, 2: // lsr/asr encode #32 as 0
			return fmt.Sprintf("%s, %s #32", rm, shiftKindNames[kind])
		case 3:
			return rm + ", rrx"
		}
		return rm // lsl #0 is the plain register
	}
	return fmt.Sprintf("%s, %s #%d", rm, shiftKindNames[kind], amt)
}

// decodeRotimm reverses encodeRotimm: the 12-bit rotate+immediate field
// back into the 32-bit value it encodes.
func decodeRotimm(field uint32) uint32 {
	imm := field & 0xFF
	rot := ((field >> 8) & 0xF) * 2
	return imm>>rot | imm<<(32-rot)
}

// psrString renders the PSR operand of mrs/msr, reversing parsePSRName.
// The f+c mask renders as the bare register name.
func psrString(r, mask uint32) string {
	name := "cpsr"
	if r == 1 {
		name = "spsr"
	}
	if mask == 0x9 {
		return name
	}
	s := name + "_"
	for i, c := range [4]byte{'f', 's', 'x', 'c'} {
		if mask&(1<<uint(3-i)) != 0 {
			s += string(c)
		}
	}
	return s
}

// armDecoder is one row of the decode table: value/ignored bits and the
// operand renderer for a single form. An empty operator result declines
// the match.
type armDecoder struct {
	mask, value uint32
	render      func(op uint32, addr int32, cond string) (operator, operand string)
}

// DecodeARM renders the 32-bit word at addr as canonical assembly syntax.
// ok is false if no form's fixed bits agree with the word.
func DecodeARM(op uint32, addr int32) (entry Disasm, ok bool) {
	cond := op >> 28
	if cond == 0xF {
		return Disasm{}, false
	}
	cs := condNames[cond]
	for _, d := range armDecoders {
		if op&d.mask == d.value {
			if operator, operand := d.render(op, addr, cs); operator != "" {
				return Disasm{Operator: operator, Operand: operand}, true
			}
		}
	}
	return Disasm{}, false
}

// dataprocNames indexes the 4-bit dataproc opcode field.
var dataprocNames = [16]string{
	"and", "eor", "sub", "rsb", "add", "adc", "sbc", "rsc",
	"tst", "teq", "cmp", "cmn", "orr", "mov", "bic", "mvn",
}

// armDecoders is ordered most-specific first: the multiply/swap/halfword
// group occupies a corner of the dataproc space (bits 7-4 = 1..1) and the
// PSR transfers occupy the S=0 corner of tst/teq/cmp/cmn, so both must be
// tried before the broad dataproc record at the end.
var armDecoders = []armDecoder{
	// branch and exchange
	{0x0FFFFFF0, 0x012FFF10, func(op uint32, addr int32, cond string) (string, string) {
		return "bx" + cond, regName(op & 0xF)
	}},

	// mrs
	{0x0FBF0FFF, 0x010F0000, func(op uint32, addr int32, cond string) (string, string) {
		return "mrs" + cond, fmt.Sprintf("%s, %s", regName((op>>12)&0xF), psrString((op>>22)&1, 0x9))
	}},

	// msr, register operand
	{0x0FB0FFF0, 0x0120F000, func(op uint32, addr int32, cond string) (string, string) {
		return "msr" + cond, fmt.Sprintf("%s, %s", psrString((op>>22)&1, (op>>16)&0xF), regName(op&0xF))
	}},

	// msr, rotated immediate operand
	{0x0FB0F000, 0x0320F000, func(op uint32, addr int32, cond string) (string, string) {
		return "msr" + cond, fmt.Sprintf("%s, %s", psrString((op>>22)&1, (op>>16)&0xF), immString(decodeRotimm(op&0xFFF)))
	}},

	// mul/mla
	{0x0FC000F0, 0x00000090, func(op uint32, addr int32, cond string) (string, string) {
		rd, rn := regName((op>>16)&0xF), regName((op>>12)&0xF)
		rs, rm := regName((op>>8)&0xF), regName(op&0xF)
		s := ""
		if op&(1<<20) != 0 {
			s = "s"
		}
		if op&(1<<21) != 0 {
			return "mla" + cond + s, fmt.Sprintf("%s, %s, %s, %s", rd, rm, rs, rn)
		}
		return "mul" + cond + s, fmt.Sprintf("%s, %s, %s", rd, rm, rs)
	}},

	// umull/umlal/smull/smlal
	{0x0F8000F0, 0x00800090, func(op uint32, addr int32, cond string) (string, string) {
		rdHi, rdLo := regName((op>>16)&0xF), regName((op>>12)&0xF)
		rs, rm := regName((op>>8)&0xF), regName(op&0xF)
		name := "umull"
		switch (op >> 21) & 0x3 {
		case 1:
			name = "umlal"
		case 2:
			name = "smull"
		case 3:
			name = "smlal"
		}
		s := ""
		if op&(1<<20) != 0 {
			s = "s"
		}
		return name + cond + s, fmt.Sprintf("%s, %s, %s, %s", rdLo, rdHi, rm, rs)
	}},

	// swp/swpb
	{0x0FB00FF0, 0x01000090, func(op uint32, addr int32, cond string) (string, string) {
		name := "swp"
		if op&(1<<22) != 0 {
			name = "swpb"
		}
		return name + cond, fmt.Sprintf("%s, %s, [%s]", regName((op>>12)&0xF), regName(op&0xF), regName((op>>16)&0xF))
	}},

	// halfword and signed transfer (bits 7,4 set with a non-zero SH field)
	{0x0E000090, 0x00000090, func(op uint32, addr int32, cond string) (string, string) {
		sh := (op >> 5) & 0x3
		if sh == 0 {
			return "", "" // multiply space, caught above for valid encodings
		}
		l := op&(1<<20) != 0
		var name string
		switch {
		case !l && sh == 1:
			name = "strh"
		case l && sh == 1:
			name = "ldrh"
		case l && sh == 2:
			name = "ldrsb"
		case l && sh == 3:
			name = "ldrsh"
		default:
			return "", ""
		}
		var offset string
		if op&(1<<22) != 0 {
			offset = immString((op>>4)&0xF0 | op&0xF)
		} else {
			offset = regName(op & 0xF)
			if op&(1<<23) == 0 {
				offset = "-" + offset
			}
		}
		return name + cond, fmt.Sprintf("%s, %s", regName((op>>12)&0xF),
			addrModeString(op, (op>>16)&0xF, offset, true))
	}},

	// single data transfer
	{0x0C000000, 0x04000000, func(op uint32, addr int32, cond string) (string, string) {
		name := "str"
		if op&(1<<20) != 0 {
			name = "ldr"
		}
		if op&(1<<22) != 0 {
			name += "b"
		}
		rn := (op >> 16) & 0xF
		rd := regName((op >> 12) & 0xF)

		if op&(1<<25) == 0 {
			imm := op & 0xFFF
			if rn == 15 && op&(1<<24) != 0 && op&(1<<21) == 0 {
				// pc-relative: render the target address, which the
				// encoder turns back into the same displacement.
				target := uint32(addr) + 8
				if op&(1<<23) != 0 {
					target += imm
				} else {
					target -= imm
				}
				return name + cond, fmt.Sprintf("%s, [#0x%x]", rd, target)
			}
			if op&(1<<23) == 0 && imm != 0 {
				return "", "" // negative immediate offset has no source form
			}
			return name + cond, fmt.Sprintf("%s, %s", rd, addrModeString(op, rn, immString(imm), imm != 0))
		}

		offset := shiftedRegString(op & 0xFFF)
		if op&(1<<23) == 0 {
			offset = "-" + offset
		}
		return name + cond, fmt.Sprintf("%s, %s", rd, addrModeString(op, rn, offset, true))
	}},

	// block data transfer
	{0x0E000000, 0x08000000, func(op uint32, addr int32, cond string) (string, string) {
		name := "stm"
		if op&(1<<20) != 0 {
			name = "ldm"
		}
		switch (op >> 23) & 0x3 { // P:U read together
		case 0:
			name += "da"
		case 1:
			name += "ia"
		case 2:
			name += "db"
		case 3:
			name += "ib"
		}
		wb := ""
		if op&(1<<21) != 0 {
			wb = "!"
		}
		return name + cond, fmt.Sprintf("%s%s, {%s}", regName((op>>16)&0xF), wb,
			reglistToMnemonic(uint16(op&0xFFFF), ""))
	}},

	// b/bl
	{0x0E000000, 0x0A000000, func(op uint32, addr int32, cond string) (string, string) {
		name := "b"
		if op&(1<<24) != 0 {
			name = "bl"
		}
		off := int32(op<<8) >> 8 // sign-extend 24 bits
		target := uint32(addr + 8 + off*4)
		return name + cond, fmt.Sprintf("0x%x", target)
	}},

	// swi
	{0x0F000000, 0x0F000000, func(op uint32, addr int32, cond string) (string, string) {
		return "swi" + cond, immString(op & 0xFFFFFF)
	}},

	// data processing. last: everything above carves a corner out of this
	// record's mask.
	{0x0C000000, 0x00000000, func(op uint32, addr int32, cond string) (string, string) {
		opcode := (op >> 21) & 0xF
		setFlags := op&(1<<20) != 0
		name := dataprocNames[opcode]

		var op2 string
		if op&(1<<25) != 0 {
			op2 = immString(decodeRotimm(op & 0xFFF))
		} else {
			op2 = shiftedRegString(op & 0xFFF)
		}

		rn := regName((op >> 16) & 0xF)
		rd := regName((op >> 12) & 0xF)

		switch opcode {
		case 0x8, 0x9, 0xA, 0xB: // tst/teq/cmp/cmn
			if !setFlags {
				return "", "" // the S=0 corner belongs to the PSR transfers
			}
			return name + cond, fmt.Sprintf("%s, %s", rn, op2)
		case 0xD, 0xF: // mov/mvn
			s := ""
			if setFlags {
				s = "s"
			}
			return name + cond + s, fmt.Sprintf("%s, %s", rd, op2)
		}
		s := ""
		if setFlags {
			s = "s"
		}
		return name + cond + s, fmt.Sprintf("%s, %s, %s", rd, rn, op2)
	}},
}

// addrModeString renders the "[...]" portion of a load/store from the
// instruction's P and W bits plus an already-rendered offset operand.
func addrModeString(op, rn uint32, offset string, hasOffset bool) string {
	base := regName(rn)
	pre := op&(1<<24) != 0
	wb := op&(1<<21) != 0

	if !pre {
		return fmt.Sprintf("[%s], %s", base, offset)
	}
	if !hasOffset {
		if wb {
			return fmt.Sprintf("[%s]!", base)
		}
		return fmt.Sprintf("[%s]", base)
	}
	if wb {
		return fmt.Sprintf("[%s, %s]!", base, offset)
	}
	return fmt.Sprintf("[%s, %s]", base, offset)
}

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

package encoding_test

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/internal/encoding"
	"github.com/jetsetilly/gbasm/lexer"
	"github.com/jetsetilly/gbasm/test"
)

// assembleLine encodes a single instruction as though it sat at addr, with
// no symbol table; operands in these tests are all literal.
func assembleLine(mode expr.Mode, addr int32, line string) ([]byte, error) {
	l := lexer.New("test.asm", line)
	mnemonic := l.Next()
	if mnemonic.Kind != lexer.Ident {
		return nil, fmt.Errorf("line does not start with a mnemonic: %q", line)
	}

	s := encoding.NewScanner(l)
	inst, err := encoding.Encode(mnemonic, s, encoding.MatchInfo{Mode: mode})
	if err != nil {
		return nil, err
	}

	var out []byte
	off := int32(0)
	for _, slot := range inst.Slots {
		ctx := &expr.Context{Mode: mode, Base: addr, Here: off, Policy: expr.RequireResolved}
		v, err := slot.Build(ctx)
		if err != nil {
			return nil, err
		}
		switch slot.Width {
		case 2:
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		case 4:
			out = binary.LittleEndian.AppendUint32(out, uint32(v))
		}
		off += int32(slot.Width)
	}
	return out, nil
}

func fromHex(s string) []byte {
	var out []byte
	for _, f := range strings.Fields(s) {
		var b byte
		fmt.Sscanf(f, "%02x", &b)
		out = append(out, b)
	}
	return out
}

type encodeTest struct {
	line string
	want string // little-endian hex bytes
	addr int32  // 0 means the default ROM base
}

const romBase = 0x08000000

func runEncodeTests(t *testing.T, mode expr.Mode, tests []encodeTest) {
	t.Helper()
	for _, tc := range tests {
		addr := tc.addr
		if addr == 0 {
			addr = romBase
		}
		got, err := assembleLine(mode, addr, tc.line)
		if err != nil {
			t.Errorf("%q: %s", tc.line, err)
			continue
		}
		want := fromHex(tc.want)
		if len(got) != len(want) {
			t.Errorf("%q: got % x, want % x", tc.line, got, want)
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("%q: got % x, want % x", tc.line, got, want)
				break
			}
		}
	}
}

func TestARMBranches(t *testing.T) {
	runEncodeTests(t, expr.ModeARM, []encodeTest{
		{line: "bx r9", want: "19 ff 2f e1"},
		{line: "bxeq r0", want: "10 ff 2f 01"},
		{line: "b 0x08000008", want: "00 00 00 ea"},
		{line: "b 0x08000000", addr: 0x08000004, want: "fd ff ff ea"},
		{line: "bl 0x08000010", want: "02 00 00 eb"},
		{line: "bleq 0x08000010", want: "02 00 00 0b"},
		{line: "bls 0x08000008", want: "00 00 00 9a"}, // b<ls>, not bl<s>
		{line: "bne 0x08000000", addr: 0x08000008, want: "fc ff ff 1a"},
	})
}

func TestARMDataProcessing(t *testing.T) {
	runEncodeTests(t, expr.ModeARM, []encodeTest{
		{line: "add r1, r2, r3", want: "03 10 82 e0"},
		{line: "adds r1, r2, #1", want: "01 10 92 e2"},
		{line: "addeq r0, r0, r0", want: "00 00 80 00"},
		{line: "addeqs r0, r0, #2", want: "02 00 90 02"},
		{line: "addseq r0, r0, #2", want: "02 00 90 02"}, // either suffix order
		{line: "sub r4, r5, #0x100", want: "01 4c 45 e2"},
		{line: "rsb r0, r1, #0", want: "00 00 61 e2"},
		{line: "adc r0, r1, r2", want: "02 00 a1 e0"},
		{line: "sbc r0, r1, r2", want: "02 00 c1 e0"},
		{line: "rsc r0, r1, r2", want: "02 00 e1 e0"},
		{line: "and r0, r1, #0xff", want: "ff 00 01 e2"},
		{line: "eor r0, r1, r2", want: "02 00 21 e0"},
		{line: "orr r0, r1, r2", want: "02 00 81 e1"},
		{line: "bic r0, r1, #1", want: "01 00 c1 e3"},
		{line: "mov r3, #0x34000000", want: "0d 33 a0 e3"},
		{line: "movs r0, #255", want: "ff 00 b0 e3"},
		{line: "mvn r0, r0", want: "00 00 e0 e1"},
		{line: "mov r0, r1, lsl #2", want: "01 01 a0 e1"},
		{line: "mov r0, r1, lsr #32", want: "21 00 a0 e1"},
		{line: "mov r0, r1, asr #1", want: "c1 00 a0 e1"},
		{line: "mov r0, r1, ror #4", want: "61 02 a0 e1"},
		{line: "mov r0, r1, rrx", want: "61 00 a0 e1"},
		{line: "mov r0, r1, lsl r2", want: "11 02 a0 e1"},
		{line: "movsmi r0, #1", want: "01 00 b0 43"},
		{line: "movmis r0, #1", want: "01 00 b0 43"},
		{line: "cmp r1, #5", want: "05 00 51 e3"},
		{line: "cmn r1, r2", want: "02 00 71 e1"},
		{line: "tst r1, r2", want: "02 00 11 e1"},
		{line: "teq r1, r2", want: "02 00 31 e1"},
	})
}

func TestARMPSRAndMultiply(t *testing.T) {
	runEncodeTests(t, expr.ModeARM, []encodeTest{
		{line: "mrs r0, cpsr", want: "00 00 0f e1"},
		{line: "mrs r1, spsr", want: "00 10 4f e1"},
		{line: "msr cpsr, r0", want: "00 f0 29 e1"},
		{line: "msr spsr, r3", want: "03 f0 69 e1"},
		{line: "msr cpsr_f, #0xf0000000", want: "0f f2 28 e3"},
		{line: "mul r0, r1, r2", want: "91 02 00 e0"},
		{line: "muls r0, r1, r2", want: "91 02 10 e0"},
		{line: "mla r0, r1, r2, r3", want: "91 32 20 e0"},
		{line: "umull r0, r1, r2, r3", want: "92 03 81 e0"},
		{line: "umlal r0, r1, r2, r3", want: "92 03 a1 e0"},
		{line: "smull r0, r1, r2, r3", want: "92 03 c1 e0"},
		{line: "smlal r0, r1, r2, r3", want: "92 03 e1 e0"},
	})
}

func TestARMLoadStore(t *testing.T) {
	runEncodeTests(t, expr.ModeARM, []encodeTest{
		{line: "ldr r0, [r1]", want: "00 00 91 e5"},
		{line: "ldr r0, [r1, #4]", want: "04 00 91 e5"},
		{line: "ldr r0, [r1, #4]!", want: "04 00 b1 e5"},
		{line: "ldr r0, [r1], #4", want: "04 00 91 e4"},
		{line: "ldr r0, [r1, r2]", want: "02 00 91 e7"},
		{line: "ldr r0, [r1, -r2]", want: "02 00 11 e7"},
		{line: "ldr r0, [r1, r2]!", want: "02 00 b1 e7"},
		{line: "ldr r0, [r1, r2, lsl #2]", want: "02 01 91 e7"},
		{line: "ldr r0, [r1], r2", want: "02 00 91 e6"},
		{line: "ldr r0, [#0x08000010]", want: "08 00 9f e5"},
		{line: "str r0, [r1]", want: "00 00 81 e5"},
		{line: "strb r2, [r3]", want: "00 20 c3 e5"},
		{line: "ldrb r2, [r3, #1]", want: "01 20 d3 e5"},
		{line: "ldrh r0, [r1]", want: "b0 00 91 e1"},
		{line: "ldrh r0, [r1, #2]", want: "b2 00 d1 e1"},
		{line: "strh r0, [r1, #2]", want: "b2 00 c1 e1"},
		{line: "ldrsb r0, [r1, #1]", want: "d1 00 d1 e1"},
		{line: "ldrsh r0, [r1, #2]", want: "f2 00 d1 e1"},
		{line: "swp r0, r1, [r2]", want: "91 00 02 e1"},
		{line: "swpb r0, r1, [r2]", want: "91 00 42 e1"},
	})
}

func TestARMBlockTransfer(t *testing.T) {
	runEncodeTests(t, expr.ModeARM, []encodeTest{
		{line: "ldmia r0!, {r1, r2}", want: "06 00 b0 e8"},
		{line: "ldmib r0, {r1, r2}", want: "06 00 90 e9"},
		{line: "stmda r0, {r1, r2}", want: "06 00 00 e8"},
		{line: "stmdb sp!, {r0-r3, lr}", want: "0f 40 2d e9"},
		{line: "push {r0-r3, lr}", want: "0f 40 2d e9"},
		{line: "pop {r0-r3, pc}", want: "0f 80 bd e8"},
		{line: "swi #0x123456", want: "56 34 12 ef"},
	})
}

func TestThumbShiftsAndALU(t *testing.T) {
	runEncodeTests(t, expr.ModeThumb, []encodeTest{
		{line: "lsl r3, r5, #10", want: "ab 02"},
		{line: "lsl r3, r5", want: "ab 40"},
		{line: "lsr r0, r1, #32", want: "08 08"},
		{line: "asr r0, r1, #1", want: "48 10"},
		{line: "mov r0, #255", want: "ff 20"},
		{line: "cmp r1, #1", want: "01 29"},
		{line: "add r2, #10", want: "0a 32"},
		{line: "sub r2, #10", want: "0a 3a"},
		{line: "add r0, r1, r2", want: "88 18"},
		{line: "sub r0, r1, r2", want: "88 1a"},
		{line: "add r0, r1, #2", want: "88 1c"},
		{line: "sub r0, r1, #2", want: "88 1e"},
		{line: "and r1, r2", want: "11 40"},
		{line: "eor r1, r2", want: "51 40"},
		{line: "adc r1, r2", want: "51 41"},
		{line: "sbc r1, r2", want: "91 41"},
		{line: "ror r1, r2", want: "d1 41"},
		{line: "tst r1, r2", want: "11 42"},
		{line: "neg r1, r1", want: "49 42"},
		{line: "cmp r1, r2", want: "91 42"},
		{line: "cmn r1, r2", want: "d1 42"},
		{line: "orr r1, r2", want: "11 43"},
		{line: "mul r1, r2", want: "51 43"},
		{line: "bic r1, r2", want: "91 43"},
		{line: "mvn r7, r0", want: "c7 43"},
		{line: "add r1, r8", want: "41 44"},
		{line: "cmp r8, r1", want: "88 45"},
		{line: "mov r8, r9", want: "c8 46"},
		{line: "bx lr", want: "70 47"},
		{line: "bx r3", want: "18 47"},
	})
}

func TestThumbLoadStore(t *testing.T) {
	runEncodeTests(t, expr.ModeThumb, []encodeTest{
		{line: "ldr r0, [r1, r2]", want: "88 58"},
		{line: "str r0, [r1, r2]", want: "88 50"},
		{line: "ldrb r0, [r1, r2]", want: "88 5c"},
		{line: "strb r0, [r1, r2]", want: "88 54"},
		{line: "ldrh r2, [r3, r4]", want: "1a 5b"},
		{line: "strh r2, [r3, r4]", want: "1a 53"},
		{line: "ldrsb r2, [r3, r4]", want: "1a 57"},
		{line: "ldrsh r2, [r3, r4]", want: "1a 5f"},
		{line: "str r1, [r2, #4]", want: "51 60"},
		{line: "ldr r1, [r2, #4]", want: "51 68"},
		{line: "ldrb r1, [r2, #3]", want: "d1 78"},
		{line: "strh r1, [r2, #2]", want: "51 80"},
		{line: "ldrh r1, [r2, #2]", want: "51 88"},
		{line: "str r1, [sp, #8]", want: "02 91"},
		{line: "ldr r1, [sp, #8]", want: "02 99"},
		{line: "ldr r0, [#0x08000008]", want: "01 48"},
		{line: "push {r0, lr}", want: "01 b5"},
		{line: "pop {r0, pc}", want: "01 bd"},
		{line: "push {r0-r7}", want: "ff b4"},
		{line: "stmia r0!, {r1, r2}", want: "06 c0"},
		{line: "ldmia r0!, {r1, r2}", want: "06 c8"},
	})
}

func TestThumbBranches(t *testing.T) {
	runEncodeTests(t, expr.ModeThumb, []encodeTest{
		{line: "beq 0x08000006", want: "01 d0"},
		{line: "bne 0x08000000", addr: 0x08000004, want: "fc d1"},
		{line: "b 0x08000000", addr: 0x08000004, want: "fc e7"},
		{line: "b 0x08000040", want: "1e e0"},
		{line: "swi #5", want: "05 df"},
		{line: "bl 0x08000100", want: "00 f0 7e f8"},
		{line: "bl 0x08000000", addr: 0x08000400, want: "ff f7 fe fd"},
	})
}

func TestEncodeErrors(t *testing.T) {
	_, err := assembleLine(expr.ModeARM, romBase, "mov r0, #0x101")
	test.ExpectFailure(t, err) // no rotated-immediate encoding

	_, err = assembleLine(expr.ModeARM, romBase, "mov r16, #0")
	test.ExpectFailure(t, err)

	_, err = assembleLine(expr.ModeARM, romBase, "b 0x08000001")
	test.ExpectFailure(t, err) // misaligned target

	_, err = assembleLine(expr.ModeARM, romBase, "ldr r0, [r1, #0x1000]")
	test.ExpectFailure(t, err) // offset12 overflow

	_, err = assembleLine(expr.ModeThumb, romBase, "mov r0, #256")
	test.ExpectFailure(t, err)

	_, err = assembleLine(expr.ModeThumb, romBase, "add r0, r1, #8")
	test.ExpectFailure(t, err) // 3-bit immediate overflow

	_, err = assembleLine(expr.ModeARM, romBase, "mul r0, #1")
	test.ExpectFailure(t, err) // no form accepts an immediate

	_, err = assembleLine(expr.ModeARM, romBase, "bxxx r0")
	test.ExpectFailure(t, err)
}

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
	"testing"

	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/internal/encoding"
)

// roundTrip asserts the idempotence property: decoding an assembled word
// yields canonical syntax that re-assembles to the same bytes.
func roundTripARM(t *testing.T, line string, addr int32) {
	t.Helper()
	want, err := assembleLine(expr.ModeARM, addr, line)
	if err != nil {
		t.Fatalf("%q: %s", line, err)
	}
	op := binary.LittleEndian.Uint32(want)
	d, ok := encoding.DecodeARM(op, addr)
	if !ok {
		t.Fatalf("%q: no decoder claims %08x", line, op)
	}
	text := d.String()
	got, err := assembleLine(expr.ModeARM, addr, text)
	if err != nil {
		t.Fatalf("%q: decoded %q does not re-assemble: %s", line, text, err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: decoded %q re-assembles to % x, want % x", line, text, got, want)
		}
	}
}

func roundTripThumb(t *testing.T, line string, addr int32) {
	t.Helper()
	want, err := assembleLine(expr.ModeThumb, addr, line)
	if err != nil {
		t.Fatalf("%q: %s", line, err)
	}
	op := binary.LittleEndian.Uint16(want)

	var text string
	if len(want) == 4 {
		lo := binary.LittleEndian.Uint16(want[2:])
		text = encoding.DecodeThumbBL(op, lo, addr).String()
	} else {
		d, ok := encoding.DecodeThumb(op, addr)
		if !ok {
			t.Fatalf("%q: no decoder claims %04x", line, op)
		}
		text = d.String()
	}

	got, err := assembleLine(expr.ModeThumb, addr, text)
	if err != nil {
		t.Fatalf("%q: decoded %q does not re-assemble: %s", line, text, err)
	}
	if len(got) != len(want) {
		t.Fatalf("%q: decoded %q re-assembles to % x, want % x", line, text, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: decoded %q re-assembles to % x, want % x", line, text, got, want)
		}
	}
}

func TestARMRoundTrip(t *testing.T) {
	lines := []string{
		"bx r9",
		"bxeq r0",
		"b 0x08000008",
		"bl 0x08000010",
		"blne 0x08000100",
		"add r1, r2, r3",
		"adds r1, r2, #1",
		"addeqs r0, r0, #2",
		"sub r4, r5, #0x100",
		"mov r3, #0x34000000",
		"movs r0, #255",
		"mov r0, r1, lsl #2",
		"mov r0, r1, lsr #32",
		"mov r0, r1, ror #4",
		"mov r0, r1, rrx",
		"mov r0, r1, lsl r2",
		"mvn r0, r0",
		"cmp r1, #5",
		"tst r1, r2",
		"mrs r0, cpsr",
		"mrs r1, spsr",
		"msr cpsr, r0",
		"msr cpsr_f, #0xf0000000",
		"mul r0, r1, r2",
		"mla r0, r1, r2, r3",
		"umull r0, r1, r2, r3",
		"smlal r0, r1, r2, r3",
		"ldr r0, [r1]",
		"ldr r0, [r1, #4]",
		"ldr r0, [r1, #4]!",
		"ldr r0, [r1], #4",
		"ldr r0, [r1, r2]",
		"ldr r0, [r1, -r2]",
		"ldr r0, [r1, r2, lsl #2]",
		"ldr r0, [#0x08000010]",
		"strb r2, [r3]",
		"ldrh r0, [r1, #2]",
		"strh r0, [r1, #2]",
		"ldrsb r0, [r1, #1]",
		"ldrsh r0, [r1, #2]",
		"swp r0, r1, [r2]",
		"swpb r0, r1, [r2]",
		"ldmia r0!, {r1, r2}",
		"stmdb sp!, {r0-r3, lr}",
		"push {r0-r3, lr}",
		"pop {r0-r3, pc}",
		"swi #0x123456",
	}
	for _, line := range lines {
		roundTripARM(t, line, romBase)
	}
}

func TestThumbRoundTrip(t *testing.T) {
	lines := []string{
		"lsl r3, r5, #10",
		"lsl r3, r5",
		"lsr r0, r1, #32",
		"mov r0, #255",
		"cmp r1, #1",
		"add r2, #10",
		"add r0, r1, r2",
		"sub r0, r1, #2",
		"and r1, r2",
		"neg r1, r1",
		"mvn r7, r0",
		"add r1, r8",
		"mov r8, r9",
		"bx lr",
		"ldr r0, [r1, r2]",
		"ldrb r0, [r1, r2]",
		"ldrh r2, [r3, r4]",
		"ldrsh r2, [r3, r4]",
		"str r1, [r2, #4]",
		"ldrb r1, [r2, #3]",
		"strh r1, [r2, #2]",
		"ldr r1, [sp, #8]",
		"ldr r0, [#0x08000008]",
		"push {r0, lr}",
		"pop {r0, pc}",
		"stmia r0!, {r1, r2}",
		"beq 0x08000006",
		"b 0x08000040",
		"swi #5",
		"bl 0x08000100",
	}
	for _, line := range lines {
		roundTripThumb(t, line, romBase)
	}
}

func TestDecodeUnknown(t *testing.T) {
	// cond 0xF is not a recognised encoding on the ARM7TDMI
	if _, ok := encoding.DecodeARM(0xF0000000, romBase); ok {
		t.Error("cond=0xF should not decode")
	}
	// Thumb format 12 (load address) has no encoder form, so it renders
	// as data rather than an instruction that can't be re-assembled
	if _, ok := encoding.DecodeThumb(0xA000, romBase); ok {
		t.Error("format 12 should not decode")
	}
	// the halves of a bl pair are not decodable on their own
	if _, ok := encoding.DecodeThumb(0xF000, romBase); ok {
		t.Error("bl high halfword should not decode alone")
	}
	if _, ok := encoding.DecodeThumb(0xF800, romBase); ok {
		t.Error("bl low halfword should not decode alone")
	}
}

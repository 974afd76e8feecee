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

package disasm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jetsetilly/gbasm/internal/disasm"
	"github.com/jetsetilly/gbasm/test"
)

func TestARMWalk(t *testing.T) {
	image := []byte{
		0x19, 0xff, 0x2f, 0xe1, // bx r9
		0x00, 0x00, 0x00, 0xea, // b 0x0800000c
		0x00, 0x00, 0x00, 0xf0, // cond=0xF: not an ARM7TDMI encoding
		0x2a, // trailing fragment
	}
	entries := disasm.ARM(image, 0x08000000)
	test.ExpectEquality(t, len(entries), 4)
	test.ExpectEquality(t, entries[0].Text, "bx r9")
	test.ExpectEquality(t, entries[1].Text, "b 0x800000c")
	test.ExpectEquality(t, entries[2].Text, ".i32 0xf0000000")
	test.ExpectEquality(t, entries[3].Text, ".i8 0x2a")
	test.ExpectEquality(t, entries[1].Addr, int32(0x08000004))
}

func TestThumbWalk(t *testing.T) {
	image := []byte{
		0xab, 0x02, // lsl r3, r5, #10
		0xab, 0x40, // lsl r3, r5
		0x00, 0xf0, 0x7e, 0xf8, // bl (two halfwords, one entry)
		0x00, 0xa0, // format 12 has no encoder form: rendered as data
	}
	entries := disasm.Thumb(image, 0x08000000)
	test.ExpectEquality(t, len(entries), 4)
	test.ExpectEquality(t, entries[0].Text, "lsl r3, r5, #10")
	test.ExpectEquality(t, entries[1].Text, "lsl r3, r5")
	test.ExpectEquality(t, entries[2].Text, "bl 0x8000104")
	test.ExpectEquality(t, len(entries[2].Raw), 4)
	test.ExpectEquality(t, entries[3].Text, ".i16 0xa000")
}

func TestWriteFormats(t *testing.T) {
	entries := disasm.ARM([]byte{0x19, 0xff, 0x2f, 0xe1}, 0x08000000)

	var plain bytes.Buffer
	test.ExpectSuccess(t, disasm.Write(&plain, entries, false))
	test.ExpectEquality(t, plain.String(), "bx r9\n")

	var columns bytes.Buffer
	test.ExpectSuccess(t, disasm.Write(&columns, entries, true))
	line := columns.String()
	if !strings.HasPrefix(line, "08000000") || !strings.Contains(line, "19 ff 2f e1") || !strings.Contains(line, "bx r9") {
		t.Errorf("unexpected column format: %q", line)
	}
}

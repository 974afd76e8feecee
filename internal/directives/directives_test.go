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

package directives_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jetsetilly/gbasm/internal/directives"
	"github.com/jetsetilly/gbasm/test"
)

// mapReader serves an in-memory file tree, standing in for the abstract
// filesystem collaborator.
type mapReader map[string]string

func (m mapReader) ReadFile(path string) ([]byte, error) {
	src, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return []byte(src), nil
}

// build assembles root from files, returning the image and the `.printf`
// transcript.
func build(files mapReader, root string) ([]byte, string, error) {
	var out bytes.Buffer
	_, image, err := directives.Assemble(files, nil, root, nil, &out)
	return image, out.String(), err
}

func TestBranchesWithLabels(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.base 0x08000000
.arm
L1: b 0x08000008
L2: b L1
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0x00, 0x00, 0x00, 0xea, 0xfd, 0xff, 0xff, 0xea})
}

func TestParameterisedConstants(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.def add(a, b) = a + b
.i8 add(1, 2), add(add(1, 1), 1)
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0x03, 0x03})
}

func TestForwardReferences(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.base 0
zero:
.i8 1
one:
.i16 1
three:
.def add(a, b) = a + b
.i8 add(one, three)
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0x01, 0x01, 0x00, 0x04})
}

func TestCyclicImports(t *testing.T) {
	image, out, err := build(mapReader{
		"main.asm": `
.import 'test' { FOO }
.def BAR = 1
.printf "FOO = %d", FOO
`,
		"test": `
.import 'main.asm' { BAR }
.def FOO = 2
.printf "BAR = %d", BAR
`,
	}, "main.asm")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(image), 0)
	test.ExpectEquality(t, out, "FOO = 2\nBAR = 1\n")
}

func TestPrintfOrderWithinFile(t *testing.T) {
	// the first printf depends on a label defined later; the second is
	// immediately printable. output order still follows source order.
	_, out, err := build(mapReader{"main.asm": `
.base 0
.printf "a = %d", later
.printf "b = %d", 1
.i8 7
later:
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, out, "a = 1\nb = 1\n")
}

func TestScopeIsolation(t *testing.T) {
	_, _, err := build(mapReader{"main.asm": `
.begin
.def INNER = 1
.end
.i8 INNER
`}, "main.asm")
	test.ExpectFailure(t, err)

	// local labels do not escape their scope either
	_, _, err = build(mapReader{"main.asm": `
.base 0
.begin
@@x:
.end
.i8 @@x
`}, "main.asm")
	test.ExpectFailure(t, err)
}

func TestInclude(t *testing.T) {
	image, _, err := build(mapReader{
		"main.asm": `
.i8 1
.include 'part'
.i8 3
`,
		"part": ".i8 2\n",
	}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{1, 2, 3})
}

func TestIncludeCycleFails(t *testing.T) {
	_, _, err := build(mapReader{
		"a": ".include 'b'\n",
		"b": ".include 'a'\n",
	}, "a")
	test.ExpectFailure(t, err)
}

func TestOnceGuard(t *testing.T) {
	image, _, err := build(mapReader{
		"main.asm": `
.include 'lib'
.include 'lib'
`,
		"lib": ".once\n.i8 9\n",
	}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{9})
}

func TestEmbed(t *testing.T) {
	image, _, err := build(mapReader{
		"main.asm": ".embed 'data.bin'\n.i8 4\n",
		"data.bin": "\x01\x02\x03",
	}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{1, 2, 3, 4})
}

func TestConditionalAssembly(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.def MODE = 2
.if MODE == 1
.i8 1
.elseif MODE == 2
.i8 2
.else
.i8 3
.end
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{2})
}

func TestLiteralPool(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.base 0x08000000
.arm
ldr r0, =0x12345678
.pool
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{
		0x04, 0x00, 0x1f, 0xe5, // ldr r0, [pc, #-4]
		0x78, 0x56, 0x34, 0x12,
	})
}

func TestThumbStatements(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.base 0x08000000
.thumb
lsl r3, r5, #10
lsl r3, r5
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0xab, 0x02, 0xab, 0x40})
}

func TestModeAlignment(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.base 0x08000000
.i8 1
.arm
mov r0, #0
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{1, 0, 0, 0, 0x00, 0x00, 0xa0, 0xe3})
}

func TestModeIsScoped(t *testing.T) {
	// the .thumb inside the block does not survive its .end
	image, _, err := build(mapReader{"main.asm": `
.base 0x08000000
.arm
.begin
.thumb
lsl r3, r5, #10
.end
.align 4
bx r9
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0xab, 0x02, 0x00, 0x00, 0x19, 0xff, 0x2f, 0xe1})
}

func TestAnonymousLabels(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.base 0
-:
.i8 2
.i8 -
.i8 +
+:
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{2, 0, 3})
}

func TestStructLayout(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.struct pos
.base 0x03000000
x: i16
y: i16
.end
.i32 pos.y
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0x02, 0x00, 0x00, 0x03})
}

func TestStructFieldAlignment(t *testing.T) {
	// a field whose natural alignment exceeds the running offset fails
	// unless an .align precedes it
	_, _, err := build(mapReader{"main.asm": `
.struct pos
a: i8
b: i32
.end
`}, "main.asm")
	test.ExpectFailure(t, err)
	if !strings.Contains(err.Error(), ".align") {
		t.Errorf("expected the diagnostic to name .align, got: %q", err)
	}

	// spelling the padding out makes the same layout legal
	image, _, err := build(mapReader{"main.asm": `
.struct pos
.base 0x03000000
a: i8
.align 4
b: i32
.end
.i32 pos.b
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0x04, 0x00, 0x00, 0x03})
}

func TestHeaderDirectives(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.base 0x08000000
.arm
b 0x080000c0
.logo
.title 'ABC'
.i8fill 17, 0
.crc
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(image), 0xBE)
	test.Equate(t, image[:4], []byte{0x2e, 0x00, 0x00, 0xea})
	test.Equate(t, image[0xA0:0xA3], []byte{'A', 'B', 'C'})
	test.ExpectEquality(t, image[0xBD], byte(0x21))
}

func TestCRCInWrongPlaceFails(t *testing.T) {
	_, _, err := build(mapReader{"main.asm": ".crc\n"}, "main.asm")
	test.ExpectFailure(t, err)
}

func TestErrorDirective(t *testing.T) {
	_, _, err := build(mapReader{"main.asm": `.error 'boom'` + "\n"}, "main.asm")
	test.ExpectFailure(t, err)
}

func TestErrorAccumulation(t *testing.T) {
	// both bad statements are reported by a single build
	_, _, err := build(mapReader{"main.asm": `
.base 0x08000000
.arm
mov r16, #1
mov r0, #0x101
`}, "main.asm")
	test.ExpectFailure(t, err)
	msg := err.Error()
	if !strings.Contains(msg, "invalid operands") || !strings.Contains(msg, "rotated immediate") {
		t.Errorf("expected both diagnostics, got: %q", msg)
	}
}

func TestUnresolvedSymbolFails(t *testing.T) {
	_, _, err := build(mapReader{"main.asm": ".i8 missing\n"}, "main.asm")
	test.ExpectFailure(t, err)
}

func TestDotSuffixCondition(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.base 0x08000000
.arm
bx.eq r0
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0x10, 0xff, 0x2f, 0x01})
}

func TestFillDirectives(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.i8fill 3, 7
.i16fill 2, 0x0102
.i32fill 1, 0x04030201
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{7, 7, 7, 0x02, 0x01, 0x02, 0x01, 0x01, 0x02, 0x03, 0x04})
}

func TestBigEndianData(t *testing.T) {
	image, _, err := build(mapReader{"main.asm": `
.i16 0x0102
.b16 0x0102
.b32 0x01020304
`}, "main.asm")
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{0x02, 0x01, 0x01, 0x02, 0x01, 0x02, 0x03, 0x04})
}

func TestCommandLineDefines(t *testing.T) {
	var out bytes.Buffer
	_, image, err := directives.Assemble(mapReader{"main.asm": ".i8 LEVEL\n"}, nil, "main.asm",
		map[string]int32{"LEVEL": 5}, &out)
	test.ExpectSuccess(t, err)
	test.Equate(t, image, []byte{5})
}

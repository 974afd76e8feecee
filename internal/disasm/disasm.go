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

// Package disasm renders a flat image back into assembly source, using
// the same form tables the encoder assembles from (internal/encoding's
// decode side). Words no form claims render as data directives, so the
// output always re-assembles to the input bytes.
package disasm

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jetsetilly/gbasm/internal/encoding"
)

// Entry is one decoded statement: the address it was read from, the raw
// bytes consumed, and the rendered syntax.
type Entry struct {
	Addr int32
	Raw  []byte
	Text string
}

// ARM walks image as a sequence of 32-bit ARM words starting at base.
// A trailing fragment shorter than a word renders as .i8 data.
func ARM(image []byte, base int32) []Entry {
	var out []Entry
	off := 0
	for off+4 <= len(image) {
		addr := base + int32(off)
		raw := image[off : off+4]
		op := binary.LittleEndian.Uint32(raw)
		text := fmt.Sprintf(".i32 0x%08x", op)
		if d, ok := encoding.DecodeARM(op, addr); ok {
			text = d.String()
		}
		out = append(out, Entry{Addr: addr, Raw: raw, Text: text})
		off += 4
	}
	return append(out, trailing(image, base, off)...)
}

// Thumb walks image as a sequence of 16-bit halfwords starting at base,
// pairing the two halves of a long branch-and-link into one entry.
func Thumb(image []byte, base int32) []Entry {
	var out []Entry
	off := 0
	for off+2 <= len(image) {
		addr := base + int32(off)
		op := binary.LittleEndian.Uint16(image[off : off+2])

		if encoding.IsThumbBLHigh(op) && off+4 <= len(image) {
			lo := binary.LittleEndian.Uint16(image[off+2 : off+4])
			if encoding.IsThumbBLLow(lo) {
				out = append(out, Entry{
					Addr: addr,
					Raw:  image[off : off+4],
					Text: encoding.DecodeThumbBL(op, lo, addr).String(),
				})
				off += 4
				continue
			}
		}

		text := fmt.Sprintf(".i16 0x%04x", op)
		if d, ok := encoding.DecodeThumb(op, addr); ok {
			text = d.String()
		}
		out = append(out, Entry{Addr: addr, Raw: image[off : off+2], Text: text})
		off += 2
	}
	return append(out, trailing(image, base, off)...)
}

func trailing(image []byte, base int32, off int) []Entry {
	var out []Entry
	for ; off < len(image); off++ {
		out = append(out, Entry{
			Addr: base + int32(off),
			Raw:  image[off : off+1],
			Text: fmt.Sprintf(".i8 0x%02x", image[off]),
		})
	}
	return out
}

// Write renders entries one per line. With showBytes the address and raw
// bytes lead each line in fixed columns; without, the output is bare
// re-assemblable statements.
func Write(w io.Writer, entries []Entry, showBytes bool) error {
	for _, e := range entries {
		if showBytes {
			hex := ""
			for _, b := range e.Raw {
				hex += fmt.Sprintf("%02x ", b)
			}
			if _, err := fmt.Fprintf(w, "%08x  %-12s %s\n", uint32(e.Addr), hex, e.Text); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, e.Text); err != nil {
			return err
		}
	}
	return nil
}

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

package emitter

// HeaderLogoOffset, HeaderTitleOffset and HeaderCRCOffset are the fixed
// positions of the three header fields `.logo`/`.title`/`.crc` write,
// relative to the start of the ROM image.
const (
	HeaderLogoOffset  = 0x04
	HeaderLogoSize    = 156
	HeaderTitleOffset = 0xA0
	HeaderTitleSize   = 12
	HeaderCRCOffset   = 0xBD
	headerCRCStart    = 0xA0
	headerCRCEnd      = 0xBC // inclusive; the checksum byte at 0xBD is not summed
)

// logoPlaceholder stands in for the 156-byte Nintendo logo bitmap that a
// real cartridge's boot ROM checks before running. The actual bitmap is
// copyrighted Nintendo material and is not reproduced here; a production
// build would load it from an external asset. `.logo` writes this
// deterministic placeholder pattern instead, which is enough to exercise
// the directive and its fixed position. See DESIGN.md.
var logoPlaceholder = func() [HeaderLogoSize]byte {
	var b [HeaderLogoSize]byte
	for i := range b {
		b[i] = byte(i)
	}
	return b
}()

// Logo appends the logo placeholder bytes. The caller is responsible for
// making sure the emitter is positioned at HeaderLogoOffset; the directive
// executor enforces that as a DirectiveContext error otherwise.
func (e *Emitter) Logo() {
	e.WriteBytes(logoPlaceholder[:])
}

// Title appends the cartridge title, truncated or zero-padded to 12 bytes.
func (e *Emitter) Title(s string) {
	b := make([]byte, HeaderTitleSize)
	copy(b, s)
	e.WriteBytes(b)
}

// CRC computes the header checksum over headerCRCStart..headerCRCEnd
// (inclusive) of the buffer as it stands and returns the single resulting
// byte. The caller must have already written the full header region up to
// HeaderCRCOffset.
func (e *Emitter) CRC() byte {
	var sum int32
	for i := headerCRCStart; i <= headerCRCEnd; i++ {
		if i < len(e.buf) {
			sum -= int32(e.buf[i])
		}
	}
	sum -= 0x19
	return byte(sum)
}

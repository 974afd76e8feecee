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

import "strings"

// condCodes maps every recognised condition mnemonic, aliases included, to
// its 4-bit field value. "al" (always) is implicit when no suffix is
// given; it is listed here too so the dot-suffix and bit-width-checked
// forms can treat it uniformly.
var condCodes = map[string]uint32{
	"eq": 0x0, "ne": 0x1,
	"cs": 0x2, "hs": 0x2,
	"cc": 0x3, "lo": 0x3,
	"mi": 0x4, "pl": 0x5,
	"vs": 0x6, "vc": 0x7,
	"hi": 0x8, "ls": 0x9,
	"ge": 0xA, "lt": 0xB,
	"gt": 0xC, "le": 0xD,
	"al": 0xE,
}

func condValue(name string) (uint32, bool) {
	v, ok := condCodes[name]
	return v, ok
}

func isCondCode(name string) bool {
	_, ok := condCodes[name]
	return ok
}

func stripTrailingS(s string) (rest string, hadS bool) {
	if strings.HasSuffix(s, "s") {
		return s[:len(s)-1], true
	}
	return s, false
}

// splitSuffix separates a raw mnemonic token (already lower-cased) into
// its base mnemonic, condition code and set-flags bit:
// the condition may attach directly to the mnemonic or follow a dot, and
// on dataproc ops the 's' and condition suffixes may appear in either
// order. knownBase reports whether a candidate string is one of the
// mnemonics this table actually defines.
//
// The two no-dot branches below resolve the "bls (b<ls>) vs bl+s" family
// of ambiguities by trying, in order: (1)
// strip a trailing 's' first, then read a condition off what's left (the
// "movmis" shape: cond, then 's'); (2) read a condition directly off the
// raw suffix first, then strip 's' from what remains (the "movsmi"/"bls"
// shape: 's', then cond, or a condition alone). Whichever branch matches a
// real base mnemonic first wins; this is what makes "bls" resolve to
// "b" with condition "ls" rather than a nonexistent "bl" with a stray 's'.
func splitSuffix(raw string, knownBase func(string) bool) (base, cond string, setFlags bool, ok bool) {
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		left, right := raw[:idx], raw[idx+1:]
		b, s := stripTrailingS(left)
		if !knownBase(b) {
			return "", "", false, false
		}
		if right == "" {
			return b, "al", s, true
		}
		if _, ok := condValue(right); !ok {
			return "", "", false, false
		}
		return b, right, s, true
	}

	// (1) trailing 's' first, then condition.
	if rest, hadS := stripTrailingS(raw); hadS && len(rest) > 2 {
		if c := rest[len(rest)-2:]; isCondCode(c) {
			base := rest[:len(rest)-2]
			if knownBase(base) {
				return base, c, true, true
			}
		}
	}

	// (2) condition first, then trailing 's'.
	if len(raw) > 2 {
		if c := raw[len(raw)-2:]; isCondCode(c) {
			rest := raw[:len(raw)-2]
			base, s := stripTrailingS(rest)
			if knownBase(base) {
				return base, c, s, true
			}
		}
	}

	// no suffix at all.
	if base, s := stripTrailingS(raw); knownBase(base) {
		return base, "al", s, true
	}
	if knownBase(raw) {
		return raw, "al", false, true
	}

	return "", "", false, false
}

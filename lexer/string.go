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

package lexer

import (
	"strings"

	"github.com/jetsetilly/gbasm/errors"
)

// lexBasicString consumes a single-quoted string. The only escape is a
// doubled quote for a literal quote; nothing else is special.
func (l *Lexer) lexBasicString() Token {
	pos := l.pos_()
	l.advance() // opening '

	var b strings.Builder
	for {
		r, sz := l.peekRune()
		if sz == 0 {
			return errTok(l, errors.Errorf(pos, errors.LexUnterminatedString, "'"))
		}

		if r == '\'' {
			l.advance()
			if nr, nsz := l.peekRune(); nsz > 0 && nr == '\'' {
				b.WriteRune('\'')
				l.advance()
				continue
			}
			break
		}

		if r == '\n' {
			return errTok(l, errors.Errorf(pos, errors.LexUnterminatedString, "'"))
		}

		b.WriteRune(r)
		l.advance()
	}

	l.lastWasSpace = false
	return Token{Kind: String, Text: b.String(), Pos: pos}
}

// lexInterpolatedString consumes a double-quoted string. Backslash escapes
// are resolved to their byte value; ${...} interpolation markers are kept
// verbatim in the output text since expanding them is a directive-level
// concern, not the lexer's.
func (l *Lexer) lexInterpolatedString() Token {
	pos := l.pos_()
	l.advance() // opening "

	var b strings.Builder
	for {
		r, sz := l.peekRune()
		if sz == 0 {
			return errTok(l, errors.Errorf(pos, errors.LexUnterminatedString, `"`))
		}

		if r == '"' {
			l.advance()
			break
		}

		if r == '\n' {
			return errTok(l, errors.Errorf(pos, errors.LexUnterminatedString, `"`))
		}

		if r == '$' {
			if nr, _ := l.peekAt(1); nr == '{' {
				b.WriteRune(r)
				l.advance()
				b.WriteRune('{')
				l.advance()
				depth := 1
				for depth > 0 {
					ir, isz := l.peekRune()
					if isz == 0 {
						return errTok(l, errors.Errorf(pos, errors.LexUnterminatedString, `"`))
					}
					if ir == '{' {
						depth++
					} else if ir == '}' {
						depth--
					}
					b.WriteRune(ir)
					l.advance()
				}
				continue
			}
		}

		if r == '\\' {
			l.advance()
			er, esz := l.peekRune()
			if esz == 0 {
				return errTok(l, errors.Errorf(pos, errors.LexMalformedLiteral, `\`))
			}

			switch er {
			case 'x':
				l.advance()
				var hex strings.Builder
				for i := 0; i < 2; i++ {
					hr, hsz := l.peekRune()
					if hsz == 0 || !isHex(hr) {
						return errTok(l, errors.Errorf(pos, errors.LexMalformedLiteral, `\x`))
					}
					hex.WriteRune(hr)
					l.advance()
				}
				b.WriteByte(byte(hexVal(hex.String())))
			case '0':
				b.WriteByte(0)
				l.advance()
			case 'b':
				b.WriteByte('\b')
				l.advance()
			case 't':
				b.WriteByte('\t')
				l.advance()
			case 'n':
				b.WriteByte('\n')
				l.advance()
			case 'v':
				b.WriteByte('\v')
				l.advance()
			case 'f':
				b.WriteByte('\f')
				l.advance()
			case 'r':
				b.WriteByte('\r')
				l.advance()
			case 'e':
				b.WriteByte(0x1b)
				l.advance()
			case '"':
				b.WriteByte('"')
				l.advance()
			case '\\':
				b.WriteByte('\\')
				l.advance()
			case '\'':
				b.WriteByte('\'')
				l.advance()
			case '$':
				b.WriteByte('$')
				l.advance()
			default:
				return errTok(l, errors.Errorf(pos, errors.LexMalformedLiteral, `\`+string(er)))
			}
			continue
		}

		b.WriteRune(r)
		l.advance()
	}

	l.lastWasSpace = false
	return Token{Kind: String, Text: b.String(), Pos: pos}
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexVal(s string) int {
	v := 0
	for _, r := range s {
		v <<= 4
		switch {
		case r >= '0' && r <= '9':
			v |= int(r - '0')
		case r >= 'a' && r <= 'f':
			v |= int(r-'a') + 10
		case r >= 'A' && r <= 'F':
			v |= int(r-'A') + 10
		}
	}
	return v
}

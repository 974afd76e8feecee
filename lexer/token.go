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

import "github.com/jetsetilly/gbasm/errors"

// Kind tags the variant a Token carries.
type Kind int

const (
	EOF Kind = iota
	Newline
	Ident
	Number
	String
	Punct
	Error
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Newline:
		return "newline"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Punct:
		return "punctuation"
	case Error:
		return "error"
	}
	return "unknown"
}

// Token is one lexical unit with its source position.
type Token struct {
	Kind Kind
	Text string
	Pos  errors.Position

	// Soft is set on a Newline token produced by ';' rather than an actual
	// line break.
	Soft bool

	// Unary is set on '+'/'-' Punct tokens when the surrounding whitespace
	// marks this occurrence as a unary operator rather than binary: preceded
	// by whitespace (or start of line) and immediately followed by a
	// non-space character.
	Unary bool

	// Err holds the diagnostic for an Error token.
	Err error
}

func (t Token) String() string {
	return t.Text
}

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

package errors

// message templates, one per Errno. each is fed to fmt.Errorf alongside the
// Values passed to Errorf; Error() then prepends the source position.
var messages = map[Errno]string{
	LexMalformedLiteral:      "malformed literal: %v",
	LexUnterminatedString:    "unterminated string literal, expected closing %v",
	LexIdentifierTooLong:     "identifier exceeds 1024 characters",
	ParseUnexpectedToken:     "unexpected token: %v",
	ParseMissingDelimiter:    "missing %v",
	ParseInvalidExpression:   "invalid expression: %v",
	SymbolUnknown:            "unknown identifier: %v",
	SymbolRedefined:          "%v redefined in this scope",
	SymbolReservedPrefix:     "%v begins with a reserved prefix",
	SymbolWrongArity:         "%v called with wrong number of arguments",
	ResolveUnsatisfied:       "unresolved symbol: %v",
	EncodeNoForm:             "invalid operands for %v",
	EncodeImmediateRange:     "immediate value out of range: %v",
	EncodeMisalignedBranch:   "misaligned branch target: %v",
	EncodeMissingCondition:   "missing condition suffix: %v",
	EncodeInvalidShift:       "invalid shift amount: %v",
	EncodeRotimmOverflow:     "value cannot be encoded as a rotated immediate: %v",
	EncodeRegListWidth:       "register list exceeds permitted width: %v",
	EncodeInvalidRegister:    "invalid register: %v",
	DirectiveContext:         "%v used in the wrong context",
	DirectiveUserError:       "%v",
	DirectiveMisalignedField: "field %v requires a preceding .align %v",
	IOFileNotFound:           "file not found: %v",
	IOCircularInclude:        "circular include: %v",
	IOArchive:                "cannot read archive: %v",
	DisasmUnknownEncoding:    "no instruction form matches the word %v",
}

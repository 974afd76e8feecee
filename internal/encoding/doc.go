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

// Package encoding is the ARM7TDMI instruction-encoding engine:
// per-mnemonic tables of instruction forms, operand parsing,
// bit-exact 32-/16-bit encoding, and the decode side the disassembler
// shares.
//
// Each mnemonic maps to an ordered list of Forms; encoding a line tries
// each Form in turn and takes the first one whose operand syntax fully
// consumes the remaining tokens. A Form is expressed as a Go closure
// (Parse), which matches the operand syntax and returns the Build closures
// for the words it emits, rather than a second, string-based mini-language of
// "syntactic parts" and "code parts" -- this keeps one expression
// interpreter (the expr package) in the whole assembler instead of two,
// while preserving the declarative table shape: forms are still flat data
// (a slice literal per mnemonic), tried in order, independent of each
// other. See DESIGN.md for that trade-off.
package encoding

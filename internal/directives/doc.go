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

// Package directives is the assembler's statement-level driver: it
// tokenises one Import's source with the lexer, dispatches each line to a
// label declaration, a directive, or the instruction encoder, and
// implements every directive in the table (.i8/.i16/.i32/.b16/.b32,
// .align, .base, .arm/.thumb, .def, .struct, .if/.elseif/.else/.end,
// .begin/.end, .include/.embed/.import, .printf, .script, .pool, .crc,
// .logo, .title, .once, .error).
//
// Executor implements imports.Executor, so internal/imports can drive a
// build without importing this package back.
package directives

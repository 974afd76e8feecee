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

// Package expr builds and evaluates the expression trees used throughout
// assembly source: operand values, .def bodies, .if discriminants, struct
// field offsets. An expression is parsed once against a token stream and
// may then be evaluated many times against different Contexts as more of
// the build becomes known -- that's what makes late binding of labels and
// imported constants possible.
//
// The package depends on the symbol table only through the Scope
// interface it declares, not on any concrete package, so expr and symbols
// can each be built and tested independently.
package expr

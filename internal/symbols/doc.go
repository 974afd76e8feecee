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

// Package symbols implements the named-constant, lexical-scope, struct and
// label table: a stack of scopes, each carrying
// its own constant map, struct map and label map, searched innermost
// first. Table implements expr.Scope so the expression engine can resolve
// identifiers without importing this package.
//
// The shape is a mutex-guarded table type in front of a parent-linked
// chain of scope levels: lookups walk outward from the innermost level,
// and everything a level owns disappears with it when its .end pops it.
package symbols

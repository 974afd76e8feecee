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

// Package emitter implements the assembler's output byte buffer: an
// append-only output with a queue of pending writes for computations that
// can't be resolved at the point they're encountered. A pending write is
// retried whenever new knowledge arrives (a label is declared, an import
// converges) and the build fails only if the queue is non-empty once no
// further progress is possible.
package emitter

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

// Package imports implements the multi-file import
// graph and the arena that owns every *Import reachable from
// a build's root file.
//
// Cyclic imports are handled the way the design notes describe: each
// Import holds a stable arena index to the Imports it depends on rather
// than a direct pointer cycle, and the Driver -- not any individual
// Import -- owns the arena slice. `.import` cycles are legal (imports
// bind names, they don't re-execute anything); `.include` cycles are
// caught by walking the include stack, since inlining genuinely would
// recurse forever.
package imports

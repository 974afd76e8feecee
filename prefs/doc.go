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

// Package prefs implements a disk-backed preferences file used to persist
// assembler defaults between invocations of the gbasm binary. The one
// default gbasm stores there is the output path of its last `make`.
//
// A Disk is opened against a file path and populated with typed Values by
// name. Saving merges the registered values with whatever is already on
// disk so that two Disk instances covering different keys of the same file
// don't clobber each other.
//
// The package also maintains a small stack of command-line supplied
// preferences (populated by repeated --define flags) that takes precedence
// over whatever is loaded from disk.
package prefs

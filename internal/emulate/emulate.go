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

// Package emulate specifies what the `run` subcommand demands of the CPU
// emulator, which is an external collaborator the same way the scripting
// engine is (internal/script). cmd/gbasm holds an Emulator value; a nil
// value makes `run` report that no emulator is linked into this build.
package emulate

import "github.com/jetsetilly/gbasm/internal/imports"

// Emulator executes an assembled image. addresses is the
// statement-to-address list the assembler produced, the only debug
// information the pipeline emits.
type Emulator interface {
	Run(image []byte, base int32, addresses []imports.AddressRecord) error
}

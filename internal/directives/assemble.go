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

package directives

import (
	"io"

	"github.com/jetsetilly/gbasm/internal/imports"
	"github.com/jetsetilly/gbasm/internal/script"
)

// Assemble runs the whole pipeline for one root file: it wires a Driver to
// this package's statement interpreter, builds root and everything it
// reaches, and returns the driver (for its dependency graph, address list
// and logs) along with the final image. printfOut receives rendered
// `.printf` lines; defines seeds the root import's constant table.
func Assemble(reader imports.Reader, eng script.Engine, root string, defines map[string]int32, printfOut io.Writer) (*imports.Driver, []byte, error) {
	d := imports.NewDriver(reader, nil)
	d.Defines = defines
	exec := New(d, eng)
	d.SetExecutor(exec)
	image, err := d.Root(root, printfOut)
	return d, image, err
}

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

package imports

import (
	"io"

	"github.com/jetsetilly/gbasm/archivefs"
)

// Reader is the abstract filesystem collaborator: the
// assembler core never opens a file itself, only through this interface,
// so the watch coordinator can substitute a caching decorator and the CLI
// can substitute a real one without this package knowing the difference.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

// archiveReader is the production Reader, backed by archivefs so a path
// may transparently lead inside a zip archive.
type archiveReader struct{}

func (archiveReader) ReadFile(path string) ([]byte, error) {
	rs, _, err := archivefs.Open(path)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(rs)
}

// DefaultReader is the Reader used by gbasm's CLI.
var DefaultReader Reader = archiveReader{}

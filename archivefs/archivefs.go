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

// Package archivefs resolves source and resource paths referenced by
// .include, .import and .embed directives, transparently descending into
// a zip archive when a path component names one. A project can therefore
// keep its sprite and tile data bundled in a single "assets.zip" and
// reference pieces of it directly ("assets.zip/tiles/font.bin"), without
// the assembler needing to know about archives at all.
//
// Failures are reported as curated errors in the I/O categories, the same
// taxonomy every other diagnostic in the assembler uses.
package archivefs

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/gbasm/errors"
)

// Open resolves filename and returns a reader over its content, plus the
// content size. Walking the path stops at the first component that names
// a plain file: if components remain, the file must be a zip archive and
// the remainder is resolved inside it.
func Open(filename string) (io.ReadSeeker, int, error) {
	parts := strings.Split(filepath.Clean(filename), string(filepath.Separator))

	// strings.Split removes a leading separator. add it back so that
	// filepath.Join() works as expected
	if parts[0] == "" {
		parts[0] = string(filepath.Separator)
	}

	search := ""
	for i, l := range parts {
		search = filepath.Join(search, l)

		fi, err := os.Stat(search)
		if err != nil {
			return nil, 0, errors.Errorf(errors.Position{}, errors.IOFileNotFound, filename)
		}
		if fi.IsDir() {
			continue
		}

		if i == len(parts)-1 {
			return openPlain(search)
		}

		// a file part-way along the path: the remaining components must
		// name an entry inside it
		return openInArchive(filename, search, filepath.Join(parts[i+1:]...))
	}

	// the whole path resolved to a directory
	return nil, 0, errors.Errorf(errors.Position{}, errors.IOFileNotFound, filename)
}

func openPlain(path string) (io.ReadSeeker, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Errorf(errors.Position{}, errors.IOFileNotFound, path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, errors.Errorf(errors.Position{}, errors.IOFileNotFound, path)
	}

	return f, int(info.Size()), nil
}

func openInArchive(filename string, archive string, inner string) (io.ReadSeeker, int, error) {
	zf, err := zip.OpenReader(archive)
	if err != nil {
		return nil, 0, errors.Errorf(errors.Position{}, errors.IOArchive, archive)
	}
	defer zf.Close()

	f, err := zf.Open(inner)
	if err != nil {
		return nil, 0, errors.Errorf(errors.Position{}, errors.IOFileNotFound, filename)
	}
	defer f.Close()

	// the zip reader closes with this function, so the entry is drained
	// into memory rather than streamed
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, errors.Errorf(errors.Position{}, errors.IOArchive, archive)
	}

	return bytes.NewReader(b), len(b), nil
}

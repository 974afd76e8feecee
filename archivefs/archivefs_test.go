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

package archivefs_test

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gbasm/archivefs"
	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/test"
)

// testTree builds a directory containing a plain file and a zip archive
// with a nested entry, returning the directory path.
func testTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "plainfile"), []byte("plainfile contents"), 0o644)
	test.ExpectSuccess(t, err)

	f, err := os.Create(filepath.Join(dir, "assets.zip"))
	test.ExpectSuccess(t, err)
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"archivefile":     "archivefile contents",
		"sub/archivefile": "nested contents",
	} {
		w, err := zw.Create(name)
		test.ExpectSuccess(t, err)
		_, err = w.Write([]byte(content))
		test.ExpectSuccess(t, err)
	}
	test.ExpectSuccess(t, zw.Close())
	test.ExpectSuccess(t, f.Close())

	return dir
}

func readAll(t *testing.T, path string) (string, int) {
	t.Helper()
	r, sz, err := archivefs.Open(path)
	test.ExpectSuccess(t, err)
	b, err := io.ReadAll(r)
	test.ExpectSuccess(t, err)
	return string(b), sz
}

func TestOpenPlainFile(t *testing.T) {
	dir := testTree(t)
	content, sz := readAll(t, filepath.Join(dir, "plainfile"))
	test.ExpectEquality(t, content, "plainfile contents")
	test.ExpectEquality(t, sz, len("plainfile contents"))
}

func TestOpenInsideArchive(t *testing.T) {
	dir := testTree(t)

	content, sz := readAll(t, filepath.Join(dir, "assets.zip", "archivefile"))
	test.ExpectEquality(t, content, "archivefile contents")
	test.ExpectEquality(t, sz, len("archivefile contents"))

	content, _ = readAll(t, filepath.Join(dir, "assets.zip", "sub", "archivefile"))
	test.ExpectEquality(t, content, "nested contents")
}

func TestOpenErrors(t *testing.T) {
	dir := testTree(t)

	// missing plain file
	_, _, err := archivefs.Open(filepath.Join(dir, "no_such_file"))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, errors.IOFileNotFound))

	// missing entry inside a real archive
	_, _, err = archivefs.Open(filepath.Join(dir, "assets.zip", "no_such_entry"))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, errors.IOFileNotFound))

	// a path component that is a file but not an archive
	_, _, err = archivefs.Open(filepath.Join(dir, "plainfile", "entry"))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, errors.IOArchive))

	// a directory is not a readable file
	_, _, err = archivefs.Open(dir)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, errors.IOFileNotFound))
}

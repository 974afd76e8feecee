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

// Package paths resolves the two kinds of path the assembler needs: a
// per-user cache directory (for the watch coordinator's replay cache) and
// the relative form of a source path used in every diagnostic line
// ("path:line:col: message").
package paths

import "path/filepath"

// CachePath builds a path under the assembler's dotfile cache directory,
// joining any number of subdirectory components plus a final filename.
// An empty component is skipped.
func CachePath(subdir string, filename string) (string, error) {
	p := ".gbasm"
	if subdir != "" {
		p = filepath.Join(p, subdir)
	}
	if filename != "" {
		p = filepath.Join(p, filename)
	}
	return p, nil
}

// Relative renders target relative to base for use in a diagnostic. If no
// relative path can be formed (different volumes on Windows, for example)
// the original target is returned unchanged.
func Relative(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}

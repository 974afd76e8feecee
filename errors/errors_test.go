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

package errors_test

import (
	"testing"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/test"
)

func TestDuplicateErrors(t *testing.T) {
	e := errors.Errorf(errors.Position{}, errors.SymbolUnknown, "foo")
	test.Equate(t, e.Error(), "unknown identifier: foo")

	// wrapping an error of the same category alongside itself should not
	// duplicate the leading part of the message
	f := errors.Errorf(errors.Position{}, errors.SymbolUnknown, e)
	test.Equate(t, f.Error(), "unknown identifier: foo")
}

func TestIs(t *testing.T) {
	e := errors.Errorf(errors.Position{}, errors.SymbolUnknown, "foo")
	test.ExpectSuccess(t, errors.Is(e, errors.SymbolUnknown))
	test.ExpectFailure(t, errors.Is(e, errors.SymbolRedefined))

	test.ExpectSuccess(t, errors.IsAny(e))
	test.ExpectFailure(t, errors.IsAny(nil))
}

func TestPosition(t *testing.T) {
	pos := errors.Position{File: "main.s", Line: 4, Column: 1}
	e := errors.Errorf(pos, errors.IOFileNotFound, "test.s")
	test.Equate(t, e.Error(), "main.s:4:1: file not found: test.s")
	test.Equate(t, errors.Pos(e), pos)
}

func TestBag(t *testing.T) {
	var bag errors.Bag
	test.Equate(t, bag.Empty(), true)

	bag.Add(nil)
	test.Equate(t, bag.Empty(), true)

	bag.Add(errors.Errorf(errors.Position{}, errors.SymbolUnknown, "foo"))
	bag.Add(errors.Errorf(errors.Position{}, errors.SymbolRedefined, "bar"))
	test.Equate(t, bag.Empty(), false)
	test.Equate(t, len(bag.Errors()), 2)
}

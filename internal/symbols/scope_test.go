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

package symbols_test

import (
	"testing"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/internal/symbols"
	"github.com/jetsetilly/gbasm/test"
)

func TestConstRedefinition(t *testing.T) {
	tab := symbols.NewTable()
	test.ExpectSuccess(t, tab.DefConst(errors.Position{}, "FOO", expr.Number{V: 1}, nil))
	test.ExpectFailure(t, tab.DefConst(errors.Position{}, "FOO", expr.Number{V: 2}, nil))
}

func TestReservedPrefixRejected(t *testing.T) {
	tab := symbols.NewTable()
	test.ExpectFailure(t, tab.DefConst(errors.Position{}, "_foo", expr.Number{V: 1}, nil))
}

func TestScopeIsolation(t *testing.T) {
	tab := symbols.NewTable()
	tab.PushScope()
	test.ExpectSuccess(t, tab.DefConst(errors.Position{}, "INNER", expr.Number{V: 1}, nil))
	test.ExpectSuccess(t, tab.AddLabel(errors.Position{}, "@@local", 100))
	test.ExpectSuccess(t, tab.PopScope())

	_, _, _, ok := tab.LookupConst([]string{"INNER"})
	test.ExpectEquality(t, ok, false)

	_, resolved, found := tab.LookupLabel("@@local")
	// the name is gone from the label table, but a bare identifier still
	// optimistically reads as a possible forward label.
	test.ExpectEquality(t, found, true)
	test.ExpectEquality(t, resolved, false)
}

func TestLabelLookup(t *testing.T) {
	tab := symbols.NewTable()
	test.ExpectSuccess(t, tab.AddLabel(errors.Position{}, "start", 0x08000000))
	v, resolved, found := tab.LookupLabel("start")
	test.ExpectEquality(t, found, true)
	test.ExpectEquality(t, resolved, true)
	test.ExpectEquality(t, v, int32(0x08000000))
}

func TestForwardLabelReferenceIsUnresolvedNotUnknown(t *testing.T) {
	tab := symbols.NewTable()
	_, resolved, found := tab.LookupLabel("later")
	test.ExpectEquality(t, found, true)
	test.ExpectEquality(t, resolved, false)
}

func TestAnonymousLabels(t *testing.T) {
	tab := symbols.NewTable()
	tab.AddAnonymous('-', 1, 100)
	tab.AddAnonymous('-', 1, 200)
	tab.AddAnonymous('+', 1, 300)

	v, resolved, found := tab.LookupAnonymous("-")
	test.ExpectEquality(t, found, true)
	test.ExpectEquality(t, resolved, true)
	test.ExpectEquality(t, v, int32(200))

	v, resolved, found = tab.LookupAnonymous("+")
	test.ExpectEquality(t, found, true)
	test.ExpectEquality(t, resolved, true)
	test.ExpectEquality(t, v, int32(300))
}

func TestStructFieldLookup(t *testing.T) {
	tab := symbols.NewTable()
	def := &symbols.StructDef{
		Name: "OAM",
		Base: 0x07000000,
		Fields: []symbols.StructField{
			{Name: "y", Offset: 0, Size: 1, Length: 1, DataType: "u8"},
			{Name: "x", Offset: 2, Size: 1, Length: 1, DataType: "u8"},
			{Name: "tiles", Offset: 4, Size: 2, Length: 8, DataType: "u16"},
		},
	}
	test.ExpectSuccess(t, tab.DefStruct(errors.Position{}, def))

	addr, dt, resolved, found := tab.LookupData([]string{"OAM", "x"})
	test.ExpectEquality(t, found, true)
	test.ExpectEquality(t, resolved, true)
	test.ExpectEquality(t, addr, int32(0x07000002))
	test.ExpectEquality(t, dt, "u8")

	length, _, _, _ := tab.LookupData([]string{"OAM", "tiles", "_length"})
	test.ExpectEquality(t, length, int32(8))

	bytes, _, _, _ := tab.LookupData([]string{"OAM", "tiles", "_bytes"})
	test.ExpectEquality(t, bytes, int32(16))
}

func TestDefinedQueryDoesNotGuessForwardLabels(t *testing.T) {
	tab := symbols.NewTable()
	test.ExpectEquality(t, tab.Defined([]string{"nope"}), false)
	test.ExpectSuccess(t, tab.AddLabel(errors.Position{}, "here", 4))
	test.ExpectEquality(t, tab.Defined([]string{"here"}), true)
}

func TestImportBindingResolvesLater(t *testing.T) {
	tab := symbols.NewTable()
	var target int32
	var ready bool
	test.ExpectSuccess(t, tab.BindImport(errors.Position{}, "FOO", func() (int32, bool, bool) {
		return target, ready, true
	}))

	_, resolved, found := tab.LookupLabel("FOO")
	test.ExpectEquality(t, found, true)
	test.ExpectEquality(t, resolved, false)

	target, ready = 42, true
	v, resolved, found := tab.LookupLabel("FOO")
	test.ExpectEquality(t, found, true)
	test.ExpectEquality(t, resolved, true)
	test.ExpectEquality(t, v, int32(42))
}

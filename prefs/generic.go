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

package prefs

import "fmt"

// Generic adapts an arbitrary pair of setter/getter closures to the Pref
// interface, for preferences whose on-disk representation doesn't map onto
// one of the built-in scalar types (a width,height pair, a list of
// recently opened files, and so on).
type Generic struct {
	set func(Value) error
	get func() Value
}

// NewGeneric constructs a Generic preference from a setter and a getter.
// The setter receives the raw value passed to Set, or the string parsed
// from the preferences file.
func NewGeneric(set func(Value) error, get func() Value) *Generic {
	return &Generic{set: set, get: get}
}

// Set implements the same dynamic-typed setter as the scalar preference
// types.
func (g *Generic) Set(v Value) error {
	return g.set(v)
}

// SetString implements Pref.
func (g *Generic) SetString(s string) error {
	return g.set(s)
}

// String implements Pref.
func (g *Generic) String() string {
	return fmt.Sprintf("%v", g.get())
}

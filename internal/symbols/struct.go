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

package symbols

// StructField is one member of a `.struct` layout: a sized type, an
// optional array length (1 if scalar) and the byte offset the directive
// executor computed for it, honouring any `.align` the source placed
// before the field.
type StructField struct {
	Name     string
	Offset   int32
	Size     int32  // size in bytes of one element
	Length   int32  // element count; 1 for a scalar field
	DataType string // e.g. "i8"/"i16"/"i32", consulted by the encoder to
	// pick PC-relative addressing forms
}

// StructDef is a named layout object as produced by `.struct`. Base is the
// starting address (e.g. the computed address of `iwram`/`ewram`, or a
// fixed literal); fields with no base specified default to address 0,
// making the struct usable purely for relative field-offset arithmetic --
// see DESIGN.md for this Open-Question resolution.
type StructDef struct {
	Name   string
	Base   int32
	Fields []StructField
}

// Field finds a member by name.
func (d *StructDef) Field(name string) (StructField, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// Size is the struct's total footprint in bytes: the offset plus
// size*length of its last field, or 0 if it has none.
func (d *StructDef) Size() int32 {
	if len(d.Fields) == 0 {
		return 0
	}
	last := d.Fields[len(d.Fields)-1]
	return last.Offset + last.Size*last.Length
}

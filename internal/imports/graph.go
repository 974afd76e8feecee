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

	"github.com/bradleyjkemp/memviz"
)

// graphView is the plain struct memviz walks by reflection to render the
// import DAG as a dot graph; memviz.Map doesn't understand map[string]*Import
// directly in a way that produces a readable picture, so this mirrors it
// into ordered, named fields first.
type graphView struct {
	Root  string
	Edges map[string][]string
}

// WriteGraph renders the import dependency graph built up by AddEdge as a
// Graphviz dot file, for `gbasm make --graph out.dot`.
func (d *Driver) WriteGraph(w io.Writer) {
	root := ""
	if m := d.Main(); m != nil {
		root = m.Path
	}
	memviz.Map(w, &graphView{Root: root, Edges: d.graph})
}

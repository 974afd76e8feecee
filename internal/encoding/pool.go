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

package encoding

import "github.com/jetsetilly/gbasm/expr"

// PoolEntry is one constant materialised by `ldr rd, =expr` awaiting
// placement at the next `.pool` directive.
type PoolEntry struct {
	Value  expr.Node
	addr   int32
	placed bool
}

// Addr reports the entry's final address, if `.pool` has already placed
// it.
func (e *PoolEntry) Addr() (int32, bool) { return e.addr, e.placed }

// Pool is the literal pool for `ldr rd, =expr` constants: requests queue
// up as `ldr rd, =expr` is encountered, and `.pool` (internal/directives)
// materialises them all at once at the emitter's current position.
type Pool struct {
	entries []*PoolEntry
}

// NewPool returns an empty Pool, one per Import.
func NewPool() *Pool { return &Pool{} }

// Request reserves a slot for v, returned as a handle whose Addr becomes
// valid once Place runs.
func (p *Pool) Request(v expr.Node) *PoolEntry {
	e := &PoolEntry{Value: v}
	p.entries = append(p.entries, e)
	return e
}

// Pending reports the entries still awaiting placement.
func (p *Pool) Pending() []*PoolEntry {
	var out []*PoolEntry
	for _, e := range p.entries {
		if !e.placed {
			out = append(out, e)
		}
	}
	return out
}

// Place assigns sequential word addresses starting at start to every
// entry not yet placed, and returns them in placement order so the
// directive executor can emit their values.
func (p *Pool) Place(start int32) []*PoolEntry {
	pending := p.Pending()
	addr := start
	for _, e := range pending {
		e.addr = addr
		e.placed = true
		addr += 4
	}
	return pending
}

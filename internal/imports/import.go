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
	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/internal/emitter"
	"github.com/jetsetilly/gbasm/internal/encoding"
	"github.com/jetsetilly/gbasm/internal/symbols"
)

// AddressRecord is one entry of the statement-to-address list handed to
// the CPU emulator: the source position of a statement paired
// with the byte address it was emitted at. No further debug-info format is
// produced.
type AddressRecord struct {
	Pos  errors.Position
	Addr int32
}

// Import is the per-source-file build object: it owns its own
// constant/struct table, byte emitter, ldr-pool and pending-write queue.
// Imports never share an Emitter; they may only reference each other's
// Scope, via the bindings BindConst/BindExport set up.
type Import struct {
	Path string
	Main bool

	Scope *symbols.Table
	Emit  *emitter.Emitter
	Pool  *encoding.Pool

	Mode    expr.Mode
	Base    int32
	baseSet bool

	Addresses []AddressRecord

	// IncludeStack is the chain of paths currently being inlined via
	// `.include`, used to detect a cycle as the directive executor recurses
	// into nested includes. It is not used for `.import`, which never
	// recurses into the target's own statement stream a second time.
	IncludeStack []string

	printfs []*printfJob

	driver *Driver
}

func newImport(path string, main bool, d *Driver) *Import {
	return &Import{
		Path:   path,
		Main:   main,
		Scope:  symbols.NewTable(),
		Emit:   emitter.New(),
		Pool:   encoding.NewPool(),
		driver: d,
	}
}

// SetBase implements `.base`: legal only before any bytes have been
// emitted in this import.
func (im *Import) SetBase(pos errors.Position, addr int32) error {
	if im.Emit.Len() != 0 {
		return errors.Errorf(pos, errors.DirectiveContext, ".base after bytes have been emitted")
	}
	im.Base = addr
	im.baseSet = true
	return nil
}

// Context builds an expr.Context snapshot for evaluating an expression at
// this import's current position.
func (im *Import) Context(policy expr.Policy) *expr.Context {
	return &expr.Context{
		Mode:   im.Mode,
		Main:   im.Main,
		Base:   im.Base,
		Here:   im.Emit.Len(),
		Scope:  im.Scope,
		Policy: policy,
	}
}

// ContextAt is Context with EmitOffset pinned to offset, for evaluating a
// pending write's builder at its own slot address rather than wherever the
// emitter has since reached.
func (im *Import) ContextAt(offset int32, policy expr.Policy) *expr.Context {
	ctx := im.Context(policy)
	ctx.EmitOffset = offset
	ctx.HasEmitOffset = true
	return ctx
}

// Record appends one statement-to-address debug entry.
func (im *Import) Record(pos errors.Position, addr int32) {
	im.Addresses = append(im.Addresses, AddressRecord{Pos: pos, Addr: addr})
}

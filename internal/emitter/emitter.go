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

package emitter

import (
	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
)

// Build computes the integer to store at a pending slot. It is handed a
// Context whose EmitOffset is the slot's own address (not wherever the
// emitter has since reached), so _here/_pc read correctly inside a
// deferred computation. Returning expr.ErrUnresolved means "not yet, try
// again after the next new label or import convergence".
//
// A pending write is expressed as a builder closure: rather than threading
// a separately-resolved values map through, Build calls expr.Value itself
// against the Context it's given, which is where the actual dependency
// resolution happens.
type Build func(ctx *expr.Context) (int32, error)

type pending struct {
	pos    errors.Position
	hint   string
	offset int32
	width  int
	big    bool
	build  Build
	ctxAt  func(emitOffset int32) *expr.Context
}

// Emitter is the append-only output buffer for one Import, plus its queue
// of pending writes. It has no notion of addressing mode or base address;
// those live on the owning Import and are folded into the Context a
// caller passes to Expr8/16/32.
type Emitter struct {
	buf     []byte
	pending []*pending
}

// New returns an empty Emitter.
func New() *Emitter { return &Emitter{} }

// Len is the current output length -- the _bytes reserved identifier.
func (e *Emitter) Len() int32 { return int32(len(e.buf)) }

// Write8 appends one byte immediately.
func (e *Emitter) Write8(v int32) { e.buf = append(e.buf, byte(v)) }

// Write16 appends a little-endian 16-bit value immediately.
func (e *Emitter) Write16(v int32) {
	e.buf = append(e.buf, byte(v), byte(v>>8))
}

// Write32 appends a little-endian 32-bit value immediately.
func (e *Emitter) Write32(v int32) {
	e.buf = append(e.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// Write16BE appends a big-endian 16-bit value (`.b16`).
func (e *Emitter) Write16BE(v int32) {
	e.buf = append(e.buf, byte(v>>8), byte(v))
}

// Write32BE appends a big-endian 32-bit value (`.b32`).
func (e *Emitter) Write32BE(v int32) {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteBytes appends raw bytes immediately, used by `.embed`.
func (e *Emitter) WriteBytes(b []byte) { e.buf = append(e.buf, b...) }

// Align appends fill bytes until the length is a multiple of n.
func (e *Emitter) Align(n int32, fill byte) {
	if n <= 0 {
		return
	}
	for int32(len(e.buf))%n != 0 {
		e.buf = append(e.buf, fill)
	}
}

// Expr8/16/32 reserve width bytes at the current position and register a
// pending write. If build resolves immediately against ctxAt(offset), the
// slot is patched in place and nothing is queued.
func (e *Emitter) Expr8(pos errors.Position, hint string, ctxAt func(int32) *expr.Context, build Build) error {
	return e.reserve(pos, hint, 1, false, ctxAt, build)
}

func (e *Emitter) Expr16(pos errors.Position, hint string, ctxAt func(int32) *expr.Context, build Build) error {
	return e.reserve(pos, hint, 2, false, ctxAt, build)
}

func (e *Emitter) Expr32(pos errors.Position, hint string, ctxAt func(int32) *expr.Context, build Build) error {
	return e.reserve(pos, hint, 4, false, ctxAt, build)
}

// Expr16BE/Expr32BE are the big-endian equivalents used by `.b16`/`.b32`
// and the `ib*`/`ub*` debug read forms' natural write-back counterpart.
func (e *Emitter) Expr16BE(pos errors.Position, hint string, ctxAt func(int32) *expr.Context, build Build) error {
	return e.reserve(pos, hint, 2, true, ctxAt, build)
}

func (e *Emitter) Expr32BE(pos errors.Position, hint string, ctxAt func(int32) *expr.Context, build Build) error {
	return e.reserve(pos, hint, 4, true, ctxAt, build)
}

func (e *Emitter) reserve(pos errors.Position, hint string, width int, big bool, ctxAt func(int32) *expr.Context, build Build) error {
	offset := int32(len(e.buf))
	for i := 0; i < width; i++ {
		e.buf = append(e.buf, 0)
	}

	p := &pending{pos: pos, hint: hint, offset: offset, width: width, big: big, build: build, ctxAt: ctxAt}
	return e.tryResolve(p)
}

// tryResolve attempts p's build function now; on success it patches the
// buffer and returns nil without queuing anything. On expr.ErrUnresolved
// it queues p and returns nil. Any other error is returned to the caller
// as a hard failure.
func (e *Emitter) tryResolve(p *pending) error {
	v, err := p.build(p.ctxAt(p.offset))
	if err == expr.ErrUnresolved {
		e.pending = append(e.pending, p)
		return nil
	}
	if err != nil {
		return err
	}
	e.patch(p.offset, p.width, p.big, v)
	return nil
}

func (e *Emitter) patch(offset int32, width int, big bool, v int32) {
	b := make([]byte, width)
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		if big {
			b[0], b[1] = byte(v>>8), byte(v)
		} else {
			b[0], b[1] = byte(v), byte(v>>8)
		}
	case 4:
		if big {
			b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
		} else {
			b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
		}
	}
	copy(e.buf[offset:offset+int32(width)], b)
}

// Retry re-attempts every still-pending write. Called whenever new
// knowledge arrives: a label is declared, an import converges, a .def
// fixed-point pass completes. Order of retry does not affect the final
// output: every build is a pure function of the Context it
// closes over, so running it twice in any order yields the same bytes or
// the same "still unresolved" outcome.
func (e *Emitter) Retry() error {
	remaining := e.pending[:0]
	for _, p := range e.pending {
		v, err := p.build(p.ctxAt(p.offset))
		if err == expr.ErrUnresolved {
			remaining = append(remaining, p)
			continue
		}
		if err != nil {
			return err
		}
		e.patch(p.offset, p.width, p.big, v)
	}
	e.pending = remaining
	return nil
}

// Pending reports how many writes are still unresolved.
func (e *Emitter) Pending() int { return len(e.pending) }

// Finalise requires the pending queue to be empty and returns the final
// byte sequence. Each remaining entry contributes one diagnostic naming
// its hint and position.
func (e *Emitter) Finalise() ([]byte, []error) {
	if len(e.pending) == 0 {
		return e.buf, nil
	}
	errs := make([]error, 0, len(e.pending))
	for _, p := range e.pending {
		errs = append(errs, errors.Errorf(p.pos, errors.ResolveUnsatisfied, p.hint))
	}
	return nil, errs
}

// Bytes returns the buffer as it stands, including any zero-filled
// not-yet-resolved slots. Used for diagnostics and by the disassembler's
// "best effort" mode; a real build must go through Finalise.
func (e *Emitter) Bytes() []byte { return e.buf }

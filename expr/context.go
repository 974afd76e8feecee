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

package expr

import goerrors "errors"

// Mode is the CPU instruction mode in effect while an expression is
// evaluated; it feeds the _arm/_thumb reserved identifiers.
type Mode int

const (
	ModeNone Mode = iota
	ModeARM
	ModeThumb
)

// Policy controls what happens when evaluation reaches a name with no
// value yet.
type Policy int

const (
	// AllowUnresolved makes Eval return ErrUnresolved instead of failing;
	// callers (the byte emitter's pending-write queue) use this to decide
	// whether to retry later.
	AllowUnresolved Policy = iota

	// RequireResolved turns an unresolved reference into a real error.
	RequireResolved
)

// ErrUnresolved is returned by Eval when a referenced label, import
// binding or script export has no value yet. Under RequireResolved policy
// it never escapes Eval uncaught -- the caller wraps it into a curated
// resolve error instead.
var ErrUnresolved = goerrors.New("expr: unresolved reference")

// Scope is everything an expression needs from the owning import's symbol
// table. symbols.Scope implements this; expr never imports that package.
type Scope interface {
	// LookupConst finds a named constant (0-ary or parameterised). It
	// returns the parsed body, its declared parameter names, and the
	// scope the body should itself be evaluated against (so a constant's
	// free identifiers resolve in its defining scope, not the caller's).
	LookupConst(path []string) (body Node, params []string, defScope Scope, ok bool)

	// LookupLabel finds an ordinary or imported label/export by name.
	// found=false means "not defined"; found=true,
	// resolved=false means "defined but no value yet" (late binding).
	LookupLabel(name string) (value int32, resolved bool, found bool)

	// LookupAnonymous resolves a run of leading +/- characters (e.g.
	// "++", "---") against the nearest matching anonymous label in scope.
	LookupAnonymous(token string) (value int32, resolved bool, found bool)

	// LookupData finds a lookup-data entry (e.g. a struct field address)
	// by dotted path, along with its declared data type tag used by the
	// encoder to choose PC-relative forms.
	LookupData(path []string) (value int32, dataType string, resolved bool, found bool)

	// Defined reports whether path names anything at all (for the
	// defined(...) query), without requiring it to have a value yet.
	Defined(path []string) bool
}

// CPU is the minimal interface needed to support debug-mode memory reads
// (i8/u16/etc); nil when no CPU is bound, which is the case for every
// ordinary assemble/disassemble run.
type CPU interface {
	ReadMemory(addr int32, size int, signed bool, bigEndian bool) (int32, error)
}

// Context is a read-only snapshot of everything evaluation needs. The same
// AST may be evaluated against many different Contexts as the build
// progresses.
type Context struct {
	Mode Mode

	// Main is true when the owning import is the build's root input (the
	// _main reserved identifier).
	Main bool

	// Base is the current `.base` address.
	Base int32

	// Here is the byte emitter's current length (the _bytes reserved
	// identifier).
	Here int32

	// EmitOffset is the address of the pending slot currently being
	// resolved, so that _here/_pc inside a deferred builder see the
	// slot's own address rather than wherever the emitter has reached by
	// the time the retry runs. HasEmitOffset distinguishes "evaluating a
	// deferred slot at offset 0" from "not evaluating a deferred slot at
	// all", since 0 is itself a legal offset.
	EmitOffset    int32
	HasEmitOffset bool

	// Params holds parameter bindings when evaluating inside a
	// parameterised constant or macro body.
	Params map[string]int32

	Scope  Scope
	Policy Policy

	// Debug enables register references and memory-read syntax (used by
	// _log and emulator breakpoint expressions).
	Debug bool
	CPU   CPU
}

// Here + EmitOffset both feed _here/_pc; the two are kept distinct because
// not every Context is evaluating a pending slot (Here alone is correct
// for expressions evaluated at the point they're first encountered).
func (c *Context) pc() int32 {
	if c.HasEmitOffset {
		return c.Base + c.EmitOffset
	}
	return c.Base + c.Here
}

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

import (
	"strings"
	"sync"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
)

// constEntry is one .def binding: the parsed body, its parameter names (nil
// for a 0-ary constant) and the scope it was defined in, so free
// identifiers inside the body resolve lexically rather than against
// whatever scope happens to be calling it.
type constEntry struct {
	body   expr.Node
	params []string
	def    *scopeLevel
}

// binding is an .import-bound name: a closure over the target import's own
// table, re-queried on every lookup so late binding keeps working across
// the import boundary.
type binding func() (value int32, resolved bool, found bool)

type scopeLevel struct {
	parent *scopeLevel
	depth  int

	consts   map[string]constEntry
	bindings map[string]binding
	labels   map[string]int32

	// anonMarks records every anonymous label declared while this level was
	// current, in declaration order, so LookupAnonymous can scan backward
	// or forward for a matching run length. The marks are discarded with
	// the level when its .end pops it.
	anonMarks []anonMark
}

type anonMark struct {
	sign  byte // '+' or '-'
	count int
	addr  int32
	seq   int // global declaration sequence, for backward/forward ordering
}

func newScopeLevel(parent *scopeLevel) *scopeLevel {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &scopeLevel{
		parent:   parent,
		depth:    depth,
		consts:   make(map[string]constEntry),
		bindings: make(map[string]binding),
		labels:   make(map[string]int32),
	}
}

// Table is a stack of lexical scopes plus the struct and label tables for
// one Import. The zero value is not usable; use
// NewTable.
type Table struct {
	mu sync.Mutex

	top *scopeLevel

	structs map[string]*StructDef

	// localDepth records, for every "@@name" label, the scope depth it was
	// declared at, so PopScope can discard it when that depth closes.
	localDepth map[string]int

	anonSeq int
}

// NewTable returns a Table with a single root scope.
func NewTable() *Table {
	return &Table{
		top:        newScopeLevel(nil),
		structs:    make(map[string]*StructDef),
		localDepth: make(map[string]int),
	}
}

// PushScope implements .begin: a fresh innermost scope shadowing the
// current one.
func (t *Table) PushScope() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.top = newScopeLevel(t.top)
}

// PopScope implements .end: discards the innermost scope, its @@ labels,
// and reverts to the enclosing one. Popping the root scope leaves it in
// place and returns a directive error (".end without matching .begin").
func (t *Table) PopScope() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.top.parent == nil {
		return errors.Errorf(errors.Position{}, errors.DirectiveContext, ".end without matching .begin")
	}
	closing := t.top.depth
	for name, depth := range t.localDepth {
		if depth >= closing {
			delete(t.localDepth, name)
		}
	}
	t.top = t.top.parent
	return nil
}

func isReserved(name string) bool {
	return strings.HasPrefix(name, "_")
}

// DefConst implements `.def name = expr` (params nil) and
// `.def name(p1, p2) = expr`. It rejects reserved-prefix names and
// redefinition within the current scope.
func (t *Table) DefConst(pos errors.Position, name string, body expr.Node, params []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if isReserved(name) {
		return errors.Errorf(pos, errors.SymbolReservedPrefix, name)
	}
	if _, ok := t.top.consts[name]; ok {
		return errors.Errorf(pos, errors.SymbolRedefined, name)
	}
	if _, ok := t.top.bindings[name]; ok {
		return errors.Errorf(pos, errors.SymbolRedefined, name)
	}

	t.top.consts[name] = constEntry{body: body, params: params, def: t.top}
	return nil
}

// BindImport implements one name of `.import "path" { name1, name2 }`:
// resolve is consulted fresh on every lookup, so the binding stays correct
// as the target import's own constants and labels become known.
func (t *Table) BindImport(pos errors.Position, name string, resolve func() (int32, bool, bool)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if isReserved(name) {
		return errors.Errorf(pos, errors.SymbolReservedPrefix, name)
	}
	if _, ok := t.top.consts[name]; ok {
		return errors.Errorf(pos, errors.SymbolRedefined, name)
	}
	if _, ok := t.top.bindings[name]; ok {
		return errors.Errorf(pos, errors.SymbolRedefined, name)
	}

	t.top.bindings[name] = resolve
	return nil
}

// AddLabel binds name to addr in the current scope. A name prefixed with
// "@@" is recorded as local to the innermost .begin and is discarded when
// that scope's matching .end runs.
func (t *Table) AddLabel(pos errors.Position, name string, addr int32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for s := t.top; s != nil; s = s.parent {
		if _, ok := s.labels[name]; ok {
			return errors.Errorf(pos, errors.SymbolRedefined, name)
		}
	}

	t.top.labels[name] = addr
	if strings.HasPrefix(name, "@@") {
		t.localDepth[name] = t.top.depth
	}
	return nil
}

// AddAnonymous records the declaration of an anonymous label written as a
// run of "sign" repeated count times (e.g. "--:" is sign='-', count=2).
func (t *Table) AddAnonymous(sign byte, count int, addr int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.anonSeq++
	t.top.anonMarks = append(t.top.anonMarks, anonMark{sign: sign, count: count, addr: addr, seq: t.anonSeq})
}

// DefStruct registers a fully computed struct layout (see StructDef).
func (t *Table) DefStruct(pos errors.Position, def *StructDef) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if isReserved(def.Name) {
		return errors.Errorf(pos, errors.SymbolReservedPrefix, def.Name)
	}
	if _, ok := t.structs[def.Name]; ok {
		return errors.Errorf(pos, errors.SymbolRedefined, def.Name)
	}
	t.structs[def.Name] = def
	return nil
}

// Struct returns a previously defined struct by name.
func (t *Table) Struct(name string) (*StructDef, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.structs[name]
	return s, ok
}

// --- expr.Scope implementation -------------------------------------------

// LookupConst implements expr.Scope. Only single-segment paths can name a
// constant; dotted paths belong to struct-field lookup (LookupData).
func (t *Table) LookupConst(path []string) (expr.Node, []string, expr.Scope, bool) {
	if len(path) != 1 {
		return nil, nil, nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for s := t.top; s != nil; s = s.parent {
		if c, ok := s.consts[path[0]]; ok {
			return c.body, c.params, &scopedView{t: t, level: c.def}, true
		}
	}
	return nil, nil, nil, false
}

// scopedView lets a constant's body evaluate against the scope it was
// defined in (for correctly-lexically-scoped free identifiers) while
// still sharing the owning Table's struct/label state.
type scopedView struct {
	t     *Table
	level *scopeLevel
}

func (v *scopedView) LookupConst(path []string) (expr.Node, []string, expr.Scope, bool) {
	if len(path) != 1 {
		return nil, nil, nil, false
	}
	v.t.mu.Lock()
	defer v.t.mu.Unlock()
	for s := v.level; s != nil; s = s.parent {
		if c, ok := s.consts[path[0]]; ok {
			return c.body, c.params, &scopedView{t: v.t, level: c.def}, true
		}
	}
	return nil, nil, nil, false
}

func (v *scopedView) LookupLabel(name string) (int32, bool, bool) { return v.t.LookupLabel(name) }
func (v *scopedView) LookupAnonymous(tok string) (int32, bool, bool) {
	return v.t.LookupAnonymous(tok)
}
func (v *scopedView) LookupData(path []string) (int32, string, bool, bool) {
	return v.t.LookupData(path)
}
func (v *scopedView) Defined(path []string) bool { return v.t.Defined(path) }

// LookupLabel implements expr.Scope. A single bare identifier that isn't
// an import binding or an already-declared label is optimistically
// reported as found-but-unresolved: it may be a label defined later in
// this or another file. If it never materialises, the byte emitter's
// final fixed-point pass reports it by name as a resolve error, which is
// how a genuine typo surfaces -- there is no separate
// "definitely unknown" signal available before the whole build completes.
func (t *Table) LookupLabel(name string) (int32, bool, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for s := t.top; s != nil; s = s.parent {
		if r, ok := s.bindings[name]; ok {
			v, resolved, found := r()
			return v, resolved, found
		}
	}
	if v, ok := t.declaredLabelLocked(name); ok {
		return v, true, true
	}
	if isReserved(name) {
		return 0, false, false
	}
	return 0, false, true
}

func (t *Table) declaredLabelLocked(name string) (int32, bool) {
	for s := t.top; s != nil; s = s.parent {
		if v, ok := s.labels[name]; ok {
			return v, true
		}
	}
	return 0, false
}

// LookupAnonymous implements expr.Scope: tok is a run of the same +/-
// character, e.g. "--" or "+++". A leading '-' asks for the nearest prior
// declaration with that many signs; '+' asks for the nearest upcoming one.
func (t *Table) LookupAnonymous(tok string) (int32, bool, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tok == "" {
		return 0, false, false
	}
	sign := tok[0]
	count := len(tok)

	var best *anonMark
	for s := t.top; s != nil; s = s.parent {
		for i := range s.anonMarks {
			m := &s.anonMarks[i]
			if m.sign != sign || m.count != count {
				continue
			}
			if sign == '-' {
				if best == nil || m.seq > best.seq {
					best = m
				}
			} else {
				if best == nil || m.seq < best.seq {
					best = m
				}
			}
		}
	}
	if best == nil {
		// a forward "+...+" reference may legitimately not exist yet.
		if sign == '+' {
			return 0, false, true
		}
		return 0, false, false
	}
	return best.addr, true, true
}

// LookupData implements expr.Scope for struct.field[._length|._bytes]
// paths. Struct layouts are fully computed at `.struct` time, so a found
// entry is always resolved.
func (t *Table) LookupData(path []string) (int32, string, bool, bool) {
	if len(path) < 2 {
		return 0, "", false, false
	}
	t.mu.Lock()
	def, ok := t.structs[path[0]]
	t.mu.Unlock()
	if !ok {
		return 0, "", false, false
	}
	f, ok := def.Field(path[1])
	if !ok {
		return 0, "", false, false
	}

	if len(path) == 3 {
		switch path[2] {
		case "_length":
			return f.Length, "length", true, true
		case "_bytes":
			return f.Size * f.Length, "bytes", true, true
		}
		return 0, "", false, false
	}

	return def.Base + f.Offset, f.DataType, true, true
}

// Export resolves a bare name the way `.import "path" { name }` needs to:
// tried as a 0-ary constant first, then as an ordinary label. It is the
// resolve closure an import binding calls on every lookup (late binding
// crosses the import boundary the same way it does within one file).
func (t *Table) Export(name string) (int32, bool, bool) {
	t.mu.Lock()
	if c, ok := t.top.consts[name]; ok && len(c.params) == 0 {
		t.mu.Unlock()
		ctx := &expr.Context{Scope: &scopedView{t: t, level: c.def}, Policy: expr.AllowUnresolved}
		v, err := c.body.Eval(ctx)
		if err == expr.ErrUnresolved {
			return 0, false, true
		}
		if err != nil {
			return 0, false, false
		}
		return v, true, true
	}
	t.mu.Unlock()
	return t.LookupLabel(name)
}

// Defined implements expr.Scope's defined(lookup) query: true only for
// names that actually resolve to something, unlike LookupLabel's
// optimistic forward-reference guess.
func (t *Table) Defined(path []string) bool {
	if len(path) == 1 {
		t.mu.Lock()
		defer t.mu.Unlock()
		name := path[0]
		for s := t.top; s != nil; s = s.parent {
			if _, ok := s.consts[name]; ok {
				return true
			}
			if _, ok := s.bindings[name]; ok {
				return true
			}
		}
		if _, ok := t.declaredLabelLocked(name); ok {
			return true
		}
		_, ok := t.structs[name]
		return ok
	}

	_, _, resolved, found := t.LookupData(path)
	return found && resolved
}

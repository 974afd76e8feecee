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

import (
	"fmt"

	"github.com/jetsetilly/gbasm/errors"
)

// Node is one term of an expression AST. Eval is a pure function of the
// Context it's given: the same Node is evaluated repeatedly as imports and
// labels become known.
type Node interface {
	Eval(ctx *Context) (int32, error)
	String() string
}

// Value evaluates n against ctx and folds ErrUnresolved according to
// ctx.Policy: under RequireResolved it becomes a curated resolve error
// naming n; under AllowUnresolved the sentinel is returned unwrapped so
// the caller (typically a pending write) can decide to retry.
func Value(n Node, ctx *Context) (int32, error) {
	v, err := n.Eval(ctx)
	if err == ErrUnresolved && ctx.Policy == RequireResolved {
		return 0, errors.Errorf(errors.Position{}, errors.ResolveUnsatisfied, n.String())
	}
	return v, err
}

// Number is a literal numeric value.
type Number struct{ V int32 }

func (n Number) Eval(ctx *Context) (int32, error) { return n.V, nil }
func (n Number) String() string                   { return fmt.Sprintf("%d", n.V) }

// Reserved is one of the built-in identifiers that always exist:
// _arm, _base, _bytes, _here, _main, _pc, _thumb, _version.
type Reserved struct{ Name string }

func (r Reserved) String() string { return r.Name }

func (r Reserved) Eval(ctx *Context) (int32, error) {
	switch r.Name {
	case "_arm":
		return boolInt(ctx.Mode == ModeARM), nil
	case "_thumb":
		return boolInt(ctx.Mode == ModeThumb), nil
	case "_base":
		return ctx.Base, nil
	case "_bytes":
		return ctx.Here, nil
	case "_here", "_pc":
		return ctx.pc(), nil
	case "_main":
		return boolInt(ctx.Main), nil
	case "_version":
		return version, nil
	}
	return 0, errors.Errorf(errors.Position{}, errors.SymbolUnknown, r.Name)
}

// version is the one true process-wide datum named in the design notes: a
// compile-time constant of this implementation, bumped by hand on release.
const version = 1

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Param references a parameter of the enclosing constant template or
// macro body.
type Param struct{ Name string }

func (p Param) String() string { return p.Name }

func (p Param) Eval(ctx *Context) (int32, error) {
	v, ok := ctx.Params[p.Name]
	if !ok {
		return 0, errors.Errorf(errors.Position{}, errors.SymbolUnknown, p.Name)
	}
	return v, nil
}

// Lookup resolves a dotted/bracketed identifier path, optionally calling it
// with Args if it names a parameterised constant.
type Lookup struct {
	Path []string
	Args []Node
}

func (l Lookup) String() string {
	s := l.Path[0]
	for _, p := range l.Path[1:] {
		s += "." + p
	}
	return s
}

func (l Lookup) Eval(ctx *Context) (int32, error) {
	if body, params, defScope, ok := ctx.Scope.LookupConst(l.Path); ok {
		if len(params) != len(l.Args) {
			return 0, errors.Errorf(errors.Position{}, errors.SymbolWrongArity, l.String())
		}

		bound := make(map[string]int32, len(params))
		for i, p := range params {
			v, err := Value(l.Args[i], ctx)
			if err != nil {
				return 0, err
			}
			bound[p] = v
		}

		sub := *ctx
		sub.Scope = defScope
		sub.Params = bound
		return body.Eval(&sub)
	}

	if v, data, resolved, found := ctx.Scope.LookupData(l.Path); found {
		_ = data
		if !resolved {
			return 0, ErrUnresolved
		}
		return v, nil
	}

	if v, resolved, found := ctx.Scope.LookupLabel(l.Path[len(l.Path)-1]); found {
		if !resolved {
			return 0, ErrUnresolved
		}
		return v, nil
	}

	return 0, errors.Errorf(errors.Position{}, errors.SymbolUnknown, l.String())
}

// Anonymous resolves a run of +/- characters against the nearest matching
// relative label.
type Anonymous struct{ Token string }

func (a Anonymous) String() string { return a.Token }

func (a Anonymous) Eval(ctx *Context) (int32, error) {
	v, resolved, found := ctx.Scope.LookupAnonymous(a.Token)
	if !found {
		return 0, errors.Errorf(errors.Position{}, errors.SymbolUnknown, a.Token)
	}
	if !resolved {
		return 0, ErrUnresolved
	}
	return v, nil
}

// Register is a CPU register reference, legal only in Debug contexts.
type Register struct{ Num int }

func (r Register) String() string { return fmt.Sprintf("r%d", r.Num) }

func (r Register) Eval(ctx *Context) (int32, error) {
	if !ctx.Debug {
		return 0, errors.Errorf(errors.Position{}, errors.ParseInvalidExpression, r.String())
	}
	return 0, errors.Errorf(errors.Position{}, errors.ParseInvalidExpression, "register reference has no value outside of a bound CPU")
}

// MemRead reads a sized value from memory at Addr; legal only in debug
// contexts with a bound CPU.
type MemRead struct {
	Size      int
	Signed    bool
	BigEndian bool
	Addr      Node
}

func (m MemRead) String() string { return fmt.Sprintf("[%s]", m.Addr) }

func (m MemRead) Eval(ctx *Context) (int32, error) {
	if !ctx.Debug || ctx.CPU == nil {
		return 0, errors.Errorf(errors.Position{}, errors.ParseInvalidExpression, "memory read requires a bound CPU")
	}
	addr, err := Value(m.Addr, ctx)
	if err != nil {
		return 0, err
	}
	return ctx.CPU.ReadMemory(addr, m.Size, m.Signed, m.BigEndian)
}

// Assert carries a string hint alongside an expression purely for
// diagnostics; it evaluates to the expression's value unchanged.
type Assert struct {
	Hint string
	Expr Node
}

func (a Assert) String() string { return a.Hint }

func (a Assert) Eval(ctx *Context) (int32, error) {
	return Value(a.Expr, ctx)
}

// Defined implements the defined(lookup) query: 1 if the path names
// anything (resolved or not), 0 otherwise.
type Defined struct{ Path []string }

func (d Defined) String() string { return "defined(" + Lookup{Path: d.Path}.String() + ")" }

func (d Defined) Eval(ctx *Context) (int32, error) {
	return boolInt(ctx.Scope.Defined(d.Path)), nil
}

// Unary is a prefix operator: -, ~, !.
type Unary struct {
	Op string
	X  Node
}

func (u Unary) String() string { return u.Op + u.X.String() }

func (u Unary) Eval(ctx *Context) (int32, error) {
	v, err := Value(u.X, ctx)
	if err != nil {
		return 0, err
	}
	switch u.Op {
	case "-":
		return -v, nil
	case "~":
		return ^v, nil
	case "!":
		return boolInt(v == 0), nil
	}
	return 0, fmt.Errorf("expr: unknown unary operator %q", u.Op)
}

// Ternary is the lowest precedence operator. It is right-associative:
// a ? b : c ? d : e groups as a ? b : (c ? d : e).
type Ternary struct {
	Cond, T, F Node
}

func (t Ternary) String() string { return fmt.Sprintf("%s ? %s : %s", t.Cond, t.T, t.F) }

func (t Ternary) Eval(ctx *Context) (int32, error) {
	c, err := Value(t.Cond, ctx)
	if err != nil {
		return 0, err
	}
	if c != 0 {
		return Value(t.T, ctx)
	}
	return Value(t.F, ctx)
}

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
	"math"

	"github.com/jetsetilly/gbasm/errors"
)

// builtinArity names the fixed argument count of every named function.
var builtinArity = map[string]int{
	"abs": 1, "clamp": 3, "log2": 1, "log2assert": 1,
	"max": 2, "min": 2, "nrt": 2, "pow": 2, "rgb": 3, "sign": 1, "sqrt": 1,
}

// IsBuiltin reports whether name is a recognised function, and if so its
// argument count.
func IsBuiltin(name string) (int, bool) {
	n, ok := builtinArity[name]
	return n, ok
}

// Call invokes one of the named functions: abs, clamp, log2, log2assert,
// max, min, nrt, pow, rgb, sign, sqrt.
type Call struct {
	Func string
	Args []Node
}

func (c Call) String() string {
	s := c.Func + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func (c Call) Eval(ctx *Context) (int32, error) {
	want, ok := builtinArity[c.Func]
	if !ok {
		return 0, errors.Errorf(errors.Position{}, errors.SymbolUnknown, c.Func)
	}
	if want != len(c.Args) {
		return 0, errors.Errorf(errors.Position{}, errors.SymbolWrongArity, c.String())
	}

	args := make([]int32, len(c.Args))
	for i, a := range c.Args {
		v, err := Value(a, ctx)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	switch c.Func {
	case "abs":
		if args[0] < 0 {
			return -args[0], nil
		}
		return args[0], nil

	case "sign":
		switch {
		case args[0] < 0:
			return -1, nil
		case args[0] > 0:
			return 1, nil
		}
		return 0, nil

	case "min":
		if args[0] < args[1] {
			return args[0], nil
		}
		return args[1], nil

	case "max":
		if args[0] > args[1] {
			return args[0], nil
		}
		return args[1], nil

	case "clamp":
		a, b, cc := args[0], args[1], args[2]
		lo, hi := b, cc
		if lo > hi {
			lo, hi = hi, lo
		}
		if a < lo {
			return lo, nil
		}
		if a > hi {
			return hi, nil
		}
		return a, nil

	case "log2":
		if args[0] <= 0 {
			return 0, errors.Errorf(errors.Position{}, errors.ParseInvalidExpression, "log2 of non-positive value")
		}
		return int32(math.Log2(float64(args[0]))), nil

	case "log2assert":
		if args[0] <= 0 || args[0]&(args[0]-1) != 0 {
			return 0, errors.Errorf(errors.Position{}, errors.ParseInvalidExpression,
				fmt.Sprintf("%d is not an exact power of two", args[0]))
		}
		return int32(math.Log2(float64(args[0]))), nil

	case "pow":
		return int32(math.Pow(float64(args[0]), float64(args[1]))), nil

	case "nrt":
		return int32(math.Pow(float64(args[0]), 1/float64(args[1]))), nil

	case "sqrt":
		return int32(math.Sqrt(math.Abs(float64(args[0])))), nil

	case "rgb":
		r, g, b := args[0]&31, args[1]&31, args[2]&31
		return (b << 10) | (g << 5) | r, nil
	}

	return 0, fmt.Errorf("expr: unimplemented builtin %q", c.Func)
}

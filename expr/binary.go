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

// precedence gives each binary operator's binding strength, tightest
// first. Operators not listed aren't binary operators.
var precedence = map[string]int{
	"*": 10, "/": 10, "%": 10,
	"+": 9, "-": 9,
	"<<": 8, ">>": 8, ">>>": 8,
	"&": 7,
	"^": 6,
	"|": 5,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"==": 3, "!=": 3,
	"&&": 2,
	"||": 1,
}

// Binary is a two-operand operator node. All arithmetic is performed in
// signed 32-bit two's complement; every result is implicitly truncated to
// 32 bits by the int32 return type.
type Binary struct {
	Op   string
	L, R Node
}

func (b Binary) String() string { return fmt.Sprintf("(%s %s %s)", b.L, b.Op, b.R) }

func (b Binary) Eval(ctx *Context) (int32, error) {
	l, err := Value(b.L, ctx)
	if err != nil {
		return 0, err
	}
	r, err := Value(b.R, ctx)
	if err != nil {
		return 0, err
	}

	switch b.Op {
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, errors.Errorf(errors.Position{}, errors.ParseInvalidExpression, "division by zero")
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return 0, errors.Errorf(errors.Position{}, errors.ParseInvalidExpression, "modulo by zero")
		}
		return l % r, nil
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "<<":
		return l << uint32(r), nil
	case ">>":
		return l >> uint32(r), nil
	case ">>>":
		return int32(uint32(l) >> uint32(r)), nil
	case "&":
		return l & r, nil
	case "^":
		return l ^ r, nil
	case "|":
		return l | r, nil
	case "<":
		return boolInt(l < r), nil
	case "<=":
		return boolInt(l <= r), nil
	case ">":
		return boolInt(l > r), nil
	case ">=":
		return boolInt(l >= r), nil
	case "==":
		return boolInt(l == r), nil
	case "!=":
		return boolInt(l != r), nil
	case "&&":
		return boolInt(l != 0 && r != 0), nil
	case "||":
		return boolInt(l != 0 || r != 0), nil
	}

	return 0, fmt.Errorf("expr: unknown binary operator %q", b.Op)
}

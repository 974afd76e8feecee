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
	"fmt"
	"strings"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
)

// printfJob is one queued `.printf` statement: its arguments are evaluated
// only once every one of them resolves, so the job sits in
// its owning Import's FIFO queue until the Driver's fixed-point pass can
// render it.
type printfJob struct {
	pos    errors.Position
	format string
	args   []expr.Node
}

// QueuePrintf implements `.printf fmt, args...`: it never evaluates args
// itself, only records the job at the back of this import's queue.
func (im *Import) QueuePrintf(pos errors.Position, format string, args []expr.Node) {
	im.printfs = append(im.printfs, &printfJob{pos: pos, format: format, args: args})
}

// tryHeadPrintf attempts to render the oldest still-queued job. ok=false
// with err=nil means "not ready yet"; the caller must not skip ahead to a
// later job, since relative order within one file is part of the
// contract.
func (im *Import) tryHeadPrintf() (line string, ok bool, err error) {
	if len(im.printfs) == 0 {
		return "", false, nil
	}
	j := im.printfs[0]
	ctx := im.Context(expr.AllowUnresolved)

	vals := make([]int32, len(j.args))
	for i, a := range j.args {
		v, err := expr.Value(a, ctx)
		if err == expr.ErrUnresolved {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		vals[i] = v
	}

	s, err := formatPrintf(j.pos, j.format, vals)
	if err != nil {
		return "", false, err
	}
	im.printfs = im.printfs[1:]
	return s, true, nil
}

// pendingPrintfs reports whether any queued `.printf` job remains.
func (im *Import) pendingPrintfs() bool { return len(im.printfs) > 0 }

// formatPrintf implements the assembler's format specifier set: %%,
// %d, %i, %u, %o, %b, %x, %X, with width/0/-/+/# flags. %s is
// deliberately not implemented; any use is a directive error rather than
// a guess at string semantics.
func formatPrintf(pos errors.Position, format string, vals []int32) (string, error) {
	var b strings.Builder
	argi := 0
	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(format) {
			return "", errors.Errorf(pos, errors.DirectiveUserError, "dangling '%' in format string")
		}
		if format[i] == '%' {
			b.WriteByte('%')
			i++
			continue
		}

		flagsStart := i
		for i < len(format) && strings.ContainsRune("-+0#", rune(format[i])) {
			i++
		}
		flags := format[flagsStart:i]

		widthStart := i
		for i < len(format) && format[i] >= '0' && format[i] <= '9' {
			i++
		}
		width := format[widthStart:i]

		if i >= len(format) {
			return "", errors.Errorf(pos, errors.DirectiveUserError, "incomplete format specifier")
		}
		verb := format[i]
		i++

		if verb == 's' {
			return "", errors.Errorf(pos, errors.DirectiveUserError, "%s format specifier is not supported")
		}

		if argi >= len(vals) {
			return "", errors.Errorf(pos, errors.DirectiveUserError, "not enough arguments for format string")
		}
		v := vals[argi]
		argi++

		spec := "%" + flags + width
		switch verb {
		case 'd', 'i':
			fmt.Fprintf(&b, spec+"d", v)
		case 'u':
			fmt.Fprintf(&b, spec+"d", uint32(v))
		case 'o':
			fmt.Fprintf(&b, spec+"o", v)
		case 'b':
			fmt.Fprintf(&b, spec+"b", v)
		case 'x':
			fmt.Fprintf(&b, spec+"x", v)
		case 'X':
			fmt.Fprintf(&b, spec+"X", v)
		default:
			return "", errors.Errorf(pos, errors.DirectiveUserError, fmt.Sprintf("unknown format specifier '%%%c'", verb))
		}
	}
	return b.String(), nil
}

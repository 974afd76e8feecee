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

package emitter_test

import (
	"testing"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/internal/emitter"
	"github.com/jetsetilly/gbasm/test"
)

func TestImmediateWrites(t *testing.T) {
	e := emitter.New()
	e.Write8(1)
	e.Write16(0x0201)
	e.Write32(0x04030201)
	test.Equate(t, e.Bytes(), []byte{0x01, 0x01, 0x02, 0x01, 0x02, 0x03, 0x04})
}

func TestAlign(t *testing.T) {
	e := emitter.New()
	e.Write8(1)
	e.Align(4, 0)
	test.Equate(t, e.Bytes(), []byte{1, 0, 0, 0})
}

func TestPendingWriteResolvesOnRetry(t *testing.T) {
	e := emitter.New()

	resolved := false
	ctxAt := func(off int32) *expr.Context {
		return &expr.Context{Policy: expr.AllowUnresolved}
	}
	build := func(ctx *expr.Context) (int32, error) {
		if !resolved {
			return 0, expr.ErrUnresolved
		}
		return 0x2a, nil
	}

	test.ExpectSuccess(t, e.Expr8(errors.Position{}, "later", ctxAt, build))
	test.ExpectEquality(t, e.Pending(), 1)

	resolved = true
	test.ExpectSuccess(t, e.Retry())
	test.ExpectEquality(t, e.Pending(), 0)
	test.Equate(t, e.Bytes(), []byte{0x2a})
}

func TestFinaliseReportsUnresolved(t *testing.T) {
	e := emitter.New()
	ctxAt := func(off int32) *expr.Context { return &expr.Context{} }
	build := func(ctx *expr.Context) (int32, error) { return 0, expr.ErrUnresolved }
	test.ExpectSuccess(t, e.Expr32(errors.Position{}, "missing", ctxAt, build))

	_, errs := e.Finalise()
	test.ExpectEquality(t, len(errs), 1)
}

func TestCRC(t *testing.T) {
	e := emitter.New()
	e.WriteBytes(make([]byte, emitter.HeaderCRCOffset))
	crc := e.CRC()
	e.Write8(int32(crc))
	test.ExpectEquality(t, len(e.Bytes()), emitter.HeaderCRCOffset+1)
}

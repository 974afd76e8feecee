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

import (
	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
)

// instrAddr mirrors expr.Context's unexported pc(): the address a Build
// closure's own instruction occupies, whether it runs immediately or is
// replayed later from the emitter's pending-write queue.
func instrAddr(ctx *expr.Context) int32 {
	if ctx.HasEmitOffset {
		return ctx.Base + ctx.EmitOffset
	}
	return ctx.Base + ctx.Here
}

// operand2Bits evaluates a dataproc Operand2 into its 12-bit field plus the
// instruction word's I (immediate) bit.
func operand2Bits(pos errors.Position, op2 Operand2, ctx *expr.Context) (bits, immBit uint32, err error) {
	if op2.IsImmediate {
		v, err := expr.Value(op2.Imm, ctx)
		if err != nil {
			return 0, 0, err
		}
		enc, ok := encodeRotimm(uint32(v))
		if !ok {
			return 0, 0, errors.Errorf(pos, errors.EncodeRotimmOverflow, v)
		}
		return enc, 1, nil
	}
	bits, err = shiftedRegBits(pos, op2.Reg, ctx, true)
	return bits, 0, err
}

// shiftedRegBits builds the 12-bit [shift|Rm] field shared by Operand2 and
// addressing-mode register offsets. allowRegShift is false for load/store
// offsets, which may only be shifted by an immediate amount.
func shiftedRegBits(pos errors.Position, sr ShiftedReg, ctx *expr.Context, allowRegShift bool) (uint32, error) {
	bits := uint32(sr.Rm)
	if !sr.HasShift {
		return bits, nil
	}
	if sr.Kind == ShiftRRX {
		return bits | 3<<5, nil
	}
	if sr.RegAmount {
		if !allowRegShift {
			return 0, errors.Errorf(pos, errors.EncodeInvalidShift, "register-specified shift not permitted here")
		}
		return bits | uint32(sr.AmountReg)<<8 | 1<<4 | sr.Kind.bits()<<5, nil
	}
	amt, err := expr.Value(sr.Amount, ctx)
	if err != nil {
		return 0, err
	}
	var encAmt uint32
	switch sr.Kind {
	case ShiftLSR, ShiftASR:
		switch {
		case amt == 32:
			encAmt = 0
		case amt >= 1 && amt <= 31:
			encAmt = uint32(amt)
		default:
			return 0, errors.Errorf(pos, errors.EncodeImmediateRange, amt)
		}
	default: // LSL, ROR
		if amt < 0 || amt > 31 {
			return 0, errors.Errorf(pos, errors.EncodeImmediateRange, amt)
		}
		encAmt = uint32(amt)
	}
	return bits | encAmt<<7 | sr.Kind.bits()<<5, nil
}

// branchOffset evaluates target and turns it into the word-aligned, 24-bit
// signed displacement used by ARM's b/bl, relative to the instruction's own
// address plus the pipeline's 8-byte lookahead.
func branchOffset(pos errors.Position, target expr.Node, ctx *expr.Context) (uint32, error) {
	v, err := expr.Value(target, ctx)
	if err != nil {
		return 0, err
	}
	delta := v - (instrAddr(ctx) + 8)
	if delta%4 != 0 {
		return 0, errors.Errorf(pos, errors.EncodeMisalignedBranch, v)
	}
	off := delta / 4
	if off < -(1<<23) || off > (1<<23)-1 {
		return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
	}
	return uint32(off) & 0xFFFFFF, nil
}

// thumbBranchOffset is the 16-bit-field analogue used by Thumb's
// conditional and unconditional branches, relative to the 4-byte pipeline
// lookahead.
func thumbBranchOffset(pos errors.Position, target expr.Node, ctx *expr.Context, bits int) (uint32, error) {
	v, err := expr.Value(target, ctx)
	if err != nil {
		return 0, err
	}
	delta := v - (instrAddr(ctx) + 4)
	if delta%2 != 0 {
		return 0, errors.Errorf(pos, errors.EncodeMisalignedBranch, v)
	}
	off := delta / 2
	lo := int32(-1) << uint(bits-1)
	hi := -lo - 1
	if off < lo || off > hi {
		return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
	}
	mask := uint32(1)<<uint(bits) - 1
	return uint32(off) & mask, nil
}

// addrOffsetBits builds the 12-bit offset field of a single data transfer
// for an AddrMode: the immediate offset, or the shifted register offset.
// Only the offset bits are returned; the U bit is not part of the result.
func addrOffsetBits(pos errors.Position, am AddrMode, ctx *expr.Context) (uint32, error) {
	if am.HasImmOffset {
		v, err := expr.Value(am.ImmOffset, ctx)
		if err != nil {
			return 0, err
		}
		if v < 0 || v > 0xFFF {
			return 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
		}
		return uint32(v), nil
	}
	if am.HasRegOffset {
		return shiftedRegBits(pos, am.RegOffset, ctx, false)
	}
	return 0, nil
}

// halfwordOffsetBits splits an addressing-mode immediate offset into the
// high/low nibbles used by ldrh/strh/ldrsb/ldrsh's 8-bit immediate layout.
func halfwordOffsetBits(pos errors.Position, am AddrMode, ctx *expr.Context) (hi, lo uint32, isImm bool, rm uint32, err error) {
	if am.HasImmOffset {
		v, err := expr.Value(am.ImmOffset, ctx)
		if err != nil {
			return 0, 0, false, 0, err
		}
		if v < 0 || v > 0xFF {
			return 0, 0, false, 0, errors.Errorf(pos, errors.EncodeImmediateRange, v)
		}
		return uint32(v) >> 4, uint32(v) & 0xF, true, 0, nil
	}
	return 0, 0, false, uint32(am.RegOffset.Rm), nil
}

// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tachyon

import (
	"fmt"
	"math"
	"math/bits"
)

// executeValue handles the pure value instructions: arithmetic, bitwise,
// math, conversion and comparison. Operands are popped right-first.
func (e *execution) executeValue(in Instruction) error {
	s := e.stack
	switch in.Opcode {

	// Arithmetic, i32. Results wrap.
	case AddI32:
		r, l := s.popI32(), s.popI32()
		s.pushI32(l + r)
	case SubI32:
		r, l := s.popI32(), s.popI32()
		s.pushI32(l - r)
	case AddImmI32:
		s.pushI32(s.popI32() + int32(int16(in.P16)))
	case SubImmI32:
		s.pushI32(s.popI32() - int32(int16(in.P16)))
	case MulI32:
		r, l := s.popI32(), s.popI32()
		s.pushI32(l * r)
	case DivI32S:
		r, l := s.popI32(), s.popI32()
		if r == 0 {
			return ErrIntegerDivideByZero
		}
		s.pushI32(l / r)
	case DivI32U:
		r, l := s.popU32(), s.popU32()
		if r == 0 {
			return ErrIntegerDivideByZero
		}
		s.pushI32(int32(l / r))
	case RemI32S:
		r, l := s.popI32(), s.popI32()
		if r == 0 {
			return ErrIntegerDivideByZero
		}
		s.pushI32(l % r)
	case RemI32U:
		r, l := s.popU32(), s.popU32()
		if r == 0 {
			return ErrIntegerDivideByZero
		}
		s.pushI32(int32(l % r))

	// Arithmetic, i64.
	case AddI64:
		r, l := s.popI64(), s.popI64()
		s.pushI64(l + r)
	case SubI64:
		r, l := s.popI64(), s.popI64()
		s.pushI64(l - r)
	case AddImmI64:
		s.pushI64(s.popI64() + int64(int16(in.P16)))
	case SubImmI64:
		s.pushI64(s.popI64() - int64(int16(in.P16)))
	case MulI64:
		r, l := s.popI64(), s.popI64()
		s.pushI64(l * r)
	case DivI64S:
		r, l := s.popI64(), s.popI64()
		if r == 0 {
			return ErrIntegerDivideByZero
		}
		s.pushI64(l / r)
	case DivI64U:
		r, l := s.popU64(), s.popU64()
		if r == 0 {
			return ErrIntegerDivideByZero
		}
		s.push(l / r)
	case RemI64S:
		r, l := s.popI64(), s.popI64()
		if r == 0 {
			return ErrIntegerDivideByZero
		}
		s.pushI64(l % r)
	case RemI64U:
		r, l := s.popU64(), s.popU64()
		if r == 0 {
			return ErrIntegerDivideByZero
		}
		s.push(l % r)

	// Arithmetic, floats.
	case AddF32:
		r, l := s.popF32(), s.popF32()
		s.pushF32(l + r)
	case SubF32:
		r, l := s.popF32(), s.popF32()
		s.pushF32(l - r)
	case MulF32:
		r, l := s.popF32(), s.popF32()
		s.pushF32(l * r)
	case DivF32:
		r, l := s.popF32(), s.popF32()
		s.pushF32(l / r)
	case AddF64:
		r, l := s.popF64(), s.popF64()
		s.pushF64(l + r)
	case SubF64:
		r, l := s.popF64(), s.popF64()
		s.pushF64(l - r)
	case MulF64:
		r, l := s.popF64(), s.popF64()
		s.pushF64(l * r)
	case DivF64:
		r, l := s.popF64(), s.popF64()
		s.pushF64(l / r)

	// Bitwise. The logical ops work on the full 64-bit cell.
	case And:
		r, l := s.pop(), s.pop()
		s.push(l & r)
	case Or:
		r, l := s.pop(), s.pop()
		s.push(l | r)
	case Xor:
		r, l := s.pop(), s.pop()
		s.push(l ^ r)
	case Not:
		s.push(^s.pop())

	case ShiftLeftI32:
		n, v := s.popU32(), s.popU32()
		s.pushI32(int32(v << (n % 32)))
	case ShiftRightI32S:
		n, v := s.popU32(), s.popI32()
		s.pushI32(v >> (n % 32))
	case ShiftRightI32U:
		n, v := s.popU32(), s.popU32()
		s.pushI32(int32(v >> (n % 32)))
	case RotateLeftI32:
		n, v := s.popU32(), s.popU32()
		s.pushI32(int32(bits.RotateLeft32(v, int(n%32))))
	case RotateRightI32:
		n, v := s.popU32(), s.popU32()
		s.pushI32(int32(bits.RotateLeft32(v, -int(n%32))))
	case CountLeadingZerosI32:
		s.pushI32(int32(bits.LeadingZeros32(s.popU32())))
	case CountLeadingOnesI32:
		s.pushI32(int32(bits.LeadingZeros32(^s.popU32())))
	case CountTrailingZerosI32:
		s.pushI32(int32(bits.TrailingZeros32(s.popU32())))
	case CountOnesI32:
		s.pushI32(int32(bits.OnesCount32(s.popU32())))

	case ShiftLeftI64:
		n, v := s.popU32(), s.popU64()
		s.push(v << (n % 64))
	case ShiftRightI64S:
		n, v := s.popU32(), s.popI64()
		s.pushI64(v >> (n % 64))
	case ShiftRightI64U:
		n, v := s.popU32(), s.popU64()
		s.push(v >> (n % 64))
	case RotateLeftI64:
		n, v := s.popU32(), s.popU64()
		s.push(bits.RotateLeft64(v, int(n%64)))
	case RotateRightI64:
		n, v := s.popU32(), s.popU64()
		s.push(bits.RotateLeft64(v, -int(n%64)))
	case CountLeadingZerosI64:
		s.pushI64(int64(bits.LeadingZeros64(s.popU64())))
	case CountLeadingOnesI64:
		s.pushI64(int64(bits.LeadingZeros64(^s.popU64())))
	case CountTrailingZerosI64:
		s.pushI64(int64(bits.TrailingZeros64(s.popU64())))
	case CountOnesI64:
		s.pushI64(int64(bits.OnesCount64(s.popU64())))

	// Math, integers. abs wraps on the minimum value.
	case AbsI32:
		v := s.popI32()
		if v < 0 {
			v = -v
		}
		s.pushI32(v)
	case NegI32:
		s.pushI32(-s.popI32())
	case AbsI64:
		v := s.popI64()
		if v < 0 {
			v = -v
		}
		s.pushI64(v)
	case NegI64:
		s.pushI64(-s.popI64())

	// Math, f32.
	case AbsF32:
		s.pushF32(float32(math.Abs(float64(s.popF32()))))
	case NegF32:
		s.pushF32(-s.popF32())
	case CopysignF32:
		sign, mag := s.popF32(), s.popF32()
		s.pushF32(float32(math.Copysign(float64(mag), float64(sign))))
	case SqrtF32:
		s.pushF32(float32(math.Sqrt(float64(s.popF32()))))
	case MinF32:
		r, l := s.popF32(), s.popF32()
		s.pushF32(float32(math.Min(float64(l), float64(r))))
	case MaxF32:
		r, l := s.popF32(), s.popF32()
		s.pushF32(float32(math.Max(float64(l), float64(r))))
	case CeilF32:
		s.pushF32(float32(math.Ceil(float64(s.popF32()))))
	case FloorF32:
		s.pushF32(float32(math.Floor(float64(s.popF32()))))
	case RoundHalfAwayFromZeroF32:
		s.pushF32(float32(roundHalfAwayFromZero(float64(s.popF32()))))
	case RoundHalfToEvenF32:
		s.pushF32(float32(roundHalfToEven(float64(s.popF32()))))
	case TruncF32:
		s.pushF32(float32(math.Trunc(float64(s.popF32()))))
	case FractF32:
		s.pushF32(fract(s.popF32()))
	case CbrtF32:
		s.pushF32(float32(math.Cbrt(float64(s.popF32()))))
	case ExpF32:
		s.pushF32(float32(math.Exp(float64(s.popF32()))))
	case Exp2F32:
		s.pushF32(float32(math.Exp2(float64(s.popF32()))))
	case LnF32:
		s.pushF32(float32(math.Log(float64(s.popF32()))))
	case Log2F32:
		s.pushF32(float32(math.Log2(float64(s.popF32()))))
	case Log10F32:
		s.pushF32(float32(math.Log10(float64(s.popF32()))))
	case SinF32:
		s.pushF32(float32(math.Sin(float64(s.popF32()))))
	case CosF32:
		s.pushF32(float32(math.Cos(float64(s.popF32()))))
	case TanF32:
		s.pushF32(float32(math.Tan(float64(s.popF32()))))
	case AsinF32:
		s.pushF32(float32(math.Asin(float64(s.popF32()))))
	case AcosF32:
		s.pushF32(float32(math.Acos(float64(s.popF32()))))
	case AtanF32:
		s.pushF32(float32(math.Atan(float64(s.popF32()))))
	case PowF32:
		exp, base := s.popF32(), s.popF32()
		s.pushF32(float32(math.Pow(float64(base), float64(exp))))
	case LogF32:
		base, v := s.popF32(), s.popF32()
		s.pushF32(float32(math.Log(float64(v)) / math.Log(float64(base))))

	// Math, f64.
	case AbsF64:
		s.pushF64(math.Abs(s.popF64()))
	case NegF64:
		s.pushF64(-s.popF64())
	case CopysignF64:
		sign, mag := s.popF64(), s.popF64()
		s.pushF64(math.Copysign(mag, sign))
	case SqrtF64:
		s.pushF64(math.Sqrt(s.popF64()))
	case MinF64:
		r, l := s.popF64(), s.popF64()
		s.pushF64(math.Min(l, r))
	case MaxF64:
		r, l := s.popF64(), s.popF64()
		s.pushF64(math.Max(l, r))
	case CeilF64:
		s.pushF64(math.Ceil(s.popF64()))
	case FloorF64:
		s.pushF64(math.Floor(s.popF64()))
	case RoundHalfAwayFromZeroF64:
		s.pushF64(roundHalfAwayFromZero(s.popF64()))
	case RoundHalfToEvenF64:
		s.pushF64(roundHalfToEven(s.popF64()))
	case TruncF64:
		s.pushF64(math.Trunc(s.popF64()))
	case FractF64:
		s.pushF64(fract(s.popF64()))
	case CbrtF64:
		s.pushF64(math.Cbrt(s.popF64()))
	case ExpF64:
		s.pushF64(math.Exp(s.popF64()))
	case Exp2F64:
		s.pushF64(math.Exp2(s.popF64()))
	case LnF64:
		s.pushF64(math.Log(s.popF64()))
	case Log2F64:
		s.pushF64(math.Log2(s.popF64()))
	case Log10F64:
		s.pushF64(math.Log10(s.popF64()))
	case SinF64:
		s.pushF64(math.Sin(s.popF64()))
	case CosF64:
		s.pushF64(math.Cos(s.popF64()))
	case TanF64:
		s.pushF64(math.Tan(s.popF64()))
	case AsinF64:
		s.pushF64(math.Asin(s.popF64()))
	case AcosF64:
		s.pushF64(math.Acos(s.popF64()))
	case AtanF64:
		s.pushF64(math.Atan(s.popF64()))
	case PowF64:
		exp, base := s.popF64(), s.popF64()
		s.pushF64(math.Pow(base, exp))
	case LogF64:
		base, v := s.popF64(), s.popF64()
		s.pushF64(math.Log(v) / math.Log(base))

	// Conversion. Float to integer truncates toward zero and saturates
	// at the target range; NaN converts to zero.
	case TruncateI64ToI32:
		s.pushI32(int32(s.popI64()))
	case ExtendI32SToI64:
		s.pushI64(int64(s.popI32()))
	case ExtendI32UToI64:
		s.pushI64(int64(s.popU32()))
	case DemoteF64ToF32:
		s.pushF32(float32(s.popF64()))
	case PromoteF32ToF64:
		s.pushF64(float64(s.popF32()))
	case ConvertF32ToI32S:
		s.pushI32(int32(satI64(float64(s.popF32()), math.MinInt32, math.MaxInt32)))
	case ConvertF32ToI32U:
		s.pushI32(int32(uint32(satU64(float64(s.popF32()), math.MaxUint32))))
	case ConvertF64ToI32S:
		s.pushI32(int32(satI64(s.popF64(), math.MinInt32, math.MaxInt32)))
	case ConvertF64ToI32U:
		s.pushI32(int32(uint32(satU64(s.popF64(), math.MaxUint32))))
	case ConvertF32ToI64S:
		s.pushI64(satI64(float64(s.popF32()), math.MinInt64, math.MaxInt64))
	case ConvertF32ToI64U:
		s.push(satU64(float64(s.popF32()), math.MaxUint64))
	case ConvertF64ToI64S:
		s.pushI64(satI64(s.popF64(), math.MinInt64, math.MaxInt64))
	case ConvertF64ToI64U:
		s.push(satU64(s.popF64(), math.MaxUint64))
	case ConvertI32SToF32:
		s.pushF32(float32(s.popI32()))
	case ConvertI32UToF32:
		s.pushF32(float32(s.popU32()))
	case ConvertI64SToF32:
		s.pushF32(float32(s.popI64()))
	case ConvertI64UToF32:
		s.pushF32(float32(s.popU64()))
	case ConvertI32SToF64:
		s.pushF64(float64(s.popI32()))
	case ConvertI32UToF64:
		s.pushF64(float64(s.popU32()))
	case ConvertI64SToF64:
		s.pushF64(float64(s.popI64()))
	case ConvertI64UToF64:
		s.pushF64(float64(s.popU64()))

	// Comparison. Always an i64 1 or 0.
	case EqzI32:
		s.pushBool(s.popI32() == 0)
	case NezI32:
		s.pushBool(s.popI32() != 0)
	case EqI32:
		r, l := s.popI32(), s.popI32()
		s.pushBool(l == r)
	case NeI32:
		r, l := s.popI32(), s.popI32()
		s.pushBool(l != r)
	case LtI32S:
		r, l := s.popI32(), s.popI32()
		s.pushBool(l < r)
	case LtI32U:
		r, l := s.popU32(), s.popU32()
		s.pushBool(l < r)
	case GtI32S:
		r, l := s.popI32(), s.popI32()
		s.pushBool(l > r)
	case GtI32U:
		r, l := s.popU32(), s.popU32()
		s.pushBool(l > r)
	case LeI32S:
		r, l := s.popI32(), s.popI32()
		s.pushBool(l <= r)
	case LeI32U:
		r, l := s.popU32(), s.popU32()
		s.pushBool(l <= r)
	case GeI32S:
		r, l := s.popI32(), s.popI32()
		s.pushBool(l >= r)
	case GeI32U:
		r, l := s.popU32(), s.popU32()
		s.pushBool(l >= r)

	case EqzI64:
		s.pushBool(s.popI64() == 0)
	case NezI64:
		s.pushBool(s.popI64() != 0)
	case EqI64:
		r, l := s.popI64(), s.popI64()
		s.pushBool(l == r)
	case NeI64:
		r, l := s.popI64(), s.popI64()
		s.pushBool(l != r)
	case LtI64S:
		r, l := s.popI64(), s.popI64()
		s.pushBool(l < r)
	case LtI64U:
		r, l := s.popU64(), s.popU64()
		s.pushBool(l < r)
	case GtI64S:
		r, l := s.popI64(), s.popI64()
		s.pushBool(l > r)
	case GtI64U:
		r, l := s.popU64(), s.popU64()
		s.pushBool(l > r)
	case LeI64S:
		r, l := s.popI64(), s.popI64()
		s.pushBool(l <= r)
	case LeI64U:
		r, l := s.popU64(), s.popU64()
		s.pushBool(l <= r)
	case GeI64S:
		r, l := s.popI64(), s.popI64()
		s.pushBool(l >= r)
	case GeI64U:
		r, l := s.popU64(), s.popU64()
		s.pushBool(l >= r)

	case EqF32:
		r, l := s.popF32(), s.popF32()
		s.pushBool(l == r)
	case NeF32:
		r, l := s.popF32(), s.popF32()
		s.pushBool(l != r)
	case LtF32:
		r, l := s.popF32(), s.popF32()
		s.pushBool(l < r)
	case GtF32:
		r, l := s.popF32(), s.popF32()
		s.pushBool(l > r)
	case LeF32:
		r, l := s.popF32(), s.popF32()
		s.pushBool(l <= r)
	case GeF32:
		r, l := s.popF32(), s.popF32()
		s.pushBool(l >= r)

	case EqF64:
		r, l := s.popF64(), s.popF64()
		s.pushBool(l == r)
	case NeF64:
		r, l := s.popF64(), s.popF64()
		s.pushBool(l != r)
	case LtF64:
		r, l := s.popF64(), s.popF64()
		s.pushBool(l < r)
	case GtF64:
		r, l := s.popF64(), s.popF64()
		s.pushBool(l > r)
	case LeF64:
		r, l := s.popF64(), s.popF64()
		s.pushBool(l <= r)
	case GeF64:
		r, l := s.popF64(), s.popF64()
		s.pushBool(l >= r)

	default:
		return fmt.Errorf("%w: unexpected opcode %s", ErrMalformedInstruction, in.Opcode)
	}
	return nil
}

func satI64(v float64, min, max int64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v <= float64(min):
		return min
	case v >= float64(max):
		return max
	default:
		return int64(v)
	}
}

func satU64(v float64, max uint64) uint64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= float64(max):
		return max
	default:
		return uint64(v)
	}
}

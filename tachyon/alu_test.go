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
	"math"
	"testing"
)

// evalOp pushes the given cells and executes a single value instruction,
// returning the resulting top of stack.
func evalOp(t *testing.T, op Opcode, operands ...uint64) uint64 {
	t.Helper()
	e := &execution{stack: newOperandStack()}
	for _, c := range operands {
		e.stack.push(c)
	}
	if err := e.executeValue(Instruction{Opcode: op}); err != nil {
		t.Fatalf("%s: %v", op, err)
	}
	return e.stack.pop()
}

func TestRemainderFollowsDividendSign(t *testing.T) {
	tests := []struct {
		l, r, want int32
	}{
		{-5, 3, -2},
		{5, -3, 2},
		{-5, -3, -2},
		{5, 3, 2},
	}
	for _, tc := range tests {
		got := I32FromCell(evalOp(t, RemI32S, CellI32(tc.l), CellI32(tc.r)))
		if got != tc.want {
			t.Errorf("rem_i32_s(%d, %d) = %d, want %d", tc.l, tc.r, got, tc.want)
		}
	}

	if got := I64FromCell(evalOp(t, RemI64S, CellI64(-9), CellI64(4))); got != -1 {
		t.Errorf("rem_i64_s(-9, 4) = %d, want -1", got)
	}
}

func TestIntegerArithmeticWraps(t *testing.T) {
	got := I32FromCell(evalOp(t, AddI32, CellI32(math.MaxInt32), CellI32(1)))
	if got != math.MinInt32 {
		t.Errorf("add_i32(max, 1) = %d, want wrap to %d", got, math.MinInt32)
	}

	got64 := I64FromCell(evalOp(t, MulI64, CellI64(math.MaxInt64), CellI64(2)))
	if got64 != -2 {
		t.Errorf("mul_i64(max, 2) = %d, want -2", got64)
	}
}

func TestImmediateArithmetic(t *testing.T) {
	e := &execution{stack: newOperandStack()}
	e.stack.pushI64(40)
	if err := e.executeValue(Instruction{Opcode: AddImmI64, P16: 2}); err != nil {
		t.Fatal(err)
	}
	if got := e.stack.popI64(); got != 42 {
		t.Errorf("add_imm_i64(40, 2) = %d, want 42", got)
	}

	e.stack.pushI32(10)
	if err := e.executeValue(Instruction{Opcode: SubImmI32, P16: uint16(int16(15))}); err != nil {
		t.Fatal(err)
	}
	if got := e.stack.popI32(); got != -5 {
		t.Errorf("sub_imm_i32(10, 15) = %d, want -5", got)
	}
}

func TestShiftsAndRotates(t *testing.T) {
	if got := I32FromCell(evalOp(t, ShiftLeftI32, CellI32(1), CellI32(4))); got != 16 {
		t.Errorf("shift_left_i32(1, 4) = %d", got)
	}
	if got := I32FromCell(evalOp(t, ShiftRightI32S, CellI32(-16), CellI32(2))); got != -4 {
		t.Errorf("shift_right_i32_s(-16, 2) = %d, want -4", got)
	}
	if got := I32FromCell(evalOp(t, ShiftRightI32U, CellI32(-1), CellI32(28))); got != 15 {
		t.Errorf("shift_right_i32_u(-1, 28) = %d, want 15", got)
	}
	if got := I32FromCell(evalOp(t, RotateLeftI32, uint64(uint32(0x80000001)), CellI32(1))); got != 3 {
		t.Errorf("rotate_left_i32(0x80000001, 1) = %d, want 3", got)
	}
	if got := I64FromCell(evalOp(t, RotateRightI64, CellI64(1), CellI32(1))); got != math.MinInt64 {
		t.Errorf("rotate_right_i64(1, 1) = %d, want MinInt64", got)
	}
}

func TestBitCounts(t *testing.T) {
	tests := []struct {
		op   Opcode
		in   uint64
		want int64
	}{
		{CountLeadingZerosI32, uint64(uint32(0x0000ffff)), 16},
		{CountLeadingOnesI32, uint64(uint32(0xfff00000)), 12},
		{CountTrailingZerosI32, uint64(uint32(0x80000000)), 31},
		{CountOnesI32, uint64(uint32(0xf0f0f0f0)), 16},
		{CountLeadingZerosI64, 1, 63},
		{CountLeadingOnesI64, ^uint64(0), 64},
		{CountTrailingZerosI64, 0, 64},
		{CountOnesI64, ^uint64(0), 64},
	}
	for _, tc := range tests {
		if got := I64FromCell(evalOp(t, tc.op, tc.in)); got != tc.want {
			t.Errorf("%s(0x%x) = %d, want %d", tc.op, tc.in, got, tc.want)
		}
	}
}

func TestComparisonsPushCanonicalTruth(t *testing.T) {
	if got := evalOp(t, LtI32S, CellI32(-1), CellI32(1)); got != 1 {
		t.Errorf("lt_i32_s(-1, 1) = %d, want 1", got)
	}
	// Unsigned view: -1 is the maximum value.
	if got := evalOp(t, LtI32U, CellI32(-1), CellI32(1)); got != 0 {
		t.Errorf("lt_i32_u(-1, 1) = %d, want 0", got)
	}
	if got := evalOp(t, EqzI64, 0); got != 1 {
		t.Errorf("eqz_i64(0) = %d, want 1", got)
	}
	if got := evalOp(t, GeF64, CellF64(2.5), CellF64(2.5)); got != 1 {
		t.Errorf("ge_f64(2.5, 2.5) = %d, want 1", got)
	}
	if got := evalOp(t, NeF32, CellF32(1.0), CellF32(1.0)); got != 0 {
		t.Errorf("ne_f32(1, 1) = %d, want 0", got)
	}
}

func TestFloatMath(t *testing.T) {
	if got := F64FromCell(evalOp(t, SqrtF64, CellF64(64))); got != 8 {
		t.Errorf("sqrt_f64(64) = %v", got)
	}
	if got := F64FromCell(evalOp(t, FractF64, CellF64(-2.75))); got != -0.75 {
		t.Errorf("fract_f64(-2.75) = %v, want -0.75", got)
	}
	if got := F64FromCell(evalOp(t, CopysignF64, CellF64(3), CellF64(-1))); got != -3 {
		t.Errorf("copysign_f64(3, -1) = %v, want -3", got)
	}
	if got := F64FromCell(evalOp(t, PowF64, CellF64(2), CellF64(10))); got != 1024 {
		t.Errorf("pow_f64(2, 10) = %v, want 1024", got)
	}
	if got := F64FromCell(evalOp(t, LogF64, CellF64(8), CellF64(2))); math.Abs(got-3) > 1e-12 {
		t.Errorf("log_f64(8, base 2) = %v, want 3", got)
	}
	if got := F32FromCell(evalOp(t, MaxF32, CellF32(1.5), CellF32(-2))); got != 1.5 {
		t.Errorf("max_f32(1.5, -2) = %v", got)
	}
}

func TestRoundingModes(t *testing.T) {
	tests := []struct {
		op   Opcode
		in   float64
		want float64
	}{
		{RoundHalfAwayFromZeroF64, 2.5, 3},
		{RoundHalfAwayFromZeroF64, -2.5, -3},
		{RoundHalfToEvenF64, 2.5, 2},
		{RoundHalfToEvenF64, 3.5, 4},
		{TruncF64, -2.9, -2},
		{CeilF64, 2.1, 3},
		{FloorF64, -2.1, -3},
	}
	for _, tc := range tests {
		if got := F64FromCell(evalOp(t, tc.op, CellF64(tc.in))); got != tc.want {
			t.Errorf("%s(%v) = %v, want %v", tc.op, tc.in, got, tc.want)
		}
	}
}

func TestConversions(t *testing.T) {
	if got := I32FromCell(evalOp(t, TruncateI64ToI32, CellI64(0x1_0000_0005))); got != 5 {
		t.Errorf("truncate_i64_to_i32 = %d, want 5", got)
	}
	if got := I64FromCell(evalOp(t, ExtendI32SToI64, CellI32(-7))); got != -7 {
		t.Errorf("extend_i32_s_to_i64(-7) = %d", got)
	}
	if got := I64FromCell(evalOp(t, ExtendI32UToI64, CellI32(-1))); got != 0xffffffff {
		t.Errorf("extend_i32_u_to_i64(-1) = %d, want 4294967295", got)
	}
	if got := F64FromCell(evalOp(t, PromoteF32ToF64, CellF32(1.5))); got != 1.5 {
		t.Errorf("promote_f32_to_f64(1.5) = %v", got)
	}
	if got := I32FromCell(evalOp(t, ConvertF64ToI32S, CellF64(-3.9))); got != -3 {
		t.Errorf("convert_f64_to_i32_s(-3.9) = %d, want -3 (truncation)", got)
	}
	if got := F32FromCell(evalOp(t, ConvertI64UToF32, ^uint64(0))); got != float32(math.MaxUint64) {
		t.Errorf("convert_i64_u_to_f32(max) = %v", got)
	}
}

func TestConversionSaturation(t *testing.T) {
	if got := I32FromCell(evalOp(t, ConvertF64ToI32S, CellF64(1e12))); got != math.MaxInt32 {
		t.Errorf("convert_f64_to_i32_s(1e12) = %d, want saturation at MaxInt32", got)
	}
	if got := I32FromCell(evalOp(t, ConvertF64ToI32S, CellF64(-1e12))); got != math.MinInt32 {
		t.Errorf("convert_f64_to_i32_s(-1e12) = %d, want saturation at MinInt32", got)
	}
	if got := evalOp(t, ConvertF64ToI64U, CellF64(-5)); got != 0 {
		t.Errorf("convert_f64_to_i64_u(-5) = %d, want 0", got)
	}
}

func TestBitwiseLogicalFullCell(t *testing.T) {
	if got := evalOp(t, And, 0xff00ff00ff00ff00, 0x0ff00ff00ff00ff0); got != 0x0f000f000f000f00 {
		t.Errorf("and = 0x%x", got)
	}
	if got := evalOp(t, Not, 0); got != ^uint64(0) {
		t.Errorf("not(0) = 0x%x", got)
	}
	if got := evalOp(t, Xor, 0x5555, 0xaaaa); got != 0xffff {
		t.Errorf("xor = 0x%x", got)
	}
}

func TestFloatValidityPatterns(t *testing.T) {
	// All-ones exponent bit patterns are rejected, everything else is
	// preserved exactly.
	invalid32 := []uint32{
		math.Float32bits(float32(math.NaN())),
		math.Float32bits(float32(math.Inf(1))),
		math.Float32bits(float32(math.Inf(-1))),
		0x7f800001, // signaling NaN
	}
	for _, bits := range invalid32 {
		if validFloat32(bits) {
			t.Errorf("validFloat32(0x%08x) = true, want false", bits)
		}
	}

	valid32 := []uint32{
		0,
		0x80000000, // -0
		0x00000001, // smallest subnormal
		0x7f7fffff, // largest normal
		math.Float32bits(1.5),
	}
	for _, bits := range valid32 {
		if !validFloat32(bits) {
			t.Errorf("validFloat32(0x%08x) = false, want true", bits)
		}
	}

	if validFloat64(math.Float64bits(math.NaN())) {
		t.Error("validFloat64(NaN) = true, want false")
	}
	if validFloat64(math.Float64bits(math.Inf(1))) {
		t.Error("validFloat64(+Inf) = true, want false")
	}
	if !validFloat64(math.Float64bits(5e-324)) {
		t.Error("validFloat64(smallest subnormal) = false, want true")
	}
}

func TestAbsNeg(t *testing.T) {
	if got := I32FromCell(evalOp(t, AbsI32, CellI32(-42))); got != 42 {
		t.Errorf("abs_i32(-42) = %d", got)
	}
	if got := I64FromCell(evalOp(t, NegI64, CellI64(7))); got != -7 {
		t.Errorf("neg_i64(7) = %d", got)
	}
	if got := F32FromCell(evalOp(t, NegF32, CellF32(1.5))); got != -1.5 {
		t.Errorf("neg_f32(1.5) = %v", got)
	}
}

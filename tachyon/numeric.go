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
)

type machineFloat interface {
	~float32 | ~float64
}

func float32Bits(v float32) uint32 {
	return math.Float32bits(v)
}

func float64Bits(v float64) uint64 {
	return math.Float64bits(v)
}

// validFloat32 reports whether bits encodes a loadable f32. Patterns with
// an all-ones exponent (NaN and the infinities) are rejected by the f32
// load instructions.
func validFloat32(bits uint32) bool {
	return bits&0x7f80_0000 != 0x7f80_0000
}

// validFloat64 reports whether bits encodes a loadable f64.
func validFloat64(bits uint64) bool {
	return bits&0x7ff0_0000_0000_0000 != 0x7ff0_0000_0000_0000
}

// boolToCell converts a comparison result into the canonical i64 truth
// value: 1 for true, 0 for false.
func boolToCell(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// fract returns the fractional part of v with the sign of v, matching the
// truncation-based definition (v - trunc(v)).
func fract[F machineFloat](v F) F {
	return v - F(math.Trunc(float64(v)))
}

// roundHalfAwayFromZero rounds to the nearest integer, resolving ties away
// from zero.
func roundHalfAwayFromZero(v float64) float64 {
	return math.Round(v)
}

// roundHalfToEven rounds to the nearest integer, resolving ties toward the
// even neighbor.
func roundHalfToEven(v float64) float64 {
	return math.RoundToEven(v)
}

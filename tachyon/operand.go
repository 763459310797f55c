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

import "math"

// operandStack holds raw 8-byte cells. Cells carry no type tag; the
// verifier guarantees that producers and consumers agree on the width and
// class of every cell before execution starts.
//
// 32-bit integers are stored sign-extended so that a later 64-bit read of
// an i32 cell observes the arithmetic value. f32 cells hold the zero-
// extended bit pattern in the low half.
type operandStack struct {
	data []uint64
}

func newOperandStack() *operandStack {
	return &operandStack{data: make([]uint64, 0, 256)}
}

func (s *operandStack) size() int {
	return len(s.data)
}

func (s *operandStack) push(v uint64) {
	s.data = append(s.data, v)
}

func (s *operandStack) pop() uint64 {
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v
}

func (s *operandStack) pushI32(v int32) {
	s.push(uint64(int64(v)))
}

func (s *operandStack) pushI64(v int64) {
	s.push(uint64(v))
}

func (s *operandStack) pushF32(v float32) {
	s.push(uint64(math.Float32bits(v)))
}

func (s *operandStack) pushF64(v float64) {
	s.push(math.Float64bits(v))
}

func (s *operandStack) pushBool(b bool) {
	s.push(boolToCell(b))
}

func (s *operandStack) popI32() int32 {
	return int32(s.pop())
}

func (s *operandStack) popU32() uint32 {
	return uint32(s.pop())
}

func (s *operandStack) popI64() int64 {
	return int64(s.pop())
}

func (s *operandStack) popU64() uint64 {
	return s.pop()
}

func (s *operandStack) popF32() float32 {
	return math.Float32frombits(uint32(s.pop()))
}

func (s *operandStack) popF64() float64 {
	return math.Float64frombits(s.pop())
}

// unwind drops the stack back to targetHeight while carrying the top
// preserveCount cells across the cut. It implements the operand transfer
// of break and function return.
func (s *operandStack) unwind(targetHeight, preserveCount int) {
	preserved := s.data[len(s.data)-preserveCount:]
	s.data = append(s.data[:targetHeight], preserved...)
}

// truncate drops the stack to height h, discarding everything above.
func (s *operandStack) truncate(h int) {
	s.data = s.data[:h]
}

// popN removes and returns the top n cells in stack order (the last
// element of the result was the top of the stack).
func (s *operandStack) popN(n int) []uint64 {
	cut := len(s.data) - n
	out := make([]uint64, n)
	copy(out, s.data[cut:])
	s.data = s.data[:cut]
	return out
}

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
	"encoding/binary"
	"fmt"
)

// Instruction is one decoded instruction. The parameter fields are
// populated according to the opcode's layout: P16 holds the i16 parameter
// when present, P32A..P32C hold the i32 parameters in encoding order.
// Unused fields are zero.
type Instruction struct {
	Opcode Opcode
	P16    uint16
	P32A   uint32
	P32B   uint32
	P32C   uint32
}

// Length returns the encoded length of the instruction in bytes.
func (inst Instruction) Length() int {
	return inst.Opcode.Length()
}

func (inst Instruction) String() string {
	switch layouts[inst.Opcode] {
	case layoutNone:
		return inst.Opcode.String()
	case layoutP16:
		return fmt.Sprintf("%s %d", inst.Opcode, int16(inst.P16))
	case layoutP32:
		return fmt.Sprintf("%s %d", inst.Opcode, inst.P32A)
	case layoutP16P32:
		return fmt.Sprintf("%s %d %d", inst.Opcode, int16(inst.P16), inst.P32A)
	case layoutP32x2:
		return fmt.Sprintf("%s %d %d", inst.Opcode, inst.P32A, inst.P32B)
	case layoutP32x3:
		return fmt.Sprintf("%s %d %d %d", inst.Opcode, inst.P32A, inst.P32B, inst.P32C)
	default:
		return inst.Opcode.String()
	}
}

// DecodeInstruction decodes the instruction starting at code[addr]. It
// returns the instruction and the address of the next instruction.
//
// Instructions never straddle the end of the stream: a truncated tail is a
// malformed stream, not a shorter instruction.
func DecodeInstruction(code []byte, addr int) (Instruction, int, error) {
	if addr < 0 || addr+2 > len(code) {
		return Instruction{}, 0, fmt.Errorf("%w: address %d out of code bounds", ErrMalformedInstruction, addr)
	}

	op := Opcode(binary.LittleEndian.Uint16(code[addr:]))
	if !op.Assigned() {
		return Instruction{}, 0, fmt.Errorf("%w: unassigned opcode 0x%04x at address %d", ErrMalformedInstruction, uint16(op), addr)
	}

	l := layouts[op]
	end := addr + l.length()
	if end > len(code) {
		return Instruction{}, 0, fmt.Errorf("%w: truncated %s at address %d", ErrMalformedInstruction, op, addr)
	}
	if l.hasI32() && addr%4 != 0 {
		return Instruction{}, 0, fmt.Errorf("%w: misaligned %s at address %d", ErrMalformedInstruction, op, addr)
	}

	inst := Instruction{Opcode: op}
	switch l {
	case layoutP16:
		inst.P16 = binary.LittleEndian.Uint16(code[addr+2:])
	case layoutP32:
		inst.P32A = binary.LittleEndian.Uint32(code[addr+4:])
	case layoutP16P32:
		inst.P16 = binary.LittleEndian.Uint16(code[addr+2:])
		inst.P32A = binary.LittleEndian.Uint32(code[addr+4:])
	case layoutP32x2:
		inst.P32A = binary.LittleEndian.Uint32(code[addr+4:])
		inst.P32B = binary.LittleEndian.Uint32(code[addr+8:])
	case layoutP32x3:
		inst.P32A = binary.LittleEndian.Uint32(code[addr+4:])
		inst.P32B = binary.LittleEndian.Uint32(code[addr+8:])
		inst.P32C = binary.LittleEndian.Uint32(code[addr+12:])
	}
	return inst, end, nil
}

// Emitter builds an instruction stream, inserting nop padding so that
// every instruction carrying an i32 parameter lands on a 4-byte boundary.
type Emitter struct {
	buf []byte
}

// NewEmitter returns an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Addr returns the address the next instruction will be emitted at,
// before any alignment padding.
func (e *Emitter) Addr() int {
	return len(e.buf)
}

// Bytes returns the encoded stream.
func (e *Emitter) Bytes() []byte {
	return e.buf
}

func (e *Emitter) align() {
	if len(e.buf)%4 != 0 {
		e.raw16(uint16(Nop))
	}
}

func (e *Emitter) raw16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *Emitter) raw32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// Emit appends inst and returns the address it was encoded at, after any
// alignment padding.
func (e *Emitter) Emit(inst Instruction) int {
	l := layouts[inst.Opcode]
	if l.hasI32() {
		e.align()
	}
	addr := len(e.buf)
	e.raw16(uint16(inst.Opcode))
	switch l {
	case layoutP16:
		e.raw16(inst.P16)
	case layoutP32:
		e.raw16(0)
		e.raw32(inst.P32A)
	case layoutP16P32:
		e.raw16(inst.P16)
		e.raw32(inst.P32A)
	case layoutP32x2:
		e.raw16(0)
		e.raw32(inst.P32A)
		e.raw32(inst.P32B)
	case layoutP32x3:
		e.raw16(0)
		e.raw32(inst.P32A)
		e.raw32(inst.P32B)
		e.raw32(inst.P32C)
	}
	return addr
}

// Op emits a parameterless instruction.
func (e *Emitter) Op(op Opcode) int {
	return e.Emit(Instruction{Opcode: op})
}

// OpI16 emits an instruction with a single i16 parameter.
func (e *Emitter) OpI16(op Opcode, p int16) int {
	return e.Emit(Instruction{Opcode: op, P16: uint16(p)})
}

// OpI32 emits an instruction with a single i32 parameter.
func (e *Emitter) OpI32(op Opcode, p uint32) int {
	return e.Emit(Instruction{Opcode: op, P32A: p})
}

// OpI16I32 emits an instruction with i16 and i32 parameters.
func (e *Emitter) OpI16I32(op Opcode, p16 int16, p32 uint32) int {
	return e.Emit(Instruction{Opcode: op, P16: uint16(p16), P32A: p32})
}

// OpI32I32 emits an instruction with two i32 parameters.
func (e *Emitter) OpI32I32(op Opcode, a, b uint32) int {
	return e.Emit(Instruction{Opcode: op, P32A: a, P32B: b})
}

// ImmInt32 emits imm_i32.
func (e *Emitter) ImmInt32(v int32) int {
	return e.OpI32(ImmI32, uint32(v))
}

// ImmInt64 emits imm_i64 with the value split into low and high halves.
func (e *Emitter) ImmInt64(v int64) int {
	return e.OpI32I32(ImmI64, uint32(uint64(v)), uint32(uint64(v)>>32))
}

// ImmFloat32 emits imm_f32 carrying the raw bit pattern of v.
func (e *Emitter) ImmFloat32(v float32) int {
	return e.OpI32(ImmF32, float32Bits(v))
}

// ImmFloat64 emits imm_f64 carrying the raw bit pattern of v.
func (e *Emitter) ImmFloat64(v float64) int {
	bits := float64Bits(v)
	return e.OpI32I32(ImmF64, uint32(bits), uint32(bits>>32))
}

// Patch overwrites the i32 parameter at position pos (0-based, in encoding
// order) of the instruction encoded at addr. It is used to fix forward
// jump offsets after the target address is known.
func (e *Emitter) Patch(addr, pos int, v uint32) {
	binary.LittleEndian.PutUint32(e.buf[addr+4+pos*4:], v)
}

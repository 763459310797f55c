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

// Opcode identifies an instruction. The high byte is the category, the low
// byte is the item within the category. The opcode space is bounded at
// MaxOpcode; values outside the populated ranges are unassigned.
type Opcode uint16

// MaxOpcode is the exclusive upper bound of the opcode space.
const MaxOpcode = 0x0c00

// Category: fundamental.
const (
	Nop Opcode = 0x0100 + iota
	ImmI32
	ImmI64
	ImmF32
	ImmF64
)

// Category: local variables.
//
// Loads resolve a (layers, index) reference through the enclosing-frame
// chain and push the slot value; stores pop one operand into the slot.
// Function arguments occupy the low indices, declared locals follow.
const (
	LocalLoadI64 Opcode = 0x0200 + iota
	LocalLoadI32S
	LocalLoadI32U
	LocalLoadI16S
	LocalLoadI16U
	LocalLoadI8S
	LocalLoadI8U
	LocalLoadF64
	LocalLoadF32
	LocalStoreI64
	LocalStoreI32
	LocalStoreI16
	LocalStoreI8
	LocalStoreF64
	LocalStoreF32
)

// Category: data.
//
// The plain forms take an i16 byte offset and an i32 data public index as
// parameters. The extend forms take the index as a parameter and a 64-bit
// byte offset as an operand. The dynamic forms take module index, data
// public index and byte offset entirely as operands.
const (
	DataLoadI64 Opcode = 0x0300 + iota
	DataLoadI32S
	DataLoadI32U
	DataLoadI16S
	DataLoadI16U
	DataLoadI8S
	DataLoadI8U
	DataLoadF64
	DataLoadF32
	DataStoreI64
	DataStoreI32
	DataStoreI16
	DataStoreI8
	DataStoreF64
	DataStoreF32
	DataLoadExtendI64
	DataLoadExtendI32S
	DataLoadExtendI32U
	DataLoadExtendI16S
	DataLoadExtendI16U
	DataLoadExtendI8S
	DataLoadExtendI8U
	DataLoadExtendF64
	DataLoadExtendF32
	DataStoreExtendI64
	DataStoreExtendI32
	DataStoreExtendI16
	DataStoreExtendI8
	DataStoreExtendF64
	DataStoreExtendF32
	DataLoadDynamicI64
	DataLoadDynamicI32S
	DataLoadDynamicI32U
	DataLoadDynamicI16S
	DataLoadDynamicI16U
	DataLoadDynamicI8S
	DataLoadDynamicI8U
	DataLoadDynamicF64
	DataLoadDynamicF32
	DataStoreDynamicI64
	DataStoreDynamicI32
	DataStoreDynamicI16
	DataStoreDynamicI8
	DataStoreDynamicF64
	DataStoreDynamicF32
)

// Category: arithmetic. Integer operations wrap on overflow.
const (
	AddI32 Opcode = 0x0400 + iota
	SubI32
	AddImmI32
	SubImmI32
	MulI32
	DivI32S
	DivI32U
	RemI32S
	RemI32U
	AddI64
	SubI64
	AddImmI64
	SubImmI64
	MulI64
	DivI64S
	DivI64U
	RemI64S
	RemI64U
	AddF32
	SubF32
	MulF32
	DivF32
	AddF64
	SubF64
	MulF64
	DivF64
)

// Category: bitwise. Shift and rotate counts are operands, not parameters.
const (
	And Opcode = 0x0500 + iota
	Or
	Xor
	Not
	ShiftLeftI32
	ShiftRightI32S
	ShiftRightI32U
	RotateLeftI32
	RotateRightI32
	CountLeadingZerosI32
	CountLeadingOnesI32
	CountTrailingZerosI32
	CountOnesI32
	ShiftLeftI64
	ShiftRightI64S
	ShiftRightI64U
	RotateLeftI64
	RotateRightI64
	CountLeadingZerosI64
	CountLeadingOnesI64
	CountTrailingZerosI64
	CountOnesI64
)

// Category: math.
const (
	AbsI32 Opcode = 0x0600 + iota
	NegI32
	AbsI64
	NegI64
	AbsF32
	NegF32
	CopysignF32
	SqrtF32
	MinF32
	MaxF32
	CeilF32
	FloorF32
	RoundHalfAwayFromZeroF32
	RoundHalfToEvenF32
	TruncF32
	FractF32
	CbrtF32
	ExpF32
	Exp2F32
	LnF32
	Log2F32
	Log10F32
	SinF32
	CosF32
	TanF32
	AsinF32
	AcosF32
	AtanF32
	PowF32
	LogF32
	AbsF64
	NegF64
	CopysignF64
	SqrtF64
	MinF64
	MaxF64
	CeilF64
	FloorF64
	RoundHalfAwayFromZeroF64
	RoundHalfToEvenF64
	TruncF64
	FractF64
	CbrtF64
	ExpF64
	Exp2F64
	LnF64
	Log2F64
	Log10F64
	SinF64
	CosF64
	TanF64
	AsinF64
	AcosF64
	AtanF64
	PowF64
	LogF64
)

// Category: conversion.
const (
	TruncateI64ToI32 Opcode = 0x0700 + iota
	ExtendI32SToI64
	ExtendI32UToI64
	DemoteF64ToF32
	PromoteF32ToF64
	ConvertF32ToI32S
	ConvertF32ToI32U
	ConvertF64ToI32S
	ConvertF64ToI32U
	ConvertF32ToI64S
	ConvertF32ToI64U
	ConvertF64ToI64S
	ConvertF64ToI64U
	ConvertI32SToF32
	ConvertI32UToF32
	ConvertI64SToF32
	ConvertI64UToF32
	ConvertI32SToF64
	ConvertI32UToF64
	ConvertI64SToF64
	ConvertI64UToF64
)

// Category: comparison. Results are always an i64 1 (true) or 0 (false).
const (
	EqzI32 Opcode = 0x0800 + iota
	NezI32
	EqI32
	NeI32
	LtI32S
	LtI32U
	GtI32S
	GtI32U
	LeI32S
	LeI32U
	GeI32S
	GeI32U
	EqzI64
	NezI64
	EqI64
	NeI64
	LtI64S
	LtI64U
	GtI64S
	GtI64U
	LeI64S
	LeI64U
	GeI64S
	GeI64U
	EqF32
	NeF32
	LtF32
	GtF32
	LeF32
	GeF32
	EqF64
	NeF64
	LtF64
	GtF64
	LeF64
	GeF64
)

// Category: control flow.
const (
	End Opcode = 0x0900 + iota
	Block
	Break
	Recur
	BlockAlt
	BreakAlt
	BlockNez
	Call
	CallDynamic
	EnvCall
	SysCall
	ExtCall
)

// Category: memory. Terminate numerically belongs to this category even
// though it is a machine concern; the assignment follows the original
// opcode table.
const (
	MemoryAllocate Opcode = 0x0a00 + iota
	MemoryResize
	MemoryFree
	MemoryFill
	MemoryCopy
	Terminate
)

// Category: machine.
const (
	GetFunction Opcode = 0x0b00 + iota
	GetData
	HostAddrFunction
	HostAddrFunctionDynamic
	HostAddrData
	HostAddrDataExtend
	HostAddrDataDynamic
)

// layout classifies the encoded shape of an instruction. The mapping
// opcode -> layout is closed and static; decoding is driven entirely by
// this table, there is no self-describing length field.
type layout uint8

const (
	layoutInvalid layout = iota
	layoutNone           // 16-bit: opcode only
	layoutP16            // 32-bit: opcode + i16
	layoutP32            // 64-bit: opcode + pad16 + i32
	layoutP16P32         // 64-bit: opcode + i16 + i32
	layoutP32x2          // 96-bit: opcode + pad16 + i32 + i32
	layoutP32x3          // 128-bit: opcode + pad16 + i32 + i32 + i32
)

// length returns the encoded instruction length in bytes.
func (l layout) length() int {
	switch l {
	case layoutNone:
		return 2
	case layoutP16:
		return 4
	case layoutP32, layoutP16P32:
		return 8
	case layoutP32x2:
		return 12
	case layoutP32x3:
		return 16
	default:
		return 0
	}
}

// hasI32 reports whether the layout carries an i32 parameter, which forces
// the instruction to start on a 4-byte boundary.
func (l layout) hasI32() bool {
	switch l {
	case layoutP32, layoutP16P32, layoutP32x2, layoutP32x3:
		return true
	default:
		return false
	}
}

var layouts [MaxOpcode]layout

func init() {
	fill := func(from, to Opcode, l layout) {
		for op := from; op <= to; op++ {
			layouts[op] = l
		}
	}

	// Fundamental.
	layouts[Nop] = layoutNone
	layouts[ImmI32] = layoutP32
	layouts[ImmI64] = layoutP32x2
	layouts[ImmF32] = layoutP32
	layouts[ImmF64] = layoutP32x2

	// Local variables: (layers:i16, local_variable_index:i32).
	fill(LocalLoadI64, LocalStoreF32, layoutP16P32)

	// Data: (offset_bytes:i16, data_public_index:i32), the extend forms
	// (data_public_index:i32), the dynamic forms operand-only.
	fill(DataLoadI64, DataStoreF32, layoutP16P32)
	fill(DataLoadExtendI64, DataStoreExtendF32, layoutP32)
	fill(DataLoadDynamicI64, DataStoreDynamicF32, layoutNone)

	// Arithmetic: parameterless except the immediate forms.
	fill(AddI32, DivF64, layoutNone)
	layouts[AddImmI32] = layoutP16
	layouts[SubImmI32] = layoutP16
	layouts[AddImmI64] = layoutP16
	layouts[SubImmI64] = layoutP16

	// Bitwise, math, conversion, comparison: parameterless.
	fill(And, CountOnesI64, layoutNone)
	fill(AbsI32, LogF64, layoutNone)
	fill(TruncateI64ToI32, ConvertI64UToF64, layoutNone)
	fill(EqzI32, GeF64, layoutNone)

	// Control flow.
	layouts[End] = layoutNone
	layouts[Block] = layoutP32x2
	layouts[Break] = layoutP16P32
	layouts[Recur] = layoutP16P32
	layouts[BlockAlt] = layoutP32x3
	layouts[BreakAlt] = layoutP32
	layouts[BlockNez] = layoutP32x2
	layouts[Call] = layoutP32
	layouts[CallDynamic] = layoutNone
	layouts[EnvCall] = layoutP32
	layouts[SysCall] = layoutNone
	layouts[ExtCall] = layoutP32

	// Memory and machine.
	fill(MemoryAllocate, MemoryCopy, layoutNone)
	layouts[Terminate] = layoutP32
	layouts[GetFunction] = layoutP32
	layouts[GetData] = layoutP32
	layouts[HostAddrFunction] = layoutP32
	layouts[HostAddrFunctionDynamic] = layoutNone
	layouts[HostAddrData] = layoutP16P32
	layouts[HostAddrDataExtend] = layoutP32
	layouts[HostAddrDataDynamic] = layoutNone
}

// Assigned reports whether op is a populated opcode.
func (op Opcode) Assigned() bool {
	return op < MaxOpcode && layouts[op] != layoutInvalid
}

// Length returns the encoded length of op in bytes, or 0 for unassigned
// opcodes.
func (op Opcode) Length() int {
	if op >= MaxOpcode {
		return 0
	}
	return layouts[op].length()
}

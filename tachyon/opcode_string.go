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

import "fmt"

var opcodeNames = map[Opcode]string{
	Nop:    "nop",
	ImmI32: "imm_i32",
	ImmI64: "imm_i64",
	ImmF32: "imm_f32",
	ImmF64: "imm_f64",

	LocalLoadI64:  "local_load_i64",
	LocalLoadI32S: "local_load_i32_s",
	LocalLoadI32U: "local_load_i32_u",
	LocalLoadI16S: "local_load_i16_s",
	LocalLoadI16U: "local_load_i16_u",
	LocalLoadI8S:  "local_load_i8_s",
	LocalLoadI8U:  "local_load_i8_u",
	LocalLoadF64:  "local_load_f64",
	LocalLoadF32:  "local_load_f32",
	LocalStoreI64: "local_store_i64",
	LocalStoreI32: "local_store_i32",
	LocalStoreI16: "local_store_i16",
	LocalStoreI8:  "local_store_i8",
	LocalStoreF64: "local_store_f64",
	LocalStoreF32: "local_store_f32",

	DataLoadI64:  "data_load_i64",
	DataLoadI32S: "data_load_i32_s",
	DataLoadI32U: "data_load_i32_u",
	DataLoadI16S: "data_load_i16_s",
	DataLoadI16U: "data_load_i16_u",
	DataLoadI8S:  "data_load_i8_s",
	DataLoadI8U:  "data_load_i8_u",
	DataLoadF64:  "data_load_f64",
	DataLoadF32:  "data_load_f32",
	DataStoreI64: "data_store_i64",
	DataStoreI32: "data_store_i32",
	DataStoreI16: "data_store_i16",
	DataStoreI8:  "data_store_i8",
	DataStoreF64: "data_store_f64",
	DataStoreF32: "data_store_f32",

	DataLoadExtendI64:  "data_load_extend_i64",
	DataLoadExtendI32S: "data_load_extend_i32_s",
	DataLoadExtendI32U: "data_load_extend_i32_u",
	DataLoadExtendI16S: "data_load_extend_i16_s",
	DataLoadExtendI16U: "data_load_extend_i16_u",
	DataLoadExtendI8S:  "data_load_extend_i8_s",
	DataLoadExtendI8U:  "data_load_extend_i8_u",
	DataLoadExtendF64:  "data_load_extend_f64",
	DataLoadExtendF32:  "data_load_extend_f32",
	DataStoreExtendI64: "data_store_extend_i64",
	DataStoreExtendI32: "data_store_extend_i32",
	DataStoreExtendI16: "data_store_extend_i16",
	DataStoreExtendI8:  "data_store_extend_i8",
	DataStoreExtendF64: "data_store_extend_f64",
	DataStoreExtendF32: "data_store_extend_f32",

	DataLoadDynamicI64:  "data_load_dynamic_i64",
	DataLoadDynamicI32S: "data_load_dynamic_i32_s",
	DataLoadDynamicI32U: "data_load_dynamic_i32_u",
	DataLoadDynamicI16S: "data_load_dynamic_i16_s",
	DataLoadDynamicI16U: "data_load_dynamic_i16_u",
	DataLoadDynamicI8S:  "data_load_dynamic_i8_s",
	DataLoadDynamicI8U:  "data_load_dynamic_i8_u",
	DataLoadDynamicF64:  "data_load_dynamic_f64",
	DataLoadDynamicF32:  "data_load_dynamic_f32",
	DataStoreDynamicI64: "data_store_dynamic_i64",
	DataStoreDynamicI32: "data_store_dynamic_i32",
	DataStoreDynamicI16: "data_store_dynamic_i16",
	DataStoreDynamicI8:  "data_store_dynamic_i8",
	DataStoreDynamicF64: "data_store_dynamic_f64",
	DataStoreDynamicF32: "data_store_dynamic_f32",

	AddI32:    "add_i32",
	SubI32:    "sub_i32",
	AddImmI32: "add_imm_i32",
	SubImmI32: "sub_imm_i32",
	MulI32:    "mul_i32",
	DivI32S:   "div_i32_s",
	DivI32U:   "div_i32_u",
	RemI32S:   "rem_i32_s",
	RemI32U:   "rem_i32_u",
	AddI64:    "add_i64",
	SubI64:    "sub_i64",
	AddImmI64: "add_imm_i64",
	SubImmI64: "sub_imm_i64",
	MulI64:    "mul_i64",
	DivI64S:   "div_i64_s",
	DivI64U:   "div_i64_u",
	RemI64S:   "rem_i64_s",
	RemI64U:   "rem_i64_u",
	AddF32:    "add_f32",
	SubF32:    "sub_f32",
	MulF32:    "mul_f32",
	DivF32:    "div_f32",
	AddF64:    "add_f64",
	SubF64:    "sub_f64",
	MulF64:    "mul_f64",
	DivF64:    "div_f64",

	And:                   "and",
	Or:                    "or",
	Xor:                   "xor",
	Not:                   "not",
	ShiftLeftI32:          "shift_left_i32",
	ShiftRightI32S:        "shift_right_i32_s",
	ShiftRightI32U:        "shift_right_i32_u",
	RotateLeftI32:         "rotate_left_i32",
	RotateRightI32:        "rotate_right_i32",
	CountLeadingZerosI32:  "count_leading_zeros_i32",
	CountLeadingOnesI32:   "count_leading_ones_i32",
	CountTrailingZerosI32: "count_trailing_zeros_i32",
	CountOnesI32:          "count_ones_i32",
	ShiftLeftI64:          "shift_left_i64",
	ShiftRightI64S:        "shift_right_i64_s",
	ShiftRightI64U:        "shift_right_i64_u",
	RotateLeftI64:         "rotate_left_i64",
	RotateRightI64:        "rotate_right_i64",
	CountLeadingZerosI64:  "count_leading_zeros_i64",
	CountLeadingOnesI64:   "count_leading_ones_i64",
	CountTrailingZerosI64: "count_trailing_zeros_i64",
	CountOnesI64:          "count_ones_i64",

	AbsI32:                   "abs_i32",
	NegI32:                   "neg_i32",
	AbsI64:                   "abs_i64",
	NegI64:                   "neg_i64",
	AbsF32:                   "abs_f32",
	NegF32:                   "neg_f32",
	CopysignF32:              "copysign_f32",
	SqrtF32:                  "sqrt_f32",
	MinF32:                   "min_f32",
	MaxF32:                   "max_f32",
	CeilF32:                  "ceil_f32",
	FloorF32:                 "floor_f32",
	RoundHalfAwayFromZeroF32: "round_half_away_from_zero_f32",
	RoundHalfToEvenF32:       "round_half_to_even_f32",
	TruncF32:                 "trunc_f32",
	FractF32:                 "fract_f32",
	CbrtF32:                  "cbrt_f32",
	ExpF32:                   "exp_f32",
	Exp2F32:                  "exp2_f32",
	LnF32:                    "ln_f32",
	Log2F32:                  "log2_f32",
	Log10F32:                 "log10_f32",
	SinF32:                   "sin_f32",
	CosF32:                   "cos_f32",
	TanF32:                   "tan_f32",
	AsinF32:                  "asin_f32",
	AcosF32:                  "acos_f32",
	AtanF32:                  "atan_f32",
	PowF32:                   "pow_f32",
	LogF32:                   "log_f32",
	AbsF64:                   "abs_f64",
	NegF64:                   "neg_f64",
	CopysignF64:              "copysign_f64",
	SqrtF64:                  "sqrt_f64",
	MinF64:                   "min_f64",
	MaxF64:                   "max_f64",
	CeilF64:                  "ceil_f64",
	FloorF64:                 "floor_f64",
	RoundHalfAwayFromZeroF64: "round_half_away_from_zero_f64",
	RoundHalfToEvenF64:       "round_half_to_even_f64",
	TruncF64:                 "trunc_f64",
	FractF64:                 "fract_f64",
	CbrtF64:                  "cbrt_f64",
	ExpF64:                   "exp_f64",
	Exp2F64:                  "exp2_f64",
	LnF64:                    "ln_f64",
	Log2F64:                  "log2_f64",
	Log10F64:                 "log10_f64",
	SinF64:                   "sin_f64",
	CosF64:                   "cos_f64",
	TanF64:                   "tan_f64",
	AsinF64:                  "asin_f64",
	AcosF64:                  "acos_f64",
	AtanF64:                  "atan_f64",
	PowF64:                   "pow_f64",
	LogF64:                   "log_f64",

	TruncateI64ToI32: "truncate_i64_to_i32",
	ExtendI32SToI64:  "extend_i32_s_to_i64",
	ExtendI32UToI64:  "extend_i32_u_to_i64",
	DemoteF64ToF32:   "demote_f64_to_f32",
	PromoteF32ToF64:  "promote_f32_to_f64",
	ConvertF32ToI32S: "convert_f32_to_i32_s",
	ConvertF32ToI32U: "convert_f32_to_i32_u",
	ConvertF64ToI32S: "convert_f64_to_i32_s",
	ConvertF64ToI32U: "convert_f64_to_i32_u",
	ConvertF32ToI64S: "convert_f32_to_i64_s",
	ConvertF32ToI64U: "convert_f32_to_i64_u",
	ConvertF64ToI64S: "convert_f64_to_i64_s",
	ConvertF64ToI64U: "convert_f64_to_i64_u",
	ConvertI32SToF32: "convert_i32_s_to_f32",
	ConvertI32UToF32: "convert_i32_u_to_f32",
	ConvertI64SToF32: "convert_i64_s_to_f32",
	ConvertI64UToF32: "convert_i64_u_to_f32",
	ConvertI32SToF64: "convert_i32_s_to_f64",
	ConvertI32UToF64: "convert_i32_u_to_f64",
	ConvertI64SToF64: "convert_i64_s_to_f64",
	ConvertI64UToF64: "convert_i64_u_to_f64",

	EqzI32: "eqz_i32",
	NezI32: "nez_i32",
	EqI32:  "eq_i32",
	NeI32:  "ne_i32",
	LtI32S: "lt_i32_s",
	LtI32U: "lt_i32_u",
	GtI32S: "gt_i32_s",
	GtI32U: "gt_i32_u",
	LeI32S: "le_i32_s",
	LeI32U: "le_i32_u",
	GeI32S: "ge_i32_s",
	GeI32U: "ge_i32_u",
	EqzI64: "eqz_i64",
	NezI64: "nez_i64",
	EqI64:  "eq_i64",
	NeI64:  "ne_i64",
	LtI64S: "lt_i64_s",
	LtI64U: "lt_i64_u",
	GtI64S: "gt_i64_s",
	GtI64U: "gt_i64_u",
	LeI64S: "le_i64_s",
	LeI64U: "le_i64_u",
	GeI64S: "ge_i64_s",
	GeI64U: "ge_i64_u",
	EqF32:  "eq_f32",
	NeF32:  "ne_f32",
	LtF32:  "lt_f32",
	GtF32:  "gt_f32",
	LeF32:  "le_f32",
	GeF32:  "ge_f32",
	EqF64:  "eq_f64",
	NeF64:  "ne_f64",
	LtF64:  "lt_f64",
	GtF64:  "gt_f64",
	LeF64:  "le_f64",
	GeF64:  "ge_f64",

	End:         "end",
	Block:       "block",
	Break:       "break",
	Recur:       "recur",
	BlockAlt:    "block_alt",
	BreakAlt:    "break_alt",
	BlockNez:    "block_nez",
	Call:        "call",
	CallDynamic: "call_dynamic",
	EnvCall:     "envcall",
	SysCall:     "syscall",
	ExtCall:     "extcall",

	MemoryAllocate: "memory_allocate",
	MemoryResize:   "memory_resize",
	MemoryFree:     "memory_free",
	MemoryFill:     "memory_fill",
	MemoryCopy:     "memory_copy",
	Terminate:      "terminate",

	GetFunction:             "get_function",
	GetData:                 "get_data",
	HostAddrFunction:        "host_addr_function",
	HostAddrFunctionDynamic: "host_addr_function_dynamic",
	HostAddrData:            "host_addr_data",
	HostAddrDataExtend:      "host_addr_data_extend",
	HostAddrDataDynamic:     "host_addr_data_dynamic",
}

var opcodesByName = make(map[string]Opcode, len(opcodeNames))

func init() {
	for op, name := range opcodeNames {
		opcodesByName[name] = op
	}
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(0x%04x)", uint16(op))
}

// OpcodeNamed returns the opcode with the given mnemonic.
func OpcodeNamed(name string) (Opcode, bool) {
	op, ok := opcodesByName[name]
	return op, ok
}

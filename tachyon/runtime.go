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

	"go.uber.org/zap"
)

// Invoke runs the named function of a loaded module. Arguments and
// results are raw operand cells; use the Cell and From helpers for typed
// values. The argument count must match the function's declared
// parameter arity.
func (m *Machine) Invoke(module, function string, args ...uint64) ([]uint64, error) {
	inst, err := m.instance(module)
	if err != nil {
		return nil, err
	}
	index, ok := inst.module.FindFunction(function)
	if !ok {
		return nil, fmt.Errorf("%w: %q in module %q", ErrFunctionNotFound, function, module)
	}
	return m.invokeIndex(inst, index, args)
}

// InvokeIndex runs a function by its public index in the named module.
func (m *Machine) InvokeIndex(module string, publicIndex uint32, args ...uint64) ([]uint64, error) {
	inst, err := m.instance(module)
	if err != nil {
		return nil, err
	}
	return m.invokeIndex(inst, publicIndex, args)
}

func (m *Machine) invokeIndex(inst *moduleInstance, publicIndex uint32, args []uint64) ([]uint64, error) {
	rf, err := inst.resolveFunction(publicIndex)
	if err != nil {
		return nil, err
	}
	if int(rf.fn.TypeIndex) >= len(rf.inst.module.Types) {
		return nil, fmt.Errorf("%w: type index %d in function %q", ErrControlFlow, rf.fn.TypeIndex, rf.fn.Name)
	}
	ft := rf.inst.module.Types[rf.fn.TypeIndex]
	if len(args) != len(ft.Params) {
		return nil, fmt.Errorf("%w: function %q takes %d arguments, got %d",
			ErrTypeViolation, rf.fn.Name, len(ft.Params), len(args))
	}

	e := &execution{m: m, stack: newOperandStack()}
	for _, a := range args {
		e.stack.push(a)
	}
	if err := e.invoke(rf); err != nil {
		m.log.Debug("invocation failed",
			zap.String("module", inst.module.Name),
			zap.String("function", rf.fn.Name),
			zap.Error(err))
		return nil, err
	}
	return e.stack.popN(len(ft.Results)), nil
}

// CellI32 packs a 32-bit integer argument into an operand cell.
func CellI32(v int32) uint64 { return uint64(int64(v)) }

// CellI64 packs a 64-bit integer argument into an operand cell.
func CellI64(v int64) uint64 { return uint64(v) }

// CellF32 packs a 32-bit float argument into an operand cell.
func CellF32(v float32) uint64 { return uint64(math.Float32bits(v)) }

// CellF64 packs a 64-bit float argument into an operand cell.
func CellF64(v float64) uint64 { return math.Float64bits(v) }

// I32FromCell reads a result cell as a 32-bit integer.
func I32FromCell(c uint64) int32 { return int32(c) }

// I64FromCell reads a result cell as a 64-bit integer.
func I64FromCell(c uint64) int64 { return int64(c) }

// F32FromCell reads a result cell as a 32-bit float.
func F32FromCell(c uint64) float32 { return math.Float32frombits(uint32(c)) }

// F64FromCell reads a result cell as a 64-bit float.
func F64FromCell(c uint64) float64 { return math.Float64frombits(c) }

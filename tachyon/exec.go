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

// execution is the state of one top-level invocation: the operand stack
// shared by the whole call tree and the current call depth.
type execution struct {
	m     *Machine
	stack *operandStack
	depth int
}

// frame is one activation record. Function frames and block frames share
// the representation; only control transfer treats them differently.
// base is the operand stack height right after the frame's parameters
// were moved into its local slots.
type frame struct {
	function bool
	typ      FunctionType
	locals   []uint64
	base     int
}

func (e *execution) newFrame(function bool, ft FunctionType, localTypes []OperandType) frame {
	locals := make([]uint64, len(ft.Params)+len(localTypes))
	args := e.stack.popN(len(ft.Params))
	copy(locals, args)
	return frame{
		function: function,
		typ:      ft,
		locals:   locals,
		base:     e.stack.size(),
	}
}

// invoke runs fn to completion. The caller pushes the arguments; on
// success the declared results are left on the stack.
func (e *execution) invoke(rf resolvedFunction) error {
	if e.depth >= e.m.cfg.MaxCallDepth {
		return fmt.Errorf("%w: call depth %d", ErrStackOverflow, e.depth)
	}
	e.depth++
	defer func() { e.depth-- }()

	inst := rf.inst
	mod := inst.module
	fn := rf.fn
	if int(fn.TypeIndex) >= len(mod.Types) {
		return fmt.Errorf("%w: type index %d in function %q", ErrControlFlow, fn.TypeIndex, fn.Name)
	}

	frames := make([]frame, 0, 8)
	frames = append(frames, e.newFrame(true, mod.Types[fn.TypeIndex], fn.Locals))

	code := fn.Code
	pc := 0
	for {
		instAddr := pc
		in, next, err := DecodeInstruction(code, pc)
		if err != nil {
			return err
		}
		pc = next

		switch in.Opcode {
		case Nop:

		case ImmI32:
			e.stack.pushI32(int32(in.P32A))
		case ImmI64:
			e.stack.push(uint64(in.P32A) | uint64(in.P32B)<<32)
		case ImmF32:
			e.stack.push(uint64(in.P32A))
		case ImmF64:
			e.stack.push(uint64(in.P32A) | uint64(in.P32B)<<32)

		case LocalLoadI64, LocalLoadI32S, LocalLoadI32U, LocalLoadI16S,
			LocalLoadI16U, LocalLoadI8S, LocalLoadI8U, LocalLoadF64, LocalLoadF32:
			cell, err := localLoad(frames, in)
			if err != nil {
				return err
			}
			e.stack.push(cell)

		case LocalStoreI64, LocalStoreI32, LocalStoreI16, LocalStoreI8,
			LocalStoreF64, LocalStoreF32:
			if err := localStore(frames, in, e.stack.pop()); err != nil {
				return err
			}

		case DataLoadI64, DataLoadI32S, DataLoadI32U, DataLoadI16S, DataLoadI16U,
			DataLoadI8S, DataLoadI8U, DataLoadF64, DataLoadF32:
			cell, err := inst.data.loadCell(in.P32A, int64(int16(in.P16)), in.Opcode)
			if err != nil {
				return err
			}
			e.stack.push(cell)

		case DataStoreI64, DataStoreI32, DataStoreI16, DataStoreI8,
			DataStoreF64, DataStoreF32:
			cell := e.stack.pop()
			if err := inst.data.storeCell(in.P32A, int64(int16(in.P16)), in.Opcode, cell); err != nil {
				return err
			}

		case DataLoadExtendI64, DataLoadExtendI32S, DataLoadExtendI32U,
			DataLoadExtendI16S, DataLoadExtendI16U, DataLoadExtendI8S,
			DataLoadExtendI8U, DataLoadExtendF64, DataLoadExtendF32:
			offset := e.stack.popI64()
			plain := in.Opcode - DataLoadExtendI64 + DataLoadI64
			cell, err := inst.data.loadCell(in.P32A, offset, plain)
			if err != nil {
				return err
			}
			e.stack.push(cell)

		case DataStoreExtendI64, DataStoreExtendI32, DataStoreExtendI16,
			DataStoreExtendI8, DataStoreExtendF64, DataStoreExtendF32:
			// The value cell sits below the offset on the stack.
			offset := e.stack.popI64()
			cell := e.stack.pop()
			plain := in.Opcode - DataStoreExtendI64 + DataStoreI64
			if err := inst.data.storeCell(in.P32A, offset, plain, cell); err != nil {
				return err
			}

		case DataLoadDynamicI64, DataLoadDynamicI32S, DataLoadDynamicI32U,
			DataLoadDynamicI16S, DataLoadDynamicI16U, DataLoadDynamicI8S,
			DataLoadDynamicI8U, DataLoadDynamicF64, DataLoadDynamicF32:
			offset := e.stack.popI64()
			index := e.stack.popU32()
			target, err := e.m.instanceAt(e.stack.popU32())
			if err != nil {
				return err
			}
			plain := in.Opcode - DataLoadDynamicI64 + DataLoadI64
			cell, err := target.data.loadCell(index, offset, plain)
			if err != nil {
				return err
			}
			e.stack.push(cell)

		case DataStoreDynamicI64, DataStoreDynamicI32, DataStoreDynamicI16,
			DataStoreDynamicI8, DataStoreDynamicF64, DataStoreDynamicF32:
			// The value cell sits below the addressing operands.
			offset := e.stack.popI64()
			index := e.stack.popU32()
			module := e.stack.popU32()
			cell := e.stack.pop()
			target, err := e.m.instanceAt(module)
			if err != nil {
				return err
			}
			plain := in.Opcode - DataStoreDynamicI64 + DataStoreI64
			if err := target.data.storeCell(index, offset, plain, cell); err != nil {
				return err
			}

		case End:
			f := frames[len(frames)-1]
			e.stack.unwind(f.base, len(f.typ.Results))
			frames = frames[:len(frames)-1]
			if f.function {
				return nil
			}

		case Block:
			ft, locals, err := blockShape(mod, in.P32A, in.P32B)
			if err != nil {
				return err
			}
			frames = append(frames, e.newFrame(false, ft, locals))

		case Break:
			returned, newPc, err := e.doBreak(&frames, int(int16(in.P16)), instAddr, int32(in.P32A))
			if err != nil {
				return err
			}
			if returned {
				return nil
			}
			pc = newPc

		case BreakAlt:
			returned, newPc, err := e.doBreak(&frames, 0, instAddr, int32(in.P32A))
			if err != nil {
				return err
			}
			if returned {
				return nil
			}
			pc = newPc

		case Recur:
			layers := int(int16(in.P16))
			target := len(frames) - 1 - layers
			if layers < 0 || target < 0 {
				return fmt.Errorf("%w: recur across %d layers at depth %d", ErrControlFlow, layers, len(frames))
			}
			tf := &frames[target]
			args := e.stack.popN(len(tf.typ.Params))
			frames = frames[:target+1]
			e.stack.truncate(tf.base)
			copy(tf.locals, args)
			for i := len(args); i < len(tf.locals); i++ {
				tf.locals[i] = 0
			}
			pc = instAddr - int(int32(in.P32A))
			if pc < 0 {
				return fmt.Errorf("%w: recur target address %d", ErrControlFlow, pc)
			}

		case BlockAlt:
			cond := e.stack.pop()
			ft, locals, err := blockShape(mod, in.P32A, in.P32B)
			if err != nil {
				return err
			}
			frames = append(frames, e.newFrame(false, ft, locals))
			if cond == 0 {
				pc = instAddr + int(int32(in.P32C))
			}

		case BlockNez:
			cond := e.stack.pop()
			if cond == 0 {
				pc = instAddr + int(int32(in.P32B))
				break
			}
			if int(in.P32A) >= len(mod.LocalLists) {
				return fmt.Errorf("%w: local list index %d", ErrControlFlow, in.P32A)
			}
			frames = append(frames, e.newFrame(false, FunctionType{}, mod.LocalLists[in.P32A]))

		case Call:
			target, err := inst.resolveFunction(in.P32A)
			if err != nil {
				return err
			}
			if err := e.invoke(target); err != nil {
				return err
			}

		case CallDynamic:
			fnIndex := e.stack.popU32()
			targetInst, err := e.m.instanceAt(e.stack.popU32())
			if err != nil {
				return err
			}
			target, err := targetInst.resolveFunction(fnIndex)
			if err != nil {
				return err
			}
			if err := e.invoke(target); err != nil {
				return err
			}

		case EnvCall:
			if err := e.m.dispatchEnvCall(e, inst, in.P32A); err != nil {
				return err
			}

		case SysCall:
			if err := e.doSyscall(); err != nil {
				return err
			}

		case ExtCall:
			if err := e.m.dispatchExtCall(e, inst, in.P32A); err != nil {
				return err
			}

		case MemoryAllocate:
			size := e.stack.popI64()
			align := e.stack.popI64()
			index, err := inst.data.allocate(align, size)
			if err != nil {
				return err
			}
			e.stack.push(uint64(index))

		case MemoryResize:
			size := e.stack.popI64()
			index := e.stack.popU32()
			if err := inst.data.resize(index, size); err != nil {
				return err
			}
			e.stack.push(uint64(index))

		case MemoryFree:
			if err := inst.data.free(e.stack.popU32()); err != nil {
				return err
			}

		case MemoryFill:
			value := byte(e.stack.pop())
			count := e.stack.popI64()
			offset := e.stack.popI64()
			index := e.stack.popU32()
			target, err := e.m.instanceAt(e.stack.popU32())
			if err != nil {
				return err
			}
			if err := target.data.fill(index, offset, value, count); err != nil {
				return err
			}

		case MemoryCopy:
			count := e.stack.popI64()
			dstOffset := e.stack.popI64()
			dstIndex := e.stack.popU32()
			dst, err := e.m.instanceAt(e.stack.popU32())
			if err != nil {
				return err
			}
			srcOffset := e.stack.popI64()
			srcIndex := e.stack.popU32()
			src, err := e.m.instanceAt(e.stack.popU32())
			if err != nil {
				return err
			}
			if err := dst.data.copyRange(dstIndex, dstOffset, src.data, srcIndex, srcOffset, count); err != nil {
				return err
			}

		case Terminate:
			return &TerminatedError{Code: int32(in.P32A)}

		case GetFunction:
			if _, err := inst.resolveFunction(in.P32A); err != nil {
				return err
			}
			e.stack.push(uint64(inst.index))
			e.stack.push(uint64(in.P32A))

		case GetData:
			if _, err := inst.data.item(in.P32A); err != nil {
				return err
			}
			e.stack.push(uint64(inst.index))
			e.stack.push(uint64(in.P32A))

		case HostAddrFunction, HostAddrFunctionDynamic, HostAddrData,
			HostAddrDataExtend, HostAddrDataDynamic:
			if err := e.doHostAddr(inst, in); err != nil {
				return err
			}

		default:
			if err := e.executeValue(in); err != nil {
				return err
			}
		}
	}
}

// doBreak pops layers+1 frames, carries the target frame's result-arity
// operands across the collapse, and computes the resume address. When the
// target is the function frame the break is a return and the offset is
// ignored.
func (e *execution) doBreak(frames *[]frame, layers, instAddr int, offset int32) (returned bool, newPc int, err error) {
	fs := *frames
	target := len(fs) - 1 - layers
	if layers < 0 || target < 0 {
		return false, 0, fmt.Errorf("%w: break across %d layers at depth %d", ErrControlFlow, layers, len(fs))
	}
	tf := fs[target]
	e.stack.unwind(tf.base, len(tf.typ.Results))
	*frames = fs[:target]
	if tf.function {
		return true, 0, nil
	}
	return false, instAddr + int(offset), nil
}

func blockShape(mod *Module, typeIndex, localListIndex uint32) (FunctionType, []OperandType, error) {
	if int(typeIndex) >= len(mod.Types) {
		return FunctionType{}, nil, fmt.Errorf("%w: type index %d", ErrControlFlow, typeIndex)
	}
	if int(localListIndex) >= len(mod.LocalLists) {
		return FunctionType{}, nil, fmt.Errorf("%w: local list index %d", ErrControlFlow, localListIndex)
	}
	return mod.Types[typeIndex], mod.LocalLists[localListIndex], nil
}

func localSlot(frames []frame, in Instruction) (*frame, int, error) {
	layers := int(int16(in.P16))
	target := len(frames) - 1 - layers
	if layers < 0 || target < 0 {
		return nil, 0, fmt.Errorf("%w: layers %d at depth %d", ErrFrameDepth, layers, len(frames))
	}
	f := &frames[target]
	index := int(in.P32A)
	if index >= len(f.locals) {
		return nil, 0, fmt.Errorf("%w: index %d in frame with %d slots", ErrLocalOutOfRange, index, len(f.locals))
	}
	return f, index, nil
}

func localLoad(frames []frame, in Instruction) (uint64, error) {
	f, index, err := localSlot(frames, in)
	if err != nil {
		return 0, err
	}
	cell := f.locals[index]
	switch in.Opcode {
	case LocalLoadI64:
		return cell, nil
	case LocalLoadI32S:
		return uint64(int64(int32(cell))), nil
	case LocalLoadI32U:
		return uint64(uint32(cell)), nil
	case LocalLoadI16S:
		return uint64(int64(int16(cell))), nil
	case LocalLoadI16U:
		return uint64(uint16(cell)), nil
	case LocalLoadI8S:
		return uint64(int64(int8(cell))), nil
	case LocalLoadI8U:
		return uint64(uint8(cell)), nil
	case LocalLoadF64:
		if !validFloat64(cell) {
			return 0, fmt.Errorf("%w: f64 bit pattern 0x%016x in local %d", ErrFloatInvalid, cell, index)
		}
		return cell, nil
	case LocalLoadF32:
		bits := uint32(cell)
		if !validFloat32(bits) {
			return 0, fmt.Errorf("%w: f32 bit pattern 0x%08x in local %d", ErrFloatInvalid, bits, index)
		}
		return uint64(bits), nil
	default:
		return 0, fmt.Errorf("%w: %s is not a local load", ErrMalformedInstruction, in.Opcode)
	}
}

func localStore(frames []frame, in Instruction, cell uint64) error {
	f, index, err := localSlot(frames, in)
	if err != nil {
		return err
	}
	switch in.Opcode {
	case LocalStoreI64, LocalStoreF64:
		f.locals[index] = cell
	case LocalStoreI32, LocalStoreF32:
		f.locals[index] = uint64(uint32(cell))
	case LocalStoreI16:
		f.locals[index] = uint64(uint16(cell))
	case LocalStoreI8:
		f.locals[index] = uint64(uint8(cell))
	default:
		return fmt.Errorf("%w: %s is not a local store", ErrMalformedInstruction, in.Opcode)
	}
	return nil
}

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
	"unsafe"
)

// doHostAddr handles the host interop address instructions. Data
// addresses are real host pointers into the backing byte slices and stay
// valid until the item is freed or resized. Function "addresses" are
// opaque handles redeemable through Machine.InvokeHandle; handing out raw
// code pointers is not meaningful for interpreted functions.
func (e *execution) doHostAddr(inst *moduleInstance, in Instruction) error {
	switch in.Opcode {
	case HostAddrFunction:
		rf, err := inst.resolveFunction(in.P32A)
		if err != nil {
			return err
		}
		e.stack.pushI64(e.m.hostHandles.register(rf))

	case HostAddrFunctionDynamic:
		fnIndex := e.stack.popU32()
		target, err := e.m.instanceAt(e.stack.popU32())
		if err != nil {
			return err
		}
		rf, err := target.resolveFunction(fnIndex)
		if err != nil {
			return err
		}
		e.stack.pushI64(e.m.hostHandles.register(rf))

	case HostAddrData:
		return e.pushDataAddr(inst, in.P32A, int64(int16(in.P16)))

	case HostAddrDataExtend:
		offset := e.stack.popI64()
		return e.pushDataAddr(inst, in.P32A, offset)

	case HostAddrDataDynamic:
		offset := e.stack.popI64()
		index := e.stack.popU32()
		target, err := e.m.instanceAt(e.stack.popU32())
		if err != nil {
			return err
		}
		return e.pushDataAddr(target, index, offset)

	default:
		return fmt.Errorf("%w: %s is not a host address instruction", ErrMalformedInstruction, in.Opcode)
	}
	return nil
}

func (e *execution) pushDataAddr(inst *moduleInstance, index uint32, offset int64) error {
	item, err := inst.data.item(index)
	if err != nil {
		return err
	}
	if offset < 0 || offset >= int64(len(item.bytes)) {
		return fmt.Errorf("%w: offset %d in item %d of length %d", ErrDataAccess, offset, index, len(item.bytes))
	}
	addr := uintptr(unsafe.Pointer(&item.bytes[offset]))
	e.stack.push(uint64(addr))
	return nil
}

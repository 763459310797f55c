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

	"go.uber.org/zap"

	"github.com/tachyon-vm/tachyon/metadata"
)

// HostFunc is a function provided by the host and callable from bytecode
// through envcall or extcall. It exchanges operands through the call's
// stack accessors; an error it returns becomes an ErrHostCall fault.
type HostFunc func(call *HostCall) error

// HostCall is the view a HostFunc gets of the running machine.
type HostCall struct {
	exec *execution
	inst *moduleInstance
}

// Module returns the name of the module executing the call instruction.
func (c *HostCall) Module() string {
	return c.inst.module.Name
}

// Pop removes the top operand cell.
func (c *HostCall) Pop() uint64 {
	return c.exec.stack.pop()
}

// PopI64 removes the top operand cell as a signed 64-bit integer.
func (c *HostCall) PopI64() int64 {
	return c.exec.stack.popI64()
}

// Push appends one operand cell.
func (c *HostCall) Push(v uint64) {
	c.exec.stack.push(v)
}

// PushI64 appends a signed 64-bit integer operand.
func (c *HostCall) PushI64(v int64) {
	c.exec.stack.pushI64(v)
}

// PushI32 appends a sign-extended 32-bit integer operand.
func (c *HostCall) PushI32(v int32) {
	c.exec.stack.pushI32(v)
}

// DataBytes exposes [offset, offset+length) of a data item in the calling
// module's index space for reading or writing.
func (c *HostCall) DataBytes(index uint32, offset, length int64) ([]byte, error) {
	return c.inst.data.store(index, offset, length)
}

// Built-in envcall numbers.
const (
	// EnvRuntimeVersion pushes the runtime version packed as an i64
	// (patch, minor, major in ascending 16-bit fields).
	EnvRuntimeVersion uint32 = 0x0100

	// EnvRuntimeEdition writes the runtime edition string into the data
	// item addressed by the operands (data_public_index, offset) and
	// pushes the number of bytes written.
	EnvRuntimeEdition uint32 = 0x0101

	// EnvRuntimeName writes the runtime name string, same convention as
	// EnvRuntimeEdition.
	EnvRuntimeName uint32 = 0x0102
)

// RegisterEnvCall installs handler under the given envcall number,
// replacing any previous handler including the built-ins.
func (m *Machine) RegisterEnvCall(num uint32, handler HostFunc) {
	m.envCalls[num] = handler
}

// RegisterExternal appends handler to the external function table and
// returns the extcall index bytecode must use to reach it.
func (m *Machine) RegisterExternal(handler HostFunc) uint32 {
	m.externals = append(m.externals, handler)
	return uint32(len(m.externals) - 1)
}

func (m *Machine) registerBuiltinEnvCalls() {
	m.envCalls[EnvRuntimeVersion] = func(call *HostCall) error {
		call.Push(metadata.RuntimeVersion().ToU64())
		return nil
	}
	m.envCalls[EnvRuntimeEdition] = stringEnvCall(metadata.RuntimeEdition)
	m.envCalls[EnvRuntimeName] = stringEnvCall(metadata.RuntimeName)
}

// stringEnvCall writes s into the data item addressed by the
// (data_public_index, offset) operands and pushes the byte count.
func stringEnvCall(s string) HostFunc {
	return func(call *HostCall) error {
		offset := call.PopI64()
		index := uint32(call.Pop())
		b, err := call.DataBytes(index, offset, int64(len(s)))
		if err != nil {
			return err
		}
		copy(b, s)
		call.PushI64(int64(len(s)))
		return nil
	}
}

func (m *Machine) dispatchEnvCall(e *execution, inst *moduleInstance, num uint32) error {
	handler, ok := m.envCalls[num]
	if !ok {
		return fmt.Errorf("%w: envcall %d is not registered", ErrHostCall, num)
	}
	if err := handler(&HostCall{exec: e, inst: inst}); err != nil {
		m.log.Warn("envcall failed", zap.Uint32("num", num), zap.Error(err))
		return fmt.Errorf("%w: envcall %d: %v", ErrHostCall, num, err)
	}
	return nil
}

func (m *Machine) dispatchExtCall(e *execution, inst *moduleInstance, index uint32) error {
	if int(index) >= len(m.externals) {
		return fmt.Errorf("%w: extcall index %d is not registered", ErrHostCall, index)
	}
	if err := m.externals[index](&HostCall{exec: e, inst: inst}); err != nil {
		m.log.Warn("extcall failed", zap.Uint32("index", index), zap.Error(err))
		return fmt.Errorf("%w: extcall %d: %v", ErrHostCall, index, err)
	}
	return nil
}

// hostHandleTable hands out opaque i64 handles identifying VM functions
// exposed to the host as callback targets.
type hostHandleTable struct {
	entries []resolvedFunction
}

func newHostHandleTable() *hostHandleTable {
	return &hostHandleTable{}
}

func (t *hostHandleTable) register(rf resolvedFunction) int64 {
	t.entries = append(t.entries, rf)
	// Handle 0 is reserved as invalid.
	return int64(len(t.entries))
}

func (t *hostHandleTable) lookup(handle int64) (resolvedFunction, error) {
	if handle < 1 || handle > int64(len(t.entries)) {
		return resolvedFunction{}, fmt.Errorf("%w: function handle %d", ErrHostCall, handle)
	}
	return t.entries[handle-1], nil
}

// InvokeHandle calls the VM function behind a handle produced by
// host_addr_function, marshalling args and results as raw cells. It is
// the host side of the bridge callback convention.
func (m *Machine) InvokeHandle(handle int64, args ...uint64) ([]uint64, error) {
	rf, err := m.hostHandles.lookup(handle)
	if err != nil {
		return nil, err
	}
	e := &execution{m: m, stack: newOperandStack()}
	for _, a := range args {
		e.stack.push(a)
	}
	if err := e.invoke(rf); err != nil {
		return nil, err
	}
	results := rf.inst.module.Types[rf.fn.TypeIndex].Results
	return e.stack.popN(len(results)), nil
}

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

//go:build linux

package tachyon

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// doSyscall implements the syscall instruction. The operand stack carries
// the arguments in call order, then the syscall number, then the argument
// count on top. The result is the raw return value as an i64 with the
// errno pushed above it as an i32; failures travel through errno, never
// as VM faults.
func (e *execution) doSyscall() error {
	count := int(e.stack.popI64())
	num := e.stack.popI64()
	if count < 0 || count > 6 {
		return fmt.Errorf("%w: syscall with %d arguments", ErrHostCall, count)
	}
	var a [6]uintptr
	for i, v := range e.stack.popN(count) {
		a[i] = uintptr(v)
	}
	r1, _, errno := unix.Syscall6(uintptr(num), a[0], a[1], a[2], a[3], a[4], a[5])
	e.stack.pushI64(int64(r1))
	e.stack.pushI32(int32(errno))
	return nil
}

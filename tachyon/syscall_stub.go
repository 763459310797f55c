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

//go:build !linux

package tachyon

import "fmt"

const enosys = 38

// doSyscall on platforms without raw syscall support consumes the
// arguments and reports ENOSYS through the usual (return, errno)
// convention.
func (e *execution) doSyscall() error {
	count := int(e.stack.popI64())
	e.stack.popI64()
	if count < 0 || count > 6 {
		return fmt.Errorf("%w: syscall with %d arguments", ErrHostCall, count)
	}
	e.stack.popN(count)
	e.stack.pushI64(-1)
	e.stack.pushI32(enosys)
	return nil
}

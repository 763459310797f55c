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
	"errors"
	"fmt"
)

var (
	// ErrMalformedInstruction indicates an unassigned opcode, a truncated
	// encoding, or a misaligned instruction in the code stream.
	ErrMalformedInstruction = errors.New("malformed instruction")

	// ErrTypeViolation indicates an operand whose width or class does not
	// match what the instruction requires.
	ErrTypeViolation = errors.New("operand type violation")

	// ErrFloatInvalid indicates a NaN or infinity where a finite float is
	// required.
	ErrFloatInvalid = errors.New("invalid floating-point value")

	// ErrStackOverflow indicates the call or frame depth limit was hit.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow indicates a pop from an empty operand stack or a
	// frame reference past the outermost frame.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrFrameDepth indicates a layers value that walks past the
	// outermost frame of the current function activation.
	ErrFrameDepth = errors.New("frame depth exceeded")

	// ErrLocalOutOfRange indicates a local variable index past the target
	// frame's slot count.
	ErrLocalOutOfRange = errors.New("local variable out of range")

	// ErrControlFlow indicates a structurally invalid control transfer,
	// such as a recur whose target frame cannot accept the arguments.
	ErrControlFlow = errors.New("control flow violation")

	// ErrDataAccess indicates a data public index that resolves to no
	// item, or an access outside the item's bounds.
	ErrDataAccess = errors.New("data access fault")

	// ErrMemory indicates a failed allocate, resize, free, fill, or copy.
	ErrMemory = errors.New("memory fault")

	// ErrIntegerDivideByZero indicates an integer div or rem with a zero
	// divisor.
	ErrIntegerDivideByZero = errors.New("integer divide by zero")

	// ErrFunctionNotFound indicates a function public index with no
	// target.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrHostCall indicates a failed envcall, syscall dispatch, or
	// extcall.
	ErrHostCall = errors.New("host call failed")

	// ErrVerification indicates the load-time verifier rejected a module.
	ErrVerification = errors.New("verification failed")
)

// TerminatedError reports that the program executed terminate. It is not a
// fault: the machine stopped deliberately with the given code.
type TerminatedError struct {
	Code int32
}

func (e *TerminatedError) Error() string {
	return fmt.Sprintf("terminated with code %d", e.Code)
}

// TerminationCode extracts the terminate code from err. ok is false when
// err does not wrap a TerminatedError.
func TerminationCode(err error) (code int32, ok bool) {
	var te *TerminatedError
	if errors.As(err, &te) {
		return te.Code, true
	}
	return 0, false
}

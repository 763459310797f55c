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
	"io"
)

// Disassemble writes a line per instruction in code to w, prefixed with
// the byte address. It stops at the first undecodable position and
// returns the decoding error.
func Disassemble(w io.Writer, code []byte) error {
	pc := 0
	for pc < len(code) {
		in, next, err := DecodeInstruction(code, pc)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "0x%04x  %s\n", pc, in); err != nil {
			return err
		}
		pc = next
	}
	return nil
}

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

// VerifyModule rejects modules whose code could fault structurally at run
// time: undecodable streams, unbalanced blocks, control transfers that
// leave the function or land between instructions, and out-of-range
// static indices. Value typing of the operand stack is the producing
// compiler's obligation; the machine still guards data and local accesses
// lazily.
func VerifyModule(mod *Module) error {
	for i, fn := range mod.Functions {
		if int(fn.TypeIndex) >= len(mod.Types) {
			return fmt.Errorf("%w: function %d (%s): type index %d out of range",
				ErrVerification, i, fn.Name, fn.TypeIndex)
		}
		if err := verifyCode(mod, fn.Code); err != nil {
			return fmt.Errorf("%w: function %d (%s): %v", ErrVerification, i, fn.Name, err)
		}
	}
	return nil
}

func verifyCode(mod *Module, code []byte) error {
	if len(code) == 0 {
		return fmt.Errorf("empty code")
	}

	// First pass: decode linearly, record instruction boundaries and
	// check nesting. Depth starts at 1 for the function frame; the
	// stream must consume it exactly at its end.
	type jump struct {
		addr   int
		target int
	}
	boundaries := make(map[int]bool)
	var jumps []jump
	depth := 1
	pc := 0
	for pc < len(code) {
		boundaries[pc] = true
		in, next, err := DecodeInstruction(code, pc)
		if err != nil {
			return err
		}

		switch in.Opcode {
		case Block:
			if _, _, err := blockShape(mod, in.P32A, in.P32B); err != nil {
				return fmt.Errorf("block at %d: %v", pc, err)
			}
			depth++
		case BlockAlt:
			if _, _, err := blockShape(mod, in.P32A, in.P32B); err != nil {
				return fmt.Errorf("block_alt at %d: %v", pc, err)
			}
			jumps = append(jumps, jump{pc, pc + int(int32(in.P32C))})
			depth++
		case BlockNez:
			if int(in.P32A) >= len(mod.LocalLists) {
				return fmt.Errorf("block_nez at %d: local list index %d out of range", pc, in.P32A)
			}
			jumps = append(jumps, jump{pc, pc + int(int32(in.P32B))})
			depth++
		case End:
			depth--
			if depth < 0 {
				return fmt.Errorf("end at %d closes more frames than are open", pc)
			}
		case Break:
			layers := int(int16(in.P16))
			if layers < 0 || layers+1 > depth {
				return fmt.Errorf("break at %d: %d layers at depth %d", pc, layers, depth)
			}
			// A break to the function frame is a return; its offset is
			// ignored and not a jump target.
			if layers+1 < depth {
				jumps = append(jumps, jump{pc, pc + int(int32(in.P32A))})
			}
		case BreakAlt:
			if depth < 2 {
				return fmt.Errorf("break_alt at %d outside a block", pc)
			}
			jumps = append(jumps, jump{pc, pc + int(int32(in.P32A))})
		case Recur:
			layers := int(int16(in.P16))
			if layers < 0 || layers >= depth {
				return fmt.Errorf("recur at %d: %d layers at depth %d", pc, layers, depth)
			}
			jumps = append(jumps, jump{pc, pc - int(int32(in.P32A))})
		case Call, GetFunction, HostAddrFunction:
			if int(in.P32A) >= mod.FunctionPublicCount() {
				return fmt.Errorf("%s at %d: function public index %d out of range", in.Opcode, pc, in.P32A)
			}
		}
		pc = next
	}

	if depth != 0 {
		return fmt.Errorf("%d unterminated frames at end of code", depth)
	}
	last := 0
	for b := range boundaries {
		if b > last {
			last = b
		}
	}
	if op := Opcode(uint16(code[last]) | uint16(code[last+1])<<8); op != End {
		return fmt.Errorf("code ends with %s, not end", op)
	}

	for _, j := range jumps {
		if j.target == len(code) {
			continue
		}
		if j.target < 0 || j.target > len(code) || !boundaries[j.target] {
			return fmt.Errorf("jump from %d to %d does not land on an instruction", j.addr, j.target)
		}
	}
	return nil
}

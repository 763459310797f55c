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

// Command factorial builds a tail-recursive factorial out of raw
// instructions and runs it. The recursion uses recur against the function
// frame, so the call stack does not grow with n.
package main

import (
	"fmt"
	"os"

	"github.com/tachyon-vm/tachyon/tachyon"
)

func main() {
	e := tachyon.NewEmitter()

	// fact(n, acc):
	//   if n == 0 { return acc }
	//   recur(n-1, acc*n)
	e.OpI16I32(tachyon.LocalLoadI64, 0, 0)
	e.Op(tachyon.EqzI64)
	nez := e.OpI32I32(tachyon.BlockNez, 0, 0) // offset patched below
	e.OpI16I32(tachyon.LocalLoadI64, 1, 1)
	e.OpI16I32(tachyon.Break, 1, 0)
	e.Op(tachyon.End)
	e.Patch(nez, 1, uint32(e.Addr()-nez))
	e.OpI16I32(tachyon.LocalLoadI64, 0, 0)
	e.OpI16(tachyon.SubImmI64, 1)
	e.OpI16I32(tachyon.LocalLoadI64, 0, 1)
	e.OpI16I32(tachyon.LocalLoadI64, 0, 0)
	e.Op(tachyon.MulI64)
	recurAt := e.OpI16I32(tachyon.Recur, 0, 0)
	e.Patch(recurAt, 0, uint32(recurAt)) // jump back to address 0

	e.Op(tachyon.End)

	mod := &tachyon.Module{
		Name: "factorial",
		Types: []tachyon.FunctionType{{
			Params:  []tachyon.OperandType{tachyon.TypeI64, tachyon.TypeI64},
			Results: []tachyon.OperandType{tachyon.TypeI64},
		}},
		LocalLists: [][]tachyon.OperandType{{}},
		Functions: []tachyon.Function{{
			Name:      "fact",
			TypeIndex: 0,
			Code:      e.Bytes(),
		}},
	}

	machine := tachyon.NewMachine(tachyon.DefaultConfig())
	if err := machine.LoadModule(mod); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for n := int64(0); n <= 20; n++ {
		results, err := machine.Invoke("factorial", "fact", tachyon.CellI64(n), tachyon.CellI64(1))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("%2d! = %d\n", n, tachyon.I64FromCell(results[0]))
	}
}

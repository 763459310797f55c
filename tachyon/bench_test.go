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

import "testing"

func BenchmarkRecurFactorial(b *testing.B) {
	m := NewMachine(DefaultConfig())
	if err := m.LoadModule(buildFactorialModule()); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Invoke("fact", "fact", CellI64(20), CellI64(1)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeLoop(b *testing.B) {
	code := buildFactorialModule().Functions[0].Code
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pc := 0
		for pc < len(code) {
			_, next, err := DecodeInstruction(code, pc)
			if err != nil {
				b.Fatal(err)
			}
			pc = next
		}
	}
}

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
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTripAllOpcodes(t *testing.T) {
	for op := Opcode(0); op < MaxOpcode; op++ {
		if !op.Assigned() {
			continue
		}

		want := Instruction{Opcode: op}
		switch layouts[op] {
		case layoutP16:
			want.P16 = 0x1234
		case layoutP32:
			want.P32A = 0xdeadbeef
		case layoutP16P32:
			want.P16 = 0x1234
			want.P32A = 0xdeadbeef
		case layoutP32x2:
			want.P32A = 0xdeadbeef
			want.P32B = 0xcafebabe
		case layoutP32x3:
			want.P32A = 0xdeadbeef
			want.P32B = 0xcafebabe
			want.P32C = 0x12345678
		}

		e := NewEmitter()
		addr := e.Emit(want)
		got, next, err := DecodeInstruction(e.Bytes(), addr)
		if err != nil {
			t.Fatalf("%s: decode failed: %v", op, err)
		}
		if got != want {
			t.Errorf("%s: round trip mismatch: got %+v, want %+v", op, got, want)
		}
		if next != addr+op.Length() {
			t.Errorf("%s: next address %d, want %d", op, next, addr+op.Length())
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("unassigned opcode", func(t *testing.T) {
		code := []byte{0xff, 0x0b} // 0x0bff, in range but unassigned
		if _, _, err := DecodeInstruction(code, 0); !errors.Is(err, ErrMalformedInstruction) {
			t.Fatalf("got %v, want ErrMalformedInstruction", err)
		}
	})

	t.Run("out of space opcode", func(t *testing.T) {
		code := []byte{0x00, 0x0c}
		if _, _, err := DecodeInstruction(code, 0); !errors.Is(err, ErrMalformedInstruction) {
			t.Fatalf("got %v, want ErrMalformedInstruction", err)
		}
	})

	t.Run("truncated stream", func(t *testing.T) {
		e := NewEmitter()
		e.ImmInt32(42)
		code := e.Bytes()[:4]
		if _, _, err := DecodeInstruction(code, 0); !errors.Is(err, ErrMalformedInstruction) {
			t.Fatalf("got %v, want ErrMalformedInstruction", err)
		}
	})

	t.Run("misaligned i32 instruction", func(t *testing.T) {
		e := NewEmitter()
		e.ImmInt32(42)
		code := append(binary.LittleEndian.AppendUint16(nil, uint16(Nop)), e.Bytes()...)
		if _, _, err := DecodeInstruction(code, 2); !errors.Is(err, ErrMalformedInstruction) {
			t.Fatalf("got %v, want ErrMalformedInstruction", err)
		}
	})

	t.Run("address out of bounds", func(t *testing.T) {
		if _, _, err := DecodeInstruction([]byte{0x00}, 0); !errors.Is(err, ErrMalformedInstruction) {
			t.Fatalf("got %v, want ErrMalformedInstruction", err)
		}
	})
}

func TestEmitterAlignment(t *testing.T) {
	e := NewEmitter()
	e.Op(Nop) // 2 bytes, next i32 instruction needs padding
	addr := e.ImmInt32(7)

	if addr%4 != 0 {
		t.Errorf("imm_i32 emitted at %d, want 4-byte aligned", addr)
	}
	if addr != 4 {
		t.Errorf("imm_i32 at %d, want 4 (one nop inserted)", addr)
	}
	if len(e.Bytes())%4 != 0 {
		t.Errorf("stream length %d, want a multiple of 4", len(e.Bytes()))
	}

	// The inserted padding must itself decode as nop.
	in, _, err := DecodeInstruction(e.Bytes(), 2)
	if err != nil {
		t.Fatalf("decoding padding: %v", err)
	}
	if in.Opcode != Nop {
		t.Errorf("padding decodes as %s, want nop", in.Opcode)
	}
}

func TestEmitterImmediates(t *testing.T) {
	e := NewEmitter()
	e.ImmInt64(-1)
	in, _, err := DecodeInstruction(e.Bytes(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if in.Opcode != ImmI64 || in.P32A != 0xffffffff || in.P32B != 0xffffffff {
		t.Errorf("imm_i64(-1) encoded as %+v", in)
	}

	e = NewEmitter()
	e.ImmFloat64(1.5)
	in, _, err = DecodeInstruction(e.Bytes(), 0)
	if err != nil {
		t.Fatal(err)
	}
	bits := uint64(in.P32A) | uint64(in.P32B)<<32
	if bits != float64Bits(1.5) {
		t.Errorf("imm_f64(1.5) bits 0x%016x, want 0x%016x", bits, float64Bits(1.5))
	}
}

func TestOpcodeNames(t *testing.T) {
	for op := Opcode(0); op < MaxOpcode; op++ {
		name := op.String()
		if op.Assigned() {
			if strings.HasPrefix(name, "opcode(") {
				t.Errorf("assigned opcode 0x%04x has no name", uint16(op))
			}
		} else if !strings.HasPrefix(name, "opcode(") {
			t.Errorf("unassigned opcode 0x%04x has name %q", uint16(op), name)
		}
	}

	if got := RemI32S.String(); got != "rem_i32_s" {
		t.Errorf("RemI32S.String() = %q", got)
	}
	if got := HostAddrDataDynamic.String(); got != "host_addr_data_dynamic" {
		t.Errorf("HostAddrDataDynamic.String() = %q", got)
	}
	if op, ok := OpcodeNamed("rem_i32_s"); !ok || op != RemI32S {
		t.Errorf("OpcodeNamed(rem_i32_s) = %v, %v", op, ok)
	}
	if _, ok := OpcodeNamed("no_such_op"); ok {
		t.Error("OpcodeNamed accepted an unknown mnemonic")
	}
}

func TestOpcodeCategoryBounds(t *testing.T) {
	// Every populated category must stay inside its 256-item range.
	counts := map[uint8]int{}
	for op := Opcode(0); op < MaxOpcode; op++ {
		if op.Assigned() {
			counts[uint8(op>>8)]++
		}
	}
	for cat := uint8(1); cat <= 0x0b; cat++ {
		if counts[cat] == 0 {
			t.Errorf("category 0x%02x has no opcodes", cat)
		}
	}
	if counts[0] != 0 {
		t.Errorf("category 0x00 unexpectedly populated")
	}
}

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
	"testing"
)

func verifySingle(code []byte) error {
	mod := &Module{
		Name:       "v",
		Types:      []FunctionType{{}},
		LocalLists: [][]OperandType{{}},
		Functions:  []Function{{Name: "f", TypeIndex: 0, Code: code}},
	}
	return VerifyModule(mod)
}

func TestVerifierAcceptsWellFormedCode(t *testing.T) {
	e := NewEmitter()
	e.ImmInt32(1)
	e.OpI32I32(Block, 0, 0)
	e.ImmInt32(2)
	e.Op(End)
	e.Op(End)

	if err := verifySingle(e.Bytes()); err != nil {
		t.Fatalf("well-formed code rejected: %v", err)
	}
}

func TestVerifierRejectsTruncatedStream(t *testing.T) {
	e := NewEmitter()
	e.ImmInt32(1)
	e.Op(End)
	code := e.Bytes()[:len(e.Bytes())-1]

	if err := verifySingle(code); !errors.Is(err, ErrVerification) {
		t.Fatalf("got %v, want ErrVerification", err)
	}
}

func TestVerifierRejectsUnbalancedBlocks(t *testing.T) {
	t.Run("unterminated block", func(t *testing.T) {
		e := NewEmitter()
		e.OpI32I32(Block, 0, 0)
		e.Op(End) // closes the block, function frame left open
		if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})

	t.Run("extra end", func(t *testing.T) {
		e := NewEmitter()
		e.Op(End)
		e.Op(End)
		if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})

	t.Run("missing final end", func(t *testing.T) {
		e := NewEmitter()
		e.Op(Nop)
		if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})
}

func TestVerifierRejectsExcessiveLayers(t *testing.T) {
	t.Run("break past function frame", func(t *testing.T) {
		e := NewEmitter()
		e.OpI16I32(Break, 5, 0)
		e.Op(End)
		if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})

	t.Run("recur past function frame", func(t *testing.T) {
		e := NewEmitter()
		e.OpI16I32(Recur, 1, 0)
		e.Op(End)
		if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})

	t.Run("break_alt outside block", func(t *testing.T) {
		e := NewEmitter()
		e.OpI32(BreakAlt, 0)
		e.Op(End)
		if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})
}

func TestVerifierRejectsMisplacedJumps(t *testing.T) {
	// A block_nez whose skip offset lands in the middle of an encoded
	// instruction.
	e := NewEmitter()
	e.OpI32I32(BlockNez, 0, 3)
	e.Op(End)
	e.Op(End)
	if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
		t.Fatalf("got %v, want ErrVerification", err)
	}
}

func TestVerifierRejectsBadStaticIndices(t *testing.T) {
	t.Run("call out of range", func(t *testing.T) {
		e := NewEmitter()
		e.OpI32(Call, 7)
		e.Op(End)
		if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})

	t.Run("block type out of range", func(t *testing.T) {
		e := NewEmitter()
		e.OpI32I32(Block, 9, 0)
		e.Op(End)
		e.Op(End)
		if err := verifySingle(e.Bytes()); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})

	t.Run("function type out of range", func(t *testing.T) {
		e := NewEmitter()
		e.Op(End)
		mod := &Module{
			Name:      "v",
			Types:     []FunctionType{{}},
			Functions: []Function{{Name: "f", TypeIndex: 3, Code: e.Bytes()}},
		}
		if err := VerifyModule(mod); !errors.Is(err, ErrVerification) {
			t.Fatalf("got %v, want ErrVerification", err)
		}
	})
}

func TestLoadModuleRunsVerifier(t *testing.T) {
	e := NewEmitter()
	e.OpI16I32(Break, 5, 0)
	e.Op(End)
	mod := &Module{
		Name:       "bad",
		Types:      []FunctionType{{}},
		LocalLists: [][]OperandType{{}},
		Functions:  []Function{{Name: "f", TypeIndex: 0, Code: e.Bytes()}},
	}

	m := NewMachine(DefaultConfig())
	if err := m.LoadModule(mod); !errors.Is(err, ErrVerification) {
		t.Fatalf("got %v, want ErrVerification", err)
	}

	// With verification skipped the module loads, and the fault shows up
	// lazily at run time instead.
	cfg := DefaultConfig()
	cfg.SkipVerification = true
	m = NewMachine(cfg)
	if err := m.LoadModule(mod); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Invoke("bad", "f"); !errors.Is(err, ErrControlFlow) {
		t.Fatalf("got %v, want ErrControlFlow", err)
	}
}

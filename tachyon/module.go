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

// OperandType classifies one operand cell.
type OperandType uint8

const (
	TypeI32 OperandType = iota
	TypeI64
	TypeF32
	TypeF64
)

func (t OperandType) String() string {
	switch t {
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	default:
		return "unknown"
	}
}

// FunctionType describes the signature shared by functions and blocks.
type FunctionType struct {
	Params  []OperandType
	Results []OperandType
}

// Function is one function body. Params are not repeated in Locals; on
// entry the arguments occupy local slots [0, len(params)) and the declared
// locals follow, zero-initialized.
type Function struct {
	Name      string
	TypeIndex uint32
	Locals    []OperandType
	Code      []byte
}

// FunctionImport names a function exported by another loaded module.
type FunctionImport struct {
	Module string
	Name   string
}

// DataKind is the section a data item lives in.
type DataKind uint8

const (
	DataReadOnly DataKind = iota
	DataReadWrite
	DataUninit
)

func (k DataKind) String() string {
	switch k {
	case DataReadOnly:
		return "read_only"
	case DataReadWrite:
		return "read_write"
	case DataUninit:
		return "uninit"
	default:
		return "unknown"
	}
}

// DataDef is one internal data item. Content seeds read-only and
// read-write items; uninit items have Size bytes of zeroes.
type DataDef struct {
	Name    string
	Content []byte
	Size    uint32
}

// DataImport names a data item exported by another loaded module.
type DataImport struct {
	Module string
	Name   string
	Kind   DataKind
}

// Module is the loadable unit. The function public index space is the
// imports in declaration order followed by Functions. The data public
// index space is the imports grouped read-only, read-write, uninit,
// followed by the internal sections in the same kind order; dynamically
// allocated chunks extend the space past the static items.
type Module struct {
	Name string

	Types           []FunctionType
	FunctionImports []FunctionImport
	Functions       []Function

	// LocalLists holds the local variable lists referenced by block
	// instructions through their local_variable_list_index parameter.
	LocalLists [][]OperandType

	DataImports   []DataImport
	ReadOnlyData  []DataDef
	ReadWriteData []DataDef
	UninitData    []DataDef
}

// FunctionPublicCount returns the size of the static function public
// index space.
func (m *Module) FunctionPublicCount() int {
	return len(m.FunctionImports) + len(m.Functions)
}

// DataPublicCount returns the size of the static data public index space.
func (m *Module) DataPublicCount() int {
	return len(m.DataImports) + len(m.ReadOnlyData) + len(m.ReadWriteData) + len(m.UninitData)
}

// FindFunction returns the public index of the named internal function.
func (m *Module) FindFunction(name string) (uint32, bool) {
	for i, f := range m.Functions {
		if f.Name == name {
			return uint32(len(m.FunctionImports) + i), true
		}
	}
	return 0, false
}

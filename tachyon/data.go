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
	"fmt"
)

// dataItem is one addressable item in a module's data public index space:
// a static section entry or a dynamically allocated chunk.
type dataItem struct {
	bytes    []byte
	readOnly bool
	live     bool
}

// dataSpace is the instantiated data public index space of one module.
// Indices [0, staticCount) address imports followed by the internal
// read-only, read-write and uninit sections; indices past staticCount
// address dynamic chunks. Freed chunk indices are recycled most recently
// freed first; an index holds no identity across a free/allocate pair.
type dataSpace struct {
	// imports[i] resolves import index i to another module's space.
	imports []resolvedData

	statics []dataItem

	chunks    []dataItem
	freeList  []int
	chunkSize int64
	maxBytes  int64
}

type resolvedData struct {
	space *dataSpace
	index uint32
}

func newDataSpace(m *Module, imports []resolvedData, maxBytes int64) *dataSpace {
	statics := make([]dataItem, 0, len(m.ReadOnlyData)+len(m.ReadWriteData)+len(m.UninitData))
	for _, d := range m.ReadOnlyData {
		b := make([]byte, len(d.Content))
		copy(b, d.Content)
		statics = append(statics, dataItem{bytes: b, readOnly: true, live: true})
	}
	for _, d := range m.ReadWriteData {
		b := make([]byte, len(d.Content))
		copy(b, d.Content)
		statics = append(statics, dataItem{bytes: b, live: true})
	}
	for _, d := range m.UninitData {
		statics = append(statics, dataItem{bytes: make([]byte, d.Size), live: true})
	}
	return &dataSpace{imports: imports, statics: statics, maxBytes: maxBytes}
}

func (ds *dataSpace) staticCount() int {
	return len(ds.imports) + len(ds.statics)
}

// item resolves a data public index to its backing item, following import
// references into other modules' spaces.
func (ds *dataSpace) item(index uint32) (*dataItem, error) {
	i := int(index)
	if i < len(ds.imports) {
		ref := ds.imports[i]
		return ref.space.item(ref.index)
	}
	i -= len(ds.imports)
	if i < len(ds.statics) {
		return &ds.statics[i], nil
	}
	i -= len(ds.statics)
	if i < len(ds.chunks) && ds.chunks[i].live {
		return &ds.chunks[i], nil
	}
	return nil, fmt.Errorf("%w: data public index %d", ErrDataAccess, index)
}

// slice resolves index and bounds-checks [offset, offset+width).
func (ds *dataSpace) slice(index uint32, offset, width int64) ([]byte, bool, error) {
	item, err := ds.item(index)
	if err != nil {
		return nil, false, err
	}
	// The subtraction form keeps the check overflow-free for
	// operand-supplied offsets near the int64 maximum.
	if offset < 0 || width < 0 || width > int64(len(item.bytes)) || offset > int64(len(item.bytes))-width {
		return nil, false, fmt.Errorf("%w: range of %d bytes at offset %d exceeds item %d length %d",
			ErrDataAccess, width, offset, index, len(item.bytes))
	}
	return item.bytes[offset : offset+width], item.readOnly, nil
}

func (ds *dataSpace) load(index uint32, offset, width int64) ([]byte, error) {
	b, _, err := ds.slice(index, offset, width)
	return b, err
}

func (ds *dataSpace) store(index uint32, offset, width int64) ([]byte, error) {
	b, readOnly, err := ds.slice(index, offset, width)
	if err != nil {
		return nil, err
	}
	if readOnly {
		return nil, fmt.Errorf("%w: store to read-only item %d", ErrDataAccess, index)
	}
	return b, nil
}

// allocate creates a chunk of size bytes and returns its data public
// index. Alignment and size must be multiples of 8; alignment 0 selects
// the default of 8. The backing slices are 8-aligned.
func (ds *dataSpace) allocate(align, size int64) (uint32, error) {
	if align == 0 {
		align = 8
	}
	if align%8 != 0 || size < 0 || size%8 != 0 {
		return 0, fmt.Errorf("%w: allocate align %d size %d", ErrMemory, align, size)
	}
	if ds.maxBytes > 0 && ds.chunkSize+size > ds.maxBytes {
		return 0, fmt.Errorf("%w: allocation of %d bytes exceeds limit %d", ErrMemory, size, ds.maxBytes)
	}

	var slot int
	if n := len(ds.freeList); n > 0 {
		slot = ds.freeList[n-1]
		ds.freeList = ds.freeList[:n-1]
	} else {
		slot = len(ds.chunks)
		ds.chunks = append(ds.chunks, dataItem{})
	}
	ds.chunks[slot] = dataItem{bytes: make([]byte, size), live: true}
	ds.chunkSize += size
	return uint32(ds.staticCount() + slot), nil
}

func (ds *dataSpace) chunk(index uint32) (int, error) {
	slot := int(index) - ds.staticCount()
	if slot < 0 || slot >= len(ds.chunks) || !ds.chunks[slot].live {
		return 0, fmt.Errorf("%w: index %d is not a live chunk", ErrMemory, index)
	}
	return slot, nil
}

// resize grows or shrinks a chunk in place, preserving the index and the
// common prefix of the content. Grown space is zeroed.
func (ds *dataSpace) resize(index uint32, size int64) error {
	slot, err := ds.chunk(index)
	if err != nil {
		return err
	}
	if size < 0 || size%8 != 0 {
		return fmt.Errorf("%w: resize to %d", ErrMemory, size)
	}
	old := ds.chunks[slot].bytes
	delta := size - int64(len(old))
	if ds.maxBytes > 0 && ds.chunkSize+delta > ds.maxBytes {
		return fmt.Errorf("%w: resize to %d bytes exceeds limit %d", ErrMemory, size, ds.maxBytes)
	}
	b := make([]byte, size)
	copy(b, old)
	ds.chunks[slot].bytes = b
	ds.chunkSize += delta
	return nil
}

// free releases a chunk. The index becomes invalid and may be handed out
// again by a later allocate.
func (ds *dataSpace) free(index uint32) error {
	slot, err := ds.chunk(index)
	if err != nil {
		return err
	}
	ds.chunkSize -= int64(len(ds.chunks[slot].bytes))
	ds.chunks[slot] = dataItem{}
	ds.freeList = append(ds.freeList, slot)
	return nil
}

// fill writes count copies of value at [offset, offset+count) of the
// item.
func (ds *dataSpace) fill(index uint32, offset int64, value byte, count int64) error {
	b, err := ds.store(index, offset, count)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = value
	}
	return nil
}

// copyRange copies count bytes from an item in srcSpace into an item of
// the receiver, which may be the same space. Overlapping source and
// destination ranges are not guarded.
func (ds *dataSpace) copyRange(dstIndex uint32, dstOffset int64, srcSpace *dataSpace, srcIndex uint32, srcOffset, count int64) error {
	src, err := srcSpace.load(srcIndex, srcOffset, count)
	if err != nil {
		return err
	}
	dst, err := ds.store(dstIndex, dstOffset, count)
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

// loadCell reads width bytes at (index, offset) and extends them into one
// operand cell.
func (ds *dataSpace) loadCell(index uint32, offset int64, op Opcode) (uint64, error) {
	switch op {
	case DataLoadI64:
		b, err := ds.load(index, offset, 8)
		if err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b), nil
	case DataLoadI32S:
		b, err := ds.load(index, offset, 4)
		if err != nil {
			return 0, err
		}
		return uint64(int64(int32(binary.LittleEndian.Uint32(b)))), nil
	case DataLoadI32U:
		b, err := ds.load(index, offset, 4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case DataLoadI16S:
		b, err := ds.load(index, offset, 2)
		if err != nil {
			return 0, err
		}
		return uint64(int64(int16(binary.LittleEndian.Uint16(b)))), nil
	case DataLoadI16U:
		b, err := ds.load(index, offset, 2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case DataLoadI8S:
		b, err := ds.load(index, offset, 1)
		if err != nil {
			return 0, err
		}
		return uint64(int64(int8(b[0]))), nil
	case DataLoadI8U:
		b, err := ds.load(index, offset, 1)
		if err != nil {
			return 0, err
		}
		return uint64(b[0]), nil
	case DataLoadF64:
		b, err := ds.load(index, offset, 8)
		if err != nil {
			return 0, err
		}
		bits := binary.LittleEndian.Uint64(b)
		if !validFloat64(bits) {
			return 0, fmt.Errorf("%w: f64 bit pattern 0x%016x at item %d offset %d", ErrFloatInvalid, bits, index, offset)
		}
		return bits, nil
	case DataLoadF32:
		b, err := ds.load(index, offset, 4)
		if err != nil {
			return 0, err
		}
		bits := binary.LittleEndian.Uint32(b)
		if !validFloat32(bits) {
			return 0, fmt.Errorf("%w: f32 bit pattern 0x%08x at item %d offset %d", ErrFloatInvalid, bits, index, offset)
		}
		return uint64(bits), nil
	default:
		return 0, fmt.Errorf("%w: %s is not a data load", ErrMalformedInstruction, op)
	}
}

// storeCell writes the low width bytes of cell at (index, offset).
func (ds *dataSpace) storeCell(index uint32, offset int64, op Opcode, cell uint64) error {
	var width int64
	switch op {
	case DataStoreI64, DataStoreF64:
		width = 8
	case DataStoreI32, DataStoreF32:
		width = 4
	case DataStoreI16:
		width = 2
	case DataStoreI8:
		width = 1
	default:
		return fmt.Errorf("%w: %s is not a data store", ErrMalformedInstruction, op)
	}
	b, err := ds.store(index, offset, width)
	if err != nil {
		return err
	}
	switch width {
	case 8:
		binary.LittleEndian.PutUint64(b, cell)
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(cell))
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(cell))
	case 1:
		b[0] = byte(cell)
	}
	return nil
}

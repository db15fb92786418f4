// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package memory

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/embervm/embervm/consts"
)

// ReadByte returns the byte at [addr]. Reads are bounded by capacity
// only, never by ownership.
func (m *Memory) ReadByte(addr uint64) (byte, error) {
	if !inCapacity(addr, consts.ByteLen, m.Capacity()) {
		return 0, fmt.Errorf("%w: read byte at %d", ErrOutOfCapacity, addr)
	}
	return m.data[addr], nil
}

// ReadWord returns the big-endian word at [addr]. Any byte offset is
// valid; alignment is not required.
func (m *Memory) ReadWord(addr uint64) (uint64, error) {
	if !inCapacity(addr, consts.WordLen, m.Capacity()) {
		return 0, fmt.Errorf("%w: read word at %d", ErrOutOfCapacity, addr)
	}
	return binary.BigEndian.Uint64(m.data[addr:]), nil
}

// Read returns a copy of [count] bytes at [addr]. The copy keeps the
// caller independent from later mutation of the region.
func (m *Memory) Read(addr uint64, count uint64) ([]byte, error) {
	if err := m.checkRange(addr, count); err != nil {
		return nil, err
	}
	buf := make([]byte, count)
	copy(buf, m.data[addr:addr+count])
	return buf, nil
}

// WriteByte stores [v] at [addr]. The destination must be owned by the
// current frame or allocated heap.
func (m *Memory) WriteByte(addr uint64, v byte) error {
	if err := m.checkWrite(addr, consts.ByteLen); err != nil {
		return err
	}
	m.data[addr] = v
	return nil
}

// WriteWord stores [v] big-endian at [addr]. Unaligned destinations
// are valid.
func (m *Memory) WriteWord(addr uint64, v uint64) error {
	if err := m.checkWrite(addr, consts.WordLen); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(m.data[addr:], v)
	return nil
}

// Clear zeroes [count] bytes at [addr]. A zero count is a no-op but
// still fails for an address outside the region.
func (m *Memory) Clear(addr uint64, count uint64) error {
	if err := m.checkRange(addr, count); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if !m.owned(addr, count) {
		return fmt.Errorf("%w: clear %d bytes at %d", ErrWriteOwnership, count, addr)
	}
	clear(m.data[addr : addr+count])
	return nil
}

// Copy moves [count] bytes from [src] to [dst]. Only the destination
// needs write ownership; the source is an unrestricted read.
// Overlapping ranges copy as if through a temporary buffer.
func (m *Memory) Copy(dst, src, count uint64) error {
	if err := m.checkRange(src, count); err != nil {
		return err
	}
	if err := m.checkRange(dst, count); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if !m.owned(dst, count) {
		return fmt.Errorf("%w: copy %d bytes to %d", ErrWriteOwnership, count, dst)
	}
	copy(m.data[dst:dst+count], m.data[src:src+count])
	return nil
}

// Equal compares [count] bytes at [a] and [b]. Both ranges must be in
// capacity; no ownership is required. A zero count compares equal.
func (m *Memory) Equal(a, b, count uint64) (bool, error) {
	if err := m.checkRange(a, count); err != nil {
		return false, err
	}
	if err := m.checkRange(b, count); err != nil {
		return false, err
	}
	return bytes.Equal(m.data[a:a+count], m.data[b:b+count]), nil
}

// checkRange validates [addr, addr+count) against capacity. The
// address itself must be inside the region even when the range is
// empty.
func (m *Memory) checkRange(addr uint64, count uint64) error {
	if addr >= m.Capacity() || !inCapacity(addr, count, m.Capacity()) {
		return fmt.Errorf("%w: %d bytes at %d", ErrOutOfCapacity, count, addr)
	}
	return nil
}

// checkWrite validates capacity before ownership so the two failure
// kinds stay distinct: an out-of-range store reports capacity, an
// in-range store to foreign memory reports ownership.
func (m *Memory) checkWrite(addr uint64, count uint64) error {
	if !inCapacity(addr, count, m.Capacity()) {
		return fmt.Errorf("%w: write %d bytes at %d", ErrOutOfCapacity, count, addr)
	}
	if !m.owned(addr, count) {
		return fmt.Errorf("%w: write %d bytes at %d", ErrWriteOwnership, count, addr)
	}
	return nil
}

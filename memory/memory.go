// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package memory implements the linear-memory manager of the
// interpreter: a single fixed-capacity byte region split dynamically
// into a call stack growing up from the loaded program and a heap
// growing down from capacity. Every load, store, bulk operation, and
// growth request is gated by the cursor layout tracked here, so the
// invariant stackTop <= heapBottom is never observable as violated,
// even transiently.
package memory

import "fmt"

// Memory is the addressable region of one interpreter instance plus
// the cursors describing who owns what. It is exclusively owned by a
// single execution and is never shared across instances.
type Memory struct {
	data []byte

	// frameBase (ssp) is the first byte owned by the current call
	// frame. stackTop (sp) is the first free byte above the stack.
	// heapBottom (hp) is the lowest allocated heap address; the heap
	// occupies [heapBottom, capacity). codeEnd bounds the executable
	// region [0, codeEnd), fixed at load time.
	frameBase  uint64
	stackTop   uint64
	heapBottom uint64
	codeEnd    uint64
}

// New returns a zero-initialized region of [capacity] bytes with an
// empty stack and an empty heap.
func New(capacity uint64) *Memory {
	return &Memory{
		data:       make([]byte, capacity),
		heapBottom: capacity,
	}
}

// LoadCode copies the executable program to address zero and fixes the
// layout for execution: the executable boundary ends at the program's
// last byte and the current frame starts empty directly above it.
func (m *Memory) LoadCode(code []byte) error {
	end := uint64(len(code))
	if end > m.Capacity() {
		return fmt.Errorf("%w: program of %d bytes", ErrOutOfCapacity, len(code))
	}
	copy(m.data, code)
	m.codeEnd = end
	m.frameBase = end
	m.stackTop = end
	return nil
}

func (m *Memory) Capacity() uint64 { return uint64(len(m.data)) }

// StackTop returns the first free byte above the stack (sp).
func (m *Memory) StackTop() uint64 { return m.stackTop }

// FrameBase returns the first byte owned by the current frame (ssp).
func (m *Memory) FrameBase() uint64 { return m.frameBase }

// HeapBottom returns the lowest allocated heap address (hp).
func (m *Memory) HeapBottom() uint64 { return m.heapBottom }

// CodeEnd returns the exclusive upper bound of the executable region.
func (m *Memory) CodeEnd() uint64 { return m.codeEnd }

// IsExecutable reports whether [addr] is a valid control-transfer
// target, i.e. inside the loaded program.
func (m *Memory) IsExecutable(addr uint64) bool {
	return addr < m.codeEnd
}

func (m *Memory) owned(addr, count uint64) bool {
	return ownedForWrite(addr, count, m.frameBase, m.stackTop, m.heapBottom, m.Capacity())
}

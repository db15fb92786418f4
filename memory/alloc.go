// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package memory

// ExtendStack grows the current frame by [n] bytes and returns the new
// stack top. Newly exposed bytes keep whatever was previously in that
// physical range; only heap allocation guarantees zeroing.
func (m *Memory) ExtendStack(n uint64) (uint64, error) {
	if err := m.extendStack(n); err != nil {
		return 0, err
	}
	return m.stackTop, nil
}

// ShrinkStack releases [n] bytes from the top of the current frame and
// returns the new stack top. Released bytes are not modified: they
// remain readable with their stale contents, but lose write ownership.
func (m *Memory) ShrinkStack(n uint64) (uint64, error) {
	if err := m.shrinkStack(n); err != nil {
		return 0, err
	}
	return m.stackTop, nil
}

// Alloc grows the heap down by [n] bytes and returns the new heap
// bottom. The fresh bytes are zeroed unconditionally, regardless of
// what a shrunk stack left behind. Allocating zero bytes returns the
// current heap bottom unchanged.
func (m *Memory) Alloc(n uint64) (uint64, error) {
	old := m.heapBottom
	if err := m.allocateHeap(n); err != nil {
		return 0, err
	}
	clear(m.data[m.heapBottom:old])
	return m.heapBottom, nil
}

// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package memory

import (
	"fmt"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// Cursor transitions. Each check happens before any cursor moves, so a
// rejected transition leaves the layout byte-for-byte unchanged.

func (m *Memory) extendStack(n uint64) error {
	newTop, err := safemath.Add64(m.stackTop, n)
	if err != nil {
		return fmt.Errorf("%w: extend stack by %d", ErrOutOfCapacity, n)
	}
	if newTop > m.heapBottom {
		return fmt.Errorf("%w: stack would reach %d, heap starts at %d", ErrGrowthOverlap, newTop, m.heapBottom)
	}
	m.stackTop = newTop
	return nil
}

func (m *Memory) shrinkStack(n uint64) error {
	if n > m.stackTop-m.frameBase {
		return fmt.Errorf("%w: shrink by %d with %d owned", ErrShrinkUnderflow, n, m.stackTop-m.frameBase)
	}
	m.stackTop -= n
	return nil
}

func (m *Memory) allocateHeap(n uint64) error {
	newBottom, err := safemath.Sub(m.heapBottom, n)
	if err != nil {
		return fmt.Errorf("%w: allocate %d bytes", ErrOutOfCapacity, n)
	}
	if newBottom < m.stackTop {
		return fmt.Errorf("%w: heap would reach %d, stack ends at %d", ErrGrowthOverlap, newBottom, m.stackTop)
	}
	m.heapBottom = newBottom
	return nil
}

// Frame is the saved (frameBase, stackTop) pair of a caller. The
// call-frame mechanism owns the stack of these; the memory core only
// ever consults the current pair.
type Frame struct {
	Base uint64
	Top  uint64
}

// PushFrame records the caller's layout and makes the current stack
// top the callee's frame base, so the callee starts with an empty
// owned stack range.
func (m *Memory) PushFrame() Frame {
	f := Frame{Base: m.frameBase, Top: m.stackTop}
	m.frameBase = m.stackTop
	return f
}

// PopFrame restores the layout saved by the matching PushFrame. The
// callee's stack bytes stay readable afterwards; loads are not
// ownership gated.
func (m *Memory) PopFrame(f Frame) {
	m.frameBase = f.Base
	m.stackTop = f.Top
}

// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package memory

import (
	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// inCapacity reports whether the half-open range [addr, addr+count)
// lies inside a region of [capacity] bytes. Overflow of addr+count is
// a failure, never wraparound.
func inCapacity(addr uint64, count uint64, capacity uint64) bool {
	end, err := safemath.Add64(addr, count)
	return err == nil && end <= capacity
}

// ownedForWrite reports whether [addr, addr+count) is entirely inside
// the current frame's stack range [frameBase, stackTop) or entirely
// inside the allocated heap [heapBottom, capacity). Reads are never
// gated by this predicate.
func ownedForWrite(addr, count, frameBase, stackTop, heapBottom, capacity uint64) bool {
	end, err := safemath.Add64(addr, count)
	if err != nil {
		return false
	}
	if addr >= frameBase && end <= stackTop {
		return true
	}
	return addr >= heapBottom && end <= capacity
}

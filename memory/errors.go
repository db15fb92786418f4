// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package memory

import "errors"

var (
	// ErrOutOfCapacity is returned when an access or growth request
	// would touch bytes outside the addressable region, including any
	// address arithmetic that would overflow.
	ErrOutOfCapacity = errors.New("address range exceeds memory capacity")

	// ErrGrowthOverlap is returned when a stack extension or heap
	// allocation would make the two regions collide. Reported
	// distinctly from ErrOutOfCapacity so callers can tell "the
	// regions met" from "the request ran off the end".
	ErrGrowthOverlap = errors.New("stack and heap growth overlap")

	// ErrWriteOwnership is returned when a store, clear, or copy
	// destination is inside capacity but outside the current frame's
	// stack range and outside the allocated heap.
	ErrWriteOwnership = errors.New("write outside owned memory")

	// ErrNotExecutable is returned for control-transfer targets at or
	// beyond the executable-code boundary.
	ErrNotExecutable = errors.New("jump target is not executable")

	// ErrShrinkUnderflow is returned when a stack shrink exceeds the
	// current frame's owned stack size.
	ErrShrinkUnderflow = errors.New("stack shrink below frame base")
)

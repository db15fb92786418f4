// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import "github.com/ava-labs/avalanchego/utils/units"

const (
	// MaxRAM is the total size of the addressable memory region of a
	// single interpreter instance. Consensus-critical: every node must
	// agree on it byte for byte.
	MaxRAM = 64 * units.MiB

	// WordLen is the width of a machine word. Word loads and stores
	// move exactly this many bytes, big-endian, at any byte offset.
	WordLen = 8

	// InstrLen is the width of one encoded instruction. The program
	// counter always moves in multiples of this.
	InstrLen = 8

	// RegisterCount is the size of the register file. Registers below
	// RegisterWriteStart are reserved for the machine.
	RegisterCount      = 64
	RegisterWriteStart = 0x10

	ByteLen   = 1
	IntLen    = 4
	Uint64Len = 8
	MaxUint8  = ^uint8(0)
	MaxUint   = ^uint(0)
	MaxInt    = int(MaxUint >> 1)
	MaxUint64 = ^uint64(0)
)

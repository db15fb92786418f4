// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "errors"

var (
	ErrInvalidRegister    = errors.New("register index out of range")
	ErrReservedRegister   = errors.New("reserved register is not writable")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrArithmetic         = errors.New("arithmetic fault")
	ErrOutOfGas           = errors.New("out of gas")

	ErrUnknownReceiptType = errors.New("unknown receipt type")
)

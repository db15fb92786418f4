// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"errors"

	"github.com/embervm/embervm/memory"
)

// PanicReason is the closed set of causes a script can abort with.
// Every failure inside one instruction attempt maps to exactly one
// reason; none is ever coerced into another, because programs and
// tests must be able to tell them apart.
type PanicReason byte

const (
	UnknownFault PanicReason = iota
	OutOfCapacity
	GrowthOverlap
	WriteOwnershipViolation
	NotExecutable
	ShrinkUnderflow
	ReservedRegister
	InvalidRegister
	InvalidInstruction
	ArithmeticFault
	OutOfGas
)

func (r PanicReason) String() string {
	switch r {
	case OutOfCapacity:
		return "OutOfCapacity"
	case GrowthOverlap:
		return "GrowthOverlap"
	case WriteOwnershipViolation:
		return "WriteOwnershipViolation"
	case NotExecutable:
		return "NotExecutable"
	case ShrinkUnderflow:
		return "ShrinkUnderflow"
	case ReservedRegister:
		return "ReservedRegister"
	case InvalidRegister:
		return "InvalidRegister"
	case InvalidInstruction:
		return "InvalidInstruction"
	case ArithmeticFault:
		return "ArithmeticFault"
	case OutOfGas:
		return "OutOfGas"
	default:
		return "UnknownFault"
	}
}

// reasonFromError classifies a typed failure from the memory core or
// the dispatcher into its panic reason.
func reasonFromError(err error) PanicReason {
	switch {
	case errors.Is(err, memory.ErrOutOfCapacity):
		return OutOfCapacity
	case errors.Is(err, memory.ErrGrowthOverlap):
		return GrowthOverlap
	case errors.Is(err, memory.ErrWriteOwnership):
		return WriteOwnershipViolation
	case errors.Is(err, memory.ErrNotExecutable):
		return NotExecutable
	case errors.Is(err, memory.ErrShrinkUnderflow):
		return ShrinkUnderflow
	case errors.Is(err, ErrReservedRegister):
		return ReservedRegister
	case errors.Is(err, ErrInvalidRegister):
		return InvalidRegister
	case errors.Is(err, ErrInvalidInstruction):
		return InvalidInstruction
	case errors.Is(err, ErrArithmetic):
		return ArithmeticFault
	case errors.Is(err, ErrOutOfGas):
		return OutOfGas
	default:
		return UnknownFault
	}
}

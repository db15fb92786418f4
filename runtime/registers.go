// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"fmt"

	"github.com/embervm/embervm/consts"
)

// Reserved register indices. The dispatcher keeps the cursor registers
// (sp, ssp, hp) synchronized with the memory layout after every
// successful growth operation; programs read them but cannot write
// them.
const (
	RegZero uint8 = iota
	RegOne
	RegOF
	RegPC
	RegSSP
	RegSP
	RegFP
	RegHP
	RegErr
	RegGGas
	RegCGas
	RegBal
	RegIS
	RegRet
	RegRetL
	RegFlag
)

// Registers is the machine-visible register file. Index 0 always reads
// zero and index 1 always reads one; both are reserved like the rest
// of the low window.
type Registers [consts.RegisterCount]uint64

func (r *Registers) get(i uint8) (uint64, error) {
	if int(i) >= len(r) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRegister, i)
	}
	return r[i], nil
}

func (r *Registers) set(i uint8, v uint64) error {
	if int(i) >= len(r) {
		return fmt.Errorf("%w: %d", ErrInvalidRegister, i)
	}
	if i < consts.RegisterWriteStart {
		return fmt.Errorf("%w: %d", ErrReservedRegister, i)
	}
	r[i] = v
	return nil
}

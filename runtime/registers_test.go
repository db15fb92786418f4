// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embervm/embervm/consts"
)

func TestRegisterAccess(t *testing.T) {
	require := require.New(t)

	var regs Registers
	require.NoError(regs.set(consts.RegisterWriteStart, 42))
	v, err := regs.get(consts.RegisterWriteStart)
	require.NoError(err)
	require.Equal(uint64(42), v)
}

func TestReservedRegistersRejectWrites(t *testing.T) {
	require := require.New(t)

	var regs Registers
	for i := uint8(0); i < consts.RegisterWriteStart; i++ {
		require.ErrorIs(regs.set(i, 1), ErrReservedRegister)
	}
}

func TestRegisterIndexBounds(t *testing.T) {
	require := require.New(t)

	var regs Registers
	_, err := regs.get(consts.RegisterCount)
	require.ErrorIs(err, ErrInvalidRegister)
	require.ErrorIs(regs.set(consts.RegisterCount, 1), ErrInvalidRegister)
}

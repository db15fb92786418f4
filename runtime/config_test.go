// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embervm/embervm/consts"
)

func TestConfigDefaults(t *testing.T) {
	require := require.New(t)

	cfg := NewConfig()
	require.Equal(uint64(1)<<30, cfg.maxGas)
	require.Equal(uint64(consts.MaxRAM), cfg.capacity)
}

func TestConfigOverrides(t *testing.T) {
	require := require.New(t)

	cfg := NewConfig().SetMaxGas(500).SetCapacity(4096)
	require.Equal(uint64(500), cfg.maxGas)
	require.Equal(uint64(4096), cfg.capacity)
}

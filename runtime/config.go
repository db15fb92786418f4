// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "github.com/embervm/embervm/consts"

const (
	defaultMaxGas   = uint64(1) << 30
	defaultCapacity = uint64(consts.MaxRAM)
)

// Config carries the per-interpreter execution limits.
type Config struct {
	maxGas   uint64
	capacity uint64
}

func NewConfig() *Config {
	return &Config{
		maxGas:   defaultMaxGas,
		capacity: defaultCapacity,
	}
}

// SetMaxGas bounds the gas one script may consume. Bulk memory
// operations charge per byte touched, so the bound also caps total
// memory traffic.
func (c *Config) SetMaxGas(gas uint64) *Config {
	c.maxGas = gas
	return c
}

// SetCapacity overrides the size of the addressable memory region.
// Consensus requires every node to run with the same value; overriding
// is intended for tests.
func (c *Config) SetCapacity(bytes uint64) *Config {
	c.capacity = bytes
	return c
}

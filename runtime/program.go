// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"fmt"

	"github.com/embervm/embervm/codec"
	"github.com/embervm/embervm/consts"
)

// Program is an ordered instruction list executed from address zero.
type Program []Instruction

// Bytes returns the wire form loaded into VM memory: every instruction
// as one big-endian word.
func (p Program) Bytes() ([]byte, error) {
	w := codec.NewWriter(len(p)*consts.InstrLen, consts.MaxInt)
	for _, in := range p {
		w.PackUint64(in.word())
	}
	return w.Bytes(), w.Err()
}

// ParseProgram decodes the wire form produced by Bytes.
func ParseProgram(b []byte) (Program, error) {
	if len(b)%consts.InstrLen != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidInstruction, len(b))
	}
	r := codec.NewReader(b, consts.MaxInt)
	out := make(Program, 0, len(b)/consts.InstrLen)
	for !r.Empty() {
		out = append(out, decode(r.UnpackUint64(false)))
	}
	return out, r.Err()
}

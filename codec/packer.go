// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// Packer is a wrapper struct for the Packer struct
// from avalanchego.
type Packer struct {
	p *wrappers.Packer
}

// NewReader returns a Packer instance with the current byte array set
// to [byte] and it's MaxSize set to [limit].
func NewReader(src []byte, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: src, MaxSize: limit},
	}
}

// NewWriter returns a Packer instance with its MaxSize set to [limit].
func NewWriter(initial int, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: make([]byte, 0, initial), MaxSize: limit},
	}
}

func (p *Packer) PackByte(v byte) {
	p.p.PackByte(v)
}

func (p *Packer) UnpackByte() byte {
	return p.p.UnpackByte()
}

func (p *Packer) PackInt(v uint32) {
	p.p.PackInt(v)
}

func (p *Packer) UnpackInt(required bool) uint32 {
	v := p.p.UnpackInt()
	if required && v == 0 {
		p.addErr(fmt.Errorf("%w: Int field is not populated", ErrFieldNotPopulated))
	}
	return v
}

func (p *Packer) PackUint64(v uint64) {
	p.p.PackLong(v)
}

func (p *Packer) UnpackUint64(required bool) uint64 {
	v := p.p.UnpackLong()
	if required && v == 0 {
		p.addErr(fmt.Errorf("%w: Uint64 field is not populated", ErrFieldNotPopulated))
	}
	return v
}

func (p *Packer) PackBool(v bool) {
	p.p.PackBool(v)
}

func (p *Packer) UnpackBool() bool {
	return p.p.UnpackBool()
}

func (p *Packer) PackBytes(b []byte) {
	p.p.PackBytes(b)
}

// UnpackBytes unpacks a byte slice into [dest], erroring if the
// decoded length exceeds [limit].
func (p *Packer) UnpackBytes(limit int, required bool, dest *[]byte) {
	b := p.p.UnpackBytes()
	if limit >= 0 && len(b) > limit {
		p.addErr(fmt.Errorf("%w: %d > %d", ErrInvalidSize, len(b), limit))
		return
	}
	if required && len(b) == 0 {
		p.addErr(fmt.Errorf("%w: Bytes field is not populated", ErrFieldNotPopulated))
	}
	*dest = b
}

func (p *Packer) PackFixedBytes(b []byte) {
	p.p.PackFixedBytes(b)
}

func (p *Packer) UnpackFixedBytes(size int, dest *[]byte) {
	copy(*dest, p.p.UnpackFixedBytes(size))
}

func (p *Packer) Empty() bool {
	return len(p.p.Bytes) == p.p.Offset
}

func (p *Packer) Offset() int {
	return p.p.Offset
}

func (p *Packer) Bytes() []byte {
	return p.p.Bytes
}

func (p *Packer) Err() error {
	return p.p.Err
}

func (p *Packer) addErr(err error) {
	p.p.Errs.Add(err)
}

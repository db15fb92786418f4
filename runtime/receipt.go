// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"fmt"

	"github.com/embervm/embervm/codec"
	"github.com/embervm/embervm/consts"
)

type ReceiptType byte

const (
	ReceiptLog ReceiptType = iota
	ReceiptLogData
	ReceiptReturn
	ReceiptPanic
	ReceiptScriptResult
)

// ScriptStatus is the terminal outcome of one script execution.
type ScriptStatus byte

const (
	StatusSuccess ScriptStatus = iota
	StatusPanicked
)

func (s ScriptStatus) String() string {
	if s == StatusSuccess {
		return "Success"
	}
	return "Panicked"
}

// Receipt is one entry of the ordered execution log. Every run ends
// with a ScriptResultReceipt; a panicking run carries a PanicReceipt
// directly before it.
type Receipt interface {
	Type() ReceiptType
	Marshal() []byte
}

type LogReceipt struct {
	RA, RB, RC, RD uint64
}

func (*LogReceipt) Type() ReceiptType { return ReceiptLog }

func (r *LogReceipt) Marshal() []byte {
	w := codec.NewWriter(consts.ByteLen+4*consts.Uint64Len, consts.MaxInt)
	w.PackByte(byte(ReceiptLog))
	w.PackUint64(r.RA)
	w.PackUint64(r.RB)
	w.PackUint64(r.RC)
	w.PackUint64(r.RD)
	return w.Bytes()
}

type LogDataReceipt struct {
	RA, RB uint64
	Data   []byte
}

func (*LogDataReceipt) Type() ReceiptType { return ReceiptLogData }

func (r *LogDataReceipt) Marshal() []byte {
	w := codec.NewWriter(consts.ByteLen+2*consts.Uint64Len+codec.BytesLen(r.Data), consts.MaxInt)
	w.PackByte(byte(ReceiptLogData))
	w.PackUint64(r.RA)
	w.PackUint64(r.RB)
	w.PackBytes(r.Data)
	return w.Bytes()
}

type ReturnReceipt struct {
	Value uint64
}

func (*ReturnReceipt) Type() ReceiptType { return ReceiptReturn }

func (r *ReturnReceipt) Marshal() []byte {
	w := codec.NewWriter(consts.ByteLen+consts.Uint64Len, consts.MaxInt)
	w.PackByte(byte(ReceiptReturn))
	w.PackUint64(r.Value)
	return w.Bytes()
}

type PanicReceipt struct {
	Reason PanicReason
	PC     uint64
}

func (*PanicReceipt) Type() ReceiptType { return ReceiptPanic }

func (r *PanicReceipt) Marshal() []byte {
	w := codec.NewWriter(2*consts.ByteLen+consts.Uint64Len, consts.MaxInt)
	w.PackByte(byte(ReceiptPanic))
	w.PackByte(byte(r.Reason))
	w.PackUint64(r.PC)
	return w.Bytes()
}

type ScriptResultReceipt struct {
	Status  ScriptStatus
	GasUsed uint64
}

func (*ScriptResultReceipt) Type() ReceiptType { return ReceiptScriptResult }

func (r *ScriptResultReceipt) Marshal() []byte {
	w := codec.NewWriter(2*consts.ByteLen+consts.Uint64Len, consts.MaxInt)
	w.PackByte(byte(ReceiptScriptResult))
	w.PackByte(byte(r.Status))
	w.PackUint64(r.GasUsed)
	return w.Bytes()
}

// UnmarshalReceipt decodes a single receipt produced by Marshal.
func UnmarshalReceipt(b []byte) (Receipt, error) {
	r := codec.NewReader(b, consts.MaxInt)
	switch t := ReceiptType(r.UnpackByte()); t {
	case ReceiptLog:
		out := &LogReceipt{
			RA: r.UnpackUint64(false),
			RB: r.UnpackUint64(false),
			RC: r.UnpackUint64(false),
			RD: r.UnpackUint64(false),
		}
		return out, r.Err()
	case ReceiptLogData:
		out := &LogDataReceipt{
			RA: r.UnpackUint64(false),
			RB: r.UnpackUint64(false),
		}
		r.UnpackBytes(int(consts.MaxRAM), false, &out.Data)
		return out, r.Err()
	case ReceiptReturn:
		return &ReturnReceipt{Value: r.UnpackUint64(false)}, r.Err()
	case ReceiptPanic:
		return &PanicReceipt{
			Reason: PanicReason(r.UnpackByte()),
			PC:     r.UnpackUint64(false),
		}, r.Err()
	case ReceiptScriptResult:
		return &ScriptResultReceipt{
			Status:  ScriptStatus(r.UnpackByte()),
			GasUsed: r.UnpackUint64(false),
		}, r.Err()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownReceiptType, t)
	}
}

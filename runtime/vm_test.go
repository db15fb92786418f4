// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/embervm/embervm/consts"
)

func run(t *testing.T, prog Program) (*Interpreter, []Receipt) {
	t.Helper()
	require := require.New(t)

	vm, err := New(logging.NoLog{}, NewConfig())
	require.NoError(err)
	receipts, err := vm.Run(context.Background(), prog)
	require.NoError(err)
	require.NotEmpty(receipts)
	return vm, receipts
}

func assertSuccess(t *testing.T, receipts []Receipt) {
	t.Helper()
	require := require.New(t)

	last, ok := receipts[len(receipts)-1].(*ScriptResultReceipt)
	require.True(ok, "expected trailing script result receipt")
	require.Equal(StatusSuccess, last.Status)
}

func assertPanics(t *testing.T, receipts []Receipt, reason PanicReason) {
	t.Helper()
	require := require.New(t)

	require.GreaterOrEqual(len(receipts), 2)
	last, ok := receipts[len(receipts)-1].(*ScriptResultReceipt)
	require.True(ok, "expected trailing script result receipt")
	require.Equal(StatusPanicked, last.Status)
	p, ok := receipts[len(receipts)-2].(*PanicReceipt)
	require.True(ok, "expected panic receipt before script result")
	require.Equal(reason, p.Reason)
}

// setFullWord builds a 64-bit constant in [reg] from 16-bit chunks,
// since immediates are 24 bits on the wire.
func setFullWord(reg uint8, v uint64) []Instruction {
	ins := []Instruction{Movi(reg, uint32(v>>48)&0xFFFF)}
	for _, shift := range []uint{32, 16, 0} {
		ins = append(ins,
			Slli(reg, reg, 16),
			Ori(reg, reg, uint32(v>>shift)&0xFFFF),
		)
	}
	return ins
}

func TestLoadWord(t *testing.T) {
	require := require.New(t)

	vm, receipts := run(t, Program{
		Movi(0x10, 8),
		Aloc(0x10),
		Move(0x10, RegHP),
		Sw(0x10, RegOne, 0),
		Lw(0x13, 0x10, 0),
		Ret(RegOne),
	})
	assertSuccess(t, receipts)
	require.Equal(uint64(1), vm.Registers()[0x13])
}

func TestLoadWordUnalignedAllocation(t *testing.T) {
	require := require.New(t)

	// Nine allocated bytes leave the heap pointer unaligned; word
	// access behaves identically.
	vm, receipts := run(t, Program{
		Movi(0x10, 9),
		Aloc(0x10),
		Move(0x10, RegHP),
		Sw(0x10, RegOne, 0),
		Lw(0x13, 0x10, 0),
		Ret(RegOne),
	})
	assertSuccess(t, receipts)
	require.Equal(uint64(1), vm.Registers()[0x13])
}

func TestLoadByte(t *testing.T) {
	require := require.New(t)

	vm, receipts := run(t, Program{
		Movi(0x10, 8),
		Aloc(0x10),
		Move(0x10, RegHP),
		Sb(0x10, RegOne, 0),
		Lb(0x13, 0x10, 0),
		Ret(RegOne),
	})
	assertSuccess(t, receipts)
	require.Equal(uint64(1), vm.Registers()[0x13])
}

func TestStoreLoadLastByteOfMemory(t *testing.T) {
	require := require.New(t)

	vm, receipts := run(t, Program{
		Move(0x20, RegHP),
		Movi(0x10, 1),
		Aloc(0x10),
		Move(0x21, RegHP),
		Sb(RegHP, 0x10, 0),
		Lb(0x13, RegHP, 0),
		Ret(RegOne),
	})
	assertSuccess(t, receipts)
	regs := vm.Registers()
	require.Equal(regs[0x20]-1, regs[0x21])
	require.Equal(uint64(1), regs[0x13])
}

func TestStackAndHeapCannotOverlap(t *testing.T) {
	// Allocate almost all memory to the heap, then claim exactly the
	// remaining gap for the stack. With causeError set the claim is
	// one byte too large.
	for _, tc := range []struct {
		offset     uint64
		causeError bool
	}{
		{1, false},
		{2, false},
		{1, true},
		{2, true},
	} {
		tc := tc
		t.Run(fmt.Sprintf("offset=%d,causeError=%t", tc.offset, tc.causeError), func(t *testing.T) {
			const initBytes = 12000 // larger than the stack base at start

			prog := Program(setFullWord(0x10, defaultCapacity-initBytes))
			prog = append(prog,
				Aloc(0x10),
				Movi(0x10, uint32(initBytes-tc.offset)),
				Sub(0x10, 0x10, RegSP),
				Aloc(0x10),
			)
			claim := tc.offset
			if tc.causeError {
				claim++
			}
			prog = append(prog,
				Cfei(uint32(claim)),
				Ret(RegOne),
			)

			_, receipts := run(t, prog)
			if tc.causeError {
				assertPanics(t, receipts, GrowthOverlap)
			} else {
				assertSuccess(t, receipts)
			}
		})
	}
}

func TestDynamicCallFrameOps(t *testing.T) {
	require := require.New(t)

	const (
		extendAmount = 100
		shrinkAmount = 50
	)
	_, receipts := run(t, Program{
		Log(RegSP, RegZero, RegZero, RegZero),
		Movi(0x10, extendAmount),
		Cfe(0x10),
		Log(RegSP, RegZero, RegZero, RegZero),
		Movi(0x11, shrinkAmount),
		Cfs(0x11),
		Ret(RegSP),
	})
	assertSuccess(t, receipts)

	initial, ok := receipts[0].(*LogReceipt)
	require.True(ok)
	extended, ok := receipts[1].(*LogReceipt)
	require.True(ok)
	shrunk, ok := receipts[2].(*ReturnReceipt)
	require.True(ok)

	require.Equal(initial.RA+extendAmount, extended.RA)
	require.Equal(initial.RA+extendAmount-shrinkAmount, shrunk.Value)
}

func TestShrinkBelowFrameBase(t *testing.T) {
	// The script frame owns no stack bytes yet, so shrinking by the
	// stack pointer underflows the frame.
	_, receipts := run(t, Program{
		Cfs(RegSP),
		Ret(RegOne),
	})
	assertPanics(t, receipts, ShrinkUnderflow)
}

func TestAllocBeyondCapacity(t *testing.T) {
	// 1<<27 exceeds the whole region: the request itself runs off the
	// end before any overlap with the stack is possible.
	_, receipts := run(t, Program{
		Slli(0x10, RegOne, 27),
		Aloc(0x10),
		Ret(RegOne),
	})
	assertPanics(t, receipts, OutOfCapacity)
}

func TestAllocCollidesWithStack(t *testing.T) {
	// 1<<26 equals the region size; the heap request fits capacity but
	// meets the stack, which is a distinct failure.
	_, receipts := run(t, Program{
		Slli(0x10, RegOne, 26),
		Aloc(0x10),
		Ret(RegOne),
	})
	assertPanics(t, receipts, GrowthOverlap)
}

func TestMemClear(t *testing.T) {
	for _, count := range []uint32{0, 1, 7, 8, 9, 255, 256, 257} {
		for _, half := range []bool{false, true} {
			for _, immediate := range []bool{false, true} {
				count, half, immediate := count, half, immediate
				t.Run(fmt.Sprintf("count=%d,half=%t,imm=%t", count, half, immediate), func(t *testing.T) {
					require := require.New(t)

					// Allocate one extra byte to check that the byte
					// after the cleared range survives.
					prog := Program{
						Movi(0x10, count+1),
						Aloc(0x10),
						Movi(0x11, 1),
					}
					for i := uint32(0); i < count+1; i++ {
						prog = append(prog, Sb(RegHP, 0x11, i))
					}
					if immediate {
						cleared := count
						if half {
							cleared = count / 2
						}
						prog = append(prog, Mcli(RegHP, cleared))
					} else {
						prog = append(prog, Movi(0x10, count))
						if half {
							prog = append(prog, Divi(0x10, 0x10, 2))
						}
						prog = append(prog, Mcl(RegHP, 0x10))
					}
					prog = append(prog,
						Movi(0x10, count+1),
						Logd(RegZero, RegZero, RegHP, 0x10),
						Ret(RegOne),
					)

					_, receipts := run(t, prog)
					assertSuccess(t, receipts)

					logd, ok := receipts[0].(*LogDataReceipt)
					require.True(ok, "expected log data receipt")
					c := int(count)
					require.Len(logd.Data, c+1)
					cleared := c
					if half {
						cleared = c / 2
					}
					for i := 0; i < cleared; i++ {
						require.Zero(logd.Data[i])
					}
					for i := cleared; i < c+1; i++ {
						require.Equal(byte(1), logd.Data[i])
					}
				})
			}
		}
	}
}

func TestMemCopy(t *testing.T) {
	for _, count := range []uint32{0, 1, 7, 8, 9, 255, 256, 257} {
		for _, immediate := range []bool{false, true} {
			count, immediate := count, immediate
			t.Run(fmt.Sprintf("count=%d,imm=%t", count, immediate), func(t *testing.T) {
				require := require.New(t)

				// Twice count+1 bytes: ones in the lower half, twos in
				// the upper; copying count bytes up must leave the very
				// last byte as 2.
				prog := Program{
					Movi(0x10, (count+1)*2),
					Aloc(0x10),
					Movi(0x11, 1),
					Movi(0x12, 2),
				}
				for i := uint32(0); i < (count+1)*2; i++ {
					src := uint8(0x11)
					if i >= count+1 {
						src = 0x12
					}
					prog = append(prog, Sb(RegHP, src, i))
				}
				prog = append(prog, Addi(0x11, RegHP, count+1))
				if immediate {
					prog = append(prog, Mcpi(0x11, RegHP, count))
				} else {
					prog = append(prog,
						Movi(0x10, count),
						Mcp(0x11, RegHP, 0x10),
					)
				}
				prog = append(prog,
					Movi(0x10, (count+1)*2),
					Logd(RegZero, RegZero, RegHP, 0x10),
					Ret(RegOne),
				)

				_, receipts := run(t, prog)
				assertSuccess(t, receipts)

				logd, ok := receipts[0].(*LogDataReceipt)
				require.True(ok, "expected log data receipt")
				c := int(count)
				require.Len(logd.Data, (c+1)*2)
				expected := make([]byte, 0, (c+1)*2)
				for i := 0; i < c*2+1; i++ {
					expected = append(expected, 1)
				}
				expected = append(expected, 2)
				require.Equal(expected, logd.Data)
			})
		}
	}
}

func TestMemEqual(t *testing.T) {
	require := require.New(t)

	_, receipts := run(t, Program{
		Movi(0x20, 16),
		Aloc(0x20),
		Movi(0x30, 1234),
		Movi(0x31, 1235),
		Sw(RegHP, 0x30, 0),
		Sw(RegHP, 0x31, 1),
		Addi(0x32, RegHP, 8),
		Movi(0x33, 8),
		Meq(0x20, RegHP, RegHP, 0x33),
		Meq(0x21, RegHP, 0x32, 0x33),
		Log(0x20, 0x21, 0x22, 0x23),
		Ret(RegOne),
	})
	assertSuccess(t, receipts)

	logr, ok := receipts[0].(*LogReceipt)
	require.True(ok)
	require.Equal(uint64(1), logr.RA)
	require.Zero(logr.RB)
	require.Zero(logr.RC)
	require.Zero(logr.RD)
}

func TestHeapNotExecutable(t *testing.T) {
	// Derive a jump index from the heap pointer; the target sits far
	// beyond the executable boundary.
	_, receipts := run(t, Program{
		Movi(0x10, 16),
		Aloc(0x10),
		Sub(0x10, RegHP, RegIS),
		Divi(0x10, 0x10, consts.InstrLen),
		Jmp(0x10),
		Ret(RegOne),
	})
	assertPanics(t, receipts, NotExecutable)
}

func TestShrunkStackRemainsReadable(t *testing.T) {
	require := require.New(t)

	const nonce = 12345
	_, receipts := run(t, Program{
		Movi(0x21, nonce),
		Cfei(8),
		Sw(RegSSP, 0x21, 0),
		Cfsi(8),
		Lw(0x20, RegSSP, 0),
		Ret(0x20),
	})
	assertSuccess(t, receipts)

	ret, ok := receipts[0].(*ReturnReceipt)
	require.True(ok)
	require.Equal(uint64(nonce), ret.Value)
}

func TestStackExtensionDoesntZeroMemory(t *testing.T) {
	require := require.New(t)

	const canary = 12345
	_, receipts := run(t, Program{
		Movi(0x21, canary),
		Cfei(8),
		Sw(RegSSP, 0x21, 0),
		Cfsi(8),
		Cfei(8),
		Lw(0x20, RegSSP, 0),
		Ret(0x20),
	})
	assertSuccess(t, receipts)

	ret, ok := receipts[0].(*ReturnReceipt)
	require.True(ok)
	require.Equal(uint64(canary), ret.Value)
}

func TestShrunkStackIsNotWritable(t *testing.T) {
	_, receipts := run(t, Program{
		Movi(0x21, 12345),
		Cfei(8),
		Sw(RegSSP, 0x21, 0),
		Cfsi(8),
		Sw(RegSSP, 0x21, 0),
		Ret(0x20),
	})
	assertPanics(t, receipts, WriteOwnershipViolation)
}

func TestHeapAllocationZeroesMemory(t *testing.T) {
	require := require.New(t)

	const canary = 12345
	prog := Program(setFullWord(0x20, defaultCapacity))
	prog = append(prog,
		// Extend the stack over the whole region and write a canary to
		// the last word.
		Sub(0x21, 0x20, RegSP),
		Cfe(0x21),
		Subi(0x21, RegSP, 8),
		Movi(0x22, canary),
		Sw(0x21, 0x22, 0),
		// Hand the word back and let the heap claim it.
		Cfsi(8),
		Movi(0x23, 8),
		Aloc(0x23),
		Lw(0x24, 0x21, 0),
		Ret(0x24),
	)

	_, receipts := run(t, prog)
	assertSuccess(t, receipts)

	ret, ok := receipts[0].(*ReturnReceipt)
	require.True(ok)
	require.Zero(ret.Value)
}

func TestWriteReservedRegisterPanics(t *testing.T) {
	_, receipts := run(t, Program{
		Movi(RegSP, 1),
		Ret(RegOne),
	})
	assertPanics(t, receipts, ReservedRegister)
}

func TestInvalidOpcodePanics(t *testing.T) {
	_, receipts := run(t, Program{
		{Op: Opcode(0xff)},
		Ret(RegOne),
	})
	assertPanics(t, receipts, InvalidInstruction)
}

func TestDivisionByZeroPanics(t *testing.T) {
	_, receipts := run(t, Program{
		Divi(0x10, RegOne, 0),
		Ret(RegOne),
	})
	assertPanics(t, receipts, ArithmeticFault)
}

func TestRunningOffCodeEndPanics(t *testing.T) {
	// Without a return the program counter walks past the executable
	// boundary.
	_, receipts := run(t, Program{
		Noop(),
	})
	assertPanics(t, receipts, NotExecutable)
}

func TestOutOfGas(t *testing.T) {
	require := require.New(t)

	vm, err := New(logging.NoLog{}, NewConfig().SetMaxGas(100))
	require.NoError(err)

	// Tight jump loop that never returns.
	receipts, err := vm.Run(context.Background(), Program{
		Movi(0x10, 0),
		Jmp(0x10),
	})
	require.NoError(err)
	assertPanics(t, receipts, OutOfGas)

	last := receipts[len(receipts)-1].(*ScriptResultReceipt)
	require.Equal(uint64(100), last.GasUsed)
}

func TestGasAccounting(t *testing.T) {
	require := require.New(t)

	_, receipts := run(t, Program{
		Movi(0x10, 64),
		Aloc(0x10),
		Ret(RegOne),
	})
	assertSuccess(t, receipts)

	// Three instructions plus 64 bytes of heap traffic.
	last := receipts[len(receipts)-1].(*ScriptResultReceipt)
	require.Equal(uint64(3+64), last.GasUsed)
}

func TestCursorRegistersTrackLayout(t *testing.T) {
	require := require.New(t)

	vm, receipts := run(t, Program{
		Movi(0x10, 32),
		Aloc(0x10),
		Cfei(16),
		Ret(RegOne),
	})
	assertSuccess(t, receipts)

	regs := vm.Registers()
	mem := vm.Memory()
	require.Equal(mem.StackTop(), regs[RegSP])
	require.Equal(mem.FrameBase(), regs[RegSSP])
	require.Equal(mem.HeapBottom(), regs[RegHP])
	require.Equal(defaultCapacity-32, regs[RegHP])
	require.Equal(mem.CodeEnd()+16, regs[RegSP])
}

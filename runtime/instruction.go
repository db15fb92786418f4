// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

// Opcode identifies one machine operation.
type Opcode byte

const (
	OpNoop Opcode = iota
	OpRet
	OpMove
	OpMovi
	OpAdd
	OpAddi
	OpSub
	OpSubi
	OpDivi
	OpSlli
	OpOri
	OpJmp
	OpLb
	OpLw
	OpSb
	OpSw
	OpAloc
	OpCfe
	OpCfei
	OpCfs
	OpCfsi
	OpMcl
	OpMcli
	OpMcp
	OpMcpi
	OpMeq
	OpLog
	OpLogd
)

// MaxImm is the largest immediate an instruction can carry on the
// wire. Larger constants are built in registers with Slli/Ori chains.
const MaxImm = 1<<24 - 1

// Instruction is one decoded machine instruction. The encoded form is
// a single big-endian word: opcode, four register operands, and a
// 24-bit immediate.
type Instruction struct {
	Op         Opcode
	A, B, C, D uint8
	Imm        uint32
}

func (i Instruction) word() uint64 {
	return uint64(i.Op)<<56 |
		uint64(i.A)<<48 |
		uint64(i.B)<<40 |
		uint64(i.C)<<32 |
		uint64(i.D)<<24 |
		uint64(i.Imm&MaxImm)
}

func decode(w uint64) Instruction {
	return Instruction{
		Op:  Opcode(w >> 56),
		A:   uint8(w >> 48),
		B:   uint8(w >> 40),
		C:   uint8(w >> 32),
		D:   uint8(w >> 24),
		Imm: uint32(w & MaxImm),
	}
}

// Assembler constructors, one per opcode. Operand order follows the
// mnemonic form: destinations first, then sources, then immediates.
// Stores are the exception: the first operand is the address register.

func Noop() Instruction { return Instruction{Op: OpNoop} }

// Ret returns the value of register [a] and halts the script.
func Ret(a uint8) Instruction { return Instruction{Op: OpRet, A: a} }

func Move(a, b uint8) Instruction { return Instruction{Op: OpMove, A: a, B: b} }

func Movi(a uint8, imm uint32) Instruction { return Instruction{Op: OpMovi, A: a, Imm: imm} }

func Add(a, b, c uint8) Instruction { return Instruction{Op: OpAdd, A: a, B: b, C: c} }

func Addi(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpAddi, A: a, B: b, Imm: imm} }

func Sub(a, b, c uint8) Instruction { return Instruction{Op: OpSub, A: a, B: b, C: c} }

func Subi(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpSubi, A: a, B: b, Imm: imm} }

func Divi(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpDivi, A: a, B: b, Imm: imm} }

func Slli(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpSlli, A: a, B: b, Imm: imm} }

func Ori(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpOri, A: a, B: b, Imm: imm} }

// Jmp transfers control to instruction index [a] relative to the code
// start.
func Jmp(a uint8) Instruction { return Instruction{Op: OpJmp, A: a} }

// Lb loads the byte at address b+imm into [a].
func Lb(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpLb, A: a, B: b, Imm: imm} }

// Lw loads the word at address b+imm*8 into [a].
func Lw(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpLw, A: a, B: b, Imm: imm} }

// Sb stores the low byte of [b] at address a+imm.
func Sb(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpSb, A: a, B: b, Imm: imm} }

// Sw stores the word in [b] at address a+imm*8.
func Sw(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpSw, A: a, B: b, Imm: imm} }

// Aloc grows the heap by [a] bytes; the fresh bytes read zero.
func Aloc(a uint8) Instruction { return Instruction{Op: OpAloc, A: a} }

// Cfe extends the current call frame by [a] bytes.
func Cfe(a uint8) Instruction { return Instruction{Op: OpCfe, A: a} }

func Cfei(imm uint32) Instruction { return Instruction{Op: OpCfei, Imm: imm} }

// Cfs shrinks the current call frame by [a] bytes.
func Cfs(a uint8) Instruction { return Instruction{Op: OpCfs, A: a} }

func Cfsi(imm uint32) Instruction { return Instruction{Op: OpCfsi, Imm: imm} }

// Mcl clears [b] bytes at address [a].
func Mcl(a, b uint8) Instruction { return Instruction{Op: OpMcl, A: a, B: b} }

func Mcli(a uint8, imm uint32) Instruction { return Instruction{Op: OpMcli, A: a, Imm: imm} }

// Mcp copies [c] bytes from address [b] to address [a].
func Mcp(a, b, c uint8) Instruction { return Instruction{Op: OpMcp, A: a, B: b, C: c} }

func Mcpi(a, b uint8, imm uint32) Instruction { return Instruction{Op: OpMcpi, A: a, B: b, Imm: imm} }

// Meq sets [a] to 1 if the [d] bytes at addresses [b] and [c] are
// equal, else 0.
func Meq(a, b, c, d uint8) Instruction { return Instruction{Op: OpMeq, A: a, B: b, C: c, D: d} }

// Log emits a receipt with the values of four registers.
func Log(a, b, c, d uint8) Instruction { return Instruction{Op: OpLog, A: a, B: b, C: c, D: d} }

// Logd emits a receipt carrying [d] bytes of memory at address [c].
func Logd(a, b, c, d uint8) Instruction { return Instruction{Op: OpLogd, A: a, B: b, C: c, D: d} }

// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package runtime executes transaction scripts on the register
// machine. The dispatcher decodes one fixed-width instruction at a
// time, charges gas, and drives every memory access through the
// linear-memory manager, so the ownership and boundary rules hold for
// each instruction. Failures become typed panic receipts; the memory
// region and receipts live only for one run.
package runtime

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	safemath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/embervm/embervm/consts"
	"github.com/embervm/embervm/memory"
)

// Interpreter runs scripts strictly sequentially against a fresh
// memory region per run. A single Interpreter is not safe for
// concurrent use; instances share nothing, so one per transaction runs
// in parallel trivially.
type Interpreter struct {
	log      logging.Logger
	tracer   trace.Tracer
	cfg      *Config
	metrics  *metrics
	registry *prometheus.Registry

	mem      *memory.Memory
	regs     Registers
	receipts []Receipt
	gasUsed  uint64
}

func New(log logging.Logger, cfg *Config) (*Interpreter, error) {
	registry, m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	return &Interpreter{
		log:      log,
		tracer:   trace.Noop,
		cfg:      cfg,
		metrics:  m,
		registry: registry,
	}, nil
}

// WithTracer attaches a tracer to future runs.
func (vm *Interpreter) WithTracer(t trace.Tracer) *Interpreter {
	vm.tracer = t
	return vm
}

// MetricsRegistry exposes the interpreter's metrics for the embedding
// node to gather.
func (vm *Interpreter) MetricsRegistry() *prometheus.Registry {
	return vm.registry
}

// Memory returns the region of the last run, for callers inspecting
// cursor state after execution.
func (vm *Interpreter) Memory() *memory.Memory {
	return vm.mem
}

// Registers returns a copy of the register file of the last run.
func (vm *Interpreter) Registers() Registers {
	return vm.regs
}

// Run executes [program] from its first instruction and returns the
// ordered receipts. Execution failures abort the script with a Panic
// receipt rather than an error; the error return covers setup problems
// only.
func (vm *Interpreter) Run(ctx context.Context, program Program) ([]Receipt, error) {
	_, span := vm.tracer.Start(ctx, "Interpreter.Run")
	defer span.End()

	code, err := program.Bytes()
	if err != nil {
		return nil, err
	}
	vm.mem = memory.New(vm.cfg.capacity)
	if err := vm.mem.LoadCode(code); err != nil {
		return nil, err
	}
	vm.regs = Registers{}
	vm.regs[RegOne] = 1
	vm.regs[RegGGas] = vm.cfg.maxGas
	vm.regs[RegCGas] = vm.cfg.maxGas
	vm.syncCursors()
	vm.receipts = nil
	vm.gasUsed = 0

	vm.metrics.scriptsExecuted.Inc()
	vm.log.Debug("running script",
		zap.Int("instructions", len(program)),
		zap.Uint64("maxGas", vm.cfg.maxGas),
	)
	for !vm.step() {
	}
	vm.log.Debug("script finished",
		zap.Uint64("gasUsed", vm.gasUsed),
		zap.Int("receipts", len(vm.receipts)),
	)
	return vm.receipts, nil
}

// syncCursors copies the layout cursors into the visible register
// file. Called after load and after every successful growth operation
// so programs always observe the tracker's state.
func (vm *Interpreter) syncCursors() {
	vm.regs[RegSP] = vm.mem.StackTop()
	vm.regs[RegSSP] = vm.mem.FrameBase()
	vm.regs[RegHP] = vm.mem.HeapBottom()
}

func (vm *Interpreter) emit(r Receipt) {
	vm.receipts = append(vm.receipts, r)
}

// step executes the instruction under pc and reports whether the
// script has finished.
func (vm *Interpreter) step() bool {
	pc := vm.regs[RegPC]
	done, err := vm.execute(pc)
	if err != nil {
		reason := reasonFromError(err)
		vm.log.Debug("script panicked",
			zap.Uint64("pc", pc),
			zap.Stringer("reason", reason),
			zap.Error(err),
		)
		vm.metrics.scriptsPanicked.Inc()
		vm.emit(&PanicReceipt{Reason: reason, PC: pc})
		vm.emit(&ScriptResultReceipt{Status: StatusPanicked, GasUsed: vm.gasUsed})
		return true
	}
	return done
}

func (vm *Interpreter) execute(pc uint64) (bool, error) {
	if !vm.mem.IsExecutable(pc) {
		return false, fmt.Errorf("%w: pc %d", memory.ErrNotExecutable, pc)
	}
	raw, err := vm.mem.ReadWord(pc)
	if err != nil {
		return false, err
	}
	in := decode(raw)
	if err := vm.chargeGas(1); err != nil {
		return false, err
	}
	vm.metrics.instructionsExecuted.Inc()

	regs := &vm.regs
	next := pc + consts.InstrLen

	switch in.Op {
	case OpNoop:

	case OpRet:
		v, err := regs.get(in.A)
		if err != nil {
			return false, err
		}
		vm.emit(&ReturnReceipt{Value: v})
		vm.emit(&ScriptResultReceipt{Status: StatusSuccess, GasUsed: vm.gasUsed})
		return true, nil

	case OpMove:
		b, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		if err := regs.set(in.A, b); err != nil {
			return false, err
		}

	case OpMovi:
		if err := regs.set(in.A, uint64(in.Imm)); err != nil {
			return false, err
		}

	case OpAdd, OpSub:
		b, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		c, err := regs.get(in.C)
		if err != nil {
			return false, err
		}
		v := b + c
		if in.Op == OpSub {
			v = b - c
		}
		if err := regs.set(in.A, v); err != nil {
			return false, err
		}

	case OpAddi, OpSubi:
		b, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		v := b + uint64(in.Imm)
		if in.Op == OpSubi {
			v = b - uint64(in.Imm)
		}
		if err := regs.set(in.A, v); err != nil {
			return false, err
		}

	case OpDivi:
		b, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		if in.Imm == 0 {
			return false, fmt.Errorf("%w: division by zero", ErrArithmetic)
		}
		if err := regs.set(in.A, b/uint64(in.Imm)); err != nil {
			return false, err
		}

	case OpSlli:
		b, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		var v uint64
		if in.Imm < 64 {
			v = b << in.Imm
		}
		if err := regs.set(in.A, v); err != nil {
			return false, err
		}

	case OpOri:
		b, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		if err := regs.set(in.A, b|uint64(in.Imm)); err != nil {
			return false, err
		}

	case OpJmp:
		v, err := regs.get(in.A)
		if err != nil {
			return false, err
		}
		offset, err := safemath.Mul64(v, uint64(consts.InstrLen))
		if err != nil {
			return false, fmt.Errorf("%w: jump offset overflow", memory.ErrOutOfCapacity)
		}
		target, err := vm.addr(regs[RegIS], offset)
		if err != nil {
			return false, err
		}
		if !vm.mem.IsExecutable(target) {
			return false, fmt.Errorf("%w: jump to %d", memory.ErrNotExecutable, target)
		}
		next = target

	case OpLb, OpLw:
		base, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		var v uint64
		if in.Op == OpLb {
			addr, err := vm.addr(base, uint64(in.Imm))
			if err != nil {
				return false, err
			}
			b, err := vm.mem.ReadByte(addr)
			if err != nil {
				return false, err
			}
			v = uint64(b)
		} else {
			addr, err := vm.addr(base, uint64(in.Imm)*consts.WordLen)
			if err != nil {
				return false, err
			}
			v, err = vm.mem.ReadWord(addr)
			if err != nil {
				return false, err
			}
		}
		if err := regs.set(in.A, v); err != nil {
			return false, err
		}

	case OpSb, OpSw:
		base, err := regs.get(in.A)
		if err != nil {
			return false, err
		}
		v, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		if in.Op == OpSb {
			addr, err := vm.addr(base, uint64(in.Imm))
			if err != nil {
				return false, err
			}
			if err := vm.mem.WriteByte(addr, byte(v)); err != nil {
				return false, err
			}
		} else {
			addr, err := vm.addr(base, uint64(in.Imm)*consts.WordLen)
			if err != nil {
				return false, err
			}
			if err := vm.mem.WriteWord(addr, v); err != nil {
				return false, err
			}
		}

	case OpAloc:
		n, err := regs.get(in.A)
		if err != nil {
			return false, err
		}
		if err := vm.chargeGas(n); err != nil {
			return false, err
		}
		if _, err := vm.mem.Alloc(n); err != nil {
			return false, err
		}
		vm.metrics.heapBytesAllocated.Add(float64(n))
		vm.syncCursors()

	case OpCfe, OpCfei:
		n := uint64(in.Imm)
		if in.Op == OpCfe {
			v, err := regs.get(in.A)
			if err != nil {
				return false, err
			}
			n = v
		}
		if err := vm.chargeGas(n); err != nil {
			return false, err
		}
		if _, err := vm.mem.ExtendStack(n); err != nil {
			return false, err
		}
		vm.metrics.stackBytesExtended.Add(float64(n))
		vm.syncCursors()

	case OpCfs, OpCfsi:
		n := uint64(in.Imm)
		if in.Op == OpCfs {
			v, err := regs.get(in.A)
			if err != nil {
				return false, err
			}
			n = v
		}
		if _, err := vm.mem.ShrinkStack(n); err != nil {
			return false, err
		}
		vm.syncCursors()

	case OpMcl, OpMcli:
		addr, err := regs.get(in.A)
		if err != nil {
			return false, err
		}
		count := uint64(in.Imm)
		if in.Op == OpMcl {
			v, err := regs.get(in.B)
			if err != nil {
				return false, err
			}
			count = v
		}
		if err := vm.chargeGas(count); err != nil {
			return false, err
		}
		if err := vm.mem.Clear(addr, count); err != nil {
			return false, err
		}
		vm.metrics.bulkBytesTouched.Add(float64(count))

	case OpMcp, OpMcpi:
		dst, err := regs.get(in.A)
		if err != nil {
			return false, err
		}
		src, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		count := uint64(in.Imm)
		if in.Op == OpMcp {
			v, err := regs.get(in.C)
			if err != nil {
				return false, err
			}
			count = v
		}
		if err := vm.chargeGas(count); err != nil {
			return false, err
		}
		if err := vm.mem.Copy(dst, src, count); err != nil {
			return false, err
		}
		vm.metrics.bulkBytesTouched.Add(float64(count))

	case OpMeq:
		a1, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		a2, err := regs.get(in.C)
		if err != nil {
			return false, err
		}
		count, err := regs.get(in.D)
		if err != nil {
			return false, err
		}
		if err := vm.chargeGas(count); err != nil {
			return false, err
		}
		eq, err := vm.mem.Equal(a1, a2, count)
		if err != nil {
			return false, err
		}
		var v uint64
		if eq {
			v = 1
		}
		if err := regs.set(in.A, v); err != nil {
			return false, err
		}

	case OpLog:
		var vals [4]uint64
		for i, idx := range []uint8{in.A, in.B, in.C, in.D} {
			v, err := regs.get(idx)
			if err != nil {
				return false, err
			}
			vals[i] = v
		}
		vm.emit(&LogReceipt{RA: vals[0], RB: vals[1], RC: vals[2], RD: vals[3]})

	case OpLogd:
		ra, err := regs.get(in.A)
		if err != nil {
			return false, err
		}
		rb, err := regs.get(in.B)
		if err != nil {
			return false, err
		}
		addr, err := regs.get(in.C)
		if err != nil {
			return false, err
		}
		count, err := regs.get(in.D)
		if err != nil {
			return false, err
		}
		if err := vm.chargeGas(count); err != nil {
			return false, err
		}
		data, err := vm.mem.Read(addr, count)
		if err != nil {
			return false, err
		}
		vm.emit(&LogDataReceipt{RA: ra, RB: rb, Data: data})

	default:
		return false, fmt.Errorf("%w: opcode %d", ErrInvalidInstruction, in.Op)
	}

	vm.regs[RegPC] = next
	return false, nil
}

// addr computes base+offset with overflow reported as a capacity
// failure, never wraparound.
func (vm *Interpreter) addr(base, offset uint64) (uint64, error) {
	addr, err := safemath.Add64(base, offset)
	if err != nil {
		return 0, fmt.Errorf("%w: address overflow", memory.ErrOutOfCapacity)
	}
	return addr, nil
}

func (vm *Interpreter) chargeGas(units uint64) error {
	used, err := safemath.Add64(vm.gasUsed, units)
	if err != nil || used > vm.cfg.maxGas {
		vm.gasUsed = vm.cfg.maxGas
		vm.regs[RegGGas] = 0
		vm.regs[RegCGas] = 0
		return fmt.Errorf("%w: %d units requested", ErrOutOfGas, units)
	}
	vm.gasUsed = used
	vm.regs[RegGGas] = vm.cfg.maxGas - used
	vm.regs[RegCGas] = vm.regs[RegGGas]
	return nil
}

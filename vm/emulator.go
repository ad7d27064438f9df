// Package vm implements the functional instruction-set simulator: a
// plain sequential interpreter used only as a reference oracle
// against which the pipelined simulator's final memory state is
// checked. It has no pipeline latches, no hazards, and no DMA
// concurrency — DMA_START/DMA_STATUS are serviced synchronously as
// a blocking copy, since there is nothing else running to observe
// the engine mid-flight.
package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/foqara2001/sp/isa"
	"github.com/foqara2001/sp/trace"
)

// ErrMaxInstructionsExceeded is returned by Run when the instruction
// cap configured via WithMaxInstructions is reached without HLT. main
// uses this to distinguish a runaway program from an I/O or argument
// error at the process-exit-code level.
var ErrMaxInstructionsExceeded = errors.New("vm: exceeded max instruction count without HLT")

// Option configures an Emulator at construction time.
type Option func(*Emulator)

// WithMaxInstructions caps the number of instructions the emulator
// will execute before it reports a runaway-execution error, guarding
// against programs that never reach HLT.
func WithMaxInstructions(n uint64) Option {
	return func(e *Emulator) { e.maxInstructions = n }
}

// WithTraceWriter directs per-instruction trace blocks to w, in the
// same block format the pipelined simulator emits.
func WithTraceWriter(w io.Writer) Option {
	return func(e *Emulator) { e.trace = w }
}

// Emulator is the sequential reference interpreter.
type Emulator struct {
	regs  *RegFile
	srami *Memory
	sramd *Memory
	pc    uint32

	halted  bool
	retired uint64

	maxInstructions uint64
	trace           io.Writer

	dmaBusy    bool
	dmaSrc     uint32
	dmaDst     uint32
	dmaLen     uint32
	dmaCounter uint32
}

// NewEmulator builds an emulator over the given register file and the
// two SRAMs (instruction fetch reads srami; LD/ST/DMA operate on
// sramd), ready to execute starting at pc 0.
func NewEmulator(regs *RegFile, srami, sramd *Memory, opts ...Option) *Emulator {
	e := &Emulator{regs: regs, srami: srami, sramd: sramd, maxInstructions: 10_000_000}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SRAMI returns the instruction memory, for dumping to srami_out.txt.
func (e *Emulator) SRAMI() *Memory { return e.srami }

// SRAMD returns the data memory, for dumping to sramd_out.txt.
func (e *Emulator) SRAMD() *Memory { return e.sramd }

// Halted reports whether the program has reached HLT.
func (e *Emulator) Halted() bool { return e.halted }

// PC returns the current program counter.
func (e *Emulator) PC() uint32 { return e.pc }

// Run executes instructions until HLT or the instruction cap is
// exceeded. It returns an error only for the runaway-execution case;
// a clean HLT returns nil.
func (e *Emulator) Run() error {
	for !e.halted {
		if e.retired >= e.maxInstructions {
			return fmt.Errorf("%w: %d", ErrMaxInstructionsExceeded, e.maxInstructions)
		}
		e.step()
	}
	return nil
}

func (e *Emulator) step() {
	pc := e.pc
	word := isa.Word(e.srami.Read(pc))
	inst := isa.Decode(word)

	regs := e.regs.Snapshot()
	a := isa.OperandValue(inst.Src0, inst.Immediate, regs)
	b := isa.OperandValue(inst.Src1, inst.Immediate, regs)
	if inst.Opcode == isa.JIN {
		a = isa.OperandValue(inst.Dst, inst.Immediate, regs)
	}
	if inst.Opcode == isa.LHI {
		a = e.regs.ReadReg(inst.Dst)
		b = inst.Immediate & 0xFFFF
	}

	nextPC := pc + 1
	result := uint32(0)

	switch {
	case inst.Opcode == isa.LD:
		result = e.sramd.Read(b)
		e.regs.WriteReg(inst.Dst, result)

	case inst.Opcode == isa.ST:
		e.sramd.Write(b, a)

	case inst.Opcode == isa.DMAStart:
		if !e.dmaBusy {
			e.dmaSrc, e.dmaDst, e.dmaLen, e.dmaCounter, e.dmaBusy = a, b, inst.Immediate, 0, true
			e.runDMAToCompletion()
		}

	case inst.Opcode == isa.DMAStatus:
		if e.dmaBusy {
			result = 1
		}
		e.regs.WriteReg(inst.Dst, result)

	case inst.Opcode.IsConditionalBranch():
		if isa.BranchTaken(inst.Opcode, a, b) {
			e.regs.WriteReg(7, pc)
			nextPC = inst.Immediate
		}

	case inst.Opcode == isa.JIN:
		e.regs.WriteReg(7, pc)
		nextPC = a

	case inst.Opcode == isa.HLT:
		e.halted = true

	default:
		// ADD/SUB/LSF/RSF/AND/OR/XOR/LHI; unknown opcodes
		// (12..15, 21..23, 25..31) fall through ALUResult's error
		// and are treated as a no-op, per the spec's "Unknown
		// opcode in exec0" rule.
		if r, err := isa.ALUResult(inst.Opcode, a, b); err == nil {
			result = r
			e.regs.WriteReg(inst.Dst, result)
		}
	}

	e.traceInst(pc, inst, regs, trace.ExecLine(inst, a, b, result, nextPC&0xFFFF))

	e.retired++
	e.pc = nextPC & 0xFFFF
}

// runDMAToCompletion drains the entire copy synchronously: the ISS
// has no concurrent ticking engine to interleave with, so a DMA_START
// behaves as an instantaneous blocking copy from the oracle's point
// of view. It still performs the copy word-by-word in ascending
// counter order so overlapping-region behavior matches the pipeline.
func (e *Emulator) runDMAToCompletion() {
	for e.dmaCounter < e.dmaLen {
		v := e.sramd.Read(e.dmaSrc + e.dmaCounter)
		e.sramd.Write(e.dmaDst+e.dmaCounter, v)
		e.dmaCounter++
	}
	e.dmaBusy = false
}

func (e *Emulator) traceInst(pc uint32, inst isa.Instruction, regs [8]uint32, execLine string) {
	if e.trace == nil {
		return
	}
	trace.WriteInstructionBlock(e.trace, e.retired, pc, inst, regs, execLine)
}

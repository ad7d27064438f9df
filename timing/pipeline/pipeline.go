package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/foqara2001/sp/isa"
	"github.com/foqara2001/sp/trace"
)

// isWritingOpcode reports whether opcode writes a result to Dst at
// exec1 retirement. LD is handled separately in retireExec1 since its
// result comes from sramd's dataout rather than ALUOut.
func isWritingOpcode(op isa.Op) bool {
	switch op {
	case isa.ADD, isa.SUB, isa.LSF, isa.RSF, isa.AND, isa.OR, isa.XOR, isa.LHI, isa.DMAStatus:
		return true
	default:
		return false
	}
}

// ErrMaxCyclesExceeded is returned by Run when the cycle cap configured
// via WithMaxCycles is reached without the program retiring HLT. main
// uses this to distinguish a runaway program from an I/O or argument
// error at the process-exit-code level.
var ErrMaxCyclesExceeded = errors.New("pipeline: exceeded max cycle count without HLT")

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithMaxCycles caps the number of cycles the pipeline will run before
// reporting ErrMaxCyclesExceeded.
func WithMaxCycles(n uint64) Option {
	return func(p *Pipeline) { p.maxCycles = n }
}

// WithInstTraceWriter directs per-instruction trace blocks, emitted at
// exec1 retirement, to w.
func WithInstTraceWriter(w io.Writer) Option {
	return func(p *Pipeline) { p.instTrace = w }
}

// WithCycleTraceWriter directs a per-cycle latch dump to w.
func WithCycleTraceWriter(w io.Writer) Option {
	return func(p *Pipeline) { p.cycleTrace = w }
}

// Pipeline drives the 6-stage in-order core: fetch0, fetch1, dec0,
// dec1, exec0, exec1, plus the two SRAMs and the DMA engine. Each Tick
// reads a consistent "old" snapshot of every latch and the register
// file, computes a "new" snapshot stage-by-stage from the oldest stage
// to the youngest, and commits everything atomically at the end of the
// cycle — no stage ever observes a value that a younger stage produced
// in the same cycle, except through the hazard unit's explicit
// forwarding paths.
type Pipeline struct {
	regs [8]uint32

	srami *SRAM
	sramd *SRAM
	dma   *DMA

	hazard *HazardUnit

	cur Latches

	cycle     uint64
	retired   uint64
	maxCycles uint64
	halted    bool

	instTrace  io.Writer
	cycleTrace io.Writer
}

// NewPipeline builds a pipeline over the given instruction and data
// SRAMs, with fetch0 primed to request PC 0 so the first Tick's fetch1
// latch already holds the entry instruction's word.
func NewPipeline(srami, sramd *SRAM, opts ...Option) *Pipeline {
	p := &Pipeline{
		srami:     srami,
		sramd:     sramd,
		dma:       NewDMA(),
		hazard:    NewHazardUnit(),
		maxCycles: 10_000_000,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cur.Fetch0 = Fetch0Latch{Active: true, PC: 0}
	p.srami.RequestRead(0)
	p.srami.Commit()
	return p
}

// SRAMI returns the instruction memory, for dumping to srami_out.txt.
func (p *Pipeline) SRAMI() *SRAM { return p.srami }

// SRAMD returns the data memory, for dumping to sramd_out.txt.
func (p *Pipeline) SRAMD() *SRAM { return p.sramd }

// Halted reports whether HLT has retired.
func (p *Pipeline) Halted() bool { return p.halted }

// Cycle returns the number of cycles executed so far.
func (p *Pipeline) Cycle() uint64 { return p.cycle }

// Regs returns a snapshot of the architectural register file.
func (p *Pipeline) Regs() [8]uint32 { return p.regs }

// Run ticks the pipeline until HLT retires or the cycle cap is
// exceeded.
func (p *Pipeline) Run() error {
	for !p.halted {
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Tick advances every latch, the register file, and the DMA engine by
// exactly one cycle, following the driver order: read old state, detect
// hazards against that old state, compute the new state oldest-stage
// first, advance the DMA engine, then commit the two SRAMs and swap in
// the new latches and register file.
func (p *Pipeline) Tick() error {
	if p.halted {
		return nil
	}

	p.cycle++
	if p.cycle > p.maxCycles {
		return fmt.Errorf("%w: %d", ErrMaxCyclesExceeded, p.maxCycles)
	}

	old := p.cur
	oldRegs := p.regs

	sramdDataOut := p.sramd.DataOut()
	sramiDataOut := p.srami.DataOut()

	fwd := p.hazard.DetectForwarding(old.Dec1, old.Exec0, old.Exec1, sramdDataOut)
	stall := p.hazard.DetectLoadUseStall(old.Dec1, old.Exec0)
	branch := p.hazard.DetectBranch(old.Exec0)

	newRegs := oldRegs
	var nxt Latches

	p.retireExec1(old.Exec1, oldRegs, sramdDataOut, &newRegs)
	p.promoteExec0(old.Exec0, &nxt)
	p.assembleExec0(old.Dec1, oldRegs, fwd, stall, branch, &nxt)
	p.assembleDec1(old.Dec0, old.Dec1, oldRegs, stall, branch, &nxt)
	p.assembleDec0(old.Fetch1, old.Dec0, stall, branch, &nxt)
	p.assembleFetch(old.Fetch0, old.Fetch1, sramiDataOut, stall, branch, &nxt)

	p.dma.Tick(p.sramd)

	p.writeCycleTrace(nxt)

	p.srami.Commit()
	p.sramd.Commit()
	p.regs = newRegs
	p.cur = nxt

	return nil
}

// retireExec1 commits the instruction that was sitting in exec1 at the
// start of this cycle: it is the only stage that ever mutates
// architectural register state, and the only place HLT takes effect.
func (p *Pipeline) retireExec1(exec1 Exec1Latch, oldRegs [8]uint32, sramdDataOut uint32, newRegs *[8]uint32) {
	if !exec1.Active {
		return
	}
	inst := exec1.Inst
	a, b := exec1.Alu0, exec1.Alu1
	result := exec1.ALUOut
	nextPC := (exec1.PC + 1) & 0xFFFF

	switch {
	case inst.Opcode == isa.HLT:
		p.halted = true

	case inst.Opcode.IsConditionalBranch():
		if isa.BranchTaken(inst.Opcode, a, b) {
			newRegs[7] = exec1.PC
			nextPC = inst.Immediate & 0xFFFF
		}

	case inst.Opcode == isa.JIN:
		newRegs[7] = exec1.PC
		nextPC = a & 0xFFFF

	case inst.Opcode == isa.LD:
		result = sramdDataOut
		if inst.Dst >= 2 {
			newRegs[inst.Dst] = result
		}

	case isWritingOpcode(inst.Opcode):
		if inst.Dst >= 2 {
			newRegs[inst.Dst] = result
		}

	default:
		// ST, DMA_START, and unknown opcodes: no register write. An
		// unrecognized opcode is a NOP, not a write of a stale zero
		// ALUOut.
	}

	p.retired++
	p.traceInstruction(exec1.PC, inst, oldRegs, a, b, result, nextPC)
}

// promoteExec0 computes the next exec1 latch from the instruction that
// was sitting in exec0: the ALU/LHI result, the memory request for
// LD/ST, and the DMA_START trigger all happen here, one cycle before
// the instruction's effects are committed in retireExec1.
func (p *Pipeline) promoteExec0(exec0 Exec0Latch, nxt *Latches) {
	if !exec0.Active {
		nxt.Exec1.Clear()
		return
	}
	inst := exec0.Inst
	aluOut := uint32(0)

	switch inst.Opcode {
	case isa.ADD, isa.SUB, isa.LSF, isa.RSF, isa.AND, isa.OR, isa.XOR, isa.LHI:
		if r, err := isa.ALUResult(inst.Opcode, exec0.Alu0, exec0.Alu1); err == nil {
			aluOut = r
		}
	case isa.LD:
		p.sramd.RequestRead(exec0.Alu1)
	case isa.ST:
		p.sramd.RequestWrite(exec0.Alu1, exec0.Alu0)
	case isa.DMAStart:
		p.dma.Start(exec0.Alu0, exec0.Alu1, inst.Immediate)
	case isa.DMAStatus:
		aluOut = p.dma.Status()
	}

	nxt.Exec1 = Exec1Latch{
		Active: true,
		PC:     exec0.PC,
		Word:   exec0.Word,
		Inst:   inst,
		Alu0:   exec0.Alu0,
		Alu1:   exec0.Alu1,
		ALUOut: aluOut,
	}
}

// assembleExec0 computes the next exec0 latch from dec1, applying this
// cycle's forwarding decision to dec1's operands. A load-use stall or a
// taken-branch flush both force the new exec0 to a bubble; exec0 itself
// still always advances into exec1 via promoteExec0.
func (p *Pipeline) assembleExec0(dec1 Dec1Latch, oldRegs [8]uint32, fwd Forwarding, stall bool, branch BranchOutcome, nxt *Latches) {
	if stall || branch.Taken || !dec1.Active {
		nxt.Exec0.Clear()
		return
	}
	a0, a1 := assembleExec0Operands(dec1.Inst, oldRegs, fwd)
	nxt.Exec0 = Exec0Latch{Active: true, PC: dec1.PC, Word: dec1.Word, Inst: dec1.Inst, Alu0: a0, Alu1: a1}
}

// assembleDec1 computes the next dec1 latch from dec0's raw instruction
// word. A load-use stall freezes dec1 in place (the stalling
// instruction is retried next cycle); a taken branch flushes it.
func (p *Pipeline) assembleDec1(dec0 Dec0Latch, dec1 Dec1Latch, oldRegs [8]uint32, stall bool, branch BranchOutcome, nxt *Latches) {
	if stall {
		nxt.Dec1 = dec1
		return
	}
	if branch.Taken || !dec0.Active {
		nxt.Dec1.Clear()
		return
	}
	inst := isa.Decode(dec0.Word)
	a0, a1 := decodeDec1Operands(inst, oldRegs)
	nxt.Dec1 = Dec1Latch{Active: true, PC: dec0.PC, Word: dec0.Word, Inst: inst, Alu0: a0, Alu1: a1}
}

// assembleDec0 computes the next dec0 latch from fetch1's instruction
// word. Frozen on a load-use stall, flushed on a taken branch.
func (p *Pipeline) assembleDec0(fetch1 Fetch1Latch, dec0 Dec0Latch, stall bool, branch BranchOutcome, nxt *Latches) {
	if stall {
		nxt.Dec0 = dec0
		return
	}
	if branch.Taken || !fetch1.Active {
		nxt.Dec0.Clear()
		return
	}
	nxt.Dec0 = Dec0Latch{Active: true, PC: fetch1.PC, Word: fetch1.Word}
}

// assembleFetch computes the next fetch1 and fetch0 latches. A stall
// freezes both fetch stages and skips issuing a new srami request,
// since the outstanding request (for fetch0's current PC) is still
// exactly the one fetch1 needs once it unfreezes. A taken branch always
// forces the next fetch1 inactive, even though fetch0 would otherwise
// have promoted into it, and redirects fetch0 to the branch target.
func (p *Pipeline) assembleFetch(fetch0 Fetch0Latch, fetch1 Fetch1Latch, sramiDataOut uint32, stall bool, branch BranchOutcome, nxt *Latches) {
	if stall {
		nxt.Fetch1 = fetch1
		nxt.Fetch0 = fetch0
		return
	}

	if fetch0.Active {
		nxt.Fetch1 = Fetch1Latch{Active: true, PC: fetch0.PC, Word: isa.Word(sramiDataOut)}
	} else {
		nxt.Fetch1.Clear()
	}
	if branch.Taken {
		nxt.Fetch1.Active = false
	}

	nextPC := (fetch0.PC + 1) & 0xFFFF
	if branch.Taken {
		nextPC = branch.Target & 0xFFFF
	}
	nxt.Fetch0 = Fetch0Latch{Active: true, PC: nextPC}
	p.srami.RequestRead(nextPC)
}

func (p *Pipeline) traceInstruction(pc uint32, inst isa.Instruction, regs [8]uint32, a, b, result, nextPC uint32) {
	if p.instTrace == nil {
		return
	}
	execLine := trace.ExecLine(inst, a, b, result, nextPC)
	trace.WriteInstructionBlock(p.instTrace, p.retired, pc, inst, regs, execLine)
}

func (p *Pipeline) writeCycleTrace(nxt Latches) {
	if p.cycleTrace == nil {
		return
	}
	fmt.Fprintf(p.cycleTrace, "--- cycle %d ---\n", p.cycle)
	fmt.Fprintf(p.cycleTrace, "fetch0: active=%t pc=%04x\n", nxt.Fetch0.Active, nxt.Fetch0.PC)
	fmt.Fprintf(p.cycleTrace, "fetch1: active=%t pc=%04x\n", nxt.Fetch1.Active, nxt.Fetch1.PC)
	fmt.Fprintf(p.cycleTrace, "dec0:   active=%t pc=%04x\n", nxt.Dec0.Active, nxt.Dec0.PC)
	fmt.Fprintf(p.cycleTrace, "dec1:   active=%t pc=%04x opcode=%s\n", nxt.Dec1.Active, nxt.Dec1.PC, nxt.Dec1.Inst.Opcode.Name())
	fmt.Fprintf(p.cycleTrace, "exec0:  active=%t pc=%04x opcode=%s alu0=%08x alu1=%08x\n",
		nxt.Exec0.Active, nxt.Exec0.PC, nxt.Exec0.Inst.Opcode.Name(), nxt.Exec0.Alu0, nxt.Exec0.Alu1)
	fmt.Fprintf(p.cycleTrace, "exec1:  active=%t pc=%04x opcode=%s aluout=%08x\n\n",
		nxt.Exec1.Active, nxt.Exec1.PC, nxt.Exec1.Inst.Opcode.Name(), nxt.Exec1.ALUOut)
}

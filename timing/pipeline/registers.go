// Package pipeline implements the SP processor's 6-stage in-order
// pipeline: fetch0, fetch1, dec0, dec1, exec0, exec1. Each stage is a
// latch carrying state from one cycle to the next; the pipeline keeps
// two full copies ("old" and "new") so a cycle's hazard detection and
// stage computation can read consistent inputs while assembling the
// next state, committing atomically at the end of the cycle.
package pipeline

import "github.com/foqara2001/sp/isa"

// Fetch0Latch requests an instruction word from srami for PC.
type Fetch0Latch struct {
	Active bool
	PC     uint32
}

// Clear resets the latch to its inactive zero value.
func (l *Fetch0Latch) Clear() { *l = Fetch0Latch{} }

// Fetch1Latch holds the instruction word srami returned one cycle
// after Fetch0 requested it.
type Fetch1Latch struct {
	Active bool
	PC     uint32
	Word   isa.Word
}

// Clear resets the latch to its inactive zero value.
func (l *Fetch1Latch) Clear() { *l = Fetch1Latch{} }

// Dec0Latch carries the raw instruction word into field extraction.
type Dec0Latch struct {
	Active bool
	PC     uint32
	Word   isa.Word
}

// Clear resets the latch to its inactive zero value.
func (l *Dec0Latch) Clear() { *l = Dec0Latch{} }

// Dec1Latch carries the decoded instruction and the raw (unforwarded)
// register-file reads taken this cycle. Forwarding is applied when
// this latch's fields are used to assemble the next Exec0Latch, not
// here. Alu0/Alu1 on this latch only record those raw reads: the
// hazard unit identifies consumer slots from Inst.Src0/Src1, and the
// cycle trace does not print them.
type Dec1Latch struct {
	Active bool
	PC     uint32
	Word   isa.Word
	Inst   isa.Instruction
	Alu0   uint32
	Alu1   uint32
}

// Clear resets the latch to its inactive zero value.
func (l *Dec1Latch) Clear() { *l = Dec1Latch{} }

// Exec0Latch carries the operands (with forwarding already applied)
// that the ALU, memory-issue, branch-resolution, and DMA logic act on
// this cycle.
type Exec0Latch struct {
	Active bool
	PC     uint32
	Word   isa.Word
	Inst   isa.Instruction
	Alu0   uint32
	Alu1   uint32
}

// Clear resets the latch to its inactive zero value.
func (l *Exec0Latch) Clear() { *l = Exec0Latch{} }

// Exec1Latch carries the committed ALU result (or, for LD, the
// address to sample from sramd's one-cycle-delayed dataout) into
// writeback.
type Exec1Latch struct {
	Active bool
	PC     uint32
	Word   isa.Word
	Inst   isa.Instruction
	Alu0   uint32
	Alu1   uint32
	ALUOut uint32
}

// Clear resets the latch to its inactive zero value.
func (l *Exec1Latch) Clear() { *l = Exec1Latch{} }

// Latches bundles one full pipeline state snapshot.
type Latches struct {
	Fetch0 Fetch0Latch
	Fetch1 Fetch1Latch
	Dec0   Dec0Latch
	Dec1   Dec1Latch
	Exec0  Exec0Latch
	Exec1  Exec1Latch
}

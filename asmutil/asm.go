// Package asmutil is a small two-pass assembler for the SP instruction
// set: callers emit instructions and labels in program order, and
// Assemble resolves every label reference to its final address before
// encoding. This sidesteps the original toolchain's convention of
// computing a branch target as an arithmetic expression on the
// assembler's own program counter at the call site — fragile to emit
// in Go, and the spec's own open question on the matter says only the
// final word sequence matters, not how it was produced.
package asmutil

import (
	"fmt"

	"github.com/foqara2001/sp/isa"
)

// Program accumulates instructions and data words for one memory image.
type Program struct {
	words  []uint32
	labels map[string]uint32
	fixups []fixup
}

type fixup struct {
	addr  uint32
	label string
}

// New returns an empty program, assembling from address 0.
func New() *Program {
	return &Program{labels: make(map[string]uint32)}
}

// Label records name as referring to the next instruction's address.
func (p *Program) Label(name string) {
	p.labels[name] = uint32(len(p.words))
}

// Emit appends an instruction with a literal immediate.
func (p *Program) Emit(op isa.Op, dst, src0, src1 uint8, immediate uint32) {
	p.words = append(p.words, uint32(isa.Encode(op, dst, src0, src1, immediate)))
}

// EmitLabel appends an instruction whose immediate field is the
// address of label, resolved when Assemble runs.
func (p *Program) EmitLabel(op isa.Op, dst, src0, src1 uint8, label string) {
	p.fixups = append(p.fixups, fixup{addr: uint32(len(p.words)), label: label})
	p.words = append(p.words, uint32(isa.Encode(op, dst, src0, src1, 0)))
}

// Word appends a raw data word, for preloading memory outside of code.
func (p *Program) Word(v uint32) {
	p.words = append(p.words, v)
}

// At pads the program with zero words up to addr, for placing data at
// a fixed address after the code. Panics if the program has already
// passed addr.
func (p *Program) At(addr uint32) {
	if uint32(len(p.words)) > addr {
		panic(fmt.Sprintf("asmutil: At(%d): program already extends to %d", addr, len(p.words)))
	}
	for uint32(len(p.words)) < addr {
		p.words = append(p.words, 0)
	}
}

// Assemble resolves every label fixup and returns the final word image.
func (p *Program) Assemble() ([]uint32, error) {
	out := make([]uint32, len(p.words))
	copy(out, p.words)

	for _, fx := range p.fixups {
		target, ok := p.labels[fx.label]
		if !ok {
			return nil, fmt.Errorf("asmutil: undefined label %q", fx.label)
		}
		inst := isa.Decode(isa.Word(out[fx.addr]))
		out[fx.addr] = uint32(isa.Encode(inst.Opcode, inst.Dst, inst.Src0, inst.Src1, target))
	}
	return out, nil
}

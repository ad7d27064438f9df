// Package trace renders the per-instruction trace blocks and the
// memory dumps shared by the ISS and the pipelined simulator, so the
// two drivers never disagree about file format. The per-cycle latch
// dump is written by the pipeline package itself.
package trace

import (
	"fmt"
	"io"

	"github.com/foqara2001/sp/isa"
)

// WriteInstructionBlock writes one "--- instruction N ... ---" block
// for a committed instruction. execLine is the pre-rendered
// ">>>> EXEC: ... <<<<" body (without the markers), built by the
// caller from the actual operand values the ALU used.
func WriteInstructionBlock(w io.Writer, n uint64, pc uint32, inst isa.Instruction, regs [8]uint32, execLine string) {
	fmt.Fprintf(w, "--- instruction %d (%04x) @ PC %d (%04x) ---\n", n, n, pc, pc)
	fmt.Fprintf(w, "pc = %d, inst = %08x, opcode = %d (%s), dst = %d, src0 = %d, src1 = %d, immediate = %08x\n",
		pc, uint32(inst.Word), inst.Opcode, inst.Opcode.Name(), inst.Dst, inst.Src0, inst.Src1, inst.Immediate)

	r1 := regs[1]
	if inst.Src0 == 1 || inst.Src1 == 1 || inst.Opcode.IsBranch() {
		r1 = isa.SignExtendImm16(inst.Immediate)
	}

	fmt.Fprintf(w, "r[0] = %08x r[1] = %08x r[2] = %08x r[3] = %08x\n", regs[0], r1, regs[2], regs[3])
	fmt.Fprintf(w, "r[4] = %08x r[5] = %08x r[6] = %08x r[7] = %08x\n", regs[4], regs[5], regs[6], regs[7])
	fmt.Fprintf(w, ">>>> EXEC: %s <<<<\n\n", execLine)
}

// ExecLine renders the EXEC-line body for an instruction given the
// actual operand values (a, b) the ALU/branch/memory stage used, and
// (for ALU/LHI/LD ops) the computed result.
func ExecLine(inst isa.Instruction, a, b, result uint32, nextPC uint32) string {
	switch inst.Opcode {
	case isa.ADD, isa.SUB, isa.LSF, isa.RSF, isa.AND, isa.OR, isa.XOR:
		return fmt.Sprintf("R[%d] = %08x %s %08x = %08x", inst.Dst, a, inst.Opcode.Name(), b, result)
	case isa.LHI:
		return fmt.Sprintf("R[%d] = (%04x << 16) | (R[%d] & ffff) = %08x", inst.Dst, inst.Immediate&0xFFFF, inst.Dst, result)
	case isa.LD:
		return fmt.Sprintf("R[%d] = MEM[%08x] = %08x", inst.Dst, b, result)
	case isa.ST:
		return fmt.Sprintf("MEM[%08x] = R[%d] = %08x", b, inst.Src0, a)
	case isa.DMAStart:
		return fmt.Sprintf("DMA_START src=%08x dst=%08x len=%d", a, b, inst.Immediate)
	case isa.DMAStatus:
		return fmt.Sprintf("R[%d] = DMA_STATUS = %08x", inst.Dst, result)
	case isa.JLT, isa.JLE, isa.JEQ, isa.JNE:
		return fmt.Sprintf("%s %08x, %08x, nextpc=%04x", inst.Opcode.Name(), a, b, nextPC)
	case isa.JIN:
		return fmt.Sprintf("jin %08x, nextpc=%04x", a, nextPC)
	case isa.HLT:
		return fmt.Sprintf("HALT at PC %04x", nextPC)
	default:
		return "NOP (unknown opcode)"
	}
}

// WriteMemoryDump writes words in address order as 8-hex-digit lines,
// the format used for srami_out.txt/sramd_out.txt.
func WriteMemoryDump(w io.Writer, words []uint32) error {
	buf := make([]byte, 0, len(words)*9)
	for _, v := range words {
		buf = append(buf, []byte(fmt.Sprintf("%08x\n", v))...)
	}
	_, err := w.Write(buf)
	return err
}

package pipeline

import "github.com/foqara2001/sp/isa"

// resolveOperand resolves a 3-bit register-select field into the
// value the next exec0 latch should use, applying the forwarding
// decision computed this cycle for whichever consumer slot (src0 or
// src1) sel came from. Regs 0/1 never participate in forwarding —
// they are not physical registers.
func resolveOperand(sel uint8, immediate uint32, regs [8]uint32, isSrc0 bool, fwd Forwarding) uint32 {
	switch sel {
	case 0:
		return 0
	case 1:
		return isa.SignExtendImm16(immediate)
	default:
		if isSrc0 && fwd.Src0 != ForwardNone {
			return fwd.Value0
		}
		if !isSrc0 && fwd.Src1 != ForwardNone {
			return fwd.Value1
		}
		return regs[sel&0x7]
	}
}

// assembleExec0Operands computes the (alu0, alu1) pair for the
// instruction being latched dec1 -> exec0 this cycle, per the
// per-opcode special cases the spec documents for operand formation.
// regs is the architectural register file (old state); fwd is this
// cycle's forwarding decision for inst's src0/src1 slots.
func assembleExec0Operands(inst isa.Instruction, regs [8]uint32, fwd Forwarding) (alu0, alu1 uint32) {
	switch inst.Opcode {
	case isa.LD:
		return 0, resolveOperand(inst.Src1, inst.Immediate, regs, false, fwd)

	case isa.ST:
		data := resolveOperand(inst.Src0, inst.Immediate, regs, true, fwd)
		addr := resolveOperand(inst.Src1, inst.Immediate, regs, false, fwd)
		return data, addr

	case isa.JIN:
		// The jump target is read directly from the architectural
		// register file: the hazard unit's forwarding consumer
		// slots are src0/src1, and JIN's target lives in the dst
		// field, so a value produced one cycle earlier by a
		// producer targeting the same register is not forwarded
		// here.
		return regs[inst.Dst&0x7], 0

	case isa.LHI:
		return regs[inst.Dst&0x7], inst.Immediate & 0xFFFF

	case isa.JLT, isa.JLE, isa.JEQ, isa.JNE:
		return resolveOperand(inst.Src0, inst.Immediate, regs, true, fwd),
			resolveOperand(inst.Src1, inst.Immediate, regs, false, fwd)

	case isa.DMAStart:
		return resolveOperand(inst.Src0, inst.Immediate, regs, true, fwd),
			resolveOperand(inst.Src1, inst.Immediate, regs, false, fwd)

	case isa.DMAStatus, isa.HLT:
		return 0, 0

	default:
		// ADD/SUB/LSF/RSF/AND/OR/XOR, and unknown opcodes (treated
		// as a no-op ALU read so exec0 has well-formed operands to
		// ignore).
		return resolveOperand(inst.Src0, inst.Immediate, regs, true, fwd),
			resolveOperand(inst.Src1, inst.Immediate, regs, false, fwd)
	}
}

// decodeDec1Operands computes dec1's raw (unforwarded) operand
// snapshot, kept on the dec1 latch as a record only — the values that
// actually drive execution are recomputed with forwarding when dec1
// is latched into exec0 (see assembleExec0Operands).
func decodeDec1Operands(inst isa.Instruction, regs [8]uint32) (alu0, alu1 uint32) {
	return assembleExec0Operands(inst, regs, Forwarding{})
}

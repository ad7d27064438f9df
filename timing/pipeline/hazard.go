package pipeline

import "github.com/foqara2001/sp/isa"

// HazardUnit detects data/control hazards and computes forwarding,
// entirely as a pure function of old-cycle state — it never mutates
// anything. Pipeline.Tick calls it on the old latches, before exec1
// retires, exec0 is promoted into exec1, or dec1 is latched into the
// next exec0.
type HazardUnit struct{}

// NewHazardUnit returns a stateless hazard unit.
func NewHazardUnit() *HazardUnit { return &HazardUnit{} }

// ForwardSource names where a forwarded operand came from.
type ForwardSource uint8

const (
	ForwardNone ForwardSource = iota
	ForwardFromExec1
	ForwardFromExec0
)

// Forwarding holds the forwarding decision for both of dec1's operand
// slots, to be applied when dec1 is latched into the next exec0.
type Forwarding struct {
	Src0   ForwardSource
	Value0 uint32
	Src1   ForwardSource
	Value1 uint32
}

func isALUOrLHI(op isa.Op) bool {
	switch op {
	case isa.ADD, isa.SUB, isa.LSF, isa.RSF, isa.AND, isa.OR, isa.XOR, isa.LHI:
		return true
	default:
		return false
	}
}

// DetectForwarding computes the two-tier forwarding decision for
// dec1's src0/src1 register operands. exec1DataOut is sramd's
// dataout sampled this cycle, used when exec1 is retiring a LD.
func (h *HazardUnit) DetectForwarding(dec1 Dec1Latch, exec0 Exec0Latch, exec1 Exec1Latch, exec1DataOut uint32) Forwarding {
	var fwd Forwarding
	if !dec1.Active {
		return fwd
	}

	consumer0, wants0 := dec1.Inst.Src0, dec1.Inst.Src0 >= 2
	consumer1, wants1 := dec1.Inst.Src1, dec1.Inst.Src1 >= 2

	// Priority 1: exec1 -> dec1. LD's value arrives via sramd's
	// one-cycle-delayed dataout; every other producer forwards its
	// already-committed ALU result.
	if exec1.Active && exec1.Inst.Dst >= 2 {
		value := exec1.ALUOut
		if exec1.Inst.Opcode == isa.LD {
			value = exec1DataOut
		}
		if wants0 && exec1.Inst.Dst == consumer0 {
			fwd.Src0, fwd.Value0 = ForwardFromExec1, value
		}
		if wants1 && exec1.Inst.Dst == consumer1 {
			fwd.Src1, fwd.Value1 = ForwardFromExec1, value
		}
	}

	// Priority 2: exec0 -> dec1, ALU/LHI only. exec0's committed
	// aluout does not exist yet this cycle, so the value is
	// recomputed here with the exact same formula exec0 itself will
	// use — a single shared helper (isa.ALUResult) keeps both paths
	// from drifting apart.
	if exec0.Active && exec0.Inst.Dst >= 2 && isALUOrLHI(exec0.Inst.Opcode) {
		value, err := isa.ALUResult(exec0.Inst.Opcode, exec0.Alu0, exec0.Alu1)
		if err == nil {
			if fwd.Src0 == ForwardNone && wants0 && exec0.Inst.Dst == consumer0 {
				fwd.Src0, fwd.Value0 = ForwardFromExec0, value
			}
			if fwd.Src1 == ForwardNone && wants1 && exec0.Inst.Dst == consumer1 {
				fwd.Src1, fwd.Value1 = ForwardFromExec0, value
			}
		}
	}

	return fwd
}

// DetectLoadUseStall reports whether exec0 holds a load whose
// destination dec1 is about to consume — forwarding cannot resolve
// this because the loaded word is not visible until exec1.
func (h *HazardUnit) DetectLoadUseStall(dec1 Dec1Latch, exec0 Exec0Latch) bool {
	if !exec0.Active || exec0.Inst.Opcode != isa.LD || exec0.Inst.Dst < 2 {
		return false
	}
	if !dec1.Active {
		return false
	}
	return exec0.Inst.Dst == dec1.Inst.Src0 || exec0.Inst.Dst == dec1.Inst.Src1
}

// BranchOutcome is the control-hazard resolution computed in exec0.
type BranchOutcome struct {
	Taken  bool
	Target uint32
}

// DetectBranch evaluates exec0's branch condition using the operand
// values already latched into exec0 (which have forwarding baked in
// from the previous cycle's dec1 -> exec0 assembly).
func (h *HazardUnit) DetectBranch(exec0 Exec0Latch) BranchOutcome {
	if !exec0.Active {
		return BranchOutcome{}
	}
	switch {
	case exec0.Inst.Opcode.IsConditionalBranch():
		if isa.BranchTaken(exec0.Inst.Opcode, exec0.Alu0, exec0.Alu1) {
			return BranchOutcome{Taken: true, Target: exec0.Inst.Immediate}
		}
	case exec0.Inst.Opcode == isa.JIN:
		return BranchOutcome{Taken: true, Target: exec0.Alu0}
	}
	return BranchOutcome{}
}

// StallResult bundles the hazard unit's conclusions for one cycle.
type StallResult struct {
	Stall  bool
	Branch BranchOutcome
}

package pipeline_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foqara2001/sp/isa"
	"github.com/foqara2001/sp/timing/pipeline"
)

func TestHazard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Hazard Suite")
}

var _ = Describe("HazardUnit", func() {
	var hazardUnit *pipeline.HazardUnit

	BeforeEach(func() {
		hazardUnit = pipeline.NewHazardUnit()
	})

	Describe("DetectForwarding", func() {
		It("forwards nothing when dec1 is inactive", func() {
			fwd := hazardUnit.DetectForwarding(pipeline.Dec1Latch{}, pipeline.Exec0Latch{}, pipeline.Exec1Latch{}, 0)
			Expect(fwd.Src0).To(Equal(pipeline.ForwardNone))
			Expect(fwd.Src1).To(Equal(pipeline.ForwardNone))
		})

		It("gives exec1 priority over exec0 for the same destination", func() {
			dec1 := pipeline.Dec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Src0: 3, Src1: 1}}
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Dst: 3}, Alu0: 10, Alu1: 1}
			exec1 := pipeline.Exec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Dst: 3}, ALUOut: 99}

			fwd := hazardUnit.DetectForwarding(dec1, exec0, exec1, 0)
			Expect(fwd.Src0).To(Equal(pipeline.ForwardFromExec1))
			Expect(fwd.Value0).To(BeEquivalentTo(99))
		})

		It("forwards from exec0 when exec1 does not produce the register", func() {
			dec1 := pipeline.Dec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Src0: 3, Src1: 1}}
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Dst: 3}, Alu0: 10, Alu1: 5}
			exec1 := pipeline.Exec1Latch{}

			fwd := hazardUnit.DetectForwarding(dec1, exec0, exec1, 0)
			Expect(fwd.Src0).To(Equal(pipeline.ForwardFromExec0))
			Expect(fwd.Value0).To(BeEquivalentTo(15))
		})

		It("never forwards an exec0 LD (priority 2 is ALU/LHI only)", func() {
			dec1 := pipeline.Dec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Src0: 3, Src1: 1}}
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.LD, Dst: 3}}
			fwd := hazardUnit.DetectForwarding(dec1, exec0, pipeline.Exec1Latch{}, 0)
			Expect(fwd.Src0).To(Equal(pipeline.ForwardNone))
		})

		It("forwards an exec1 LD using the sampled sramd dataout, not ALUOut", func() {
			dec1 := pipeline.Dec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Src0: 2, Src1: 1}}
			exec1 := pipeline.Exec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.LD, Dst: 2}, ALUOut: 0}
			fwd := hazardUnit.DetectForwarding(dec1, pipeline.Exec0Latch{}, exec1, 0x1234)
			Expect(fwd.Src0).To(Equal(pipeline.ForwardFromExec1))
			Expect(fwd.Value0).To(BeEquivalentTo(0x1234))
		})

		It("does not forward to registers 0 or 1", func() {
			dec1 := pipeline.Dec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Src0: 1, Src1: 0}}
			exec1 := pipeline.Exec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Dst: 1}, ALUOut: 99}
			fwd := hazardUnit.DetectForwarding(dec1, pipeline.Exec0Latch{}, exec1, 0)
			Expect(fwd.Src0).To(Equal(pipeline.ForwardNone))
		})
	})

	Describe("DetectLoadUseStall", func() {
		It("stalls when exec0 holds a load whose destination dec1 consumes", func() {
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.LD, Dst: 2}}
			dec1 := pipeline.Dec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Src0: 2, Src1: 1}}
			Expect(hazardUnit.DetectLoadUseStall(dec1, exec0)).To(BeTrue())
		})

		It("does not stall for a non-load producer", func() {
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Dst: 2}}
			dec1 := pipeline.Dec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Src0: 2, Src1: 1}}
			Expect(hazardUnit.DetectLoadUseStall(dec1, exec0)).To(BeFalse())
		})

		It("does not stall when dec1 does not consume the load's destination", func() {
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.LD, Dst: 2}}
			dec1 := pipeline.Dec1Latch{Active: true, Inst: isa.Instruction{Opcode: isa.ADD, Src0: 3, Src1: 1}}
			Expect(hazardUnit.DetectLoadUseStall(dec1, exec0)).To(BeFalse())
		})
	})

	Describe("DetectBranch", func() {
		It("reports not-taken for an inactive exec0", func() {
			Expect(hazardUnit.DetectBranch(pipeline.Exec0Latch{}).Taken).To(BeFalse())
		})

		It("resolves a taken conditional branch to its immediate target", func() {
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.JEQ, Immediate: 40}, Alu0: 5, Alu1: 5}
			outcome := hazardUnit.DetectBranch(exec0)
			Expect(outcome.Taken).To(BeTrue())
			Expect(outcome.Target).To(BeEquivalentTo(40))
		})

		It("resolves a not-taken conditional branch", func() {
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.JEQ, Immediate: 40}, Alu0: 5, Alu1: 6}
			Expect(hazardUnit.DetectBranch(exec0).Taken).To(BeFalse())
		})

		It("resolves JIN to the value in alu0", func() {
			exec0 := pipeline.Exec0Latch{Active: true, Inst: isa.Instruction{Opcode: isa.JIN}, Alu0: 0x100}
			outcome := hazardUnit.DetectBranch(exec0)
			Expect(outcome.Taken).To(BeTrue())
			Expect(outcome.Target).To(BeEquivalentTo(0x100))
		})
	})
})

package pipeline

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foqara2001/sp/isa"
)

func TestStages(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Stages Suite")
}

var _ = Describe("resolveOperand", func() {
	regs := [8]uint32{0, 0, 10, 20, 30, 40, 50, 60}

	It("resolves register 0 to hard zero", func() {
		Expect(resolveOperand(0, 0xBEEF, regs, true, Forwarding{})).To(BeEquivalentTo(0))
	})

	It("resolves register 1 to the sign-extended immediate", func() {
		Expect(resolveOperand(1, 0x8000, regs, true, Forwarding{})).To(BeEquivalentTo(0xFFFF8000))
	})

	It("reads general registers from the file when not forwarded", func() {
		Expect(resolveOperand(3, 0, regs, true, Forwarding{})).To(BeEquivalentTo(20))
	})

	It("prefers a forwarded src0 value over the register file", func() {
		fwd := Forwarding{Src0: ForwardFromExec1, Value0: 777}
		Expect(resolveOperand(3, 0, regs, true, fwd)).To(BeEquivalentTo(777))
	})

	It("does not apply a src0 forwarding decision to a src1 read", func() {
		fwd := Forwarding{Src0: ForwardFromExec1, Value0: 777}
		Expect(resolveOperand(3, 0, regs, false, fwd)).To(BeEquivalentTo(20))
	})
})

var _ = Describe("assembleExec0Operands", func() {
	regs := [8]uint32{0, 0, 10, 20, 30, 40, 50, 60}

	It("forms LD as (0, address)", func() {
		inst := isa.Instruction{Opcode: isa.LD, Src1: 3}
		a, b := assembleExec0Operands(inst, regs, Forwarding{})
		Expect(a).To(BeEquivalentTo(0))
		Expect(b).To(BeEquivalentTo(20))
	})

	It("forms ST as (data, address)", func() {
		inst := isa.Instruction{Opcode: isa.ST, Src0: 2, Src1: 3}
		a, b := assembleExec0Operands(inst, regs, Forwarding{})
		Expect(a).To(BeEquivalentTo(10))
		Expect(b).To(BeEquivalentTo(20))
	})

	It("reads JIN's target from the dst field, bypassing forwarding", func() {
		inst := isa.Instruction{Opcode: isa.JIN, Dst: 4}
		fwd := Forwarding{Src0: ForwardFromExec1, Value0: 999}
		a, _ := assembleExec0Operands(inst, regs, fwd)
		Expect(a).To(BeEquivalentTo(30))
	})

	It("forms LHI as (R[dst], immediate)", func() {
		inst := isa.Instruction{Opcode: isa.LHI, Dst: 5, Immediate: 0x00AB}
		a, b := assembleExec0Operands(inst, regs, Forwarding{})
		Expect(a).To(BeEquivalentTo(40))
		Expect(b).To(BeEquivalentTo(0x00AB))
	})

	It("forms HLT and DMA_STATUS with no operands", func() {
		a, b := assembleExec0Operands(isa.Instruction{Opcode: isa.HLT}, regs, Forwarding{})
		Expect(a).To(BeEquivalentTo(0))
		Expect(b).To(BeEquivalentTo(0))
	})

	It("applies forwarding to ALU operands", func() {
		inst := isa.Instruction{Opcode: isa.ADD, Src0: 2, Src1: 3}
		fwd := Forwarding{Src1: ForwardFromExec0, Value1: 555}
		a, b := assembleExec0Operands(inst, regs, fwd)
		Expect(a).To(BeEquivalentTo(10))
		Expect(b).To(BeEquivalentTo(555))
	})
})

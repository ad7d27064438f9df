package pipeline_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foqara2001/sp/timing/pipeline"
)

func TestSRAM(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SRAM Suite")
}

var _ = Describe("SRAM", func() {
	var mem *pipeline.SRAM

	BeforeEach(func() {
		mem = pipeline.NewSRAM()
	})

	It("delays a read by exactly one Commit", func() {
		mem.LoadImage([]uint32{0xAAAA, 0xBBBB})
		mem.RequestRead(1)
		Expect(mem.DataOut()).To(BeEquivalentTo(0))
		mem.Commit()
		Expect(mem.DataOut()).To(BeEquivalentTo(0xBBBB))
	})

	It("applies a write atomically at Commit", func() {
		mem.RequestWrite(5, 0x1234)
		Expect(mem.DirectRead(5)).To(BeEquivalentTo(0))
		mem.Commit()
		Expect(mem.DirectRead(5)).To(BeEquivalentTo(0x1234))
	})

	It("masks addresses to 16 bits", func() {
		mem.RequestWrite(pipeline.Words+5, 0x99)
		mem.Commit()
		Expect(mem.DirectRead(5)).To(BeEquivalentTo(0x99))
	})

	It("clears pending requests after Commit", func() {
		mem.RequestWrite(5, 0x1234)
		mem.Commit()
		mem.Commit()
		Expect(mem.DirectRead(5)).To(BeEquivalentTo(0x1234))
	})

	It("bypasses the port entirely for DirectWrite/DirectRead", func() {
		mem.DirectWrite(9, 42)
		Expect(mem.DirectRead(9)).To(BeEquivalentTo(42))
	})
})

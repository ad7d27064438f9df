package core_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foqara2001/sp/isa"
	"github.com/foqara2001/sp/timing/core"
	"github.com/foqara2001/sp/timing/pipeline"
)

func TestCore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Core Suite")
}

func words(ws ...isa.Word) []uint32 {
	out := make([]uint32, len(ws))
	for i, w := range ws {
		out[i] = uint32(w)
	}
	return out
}

var _ = Describe("Core", func() {
	It("loads the same image into both srami and sramd", func() {
		image := words(
			isa.Encode(isa.ADD, 2, 1, 0, 9),
			isa.Encode(isa.HLT, 0, 0, 0, 0),
		)
		c := core.NewCore(image)

		Expect(c.SRAMI().DirectRead(0)).To(BeEquivalentTo(image[0]))
		Expect(c.SRAMD().DirectRead(0)).To(BeEquivalentTo(image[0]))
	})

	It("is not halted before the program runs", func() {
		c := core.NewCore(words(isa.Encode(isa.HLT, 0, 0, 0, 0)))
		Expect(c.Halted()).To(BeFalse())
	})

	It("runs a program to completion via Run", func() {
		c := core.NewCore(words(
			isa.Encode(isa.ADD, 2, 1, 0, 42),
			isa.Encode(isa.HLT, 0, 0, 0, 0),
		), pipeline.WithMaxCycles(100))

		Expect(c.Run()).To(Succeed())
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Regs()[2]).To(BeEquivalentTo(42))
	})

	It("advances one cycle at a time via Tick", func() {
		c := core.NewCore(words(
			isa.Encode(isa.ADD, 2, 1, 0, 1),
			isa.Encode(isa.HLT, 0, 0, 0, 0),
		), pipeline.WithMaxCycles(100))

		Expect(c.Cycle()).To(BeEquivalentTo(0))
		Expect(c.Tick()).To(Succeed())
		Expect(c.Cycle()).To(BeEquivalentTo(1))
	})

	It("dumps both memories in the srami_out.txt/sramd_out.txt format", func() {
		c := core.NewCore(words(isa.Encode(isa.HLT, 0, 0, 0, 0)))
		var srami, sramd bytes.Buffer

		Expect(c.DumpTraces(&srami, &sramd)).To(Succeed())

		firstLine := strings.SplitN(srami.String(), "\n", 2)[0]
		Expect(firstLine).To(Equal("30000000"))
	})
})

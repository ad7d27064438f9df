// Package core wraps the pipeline package with the handful of
// conveniences a driver (cmd/sp, scenarios) wants: a single object
// holding both SRAMs and the pipeline itself, plus instruction- and
// cycle-trace wiring without reaching into pipeline.Option directly.
package core

import (
	"io"

	"github.com/foqara2001/sp/timing/pipeline"
	"github.com/foqara2001/sp/trace"
)

// Core bundles the two SRAMs and the pipeline driving them.
type Core struct {
	Pipeline *pipeline.Pipeline

	srami *pipeline.SRAM
	sramd *pipeline.SRAM
}

// NewCore builds a Core over a memory image, loading it into both
// srami and sramd as the spec requires, and wires up any pipeline
// options (trace writers, a cycle cap) passed through.
func NewCore(image []uint32, opts ...pipeline.Option) *Core {
	srami := pipeline.NewSRAM()
	sramd := pipeline.NewSRAM()
	srami.LoadImage(image)
	sramd.LoadImage(image)

	return &Core{
		Pipeline: pipeline.NewPipeline(srami, sramd, opts...),
		srami:    srami,
		sramd:    sramd,
	}
}

// SRAMI returns the instruction memory, for dumping to srami_out.txt.
func (c *Core) SRAMI() *pipeline.SRAM { return c.srami }

// SRAMD returns the data memory, for dumping to sramd_out.txt.
func (c *Core) SRAMD() *pipeline.SRAM { return c.sramd }

// Tick advances the core by one cycle.
func (c *Core) Tick() error { return c.Pipeline.Tick() }

// Halted reports whether HLT has retired.
func (c *Core) Halted() bool { return c.Pipeline.Halted() }

// Cycle returns the number of cycles executed so far.
func (c *Core) Cycle() uint64 { return c.Pipeline.Cycle() }

// Regs returns a snapshot of the architectural register file.
func (c *Core) Regs() [8]uint32 { return c.Pipeline.Regs() }

// Run ticks the core until HLT retires or the configured cycle cap is
// exceeded.
func (c *Core) Run() error { return c.Pipeline.Run() }

// DumpTraces writes srami_out.txt/sramd_out.txt-formatted dumps of
// both memories to the given writers.
func (c *Core) DumpTraces(srami, sramd io.Writer) error {
	if err := trace.WriteMemoryDump(srami, c.srami.Dump()); err != nil {
		return err
	}
	return trace.WriteMemoryDump(sramd, c.sramd.Dump())
}

package pipeline

// DMA models the memory-mapped copy engine: a small {IDLE, BUSY}
// state machine that, once started, ticks independently of the
// pipeline — a stalled front end never blocks its progress.
type DMA struct {
	Busy    bool
	Done    bool
	SrcAddr uint32
	DstAddr uint32
	Len     uint32
	Counter uint32
}

// NewDMA returns an idle DMA engine.
func NewDMA() *DMA { return &DMA{} }

// Start begins a copy of length words from src to dst. A start
// request while already busy is silently ignored; software observes
// this only through Status staying nonzero.
func (d *DMA) Start(src, dst, length uint32) {
	if d.Busy {
		return
	}
	d.SrcAddr, d.DstAddr, d.Len, d.Counter = src, dst, length, 0
	d.Busy, d.Done = true, false
}

// Status reports a single busy bit, nonzero while a copy is in
// flight and zero once it has drained.
func (d *DMA) Status() uint32 {
	if d.Busy {
		return 1
	}
	return 0
}

// Tick advances the engine by one word, independent of whatever the
// pipeline did this cycle. Overlapping source/destination regions are
// copied in ascending counter order, so a destination that starts
// above its source by less than Len words will clobber source words
// before they are read — this is the documented behavior, not a bug.
func (d *DMA) Tick(mem *SRAM) {
	if !d.Busy || d.Done {
		return
	}
	if d.Counter < d.Len {
		v := mem.DirectRead(d.SrcAddr + d.Counter)
		mem.DirectWrite(d.DstAddr+d.Counter, v)
		d.Counter++
		return
	}
	d.Done, d.Busy = true, false
}

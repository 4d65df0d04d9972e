// Package simplecore provides a synthetic functional core. It commits a
// fixed number of instructions per cycle and can be configured to request
// simulation termination at an instruction count. Topology smoke tests and
// scheduler verification run on this core.
package simplecore

import (
	"fmt"
	"io"

	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/mem"
	"github.com/sarchlab/machsim/stats"
)

// Comp is a synthetic core.
type Comp struct {
	name   string
	coreID int

	ipc    uint64
	haltAt uint64 // 0 means never request termination

	committed  uint64
	cycles     uint64
	tlbFlushes uint64
	resets     uint64

	hier mem.MemoryHierarchy
	ctx  *core.Context
}

// Name returns the core's generated instance name.
func (c *Comp) Name() string {
	return c.name
}

// CoreID returns the core's unique id.
func (c *Comp) CoreID() int {
	return c.coreID
}

// Reset re-initializes the core to a clean state.
func (c *Comp) Reset() {
	c.committed = 0
	c.cycles = 0
	c.resets++
}

// CheckCtxChanges reconciles against external context changes. The
// synthetic core has no external context source, so this only notes the
// call.
func (c *Comp) CheckCtxChanges() {}

// BindContext attaches an execution context to the core.
func (c *Comp) BindContext(ctx *core.Context) {
	c.ctx = ctx
}

// RunCycle advances the core by one cycle.
func (c *Comp) RunCycle() bool {
	c.cycles++
	c.committed += c.ipc

	return c.haltAt > 0 && c.committed >= c.haltAt
}

// InsnsCommitted returns the committed instruction count.
func (c *Comp) InsnsCommitted() uint64 {
	return c.committed
}

// FlushTLB drops all translations for the context.
func (c *Comp) FlushTLB(_ *core.Context) {
	c.tlbFlushes++
}

// FlushTLBVirt drops the translation of one virtual address.
func (c *Comp) FlushTLBVirt(_ *core.Context, _ uint64) {
	c.tlbFlushes++
}

// DumpState writes one per-core section of human-readable state.
func (c *Comp) DumpState(w io.Writer) {
	fmt.Fprintf(w, "Core %d (%s):\n", c.coreID, c.name)
	fmt.Fprintf(w, "  cycles: %d\n", c.cycles)
	fmt.Fprintf(w, "  insns committed: %d\n", c.committed)
}

// UpdateStats adds this core's counters to the aggregate.
func (c *Comp) UpdateStats(sum *stats.Summary) {
	sum.InsnsCommitted += c.committed
}

// UpdateMemoryHierarchy rebinds the core to the current hierarchy.
func (c *Comp) UpdateMemoryHierarchy(h mem.MemoryHierarchy) {
	c.hier = h
}

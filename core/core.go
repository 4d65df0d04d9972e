// Package core defines the capability contract that every simulated
// processor core must satisfy, independent of the internal pipeline model.
// The cycle scheduler drives cores exclusively through this interface.
package core

import (
	"io"

	"github.com/sarchlab/machsim/mem"
	"github.com/sarchlab/machsim/stats"
)

// A Context is the architectural execution state of one logical CPU. The
// scheduler allocates, counts, and hands out references to contexts; it
// never inspects their contents.
type Context struct {
	ID int
}

// A Core is one simulated processor pipeline.
type Core interface {
	// Reset re-initializes the core to a clean state. Invoked once before
	// the first cycle of a fresh run only.
	Reset()

	// CheckCtxChanges reconciles internal state against external execution
	// context changes. Invoked on every run entry.
	CheckCtxChanges()

	// RunCycle advances the core by exactly one simulated cycle. It
	// returns true if the core requests simulation termination.
	RunCycle() bool

	// InsnsCommitted returns the number of instructions the core has
	// committed so far.
	InsnsCommitted() uint64

	FlushTLB(ctx *Context)
	FlushTLBVirt(ctx *Context, virtAddr uint64)

	DumpState(w io.Writer)
	UpdateStats(sum *stats.Summary)

	CoreID() int

	// UpdateMemoryHierarchy rebinds the core to the current memory
	// hierarchy collaborator after assembly.
	UpdateMemoryHierarchy(h mem.MemoryHierarchy)
}

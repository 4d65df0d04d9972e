// Package cache provides a write-back cache controller. The coherence
// protocol and the internal request queues are modeled at counter
// granularity only; the controller mainly exists so that topologies can be
// assembled and clocked.
package cache

import (
	"fmt"
	"io"

	"github.com/sarchlab/machsim/mem"
)

// Comp is a write-back cache controller.
type Comp struct {
	name   string
	coreID int
	kind   mem.ControllerKind

	sizeKB  int
	latency int

	cycles   uint64
	bindings []mem.BoundInterconnect
}

// Name returns the controller's generated instance name.
func (c *Comp) Name() string {
	return c.name
}

// CoreID returns the core this controller is affine to.
func (c *Comp) CoreID() int {
	return c.coreID
}

// Kind returns the controller's role in the hierarchy.
func (c *Comp) Kind() mem.ControllerKind {
	return c.kind
}

// RegisterInterconnect binds an interconnect to this controller.
func (c *Comp) RegisterInterconnect(ic mem.Interconnect, pt mem.PortType) {
	c.bindings = append(c.bindings, mem.BoundInterconnect{
		Interconnect: ic,
		PortType:     pt,
	})
}

// RegisteredInterconnects returns the bindings in registration order.
func (c *Comp) RegisteredInterconnects() []mem.BoundInterconnect {
	return c.bindings
}

// Clock advances the controller by one cycle.
func (c *Comp) Clock() {
	c.cycles++
}

// DumpInfo writes the controller state.
func (c *Comp) DumpInfo(w io.Writer) {
	fmt.Fprintf(w, "Cache %s [%s, core %d]: %d KB, latency %d, cycles %d\n",
		c.name, c.kind, c.coreID, c.sizeKB, c.latency, c.cycles)
}

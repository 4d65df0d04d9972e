// Package dram provides an ideal memory controller with a fixed access
// latency. Timing inside the device is not modeled.
package dram

import (
	"fmt"
	"io"

	"github.com/sarchlab/machsim/mem"
)

// Comp is an ideal DRAM controller.
type Comp struct {
	name    string
	coreID  int
	latency int

	cycles   uint64
	bindings []mem.BoundInterconnect
}

// Builder can build ideal DRAM controllers.
type Builder struct {
	coreID  int
	latency int
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{latency: 100}
}

// WithCoreID sets the core the controller is affine to.
func (b Builder) WithCoreID(coreID int) Builder {
	b.coreID = coreID
	return b
}

// WithLatency sets the access latency in cycles.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// Build builds a DRAM controller with the given instance name.
func (b Builder) Build(name string) *Comp {
	return &Comp{
		name:    name,
		coreID:  b.coreID,
		latency: b.latency,
	}
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
	return mem.KindDRAM
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
	fmt.Fprintf(w, "DRAM %s [core %d]: latency %d, cycles %d\n",
		c.name, c.coreID, c.latency, c.cycles)
}

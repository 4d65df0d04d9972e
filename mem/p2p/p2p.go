// Package p2p provides a point-to-point link interconnect intended to bind
// exactly two controllers, such as a last-level cache and a memory
// controller.
package p2p

import (
	"fmt"
	"io"

	"github.com/sarchlab/machsim/mem"
)

// Comp is a point-to-point link.
type Comp struct {
	name    string
	latency int

	cycles      uint64
	controllers []mem.Controller
}

// Builder can build point-to-point links.
type Builder struct {
	latency int
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{latency: 1}
}

// WithLatency sets the transfer latency in cycles.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// Build builds a link with the given instance name.
func (b Builder) Build(name string) *Comp {
	return &Comp{
		name:    name,
		latency: b.latency,
	}
}

// Name returns the interconnect's generated instance name.
func (c *Comp) Name() string {
	return c.name
}

// RegisterController attaches a controller to the link.
func (c *Comp) RegisterController(ctrl mem.Controller) {
	c.controllers = append(c.controllers, ctrl)
}

// Controllers returns the attached controllers in registration order.
func (c *Comp) Controllers() []mem.Controller {
	return c.controllers
}

// Clock advances the link by one cycle.
func (c *Comp) Clock() {
	c.cycles++
}

// DumpInfo writes the interconnect state.
func (c *Comp) DumpInfo(w io.Writer) {
	fmt.Fprintf(w, "P2P %s: latency %d, %d controllers, cycles %d\n",
		c.name, c.latency, len(c.controllers), c.cycles)
}

// Package bus provides a shared split-transaction bus interconnect.
package bus

import (
	"fmt"
	"io"

	"github.com/sarchlab/machsim/mem"
)

// Comp is a shared bus binding any number of controllers.
type Comp struct {
	name    string
	width   int
	latency int

	cycles      uint64
	controllers []mem.Controller
}

// Builder can build shared buses.
type Builder struct {
	width   int
	latency int
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		width:   64,
		latency: 1,
	}
}

// WithWidth sets the bus width in bytes.
func (b Builder) WithWidth(width int) Builder {
	b.width = width
	return b
}

// WithLatency sets the transfer latency in cycles.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// Build builds a bus with the given instance name.
func (b Builder) Build(name string) *Comp {
	return &Comp{
		name:    name,
		width:   b.width,
		latency: b.latency,
	}
}

// Name returns the interconnect's generated instance name.
func (c *Comp) Name() string {
	return c.name
}

// RegisterController attaches a controller to the bus.
func (c *Comp) RegisterController(ctrl mem.Controller) {
	c.controllers = append(c.controllers, ctrl)
}

// Controllers returns the attached controllers in registration order.
func (c *Comp) Controllers() []mem.Controller {
	return c.controllers
}

// Clock advances the bus by one cycle.
func (c *Comp) Clock() {
	c.cycles++
}

// DumpInfo writes the interconnect state.
func (c *Comp) DumpInfo(w io.Writer) {
	fmt.Fprintf(w, "Bus %s: width %d, latency %d, %d controllers, cycles %d\n",
		c.name, c.width, c.latency, len(c.controllers), c.cycles)
}

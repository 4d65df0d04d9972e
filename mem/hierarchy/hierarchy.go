// Package hierarchy provides the concrete memory hierarchy that clocks all
// controllers and interconnects of one assembled machine.
package hierarchy

import (
	"fmt"
	"io"

	"github.com/sarchlab/machsim/mem"
)

// Hierarchy drives every registered controller and interconnect once per
// simulated cycle. Interconnects are clocked before controllers so that
// messages in flight move before the endpoints act on them.
type Hierarchy struct {
	name          string
	cycle         uint64
	controllers   []mem.Controller
	interconnects []mem.Interconnect
}

// New creates an empty Hierarchy.
func New(name string) *Hierarchy {
	return &Hierarchy{name: name}
}

// Name returns the hierarchy's name.
func (h *Hierarchy) Name() string {
	return h.name
}

// AddController registers a controller to be clocked.
func (h *Hierarchy) AddController(c mem.Controller) {
	h.controllers = append(h.controllers, c)
}

// AddInterconnect registers an interconnect to be clocked.
func (h *Hierarchy) AddInterconnect(ic mem.Interconnect) {
	h.interconnects = append(h.interconnects, ic)
}

// Clock advances the whole memory subsystem by one cycle.
func (h *Hierarchy) Clock() {
	for _, ic := range h.interconnects {
		ic.Clock()
	}

	for _, c := range h.controllers {
		c.Clock()
	}

	h.cycle++
}

// Cycle returns the number of cycles the hierarchy has been clocked.
func (h *Hierarchy) Cycle() uint64 {
	return h.cycle
}

// DumpInfo writes a human-readable description of the hierarchy state.
func (h *Hierarchy) DumpInfo(w io.Writer) {
	fmt.Fprintf(w, "Hierarchy %s: cycle %d, %d controllers, %d interconnects\n",
		h.name, h.cycle, len(h.controllers), len(h.interconnects))

	for _, ic := range h.interconnects {
		ic.DumpInfo(w)
	}

	for _, c := range h.controllers {
		c.DumpInfo(w)
	}
}

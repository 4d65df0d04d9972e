// Package machine provides the topology assembler. A Machine holds the
// live component collections of one simulated machine and exposes the
// instantiation and wiring API that machine generators call. Component
// kinds are resolved by name through explicit factory registries.
package machine

import (
	"fmt"
	"io"

	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/mem"
	"github.com/sarchlab/machsim/options"
	"github.com/sarchlab/machsim/runlog"
	"github.com/sarchlab/machsim/stats"
)

// MaxContexts bounds the number of execution contexts and core ids one
// machine can allocate.
const MaxContexts = 64

// A Machine is one assembled simulation instance.
type Machine struct {
	name       string
	registries *Registries
	log        *runlog.Logger
	opts       *options.Store

	cores            []core.Core
	controllers      []mem.Controller
	interconnects    []mem.Interconnect
	connections      []*ConnectionDef
	controllerByName map[string]mem.Controller

	hier mem.MemoryHierarchy

	contexts       [MaxContexts]core.Context
	contextCounter int
	coreIDCounter  int
}

// New creates an empty Machine. regs must be populated before any
// generator runs.
func New(name string, regs *Registries, log *runlog.Logger) *Machine {
	if log == nil {
		log = runlog.Discard()
	}

	m := &Machine{
		name:             name,
		registries:       regs,
		log:              log,
		opts:             options.NewStore(),
		controllerByName: make(map[string]mem.Controller),
	}

	for i := range m.contexts {
		m.contexts[i].ID = i
	}

	return m
}

// Name returns the machine's identifying name.
func (m *Machine) Name() string {
	return m.name
}

// Registries returns the factory registries this machine resolves kind
// names against.
func (m *Machine) Registries() *Registries {
	return m.registries
}

// Options returns the machine's option store.
func (m *Machine) Options() *options.Store {
	return m.opts
}

// Log returns the machine's run log.
func (m *Machine) Log() *runlog.Logger {
	return m.log
}

// Cores returns the cores in registration order.
func (m *Machine) Cores() []core.Core {
	return m.cores
}

// NumCores returns the number of instantiated cores.
func (m *Machine) NumCores() int {
	return len(m.cores)
}

// Controllers returns the controllers in registration order.
func (m *Machine) Controllers() []mem.Controller {
	return m.controllers
}

// Interconnects returns the interconnects in creation order.
func (m *Machine) Interconnects() []mem.Interconnect {
	return m.interconnects
}

// ControllerByName resolves a controller by its generated instance name.
func (m *Machine) ControllerByName(name string) (mem.Controller, bool) {
	c, ok := m.controllerByName[name]
	return c, ok
}

// SetMemoryHierarchy installs the memory hierarchy collaborator. Must be
// called before controllers are instantiated.
func (m *Machine) SetMemoryHierarchy(h mem.MemoryHierarchy) {
	m.hier = h
}

// MemoryHierarchy returns the current memory hierarchy collaborator.
func (m *Machine) MemoryHierarchy() mem.MemoryHierarchy {
	return m.hier
}

// BindCoresToHierarchy rebinds every core to the current memory hierarchy.
// Invoked once after assembly.
func (m *Machine) BindCoresToHierarchy() {
	for _, c := range m.cores {
		c.UpdateMemoryHierarchy(m.hier)
	}
}

// NextContext allocates the next execution context. Context allocation
// past MaxContexts is a fatal resource-limit mismatch.
func (m *Machine) NextContext() *core.Context {
	if m.contextCounter >= MaxContexts {
		m.log.Fatalf("context capacity exceeded (%d contexts)", MaxContexts)
	}

	ctx := &m.contexts[m.contextCounter]
	m.contextCounter++

	return ctx
}

// Context returns the execution context with the given index.
func (m *Machine) Context(i int) *core.Context {
	return &m.contexts[i]
}

// ContextsUsed returns the number of allocated contexts.
func (m *Machine) ContextsUsed() int {
	return m.contextCounter
}

// NextCoreID allocates the next unique core id.
func (m *Machine) NextCoreID() int {
	if m.coreIDCounter >= MaxContexts {
		m.log.Fatalf("core id capacity exceeded (%d cores)", MaxContexts)
	}

	id := m.coreIDCounter
	m.coreIDCounter++

	return id
}

// Reset deletes all cores and the memory hierarchy and resets all
// allocation counters, returning the machine to its pre-assembly state.
func (m *Machine) Reset() {
	m.cores = nil
	m.controllers = nil
	m.interconnects = nil
	m.connections = nil
	m.controllerByName = make(map[string]mem.Controller)
	m.hier = nil

	m.contextCounter = 0
	m.coreIDCounter = 0
}

// DumpState writes one section per core followed by the memory hierarchy
// state.
func (m *Machine) DumpState(w io.Writer) {
	for _, c := range m.cores {
		c.DumpState(w)
	}

	fmt.Fprintln(w, " MemoryHierarchy:")
	if m.hier != nil {
		m.hier.DumpInfo(w)
	}
}

// UpdateStats adds every core's counters into the aggregate.
func (m *Machine) UpdateStats(sum *stats.Summary) {
	for _, c := range m.cores {
		c.UpdateStats(sum)
	}
}

// FlushTLB flushes the context's translations on every core.
func (m *Machine) FlushTLB(ctx *core.Context) {
	for _, c := range m.cores {
		c.FlushTLB(ctx)
	}
}

// FlushTLBVirt flushes one virtual address of the context on every core.
func (m *Machine) FlushTLBVirt(ctx *core.Context, virtAddr uint64) {
	for _, c := range m.cores {
		c.FlushTLBVirt(ctx, virtAddr)
	}
}

// TotalInsnsCommitted sums the committed instruction count over all cores.
func (m *Machine) TotalInsnsCommitted() uint64 {
	var total uint64
	for _, c := range m.cores {
		total += c.InsnsCommitted()
	}
	return total
}

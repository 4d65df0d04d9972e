// Package mem defines the capability contracts of the simulated memory
// subsystem. The topology assembler and the cycle scheduler only ever see
// these interfaces; the internal queuing and coherence behavior of a
// controller lives entirely behind them.
package mem

import "io"

// PortType describes which side of a controller an interconnect binds to.
type PortType int

// The port types a controller can expose to an interconnect.
const (
	PortUpper PortType = iota
	PortLower
	PortUpperLower
)

func (t PortType) String() string {
	switch t {
	case PortUpper:
		return "upper"
	case PortLower:
		return "lower"
	case PortUpperLower:
		return "upper_lower"
	}
	return "unknown"
}

// ControllerKind tags a controller with its role in the hierarchy.
type ControllerKind int

// The controller kinds a topology can instantiate.
const (
	KindL1ICache ControllerKind = iota
	KindL1DCache
	KindL2Cache
	KindL3Cache
	KindDRAM
)

func (k ControllerKind) String() string {
	switch k {
	case KindL1ICache:
		return "l1i"
	case KindL1DCache:
		return "l1d"
	case KindL2Cache:
		return "l2"
	case KindL3Cache:
		return "l3"
	case KindDRAM:
		return "dram"
	}
	return "unknown"
}

// A Controller is one memory-hierarchy node, such as a cache or a memory
// controller. Controllers are owned by the machine and referenced by
// interconnects.
type Controller interface {
	Name() string
	CoreID() int
	Kind() ControllerKind

	// RegisterInterconnect records that an interconnect is bound to this
	// controller on the given port. Repeated registration binds twice.
	RegisterInterconnect(ic Interconnect, pt PortType)

	// RegisteredInterconnects returns the bindings in registration order.
	RegisteredInterconnects() []BoundInterconnect

	// Clock advances the controller by one cycle.
	Clock()

	DumpInfo(w io.Writer)
}

// A BoundInterconnect is one (interconnect, port type) binding held by a
// controller.
type BoundInterconnect struct {
	Interconnect Interconnect
	PortType     PortType
}

// An Interconnect is a topology edge binding controllers together. It
// references controllers but does not own them.
type Interconnect interface {
	Name() string

	// RegisterController records a controller attached to this
	// interconnect. Repeated registration binds twice.
	RegisterController(c Controller)

	// Controllers returns the attached controllers in registration order.
	Controllers() []Controller

	// Clock advances the interconnect by one cycle.
	Clock()

	DumpInfo(w io.Writer)
}

// A MemoryHierarchy drives all controllers and interconnects of one
// machine. The scheduler ticks it exactly once per simulated cycle, before
// any core runs that cycle.
type MemoryHierarchy interface {
	Clock()
	DumpInfo(w io.Writer)

	AddController(c Controller)
	AddInterconnect(ic Interconnect)
}

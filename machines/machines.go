// Package machines ships the machine generators and the component
// factories of the stock topologies. DefaultRegistries builds one fully
// populated registry bundle at process start; no factory registers itself
// through package-level side effects.
package machines

import (
	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/core/simplecore"
	"github.com/sarchlab/machsim/machine"
	"github.com/sarchlab/machsim/mem"
	"github.com/sarchlab/machsim/mem/bus"
	"github.com/sarchlab/machsim/mem/cache"
	"github.com/sarchlab/machsim/mem/dram"
	"github.com/sarchlab/machsim/mem/p2p"
	"github.com/sarchlab/machsim/runlog"
)

// DefaultRegistries returns a registry bundle populated with every
// component kind this package ships.
func DefaultRegistries(log *runlog.Logger) *machine.Registries {
	regs := machine.NewRegistries(log)

	regs.Cores.Register("simple", simpleCoreFactory{})

	regs.Controllers.Register("wb_cache", wbCacheFactory{})
	regs.Controllers.Register("simple_dram", simpleDRAMFactory{})

	regs.Interconnects.Register("split_bus", splitBusFactory{})
	regs.Interconnects.Register("p2p", p2pFactory{})

	regs.Machines.Register("single_core", machine.MachineGenerator(SingleCore))
	regs.Machines.Register("shared_l2", machine.MachineGenerator(SharedL2))

	return regs
}

type simpleCoreFactory struct{}

func (simpleCoreFactory) NewCore(
	m *machine.Machine, name string, coreID int,
) core.Core {
	opts := m.Options()

	return simplecore.MakeBuilder().
		WithCoreID(coreID).
		WithIPC(uint64(opts.IntOrDefault(name, "ipc", 1))).
		WithHaltAt(uint64(opts.IntOrDefault(name, "halt_at", 0))).
		Build(name)
}

type wbCacheFactory struct{}

func (wbCacheFactory) NewController(
	m *machine.Machine, name string, coreID int, kind mem.ControllerKind,
) mem.Controller {
	opts := m.Options()

	return cache.MakeBuilder().
		WithCoreID(coreID).
		WithKind(kind).
		WithSizeKB(opts.IntOrDefault(name, "size_kb", 256)).
		WithLatency(opts.IntOrDefault(name, "latency", 4)).
		Build(name)
}

type simpleDRAMFactory struct{}

func (simpleDRAMFactory) NewController(
	m *machine.Machine, name string, coreID int, _ mem.ControllerKind,
) mem.Controller {
	opts := m.Options()

	return dram.MakeBuilder().
		WithCoreID(coreID).
		WithLatency(opts.IntOrDefault(name, "latency", 100)).
		Build(name)
}

type splitBusFactory struct{}

func (splitBusFactory) NewInterconnect(
	m *machine.Machine, name string,
) mem.Interconnect {
	opts := m.Options()

	return bus.MakeBuilder().
		WithWidth(opts.IntOrDefault(name, "width", 64)).
		WithLatency(opts.IntOrDefault(name, "latency", 1)).
		Build(name)
}

type p2pFactory struct{}

func (p2pFactory) NewInterconnect(
	m *machine.Machine, name string,
) mem.Interconnect {
	opts := m.Options()

	return p2p.MakeBuilder().
		WithLatency(opts.IntOrDefault(name, "latency", 1)).
		Build(name)
}

package machine

import (
	"github.com/sarchlab/machsim/config"
	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/mem"
	"github.com/sarchlab/machsim/registry"
	"github.com/sarchlab/machsim/runlog"
)

// A MachineGenerator populates an empty Machine with cores, controllers,
// and interconnects, using the instantiation API and the configuration.
type MachineGenerator func(m *Machine, cfg *config.Config)

// A CoreFactory produces one core instance per call.
type CoreFactory interface {
	NewCore(m *Machine, name string, coreID int) core.Core
}

// A ControllerFactory produces one memory controller instance per call.
type ControllerFactory interface {
	NewController(
		m *Machine,
		name string,
		coreID int,
		kind mem.ControllerKind,
	) mem.Controller
}

// An InterconnectFactory produces one interconnect instance per call.
type InterconnectFactory interface {
	NewInterconnect(m *Machine, name string) mem.Interconnect
}

// Registries bundles the four per-kind factory registries. One bundle is
// populated at process start and passed to every Machine explicitly; there
// is no global registry state.
type Registries struct {
	Machines      *registry.Registry[MachineGenerator]
	Cores         *registry.Registry[CoreFactory]
	Controllers   *registry.Registry[ControllerFactory]
	Interconnects *registry.Registry[InterconnectFactory]
}

// NewRegistries creates an empty registry bundle. Fatal lookup failures
// are reported through log.
func NewRegistries(log *runlog.Logger) *Registries {
	return &Registries{
		Machines:      registry.New[MachineGenerator]("machine", log),
		Cores:         registry.New[CoreFactory]("core", log),
		Controllers:   registry.New[ControllerFactory]("controller", log),
		Interconnects: registry.New[InterconnectFactory]("interconnect", log),
	}
}

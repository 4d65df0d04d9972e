package machines

import (
	"github.com/sarchlab/machsim/config"
	"github.com/sarchlab/machsim/machine"
	"github.com/sarchlab/machsim/mem"
	"github.com/sarchlab/machsim/options"
)

// SingleCore generates a one-core machine with a private L1 cache wired
// point-to-point to a DRAM controller.
func SingleCore(m *machine.Machine, _ *config.Config) {
	m.AddNewCore("core", "simple")
	m.AddNewController(0, "l1_", "wb_cache", mem.KindL1DCache)
	m.AddNewController(0, "dram_", "simple_dram", mem.KindDRAM)

	link := m.NewConnectionDef("p2p", "l1_dram_link_", 0)
	m.AddConnection(link, "l1_0", mem.PortLower)
	m.AddConnection(link, "dram_0", mem.PortUpper)

	m.SetupInterconnects()
}

// SharedL2 generates a machine with cfg.NumCores cores, one private L1
// cache per core, a shared L2 on a split bus, and a DRAM controller behind
// a point-to-point link.
func SharedL2(m *machine.Machine, cfg *config.Config) {
	for i := 0; i < cfg.NumCores; i++ {
		m.AddNewCore("core", "simple")
		m.AddNewController(i, "l1_", "wb_cache", mem.KindL1DCache)
	}

	m.AddNewController(0, "l2_", "wb_cache", mem.KindL2Cache)
	m.AddNewController(0, "dram_", "simple_dram", mem.KindDRAM)

	l1Bus := m.NewConnectionDef("split_bus", "l1_l2_bus_", 0)
	for i := 0; i < cfg.NumCores; i++ {
		m.AddConnection(l1Bus, options.InstanceName("l1_", i), mem.PortLower)
	}
	m.AddConnection(l1Bus, "l2_0", mem.PortUpper)

	m.SetupInterconnects()

	m.CreateInterconnect("p2p", "l2_dram_link_", 0, []machine.Binding{
		{Controller: "l2_0", PortType: mem.PortLower},
		{Controller: "dram_0", PortType: mem.PortUpper},
	})
}

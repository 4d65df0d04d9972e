package machine

import (
	"strconv"

	"github.com/sarchlab/machsim/mem"
)

// A Binding names one (controller, port type) attachment of an
// interconnect.
type Binding struct {
	Controller string
	PortType   mem.PortType
}

// A ConnectionDef is a declarative wiring request: instantiate an
// interconnect of the given kind and bind it to the listed controllers.
// Definitions are consumed once by SetupInterconnects.
type ConnectionDef struct {
	interconnect string // interconnect kind name
	name         string // generated instance name
	bindings     []Binding
}

// Name returns the generated instance name of the pending interconnect.
func (d *ConnectionDef) Name() string {
	return d.name
}

// AddNewCore instantiates a core of the registered kind. The instance name
// is the base name plus the claimed core id. An unregistered kind name is
// fatal.
func (m *Machine) AddNewCore(baseName, kindName string) {
	factory := m.registries.Cores.Lookup(kindName)

	coreID := m.NextCoreID()
	instName := baseName + strconv.Itoa(coreID)

	c := factory.NewCore(m, instName, coreID)
	m.cores = append(m.cores, c)

	m.log.Logf(2, "added core %s (kind %s)", instName, kindName)
}

// AddNewController instantiates a controller of the registered kind,
// affine to coreID and tagged with ckind. The new controller is stored
// under its generated name for later wiring. An unregistered kind name is
// fatal.
func (m *Machine) AddNewController(
	coreID int,
	baseName, kindName string,
	ckind mem.ControllerKind,
) {
	factory := m.registries.Controllers.Lookup(kindName)

	instName := baseName + strconv.Itoa(coreID)

	ctrl := factory.NewController(m, instName, coreID, ckind)
	m.controllers = append(m.controllers, ctrl)
	m.controllerByName[instName] = ctrl

	if m.hier != nil {
		m.hier.AddController(ctrl)
	}

	m.log.Logf(2, "added controller %s (kind %s, core %d)",
		instName, kindName, coreID)
}

// NewConnectionDef declares a pending connection: an interconnect of the
// given kind, named baseName plus id. No components are instantiated yet.
func (m *Machine) NewConnectionDef(
	interconnectKind, baseName string,
	id int,
) *ConnectionDef {
	def := &ConnectionDef{
		interconnect: interconnectKind,
		name:         baseName + strconv.Itoa(id),
	}
	m.connections = append(m.connections, def)

	return def
}

// AddConnection appends one (controller name, port type) pair to a pending
// connection. Declarative only.
func (m *Machine) AddConnection(
	def *ConnectionDef,
	controllerName string,
	pt mem.PortType,
) {
	def.bindings = append(def.bindings, Binding{
		Controller: controllerName,
		PortType:   pt,
	})
}

// SetupInterconnects finalizes every declared connection in declaration
// order: the interconnect is instantiated by kind name and bound
// symmetrically to each declared controller. Repeated pairs bind twice.
// Unresolvable kind or controller names are fatal. The declarations are
// consumed.
func (m *Machine) SetupInterconnects() {
	for _, def := range m.connections {
		m.buildInterconnect(def.interconnect, def.name, def.bindings)
	}

	m.connections = nil
}

// CreateInterconnect instantiates and wires an interconnect immediately
// from an ordered binding list, bypassing the declare/finalize flow.
func (m *Machine) CreateInterconnect(
	interconnectKind, baseName string,
	id int,
	bindings []Binding,
) {
	m.buildInterconnect(
		interconnectKind, baseName+strconv.Itoa(id), bindings)
}

func (m *Machine) buildInterconnect(
	kindName, instName string,
	bindings []Binding,
) {
	factory := m.registries.Interconnects.Lookup(kindName)

	ic := factory.NewInterconnect(m, instName)
	m.interconnects = append(m.interconnects, ic)

	if m.hier != nil {
		m.hier.AddInterconnect(ic)
	}

	for _, b := range bindings {
		ctrl, ok := m.controllerByName[b.Controller]
		if !ok {
			m.log.Fatalf(
				"::ERROR::Can't find controller '%s' while wiring "+
					"interconnect '%s'. Please check your config file.",
				b.Controller, instName)
		}

		ic.RegisterController(ctrl)
		ctrl.RegisterInterconnect(ic, b.PortType)
	}

	m.log.Logf(2, "wired interconnect %s (kind %s) to %d controllers",
		instName, kindName, len(bindings))
}

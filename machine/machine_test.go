package machine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/core/simplecore"
	"github.com/sarchlab/machsim/mem"
)

type coreFactoryFunc func(m *Machine, name string, coreID int) core.Core

func (f coreFactoryFunc) NewCore(
	m *Machine, name string, coreID int,
) core.Core {
	return f(m, name, coreID)
}

type controllerFactoryFunc func(
	m *Machine, name string, coreID int, kind mem.ControllerKind,
) mem.Controller

func (f controllerFactoryFunc) NewController(
	m *Machine, name string, coreID int, kind mem.ControllerKind,
) mem.Controller {
	return f(m, name, coreID, kind)
}

type interconnectFactoryFunc func(m *Machine, name string) mem.Interconnect

func (f interconnectFactoryFunc) NewInterconnect(
	m *Machine, name string,
) mem.Interconnect {
	return f(m, name)
}

var _ = Describe("Machine", func() {
	var (
		mockCtrl *gomock.Controller
		regs     *Registries
		m        *Machine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		regs = NewRegistries(nil)
		m = New("test_machine", regs, nil)

		regs.Cores.Register("simple", coreFactoryFunc(
			func(_ *Machine, name string, coreID int) core.Core {
				return simplecore.MakeBuilder().
					WithCoreID(coreID).
					Build(name)
			}))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should instantiate cores with unique increasing ids", func() {
		m.AddNewCore("core", "simple")
		m.AddNewCore("core", "simple")
		m.AddNewCore("core", "simple")

		Expect(m.NumCores()).To(Equal(3))
		for i, c := range m.Cores() {
			Expect(c.CoreID()).To(Equal(i))
		}
	})

	It("should fail fatally on an unregistered core kind", func() {
		Expect(func() {
			m.AddNewCore("core", "quantum")
		}).To(Panic())
	})

	It("should store controllers under their generated name", func() {
		ctrl := NewMockController(mockCtrl)
		regs.Controllers.Register("wb_cache", controllerFactoryFunc(
			func(_ *Machine, _ string, _ int, _ mem.ControllerKind,
			) mem.Controller {
				return ctrl
			}))

		m.AddNewController(0, "l1_", "wb_cache", mem.KindL1DCache)

		got, ok := m.ControllerByName("l1_0")
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(ctrl))
		Expect(m.Controllers()).To(HaveLen(1))
	})

	It("should fail fatally on an unregistered controller kind", func() {
		Expect(func() {
			m.AddNewController(0, "l1_", "no_such_cache", mem.KindL1DCache)
		}).To(Panic())
	})

	Context("wiring", func() {
		var (
			c0, c1 *MockController
			ic     *MockInterconnect
		)

		BeforeEach(func() {
			c0 = NewMockController(mockCtrl)
			c1 = NewMockController(mockCtrl)
			ic = NewMockInterconnect(mockCtrl)

			ctrls := map[string]mem.Controller{}
			regs.Controllers.Register("wb_cache", controllerFactoryFunc(
				func(_ *Machine, name string, _ int, _ mem.ControllerKind,
				) mem.Controller {
					return ctrls[name]
				}))
			ctrls["l1_0"] = c0
			ctrls["l1_1"] = c1

			regs.Interconnects.Register("split_bus", interconnectFactoryFunc(
				func(_ *Machine, _ string) mem.Interconnect {
					return ic
				}))

			m.AddNewController(0, "l1_", "wb_cache", mem.KindL1DCache)
			m.AddNewController(1, "l1_", "wb_cache", mem.KindL1DCache)
		})

		It("should bind declared connections symmetrically", func() {
			def := m.NewConnectionDef("split_bus", "l1_bus_", 0)
			m.AddConnection(def, "l1_0", mem.PortUpper)
			m.AddConnection(def, "l1_1", mem.PortLower)

			Expect(m.Interconnects()).To(BeEmpty())

			ic.EXPECT().RegisterController(c0)
			ic.EXPECT().RegisterController(c1)
			c0.EXPECT().RegisterInterconnect(ic, mem.PortUpper)
			c1.EXPECT().RegisterInterconnect(ic, mem.PortLower)

			m.SetupInterconnects()

			Expect(m.Interconnects()).To(HaveLen(1))
		})

		It("should bind repeated pairs twice", func() {
			def := m.NewConnectionDef("split_bus", "l1_bus_", 0)
			m.AddConnection(def, "l1_0", mem.PortUpper)
			m.AddConnection(def, "l1_0", mem.PortUpper)

			ic.EXPECT().RegisterController(c0).Times(2)
			c0.EXPECT().RegisterInterconnect(ic, mem.PortUpper).Times(2)

			m.SetupInterconnects()
		})

		It("should consume the declarations", func() {
			def := m.NewConnectionDef("split_bus", "l1_bus_", 0)
			m.AddConnection(def, "l1_0", mem.PortUpper)

			ic.EXPECT().RegisterController(c0)
			c0.EXPECT().RegisterInterconnect(ic, mem.PortUpper)

			m.SetupInterconnects()
			m.SetupInterconnects()

			Expect(m.Interconnects()).To(HaveLen(1))
		})

		It("should fail fatally on an unregistered interconnect kind", func() {
			m.NewConnectionDef("crossbar", "xbar_", 0)

			Expect(func() {
				m.SetupInterconnects()
			}).To(Panic())
		})

		It("should fail fatally on an unresolvable controller name", func() {
			def := m.NewConnectionDef("split_bus", "l1_bus_", 0)
			m.AddConnection(def, "l9_9", mem.PortUpper)

			Expect(func() {
				m.SetupInterconnects()
			}).To(Panic())
		})

		It("should wire the immediate path equivalently", func() {
			ic.EXPECT().RegisterController(c0)
			ic.EXPECT().RegisterController(c1)
			c0.EXPECT().RegisterInterconnect(ic, mem.PortUpper)
			c1.EXPECT().RegisterInterconnect(ic, mem.PortLower)

			m.CreateInterconnect("split_bus", "l1_bus_", 0, []Binding{
				{Controller: "l1_0", PortType: mem.PortUpper},
				{Controller: "l1_1", PortType: mem.PortLower},
			})

			Expect(m.Interconnects()).To(HaveLen(1))
		})
	})

	Context("allocation", func() {
		It("should allocate strictly increasing unique contexts", func() {
			seen := map[int]bool{}
			last := -1

			for i := 0; i < MaxContexts; i++ {
				ctx := m.NextContext()
				Expect(ctx.ID).To(BeNumerically(">", last))
				Expect(seen[ctx.ID]).To(BeFalse())
				seen[ctx.ID] = true
				last = ctx.ID
			}

			Expect(m.ContextsUsed()).To(Equal(MaxContexts))
		})

		It("should fail fatally past context capacity", func() {
			for i := 0; i < MaxContexts; i++ {
				m.NextContext()
			}

			Expect(func() {
				m.NextContext()
			}).To(Panic())
		})

		It("should fail fatally past core id capacity", func() {
			for i := 0; i < MaxContexts; i++ {
				m.NextCoreID()
			}

			Expect(func() {
				m.NextCoreID()
			}).To(Panic())
		})
	})

	It("should return to the pre-assembly state on reset", func() {
		m.AddNewCore("core", "simple")
		m.NextContext()

		m.Reset()

		Expect(m.NumCores()).To(Equal(0))
		Expect(m.ContextsUsed()).To(Equal(0))
		Expect(m.NextCoreID()).To(Equal(0))
		Expect(m.MemoryHierarchy()).To(BeNil())
	})
})

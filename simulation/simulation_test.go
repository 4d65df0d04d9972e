package simulation_test

import (
	"bytes"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/machsim/config"
	"github.com/sarchlab/machsim/machines"
	"github.com/sarchlab/machsim/simulation"
)

func sharedL2Config() *config.Config {
	cfg := config.Default()
	cfg.MachineName = "shared_l2"
	cfg.NumCores = 2
	return &cfg
}

var _ = Describe("Simulation", func() {
	var s *simulation.Simulation

	AfterEach(func() {
		if s != nil {
			s.Terminate()
			s = nil
		}
	})

	It("should require a configuration", func() {
		Expect(func() {
			simulation.MakeBuilder().
				WithRegistries(machines.DefaultRegistries(nil)).
				Build()
		}).To(Panic())
	})

	It("should require registries", func() {
		Expect(func() {
			simulation.MakeBuilder().
				WithConfig(sharedL2Config()).
				Build()
		}).To(Panic())
	})

	It("should abort when no machine model is named", func() {
		cfg := sharedL2Config()
		cfg.MachineName = ""
		s = simulation.MakeBuilder().
			WithConfig(cfg).
			WithRegistries(machines.DefaultRegistries(nil)).
			Build()

		Expect(func() { s.Init() }).To(Panic())
	})

	It("should abort when the machine model is not registered", func() {
		cfg := sharedL2Config()
		cfg.MachineName = "no_such_machine"
		s = simulation.MakeBuilder().
			WithConfig(cfg).
			WithRegistries(machines.DefaultRegistries(nil)).
			Build()

		Expect(func() { s.Init() }).To(Panic())
	})

	It("should refuse to run before Init", func() {
		s = simulation.MakeBuilder().
			WithConfig(sharedL2Config()).
			WithRegistries(machines.DefaultRegistries(nil)).
			Build()

		Expect(func() { s.Run() }).To(Panic())
	})

	It("should run a two-core machine to its instruction budget", func() {
		cfg := sharedL2Config()
		cfg.StopAtUserInsns = 1000
		s = simulation.MakeBuilder().
			WithConfig(cfg).
			WithRegistries(machines.DefaultRegistries(nil)).
			Build()
		s.Init()

		exitRequested := s.Run()

		Expect(exitRequested).To(BeFalse())
		Expect(s.Scheduler().TotalInsns()).To(
			BeNumerically(">=", 1000))
		// Two cores committing one instruction per cycle.
		Expect(s.Scheduler().Cycle()).To(Equal(uint64(500)))

		buf := &bytes.Buffer{}
		s.DumpState(buf)
		Expect(strings.Count(buf.String(), "Core ")).To(Equal(2))
	})

	It("should capture core 0's context when a core requests "+
		"termination", func() {
		cfg := sharedL2Config()
		s = simulation.MakeBuilder().
			WithConfig(cfg).
			WithRegistries(machines.DefaultRegistries(nil)).
			Build()
		s.Options().AddIntFor("core", 1, "halt_at", 200)
		s.Init()

		exitRequested := s.Run()

		Expect(exitRequested).To(BeTrue())
		Expect(s.ReturnContext()).To(
			BeIdenticalTo(s.Machine().Context(0)))
	})

	It("should allow re-generating the machine after Reset", func() {
		cfg := sharedL2Config()
		cfg.StopAtUserInsns = 100
		s = simulation.MakeBuilder().
			WithConfig(cfg).
			WithRegistries(machines.DefaultRegistries(nil)).
			Build()
		s.Init()
		s.Run()

		s.Reset()
		Expect(s.Machine().NumCores()).To(Equal(0))

		s.Init()
		Expect(s.Machine().NumCores()).To(Equal(2))
		Expect(s.Run()).To(BeFalse())
	})

	It("should keep recording stats across Reset and re-Init", func() {
		cfg := sharedL2Config()
		cfg.StopAtUserInsns = 100
		cfg.StatsFile = filepath.Join(
			GinkgoT().TempDir(), "run_stats.sqlite3")
		s = simulation.MakeBuilder().
			WithConfig(cfg).
			WithRegistries(machines.DefaultRegistries(nil)).
			Build()
		s.Init()
		s.Run()

		// The recorder outlives the machine; the rebuilt scheduler
		// re-registers its tables against it.
		s.Reset()
		s.Init()

		Expect(func() { s.Run() }).ToNot(Panic())
		Expect(s.Scheduler().TotalInsns()).To(
			BeNumerically(">=", 100))
	})

	It("should assign each simulation a unique id", func() {
		regs := machines.DefaultRegistries(nil)
		a := simulation.MakeBuilder().
			WithConfig(sharedL2Config()).
			WithRegistries(regs).
			Build()
		defer a.Terminate()

		b := simulation.MakeBuilder().
			WithConfig(sharedL2Config()).
			WithRegistries(regs).
			Build()
		defer b.Terminate()

		Expect(a.ID()).ToNot(Equal(b.ID()))
	})
})

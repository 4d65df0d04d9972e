package scheduler

import (
	"math"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/machsim/config"
	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/core/simplecore"
	"github.com/sarchlab/machsim/machine"
	"github.com/sarchlab/machsim/mem/hierarchy"
	"github.com/sarchlab/machsim/runlog"
)

type optionCoreFactory struct{}

func (optionCoreFactory) NewCore(
	m *machine.Machine, name string, coreID int,
) core.Core {
	opts := m.Options()
	return simplecore.MakeBuilder().
		WithCoreID(coreID).
		WithIPC(uint64(opts.IntOrDefault(name, "ipc", 1))).
		WithHaltAt(uint64(opts.IntOrDefault(name, "halt_at", 0))).
		Build(name)
}

// buildMachine assembles numCores synthetic cores committing ipc
// instructions per cycle. haltAt maps core ids to termination-request
// points.
func buildMachine(
	numCores int,
	ipc uint64,
	haltAt map[int]uint64,
) *machine.Machine {
	regs := machine.NewRegistries(nil)
	regs.Cores.Register("simple", optionCoreFactory{})

	m := machine.New("sched_test", regs, nil)
	m.SetMemoryHierarchy(hierarchy.New("hier"))

	for i := 0; i < numCores; i++ {
		m.Options().AddIntFor("core", i, "ipc", int(ipc))
		if h, ok := haltAt[i]; ok {
			m.Options().AddIntFor("core", i, "halt_at", int(h))
		}
		m.AddNewCore("core", "simple")
	}

	return m
}

type progressTally struct {
	total uint64
}

func (p *progressTally) IncrementFinished(amount uint64) {
	p.total += amount
}

func unboundedConfig() *config.Config {
	cfg := config.Default()
	cfg.StopAtUserInsns = math.MaxUint64
	return &cfg
}

var _ = Describe("Scheduler", func() {
	var sched *Scheduler

	AfterEach(func() {
		if sched != nil {
			sched.Shutdown()
		}
	})

	Context("sequential mode", func() {
		It("should stop on the instruction budget", func() {
			m := buildMachine(2, 1, nil)
			cfg := unboundedConfig()
			cfg.StopAtUserInsns = 1000
			sched = New(m, cfg, nil, nil)

			exitRequested := sched.Run()

			Expect(exitRequested).To(BeFalse())
			Expect(sched.TotalInsns()).To(BeNumerically(">=", 1000))
			// Two cores at one instruction per cycle.
			Expect(sched.Cycle()).To(Equal(uint64(500)))
		})

		It("should stop when a core requests termination", func() {
			m := buildMachine(2, 1, map[int]uint64{1: 500})
			sched = New(m, unboundedConfig(), nil, nil)

			exitRequested := sched.Run()

			Expect(exitRequested).To(BeTrue())
			Expect(sched.Cycle()).To(Equal(uint64(500)))
		})

		It("should capture core 0's context as the representative "+
			"regardless of which core exited", func() {
			m := buildMachine(4, 1, map[int]uint64{3: 100})
			sched = New(m, unboundedConfig(), nil, nil)

			sched.Run()

			Expect(sched.ReturnContext()).To(
				BeIdenticalTo(m.Context(0)))
		})

		It("should stop immediately when wait_all_finished is set", func() {
			m := buildMachine(2, 1, nil)
			cfg := unboundedConfig()
			cfg.WaitAllFinished = true
			sched = New(m, cfg, nil, nil)

			exitRequested := sched.Run()

			Expect(exitRequested).To(BeFalse())
			Expect(sched.Cycle()).To(Equal(uint64(1)))
		})

		It("should tick the hierarchy once per cycle before the cores",
			func() {
				m := buildMachine(2, 1, nil)
				cfg := unboundedConfig()
				cfg.StopAtUserInsns = 100
				sched = New(m, cfg, nil, nil)

				sched.Run()

				h := m.MemoryHierarchy().(*hierarchy.Hierarchy)
				Expect(h.Cycle()).To(Equal(sched.Cycle()))
			})

		It("should publish committed instructions to a progress sink",
			func() {
				m := buildMachine(2, 1, nil)
				cfg := unboundedConfig()
				cfg.StopAtUserInsns = 1000
				cfg.ProgressInterval = 100
				sched = New(m, cfg, nil, nil)

				tally := &progressTally{}
				sched.AttachProgress(tally)

				sched.Run()

				// Periodic publishes plus the final one at the stop add
				// up to the full committed count.
				Expect(tally.total).To(Equal(sched.TotalInsns()))
			})

		It("should publish the remainder when a core requests "+
			"termination", func() {
			m := buildMachine(2, 1, map[int]uint64{0: 50})
			sched = New(m, unboundedConfig(), nil, nil)

			tally := &progressTally{}
			sched.AttachProgress(tally)

			sched.Run()

			Expect(tally.total).To(Equal(sched.TotalInsns()))
		})

		It("should reset cores on the first run only", func() {
			m := buildMachine(1, 1, nil)
			cfg := unboundedConfig()
			cfg.StopAtUserInsns = 10
			sched = New(m, cfg, nil, nil)

			sched.Run()
			first := m.TotalInsnsCommitted()

			cfg.StopAtUserInsns = 20
			sched.Run()

			Expect(first).To(Equal(uint64(10)))
			// No reset between runs: the counter keeps growing.
			Expect(m.TotalInsnsCommitted()).To(BeNumerically(">=", 20))
		})
	})

	Context("parallel mode", func() {
		threadedConfig := func() *config.Config {
			cfg := unboundedConfig()
			cfg.ThreadedSimulation = true
			cfg.CoresPerThread = 1
			return cfg
		}

		It("should refuse parallel mode for too few cores", func() {
			m := buildMachine(2, 1, nil)
			cfg := unboundedConfig()
			cfg.ThreadedSimulation = true
			cfg.CoresPerThread = 4
			sched = New(m, cfg, nil, nil)

			sched.SetupWorkers()

			Expect(sched.Threaded()).To(BeFalse())
			Expect(cfg.ThreadedSimulation).To(BeFalse())
		})

		It("should refuse parallel mode when fine-grained logging is on",
			func() {
				logPath := filepath.Join(GinkgoT().TempDir(), "run.log")
				log, err := runlog.New(logPath, 1, 0)
				Expect(err).ToNot(HaveOccurred())
				defer log.Close()

				m := buildMachine(8, 1, nil)
				cfg := threadedConfig()
				sched = New(m, cfg, log, nil)

				sched.SetupWorkers()

				Expect(sched.Threaded()).To(BeFalse())
			})

		It("should partition cores into fixed-size groups", func() {
			m := buildMachine(8, 1, nil)
			cfg := threadedConfig()
			cfg.CoresPerThread = 3
			sched = New(m, cfg, nil, nil)

			sched.SetupWorkers()

			// 3 + 3 + 2 cores.
			Expect(sched.NumWorkers()).To(Equal(3))
			Expect(sched.Threaded()).To(BeTrue())
		})

		It("should match sequential results on the budget path", func() {
			seqM := buildMachine(4, 2, nil)
			seqCfg := unboundedConfig()
			seqCfg.StopAtUserInsns = 1000
			seq := New(seqM, seqCfg, nil, nil)
			seqExit := seq.Run()

			parM := buildMachine(4, 2, nil)
			parCfg := threadedConfig()
			parCfg.StopAtUserInsns = 1000
			sched = New(parM, parCfg, nil, nil)
			sched.SetupWorkers()
			parExit := sched.Run()

			Expect(sched.Threaded()).To(BeTrue())
			Expect(parExit).To(Equal(seqExit))
			Expect(sched.Cycle()).To(Equal(seq.Cycle()))
			Expect(sched.TotalInsns()).To(Equal(seq.TotalInsns()))
		})

		It("should match sequential results on the exit-request path",
			func() {
				halts := map[int]uint64{2: 300}

				seqM := buildMachine(4, 1, halts)
				seq := New(seqM, unboundedConfig(), nil, nil)
				seqExit := seq.Run()

				parM := buildMachine(4, 1, halts)
				sched = New(parM, threadedConfig(), nil, nil)
				sched.SetupWorkers()
				parExit := sched.Run()

				Expect(parExit).To(BeTrue())
				Expect(parExit).To(Equal(seqExit))
				Expect(sched.Cycle()).To(Equal(seq.Cycle()))
				Expect(sched.TotalInsns()).To(Equal(seq.TotalInsns()))
				Expect(sched.ReturnContext()).To(
					BeIdenticalTo(parM.Context(0)))
			})

		It("should shut the pool down cooperatively", func() {
			m := buildMachine(8, 1, nil)
			cfg := threadedConfig()
			cfg.StopAtUserInsns = 800
			sched = New(m, cfg, nil, nil)
			sched.SetupWorkers()

			sched.Run()
			sched.Shutdown()

			Expect(sched.Threaded()).To(BeFalse())
			Expect(sched.NumWorkers()).To(Equal(0))

			// A second shutdown is a no-op.
			sched.Shutdown()
		})
	})
})

// Package simulation ties a machine and its scheduler into one top-level
// object that owns the run log, the statistics recorder, and the optional
// monitoring server.
package simulation

import (
	"io"
	"math"

	"github.com/sarchlab/machsim/config"
	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/machine"
	"github.com/sarchlab/machsim/mem/hierarchy"
	"github.com/sarchlab/machsim/monitoring"
	"github.com/sarchlab/machsim/options"
	"github.com/sarchlab/machsim/runlog"
	"github.com/sarchlab/machsim/scheduler"
	"github.com/sarchlab/machsim/stats"
)

// A Simulation owns one assembled machine and the scheduler that drives
// it.
type Simulation struct {
	id   string
	cfg  *config.Config
	regs *machine.Registries

	log      *runlog.Logger
	recorder stats.Recorder
	monitor  *monitoring.Monitor

	mach  *machine.Machine
	sched *scheduler.Scheduler

	initialized bool
}

// ID returns the unique identifier of this simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the run configuration.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Machine returns the machine under simulation.
func (s *Simulation) Machine() *machine.Machine {
	return s.mach
}

// Scheduler returns the cycle scheduler. It is nil before Init.
func (s *Simulation) Scheduler() *scheduler.Scheduler {
	return s.sched
}

// Options returns the per-component option store of the machine. Options
// set before Init are visible to the component factories.
func (s *Simulation) Options() *options.Store {
	return s.mach.Options()
}

// NextContext allocates the next execution context of the machine.
func (s *Simulation) NextContext() *core.Context {
	return s.mach.NextContext()
}

// NextCoreID claims the next unique core id of the machine.
func (s *Simulation) NextCoreID() int {
	return s.mach.NextCoreID()
}

// Recorder returns the statistics recorder.
func (s *Simulation) Recorder() stats.Recorder {
	return s.recorder
}

// Init assembles the machine named in the configuration and prepares the
// scheduler. It aborts the process if no machine model is named or the
// name is not registered.
func (s *Simulation) Init() {
	if s.initialized {
		panic("simulation already initialized")
	}

	if s.cfg.MachineName == "" {
		s.log.Fatalf("::ERROR::No machine model specified. " +
			"Please set machine_name in your config file.")
	}

	generate := s.regs.Machines.Lookup(s.cfg.MachineName)

	s.mach.SetMemoryHierarchy(hierarchy.New(s.cfg.MachineName + "_hier"))
	generate(s.mach, s.cfg)
	s.mach.BindCoresToHierarchy()

	s.sched = scheduler.New(s.mach, s.cfg, s.log, s.recorder)
	s.sched.SetupWorkers()

	if s.monitor != nil {
		s.monitor.RegisterScheduler(s.sched)
		s.monitor.RegisterMachine(s.mach)

		if s.cfg.StopAtUserInsns != math.MaxUint64 {
			bar := s.monitor.CreateProgressBar(
				"committed instructions", s.cfg.StopAtUserInsns)
			s.sched.AttachProgress(bar)
		}

		s.monitor.StartServer()
	}

	s.initialized = true
}

// Run executes the scheduling loop until a stop condition fires. It
// returns true if a core requested termination, false if the run stopped
// on its instruction budget.
func (s *Simulation) Run() bool {
	if !s.initialized {
		panic("simulation not initialized")
	}

	return s.sched.Run()
}

// ReturnContext returns the representative execution context captured when
// the run stopped, or nil before the first stop.
func (s *Simulation) ReturnContext() *core.Context {
	if s.sched == nil {
		return nil
	}

	return s.sched.ReturnContext()
}

// Reset tears the assembled machine down to an empty shell so that a new
// topology can be generated. The worker pool is drained first.
func (s *Simulation) Reset() {
	if s.sched != nil {
		s.sched.Shutdown()
		s.sched.ResetCounters()
	}

	s.mach.Reset()
	s.initialized = false
}

// DumpState writes a human-readable description of every core and the
// memory hierarchy.
func (s *Simulation) DumpState(w io.Writer) {
	s.mach.DumpState(w)
}

// UpdateStats folds the per-core counters into sum.
func (s *Simulation) UpdateStats(sum *stats.Summary) {
	s.mach.UpdateStats(sum)
}

// FlushTLB flushes all TLB state for ctx on every core.
func (s *Simulation) FlushTLB(ctx *core.Context) {
	s.mach.FlushTLB(ctx)
}

// FlushTLBVirt flushes the TLB entries covering virtAddr for ctx on every
// core.
func (s *Simulation) FlushTLBVirt(ctx *core.Context, virtAddr uint64) {
	s.mach.FlushTLBVirt(ctx, virtAddr)
}

// Terminate drains the worker pool and flushes the recorder and the run
// log. The simulation must not be used afterwards.
func (s *Simulation) Terminate() {
	if s.sched != nil {
		s.sched.Shutdown()
	}

	s.recorder.Close()
	_ = s.log.Close()
}

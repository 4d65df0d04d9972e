// Package scheduler drives simulated time forward. One Scheduler advances
// an assembled machine cycle by cycle, either on the calling thread or,
// when threaded simulation is enabled, on a pool of barrier-synchronized
// worker threads. In both modes the memory hierarchy is ticked before any
// core runs within the same cycle.
package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/sarchlab/machsim/config"
	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/machine"
	"github.com/sarchlab/machsim/runlog"
	"github.com/sarchlab/machsim/stats"
	"github.com/sarchlab/machsim/util/barrier"
)

// A ProgressSink receives committed-instruction progress updates. The
// monitor's progress bars satisfy it.
type ProgressSink interface {
	IncrementFinished(amount uint64)
}

// A Scheduler advances one machine through simulated time.
type Scheduler struct {
	mach     *machine.Machine
	cfg      *config.Config
	log      *runlog.Logger
	recorder stats.Recorder

	summary stats.Summary

	// cycle and totalInsns are written only on the controller thread but
	// read by the monitor, hence the atomics.
	cycle      atomic.Uint64
	iterations atomic.Uint64
	totalInsns atomic.Uint64

	firstRun     bool
	headerDumped bool
	retCtx       *core.Context

	progress          ProgressSink
	progressPublished uint64

	threaded      bool
	groups        [][]core.Core
	startBarrier  *barrier.Barrier
	endBarrier    *barrier.Barrier
	exitMu        sync.Mutex
	exitRequested bool
	shuttingDown  atomic.Bool
	workerWG      sync.WaitGroup
}

// New creates a Scheduler for an assembled machine.
func New(
	mach *machine.Machine,
	cfg *config.Config,
	log *runlog.Logger,
	recorder stats.Recorder,
) *Scheduler {
	if log == nil {
		log = runlog.Discard()
	}
	if recorder == nil {
		recorder = stats.NewNullRecorder()
	}

	return &Scheduler{
		mach:     mach,
		cfg:      cfg,
		log:      log,
		recorder: recorder,
		firstRun: true,
	}
}

// Cycle returns the current simulated cycle.
func (s *Scheduler) Cycle() uint64 {
	return s.cycle.Load()
}

// Iterations returns the number of scheduling iterations performed.
func (s *Scheduler) Iterations() uint64 {
	return s.iterations.Load()
}

// TotalInsns returns the aggregate committed instruction count.
func (s *Scheduler) TotalInsns() uint64 {
	return s.totalInsns.Load()
}

// Summary returns the aggregate run statistics.
func (s *Scheduler) Summary() stats.Summary {
	return s.summary
}

// ReturnContext returns the representative execution context captured when
// the run stopped, or nil before the first stop. The representative is
// always core 0's context.
func (s *Scheduler) ReturnContext() *core.Context {
	return s.retCtx
}

// Threaded reports whether the parallel mode is active.
func (s *Scheduler) Threaded() bool {
	return s.threaded
}

// NumWorkers returns the number of worker threads in parallel mode.
func (s *Scheduler) NumWorkers() int {
	return len(s.groups)
}

// AttachProgress registers a sink for committed-instruction progress.
// Updates are published every ProgressInterval cycles and once more when
// the run stops.
func (s *Scheduler) AttachProgress(p ProgressSink) {
	s.progress = p
}

// publishProgress forwards instructions committed since the last publish.
func (s *Scheduler) publishProgress() {
	if s.progress == nil {
		return
	}

	total := s.totalInsns.Load()
	if total > s.progressPublished {
		s.progress.IncrementFinished(total - s.progressPublished)
		s.progressPublished = total
	}
}

// Run executes the scheduling loop until a stop condition fires. It
// returns true if termination was requested by a core, false if the run
// stopped on its instruction budget.
func (s *Scheduler) Run() bool {
	s.log.Logf(1, "Starting machine toplevel loop")

	s.maybeActivateDeferredLogging()

	for _, c := range s.mach.Cores() {
		if s.firstRun {
			c.Reset()
		}
		c.CheckCtxChanges()
	}
	s.firstRun = false

	if s.threaded {
		return s.runParallel()
	}

	return s.runSequential()
}

func (s *Scheduler) runSequential() bool {
	exiting := false

	for {
		s.beginCycle()

		for _, c := range s.mach.Cores() {
			if s.log.Logable(4) {
				s.log.Logf(4, "running core %d", c.CoreID())
			}
			exiting = c.RunCycle() || exiting
		}

		if s.endCycleAndCheckStop(&exiting) {
			break
		}
	}

	s.log.Logf(1, "Exiting machine run loop at %d commits and %d iterations",
		s.totalInsns.Load(), s.iterations.Load())

	return exiting
}

// beginCycle performs the controller-side work that precedes any core's
// cycle: deferred log activation, progress, stats snapshots, log rotation,
// and the memory hierarchy tick.
func (s *Scheduler) beginCycle() {
	s.maybeActivateDeferredLogging()

	cycle := s.cycle.Load()

	if s.cfg.ProgressInterval > 0 && cycle%s.cfg.ProgressInterval == 0 {
		s.log.Logf(1, "progress: cycle %d, %d commits",
			cycle, s.totalInsns.Load())
		s.publishProgress()
	}

	if cycle == 0 && !s.headerDumped {
		s.recorder.CreateTable("cycle_stats", stats.CycleSnapshot{})
		s.recorder.CreateTable("core_stats", stats.CoreSnapshot{})
		s.headerDumped = true
	}

	if s.cfg.StatsInterval > 0 && cycle%s.cfg.StatsInterval == 0 {
		s.dumpPeriodicStats(cycle)
	}

	if err := s.log.RotateIfNeeded(); err != nil {
		s.log.Printf("log rotation failed: %v", err)
	}

	s.mach.MemoryHierarchy().Clock()
}

// endCycleAndCheckStop performs the controller-side bookkeeping that
// follows all cores' cycles and evaluates the termination condition. It
// returns true when the loop must stop.
func (s *Scheduler) endCycleAndCheckStop(exiting *bool) bool {
	total := s.mach.TotalInsnsCommitted()
	s.totalInsns.Store(total)

	s.summary.Cycles++
	s.cycle.Add(1)
	s.iterations.Add(1)

	stop := false

	if s.cfg.WaitAllFinished || s.cfg.StopAtUserInsns <= total {
		s.log.Printf(
			"Stopping simulation loop at specified limits "+
				"(%d iterations, %d commits)",
			s.iterations.Load(), total)
		stop = true
	}

	if *exiting {
		stop = true
	}

	if stop {
		s.publishProgress()

		if s.retCtx == nil {
			// The representative return context is always core 0's
			// context, regardless of which core requested the exit.
			s.retCtx = s.mach.Context(0)
		}
	}

	return stop
}

func (s *Scheduler) dumpPeriodicStats(cycle uint64) {
	s.recorder.InsertData("cycle_stats", stats.CycleSnapshot{
		Cycle:      cycle,
		TotalInsns: s.totalInsns.Load(),
	})

	for _, c := range s.mach.Cores() {
		s.recorder.InsertData("core_stats", stats.CoreSnapshot{
			Cycle:          cycle,
			CoreID:         c.CoreID(),
			InsnsCommitted: c.InsnsCommitted(),
		})
	}
}

// maybeActivateDeferredLogging turns the run log on once the configured
// iteration count is reached.
func (s *Scheduler) maybeActivateDeferredLogging() {
	if !s.deferredLoggingPending() {
		return
	}

	s.log.Enable()
	s.log.Printf("Start logging at level %d in cycle %d",
		s.cfg.LogLevel, s.iterations.Load())
}

func (s *Scheduler) deferredLoggingPending() bool {
	return s.cfg.StartLogAtIteration > 0 &&
		s.iterations.Load() >= s.cfg.StartLogAtIteration &&
		!s.log.Enabled()
}

// ResetCounters returns the scheduler to the state before the first run.
// The stats tables survive so that a later run appends to them.
func (s *Scheduler) ResetCounters() {
	s.cycle.Store(0)
	s.iterations.Store(0)
	s.totalInsns.Store(0)
	s.summary = stats.Summary{}
	s.firstRun = true
	s.retCtx = nil
	s.progressPublished = 0
}

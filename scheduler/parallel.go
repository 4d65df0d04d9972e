package scheduler

import (
	"runtime"

	"github.com/sarchlab/machsim/core"
	"github.com/sarchlab/machsim/util/barrier"
)

// SetupWorkers partitions the cores into fixed-size groups and spawns one
// worker thread per group. Parallel mode is refused, falling back to
// sequential, when the core count does not exceed the group size or when
// fine-grained logging is enabled: concurrent per-core logging would
// interleave non-deterministically and violate the log's ordering
// contract.
func (s *Scheduler) SetupWorkers() {
	if !s.cfg.ThreadedSimulation || s.threaded {
		return
	}

	numCores := s.mach.NumCores()

	if numCores <= s.cfg.CoresPerThread || s.log.Logable(1) {
		s.cfg.ThreadedSimulation = false
		s.log.Printf("Disabled threaded simulation because " +
			"cores_per_thread >= number of simulated cores " +
			"or fine-grained logging is enabled.")
		return
	}

	numWorkers := (numCores + s.cfg.CoresPerThread - 1) /
		s.cfg.CoresPerThread

	// Both barriers fence the workers plus the controller thread.
	s.startBarrier = barrier.New(numWorkers + 1)
	s.endBarrier = barrier.New(numWorkers + 1)

	cores := s.mach.Cores()
	for start := 0; start < numCores; start += s.cfg.CoresPerThread {
		end := min(start+s.cfg.CoresPerThread, numCores)
		group := cores[start:end]
		s.groups = append(s.groups, group)

		s.workerWG.Add(1)
		go s.workerLoop(group)
	}

	s.threaded = true
	s.log.Printf("Running with %d worker threads", numWorkers)
}

func (s *Scheduler) runParallel() bool {
	exiting := false

	for {
		// Fine-grained logging cannot start while workers run
		// concurrently. Drain the pool and finish the run sequentially.
		if s.deferredLoggingPending() {
			s.Shutdown()
			return s.runSequential()
		}

		s.beginCycle()

		// Release all workers into this cycle, then wait for every
		// worker to finish its group.
		s.startBarrier.Wait()
		s.endBarrier.Wait()

		s.exitMu.Lock()
		if s.exitRequested {
			exiting = true
		}
		s.exitRequested = false
		s.exitMu.Unlock()

		if s.endCycleAndCheckStop(&exiting) {
			break
		}
	}

	s.log.Logf(1, "Exiting machine run loop at %d commits and %d iterations",
		s.totalInsns.Load(), s.iterations.Load())

	return exiting
}

// workerLoop runs one core group, one cycle per barrier round. The worker
// locks its OS thread so groups stay on distinct processing units where
// the runtime allows.
func (s *Scheduler) workerLoop(group []core.Core) {
	defer s.workerWG.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		s.startBarrier.Wait()

		if s.shuttingDown.Load() {
			return
		}

		exiting := false
		for _, c := range group {
			exiting = c.RunCycle() || exiting
		}

		if exiting {
			s.exitMu.Lock()
			s.exitRequested = true
			s.exitMu.Unlock()
		}

		s.endBarrier.Wait()
	}
}

// Shutdown stops the worker pool cooperatively: the shutdown flag is
// published, one final start-barrier release lets every worker observe it
// between cycles, and the workers are joined. Safe to call when no pool is
// active.
func (s *Scheduler) Shutdown() {
	if !s.threaded {
		return
	}

	s.shuttingDown.Store(true)
	s.startBarrier.Wait()
	s.workerWG.Wait()

	s.shuttingDown.Store(false)
	s.threaded = false
	s.groups = nil
	s.startBarrier = nil
	s.endBarrier = nil
}

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/machsim/config"
	"github.com/sarchlab/machsim/machines"
	"github.com/sarchlab/machsim/runlog"
	"github.com/sarchlab/machsim/simulation"
	"github.com/sarchlab/machsim/stats"
)

var runFlags = struct {
	envFile        string
	machine        string
	numCores       int
	stopInsns      uint64
	waitAll        bool
	threaded       bool
	coresPerThread int
	logFile        string
	logLevel       int
	statsFile      string
	monitor        bool
	monitorPort    int
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assemble the configured machine and run it to completion.",
	RunE:  runSimulation,
}

func init() {
	f := runCmd.Flags()

	f.StringVar(&runFlags.envFile, "env-file", "",
		"env file with MACHSIM_* variables")
	f.StringVar(&runFlags.machine, "machine", "",
		"machine model to assemble")
	f.IntVar(&runFlags.numCores, "num-cores", 0,
		"number of cores for topologies that scale")
	f.Uint64Var(&runFlags.stopInsns, "stop-insns", 0,
		"stop after this many committed instructions")
	f.BoolVar(&runFlags.waitAll, "wait-all-finished", false,
		"stop at the next cycle boundary")
	f.BoolVar(&runFlags.threaded, "threaded", false,
		"run core groups on worker threads")
	f.IntVar(&runFlags.coresPerThread, "cores-per-thread", 0,
		"core group size of one worker thread")
	f.StringVar(&runFlags.logFile, "log-file", "",
		"run log path")
	f.IntVar(&runFlags.logLevel, "log-level", 0,
		"run log verbosity")
	f.StringVar(&runFlags.statsFile, "stats-file", "",
		"SQLite stats database path")
	f.BoolVar(&runFlags.monitor, "monitor", false,
		"serve simulation status over HTTP")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"monitor port, 0 picks a random one")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadEnv(runFlags.envFile)
	if err != nil {
		return err
	}

	applyFlagOverrides(cmd, &cfg)

	s, err := buildSimulation(&cfg)
	if err != nil {
		return err
	}
	defer s.Terminate()

	s.Init()

	exitRequested := s.Run()

	summary := stats.Summary{Cycles: s.Scheduler().Cycle()}
	s.UpdateStats(&summary)

	fmt.Fprintf(os.Stdout,
		"Simulation stopped after %d cycles and %d committed "+
			"instructions.\n",
		summary.Cycles, summary.InsnsCommitted)
	if exitRequested {
		fmt.Fprintf(os.Stdout,
			"A core requested termination; representative context %d.\n",
			s.ReturnContext().ID)
	}

	return nil
}

// buildSimulation opens the run log before anything else so that the
// registries and the simulation report fatal errors to the same log, not
// just the console.
func buildSimulation(cfg *config.Config) (*simulation.Simulation, error) {
	var log *runlog.Logger
	if cfg.LogFile != "" {
		var err error
		log, err = runlog.New(cfg.LogFile, cfg.LogLevel, cfg.LogFileMaxSize)
		if err != nil {
			return nil, errors.Wrapf(err, "opening run log %s", cfg.LogFile)
		}
	}

	b := simulation.MakeBuilder().
		WithConfig(cfg).
		WithRegistries(machines.DefaultRegistries(log))
	if log != nil {
		b = b.WithLogger(log)
	}

	return b.Build(), nil
}

// applyFlagOverrides lets command-line flags win over the env file and the
// process environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()

	if f.Changed("machine") {
		cfg.MachineName = runFlags.machine
	}
	if f.Changed("num-cores") {
		cfg.NumCores = runFlags.numCores
	}
	if f.Changed("stop-insns") {
		cfg.StopAtUserInsns = runFlags.stopInsns
	}
	if f.Changed("wait-all-finished") {
		cfg.WaitAllFinished = runFlags.waitAll
	}
	if f.Changed("threaded") {
		cfg.ThreadedSimulation = runFlags.threaded
	}
	if f.Changed("cores-per-thread") {
		cfg.CoresPerThread = runFlags.coresPerThread
	}
	if f.Changed("log-file") {
		cfg.LogFile = runFlags.logFile
	}
	if f.Changed("log-level") {
		cfg.LogLevel = runFlags.logLevel
	}
	if f.Changed("stats-file") {
		cfg.StatsFile = runFlags.statsFile
	}
	if f.Changed("monitor") {
		cfg.MonitorOn = runFlags.monitor
	}
	if f.Changed("monitor-port") {
		cfg.MonitorPort = runFlags.monitorPort
	}
}

package simulation

import (
	"fmt"
	"os"

	"github.com/rs/xid"

	"github.com/sarchlab/machsim/config"
	"github.com/sarchlab/machsim/machine"
	"github.com/sarchlab/machsim/monitoring"
	"github.com/sarchlab/machsim/runlog"
	"github.com/sarchlab/machsim/stats"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg      *config.Config
	regs     *machine.Registries
	log      *runlog.Logger
	recorder stats.Recorder
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithConfig sets the run configuration of the simulation.
func (b Builder) WithConfig(cfg *config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithRegistries sets the component registries used to assemble the
// machine.
func (b Builder) WithRegistries(regs *machine.Registries) Builder {
	b.regs = regs
	return b
}

// WithLogger sets a custom run log. Without it, the builder opens the log
// file named in the configuration, or discards log output if none is
// named.
func (b Builder) WithLogger(log *runlog.Logger) Builder {
	b.log = log
	return b
}

// WithRecorder sets a custom statistics recorder. Without it, the builder
// opens the SQLite file named in the configuration, or records nothing if
// none is named.
func (b Builder) WithRecorder(r stats.Recorder) Builder {
	b.recorder = r
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.cfg == nil {
		panic("a simulation requires a configuration")
	}

	if b.regs == nil {
		panic("a simulation requires component registries")
	}
}

// Build builds the simulation. The machine stays empty until Init runs the
// machine generator named in the configuration.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:   xid.New().String(),
		cfg:  b.cfg,
		regs: b.regs,
	}

	s.log = b.buildLogger()
	s.recorder = b.buildRecorder()
	s.mach = machine.New(b.cfg.MachineName, b.regs, s.log)

	if b.cfg.MonitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.cfg.MonitorPort > 0 {
			s.monitor.WithPortNumber(b.cfg.MonitorPort)
		}
	}

	return s
}

func (b Builder) buildLogger() *runlog.Logger {
	log := b.log

	if log == nil {
		if b.cfg.LogFile == "" {
			return runlog.Discard()
		}

		var err error
		log, err = runlog.New(
			b.cfg.LogFile, b.cfg.LogLevel, b.cfg.LogFileMaxSize)
		if err != nil {
			fmt.Fprintf(os.Stderr,
				"Cannot open run log %s: %s\n", b.cfg.LogFile, err)
			panic(err)
		}
	}

	// Logging past the activation point starts once the scheduler reaches
	// that iteration.
	if b.cfg.StartLogAtIteration > 0 {
		log.Disable()
	}

	return log
}

func (b Builder) buildRecorder() stats.Recorder {
	if b.recorder != nil {
		return b.recorder
	}

	if b.cfg.StatsFile == "" {
		return stats.NewNullRecorder()
	}

	return stats.NewSQLiteRecorder(b.cfg.StatsFile)
}

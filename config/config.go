// Package config holds the typed run configuration of a simulation. A
// Config can be populated from defaults, from an env file, or from process
// environment variables. Parsing of topology description text is out of
// scope; the machine name selects a registered generator instead.
package config

import (
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config controls one simulation run.
type Config struct {
	// MachineName selects the machine generator from the registry.
	MachineName string

	// NumCores is the number of cores topology generators instantiate.
	NumCores int

	// StopAtUserInsns stops the run once the total committed instruction
	// count reaches this threshold.
	StopAtUserInsns uint64

	// WaitAllFinished stops the run at the next cycle boundary regardless
	// of the instruction budget.
	WaitAllFinished bool

	// ThreadedSimulation enables the barrier-synchronized parallel
	// scheduler when the core count allows it.
	ThreadedSimulation bool

	// CoresPerThread is the core group size of one worker thread.
	CoresPerThread int

	// LogLevel gates run-log verbosity. Levels of 1 and above disable
	// parallel mode, since concurrent per-core logging would interleave.
	LogLevel int

	// StartLogAtIteration defers log activation until the given iteration
	// count. Zero logs from the start.
	StartLogAtIteration uint64

	// LogFile is the run log path. Empty disables the run log.
	LogFile string

	// LogFileMaxSize is the rotation threshold of the run log in bytes.
	LogFileMaxSize int64

	// StatsFile is the SQLite stats database path. Empty disables
	// periodic stats recording.
	StatsFile string

	// StatsInterval is the cycle period of periodic stats snapshots.
	StatsInterval uint64

	// ProgressInterval is the cycle period of progress updates.
	ProgressInterval uint64

	// MonitorOn enables the HTTP monitor.
	MonitorOn bool

	// MonitorPort is the monitor's port; 0 picks a random port.
	MonitorPort int
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		NumCores:         2,
		StopAtUserInsns:  math.MaxUint64,
		CoresPerThread:   4,
		LogFileMaxSize:   1 << 30,
		StatsInterval:    10000,
		ProgressInterval: 1000,
	}
}

// LoadEnv returns the default configuration overridden by variables from
// the env file at path (if non-empty) and from the process environment.
// Variable names carry the MACHSIM_ prefix.
func LoadEnv(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, errors.Wrapf(err, "loading env file %s", path)
		}
	}

	cfg := Default()

	var err error
	setString(&cfg.MachineName, "MACHSIM_MACHINE")
	setString(&cfg.LogFile, "MACHSIM_LOG_FILE")
	setString(&cfg.StatsFile, "MACHSIM_STATS_FILE")
	err = firstErr(err, setInt(&cfg.NumCores, "MACHSIM_NUM_CORES"))
	err = firstErr(err, setUint64(&cfg.StopAtUserInsns, "MACHSIM_STOP_AT_USER_INSNS"))
	err = firstErr(err, setBool(&cfg.WaitAllFinished, "MACHSIM_WAIT_ALL_FINISHED"))
	err = firstErr(err, setBool(&cfg.ThreadedSimulation, "MACHSIM_THREADED"))
	err = firstErr(err, setInt(&cfg.CoresPerThread, "MACHSIM_CORES_PER_THREAD"))
	err = firstErr(err, setInt(&cfg.LogLevel, "MACHSIM_LOG_LEVEL"))
	err = firstErr(err, setUint64(&cfg.StartLogAtIteration, "MACHSIM_START_LOG_AT_ITERATION"))
	err = firstErr(err, setInt64(&cfg.LogFileMaxSize, "MACHSIM_LOG_FILE_MAX_SIZE"))
	err = firstErr(err, setUint64(&cfg.StatsInterval, "MACHSIM_STATS_INTERVAL"))
	err = firstErr(err, setUint64(&cfg.ProgressInterval, "MACHSIM_PROGRESS_INTERVAL"))
	err = firstErr(err, setBool(&cfg.MonitorOn, "MACHSIM_MONITOR"))
	err = firstErr(err, setInt(&cfg.MonitorPort, "MACHSIM_MONITOR_PORT"))
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parsed, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", key)
	}

	*dst = parsed
	return nil
}

func setInt64(dst *int64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", key)
	}

	*dst = parsed
	return nil
}

func setUint64(dst *uint64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", key)
	}

	*dst = parsed
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", key)
	}

	*dst = parsed
	return nil
}

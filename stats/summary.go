// Package stats provides the aggregate simulation statistics and a
// SQLite-backed recorder for periodic per-cycle snapshots.
package stats

// A Summary holds the aggregate counters of one simulation run. Cores add
// their own counters into it through UpdateStats.
type Summary struct {
	Cycles         uint64
	InsnsCommitted uint64
}

// Add merges another summary into this one.
func (s *Summary) Add(other Summary) {
	s.Cycles += other.Cycles
	s.InsnsCommitted += other.InsnsCommitted
}

// A CycleSnapshot is one periodic row of machine-wide counters.
type CycleSnapshot struct {
	Cycle         uint64
	TotalInsns    uint64
	ExitRequested bool
}

// A CoreSnapshot is one periodic row of per-core counters.
type CoreSnapshot struct {
	Cycle          uint64
	CoreID         int
	InsnsCommitted uint64
}

// Package barrier provides a reusable cyclic barrier. The parallel cycle
// scheduler uses two of them to fence the start and the end of every
// simulated cycle across the controller thread and all worker threads.
package barrier

import "sync"

// A Barrier blocks callers of Wait until a fixed number of parties have
// arrived, then releases them all and resets for the next round.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	arrived int
	round   uint64
}

// New creates a Barrier for the given number of parties.
func New(parties int) *Barrier {
	if parties < 1 {
		panic("barrier needs at least one party")
	}

	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)

	return b
}

// Parties returns the number of parties the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}

// Wait blocks until all parties have called Wait in the current round.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	round := b.round
	b.arrived++

	if b.arrived == b.parties {
		b.arrived = 0
		b.round++
		b.cond.Broadcast()
		return
	}

	for round == b.round {
		b.cond.Wait()
	}
}

// Package registry provides name-keyed factory registries. One registry
// exists per component kind (machine topologies, cores, memory controllers,
// interconnects). Registries are populated explicitly at process start,
// before any configuration is read, and are never mutated during a run.
//
// Looking up a name that was never registered is a fatal configuration
// error. An invalid topology cannot be safely simulated, so the failure is
// reported on both the operator console and the run log and the process
// aborts.
package registry

import (
	"sort"

	"github.com/sarchlab/machsim/runlog"
)

// A Registry maps component kind names to factories of type F.
type Registry[F any] struct {
	kind      string
	log       *runlog.Logger
	factories map[string]F
}

// New creates an empty registry. The kind string names the component kind
// in error messages, such as "core" or "interconnect".
func New[F any](kind string, log *runlog.Logger) *Registry[F] {
	if log == nil {
		log = runlog.Discard()
	}

	return &Registry[F]{
		kind:      kind,
		log:       log,
		factories: make(map[string]F),
	}
}

// Register binds a factory to a name. Registering the same name twice
// overwrites the earlier binding.
func (r *Registry[F]) Register(name string, factory F) {
	r.factories[name] = factory
}

// Lookup returns the factory bound to name. A missing name is fatal.
func (r *Registry[F]) Lookup(name string) F {
	factory, ok := r.factories[name]
	if !ok {
		r.log.Fatalf(
			"::ERROR::Can't find %s builder '%s'. "+
				"Please check your config file.", r.kind, name)
	}

	return factory
}

// Has reports whether a name is registered.
func (r *Registry[F]) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns all registered names in sorted order.
func (r *Registry[F]) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

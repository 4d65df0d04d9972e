package cache

import "github.com/sarchlab/machsim/mem"

// Builder can build write-back cache controllers.
type Builder struct {
	coreID  int
	kind    mem.ControllerKind
	sizeKB  int
	latency int
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		kind:    mem.KindL2Cache,
		sizeKB:  256,
		latency: 4,
	}
}

// WithCoreID sets the core the controller is affine to.
func (b Builder) WithCoreID(coreID int) Builder {
	b.coreID = coreID
	return b
}

// WithKind sets the controller's role in the hierarchy.
func (b Builder) WithKind(kind mem.ControllerKind) Builder {
	b.kind = kind
	return b
}

// WithSizeKB sets the cache capacity in kilobytes.
func (b Builder) WithSizeKB(sizeKB int) Builder {
	b.sizeKB = sizeKB
	return b
}

// WithLatency sets the access latency in cycles.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// Build builds a cache controller with the given instance name.
func (b Builder) Build(name string) *Comp {
	return &Comp{
		name:    name,
		coreID:  b.coreID,
		kind:    b.kind,
		sizeKB:  b.sizeKB,
		latency: b.latency,
	}
}

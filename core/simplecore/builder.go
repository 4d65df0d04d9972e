package simplecore

// Builder can build synthetic cores.
type Builder struct {
	coreID int
	ipc    uint64
	haltAt uint64
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{ipc: 1}
}

// WithCoreID sets the core's unique id.
func (b Builder) WithCoreID(coreID int) Builder {
	b.coreID = coreID
	return b
}

// WithIPC sets the number of instructions the core commits per cycle.
func (b Builder) WithIPC(ipc uint64) Builder {
	b.ipc = ipc
	return b
}

// WithHaltAt makes the core request simulation termination once it has
// committed the given number of instructions. Zero disables the request.
func (b Builder) WithHaltAt(haltAt uint64) Builder {
	b.haltAt = haltAt
	return b
}

// Build builds a synthetic core with the given instance name.
func (b Builder) Build(name string) *Comp {
	return &Comp{
		name:   name,
		coreID: b.coreID,
		ipc:    b.ipc,
		haltAt: b.haltAt,
	}
}

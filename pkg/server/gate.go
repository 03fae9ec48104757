package server

// Gate bounds the number of connections serviced concurrently. It is a
// counting semaphore: the accept loop acquires a slot before routing a
// connection and the slot is released when the connection is done. Capacity
// never changes after construction, so 0 <= Free() <= Capacity() always holds.
type Gate struct {
	slots chan struct{}
}

// NewGate creates a gate with the given capacity.
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is free or stop is closed. It reports whether a
// slot was acquired.
func (g *Gate) Acquire(stop <-chan struct{}) bool {
	select {
	case g.slots <- struct{}{}:
		return true
	case <-stop:
		return false
	}
}

// Release returns a slot to the gate. Releasing more than was acquired is a
// programming error.
func (g *Gate) Release() {
	select {
	case <-g.slots:
	default:
		panic("gate: release without matching acquire")
	}
}

// InUse returns the number of slots currently held.
func (g *Gate) InUse() int {
	return len(g.slots)
}

// Free returns the number of available slots.
func (g *Gate) Free() int {
	return cap(g.slots) - len(g.slots)
}

// Capacity returns the configured maximum.
func (g *Gate) Capacity() int {
	return cap(g.slots)
}

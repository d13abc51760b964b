package portal

import "sync/atomic"

// submitGuard lets one submit run at a time. A second submit while one is
// in flight fails fast instead of queueing.
type submitGuard struct {
	busy atomic.Bool
}

func (g *submitGuard) begin() (done func(), err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	return func() { g.busy.Store(false) }, nil
}

func (g *submitGuard) Submitting() bool {
	return g.busy.Load()
}

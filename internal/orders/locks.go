package orders

import (
	"sync"

	"github.com/google/uuid"
)

// offerLocks serializes order placements per offer. Placements against
// different offers proceed in parallel; two placements against the same offer
// queue behind one mutex so the read-reprice-write sequence never interleaves.
type offerLocks struct {
	locks sync.Map
}

func (l *offerLocks) acquire(offerID uuid.UUID) *sync.Mutex {
	actual, _ := l.locks.LoadOrStore(offerID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu
}

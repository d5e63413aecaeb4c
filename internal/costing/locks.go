package costing

import "sync"

// skuLocks serializes ledger mutations per SKU. Two concurrent consumptions
// of the same SKU must not both read the same layer snapshot and decrement
// past zero; operations on different SKUs proceed independently.
type skuLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSKULocks() *skuLocks {
	return &skuLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *skuLocks) lock(sku string) func() {
	s.mu.Lock()
	m, ok := s.locks[sku]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sku] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

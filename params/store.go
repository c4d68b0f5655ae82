package params

import "sync/atomic"

// Store publishes the current Parameters snapshot. The render loop reads it
// once per frame; Reinitialize swaps in a freshly merged record wholesale.
type Store struct {
	cur atomic.Pointer[Parameters]
}

// NewStore initializes a store from overrides merged against the defaults.
func NewStore(overrides Overrides) *Store {
	s := &Store{}
	s.Reinitialize(overrides)
	return s
}

// Snapshot returns the current record. Callers must treat it as read-only.
func (s *Store) Snapshot() *Parameters {
	return s.cur.Load()
}

// Reinitialize discards the current record and merges overrides against the
// defaults again.
func (s *Store) Reinitialize(overrides Overrides) {
	p := Initialize(overrides)
	s.cur.Store(&p)
}

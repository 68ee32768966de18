package service

import (
	"sync"

	"omnimood-oracle/internal/domain"
)

// StateStore owns the oracle status record. The running cycle is the only
// writer; readers get copies and never observe a half-applied update.
type StateStore struct {
	mu    sync.RWMutex
	state domain.OracleState
}

func NewStateStore() *StateStore {
	return &StateStore{state: domain.InitialOracleState()}
}

func (s *StateStore) Snapshot() domain.OracleState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state)
}

// Reset replaces the record wholesale.
func (s *StateStore) Reset(state domain.OracleState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(state)
}

func (s *StateStore) Update(fn func(*domain.OracleState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

func cloneState(st domain.OracleState) domain.OracleState {
	out := st
	if st.ChainsQueried != nil {
		out.ChainsQueried = append([]string(nil), st.ChainsQueried...)
	}
	if st.RawEventsData != nil {
		out.RawEventsData = append([]domain.TransferEvent{}, st.RawEventsData...)
	}
	return out
}

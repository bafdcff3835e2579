// internal/clientstate/store.go
package clientstate

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Persistence loads the initial snapshot and saves every dispatched
// transition. Implementations decide the medium.
type Persistence interface {
	Load() (State, error)
	Save(State) error
}

// Store serializes dispatches with a mutex; last write wins.
type Store struct {
	mtx     sync.Mutex
	state   State
	persist Persistence
}

// NewStore loads the initial state through p. A load failure falls back
// to the zero state rather than refusing to start.
func NewStore(p Persistence) *Store {
	state, err := p.Load()
	if err != nil {
		state = State{}
	}
	return &Store{state: state, persist: p}
}

// Dispatch reduces the action into the current state and saves the
// result.
func (s *Store) Dispatch(action Action) (State, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.state = Reduce(s.state, action)
	if err := s.persist.Save(s.state); err != nil {
		return s.state, fmt.Errorf("failed to save state: %w", err)
	}
	return s.state, nil
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state
}

// FilePersistence keeps the snapshot as JSON on disk.
type FilePersistence struct {
	Path string
}

func (p FilePersistence) Load() (State, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse state file: %w", err)
	}
	return state, nil
}

func (p FilePersistence) Save(state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return os.WriteFile(p.Path, data, 0o600)
}

// MemoryPersistence holds the snapshot in memory, used by tests.
type MemoryPersistence struct {
	mtx   sync.Mutex
	saved State
	has   bool
}

func (p *MemoryPersistence) Load() (State, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if !p.has {
		return State{}, nil
	}
	return p.saved, nil
}

func (p *MemoryPersistence) Save(state State) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.saved = state
	p.has = true
	return nil
}

// Package state holds the application's single source of truth: an
// immutable snapshot updated only through a closed set of transitions.
// Every dispatch fully replaces the snapshot, so readers can use
// reference equality for change detection and never observe a
// partially-updated state.
package state

import (
	"sync"

	"github.com/nhle/maildeck/internal/model"
)

// State is one consistent snapshot of everything the views render.
// Values reachable from a State are never mutated after it is published;
// transitions copy on write.
type State struct {
	Accounts        []model.Account
	Emails          []model.Email
	SelectedAccount *model.Account
	SelectedEmail   *model.Email
	Filters         model.SearchFilters
	Pagination      model.Pagination
	IsLoading       bool
	LastError       string

	// Testing tracks per-account in-flight connection tests.
	Testing map[string]bool

	// TestResults holds the advisory outcome of the last completed test
	// per account. A result never coexists with an in-flight test for the
	// same id: TestStart clears it in the same transition that sets the
	// Testing flag.
	TestResults map[string]model.TestResult
}

// AccountByID returns the account with the given canonical id, or nil.
func (s State) AccountByID(id string) *model.Account {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i]
		}
	}
	return nil
}

// Transition is one member of the closed set of state transitions. Each
// is a total function from snapshot to snapshot: it never fails, and a
// caller that cannot build a valid payload reports its own failure
// upstream rather than dispatching.
type Transition interface {
	apply(s State) State
}

// Store owns the current snapshot and serializes all mutation through
// Dispatch. Construct one per application (or per test); there is no
// ambient global instance.
type Store struct {
	mu      sync.Mutex
	current State
	changes chan struct{}
}

// NewStore creates a store with an empty initial snapshot.
func NewStore() *Store {
	return &Store{
		current: State{
			Pagination:  model.DefaultPagination(),
			Testing:     map[string]bool{},
			TestResults: map[string]model.TestResult{},
		},
		changes: make(chan struct{}, 1),
	}
}

// Snapshot returns the current state. The returned value and everything
// reachable from it is safe to read without coordination.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Dispatch applies a transition and publishes the resulting snapshot.
// Dispatch never suspends; it is a synchronous, instantaneous replacement.
func (s *Store) Dispatch(t Transition) {
	s.mu.Lock()
	s.current = t.apply(s.current)
	s.mu.Unlock()

	// Coalesced change signal: one pending notification is enough for a
	// reader that always re-reads the latest snapshot.
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Changes returns a channel that receives a signal after dispatches.
// Signals are coalesced; consumers must re-read Snapshot rather than
// count notifications.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

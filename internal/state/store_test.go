package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/model"
)

func account(id, email string, status model.ConnectionStatus) model.Account {
	return model.Account{
		ID:               id,
		Name:             "Account " + id,
		Email:            email,
		ConnectionStatus: status,
	}
}

func email(id, subject string) model.Email {
	return model.Email{ID: id, Subject: subject}
}

func TestLoadingFlagClearedByTerminalTransitions(t *testing.T) {
	cases := []struct {
		name     string
		terminal Transition
	}{
		{"accounts success", LoadAccountsSuccess{}},
		{"accounts failure", LoadAccountsFailure{Error: "boom"}},
		{"emails success", LoadEmailsSuccess{}},
		{"emails failure", LoadEmailsFailure{Error: "boom"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore()

			s.Dispatch(LoadAccountsStart{})
			assert.True(t, s.Snapshot().IsLoading)

			s.Dispatch(tc.terminal)
			assert.False(t, s.Snapshot().IsLoading)
		})
	}
}

func TestLoadFailureRecordsError(t *testing.T) {
	s := NewStore()

	s.Dispatch(LoadEmailsStart{})
	s.Dispatch(LoadEmailsFailure{Error: "connection refused"})

	snap := s.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.Equal(t, "connection refused", snap.LastError)

	// A later success clears the ambient error.
	s.Dispatch(LoadEmailsSuccess{})
	assert.Empty(t, s.Snapshot().LastError)
}

func TestSetFiltersShallowMerges(t *testing.T) {
	s := NewStore()

	s.Dispatch(SetFilters{Filters: model.SearchFilters{Folder: "INBOX"}})
	s.Dispatch(SetFilters{Filters: model.SearchFilters{From: "alice@example.com"}})

	snap := s.Snapshot()
	assert.Equal(t, "INBOX", snap.Filters.Folder)
	assert.Equal(t, "alice@example.com", snap.Filters.From)

	s.Dispatch(ClearFilters{})
	assert.True(t, s.Snapshot().Filters.IsZero())
}

func TestTestStateIsolationBetweenAccounts(t *testing.T) {
	s := NewStore()

	s.Dispatch(TestResult{
		AccountID: "acc-2",
		Result:    model.TestResult{Success: true},
	})
	s.Dispatch(TestStart{AccountID: "acc-1"})

	snap := s.Snapshot()
	assert.True(t, snap.Testing["acc-1"])
	assert.False(t, snap.Testing["acc-2"])

	// acc-2's result is untouched by acc-1's start.
	result, ok := snap.TestResults["acc-2"]
	require.True(t, ok)
	assert.True(t, result.Success)

	_, ok = snap.TestResults["acc-1"]
	assert.False(t, ok)
}

func TestStartClearsPreviousResultAtomically(t *testing.T) {
	s := NewStore()

	s.Dispatch(TestResult{
		AccountID: "acc-1",
		Result:    model.TestResult{Success: false, Error: "old failure"},
	})
	s.Dispatch(TestStart{AccountID: "acc-1"})

	snap := s.Snapshot()
	assert.True(t, snap.Testing["acc-1"])
	_, ok := snap.TestResults["acc-1"]
	assert.False(t, ok, "stale result must not coexist with an in-flight test")
}

func TestResultClearsInFlightFlagInSameTransition(t *testing.T) {
	s := NewStore()

	s.Dispatch(TestStart{AccountID: "acc-1"})
	s.Dispatch(TestResult{
		AccountID: "acc-1",
		Result:    model.TestResult{Success: false, Error: "timeout"},
	})

	snap := s.Snapshot()
	assert.False(t, snap.Testing["acc-1"])
	result, ok := snap.TestResults["acc-1"]
	require.True(t, ok)
	assert.Equal(t, "timeout", result.Error)
}

func TestTestClearLeavesFlagAndAccountAlone(t *testing.T) {
	s := NewStore()
	s.Dispatch(LoadAccountsSuccess{Accounts: []model.Account{
		account("acc-1", "a@example.com", model.StatusConnected),
	}})
	s.Dispatch(TestStart{AccountID: "acc-1"})
	s.Dispatch(TestResult{
		AccountID: "acc-1",
		Result:    model.TestResult{Success: true},
	})

	s.Dispatch(TestClear{AccountID: "acc-1"})

	snap := s.Snapshot()
	_, ok := snap.TestResults["acc-1"]
	assert.False(t, ok)
	assert.Equal(t, model.StatusConnected, snap.Accounts[0].ConnectionStatus)
}

func TestSelectedAccountFollowsUpdate(t *testing.T) {
	s := NewStore()
	original := account("acc-1", "a@example.com", model.StatusUnknown)
	s.Dispatch(LoadAccountsSuccess{Accounts: []model.Account{original}})
	s.Dispatch(SetSelectedAccount{Account: &original})

	updated := account("acc-1", "a@example.com", model.StatusActive)
	s.Dispatch(AccountUpdated{Account: updated})

	snap := s.Snapshot()
	require.NotNil(t, snap.SelectedAccount)
	assert.Equal(t, model.StatusActive, snap.SelectedAccount.ConnectionStatus)
}

func TestSelectedAccountClearedOnRemove(t *testing.T) {
	s := NewStore()
	a := account("acc-1", "a@example.com", model.StatusUnknown)
	s.Dispatch(LoadAccountsSuccess{Accounts: []model.Account{a}})
	s.Dispatch(SetSelectedAccount{Account: &a})

	s.Dispatch(AccountRemoved{ID: "acc-1"})

	snap := s.Snapshot()
	assert.Nil(t, snap.SelectedAccount)
	assert.Empty(t, snap.Accounts)
}

func TestSelectionReresolvedOnBulkLoad(t *testing.T) {
	s := NewStore()
	e1 := email("em-1", "hello")
	s.Dispatch(LoadEmailsSuccess{Emails: []model.Email{e1}})
	s.Dispatch(SetSelectedEmail{Email: &e1})

	// The selected email survives the reload with its new value.
	s.Dispatch(LoadEmailsSuccess{Emails: []model.Email{email("em-1", "hello (edited)")}})
	snap := s.Snapshot()
	require.NotNil(t, snap.SelectedEmail)
	assert.Equal(t, "hello (edited)", snap.SelectedEmail.Subject)

	// The selected email disappears with the page that dropped it.
	s.Dispatch(LoadEmailsSuccess{Emails: []model.Email{email("em-2", "other")}})
	assert.Nil(t, s.Snapshot().SelectedEmail)
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s := NewStore()
	s.Dispatch(LoadAccountsSuccess{Accounts: []model.Account{
		account("acc-1", "a@example.com", model.StatusUnknown),
	}})

	before := s.Snapshot()

	s.Dispatch(TestStart{AccountID: "acc-1"})
	s.Dispatch(AccountUpdated{Account: account("acc-1", "a@example.com", model.StatusActive)})

	// The earlier snapshot still shows the world as it was.
	assert.False(t, before.Testing["acc-1"])
	assert.Equal(t, model.StatusUnknown, before.Accounts[0].ConnectionStatus)

	after := s.Snapshot()
	assert.True(t, after.Testing["acc-1"])
	assert.Equal(t, model.StatusActive, after.Accounts[0].ConnectionStatus)
}

func TestAccountAddedAppends(t *testing.T) {
	s := NewStore()
	s.Dispatch(AccountAdded{Account: account("acc-1", "a@example.com", model.StatusUnknown)})
	s.Dispatch(AccountAdded{Account: account("acc-2", "b@example.com", model.StatusUnknown)})

	snap := s.Snapshot()
	require.Len(t, snap.Accounts, 2)
	assert.Equal(t, "acc-2", snap.Accounts[1].ID)
}

func TestResetReturnsToInitialState(t *testing.T) {
	s := NewStore()
	s.Dispatch(LoadAccountsSuccess{Accounts: []model.Account{
		account("acc-1", "a@example.com", model.StatusActive),
	}})
	s.Dispatch(TestStart{AccountID: "acc-1"})
	s.Dispatch(SetError{Error: "boom"})

	s.Dispatch(Reset{})

	snap := s.Snapshot()
	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.Testing)
	assert.Empty(t, snap.TestResults)
	assert.Empty(t, snap.LastError)
	assert.Equal(t, model.DefaultPagination(), snap.Pagination)
}

func TestChangesSignalIsCoalesced(t *testing.T) {
	s := NewStore()

	s.Dispatch(SetError{Error: "one"})
	s.Dispatch(SetError{Error: "two"})

	// Two dispatches, at least one pending signal; re-reading the
	// snapshot yields the latest state.
	select {
	case <-s.Changes():
	default:
		t.Fatal("expected a pending change signal")
	}
	assert.Equal(t, "two", s.Snapshot().LastError)
}

package state

import "github.com/nhle/maildeck/internal/model"

// LoadAccountsStart marks the beginning of an account list load.
type LoadAccountsStart struct{}

func (LoadAccountsStart) apply(s State) State {
	s.IsLoading = true
	return s
}

// LoadAccountsSuccess replaces the account list with a fresh fetch.
// Selection is re-resolved against the new list: a selected account that
// survives the reload points at its new value, one that disappeared is
// cleared.
type LoadAccountsSuccess struct {
	Accounts []model.Account
}

func (t LoadAccountsSuccess) apply(s State) State {
	s.Accounts = t.Accounts
	s.IsLoading = false
	s.LastError = ""
	s.SelectedAccount = reselectAccount(s.Accounts, s.SelectedAccount)
	return s
}

// LoadAccountsFailure terminates an account load with an error.
type LoadAccountsFailure struct {
	Error string
}

func (t LoadAccountsFailure) apply(s State) State {
	s.IsLoading = false
	s.LastError = t.Error
	return s
}

// LoadEmailsStart marks the beginning of an email page load or search.
type LoadEmailsStart struct{}

func (LoadEmailsStart) apply(s State) State {
	s.IsLoading = true
	return s
}

// LoadEmailsSuccess replaces the visible email page and adopts the
// server-reported pagination.
type LoadEmailsSuccess struct {
	Emails     []model.Email
	Pagination model.Pagination
}

func (t LoadEmailsSuccess) apply(s State) State {
	s.Emails = t.Emails
	s.Pagination = t.Pagination
	s.IsLoading = false
	s.LastError = ""
	s.SelectedEmail = reselectEmail(s.Emails, s.SelectedEmail)
	return s
}

// LoadEmailsFailure terminates an email load with an error.
type LoadEmailsFailure struct {
	Error string
}

func (t LoadEmailsFailure) apply(s State) State {
	s.IsLoading = false
	s.LastError = t.Error
	return s
}

// AccountAdded appends an account created on the backend.
type AccountAdded struct {
	Account model.Account
}

func (t AccountAdded) apply(s State) State {
	accounts := make([]model.Account, 0, len(s.Accounts)+1)
	accounts = append(accounts, s.Accounts...)
	accounts = append(accounts, t.Account)
	s.Accounts = accounts
	return s
}

// AccountUpdated replaces the account with a matching id in place. If the
// updated account is currently selected, the selection follows the new
// value.
type AccountUpdated struct {
	Account model.Account
}

func (t AccountUpdated) apply(s State) State {
	accounts := make([]model.Account, len(s.Accounts))
	copy(accounts, s.Accounts)
	for i := range accounts {
		if accounts[i].ID == t.Account.ID {
			accounts[i] = t.Account
		}
	}
	s.Accounts = accounts

	if s.SelectedAccount != nil && s.SelectedAccount.ID == t.Account.ID {
		updated := t.Account
		s.SelectedAccount = &updated
	}
	return s
}

// AccountRemoved drops the account with the given id. A matching
// selection is cleared.
type AccountRemoved struct {
	ID string
}

func (t AccountRemoved) apply(s State) State {
	accounts := make([]model.Account, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		if a.ID != t.ID {
			accounts = append(accounts, a)
		}
	}
	s.Accounts = accounts

	if s.SelectedAccount != nil && s.SelectedAccount.ID == t.ID {
		s.SelectedAccount = nil
	}
	return s
}

// SetFilters shallow-merges the given filters into the existing set: new
// keys overwrite, omitted keys are preserved. It is not a replace.
type SetFilters struct {
	Filters model.SearchFilters
}

func (t SetFilters) apply(s State) State {
	s.Filters = s.Filters.Merge(t.Filters)
	return s
}

// ClearFilters resets the filter set to its empty default.
type ClearFilters struct{}

func (ClearFilters) apply(s State) State {
	s.Filters = model.SearchFilters{}
	return s
}

// SetPagination adopts a new pagination state.
type SetPagination struct {
	Pagination model.Pagination
}

func (t SetPagination) apply(s State) State {
	s.Pagination = t.Pagination
	return s
}

// SetSelectedEmail changes (or clears, with nil) the selected email.
type SetSelectedEmail struct {
	Email *model.Email
}

func (t SetSelectedEmail) apply(s State) State {
	s.SelectedEmail = t.Email
	return s
}

// SetSelectedAccount changes (or clears, with nil) the selected account.
type SetSelectedAccount struct {
	Account *model.Account
}

func (t SetSelectedAccount) apply(s State) State {
	s.SelectedAccount = t.Account
	return s
}

// TestStart marks a connection test as in flight and removes any previous
// result for the same account in the same transition, so a stale result
// is never visible alongside an in-flight test.
type TestStart struct {
	AccountID string
}

func (t TestStart) apply(s State) State {
	testing := cloneBoolMap(s.Testing)
	testing[t.AccountID] = true
	s.Testing = testing

	results := cloneResultMap(s.TestResults)
	delete(results, t.AccountID)
	s.TestResults = results
	return s
}

// TestResult records a completed test and clears the in-flight flag in
// the same transition.
type TestResult struct {
	AccountID string
	Result    model.TestResult
}

func (t TestResult) apply(s State) State {
	testing := cloneBoolMap(s.Testing)
	testing[t.AccountID] = false
	s.Testing = testing

	results := cloneResultMap(s.TestResults)
	results[t.AccountID] = t.Result
	s.TestResults = results
	return s
}

// TestClear removes an advisory test result without touching the account
// record or the in-flight flag.
type TestClear struct {
	AccountID string
}

func (t TestClear) apply(s State) State {
	results := cloneResultMap(s.TestResults)
	delete(results, t.AccountID)
	s.TestResults = results
	return s
}

// SetError records an ambient error message.
type SetError struct {
	Error string
}

func (t SetError) apply(s State) State {
	s.LastError = t.Error
	return s
}

// ClearError removes the ambient error message.
type ClearError struct{}

func (ClearError) apply(s State) State {
	s.LastError = ""
	return s
}

// Reset returns the store to its initial empty snapshot. Dispatched on
// terminal auth failure, when all local session state must be discarded.
type Reset struct{}

func (Reset) apply(State) State {
	return State{
		Pagination:  model.DefaultPagination(),
		Testing:     map[string]bool{},
		TestResults: map[string]model.TestResult{},
	}
}

func reselectAccount(accounts []model.Account, selected *model.Account) *model.Account {
	if selected == nil {
		return nil
	}
	for i := range accounts {
		if accounts[i].ID == selected.ID {
			updated := accounts[i]
			return &updated
		}
	}
	return nil
}

func reselectEmail(emails []model.Email, selected *model.Email) *model.Email {
	if selected == nil {
		return nil
	}
	for i := range emails {
		if emails[i].ID == selected.ID {
			updated := emails[i]
			return &updated
		}
	}
	return nil
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneResultMap(m map[string]model.TestResult) map[string]model.TestResult {
	out := make(map[string]model.TestResult, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Package ops exposes the operation surface the view layer calls:
// account CRUD, email loading and search, and the filter/pagination
// setters. Every operation resolves to a uniform envelope and records
// failures in the store; nothing is thrown across the view boundary.
package ops

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/state"
)

// AccountAPI is the slice of the account adapter the operations use.
type AccountAPI interface {
	List(ctx context.Context) ([]model.Account, error)
	Create(ctx context.Context, payload api.AccountPayload) (*model.Account, error)
	Update(ctx context.Context, id string, payload api.AccountPayload) (*model.Account, error)
	Delete(ctx context.Context, id string) error
}

// EmailAPI is the slice of the email adapter the operations use.
type EmailAPI interface {
	List(ctx context.Context, filters model.SearchFilters, page model.Pagination) (*api.EmailPage, error)
	Search(ctx context.Context, query string, filters model.SearchFilters, sortBy, sortOrder string, page model.Pagination) (*api.EmailPage, error)
}

// Cache persists the last known accounts and emails for offline display.
// All cache failures are best-effort: logged, never surfaced.
type Cache interface {
	SaveAccounts(ctx context.Context, accounts []model.Account) error
	LoadAccounts(ctx context.Context) ([]model.Account, error)
	SaveEmails(ctx context.Context, emails []model.Email) error
	LoadEmails(ctx context.Context, limit int) ([]model.Email, error)
}

// Result is the uniform envelope every operation resolves to.
type Result struct {
	Success bool
	Error   string
}

func ok() Result {
	return Result{Success: true}
}

func failed(message string) Result {
	return Result{Success: false, Error: message}
}

// Operations bundles the store and service adapters behind the
// operation functions the views invoke.
type Operations struct {
	store    *state.Store
	accounts AccountAPI
	emails   EmailAPI
	cache    Cache
	logger   zerolog.Logger
	pageSize int
}

// New creates the operation surface. cache may be nil to disable the
// offline cache.
func New(
	store *state.Store,
	accounts AccountAPI,
	emails EmailAPI,
	cache Cache,
	logger zerolog.Logger,
	pageSize int,
) *Operations {
	if pageSize <= 0 {
		pageSize = model.DefaultPageSize
	}
	return &Operations{
		store:    store,
		accounts: accounts,
		emails:   emails,
		cache:    cache,
		logger:   logger,
		pageSize: pageSize,
	}
}

// Hydrate seeds the store from the offline cache so the user sees the
// last known accounts and emails before the first backend round trip.
func (o *Operations) Hydrate(ctx context.Context) {
	if o.cache == nil {
		return
	}

	if accounts, err := o.cache.LoadAccounts(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("account cache hydrate failed")
	} else if len(accounts) > 0 {
		o.store.Dispatch(state.LoadAccountsSuccess{Accounts: accounts})
	}

	if emails, err := o.cache.LoadEmails(ctx, o.pageSize); err != nil {
		o.logger.Warn().Err(err).Msg("email cache hydrate failed")
	} else if len(emails) > 0 {
		o.store.Dispatch(state.LoadEmailsSuccess{
			Emails:     emails,
			Pagination: o.store.Snapshot().Pagination,
		})
	}
}

// LoadAccounts fetches the account list from the backend. The returned
// error is non-nil only for terminal auth failures.
func (o *Operations) LoadAccounts(ctx context.Context) (Result, error) {
	o.store.Dispatch(state.LoadAccountsStart{})

	accounts, err := o.accounts.List(ctx)
	if err != nil {
		message := api.ErrorMessage(err)
		o.store.Dispatch(state.LoadAccountsFailure{Error: message})
		if api.IsAuthError(err) {
			return failed(message), err
		}
		return failed(message), nil
	}

	o.store.Dispatch(state.LoadAccountsSuccess{Accounts: accounts})
	o.saveAccountCache(ctx, accounts)
	return ok(), nil
}

// LoadEmails fetches the page selected by the store's current filters
// and pagination.
func (o *Operations) LoadEmails(ctx context.Context) (Result, error) {
	snapshot := o.store.Snapshot()
	page := snapshot.Pagination
	if page.Limit <= 0 {
		page.Limit = o.pageSize
	}
	if page.Page <= 0 {
		page.Page = 1
	}

	o.store.Dispatch(state.LoadEmailsStart{})

	result, err := o.emails.List(ctx, snapshot.Filters, page)
	if err != nil {
		message := api.ErrorMessage(err)
		o.store.Dispatch(state.LoadEmailsFailure{Error: message})
		if api.IsAuthError(err) {
			return failed(message), err
		}
		return failed(message), nil
	}

	o.store.Dispatch(state.LoadEmailsSuccess{
		Emails:     result.Emails,
		Pagination: result.Pagination,
	})
	o.saveEmailCache(ctx, result.Emails)
	return ok(), nil
}

// Reload implements sync.EmailReloader.
func (o *Operations) Reload(ctx context.Context) error {
	_, err := o.LoadEmails(ctx)
	return err
}

// SearchEmails runs a full-text search with the store's current filters,
// resetting to the first page.
func (o *Operations) SearchEmails(ctx context.Context, query string) (Result, error) {
	snapshot := o.store.Snapshot()
	page := model.Pagination{Page: 1, Limit: o.pageSize}

	o.store.Dispatch(state.LoadEmailsStart{})

	result, err := o.emails.Search(ctx, query, snapshot.Filters, "date", "desc", page)
	if err != nil {
		message := api.ErrorMessage(err)
		o.store.Dispatch(state.LoadEmailsFailure{Error: message})
		if api.IsAuthError(err) {
			return failed(message), err
		}
		return failed(message), nil
	}

	o.store.Dispatch(state.LoadEmailsSuccess{
		Emails:     result.Emails,
		Pagination: result.Pagination,
	})
	return ok(), nil
}

// CreateAccount registers an account on the backend and, only on a
// successful response, adds the stored record to the state. Validation
// happens in the form before this is ever called.
func (o *Operations) CreateAccount(ctx context.Context, payload api.AccountPayload) (Result, error) {
	account, err := o.accounts.Create(ctx, payload)
	if err != nil {
		message := api.ErrorMessage(err)
		o.store.Dispatch(state.SetError{Error: message})
		if api.IsAuthError(err) {
			return failed(message), err
		}
		return failed(message), nil
	}

	o.store.Dispatch(state.AccountAdded{Account: *account})
	return ok(), nil
}

// UpdateAccount replaces an account's writable fields on the backend and
// converges the state with the stored record.
func (o *Operations) UpdateAccount(
	ctx context.Context,
	id string,
	payload api.AccountPayload,
) (Result, error) {
	account, err := o.accounts.Update(ctx, id, payload)
	if err != nil {
		message := api.ErrorMessage(err)
		o.store.Dispatch(state.SetError{Error: message})
		if api.IsAuthError(err) {
			return failed(message), err
		}
		return failed(message), nil
	}

	o.store.Dispatch(state.AccountUpdated{Account: *account})
	return ok(), nil
}

// DeleteAccount removes an account on the backend and from the state.
func (o *Operations) DeleteAccount(ctx context.Context, id string) (Result, error) {
	if err := o.accounts.Delete(ctx, id); err != nil {
		message := api.ErrorMessage(err)
		o.store.Dispatch(state.SetError{Error: message})
		if api.IsAuthError(err) {
			return failed(message), err
		}
		return failed(message), nil
	}

	o.store.Dispatch(state.AccountRemoved{ID: id})
	return ok(), nil
}

// SetFilters merges the given filter keys into the current set.
func (o *Operations) SetFilters(filters model.SearchFilters) {
	o.store.Dispatch(state.SetFilters{Filters: filters})
}

// ClearFilters resets the filter set to empty.
func (o *Operations) ClearFilters() {
	o.store.Dispatch(state.ClearFilters{})
}

// SetPage moves to the given 1-based page, clamped to the known range.
func (o *Operations) SetPage(page int) {
	snapshot := o.store.Snapshot()
	pagination := snapshot.Pagination
	if page < 1 {
		page = 1
	}
	if max := pagination.TotalPages(); page > max {
		page = max
	}
	pagination.Page = page
	o.store.Dispatch(state.SetPagination{Pagination: pagination})
}

// SelectAccount changes (or clears) the selected account.
func (o *Operations) SelectAccount(account *model.Account) {
	o.store.Dispatch(state.SetSelectedAccount{Account: account})
}

// SelectEmail changes (or clears) the selected email.
func (o *Operations) SelectEmail(email *model.Email) {
	o.store.Dispatch(state.SetSelectedEmail{Email: email})
}

// ResetSession wipes all local state after a terminal auth failure.
func (o *Operations) ResetSession() {
	o.store.Dispatch(state.Reset{})
}

func (o *Operations) saveAccountCache(ctx context.Context, accounts []model.Account) {
	if o.cache == nil {
		return
	}
	if err := o.cache.SaveAccounts(ctx, accounts); err != nil {
		o.logger.Warn().Err(err).Msg("account cache write failed")
	}
}

func (o *Operations) saveEmailCache(ctx context.Context, emails []model.Email) {
	if o.cache == nil {
		return
	}
	if err := o.cache.SaveEmails(ctx, emails); err != nil {
		o.logger.Warn().Err(err).Msg("email cache write failed")
	}
}

// Package sync coordinates connection testing and synchronization
// orchestration across accounts. All state it produces flows through the
// application store; nothing here mutates shared data directly.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/state"
)

// AccountAPI is the slice of the backend account adapter the sync layer
// depends on.
type AccountAPI interface {
	List(ctx context.Context) ([]model.Account, error)
	TestConnection(ctx context.Context, id string) (*model.TestReport, error)
}

// SyncAPI is the slice of the backend sync adapter the orchestrator
// depends on.
type SyncAPI interface {
	Start(ctx context.Context, req model.SyncStartRequest) (*model.SyncStartResult, error)
	Cleanup(ctx context.Context) (string, error)
}

// ErrMissingAccountID is returned when a test is requested without a
// resolvable account id. This is a caller error: nothing is dispatched
// and nothing is reported through the result channel.
var ErrMissingAccountID = errors.New("missing account id")

// TestOutcome is the uniform envelope a connection test resolves to.
type TestOutcome struct {
	Success bool
	Error   string
}

// Coordinator runs connection tests for accounts without blocking or
// corrupting the test state of any other account.
type Coordinator struct {
	store    *state.Store
	accounts AccountAPI
	logger   zerolog.Logger
}

// NewCoordinator creates a connection-test coordinator.
func NewCoordinator(store *state.Store, accounts AccountAPI, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		accounts: accounts,
		logger:   logger,
	}
}

// TestConnection runs a connectivity check for one account. The start
// transition (which also clears any stale result) always precedes the
// network call, and the result transition always follows it; the
// in-flight flag is false after either outcome. The returned error is
// non-nil only for caller errors and terminal auth failures; an account
// that merely fails its test is reported through the envelope.
func (c *Coordinator) TestConnection(ctx context.Context, accountID string) (TestOutcome, error) {
	if accountID == "" {
		return TestOutcome{}, ErrMissingAccountID
	}

	c.store.Dispatch(state.TestStart{AccountID: accountID})

	report, err := c.accounts.TestConnection(ctx, accountID)
	if err != nil {
		message := translateTestError(c.accountByID(accountID), api.ErrorMessage(err))
		c.store.Dispatch(state.TestResult{
			AccountID: accountID,
			Result:    model.TestResult{Success: false, Error: message},
		})
		if api.IsAuthError(err) {
			return TestOutcome{Success: false, Error: message}, err
		}
		return TestOutcome{Success: false, Error: message}, nil
	}

	if !report.Success {
		message := report.Error
		if message == "" {
			message = "connection test failed"
		}
		message = translateTestError(c.accountByID(accountID), message)
		c.store.Dispatch(state.TestResult{
			AccountID: accountID,
			Result:    model.TestResult{Success: false, Error: message},
		})
		return TestOutcome{Success: false, Error: message}, nil
	}

	c.store.Dispatch(state.TestResult{
		AccountID: accountID,
		Result:    model.TestResult{Success: true},
	})

	// The backend echoes the updated record when the test changed its
	// connection status; converge the account list with it.
	if report.Account != nil {
		c.store.Dispatch(state.AccountUpdated{Account: *report.Account})
	}

	return TestOutcome{Success: true}, nil
}

// TestAll tests every account in list order, one at a time. A failing
// account does not abort the remaining tests. Returns how many accounts
// passed out of how many were attempted.
func (c *Coordinator) TestAll(ctx context.Context) (succeeded, total int, err error) {
	accounts := c.store.Snapshot().Accounts
	total = len(accounts)

	for _, account := range accounts {
		outcome, testErr := c.TestConnection(ctx, account.ID)
		if testErr != nil {
			if api.IsAuthError(testErr) {
				return succeeded, total, testErr
			}
			c.logger.Warn().
				Str("account_id", account.ID).
				Err(testErr).
				Msg("skipping untestable account")
			continue
		}
		if outcome.Success {
			succeeded++
		} else {
			c.logger.Info().
				Str("account_id", account.ID).
				Str("reason", outcome.Error).
				Msg("connection test failed")
		}
	}

	return succeeded, total, nil
}

// ClearResult removes an advisory test result, typically after its
// display window elapses. The account's connection status is unaffected.
func (c *Coordinator) ClearResult(accountID string) {
	if accountID == "" {
		return
	}
	c.store.Dispatch(state.TestClear{AccountID: accountID})
}

func (c *Coordinator) accountByID(id string) *model.Account {
	return c.store.Snapshot().AccountByID(id)
}

// Tally formats a test-all summary for the status bar.
func Tally(succeeded, total int) string {
	return fmt.Sprintf("%d/%d accounts reachable", succeeded, total)
}

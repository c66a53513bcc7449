package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/state"
)

// OutcomeCode is the terminal state a sync orchestration resolves to.
type OutcomeCode int

const (
	// OutcomeStarted means a sync job was launched on the backend.
	OutcomeStarted OutcomeCode = iota

	// OutcomeNoAccounts means the account set was empty; no network
	// calls were made.
	OutcomeNoAccounts

	// OutcomeNoReachableAccount means every account failed its
	// connection test; no sync job was started.
	OutcomeNoReachableAccount

	// OutcomeStartFailed means a reachable account was selected but the
	// backend refused to start the job.
	OutcomeStartFailed
)

// Outcome is the terminal result of one orchestration run. The run is
// not retried automatically; the user may re-trigger it.
type Outcome struct {
	Code      OutcomeCode
	Message   string
	AccountID string
}

// Started reports whether the run launched a sync job.
func (o Outcome) Started() bool {
	return o.Code == OutcomeStarted
}

// EmailReloader reloads the visible email list after a sync job starts
// producing data.
type EmailReloader interface {
	Reload(ctx context.Context) error
}

// syncFolders is the fixed folder set every full sync covers.
var syncFolders = []string{"INBOX", "Sent", "Drafts", "Trash"}

// defaultMaxEmailsPerSync applies when the account does not configure a
// positive limit.
const defaultMaxEmailsPerSync = 1000

// Orchestrator selects one account to synchronize, tolerating per-account
// connectivity failure, and starts the backend job only once a reachable
// account is confirmed.
type Orchestrator struct {
	store       *state.Store
	accounts    AccountAPI
	syncs       SyncAPI
	coordinator *Coordinator
	reloader    EmailReloader
	logger      zerolog.Logger

	// confirmTimeout bounds the confirmation poll that waits for the
	// backend's authoritative status to converge after a test.
	confirmTimeout time.Duration

	// reloadDelay is how long to wait after a started job before
	// reloading the email list.
	reloadDelay time.Duration
}

// NewOrchestrator creates a sync orchestrator. reloader may be nil, in
// which case no email reload is triggered after a start.
func NewOrchestrator(
	store *state.Store,
	accounts AccountAPI,
	syncs SyncAPI,
	coordinator *Coordinator,
	reloader EmailReloader,
	logger zerolog.Logger,
	confirmTimeout time.Duration,
	reloadDelay time.Duration,
) *Orchestrator {
	if confirmTimeout <= 0 {
		confirmTimeout = 15 * time.Second
	}
	return &Orchestrator{
		store:          store,
		accounts:       accounts,
		syncs:          syncs,
		coordinator:    coordinator,
		reloader:       reloader,
		logger:         logger,
		confirmTimeout: confirmTimeout,
		reloadDelay:    reloadDelay,
	}
}

// Run executes one orchestration: scan accounts for a reachable one,
// clean up stale jobs, confirm the selection against the backend's
// authoritative state, and start the job.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	snapshot := o.store.Snapshot()

	if len(snapshot.Accounts) == 0 {
		return o.fail(Outcome{
			Code:    OutcomeNoAccounts,
			Message: "No email accounts are configured. Add an account before syncing.",
		})
	}

	selectedID, failures := o.scan(ctx, snapshot.Accounts)
	if selectedID == "" {
		message := "No account is reachable."
		if len(failures) > 0 {
			message = "No account is reachable: " + strings.Join(failures, "; ")
		}
		return o.fail(Outcome{
			Code:    OutcomeNoReachableAccount,
			Message: message,
		})
	}

	// Best-effort cleanup of stale jobs from previous runs. Failure is
	// logged and does not block the start.
	if _, err := o.syncs.Cleanup(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("sync cleanup failed, continuing")
	}

	// The backend updates its authoritative connection status
	// asynchronously after a test responds. Poll the refreshed account
	// list until the selection converges (or the bound expires) instead
	// of starting against a possibly stale record.
	account := o.awaitActive(ctx, selectedID)
	if account == nil {
		return o.fail(Outcome{
			Code:    OutcomeStartFailed,
			Message: "Selected account disappeared before the sync could start.",
		})
	}

	preserveFlags, preserveDates, maxEmails := syncOptions(*account)
	result, err := o.syncs.Start(ctx, model.SyncStartRequest{
		AccountID:        account.ID,
		SyncType:         "full",
		Folders:          syncFolders,
		PreserveFlags:    preserveFlags,
		PreserveDates:    preserveDates,
		MaxEmailsPerSync: maxEmails,
	})
	if err != nil {
		return o.fail(Outcome{
			Code:      OutcomeStartFailed,
			Message:   api.ErrorMessage(err),
			AccountID: account.ID,
		})
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = "The backend refused to start the sync job."
		}
		return o.fail(Outcome{
			Code:      OutcomeStartFailed,
			Message:   message,
			AccountID: account.ID,
		})
	}

	o.store.Dispatch(state.ClearError{})
	o.logger.Info().
		Str("account_id", account.ID).
		Str("account", account.Email).
		Msg("sync job started")

	o.scheduleReload(ctx)

	return Outcome{
		Code:      OutcomeStarted,
		Message:   fmt.Sprintf("Synchronization started for %s.", account.Email),
		AccountID: account.ID,
	}
}

// scan walks the accounts in list order looking for a usable one. A
// cached active status is trusted without a new test; anything else is
// tested sequentially, and the first success triggers a list refresh to
// pick up the authoritative status.
func (o *Orchestrator) scan(
	ctx context.Context,
	accounts []model.Account,
) (selectedID string, failures []string) {
	for _, account := range accounts {
		if account.ConnectionStatus == model.StatusActive {
			return account.ID, failures
		}

		outcome, err := o.coordinator.TestConnection(ctx, account.ID)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", account.Email, err))
			if api.IsAuthError(err) {
				// Auth is gone for every account; scanning further
				// would just repeat the failure.
				return "", failures
			}
			continue
		}
		if !outcome.Success {
			failures = append(failures, fmt.Sprintf("%s: %s", account.Email, outcome.Error))
			continue
		}

		o.refreshAccounts(ctx)
		return account.ID, failures
	}

	return "", failures
}

// awaitActive polls the backend account list with backoff until the
// selected account reports an active status or the confirmation bound
// expires. The id is re-resolved against each refreshed list; on timeout
// the last resolved record is used rather than failing the run.
func (o *Orchestrator) awaitActive(ctx context.Context, accountID string) *model.Account {
	deadline := time.Now().Add(o.confirmTimeout)
	backoff := 500 * time.Millisecond

	var last *model.Account
	for {
		o.refreshAccounts(ctx)

		if account := o.store.Snapshot().AccountByID(accountID); account != nil {
			last = account
			if account.ConnectionStatus == model.StatusActive {
				return account
			}
		}

		if time.Now().After(deadline) {
			if last != nil {
				o.logger.Warn().
					Str("account_id", accountID).
					Msg("account status did not converge to active, starting anyway")
			}
			return last
		}

		select {
		case <-ctx.Done():
			return last
		case <-time.After(backoff):
		}

		if backoff < 4*time.Second {
			backoff *= 2
		}
	}
}

// refreshAccounts re-fetches the account list and publishes it through
// the store. Fetch failures leave the previous list in place.
func (o *Orchestrator) refreshAccounts(ctx context.Context) {
	o.store.Dispatch(state.LoadAccountsStart{})
	accounts, err := o.accounts.List(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Msg("account refresh failed")
		o.store.Dispatch(state.LoadAccountsFailure{Error: api.ErrorMessage(err)})
		return
	}
	o.store.Dispatch(state.LoadAccountsSuccess{Accounts: accounts})
}

// scheduleReload triggers an email list reload once the backend has had
// a moment to start producing data.
func (o *Orchestrator) scheduleReload(ctx context.Context) {
	if o.reloader == nil {
		return
	}

	if o.reloadDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(o.reloadDelay):
		}
	}

	if err := o.reloader.Reload(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("post-sync email reload failed")
	}
}

// fail records the outcome message for ambient display and returns it.
func (o *Orchestrator) fail(outcome Outcome) Outcome {
	o.store.Dispatch(state.SetError{Error: outcome.Message})
	o.logger.Info().
		Int("code", int(outcome.Code)).
		Str("message", outcome.Message).
		Msg("sync orchestration did not start a job")
	return outcome
}

// syncOptions resolves the start options for an account, falling back to
// the defaults (preserve flags, preserve dates, 1000 emails) when the
// account carries no sync configuration.
func syncOptions(account model.Account) (preserveFlags, preserveDates bool, maxEmails int) {
	if account.Sync == (model.SyncConfig{}) {
		return true, true, defaultMaxEmailsPerSync
	}

	maxEmails = account.Sync.MaxEmailsPerSync
	if maxEmails <= 0 {
		maxEmails = defaultMaxEmailsPerSync
	}
	return account.Sync.PreserveFlags, account.Sync.PreserveDates, maxEmails
}

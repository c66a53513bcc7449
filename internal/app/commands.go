package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/maildeck/internal/model"
	appsync "github.com/nhle/maildeck/internal/sync"
)

// stateChangedMsg is delivered whenever the store publishes a new
// snapshot. Signals are coalesced, so one message may cover several
// transitions.
type stateChangedMsg struct{}

// opDoneMsg carries the outcome of a backend operation; err is non-nil
// only for terminal auth failures.
type opDoneMsg struct {
	err error
}

// testDoneMsg is sent when a single connection test resolves.
type testDoneMsg struct {
	accountID string
	err       error
}

// testAllDoneMsg carries the tally of a test-all pass.
type testAllDoneMsg struct {
	succeeded int
	total     int
	err       error
}

// clearTestResultMsg asks for an advisory test result to be removed
// after its display window elapsed.
type clearTestResultMsg struct {
	accountID string
}

// syncDoneMsg carries the terminal outcome of a sync orchestration.
type syncDoneMsg struct {
	outcome appsync.Outcome
}

// waitForChange subscribes to the next store change signal. The command
// re-arms itself from the Update loop after each delivery.
func (m Model) waitForChange() tea.Cmd {
	changes := m.store.Changes()
	return func() tea.Msg {
		<-changes
		return stateChangedMsg{}
	}
}

// hydrate seeds the store from the offline cache before the first
// backend round trip completes.
func (m Model) hydrate() tea.Cmd {
	o := m.ops
	return func() tea.Msg {
		o.Hydrate(context.Background())
		return nil
	}
}

// loadAccounts fetches the account list from the backend.
func (m Model) loadAccounts() tea.Cmd {
	o := m.ops
	return func() tea.Msg {
		_, err := o.LoadAccounts(context.Background())
		return opDoneMsg{err: err}
	}
}

// loadEmails fetches the email page for the current filters.
func (m Model) loadEmails() tea.Cmd {
	o := m.ops
	return func() tea.Msg {
		_, err := o.LoadEmails(context.Background())
		return opDoneMsg{err: err}
	}
}

// searchEmails runs a full-text search.
func (m Model) searchEmails(query string) tea.Cmd {
	o := m.ops
	return func() tea.Msg {
		_, err := o.SearchEmails(context.Background(), query)
		return opDoneMsg{err: err}
	}
}

// runTest tests one account's connection through the coordinator.
func (m Model) runTest(accountID string) tea.Cmd {
	c := m.coordinator
	return func() tea.Msg {
		_, err := c.TestConnection(context.Background(), accountID)
		return testDoneMsg{accountID: accountID, err: err}
	}
}

// runTestAll tests every account sequentially and reports the tally.
func (m Model) runTestAll() tea.Cmd {
	c := m.coordinator
	return func() tea.Msg {
		succeeded, total, err := c.TestAll(context.Background())
		return testAllDoneMsg{succeeded: succeeded, total: total, err: err}
	}
}

// runSync executes one sync orchestration run.
func (m Model) runSync() tea.Cmd {
	o := m.orchestrator
	return func() tea.Msg {
		return syncDoneMsg{outcome: o.Run(context.Background())}
	}
}

// applyFilters replaces the active filter set and reloads the list.
// The store's filters are rebuilt from scratch so removed keys really
// disappear.
func (m Model) applyFilters(filters model.SearchFilters) tea.Cmd {
	m.ops.ClearFilters()
	if !filters.IsZero() {
		m.ops.SetFilters(filters)
	}
	m.ops.SetPage(1)
	return m.loadEmails()
}

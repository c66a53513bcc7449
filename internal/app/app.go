package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/ops"
	"github.com/nhle/maildeck/internal/state"
	appsync "github.com/nhle/maildeck/internal/sync"
	"github.com/nhle/maildeck/internal/ui"
	"github.com/nhle/maildeck/internal/ui/accountmgr"
	"github.com/nhle/maildeck/internal/ui/detail"
	helpview "github.com/nhle/maildeck/internal/ui/help"
	"github.com/nhle/maildeck/internal/ui/maillist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewMail ViewState = iota
	ViewDetail
	ViewAccounts
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and the subscription to the application store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout

	store        *state.Store
	ops          *ops.Operations
	coordinator  *appsync.Coordinator
	orchestrator *appsync.Orchestrator
	keys         *KeyMap

	mailList    maillist.Model
	detail      detail.Model
	helpView    helpview.Model
	accountView accountmgr.Model

	// Local filter state, rebuilt into the store's filter set on change.
	folder      string
	unreadOnly  bool
	flaggedOnly bool

	// resultTTL is how long an advisory test result stays on screen.
	resultTTL time.Duration

	snapshot         state.State
	ready            bool
	syncing          bool
	statusMsg        string
	authErrorMessage string
}

// New creates the root application model.
func New(
	store *state.Store,
	o *ops.Operations,
	coordinator *appsync.Coordinator,
	orchestrator *appsync.Orchestrator,
	resultTTL time.Duration,
) Model {
	keys := DefaultKeyMap()
	if resultTTL <= 0 {
		resultTTL = 10 * time.Second
	}

	return Model{
		currentView:  ViewMail,
		store:        store,
		ops:          o,
		coordinator:  coordinator,
		orchestrator: orchestrator,
		keys:         keys,
		mailList:     maillist.New(keys, 80, 24),
		detail:       detail.New(keys, 80, 24),
		helpView:     helpview.New(keys, 80, 24),
		accountView:  accountmgr.New(o, keys, 80, 24),
		resultTTL:    resultTTL,
		snapshot:     store.Snapshot(),
	}
}

// Init hydrates from the offline cache, starts the initial loads, and
// subscribes to store changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.hydrate(),
		m.loadAccounts(),
		m.loadEmails(),
		m.waitForChange(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.mailList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.accountView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case stateChangedMsg:
		m.snapshot = m.store.Snapshot()
		listCmd := m.mailList.SetEmails(
			m.snapshot.Emails,
			m.snapshot.Pagination,
			!m.snapshot.Filters.IsZero(),
		)
		m.accountView.SetAccounts(
			m.snapshot.Accounts,
			m.snapshot.Testing,
			m.snapshot.TestResults,
		)
		return m, tea.Batch(listCmd, m.waitForChange())

	case opDoneMsg:
		if msg.err != nil {
			return m.handleAuthFailure(msg.err)
		}
		return m, nil

	case testDoneMsg:
		if msg.err != nil {
			return m.handleAuthFailure(msg.err)
		}
		ttl := m.resultTTL
		id := msg.accountID
		return m, tea.Tick(ttl, func(time.Time) tea.Msg {
			return clearTestResultMsg{accountID: id}
		})

	case testAllDoneMsg:
		if msg.err != nil {
			return m.handleAuthFailure(msg.err)
		}
		m.statusMsg = appsync.Tally(msg.succeeded, msg.total)
		return m, nil

	case clearTestResultMsg:
		m.coordinator.ClearResult(msg.accountID)
		return m, nil

	case syncDoneMsg:
		m.syncing = false
		if msg.outcome.Started() {
			m.statusMsg = msg.outcome.Message
		}
		// Failures are already recorded in the store's error slot.
		return m, nil

	case maillist.SelectedEmailMsg:
		email := emailByID(m.snapshot.Emails, msg.EmailID)
		if email == nil {
			return m, nil
		}
		m.ops.SelectEmail(email)
		m.detail.SetEmail(email, m.snapshot.AccountByID(email.AccountID))
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, nil

	case maillist.SearchSubmittedMsg:
		return m, m.searchEmails(msg.Query)

	case maillist.SearchClearedMsg:
		return m, m.loadEmails()

	case detail.BackMsg:
		m.ops.SelectEmail(nil)
		m.currentView = ViewMail
		return m, nil

	case accountmgr.DoneMsg:
		m.currentView = ViewMail
		return m, m.loadAccounts()

	case accountmgr.TestRequestedMsg:
		return m, m.runTest(msg.AccountID)

	case accountmgr.AuthFailedMsg:
		return m.handleAuthFailure(msg.Err)

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that apply regardless of the active
// view. Returns handled=false when the key should reach the sub-view.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	// Text inputs own the keyboard while focused.
	if m.currentView == ViewMail && m.mailList.SearchActive() {
		return false, m, nil
	}
	if m.currentView == ViewAccounts {
		// Only ctrl+c is global inside forms.
		if msg.String() == "ctrl+c" {
			return true, m, tea.Quit
		}
		return false, m, nil
	}

	switch {
	case msg.String() == "ctrl+c":
		return true, m, tea.Quit

	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewMail {
			return true, m, tea.Quit
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.currentView == ViewMail {
			return true, m, tea.Batch(m.loadAccounts(), m.loadEmails())
		}

	case key.Matches(msg, m.keys.Accounts):
		if m.currentView == ViewMail {
			m.previousView = m.currentView
			m.currentView = ViewAccounts
			return true, m, nil
		}

	case key.Matches(msg, m.keys.AddAccount):
		if m.currentView == ViewMail {
			m.previousView = m.currentView
			m.currentView = ViewAccounts
			return true, m, m.accountView.StartAdd()
		}

	case key.Matches(msg, m.keys.Sync):
		if m.currentView == ViewMail && !m.syncing {
			m.syncing = true
			m.statusMsg = ""
			return true, m, m.runSync()
		}

	case key.Matches(msg, m.keys.TestAll):
		if m.currentView == ViewMail {
			m.statusMsg = ""
			return true, m, m.runTestAll()
		}

	case key.Matches(msg, m.keys.NextPage):
		if m.currentView == ViewMail {
			m.ops.SetPage(m.snapshot.Pagination.Page + 1)
			return true, m, m.loadEmails()
		}

	case key.Matches(msg, m.keys.PrevPage):
		if m.currentView == ViewMail {
			m.ops.SetPage(m.snapshot.Pagination.Page - 1)
			return true, m, m.loadEmails()
		}

	case key.Matches(msg, m.keys.FilterFolder):
		if m.currentView == ViewMail {
			m.folder = maillist.FolderAfter(m.folder)
			return true, m, m.applyFilters(m.currentFilters())
		}

	case key.Matches(msg, m.keys.FilterUnread):
		if m.currentView == ViewMail {
			m.unreadOnly = !m.unreadOnly
			return true, m, m.applyFilters(m.currentFilters())
		}

	case key.Matches(msg, m.keys.FilterFlagged):
		if m.currentView == ViewMail {
			m.flaggedOnly = !m.flaggedOnly
			return true, m, m.applyFilters(m.currentFilters())
		}

	case key.Matches(msg, m.keys.ClearFilters):
		if m.currentView == ViewMail {
			m.folder = ""
			m.unreadOnly = false
			m.flaggedOnly = false
			return true, m, m.applyFilters(model.SearchFilters{})
		}
	}

	return false, m, nil
}

// currentFilters assembles the store filter set from the local toggles.
func (m Model) currentFilters() model.SearchFilters {
	filters := model.SearchFilters{Folder: m.folder}
	if m.unreadOnly {
		isRead := false
		filters.IsRead = &isRead
	}
	if m.flaggedOnly {
		isFlagged := true
		filters.IsFlagged = &isFlagged
	}
	return filters
}

// handleAuthFailure wipes the session after a terminal auth error.
func (m Model) handleAuthFailure(err error) (tea.Model, tea.Cmd) {
	m.ops.ResetSession()
	m.authErrorMessage = "Session expired: " + err.Error() + ". Restart to sign in again."
	m.currentView = ViewMail
	return m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewMail:
		m.mailList, cmd = m.mailList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewAccounts:
		m.accountView, cmd = m.accountView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// headerTitle includes the active account when one is selected.
func (m Model) headerTitle() string {
	if account := m.snapshot.SelectedAccount; account != nil {
		return fmt.Sprintf("Maildeck · %s", account.Email)
	}
	return "Maildeck"
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewMail:
		return m.mailList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewAccounts:
		return m.accountView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string for the right side of the header.
func (m Model) syncStatus() string {
	switch {
	case m.syncing:
		return "syncing..."
	case m.snapshot.IsLoading:
		return "loading..."
	case len(m.snapshot.Accounts) == 0:
		return "no accounts"
	default:
		return fmt.Sprintf("%d accounts", len(m.snapshot.Accounts))
	}
}

// keyHints returns the status bar content: errors and transient notices
// take precedence over the shortcut hints.
func (m Model) keyHints() string {
	if m.authErrorMessage != "" {
		return m.authErrorMessage
	}
	if m.snapshot.LastError != "" {
		return m.snapshot.LastError
	}
	if m.statusMsg != "" {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | j/k scroll"
	case ViewAccounts:
		return "a add | e edit | d delete | t/enter test | esc back"
	default:
		hints := "q quit | ? help | / search | S sync | a accounts | f folder | u unread"
		if summary := m.filterSummary(); summary != "" {
			return summary + " | " + hints
		}
		return hints
	}
}

// filterSummary describes the active filters for the status bar.
func (m Model) filterSummary() string {
	var parts []string
	if m.folder != "" {
		parts = append(parts, m.folder)
	}
	if m.unreadOnly {
		parts = append(parts, "unread")
	}
	if m.flaggedOnly {
		parts = append(parts, "flagged")
	}
	if len(parts) == 0 {
		return ""
	}
	summary := parts[0]
	for _, p := range parts[1:] {
		summary += ", " + p
	}
	return "filter: " + summary
}

// emailByID finds an email in the loaded page.
func emailByID(emails []model.Email, id string) *model.Email {
	for i := range emails {
		if emails[i].ID == id {
			email := emails[i]
			return &email
		}
	}
	return nil
}

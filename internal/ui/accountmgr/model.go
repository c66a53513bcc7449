package accountmgr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/api"
	"github.com/nhle/maildeck/internal/keys"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/ops"
	"github.com/nhle/maildeck/internal/probe"
	"github.com/nhle/maildeck/internal/theme"
)

// Mode represents the current state of the account management view.
type Mode int

const (
	ModeList          Mode = iota // List configured accounts
	ModeForm                      // Add/edit account form
	ModeProbing                   // Verifying the IMAP server locally
	ModeProbeResult               // Show probe result before saving
	ModeSaving                    // Persisting to the backend
	ModeConfirmDelete             // Confirm account deletion
)

// DoneMsg signals the account view should close and return to the main app.
type DoneMsg struct{}

// TestRequestedMsg asks the parent to run a connection test for an account.
type TestRequestedMsg struct {
	AccountID string
}

// AuthFailedMsg signals that a backend call failed terminally on auth.
type AuthFailedMsg struct {
	Err error
}

// probeFinishedMsg carries the local IMAP probe result.
type probeFinishedMsg struct {
	report *probe.Report
	err    error
}

// accountSavedMsg is sent after a create/update call resolves.
type accountSavedMsg struct {
	result ops.Result
	err    error
}

// accountDeletedMsg is sent after a delete call resolves.
type accountDeletedMsg struct {
	result ops.Result
	err    error
}

// Model is the Bubble Tea model for the account management UI. Account
// rows come from store snapshots pushed by the parent; mutations go
// through the operations layer.
type Model struct {
	mode        Mode
	ops         *ops.Operations
	accounts    []model.Account
	testing     map[string]bool
	testResults map[string]model.TestResult
	selectedIdx int

	editingID string // "" when adding

	form *huh.Form

	// Form field values (huh binds to these)
	formName      string
	formEmail     string
	formIMAPHost  string
	formIMAPPort  string
	formSecure    bool
	formMethod    string
	formUsername  string
	formPassword  string
	formSyncOn    bool
	formFrequency string
	formMaxEmails string

	// Local probe
	probeReport *probe.Report
	probeErr    error
	spinner     spinner.Model

	// Delete confirmation
	confirmDelete *huh.Form
	deleteConfirm bool

	// Status message for transient feedback
	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates a new account management view model.
func New(o *ops.Operations, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeList,
		ops:     o,
		keys:    k,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// SetAccounts replaces the rendered account rows from a store snapshot.
func (m *Model) SetAccounts(
	accounts []model.Account,
	testing map[string]bool,
	results map[string]model.TestResult,
) {
	m.accounts = accounts
	m.testing = testing
	m.testResults = results
	if m.selectedIdx >= len(accounts) && len(accounts) > 0 {
		m.selectedIdx = len(accounts) - 1
	}
}

// StartAdd opens the account form in add mode.
func (m *Model) StartAdd() tea.Cmd {
	m.resetFormFields()
	m.editingID = ""
	m.mode = ModeForm
	m.form = m.buildAccountForm()
	return m.form.Init()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case probeFinishedMsg:
		m.probeReport = msg.report
		m.probeErr = msg.err
		m.mode = ModeProbeResult
		return m, nil

	case accountSavedMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m, func() tea.Msg { return AuthFailedMsg{Err: msg.err} }
			}
			m.statusMsg = fmt.Sprintf("Error saving account: %v", msg.err)
			m.mode = ModeList
			return m, nil
		}
		if !msg.result.Success {
			m.statusMsg = "Error saving account: " + msg.result.Error
			m.mode = ModeList
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Account %q saved", m.formName)
		m.mode = ModeList
		return m, nil

	case accountDeletedMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m, func() tea.Msg { return AuthFailedMsg{Err: msg.err} }
			}
			m.statusMsg = fmt.Sprintf("Error deleting account: %v", msg.err)
			m.mode = ModeList
			return m, nil
		}
		if !msg.result.Success {
			m.statusMsg = "Error deleting account: " + msg.result.Error
			m.mode = ModeList
			return m, nil
		}
		m.statusMsg = "Account deleted"
		m.mode = ModeList
		if m.selectedIdx >= len(m.accounts)-1 && m.selectedIdx > 0 {
			m.selectedIdx--
		}
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeProbing || m.mode == ModeSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Delegate to active form
	return m.updateActiveForm(msg)
}

// handleKeyMsg processes key messages based on the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeList:
		return m.handleListKeys(msg)
	case ModeForm:
		return m.updateForm(msg)
	case ModeProbeResult:
		return m.handleProbeResultKeys(msg)
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	case ModeProbing, ModeSaving:
		// Only allow escape while waiting
		if msg.String() == "esc" {
			m.mode = ModeList
			return m, nil
		}
		return m, nil
	}
	return m, nil
}

// handleListKeys processes key events in the account list mode.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case msg.String() == "a":
		return m, m.StartAdd()

	case msg.String() == "e":
		if len(m.accounts) == 0 {
			return m, nil
		}
		account := m.accounts[m.selectedIdx]
		m.startEditForm(account)
		return m, m.form.Init()

	case msg.String() == "d":
		if len(m.accounts) == 0 {
			return m, nil
		}
		m.deleteConfirm = false
		m.confirmDelete = m.buildDeleteConfirmForm()
		m.mode = ModeConfirmDelete
		return m, m.confirmDelete.Init()

	case key.Matches(msg, m.keys.Test), msg.String() == "enter":
		if len(m.accounts) == 0 {
			return m, nil
		}
		account := m.accounts[m.selectedIdx]
		return m, func() tea.Msg {
			return TestRequestedMsg{AccountID: account.ID}
		}

	case key.Matches(msg, m.keys.Down):
		if len(m.accounts) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.accounts)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.accounts) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.accounts) - 1
			}
		}
		return m, nil
	}

	return m, nil
}

// handleProbeResultKeys processes key events on the probe result screen.
func (m Model) handleProbeResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.probeErr == nil {
			// Server verified; persist to the backend.
			m.mode = ModeSaving
			return m, tea.Batch(m.spinner.Tick, m.saveAccount())
		}
		// Re-open the form to fix the settings.
		m.mode = ModeForm
		m.form = m.buildAccountForm()
		return m, m.form.Init()

	case "s":
		// Save despite the failed probe; the backend runs its own test.
		m.mode = ModeSaving
		return m, tea.Batch(m.spinner.Tick, m.saveAccount())

	case "esc":
		m.mode = ModeList
		m.probeReport = nil
		m.probeErr = nil
		return m, nil
	}
	return m, nil
}

// updateActiveForm dispatches non-key messages to the currently active form.
func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m, nil
}

// --- Account Form ---

func (m *Model) buildAccountForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("A label for this account").
				Placeholder("Work").
				Value(&m.formName).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Email Address").
				Placeholder("user@example.com").
				Value(&m.formEmail).
				Validate(validateEmail),
			huh.NewInput().
				Title("IMAP Host").
				Description("IMAP server hostname").
				Placeholder("imap.example.com").
				Value(&m.formIMAPHost).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Description("IMAP server port (e.g., 993)").
				Placeholder("993").
				Value(&m.formIMAPPort).
				Validate(validatePort),
			huh.NewConfirm().
				Title("Use TLS").
				Description("Connect with implicit TLS (disable for STARTTLS)").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formSecure),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Auth Method").
				Options(
					huh.NewOption("Password (PLAIN)", string(model.AuthPlain)),
					huh.NewOption("Password (LOGIN)", string(model.AuthLogin)),
					huh.NewOption("OAuth2", string(model.AuthOAuth2)),
				).
				Value(&m.formMethod),
			huh.NewInput().
				Title("Username").
				Description("Usually the email address").
				Placeholder("user@example.com").
				Value(&m.formUsername).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("App password for webmail providers; leave empty to keep the current one").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable Sync").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formSyncOn),
			huh.NewSelect[string]().
				Title("Sync Frequency").
				Options(
					huh.NewOption("Manual", string(model.FrequencyManual)),
					huh.NewOption("Hourly", string(model.FrequencyHourly)),
					huh.NewOption("Daily", string(model.FrequencyDaily)),
				).
				Value(&m.formFrequency),
			huh.NewInput().
				Title("Max Emails Per Sync").
				Placeholder("1000").
				Value(&m.formMaxEmails).
				Validate(validateOptionalNumber),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.handleFormCompleted()
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// handleFormCompleted runs a local server probe when a password was
// entered, otherwise saves directly.
func (m Model) handleFormCompleted() (Model, tea.Cmd) {
	if m.formPassword != "" && m.formMethod != string(model.AuthOAuth2) {
		m.mode = ModeProbing
		return m, tea.Batch(m.spinner.Tick, m.runProbe())
	}

	m.mode = ModeSaving
	return m, tea.Batch(m.spinner.Tick, m.saveAccount())
}

// runProbe verifies the IMAP server with the entered settings before
// anything reaches the backend.
func (m Model) runProbe() tea.Cmd {
	port, _ := strconv.Atoi(m.formIMAPPort)
	params := probe.Params{
		Host:     m.formIMAPHost,
		Port:     port,
		Secure:   m.formSecure,
		Username: m.formUsername,
		Password: m.formPassword,
	}
	return func() tea.Msg {
		report, err := probe.Run(context.Background(), params)
		return probeFinishedMsg{report: report, err: err}
	}
}

// saveAccount persists the form through the operations layer.
func (m Model) saveAccount() tea.Cmd {
	account := m.buildAccount()
	password := m.formPassword
	editingID := m.editingID
	o := m.ops

	return func() tea.Msg {
		ctx := context.Background()

		payload := api.NewAccountPayload(account, password)
		if editingID == "" {
			result, err := o.CreateAccount(ctx, payload)
			return accountSavedMsg{result: result, err: err}
		}
		result, err := o.UpdateAccount(ctx, editingID, payload)
		return accountSavedMsg{result: result, err: err}
	}
}

// buildAccount assembles the account record from the form fields.
func (m Model) buildAccount() model.Account {
	port, _ := strconv.Atoi(m.formIMAPPort)
	maxEmails, _ := strconv.Atoi(m.formMaxEmails)

	return model.Account{
		ID:    m.editingID,
		Name:  m.formName,
		Email: m.formEmail,
		IMAP: model.IMAPConfig{
			Host:   m.formIMAPHost,
			Port:   port,
			Secure: m.formSecure,
		},
		Auth: model.AuthConfig{
			Method:   model.AuthMethod(m.formMethod),
			Username: m.formUsername,
		},
		Sync: model.SyncConfig{
			Enabled:          m.formSyncOn,
			Frequency:        model.SyncFrequency(m.formFrequency),
			PreserveFlags:    true,
			PreserveDates:    true,
			MaxEmailsPerSync: maxEmails,
		},
	}
}

// --- Delete Confirmation ---

func (m *Model) buildDeleteConfirmForm() *huh.Form {
	accountName := ""
	if m.selectedIdx < len(m.accounts) {
		accountName = m.accounts[m.selectedIdx].Name
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete account %q?", accountName)).
				Description(
					"This removes the account from the backend. " +
						"Synced emails for it will no longer be available.",
				).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.deleteConfirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirmDelete(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmDelete == nil {
		return m, nil
	}

	mdl, cmd := m.confirmDelete.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmDelete = f
	}

	if m.confirmDelete.State == huh.StateCompleted {
		if m.deleteConfirm {
			account := m.accounts[m.selectedIdx]
			o := m.ops
			return m, func() tea.Msg {
				result, err := o.DeleteAccount(context.Background(), account.ID)
				return accountDeletedMsg{result: result, err: err}
			}
		}
		m.mode = ModeList
		return m, nil
	}
	if m.confirmDelete.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// --- View ---

// View renders the account management UI based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeForm:
		return m.viewForm(m.form)
	case ModeProbing:
		return m.viewWaiting("Verifying IMAP server...")
	case ModeProbeResult:
		return m.viewProbeResult()
	case ModeSaving:
		return m.viewWaiting("Saving account...")
	case ModeConfirmDelete:
		return m.viewForm(m.confirmDelete)
	default:
		return ""
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("Email Accounts"))
	b.WriteString("\n\n")

	if len(m.accounts) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true)
		b.WriteString(emptyStyle.Render(
			"No accounts configured.\nPress 'a' to add an account.",
		))
	} else {
		for i, account := range m.accounts {
			b.WriteString(m.renderAccountItem(i, account))
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	b.WriteString(hintStyle.Render(
		"a add | e edit | d delete | t/enter test | esc back",
	))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderAccountItem(idx int, account model.Account) string {
	glyph := theme.StatusStyle(account.ConnectionStatus).
		Render(theme.StatusGlyph(account.ConnectionStatus))

	name := account.Name
	if name == "" {
		name = "(unnamed)"
	}

	line := fmt.Sprintf("%s %s  %s  %s",
		glyph, name, account.Email, account.IMAP.Host,
	)

	if m.testing[account.ID] {
		line += lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Render("  testing...")
	} else if result, ok := m.testResults[account.ID]; ok {
		if result.Success {
			line += theme.SuccessStyle.Render("  ✓ reachable")
		} else {
			line += theme.ErrorStyle.Render("  ✗ " + result.Error)
		}
	}

	if idx == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(f.View())
}

func (m Model) viewWaiting(message string) string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	content := fmt.Sprintf(
		"%s %s\n\nPress esc to cancel.",
		m.spinner.View(), message,
	)

	return style.Render(content)
}

func (m Model) viewProbeResult() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var content string
	if m.probeErr != nil {
		content = theme.ErrorStyle.Render("Server check failed") + "\n\n" +
			m.probeErr.Error() + "\n\n" +
			hintStyle.Render("enter edit settings | s save anyway | esc cancel")
	} else {
		detail := fmt.Sprintf("Reached %s in %s.", m.formIMAPHost, m.probeReport.Elapsed.Round(time.Millisecond))
		if m.probeReport.Authenticated {
			detail += fmt.Sprintf(" Login OK, %d folders visible.", len(m.probeReport.Folders))
		}
		content = theme.SuccessStyle.Render("Server verified") + "\n\n" +
			detail + "\n\n" +
			hintStyle.Render("enter save | esc cancel")
	}

	return style.Render(content)
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m *Model) resetFormFields() {
	m.formName = ""
	m.formEmail = ""
	m.formIMAPHost = ""
	m.formIMAPPort = "993"
	m.formSecure = true
	m.formMethod = string(model.AuthPlain)
	m.formUsername = ""
	m.formPassword = ""
	m.formSyncOn = true
	m.formFrequency = string(model.FrequencyHourly)
	m.formMaxEmails = "1000"
}

func (m *Model) startEditForm(account model.Account) {
	m.resetFormFields()
	m.editingID = account.ID
	m.formName = account.Name
	m.formEmail = account.Email
	m.formIMAPHost = account.IMAP.Host
	if account.IMAP.Port > 0 {
		m.formIMAPPort = strconv.Itoa(account.IMAP.Port)
	}
	m.formSecure = account.IMAP.Secure
	if account.Auth.Method != "" {
		m.formMethod = string(account.Auth.Method)
	}
	m.formUsername = account.Auth.Username
	m.formPassword = "" // Never pre-fill credentials
	m.formSyncOn = account.Sync.Enabled
	if account.Sync.Frequency != "" {
		m.formFrequency = string(account.Sync.Frequency)
	}
	if account.Sync.MaxEmailsPerSync > 0 {
		m.formMaxEmails = strconv.Itoa(account.Sync.MaxEmailsPerSync)
	}

	m.mode = ModeForm
	m.form = m.buildAccountForm()
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email address is required")
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}

func validateOptionalNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

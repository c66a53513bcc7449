package maillist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/keys"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// SelectedEmailMsg is sent when a user selects an email to view details.
type SelectedEmailMsg struct {
	EmailID string
}

// SearchSubmittedMsg is sent when the user submits a search query.
type SearchSubmittedMsg struct {
	Query string
}

// SearchClearedMsg is sent when the user dismisses the search bar.
type SearchClearedMsg struct{}

// folderCycle is the folder filter order the folder key steps through.
// The empty string means "all folders".
var folderCycle = []string{"", "INBOX", "Sent", "Drafts", "Trash"}

// Model is the main email list view component. It renders whatever the
// application store last published; it never fetches data itself.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	pagination  model.Pagination
	hasFilters  bool
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new email list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Emails"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search emails..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetEmails replaces the visible rows from a store snapshot. Selection
// position is preserved by the underlying list where possible.
func (m *Model) SetEmails(emails []model.Email, pagination model.Pagination, hasFilters bool) tea.Cmd {
	items := make([]list.Item, len(emails))
	for i, email := range emails {
		items[i] = EmailItem{Email: email}
	}
	m.pagination = pagination
	m.hasFilters = hasFilters
	return m.list.SetItems(items)
}

// FolderAfter returns the folder filter following current in the cycle.
func FolderAfter(current string) string {
	for i, folder := range folderCycle {
		if folder == current {
			return folderCycle[(i+1)%len(folderCycle)]
		}
	}
	return folderCycle[0]
}

// SearchActive reports whether the search input currently owns the keyboard.
func (m Model) SearchActive() bool {
	return m.searchMode
}

// Update handles messages for the email list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(keyMsg)
		}
		return m.handleNormalKeys(keyMsg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query == "" {
			return m, func() tea.Msg { return SearchClearedMsg{} }
		}
		return m, func() tea.Msg { return SearchSubmittedMsg{Query: query} }

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		return m, func() tea.Msg { return SearchClearedMsg{} }
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(EmailItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedEmailMsg{EmailID: item.Email.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the email list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), m.renderPageLine())
}

// renderPageLine shows the current page position under the list.
func (m Model) renderPageLine() string {
	if m.pagination.Total == 0 {
		return ""
	}
	return theme.HelpStyle.Render(fmt.Sprintf(
		"page %d/%d (%d emails)",
		m.pagination.Page, m.pagination.TotalPages(), m.pagination.Total,
	))
}

// renderEmptyState shows guidance text when no emails are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.hasFilters {
		return style.Render("No matching emails.\nPress c to clear filters.")
	}

	return style.Render(
		"No emails yet.\n\n" +
			"Press A to add an account, then S to start a sync.",
	)
}

// SelectedEmail returns the email under the cursor, if any.
func (m Model) SelectedEmail() *model.Email {
	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return nil
	}
	email := item.Email
	return &email
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

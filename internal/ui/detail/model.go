package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/maildeck/internal/keys"
	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Model is the email detail view component.
type Model struct {
	email    *model.Email
	account  *model.Account
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Back) {
			return m, func() tea.Msg {
				return BackMsg{}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.email == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No email selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.email == nil {
		return ""
	}

	email := m.email
	var sections []string

	// Subject
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	subject := email.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	sections = append(sections, titleStyle.Render(subject))

	// Badges line: folder + flags
	folderBadge := theme.FolderStyle(email.Folder).Render(email.Folder)
	flagsBadge := lipgloss.NewStyle().
		Foreground(theme.ColorYellow).
		Render(flagNames(email.Flags))

	badgeLine := lipgloss.JoinHorizontal(lipgloss.Top, folderBadge, "  ", flagsBadge)
	sections = append(sections, badgeLine)
	sections = append(sections, "")

	// Metadata table
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s      %s",
		metaStyle.Render("From:"),
		valStyle.Render(email.From),
	))
	if m.account != nil {
		sections = append(sections, fmt.Sprintf(
			"%s   %s",
			metaStyle.Render("Account:"),
			valStyle.Render(fmt.Sprintf("%s <%s>", m.account.Name, m.account.Email)),
		))
	}
	if !email.Date.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s      %s",
			metaStyle.Render("Date:"),
			valStyle.Render(email.Date.Format("2006-01-02 15:04")),
		))
	}

	// Separator
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	// Preview body. Only the synced snippet is available locally; the
	// full body stays on the backend.
	body := email.Snippet
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No preview available")
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetEmail updates the email being displayed and re-renders the content.
// account is the owning account record, when resolvable.
func (m *Model) SetEmail(email *model.Email, account *model.Account) {
	m.email = email
	m.account = account
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// flagNames returns a readable list of the set flags.
func flagNames(flags model.EmailFlags) string {
	var names []string
	if !flags.Seen {
		names = append(names, "unread")
	}
	if flags.Flagged {
		names = append(names, "flagged")
	}
	if flags.Answered {
		names = append(names, "answered")
	}
	if flags.Draft {
		names = append(names, "draft")
	}
	if flags.Deleted {
		names = append(names, "deleted")
	}
	if len(names) == 0 {
		return "read"
	}
	return strings.Join(names, ", ")
}

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/evensen/daybook/internal/journal"
)

var (
	dateStyle      = lipgloss.NewStyle().Bold(true)
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	committedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Model owns the Bubble Tea state for the journal editor: a title input, the
// live textarea, and the read-only committed sections above it. All
// persistence goes through the session controller; the model only reflects
// its events.
type Model struct {
	ctx     context.Context
	session *journal.Session

	title textinput.Model
	body  textarea.Model

	view       journal.View
	loaded     bool
	titleFocus bool
	statusLine string
	errorLine  string
	width      int
}

type loadedMsg struct {
	view journal.View
	err  error
}

type sessionEventMsg struct {
	event journal.Event
}

// NewModel seeds the editor around an unloaded session.
func NewModel(ctx context.Context, session *journal.Session) Model {
	title := textinput.New()
	title.Placeholder = "add a title..."
	title.Prompt = ""
	title.CharLimit = 120

	body := textarea.New()
	body.Placeholder = "Write about your day..."
	body.ShowLineNumbers = false
	body.Focus()

	return Model{
		ctx:        ctx,
		session:    session,
		title:      title,
		body:       body,
		statusLine: "Loading today's entry...",
	}
}

// Init loads today's entry and starts draining session events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForEvent(), textarea.Blink)
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		view, err := m.session.Load()
		return loadedMsg{view: view, err: err}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.session.Events()
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return sessionEventMsg{event: event}
	}
}

// Update routes input to the focused component and mirrors every text change
// into the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.title.Width = msg.Width - 4
		m.body.SetWidth(msg.Width - 2)
		return m, nil
	case loadedMsg:
		return m.handleLoaded(msg)
	case sessionEventMsg:
		return m.handleSessionEvent(msg.event)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateFocused(msg)
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorLine = fmt.Sprintf("Failed to load entry: %v", msg.err)
		m.statusLine = ""
		return m, nil
	}
	m.loaded = true
	m.view = msg.view
	m.title.SetValue(msg.view.Title)
	m.body.SetValue(msg.view.Live.Text)
	m.statusLine = msg.view.Date.Format("Monday, 2 January 2006")
	m.errorLine = ""
	return m, nil
}

func (m Model) handleSessionEvent(event journal.Event) (tea.Model, tea.Cmd) {
	switch event.Kind {
	case journal.EventSaved:
		m.view.Committed = event.Committed
		m.statusLine = event.Message
		m.errorLine = ""
	case journal.EventCommitted:
		m.view.Committed = event.Committed
		m.body.SetValue("")
		m.statusLine = event.Message
		m.errorLine = ""
	case journal.EventRolledOver:
		m.view.Date = event.Date
		m.view.Committed = event.Committed
		m.title.SetValue("")
		m.body.SetValue(event.Live.Text)
		m.statusLine = event.Message
		m.errorLine = ""
	case journal.EventSaveFailed:
		m.errorLine = fmt.Sprintf("Save failed: %v (your text is kept, will retry)", event.Err)
	}
	return m, m.waitForEvent()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.session.Flush()
		m.session.Close()
		return m, tea.Quit
	case "tab":
		return m.toggleFocus()
	}
	return m.updateFocused(msg)
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	m.titleFocus = !m.titleFocus
	if m.titleFocus {
		m.body.Blur()
		return m, m.title.Focus()
	}
	m.title.Blur()
	return m, m.body.Focus()
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.loaded {
		return m, nil
	}

	if m.titleFocus {
		before := m.title.Value()
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(msg)
		if m.title.Value() != before {
			m.session.EditTitle(m.title.Value())
		}
		return m, cmd
	}

	before := m.body.Value()
	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	if m.body.Value() != before {
		m.session.Edit(m.body.Value())
	}
	return m, cmd
}

// View renders the committed history above the editable area.
func (m Model) View() string {
	var b strings.Builder

	header := m.view.Date.Format("2006-01-02")
	b.WriteString(dateStyle.Render("## "+header) + "  " + m.title.View())
	b.WriteString("\n\n")

	for _, section := range m.view.Committed {
		if section.Time != "" {
			b.WriteString(timestampStyle.Render(section.Time) + "\n")
		}
		b.WriteString(committedStyle.Render(section.Text))
		b.WriteString("\n\n")
	}

	b.WriteString(m.body.View())
	b.WriteString("\n")

	if m.errorLine != "" {
		b.WriteString(errorStyle.Render(m.errorLine) + "\n")
	} else if m.statusLine != "" {
		b.WriteString(statusStyle.Render(m.statusLine) + "\n")
	}
	b.WriteString(helpStyle.Render("tab: title/body • esc: save & quit"))

	return b.String()
}

// Package console holds the bubbletea screens used by the CLI.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobboard/internal/model"
)

// Lines per item in the list view (title + subtitle + blank separator).
const itemHeight = 3

const (
	paneJobs = iota
	paneApplications
)

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("214")) // amber

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle   = headerStyle.Foreground(lipgloss.Color("214"))
	inactiveHeaderStyle = headerStyle.Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	itemTitleStyle    = lipgloss.NewStyle().Bold(true)
	itemSubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("16")).
				Background(lipgloss.Color("214"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236")).
				Background(lipgloss.Color("214"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214")).
				Width(16)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Backend is what the admin panel reads and moderates. *board.Service
// satisfies it.
type Backend interface {
	Jobs(f model.JobFilter) ([]model.Job, error)
	Applications() ([]model.Application, error)
	DeleteJob(jobID, requesterID string) (bool, error)
	DeleteApplication(id string) error
}

// loadedMsg carries a fresh snapshot of both collections.
type loadedMsg struct {
	jobs []model.Job
	apps []model.Application
	err  error
}

// deletedMsg reports the outcome of a delete.
type deletedMsg struct {
	what string
	ok   bool
	err  error
}

type adminModel struct {
	backend Backend
	adminID string

	jobs          []model.Job
	apps          []model.Application
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int
	cursors       [2]int
	width         int
	height        int
	ready         bool

	view           viewState
	detailViewport viewport.Model

	status  string
	confirm bool // waiting for a second "d"
}

func newAdminModel(b Backend, adminID string) adminModel {
	return adminModel{backend: b, adminID: adminID}
}

func (m adminModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m adminModel) loadCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		jobs, err := b.Jobs(nil)
		if err != nil {
			return loadedMsg{err: err}
		}
		apps, err := b.Applications()
		return loadedMsg{jobs: jobs, apps: apps, err: err}
	}
}

func (m adminModel) deleteCmd() tea.Cmd {
	b, adminID := m.backend, m.adminID
	switch m.activePane {
	case paneJobs:
		if len(m.jobs) == 0 {
			return nil
		}
		job := m.jobs[m.cursors[paneJobs]]
		return func() tea.Msg {
			ok, err := b.DeleteJob(job.ID, adminID)
			return deletedMsg{what: "job " + job.Title, ok: ok, err: err}
		}
	default:
		if len(m.apps) == 0 {
			return nil
		}
		app := m.apps[m.cursors[paneApplications]]
		return func() tea.Msg {
			err := b.DeleteApplication(app.ID)
			return deletedMsg{what: "application from " + app.ApplicantName, ok: err == nil, err: err}
		}
	}
}

func (m adminModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.jobs, m.apps = msg.jobs, msg.apps
		m.cursors[paneJobs] = clamp(m.cursors[paneJobs], 0, max(len(m.jobs)-1, 0))
		m.cursors[paneApplications] = clamp(m.cursors[paneApplications], 0, max(len(m.apps)-1, 0))
		m.recalcContent()
		return m, nil

	case deletedMsg:
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("delete %s failed: %v", msg.what, msg.err)
		case !msg.ok:
			m.status = fmt.Sprintf("delete %s refused", msg.what)
		default:
			m.status = "deleted " + msg.what
		}
		return m, m.loadCmd()

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m adminModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "d" {
		m.confirm = false
	}

	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "r":
		m.status = "reloading"
		return m, m.loadCmd()
	case "d":
		if !m.confirm {
			m.confirm = true
			m.status = "press d again to delete"
			return m, nil
		}
		m.confirm = false
		return m, m.deleteCmd()
	case "enter":
		if m.activeLen() == 0 {
			return m, nil
		}
		m.view = viewDetail
		m.detailViewport = viewport.New(m.width-4, m.height-4)
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil
	}

	var cmd tea.Cmd
	if m.activePane == paneJobs {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m adminModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m adminModel) activeLen() int {
	if m.activePane == paneJobs {
		return len(m.jobs)
	}
	return len(m.apps)
}

func (m *adminModel) moveCursor(delta int) {
	m.cursors[m.activePane] = clamp(m.cursors[m.activePane]+delta, 0, max(m.activeLen()-1, 0))
}

func (m *adminModel) ensureCursorVisible() {
	vp := &m.leftViewport
	if m.activePane == paneApplications {
		vp = &m.rightViewport
	}
	cursorTop := m.cursors[m.activePane] * itemHeight
	cursorBottom := cursorTop + itemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m *adminModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)
	// Header (1 line) + border top/bottom (2) + status bar (1).
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}
	m.recalcContent()
}

func (m *adminModel) recalcContent() {
	jobItems := make([]listItem, len(m.jobs))
	for i, j := range m.jobs {
		jobItems[i] = listItem{title: j.Title, subtitle: fmt.Sprintf("%s · %s · %s", j.Company, j.Category, j.PostedAt.Format("2006-01-02"))}
	}
	appItems := make([]listItem, len(m.apps))
	for i, a := range m.apps {
		appItems[i] = listItem{title: a.ApplicantName + " " + a.ApplicantHandle, subtitle: fmt.Sprintf("%s · %s", a.JobTitle, a.AppliedAt.Format("2006-01-02 15:04"))}
	}
	m.leftViewport.SetContent(renderItems(jobItems, m.cursors[paneJobs], m.activePane == paneJobs))
	m.rightViewport.SetContent(renderItems(appItems, m.cursors[paneApplications], m.activePane == paneApplications))
}

func (m adminModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m adminModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" Jobs (%d)", len(m.jobs))
	rightHeader := fmt.Sprintf(" Applications (%d)", len(m.apps))

	leftHeaderSt, rightHeaderSt := activeHeaderStyle, inactiveHeaderStyle
	leftBorder, rightBorder := activeBorderStyle, inactiveBorderStyle
	if m.activePane == paneApplications {
		leftHeaderSt, rightHeaderSt = inactiveHeaderStyle, activeHeaderStyle
		leftBorder, rightBorder = inactiveBorderStyle, activeBorderStyle
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderSt.Render(leftHeader)),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderSt.Render(rightHeader)),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Width(paneWidth).Render(m.leftViewport.View()),
		" ",
		rightBorder.Width(paneWidth).Render(m.rightViewport.View()),
	)

	statusText := " ←/→/Tab switch  ↑/↓ cursor  Enter detail  d d delete  r reload  q quit"
	if m.status != "" {
		statusText = " " + m.status + "  |" + statusText
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m adminModel) viewDetail() string {
	title := detailTitleStyle.Render("Details")
	content := activeBorderStyle.Width(m.width - 2).Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m adminModel) renderDetail() string {
	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	if m.activePane == paneJobs {
		if len(m.jobs) == 0 {
			return ""
		}
		j := m.jobs[m.cursors[paneJobs]]
		addField("Title", j.Title)
		addField("Company", j.Company)
		addField("Location", j.Location)
		addField("Salary", j.Salary)
		addField("Category", string(j.Category))
		addField("Type", string(j.Type))
		addField("Posted", j.PostedAt.Format("2006-01-02 15:04"))
		addField("Owner", j.OwnerID)
		addField("Job ID", j.ID)
		if j.IsHot {
			addField("Hot", "yes")
		}
		b.WriteByte('\n')
		b.WriteString(wordWrap(j.Description, max(m.width-8, 20)))
		b.WriteString("\n\n")
		for _, r := range j.Requirements {
			b.WriteString("  • " + r + "\n")
		}
		return b.String()
	}

	if len(m.apps) == 0 {
		return ""
	}
	a := m.apps[m.cursors[paneApplications]]
	addField("Applicant", a.ApplicantName)
	addField("Handle", a.ApplicantHandle)
	addField("Job", a.JobTitle)
	addField("Job ID", a.JobID)
	addField("User ID", a.UserID)
	addField("Applied", a.AppliedAt.Format("2006-01-02 15:04"))
	if m.status != "" && strings.Contains(m.status, "failed") {
		b.WriteString("\n" + errorStyle.Render("⚠ "+m.status) + "\n")
	}
	return b.String()
}

type listItem struct {
	title    string
	subtitle string
}

func renderItems(items []listItem, cursor int, isActive bool) string {
	if len(items) == 0 {
		return "  (empty)"
	}

	var b strings.Builder
	for i, it := range items {
		titleSt, subtitleSt, prefix := itemTitleStyle, itemSubtitleStyle, "  "
		if isActive && i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix + titleSt.Render(it.title) + "\n")
		b.WriteString(prefix + subtitleSt.Render(it.subtitle) + "\n")
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunAdminPanel launches the full-screen moderation panel. Deletes are
// performed as adminID.
func RunAdminPanel(b Backend, adminID string) error {
	p := tea.NewProgram(newAdminModel(b, adminID), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

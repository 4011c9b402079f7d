// Package tui is an interactive terminal front end for one session: a
// scrolling log pane fed by periodic sink drains, with keys to stop the
// run, clear the pane and quit once the session has finished.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/controller"
	"github.com/atlanticdynamic/exebuild/internal/fancy"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const chromeHeight = 4

// Canceller is the part of the controller the TUI drives.
type Canceller interface {
	Cancel(s *controller.Session) error
	State() string
}

type tickMsg time.Time

// DefaultScrollback is how many rendered lines the log pane keeps.
const DefaultScrollback = 10000

// Model is a bubbletea model following a single session.
type Model struct {
	ctrl     Canceller
	session  *controller.Session
	drainer  logsink.Drainer
	interval time.Duration
	title    string

	viewport viewport.Model
	lines    []string
	maxLines int
	follow   bool

	status    *logsink.Status
	cancelled bool
	notice    string
}

// New creates a Model for session s, draining d every interval.
func New(ctrl Canceller, s *controller.Session, d logsink.Drainer, interval time.Duration) *Model {
	if interval <= 0 {
		interval = logsink.DefaultPollInterval
	}
	title := "exebuild"
	if s != nil {
		title = fmt.Sprintf("exebuild %s", s.Kind)
		if s.Config.ScriptPath != "" {
			title += " · " + s.Config.ScriptPath
		}
	}
	return &Model{
		ctrl:     ctrl,
		session:  s,
		drainer:  d,
		interval: interval,
		title:    title,
		viewport: viewport.New(80, 20),
		maxLines: DefaultScrollback,
		follow:   true,
	}
}

// Status returns the session's terminal status once it has been drained.
func (m *Model) Status() (logsink.Status, bool) {
	if m.status == nil {
		return logsink.Status{}, false
	}
	return *m.status, true
}

// Lines returns the rendered lines currently in the pane.
func (m *Model) Lines() []string {
	return m.lines
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = v.Width
		m.viewport.Height = max(v.Height-chromeHeight, 1)
		m.refresh()
		return m, nil
	case tickMsg:
		m.drain()
		return m, m.tick()
	case tea.KeyMsg:
		return m, m.handleKey(v)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "ctrl+c", "s", "esc":
		if m.status != nil {
			return tea.Quit
		}
		m.requestCancel()
		return nil
	case "q":
		if m.status != nil {
			return tea.Quit
		}
		m.notice = "build still running; press s to stop it first"
		return nil
	case "ctrl+l":
		m.lines = nil
		m.refresh()
		return nil
	case "f":
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
		}
		return nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(k)
	return cmd
}

func (m *Model) requestCancel() {
	if m.cancelled || m.session == nil {
		return
	}
	err := m.ctrl.Cancel(m.session)
	switch {
	case err == nil:
		m.cancelled = true
		m.notice = "stopping..."
	case errors.Is(err, controller.ErrNoActiveRun):
		m.notice = "nothing to stop"
	default:
		m.notice = err.Error()
	}
}

func (m *Model) drain() {
	batch := m.drainer.Drain()
	if len(batch) == 0 {
		return
	}
	for _, line := range batch {
		m.lines = append(m.lines, strings.Split(fancy.LineText(line), "\n")...)
		if m.session != nil && line.Kind == logsink.KindStatus && line.SessionID == m.session.ID.String() && line.Status != nil {
			st := *line.Status
			m.status = &st
			m.notice = ""
		}
	}
	if over := len(m.lines) - m.maxLines; m.maxLines > 0 && over > 0 {
		m.lines = append(m.lines[:0:0], m.lines[over:]...)
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) View() string {
	state := m.ctrl.State()
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		fancy.RootStyle.Render(m.title),
		"  ",
		fancy.InfoStyle.Render(state),
	)

	var footer string
	switch {
	case m.status != nil:
		footer = fancy.StatusText(*m.status) + "  " + fancy.InfoStyle.Render("q quit")
	default:
		help := "s stop · ctrl+l clear · f follow · ↑/↓ scroll"
		if !m.follow {
			help = "s stop · ctrl+l clear · f follow (paused) · ↑/↓ scroll"
		}
		footer = fancy.InfoStyle.Render(help)
	}
	if m.notice != "" {
		footer += "  " + fancy.WarningStyle.Render(m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		fancy.BranchStyle.Render(strings.Repeat("─", max(m.viewport.Width, 1))),
		m.viewport.View(),
		footer,
	)
}

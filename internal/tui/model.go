// internal/tui/model.go

// Package tui renders a live launch session in the terminal: transcript,
// progress phases, the approval prompt, and the tool picker.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/tigerwatch/internal/session"
	"github.com/user/tigerwatch/internal/types"
)

// mode selects which surface has input focus.
type mode int

const (
	modeChat mode = iota
	modeTools
)

// updateMsg signals that the controller's derived state changed.
type updateMsg struct{}

// submittedMsg carries the result of a Submit started from the input line.
type submittedMsg struct {
	err error
}

// RedirectMsg is sent when the post-completion timer fires; the TUI prints
// the workspace location and quits.
type RedirectMsg struct {
	InvestigationID types.InvestigationID
}

// Model is the bubbletea model for one launch session.
type Model struct {
	ctrl *session.Controller

	input    textinput.Model
	view     viewport.Model
	spin     spinner.Model
	mode     mode
	cursor   int
	width    int
	height   int
	ready    bool
	notice   string
	redirect types.InvestigationID
}

// NewModel creates the TUI model for the given controller.
func NewModel(ctrl *session.Controller) Model {
	input := textinput.New()
	input.Placeholder = "Describe what to investigate…"
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		ctrl:  ctrl,
		input: input,
		spin:  spin,
	}
}

// Init starts the spinner and the controller-update listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForUpdate())
}

// waitForUpdate blocks on the controller's coalesced notification channel.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.ctrl.Updates()
		return updateMsg{}
	}
}

// submit runs one user turn off the UI loop.
func (m Model) submit(text string) tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: m.ctrl.Submit(context.Background(), text)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 7
		footerHeight := 3
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - headerHeight - footerHeight
		}
		m.view.SetContent(m.renderTranscript())
		return m, nil

	case updateMsg:
		m.view.SetContent(m.renderTranscript())
		m.view.GotoBottom()
		return m, m.waitForUpdate()

	case submittedMsg:
		switch {
		case errors.Is(msg.err, session.ErrBusy):
			m.notice = "A request is already in flight."
		case errors.Is(msg.err, session.ErrClosed):
			return m, tea.Quit
		default:
			m.notice = ""
		}
		m.view.SetContent(m.renderTranscript())
		m.view.GotoBottom()
		return m, nil

	case RedirectMsg:
		m.redirect = msg.InvestigationID
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The pending approval is the primary focus while present: it captures
	// decision keys, everything else keeps flowing underneath.
	if pending := m.ctrl.PendingApproval(); pending != nil {
		switch msg.String() {
		case "y", "Y":
			m.ctrl.ResolveApproval(context.Background(), true, "")
			return m, nil
		case "n", "N":
			m.ctrl.ResolveApproval(context.Background(), false, "rejected by user")
			return m, nil
		case "esc":
			m.ctrl.DismissApproval()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.mode == modeTools {
		return m.handleToolKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+t":
		m.mode = modeTools
		m.cursor = 0
		m.input.Blur()
		return m, nil
	case "enter":
		text := m.input.Value()
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleToolKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	catalog := m.ctrl.Tools().Catalog()
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+t":
		m.mode = modeChat
		m.input.Focus()
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(catalog)-1 {
			m.cursor++
		}
		return m, nil
	case " ", "space":
		if m.cursor < len(catalog) {
			m.ctrl.Tools().Toggle(catalog[m.cursor].Name)
		}
		return m, nil
	}
	return m, nil
}

// Redirect returns the investigation whose workspace should be opened after
// the program exits, or empty if the session ended without completion.
func (m Model) Redirect() types.InvestigationID {
	return m.redirect
}

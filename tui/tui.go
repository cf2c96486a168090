// Package tui is an interactive viewer for a document history. The user picks
// the base and head versions of the window and scrolls the annotated document.
package tui

import (
	"fmt"

	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
	"github.com/burntcarrot/histdiff/render"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the viewer on src and blocks until the user quits.
func Run(src Source) error {
	p := tea.NewProgram(New(src, DefaultStyles()), tea.WithAltScreen())
	return p.Start()
}

type (
	errMsg      error
	versionsMsg []history.Version
	viewMsg     struct {
		window render.Window
		lines  []commons.Line
	}
)

// header and footer rows around the viewport.
const chrome = 2

// Model is the bubbletea model of the viewer.
type Model struct {
	source   Source
	styles   Styles
	viewport viewport.Model

	versions   []history.Version
	base, head int

	window render.Window
	lines  []commons.Line

	err      error
	ready    bool
	Quitting bool
}

// New returns a viewer on src. The initial window spans every version.
func New(src Source, styles Styles) Model {
	return Model{source: src, styles: styles}
}

func (m Model) Init() tea.Cmd {
	return loadVersions(m.source)
}

func loadVersions(src Source) tea.Cmd {
	return func() tea.Msg {
		versions, err := src.Versions()
		if err != nil {
			return errMsg(err)
		}
		return versionsMsg(versions)
	}
}

func loadView(src Source, w render.Window) tea.Cmd {
	return func() tea.Msg {
		lines, err := src.View(w)
		if err != nil {
			return errMsg(err)
		}
		return viewMsg{window: w, lines: lines}
	}
}

// Window returns the window selected by the user.
func (m Model) Window() render.Window {
	if len(m.versions) == 0 {
		return render.Window{}
	}
	return render.Window{Base: m.versions[m.base], Head: m.versions[m.head]}
}

// Lines returns the lines currently shown.
func (m Model) Lines() []commons.Line {
	return m.lines
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.viewport.YPosition = 1
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
		m.viewport.SetContent(m.styles.content(m.lines, m.versions))

	case versionsMsg:
		m.versions = msg
		m.base, m.head = 0, max(len(msg)-1, 0)
		if len(msg) == 0 {
			return m, nil
		}
		return m, loadView(m.source, m.Window())

	case viewMsg:
		// A reply for a window the user already moved away from is dropped.
		if msg.window != m.Window() {
			return m, nil
		}
		m.err = nil
		m.window, m.lines = msg.window, msg.lines
		m.viewport.SetContent(m.styles.content(m.lines, m.versions))
		return m, nil

	// We handle errors just like any other message
	case errMsg:
		m.err = msg
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.Quitting = true
			return m, tea.Quit
		case "left", "h":
			return m.move(m.base, m.head-1)
		case "right", "l":
			return m.move(m.base, m.head+1)
		case ",":
			return m.move(m.base-1, m.head)
		case ".":
			return m.move(m.base+1, m.head)
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// move selects a new window, keeping base at or before head.
func (m Model) move(base, head int) (tea.Model, tea.Cmd) {
	if base < 0 || head >= len(m.versions) || base > head {
		return m, nil
	}
	m.base, m.head = base, head
	return m, loadView(m.source, m.Window())
}

func (m Model) header() string {
	if len(m.versions) == 0 {
		return "no versions"
	}
	return fmt.Sprintf("base %s → head %s (%d/%d)", m.versions[m.base], m.versions[m.head], m.head+1, len(m.versions))
}

func (m Model) footer() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v", m.err)
	}
	return "←/→ head  ,/. base  ↑/↓ scroll  q quit"
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}
	return fmt.Sprintf("%s\n%s\n%s", m.header(), m.viewport.View(), m.footer())
}

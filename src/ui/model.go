// Package ui renders a live view of every configured code, redrawn once a
// second, with a countdown bar and copy-to-clipboard.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	otpgen "github.com/aaravmaloo/otpgen/src"
	"github.com/aaravmaloo/otpgen/src/config"
)

const flashDuration = time.Second

// Options wires the view to its collaborators. Registry is required; the
// rest have usable zero values.
type Options struct {
	Registry *otpgen.Registry
	// Failures is the error returned by config.Build, listed under the codes.
	Failures error
	Clock    func() time.Time
	Copy     func(string) error
	// Reload rebuilds the registry when Changes fires. A nil registry keeps
	// the current one and shows the error.
	Reload  func() (*otpgen.Registry, error)
	Changes <-chan struct{}
	Title   string
}

type (
	tickMsg      time.Time
	flashDoneMsg struct{ seq int }
	reloadMsg    struct{}
)

// Model is the bubbletea model behind Run.
type Model struct {
	reg      *otpgen.Registry
	failures []*config.EntryError
	title    string

	clock   func() time.Time
	copy    func(string) error
	reload  func() (*otpgen.Registry, error)
	changes <-chan struct{}

	cursor   int
	copied   string
	flashSeq int
	status   string
	progress progress.Model
}

func New(opts Options) Model {
	m := Model{
		reg:      opts.Registry,
		failures: config.EntryErrors(opts.Failures),
		title:    opts.Title,
		clock:    opts.Clock,
		copy:     opts.Copy,
		reload:   opts.Reload,
		changes:  opts.Changes,
		progress: progress.New(
			progress.WithSolidFill(string(colorPrimary)),
			progress.WithoutPercentage(),
			progress.WithWidth(30),
		),
	}
	if m.title == "" {
		m.title = "Authentication Codes"
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.reg == nil {
		m.reg = otpgen.NewRegistry(otpgen.WithClock(m.clock))
	}
	m.reg.Refresh(m.clock())
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForChange(m.changes))
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return reloadMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.reg.Refresh(m.clock())
		return m, tick()

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.copied = ""
		}
		return m, nil

	case reloadMsg:
		m.applyReload()
		return m, waitForChange(m.changes)

	case tea.WindowSizeMsg:
		width := msg.Width - 12
		if width > 40 {
			width = 40
		}
		if width < 10 {
			width = 10
		}
		m.progress.Width = width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	names := m.reg.Names()

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(names)-1 {
			m.cursor++
		}
	case "r":
		m.applyReload()
	case "enter", "c", " ":
		if len(names) == 0 {
			return m, nil
		}
		return m.copySelected(names[m.cursor])
	}
	return m, nil
}

func (m Model) copySelected(name string) (tea.Model, tea.Cmd) {
	if m.copy == nil {
		m.status = "clipboard is disabled"
		return m, nil
	}
	code, err := m.reg.Get(name)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	if err := m.copy(code); err != nil {
		m.status = fmt.Sprintf("copy failed: %v", err)
		return m, nil
	}

	m.status = ""
	m.copied = name
	m.flashSeq++
	seq := m.flashSeq
	return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashDoneMsg{seq: seq}
	})
}

func (m *Model) applyReload() {
	if m.reload == nil {
		return
	}
	reg, err := m.reload()
	if reg == nil {
		if err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		}
		return
	}

	reg.Refresh(m.clock())
	m.reg = reg
	m.failures = config.EntryErrors(err)
	m.status = ""
	m.copied = ""
	if n := reg.Len(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	entries := m.reg.Entries()
	if len(entries) == 0 {
		b.WriteString(helpStyle.Render("  No TOTP entries configured."))
		b.WriteString("\n")
	}

	nameWidth := 0
	for _, e := range entries {
		nameWidth = max(nameWidth, len(e.Name))
	}

	for i, e := range entries {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}

		code := codeStyle.Render(e.Code)
		if e.Name == m.copied {
			code = copiedStyle.Render("Copied!")
		}

		line := fmt.Sprintf("%s%s  %s", marker, nameStyle.Render(padRight(e.Name, nameWidth)), code)
		if e.Engine.Step() != otpgen.DefaultStep {
			line += helpStyle.Render(fmt.Sprintf("  %ds", e.Remaining))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	now := m.clock()
	remaining := otpgen.DefaultStep - uint32(now.Unix()%int64(otpgen.DefaultStep))
	left := 1 - m.reg.WindowProgress(now, otpgen.DefaultStep)
	fmt.Fprintf(&b, "\n  %s %ds\n", m.progress.ViewAs(left), remaining)

	for _, f := range m.failures {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  ✗ " + f.Error()))
	}
	if len(m.failures) > 0 {
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  " + m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  ↑/↓ select • enter copy • r reload • q quit"))
	b.WriteString("\n")
	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Run shows the live view until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

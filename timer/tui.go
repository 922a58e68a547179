package timer

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/davecgh/go-spew/spew"
)

type keymap struct {
	togglePlay key.Binding
	complete   key.Binding
	cancel     key.Binding
	editStart  key.Binding
	switchSlot key.Binding
	toggleSub  key.Binding
	quit       key.Binding
}

var defaultKeymap = keymap{
	togglePlay: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p", "pause/resume"),
	),
	complete: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "complete"),
	),
	cancel: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "discard"),
	),
	editStart: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit start time"),
	),
	switchSlot: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch timer"),
	),
	toggleSub: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sub timer"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// tickMsg drives the once-a-second display refresh. Elapsed time is always
// derived from instants, so a missed or delayed tick only affects rendering.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the interactive tracking view over the main and sub stopwatch
// slots.
type Model struct {
	main *Stopwatch
	sub  *Stopwatch

	focused    string
	showSub    bool
	memoForm   *huh.Form
	memo       string
	startForm  *huh.Form
	startInput string
	help       help.Model
	debug      bool
	err        error

	onSubVisible func(visible bool)
}

const startTimeLayout = "2006-01-02 15:04"

// ModelOption adjusts a Model.
type ModelOption func(*Model)

// WithSub attaches the secondary stopwatch slot.
func WithSub(sub *Stopwatch) ModelOption {
	return func(m *Model) { m.sub = sub }
}

// WithDebug dumps every message to the log.
func WithDebug() ModelOption {
	return func(m *Model) { m.debug = true }
}

// WithSubVisible shows the sub timer from the start.
func WithSubVisible(visible bool) ModelOption {
	return func(m *Model) { m.showSub = visible }
}

// WithSubVisibleFunc is called whenever the sub timer is shown or hidden.
func WithSubVisibleFunc(fn func(visible bool)) ModelOption {
	return func(m *Model) { m.onSubVisible = fn }
}

func NewModel(main *Stopwatch, opts ...ModelOption) *Model {
	m := &Model{
		main:    main,
		focused: SlotMain,
		help:    help.New(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

// current returns the focused stopwatch.
func (m *Model) current() *Stopwatch {
	if m.focused == SlotSub && m.sub != nil {
		return m.sub
	}

	return m.main
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.debug {
		slog.Debug(spew.Sdump(msg))
	}

	if m.memoForm != nil {
		return m.updateMemoForm(msg)
	}

	if m.startForm != nil {
		return m.updateStartForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

		return m, nil
	}

	return m, nil
}

func (m *Model) updateMemoForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Batch(tea.ClearScreen, tea.Quit)
		case "esc":
			m.memoForm = nil
			return m, nil
		}
	}

	form, cmd := m.memoForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.memoForm = f

		if m.memoForm.State == huh.StateCompleted {
			sw := m.current()
			m.memoForm = nil

			sw.Complete(m.memo)
			m.memo = ""

			if m.focused == SlotSub {
				m.focused = SlotMain
			}
		}
	}

	return m, cmd
}

func (m *Model) updateStartForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Batch(tea.ClearScreen, tea.Quit)
		case "esc":
			m.startForm = nil
			m.err = nil

			return m, nil
		}
	}

	form, cmd := m.startForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.startForm = f

		if m.startForm.State == huh.StateCompleted {
			m.startForm = nil
			m.err = m.applyStartEdit()
		}
	}

	return m, cmd
}

// applyStartEdit parses the entered local time and moves the running
// measurement's start instant. Rejected edits leave the measurement
// untouched and surface the error in the view.
func (m *Model) applyStartEdit() error {
	parsed, err := time.ParseInLocation(startTimeLayout, m.startInput, time.Local)
	if err != nil {
		return err
	}

	return m.current().UpdateStartTime(parsed)
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.togglePlay):
		m.current().TogglePause()

		return m, nil

	case key.Matches(msg, defaultKeymap.editStart):
		sw := m.current()
		if !sw.Running() {
			return m, nil
		}

		m.startInput = sw.StartTime().Local().Format(startTimeLayout)
		m.startForm = m.newStartForm()

		return m, m.startForm.Init()

	case key.Matches(msg, defaultKeymap.complete):
		sw := m.current()
		if !sw.Running() && !sw.Paused() {
			return m, nil
		}

		m.memo = sw.Memo()
		m.memoForm = m.newMemoForm()

		return m, m.memoForm.Init()

	case key.Matches(msg, defaultKeymap.cancel):
		m.current().Cancel()

		if m.focused == SlotSub {
			m.focused = SlotMain
		}

		return m, nil

	case key.Matches(msg, defaultKeymap.switchSlot):
		if m.sub != nil && m.showSub {
			if m.focused == SlotMain {
				m.focused = SlotSub
			} else {
				m.focused = SlotMain
			}
		}

		return m, nil

	case key.Matches(msg, defaultKeymap.toggleSub):
		if m.sub != nil {
			m.showSub = !m.showSub

			if !m.showSub && m.focused == SlotSub {
				m.focused = SlotMain
			}

			if m.onSubVisible != nil {
				m.onSubVisible(m.showSub)
			}
		}

		return m, nil

	case key.Matches(msg, defaultKeymap.quit):
		m.shutdown()

		return m, tea.Batch(tea.ClearScreen, tea.Quit)
	}

	return m, nil
}

func (m *Model) newMemoForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Memo").
				Description("What did you work on?").
				Value(&m.memo),
		),
	)
}

func (m *Model) newStartForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start time").
				Description("Local time, e.g. 2024-05-01 09:30").
				Value(&m.startInput),
		),
	)
}

// shutdown persists both slots so the next run resumes seamlessly.
func (m *Model) shutdown() {
	m.main.Shutdown()

	if m.sub != nil {
		m.sub.Shutdown()
	}
}

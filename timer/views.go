package timer

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/kirokuapp/kiroku/internal/timeutil"
)

var (
	baseStyle = lipgloss.NewStyle().Padding(1, 2)

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	activityStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("36"))

	groupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	focusedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)

	blurredStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func (m *Model) slotView(sw *Stopwatch, focused bool) string {
	var s strings.Builder

	activity := sw.Activity()

	s.WriteString(activityStyle.Render(activity.Name))

	if activity.Group != "" {
		s.WriteString(groupStyle.Render(" · " + activity.Group))
	}

	s.WriteString("\n\n")

	switch {
	case sw.Paused():
		s.WriteString(clockStyle.Render(timeutil.FormatClock(sw.Elapsed())))
		s.WriteString(pausedStyle.Render("  [paused]"))
	case sw.Running():
		s.WriteString(clockStyle.Render(timeutil.FormatClock(sw.Elapsed())))
	default:
		s.WriteString(groupStyle.Render("idle"))
	}

	if memo := sw.Memo(); memo != "" {
		s.WriteString("\n" + groupStyle.Render(memo))
	}

	if focused {
		return focusedStyle.Render(s.String())
	}

	return blurredStyle.Render(s.String())
}

func (m *Model) helpView() string {
	bindings := []key.Binding{
		defaultKeymap.togglePlay,
		defaultKeymap.complete,
		defaultKeymap.editStart,
		defaultKeymap.cancel,
	}

	if m.sub != nil {
		bindings = append(
			bindings,
			defaultKeymap.toggleSub,
			defaultKeymap.switchSlot,
		)
	}

	bindings = append(bindings, defaultKeymap.quit)

	return m.help.ShortHelpView(bindings)
}

func (m *Model) View() string {
	if m.memoForm != nil {
		return baseStyle.Render(m.memoForm.View())
	}

	if m.startForm != nil {
		return baseStyle.Render(m.startForm.View())
	}

	var s strings.Builder

	s.WriteString(m.slotView(m.main, m.focused == SlotMain))

	if m.sub != nil && m.showSub {
		s.WriteString("\n")
		s.WriteString(m.slotView(m.sub, m.focused == SlotSub))
	}

	if m.err != nil {
		s.WriteString("\n" + errStyle.Render(m.err.Error()))
	}

	s.WriteString("\n\n" + m.helpView())

	return baseStyle.Render(s.String())
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/foldlab/foldpipe/internal/console"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/render"
	"github.com/foldlab/foldpipe/internal/theme"
)

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.styles

	var b strings.Builder
	b.WriteString(s.Title.Render("foldpipe"))
	b.WriteString("  ")
	b.WriteString(s.Dim.Render(m.icon + " " + string(m.theme)))
	b.WriteString("\n\n")

	for i, slot := range models.Slots {
		b.WriteString(m.slotView(i, slot))
		b.WriteString("\n")
	}

	b.WriteString(m.triggerView())
	b.WriteString("\n\n")

	if steps := m.regions[console.RegionSteps]; steps.Kind != render.KindEmpty {
		for i, line := range strings.Split(steps.Body, "\n") {
			fmt.Fprintf(&b, "%s %s\n", s.Dim.Render(fmt.Sprintf("Step %d:", i+3)), line)
		}
	}
	if status := m.regionView(console.RegionStatus); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	if out := m.regionView(console.RegionOutput); out != "" {
		b.WriteString("\n")
		b.WriteString(s.Box.Render(out))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) slotView(i int, slot models.Slot) string {
	s := m.styles
	sv := m.slots[i]

	box := s.Box
	if m.focus == i {
		box = s.Focused
	}
	label := s.Dim.Render(fmt.Sprintf("%s file (%s)", strings.ToUpper(slot.Category()), slot.Suffix()))

	line := statusStyle(s, sv.status).Render(sv.message)
	if sv.showBar {
		line = m.bar.ViewAs(sv.fraction) + " " + line
	}
	return label + "\n" + box.Render(sv.input.View()) + "\n" + line
}

func (m Model) triggerView() string {
	s := m.styles
	label := "[ " + m.triggerLabel + " ]"
	switch {
	case !m.triggerEnabled:
		label = s.Dim.Render(label)
	case m.focus == focusTrigger:
		label = s.Title.Render(label)
	}
	if m.triggerEnabled && m.runState.Terminal() {
		label += s.Dim.Render(fmt.Sprintf("  last run %s", m.lastElapsed.Round(time.Millisecond)))
	}
	return label
}

func (m Model) regionView(name string) string {
	c := m.regions[name]
	s := m.styles
	switch c.Kind {
	case render.KindProgress:
		return m.spinner.View() + " " + c.Body
	case render.KindMarkup:
		return render.TerminalMarkup(c.Body, s.Dim, s.Title)
	case render.KindText:
		if name == console.RegionStatus && (m.runState == models.RunFailed || m.runState == models.RunTimedOut) {
			return s.Error.Render(c.Body)
		}
		return c.Body
	}
	return ""
}

func statusStyle(s theme.Styles, status models.SlotStatus) lipgloss.Style {
	switch status {
	case models.SlotSuccess:
		return s.OK
	case models.SlotUploading:
		return s.Warn
	case models.SlotError, models.SlotInvalidType:
		return s.Error
	}
	return s.Dim
}

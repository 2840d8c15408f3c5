package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/foldlab/foldpipe/internal/events"
)

// busMsg carries one event from the controller's bus into Update.
type busMsg struct {
	event events.Event
}

// busClosedMsg is sent once the subscription channel is closed.
type busClosedMsg struct{}

// opDoneMsg reports the end of an upload or run command.
type opDoneMsg struct {
	op  string
	err error
}

// waitForEvent returns a Cmd that delivers the next bus event.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return busClosedMsg{}
		}
		return busMsg{event: ev}
	}
}

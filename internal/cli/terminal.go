package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/foldlab/foldpipe/internal/console"
	"github.com/foldlab/foldpipe/internal/constants"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/progress"
	"github.com/foldlab/foldpipe/internal/render"
	"github.com/foldlab/foldpipe/internal/theme"
	"github.com/foldlab/foldpipe/internal/upload"
)

// terminal implements the console bindings for one-shot commands. Region
// content is buffered while a run is active and printed when the trigger is
// re-enabled. A quiet terminal prints nothing.
type terminal struct {
	out   io.Writer
	quiet bool

	mu      sync.Mutex
	styles  theme.Styles
	regions map[string]render.Content
	spinner *progress.Spinner
}

func newTerminal(out io.Writer, quiet bool) *terminal {
	return &terminal{
		out:     out,
		quiet:   quiet,
		styles:  theme.StylesFor(models.ThemeLight),
		regions: map[string]render.Content{},
	}
}

func (t *terminal) bindings() console.Bindings {
	b := console.Bindings{
		Trigger:    termTrigger{t},
		Status:     termRegion{t, console.RegionStatus},
		Output:     termRegion{t, console.RegionOutput},
		Steps:      termRegion{t, console.RegionSteps},
		Indicator:  termIndicator{t},
		SlotStatus: map[models.Slot]upload.StatusLine{},
	}
	for _, s := range models.Slots {
		b.SlotStatus[s] = termSlot{t, s}
	}
	return b
}

type termTrigger struct{ t *terminal }

func (tr termTrigger) SetEnabled(enabled bool) {
	t := tr.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if !enabled {
		if !t.quiet && t.spinner == nil {
			t.spinner = progress.NewSpinner(os.Stderr, constants.TriggerLabelRunning)
		}
		return
	}
	if t.spinner != nil {
		t.spinner.Stop()
		t.spinner = nil
	}
	t.flushLocked()
}

func (tr termTrigger) SetLabel(string) {}

type termRegion struct {
	t    *terminal
	name string
}

func (r termRegion) SetContent(c render.Content) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	r.t.regions[r.name] = c
}

type termSlot struct {
	t    *terminal
	slot models.Slot
}

func (s termSlot) SetStatus(status models.SlotStatus, message string) {
	t := s.t
	if t.quiet || message == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	style := t.styles.Dim
	switch status {
	case models.SlotSuccess:
		style = t.styles.OK
	case models.SlotError, models.SlotInvalidType:
		style = t.styles.Error
	}
	fmt.Fprintf(t.out, "%-4s %s\n", s.slot.Category(), style.Render(message))
}

type termIndicator struct{ t *terminal }

func (i termIndicator) ShowTheme(th models.Theme, _ string) {
	i.t.mu.Lock()
	defer i.t.mu.Unlock()
	i.t.styles = theme.StylesFor(th)
}

// flushLocked prints the buffered steps, output and status of a finished run.
func (t *terminal) flushLocked() {
	if t.quiet {
		return
	}
	s := t.styles

	if steps := t.regions[console.RegionSteps]; steps.Kind == render.KindText {
		for i, line := range strings.Split(steps.Body, "\n") {
			fmt.Fprintf(t.out, "%s %s\n", s.Dim.Render(fmt.Sprintf("Step %d:", i+3)), line)
		}
	}

	status := t.regions[console.RegionStatus]
	output := t.regions[console.RegionOutput]
	switch output.Kind {
	case render.KindMarkup:
		fmt.Fprintln(t.out, render.TerminalMarkup(output.Body, s.Dim, s.Title))
		if status.Kind == render.KindText {
			fmt.Fprintln(t.out, s.OK.Render(status.Body))
		}
	case render.KindText:
		if status.Kind == render.KindText && !strings.HasPrefix(output.Body, status.Body) {
			fmt.Fprintln(t.out, s.Error.Render(status.Body))
		}
		fmt.Fprintln(t.out, s.Error.Render(output.Body))
	}
}

// Package tui is the interactive terminal front end: two file slots, the
// run trigger, and the step, status and output regions.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/foldlab/foldpipe/internal/console"
	"github.com/foldlab/foldpipe/internal/events"
	"github.com/foldlab/foldpipe/internal/logging"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/pipeline"
	"github.com/foldlab/foldpipe/internal/render"
	"github.com/foldlab/foldpipe/internal/theme"
	"github.com/foldlab/foldpipe/internal/upload"
)

// focusTrigger is the focus index of the run trigger, after the slots.
var focusTrigger = len(models.Slots)

type slotView struct {
	input    textinput.Model
	status   models.SlotStatus
	message  string
	fraction float64
	showBar  bool
}

// Model is the bubbletea model of the terminal UI.
type Model struct {
	ctx    context.Context
	ctrl   *console.Controller
	events <-chan events.Event
	logger *logging.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	bar     progress.Model

	slots   []slotView
	focus   int
	regions map[string]render.Content

	triggerEnabled bool
	triggerLabel   string
	runState       models.RunState
	lastElapsed    time.Duration // duration of the last finished run

	theme  models.Theme
	icon   string
	styles theme.Styles

	width    int
	quitting bool
}

// NewModel builds the model over ctrl. It subscribes to the controller's bus;
// the subscription ends when the bus is closed.
func NewModel(ctx context.Context, ctrl *console.Controller, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.Nop()
	}
	snap := ctrl.Snapshot()

	slots := make([]slotView, len(models.Slots))
	for i, s := range models.Slots {
		in := textinput.New()
		in.Placeholder = "path/to/file" + s.Suffix()
		in.Prompt = "› "
		in.CharLimit = 4096
		slots[i] = slotView{
			input:   in,
			status:  snap.Slots[i].Status,
			message: snap.Slots[i].Message,
		}
	}
	slots[0].input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:            ctx,
		ctrl:           ctrl,
		events:         ctrl.Bus().SubscribeAll(),
		logger:         logger.Component("tui"),
		keys:           defaultKeys(),
		help:           help.New(),
		spinner:        sp,
		bar:            progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		slots:          slots,
		regions:        snap.Regions,
		triggerEnabled: snap.TriggerEnabled,
		triggerLabel:   snap.TriggerLabel,
		runState:       snap.Run.State,
		theme:          snap.Theme,
		icon:           snap.Theme.Icon(),
		styles:         theme.StylesFor(snap.Theme),
	}
	m.bar.Width = 30
	return m
}

// Init starts the spinner and the bus subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

// Update handles key presses, bus events and command results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case busMsg:
		m.apply(msg.event)
		return m, waitForEvent(m.events)

	case busClosedMsg:
		return m, nil

	case opDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, pipeline.ErrRunInProgress) {
			m.logger.Debug().Str("op", msg.op).Err(msg.err).Msg("operation finished with error")
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Theme):
		// the theme event arrives through the bus
		m.ctrl.ToggleTheme()
		return m, nil

	case key.Matches(msg, m.keys.Run):
		return m, m.runCmd()

	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focus + 1) % (focusTrigger + 1)), nil

	case key.Matches(msg, m.keys.Prev):
		return m.setFocus((m.focus + focusTrigger) % (focusTrigger + 1)), nil

	case key.Matches(msg, m.keys.Clear):
		if m.focus < focusTrigger {
			m.slots[m.focus].input.SetValue("")
			return m, m.selectCmd(models.Slots[m.focus], "")
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.focus == focusTrigger {
			return m, m.runCmd()
		}
		path := strings.TrimSpace(m.slots[m.focus].input.Value())
		return m, m.selectCmd(models.Slots[m.focus], path)
	}

	return m.updateFocusedInput(msg)
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus >= focusTrigger {
		return m, nil
	}
	var cmd tea.Cmd
	m.slots[m.focus].input, cmd = m.slots[m.focus].input.Update(msg)
	return m, cmd
}

func (m Model) setFocus(i int) Model {
	m.focus = i
	for j := range m.slots {
		if j == i {
			m.slots[j].input.Focus()
		} else {
			m.slots[j].input.Blur()
		}
	}
	return m
}

// runCmd starts a run unless the trigger is disabled.
func (m Model) runCmd() tea.Cmd {
	if !m.triggerEnabled {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.RunPipeline(ctx)
		return opDoneMsg{op: "run", err: err}
	}
}

// selectCmd submits path for slot; an empty path clears the slot.
func (m Model) selectCmd(slot models.Slot, path string) tea.Cmd {
	var file *upload.File
	if path != "" {
		file = upload.LocalFile(path)
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.SelectFile(ctx, slot, file)
		return opDoneMsg{op: "upload " + slot.String(), err: err}
	}
}

// apply folds one bus event into the model.
func (m *Model) apply(ev events.Event) {
	switch e := ev.(type) {
	case *events.SlotStatusEvent:
		sv := &m.slots[e.Slot]
		sv.status = e.Status
		sv.message = e.Message
		if e.Status == models.SlotUploading {
			sv.fraction, sv.showBar = 0, true
		} else {
			sv.showBar = false
		}

	case *events.SlotClearEvent:
		m.slots[e.Slot].input.SetValue("")

	case *events.ProgressEvent:
		m.slots[e.Slot].fraction = e.Fraction()

	case *events.RegionEvent:
		m.regions[e.Region] = render.Content{Kind: render.Kind(e.Kind), Body: e.Body}

	case *events.TriggerEvent:
		m.triggerEnabled = e.Enabled
		m.triggerLabel = e.Label

	case *events.RunStateEvent:
		m.runState = e.Run.State
		if e.Run.State.Terminal() {
			m.lastElapsed = e.Run.Duration()
			m.logger.Info().Str("run", e.Run.ID).Str("state", string(e.Run.State)).Dur("elapsed", m.lastElapsed).Msg("run finished")
		}

	case *events.ThemeEvent:
		m.theme = e.Theme
		m.icon = e.Icon
		m.styles = theme.StylesFor(e.Theme)
	}
}

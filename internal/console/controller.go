// Package console holds the UI state of a foldpipe session and drives the
// theme store, upload validator and pipeline client against injected
// front-end bindings.
package console

import (
	"context"
	"sync"

	"github.com/foldlab/foldpipe/internal/constants"
	"github.com/foldlab/foldpipe/internal/events"
	"github.com/foldlab/foldpipe/internal/logging"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/pipeline"
	"github.com/foldlab/foldpipe/internal/render"
	"github.com/foldlab/foldpipe/internal/theme"
	"github.com/foldlab/foldpipe/internal/upload"
)

// Region names, as published in events.RegionEvent.
const (
	RegionStatus = "status"
	RegionOutput = "output"
	RegionSteps  = "steps"
)

// UiState is the complete state of a session.
type UiState struct {
	Theme          models.Theme
	Slots          []models.UploadSlot // in models.Slots order
	Run            models.PipelineRun // last snapshot of the pipeline client
	TriggerEnabled bool
	TriggerLabel   string
	Regions        map[string]render.Content
}

// Options are the collaborators of a Controller.
type Options struct {
	Uploader   upload.Uploader
	Poster     pipeline.Poster
	Persister  theme.Persister // nil disables persistence
	DarkSignal func() bool     // nil means no platform signal
	Reporter   upload.ReporterFunc
	Bus        *events.EventBus // nil gets a private bus
	Logger     *logging.Logger
	Pipeline   []pipeline.Option
}

// Controller owns the UiState of one session.
type Controller struct {
	bus       *events.EventBus
	logger    *logging.Logger
	theme     *theme.Store
	validator *upload.Validator
	pipeline  *pipeline.Client

	mu    sync.Mutex
	state UiState
}

// New builds a controller. The theme is resolved and shown before New
// returns.
func New(opts Options, b Bindings) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewEventBus(0)
	}

	c := &Controller{
		bus:    bus,
		logger: logger,
		state: UiState{
			TriggerEnabled: true,
			TriggerLabel:   constants.TriggerLabelIdle,
			Regions: map[string]render.Content{
				RegionStatus: render.Empty,
				RegionOutput: render.Empty,
				RegionSteps:  render.Empty,
			},
		},
	}

	c.validator = upload.NewValidator(opts.Uploader, logger)
	c.validator.SetReporter(opts.Reporter)
	for _, s := range models.Slots {
		c.validator.Bind(s,
			&slotStatusBinding{c: c, slot: s, inner: b.SlotStatus[s]},
			&slotInputBinding{c: c, slot: s, inner: b.SlotInput[s]},
		)
	}

	renderer := render.New(render.Regions{
		Status: &regionBinding{c: c, name: RegionStatus, inner: b.Status},
		Output: &regionBinding{c: c, name: RegionOutput, inner: b.Output},
		Steps:  &regionBinding{c: c, name: RegionSteps, inner: b.Steps},
	})
	c.pipeline = pipeline.NewClient(
		opts.Poster,
		&triggerBinding{c: c, inner: b.Trigger},
		&runRenderer{c: c, renderer: renderer},
		logger,
		opts.Pipeline...,
	)

	c.theme = theme.NewStore(opts.Persister, opts.DarkSignal, &indicatorBinding{c: c, inner: b.Indicator}, logger)
	return c
}

// Bus returns the event bus every state change is published on.
func (c *Controller) Bus() *events.EventBus {
	return c.bus
}

// SelectFile handles a file selection for slot; file is nil when the
// selection was cleared. See upload.Validator.Select.
func (c *Controller) SelectFile(ctx context.Context, slot models.Slot, file *upload.File) (models.UploadSlot, error) {
	return c.validator.Select(ctx, slot, file)
}

// RunPipeline starts a run. It returns pipeline.ErrRunInProgress when one
// is already active.
func (c *Controller) RunPipeline(ctx context.Context) (models.PipelineRun, error) {
	return c.pipeline.Run(ctx)
}

// Running reports whether a pipeline run is active.
func (c *Controller) Running() bool {
	return c.pipeline.Running()
}

// ToggleTheme switches the theme and returns the new one.
func (c *Controller) ToggleTheme() models.Theme {
	return c.theme.Toggle()
}

// SetTheme activates t.
func (c *Controller) SetTheme(t models.Theme) {
	c.theme.Set(t)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() UiState {
	c.mu.Lock()
	s := c.state
	s.Regions = make(map[string]render.Content, len(c.state.Regions))
	for k, v := range c.state.Regions {
		s.Regions[k] = v
	}
	c.mu.Unlock()

	s.Run = c.pipeline.Last()
	s.Slots = make([]models.UploadSlot, 0, len(models.Slots))
	for _, slot := range models.Slots {
		s.Slots = append(s.Slots, c.validator.Slot(slot))
	}
	return s
}

// Package pipeline runs the server-side pipeline: one request at a time,
// under a fixed deadline, with the response classified into a run snapshot.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/foldlab/foldpipe/internal/api"
	"github.com/foldlab/foldpipe/internal/constants"
	"github.com/foldlab/foldpipe/internal/logging"
	"github.com/foldlab/foldpipe/internal/models"
)

// ErrRunInProgress is returned by Run while another run is active.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Poster issues the pipeline request. *api.Client implements it.
type Poster interface {
	PostPipeline(ctx context.Context) (*api.Response, error)
}

// Trigger is the control that starts a run.
type Trigger interface {
	SetEnabled(enabled bool)
	SetLabel(label string)
}

// Renderer displays a run snapshot.
type Renderer interface {
	Render(run models.PipelineRun)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the run deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client runs the pipeline. At most one run is active at a time.
type Client struct {
	poster   Poster
	trigger  Trigger
	renderer Renderer
	logger   *logging.Logger
	timeout  time.Duration
	now      func() time.Time

	running atomic.Bool

	mu   sync.Mutex
	last models.PipelineRun
}

// NewClient creates a pipeline client. trigger and renderer may be nil.
func NewClient(poster Poster, trigger Trigger, renderer Renderer, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Client{
		poster:   poster,
		trigger:  trigger,
		renderer: renderer,
		logger:   logger.Component("pipeline"),
		timeout:  constants.PipelineTimeout,
		now:      time.Now,
		last:     models.PipelineRun{State: models.RunIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Running reports whether a run is active.
func (c *Client) Running() bool {
	return c.running.Load()
}

// Last returns the most recent run snapshot.
func (c *Client) Last() models.PipelineRun {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Run performs one pipeline run and returns its terminal snapshot. A run
// that fails is not an error; its snapshot carries the failure. Run returns
// ErrRunInProgress, without touching any state, when a run is active.
func (c *Client) Run(ctx context.Context) (models.PipelineRun, error) {
	if !c.running.CompareAndSwap(false, true) {
		return models.PipelineRun{}, ErrRunInProgress
	}
	c.setTrigger(false, constants.TriggerLabelRunning)
	defer func() {
		// the guard is released before the trigger comes back so an
		// enabled trigger always accepts the next run
		c.running.Store(false)
		c.setTrigger(true, constants.TriggerLabelIdle)
	}()

	run := models.PipelineRun{
		ID:        uuid.NewString(),
		State:     models.RunRunning,
		StartedAt: c.now(),
	}
	c.publish(run)
	c.logger.Info().Str("run", run.ID).Msg("pipeline run started")

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.poster.PostPipeline(runCtx)
	if err == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		// a response that raced the deadline is discarded
		resp, err = nil, &api.Error{Kind: models.KindTimeout, Message: "request timed out", Err: runCtx.Err()}
	}
	cancel()

	outcome := Classify(resp, err)
	run = outcome.Apply(run, c.now())
	c.publish(run)

	ev := c.logger.Info()
	if !outcome.OK() {
		ev = c.logger.Warn().Str("kind", outcome.Kind.String()).Str("error", outcome.Message)
	}
	ev.Str("run", run.ID).Str("state", string(run.State)).Dur("elapsed", run.Duration()).Msg("pipeline run finished")

	return run, nil
}

func (c *Client) publish(run models.PipelineRun) {
	c.mu.Lock()
	c.last = run
	c.mu.Unlock()
	if c.renderer != nil {
		c.renderer.Render(run)
	}
}

func (c *Client) setTrigger(enabled bool, label string) {
	if c.trigger == nil {
		return
	}
	// label first so the control never shows enabled with the running label
	if enabled {
		c.trigger.SetLabel(label)
		c.trigger.SetEnabled(true)
		return
	}
	c.trigger.SetEnabled(false)
	c.trigger.SetLabel(label)
}

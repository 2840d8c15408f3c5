// Package progress provides a unified interface for upload progress
// reporting across CLI (progress bars) and TUI (event bus) modes, plus the
// indeterminate spinner shown while a pipeline run is in flight.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/foldlab/foldpipe/internal/events"
	"github.com/foldlab/foldpipe/internal/models"
)

// Reporter is the interface for reporting progress in both CLI and TUI modes.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// CLIProgress implements progress reporting for CLI mode using progress bars.
type CLIProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a CLI progress reporter drawing to out.
func NewCLIProgress(out io.Writer) *CLIProgress {
	return &CLIProgress{out: out}
}

// Start initializes the progress bar with total size and description.
func (p *CLIProgress) Start(total int64, description string) {
	out := p.out
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update moves the bar to the current position.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error abandons the bar. The caller reports the error itself.
func (p *CLIProgress) Error(err error) {
	if p.bar != nil && err != nil {
		_ = p.bar.Exit()
		fmt.Fprint(p.out, "\n")
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// EventProgress publishes upload progress for one slot on the event bus.
type EventProgress struct {
	eventBus *events.EventBus
	slot     models.Slot

	mu      sync.Mutex
	stage   string
	total   int64
	current int64
}

// NewEventProgress creates a reporter for slot.
func NewEventProgress(eventBus *events.EventBus, slot models.Slot) *EventProgress {
	return &EventProgress{eventBus: eventBus, slot: slot}
}

// Start initializes progress tracking.
func (p *EventProgress) Start(total int64, description string) {
	p.mu.Lock()
	p.total, p.current, p.stage = total, 0, description
	p.mu.Unlock()
	p.eventBus.PublishProgress(p.slot, description, 0, total)
}

// Update publishes the current byte count.
func (p *EventProgress) Update(current int64) {
	p.mu.Lock()
	p.current = current
	stage, total := p.stage, p.total
	p.mu.Unlock()
	p.eventBus.PublishProgress(p.slot, stage, current, total)
}

// Finish publishes completion.
func (p *EventProgress) Finish() {
	p.mu.Lock()
	stage, total := p.stage, p.total
	p.mu.Unlock()
	p.eventBus.PublishProgress(p.slot, stage, total, total)
}

// Error does nothing; the slot status carries the failure.
func (p *EventProgress) Error(err error) {}

// SetDescription updates the stage description.
func (p *EventProgress) SetDescription(desc string) {
	p.mu.Lock()
	p.stage = desc
	current, total := p.current, p.total
	p.mu.Unlock()
	p.eventBus.PublishProgress(p.slot, desc, current, total)
}

// NoOpProgress is a progress reporter that does nothing.
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

func (p *NoOpProgress) Start(total int64, description string) {}
func (p *NoOpProgress) Update(current int64)                  {}
func (p *NoOpProgress) Finish()                               {}
func (p *NoOpProgress) Error(err error)                       {}
func (p *NoOpProgress) SetDescription(desc string)            {}

// ProgressReader wraps an io.Reader to report progress.
type ProgressReader struct {
	reader   io.Reader
	reporter Reporter
	current  int64
}

// NewProgressReader creates a new progress-reporting reader.
func NewProgressReader(reader io.Reader, reporter Reporter) *ProgressReader {
	return &ProgressReader{
		reader:   reader,
		reporter: reporter,
	}
}

// Read implements io.Reader interface with progress reporting.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.current += int64(n)
		pr.reporter.Update(pr.current)
	}
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (pr *ProgressReader) BytesRead() int64 {
	return pr.current
}

package console

import (
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/pipeline"
	"github.com/foldlab/foldpipe/internal/render"
	"github.com/foldlab/foldpipe/internal/theme"
	"github.com/foldlab/foldpipe/internal/upload"
)

// Bindings are the front-end elements the controller drives. Every field is
// optional; the event bus sees all changes regardless.
type Bindings struct {
	Trigger   pipeline.Trigger
	Status    render.Region
	Output    render.Region
	Steps     render.Region
	Indicator theme.Indicator

	SlotStatus map[models.Slot]upload.StatusLine
	SlotInput  map[models.Slot]upload.Input
}

// The wrappers below forward to the injected binding, record the change in
// UiState and publish it on the bus.

type triggerBinding struct {
	c     *Controller
	inner pipeline.Trigger
}

func (b *triggerBinding) SetEnabled(enabled bool) {
	b.c.mu.Lock()
	b.c.state.TriggerEnabled = enabled
	label := b.c.state.TriggerLabel
	b.c.mu.Unlock()

	if b.inner != nil {
		b.inner.SetEnabled(enabled)
	}
	b.c.bus.PublishTrigger(enabled, label)
}

func (b *triggerBinding) SetLabel(label string) {
	b.c.mu.Lock()
	b.c.state.TriggerLabel = label
	enabled := b.c.state.TriggerEnabled
	b.c.mu.Unlock()

	if b.inner != nil {
		b.inner.SetLabel(label)
	}
	b.c.bus.PublishTrigger(enabled, label)
}

type regionBinding struct {
	c     *Controller
	name  string
	inner render.Region
}

func (b *regionBinding) SetContent(content render.Content) {
	b.c.mu.Lock()
	b.c.state.Regions[b.name] = content
	b.c.mu.Unlock()

	if b.inner != nil {
		b.inner.SetContent(content)
	}
	b.c.bus.PublishRegion(b.name, string(content.Kind), content.Body)
}

type slotStatusBinding struct {
	c     *Controller
	slot  models.Slot
	inner upload.StatusLine
}

func (b *slotStatusBinding) SetStatus(status models.SlotStatus, message string) {
	if b.inner != nil {
		b.inner.SetStatus(status, message)
	}
	b.c.bus.PublishSlotStatus(b.slot, status, message)
}

type slotInputBinding struct {
	c     *Controller
	slot  models.Slot
	inner upload.Input
}

func (b *slotInputBinding) Clear() {
	if b.inner != nil {
		b.inner.Clear()
	}
	b.c.bus.PublishSlotClear(b.slot)
}

type indicatorBinding struct {
	c     *Controller
	inner theme.Indicator
}

func (b *indicatorBinding) ShowTheme(t models.Theme, icon string) {
	b.c.mu.Lock()
	b.c.state.Theme = t
	b.c.mu.Unlock()

	if b.inner != nil {
		b.inner.ShowTheme(t, icon)
	}
	b.c.bus.PublishTheme(t, icon)
}

// runRenderer publishes each snapshot before handing it to the renderer.
type runRenderer struct {
	c        *Controller
	renderer *render.Renderer
}

func (r *runRenderer) Render(run models.PipelineRun) {
	r.c.bus.PublishRunState(run)
	r.renderer.Render(run)
}

var (
	_ pipeline.Trigger  = (*triggerBinding)(nil)
	_ render.Region     = (*regionBinding)(nil)
	_ upload.StatusLine = (*slotStatusBinding)(nil)
	_ upload.Input      = (*slotInputBinding)(nil)
	_ theme.Indicator   = (*indicatorBinding)(nil)
	_ pipeline.Renderer = (*runRenderer)(nil)
)

// Package render maps pipeline run snapshots to the content of the three
// display regions.
package render

import (
	"fmt"
	"strings"

	"github.com/foldlab/foldpipe/internal/constants"
	"github.com/foldlab/foldpipe/internal/models"
)

// Kind says how a region should present its body.
type Kind string

const (
	KindEmpty    Kind = "empty"
	KindText     Kind = "text"
	KindMarkup   Kind = "markup"   // trusted server markup, displayed as-is
	KindProgress Kind = "progress" // indeterminate activity indicator
)

// Content is the full content of a region.
type Content struct {
	Kind Kind
	Body string
}

// Empty is the content of a cleared region.
var Empty = Content{Kind: KindEmpty}

// Region is a display area. SetContent replaces whatever it showed before.
type Region interface {
	SetContent(c Content)
}

// Regions are the display areas a run is rendered into.
type Regions struct {
	Status Region // step/summary line
	Output Region // final output
	Steps  Region // intermediate step results
}

// View is the content of every region for one snapshot.
type View struct {
	Status Content
	Output Content
	Steps  Content
}

const (
	stepRunning = "Processing..."
	step3Done   = "Step 3 completed"
	step4Done   = "Step 4 completed"
)

// ViewOf computes the region content for run. It depends on nothing but run.
func ViewOf(run models.PipelineRun) View {
	switch run.State {
	case models.RunRunning:
		return View{
			Status: Content{Kind: KindProgress, Body: constants.TriggerLabelRunning},
			Output: Content{Kind: KindProgress, Body: constants.TriggerLabelRunning},
			Steps:  Content{Kind: KindText, Body: stepRunning + "\n" + stepRunning},
		}

	case models.RunSucceeded:
		return View{
			Status: Content{Kind: KindText, Body: Summary(run)},
			Output: Content{Kind: KindMarkup, Body: run.Result},
			Steps:  Content{Kind: KindText, Body: step(run.Steps, 0, step3Done) + "\n" + step(run.Steps, 1, step4Done)},
		}

	case models.RunTimedOut:
		return View{
			Status: Content{Kind: KindText, Body: constants.TimeoutMessage},
			Output: Content{Kind: KindText, Body: constants.TimeoutMessage},
			Steps:  Empty,
		}

	case models.RunFailed:
		msg := "Pipeline failed"
		detail := ""
		if run.Error != nil {
			msg = run.Error.Message
			detail = run.Error.Detail
		}
		output := msg
		if detail != "" {
			output = msg + "\n" + detail
		}
		return View{
			Status: Content{Kind: KindText, Body: msg},
			Output: Content{Kind: KindText, Body: output},
			Steps:  Empty,
		}
	}

	return View{Status: Empty, Output: Empty, Steps: Empty}
}

// Summary is the status line of a successful run.
func Summary(run models.PipelineRun) string {
	var b strings.Builder
	if run.RowCount != nil {
		fmt.Fprintf(&b, "Successfully processed %d rows", *run.RowCount)
	} else {
		b.WriteString("Pipeline completed")
	}
	if !run.FinishedAt.IsZero() {
		b.WriteString(" at ")
		b.WriteString(run.FinishedAt.Format(constants.SummaryTimeFormat))
	}
	return b.String()
}

func step(steps []string, i int, fallback string) string {
	if i < len(steps) && steps[i] != "" {
		return steps[i]
	}
	return fallback
}

// Renderer writes snapshots into bound regions.
type Renderer struct {
	regions Regions
}

// New creates a renderer over regions. Nil regions are skipped.
func New(regions Regions) *Renderer {
	return &Renderer{regions: regions}
}

// Render replaces the content of every region with the view of run.
func (r *Renderer) Render(run models.PipelineRun) {
	v := ViewOf(run)
	set(r.regions.Status, v.Status)
	set(r.regions.Output, v.Output)
	set(r.regions.Steps, v.Steps)
}

func set(region Region, c Content) {
	if region != nil {
		region.SetContent(c)
	}
}

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldlab/foldpipe/internal/models"
)

type regionRecorder struct {
	sets    int
	content Content
}

func (r *regionRecorder) SetContent(c Content) {
	r.sets++
	r.content = c
}

func intp(n int) *int { return &n }

func TestViewOf(t *testing.T) {
	finished := time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC)

	tests := []struct {
		name   string
		run    models.PipelineRun
		status Content
		output Content
		steps  Content
	}{
		{
			name:   "idle clears everything",
			run:    models.PipelineRun{State: models.RunIdle},
			status: Empty, output: Empty, steps: Empty,
		},
		{
			name:   "running",
			run:    models.PipelineRun{State: models.RunRunning},
			status: Content{KindProgress, "Processing..."},
			output: Content{KindProgress, "Processing..."},
			steps:  Content{KindText, "Processing...\nProcessing..."},
		},
		{
			name: "succeeded with row count",
			run: models.PipelineRun{
				State: models.RunSucceeded, FinishedAt: finished,
				Result: "<table>...</table>", RowCount: intp(12),
			},
			status: Content{KindText, "Successfully processed 12 rows at 14:03:09"},
			output: Content{KindMarkup, "<table>...</table>"},
			steps:  Content{KindText, "Step 3 completed\nStep 4 completed"},
		},
		{
			name: "succeeded without row count",
			run: models.PipelineRun{
				State: models.RunSucceeded, FinishedAt: finished,
				Result: "ok", Steps: []string{"", "dot file parsed"},
			},
			status: Content{KindText, "Pipeline completed at 14:03:09"},
			output: Content{KindMarkup, "ok"},
			steps:  Content{KindText, "Step 3 completed\ndot file parsed"},
		},
		{
			name: "failed",
			run: models.PipelineRun{
				State: models.RunFailed,
				Error: &models.RunError{Kind: models.KindServer, Message: "Server error: 500 - internal error"},
			},
			status: Content{KindText, "Server error: 500 - internal error"},
			output: Content{KindText, "Server error: 500 - internal error"},
			steps:  Empty,
		},
		{
			name: "failed with detail",
			run: models.PipelineRun{
				State: models.RunFailed,
				Error: &models.RunError{Kind: models.KindServer, Message: "bad input", Detail: "line 3"},
			},
			status: Content{KindText, "bad input"},
			output: Content{KindText, "bad input\nline 3"},
			steps:  Empty,
		},
		{
			name: "timed out uses the fixed message",
			run: models.PipelineRun{
				State: models.RunTimedOut,
				Error: &models.RunError{Kind: models.KindTimeout, Message: "context deadline exceeded"},
			},
			status: Content{KindText, "request timed out after 30s — retry with a smaller input"},
			output: Content{KindText, "request timed out after 30s — retry with a smaller input"},
			steps:  Empty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ViewOf(tt.run)
			assert.Equal(t, tt.status, v.Status)
			assert.Equal(t, tt.output, v.Output)
			assert.Equal(t, tt.steps, v.Steps)
		})
	}
}

func TestRenderReplacesContent(t *testing.T) {
	status, output, steps := &regionRecorder{}, &regionRecorder{}, &regionRecorder{}
	r := New(Regions{Status: status, Output: output, Steps: steps})

	run := models.PipelineRun{State: models.RunSucceeded, Result: "<b>x</b>", RowCount: intp(1)}
	r.Render(run)
	first := []Content{status.content, output.content, steps.content}
	r.Render(run)

	assert.Equal(t, first, []Content{status.content, output.content, steps.content}, "re-rendering is idempotent")
	assert.Equal(t, 2, status.sets)

	r.Render(models.PipelineRun{State: models.RunIdle})
	assert.Equal(t, Empty, output.content)
}

func TestRenderSkipsNilRegions(t *testing.T) {
	output := &regionRecorder{}
	New(Regions{Output: output}).Render(models.PipelineRun{State: models.RunRunning})
	assert.Equal(t, KindProgress, output.content.Kind)
}

func TestExtractTable(t *testing.T) {
	markup := `<p>Results</p>
<table class="data">
  <thead><tr><th>Base</th><th>Pair</th></tr></thead>
  <tbody>
    <tr><td>G</td><td> 12 </td></tr>
    <tr><td>C</td><td>-</td></tr>
  </tbody>
</table>
<table><tr><td>ignored</td></tr></table>`

	rows, ok := ExtractTable(markup)
	require.True(t, ok)
	assert.Equal(t, [][]string{{"Base", "Pair"}, {"G", "12"}, {"C", "-"}}, rows)

	_, ok = ExtractTable("<pre>no table here</pre>")
	assert.False(t, ok)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "line one\nline two", PlainText("<div>line one</div><div>line two</div>"))
	assert.Equal(t, "plain", PlainText("plain"))
}

func TestTerminalMarkup(t *testing.T) {
	plain := lipgloss.NewStyle()
	out := TerminalMarkup("<table><tr><th>a</th><th>b</th></tr><tr><td>1</td></tr></table>", plain, plain)
	assert.True(t, strings.Contains(out, "a") && strings.Contains(out, "1"), out)

	assert.Equal(t, "hello", TerminalMarkup("<p>hello</p>", plain, plain))
}

package pipeline

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldlab/foldpipe/internal/api"
	"github.com/foldlab/foldpipe/internal/models"
)

type triggerRecorder struct {
	mu      sync.Mutex
	enabled []bool
	labels  []string
}

func (r *triggerRecorder) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = append(r.enabled, enabled)
}

func (r *triggerRecorder) SetLabel(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, label)
}

type renderRecorder struct {
	mu   sync.Mutex
	runs []models.PipelineRun
}

func (r *renderRecorder) Render(run models.PipelineRun) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
}

func (r *renderRecorder) states() []models.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RunState
	for _, run := range r.runs {
		out = append(out, run.State)
	}
	return out
}

func newTestClient(t *testing.T, handler nethttp.HandlerFunc, opts ...Option) (*Client, *triggerRecorder, *renderRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	trig := &triggerRecorder{}
	rend := &renderRecorder{}
	c := NewClient(api.NewClientWithHTTP(srv.URL, srv.Client(), nil), trig, rend, nil, opts...)
	return c, trig, rend
}

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRunSuccess(t *testing.T) {
	var gotBody, gotAccept string
	c, trig, rend := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotAccept = r.Header.Get("Accept")
		writeJSON(w, 200, map[string]any{"result": "<table>...</table>", "rowCount": 12})
	})

	run, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "{}", gotBody)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, models.RunSucceeded, run.State)
	assert.Equal(t, "<table>...</table>", run.Result)
	require.NotNil(t, run.RowCount)
	assert.Equal(t, 12, *run.RowCount)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	assert.Equal(t, []models.RunState{models.RunRunning, models.RunSucceeded}, rend.states())
	assert.Equal(t, []bool{false, true}, trig.enabled, "trigger disabled then re-enabled exactly once")
	assert.Equal(t, []string{"Processing...", "Process Through Pipeline"}, trig.labels)
	assert.Equal(t, run, c.Last())
	assert.False(t, c.Running())
}

func TestRunServerError(t *testing.T) {
	c, trig, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(500)
		_, _ = io.WriteString(w, "internal error")
	})

	run, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunFailed, run.State)
	require.NotNil(t, run.Error)
	assert.Equal(t, "Server error: 500 - internal error", run.Error.Message)
	assert.Equal(t, []bool{false, true}, trig.enabled)
}

func TestRunTimesOut(t *testing.T) {
	release := make(chan struct{})
	c, trig, rend := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		writeJSON(w, 200, map[string]any{"result": "late"})
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	run, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunTimedOut, run.State)
	require.NotNil(t, run.Error)
	assert.Equal(t, TimeoutMessage, run.Error.Message)
	assert.Equal(t, []bool{false, true}, trig.enabled)

	// nothing renders after the run has finished
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []models.RunState{models.RunRunning, models.RunTimedOut}, rend.states())
	assert.Equal(t, models.RunTimedOut, c.Last().State)
}

// slowPoster ignores its context and answers after the deadline.
type slowPoster struct{ delay time.Duration }

func (p slowPoster) PostPipeline(ctx context.Context) (*api.Response, error) {
	time.Sleep(p.delay)
	return &api.Response{StatusCode: 200, ContentType: "application/json", Body: []byte(`{"result":"late"}`)}, nil
}

func TestRunDiscardsResponseAfterDeadline(t *testing.T) {
	c := NewClient(slowPoster{delay: 60 * time.Millisecond}, nil, nil, nil, WithTimeout(10*time.Millisecond))

	run, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunTimedOut, run.State)
	assert.Empty(t, run.Result)
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c, trig, rend := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		close(started)
		<-release
		writeJSON(w, 200, map[string]any{"result": "ok"})
	})

	done := make(chan models.PipelineRun)
	go func() {
		run, _ := c.Run(context.Background())
		done <- run
	}()
	<-started

	assert.True(t, c.Running())
	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	run := <-done
	assert.Equal(t, models.RunSucceeded, run.State)

	assert.Equal(t, []bool{false, true}, trig.enabled, "the rejected run must not touch the trigger")
	assert.Len(t, rend.states(), 2)
}

// chainTrigger starts the next run as soon as the trigger is re-enabled,
// like a user clicking the moment the control comes back.
type chainTrigger struct {
	c           *Client
	runningSeen []bool
	nextErr     error
	chained     bool
}

func (t *chainTrigger) SetEnabled(enabled bool) {
	if !enabled {
		return
	}
	t.runningSeen = append(t.runningSeen, t.c.Running())
	if t.chained {
		return
	}
	t.chained = true
	_, t.nextErr = t.c.Run(context.Background())
}

func (t *chainTrigger) SetLabel(string) {}

func TestRunReleasesGuardBeforeReenablingTrigger(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, 200, map[string]any{"result": "ok"})
	}))
	defer srv.Close()

	trig := &chainTrigger{}
	c := NewClient(api.NewClientWithHTTP(srv.URL, srv.Client(), nil), trig, nil, nil)
	trig.c = c

	run, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunSucceeded, run.State)

	require.NoError(t, trig.nextErr, "a run started from the re-enabled trigger must be accepted")
	assert.Equal(t, []bool{false, false}, trig.runningSeen, "guard must be released whenever the trigger is enabled")
	assert.False(t, c.Running())
}

func TestRunTransportError(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
	url := srv.URL
	srv.Close()

	trig := &triggerRecorder{}
	c := NewClient(api.NewClientWithHTTP(url, nethttp.DefaultClient, nil), trig, nil, nil)

	run, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, run.State)
	require.NotNil(t, run.Error)
	assert.Equal(t, models.KindTransport, run.Error.Kind)
	assert.Contains(t, run.Error.Message, "Network error: ")
	assert.Equal(t, []bool{false, true}, trig.enabled)
}

func TestRunUsesClock(t *testing.T) {
	ts := []time.Time{
		time.Date(2024, 5, 1, 14, 3, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC),
	}
	i := 0
	clock := func() time.Time { t := ts[i]; i++; return t }

	c, _, _ := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, 200, map[string]any{"result": "ok"})
	}, WithClock(clock))

	run, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ts[0], run.StartedAt)
	assert.Equal(t, ts[1], run.FinishedAt)
}

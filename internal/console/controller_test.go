package console

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
	"github.com/foldlab/foldpipe/internal/events"
	"github.com/foldlab/foldpipe/internal/models"
	"github.com/foldlab/foldpipe/internal/render"
	"github.com/foldlab/foldpipe/internal/upload"
)

// fakePage records what a front end would show.
type fakePage struct {
	mu       sync.Mutex
	disabled []bool
	label    string
	regions  map[string]render.Content
	slotMsg  map[models.Slot][]string
	cleared  map[models.Slot]int
	icon     string
}

func newFakePage() *fakePage {
	return &fakePage{
		regions: map[string]render.Content{},
		slotMsg: map[models.Slot][]string{},
		cleared: map[models.Slot]int{},
	}
}

type pageTrigger struct{ p *fakePage }

func (t pageTrigger) SetEnabled(enabled bool) {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.disabled = append(t.p.disabled, !enabled)
}

func (t pageTrigger) SetLabel(label string) {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.label = label
}

type pageRegion struct {
	p    *fakePage
	name string
}

func (r pageRegion) SetContent(c render.Content) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	r.p.regions[r.name] = c
}

type pageStatus struct {
	p    *fakePage
	slot models.Slot
}

func (s pageStatus) SetStatus(_ models.SlotStatus, message string) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.slotMsg[s.slot] = append(s.p.slotMsg[s.slot], message)
}

type pageInput struct {
	p    *fakePage
	slot models.Slot
}

func (i pageInput) Clear() {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()
	i.p.cleared[i.slot]++
}

type pageIndicator struct{ p *fakePage }

func (i pageIndicator) ShowTheme(_ models.Theme, icon string) {
	i.p.mu.Lock()
	defer i.p.mu.Unlock()
	i.p.icon = icon
}

func (p *fakePage) bindings() Bindings {
	b := Bindings{
		Trigger:    pageTrigger{p},
		Status:     pageRegion{p, RegionStatus},
		Output:     pageRegion{p, RegionOutput},
		Steps:      pageRegion{p, RegionSteps},
		Indicator:  pageIndicator{p},
		SlotStatus: map[models.Slot]upload.StatusLine{},
		SlotInput:  map[models.Slot]upload.Input{},
	}
	for _, s := range models.Slots {
		b.SlotStatus[s] = pageStatus{p, s}
		b.SlotInput[s] = pageInput{p, s}
	}
	return b
}

type memPersister struct{ theme models.Theme }

func (m *memPersister) Load() (models.Theme, bool, error) { return m.theme, m.theme != "", nil }
func (m *memPersister) Save(t models.Theme) error         { m.theme = t; return nil }

func newController(t *testing.T, handler nethttp.HandlerFunc, bus *events.EventBus) (*Controller, *fakePage, *memPersister) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.NewClientWithHTTP(srv.URL, srv.Client(), nil)
	page := newFakePage()
	prefs := &memPersister{}
	c := New(Options{
		Uploader:  client,
		Poster:    client,
		Persister: prefs,
		Bus:       bus,
	}, page.bindings())
	return c, page, prefs
}

func pipelineServer(status int, contentType, body string) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.URL.Path {
		case "/upload-file":
			w.WriteHeader(nethttp.StatusOK)
		case "/run-pipeline":
			w.Header().Set("Content-Type", contentType)
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		default:
			nethttp.NotFound(w, r)
		}
	}
}

func TestScenarioUploadCT(t *testing.T) {
	c, page, _ := newController(t, pipelineServer(200, "application/json", "{}"), nil)

	_, err := c.SelectFile(context.Background(), models.SlotPrimary, upload.MemoryFile("report.ct", []byte("1 G 0 0")))
	require.NoError(t, err)

	assert.Equal(t, []string{"Uploading...", "Uploaded successfully"}, page.slotMsg[models.SlotPrimary])
	assert.Equal(t, models.SlotSuccess, c.Snapshot().Slots[0].Status)
}

func TestScenarioRejectTXT(t *testing.T) {
	c, page, _ := newController(t, pipelineServer(200, "application/json", "{}"), nil)

	_, err := c.SelectFile(context.Background(), models.SlotPrimary, upload.MemoryFile("report.txt", nil))
	require.Error(t, err)

	assert.Equal(t, []string{"Invalid file type. Expected .ct"}, page.slotMsg[models.SlotPrimary])
	assert.Equal(t, 1, page.cleared[models.SlotPrimary])
	snap := c.Snapshot().Slots[0]
	assert.Equal(t, models.SlotInvalidType, snap.Status)
	assert.Empty(t, snap.FileName)
}

func TestScenarioRunSuccess(t *testing.T) {
	body, _ := json.Marshal(map[string]any{"result": "<table>...</table>", "rowCount": 12})
	c, page, _ := newController(t, pipelineServer(200, "application/json", string(body)), nil)

	run, err := c.RunPipeline(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.RunSucceeded, run.State)

	assert.Equal(t, render.Content{Kind: render.KindMarkup, Body: "<table>...</table>"}, page.regions[RegionOutput])
	assert.Contains(t, page.regions[RegionStatus].Body, "Successfully processed 12 rows")
	assert.Equal(t, []bool{true, false}, page.disabled, "disabled true then false exactly once")
	assert.Equal(t, "Process Through Pipeline", page.label)

	snap := c.Snapshot()
	assert.Equal(t, run, snap.Run)
	assert.True(t, snap.TriggerEnabled)
	assert.Equal(t, page.regions[RegionOutput], snap.Regions[RegionOutput])
}

func TestSnapshotBeforeFirstRun(t *testing.T) {
	c, _, _ := newController(t, pipelineServer(200, "application/json", `{"result":"ok"}`), nil)

	snap := c.Snapshot()
	assert.Equal(t, models.RunIdle, snap.Run.State)
	assert.True(t, snap.TriggerEnabled)
	assert.Equal(t, "Process Through Pipeline", snap.TriggerLabel)
}

func TestScenarioRunServerError(t *testing.T) {
	c, page, _ := newController(t, pipelineServer(500, "text/plain", "internal error"), nil)

	_, err := c.RunPipeline(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Server error: 500 - internal error", page.regions[RegionStatus].Body)
	assert.Equal(t, "Server error: 500 - internal error", page.regions[RegionOutput].Body)
}

func TestRunWithErrorFieldShowsItInBothRegions(t *testing.T) {
	c, page, _ := newController(t, pipelineServer(200, "application/json", `{"error":"no .dot file uploaded"}`), nil)

	run, err := c.RunPipeline(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunFailed, run.State)
	assert.Equal(t, "no .dot file uploaded", page.regions[RegionStatus].Body)
	assert.Equal(t, "no .dot file uploaded", page.regions[RegionOutput].Body)
}

func TestThemeToggleWhileRunning(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c, page, prefs := newController(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		close(started)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":"ok"}`)
	}, nil)

	assert.Equal(t, models.ThemeLight, c.Snapshot().Theme)
	assert.Equal(t, "☾", page.icon)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.RunPipeline(context.Background())
	}()
	<-started

	assert.Equal(t, models.ThemeDark, c.ToggleTheme())
	assert.Equal(t, models.ThemeDark, prefs.theme)
	assert.Equal(t, "☀", page.icon)

	_, err := c.RunPipeline(context.Background())
	assert.Error(t, err)

	close(release)
	<-done
	assert.Equal(t, models.ThemeDark, c.Snapshot().Theme)
}

func TestStateChangesArePublished(t *testing.T) {
	bus := events.NewEventBus(64)
	defer bus.Close()
	all := bus.SubscribeAll()

	c, _, _ := newController(t, pipelineServer(200, "application/json", `{"result":"ok"}`), bus)
	c.SetTheme(models.ThemeDark)
	_, err := c.RunPipeline(context.Background())
	require.NoError(t, err)

	seen := map[events.EventType]int{}
	timeout := time.After(time.Second)
	for seen[events.EventTrigger] < 4 {
		select {
		case ev := <-all:
			seen[ev.Type()]++
		case <-timeout:
			t.Fatalf("missing events, saw %v", seen)
		}
	}
	assert.GreaterOrEqual(t, seen[events.EventTheme], 2)
	assert.Equal(t, 2, seen[events.EventRunState])
	assert.Equal(t, 6, seen[events.EventRegion])
}

package refresher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/alert"
	"github.com/airsight/airsight/internal/analysis"
	"github.com/airsight/airsight/internal/refresher"
	"github.com/airsight/airsight/internal/ws"
)

type fakeSnapshots struct {
	snapshot *airquality.Snapshot
	err      error
	calls    int
}

func (f *fakeSnapshots) Refresh(context.Context) (*airquality.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

type fakeAlerts struct {
	raised []*alert.Alert
}

func (f *fakeAlerts) Evaluate(context.Context, *airquality.Snapshot) ([]*alert.Alert, error) {
	return f.raised, nil
}

type fakeAnalyzer struct {
	result     *analysis.Analysis
	narratives map[string]string
	mu         sync.Mutex
}

func (f *fakeAnalyzer) Analyze(context.Context, *airquality.Snapshot) (*analysis.Analysis, error) {
	return f.result, nil
}

func (f *fakeAnalyzer) AttachNarrative(_ context.Context, id, narrative string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.narratives == nil {
		f.narratives = make(map[string]string)
	}
	f.narratives[id] = narrative
	return nil
}

type fakeNarrator struct {
	enabled bool
	text    string
}

func (f *fakeNarrator) Enabled() bool { return f.enabled }

func (f *fakeNarrator) Narrate(context.Context, *analysis.Analysis) (string, error) {
	return f.text, nil
}

type recordingHub struct {
	mu     sync.Mutex
	events []ws.Event
}

func (h *recordingHub) Broadcast(_ string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) typesSeen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, len(h.events))
	for i, e := range h.events {
		types[i] = e.Type
	}
	return types
}

func (h *recordingHub) waitFor(t *testing.T, eventType string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, seen := range h.typesSeen() {
			if seen == eventType {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("event %q never broadcast; saw %v", eventType, h.typesSeen())
}

func testSnapshot() *airquality.Snapshot {
	snapshot := airquality.NewSnapshot()
	snapshot.Zones["kibera"] = &airquality.ZoneReading{
		Zone: airquality.Zone{ID: "kibera", Name: "Kibera"},
		PM25: airquality.Float64Ptr(80),
	}
	return snapshot
}

func newRefresher(snapshots *fakeSnapshots, alerts *fakeAlerts, analyzer *fakeAnalyzer, narrator *fakeNarrator, hub *recordingHub, clock clockwork.Clock) *refresher.Refresher {
	return refresher.New(refresher.Config{
		Snapshots: snapshots,
		Alerts:    alerts,
		Analyzer:  analyzer,
		Narrator:  narrator,
		Hub:       hub,
		Logger:    zerolog.Nop(),
		Clock:     clock,
	})
}

func TestRunCycle_BroadcastsDataUpdateAndCriticalAlerts(t *testing.T) {
	hub := &recordingHub{}
	r := newRefresher(
		&fakeSnapshots{snapshot: testSnapshot()},
		&fakeAlerts{raised: []*alert.Alert{
			{ID: "w", ZoneID: "westlands", Level: alert.LevelWarning},
			{ID: "c", ZoneID: "kibera", Level: alert.LevelCritical},
		}},
		&fakeAnalyzer{result: &analysis.Analysis{ID: "a-1"}},
		&fakeNarrator{enabled: false},
		hub,
		clockwork.NewFakeClock(),
	)

	require.NoError(t, r.RunCycle(context.Background()))

	types := hub.typesSeen()
	assert.Equal(t, []string{ws.EventDataUpdate, ws.EventCriticalAlert}, types)
}

func TestRunCycle_AttachesNarrativeAsync(t *testing.T) {
	hub := &recordingHub{}
	analyzer := &fakeAnalyzer{result: &analysis.Analysis{ID: "a-1"}}
	r := newRefresher(
		&fakeSnapshots{snapshot: testSnapshot()},
		&fakeAlerts{},
		analyzer,
		&fakeNarrator{enabled: true, text: "calm day"},
		hub,
		clockwork.NewFakeClock(),
	)

	require.NoError(t, r.RunCycle(context.Background()))
	hub.waitFor(t, ws.EventAnalysisComplete)

	analyzer.mu.Lock()
	defer analyzer.mu.Unlock()
	assert.Equal(t, "calm day", analyzer.narratives["a-1"])
}

func TestRunCycle_PropagatesRefreshError(t *testing.T) {
	hub := &recordingHub{}
	r := newRefresher(
		&fakeSnapshots{err: errors.New("all providers down")},
		&fakeAlerts{},
		&fakeAnalyzer{result: &analysis.Analysis{ID: "a-1"}},
		&fakeNarrator{},
		hub,
		clockwork.NewFakeClock(),
	)

	err := r.RunCycle(context.Background())
	require.Error(t, err)
	assert.Empty(t, hub.typesSeen())
}

func TestRun_FiresOnTicker(t *testing.T) {
	clock := clockwork.NewFakeClock()
	hub := &recordingHub{}
	snapshots := &fakeSnapshots{snapshot: testSnapshot()}
	r := refresher.New(refresher.Config{
		Snapshots: snapshots,
		Alerts:    &fakeAlerts{},
		Analyzer:  &fakeAnalyzer{result: &analysis.Analysis{ID: "a-1"}},
		Narrator:  &fakeNarrator{},
		Hub:       hub,
		Interval:  15 * time.Minute,
		Logger:    zerolog.Nop(),
		Clock:     clock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Let Run reach the ticker before advancing the clock.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(15 * time.Minute)

	hub.waitFor(t, ws.EventAutoRefresh)
	hub.waitFor(t, ws.EventDataUpdate)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

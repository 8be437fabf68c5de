package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elboulangero/exaile-webradio-title/scraper"
)

// pipeStrategy reads "artist|title" from text payloads.
type pipeStrategy struct {
	scraper.Station
}

func (p *pipeStrategy) Extract(infos *scraper.TrackInfo, payload scraper.Payload) {
	if payload.Text == "panic" {
		panic("bad payload")
	}
	parts := strings.SplitN(payload.Text, "|", 2)
	if len(parts) != 2 {
		return
	}
	infos.Artist = parts[0]
	infos.Title = parts[1]
}

func newPipeStrategy() *pipeStrategy {
	return &pipeStrategy{Station: scraper.Station{
		ID:        "pipe",
		Name:      "Pipe Radio",
		URI:       "http://pipe.example/",
		ScrapeURI: "http://pipe.example/now",
		Period:    time.Hour,
		Kind:      scraper.PayloadText,
	}}
}

type step struct {
	text string
	err  error
}

func ok(text string) step { return step{text: text} }

func fail() step { return step{err: errors.New("connection refused")} }

// scriptedFetcher plays steps in order, then repeats the last one.
type scriptedFetcher struct {
	mu    sync.Mutex
	steps []step
	calls int
	block chan struct{}
}

func (f *scriptedFetcher) Fetch(ctx context.Context, uri string, headers map[string]string, kind scraper.PayloadKind) (scraper.Payload, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	s := f.steps[i]
	if s.err != nil {
		return scraper.Payload{}, s.err
	}
	return scraper.Payload{Kind: kind, Text: s.text}, nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func startWorker(t *testing.T, fetcher scraper.Fetcher, n Notifier, opts ...Option) *Worker {
	t.Helper()
	opts = append([]Option{WithPeriod(time.Millisecond)}, opts...)
	w, err := NewWorker(newPipeStrategy(), fetcher, n, opts...)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	return w
}

// waitCalls waits until the fetcher was called n times, which means the
// iteration of call n-1 has completed.
func waitCalls(t *testing.T, f *scriptedFetcher, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.Calls() >= n }, 2*time.Second, time.Millisecond)
}

func stopAndWait(t *testing.T, w *Worker) {
	t.Helper()
	w.Stop()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func infos(artist, title string) scraper.TrackInfo {
	return scraper.TrackInfo{Artist: artist, Title: title, Album: "Pipe Radio", Date: ""}
}

func TestWorker_NotifiesOnlyOnChange(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1"), ok("A|1"), ok("B|2"), ok("B|2")}}
	rec := &recorder{}
	w := startWorker(t, f, rec)

	waitCalls(t, f, 5)
	stopAndWait(t, w)

	events := rec.Events()
	require.Len(t, events, 3)
	assert.Equal(t, CauseUpdated, events[0].Cause)
	assert.Equal(t, infos("A", "1"), events[0].Infos)
	assert.Equal(t, CauseUpdated, events[1].Cause)
	assert.Equal(t, infos("B", "2"), events[1].Infos)
	assert.Equal(t, "pipe", events[1].Station.ID)
}

func TestWorker_ToleratesTransientFailures(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1"), fail(), fail(), ok("B|2")}}
	rec := &recorder{}
	w := startWorker(t, f, rec)

	waitCalls(t, f, 5)
	stopAndWait(t, w)

	events := rec.Events()
	require.Len(t, events, 3)
	assert.Equal(t, infos("A", "1"), events[0].Infos)
	assert.Equal(t, CauseUpdated, events[1].Cause)
	assert.Equal(t, infos("B", "2"), events[1].Infos)
	assert.Equal(t, CauseStopped, events[2].Cause)
}

func TestWorker_ReportsDefaultsOnPersistentFailure(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1"), fail(), fail(), fail(), fail(), fail()}}
	rec := &recorder{}
	w := startWorker(t, f, rec)

	waitCalls(t, f, 8)
	stopAndWait(t, w)

	defaults := newPipeStrategy().DefaultInfos()
	events := rec.Events()
	require.Len(t, events, 3)
	assert.Equal(t, infos("A", "1"), events[0].Infos)
	assert.Equal(t, CauseUpdated, events[1].Cause)
	assert.Equal(t, defaults, events[1].Infos)
	assert.Equal(t, CauseStopped, events[2].Cause)
}

func TestWorker_FailuresFromStartAreSilent(t *testing.T) {
	f := &scriptedFetcher{steps: []step{fail()}}
	rec := &recorder{}
	w := startWorker(t, f, rec)

	waitCalls(t, f, 4)
	stopAndWait(t, w)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, CauseStopped, events[0].Cause)
}

func TestWorker_StopEmitsSingleFinalEvent(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1")}}
	rec := &recorder{}
	w := startWorker(t, f, rec)

	waitCalls(t, f, 2)
	w.Stop()
	w.Stop()
	stopAndWait(t, w)

	events := rec.Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, CauseStopped, last.Cause)
	assert.Equal(t, newPipeStrategy().DefaultInfos(), last.Infos)

	stopped := 0
	for _, ev := range events {
		if ev.Cause == CauseStopped {
			stopped++
		}
	}
	assert.Equal(t, 1, stopped)

	time.Sleep(10 * time.Millisecond)
	assert.Len(t, rec.Events(), len(events))
}

func TestWorker_StopInterruptsSleep(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1")}}
	rec := &recorder{}
	w, err := NewWorker(newPipeStrategy(), f, rec)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	waitCalls(t, f, 1)
	start := time.Now()
	stopAndWait(t, w)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, f.Calls())
}

func TestWorker_NoUpdateAfterStop(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1")}, block: make(chan struct{})}
	rec := &recorder{}
	w := startWorker(t, f, rec)

	waitCalls(t, f, 1)
	w.Stop()
	close(f.block)
	stopAndWait(t, w)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, CauseStopped, events[0].Cause)
}

func TestWorker_RecoversFromExtractPanic(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1"), ok("panic"), ok("panic"), ok("panic"), ok("B|2")}}
	rec := &recorder{}
	w := startWorker(t, f, rec)

	waitCalls(t, f, 6)
	stopAndWait(t, w)

	events := rec.Events()
	require.Len(t, events, 4)
	assert.Equal(t, infos("A", "1"), events[0].Infos)
	assert.Equal(t, newPipeStrategy().DefaultInfos(), events[1].Infos)
	assert.Equal(t, infos("B", "2"), events[2].Infos)
	assert.Equal(t, CauseStopped, events[3].Cause)
}

func TestWorker_Postprocess(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok(" miles &amp; john |so what ")}}
	rec := &recorder{}
	w := startWorker(t, f, rec, WithPostprocessor(scraper.Postprocessor{TitleCase: true}))

	waitCalls(t, f, 2)
	stopAndWait(t, w)

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Miles & John", events[0].Infos.Artist)
	assert.Equal(t, "So What", events[0].Infos.Title)
}

func TestWorker_PollHook(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1"), fail()}}
	var mu sync.Mutex
	var results []PollResult
	w := startWorker(t, f, &recorder{}, WithPollHook(func(r PollResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	}))

	waitCalls(t, f, 3)
	stopAndWait(t, w)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(results), 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 0, results[0].Failures)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 1, results[1].Failures)
	assert.Equal(t, "pipe", results[1].Station)
}

func TestWorker_StartTwice(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1")}}
	w := startWorker(t, f, &recorder{})
	assert.ErrorIs(t, w.Start(), ErrAlreadyStarted)
	stopAndWait(t, w)
}

func TestNewWorker_MissingCapabilities(t *testing.T) {
	f := &scriptedFetcher{steps: []step{ok("A|1")}}
	rec := &recorder{}

	_, err := NewWorker(nil, f, rec)
	assert.ErrorIs(t, err, ErrNoStrategy)

	_, err = NewWorker(newPipeStrategy(), nil, rec)
	assert.ErrorIs(t, err, ErrNoFetcher)

	_, err = NewWorker(newPipeStrategy(), f, nil)
	assert.ErrorIs(t, err, ErrNoNotifier)
}

func TestWorkers_RunIndependently(t *testing.T) {
	f1 := &scriptedFetcher{steps: []step{ok("A|1")}}
	f2 := &scriptedFetcher{steps: []step{fail()}}
	rec1, rec2 := &recorder{}, &recorder{}

	w1 := startWorker(t, f1, rec1)
	w2 := startWorker(t, f2, rec2)

	waitCalls(t, f1, 3)
	waitCalls(t, f2, 3)
	stopAndWait(t, w1)
	stopAndWait(t, w2)

	assert.Len(t, rec1.Events(), 2)
	assert.Len(t, rec2.Events(), 1)
}

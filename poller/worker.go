// Package poller runs the per-station polling loops and reports changes of
// the now playing infos to a Notifier.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/r3labs/diff/v3"
	"github.com/sirupsen/logrus"

	"github.com/elboulangero/exaile-webradio-title/scraper"
	"github.com/elboulangero/exaile-webradio-title/utils"
)

const (
	// FailureThreshold is the number of consecutive failures from which the
	// station defaults are reported instead of the last known infos.
	FailureThreshold = 3

	// failureSentinel makes a failure before any success report defaults.
	failureSentinel = 100
)

var (
	ErrNoStrategy     = errors.New("no extraction strategy")
	ErrNoFetcher      = errors.New("no fetcher available")
	ErrNoNotifier     = errors.New("no notifier")
	ErrAlreadyStarted = errors.New("worker already started")
)

// PollResult is handed to the poll hook after every iteration.
type PollResult struct {
	Station  string
	At       time.Time
	Err      error
	Failures int
}

type Option func(*Worker)

// WithPeriod overrides the station poll period. Zero keeps the station's.
func WithPeriod(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.period = d
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func WithPostprocessor(p scraper.Postprocessor) Option {
	return func(w *Worker) {
		w.post = p
	}
}

// WithPollHook registers fn to be called from the worker goroutine after
// each poll.
func WithPollHook(fn func(PollResult)) Option {
	return func(w *Worker) {
		w.onPoll = fn
	}
}

// workerState belongs to the worker goroutine.
type workerState struct {
	lastInfos           scraper.TrackInfo
	consecutiveFailures int
}

// Worker polls one station until stopped.
type Worker struct {
	strategy scraper.Strategy
	station  scraper.Station
	fetcher  scraper.Fetcher
	notifier Notifier
	post     scraper.Postprocessor
	period   time.Duration
	timeout  time.Duration
	onPoll   func(PollResult)
	log      *logrus.Entry

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewWorker(strategy scraper.Strategy, fetcher scraper.Fetcher, notifier Notifier, opts ...Option) (*Worker, error) {
	if strategy == nil {
		return nil, ErrNoStrategy
	}
	if fetcher == nil {
		return nil, ErrNoFetcher
	}
	if notifier == nil {
		return nil, ErrNoNotifier
	}

	station := strategy.Descriptor()
	w := &Worker{
		strategy: strategy,
		station:  station,
		fetcher:  fetcher,
		notifier: notifier,
		period:   station.Period,
		timeout:  scraper.FetchTimeout,
		log:      utils.Logger.WithField("station", station.ID),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Worker) Station() scraper.Station {
	return w.station
}

func (w *Worker) Start() error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	w.log.Debugf("Start scraping %s every %v", w.station.Name, w.period)
	go w.run()
	return nil
}

// Stop asks the loop to exit and returns immediately. The loop emits its
// "stopped" event before closing Done.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) stopping() bool {
	select {
	case <-w.stop:
		return true
	default:
		return false
	}
}

func (w *Worker) run() {
	defer close(w.done)
	defer w.notify(CauseStopped, w.strategy.DefaultInfos())

	state := &workerState{
		lastInfos:           w.strategy.DefaultInfos(),
		consecutiveFailures: failureSentinel,
	}

	for {
		w.poll(state)
		if !w.sleep() {
			w.log.Debugf("Done with %s", w.station.Name)
			return
		}
	}
}

func (w *Worker) poll(state *workerState) {
	infos := w.strategy.DefaultInfos()

	err := w.fetchAndExtract(&infos)
	if err == nil {
		state.consecutiveFailures = 0
		infos = w.post.Apply(infos)
	} else {
		state.consecutiveFailures++
		infos = w.strategy.DefaultInfos()
		if state.consecutiveFailures < FailureThreshold {
			w.log.Debugf("Ignoring failure %d: %v", state.consecutiveFailures, err)
			infos = state.lastInfos
		} else if state.consecutiveFailures == FailureThreshold {
			w.log.Warnf("%d consecutive failures, reporting defaults: %v", state.consecutiveFailures, err)
		}
	}

	if w.onPoll != nil {
		w.onPoll(PollResult{
			Station:  w.station.ID,
			At:       time.Now(),
			Err:      err,
			Failures: state.consecutiveFailures,
		})
	}

	if infos == state.lastInfos {
		return
	}
	if w.stopping() {
		return
	}

	w.logChanges(state.lastInfos, infos)
	state.lastInfos = infos
	w.notify(CauseUpdated, infos)
}

func (w *Worker) fetchAndExtract(infos *scraper.TrackInfo) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	payload, err := w.fetcher.Fetch(ctx, w.station.ScrapeURI, w.station.Headers, w.station.Kind)
	if err != nil {
		return err
	}

	if err := scraper.SafeExtract(w.strategy, infos, payload); err != nil {
		w.log.Errorf("Recovered from extraction failure: %v", err)
		return err
	}
	return nil
}

// sleep waits for the next poll. It returns false once the worker is stopped.
func (w *Worker) sleep() bool {
	timer := time.NewTimer(w.period)
	defer timer.Stop()

	select {
	case <-w.stop:
		return false
	case <-timer.C:
		return !w.stopping()
	}
}

func (w *Worker) notify(cause Cause, infos scraper.TrackInfo) {
	w.notifier.Notify(Event{
		Station: w.station,
		Cause:   cause,
		Infos:   infos,
		At:      time.Now(),
	})
}

func (w *Worker) logChanges(from, to scraper.TrackInfo) {
	if !w.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	changes, err := diff.Diff(from, to)
	if err != nil {
		w.log.Errorf("failed to diff old and new infos: %v", err)
		return
	}
	for _, change := range changes {
		w.log.Debugf("%v: %q -> %q", change.Path, change.From, change.To)
	}
}

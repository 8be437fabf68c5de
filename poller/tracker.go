package poller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/elboulangero/exaile-webradio-title/scraper"
	"github.com/elboulangero/exaile-webradio-title/utils"
)

// ErrNoMatch is returned by Tracker.Play when no station knows the URL.
var ErrNoMatch = errors.New("no station matches url")

// Tracker follows the playback of a player: one worker at most, replaced on
// every Play and stopped on Stop. A new worker only starts once the previous
// one has sent its final event.
type Tracker struct {
	mu       sync.Mutex
	fetcher  scraper.Fetcher
	notifier Notifier
	opts     []Option
	resolve  func(url string) (scraper.Strategy, bool)
	current  *Worker
	stopping *Worker
}

func NewTracker(fetcher scraper.Fetcher, notifier Notifier, opts ...Option) *Tracker {
	return &Tracker{
		fetcher:  fetcher,
		notifier: notifier,
		opts:     opts,
		resolve:  scraper.Resolve,
	}
}

// Play stops the current worker, if any, and starts one for the station
// playing url.
func (t *Tracker) Play(url string) (scraper.Station, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	strategy, ok := t.resolve(url)
	if !ok {
		utils.Logger.Debugf("Current track does not match any station: %s", url)
		return scraper.Station{}, fmt.Errorf("%w: %s", ErrNoMatch, url)
	}

	t.waitStoppedLocked()

	w, err := NewWorker(strategy, t.fetcher, t.notifier, t.opts...)
	if err != nil {
		return scraper.Station{}, fmt.Errorf("create worker: %w", err)
	}
	if err := w.Start(); err != nil {
		return scraper.Station{}, err
	}
	t.current = w
	return w.Station(), nil
}

// Stop stops the current worker without waiting for it.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Close stops the current worker and waits for its final event.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.waitStoppedLocked()
}

// Current returns the station being tracked.
func (t *Tracker) Current() (scraper.Station, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return scraper.Station{}, false
	}
	return t.current.Station(), true
}

func (t *Tracker) stopLocked() {
	if t.current == nil {
		return
	}
	utils.Logger.Debugf("Stop fetching titles for %s", t.current.Station().Name)
	t.current.Stop()
	t.stopping = t.current
	t.current = nil
}

// waitStoppedLocked waits for the last stopped worker, which takes at most
// one fetch timeout.
func (t *Tracker) waitStoppedLocked() {
	if t.stopping == nil {
		return
	}
	<-t.stopping.Done()
	t.stopping = nil
}

package poller

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elboulangero/exaile-webradio-title/scraper"
	"github.com/elboulangero/exaile-webradio-title/utils"
)

type Cause string

const (
	CauseUpdated Cause = "updated"
	CauseStopped Cause = "stopped"
)

// Event is what a worker reports to its notifier.
type Event struct {
	Station scraper.Station
	Cause   Cause
	Infos   scraper.TrackInfo
	At      time.Time
}

// Notifier receives the events of a worker, in order, from the worker's own
// goroutine. Implementations must not block for long.
type Notifier interface {
	Notify(ev Event)
}

type NotifierFunc func(ev Event)

func (f NotifierFunc) Notify(ev Event) {
	f(ev)
}

// Multi forwards every event to each notifier in turn.
type Multi []Notifier

func (m Multi) Notify(ev Event) {
	for _, n := range m {
		n.Notify(ev)
	}
}

// LogNotifier writes events to the shared logger.
var LogNotifier = NotifierFunc(func(ev Event) {
	utils.Logger.WithFields(logrus.Fields{
		"station": ev.Station.ID,
		"cause":   ev.Cause,
	}).Infof("%s - %s [%s] %s", ev.Infos.Artist, ev.Infos.Title, ev.Infos.Album, ev.Infos.Date)
})

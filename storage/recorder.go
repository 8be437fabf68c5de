package storage

import (
	"github.com/elboulangero/exaile-webradio-title/poller"
	"github.com/elboulangero/exaile-webradio-title/utils"
)

// Recorder stores every worker event on the now playing board.
type Recorder struct {
	store Storage
}

func NewRecorder(store Storage) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Notify(ev poller.Event) {
	entry := EntryFromEvent(ev)
	if err := r.store.StoreNowPlaying(entry); err != nil {
		utils.Logger.Errorf("Error storing now playing for %s: %v", entry.StationID, err)
	}
}

func EntryFromEvent(ev poller.Event) Entry {
	return Entry{
		StationID: ev.Station.ID,
		Station:   ev.Station.Name,
		Cause:     string(ev.Cause),
		Infos:     ev.Infos,
		UpdatedAt: ev.At,
	}
}

package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"

	"github.com/elboulangero/exaile-webradio-title/poller"
	"github.com/elboulangero/exaile-webradio-title/scraper"
	"github.com/elboulangero/exaile-webradio-title/storage"
	"github.com/elboulangero/exaile-webradio-title/utils"
)

var ErrTrackNotFound = errors.New("no spotify track found")

const queueSize = 16

// Searcher is the part of the Spotify client the linker needs.
type Searcher interface {
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
}

// Linker looks up the songs reported by workers on Spotify. Notify only
// queues, the searches happen in Run.
type Linker struct {
	searcher Searcher
	cache    *storage.SongCache
	queue    chan poller.Event
}

func NewLinker(searcher Searcher, cache *storage.SongCache) *Linker {
	if cache == nil {
		cache = storage.NewSongCache()
	}
	return &Linker{
		searcher: searcher,
		cache:    cache,
		queue:    make(chan poller.Event, queueSize),
	}
}

// Notify queues updates that carry an actual song. It never blocks: when the
// queue is full the event is dropped.
func (l *Linker) Notify(ev poller.Event) {
	if ev.Cause != poller.CauseUpdated || ev.Infos == ev.Station.DefaultInfos() {
		return
	}
	select {
	case l.queue <- ev:
	default:
		utils.Logger.Warnf("Spotify lookup queue full, skipping %s - %s", ev.Infos.Artist, ev.Infos.Title)
	}
}

// Run processes queued events until ctx is done.
func (l *Linker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-l.queue:
			log := utils.Logger.WithFields(logrus.Fields{
				"station": ev.Station.ID,
				"artist":  ev.Infos.Artist,
				"title":   ev.Infos.Title,
			})
			id, err := l.Lookup(ctx, ev.Infos)
			switch {
			case errors.Is(err, ErrTrackNotFound):
				log.Debug("Song not found on Spotify")
			case err != nil:
				log.Warnf("Spotify search failed: %v", err)
			default:
				log.Infof("Spotify track: https://open.spotify.com/track/%s", id)
			}
		}
	}
}

// Lookup returns the Spotify track ID of a song, from the cache when the song
// was already searched.
func (l *Linker) Lookup(ctx context.Context, infos scraper.TrackInfo) (spotify.ID, error) {
	if id, found := l.cache.GetFromCache(infos); found {
		if id == "" {
			return "", ErrTrackNotFound
		}
		return spotify.ID(id), nil
	}

	results, err := l.searcher.Search(ctx, fmt.Sprintf("%s %s", infos.Artist, infos.Title), spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return "", err
	}

	var id spotify.ID
	if results.Tracks != nil && len(results.Tracks.Tracks) > 0 {
		id = results.Tracks.Tracks[0].ID
	}
	l.cache.AddToCache(infos, string(id))

	if id == "" {
		return "", ErrTrackNotFound
	}
	return id, nil
}

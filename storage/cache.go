package storage

import (
	"strings"
	"sync"

	"github.com/elboulangero/exaile-webradio-title/scraper"
	"github.com/elboulangero/exaile-webradio-title/utils"
)

// SongCache remembers which Spotify track a song resolved to. A miss is
// cached too, as an empty ID, so unknown songs are not searched twice.
type SongCache struct {
	mu    sync.Mutex
	cache map[string]string
}

func NewSongCache() *SongCache {
	utils.Logger.Debug("Initializing song cache")
	return &SongCache{
		cache: make(map[string]string),
	}
}

func songKey(infos scraper.TrackInfo) string {
	return strings.ToLower(infos.Artist) + " - " + strings.ToLower(infos.Title)
}

// Add a song to the cache
func (sc *SongCache) AddToCache(infos scraper.TrackInfo, trackID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache[songKey(infos)] = trackID

	utils.Logger.Debugf("Added song to cache: %s - %s -> %q", infos.Artist, infos.Title, trackID)
}

// GetFromCache reports the cached track ID and whether the song was seen.
func (sc *SongCache) GetFromCache(infos scraper.TrackInfo) (string, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	id, found := sc.cache[songKey(infos)]
	return id, found
}

func (sc *SongCache) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.cache)
}

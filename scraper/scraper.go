package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elboulangero/exaile-webradio-title/utils"
)

// FetchTimeout bounds a single request to a station endpoint.
const FetchTimeout = 5 * time.Second

// Result is the outcome of a one-shot fetch for a station.
type Result struct {
	Station Station
	Infos   TrackInfo
	Err     error
}

// SafeExtract runs s.Extract and turns a panic into an error, leaving infos
// in whatever state the strategy left it.
func SafeExtract(s Strategy, infos *TrackInfo, payload Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract %s: panic: %v", s.Descriptor().ID, r)
		}
	}()
	s.Extract(infos, payload)
	return nil
}

// FetchNowPlaying fetches every station once, concurrently. Results come back
// in the order of strategies.
func FetchNowPlaying(ctx context.Context, fetcher Fetcher, post Postprocessor, strategies []Strategy) []Result {
	var wg sync.WaitGroup
	results := make([]Result, len(strategies))

	for i, s := range strategies {
		wg.Add(1)
		go func(i int, s Strategy) {
			defer wg.Done()
			results[i] = fetchStation(ctx, fetcher, post, s)
		}(i, s)
	}

	wg.Wait()
	return results
}

func fetchStation(ctx context.Context, fetcher Fetcher, post Postprocessor, s Strategy) Result {
	station := s.Descriptor()
	result := Result{Station: station, Infos: s.DefaultInfos()}

	utils.Logger.Debugf("Fetching now playing for station: %s (%s)", station.Name, station.ID)

	fctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()
	payload, err := fetcher.Fetch(fctx, station.ScrapeURI, station.Headers, station.Kind)
	if err != nil {
		utils.Logger.Warnf("Error fetching now playing for station %s (%s): %v", station.Name, station.ID, err)
		result.Err = err
		return result
	}

	if err := SafeExtract(s, &result.Infos, payload); err != nil {
		utils.Logger.Errorf("Error extracting now playing for station %s (%s): %v", station.Name, station.ID, err)
		result.Infos = s.DefaultInfos()
		result.Err = err
		return result
	}

	result.Infos = post.Apply(result.Infos)
	return result
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/elboulangero/exaile-webradio-title/poller"
	"github.com/elboulangero/exaile-webradio-title/scraper"
	"github.com/elboulangero/exaile-webradio-title/storage"
)

var fetchStore bool

func init() {
	fetchCmd.Flags().StringVar(&stationID, "station", "", "Station ID to fetch, all stations when empty")
	fetchCmd.Flags().BoolVar(&fetchStore, "store", false, "Store the results on the now playing board")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the now playing infos of the stations once",
	Run: func(cmd *cobra.Command, args []string) {
		executeFetch()
	},
}

func selectStations(id string) []scraper.Strategy {
	if id == "" {
		return scraper.Stations()
	}
	s, ok := scraper.Lookup(id)
	if !ok {
		logger.Fatalf("Unknown station: %s", id)
	}
	return []scraper.Strategy{s}
}

func executeFetch() {
	strategies := selectStations(stationID)
	post := scraper.Postprocessor{TitleCase: settings.TitleCase}
	results := scraper.FetchNowPlaying(context.Background(), scraper.NewHTTPFetcher(nil), post, strategies)

	var store storage.Storage
	if fetchStore {
		store = openStore()
		defer closeStore(store)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("%s: error: %v\n", r.Station.ID, r.Err)
			continue
		}
		fmt.Printf("%s: %s - %s [%s] %s\n", r.Station.ID, r.Infos.Artist, r.Infos.Title, r.Infos.Album, r.Infos.Date)

		if store != nil {
			entry := storage.EntryFromEvent(poller.Event{
				Station: r.Station,
				Cause:   poller.CauseUpdated,
				Infos:   r.Infos,
				At:      time.Now(),
			})
			if err := store.StoreNowPlaying(entry); err != nil {
				logger.Errorf("Error storing now playing for station %s: %v", r.Station.ID, err)
			}
		}
	}

	logger.Debugf("Fetched %d stations, %d failed", len(results), failed)
}

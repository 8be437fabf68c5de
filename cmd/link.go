package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/elboulangero/exaile-webradio-title/poller"
	"github.com/elboulangero/exaile-webradio-title/spotify"
	"github.com/elboulangero/exaile-webradio-title/storage"
)

func init() {
	linkCmd.Flags().StringVar(&stationID, "station", "", "Station ID to link, all stored stations when empty")
	rootCmd.AddCommand(linkCmd)
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Look up the songs of the now playing board on Spotify",
	Run: func(cmd *cobra.Command, args []string) {
		executeLink()
	},
}

func newLinker(ctx context.Context) *spotify.Linker {
	client, err := spotify.NewClient(ctx, spotify.Credentials{
		ClientID:     settings.Spotify.ClientID,
		ClientSecret: settings.Spotify.ClientSecret,
		TokenFile:    settings.Spotify.TokenFile,
	})
	if err != nil {
		logger.Fatalf("Error initializing Spotify client: %v", err)
	}
	return spotify.NewLinker(client, storage.NewSongCache())
}

func executeLink() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := openStore()
	defer closeStore(store)
	linker := newLinker(ctx)

	ids := []string{stationID}
	if stationID == "" {
		var err error
		ids, err = store.GetAllStations()
		if err != nil {
			logger.Fatalf("Error listing stations: %v", err)
		}
	}

	for _, id := range ids {
		entry, err := store.GetNowPlaying(id)
		if err != nil {
			logger.Warnf("No now playing for station %s: %v", id, err)
			continue
		}
		if entry.Cause == string(poller.CauseStopped) {
			fmt.Printf("%s: stopped\n", id)
			continue
		}
		trackID, err := linker.Lookup(ctx, entry.Infos)
		switch {
		case errors.Is(err, spotify.ErrTrackNotFound):
			fmt.Printf("%s: %s - %s not found on Spotify\n", id, entry.Infos.Artist, entry.Infos.Title)
		case err != nil:
			logger.Errorf("Error searching Spotify for station %s: %v", id, err)
		default:
			fmt.Printf("%s: %s - %s https://open.spotify.com/track/%s\n", id, entry.Infos.Artist, entry.Infos.Title, trackID)
		}
	}
}

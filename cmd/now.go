package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/elboulangero/exaile-webradio-title/storage"
)

func init() {
	nowCmd.Flags().StringVar(&stationID, "station", "", "Station ID to show, all stored stations when empty")
	rootCmd.AddCommand(nowCmd)
}

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Show the now playing board",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer closeStore(store)

		if err := printBoard(cmd.OutOrStdout(), store, stationID); err != nil {
			logger.Fatalf("Error reading now playing: %v", err)
		}
	},
}

func printBoard(w io.Writer, store storage.Storage, id string) error {
	ids := []string{id}
	if id == "" {
		var err error
		ids, err = store.GetAllStations()
		if err != nil {
			return err
		}
	}

	for _, id := range ids {
		entry, err := store.GetNowPlaying(id)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintf(w, "%s: nothing stored\n", id)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s - %s [%s] %s (%s %s)\n", entry.StationID,
			entry.Infos.Artist, entry.Infos.Title, entry.Infos.Album, entry.Infos.Date,
			entry.Cause, entry.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

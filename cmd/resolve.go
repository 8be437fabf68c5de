package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elboulangero/exaile-webradio-title/scraper"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Print the station a playback URL belongs to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, ok := scraper.Resolve(args[0])
		if !ok {
			return fmt.Errorf("no station matches %s", args[0])
		}
		station := s.Descriptor()
		fmt.Printf("%s (%s), polled every %v\n", station.Name, station.ID, station.Period)
		return nil
	},
}

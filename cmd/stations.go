package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/elboulangero/exaile-webradio-title/scraper"
)

func init() {
	rootCmd.AddCommand(stationsCmd)
}

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the known stations as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeStations(cmd.OutOrStdout(), scraper.Stations())
	},
}

func writeStations(w io.Writer, strategies []scraper.Strategy) error {
	list := make([]scraper.Station, 0, len(strategies))
	for _, s := range strategies {
		list = append(list, s.Descriptor())
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]scraper.Station{"stations": list}); err != nil {
		return err
	}
	return enc.Close()
}

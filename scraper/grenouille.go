package scraper

import (
	"time"
)

// Grenouille serves plain JSON: an array whose first entry is the track on air.
type Grenouille struct {
	Station
}

var _ Strategy = (*Grenouille)(nil)

func NewGrenouille() *Grenouille {
	return &Grenouille{Station: Station{
		ID:        "grenouille",
		Name:      "Radio Grenouille",
		URI:       "http://live.radiogrenouille.com/live",
		ScrapeURI: "http://www.radiogrenouille.com/wp-content/themes/grenouille/direct.json",
		Period:    5 * time.Second,
		Kind:      PayloadJSON,
	}}
}

func (g *Grenouille) Extract(infos *TrackInfo, payload Payload) {
	if artist, ok := getStringFromKey(payload.Data, 0, "artiste"); ok {
		infos.Artist = artist
	}
	if title, ok := getStringFromKey(payload.Data, 0, "titre"); ok {
		infos.Title = title
	}

	if album, ok := getStringFromKey(payload.Data, 0, "album"); ok {
		infos.Album = album
	}
	if label, ok := getStringFromKey(payload.Data, 0, "label"); ok {
		infos.Album += " " + label
	}
}

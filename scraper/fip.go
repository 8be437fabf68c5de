package scraper

import (
	"strings"
	"time"
)

// FIP publishes a JSON document whose "html" field holds the markup of the
// live block.
type FIP struct {
	Station
}

var _ Strategy = (*FIP)(nil)

func NewFIP() *FIP {
	return &FIP{Station: Station{
		ID:        "fip",
		Name:      "FIP Radio",
		URI:       "http://mp3.live.tv-radio.com/fip/all/",
		ScrapeURI: "http://www.fipradio.fr/sites/default/files/direct-large.json",
		Period:    30 * time.Second,
		Kind:      PayloadJSON,
	}}
}

func (f *FIP) Extract(infos *TrackInfo, payload Payload) {
	markup, ok := getStringFromKey(payload.Data, "html")
	if !ok {
		return
	}
	doc, ok := parseFragment(markup)
	if !ok {
		return
	}

	current := doc.Find(".direct-current").First()
	if current.Length() == 0 {
		return
	}

	if artist, ok := findText(current, ".artiste"); ok {
		infos.Artist = artist
	}
	if title, ok := findText(current, ".titre"); ok {
		infos.Title = title
	}
	if album, ok := findText(current, ".album"); ok {
		infos.Album = album
	}
	if year, ok := findText(current, ".annee"); ok {
		infos.Date = strings.Trim(year, "()")
	}
}

package scraper

import (
	"time"
)

// Nova returns the current track as a markup fragment under track.markup, and
// the running show in a separate "shows" array.
type Nova struct {
	Station
}

var _ Strategy = (*Nova)(nil)

func NewNova() *Nova {
	return &Nova{Station: Station{
		ID:        "nova",
		Name:      "Radio Nova",
		URI:       "http://broadcast.infomaniak.net:80/radionova",
		ScrapeURI: "http://www.novaplanet.com/radionova/ontheair",
		Headers: map[string]string{
			"X-Requested-With": "XMLHttpRequest",
		},
		Period: 45 * time.Second,
		Kind:   PayloadJSON,
	}}
}

func (n *Nova) Extract(infos *TrackInfo, payload Payload) {
	n.extractTrack(infos, payload.Data)
	n.extractShow(infos, payload.Data)
}

func (n *Nova) extractTrack(infos *TrackInfo, data interface{}) {
	markup, ok := getStringFromKey(data, "track", "markup")
	if !ok {
		return
	}
	doc, ok := parseFragment(markup)
	if !ok {
		return
	}

	if tag := doc.Find(".artist").First(); tag.Length() > 0 {
		artist := ownText(tag)
		if artist == "" {
			artist, _ = findText(tag, "a")
		}
		if artist != "" {
			infos.Artist = artist
		}
	}

	if title, ok := findText(doc.Selection, ".title"); ok {
		infos.Title = title
	}
}

// extractShow appends the current show and its air time to the album.
func (n *Nova) extractShow(infos *TrackInfo, data interface{}) {
	if title, ok := getStringFromKey(data, "shows", 0, "title"); ok {
		infos.Album += " - " + title
	}
	if airTime, ok := getStringFromKey(data, "shows", 0, "field_emission_diff_texte_value"); ok {
		infos.Album += " (" + airTime + ")"
	}
}

package scraper

import (
	"strings"
	"time"
)

// TrackInfo holds the four fields reported for a station. All of them are
// always set; extraction falls back to the station defaults.
type TrackInfo struct {
	Artist string `json:"artist" diff:"artist"`
	Title  string `json:"title" diff:"title"`
	Album  string `json:"album" diff:"album"`
	Date   string `json:"date" diff:"date"`
}

// Map returns the closed artist/title/album/date view of the infos.
func (t TrackInfo) Map() map[string]string {
	return map[string]string{
		"artist": t.Artist,
		"title":  t.Title,
		"album":  t.Album,
		"date":   t.Date,
	}
}

func (t *TrackInfo) fields() []*string {
	return []*string{&t.Artist, &t.Title, &t.Album, &t.Date}
}

type PayloadKind string

const (
	PayloadJSON PayloadKind = "json"
	PayloadText PayloadKind = "text"
)

// Payload is a successfully fetched response. Data is set for JSON payloads,
// Text always holds the raw body.
type Payload struct {
	Kind PayloadKind
	Text string
	Data interface{}
}

// Station describes where and how often a station publishes its now playing
// information.
type Station struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	URI       string            `yaml:"uri"`
	ScrapeURI string            `yaml:"scrape_uri"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	Period    time.Duration     `yaml:"period"`
	Kind      PayloadKind       `yaml:"kind"`
}

func (s Station) Descriptor() Station {
	return s
}

// DefaultInfos reports the station name everywhere but in the date.
func (s Station) DefaultInfos() TrackInfo {
	return TrackInfo{
		Artist: s.Name,
		Title:  s.Name,
		Album:  s.Name,
		Date:   "",
	}
}

// Match tells whether a playback URL belongs to the station.
func (s Station) Match(url string) bool {
	return strings.HasPrefix(url, s.URI)
}

// Strategy is implemented by every known station. Extract must leave a field
// untouched when the payload does not provide it.
type Strategy interface {
	Descriptor() Station
	DefaultInfos() TrackInfo
	Match(url string) bool
	Extract(infos *TrackInfo, payload Payload)
}

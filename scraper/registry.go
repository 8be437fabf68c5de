package scraper

// stations is the fixed station table, matched in declaration order.
var stations = []Strategy{
	NewFIP(),
	NewNova(),
	NewGrenouille(),
}

// Resolve returns the first station whose URI prefixes url.
func Resolve(url string) (Strategy, bool) {
	for _, s := range stations {
		if s.Match(url) {
			return s, true
		}
	}
	return nil, false
}

// Lookup returns the station registered under id.
func Lookup(id string) (Strategy, bool) {
	for _, s := range stations {
		if s.Descriptor().ID == id {
			return s, true
		}
	}
	return nil, false
}

// Stations lists every known station in match order.
func Stations() []Strategy {
	out := make([]Strategy, len(stations))
	copy(out, stations)
	return out
}

package scraper

import (
	"html"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Postprocessor normalizes freshly extracted infos before they are compared
// with the last reported ones.
type Postprocessor struct {
	TitleCase bool
}

func (p Postprocessor) Apply(infos TrackInfo) TrackInfo {
	var caser cases.Caser
	if p.TitleCase {
		caser = cases.Title(language.Und)
	}

	for _, field := range infos.fields() {
		v := strings.TrimSpace(html.UnescapeString(*field))
		if p.TitleCase {
			v = caser.String(v)
		}
		*field = v
	}
	return infos
}

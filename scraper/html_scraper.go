package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// parseFragment parses a markup fragment embedded in a JSON payload.
func parseFragment(markup string) (*goquery.Document, bool) {
	if strings.TrimSpace(markup) == "" {
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// findText returns the text of the first element matching selector, with
// runs of whitespace collapsed to one space.
func findText(sel *goquery.Selection, selector string) (string, bool) {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	text := collapseSpaces(found.Text())
	return text, text != ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ownText returns the text held directly by sel, ignoring its children.
func ownText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		if len(child.Nodes) > 0 && child.Nodes[0].Type == html.TextNode {
			b.WriteString(child.Nodes[0].Data)
		}
	})
	return collapseSpaces(b.String())
}

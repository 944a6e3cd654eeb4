package search

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Policy used to strip snippet markup.
// The strict policy removes every tag and leaves only text.
var snippetPolicy = bluemonday.StrictPolicy()

// SanitizeSnippet turns an HTML search snippet into wikitext-safe text.
//
// Backends highlight matched terms with <span class="searchmatch"> in the
// snippets they return; those highlights are converted to wikitext bold.
// Every other tag is stripped, and entities are decoded.
func SanitizeSnippet(s string) string {
	if !strings.Contains(s, "<") {
		return html.UnescapeString(s)
	}

	if strings.Contains(s, "searchmatch") {
		s = boldenMatches(s)
	}

	return html.UnescapeString(snippetPolicy.Sanitize(s))
}

// Replaces searchmatch highlight spans with wikitext bold markers.
//
// If the snippet cannot be parsed as HTML, it is returned unchanged and
// the caller's tag stripping takes care of it.
func boldenMatches(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	doc.Find("span.searchmatch").Each(func(_ int, sel *goquery.Selection) {
		// The ''' markers are inserted as character references so
		// they survive re-serialization as text nodes.
		sel.ReplaceWithHtml("&#39;&#39;&#39;" + html.EscapeString(sel.Text()) + "&#39;&#39;&#39;")
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return s
	}
	return out
}

package searchfn

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

// formatList renders hits as an unordered wikitext list, one bullet per
// result, linked unless links=false.
func formatList(hits []search.Result, links bool) string {
	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		if links {
			lines = append(lines, "* [["+h.Title+"]]")
		} else {
			lines = append(lines, "* "+h.Title)
		}
	}
	return strings.Join(lines, "\n")
}

// formatCount renders the raw hit total minus one.
//
// The subtraction accounts for the searching page itself, which almost
// always matches its own query; the count never goes below zero.
func formatCount(total int) string {
	return strconv.Itoa(max(total-1, 0))
}

// formatPlain renders hit titles joined by the separator.
func formatPlain(hits []search.Result, separator string) string {
	titles := make([]string, 0, len(hits))
	for _, h := range hits {
		titles = append(titles, h.Title)
	}
	return strings.Join(titles, separator)
}

// formatJSON renders the serialized result payload.
func formatJSON(set *search.ResultSet) string {
	b, err := json.Marshal(set)
	if err != nil {
		// Nothing in a ResultSet should be unmarshalable, but degrade
		// to empty output like every other internal failure.
		log.Printf("marshaling result set failed: %v", err)
		return ""
	}
	return string(b)
}

// formatTemplate expands the named template once per hit, passing the
// result fields as template parameters.
func (pf *ParserFunction) formatTemplate(ctx context.Context, hits []search.Result, name string) string {
	var b strings.Builder
	for _, h := range hits {
		out, err := pf.expander.Expand(ctx, name, templateParams(h))
		if err != nil {
			log.Printf("expanding template %q failed: %v", name, err)
			return ""
		}
		b.WriteString(out)
	}
	return b.String()
}

package searchfn

import (
	"strconv"
	"strings"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

// Format selects how results are rendered back into the page.
type Format string

const (
	FormatList     Format = "list"
	FormatCount    Format = "count"
	FormatPlain    Format = "plain"
	FormatJSON     Format = "json"
	FormatTemplate Format = "template"
)

// Hard cap on the limit argument, matching what the search API allows.
const maxLimit = 500

// Params holds the parsed directive arguments with defaults applied.
type Params struct {
	Query      string
	Namespaces []int
	Limit      int
	Offset     int
	Profile    string
	Sort       string
	Rewrite    bool
	Interwiki  bool
	What       string
	Format     Format
	Links      bool
	Separator  string
	Template   string
}

// parseArgs parses raw directive arguments.
//
// The first argument is the query; everything after it is a name=value
// pair. A pair with no "=" is a boolean flag set to true. Assignments are
// applied in order, so on duplicate names the last write wins.
// Unrecognized names and unparsable values are ignored.
func parseArgs(args []string) Params {
	p := Params{
		Limit:     10,
		What:      "text",
		Format:    FormatList,
		Links:     true,
		Separator: ", ",
	}

	if len(args) == 0 {
		return p
	}
	p.Query = strings.TrimSpace(args[0])

	for _, arg := range args[1:] {
		name, value, found := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		// The separator is the one value where whitespace is
		// significant, so it is read before trimming.
		raw := value
		value = strings.TrimSpace(value)
		if !found {
			// A bare name is a boolean flag.
			value = "true"
		}

		switch name {
		case "namespace":
			p.Namespaces = parseNamespaces(value)
		case "limit":
			if n, err := strconv.Atoi(value); err == nil {
				p.Limit = min(max(n, 1), maxLimit)
			}
		case "offset":
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				p.Offset = n
			}
		case "profile":
			p.Profile = value
		case "sort":
			p.Sort = value
		case "rewrite":
			p.Rewrite = parseBool(value)
		case "interwiki":
			p.Interwiki = parseBool(value)
		case "what":
			if value == "title" || value == "text" {
				p.What = value
			}
		case "format":
			switch Format(value) {
			case FormatList, FormatCount, FormatPlain, FormatJSON, FormatTemplate:
				p.Format = Format(value)
			}
		case "links":
			p.Links = parseBool(value)
		case "separator":
			if found {
				p.Separator = raw
			}
		case "template":
			p.Template = value
		}
	}

	return p
}

// toQuery builds the engine query for these parameters.
func (p Params) toQuery() search.Query {
	return search.Query{
		Text:       p.Query,
		Namespaces: p.Namespaces,
		Limit:      p.Limit,
		Offset:     p.Offset,
		What:       p.What,
		Profile:    p.Profile,
		Sort:       p.Sort,
		Rewrite:    p.Rewrite,
		Interwiki:  p.Interwiki,
	}
}

// parseNamespaces parses a comma-separated namespace ID list.
// Entries that aren't numbers are dropped.
func parseNamespaces(value string) []int {
	var out []int
	for _, part := range strings.Split(value, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n >= 0 {
			out = append(out, n)
		}
	}
	return out
}

// parseBool treats the usual falsy spellings as false and everything
// else, including the empty string, as true.
func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "false", "no", "off", "0":
		return false
	}
	return true
}

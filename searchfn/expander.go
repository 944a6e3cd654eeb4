package searchfn

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

// Expander expands one template transclusion.
//
// The host's recursive wikitext renderer implements this; the default
// [MarkupExpander] merely emits the transclusion markup for a downstream
// renderer to pick up.
type Expander interface {
	Expand(ctx context.Context, template string, params []TemplateParam) (string, error)
}

// TemplateParam is one named template argument.
// Parameters are a slice rather than a map to keep expansion order
// deterministic.
type TemplateParam struct {
	Name  string
	Value string
}

// templateParams maps a search result onto template arguments.
// Empty fields are skipped so templates can use {{{url|}}}-style
// defaults.
func templateParams(r search.Result) []TemplateParam {
	params := []TemplateParam{
		{"title", r.Title},
		{"namespace", strconv.Itoa(r.Namespace)},
	}

	if r.Snippet != "" {
		params = append(params, TemplateParam{"snippet", r.Snippet})
	}
	if r.URL != "" {
		params = append(params, TemplateParam{"url", r.URL})
	}
	if r.Size > 0 {
		params = append(params, TemplateParam{"size", strconv.Itoa(r.Size)})
	}
	if r.WordCount > 0 {
		params = append(params, TemplateParam{"wordcount", strconv.Itoa(r.WordCount)})
	}
	if !r.Timestamp.IsZero() {
		params = append(params, TemplateParam{"timestamp", r.Timestamp.UTC().Format(time.RFC3339)})
	}

	return params
}

// MarkupExpander is the default [Expander].
// It emits {{Name|k=v|...}} markup instead of expanding anything, which
// is the right thing when the output is fed back into a wikitext
// renderer that does its own transclusion.
type MarkupExpander struct{}

func (MarkupExpander) Expand(_ context.Context, template string, params []TemplateParam) (string, error) {
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(template)

	for _, p := range params {
		b.WriteString("|")
		b.WriteString(p.Name)
		b.WriteString("=")
		// Pipes inside values would split the transclusion arguments.
		b.WriteString(strings.ReplaceAll(p.Value, "|", "{{!}}"))
	}

	b.WriteString("}}")
	return b.String(), nil
}

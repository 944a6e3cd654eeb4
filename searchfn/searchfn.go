// Package searchfn implements the {{#search:...}} parser function.
//
// The parser function queries the wiki's search index through a
// [search.Engine] and renders the results inline as a list, a count, a
// plain string, a JSON blob, or one template expansion per result.
package searchfn

import (
	"context"
	"log"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/i18n"
	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

// QueryHook can mutate the outgoing query before the backend sees it.
type QueryHook func(*search.Query)

// OutputHook can rewrite the final output string before it is handed
// back to the renderer.
type OutputHook func(string) string

// Call carries the request-scoped bits of one directive evaluation.
type Call struct {
	// Page is the title of the page being rendered.
	// A result with this exact title is always dropped so a page never
	// lists itself.
	Page string

	// Lang selects the language for error messages.
	// Empty means English.
	Lang string

	// Args are the raw directive arguments: the query first, then any
	// number of name=value pairs.
	Args []string
}

// ParserFunction evaluates {{#search:...}} directives against one engine.
//
// The zero value is not useful; use [New].
type ParserFunction struct {
	engine   search.Engine
	expander Expander

	queryHooks  []QueryHook
	outputHooks []OutputHook
}

// New creates a parser function backed by the given engine.
func New(engine search.Engine) *ParserFunction {
	return &ParserFunction{
		engine:   engine,
		expander: MarkupExpander{},
	}
}

// SetExpander replaces the template expander used by format=template.
// Hosts with a real template renderer hook it in here.
func (pf *ParserFunction) SetExpander(e Expander) {
	pf.expander = e
}

// OnQuery registers a hook that runs on the outgoing query, in
// registration order, before the engine is called.
func (pf *ParserFunction) OnQuery(h QueryHook) {
	pf.queryHooks = append(pf.queryHooks, h)
}

// OnOutput registers a hook that runs on the final output string, in
// registration order, before it is returned.
func (pf *ParserFunction) OnOutput(h OutputHook) {
	pf.outputHooks = append(pf.outputHooks, h)
}

// Render evaluates one directive and returns the replacement wikitext.
//
// Only two conditions produce visible errors: a missing query and
// format=template without a template. Anything else that goes wrong
// renders as the empty string, because any other text could be mistaken
// for a genuine result by consumers of the rendered page.
func (pf *ParserFunction) Render(ctx context.Context, call Call) string {
	params := parseArgs(call.Args)

	if params.Query == "" {
		return errorSpan(i18n.Msg(call.Lang, "searchfn-error-empty-query"))
	}
	if params.Format == FormatTemplate && params.Template == "" {
		return errorSpan(i18n.Msg(call.Lang, "searchfn-error-no-template"))
	}

	query := params.toQuery()
	for _, h := range pf.queryHooks {
		h(&query)
	}

	set, err := pf.engine.Search(ctx, query)
	if err != nil {
		log.Printf("search for %q failed: %v", query.Text, err)
		return pf.finish("")
	}
	if set == nil || (set.Total == 0 && len(set.Hits) == 0) {
		// An empty result set is the empty string, never an error.
		return pf.finish("")
	}

	hits := excludeTitle(set.Hits, call.Page)

	var out string
	switch params.Format {
	case FormatCount:
		out = formatCount(set.Total)
	case FormatPlain:
		out = formatPlain(hits, params.Separator)
	case FormatJSON:
		// The self match is filtered here like everywhere else.
		out = formatJSON(&search.ResultSet{
			Hits:       hits,
			Total:      set.Total,
			Suggestion: set.Suggestion,
		})
	case FormatTemplate:
		out = pf.formatTemplate(ctx, hits, params.Template)
	default:
		out = formatList(hits, params.Links)
	}

	// When rewriting was requested and the backend answered a rewritten
	// query, say so above the results the way the search page does.
	// Only the list format has room for prose.
	if params.Rewrite && params.Format == FormatList && set.Suggestion != "" && out != "" {
		note := i18n.Msg(call.Lang, "searchfn-suggestion",
			"[[Special:Search|"+set.Suggestion+"]]")
		out = "''" + note + "''\n" + out
	}

	return pf.finish(out)
}

// Runs the output hooks.
func (pf *ParserFunction) finish(out string) string {
	for _, h := range pf.outputHooks {
		out = h(out)
	}
	return out
}

// excludeTitle drops every hit whose title matches the current page.
func excludeTitle(hits []search.Result, title string) []search.Result {
	if title == "" {
		return hits
	}

	out := hits[:0:0]
	for _, h := range hits {
		if h.Title != title {
			out = append(out, h)
		}
	}
	return out
}

// errorSpan renders a localized message the way MediaWiki renders inline
// errors.
func errorSpan(msg string) string {
	return `<span class="error">` + msg + `</span>`
}

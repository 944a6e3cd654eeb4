package searchfn

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/internal/wikitest"
	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

func render(t *testing.T, eng search.Engine, page string, args ...string) string {
	t.Helper()
	return New(eng).Render(context.Background(), Call{Page: page, Args: args})
}

func TestEmptyQueryError(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Anything")}

	for _, args := range [][]string{{}, {""}, {"   "}, {"  ", "limit=5"}} {
		out := render(t, eng, "", args...)
		want := `<span class="error">No search query was given.</span>`
		if out != want {
			t.Errorf("args %q: got %q, want %q", args, out, want)
		}
	}
}

func TestEmptyQueryErrorIsLocalized(t *testing.T) {
	eng := &wikitest.Engine{}
	out := New(eng).Render(context.Background(), Call{Lang: "de", Args: []string{""}})

	if !strings.Contains(out, "Suchanfrage") {
		t.Fatalf("got %q, want a German message", out)
	}
}

func TestTemplateFormatRequiresTemplate(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Anything")}
	out := render(t, eng, "", "foo", "format=template")

	want := `<span class="error">The template format requires a template= argument.</span>`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestNoResultsIsEmptyString(t *testing.T) {
	eng := &wikitest.Engine{Set: &search.ResultSet{}}

	for _, format := range []string{"list", "count", "plain", "json", "template"} {
		out := render(t, eng, "", "foo", "format="+format, "template=Row")
		if out != "" {
			t.Errorf("format %s: got %q, want empty string", format, out)
		}
	}
}

func TestEngineErrorDegradesToEmpty(t *testing.T) {
	eng := &wikitest.Engine{Err: errors.New("index on fire")}

	if out := render(t, eng, "", "foo"); out != "" {
		t.Fatalf("got %q, want empty string", out)
	}
}

func TestListFormat(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha", "Beta")}

	out := render(t, eng, "", "foo")
	want := "* [[Alpha]]\n* [[Beta]]"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestListFormatWithoutLinks(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha", "Beta")}

	out := render(t, eng, "", "foo", "links=false")
	want := "* Alpha\n* Beta"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSelfMatchIsExcluded(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha", "Sandbox", "Beta")}

	out := render(t, eng, "Sandbox", "foo")
	if strings.Contains(out, "Sandbox") {
		t.Fatalf("got %q, self match should be filtered", out)
	}
}

func TestCountSubtractsSelf(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha", "Beta", "Gamma")}
	eng.Set.Total = 41

	out := render(t, eng, "", "foo", "format=count")
	if out != "40" {
		t.Fatalf("got %q, want %q", out, "40")
	}
}

func TestCountNeverNegative(t *testing.T) {
	eng := &wikitest.Engine{Set: &search.ResultSet{
		Hits:  []search.Result{{Title: "Alpha"}},
		Total: 0,
	}}

	out := render(t, eng, "", "foo", "format=count")
	if out != "0" {
		t.Fatalf("got %q, want %q", out, "0")
	}
}

func TestPlainFormat(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha", "Beta", "Gamma")}

	out := render(t, eng, "", "foo", "format=plain", "separator= / ")
	want := "Alpha / Beta / Gamma"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestJSONFormat(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha", "Beta")}

	out := render(t, eng, "", "foo", "format=json")

	var set search.ResultSet
	if err := json.Unmarshal([]byte(out), &set); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(set.Hits) != 2 || set.Total != 2 {
		t.Fatalf("got %+v", set)
	}
}

func TestJSONFormatExcludesSelf(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha", "Sandbox", "Beta")}

	out := render(t, eng, "Sandbox", "foo", "format=json")

	var set search.ResultSet
	if err := json.Unmarshal([]byte(out), &set); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(set.Hits) != 2 {
		t.Fatalf("got %+v", set)
	}
	for _, h := range set.Hits {
		if h.Title == "Sandbox" {
			t.Fatalf("self match not filtered: %+v", set)
		}
	}
}

func TestRewrittenQueryNote(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha")}
	eng.Set.Suggestion = "pears"

	out := render(t, eng, "", "paers", "rewrite")
	want := "''Showing results for [[Special:Search|pears]] instead.''\n* [[Alpha]]"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}

	// Without rewrite=true the note stays out of the page.
	out = render(t, eng, "", "paers")
	if out != "* [[Alpha]]" {
		t.Fatalf("got %q", out)
	}

	// Non-list formats carry data, not prose.
	out = render(t, eng, "", "paers", "rewrite", "format=plain")
	if out != "Alpha" {
		t.Fatalf("got %q", out)
	}
}

func TestTemplateFormat(t *testing.T) {
	eng := &wikitest.Engine{Set: &search.ResultSet{
		Hits: []search.Result{
			{Title: "Alpha", Namespace: 0, Snippet: "about '''foo''' and such"},
			{Title: "Help:Beta", Namespace: 12},
		},
		Total: 2,
	}}

	out := render(t, eng, "", "foo", "format=template", "template=Search result")
	want := "{{Search result|title=Alpha|namespace=0|snippet=about '''foo''' and such}}" +
		"{{Search result|title=Help:Beta|namespace=12}}"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestTemplateFormatEscapesPipes(t *testing.T) {
	eng := &wikitest.Engine{Set: &search.ResultSet{
		Hits:  []search.Result{{Title: "Alpha", Snippet: "a | b"}},
		Total: 1,
	}}

	out := render(t, eng, "", "foo", "format=template", "template=Row")
	if !strings.Contains(out, "snippet=a {{!}} b") {
		t.Fatalf("got %q, want escaped pipe", out)
	}
}

func TestQueryHook(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha")}
	pf := New(eng)
	pf.OnQuery(func(q *search.Query) {
		q.Text = "intitle:" + q.Text
		q.Limit = 3
	})

	pf.Render(context.Background(), Call{Args: []string{"foo", "limit=50"}})

	if eng.LastQuery.Text != "intitle:foo" {
		t.Errorf("text: got %q", eng.LastQuery.Text)
	}
	if eng.LastQuery.Limit != 3 {
		t.Errorf("limit: got %d", eng.LastQuery.Limit)
	}
}

func TestOutputHook(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha")}
	pf := New(eng)
	pf.OnOutput(func(s string) string {
		return "<!-- cached -->" + s
	})

	out := pf.Render(context.Background(), Call{Args: []string{"foo"}})
	if out != "<!-- cached -->* [[Alpha]]" {
		t.Fatalf("got %q", out)
	}

	// Output hooks also see silent failures.
	eng.Err = errors.New("down")
	out = pf.Render(context.Background(), Call{Args: []string{"foo"}})
	if out != "<!-- cached -->" {
		t.Fatalf("got %q", out)
	}
}

func TestQueryCarriesParams(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha")}
	pf := New(eng)

	pf.Render(context.Background(), Call{Args: []string{
		"foo", "namespace=0,10", "offset=20", "what=title",
		"profile=classic", "sort=last_edit_desc", "rewrite", "interwiki",
	}})

	q := eng.LastQuery
	if q.What != "title" || q.Profile != "classic" || q.Sort != "last_edit_desc" {
		t.Errorf("got %+v", q)
	}
	if !q.Rewrite || !q.Interwiki {
		t.Errorf("flags not carried: %+v", q)
	}
	if q.Offset != 20 || len(q.Namespaces) != 2 {
		t.Errorf("got %+v", q)
	}
}

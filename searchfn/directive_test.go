package searchfn

import (
	"context"
	"reflect"
	"testing"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/internal/wikitest"
)

func TestReplaceDirectives(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha")}
	pf := New(eng)

	in := "intro\n{{#search: foo | links=false }}\noutro"
	out := pf.ReplaceDirectives(context.Background(), "Sandbox", "en", in)

	want := "intro\n* Alpha\noutro"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
	if eng.LastQuery.Text != "foo" {
		t.Fatalf("query: got %q", eng.LastQuery.Text)
	}
}

func TestReplaceDirectivesMultiple(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha")}
	pf := New(eng)

	in := "{{#search: a | format=count }} and {{#search: b | format=count }}"
	out := pf.ReplaceDirectives(context.Background(), "", "en", in)

	if out != "0 and 0" {
		t.Fatalf("got %q", out)
	}
	if eng.LastQuery.Text != "b" {
		t.Fatalf("query: got %q", eng.LastQuery.Text)
	}
}

func TestReplaceDirectivesNestedBraces(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha")}
	pf := New(eng)

	// The transclusion inside the query must not terminate the scan.
	in := "{{#search: {{PAGENAME}} extras | limit=2 }}!"
	out := pf.ReplaceDirectives(context.Background(), "", "en", in)

	if out != "* [[Alpha]]!" {
		t.Fatalf("got %q", out)
	}
	if eng.LastQuery.Text != "{{PAGENAME}} extras" {
		t.Fatalf("query: got %q", eng.LastQuery.Text)
	}
	if eng.LastQuery.Limit != 2 {
		t.Fatalf("limit: got %d", eng.LastQuery.Limit)
	}
}

func TestReplaceDirectivesUnterminated(t *testing.T) {
	eng := &wikitest.Engine{Set: wikitest.Results("Alpha")}
	pf := New(eng)

	in := "before {{#search: foo | limit=2"
	out := pf.ReplaceDirectives(context.Background(), "", "en", in)

	if out != in {
		t.Fatalf("got %q, want input unchanged", out)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		body string
		want []string
	}{
		{"foo", []string{"foo"}},
		{"foo|limit=5|links=false", []string{"foo", "limit=5", "links=false"}},
		{"{{echo|x}}|limit=5", []string{"{{echo|x}}", "limit=5"}},
		{"[[a|b]] c|what=title", []string{"[[a|b]] c", "what=title"}},
	}

	for _, tt := range tests {
		if got := splitArgs(tt.body); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

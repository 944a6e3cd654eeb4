// Package wikitest includes a number of helpers for testing against a
// wiki search backend without having a wiki.
//
// It can stand up a fake action API endpoint over HTTP for testing the
// api engine, and provides a canned in-memory [search.Engine] for
// testing everything that sits on top of one.
package wikitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

// Page is one page of the fake wiki.
type Page struct {
	Title     string
	Namespace int
	Text      string

	// Snippet is returned verbatim by the fake API, HTML highlights
	// and all. Leave empty to synthesize one from Text.
	Snippet string
}

// NewAPIServer starts a fake action API that answers
// action=query&list=search requests from the given pages.
//
// Matching is a dumb case-insensitive substring check over title and
// text; ranking is page order. That is plenty for exercising the
// parameter and response plumbing of the api engine.
func NewAPIServer(t *testing.T, pages []Page) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("action") != "query" || r.FormValue("list") != "search" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}

		query := strings.ToLower(r.FormValue("srsearch"))
		limit, _ := strconv.Atoi(r.FormValue("srlimit"))
		if limit <= 0 {
			limit = 10
		}
		offset, _ := strconv.Atoi(r.FormValue("sroffset"))

		namespaces := map[int]bool{0: true}
		if v := r.FormValue("srnamespace"); v != "" {
			namespaces = map[int]bool{}
			for _, part := range strings.Split(v, "|") {
				if n, err := strconv.Atoi(part); err == nil {
					namespaces[n] = true
				}
			}
		}

		type apiHit struct {
			Ns        int    `json:"ns"`
			Title     string `json:"title"`
			Snippet   string `json:"snippet"`
			Size      int    `json:"size"`
			WordCount int    `json:"wordcount"`
			Timestamp string `json:"timestamp"`
		}

		var hits []apiHit
		for _, p := range pages {
			if !namespaces[p.Namespace] {
				continue
			}
			if !strings.Contains(strings.ToLower(p.Title+" "+p.Text), query) {
				continue
			}

			snippet := p.Snippet
			if snippet == "" {
				snippet = p.Text
			}

			hits = append(hits, apiHit{
				Ns:        p.Namespace,
				Title:     p.Title,
				Snippet:   snippet,
				Size:      len(p.Text),
				WordCount: len(strings.Fields(p.Text)),
				Timestamp: "2024-05-04T12:00:00Z",
			})
		}

		total := len(hits)
		if offset < len(hits) {
			hits = hits[offset:]
		} else {
			hits = nil
		}
		if len(hits) > limit {
			hits = hits[:limit]
		}

		res := map[string]any{
			"batchcomplete": true,
			"query": map[string]any{
				"searchinfo": map[string]any{"totalhits": total},
				"search":     hits,
			},
		}
		json.NewEncoder(w).Encode(res)
	}))

	t.Cleanup(srv.Close)
	return srv
}

// Engine is a canned [search.Engine].
type Engine struct {
	// Set is returned from every search.
	Set *search.ResultSet

	// Err, if set, is returned instead.
	Err error

	// LastQuery records the query of the most recent search.
	LastQuery search.Query
}

var _ search.Engine = &Engine{}

func (e *Engine) Search(_ context.Context, query search.Query) (*search.ResultSet, error) {
	e.LastQuery = query
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Set, nil
}

func (e *Engine) Ping(context.Context) error {
	return e.Err
}

// Results builds a ResultSet from bare titles, with Total set to the
// number of hits.
func Results(titles ...string) *search.ResultSet {
	set := &search.ResultSet{Total: len(titles)}
	for _, t := range titles {
		set.Hits = append(set.Hits, search.Result{Title: t})
	}
	return set
}

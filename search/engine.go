// Package search implements an interface for querying a wiki's search
// index.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Engine is an interface that implements the bare essentials for running
// queries against a search index.
type Engine interface {
	// Search attempts to query the index and returns the matching pages.
	Search(ctx context.Context, query Query) (*ResultSet, error)

	// Ping checks to see if the engine is reachable.
	Ping(ctx context.Context) error
}

// Query holds everything an [Engine] needs to run one search.
type Query struct {
	// Text is the raw search text.
	Text string

	// Namespaces restricts the search to these namespace IDs.
	// An empty slice means the main namespace only.
	Namespaces []int

	// Limit is the maximum number of results to return.
	Limit int

	// Offset skips this many results from the top of the ranking.
	Offset int

	// What selects the search type, either "text" (the default when
	// empty) or "title".
	What string

	// Profile names a ranking profile understood by the backend.
	// Empty means the backend default.
	Profile string

	// Sort names a sort order understood by the backend.
	Sort string

	// Rewrite asks the backend to rewrite queries with likely typos.
	Rewrite bool

	// Interwiki asks the backend to include results from other wikis.
	Interwiki bool
}

// Result represents a single matching page from an [Engine].
type Result struct {
	// Title is the page title, including its namespace prefix.
	Title string `json:"title"`

	// Snippet is a short highlighted extract.
	// Engines hand it over as plain text with highlighted terms
	// wrapped in wikitext bold markers; see [SanitizeSnippet].
	Snippet string `json:"snippet,omitempty"`

	// URL is the full URL of the page, if the engine knows it.
	URL string `json:"url,omitempty"`

	// Namespace is the numeric namespace of the page.
	Namespace int `json:"ns"`

	// Size is the page size in bytes.
	Size int `json:"size,omitempty"`

	// WordCount is the number of words on the page.
	WordCount int `json:"wordcount,omitempty"`

	// Timestamp is the time of the last edit to the page.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// ResultSet is what an [Engine] hands back for one query.
type ResultSet struct {
	// Hits holds the matching pages in ranking order.
	Hits []Result `json:"hits"`

	// Total is the raw total number of hits for the query, which can be
	// larger than len(Hits) when the query was limited.
	Total int `json:"total"`

	// Suggestion holds a rewritten query if the backend decided the
	// original one was likely misspelled, or "" if it did not.
	Suggestion string `json:"suggestion,omitempty"`
}

var engines = map[string]func(config Config) (Engine, error){}
var defaultEngines = []string{}

// Add adds a search engine to the list of supported engines.
//
// If a name is already in use, Add panics.
func Add(name string, isDefault bool, fn func(config Config) (Engine, error)) {
	if _, ok := engines[name]; ok {
		panic(fmt.Sprintf("name %q already taken", name))
	}

	engines[name] = fn
	if isDefault {
		defaultEngines = append(defaultEngines, name)
	}
}

// Supported returns the names of all registered engines, sorted.
func Supported() []string {
	names := make([]string, 0, len(engines))
	for k := range engines {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultEngines returns the names of engines that are usable without
// being explicitly configured.
func DefaultEngines() []string {
	return append([]string(nil), defaultEngines...)
}

// Package engines implements the search backends.
package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

// api reaches the wiki's search index through its own HTTP action API.
// This is the backend to use when the index lives on another host, such
// as a wiki farm with a shared CirrusSearch cluster.
type api struct {
	name        string
	endpoint    string
	articlePath string
	http        *search.HttpClient
}

var (
	_ search.Engine = &api{}
)

func init() {
	// Default is false because this requires configuration.
	search.Add("api", false, func(config search.Config) (search.Engine, error) {
		var ep string
		var ok bool

		if config.Extra == nil {
			return nil, errors.New("no extra configuration despite being required")
		}

		if _, ok = config.Extra["endpoint"]; !ok {
			return nil, errors.New("endpoint not specified")
		}

		if ep, ok = config.Extra["endpoint"].(string); !ok {
			return nil, errors.New("endpoint is not a string")
		}

		// article_path is optional; without it results carry no URL.
		ap, _ := config.Extra["article_path"].(string)

		return &api{
			name:        config.Name,
			endpoint:    ep,
			articlePath: ap,
			http:        config.NewHttpClient(),
		}, nil
	})
}

// Response shape of action=query&list=search with formatversion=2.
type apiResponse struct {
	Query struct {
		SearchInfo struct {
			TotalHits      int    `json:"totalhits"`
			Suggestion     string `json:"suggestion"`
			RewrittenQuery string `json:"rewrittenquery"`
		} `json:"searchinfo"`
		Search []struct {
			Ns        int    `json:"ns"`
			Title     string `json:"title"`
			Snippet   string `json:"snippet"`
			Size      int    `json:"size"`
			WordCount int    `json:"wordcount"`
			Timestamp string `json:"timestamp"`
		} `json:"search"`
	} `json:"query"`
	Errors []struct {
		Code string `json:"code"`
		Text string `json:"text"`
	} `json:"errors"`
}

func (a *api) Search(ctx context.Context, query search.Query) (*search.ResultSet, error) {
	form := url.Values{}

	form.Set("action", "query")
	form.Set("list", "search")
	form.Set("format", "json")
	form.Set("formatversion", "2")
	form.Set("srsearch", query.Text)
	form.Set("srprop", "snippet|size|wordcount|timestamp")

	if len(query.Namespaces) > 0 {
		ns := make([]string, len(query.Namespaces))
		for i, v := range query.Namespaces {
			ns[i] = strconv.Itoa(v)
		}
		form.Set("srnamespace", strings.Join(ns, "|"))
	}

	if query.Limit > 0 {
		form.Set("srlimit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		form.Set("sroffset", strconv.Itoa(query.Offset))
	}
	if query.What != "" {
		form.Set("srwhat", query.What)
	}
	if query.Profile != "" {
		form.Set("srqiprofile", query.Profile)
	}
	if query.Sort != "" {
		form.Set("srsort", query.Sort)
	}
	if query.Rewrite {
		form.Set("srenablerewrites", "1")
	}
	if query.Interwiki {
		form.Set("srinterwiki", "1")
	}

	ctx, cancel := a.http.Context(ctx)
	defer cancel()

	res, err := a.http.Get(ctx, a.endpoint+"?"+form.Encode())
	if err != nil {
		return nil, err
	}

	body, err := search.ReadBody(res)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	var wres apiResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&wres); err != nil {
		return nil, err
	}

	if len(wres.Errors) > 0 {
		return nil, fmt.Errorf("api error %q: %s", wres.Errors[0].Code, wres.Errors[0].Text)
	}

	set := &search.ResultSet{
		Hits:  make([]search.Result, 0, len(wres.Query.Search)),
		Total: wres.Query.SearchInfo.TotalHits,
	}

	// Prefer the rewritten query over the mere suggestion; the former
	// is what the backend actually searched for.
	set.Suggestion = wres.Query.SearchInfo.Suggestion
	if wres.Query.SearchInfo.RewrittenQuery != "" {
		set.Suggestion = wres.Query.SearchInfo.RewrittenQuery
	}

	for _, hit := range wres.Query.Search {
		r := search.Result{
			Title:     hit.Title,
			Snippet:   search.SanitizeSnippet(hit.Snippet),
			Namespace: hit.Ns,
			Size:      hit.Size,
			WordCount: hit.WordCount,
			URL:       a.pageURL(hit.Title),
		}

		// Timestamps are RFC 3339; ignore anything that isn't.
		if hit.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339, hit.Timestamp); err == nil {
				r.Timestamp = ts
			}
		}

		set.Hits = append(set.Hits, r)
	}

	return set, nil
}

// Builds a full page URL from the configured article path.
//
// Returns "" if no article path was configured.
func (a *api) pageURL(title string) string {
	if a.articlePath == "" {
		return ""
	}

	t := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	if strings.Contains(a.articlePath, "$1") {
		return strings.Replace(a.articlePath, "$1", t, 1)
	}
	return a.articlePath + t
}

// Ping checks to see if the engine is reachable.
func (a *api) Ping(ctx context.Context) error {
	ctx, cancel := a.http.Context(ctx)
	defer cancel()

	// Just access the endpoint to see if we're okay.
	_, err := a.http.Get(ctx, a.endpoint)
	return err
}

package main

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/searchfn"
)

type tmplData struct {
	Title   string
	Page    string
	Input   string
	Output  string
	BaseURL string
	Engines []string
}

type renderAPIResponse struct {
	Output string `json:"output"`
}

//go:embed views/*.html
var tmplFS embed.FS

var tmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"engineTiming": getTiming,
	"version": func() string {
		return Version
	},
}).ParseFS(tmplFS, "views/*.html"))

func templateExecute(out io.Writer, name string, data any) {
	if err := tmpl.ExecuteTemplate(out, name, data); err != nil {
		log.Printf("executing template %q failed: %v", name, err)
	}
}

func httpRender(pf *searchfn.ParserFunction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := r.FormValue("page")
		text := r.FormValue("text")

		output := pf.ReplaceDirectives(r.Context(), page, cfg.Lang, text)

		// If requested, we can return the result in JSON.
		if r.Header.Get("Accept") == "application/json" {
			json.NewEncoder(w).Encode(renderAPIResponse{Output: output})
			return
		}

		templateExecute(w, "render.html", tmplData{
			Title:   "Preview",
			Page:    page,
			Input:   text,
			Output:  output,
			BaseURL: cfg.BaseURL,
		})
	}
}

// Sets up the preview HTTP server from the current configuration.
//
// When the context that is passed to this function is canceled, the
// server will be shutdown and the error will be [context.Canceled].
//
// serveHTTP never returns a nil error.
func serveHTTP(ctx context.Context, pf *searchfn.ParserFunction) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := chi.NewRouter()
	r.Use(metricsMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		templateExecute(w, "index.html", tmplData{
			BaseURL: cfg.BaseURL,
			Engines: enabledEngines(),
		})
	})

	// render endpoint is the one most people will be hitting.
	r.Get("/render", httpRender(pf))
	r.Post("/render", httpRender(pf))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		for name := range activeEngines {
			status[name] = getTiming(name).String()
		}
		json.NewEncoder(w).Encode(status)
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,

		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,

		// We want to use our own context
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// Special goroutine to close the server when the context is
	// canceled.
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Printf("listening on %s", cfg.Addr)
	err := srv.ListenAndServe()

	if ctx.Err() != nil {
		// If this is not nil, then the server was closed because the
		// context was canceled.
		// We can safely ignore the error from the server.
		return ctx.Err()
	}

	// Return the error from the server, which is always non-nil.
	return err
}

package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spf",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spf",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	searchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spf",
			Name:      "search_requests_total",
			Help:      "Total number of engine searches",
		},
		[]string{"engine", "status"},
	)

	searchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "spf",
			Name:      "search_request_duration_seconds",
			Help:      "Engine search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"engine"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(searchRequestsTotal)
	prometheus.MustRegister(searchRequestDuration)
}

// metricsMiddleware records HTTP request duration and count.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		// Use the chi route pattern so path labels stay low
		// cardinality.
		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(ww.status)

		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// instrumentedEngine counts and times searches on the wrapped engine.
type instrumentedEngine struct {
	name string
	eng  search.Engine
}

// instrument wraps an engine with search metrics.
func instrument(name string, eng search.Engine) search.Engine {
	return &instrumentedEngine{name: name, eng: eng}
}

func (e *instrumentedEngine) Search(ctx context.Context, query search.Query) (*search.ResultSet, error) {
	start := time.Now()
	set, err := e.eng.Search(ctx, query)

	status := "ok"
	if err != nil {
		status = "error"
	}
	searchRequestsTotal.WithLabelValues(e.name, status).Inc()
	searchRequestDuration.WithLabelValues(e.name).Observe(time.Since(start).Seconds())

	return set, err
}

func (e *instrumentedEngine) Ping(ctx context.Context) error {
	return e.eng.Ping(ctx)
}

package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/internal/brotlihack"
)

// HttpClient is a helpful wrapper around [fasthttp.Client] that does
// useful things to HTTP requests and responses you would've had to write
// anyway.
//
// The zero value is ready to use.
type HttpClient struct {
	// Timeout is the maximum amount of time to wait for the request to
	// complete.
	Timeout time.Duration

	// UserAgent holds the value of the User-Agent header of HTTP
	// requests.
	//
	// If UserAgent is empty, then [DefaultUserAgent] is used.
	UserAgent string

	// Debug logs all HTTP requests sent through this HttpClient.
	Debug bool

	http *fasthttp.Client
	once sync.Once
}

// HttpError represents a generic HTTP error.
type HttpError struct {
	// Status code of response.
	Status int

	// URL of request.
	URL string

	// Method of request.
	Method string
}

func (h HttpError) Error() string {
	return fmt.Sprintf("%s %q failed with status code %d", h.Method, h.URL, h.Status)
}

// Ensures that the HttpClient is ready to perform requests.
func (h *HttpClient) ensureReady() {
	h.once.Do(func() {
		if h.http == nil {
			h.http = &fasthttp.Client{
				NoDefaultUserAgentHeader: true,
				DialDualStack:            true,
				ReadTimeout:              h.Timeout,
				WriteTimeout:             h.Timeout,
			}
		}
	})
}

// Context creates a new context from a parent context using the
// configured timeout.
func (h *HttpClient) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.Timeout)
}

// Get a non-empty user agent.
func (h *HttpClient) ua() string {
	if h.UserAgent == "" {
		return DefaultUserAgent
	}
	return h.UserAgent
}

// New creates a new HTTP request.
func (h *HttpClient) New(ctx context.Context, method, url string, body io.Reader) (*fasthttp.Request, error) {
	h.ensureReady()

	req := fasthttp.AcquireRequest()

	req.Header.SetMethod(method)
	req.SetRequestURI(url)

	req.Header.Add("User-Agent", h.ua())
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Accept-Encoding", "gzip, deflate, br")

	if body != nil {
		req.SetBodyStream(body, -1)
	}

	return req, nil
}

// Do performs a request and returns the response.
func (h *HttpClient) Do(req *fasthttp.Request) (*fasthttp.Response, error) {
	res := fasthttp.AcquireResponse()
	return res, h.http.DoRedirects(req, res, 5)
}

// Get performs a GET request on a given URL.
//
// If the server responds with a non-200 status code, then the returned
// response will be nil and err will be of type [HttpError].
func (h *HttpClient) Get(ctx context.Context, url string) (*fasthttp.Response, error) {
	h.ensureReady()

	if h.Debug {
		log.Printf("GET %s", url)
	}

	req, err := h.New(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	res, err := h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}

	if res.StatusCode() != 200 {
		// The request itself succeeded but we aren't interested in
		// anything we got due to the failure status.
		return nil, HttpError{Status: res.StatusCode(), URL: url, Method: "GET"}
	}

	return res, nil
}

// Post performs a POST request on a given URL.
//
// If the server responds with a non-200 status code, then the returned
// response will be nil and err will be of type [HttpError].
func (h *HttpClient) Post(ctx context.Context, url string, contentType string, body io.Reader) (*fasthttp.Response, error) {
	h.ensureReady()

	if h.Debug {
		log.Printf("POST %s", url)
	}

	req, err := h.New(ctx, "POST", url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.SetContentType(contentType)

	res, err := h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}

	if res.StatusCode() != 200 {
		return nil, HttpError{Status: res.StatusCode(), URL: url, Method: "POST"}
	}

	return res, nil
}

// ReadBody returns the uncompressed body of a response.
//
// Brotli responses are decoded through [brotlihack] because some servers
// send slightly more input than the decoder expects, which fasthttp
// treats as fatal.
func ReadBody(res *fasthttp.Response) ([]byte, error) {
	if string(res.Header.ContentEncoding()) == "br" {
		return io.ReadAll(brotlihack.NewReader(bytes.NewReader(res.Body())))
	}
	return res.BodyUncompressed()
}

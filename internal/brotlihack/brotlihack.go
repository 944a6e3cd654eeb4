// Package brotlihack implements a wrapper to workaround a non-fatal error
// returned by the Brotli package.
//
// Some servers (notably CDN frontends sitting in front of wiki farms)
// pad their Brotli responses, and the decompressor we're using treats the
// leftover bytes as an error even though the stream decoded fine:
// https://github.com/andybalholm/brotli/blob/57434b509141a6ee9681116b8d552069126e615f/reader.go#L74-L76
// https://github.com/valyala/fasthttp/blob/b06f4e21d918faa84ae0aa12c9e4dc7285b9767e/http.go#L505-L512
//
// So the fix is to wrap the decompressor and explicitly ignore that
// "brotli: excessive input" error.
package brotlihack

import (
	"io"

	"github.com/andybalholm/brotli"
)

type brotliHackReader struct {
	r *brotli.Reader
}

var (
	// Make sure we implement io.Reader.
	_ io.Reader = &brotliHackReader{}
)

// NewReader creates a new wrapped Brotli decoder.
func NewReader(r io.Reader) *brotliHackReader {
	return &brotliHackReader{
		r: brotli.NewReader(r),
	}
}

// Reads data from the Brotli reader.
func (b *brotliHackReader) Read(data []byte) (n int, err error) {
	n, err = b.r.Read(data)
	if err != nil && err.Error() == "brotli: excessive input" {
		// The stream is complete; treat the leftover bytes as EOF.
		err = io.EOF
	}

	return
}

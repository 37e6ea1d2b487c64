package client

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// acceptPayload prefers the JSON envelope but keeps markup as an acceptable
// fallback. The parser sniffs the body anyway, so servers that ignore this
// header still work.
const acceptPayload = "application/json, application/xml;q=0.9"

// productName is sent as X-Plex-Product so the media server can attribute requests.
const productName = "ReelRoulette"

// upstreamTransport wraps an http.RoundTripper with the headers every media
// server request carries, and transparently decodes gzip, brotli and zstd bodies.
type upstreamTransport struct {
	transport http.RoundTripper
	userAgent string
}

// newUpstreamTransport creates a transport that sets the client headers and
// handles response decompression.
func newUpstreamTransport(base http.RoundTripper, userAgent string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &upstreamTransport{transport: base, userAgent: userAgent}
}

// RoundTrip sets Accept, Accept-Encoding, User-Agent and X-Plex-Product when the
// caller did not, then decompresses the response body.
func (t *upstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = cloneRequest(req)

	setDefaultHeader(req.Header, "Accept", acceptPayload)
	setDefaultHeader(req.Header, "Accept-Encoding", "gzip, br, zstd")
	setDefaultHeader(req.Header, "X-Plex-Product", productName)
	if t.userAgent != "" {
		setDefaultHeader(req.Header, "User-Agent", t.userAgent)
	}

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// HEAD, 204 and 304 responses have nothing to decode
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	encoding := parseContentEncoding(resp.Header.Get("Content-Encoding"))
	if encoding == "" {
		return resp, nil
	}

	var reader io.ReadCloser
	switch encoding {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
	case "br":
		reader = io.NopCloser(brotli.NewReader(resp.Body))
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		reader = zr.IOReadCloser()
	default:
		return resp, nil
	}

	resp.Body = &decompressReadCloser{
		reader:       reader,
		originalBody: resp.Body,
	}

	// Length and encoding no longer describe the body the caller reads
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1

	return resp, nil
}

func setDefaultHeader(h http.Header, key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}

// decompressReadCloser closes both the decompressor and the original body.
type decompressReadCloser struct {
	reader       io.ReadCloser
	originalBody io.ReadCloser
}

func (d *decompressReadCloser) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressReadCloser) Close() error {
	readerErr := d.reader.Close()
	bodyErr := d.originalBody.Close()
	if readerErr != nil {
		return readerErr
	}
	return bodyErr
}

// cloneRequest creates a shallow copy of the request with its own header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req

	r.Header = make(http.Header, len(req.Header))
	for k, v := range req.Header {
		r.Header[k] = append([]string(nil), v...)
	}

	return r
}

// parseContentEncoding returns the outermost (last applied) encoding of a
// Content-Encoding header, lower-cased, or "" when there is none.
func parseContentEncoding(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
}

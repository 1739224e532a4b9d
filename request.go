package hubclient

import (
	"net/http"
	"net/url"
)

// Request describes a single call made against the hub.
type Request struct {
	Method  string
	URL     *url.URL
	Headers http.Header
	// Body is sent as-is when it is a string, []byte or io.Reader. Any other
	// value is JSON-encoded, which requires a JSON Content-Type header.
	Body any

	// RawBody holds the encoded body as it went over the wire (strings and
	// encoded values only, readers are not captured).
	RawBody string
}

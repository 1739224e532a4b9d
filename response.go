package hubclient

import (
	"net/http"
	"strings"
	"time"
)

// Response is the normalized form of an HTTP response received from the hub.
// Non-2xx statuses are ordinary responses; callers assert on them.
type Response struct {
	Request    *Request // The request that led to this response
	Status     string   // e.g., "201 Created"
	StatusCode int      // e.g., 201
	Proto      string   // e.g., "HTTP/1.1"
	Headers    http.Header
	// Body is the decoded JSON value when the response media type is JSON,
	// otherwise the body text.
	Body       any
	RawBody    []byte
	BodyString string
	Duration   time.Duration
	// Error collects problems met while processing a response that did arrive,
	// e.g. an unreadable body or malformed JSON. Transport failures are
	// returned from the call instead.
	Error error
}

// Header returns the first value of the named header, case-insensitively.
func (r *Response) Header(name string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}

// IsRedirect reports whether the response carries a 3xx status.
func (r *Response) IsRedirect() bool {
	return r != nil && r.StatusCode >= 300 && r.StatusCode < 400
}

// Fields exposes the response as a plain object with lower-cased header
// names, so accessor paths such as ["headers", "content-type"] or
// ["body", "owner"] can be walked.
func (r *Response) Fields() map[string]any {
	if r == nil {
		return nil
	}
	headers := make(map[string]any, len(r.Headers))
	for key, values := range r.Headers {
		if len(values) == 0 {
			continue
		}
		headers[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return map[string]any{
		"statusCode": r.StatusCode,
		"status":     r.Status,
		"headers":    headers,
		"body":       r.Body,
	}
}

// ExpectedResponse defines what an actual response is validated against.
type ExpectedResponse struct {
	StatusCode *int        `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Headers    http.Header `json:"headers,omitempty" yaml:"headers,omitempty"`
	// BodyFields maps an accessor path to its expected value. Paths are either
	// dotted ("body.owner") or JSONPath ("$.body.owner").
	BodyFields map[string]any `json:"bodyFields,omitempty" yaml:"bodyFields,omitempty"`
	// Body is compared as normalized JSON when both sides parse as JSON,
	// otherwise as trimmed text.
	Body *string `json:"body,omitempty" yaml:"body,omitempty"`
}

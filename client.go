package hubclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Client issues requests against the hub under test and normalizes the
// responses. It holds the base URL, default headers and the polling policy.
type Client struct {
	httpClient     *http.Client
	BaseURL        string
	DefaultHeaders http.Header
	PollPolicy     PollPolicy
}

// NewClient creates a new hub client.
// By default redirects are not followed automatically; see FollowRedirectIfPresent.
func NewClient(options ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient:     newHTTPClient(0),
		DefaultHeaders: make(http.Header),
		PollPolicy:     DefaultPollPolicy(),
	}

	for _, option := range options {
		err := option(c)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Get issues a GET request. headers may be nil.
func (c *Client) Get(ctx context.Context, rawURL string, headers http.Header) (*Response, error) {
	return c.send(ctx, http.MethodGet, rawURL, headers, nil)
}

// Post issues a POST request. A body that is not a string, []byte or
// io.Reader is JSON-encoded and requires Content-Type: application/json.
func (c *Client) Post(ctx context.Context, rawURL string, headers http.Header, body any) (*Response, error) {
	return c.send(ctx, http.MethodPost, rawURL, headers, body)
}

// Put issues a PUT request with the same body rules as Post.
func (c *Client) Put(ctx context.Context, rawURL string, headers http.Header, body any) (*Response, error) {
	return c.send(ctx, http.MethodPut, rawURL, headers, body)
}

// Delete issues a DELETE request. headers may be nil.
func (c *Client) Delete(ctx context.Context, rawURL string, headers http.Header) (*Response, error) {
	return c.send(ctx, http.MethodDelete, rawURL, headers, nil)
}

func (c *Client) send(ctx context.Context, method, rawURL string, headers http.Header, body any) (*Response, error) {
	u, err := c.resolveURL(rawURL)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, &Request{
		Method:  method,
		URL:     u,
		Headers: headers,
		Body:    body,
	})
}

// Do sends the request and returns the normalized response.
// The returned error is non-nil only for failures that prevented a response
// from arriving (see TransportError) or for a request that could not be built.
// Any HTTP status, including 4xx and 5xx, yields a Response and a nil error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("cannot execute a nil request")
	}
	if req.URL == nil {
		return nil, fmt.Errorf("request URL is unexpectedly nil")
	}

	bodyReader, err := encodeBody(req, c.effectiveContentType(req))
	if err != nil {
		return nil, err
	}

	urlToUse, err := c.resolveURL(req.URL.String())
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, urlToUse.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	for key, values := range c.DefaultHeaders {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	for key, values := range req.Headers {
		httpReq.Header.Del(key)
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	slog.Debug("Do: sending request", "method", req.Method, "url", urlToUse.String())
	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		slog.Debug("Do: transport failure", "method", req.Method, "url", urlToUse.String(), "error", err)
		return nil, &TransportError{Method: req.Method, URL: urlToUse.String(), Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	resp := &Response{
		Request:  req,
		Duration: duration,
	}
	resp.Request.URL = urlToUse

	bodyBytes, readErr := io.ReadAll(httpResp.Body)
	populateResponseDetails(resp, httpResp, bodyBytes, readErr)
	slog.Debug("Do: received response", "method", req.Method, "url", urlToUse.String(),
		"status", resp.StatusCode, "duration", duration)
	return resp, nil
}

// effectiveContentType is the Content-Type the outgoing request will carry:
// the request's own header, else the client default.
func (c *Client) effectiveContentType(req *Request) string {
	if values := req.Headers.Values("Content-Type"); len(values) > 0 {
		return values[0]
	}
	return c.DefaultHeaders.Get("Content-Type")
}

// encodeBody turns Request.Body into a reader and records RawBody.
func encodeBody(req *Request, contentType string) (io.Reader, error) {
	switch body := req.Body.(type) {
	case nil:
		return nil, nil
	case string:
		req.RawBody = body
		return strings.NewReader(body), nil
	case []byte:
		req.RawBody = string(body)
		return bytes.NewReader(body), nil
	case io.Reader:
		return body, nil
	}

	if !isJSONMediaType(contentType) {
		return nil, fmt.Errorf("%w: %T requires Content-Type: application/json", ErrUnsupportedBody, req.Body)
	}
	encoded, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body as JSON: %w", err)
	}
	req.RawBody = string(encoded)
	return bytes.NewReader(encoded), nil
}

// populateResponseDetails copies relevant information from an *http.Response and body to our *Response.
func populateResponseDetails(resp *Response, httpResp *http.Response, bodyBytes []byte, bodyReadErr error) {
	resp.Status = httpResp.Status
	resp.StatusCode = httpResp.StatusCode
	resp.Proto = httpResp.Proto
	resp.Headers = httpResp.Header

	if bodyReadErr != nil {
		readErrWrapped := fmt.Errorf("failed to read response body: %w", bodyReadErr)
		resp.Error = multierror.Append(resp.Error, readErrWrapped).ErrorOrNil()
	}
	resp.RawBody = bodyBytes
	resp.BodyString = string(bodyBytes)
	resp.Body = resp.BodyString

	if len(bodyBytes) == 0 || !isJSONMediaType(httpResp.Header.Get("Content-Type")) {
		return
	}
	var decoded any
	if err := json.Unmarshal(bodyBytes, &decoded); err != nil {
		slog.Warn("response declared JSON but did not parse", "status", resp.StatusCode, "error", err)
		decodeErr := fmt.Errorf("failed to decode JSON response body: %w", err)
		resp.Error = multierror.Append(resp.Error, decodeErr).ErrorOrNil()
		return
	}
	resp.Body = decoded
}

// isJSONMediaType reports whether a Content-Type value denotes JSON.
func isJSONMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

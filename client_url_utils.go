package hubclient

import (
	"fmt"
	"net/url"
	"strings"
)

// resolveURL parses rawURL and, when it is relative, resolves it against the
// client's BaseURL. A base path such as "http://hub/api" is kept as a prefix,
// so "channel/x" and "/channel/x" both become "http://hub/api/channel/x".
func (c *Client) resolveURL(rawURL string) (*url.URL, error) {
	requestURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL %q: %w", rawURL, err)
	}

	if requestURL.IsAbs() || c.BaseURL == "" {
		return requestURL, nil
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BaseURL %s: %w", c.BaseURL, err)
	}

	if base.Path != "" && base.Path != "/" {
		joined := joinURLPaths(base, requestURL)
		if joined == nil {
			return nil, fmt.Errorf("failed to join URL paths: %s and %s", base.Path, requestURL.Path)
		}
		return joined, nil
	}

	if !strings.HasPrefix(requestURL.Path, "/") {
		requestURL.Path = "/" + requestURL.Path
	}
	return base.ResolveReference(requestURL), nil
}

// joinURLPaths joins base and request paths, keeping the request's query and fragment.
func joinURLPaths(base *url.URL, requestURL *url.URL) *url.URL {
	targetPath, err := url.JoinPath(base.Path, requestURL.Path)
	if err != nil {
		return nil
	}

	tempURL := url.URL{
		Scheme:   base.Scheme,
		Opaque:   base.Opaque,
		User:     base.User,
		Host:     base.Host,
		Path:     targetPath,
		RawQuery: requestURL.RawQuery,
		Fragment: requestURL.Fragment,
	}

	finalResolvedURL, err := url.Parse(tempURL.String())
	if err != nil {
		return nil
	}
	return finalResolvedURL
}

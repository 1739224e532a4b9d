package hubclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// FollowRedirectIfPresent issues a GET to the Location of a 3xx response and
// returns that response. Any other response, including a 3xx without a
// Location header, is returned unchanged. Only one hop is followed: if the
// target redirects again, that redirect response is returned as is.
func (c *Client) FollowRedirectIfPresent(ctx context.Context, resp *Response) (*Response, error) {
	if !resp.IsRedirect() {
		return resp, nil
	}
	location := resp.Header("Location")
	if location == "" {
		return resp, nil
	}

	target, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect location %q: %w", location, err)
	}
	if resp.Request != nil && resp.Request.URL != nil {
		target = resp.Request.URL.ResolveReference(target)
	}

	slog.Debug("FollowRedirectIfPresent: following", "status", resp.StatusCode, "location", target.String())
	return c.Get(ctx, target.String(), nil)
}

package hubclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ChannelCollectionPath is the hub path that channels are created under.
const ChannelCollectionPath = "channel"

// ChannelConfig is the creation body of a channel. Name is filled in by
// CreateChannel when left empty.
type ChannelConfig struct {
	Name              string   `json:"name" yaml:"name"`
	Owner             string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	TTLDays           int      `json:"ttlDays,omitempty" yaml:"ttlDays,omitempty"`
	MaxItems          int      `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	Tags              []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	ReplicationSource string   `json:"replicationSource,omitempty" yaml:"replicationSource,omitempty"`
	Storage           string   `json:"storage,omitempty" yaml:"storage,omitempty"`
}

// JSONHeaders returns a header set declaring a JSON body.
func JSONHeaders() http.Header {
	return http.Header{"Content-Type": []string{"application/json"}}
}

// ChannelURL returns the channel collection URL, or the URL of a resource
// below it when segments are given: ChannelURL("foo", "latest") is
// "<base>/channel/foo/latest".
func (c *Client) ChannelURL(segments ...string) string {
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, ChannelCollectionPath)
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	path := strings.Join(escaped, "/")
	u, err := c.resolveURL(path)
	if err != nil {
		return path
	}
	return u.String()
}

// CreateChannel posts cfg to the channel collection. When the hub accepts it,
// the channel resource is polled until it answers 200, so later steps do not
// race the hub's eventual consistency. The POST response is returned either way.
func (c *Client) CreateChannel(ctx context.Context, name string, cfg *ChannelConfig) (*Response, error) {
	body := ChannelConfig{}
	if cfg != nil {
		body = *cfg
	}
	if name != "" {
		body.Name = name
	}
	if body.Name == "" {
		return nil, fmt.Errorf("create channel: name is required")
	}

	resp, err := c.Post(ctx, c.ChannelURL(), JSONHeaders(), body)
	if err != nil {
		return nil, fmt.Errorf("create channel %s: %w", body.Name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	if _, err := c.Poll(ctx, c.ChannelURL(body.Name), nil, StatusIs(http.StatusOK)); err != nil {
		return resp, fmt.Errorf("create channel %s: waiting for visibility: %w", body.Name, err)
	}
	return resp, nil
}

// GetHubItem fetches an item or resource, polling until it is visible
// (any 2xx or 3xx status) and then following one redirect, as the hub
// answers "latest" style URLs with a 303.
func (c *Client) GetHubItem(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := c.Poll(ctx, rawURL, nil, StatusBetween(200, 399))
	if err != nil {
		return nil, err
	}
	return c.FollowRedirectIfPresent(ctx, resp)
}

package hubclient

import (
	"net/http"
	"time"
)

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client) error

// WithHTTPClient allows providing a custom http.Client.
// The client is used as given; leave CheckRedirect unset only if automatic
// redirect following is wanted.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc == nil {
			c.httpClient = newHTTPClient(0)
		} else {
			c.httpClient = hc
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		c.httpClient.Timeout = timeout
		return nil
	}
}

// WithBaseURL sets the hub base URL relative request URLs are resolved against.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) error {
		c.BaseURL = baseURL
		return nil
	}
}

// WithDefaultHeader adds a default header to be sent with every request.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) error {
		c.DefaultHeaders.Add(key, value)
		return nil
	}
}

// WithDefaultHeaders adds multiple default headers.
func WithDefaultHeaders(headers http.Header) ClientOption {
	return func(c *Client) error {
		for key, values := range headers {
			for _, value := range values {
				c.DefaultHeaders.Add(key, value)
			}
		}
		return nil
	}
}

// WithPollPolicy replaces the policy used by Poll, GetHubItem and CreateChannel.
func WithPollPolicy(policy PollPolicy) ClientOption {
	return func(c *Client) error {
		if err := policy.validate(); err != nil {
			return err
		}
		c.PollPolicy = policy
		return nil
	}
}

package hubclient

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bmcszk/go-hubclient/internal/hubtwin"
	"github.com/stretchr/testify/require"
)

// Helper to create a mock server
func startMockServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

// startTwin starts a hub twin and returns it with a client pointed at it.
func startTwin(t *testing.T, options ...hubtwin.Option) (*hubtwin.Twin, *Client) {
	t.Helper()
	twin := hubtwin.New(options...)
	server := twin.Server()
	t.Cleanup(server.Close)

	client, err := NewClient(WithBaseURL(server.URL), WithPollPolicy(fastPollPolicy(10)))
	require.NoError(t, err)
	return twin, client
}

// fastPollPolicy keeps polling tests quick.
func fastPollPolicy(attempts int) PollPolicy {
	return PollPolicy{
		MaxAttempts:     attempts,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		Multiplier:      1.5,
	}
}

// mockRoundTripper is a helper for mocking http.RoundTripper
type mockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.RoundTripFunc != nil {
		return m.RoundTripFunc(req)
	}
	return nil, fmt.Errorf("RoundTripFunc not set")
}

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

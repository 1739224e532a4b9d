package hubclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRedirectIfPresent_NonRedirectIsIdentity(t *testing.T) {
	client, _ := NewClient()
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNotFound, http.StatusInternalServerError} {
		// Given
		resp := &Response{StatusCode: status, Headers: http.Header{"Location": []string{"http://elsewhere"}}}

		// When
		got, err := client.FollowRedirectIfPresent(context.Background(), resp)

		// Then
		require.NoError(t, err)
		assert.Same(t, resp, got, "status %d", status)
	}
}

func TestFollowRedirectIfPresent_RedirectWithoutLocation(t *testing.T) {
	client, _ := NewClient()
	resp := &Response{StatusCode: http.StatusSeeOther, Headers: http.Header{}}

	got, err := client.FollowRedirectIfPresent(context.Background(), resp)

	require.NoError(t, err)
	assert.Same(t, resp, got)
}

func TestFollowRedirectIfPresent_FollowsOneHop(t *testing.T) {
	// Given a chain /a -> /b -> /c
	var hitsC atomic.Int32
	server := startMockServer(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			http.Redirect(w, r, "/b", http.StatusSeeOther)
		case "/b":
			http.Redirect(w, r, "/c", http.StatusFound)
		case "/c":
			hitsC.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{"at":"c"}`)
		}
	})
	defer server.Close()
	client, _ := NewClient()
	first, err := client.Get(context.Background(), server.URL+"/a", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSeeOther, first.StatusCode)

	// When
	second, err := client.FollowRedirectIfPresent(context.Background(), first)

	// Then only one hop was taken
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, second.StatusCode)
	assert.Equal(t, server.URL+"/b", second.Request.URL.String())
	assert.Equal(t, int32(0), hitsC.Load())

	// And following again reaches the end of the chain
	third, err := client.FollowRedirectIfPresent(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, third.StatusCode)
	at, _ := FromObjectPath([]string{"body", "at"}, third)
	assert.Equal(t, "c", at)
}

func TestFollowRedirectIfPresent_RelativeLocationUsesRequestURL(t *testing.T) {
	// Given
	server := startMockServer(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channel/foo/2026/10/19/00/00/00/000/abcdef", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	defer server.Close()
	requestURL, _ := url.Parse(server.URL + "/channel/foo/latest")
	resp := &Response{
		Request:    &Request{Method: http.MethodGet, URL: requestURL},
		StatusCode: http.StatusSeeOther,
		Headers:    http.Header{"Location": []string{"2026/10/19/00/00/00/000/abcdef"}},
	}
	client, _ := NewClient()

	// When
	got, err := client.FollowRedirectIfPresent(context.Background(), resp)

	// Then
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, got.StatusCode)
}

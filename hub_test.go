package hubclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bmcszk/go-hubclient/internal/hubtwin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelURL(t *testing.T) {
	client, _ := NewClient(WithBaseURL("http://hub:9080"))

	assert.Equal(t, "http://hub:9080/channel", client.ChannelURL())
	assert.Equal(t, "http://hub:9080/channel/foo", client.ChannelURL("foo"))
	assert.Equal(t, "http://hub:9080/channel/foo/latest", client.ChannelURL("foo", "latest"))
}

func TestCreateChannel_WaitsForVisibility(t *testing.T) {
	// Given a hub that only shows new channels after a delay
	twin, client := startTwin(t, hubtwin.WithVisibilityDelay(60*time.Millisecond))
	name := RandomChannelName()

	// When
	resp, err := client.CreateChannel(context.Background(), name, &ChannelConfig{Owner: "pwned", TTLDays: 7})

	// Then
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	owner, _ := StringFromObjectPath([]string{"body", "owner"}, resp)
	assert.Equal(t, "pwned", owner)
	assert.Greater(t, twin.Hits(http.MethodGet, "/channel/"+name), 1, "expected polling while invisible")

	// And the channel is immediately readable afterwards
	get, err := client.Get(context.Background(), client.ChannelURL(name), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get.StatusCode)
	ttl, ok := IntFromObjectPath([]string{"body", "ttlDays"}, get)
	require.True(t, ok)
	assert.Equal(t, 7, ttl)
}

func TestCreateChannel_NameArgumentWins(t *testing.T) {
	_, client := startTwin(t)
	name := RandomChannelName()

	resp, err := client.CreateChannel(context.Background(), name, &ChannelConfig{Name: "ignored"})

	require.NoError(t, err)
	got, _ := FromObjectPath([]string{"body", "name"}, resp)
	assert.Equal(t, name, got)
}

func TestCreateChannel_ConflictIsReturnedWithoutPolling(t *testing.T) {
	// Given
	twin, client := startTwin(t)
	name := RandomChannelName()
	_, err := client.CreateChannel(context.Background(), name, nil)
	require.NoError(t, err)
	getsBefore := twin.Hits(http.MethodGet, "/channel/"+name)

	// When
	resp, err := client.CreateChannel(context.Background(), name, nil)

	// Then
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, getsBefore, twin.Hits(http.MethodGet, "/channel/"+name))
}

func TestCreateChannel_InvalidNameIsAResponse(t *testing.T) {
	_, client := startTwin(t)

	resp, err := client.CreateChannel(context.Background(), "no spaces allowed", nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateChannel_RequiresName(t *testing.T) {
	client, _ := NewClient()

	_, err := client.CreateChannel(context.Background(), "", nil)

	require.Error(t, err)
}

func TestGetHubItem_FollowsLatestRedirect(t *testing.T) {
	// Given a channel with one item
	_, client := startTwin(t)
	ctx := context.Background()
	name := RandomChannelName()
	_, err := client.CreateChannel(ctx, name, nil)
	require.NoError(t, err)
	insert, err := client.Post(ctx, client.ChannelURL(name), JSONHeaders(), map[string]any{"count": 1})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, insert.StatusCode)
	itemURL, ok := StringFromObjectPath([]string{"body", "_links", "self", "href"}, insert)
	require.True(t, ok)

	// When
	resp, err := client.GetHubItem(ctx, client.ChannelURL(name, "latest"))

	// Then
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, itemURL, resp.Request.URL.String())
	assert.Equal(t, itemURL, insert.Header("Location"))
	count, _ := IntFromObjectPath([]string{"body", "count"}, resp)
	assert.Equal(t, 1, count)
}

func TestGetHubItem_MissingReturnsLast404(t *testing.T) {
	// Given
	twin, client := startTwin(t)
	client.PollPolicy = fastPollPolicy(3)
	name := RandomChannelName()

	// When
	resp, err := client.GetHubItem(context.Background(), client.ChannelURL(name))

	// Then
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 3, twin.Hits(http.MethodGet, "/channel/"+name))
}

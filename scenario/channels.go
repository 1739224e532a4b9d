package scenario

import (
	"net/http"
	"testing"

	hubclient "github.com/bmcszk/go-hubclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// OwnerPwned is the owner written by ChannelCreationWithOwner.
const OwnerPwned = "pwned"

// ChannelCreationWithOwner checks that a channel created with an owner
// reports that owner, both in the creation response and afterwards.
func ChannelCreationWithOwner(channelName string) Scenario {
	return Scenario{
		Name: "channel creation with owner",
		Steps: []Step{
			{
				Name: "verifies the channel doesn't exist yet",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.Get(h.Context(t), h.Client.ChannelURL(channelName), nil)
					require.NoError(t, err)
					status, _ := hubclient.GetProp("statusCode", resp)
					assert.Equal(t, http.StatusNotFound, status)
				},
			},
			{
				Name: "creates a channel with an owner",
				Run: func(t *testing.T, h *Harness) {
					body := map[string]any{"name": channelName, "owner": OwnerPwned}
					resp, err := h.Client.Post(h.Context(t), h.Client.ChannelURL(), hubclient.JSONHeaders(), body)
					require.NoError(t, err)

					status, _ := hubclient.GetProp("statusCode", resp)
					contentType, _ := hubclient.FromObjectPath([]string{"headers", "content-type"}, resp)
					owner, _ := hubclient.FromObjectPath([]string{"body", "owner"}, resp)
					assert.Equal(t, http.StatusCreated, status)
					assert.Equal(t, "application/json", contentType)
					assert.Equal(t, OwnerPwned, owner)
				},
			},
			{
				Name: "verifies the channel does exist",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.Poll(h.Context(t), h.Client.ChannelURL(channelName), nil,
						hubclient.StatusIs(http.StatusOK))
					require.NoError(t, err)

					status, _ := hubclient.GetProp("statusCode", resp)
					contentType, _ := hubclient.FromObjectPath([]string{"headers", "content-type"}, resp)
					name, _ := hubclient.FromObjectPath([]string{"body", "name"}, resp)
					owner, _ := hubclient.FromObjectPath([]string{"body", "owner"}, resp)
					assert.Equal(t, http.StatusOK, status)
					assert.Equal(t, "application/json", contentType)
					assert.Equal(t, channelName, name)
					assert.Equal(t, OwnerPwned, owner)
				},
			},
		},
	}
}

// ChannelRoundTrip creates a channel through CreateChannel, reads it back,
// deletes it and checks it is gone.
func ChannelRoundTrip(channelName string, cfg hubclient.ChannelConfig) Scenario {
	return Scenario{
		Name: "channel round trip",
		Steps: []Step{
			{
				Name: "creates the channel",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.CreateChannel(h.Context(t), channelName, &cfg)
					require.NoError(t, err)
					err = hubclient.ValidateResponse(resp, &hubclient.ExpectedResponse{
						StatusCode: intPtr(http.StatusCreated),
						BodyFields: map[string]any{"body.name": channelName},
					})
					assert.NoError(t, err)
				},
			},
			{
				Name: "reads the channel back",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.GetHubItem(h.Context(t), h.Client.ChannelURL(channelName))
					require.NoError(t, err)
					fields := map[string]any{"$.body.name": channelName}
					if cfg.Owner != "" {
						fields["$.body.owner"] = cfg.Owner
					}
					if cfg.TTLDays != 0 {
						fields["$.body.ttlDays"] = cfg.TTLDays
					}
					err = hubclient.ValidateResponse(resp, &hubclient.ExpectedResponse{
						StatusCode: intPtr(http.StatusOK),
						Headers:    http.Header{"Content-Type": []string{"application/json"}},
						BodyFields: fields,
					})
					assert.NoError(t, err)
				},
			},
			{
				Name: "deletes the channel",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.Delete(h.Context(t), h.Client.ChannelURL(channelName), nil)
					require.NoError(t, err)
					assert.True(t, resp.StatusCode >= 200 && resp.StatusCode < 300,
						"expected 2xx on delete, got %d", resp.StatusCode)
				},
			},
			{
				Name: "verifies the channel is gone",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.Poll(h.Context(t), h.Client.ChannelURL(channelName), nil,
						hubclient.StatusIs(http.StatusNotFound))
					require.NoError(t, err)
					assert.Equal(t, http.StatusNotFound, resp.StatusCode)
				},
			},
		},
	}
}

// ItemInsertAndLatest inserts a JSON item into a fresh channel and reads it
// back through the channel's latest link.
func ItemInsertAndLatest(channelName string) Scenario {
	payload := map[string]any{"name": hubclient.RandomAlphaNumeric(10), "count": 0}
	var itemURL string

	return Scenario{
		Name: "item insert and latest",
		Steps: []Step{
			{
				Name: "creates the channel",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.CreateChannel(h.Context(t), channelName, &hubclient.ChannelConfig{TTLDays: 100})
					require.NoError(t, err)
					assert.Equal(t, http.StatusCreated, resp.StatusCode)
				},
			},
			{
				Name: "inserts an item",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.Post(h.Context(t), h.Client.ChannelURL(channelName), hubclient.JSONHeaders(), payload)
					require.NoError(t, err)
					assert.Equal(t, http.StatusCreated, resp.StatusCode)
					href, ok := hubclient.StringFromObjectPath([]string{"body", "_links", "self", "href"}, resp)
					require.True(t, ok, "item self link missing in %s", resp.BodyString)
					itemURL = href
				},
			},
			{
				Name: "reads the item through latest",
				Run: func(t *testing.T, h *Harness) {
					resp, err := h.Client.GetHubItem(h.Context(t), h.Client.ChannelURL(channelName, "latest"))
					require.NoError(t, err)
					assert.Equal(t, http.StatusOK, resp.StatusCode)
					assert.Equal(t, itemURL, resp.Request.URL.String())
					name, _ := hubclient.FromObjectPath([]string{"body", "name"}, resp)
					assert.Equal(t, payload["name"], name)
				},
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}

package hubtwin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestTwin_CreateChannel(t *testing.T) {
	// Given
	twin := New()
	handler := twin.Handler()

	// When
	rec := do(t, handler, http.MethodPost, "/channel", `{"name":"events","owner":"pwned","ttlDays":100}`)

	// Then
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "http://example.com/channel/events", rec.Header().Get("Location"))
	body := decode(t, rec)
	assert.Equal(t, "events", body["name"])
	assert.Equal(t, "pwned", body["owner"])
	assert.Equal(t, float64(100), body["ttlDays"])
	assert.Equal(t, map[string]any{"self": map[string]any{"href": "http://example.com/channel/events"}}, body["_links"])
	assert.Equal(t, 1, twin.Hits(http.MethodPost, "/channel"))
}

func TestTwin_CreateChannelErrors(t *testing.T) {
	handler := New().Handler()
	require.Equal(t, http.StatusCreated, do(t, handler, http.MethodPost, "/channel", `{"name":"events"}`).Code)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"duplicate", `{"name":"events"}`, http.StatusConflict},
		{"missing name", `{"owner":"pwned"}`, http.StatusBadRequest},
		{"bad characters", `{"name":"no-dashes"}`, http.StatusBadRequest},
		{"too long", `{"name":"` + strings.Repeat("a", 49) + `"}`, http.StatusBadRequest},
		{"malformed", `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, handler, http.MethodPost, "/channel", tt.body).Code)
		})
	}
}

func TestTwin_GetChannelAfterDelay(t *testing.T) {
	// Given
	clock := newFakeClock()
	handler := New(WithClock(clock.Now), WithVisibilityDelay(time.Second)).Handler()
	require.Equal(t, http.StatusCreated, do(t, handler, http.MethodPost, "/channel", `{"name":"events"}`).Code)

	// Then
	assert.Equal(t, http.StatusNotFound, do(t, handler, http.MethodGet, "/channel/events", "").Code)

	clock.Advance(time.Second)
	rec := do(t, handler, http.MethodGet, "/channel/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	links := decode(t, rec)["_links"].(map[string]any)
	assert.Equal(t, map[string]any{"href": "http://example.com/channel/events/latest"}, links["latest"])
}

func TestTwin_PutAndDeleteChannel(t *testing.T) {
	handler := New().Handler()

	assert.Equal(t, http.StatusCreated, do(t, handler, http.MethodPut, "/channel/events", `{"ttlDays":1}`).Code)
	assert.Equal(t, http.StatusOK, do(t, handler, http.MethodPut, "/channel/events", `{"name":"events","ttlDays":2}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, handler, http.MethodPut, "/channel/events", `{"name":"other"}`).Code)

	rec := do(t, handler, http.MethodGet, "/channel/events", "")
	assert.Equal(t, float64(2), decode(t, rec)["ttlDays"])

	assert.Equal(t, http.StatusAccepted, do(t, handler, http.MethodDelete, "/channel/events", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, handler, http.MethodDelete, "/channel/events", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, handler, http.MethodGet, "/channel/events", "").Code)
}

func TestTwin_ItemsAndLatest(t *testing.T) {
	// Given
	handler := New().Handler()
	assert.Equal(t, http.StatusNotFound, do(t, handler, http.MethodPost, "/channel/events", `{"n":1}`).Code)
	require.Equal(t, http.StatusCreated, do(t, handler, http.MethodPost, "/channel", `{"name":"events"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, handler, http.MethodGet, "/channel/events/latest", "").Code)

	// When
	insert := do(t, handler, http.MethodPost, "/channel/events", `{"n":1}`)

	// Then
	require.Equal(t, http.StatusCreated, insert.Code)
	self := insert.Header().Get("Location")
	assert.Regexp(t, `^http://example\.com/channel/events/\d{4}/\d{2}/\d{2}/\d{2}/\d{2}/\d{2}/\d{3}/[A-Za-z0-9]{6}$`, self)
	links := decode(t, insert)["_links"].(map[string]any)
	assert.Equal(t, map[string]any{"href": self}, links["self"])
	assert.Equal(t, map[string]any{"href": "http://example.com/channel/events"}, links["channel"])

	latest := do(t, handler, http.MethodGet, "/channel/events/latest", "")
	assert.Equal(t, http.StatusSeeOther, latest.Code)
	assert.Equal(t, self, latest.Header().Get("Location"))

	item := do(t, handler, http.MethodGet, strings.TrimPrefix(self, "http://example.com"), "")
	require.Equal(t, http.StatusOK, item.Code)
	assert.Equal(t, "application/json", item.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, item.Body.String())

	missing := do(t, handler, http.MethodGet, "/channel/events/2026/10/19/00/00/00/000/zzzzzz", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

// failingStore fails every write with errStoreDown.
type failingStore struct {
	*MemoryStore
}

var errStoreDown = errors.New("store unavailable")

func (failingStore) CreateChannel(Channel) (Channel, error) {
	return Channel{}, errStoreDown
}

func (failingStore) InsertItem(string, string, []byte) (Item, error) {
	return Item{}, errStoreDown
}

func TestTwin_StoreFailuresAreServerErrors(t *testing.T) {
	// Given
	twin := New(WithStore(failingStore{MemoryStore: NewMemoryStore(nil, 0)}))
	handler := twin.Handler()

	// When
	create := do(t, handler, http.MethodPost, "/channel", `{"name":"events"}`)
	insert := do(t, handler, http.MethodPost, "/channel/events", `{"n":1}`)

	// Then
	assert.Equal(t, http.StatusInternalServerError, create.Code)
	assert.Empty(t, create.Header().Get("Location"))
	assert.Contains(t, create.Body.String(), errStoreDown.Error())
	assert.Equal(t, http.StatusInternalServerError, insert.Code)
}

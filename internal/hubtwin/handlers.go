package hubtwin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

var channelNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,48}$`)

type link struct {
	Href string `json:"href"`
}

type channelBody struct {
	Links map[string]link `json:"_links"`
	Channel
}

type itemBody struct {
	Links     map[string]link `json:"_links"`
	Timestamp time.Time       `json:"timestamp"`
}

// CreateChannel handles POST /channel.
func (t *Twin) CreateChannel(w http.ResponseWriter, r *http.Request) {
	ch, ok := decodeChannel(w, r)
	if !ok {
		return
	}
	if err := validateChannelName(ch.Name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := t.Store.CreateChannel(ch)
	if err != nil {
		if errors.Is(err, ErrChannelExists) {
			http.Error(w, fmt.Sprintf("channel %s already exists", ch.Name), http.StatusConflict)
			return
		}
		slog.Warn("hubtwin: creating channel failed", "name", ch.Name, "error", err)
		http.Error(w, fmt.Sprintf("creating channel %s: %v", ch.Name, err), http.StatusInternalServerError)
		return
	}
	slog.Debug("hubtwin: channel created", "name", created.Name, "owner", created.Owner)
	self := channelURL(r, created.Name)
	w.Header().Set("Location", self)
	writeJSON(w, http.StatusCreated, channelBody{Links: map[string]link{"self": {Href: self}}, Channel: created})
}

// GetChannel handles GET /channel/{name}.
func (t *Twin) GetChannel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ch, ok := t.Store.Channel(name)
	if !ok {
		http.Error(w, fmt.Sprintf("channel %s not found", name), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, channelBody{Links: channelLinks(r, name), Channel: ch})
}

// PutChannel handles PUT /channel/{name}: create or replace.
func (t *Twin) PutChannel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ch, ok := decodeChannel(w, r)
	if !ok {
		return
	}
	if ch.Name == "" {
		ch.Name = name
	}
	if ch.Name != name {
		http.Error(w, fmt.Sprintf("body name %s does not match %s", ch.Name, name), http.StatusBadRequest)
		return
	}
	if err := validateChannelName(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored, created := t.Store.UpsertChannel(ch)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, channelBody{Links: channelLinks(r, name), Channel: stored})
}

// DeleteChannel handles DELETE /channel/{name}.
func (t *Twin) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !t.Store.DeleteChannel(name) {
		http.Error(w, fmt.Sprintf("channel %s not found", name), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// InsertItem handles POST /channel/{name}.
func (t *Twin) InsertItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unable to read body", http.StatusBadRequest)
		return
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	item, err := t.Store.InsertItem(name, contentType, data)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			http.Error(w, fmt.Sprintf("channel %s not found", name), http.StatusNotFound)
			return
		}
		slog.Warn("hubtwin: inserting item failed", "channel", name, "error", err)
		http.Error(w, fmt.Sprintf("inserting into %s: %v", name, err), http.StatusInternalServerError)
		return
	}
	self := channelURL(r, name, item.Key.Path())
	w.Header().Set("Location", self)
	writeJSON(w, http.StatusCreated, itemBody{
		Links: map[string]link{
			"self":    {Href: self},
			"channel": {Href: channelURL(r, name)},
		},
		Timestamp: item.Key.Time,
	})
}

// GetItem handles GET /channel/{name}/{year}/.../{hash}.
func (t *Twin) GetItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	keyPath := strings.Join([]string{
		chi.URLParam(r, "year"), chi.URLParam(r, "month"), chi.URLParam(r, "day"),
		chi.URLParam(r, "hour"), chi.URLParam(r, "minute"), chi.URLParam(r, "second"),
		chi.URLParam(r, "millis"), chi.URLParam(r, "hash"),
	}, "/")
	key, err := ParseContentKey(keyPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	item, ok := t.Store.Item(name, key)
	if !ok {
		http.Error(w, fmt.Sprintf("item %s not found in %s", keyPath, name), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", item.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(item.Data)
}

// Latest handles GET /channel/{name}/latest with a 303 to the newest item.
func (t *Twin) Latest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	item, ok := t.Store.Latest(name)
	if !ok {
		http.Error(w, fmt.Sprintf("no items in %s", name), http.StatusNotFound)
		return
	}
	w.Header().Set("Location", channelURL(r, name, item.Key.Path()))
	w.WriteHeader(http.StatusSeeOther)
}

func decodeChannel(w http.ResponseWriter, r *http.Request) (Channel, bool) {
	var ch Channel
	if err := json.NewDecoder(r.Body).Decode(&ch); err != nil {
		http.Error(w, fmt.Sprintf("invalid channel body: %v", err), http.StatusBadRequest)
		return Channel{}, false
	}
	return ch, true
}

func validateChannelName(name string) error {
	if !channelNamePattern.MatchString(name) {
		return fmt.Errorf("channel name %q must be 1-48 characters of A-Z, a-z, 0-9 or _", name)
	}
	return nil
}

func channelLinks(r *http.Request, name string) map[string]link {
	return map[string]link{
		"self":   {Href: channelURL(r, name)},
		"latest": {Href: channelURL(r, name, "latest")},
	}
}

func channelURL(r *http.Request, parts ...string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/channel/" + strings.Join(parts, "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("hubtwin: encoding response failed", "error", err)
	}
}

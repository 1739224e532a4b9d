package hubtwin

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrChannelExists   = errors.New("channel already exists")
	ErrChannelNotFound = errors.New("channel not found")
)

// Channel is the stored channel configuration.
type Channel struct {
	Name              string    `json:"name"`
	Owner             string    `json:"owner,omitempty"`
	Description       string    `json:"description,omitempty"`
	TTLDays           int       `json:"ttlDays,omitempty"`
	MaxItems          int       `json:"maxItems,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	ReplicationSource string    `json:"replicationSource,omitempty"`
	Storage           string    `json:"storage,omitempty"`
	CreationDate      time.Time `json:"creationDate"`
}

// Item is a stored channel payload.
type Item struct {
	Key         ContentKey
	ContentType string
	Data        []byte
}

type channelState struct {
	channel   Channel
	visibleAt time.Time
	items     []storedItem
}

type storedItem struct {
	item      Item
	visibleAt time.Time
}

// MemoryStore holds the twin's channels and items. Writes become visible to
// reads only after the configured delay, which mimics the hub's eventual
// consistency.
type MemoryStore struct {
	mu       sync.RWMutex
	channels map[string]*channelState
	now      func() time.Time
	delay    time.Duration
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(now func() time.Time, delay time.Duration) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		channels: make(map[string]*channelState),
		now:      now,
		delay:    delay,
	}
}

// CreateChannel stores a new channel. Invisible channels still count as existing.
func (s *MemoryStore) CreateChannel(ch Channel) (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.channels[ch.Name]; exists {
		return Channel{}, ErrChannelExists
	}
	now := s.now()
	ch.CreationDate = now.UTC()
	s.channels[ch.Name] = &channelState{channel: ch, visibleAt: now.Add(s.delay)}
	return ch, nil
}

// UpsertChannel creates or replaces a channel and reports whether it was created.
func (s *MemoryStore) UpsertChannel(ch Channel) (Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, exists := s.channels[ch.Name]; exists {
		ch.CreationDate = state.channel.CreationDate
		state.channel = ch
		return ch, false
	}
	now := s.now()
	ch.CreationDate = now.UTC()
	s.channels[ch.Name] = &channelState{channel: ch, visibleAt: now.Add(s.delay)}
	return ch, true
}

// Channel returns a visible channel.
func (s *MemoryStore) Channel(name string) (Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.visibleChannel(name)
	if !ok {
		return Channel{}, false
	}
	return state.channel, true
}

// DeleteChannel removes a channel and its items. Returns true if it existed.
func (s *MemoryStore) DeleteChannel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.channels[name]; !exists {
		return false
	}
	delete(s.channels, name)
	return true
}

// InsertItem appends a payload to a visible channel.
func (s *MemoryStore) InsertItem(name, contentType string, data []byte) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.visibleChannel(name)
	if !ok {
		return Item{}, ErrChannelNotFound
	}
	now := s.now()
	item := Item{Key: NewContentKey(now), ContentType: contentType, Data: append([]byte(nil), data...)}
	state.items = append(state.items, storedItem{item: item, visibleAt: now.Add(s.delay)})
	return item, nil
}

// Item returns a visible item by key.
func (s *MemoryStore) Item(name string, key ContentKey) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.visibleChannel(name)
	if !ok {
		return Item{}, false
	}
	now := s.now()
	for _, stored := range state.items {
		if stored.item.Key.Hash == key.Hash && stored.item.Key.Time.Equal(key.Time) && !now.Before(stored.visibleAt) {
			return stored.item, true
		}
	}
	return Item{}, false
}

// Latest returns the newest visible item of a channel.
func (s *MemoryStore) Latest(name string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.visibleChannel(name)
	if !ok {
		return Item{}, false
	}
	now := s.now()
	for i := len(state.items) - 1; i >= 0; i-- {
		if !now.Before(state.items[i].visibleAt) {
			return state.items[i].item, true
		}
	}
	return Item{}, false
}

// visibleChannel must be called with s.mu held.
func (s *MemoryStore) visibleChannel(name string) (*channelState, bool) {
	state, ok := s.channels[name]
	if !ok || s.now().Before(state.visibleAt) {
		return nil, false
	}
	return state, true
}

// Package hubtwin implements an in-memory twin of the hub channel API, used
// to exercise the harness without a running hub.
package hubtwin

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Option configures a Twin.
type Option func(*Twin)

// WithVisibilityDelay makes created channels and items answer 404 until d
// has passed, like a hub that is only eventually consistent.
func WithVisibilityDelay(d time.Duration) Option {
	return func(t *Twin) { t.delay = d }
}

// WithStore serves s instead of a fresh MemoryStore.
func WithStore(s Store) Option {
	return func(t *Twin) { t.Store = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Twin) { t.now = now }
}

// Store is the channel and item storage behind the twin's routes.
type Store interface {
	CreateChannel(ch Channel) (Channel, error)
	UpsertChannel(ch Channel) (Channel, bool)
	Channel(name string) (Channel, bool)
	DeleteChannel(name string) bool
	InsertItem(name, contentType string, data []byte) (Item, error)
	Item(name string, key ContentKey) (Item, bool)
	Latest(name string) (Item, bool)
}

// Twin is the hub twin: a store plus the HTTP routes that serve it.
type Twin struct {
	Store Store

	delay time.Duration
	now   func() time.Time

	mu   sync.Mutex
	hits map[string]int
}

// New creates a twin with an empty store.
func New(options ...Option) *Twin {
	t := &Twin{now: time.Now, hits: make(map[string]int)}
	for _, option := range options {
		option(t)
	}
	if t.Store == nil {
		t.Store = NewMemoryStore(t.now, t.delay)
	}
	return t
}

// Handler returns the twin's HTTP handler.
func (t *Twin) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(t.countHits)
	t.Routes(r)
	return r
}

// Routes mounts the hub channel routes.
func (t *Twin) Routes(r chi.Router) {
	r.Route("/channel", func(r chi.Router) {
		r.Post("/", t.CreateChannel)
		r.Get("/{name}", t.GetChannel)
		r.Put("/{name}", t.PutChannel)
		r.Delete("/{name}", t.DeleteChannel)
		r.Post("/{name}", t.InsertItem)
		r.Get("/{name}/latest", t.Latest)
		r.Get("/{name}/{year}/{month}/{day}/{hour}/{minute}/{second}/{millis}/{hash}", t.GetItem)
	})
}

// Server starts an httptest server for the twin. The caller closes it.
func (t *Twin) Server() *httptest.Server {
	return httptest.NewServer(t.Handler())
}

// Hits returns how many requests were received for method and path,
// e.g. Hits("GET", "/channel/foo").
func (t *Twin) Hits(method, path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits[method+" "+path]
}

func (t *Twin) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.mu.Lock()
		t.hits[r.Method+" "+r.URL.Path]++
		t.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

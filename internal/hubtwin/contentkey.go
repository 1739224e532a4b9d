package hubtwin

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const (
	contentKeyLayout = "2006/01/02/15/04/05"
	hashLength       = 6
	hashCharset      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// ContentKey identifies an item within a channel: the insertion time at
// millisecond precision plus a short random hash.
type ContentKey struct {
	Time time.Time
	Hash string
}

// NewContentKey returns a key for t with a random 6 character hash.
func NewContentKey(t time.Time) ContentKey {
	b := make([]byte, hashLength)
	for i := range b {
		b[i] = hashCharset[rand.Intn(len(hashCharset))]
	}
	return ContentKey{Time: t.UTC().Truncate(time.Millisecond), Hash: string(b)}
}

// Path renders the key as "yyyy/MM/dd/HH/mm/ss/SSS/hash".
func (k ContentKey) Path() string {
	return fmt.Sprintf("%s/%03d/%s", k.Time.Format(contentKeyLayout), k.Time.Nanosecond()/int(time.Millisecond), k.Hash)
}

func (k ContentKey) String() string {
	return k.Path()
}

// ParseContentKey parses the output of Path.
func ParseContentKey(path string) (ContentKey, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 8 {
		return ContentKey{}, fmt.Errorf("content key %q: expected 8 segments, got %d", path, len(parts))
	}
	t, err := time.ParseInLocation(contentKeyLayout, strings.Join(parts[:6], "/"), time.UTC)
	if err != nil {
		return ContentKey{}, fmt.Errorf("content key %q: %w", path, err)
	}
	millis, err := strconv.Atoi(parts[6])
	if err != nil || millis < 0 || millis > 999 {
		return ContentKey{}, fmt.Errorf("content key %q: invalid milliseconds %q", path, parts[6])
	}
	if parts[7] == "" {
		return ContentKey{}, fmt.Errorf("content key %q: empty hash", path)
	}
	return ContentKey{Time: t.Add(time.Duration(millis) * time.Millisecond), Hash: parts[7]}, nil
}

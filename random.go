package hubclient

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

const (
	alphaNumericCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tagCharset          = "abcdefghijklmnopqrstuvwxyz0123456789"

	channelNamePrefix = "test_"
	tagNamePrefix     = "tag"
	tagNameRandomLen  = 16
)

// RandomChannelName returns a channel name that is unique within a test run
// in practice. It is "test_" followed by the 32 hex digits of a random UUID,
// which stays within the hub's 48 character [A-Za-z0-9_] rule. Uniqueness is
// probabilistic, not guaranteed.
func RandomChannelName() string {
	return channelNamePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RandomTagName returns a random lower-case alphanumeric tag name.
func RandomTagName() string {
	return tagNamePrefix + randomStringFromCharset(tagNameRandomLen, tagCharset)
}

// RandomAlphaNumeric returns n random characters from [A-Za-z0-9].
func RandomAlphaNumeric(n int) string {
	return randomStringFromCharset(n, alphaNumericCharset)
}

// RandomNumberBetweenInclusive returns a uniformly sampled integer in [min, max].
func RandomNumberBetweenInclusive(min, max int) (int, error) {
	if min > max {
		return 0, fmt.Errorf("%w: min %d is greater than max %d", ErrInvalidRange, min, max)
	}
	// Unsigned arithmetic keeps the width exact even for the full int range.
	span := uint64(max) - uint64(min) + 1
	if span == 0 {
		return int(rand.Uint64()), nil
	}
	if span <= math.MaxInt64 {
		return min + int(rand.Int63n(int64(span))), nil
	}
	for {
		if u := rand.Uint64(); u < span {
			return min + int(u), nil
		}
	}
}

// randomStringFromCharset generates a random string of a given length using characters from the provided charset.
func randomStringFromCharset(length int, charset string) string {
	if length <= 0 || len(charset) == 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
